// Package store реализует постоянное клиентское хранилище состояния.
//
// Хранилище состоит из именованных слотов, каждый слот хранится отдельным
// файлом в каталоге состояния пользователя. Слот token содержит сырую
// строку, слоты user и cart содержат JSON.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Имена слотов хранилища.
const (
	SlotToken = "token"
	SlotUser  = "user"
	SlotCart  = "cart"
)

// FileStore хранит слоты состояния в файлах внутри одного каталога.
type FileStore struct {
	dir string
}

// NewFileStore создаёт хранилище над указанным каталогом. Каталог
// создаётся лениво при первой записи.
func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

// SaveString записывает сырое строковое значение в слот.
func (s *FileStore) SaveString(slot, value string) error {
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}
	if err := os.WriteFile(s.path(slot), []byte(value), 0o600); err != nil {
		return fmt.Errorf("write slot %s: %w", slot, err)
	}
	return nil
}

// LoadString читает сырое строковое значение слота. Второе значение
// равно false, если слот отсутствует.
func (s *FileStore) LoadString(slot string) (string, bool) {
	data, err := os.ReadFile(s.path(slot))
	if err != nil {
		return "", false
	}
	return string(data), true
}

// SaveJSON сериализует значение в JSON и записывает его в слот.
func (s *FileStore) SaveJSON(slot string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal slot %s: %w", slot, err)
	}
	return s.SaveString(slot, string(data))
}

// LoadJSON читает слот и десериализует его содержимое в dst. Ошибка
// разбора не фатальна: слот считается отсутствующим и очищается, чтобы
// испорченные данные не разбирались повторно.
func (s *FileStore) LoadJSON(slot string, dst any) bool {
	raw, ok := s.LoadString(slot)
	if !ok {
		return false
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		s.Clear(slot)
		return false
	}
	return true
}

// Clear удаляет слот. Удаление отсутствующего слота не является ошибкой.
func (s *FileStore) Clear(slot string) {
	_ = os.Remove(s.path(slot))
}

func (s *FileStore) path(slot string) string {
	return filepath.Join(s.dir, slot)
}
