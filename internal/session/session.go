// Package session управляет жизненным циклом сессии пользователя.
//
// Менеджер находится в одном из двух состояний: анонимном либо
// аутентифицированном. Профиль и токен переживают перезапуск процесса
// через постоянное хранилище и восстанавливаются методом Hydrate.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/mmeshcher/foodiehub-client/internal/api"
	"github.com/mmeshcher/foodiehub-client/internal/model"
	"github.com/mmeshcher/foodiehub-client/internal/store"
)

// MinPasswordLen — минимальная длина пароля при регистрации.
const MinPasswordLen = 6

// Ошибки локальной валидации регистрации. Запрос к серверу при них
// не выполняется.
var (
	ErrPasswordMismatch = errors.New("passwords do not match")
	ErrPasswordTooShort = fmt.Errorf("password must be at least %d characters", MinPasswordLen)
)

// APIClient определяет контракт сетевых операций, используемых менеджером сессии.
type APIClient interface {
	Login(ctx context.Context, email, password string) (*api.Credentials, error)
	Register(ctx context.Context, name, email, password string) (*api.Credentials, error)
}

// Manager владеет текущим состоянием сессии и слотами user и token
// постоянного хранилища.
type Manager struct {
	mu      sync.Mutex
	store   *store.FileStore
	api     APIClient
	current *model.User
	token   string
}

// NewManager создаёт менеджер сессии над указанным хранилищем и клиентом API.
func NewManager(st *store.FileStore, client APIClient) *Manager {
	return &Manager{
		store: st,
		api:   client,
	}
}

// Hydrate восстанавливает сессию из хранилища. Сессия считается валидной
// только при наличии обоих слотов; расхождение трактуется как порча
// данных, оба слота очищаются и состояние остаётся анонимным. Повторный
// вызов при неизменном хранилище даёт то же состояние.
func (m *Manager) Hydrate() {
	m.mu.Lock()
	defer m.mu.Unlock()

	token, ok := m.store.LoadString(store.SlotToken)

	var user model.User
	if !ok || token == "" || !m.store.LoadJSON(store.SlotUser, &user) {
		m.store.Clear(store.SlotToken)
		m.store.Clear(store.SlotUser)
		m.current = nil
		m.token = ""
		return
	}

	m.current = &user
	m.token = token
}

// Login выполняет вход и при успехе переводит сессию в
// аутентифицированное состояние, записав профиль и токен в хранилище.
func (m *Manager) Login(ctx context.Context, email, password string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	creds, err := m.api.Login(ctx, email, password)
	if err != nil {
		return err
	}

	return m.establish(creds)
}

// Register регистрирует нового пользователя. Локальные проверки пароля
// выполняются до какого-либо сетевого вызова; при успехе поведение
// совпадает со входом.
func (m *Manager) Register(ctx context.Context, name, email, password, confirmPassword string) error {
	if password != confirmPassword {
		return ErrPasswordMismatch
	}
	if len(password) < MinPasswordLen {
		return ErrPasswordTooShort
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	creds, err := m.api.Register(ctx, name, email, password)
	if err != nil {
		return err
	}

	return m.establish(creds)
}

// Logout очищает слоты user и token и переводит сессию в анонимное
// состояние. Сетевой вызов не выполняется, операция не может завершиться
// неуспехом.
func (m *Manager) Logout() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.reset()
}

// Invalidate сбрасывает сессию после отказа сервера в аутентификации.
// Поведение совпадает с Logout; сообщение пользователю и переход к экрану
// входа остаются за вызывающей стороной.
func (m *Manager) Invalidate() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.reset()
}

// CurrentUser возвращает копию профиля текущего пользователя либо nil
// в анонимном состоянии.
func (m *Manager) CurrentUser() *model.User {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current == nil {
		return nil
	}
	user := *m.current
	return &user
}

// Token возвращает токен текущей сессии либо пустую строку.
func (m *Manager) Token() string {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.token
}

func (m *Manager) establish(creds *api.Credentials) error {
	if err := m.store.SaveString(store.SlotToken, creds.Token); err != nil {
		return fmt.Errorf("persist token: %w", err)
	}
	if err := m.store.SaveJSON(store.SlotUser, creds.User); err != nil {
		m.store.Clear(store.SlotToken)
		return fmt.Errorf("persist user: %w", err)
	}

	user := creds.User
	m.current = &user
	m.token = creds.Token
	return nil
}

func (m *Manager) reset() {
	m.store.Clear(store.SlotToken)
	m.store.Clear(store.SlotUser)
	m.current = nil
	m.token = ""
}
