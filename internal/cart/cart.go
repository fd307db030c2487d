// Package cart управляет корзиной покупателя.
//
// Корзина хранит упорядоченный список позиций без дедупликации и после
// каждой мутации записывается в постоянное хранилище целиком.
package cart

import (
	"errors"
	"fmt"
	"sync"

	"github.com/mmeshcher/foodiehub-client/internal/model"
	"github.com/mmeshcher/foodiehub-client/internal/store"
)

// ErrBadPrice возвращается при попытке добавить позицию, цена которой
// не разбирается как число.
var ErrBadPrice = errors.New("item price is not a number")

// Manager владеет содержимым корзины и слотом cart постоянного хранилища.
type Manager struct {
	mu    sync.Mutex
	store *store.FileStore
	items []model.CartItem
}

// NewManager создаёт менеджер корзины над указанным хранилищем.
func NewManager(st *store.FileStore) *Manager {
	return &Manager{store: st}
}

// Hydrate восстанавливает корзину из хранилища. Испорченный слот
// трактуется как пустая корзина и очищается.
func (m *Manager) Hydrate() {
	m.mu.Lock()
	defer m.mu.Unlock()

	var items []model.CartItem
	if !m.store.LoadJSON(store.SlotCart, &items) {
		m.items = nil
		return
	}
	m.items = items
}

// Add добавляет позицию в конец корзины. Цена проверяется до добавления:
// позиция с нечисловой ценой отклоняется, чтобы сумма заказа всегда была
// вычислима.
func (m *Manager) Add(item model.CartItem) error {
	if _, err := item.Price.Float(); err != nil {
		return fmt.Errorf("%w: %q", ErrBadPrice, string(item.Price))
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.items = append(m.items, item)
	return m.persist()
}

// RemoveAt удаляет позицию по порядковому номеру. Выход за границы
// списка игнорируется.
func (m *Manager) RemoveAt(index int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if index < 0 || index >= len(m.items) {
		return nil
	}

	m.items = append(m.items[:index], m.items[index+1:]...)
	return m.persist()
}

// Clear опустошает корзину.
func (m *Manager) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.items = nil
	return m.persist()
}

// Items возвращает копию содержимого корзины в порядке добавления.
func (m *Manager) Items() []model.CartItem {
	m.mu.Lock()
	defer m.mu.Unlock()

	items := make([]model.CartItem, len(m.items))
	copy(items, m.items)
	return items
}

// Len возвращает число позиций в корзине.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.items)
}

// Total возвращает сумму цен всех позиций. Ошибка возможна только если
// позиция с нечисловой ценой попала в корзину в обход Add, например при
// ручной правке файла состояния.
func (m *Manager) Total() (float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var total float64
	for _, item := range m.items {
		price, err := item.Price.Float()
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrBadPrice, string(item.Price))
		}
		total += price
	}
	return total, nil
}

// persist записывает корзину в хранилище; вызывается при каждой мутации
// под уже взятой блокировкой.
func (m *Manager) persist() error {
	items := m.items
	if items == nil {
		items = []model.CartItem{}
	}
	if err := m.store.SaveJSON(store.SlotCart, items); err != nil {
		return fmt.Errorf("persist cart: %w", err)
	}
	return nil
}
