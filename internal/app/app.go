// Package app содержит контейнер состояния приложения и пользовательские
// сценарии поверх менеджеров сессии и корзины.
//
// Контейнер принадлежит корню процесса и передаётся представлениям по
// ссылке. Представления не обращаются к хранилищу напрямую: все мутации
// проходят через методы контейнера, а уведомления пользователю — через
// способность Notifier.
package app

import (
	"context"
	"errors"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/mmeshcher/foodiehub-client/internal/api"
	"github.com/mmeshcher/foodiehub-client/internal/cart"
	"github.com/mmeshcher/foodiehub-client/internal/model"
	"github.com/mmeshcher/foodiehub-client/internal/session"
	"github.com/mmeshcher/foodiehub-client/internal/store"
)

// View определяет активный экран приложения.
type View string

const (
	ViewMenu     View = "menu"
	ViewCart     View = "cart"
	ViewOrders   View = "orders"
	ViewLogin    View = "login"
	ViewRegister View = "register"
)

// Виды уведомлений для Notifier.
const (
	NoticeSuccess = "success"
	NoticeError   = "error"
)

// Ошибки предварительных проверок оформления заказа, в порядке их
// выполнения: сначала состояние сессии, затем поле телефона, затем
// корзина, затем защитная перепроверка токена.
var (
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrPhoneRequired    = errors.New("phone number required")
	ErrCartEmpty        = errors.New("cart is empty")
	ErrSessionExpired   = errors.New("session expired")
	ErrBusy             = errors.New("submission already in flight")
)

// Notifier выводит транзиентное уведомление пользователю. Конкретное
// отображение — забота слоя представления.
type Notifier interface {
	Notify(message, kind string)
}

// Client определяет сетевые операции, используемые контейнером напрямую.
type Client interface {
	Menu(ctx context.Context) ([]model.MenuItem, error)
	CreateOrder(ctx context.Context, token string, req api.OrderRequest) (*model.Order, error)
	ListOrders(ctx context.Context, token string) ([]model.Order, error)
	DeleteOrder(ctx context.Context, token, id string) error
}

// App владеет сессией, корзиной, активным экраном и кэшем последних
// ответов сервера.
type App struct {
	logger   *zap.Logger
	client   Client
	store    *store.FileStore
	session  *session.Manager
	cart     *cart.Manager
	notifier Notifier

	mu      sync.Mutex
	view    View
	placing bool
	menu    []model.MenuItem
	orders  []model.Order
}

// New создаёт контейнер приложения. Начальный экран — меню.
func New(client Client, st *store.FileStore, sess *session.Manager, crt *cart.Manager, notifier Notifier, logger *zap.Logger) *App {
	return &App{
		logger:   logger,
		client:   client,
		store:    st,
		session:  sess,
		cart:     crt,
		notifier: notifier,
		view:     ViewMenu,
	}
}

// Hydrate восстанавливает сессию и корзину из постоянного хранилища.
// Повторный вызов при неизменном хранилище даёт то же состояние.
func (a *App) Hydrate() {
	a.session.Hydrate()
	a.cart.Hydrate()
}

// Session возвращает менеджер сессии.
func (a *App) Session() *session.Manager { return a.session }

// Cart возвращает менеджер корзины.
func (a *App) Cart() *cart.Manager { return a.cart }

// View возвращает активный экран.
func (a *App) View() View {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.view
}

// Navigate переключает активный экран. Экраны входа и регистрации
// недоступны в аутентифицированном состоянии: вместо них открывается меню.
func (a *App) Navigate(view View) {
	if (view == ViewLogin || view == ViewRegister) && a.session.CurrentUser() != nil {
		view = ViewMenu
	}

	a.mu.Lock()
	a.view = view
	a.mu.Unlock()
}

// Placing сообщает, выполняется ли сейчас отправка заказа.
func (a *App) Placing() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.placing
}

// Login выполняет вход и при успехе открывает меню.
func (a *App) Login(ctx context.Context, email, password string) error {
	if err := a.session.Login(ctx, email, password); err != nil {
		a.notifier.Notify(api.ErrorMessage(err, "invalid credentials"), NoticeError)
		return err
	}

	a.Navigate(ViewMenu)
	return nil
}

// Register регистрирует пользователя и при успехе открывает меню.
// Ошибки локальной валидации пароля показываются как есть, до какого-либо
// сетевого вызова.
func (a *App) Register(ctx context.Context, name, email, password, confirmPassword string) error {
	err := a.session.Register(ctx, name, email, password, confirmPassword)
	if err != nil {
		if errors.Is(err, session.ErrPasswordMismatch) || errors.Is(err, session.ErrPasswordTooShort) {
			a.notifier.Notify(err.Error(), NoticeError)
		} else {
			a.notifier.Notify(api.ErrorMessage(err, "registration failed"), NoticeError)
		}
		return err
	}

	a.Navigate(ViewMenu)
	return nil
}

// Logout завершает сессию и открывает меню.
func (a *App) Logout() {
	a.session.Logout()
	a.Navigate(ViewMenu)
}

// FetchMenu загружает листинг меню и кэширует его для фильтрации.
func (a *App) FetchMenu(ctx context.Context) ([]model.MenuItem, error) {
	items, err := a.client.Menu(ctx)
	if err != nil {
		a.logger.Error("fetch menu", zap.Error(err))
		a.notifier.Notify(api.ErrorMessage(err, "failed to load menu"), NoticeError)
		return nil, err
	}

	a.mu.Lock()
	a.menu = items
	a.mu.Unlock()
	return items, nil
}

// Menu возвращает последний загруженный листинг меню.
func (a *App) Menu() []model.MenuItem {
	a.mu.Lock()
	defer a.mu.Unlock()

	items := make([]model.MenuItem, len(a.menu))
	copy(items, a.menu)
	return items
}

// FilterMenu возвращает позиции меню выбранной категории. Категория "All"
// возвращает весь листинг, остальные сопоставляются по вхождению имени.
func (a *App) FilterMenu(category string) []model.MenuItem {
	items := a.Menu()
	if category == "" || strings.EqualFold(category, "All") {
		return items
	}

	filtered := make([]model.MenuItem, 0, len(items))
	for _, item := range items {
		if strings.Contains(strings.ToLower(item.Name), strings.ToLower(category)) {
			filtered = append(filtered, item)
		}
	}
	return filtered
}

// AddToCart добавляет позицию меню в корзину и уведомляет об этом.
func (a *App) AddToCart(item model.MenuItem) error {
	err := a.cart.Add(model.CartItem{
		Name:  item.Name,
		Price: item.Price,
		Image: item.Image,
	})
	if err != nil {
		a.logger.Error("add to cart", zap.Error(err), zap.String("item", item.Name))
		a.notifier.Notify("failed to add "+item.Name+" to cart", NoticeError)
		return err
	}

	a.notifier.Notify(item.Name+" added to cart", NoticeSuccess)
	return nil
}

// PlaceOrder оформляет заказ из текущей корзины. Предварительные проверки
// выполняются последовательно и прерываются на первой неуспешной: сессия,
// телефон, корзина, затем защитная перепроверка токена в хранилище.
// При успехе корзина очищается и открывается экран заказов; при неуспехе
// корзина и телефон остаются нетронутыми для повторной попытки.
func (a *App) PlaceOrder(ctx context.Context, phone string) error {
	a.mu.Lock()
	if a.placing {
		a.mu.Unlock()
		return ErrBusy
	}
	a.placing = true
	a.mu.Unlock()

	defer func() {
		a.mu.Lock()
		a.placing = false
		a.mu.Unlock()
	}()

	user := a.session.CurrentUser()
	if user == nil {
		a.notifier.Notify("please login first", NoticeError)
		a.Navigate(ViewLogin)
		return ErrNotAuthenticated
	}

	if strings.TrimSpace(phone) == "" {
		a.notifier.Notify("please enter your phone number", NoticeError)
		return ErrPhoneRequired
	}

	if a.cart.Len() == 0 {
		a.notifier.Notify("your cart is empty", NoticeError)
		return ErrCartEmpty
	}

	token, ok := a.store.LoadString(store.SlotToken)
	if !ok || token == "" {
		a.expireSession()
		return ErrSessionExpired
	}

	total, err := a.cart.Total()
	if err != nil {
		a.notifier.Notify("cart contains an item with an invalid price", NoticeError)
		return err
	}

	req := api.OrderRequest{
		CustomerName:  user.Name,
		CustomerPhone: phone,
		Items:         a.cart.Items(),
		TotalPrice:    total,
	}

	if _, err := a.client.CreateOrder(ctx, token, req); err != nil {
		if errors.Is(err, api.ErrUnauthorized) {
			a.expireSession()
			return err
		}
		a.logger.Error("place order", zap.Error(err))
		a.notifier.Notify(api.ErrorMessage(err, "failed to place order"), NoticeError)
		return err
	}

	if err := a.cart.Clear(); err != nil {
		a.logger.Error("clear cart after order", zap.Error(err))
	}

	a.Navigate(ViewOrders)
	a.notifier.Notify("order placed successfully", NoticeSuccess)
	return nil
}

// FetchOrders загружает заказы текущего пользователя. Отказ в
// аутентификации сбрасывает сессию.
func (a *App) FetchOrders(ctx context.Context) ([]model.Order, error) {
	token := a.session.Token()
	if token == "" {
		a.notifier.Notify("please login to view orders", NoticeError)
		return nil, ErrNotAuthenticated
	}

	orders, err := a.client.ListOrders(ctx, token)
	if err != nil {
		if errors.Is(err, api.ErrUnauthorized) {
			a.expireSession()
			return nil, err
		}
		a.logger.Error("fetch orders", zap.Error(err))
		a.notifier.Notify(api.ErrorMessage(err, "failed to load orders"), NoticeError)
		return nil, err
	}

	a.mu.Lock()
	a.orders = orders
	a.mu.Unlock()
	return orders, nil
}

// Orders возвращает последний загруженный список заказов.
func (a *App) Orders() []model.Order {
	a.mu.Lock()
	defer a.mu.Unlock()

	orders := make([]model.Order, len(a.orders))
	copy(orders, a.orders)
	return orders
}

// DeleteOrder удаляет заказ. Отказ в аутентификации сбрасывает сессию,
// отказ в правах сессию не трогает, отсутствие заказа приводит к
// перечитыванию списка.
func (a *App) DeleteOrder(ctx context.Context, id string) error {
	token := a.session.Token()
	if token == "" {
		a.notifier.Notify("please login to delete orders", NoticeError)
		return ErrNotAuthenticated
	}

	err := a.client.DeleteOrder(ctx, token, id)
	switch {
	case err == nil:
		a.notifier.Notify("order deleted", NoticeSuccess)
		_, _ = a.FetchOrders(ctx)
		return nil
	case errors.Is(err, api.ErrUnauthorized):
		a.expireSession()
		return err
	case errors.Is(err, api.ErrForbidden):
		a.notifier.Notify("you don't have permission to delete this order", NoticeError)
		return err
	case errors.Is(err, api.ErrNotFound):
		a.notifier.Notify("order not found", NoticeError)
		_, _ = a.FetchOrders(ctx)
		return err
	default:
		a.logger.Error("delete order", zap.Error(err), zap.String("order", id))
		a.notifier.Notify(api.ErrorMessage(err, "failed to delete order"), NoticeError)
		return err
	}
}

// expireSession сбрасывает сессию, показывает сообщение об истечении и
// открывает экран входа.
func (a *App) expireSession() {
	a.session.Invalidate()
	a.notifier.Notify("session expired, please log in again", NoticeError)
	a.Navigate(ViewLogin)
}
