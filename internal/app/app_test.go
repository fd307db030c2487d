package app

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"go.uber.org/zap"

	"github.com/mmeshcher/foodiehub-client/internal/api"
	"github.com/mmeshcher/foodiehub-client/internal/cart"
	"github.com/mmeshcher/foodiehub-client/internal/model"
	"github.com/mmeshcher/foodiehub-client/internal/session"
	"github.com/mmeshcher/foodiehub-client/internal/store"
)

type fakeClient struct {
	creds    *api.Credentials
	loginErr error

	menu    []model.MenuItem
	menuErr error

	createdOrder *model.Order
	createErr    error
	createCalls  int
	lastRequest  api.OrderRequest

	orders    []model.Order
	listErr   error
	listCalls int

	deleteErr error
}

func (f *fakeClient) Login(ctx context.Context, email, password string) (*api.Credentials, error) {
	return f.creds, f.loginErr
}

func (f *fakeClient) Register(ctx context.Context, name, email, password string) (*api.Credentials, error) {
	return f.creds, f.loginErr
}

func (f *fakeClient) Menu(ctx context.Context) ([]model.MenuItem, error) {
	return f.menu, f.menuErr
}

func (f *fakeClient) CreateOrder(ctx context.Context, token string, req api.OrderRequest) (*model.Order, error) {
	f.createCalls++
	f.lastRequest = req
	return f.createdOrder, f.createErr
}

func (f *fakeClient) ListOrders(ctx context.Context, token string) ([]model.Order, error) {
	f.listCalls++
	return f.orders, f.listErr
}

func (f *fakeClient) DeleteOrder(ctx context.Context, token, id string) error {
	return f.deleteErr
}

type recordingNotifier struct {
	messages []string
	kinds    []string
}

func (n *recordingNotifier) Notify(message, kind string) {
	n.messages = append(n.messages, message)
	n.kinds = append(n.kinds, kind)
}

func (n *recordingNotifier) last() string {
	if len(n.messages) == 0 {
		return ""
	}
	return n.messages[len(n.messages)-1]
}

func newTestApp(t *testing.T, client *fakeClient) (*App, *store.FileStore, *recordingNotifier) {
	t.Helper()

	logger, err := zap.NewDevelopment()
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}

	st := store.NewFileStore(t.TempDir())
	sess := session.NewManager(st, client)
	crt := cart.NewManager(st)
	notifier := &recordingNotifier{}

	a := New(client, st, sess, crt, notifier, logger)
	a.Hydrate()
	return a, st, notifier
}

func seedSession(t *testing.T, a *App, st *store.FileStore) {
	t.Helper()

	if err := st.SaveString(store.SlotToken, "abc"); err != nil {
		t.Fatalf("save token: %v", err)
	}
	if err := st.SaveJSON(store.SlotUser, model.User{ID: 1, Name: "Demo", Email: "demo@example.com", Role: "customer"}); err != nil {
		t.Fatalf("save user: %v", err)
	}
	a.Hydrate()
}

func TestPlaceOrder_PreconditionOrdering(t *testing.T) {
	// Все предусловия нарушены одновременно: первой должна сработать
	// проверка сессии, не телефона и не корзины.
	a, _, notifier := newTestApp(t, &fakeClient{})

	err := a.PlaceOrder(context.Background(), "")
	if !errors.Is(err, ErrNotAuthenticated) {
		t.Fatalf("error = %v, want ErrNotAuthenticated", err)
	}
	if notifier.last() != "please login first" {
		t.Fatalf("message = %q, want login prompt", notifier.last())
	}
	if a.View() != ViewLogin {
		t.Fatalf("view = %q, want login", a.View())
	}
}

func TestPlaceOrder_PhoneBeforeCart(t *testing.T) {
	a, st, notifier := newTestApp(t, &fakeClient{})
	seedSession(t, a, st)

	err := a.PlaceOrder(context.Background(), "   ")
	if !errors.Is(err, ErrPhoneRequired) {
		t.Fatalf("error = %v, want ErrPhoneRequired", err)
	}
	if notifier.last() != "please enter your phone number" {
		t.Fatalf("message = %q", notifier.last())
	}
}

func TestPlaceOrder_EmptyCart(t *testing.T) {
	a, st, notifier := newTestApp(t, &fakeClient{})
	seedSession(t, a, st)

	err := a.PlaceOrder(context.Background(), "0100000000")
	if !errors.Is(err, ErrCartEmpty) {
		t.Fatalf("error = %v, want ErrCartEmpty", err)
	}
	if notifier.last() != "your cart is empty" {
		t.Fatalf("message = %q", notifier.last())
	}
}

func TestPlaceOrder_DefensiveTokenRecheck(t *testing.T) {
	client := &fakeClient{}
	a, st, notifier := newTestApp(t, client)
	seedSession(t, a, st)

	if err := a.Cart().Add(model.CartItem{Name: "Pizza", Price: "120"}); err != nil {
		t.Fatalf("add to cart: %v", err)
	}

	// Токен исчез из хранилища между гидратацией и отправкой.
	st.Clear(store.SlotToken)

	err := a.PlaceOrder(context.Background(), "0100000000")
	if !errors.Is(err, ErrSessionExpired) {
		t.Fatalf("error = %v, want ErrSessionExpired", err)
	}
	if notifier.last() != "session expired, please log in again" {
		t.Fatalf("message = %q", notifier.last())
	}
	if a.View() != ViewLogin {
		t.Fatalf("view = %q, want login", a.View())
	}
	if client.createCalls != 0 {
		t.Fatalf("order must not be submitted without a token")
	}
}

func TestPlaceOrder_Success(t *testing.T) {
	client := &fakeClient{createdOrder: &model.Order{ID: "o1"}}
	a, st, notifier := newTestApp(t, client)
	seedSession(t, a, st)

	if err := a.Cart().Add(model.CartItem{Name: "Pizza", Price: "120"}); err != nil {
		t.Fatalf("add to cart: %v", err)
	}
	if err := a.Cart().Add(model.CartItem{Name: "Burger", Price: "45.50"}); err != nil {
		t.Fatalf("add to cart: %v", err)
	}

	if err := a.PlaceOrder(context.Background(), "0100000000"); err != nil {
		t.Fatalf("PlaceOrder error: %v", err)
	}

	if client.lastRequest.CustomerName != "Demo" || client.lastRequest.CustomerPhone != "0100000000" {
		t.Fatalf("unexpected request: %+v", client.lastRequest)
	}
	if client.lastRequest.TotalPrice != 165.50 {
		t.Fatalf("total = %v, want 165.50", client.lastRequest.TotalPrice)
	}
	if a.Cart().Len() != 0 {
		t.Fatalf("cart must be cleared after a successful order")
	}

	var persisted []model.CartItem
	if !st.LoadJSON(store.SlotCart, &persisted) || len(persisted) != 0 {
		t.Fatalf("cleared cart must be written through, got %+v", persisted)
	}

	if a.View() != ViewOrders {
		t.Fatalf("view = %q, want orders", a.View())
	}
	if notifier.last() != "order placed successfully" {
		t.Fatalf("message = %q", notifier.last())
	}
}

func TestPlaceOrder_ServerErrorKeepsCart(t *testing.T) {
	client := &fakeClient{createErr: &api.StatusError{Code: http.StatusInternalServerError, Message: "kitchen is closed"}}
	a, st, notifier := newTestApp(t, client)
	seedSession(t, a, st)

	if err := a.Cart().Add(model.CartItem{Name: "Pizza", Price: "120"}); err != nil {
		t.Fatalf("add to cart: %v", err)
	}

	if err := a.PlaceOrder(context.Background(), "0100000000"); err == nil {
		t.Fatalf("expected error")
	}

	if a.Cart().Len() != 1 {
		t.Fatalf("cart must be left untouched for retry")
	}
	if notifier.last() != "kitchen is closed" {
		t.Fatalf("message = %q, want server message", notifier.last())
	}
}

func TestPlaceOrder_UnauthorizedInvalidatesSession(t *testing.T) {
	client := &fakeClient{createErr: &api.StatusError{Code: http.StatusUnauthorized}}
	a, st, notifier := newTestApp(t, client)
	seedSession(t, a, st)

	if err := a.Cart().Add(model.CartItem{Name: "Pizza", Price: "120"}); err != nil {
		t.Fatalf("add to cart: %v", err)
	}

	if err := a.PlaceOrder(context.Background(), "0100000000"); err == nil {
		t.Fatalf("expected error")
	}

	if a.Session().CurrentUser() != nil {
		t.Fatalf("401 must invalidate the session")
	}
	if _, ok := st.LoadString(store.SlotToken); ok {
		t.Fatalf("token slot must be cleared")
	}
	if notifier.last() != "session expired, please log in again" {
		t.Fatalf("message = %q", notifier.last())
	}
}

func TestPlaceOrder_SecondSubmissionRejectedWhileInFlight(t *testing.T) {
	a, st, _ := newTestApp(t, &fakeClient{})
	seedSession(t, a, st)

	a.mu.Lock()
	a.placing = true
	a.mu.Unlock()

	if err := a.PlaceOrder(context.Background(), "0100000000"); !errors.Is(err, ErrBusy) {
		t.Fatalf("error = %v, want ErrBusy", err)
	}
}

func TestFetchOrders_UnauthorizedClearsSlots(t *testing.T) {
	client := &fakeClient{listErr: &api.StatusError{Code: http.StatusUnauthorized}}
	a, st, notifier := newTestApp(t, client)
	seedSession(t, a, st)

	if _, err := a.FetchOrders(context.Background()); err == nil {
		t.Fatalf("expected error")
	}

	if a.Session().CurrentUser() != nil {
		t.Fatalf("401 must transition the session to anonymous")
	}
	if _, ok := st.LoadString(store.SlotToken); ok {
		t.Fatalf("token slot must be cleared")
	}
	if _, ok := st.LoadString(store.SlotUser); ok {
		t.Fatalf("user slot must be cleared")
	}
	if notifier.last() != "session expired, please log in again" {
		t.Fatalf("message = %q", notifier.last())
	}
	if a.View() != ViewLogin {
		t.Fatalf("view = %q, want login", a.View())
	}
}

func TestDeleteOrder_ForbiddenKeepsSession(t *testing.T) {
	client := &fakeClient{deleteErr: &api.StatusError{Code: http.StatusForbidden}}
	a, st, notifier := newTestApp(t, client)
	seedSession(t, a, st)

	if err := a.DeleteOrder(context.Background(), "42"); !errors.Is(err, api.ErrForbidden) {
		t.Fatalf("error = %v, want ErrForbidden", err)
	}

	if a.Session().CurrentUser() == nil {
		t.Fatalf("403 must not invalidate the session")
	}
	if notifier.last() != "you don't have permission to delete this order" {
		t.Fatalf("message = %q", notifier.last())
	}
}

func TestDeleteOrder_NotFoundRefreshesList(t *testing.T) {
	client := &fakeClient{deleteErr: &api.StatusError{Code: http.StatusNotFound}}
	a, st, notifier := newTestApp(t, client)
	seedSession(t, a, st)

	if err := a.DeleteOrder(context.Background(), "42"); !errors.Is(err, api.ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}

	if notifier.messages[0] != "order not found" {
		t.Fatalf("message = %q", notifier.messages[0])
	}
	if client.listCalls != 1 {
		t.Fatalf("404 on delete must refresh the order list")
	}
}

func TestDeleteOrder_SuccessRefreshesList(t *testing.T) {
	client := &fakeClient{orders: []model.Order{{ID: "o2"}}}
	a, st, _ := newTestApp(t, client)
	seedSession(t, a, st)

	if err := a.DeleteOrder(context.Background(), "o1"); err != nil {
		t.Fatalf("DeleteOrder error: %v", err)
	}
	if client.listCalls != 1 {
		t.Fatalf("successful delete must refresh the order list")
	}
	if got := a.Orders(); len(got) != 1 || got[0].ID != "o2" {
		t.Fatalf("orders cache = %+v, want refreshed list", got)
	}
}

func TestLogin_SuccessNavigatesToMenu(t *testing.T) {
	client := &fakeClient{creds: &api.Credentials{
		Token: "abc",
		User:  model.User{ID: 1, Name: "Demo", Email: "demo@example.com", Role: "customer"},
	}}
	a, st, _ := newTestApp(t, client)
	a.Navigate(ViewLogin)

	if err := a.Login(context.Background(), "demo@example.com", "demo123"); err != nil {
		t.Fatalf("Login error: %v", err)
	}

	if a.View() != ViewMenu {
		t.Fatalf("view = %q, want menu", a.View())
	}
	if token, ok := st.LoadString(store.SlotToken); !ok || token != "abc" {
		t.Fatalf("token slot = %q, %v", token, ok)
	}
}

func TestLogin_FallbackMessage(t *testing.T) {
	client := &fakeClient{loginErr: &api.StatusError{Code: http.StatusUnauthorized}}
	a, _, notifier := newTestApp(t, client)

	if err := a.Login(context.Background(), "demo@example.com", "wrong"); err == nil {
		t.Fatalf("expected error")
	}
	if notifier.last() != "invalid credentials" {
		t.Fatalf("message = %q, want generic fallback", notifier.last())
	}
}

func TestRegister_LocalValidationMessage(t *testing.T) {
	client := &fakeClient{}
	a, _, notifier := newTestApp(t, client)

	if err := a.Register(context.Background(), "Demo", "demo@example.com", "demo123", "other"); err == nil {
		t.Fatalf("expected error")
	}
	if notifier.last() != "passwords do not match" {
		t.Fatalf("message = %q", notifier.last())
	}
}

func TestNavigate_LoginUnreachableWhileAuthenticated(t *testing.T) {
	a, st, _ := newTestApp(t, &fakeClient{})
	seedSession(t, a, st)

	a.Navigate(ViewLogin)
	if a.View() != ViewMenu {
		t.Fatalf("view = %q, login must be unreachable while authenticated", a.View())
	}
}

func TestFilterMenu(t *testing.T) {
	client := &fakeClient{menu: []model.MenuItem{
		{ID: 1, Name: "Margherita Pizza", Price: "120"},
		{ID: 2, Name: "Classic Burger", Price: "95.50"},
	}}
	a, _, _ := newTestApp(t, client)

	if _, err := a.FetchMenu(context.Background()); err != nil {
		t.Fatalf("FetchMenu error: %v", err)
	}

	if got := a.FilterMenu("All"); len(got) != 2 {
		t.Fatalf("All must return the full listing, got %+v", got)
	}
	got := a.FilterMenu("pizza")
	if len(got) != 1 || got[0].Name != "Margherita Pizza" {
		t.Fatalf("filtered = %+v", got)
	}
}

func TestAddToCart_Notifies(t *testing.T) {
	a, _, notifier := newTestApp(t, &fakeClient{})

	if err := a.AddToCart(model.MenuItem{ID: 1, Name: "Margherita Pizza", Price: "120"}); err != nil {
		t.Fatalf("AddToCart error: %v", err)
	}
	if notifier.last() != "Margherita Pizza added to cart" {
		t.Fatalf("message = %q", notifier.last())
	}
	if a.Cart().Len() != 1 {
		t.Fatalf("cart must contain the added item")
	}
}
