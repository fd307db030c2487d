// Package stubserver реализует заглушку сервера FoodieHub в памяти.
//
// Заглушка покрывает контракт API, которого клиент ожидает от внешнего
// сервера: вход, регистрацию, листинг меню и операции над заказами.
// Данные живут только в памяти процесса; она предназначена для локальной
// разработки и сквозных тестов, а не для эксплуатации.
package stubserver

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/mmeshcher/foodiehub-client/internal/model"
)

type contextKey string

const emailKey contextKey = "email"

type account struct {
	user         model.User
	passwordHash []byte
}

// storedOrder хранит заказ так, как его хранит боевой сервер: позиции
// записаны строкой с JSON-кодированным массивом.
type storedOrder struct {
	ID            string  `json:"id"`
	CustomerName  string  `json:"customer_name"`
	CustomerPhone string  `json:"customer_phone"`
	Items         string  `json:"items"`
	TotalPrice    float64 `json:"total_price"`
	Status        string  `json:"status"`
	OrderDate     string  `json:"order_date"`

	owner string
}

// Server содержит состояние заглушки: пользователей, заказы и меню.
type Server struct {
	logger *zap.Logger
	auth   *TokenAuthority
	now    func() time.Time

	mu         sync.Mutex
	users      map[string]*account
	orders     []*storedOrder
	nextUserID int64

	menu []model.MenuItem
}

// NewServer создаёт заглушку с демонстрационным пользователем
// demo@example.com / demo123 и фиксированным меню.
func NewServer(logger *zap.Logger, secret string) *Server {
	s := &Server{
		logger:     logger,
		auth:       NewTokenAuthority(secret),
		now:        time.Now,
		users:      make(map[string]*account),
		nextUserID: 1,
		menu:       seedMenu(),
	}

	_, _ = s.createAccount("Demo", "demo@example.com", "demo123")

	return s
}

// Router настраивает HTTP-маршруты заглушки.
func (s *Server) Router() *chi.Mux {
	r := chi.NewRouter()

	r.Use(requestLogger(s.logger))

	r.Route("/api", func(r chi.Router) {
		r.Post("/login", s.handleLogin)
		r.Post("/register", s.handleRegister)
		r.Get("/menu", s.handleMenu)

		r.Group(func(r chi.Router) {
			r.Use(s.withAuth)

			r.Post("/orders", s.handleCreateOrder)
			r.Get("/orders", s.handleListOrders)
			r.Delete("/orders/{id}", s.handleDeleteOrder)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "resource not found")
	})

	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	return r
}

// withAuth проверяет bearer-токен и добавляет почту его владельца в
// контекст запроса.
func (s *Server) withAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			writeError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}

		email, ok := s.auth.Verify(token)
		if !ok {
			writeError(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}

		s.mu.Lock()
		_, exists := s.users[email]
		s.mu.Unlock()
		if !exists {
			writeError(w, http.StatusUnauthorized, "unknown account")
			return
		}

		ctx := context.WithValue(r.Context(), emailKey, email)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requestLogger логирует метод, путь, статус и длительность каждого запроса.
func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(rec, r)

			logger.Info("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", rec.status),
				zap.Duration("duration", time.Since(start)),
			)
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func emailFromContext(ctx context.Context) (string, bool) {
	email, ok := ctx.Value(emailKey).(string)
	return email, ok
}

func seedMenu() []model.MenuItem {
	return []model.MenuItem{
		{ID: 1, Name: "Margherita Pizza", Price: "120", Image: "/images/margherita.jpg"},
		{ID: 2, Name: "Pepperoni Pizza", Price: "150", Image: "/images/pepperoni.jpg"},
		{ID: 3, Name: "Classic Burger", Price: "95.50", Image: "/images/classic-burger.jpg"},
		{ID: 4, Name: "Cheese Burger", Price: "110", Image: "/images/cheese-burger.jpg"},
		{ID: 5, Name: "Pasta Carbonara", Price: "130", Image: "/images/carbonara.jpg"},
		{ID: 6, Name: "Chocolate Dessert", Price: "75", Image: "/images/chocolate.jpg"},
	}
}
