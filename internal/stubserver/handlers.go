package stubserver

import (
	"crypto/sha256"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mmeshcher/foodiehub-client/internal/model"
)

type credentialsRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type credentialsResponse struct {
	Token string     `json:"token"`
	User  model.User `json:"user"`
}

// handleLogin выполняет вход по почте и паролю.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	s.mu.Lock()
	acc, ok := s.users[req.Email]
	s.mu.Unlock()

	if !ok || string(acc.passwordHash) != string(hashPassword(req.Email, req.Password)) {
		writeError(w, http.StatusUnauthorized, "invalid email or password")
		return
	}

	writeJSON(w, http.StatusOK, credentialsResponse{
		Token: s.auth.Issue(req.Email),
		User:  acc.user,
	})
}

// handleRegister регистрирует нового пользователя и сразу выпускает токен.
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	if req.Name == "" || req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "name, email and password are required")
		return
	}

	if len(req.Password) < 6 {
		writeError(w, http.StatusBadRequest, "password must be at least 6 characters")
		return
	}

	acc, created := s.createAccount(req.Name, req.Email, req.Password)
	if !created {
		writeError(w, http.StatusConflict, "email already registered")
		return
	}

	writeJSON(w, http.StatusOK, credentialsResponse{
		Token: s.auth.Issue(req.Email),
		User:  acc.user,
	})
}

// handleMenu возвращает листинг меню. Аутентификация не требуется.
func (s *Server) handleMenu(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.menu)
}

type createOrderRequest struct {
	CustomerName  string           `json:"customer_name"`
	CustomerPhone string           `json:"customer_phone"`
	Items         []model.CartItem `json:"items"`
	TotalPrice    float64          `json:"total_price"`
}

// handleCreateOrder создаёт заказ владельца токена.
func (s *Server) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	email, ok := emailFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing bearer token")
		return
	}

	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	if req.CustomerName == "" || req.CustomerPhone == "" {
		writeError(w, http.StatusBadRequest, "customer name and phone are required")
		return
	}
	if len(req.Items) == 0 {
		writeError(w, http.StatusBadRequest, "order has no items")
		return
	}

	encoded, err := json.Marshal(req.Items)
	if err != nil {
		s.logger.Error("encode order items", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	order := &storedOrder{
		ID:            uuid.NewString(),
		CustomerName:  req.CustomerName,
		CustomerPhone: req.CustomerPhone,
		Items:         string(encoded),
		TotalPrice:    req.TotalPrice,
		Status:        string(model.OrderStatusPending),
		OrderDate:     s.now().Format(time.RFC3339),
		owner:         email,
	}

	s.mu.Lock()
	s.orders = append(s.orders, order)
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, order)
}

// handleListOrders возвращает заказы владельца токена.
func (s *Server) handleListOrders(w http.ResponseWriter, r *http.Request) {
	email, ok := emailFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing bearer token")
		return
	}

	s.mu.Lock()
	orders := make([]*storedOrder, 0)
	for _, o := range s.orders {
		if o.owner == email {
			orders = append(orders, o)
		}
	}
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, orders)
}

// handleDeleteOrder удаляет заказ по идентификатору. Чужой заказ удалить
// нельзя: владелец другой почты получает 403.
func (s *Server) handleDeleteOrder(w http.ResponseWriter, r *http.Request) {
	email, ok := emailFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing bearer token")
		return
	}

	id := chi.URLParam(r, "id")

	s.mu.Lock()
	defer s.mu.Unlock()

	for i, o := range s.orders {
		if o.ID != id {
			continue
		}
		if o.owner != email {
			writeError(w, http.StatusForbidden, "you can only delete your own orders")
			return
		}
		s.orders = append(s.orders[:i], s.orders[i+1:]...)
		writeJSON(w, http.StatusOK, struct{}{})
		return
	}

	writeError(w, http.StatusNotFound, "order not found")
}

// createAccount создаёт учётную запись. Возвращает false, если почта
// уже занята.
func (s *Server) createAccount(name, email, password string) (*account, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.users[email]; exists {
		return nil, false
	}

	acc := &account{
		user: model.User{
			ID:    s.nextUserID,
			Name:  name,
			Email: email,
			Role:  "customer",
		},
		passwordHash: hashPassword(email, password),
	}
	s.nextUserID++
	s.users[email] = acc
	return acc, true
}

func hashPassword(email, password string) []byte {
	sum := sha256.Sum256([]byte(email + ":" + password))
	return sum[:]
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
