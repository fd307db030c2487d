// Package api предоставляет HTTP-клиент внешнего сервера FoodieHub.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mmeshcher/foodiehub-client/internal/model"
)

// Ошибки классов ответов сервера. Проверяются через errors.Is; конкретный
// текст сервера доступен через StatusError.
var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
)

// StatusError описывает неуспешный ответ сервера вместе с сообщением
// из тела ответа, если сервер его прислал.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api: status %d: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("api: status %d", e.Code)
}

// Unwrap сопоставляет код ответа с ошибкой класса.
func (e *StatusError) Unwrap() error {
	switch e.Code {
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusForbidden:
		return ErrForbidden
	case http.StatusNotFound:
		return ErrNotFound
	}
	return nil
}

// ErrorMessage извлекает текст сообщения сервера из ошибки клиента.
// Если сервер сообщения не прислал или ошибка транспортная, возвращается
// fallback.
func ErrorMessage(err error, fallback string) string {
	var se *StatusError
	if errors.As(err, &se) && se.Message != "" {
		return se.Message
	}
	return fallback
}

// Client инкапсулирует HTTP-взаимодействие с сервером FoodieHub.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient создаёт клиент для сервера по указанному базовому адресу.
func NewClient(baseURL string) *Client {
	base := strings.TrimRight(baseURL, "/")
	if base != "" && !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		base = "http://" + base
	}

	return &Client{
		baseURL: base,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Credentials содержит токен и профиль пользователя из ответа на вход
// или регистрацию.
type Credentials struct {
	Token string     `json:"token"`
	User  model.User `json:"user"`
}

// OrderRequest описывает тело запроса на создание заказа.
type OrderRequest struct {
	CustomerName  string           `json:"customer_name"`
	CustomerPhone string           `json:"customer_phone"`
	Items         []model.CartItem `json:"items"`
	TotalPrice    float64          `json:"total_price"`
}

// Login выполняет вход по почте и паролю.
func (c *Client) Login(ctx context.Context, email, password string) (*Credentials, error) {
	body := map[string]string{"email": email, "password": password}

	var creds Credentials
	if err := c.do(ctx, http.MethodPost, "/login", "", body, &creds); err != nil {
		return nil, err
	}
	return &creds, nil
}

// Register регистрирует нового пользователя.
func (c *Client) Register(ctx context.Context, name, email, password string) (*Credentials, error) {
	body := map[string]string{"name": name, "email": email, "password": password}

	var creds Credentials
	if err := c.do(ctx, http.MethodPost, "/register", "", body, &creds); err != nil {
		return nil, err
	}
	return &creds, nil
}

// Menu запрашивает листинг меню. Аутентификация не требуется.
func (c *Client) Menu(ctx context.Context) ([]model.MenuItem, error) {
	var items []model.MenuItem
	if err := c.do(ctx, http.MethodGet, "/menu", "", nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// CreateOrder отправляет заказ на сервер от имени владельца токена.
func (c *Client) CreateOrder(ctx context.Context, token string, req OrderRequest) (*model.Order, error) {
	var order model.Order
	if err := c.do(ctx, http.MethodPost, "/orders", token, req, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// ListOrders возвращает заказы владельца токена.
func (c *Client) ListOrders(ctx context.Context, token string) ([]model.Order, error) {
	var orders []model.Order
	if err := c.do(ctx, http.MethodGet, "/orders", token, nil, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// DeleteOrder удаляет заказ по идентификатору.
func (c *Client) DeleteOrder(ctx context.Context, token, id string) error {
	var discard json.RawMessage
	return c.do(ctx, http.MethodDelete, "/orders/"+id, token, nil, &discard)
}

// do выполняет один запрос к серверу: кодирует тело, прикладывает
// bearer-токен, сопоставляет неуспешные статусы с ошибками классов и
// декодирует успешный ответ в out. Повторы не выполняются.
func (c *Client) do(ctx context.Context, method, path, token string, body, out any) error {
	if c == nil || c.baseURL == "" {
		return errors.New("api client not configured")
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	url := c.baseURL + "/api" + path

	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return &StatusError{
			Code:    resp.StatusCode,
			Message: decodeMessage(resp.Body),
		}
	}

	if out == nil {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// decodeMessage достаёт сообщение об ошибке из тела ответа. Сервер
// присылает его в поле error либо message.
func decodeMessage(r io.Reader) string {
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(r).Decode(&payload); err != nil {
		return ""
	}
	if payload.Error != "" {
		return payload.Error
	}
	return payload.Message
}
