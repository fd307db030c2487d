package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mmeshcher/foodiehub-client/internal/model"
)

func TestLogin_OK(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Fatalf("method = %s, want POST", r.Method)
		}
		if r.URL.Path != "/api/login" {
			t.Fatalf("path = %s, want /api/login", r.URL.Path)
		}

		var req map[string]string
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req["email"] != "demo@example.com" || req["password"] != "demo123" {
			t.Fatalf("unexpected credentials: %+v", req)
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(Credentials{
			Token: "abc",
			User:  model.User{ID: 1, Name: "Demo", Email: "demo@example.com", Role: "customer"},
		})
	}))
	defer ts.Close()

	client := NewClient(ts.URL)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	creds, err := client.Login(ctx, "demo@example.com", "demo123")
	if err != nil {
		t.Fatalf("Login error: %v", err)
	}
	if creds.Token != "abc" || creds.User.Name != "Demo" {
		t.Fatalf("unexpected credentials: %+v", creds)
	}
}

func TestLogin_ServerMessage(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"invalid email or password"}`))
	}))
	defer ts.Close()

	client := NewClient(ts.URL)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	_, err := client.Login(ctx, "demo@example.com", "wrong")
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if got := ErrorMessage(err, "fallback"); got != "invalid email or password" {
		t.Fatalf("ErrorMessage = %q, want server message", got)
	}
}

func TestErrorMessage_Fallback(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer ts.Close()

	client := NewClient(ts.URL)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	_, err := client.Menu(ctx)
	if err == nil {
		t.Fatalf("expected error for 500")
	}
	if got := ErrorMessage(err, "failed to load menu"); got != "failed to load menu" {
		t.Fatalf("ErrorMessage = %q, want fallback", got)
	}
}

func TestCreateOrder_BearerToken(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer abc" {
			t.Fatalf("Authorization = %q, want Bearer abc", got)
		}

		var req OrderRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.TotalPrice != 165.5 || len(req.Items) != 2 {
			t.Fatalf("unexpected request: %+v", req)
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"o1","customer_name":"Demo","status":"pending"}`))
	}))
	defer ts.Close()

	client := NewClient(ts.URL)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	order, err := client.CreateOrder(ctx, "abc", OrderRequest{
		CustomerName:  "Demo",
		CustomerPhone: "0100000000",
		Items: []model.CartItem{
			{Name: "Pizza", Price: "120"},
			{Name: "Burger", Price: "45.50"},
		},
		TotalPrice: 165.5,
	})
	if err != nil {
		t.Fatalf("CreateOrder error: %v", err)
	}
	if string(order.ID) != "o1" || order.Status != model.OrderStatusPending {
		t.Fatalf("unexpected order: %+v", order)
	}
}

func TestListOrders_EncodedItems(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id":1,"items":"[{\"name\":\"Pizza\",\"price\":\"120\"}]","total_price":120}]`))
	}))
	defer ts.Close()

	client := NewClient(ts.URL)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	orders, err := client.ListOrders(ctx, "abc")
	if err != nil {
		t.Fatalf("ListOrders error: %v", err)
	}
	if len(orders) != 1 || len(orders[0].Items) != 1 || orders[0].Items[0].Name != "Pizza" {
		t.Fatalf("unexpected orders: %+v", orders)
	}
}

func TestDeleteOrder_StatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   error
	}{
		{name: "unauthorized", status: http.StatusUnauthorized, want: ErrUnauthorized},
		{name: "forbidden", status: http.StatusForbidden, want: ErrForbidden},
		{name: "not found", status: http.StatusNotFound, want: ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodDelete || r.URL.Path != "/api/orders/42" {
					t.Fatalf("unexpected request: %s %s", r.Method, r.URL.Path)
				}
				w.WriteHeader(tt.status)
			}))
			defer ts.Close()

			client := NewClient(ts.URL)

			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()

			err := client.DeleteOrder(ctx, "abc", "42")
			if !errors.Is(err, tt.want) {
				t.Fatalf("error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestNewClient_SchemeNormalization(t *testing.T) {
	client := NewClient("localhost:5000/")
	if client.baseURL != "http://localhost:5000" {
		t.Fatalf("baseURL = %q, want http://localhost:5000", client.baseURL)
	}
}

func TestClient_NotConfigured(t *testing.T) {
	client := NewClient("")

	_, err := client.Menu(context.Background())
	if err == nil {
		t.Fatalf("expected error for unconfigured client")
	}
}
