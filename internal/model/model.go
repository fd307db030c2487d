// Package model содержит доменные сущности клиента FoodieHub.
package model

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// User представляет профиль пользователя, возвращаемый сервером при входе.
type User struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
	Phone string `json:"phone,omitempty"`
}

// MenuItem описывает одну позицию меню из листинга сервера.
type MenuItem struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Price Price  `json:"price"`
	Image string `json:"image"`
}

// CartItem описывает одну позицию корзины. Позиции не дедуплицируются:
// одно и то же блюдо, добавленное дважды, даёт две записи.
type CartItem struct {
	Name  string `json:"name"`
	Price Price  `json:"price"`
	Image string `json:"image,omitempty"`
}

// OrderStatus описывает статус обработки заказа на стороне сервера.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// Order описывает запись заказа в том виде, в котором её отдаёт сервер.
type Order struct {
	ID            FlexID      `json:"id"`
	CustomerName  string      `json:"customer_name"`
	CustomerPhone string      `json:"customer_phone"`
	Items         LineItems   `json:"items"`
	TotalPrice    Price       `json:"total_price"`
	Status        OrderStatus `json:"status,omitempty"`
	OrderDate     string      `json:"order_date,omitempty"`
}

// DisplayStatus возвращает статус заказа, подставляя "pending" при его отсутствии.
func (o *Order) DisplayStatus() OrderStatus {
	if o.Status == "" {
		return OrderStatusPending
	}
	return o.Status
}

// Price хранит цену в исходном текстовом виде. Сервер присылает цену то
// числом, то строкой; значение разбирается в число только по требованию.
type Price string

// UnmarshalJSON принимает как JSON-число, так и строку с числом.
func (p *Price) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*p = Price(s)
		return nil
	}
	if bytes.Equal(data, []byte("null")) {
		*p = ""
		return nil
	}
	*p = Price(data)
	return nil
}

// MarshalJSON сериализует цену как строку, сохраняя исходный текст.
func (p Price) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(p))
}

// Float разбирает цену как десятичное число.
func (p Price) Float() (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(string(p)), 64)
}

// FlexID хранит идентификатор записи, который сервер присылает то числом,
// то строкой.
type FlexID string

// UnmarshalJSON принимает число или строку.
func (id *FlexID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = FlexID(s)
		return nil
	}
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	*id = FlexID(data)
	return nil
}

// MarshalJSON сериализует идентификатор как строку.
func (id FlexID) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(id))
}

// LineItems содержит позиции заказа. Сервер присылает их либо готовым
// массивом, либо строкой с JSON-кодированным массивом; ошибка разбора
// трактуется как отсутствие позиций, а не как фатальная ошибка.
type LineItems []CartItem

// UnmarshalJSON нормализует оба представления к массиву.
func (li *LineItems) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	*li = nil

	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}

	if data[0] == '"' {
		var encoded string
		if err := json.Unmarshal(data, &encoded); err != nil {
			return nil
		}
		data = []byte(encoded)
	}

	var items []CartItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil
	}

	*li = items
	return nil
}
