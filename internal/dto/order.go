package dto

import "time"

// OrderResponse represents an order as exposed via transport layers.
type OrderResponse struct {
	ID            int64               `json:"id"`
	Number        string              `json:"order_number"`
	CustomerID    int64               `json:"customer_id"`
	Status        string              `json:"status"`
	StatusTargets []string            `json:"status_targets,omitempty"`
	Editable      bool                `json:"editable"`
	DeliveryDate  time.Time           `json:"delivery_date"`
	Notes         string              `json:"notes,omitempty"`
	Customer      *CustomerResponse   `json:"customer,omitempty"`
	Items         []OrderItemResponse `json:"items,omitempty"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
}

// OrderItemResponse is a single product line on an order.
type OrderItemResponse struct {
	ProductID   int64   `json:"product_id"`
	ProductName string  `json:"product_name,omitempty"`
	Category    string  `json:"category,omitempty"`
	Unit        string  `json:"unit,omitempty"`
	Quantity    float64 `json:"quantity"`
	Weight      string  `json:"weight,omitempty"`
	Notes       string  `json:"notes,omitempty"`
}

// OrderItemRequest is an item line as submitted by a field agent.
type OrderItemRequest struct {
	ProductID int64   `json:"product_id"`
	Quantity  float64 `json:"quantity"`
	Weight    string  `json:"weight,omitempty"`
	Notes     string  `json:"notes,omitempty"`
}

// CreateOrderRequest is the payload for submitting a new order.
type CreateOrderRequest struct {
	CustomerID   int64              `json:"customer_id"`
	DeliveryDate time.Time          `json:"delivery_date"`
	Notes        string             `json:"notes,omitempty"`
	Items        []OrderItemRequest `json:"items"`
}

// UpdateOrderRequest is the payload for editing an order that is still new.
type UpdateOrderRequest struct {
	CustomerID   int64              `json:"customer_id"`
	DeliveryDate time.Time          `json:"delivery_date"`
	Notes        string             `json:"notes,omitempty"`
	Items        []OrderItemRequest `json:"items"`
}

// UpdateStatusRequest asks for a status transition.
type UpdateStatusRequest struct {
	Status string `json:"status"`
}
