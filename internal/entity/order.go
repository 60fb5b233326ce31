package entity

import (
	"time"

	"github.com/uptrace/bun"

	"github.com/meatline/meatline/internal/lifecycle"
)

// Order represents a customer order stored in the relational database.
type Order struct {
	bun.BaseModel `bun:"table:orders,alias:o"`

	ID           int64            `bun:",pk,autoincrement"`
	Number       string           `bun:"order_number"`
	CustomerID   int64            `bun:"customer_id"`
	Status       lifecycle.Status `bun:"status"`
	DeliveryDate time.Time        `bun:"delivery_date"`
	Notes        string           `bun:"notes"`
	CreatedAt    time.Time        `bun:"created_at,nullzero,notnull,default:CURRENT_TIMESTAMP"`
	UpdatedAt    time.Time        `bun:"updated_at,nullzero"`

	Customer *Customer    `bun:"rel:belongs-to,join:customer_id=id"`
	Items    []*OrderItem `bun:"rel:has-many,join:id=order_id"`
}

// OrderItem is a single product line on an order. Weight is free-form text
// because meat cuts are often ordered by approximate weight rather than
// piece count.
type OrderItem struct {
	bun.BaseModel `bun:"table:order_items,alias:oi"`

	ID        int64   `bun:",pk,autoincrement"`
	OrderID   int64   `bun:"order_id"`
	ProductID int64   `bun:"product_id"`
	Quantity  float64 `bun:"quantity"`
	Weight    string  `bun:"weight,nullzero"`
	Notes     string  `bun:"notes,nullzero"`

	Product *Product `bun:"rel:belongs-to,join:product_id=id"`
}
