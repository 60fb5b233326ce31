package entity

import (
	"time"

	"github.com/uptrace/bun"
)

// Customer is a buyer in the catalog that field agents order against.
type Customer struct {
	bun.BaseModel `bun:"table:customers,alias:c"`

	ID            int64     `bun:",pk,autoincrement"`
	Name          string    `bun:"name"`
	Code          string    `bun:"code,nullzero"`
	Phone         string    `bun:"phone,nullzero"`
	Address       string    `bun:"address,nullzero"`
	ContactPerson string    `bun:"contact_person,nullzero"`
	CreatedAt     time.Time `bun:"created_at,nullzero,notnull,default:CURRENT_TIMESTAMP"`
}

// Product is a sellable catalog item. Inactive products stay referenced by
// historical order items but are hidden from new orders.
type Product struct {
	bun.BaseModel `bun:"table:products,alias:p"`

	ID        int64     `bun:",pk,autoincrement"`
	Name      string    `bun:"name"`
	Category  string    `bun:"category"`
	Unit      string    `bun:"unit"`
	IsActive  bool      `bun:"is_active"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:CURRENT_TIMESTAMP"`
}
