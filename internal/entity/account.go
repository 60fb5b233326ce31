package entity

import (
	"time"

	"github.com/uptrace/bun"

	"github.com/meatline/meatline/internal/auth"
)

// Account is a login record. PasswordHash holds a bcrypt hash; inactive
// accounts cannot log in but keep their history.
type Account struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID           int64     `bun:",pk,autoincrement"`
	Username     string    `bun:"username"`
	PasswordHash string    `bun:"password_hash"`
	Role         auth.Role `bun:"role"`
	IsActive     bool      `bun:"is_active"`
	CreatedAt    time.Time `bun:"created_at,nullzero,notnull,default:CURRENT_TIMESTAMP"`
	UpdatedAt    time.Time `bun:"updated_at,nullzero"`
}
