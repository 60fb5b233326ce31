package seeder

import (
	"context"
	"time"

	"github.com/uptrace/bun"
	"go.uber.org/zap"

	"github.com/meatline/meatline/internal/auth"
	"github.com/meatline/meatline/internal/database"
	"github.com/meatline/meatline/internal/entity"
	"github.com/meatline/meatline/internal/lifecycle"
	ordersvc "github.com/meatline/meatline/internal/service/order"
)

// Seeder performs database seeding for local/dev setups.
type Seeder struct {
	db     *bun.DB
	logger *zap.Logger
}

// New constructs a Seeder backed by the primary database connection.
func New(conns *database.Connections, logger *zap.Logger) *Seeder {
	return &Seeder{db: conns.Writer, logger: logger}
}

// All seeds accounts, catalog data, and a sample order.
func (s *Seeder) All(ctx context.Context) error {
	if err := s.Accounts(ctx); err != nil {
		return err
	}
	if err := s.Catalog(ctx); err != nil {
		return err
	}
	return s.Orders(ctx)
}

// Accounts seeds one login per role. Passwords match the usernames; these
// exist only so a fresh local stack is immediately usable.
func (s *Seeder) Accounts(ctx context.Context) error {
	samples := []struct {
		username string
		role     auth.Role
	}{
		{"agent", auth.RoleFieldAgent},
		{"warehouse", auth.RoleWarehouse},
		{"admin", auth.RoleAdmin},
	}

	now := time.Now().UTC()
	for _, sample := range samples {
		hash, err := auth.HashPassword(sample.username, 0)
		if err != nil {
			return err
		}
		account := entity.Account{
			Username:     sample.username,
			PasswordHash: hash,
			Role:         sample.role,
			IsActive:     true,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		_, err = s.db.NewInsert().Model(&account).
			On("CONFLICT (username) DO NOTHING").
			Exec(ctx)
		if err != nil {
			return err
		}
	}

	if s.logger != nil {
		s.logger.Info("seeded accounts", zap.Int("count", len(samples)))
	}
	return nil
}

// Catalog seeds a handful of customers and products if they are missing.
func (s *Seeder) Catalog(ctx context.Context) error {
	now := time.Now().UTC()

	customers := []entity.Customer{
		{Name: "North Butchery", Code: "C-100", Phone: "050-1111111", Address: "12 Market St", ContactPerson: "Yossi", CreatedAt: now},
		{Name: "Harbor Grill", Code: "C-101", Phone: "050-2222222", Address: "3 Pier Rd", ContactPerson: "Dana", CreatedAt: now},
	}
	for _, sample := range customers {
		customer := sample
		_, err := s.db.NewInsert().Model(&customer).
			On("CONFLICT (code) DO NOTHING").
			Exec(ctx)
		if err != nil {
			return err
		}
	}

	products := []entity.Product{
		{Name: "Beef entrecote", Category: "beef", Unit: "kg", IsActive: true, CreatedAt: now},
		{Name: "Chicken breast", Category: "poultry", Unit: "kg", IsActive: true, CreatedAt: now},
		{Name: "Lamb shoulder", Category: "lamb", Unit: "kg", IsActive: true, CreatedAt: now},
	}
	for _, sample := range products {
		product := sample
		_, err := s.db.NewInsert().Model(&product).
			On("CONFLICT (name) DO NOTHING").
			Exec(ctx)
		if err != nil {
			return err
		}
	}

	if s.logger != nil {
		s.logger.Info("seeded catalog",
			zap.Int("customers", len(customers)),
			zap.Int("products", len(products)),
		)
	}
	return nil
}

// Orders seeds one example order against the seeded catalog.
func (s *Seeder) Orders(ctx context.Context) error {
	var customer entity.Customer
	if err := s.db.NewSelect().Model(&customer).Where("code = ?", "C-100").Scan(ctx); err != nil {
		return err
	}
	var product entity.Product
	if err := s.db.NewSelect().Model(&product).Where("name = ?", "Beef entrecote").Scan(ctx); err != nil {
		return err
	}

	count, err := s.db.NewSelect().Model((*entity.Order)(nil)).Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	now := time.Now().UTC()
	order := entity.Order{
		Number:       ordersvc.GenerateNumber(),
		CustomerID:   customer.ID,
		Status:       lifecycle.StatusNew,
		DeliveryDate: now.AddDate(0, 0, 2),
		Notes:        "seed order",
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err = s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(&order).Exec(ctx); err != nil {
			return err
		}
		item := entity.OrderItem{
			OrderID:   order.ID,
			ProductID: product.ID,
			Quantity:  12,
		}
		_, err := tx.NewInsert().Model(&item).Exec(ctx)
		return err
	})
	if err != nil {
		return err
	}

	if s.logger != nil {
		s.logger.Info("seeded orders", zap.String("number", order.Number))
	}
	return nil
}
