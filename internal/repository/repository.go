package repository

import (
	"context"
	"time"

	"github.com/ShiLuis/KapePOS/internal/domain"
)

// CartRepository stores one cart document per terminal. Writes replace the
// whole document.
type CartRepository interface {
	GetCart(ctx context.Context, terminalID string) (*domain.Cart, error)
	SaveCart(ctx context.Context, cart *domain.Cart) error
	DeleteCart(ctx context.Context, terminalID string) error
}

// OrderRepository is implemented by both the Mongo and the Postgres store.
// Create returns domain.ErrDuplicateOrder when the order number is taken.
type OrderRepository interface {
	Create(ctx context.Context, order *domain.Order) error
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	GetByNumber(ctx context.Context, number string) (*domain.Order, error)
	// ListByDateRange returns orders created in [from, to], newest first.
	ListByDateRange(ctx context.Context, from, to time.Time) ([]domain.Order, error)
	List(ctx context.Context, limit int64) ([]domain.Order, error)
}

type MenuRepository interface {
	List(ctx context.Context) ([]domain.MenuItem, error)
	Get(ctx context.Context, id string) (*domain.MenuItem, error)
	Create(ctx context.Context, item *domain.MenuItem) error
	Update(ctx context.Context, item *domain.MenuItem) error
	Delete(ctx context.Context, id string) error
	SetStock(ctx context.Context, id string, stock int) (*domain.MenuItem, error)
	// AdjustStock applies each adjustment on its own; one failing item does
	// not stop the others.
	AdjustStock(ctx context.Context, adjustments []domain.StockAdjustment) []domain.StockResult
}

// Credentials configure the Postgres order store.
type Credentials struct {
	Host              string
	Port              int
	User              string
	Password          string
	DBName            string
	MigrationsDirPath string
}
