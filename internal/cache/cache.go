package cache

import (
	"context"
	"errors"

	"github.com/ShiLuis/KapePOS/internal/domain"
)

type CartCache interface {
	Get(ctx context.Context, terminalID string) (*domain.Cart, error)
	Set(ctx context.Context, terminalID string, cart *domain.Cart) error
	Delete(ctx context.Context, terminalID string) error
}

// MenuCache holds the full menu list in front of the catalog source.
type MenuCache interface {
	GetMenu(ctx context.Context) ([]domain.MenuItem, error)
	SetMenu(ctx context.Context, items []domain.MenuItem) error
	InvalidateMenu(ctx context.Context) error
}

var ErrCacheMiss = errors.New("cache miss")
