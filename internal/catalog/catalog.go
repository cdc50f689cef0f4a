// Package catalog provides the menu that line items are priced against.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ShiLuis/KapePOS/internal/domain"
	"github.com/cespare/xxhash/v2"
)

type Source interface {
	Items(ctx context.Context) ([]domain.MenuItem, error)
	Item(ctx context.Context, id string) (*domain.MenuItem, error)
}

// Available returns the items that may be added to a cart.
func Available(items []domain.MenuItem) []domain.MenuItem {
	out := make([]domain.MenuItem, 0, len(items))
	for _, it := range items {
		if it.Available {
			out = append(out, it)
		}
	}
	return out
}

// ETag is a strong HTTP entity tag over the JSON encoding of items.
func ETag(items []domain.MenuItem) (string, error) {
	data, err := json.Marshal(items)
	if err != nil {
		return "", fmt.Errorf("encode menu for etag: %w", err)
	}
	return fmt.Sprintf(`"%016x"`, xxhash.Sum64(data)), nil
}
