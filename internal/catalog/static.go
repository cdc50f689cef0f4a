package catalog

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/ShiLuis/KapePOS/internal/domain"
)

//go:embed products.json
var staticProducts []byte

// StaticSource serves the menu bundled with the binary. It is used when the
// menu store is unreachable or CATALOG_MODE=static.
type StaticSource struct {
	items []domain.MenuItem
	byID  map[string]int
}

func NewStaticSource() (*StaticSource, error) {
	return NewStaticSourceFromJSON(staticProducts)
}

func NewStaticSourceFromJSON(data []byte) (*StaticSource, error) {
	var items []domain.MenuItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("decode static menu: %w", err)
	}
	byID := make(map[string]int, len(items))
	for i, it := range items {
		byID[it.ID] = i
	}
	return &StaticSource{items: items, byID: byID}, nil
}

func (s *StaticSource) Items(context.Context) ([]domain.MenuItem, error) {
	return append([]domain.MenuItem(nil), s.items...), nil
}

func (s *StaticSource) Item(_ context.Context, id string) (*domain.MenuItem, error) {
	i, ok := s.byID[id]
	if !ok {
		return nil, domain.ErrMenuItemNotFound
	}
	item := s.items[i]
	return &item, nil
}
