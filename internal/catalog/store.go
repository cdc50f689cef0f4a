package catalog

import (
	"context"
	"errors"

	"github.com/ShiLuis/KapePOS/internal/cache"
	"github.com/ShiLuis/KapePOS/internal/domain"
	"github.com/rs/zerolog"
)

type MenuStore interface {
	List(ctx context.Context) ([]domain.MenuItem, error)
	Get(ctx context.Context, id string) (*domain.MenuItem, error)
}

// StoreSource reads the menu from the menu repository, keeping the full list
// in the menu cache when one is configured.
type StoreSource struct {
	store MenuStore
	cache cache.MenuCache
	log   zerolog.Logger
}

func NewStoreSource(store MenuStore, menuCache cache.MenuCache, log zerolog.Logger) *StoreSource {
	return &StoreSource{store: store, cache: menuCache, log: log}
}

func (s *StoreSource) Items(ctx context.Context) ([]domain.MenuItem, error) {
	if s.cache != nil {
		items, err := s.cache.GetMenu(ctx)
		if err == nil {
			return items, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			s.log.Warn().Err(err).Msg("menu cache read failed")
		}
	}

	items, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetMenu(ctx, items); err != nil {
			s.log.Warn().Err(err).Msg("menu cache write failed")
		}
	}
	return items, nil
}

// Item always reads the store so stock and availability are current.
func (s *StoreSource) Item(ctx context.Context, id string) (*domain.MenuItem, error) {
	return s.store.Get(ctx, id)
}
