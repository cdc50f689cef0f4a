package service

import (
	"context"
	"fmt"
	"time"

	"github.com/ShiLuis/KapePOS/internal/cache"
	"github.com/ShiLuis/KapePOS/internal/catalog"
	"github.com/ShiLuis/KapePOS/internal/domain"
	"github.com/ShiLuis/KapePOS/internal/repository"
	"github.com/rs/zerolog"
)

// MenuPatch carries the fields of a partial menu item update; nil fields are
// left unchanged.
type MenuPatch struct {
	Name        *string               `json:"name"`
	Price       *float64              `json:"price"`
	Category    *domain.Category      `json:"category"`
	Description *string               `json:"description"`
	Image       *string               `json:"image"`
	Available   *bool                 `json:"available"`
	Options     *[]domain.OptionGroup `json:"options"`
	Addons      *[]domain.Addon       `json:"addons"`
}

func (p MenuPatch) apply(item *domain.MenuItem) {
	if p.Name != nil {
		item.Name = *p.Name
	}
	if p.Price != nil {
		item.Price = *p.Price
	}
	if p.Category != nil {
		item.Category = *p.Category
	}
	if p.Description != nil {
		item.Description = *p.Description
	}
	if p.Image != nil {
		item.Image = *p.Image
	}
	if p.Available != nil {
		item.Available = *p.Available
	}
	if p.Options != nil {
		item.Options = *p.Options
	}
	if p.Addons != nil {
		item.Addons = *p.Addons
	}
}

type MenuService struct {
	repo   repository.MenuRepository
	cache  cache.MenuCache
	source catalog.Source
	log    zerolog.Logger
}

// NewMenuService serves reads from source and writes to repo. menuCache may be
// nil.
func NewMenuService(repo repository.MenuRepository, menuCache cache.MenuCache, source catalog.Source, log zerolog.Logger) *MenuService {
	return &MenuService{repo: repo, cache: menuCache, source: source, log: log}
}

// Menu returns the available items and their entity tag.
func (s *MenuService) Menu(ctx context.Context) ([]domain.MenuItem, string, error) {
	items, err := s.source.Items(ctx)
	if err != nil {
		return nil, "", err
	}
	items = catalog.Available(items)
	etag, err := catalog.ETag(items)
	if err != nil {
		return nil, "", err
	}
	return items, etag, nil
}

func (s *MenuService) Item(ctx context.Context, id string) (*domain.MenuItem, error) {
	return s.source.Item(ctx, id)
}

// All lists every item including unavailable ones.
func (s *MenuService) All(ctx context.Context) ([]domain.MenuItem, error) {
	return s.repo.List(ctx)
}

func (s *MenuService) Create(ctx context.Context, item *domain.MenuItem) error {
	if err := item.Validate(); err != nil {
		return err
	}
	if err := s.repo.Create(ctx, item); err != nil {
		return err
	}
	s.invalidate()
	return nil
}

// Seed writes items when the menu collection is empty and returns how many
// were stored. Item ids are kept so the bundled menu and the stored one agree.
func (s *MenuService) Seed(ctx context.Context, items []domain.MenuItem) (int, error) {
	existing, err := s.repo.List(ctx)
	if err != nil {
		return 0, err
	}
	if len(existing) > 0 {
		return 0, nil
	}

	for i := range items {
		item := items[i]
		if err := item.Validate(); err != nil {
			return i, fmt.Errorf("seed %q: %w", item.ID, err)
		}
		if err := s.repo.Create(ctx, &item); err != nil {
			return i, fmt.Errorf("seed %q: %w", item.ID, err)
		}
	}
	s.invalidate()
	return len(items), nil
}

func (s *MenuService) Update(ctx context.Context, id string, patch MenuPatch) (*domain.MenuItem, error) {
	item, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	patch.apply(item)
	if err := item.Validate(); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, item); err != nil {
		return nil, err
	}
	s.invalidate()
	return item, nil
}

func (s *MenuService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate()
	return nil
}

func (s *MenuService) SetStock(ctx context.Context, id string, stock int) (*domain.MenuItem, error) {
	if stock < 0 {
		return nil, fmt.Errorf("%w: stock must not be negative", domain.ErrInvalidMenuItem)
	}
	item, err := s.repo.SetStock(ctx, id, stock)
	if err != nil {
		return nil, err
	}
	s.invalidate()
	return item, nil
}

// AdjustStock applies stock deltas item by item and reports each outcome.
func (s *MenuService) AdjustStock(ctx context.Context, adjustments []domain.StockAdjustment) []domain.StockResult {
	if len(adjustments) == 0 {
		return nil
	}
	results := s.repo.AdjustStock(ctx, adjustments)
	s.invalidate()
	return results
}

func (s *MenuService) invalidate() {
	if s.cache == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.cache.InvalidateMenu(ctx); err != nil {
		s.log.Warn().Err(err).Msg("menu cache invalidate failed")
	}
}
