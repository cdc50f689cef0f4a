package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ShiLuis/KapePOS/internal/cache"
	"github.com/ShiLuis/KapePOS/internal/catalog"
	"github.com/ShiLuis/KapePOS/internal/domain"
	"github.com/ShiLuis/KapePOS/internal/pricing"
	"github.com/ShiLuis/KapePOS/internal/repository"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

type CartService struct {
	repo    repository.CartRepository
	cache   cache.CartCache
	menu    catalog.Source
	taxRate float64
	log     zerolog.Logger

	sfg   singleflight.Group // collapses concurrent cache misses per terminal
	locks terminalLocks
}

func NewCartService(repo repository.CartRepository, cartCache cache.CartCache, menu catalog.Source, taxRate float64, log zerolog.Logger) *CartService {
	return &CartService{
		repo:    repo,
		cache:   cartCache,
		menu:    menu,
		taxRate: taxRate,
		log:     log,
	}
}

func (s *CartService) TaxRate() float64 {
	return s.taxRate
}

// Totals computes the unrounded totals of cart at the configured tax rate.
func (s *CartService) Totals(cart *domain.Cart) domain.Totals {
	return cart.Totals(s.taxRate)
}

// GetCart returns the terminal's cart, or a new empty cart when none is stored.
func (s *CartService) GetCart(ctx context.Context, terminalID string) (*domain.Cart, error) {
	v, err, _ := s.sfg.Do(terminalID, func() (interface{}, error) {
		cart, err := s.cache.Get(ctx, terminalID)
		if err == nil {
			return cart, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			s.log.Warn().Err(err).Str("terminal_id", terminalID).Msg("cart cache get failed")
		}

		cart, err = s.repo.GetCart(ctx, terminalID)
		if errors.Is(err, domain.ErrCartNotFound) {
			return domain.NewCart(terminalID), nil
		}
		if err != nil {
			return nil, err
		}

		toCache := cart.Clone()
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			if err := s.cache.Set(ctx, terminalID, toCache); err != nil {
				s.log.Warn().Err(err).Str("terminal_id", terminalID).Msg("cart cache set failed")
			}
		}()
		return cart, nil
	})
	if err != nil {
		return nil, err
	}
	// callers sharing a singleflight result must not share the cart
	cart := v.(*domain.Cart).Clone()
	if cart.CheckedOut() {
		cart.Clear()
	}
	return cart, nil
}

// AddItem prices the menu item with sel and merges it into the cart.
func (s *CartService) AddItem(ctx context.Context, terminalID, menuItemID string, sel pricing.Selection, quantity int) (*domain.Cart, error) {
	item, err := s.menu.Item(ctx, menuItemID)
	if err != nil {
		return nil, err
	}
	if !item.Available {
		return nil, fmt.Errorf("%w: %s", domain.ErrItemUnavailable, item.Name)
	}
	line, err := pricing.BuildLineItem(*item, sel)
	if err != nil {
		return nil, err
	}
	if quantity > 1 {
		line.Quantity = quantity
	}

	return s.mutate(ctx, terminalID, func(cart *domain.Cart) error {
		if err := cart.CanAdd(line.Key, line.Quantity); err != nil {
			return err
		}
		cart.AddOrMerge(line)
		return nil
	})
}

func (s *CartService) UpdateQuantity(ctx context.Context, terminalID, key string, quantity int) (*domain.Cart, error) {
	return s.mutate(ctx, terminalID, func(cart *domain.Cart) error {
		return cart.UpdateQuantity(key, quantity)
	})
}

func (s *CartService) RemoveItem(ctx context.Context, terminalID, key string) (*domain.Cart, error) {
	return s.mutate(ctx, terminalID, func(cart *domain.Cart) error {
		return cart.Remove(key)
	})
}

func (s *CartService) SetDiscount(ctx context.Context, terminalID string, t domain.DiscountType, value float64) (*domain.Cart, error) {
	return s.mutate(ctx, terminalID, func(cart *domain.Cart) error {
		return cart.SetDiscount(t, value)
	})
}

func (s *CartService) ClearDiscount(ctx context.Context, terminalID string) (*domain.Cart, error) {
	return s.mutate(ctx, terminalID, func(cart *domain.Cart) error {
		cart.ClearDiscount()
		return nil
	})
}

// Clear drops the terminal's cart. Clearing a cart that does not exist is not
// an error.
func (s *CartService) Clear(ctx context.Context, terminalID string) error {
	unlock := s.locks.lock(terminalID)
	defer unlock()
	return s.clear(ctx, terminalID)
}

func (s *CartService) clear(ctx context.Context, terminalID string) error {
	if err := s.repo.DeleteCart(ctx, terminalID); err != nil && !errors.Is(err, domain.ErrCartNotFound) {
		return err
	}
	s.invalidateCache(terminalID)
	return nil
}

// mutate serializes read-modify-write cycles per terminal. It reads the
// repository, never the cache, so a stale cache entry cannot be written back.
func (s *CartService) mutate(ctx context.Context, terminalID string, fn func(*domain.Cart) error) (*domain.Cart, error) {
	unlock := s.locks.lock(terminalID)
	defer unlock()

	cart, err := s.load(ctx, terminalID)
	if err != nil {
		return nil, err
	}
	if err := fn(cart); err != nil {
		return nil, err
	}
	if err := s.repo.SaveCart(ctx, cart); err != nil {
		s.log.Error().Err(err).Str("terminal_id", terminalID).Msg("cart save failed")
		return nil, err
	}
	s.invalidateCache(terminalID)
	return cart, nil
}

func (s *CartService) load(ctx context.Context, terminalID string) (*domain.Cart, error) {
	cart, err := s.repo.GetCart(ctx, terminalID)
	if errors.Is(err, domain.ErrCartNotFound) {
		return domain.NewCart(terminalID), nil
	}
	if err != nil {
		return nil, err
	}
	// a stamped cart was already turned into an order; start over
	if cart.CheckedOut() {
		s.log.Warn().Str("terminal_id", terminalID).Str("order_number", cart.CheckedOutAs).Msg("discarding checked-out cart")
		cart.Clear()
	}
	return cart, nil
}

func (s *CartService) invalidateCache(terminalID string) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.cache.Delete(ctx, terminalID); err != nil {
		s.log.Warn().Err(err).Str("terminal_id", terminalID).Msg("cart cache invalidate failed")
	}
}
