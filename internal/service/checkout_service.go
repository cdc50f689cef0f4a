package service

import (
	"context"

	"github.com/ShiLuis/KapePOS/internal/checkout"
	"github.com/ShiLuis/KapePOS/internal/domain"
	"github.com/rs/zerolog"
)

// CheckoutService places the order for a terminal's cart. It holds the
// terminal lock for the whole checkout so no line can be added between
// materializing the order and clearing the cart.
type CheckoutService struct {
	carts        *CartService
	materializer *checkout.Materializer
}

func NewCheckoutService(carts *CartService, orders checkout.OrderStore, log zerolog.Logger, opts ...checkout.Option) *CheckoutService {
	return &CheckoutService{
		carts:        carts,
		materializer: checkout.NewMaterializer(orders, lockedCartStore{carts}, carts.taxRate, log, opts...),
	}
}

func (s *CheckoutService) Checkout(ctx context.Context, terminalID string, method domain.PaymentMethod, createdBy string) (domain.Order, error) {
	unlock := s.carts.locks.lock(terminalID)
	defer unlock()

	cart, err := s.carts.load(ctx, terminalID)
	if err != nil {
		return domain.Order{}, err
	}
	return s.materializer.Checkout(ctx, cart, method, createdBy)
}

// lockedCartStore writes a cart whose terminal lock is already held.
type lockedCartStore struct {
	carts *CartService
}

func (l lockedCartStore) Clear(ctx context.Context, terminalID string) error {
	return l.carts.clear(ctx, terminalID)
}

func (l lockedCartStore) MarkCheckedOut(ctx context.Context, cart *domain.Cart) error {
	if err := l.carts.repo.SaveCart(ctx, cart); err != nil {
		return err
	}
	l.carts.invalidateCache(cart.TerminalID)
	return nil
}
