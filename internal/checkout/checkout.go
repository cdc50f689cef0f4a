package checkout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ShiLuis/KapePOS/internal/domain"
	"github.com/ShiLuis/KapePOS/pkg/circuitbreaker"
	"github.com/ShiLuis/KapePOS/pkg/logger"
	"github.com/rs/zerolog"
)

// MaxNumberAttempts bounds how many order numbers are tried when the store
// reports a duplicate.
const MaxNumberAttempts = 5

const (
	defaultClearAttempts = 3
	defaultClearBackoff  = 50 * time.Millisecond
)

type OrderStore interface {
	Create(ctx context.Context, order *domain.Order) error
}

type CartStore interface {
	Clear(ctx context.Context, terminalID string) error
	// MarkCheckedOut stores cart with its CheckedOutAs stamp set.
	MarkCheckedOut(ctx context.Context, cart *domain.Cart) error
}

type EventPublisher interface {
	PublishOrderPlaced(ctx context.Context, order domain.Order) error
}

type Materializer struct {
	orders  OrderStore
	carts   CartStore
	events  EventPublisher
	breaker *circuitbreaker.Breaker
	taxRate float64
	log     zerolog.Logger

	now    func() time.Time
	number func(time.Time) string

	clearAttempts int
	clearBackoff  time.Duration
}

type Option func(*Materializer)

// WithEvents publishes order-placed events after a successful checkout.
func WithEvents(p EventPublisher) Option {
	return func(m *Materializer) { m.events = p }
}

func WithBreaker(b *circuitbreaker.Breaker) Option {
	return func(m *Materializer) { m.breaker = b }
}

func WithClock(now func() time.Time) Option {
	return func(m *Materializer) { m.now = now }
}

func WithNumberGenerator(gen func(time.Time) string) Option {
	return func(m *Materializer) { m.number = gen }
}

// WithClearRetry sets how often the stored cart delete is tried after an
// order is placed, and the pause between tries.
func WithClearRetry(attempts int, backoff time.Duration) Option {
	return func(m *Materializer) {
		m.clearAttempts = max(1, attempts)
		m.clearBackoff = backoff
	}
}

func NewMaterializer(orders OrderStore, carts CartStore, taxRate float64, log zerolog.Logger, opts ...Option) *Materializer {
	m := &Materializer{
		orders:  orders,
		carts:   carts,
		taxRate: taxRate,
		log:     log,
		now:     time.Now,
		number:  NewOrderNumber,

		clearAttempts: defaultClearAttempts,
		clearBackoff:  defaultClearBackoff,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.breaker == nil {
		s := circuitbreaker.DefaultSettings("order-store")
		s.Ignore = []error{domain.ErrDuplicateOrder}
		m.breaker = circuitbreaker.New(s, log)
	}
	return m
}

// Checkout materializes cart and stores the order. When the store cannot be
// reached the order is still returned, with Persisted=false, together with an
// error wrapping domain.ErrPersistenceUnavailable. The cart is cleared only
// after the order has been stored.
//
// If the stored cart cannot be deleted it is stamped with the order number so
// it can never be checked out again. If that fails too, the stored order is
// returned with an error wrapping domain.ErrCartNotCleared.
func (m *Materializer) Checkout(ctx context.Context, cart *domain.Cart, method domain.PaymentMethod, createdBy string) (domain.Order, error) {
	if cart != nil && cart.CheckedOut() {
		return domain.Order{}, fmt.Errorf("%w: order %s", domain.ErrCartCheckedOut, cart.CheckedOutAs)
	}
	now := m.now()
	order, err := Materialize(cart, method, createdBy, m.taxRate, now, m.number(now))
	if err != nil {
		return domain.Order{}, err
	}
	log := logger.WithTrace(ctx, m.log).With().
		Str("terminal_id", cart.TerminalID).
		Str("order_id", order.ID).
		Logger()

	if err := m.store(ctx, &order, now); err != nil {
		log.Error().Err(err).Str("order_number", order.OrderNumber).Msg("order not stored, returning unsynced receipt")
		order.Persisted = false
		return order, fmt.Errorf("%w: %w", domain.ErrPersistenceUnavailable, err)
	}
	order.Persisted = true
	log.Info().
		Str("order_number", order.OrderNumber).
		Float64("total", order.Totals().Rounded().Total).
		Msg("order placed")

	var clearErr error
	if err := m.clearStored(ctx, cart.TerminalID); err != nil {
		log.Error().Err(err).Msg("failed to clear stored cart after checkout")
		stamped := cart.Clone()
		stamped.CheckedOutAs = order.OrderNumber
		if serr := m.carts.MarkCheckedOut(ctx, stamped); serr != nil {
			log.Error().Err(serr).Str("order_number", order.OrderNumber).Msg("failed to mark stored cart as checked out")
			clearErr = fmt.Errorf("%w: %w", domain.ErrCartNotCleared, err)
		}
	}
	cart.Clear()

	if m.events != nil {
		if err := m.events.PublishOrderPlaced(ctx, order); err != nil {
			log.Warn().Err(err).Str("order_number", order.OrderNumber).Msg("failed to publish order-placed event")
		}
	}
	return order, clearErr
}

func (m *Materializer) clearStored(ctx context.Context, terminalID string) error {
	var err error
	for attempt := 1; attempt <= m.clearAttempts; attempt++ {
		if err = m.carts.Clear(ctx, terminalID); err == nil {
			return nil
		}
		if attempt == m.clearAttempts {
			break
		}
		m.log.Warn().Err(err).Str("terminal_id", terminalID).Int("attempt", attempt).Msg("cart clear failed, retrying")
		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: %w", err, ctx.Err())
		case <-time.After(m.clearBackoff * time.Duration(attempt)):
		}
	}
	return err
}

func (m *Materializer) store(ctx context.Context, order *domain.Order, now time.Time) error {
	var err error
	for attempt := 1; attempt <= MaxNumberAttempts; attempt++ {
		err = m.breaker.Do(func() error {
			return m.orders.Create(ctx, order)
		})
		if err == nil {
			return nil
		}
		if !errors.Is(err, domain.ErrDuplicateOrder) {
			return err
		}
		m.log.Warn().Str("order_number", order.OrderNumber).Int("attempt", attempt).Msg("order number taken")
		if attempt < MaxNumberAttempts {
			order.OrderNumber = m.number(now)
		}
	}
	return fmt.Errorf("no free order number after %d attempts: %w", MaxNumberAttempts, err)
}
