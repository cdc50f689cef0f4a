package checkout

import (
	"context"
	"errors"
	"sync"

	"github.com/ShiLuis/KapePOS/internal/domain"
)

type mockOrderStore struct {
	mu     sync.Mutex
	orders map[string]domain.Order
	taken  map[string]bool
	calls  int
	err    error
}

func newMockOrderStore() *mockOrderStore {
	return &mockOrderStore{
		orders: make(map[string]domain.Order),
		taken:  make(map[string]bool),
	}
}

func (m *mockOrderStore) Create(_ context.Context, order *domain.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return m.err
	}
	if m.taken[order.OrderNumber] {
		return domain.ErrDuplicateOrder
	}
	m.taken[order.OrderNumber] = true
	m.orders[order.ID] = *order
	return nil
}

type mockCartStore struct {
	mu      sync.Mutex
	cleared []string
	marked  []domain.Cart
	calls   int
	err     error
	markErr error
}

func (m *mockCartStore) Clear(_ context.Context, terminalID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return m.err
	}
	m.cleared = append(m.cleared, terminalID)
	return nil
}

func (m *mockCartStore) MarkCheckedOut(_ context.Context, cart *domain.Cart) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.markErr != nil {
		return m.markErr
	}
	m.marked = append(m.marked, *cart.Clone())
	return nil
}

type mockPublisher struct {
	mu        sync.Mutex
	published []domain.Order
	err       error
}

func (m *mockPublisher) PublishOrderPlaced(_ context.Context, order domain.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.published = append(m.published, order)
	return nil
}

// flakyCartStore fails the first failures clears.
type flakyCartStore struct {
	mockCartStore
	failures int
}

func (f *flakyCartStore) Clear(ctx context.Context, terminalID string) error {
	f.mu.Lock()
	if f.calls < f.failures {
		f.calls++
		f.mu.Unlock()
		return errors.New("write conflict")
	}
	f.mu.Unlock()
	return f.mockCartStore.Clear(ctx, terminalID)
}
