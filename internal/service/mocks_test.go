package service

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/ShiLuis/KapePOS/internal/cache"
	"github.com/ShiLuis/KapePOS/internal/domain"
)

type mockCartRepository struct {
	m       sync.RWMutex
	carts   map[string]*domain.Cart
	gets      int
	err       error
	saveErr   error
	deleteErr error
}

func newMockCartRepository() *mockCartRepository {
	return &mockCartRepository{carts: make(map[string]*domain.Cart)}
}

func (m *mockCartRepository) GetCart(_ context.Context, terminalID string) (*domain.Cart, error) {
	m.m.Lock()
	defer m.m.Unlock()
	m.gets++
	if m.err != nil {
		return nil, m.err
	}
	c, ok := m.carts[terminalID]
	if !ok {
		return nil, domain.ErrCartNotFound
	}
	return c.Clone(), nil
}

func (m *mockCartRepository) SaveCart(_ context.Context, cart *domain.Cart) error {
	m.m.Lock()
	defer m.m.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.carts[cart.TerminalID] = cart.Clone()
	return nil
}

func (m *mockCartRepository) DeleteCart(_ context.Context, terminalID string) error {
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return m.err
	}
	if m.deleteErr != nil {
		return m.deleteErr
	}
	if _, ok := m.carts[terminalID]; !ok {
		return domain.ErrCartNotFound
	}
	delete(m.carts, terminalID)
	return nil
}

func (m *mockCartRepository) stored(terminalID string) *domain.Cart {
	m.m.RLock()
	defer m.m.RUnlock()
	return m.carts[terminalID]
}

type mockCartCache struct {
	m       sync.RWMutex
	carts   map[string]*domain.Cart
	deletes int
	err     error
}

func newMockCartCache() *mockCartCache {
	return &mockCartCache{carts: make(map[string]*domain.Cart)}
}

func (m *mockCartCache) Get(_ context.Context, terminalID string) (*domain.Cart, error) {
	m.m.RLock()
	defer m.m.RUnlock()
	if m.err != nil {
		return nil, m.err
	}
	c, ok := m.carts[terminalID]
	if !ok {
		return nil, cache.ErrCacheMiss
	}
	return c, nil
}

func (m *mockCartCache) Set(_ context.Context, terminalID string, cart *domain.Cart) error {
	m.m.Lock()
	defer m.m.Unlock()
	m.carts[terminalID] = cart
	return m.err
}

func (m *mockCartCache) Delete(_ context.Context, terminalID string) error {
	m.m.Lock()
	defer m.m.Unlock()
	m.deletes++
	delete(m.carts, terminalID)
	return m.err
}

func (m *mockCartCache) cached(terminalID string) *domain.Cart {
	m.m.RLock()
	defer m.m.RUnlock()
	return m.carts[terminalID]
}

func (m *mockCartCache) deleteCount() int {
	m.m.RLock()
	defer m.m.RUnlock()
	return m.deletes
}

type mockSource struct {
	items map[string]domain.MenuItem
	err   error
}

func (m *mockSource) Items(context.Context) ([]domain.MenuItem, error) {
	if m.err != nil {
		return nil, m.err
	}
	out := make([]domain.MenuItem, 0, len(m.items))
	for _, it := range m.items {
		out = append(out, it)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *mockSource) Item(_ context.Context, id string) (*domain.MenuItem, error) {
	if m.err != nil {
		return nil, m.err
	}
	it, ok := m.items[id]
	if !ok {
		return nil, domain.ErrMenuItemNotFound
	}
	return &it, nil
}

type mockOrderRepository struct {
	m        sync.RWMutex
	orders   []domain.Order
	from, to time.Time
	limit    int64
	err      error
}

func (m *mockOrderRepository) Create(_ context.Context, order *domain.Order) error {
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return m.err
	}
	for _, o := range m.orders {
		if o.OrderNumber == order.OrderNumber {
			return domain.ErrDuplicateOrder
		}
	}
	m.orders = append(m.orders, *order)
	return nil
}

func (m *mockOrderRepository) GetByID(_ context.Context, id string) (*domain.Order, error) {
	return m.find(func(o domain.Order) bool { return o.ID == id })
}

func (m *mockOrderRepository) GetByNumber(_ context.Context, number string) (*domain.Order, error) {
	return m.find(func(o domain.Order) bool { return o.OrderNumber == number })
}

func (m *mockOrderRepository) find(match func(domain.Order) bool) (*domain.Order, error) {
	m.m.RLock()
	defer m.m.RUnlock()
	if m.err != nil {
		return nil, m.err
	}
	for _, o := range m.orders {
		if match(o) {
			o.Persisted = true
			return &o, nil
		}
	}
	return nil, domain.ErrOrderNotFound
}

func (m *mockOrderRepository) ListByDateRange(_ context.Context, from, to time.Time) ([]domain.Order, error) {
	m.m.Lock()
	defer m.m.Unlock()
	m.from, m.to = from, to
	if m.err != nil {
		return nil, m.err
	}
	var out []domain.Order
	for _, o := range m.orders {
		if !o.CreatedAt.Before(from) && !o.CreatedAt.After(to) {
			out = append(out, o)
		}
	}
	// newest first, later inserts ahead of earlier ones on equal timestamps
	slices.Reverse(out)
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *mockOrderRepository) List(_ context.Context, limit int64) ([]domain.Order, error) {
	m.m.Lock()
	defer m.m.Unlock()
	m.limit = limit
	if m.err != nil {
		return nil, m.err
	}
	return append([]domain.Order(nil), m.orders...), nil
}

type mockMenuRepository struct {
	m     sync.RWMutex
	items map[string]domain.MenuItem
	err   error
}

func newMockMenuRepository(items ...domain.MenuItem) *mockMenuRepository {
	m := &mockMenuRepository{items: make(map[string]domain.MenuItem)}
	for _, it := range items {
		m.items[it.ID] = it
	}
	return m
}

func (m *mockMenuRepository) List(context.Context) ([]domain.MenuItem, error) {
	m.m.RLock()
	defer m.m.RUnlock()
	out := make([]domain.MenuItem, 0, len(m.items))
	for _, it := range m.items {
		out = append(out, it)
	}
	return out, m.err
}

func (m *mockMenuRepository) Get(_ context.Context, id string) (*domain.MenuItem, error) {
	m.m.RLock()
	defer m.m.RUnlock()
	if m.err != nil {
		return nil, m.err
	}
	it, ok := m.items[id]
	if !ok {
		return nil, domain.ErrMenuItemNotFound
	}
	return &it, nil
}

func (m *mockMenuRepository) Create(_ context.Context, item *domain.MenuItem) error {
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return m.err
	}
	if item.ID == "" {
		item.ID = item.Name
	}
	m.items[item.ID] = *item
	return nil
}

func (m *mockMenuRepository) Update(_ context.Context, item *domain.MenuItem) error {
	m.m.Lock()
	defer m.m.Unlock()
	if _, ok := m.items[item.ID]; !ok {
		return domain.ErrMenuItemNotFound
	}
	m.items[item.ID] = *item
	return m.err
}

func (m *mockMenuRepository) Delete(_ context.Context, id string) error {
	m.m.Lock()
	defer m.m.Unlock()
	if _, ok := m.items[id]; !ok {
		return domain.ErrMenuItemNotFound
	}
	delete(m.items, id)
	return nil
}

func (m *mockMenuRepository) SetStock(_ context.Context, id string, stock int) (*domain.MenuItem, error) {
	m.m.Lock()
	defer m.m.Unlock()
	it, ok := m.items[id]
	if !ok {
		return nil, domain.ErrMenuItemNotFound
	}
	it.Stock = stock
	if stock == 0 {
		it.Available = false
	}
	m.items[id] = it
	return &it, nil
}

func (m *mockMenuRepository) AdjustStock(_ context.Context, adjustments []domain.StockAdjustment) []domain.StockResult {
	m.m.Lock()
	defer m.m.Unlock()
	results := make([]domain.StockResult, 0, len(adjustments))
	for _, adj := range adjustments {
		it, ok := m.items[adj.MenuItemID]
		if !ok {
			results = append(results, domain.StockResult{MenuItemID: adj.MenuItemID, Err: domain.ErrMenuItemNotFound})
			continue
		}
		it.Stock = max(0, it.Stock+adj.Delta)
		if it.Stock == 0 {
			it.Available = false
		}
		m.items[adj.MenuItemID] = it
		results = append(results, domain.StockResult{MenuItemID: adj.MenuItemID, Stock: it.Stock})
	}
	return results
}

type mockMenuCache struct {
	m           sync.Mutex
	invalidated int
}

func (m *mockMenuCache) GetMenu(context.Context) ([]domain.MenuItem, error) {
	return nil, cache.ErrCacheMiss
}

func (m *mockMenuCache) SetMenu(context.Context, []domain.MenuItem) error { return nil }

func (m *mockMenuCache) InvalidateMenu(context.Context) error {
	m.m.Lock()
	defer m.m.Unlock()
	m.invalidated++
	return nil
}
