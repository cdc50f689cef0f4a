package http

import (
	"context"
	"sync"
	"time"

	"github.com/ShiLuis/KapePOS/internal/domain"
	"github.com/ShiLuis/KapePOS/internal/pricing"
	"github.com/ShiLuis/KapePOS/internal/service"
)

func testMenu() map[string]domain.MenuItem {
	return map[string]domain.MenuItem{
		"latte": {
			ID: "latte", Name: "Latte", Price: 100, Category: domain.CategoryCoffee, Available: true,
			Options: []domain.OptionGroup{
				{Name: "Size", Values: []domain.OptionValue{{Name: "Regular"}, {Name: "Large", PriceModifier: 20}}},
				{Name: "Portion", Values: []domain.OptionValue{{Name: "1/1"}, {Name: "1/2", PriceModifier: -30}}},
			},
			Addons: []domain.Addon{{Name: "Extra Shot", Price: 15}},
		},
		"cookie": {ID: "cookie", Name: "Cookie", Price: 45, Category: domain.CategoryPastry, Available: false},
	}
}

// mockCarts keeps carts in memory and prices lines with the real builder.
type mockCarts struct {
	m       sync.Mutex
	carts   map[string]*domain.Cart
	menu    map[string]domain.MenuItem
	taxRate float64
	err     error
}

func newMockCarts() *mockCarts {
	menu := testMenu()
	// misconfigured: a group nothing can be picked from
	menu["tea"] = domain.MenuItem{
		ID: "tea", Name: "Tea", Price: 80, Category: domain.CategoryCoffee, Available: true,
		Options: []domain.OptionGroup{{Name: "Leaf"}},
	}
	return &mockCarts{carts: make(map[string]*domain.Cart), menu: menu, taxRate: 0.12}
}

func (m *mockCarts) cart(terminalID string) *domain.Cart {
	c, ok := m.carts[terminalID]
	if !ok {
		c = domain.NewCart(terminalID)
		m.carts[terminalID] = c
	}
	return c
}

func (m *mockCarts) GetCart(_ context.Context, terminalID string) (*domain.Cart, error) {
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	return m.cart(terminalID).Clone(), nil
}

func (m *mockCarts) AddItem(_ context.Context, terminalID, menuItemID string, sel pricing.Selection, quantity int) (*domain.Cart, error) {
	m.m.Lock()
	defer m.m.Unlock()
	item, ok := m.menu[menuItemID]
	if !ok {
		return nil, domain.ErrMenuItemNotFound
	}
	if !item.Available {
		return nil, domain.ErrItemUnavailable
	}
	line, err := pricing.BuildLineItem(item, sel)
	if err != nil {
		return nil, err
	}
	line.Quantity = quantity
	c := m.cart(terminalID)
	if err := c.CanAdd(line.Key, quantity); err != nil {
		return nil, err
	}
	c.AddOrMerge(line)
	return c.Clone(), nil
}

func (m *mockCarts) UpdateQuantity(_ context.Context, terminalID, key string, quantity int) (*domain.Cart, error) {
	m.m.Lock()
	defer m.m.Unlock()
	c := m.cart(terminalID)
	if err := c.UpdateQuantity(key, quantity); err != nil {
		return nil, err
	}
	return c.Clone(), nil
}

func (m *mockCarts) RemoveItem(_ context.Context, terminalID, key string) (*domain.Cart, error) {
	m.m.Lock()
	defer m.m.Unlock()
	c := m.cart(terminalID)
	if err := c.Remove(key); err != nil {
		return nil, err
	}
	return c.Clone(), nil
}

func (m *mockCarts) SetDiscount(_ context.Context, terminalID string, t domain.DiscountType, value float64) (*domain.Cart, error) {
	m.m.Lock()
	defer m.m.Unlock()
	c := m.cart(terminalID)
	if err := c.SetDiscount(t, value); err != nil {
		return nil, err
	}
	return c.Clone(), nil
}

func (m *mockCarts) ClearDiscount(_ context.Context, terminalID string) (*domain.Cart, error) {
	m.m.Lock()
	defer m.m.Unlock()
	c := m.cart(terminalID)
	c.ClearDiscount()
	return c.Clone(), nil
}

func (m *mockCarts) Clear(_ context.Context, terminalID string) error {
	m.m.Lock()
	defer m.m.Unlock()
	delete(m.carts, terminalID)
	return nil
}

func (m *mockCarts) Totals(cart *domain.Cart) domain.Totals {
	return cart.Totals(m.taxRate)
}

type checkoutCall struct {
	terminalID string
	method     domain.PaymentMethod
	createdBy  string
}

type mockCheckout struct {
	m     sync.Mutex
	order domain.Order
	err   error
	calls []checkoutCall
}

func (m *mockCheckout) Checkout(_ context.Context, terminalID string, method domain.PaymentMethod, createdBy string) (domain.Order, error) {
	m.m.Lock()
	defer m.m.Unlock()
	m.calls = append(m.calls, checkoutCall{terminalID, method, createdBy})
	return m.order, m.err
}

type mockOrders struct {
	m           sync.Mutex
	loc         *time.Location
	orders      map[string]domain.Order
	listed      []domain.Order
	from, to    time.Time
	summaryDate time.Time
	summary     domain.DailySummary
	err         error
}

func newMockOrders(loc *time.Location) *mockOrders {
	return &mockOrders{loc: loc, orders: make(map[string]domain.Order)}
}

func (m *mockOrders) Location() *time.Location { return m.loc }

func (m *mockOrders) Get(_ context.Context, idOrNumber string) (*domain.Order, error) {
	m.m.Lock()
	defer m.m.Unlock()
	o, ok := m.orders[idOrNumber]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	return &o, nil
}

func (m *mockOrders) List(_ context.Context, from, to time.Time) ([]domain.Order, error) {
	m.m.Lock()
	defer m.m.Unlock()
	m.from, m.to = from, to
	return m.listed, m.err
}

func (m *mockOrders) DailySummary(_ context.Context, date time.Time) (domain.DailySummary, error) {
	m.m.Lock()
	defer m.m.Unlock()
	m.summaryDate = date
	return m.summary, m.err
}

type mockMenu struct {
	m       sync.Mutex
	items   []domain.MenuItem
	etag    string
	created []domain.MenuItem
	patches map[string]service.MenuPatch
	stock   map[string]int
	err     error
}

func newMockMenu() *mockMenu {
	var items []domain.MenuItem
	for _, it := range testMenu() {
		if it.Available {
			items = append(items, it)
		}
	}
	return &mockMenu{
		items:   items,
		etag:    `"00000000deadbeef"`,
		patches: make(map[string]service.MenuPatch),
		stock:   make(map[string]int),
	}
}

func (m *mockMenu) Menu(context.Context) ([]domain.MenuItem, string, error) {
	m.m.Lock()
	defer m.m.Unlock()
	return m.items, m.etag, m.err
}

func (m *mockMenu) Item(_ context.Context, id string) (*domain.MenuItem, error) {
	m.m.Lock()
	defer m.m.Unlock()
	for _, it := range m.items {
		if it.ID == id {
			return &it, nil
		}
	}
	return nil, domain.ErrMenuItemNotFound
}

func (m *mockMenu) All(context.Context) ([]domain.MenuItem, error) {
	m.m.Lock()
	defer m.m.Unlock()
	return m.items, m.err
}

func (m *mockMenu) Create(_ context.Context, item *domain.MenuItem) error {
	m.m.Lock()
	defer m.m.Unlock()
	if err := item.Validate(); err != nil {
		return err
	}
	item.ID = "new-id"
	m.created = append(m.created, *item)
	return nil
}

func (m *mockMenu) Update(_ context.Context, id string, patch service.MenuPatch) (*domain.MenuItem, error) {
	m.m.Lock()
	defer m.m.Unlock()
	m.patches[id] = patch
	for _, it := range m.items {
		if it.ID == id {
			if patch.Price != nil {
				it.Price = *patch.Price
			}
			return &it, nil
		}
	}
	return nil, domain.ErrMenuItemNotFound
}

func (m *mockMenu) Delete(_ context.Context, id string) error {
	_, err := m.Item(context.Background(), id)
	return err
}

func (m *mockMenu) SetStock(_ context.Context, id string, stock int) (*domain.MenuItem, error) {
	m.m.Lock()
	defer m.m.Unlock()
	m.stock[id] = stock
	for _, it := range m.items {
		if it.ID == id {
			it.Stock = stock
			it.Available = stock > 0
			return &it, nil
		}
	}
	return nil, domain.ErrMenuItemNotFound
}
