package catalog

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/ShiLuis/KapePOS/internal/cache"
	"github.com/ShiLuis/KapePOS/internal/domain"
	"github.com/ShiLuis/KapePOS/internal/pricing"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockMenuStore struct {
	mu        sync.Mutex
	items     []domain.MenuItem
	listCalls int
	err       error
}

func (m *mockMenuStore) List(context.Context) ([]domain.MenuItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listCalls++
	if m.err != nil {
		return nil, m.err
	}
	return append([]domain.MenuItem(nil), m.items...), nil
}

func (m *mockMenuStore) Get(_ context.Context, id string) (*domain.MenuItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	for _, it := range m.items {
		if it.ID == id {
			item := it
			return &item, nil
		}
	}
	return nil, domain.ErrMenuItemNotFound
}

type mockMenuCache struct {
	mu    sync.Mutex
	items []domain.MenuItem
	err   error
}

func (m *mockMenuCache) GetMenu(context.Context) ([]domain.MenuItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	if m.items == nil {
		return nil, cache.ErrCacheMiss
	}
	return m.items, nil
}

func (m *mockMenuCache) SetMenu(_ context.Context, items []domain.MenuItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = items
	return nil
}

func (m *mockMenuCache) InvalidateMenu(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = nil
	return nil
}

var remoteMenu = []domain.MenuItem{
	{ID: "m1", Name: "Spanish Latte", Price: 140, Category: domain.CategoryCoffee, Available: true},
	{ID: "m2", Name: "Ube Cheese Pandesal", Price: 45, Category: domain.CategoryPastry, Available: false},
}

func TestStaticSource_EmbeddedMenuIsPriceable(t *testing.T) {
	src, err := NewStaticSource()
	require.NoError(t, err)

	items, err := src.Items(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, items)

	for _, it := range items {
		assert.NotEmpty(t, it.ID)
		assert.True(t, it.Category.Valid(), "item %s has category %q", it.ID, it.Category)
		_, err := pricing.BuildLineItem(it, pricing.Selection{})
		assert.NoError(t, err, "item %s", it.ID)
	}

	latte, err := src.Item(context.Background(), "latte")
	require.NoError(t, err)
	assert.Equal(t, "Latte", latte.Name)

	_, err = src.Item(context.Background(), "unknown")
	assert.ErrorIs(t, err, domain.ErrMenuItemNotFound)
}

func TestStaticSource_ItemsReturnsCopy(t *testing.T) {
	src, err := NewStaticSource()
	require.NoError(t, err)

	items, _ := src.Items(context.Background())
	items[0].Name = "changed"

	again, _ := src.Items(context.Background())
	assert.NotEqual(t, "changed", again[0].Name)
}

func TestStaticSource_BadJSON(t *testing.T) {
	_, err := NewStaticSourceFromJSON([]byte(`{"not":"a list"}`))
	assert.Error(t, err)
}

func TestStoreSource_UsesCache(t *testing.T) {
	store := &mockMenuStore{items: remoteMenu}
	menuCache := &mockMenuCache{}
	src := NewStoreSource(store, menuCache, zerolog.Nop())
	ctx := context.Background()

	first, err := src.Items(ctx)
	require.NoError(t, err)
	second, err := src.Items(ctx)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, store.listCalls)

	require.NoError(t, menuCache.InvalidateMenu(ctx))
	_, err = src.Items(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, store.listCalls)
}

func TestStoreSource_CacheErrorFallsThrough(t *testing.T) {
	store := &mockMenuStore{items: remoteMenu}
	src := NewStoreSource(store, &mockMenuCache{err: errors.New("redis down")}, zerolog.Nop())

	items, err := src.Items(context.Background())
	require.NoError(t, err)
	assert.Len(t, items, 2)
}

func TestStoreSource_NoCache(t *testing.T) {
	store := &mockMenuStore{items: remoteMenu}
	src := NewStoreSource(store, nil, zerolog.Nop())

	items, err := src.Items(context.Background())
	require.NoError(t, err)
	assert.Len(t, items, 2)

	item, err := src.Item(context.Background(), "m2")
	require.NoError(t, err)
	assert.Equal(t, "Ube Cheese Pandesal", item.Name)
}

func TestFallback(t *testing.T) {
	static, err := NewStaticSource()
	require.NoError(t, err)
	ctx := context.Background()

	t.Run("healthy primary", func(t *testing.T) {
		src := Fallback(NewStoreSource(&mockMenuStore{items: remoteMenu}, nil, zerolog.Nop()), static, zerolog.Nop())
		items, err := src.Items(ctx)
		require.NoError(t, err)
		assert.Equal(t, "Spanish Latte", items[0].Name)
	})

	t.Run("primary down", func(t *testing.T) {
		src := Fallback(NewStoreSource(&mockMenuStore{err: errors.New("no reachable servers")}, nil, zerolog.Nop()), static, zerolog.Nop())
		items, err := src.Items(ctx)
		require.NoError(t, err)
		assert.NotEmpty(t, items)

		item, err := src.Item(ctx, "croissant")
		require.NoError(t, err)
		assert.Equal(t, "Croissant", item.Name)
	})

	t.Run("not found is final", func(t *testing.T) {
		src := Fallback(NewStoreSource(&mockMenuStore{items: remoteMenu}, nil, zerolog.Nop()), static, zerolog.Nop())
		_, err := src.Item(ctx, "croissant")
		assert.ErrorIs(t, err, domain.ErrMenuItemNotFound)
	})

	t.Run("cancelled context does not fall back", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		src := Fallback(NewStoreSource(&mockMenuStore{err: context.Canceled}, nil, zerolog.Nop()), static, zerolog.Nop())
		_, err := src.Items(cctx)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestAvailable(t *testing.T) {
	got := Available(remoteMenu)
	require.Len(t, got, 1)
	assert.Equal(t, "m1", got[0].ID)

	assert.Empty(t, Available(nil))
}

func TestETag(t *testing.T) {
	a, err := ETag(remoteMenu)
	require.NoError(t, err)
	b, err := ETag(remoteMenu)
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Regexp(t, `^"[0-9a-f]{16}"$`, a)

	changed := append([]domain.MenuItem(nil), remoteMenu...)
	changed[0].Price = 150
	c, err := ETag(changed)
	require.NoError(t, err)
	assert.NotEqual(t, a, c)
}
