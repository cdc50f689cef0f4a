package repository

import (
	"context"
	"testing"
	"time"

	"github.com/ShiLuis/KapePOS/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupPostgres(t *testing.T) (*PostgresOrderRepository, func()) {
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)

	host, err := pgContainer.Host(ctx)
	require.NoError(t, err)
	port, err := pgContainer.MappedPort(ctx, "5432")
	require.NoError(t, err)

	creds := &Credentials{
		Host:              host,
		Port:              port.Int(),
		User:              "testuser",
		Password:          "testpass",
		DBName:            "testdb",
		MigrationsDirPath: "./migrations",
	}

	repo, err := NewPostgresOrderRepository(creds)
	require.NoError(t, err)
	require.NoError(t, repo.RunMigrations(creds))
	// running twice is a no-op
	require.NoError(t, repo.RunMigrations(creds))

	cleanup := func() {
		repo.Close()
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	}
	return repo, cleanup
}

func TestPostgresOrderRepository(t *testing.T) {
	repo, cleanup := setupPostgres(t)
	defer cleanup()
	ctx := context.Background()

	day := time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)
	first := testOrder("ORD-20250314-090000-AAAAAA", day.Add(9*time.Hour))
	second := testOrder("ORD-20250314-170000-BBBBBB", day.Add(17*time.Hour))
	second.DiscountSpec = nil
	second.PaymentMethod = domain.PaymentCard
	for _, o := range []*domain.Order{first, second} {
		require.NoError(t, repo.Create(ctx, o))
	}

	t.Run("duplicate number", func(t *testing.T) {
		dup := testOrder(first.OrderNumber, day)
		assert.ErrorIs(t, repo.Create(ctx, dup), domain.ErrDuplicateOrder)
	})

	t.Run("round trip", func(t *testing.T) {
		got, err := repo.GetByID(ctx, first.ID)
		require.NoError(t, err)
		assert.Equal(t, first.OrderNumber, got.OrderNumber)
		assert.InDelta(t, first.Total, got.Total, 1e-9)
		assert.InDelta(t, first.Tax, got.Tax, 1e-9)
		assert.Equal(t, domain.PaymentCash, got.PaymentMethod)
		assert.True(t, got.Persisted)
		assert.WithinDuration(t, first.CreatedAt, got.CreatedAt, time.Millisecond)
		require.NotNil(t, got.DiscountSpec)
		assert.Equal(t, *first.DiscountSpec, *got.DiscountSpec)
		require.Len(t, got.Items, 1)
		assert.Equal(t, []string{"Extra Shot"}, got.Items[0].SelectedAddons)

		got, err = repo.GetByNumber(ctx, second.OrderNumber)
		require.NoError(t, err)
		assert.Nil(t, got.DiscountSpec)
		assert.Equal(t, domain.PaymentCard, got.PaymentMethod)
	})

	t.Run("not found", func(t *testing.T) {
		_, err := repo.GetByID(ctx, "not-a-uuid")
		assert.ErrorIs(t, err, domain.ErrOrderNotFound)
		_, err = repo.GetByNumber(ctx, "ORD-0")
		assert.ErrorIs(t, err, domain.ErrOrderNotFound)
	})

	t.Run("date range", func(t *testing.T) {
		orders, err := repo.ListByDateRange(ctx, day, day.Add(12*time.Hour))
		require.NoError(t, err)
		require.Len(t, orders, 1)
		assert.Equal(t, first.OrderNumber, orders[0].OrderNumber)

		orders, err = repo.List(ctx, 0)
		require.NoError(t, err)
		require.Len(t, orders, 2)
		assert.Equal(t, second.OrderNumber, orders[0].OrderNumber)
	})
}
