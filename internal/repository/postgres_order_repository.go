package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ShiLuis/KapePOS/internal/domain"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/lib/pq"
)

const orderColumns = `id, order_number, items, subtotal, discount, discount_spec, tax_rate, tax, total, payment_method, created_by, created_at`

// PostgresOrderRepository is the ORDER_STORE=postgres alternative to the
// Mongo order collection.
type PostgresOrderRepository struct {
	db *sql.DB
}

func NewPostgresOrderRepository(cred *Credentials) (*PostgresOrderRepository, error) {
	psqlconn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		cred.Host,
		cred.Port,
		cred.User,
		cred.Password,
		cred.DBName)

	db, err := sql.Open("postgres", psqlconn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	return &PostgresOrderRepository{db: db}, nil
}

func (r *PostgresOrderRepository) RunMigrations(cred *Credentials) error {
	driver, err := postgres.WithInstance(r.db, &postgres.Config{
		MigrationsTable: "kapepos_schema_migrations",
	})
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		fmt.Sprintf("file://%s", cred.MigrationsDirPath),
		"postgres",
		driver,
	)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("could not run migrations: %w", err)
	}
	return nil
}

func (r *PostgresOrderRepository) Create(ctx context.Context, order *domain.Order) error {
	itemsJSON, err := json.Marshal(order.Items)
	if err != nil {
		return fmt.Errorf("failed to marshal order items: %w", err)
	}
	var discountSpec any
	if order.DiscountSpec != nil {
		specJSON, err := json.Marshal(order.DiscountSpec)
		if err != nil {
			return fmt.Errorf("failed to marshal discount: %w", err)
		}
		discountSpec = string(specJSON)
	}

	query := `INSERT INTO orders (` + orderColumns + `)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, insertErr := r.db.ExecContext(ctx, query,
		order.ID,
		order.OrderNumber,
		itemsJSON,
		order.Subtotal,
		order.Discount,
		discountSpec,
		order.TaxRate,
		order.Tax,
		order.Total,
		string(order.PaymentMethod),
		order.CreatedBy,
		order.CreatedAt,
	)
	if insertErr != nil {
		var pqErr *pq.Error
		if errors.As(insertErr, &pqErr) && pqErr.Code == "23505" {
			return domain.ErrDuplicateOrder
		}
		return fmt.Errorf("insert order: %w", insertErr)
	}
	return nil
}

func (r *PostgresOrderRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	return r.queryOne(ctx, `SELECT `+orderColumns+` FROM orders WHERE id::text = $1`, id)
}

func (r *PostgresOrderRepository) GetByNumber(ctx context.Context, number string) (*domain.Order, error) {
	return r.queryOne(ctx, `SELECT `+orderColumns+` FROM orders WHERE order_number = $1`, number)
}

func (r *PostgresOrderRepository) ListByDateRange(ctx context.Context, from, to time.Time) ([]domain.Order, error) {
	return r.query(ctx, `SELECT `+orderColumns+` FROM orders
	          WHERE created_at >= $1 AND created_at <= $2 ORDER BY created_at DESC`, from, to)
}

func (r *PostgresOrderRepository) List(ctx context.Context, limit int64) ([]domain.Order, error) {
	if limit <= 0 {
		return r.query(ctx, `SELECT `+orderColumns+` FROM orders ORDER BY created_at DESC`)
	}
	return r.query(ctx, `SELECT `+orderColumns+` FROM orders ORDER BY created_at DESC LIMIT $1`, limit)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (domain.Order, error) {
	var (
		order     domain.Order
		itemsJSON []byte
		specJSON  []byte
		method    string
	)
	if err := row.Scan(
		&order.ID,
		&order.OrderNumber,
		&itemsJSON,
		&order.Subtotal,
		&order.Discount,
		&specJSON,
		&order.TaxRate,
		&order.Tax,
		&order.Total,
		&method,
		&order.CreatedBy,
		&order.CreatedAt,
	); err != nil {
		return domain.Order{}, err
	}
	if err := json.Unmarshal(itemsJSON, &order.Items); err != nil {
		return domain.Order{}, fmt.Errorf("unmarshal order items: %w", err)
	}
	if len(specJSON) > 0 {
		var spec domain.Discount
		if err := json.Unmarshal(specJSON, &spec); err != nil {
			return domain.Order{}, fmt.Errorf("unmarshal discount: %w", err)
		}
		order.DiscountSpec = &spec
	}
	order.PaymentMethod = domain.PaymentMethod(method)
	order.Persisted = true
	return order, nil
}

func (r *PostgresOrderRepository) queryOne(ctx context.Context, query string, arg any) (*domain.Order, error) {
	order, err := scanOrder(r.db.QueryRowContext(ctx, query, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query order: %w", err)
	}
	return &order, nil
}

func (r *PostgresOrderRepository) query(ctx context.Context, query string, args ...any) ([]domain.Order, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	defer rows.Close()

	orders := make([]domain.Order, 0)
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order row: %w", err)
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return orders, nil
}

func (r *PostgresOrderRepository) Close() error {
	return r.db.Close()
}
