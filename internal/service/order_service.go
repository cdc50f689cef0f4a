package service

import (
	"context"
	"errors"
	"slices"
	"time"

	"github.com/ShiLuis/KapePOS/internal/domain"
	"github.com/ShiLuis/KapePOS/internal/repository"
	"github.com/ShiLuis/KapePOS/internal/summary"
)

// DefaultListLimit caps order listings that have no date range.
const DefaultListLimit = 100

type OrderService struct {
	repo repository.OrderRepository
	loc  *time.Location
}

func NewOrderService(repo repository.OrderRepository, loc *time.Location) *OrderService {
	if loc == nil {
		loc = time.UTC
	}
	return &OrderService{repo: repo, loc: loc}
}

func (s *OrderService) Location() *time.Location {
	return s.loc
}

// Get accepts either the order id or its order number.
func (s *OrderService) Get(ctx context.Context, idOrNumber string) (*domain.Order, error) {
	order, err := s.repo.GetByID(ctx, idOrNumber)
	if errors.Is(err, domain.ErrOrderNotFound) {
		return s.repo.GetByNumber(ctx, idOrNumber)
	}
	return order, err
}

// List returns orders in [from, to], newest first. With no range it returns
// the most recent DefaultListLimit orders. A missing end means now.
func (s *OrderService) List(ctx context.Context, from, to time.Time) ([]domain.Order, error) {
	if from.IsZero() && to.IsZero() {
		return s.repo.List(ctx, DefaultListLimit)
	}
	if to.IsZero() {
		to = time.Now()
	}
	return s.repo.ListByDateRange(ctx, from, to)
}

// DailySummary aggregates the orders of date's calendar day in the service
// location. Orders are aggregated oldest first, so popular items with equal
// counts keep the order in which they were first sold.
func (s *OrderService) DailySummary(ctx context.Context, date time.Time) (domain.DailySummary, error) {
	if date.IsZero() {
		return summary.Summarize(nil, date, s.loc), nil
	}
	start, end := summary.DayBounds(date, s.loc)
	orders, err := s.repo.ListByDateRange(ctx, start, end)
	if err != nil {
		return domain.DailySummary{}, err
	}
	// the repository lists newest first
	slices.Reverse(orders)
	slices.SortStableFunc(orders, func(a, b domain.Order) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	return summary.Summarize(orders, date, s.loc), nil
}
