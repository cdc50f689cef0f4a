// Package summary computes daily sales figures from stored orders.
package summary

import (
	"sort"
	"time"

	"github.com/ShiLuis/KapePOS/internal/domain"
	"github.com/shopspring/decimal"
)

// TopN is the number of entries kept in DailySummary.PopularItems.
const TopN = 5

// DayBounds returns the first and last instant of the calendar day of date
// in loc. Both bounds are inclusive.
func DayBounds(date time.Time, loc *time.Location) (time.Time, time.Time) {
	if loc == nil {
		loc = date.Location()
	}
	d := date.In(loc)
	start := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, loc)
	end := start.AddDate(0, 0, 1).Add(-time.Nanosecond)
	return start, end
}

// Summarize aggregates the orders created on date's calendar day in loc.
// It never modifies orders. A zero date yields an all-zero summary.
func Summarize(orders []domain.Order, date time.Time, loc *time.Location) domain.DailySummary {
	s := domain.DailySummary{
		PaymentMethodCounts: map[string]int{},
		PopularItems:        []domain.PopularItem{},
		Orders:              []domain.Order{},
	}
	if date.IsZero() {
		return s
	}

	start, end := DayBounds(date, loc)
	s.Date = start

	sales := decimal.Zero
	counts := make(map[string]int)
	var names []string

	for _, o := range orders {
		if o.CreatedAt.Before(start) || o.CreatedAt.After(end) {
			continue
		}
		s.TotalOrders++
		sales = sales.Add(decimal.NewFromFloat(o.Total))
		s.PaymentMethodCounts[string(o.PaymentMethod)]++
		s.Orders = append(s.Orders, o)

		for _, it := range o.Items {
			if _, seen := counts[it.Name]; !seen {
				names = append(names, it.Name)
			}
			counts[it.Name] += it.Quantity
		}
	}
	s.TotalSales = sales.InexactFloat64()

	popular := make([]domain.PopularItem, 0, len(names))
	for _, n := range names {
		popular = append(popular, domain.PopularItem{Name: n, Count: counts[n]})
	}
	sort.SliceStable(popular, func(i, j int) bool {
		return popular[i].Count > popular[j].Count
	})
	if len(popular) > TopN {
		popular = popular[:TopN]
	}
	s.PopularItems = popular

	return s
}
