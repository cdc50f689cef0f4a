// Package checkout turns a cart into an immutable Order and stores it.
package checkout

import (
	"crypto/rand"
	"encoding/base32"
	"fmt"
	"time"

	"github.com/ShiLuis/KapePOS/internal/domain"
	"github.com/google/uuid"
)

var numberEncoding = base32.StdEncoding.WithPadding(base32.NoPadding)

// NewOrderNumber returns ORD-YYYYMMDD-HHMMSS-XXXXXX for now.
func NewOrderNumber(now time.Time) string {
	var buf [4]byte
	if _, err := rand.Read(buf[:]); err != nil {
		// crypto/rand does not fail on supported platforms
		panic(fmt.Sprintf("read random bytes: %v", err))
	}
	suffix := numberEncoding.EncodeToString(buf[:])[:6]
	return fmt.Sprintf("ORD-%s-%s", now.Format("20060102-150405"), suffix)
}

// Materialize snapshots cart into an Order. Lines are copied by value so later
// cart or menu changes never reach the order. The cart itself is not touched.
func Materialize(cart *domain.Cart, method domain.PaymentMethod, createdBy string, taxRate float64, now time.Time, number string) (domain.Order, error) {
	if cart == nil || cart.IsEmpty() {
		return domain.Order{}, domain.ErrEmptyCart
	}
	method, err := domain.ParsePaymentMethod(string(method))
	if err != nil {
		return domain.Order{}, err
	}

	items := make([]domain.OrderItem, 0, len(cart.Items))
	for _, line := range cart.Items {
		items = append(items, snapshotLine(line))
	}

	totals := cart.Totals(taxRate)
	order := domain.Order{
		ID:            uuid.NewString(),
		OrderNumber:   number,
		Items:         items,
		Subtotal:      totals.Subtotal,
		Discount:      totals.Discount,
		TaxRate:       taxRate,
		Tax:           totals.Tax,
		Total:         totals.Total,
		PaymentMethod: method,
		CreatedAt:     now,
		CreatedBy:     createdBy,
	}
	if cart.Discount.Type != "" {
		spec := cart.Discount
		order.DiscountSpec = &spec
	}
	return order, nil
}

func snapshotLine(line domain.LineItem) domain.OrderItem {
	var options map[string]string
	if line.SelectedOptions != nil {
		options = make(map[string]string, len(line.SelectedOptions))
		for k, v := range line.SelectedOptions {
			options[k] = v
		}
	}
	var addons []string
	if line.SelectedAddons != nil {
		addons = append(make([]string, 0, len(line.SelectedAddons)), line.SelectedAddons...)
	}
	return domain.OrderItem{
		MenuItemID:      line.MenuItemID,
		Name:            line.Name,
		UnitPrice:       line.UnitPrice,
		Quantity:        line.Quantity,
		SelectedOptions: options,
		SelectedAddons:  addons,
		Note:            line.Note,
	}
}
