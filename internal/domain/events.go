package domain

import "time"

// OrderPlacedEvent is published once an order has been stored.
type OrderPlacedEvent struct {
	OrderID       string           `json:"order_id"`
	OrderNumber   string           `json:"order_number"`
	Items         []OrderEventItem `json:"items"`
	Total         float64          `json:"total"`
	PaymentMethod PaymentMethod    `json:"payment_method"`
	CreatedBy     string           `json:"created_by"`
	CreatedAt     time.Time        `json:"created_at"`
}

type OrderEventItem struct {
	MenuItemID string `json:"menu_item_id"`
	Name       string `json:"name"`
	Quantity   int    `json:"quantity"`
}

func NewOrderPlacedEvent(o Order) OrderPlacedEvent {
	items := make([]OrderEventItem, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, OrderEventItem{MenuItemID: it.MenuItemID, Name: it.Name, Quantity: it.Quantity})
	}
	return OrderPlacedEvent{
		OrderID:       o.ID,
		OrderNumber:   o.OrderNumber,
		Items:         items,
		Total:         o.Totals().Rounded().Total,
		PaymentMethod: o.PaymentMethod,
		CreatedBy:     o.CreatedBy,
		CreatedAt:     o.CreatedAt,
	}
}

// StockAdjustments turns the event into one negative adjustment per menu
// item, in first-seen order.
func (e OrderPlacedEvent) StockAdjustments() []StockAdjustment {
	index := make(map[string]int, len(e.Items))
	var out []StockAdjustment
	for _, it := range e.Items {
		if it.MenuItemID == "" || it.Quantity <= 0 {
			continue
		}
		if i, ok := index[it.MenuItemID]; ok {
			out[i].Delta -= it.Quantity
			continue
		}
		index[it.MenuItemID] = len(out)
		out = append(out, StockAdjustment{MenuItemID: it.MenuItemID, Delta: -it.Quantity})
	}
	return out
}
