package domain

import "time"

type PopularItem struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// DailySummary is derived from orders on demand and never stored.
type DailySummary struct {
	Date                time.Time      `json:"date"`
	TotalOrders         int            `json:"total_orders"`
	TotalSales          float64        `json:"total_sales"`
	PaymentMethodCounts map[string]int `json:"payment_method_counts"`
	PopularItems        []PopularItem  `json:"popular_items"`
	Orders              []Order        `json:"orders"`
}
