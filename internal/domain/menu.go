package domain

import (
	"fmt"
	"math"
	"time"
)

type Category string

const (
	CategoryCoffee   Category = "coffee"
	CategoryTea      Category = "tea"
	CategoryPastry   Category = "pastry"
	CategorySandwich Category = "sandwich"
	CategoryOther    Category = "other"
)

func (c Category) Valid() bool {
	switch c {
	case CategoryCoffee, CategoryTea, CategoryPastry, CategorySandwich, CategoryOther:
		return true
	}
	return false
}

// OptionValue is one mutually exclusive choice inside an OptionGroup.
// PriceModifier may be negative (e.g. a smaller size).
type OptionValue struct {
	Name          string  `bson:"name" json:"name"`
	PriceModifier float64 `bson:"price_modifier" json:"price_modifier"`
}

// OptionGroup is a named set of choices; the first value is the default.
type OptionGroup struct {
	Name   string        `bson:"name" json:"name"`
	Values []OptionValue `bson:"values" json:"values"`
}

func (g OptionGroup) Value(name string) (OptionValue, bool) {
	for _, v := range g.Values {
		if v.Name == name {
			return v, true
		}
	}
	return OptionValue{}, false
}

type Addon struct {
	Name  string  `bson:"name" json:"name"`
	Price float64 `bson:"price" json:"price"`
}

type MenuItem struct {
	ID          string        `bson:"_id,omitempty" json:"id"`
	Name        string        `bson:"name" json:"name"`
	Price       float64       `bson:"price" json:"price"`
	Category    Category      `bson:"category" json:"category"`
	Description string        `bson:"description" json:"description"`
	Image       string        `bson:"image" json:"image"`
	Available   bool          `bson:"available" json:"available"`
	Stock       int           `bson:"stock" json:"stock"`
	Options     []OptionGroup `bson:"options" json:"options"`
	Addons      []Addon       `bson:"addons" json:"addons"`
	CreatedAt   time.Time     `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time     `bson:"updated_at" json:"updated_at"`
}

func (m MenuItem) Addon(name string) (Addon, bool) {
	for _, a := range m.Addons {
		if a.Name == name {
			return a, true
		}
	}
	return Addon{}, false
}

// Validate checks the fields an admin may set. Option groups need at least
// one value since the first value is the default.
func (m MenuItem) Validate() error {
	if m.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidMenuItem)
	}
	if math.IsNaN(m.Price) || math.IsInf(m.Price, 0) || m.Price < 0 {
		return fmt.Errorf("%w: price must be a non-negative number", ErrInvalidMenuItem)
	}
	if !m.Category.Valid() {
		return fmt.Errorf("%w: unknown category %q", ErrInvalidMenuItem, m.Category)
	}
	if m.Stock < 0 {
		return fmt.Errorf("%w: stock must not be negative", ErrInvalidMenuItem)
	}
	groups := make(map[string]bool, len(m.Options))
	for _, g := range m.Options {
		if g.Name == "" || groups[g.Name] {
			return fmt.Errorf("%w: option group names must be unique and non-empty", ErrInvalidMenuItem)
		}
		groups[g.Name] = true
		if len(g.Values) == 0 {
			return fmt.Errorf("%w: option group %q has no values", ErrInvalidMenuItem, g.Name)
		}
		values := make(map[string]bool, len(g.Values))
		for _, v := range g.Values {
			if v.Name == "" || values[v.Name] {
				return fmt.Errorf("%w: values of group %q must be unique and non-empty", ErrInvalidMenuItem, g.Name)
			}
			values[v.Name] = true
		}
	}
	addons := make(map[string]bool, len(m.Addons))
	for _, a := range m.Addons {
		if a.Name == "" || addons[a.Name] {
			return fmt.Errorf("%w: add-on names must be unique and non-empty", ErrInvalidMenuItem)
		}
		addons[a.Name] = true
	}
	return nil
}

// StockAdjustment changes the stock of one menu item by Delta.
type StockAdjustment struct {
	MenuItemID string `json:"menu_item_id"`
	Delta      int    `json:"delta"`
}

// StockResult reports the outcome of a single StockAdjustment.
type StockResult struct {
	MenuItemID string `json:"menu_item_id"`
	Stock      int    `json:"stock"`
	Err        error  `json:"-"`
}
