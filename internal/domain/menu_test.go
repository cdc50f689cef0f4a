package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMenuItemValidate(t *testing.T) {
	valid := MenuItem{
		Name:     "Latte",
		Price:    100,
		Category: CategoryCoffee,
		Options: []OptionGroup{{Name: "Size", Values: []OptionValue{
			{Name: "Regular"}, {Name: "Small", PriceModifier: -10},
		}}},
		Addons: []Addon{{Name: "Extra Shot", Price: 15}},
	}
	assert.NoError(t, valid.Validate())

	cases := map[string]func(m *MenuItem){
		"no name":          func(m *MenuItem) { m.Name = "" },
		"negative price":   func(m *MenuItem) { m.Price = -1 },
		"bad category":     func(m *MenuItem) { m.Category = "drinks" },
		"negative stock":   func(m *MenuItem) { m.Stock = -3 },
		"empty group":      func(m *MenuItem) { m.Options = append(m.Options, OptionGroup{Name: "Milk"}) },
		"duplicate group":  func(m *MenuItem) { m.Options = append(m.Options, m.Options[0]) },
		"duplicate value":  func(m *MenuItem) { m.Options[0].Values = append(m.Options[0].Values, OptionValue{Name: "Regular"}) },
		"duplicate add-on": func(m *MenuItem) { m.Addons = append(m.Addons, Addon{Name: "Extra Shot"}) },
		"unnamed add-on":   func(m *MenuItem) { m.Addons = append(m.Addons, Addon{Price: 5}) },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			m := valid
			m.Options = []OptionGroup{{Name: "Size", Values: append([]OptionValue(nil), valid.Options[0].Values...)}}
			m.Addons = append([]Addon(nil), valid.Addons...)
			mutate(&m)
			assert.ErrorIs(t, m.Validate(), ErrInvalidMenuItem)
		})
	}
}

func TestCategoryValid(t *testing.T) {
	for _, c := range []Category{CategoryCoffee, CategoryTea, CategoryPastry, CategorySandwich, CategoryOther} {
		assert.True(t, c.Valid())
	}
	assert.False(t, Category("Coffee").Valid())
}
