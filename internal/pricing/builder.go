// Package pricing turns a menu item and a customer's choices into a priced
// cart line.
package pricing

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/ShiLuis/KapePOS/internal/domain"
	"github.com/shopspring/decimal"
)

const defaultMarker = "default"

// Selection is what the cashier picked for a menu item.
type Selection struct {
	Options map[string]string
	Addons  []string
	Note    string
}

// BuildLineItem prices a single unit of item with the given selection.
// Option groups without a selection, or whose selected value the group does
// not offer, take their first value. Add-ons that are not offered by the item
// are ignored.
func BuildLineItem(item domain.MenuItem, sel Selection) (domain.LineItem, error) {
	price := decimal.NewFromFloat(item.Price)

	options := make(map[string]string, len(item.Options))
	for _, group := range item.Options {
		value, found := group.Value(sel.Options[group.Name])
		if !found {
			if len(group.Values) == 0 {
				return domain.LineItem{}, fmt.Errorf("%w: group %q has no values", domain.ErrInvalidSelection, group.Name)
			}
			value = group.Values[0]
		}
		price = price.Add(decimal.NewFromFloat(value.PriceModifier))
		options[group.Name] = value.Name
	}

	wanted := make(map[string]struct{}, len(sel.Addons))
	for _, a := range sel.Addons {
		wanted[a] = struct{}{}
	}
	addons := make([]string, 0, len(wanted))
	for _, a := range item.Addons {
		if _, ok := wanted[a.Name]; !ok {
			continue
		}
		delete(wanted, a.Name) // duplicate add-on names on the item count once
		price = price.Add(decimal.NewFromFloat(a.Price))
		addons = append(addons, a.Name)
	}

	return domain.LineItem{
		Key:             LineKey(item.ID, options, addons, sel.Note),
		MenuItemID:      item.ID,
		Name:            item.Name,
		UnitPrice:       price.InexactFloat64(),
		Quantity:        1,
		SelectedOptions: options,
		SelectedAddons:  addons,
		Note:            sel.Note,
	}, nil
}

// LineKey encodes a line configuration canonically: options sorted by group
// name, add-ons sorted and de-duplicated, note verbatim. Every field is
// length-prefixed so distinct configurations never share a key.
// An item with no options, add-ons or note gets "<id>|default".
func LineKey(menuItemID string, options map[string]string, addons []string, note string) string {
	var b strings.Builder
	writeField(&b, menuItemID)

	if len(options) == 0 && len(addons) == 0 && note == "" {
		b.WriteByte('|')
		b.WriteString(defaultMarker)
		return b.String()
	}

	groups := make([]string, 0, len(options))
	for g := range options {
		groups = append(groups, g)
	}
	sort.Strings(groups)

	b.WriteString("|o")
	for _, g := range groups {
		b.WriteByte(';')
		writeField(&b, g)
		b.WriteByte('=')
		writeField(&b, options[g])
	}

	sorted := append([]string(nil), addons...)
	sort.Strings(sorted)
	b.WriteString("|a")
	for i, a := range sorted {
		if i > 0 && sorted[i-1] == a {
			continue
		}
		b.WriteByte(';')
		writeField(&b, a)
	}

	b.WriteString("|n")
	writeField(&b, note)
	return b.String()
}

func writeField(b *strings.Builder, s string) {
	b.WriteString(strconv.Itoa(len(s)))
	b.WriteByte(':')
	b.WriteString(s)
}
