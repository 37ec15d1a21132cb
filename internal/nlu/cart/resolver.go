// Package cart associates loose extracted entities into ordered cart line
// items. The association is positional, not semantic: quantities pair with the
// nearest food mention by character offset, and a single store (the first one
// mentioned) is assumed for the whole message.
package cart

import (
	"mangwale-nlu/internal/domain/entity"
	"mangwale-nlu/internal/nlu/quantity"
)

// qtyLookaheadWindow bounds the quantity-after-food special case. A QTY span
// starting within this many characters after a food span ("biryani 2 chahiye")
// still pairs with that food when no preceding quantity exists. Messages are
// short; a window of one or two words is enough without stealing a quantity
// that belongs to a later item.
const qtyLookaheadWindow = 16

// Build produces ordered cart line items from a flat entity list.
//
// Entities are partitioned by label with source order preserved. Every
// resulting item shares the text of the first STORE entity (single-store-per-
// message assumption; multi-store messages are not split). Each FOOD entity
// takes the nearest QTY mentioned before it, falling back to a QTY within the
// lookahead window after it, and defaulting to 1. Degenerate (0,0) spans
// cannot be positionally ordered and are skipped entirely.
//
// Quantity text resolves through quantity.Normalize, so spoken numbers in
// either language land as integers.
func Build(entities []entity.Entity) []entity.CartItem {
	var foods, qtys []entity.Entity
	store := ""

	for _, e := range entities {
		if e.Degenerate() {
			continue
		}
		switch e.Label {
		case entity.LabelFood:
			foods = append(foods, e)
		case entity.LabelQty:
			qtys = append(qtys, e)
		case entity.LabelStore:
			if store == "" {
				store = e.Text
			}
		}
	}

	items := make([]entity.CartItem, 0, len(foods))
	for _, food := range foods {
		items = append(items, entity.CartItem{
			Food:  food.Text,
			Qty:   resolveQty(food, qtys),
			Store: store,
		})
	}
	return items
}

// resolveQty picks the quantity for one food span. Preference order: the last
// QTY ending at or before the food starts, then a QTY starting inside the
// lookahead window after the food ends, then the default of 1. Ties cannot
// occur since QTY spans are disjoint.
func resolveQty(food entity.Entity, qtys []entity.Entity) int {
	var picked *entity.Entity

	for i := range qtys {
		if qtys[i].End <= food.Start {
			picked = &qtys[i]
		}
	}

	if picked == nil {
		for i := range qtys {
			q := &qtys[i]
			if q.Start >= food.End && q.Start-food.End <= qtyLookaheadWindow {
				picked = q
				break
			}
		}
	}

	if picked == nil {
		return quantity.DefaultQty
	}
	return quantity.Normalize(picked.Text)
}
