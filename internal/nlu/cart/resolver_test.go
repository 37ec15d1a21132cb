package cart

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mangwale-nlu/internal/domain/entity"
)

func food(text string, start int) entity.Entity {
	return entity.Entity{Text: text, Label: entity.LabelFood, Start: start, End: start + len(text)}
}

func qty(text string, start int) entity.Entity {
	return entity.Entity{Text: text, Label: entity.LabelQty, Start: start, End: start + len(text)}
}

func store(text string, start int) entity.Entity {
	return entity.Entity{Text: text, Label: entity.LabelStore, Start: start, End: start + len(text)}
}

func TestBuild_QtyBeforeFood(t *testing.T) {
	// "2 ... biryani"
	items := Build([]entity.Entity{food("biryani", 10), qty("2", 0)})

	require.Len(t, items, 1)
	assert.Equal(t, "biryani", items[0].Food)
	assert.Equal(t, 2, items[0].Qty)
}

func TestBuild_NoQtyDefaultsToOne(t *testing.T) {
	items := Build([]entity.Entity{food("biryani", 0)})

	require.Len(t, items, 1)
	assert.Equal(t, 1, items[0].Qty)
}

func TestBuild_NearestPrecedingQtyWins(t *testing.T) {
	// "2 samosa aur 3 chai": each food takes the nearest quantity before it.
	items := Build([]entity.Entity{
		qty("2", 0),
		food("samosa", 2),
		qty("3", 13),
		food("chai", 15),
	})

	require.Len(t, items, 2)
	assert.Equal(t, 2, items[0].Qty)
	assert.Equal(t, 3, items[1].Qty)
}

func TestBuild_QtyAfterFoodWithinWindow(t *testing.T) {
	// "biryani 2 chahiye" has no preceding quantity, so the one right after
	// the food still pairs with it.
	items := Build([]entity.Entity{food("biryani", 0), qty("2", 8)})

	require.Len(t, items, 1)
	assert.Equal(t, 2, items[0].Qty)
}

func TestBuild_QtyAfterFoodBeyondWindowIgnored(t *testing.T) {
	items := Build([]entity.Entity{food("biryani", 0), qty("2", 40)})

	require.Len(t, items, 1)
	assert.Equal(t, 1, items[0].Qty)
}

func TestBuild_SpokenQuantity(t *testing.T) {
	// "tushar se do misal mangwao"
	items := Build([]entity.Entity{
		store("tushar", 0),
		qty("do", 10),
		food("misal", 13),
	})

	require.Len(t, items, 1)
	assert.Equal(t, entity.CartItem{Food: "misal", Qty: 2, Store: "tushar"}, items[0])
}

func TestBuild_FirstStoreAppliesToAllItems(t *testing.T) {
	items := Build([]entity.Entity{
		store("tushar", 0),
		food("misal", 10),
		store("annapurna", 20),
		food("thali", 32),
	})

	require.Len(t, items, 2)
	assert.Equal(t, "tushar", items[0].Store)
	assert.Equal(t, "tushar", items[1].Store)
}

func TestBuild_NoStoreLeavesStoreEmpty(t *testing.T) {
	items := Build([]entity.Entity{food("chai", 0)})

	require.Len(t, items, 1)
	assert.Empty(t, items[0].Store)
}

func TestBuild_DegenerateSpansExcluded(t *testing.T) {
	// Entities recovered without offsets carry (0,0) spans; they stay out of
	// the cart because they cannot be positionally ordered.
	degenerate := entity.Entity{Text: "chai", Label: entity.LabelFood, Start: 0, End: 0}

	items := Build([]entity.Entity{degenerate, food("misal", 5)})

	require.Len(t, items, 1)
	assert.Equal(t, "misal", items[0].Food)
}

func TestBuild_OutputFollowsFoodOrder(t *testing.T) {
	items := Build([]entity.Entity{
		food("chai", 20),
		food("samosa", 0),
	})

	// Partitioning preserves the order entities arrive in, which is the
	// tagger's left-to-right source order.
	require.Len(t, items, 2)
	assert.Equal(t, "chai", items[0].Food)
	assert.Equal(t, "samosa", items[1].Food)
}

func TestBuild_IgnoresOtherLabels(t *testing.T) {
	items := Build([]entity.Entity{
		{Text: "pune", Label: entity.LabelLoc, Start: 0, End: 4},
		{Text: "spicy", Label: entity.LabelPref, Start: 5, End: 10},
		food("misal", 11),
	})

	require.Len(t, items, 1)
	assert.Equal(t, "misal", items[0].Food)
}

func TestBuild_EmptyInput(t *testing.T) {
	assert.Empty(t, Build(nil))
	assert.NotNil(t, Build(nil))
}
