package enrich_test

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mangwale-nlu/internal/domain/entity"
	"mangwale-nlu/internal/usecase/enrich"
)

// mockCatalog resolves lookups from a fixed name->product table and records
// every query it receives.
type mockCatalog struct {
	mu       sync.Mutex
	products map[string]*enrich.Product
	failOn   map[string]bool
	queries  []string
}

func (m *mockCatalog) Search(_ context.Context, name string) (*enrich.Product, error) {
	m.mu.Lock()
	m.queries = append(m.queries, name)
	m.mu.Unlock()

	if m.failOn[name] {
		return nil, fmt.Errorf("catalog unavailable")
	}
	return m.products[strings.ToLower(name)], nil
}

func TestEnrich_FillsProductIDAndPrice(t *testing.T) {
	catalog := &mockCatalog{
		products: map[string]*enrich.Product{
			"misal": {ID: "prod-101", Name: "Misal Pav", Price: 80, Store: "tushar"},
		},
	}
	svc := enrich.NewService(catalog)

	items := []entity.CartItem{
		{Food: "misal", Qty: 2},
		{Food: "unknown dish", Qty: 1},
	}

	enriched := svc.Enrich(context.Background(), items)

	require.Len(t, enriched, 2)

	require.NotNil(t, enriched[0].ProductID)
	assert.Equal(t, "prod-101", *enriched[0].ProductID)
	require.NotNil(t, enriched[0].Price)
	assert.Equal(t, 80.0, *enriched[0].Price)
	assert.Equal(t, "tushar", enriched[0].Store)

	assert.Nil(t, enriched[1].ProductID)
	assert.Nil(t, enriched[1].Price)
}

func TestEnrich_KeepsExtractedStore(t *testing.T) {
	catalog := &mockCatalog{
		products: map[string]*enrich.Product{
			"misal": {ID: "prod-101", Price: 80, Store: "mauli"},
		},
	}
	svc := enrich.NewService(catalog)

	enriched := svc.Enrich(context.Background(), []entity.CartItem{
		{Food: "misal", Qty: 1, Store: "tushar"},
	})

	require.Len(t, enriched, 1)
	assert.Equal(t, "tushar", enriched[0].Store, "extracted store wins over catalog store")
}

func TestEnrich_LookupFailureKeepsItem(t *testing.T) {
	catalog := &mockCatalog{
		failOn: map[string]bool{"samosa": true},
	}
	svc := enrich.NewService(catalog)

	items := []entity.CartItem{{Food: "samosa", Qty: 3, Store: "corner"}}
	enriched := svc.Enrich(context.Background(), items)

	require.Len(t, enriched, 1)
	assert.Equal(t, items[0], enriched[0], "failed lookup must not change the item")
}

func TestEnrich_DoesNotMutateInput(t *testing.T) {
	catalog := &mockCatalog{
		products: map[string]*enrich.Product{
			"chai": {ID: "prod-7", Price: 15},
		},
	}
	svc := enrich.NewService(catalog)

	items := []entity.CartItem{{Food: "chai", Qty: 1}}
	_ = svc.Enrich(context.Background(), items)

	assert.Nil(t, items[0].ProductID, "input slice must stay untouched")
}

func TestEnrich_EmptyCart(t *testing.T) {
	catalog := &mockCatalog{}
	svc := enrich.NewService(catalog)

	enriched := svc.Enrich(context.Background(), nil)

	assert.Empty(t, enriched)
	assert.Empty(t, catalog.queries)
}

func TestEnrich_LooksUpEveryItem(t *testing.T) {
	catalog := &mockCatalog{}
	svc := enrich.NewService(catalog)

	var items []entity.CartItem
	for i := 0; i < 10; i++ {
		items = append(items, entity.CartItem{Food: fmt.Sprintf("item-%d", i), Qty: 1})
	}

	enriched := svc.Enrich(context.Background(), items)

	assert.Len(t, enriched, 10)
	assert.Len(t, catalog.queries, 10)
}
