// Package enrich implements best-effort catalog enrichment of resolved cart
// items. It runs after extraction and fills product_id and price on items
// whose food text matches a catalog product. Enrichment never fails a
// request: a catalog miss or error leaves the item as extraction produced it.
package enrich

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"mangwale-nlu/internal/domain/entity"
	"mangwale-nlu/internal/observability/metrics"
)

// Product is one catalog product as the enrichment step sees it.
type Product struct {
	ID    string
	Name  string
	Price float64
	Store string
}

// Catalog looks up products by free-text name. A nil product with a nil
// error means no match; errors mean the lookup itself failed.
type Catalog interface {
	Search(ctx context.Context, name string) (*Product, error)
}

// maxConcurrentLookups bounds parallel catalog calls for one cart.
const maxConcurrentLookups = 4

// Service enriches cart items against a product catalog.
type Service struct {
	catalog Catalog
}

// NewService creates an enrichment service backed by the given catalog.
func NewService(catalog Catalog) *Service {
	return &Service{catalog: catalog}
}

// Enrich returns a copy of items with ProductID and Price filled where the
// catalog found a match. Lookups run concurrently per item; every failure
// path keeps the original item, so the returned slice always has the same
// length and order as the input.
func (s *Service) Enrich(ctx context.Context, items []entity.CartItem) []entity.CartItem {
	if len(items) == 0 {
		return items
	}

	enriched := make([]entity.CartItem, len(items))
	copy(enriched, items)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentLookups)

	for i := range enriched {
		g.Go(func() error {
			item := &enriched[i]

			product, err := s.catalog.Search(ctx, item.Food)
			if err != nil {
				metrics.RecordCatalogLookup("error")
				slog.WarnContext(ctx, "catalog lookup failed, keeping item unenriched",
					slog.String("food", item.Food),
					slog.String("error", err.Error()))
				return nil
			}
			if product == nil {
				metrics.RecordCatalogLookup("miss")
				return nil
			}

			metrics.RecordCatalogLookup("hit")
			id := product.ID
			price := product.Price
			item.ProductID = &id
			item.Price = &price
			if item.Store == "" && product.Store != "" {
				item.Store = product.Store
			}
			return nil
		})
	}

	// Workers never return errors; Wait only synchronizes them.
	_ = g.Wait()

	return enriched
}
