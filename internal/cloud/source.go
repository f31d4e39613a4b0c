// Package cloud wires the per-provider pricing adapters behind one
// interface and constructs them from config.
package cloud

import (
	"context"

	"github.com/cloudalloc/cloudalloc/pkg/catalog"
)

// PricingSource fetches one provider's full pricing catalog for a pricing
// model. Implementations skip and log malformed catalog entries rather than
// failing the whole fetch; a total failure returns an error and lets the
// cache's stale fallback take over.
type PricingSource interface {
	Name() catalog.Provider
	FetchCatalog(ctx context.Context, model catalog.PricingModel) ([]catalog.PricingRecord, error)
}
