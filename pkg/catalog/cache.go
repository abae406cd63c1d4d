// Package catalog caches the last full product listing fetched from the
// remote API. The cache never expires and is refreshed only when the
// product grid mounts; every other view reads whatever was cached last,
// accepting staleness over redundant network calls.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cloudonauts/storefront/pkg/backend"
	"github.com/cloudonauts/storefront/pkg/models"
	"github.com/cloudonauts/storefront/pkg/storage"
)

type Cache struct {
	slots storage.Store
	api   *backend.Client
}

func New(slots storage.Store, api *backend.Client) *Cache {
	return &Cache{slots: slots, api: api}
}

// Refresh fetches the full catalog and overwrites the cached listing
// wholesale; there is no incremental merge. A failed fetch leaves the
// previous listing untouched and returns the error.
func (c *Cache) Refresh(ctx context.Context) ([]models.Product, error) {
	products, err := c.api.ListProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to refresh catalog: %w", err)
	}

	raw, err := json.Marshal(products)
	if err != nil {
		return nil, fmt.Errorf("failed to encode catalog: %w", err)
	}
	if err := c.slots.Set(ctx, storage.KeyAllProducts, raw, 0); err != nil {
		return nil, fmt.Errorf("failed to persist catalog: %w", err)
	}
	return products, nil
}

// All returns the last-fetched listing. An absent or malformed slot is an
// empty listing, never an error.
func (c *Cache) All(ctx context.Context) []models.Product {
	raw, ok, err := c.slots.Get(ctx, storage.KeyAllProducts)
	if err != nil || !ok {
		return nil
	}

	var products []models.Product
	if err := json.Unmarshal(raw, &products); err != nil {
		return nil
	}
	return products
}

// Get looks up one product in the cached listing by its cart key.
func (c *Cache) Get(ctx context.Context, pid string) (models.Product, bool) {
	for _, product := range c.All(ctx) {
		if product.Key() == pid {
			return product, true
		}
	}
	return models.Product{}, false
}
