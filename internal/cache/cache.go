package cache

import (
	"context"
	"errors"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/TemirB/erp-order-bridge/internal/domain"
	"github.com/TemirB/erp-order-bridge/internal/masterdata"
	"github.com/TemirB/erp-order-bridge/internal/observability"
)

//go:generate mockgen -source internal/cache/cache.go -destination=internal/cache/cache_mock_test.go -package=cache

type source interface {
	masterdata.Reader
}

type lookup struct {
	code  string
	found bool
}

type mapping struct {
	m     masterdata.WarehouseMapping
	found bool
}

// Cache decorates a master-data reader with TTL-bound LRU caches for point
// lookups. Item and stock set queries always reach the source.
type Cache struct {
	src     source
	size    int
	metrics observability.Metrics

	taxIDs     *expirable.LRU[string, lookup]
	customers  *expirable.LRU[string, bool]
	sellers    *expirable.LRU[int, bool]
	warehouses *expirable.LRU[string, bool]
	mapsByID   *expirable.LRU[int, mapping]
	mapsByName *expirable.LRU[string, mapping]
}

var _ masterdata.Reader = (*Cache)(nil)

func New(src source, size int, ttl time.Duration, metrics observability.Metrics) *Cache {
	if metrics == nil {
		metrics = observability.NewNoop()
	}
	return &Cache{
		src:        src,
		size:       size,
		metrics:    metrics,
		taxIDs:     expirable.NewLRU[string, lookup](size, nil, ttl),
		customers:  expirable.NewLRU[string, bool](size, nil, ttl),
		sellers:    expirable.NewLRU[int, bool](size, nil, ttl),
		warehouses: expirable.NewLRU[string, bool](size, nil, ttl),
		mapsByID:   expirable.NewLRU[int, mapping](size, nil, ttl),
		mapsByName: expirable.NewLRU[string, mapping](size, nil, ttl),
	}
}

// Warm preloads the warehouse mapping table. Errors leave the cache cold.
func (c *Cache) Warm(ctx context.Context) {
	ms, err := c.src.WarehouseMappings(ctx)
	if err != nil {
		return
	}
	for i, m := range ms {
		if i >= c.size {
			break
		}
		if m.ExternalID != 0 {
			c.mapsByID.Add(m.ExternalID, mapping{m: m, found: true})
		}
		if m.ExternalName != "" {
			c.mapsByName.Add(m.ExternalName, mapping{m: m, found: true})
		}
	}
}

// Purge drops every cached entry.
func (c *Cache) Purge() {
	c.taxIDs.Purge()
	c.customers.Purge()
	c.sellers.Purge()
	c.warehouses.Purge()
	c.mapsByID.Purge()
	c.mapsByName.Purge()
}

func cached[K comparable, V any](c *Cache, lru *expirable.LRU[K, V], key K, load func() (V, error)) (V, error) {
	if v, ok := lru.Get(key); ok {
		c.metrics.IncCacheHit()
		return v, nil
	}
	c.metrics.IncCacheMiss()

	v, err := load()
	if err != nil {
		return v, err
	}
	lru.Add(key, v)
	return v, nil
}

func (c *Cache) CustomerByTaxID(ctx context.Context, taxID string) (string, error) {
	l, err := cached(c, c.taxIDs, taxID, func() (lookup, error) {
		code, err := c.src.CustomerByTaxID(ctx, taxID)
		if errors.Is(err, domain.ErrNotFound) {
			return lookup{}, nil
		}
		return lookup{code: code, found: err == nil}, err
	})
	if err != nil {
		return "", err
	}
	if !l.found {
		return "", domain.ErrNotFound
	}
	return l.code, nil
}

func (c *Cache) CustomerActive(ctx context.Context, code string) (bool, error) {
	return cached(c, c.customers, code, func() (bool, error) {
		return c.src.CustomerActive(ctx, code)
	})
}

func (c *Cache) SellerExists(ctx context.Context, code int) (bool, error) {
	return cached(c, c.sellers, code, func() (bool, error) {
		return c.src.SellerExists(ctx, code)
	})
}

func (c *Cache) WarehouseActive(ctx context.Context, code string) (bool, error) {
	return cached(c, c.warehouses, code, func() (bool, error) {
		return c.src.WarehouseActive(ctx, code)
	})
}

func (c *Cache) WarehouseMappingByID(ctx context.Context, id int) (masterdata.WarehouseMapping, error) {
	m, err := cached(c, c.mapsByID, id, func() (mapping, error) {
		return loadMapping(c.src.WarehouseMappingByID(ctx, id))
	})
	return unwrapMapping(m, err)
}

func (c *Cache) WarehouseMappingByName(ctx context.Context, name string) (masterdata.WarehouseMapping, error) {
	m, err := cached(c, c.mapsByName, name, func() (mapping, error) {
		return loadMapping(c.src.WarehouseMappingByName(ctx, name))
	})
	return unwrapMapping(m, err)
}

func loadMapping(m masterdata.WarehouseMapping, err error) (mapping, error) {
	if errors.Is(err, domain.ErrNotFound) {
		return mapping{}, nil
	}
	if err != nil {
		return mapping{}, err
	}
	return mapping{m: m, found: true}, nil
}

func unwrapMapping(m mapping, err error) (masterdata.WarehouseMapping, error) {
	if err != nil {
		return masterdata.WarehouseMapping{}, err
	}
	if !m.found {
		return masterdata.WarehouseMapping{}, domain.ErrNotFound
	}
	return m.m, nil
}

func (c *Cache) WarehouseMappings(ctx context.Context) ([]masterdata.WarehouseMapping, error) {
	return c.src.WarehouseMappings(ctx)
}

func (c *Cache) SellableItems(ctx context.Context, codes []string) ([]string, error) {
	return c.src.SellableItems(ctx, codes)
}

func (c *Cache) StockedItems(ctx context.Context, warehouse string, codes []string) ([]string, error) {
	return c.src.StockedItems(ctx, warehouse, codes)
}

func (c *Cache) Ping(ctx context.Context) error { return c.src.Ping(ctx) }
