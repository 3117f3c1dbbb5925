// Package masterdata reads the ERP reference data that order resolution
// depends on: customers, sellers, warehouses, the external warehouse
// mapping, items and per-warehouse stock records.
package masterdata

import (
	"context"
	"strings"
)

// WarehouseMapping links an upstream warehouse reference to an ERP code.
type WarehouseMapping struct {
	ExternalID    int    `yaml:"id" json:"id"`
	ExternalName  string `yaml:"name" json:"name"`
	WarehouseCode string `yaml:"code" json:"code"`
	WarehouseName string `yaml:"erpName" json:"erpName"`
	Active        bool   `yaml:"active" json:"active"`
}

// Reader is a read-only view of master data. Lookups that find nothing
// return domain.ErrNotFound; any other error is an infrastructure failure.
type Reader interface {
	// CustomerByTaxID returns the code of an active customer with that tax id.
	CustomerByTaxID(ctx context.Context, taxID string) (string, error)
	CustomerActive(ctx context.Context, code string) (bool, error)
	SellerExists(ctx context.Context, code int) (bool, error)
	WarehouseMappingByID(ctx context.Context, id int) (WarehouseMapping, error)
	WarehouseMappingByName(ctx context.Context, name string) (WarehouseMapping, error)
	WarehouseMappings(ctx context.Context) ([]WarehouseMapping, error)
	WarehouseActive(ctx context.Context, code string) (bool, error)
	// SellableItems returns the subset of codes that exist and may be sold.
	// Matching is case-insensitive.
	SellableItems(ctx context.Context, codes []string) ([]string, error)
	// StockedItems returns the subset of codes with a stock record in warehouse.
	StockedItems(ctx context.Context, warehouse string, codes []string) ([]string, error)
	Ping(ctx context.Context) error
}

func upperAll(codes []string) []string {
	out := make([]string, len(codes))
	for i, c := range codes {
		out[i] = strings.ToUpper(strings.TrimSpace(c))
	}
	return out
}
