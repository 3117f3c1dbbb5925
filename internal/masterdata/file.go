package masterdata

import (
	"context"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/TemirB/erp-order-bridge/internal/domain"
)

type Snapshot struct {
	Customers    []SnapshotCustomer  `yaml:"customers"`
	Sellers      []int               `yaml:"sellers"`
	Warehouses   []SnapshotWarehouse `yaml:"warehouses"`
	WarehouseMap []WarehouseMapping  `yaml:"warehouseMap"`
	Items        []SnapshotItem      `yaml:"items"`
	// Stock lists item codes with a stock record, per warehouse code.
	Stock map[string][]string `yaml:"stock"`
}

type SnapshotCustomer struct {
	Code   string `yaml:"code"`
	TaxID  string `yaml:"taxId"`
	Name   string `yaml:"name"`
	Frozen bool   `yaml:"frozen"`
}

type SnapshotWarehouse struct {
	Code     string `yaml:"code"`
	Name     string `yaml:"name"`
	Inactive bool   `yaml:"inactive"`
}

type SnapshotItem struct {
	Code        string `yaml:"code"`
	NotSellable bool   `yaml:"notSellable"`
	Invalid     bool   `yaml:"invalid"`
}

// File serves master data from an in-memory snapshot, typically loaded
// from YAML for sandbox deployments.
type File struct {
	snap Snapshot

	itemsByUpper map[string]SnapshotItem
	stock        map[string]map[string]string
}

func LoadFile(path string) (*File, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read master data %s: %w", path, err)
	}
	return ParseFile(b)
}

func ParseFile(b []byte) (*File, error) {
	var snap Snapshot
	if err := yaml.Unmarshal(b, &snap); err != nil {
		return nil, fmt.Errorf("parse master data: %w", err)
	}
	return NewFile(snap), nil
}

func NewFile(snap Snapshot) *File {
	f := &File{
		snap:         snap,
		itemsByUpper: make(map[string]SnapshotItem, len(snap.Items)),
		stock:        make(map[string]map[string]string, len(snap.Stock)),
	}
	for _, it := range snap.Items {
		f.itemsByUpper[strings.ToUpper(it.Code)] = it
	}
	for whs, codes := range snap.Stock {
		m := make(map[string]string, len(codes))
		for _, c := range codes {
			m[strings.ToUpper(c)] = c
		}
		f.stock[whs] = m
	}
	return f
}

func (f *File) CustomerByTaxID(_ context.Context, taxID string) (string, error) {
	taxID = strings.TrimSpace(taxID)
	for _, c := range f.snap.Customers {
		if c.TaxID == taxID && !c.Frozen {
			return c.Code, nil
		}
	}
	return "", domain.ErrNotFound
}

func (f *File) CustomerActive(_ context.Context, code string) (bool, error) {
	code = strings.TrimSpace(code)
	for _, c := range f.snap.Customers {
		if c.Code == code {
			return !c.Frozen, nil
		}
	}
	return false, nil
}

func (f *File) SellerExists(_ context.Context, code int) (bool, error) {
	for _, s := range f.snap.Sellers {
		if s == code {
			return true, nil
		}
	}
	return false, nil
}

func (f *File) WarehouseMappingByID(_ context.Context, id int) (WarehouseMapping, error) {
	for _, m := range f.snap.WarehouseMap {
		if m.ExternalID != 0 && m.ExternalID == id {
			return m, nil
		}
	}
	return WarehouseMapping{}, domain.ErrNotFound
}

func (f *File) WarehouseMappingByName(_ context.Context, name string) (WarehouseMapping, error) {
	name = strings.TrimSpace(name)
	for _, m := range f.snap.WarehouseMap {
		if m.ExternalName == name {
			return m, nil
		}
	}
	return WarehouseMapping{}, domain.ErrNotFound
}

func (f *File) WarehouseMappings(context.Context) ([]WarehouseMapping, error) {
	out := make([]WarehouseMapping, len(f.snap.WarehouseMap))
	copy(out, f.snap.WarehouseMap)
	return out, nil
}

func (f *File) WarehouseActive(_ context.Context, code string) (bool, error) {
	code = strings.TrimSpace(code)
	for _, w := range f.snap.Warehouses {
		if w.Code == code {
			return !w.Inactive, nil
		}
	}
	return false, nil
}

func (f *File) SellableItems(_ context.Context, codes []string) ([]string, error) {
	var out []string
	for _, c := range upperAll(codes) {
		if it, ok := f.itemsByUpper[c]; ok && !it.Invalid && !it.NotSellable {
			out = append(out, it.Code)
		}
	}
	return out, nil
}

func (f *File) StockedItems(_ context.Context, warehouse string, codes []string) ([]string, error) {
	m := f.stock[strings.TrimSpace(warehouse)]
	var out []string
	for _, c := range upperAll(codes) {
		if orig, ok := m[c]; ok {
			out = append(out, orig)
		}
	}
	return out, nil
}

func (f *File) Ping(context.Context) error { return nil }
