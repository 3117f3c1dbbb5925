// Package resolver maps the external references of a submission onto ERP
// codes. Policy: customers and sellers fall back to configured defaults,
// warehouses and items fail closed.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/TemirB/erp-order-bridge/internal/config"
	"github.com/TemirB/erp-order-bridge/internal/domain"
	"github.com/TemirB/erp-order-bridge/internal/masterdata"
)

//go:generate mockgen -source internal/application/resolver/resolver.go -destination=internal/application/resolver/resolver_mock_test.go -package=resolver

type masterData interface {
	CustomerByTaxID(ctx context.Context, taxID string) (string, error)
	CustomerActive(ctx context.Context, code string) (bool, error)
	SellerExists(ctx context.Context, code int) (bool, error)
	WarehouseMappingByID(ctx context.Context, id int) (masterdata.WarehouseMapping, error)
	WarehouseMappingByName(ctx context.Context, name string) (masterdata.WarehouseMapping, error)
	WarehouseActive(ctx context.Context, code string) (bool, error)
	SellableItems(ctx context.Context, codes []string) ([]string, error)
	StockedItems(ctx context.Context, warehouse string, codes []string) ([]string, error)
}

type Resolver struct {
	md       masterData
	defaults config.Defaults
	logger   *zap.Logger
}

func New(md masterData, defaults config.Defaults, logger *zap.Logger) *Resolver {
	return &Resolver{md: md, defaults: defaults, logger: logger}
}

// Resolve returns the codes to use for sub or a KindResolution error.
func (r *Resolver) Resolve(ctx context.Context, sub domain.Submission) (domain.ResolvedContext, error) {
	var rc domain.ResolvedContext
	log := r.logger.With(
		zap.String("external_order_id", sub.ExternalOrderID),
		zap.String("instance_id", sub.InstanceID),
	)

	if err := r.customer(ctx, sub.Order.Customer, &rc, log); err != nil {
		return rc, err
	}
	if err := r.seller(ctx, sub.Order.SellerID, &rc, log); err != nil {
		return rc, err
	}
	if err := r.warehouse(ctx, sub.Order, &rc, log); err != nil {
		return rc, err
	}
	if err := r.items(ctx, sub.Order.Lines); err != nil {
		return rc, err
	}
	if err := r.stock(ctx, sub.Order.Lines, &rc, log); err != nil {
		return rc, err
	}

	for i, l := range sub.Order.Lines {
		if l.Discount.GreaterThanOrEqual(hundred) {
			rc.Warnings = append(rc.Warnings,
				fmt.Sprintf("line %d (%s): discount %s%% leaves a zero price", i+1, l.ProductID, l.Discount.String()))
		}
	}
	return rc, nil
}

func fail(format string, args ...any) error {
	return domain.Errorf(domain.KindResolution, "resolve", format, args...)
}

func infra(what string, err error) error {
	return domain.E(domain.KindResolution, "resolve", fmt.Errorf("read %s: %w", what, err))
}

func (r *Resolver) customer(ctx context.Context, c domain.Customer, rc *domain.ResolvedContext, log *zap.Logger) error {
	ref := strings.TrimSpace(c.ID)
	if ref != "" {
		code, err := r.md.CustomerByTaxID(ctx, ref)
		switch {
		case err == nil:
			rc.CustomerCode, rc.CustomerWasMatched = code, true
			return nil
		case !errors.Is(err, domain.ErrNotFound):
			return infra("customer", err)
		}

		active, err := r.md.CustomerActive(ctx, ref)
		if err != nil {
			return infra("customer", err)
		}
		if active {
			rc.CustomerCode, rc.CustomerWasMatched = ref, true
			return nil
		}
	}

	def := r.defaults.CustomerCode
	active, err := r.md.CustomerActive(ctx, def)
	if err != nil {
		return infra("default customer", err)
	}
	if !active {
		return fail("customer %q not found and default customer %q is missing or blocked", ref, def)
	}
	rc.CustomerCode = def
	msg := fmt.Sprintf("customer %q not found or blocked, using default %s", ref, def)
	rc.Warnings = append(rc.Warnings, msg)
	log.Warn("customer fallback", zap.String("customer_ref", ref), zap.String("customer_code", def))
	return nil
}

func (r *Resolver) seller(ctx context.Context, id *int, rc *domain.ResolvedContext, log *zap.Logger) error {
	rc.SellerCode = r.defaults.SellerCode
	if id == nil || *id <= 0 {
		return nil
	}
	ok, err := r.md.SellerExists(ctx, *id)
	if err != nil {
		return infra("seller", err)
	}
	if ok {
		rc.SellerCode = *id
		return nil
	}
	rc.Warnings = append(rc.Warnings, fmt.Sprintf("seller %d not found, using default %d", *id, rc.SellerCode))
	log.Warn("seller fallback", zap.Int("seller_ref", *id), zap.Int("seller_code", rc.SellerCode))
	return nil
}

func (r *Resolver) warehouse(ctx context.Context, o domain.Order, rc *domain.ResolvedContext, log *zap.Logger) error {
	var (
		m     masterdata.WarehouseMapping
		found bool
		id    int
		err   error
	)
	if o.WarehouseID != nil {
		id = *o.WarehouseID
	}
	name := strings.TrimSpace(o.WarehouseCode)

	if id > 0 {
		m, err = r.md.WarehouseMappingByID(ctx, id)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return infra("warehouse mapping", err)
		}
		found = err == nil
	}
	if !found && name != "" {
		m, err = r.md.WarehouseMappingByName(ctx, name)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return infra("warehouse mapping", err)
		}
		found = err == nil
	}

	switch {
	case found && !m.Active:
		return fail("warehouse mapping id=%d name=%q -> %s is inactive; reactivate it or send another warehouse",
			m.ExternalID, m.ExternalName, m.WarehouseCode)
	case found:
		if err := r.requireWarehouse(ctx, m.WarehouseCode); err != nil {
			return err
		}
		rc.WarehouseCode, rc.WarehouseWasMatched = m.WarehouseCode, true
	case id > 0 || name != "":
		return fail("warehouse id=%d name=%q is not mapped; add it to the warehouse map", id, name)
	default:
		def := r.defaults.WarehouseCode
		if err := r.requireWarehouse(ctx, def); err != nil {
			return err
		}
		rc.WarehouseCode = def
		rc.Warnings = append(rc.Warnings, "no warehouse reference, using default "+def)
		log.Warn("warehouse fallback", zap.String("warehouse_code", def))
	}

	seen := map[string]bool{rc.WarehouseCode: true}
	for _, l := range o.Lines {
		w := strings.TrimSpace(l.WarehouseCode)
		if w == "" || seen[w] {
			continue
		}
		seen[w] = true
		if err := r.requireWarehouse(ctx, w); err != nil {
			return err
		}
	}
	return nil
}

func (r *Resolver) requireWarehouse(ctx context.Context, code string) error {
	ok, err := r.md.WarehouseActive(ctx, code)
	if err != nil {
		return infra("warehouse", err)
	}
	if !ok {
		return fail("warehouse %q does not exist or is inactive in the ERP", code)
	}
	return nil
}

func (r *Resolver) items(ctx context.Context, lines []domain.Line) error {
	codes := productCodes(lines)
	if len(codes) == 0 {
		return fail("no line has a valid productId")
	}
	sellable, err := r.md.SellableItems(ctx, codes)
	if err != nil {
		return infra("items", err)
	}
	missing := subtract(codes, sellable)
	if len(missing) > 0 {
		return fail("items not found or not sellable: %s", strings.Join(missing, ", "))
	}
	return nil
}

// stock checks every product against the warehouse its line ships from.
func (r *Resolver) stock(ctx context.Context, lines []domain.Line, rc *domain.ResolvedContext, log *zap.Logger) error {
	var order []string
	byWhs := make(map[string][]domain.Line)
	for _, l := range lines {
		w := strings.TrimSpace(l.WarehouseCode)
		if w == "" {
			w = rc.WarehouseCode
		}
		if _, ok := byWhs[w]; !ok {
			order = append(order, w)
		}
		byWhs[w] = append(byWhs[w], l)
	}

	reported := make(map[string]bool)
	for _, w := range order {
		codes := productCodes(byWhs[w])
		stocked, err := r.md.StockedItems(ctx, w, codes)
		if err != nil {
			return infra("stock", err)
		}
		for _, c := range subtract(codes, stocked) {
			if !reported[strings.ToUpper(c)] {
				reported[strings.ToUpper(c)] = true
				rc.ItemsMissingStock = append(rc.ItemsMissingStock, c)
			}
			rc.Warnings = append(rc.Warnings, fmt.Sprintf("item %s has no stock record in warehouse %s", c, w))
		}
	}
	if len(rc.ItemsMissingStock) > 0 {
		log.Warn("items without stock record", zap.Strings("items", rc.ItemsMissingStock))
	}
	return nil
}

// productCodes returns trimmed product ids, deduplicated case-insensitively
// in first-seen order.
func productCodes(lines []domain.Line) []string {
	seen := make(map[string]bool, len(lines))
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		c := strings.TrimSpace(l.ProductID)
		if c == "" || seen[strings.ToUpper(c)] {
			continue
		}
		seen[strings.ToUpper(c)] = true
		out = append(out, c)
	}
	return out
}

func subtract(codes, present []string) []string {
	have := make(map[string]bool, len(present))
	for _, p := range present {
		have[strings.ToUpper(p)] = true
	}
	var out []string
	for _, c := range codes {
		if !have[strings.ToUpper(c)] {
			out = append(out, c)
		}
	}
	return out
}

var hundred = decimal.NewFromInt(100)
