package service

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/TemirB/erp-order-bridge/internal/domain"
)

// maxKeyLen matches the ERP reference field the external id is copied to.
const maxKeyLen = 100

var hundred = decimal.NewFromInt(100)

// Validate checks the shape of a submission. It never touches the ledger.
func Validate(sub domain.Submission) error {
	var problems []string
	add := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	checkKey := func(name, v string) {
		v = strings.TrimSpace(v)
		switch {
		case v == "":
			add("%s is required", name)
		case len(v) > maxKeyLen:
			add("%s longer than %d characters", name, maxKeyLen)
		}
	}
	checkKey("externalOrderId", sub.ExternalOrderID)
	checkKey("instanceId", sub.InstanceID)

	if _, err := domain.ParseOrderDate(sub.Order.Date); err != nil {
		add("order.date: %v", err)
	}

	if len(sub.Order.Lines) == 0 {
		add("order.lines must not be empty")
	}
	for i, l := range sub.Order.Lines {
		n := i + 1
		if strings.TrimSpace(l.ProductID) == "" {
			add("line %d: productId is required", n)
		}
		if !l.Quantity.IsPositive() {
			add("line %d: quantity must be greater than 0", n)
		}
		if l.Price.IsNegative() {
			add("line %d: price must not be negative", n)
		}
		if l.Discount.IsNegative() || l.Discount.GreaterThan(hundred) {
			add("line %d: discount must be between 0 and 100", n)
		}
	}

	if len(problems) > 0 {
		return domain.Errorf(domain.KindValidation, "validate", "%s", strings.Join(problems, "; "))
	}
	return nil
}
