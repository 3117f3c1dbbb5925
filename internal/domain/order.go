package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// OrderKey identifies one logical order across retries.
type OrderKey struct {
	ExternalOrderID string `json:"externalOrderId"`
	InstanceID      string `json:"instanceId"`
}

// NewOrderKey trims and NFC-normalizes both parts the same way the payload
// hash does, so keys that hash alike also lock alike.
func NewOrderKey(externalOrderID, instanceID string) OrderKey {
	return OrderKey{ExternalOrderID: canonString(externalOrderID), InstanceID: canonString(instanceID)}
}

func (k OrderKey) String() string {
	return k.ExternalOrderID + "/" + k.InstanceID
}

// Submission is a single order as received from the upstream system.
type Submission struct {
	ExternalOrderID string `json:"externalOrderId"`
	InstanceID      string `json:"instanceId"`
	Order           Order  `json:"order"`
}

func (s Submission) Key() OrderKey {
	return NewOrderKey(s.ExternalOrderID, s.InstanceID)
}

type Order struct {
	Date          string   `json:"date"`
	Customer      Customer `json:"customer"`
	SellerID      *int     `json:"sellerId,omitempty"`
	WarehouseID   *int     `json:"warehouseId,omitempty"`
	WarehouseCode string   `json:"warehouseCode,omitempty"`
	Lines         []Line   `json:"lines"`

	// Informational totals. The ERP recalculates them with its own rules.
	ExtraExpense decimal.Decimal `json:"extraExpense"`
	Subtotal     decimal.Decimal `json:"subtotal"`
	Tax          decimal.Decimal `json:"tax"`
	Total        decimal.Decimal `json:"total"`
}

type Customer struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

type Line struct {
	ProductID string          `json:"productId"`
	Quantity  decimal.Decimal `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	Discount  decimal.Decimal `json:"discount"`
	Total     decimal.Decimal `json:"total"`

	// WarehouseCode overrides the header warehouse for this line only.
	WarehouseCode string `json:"warehouseCode,omitempty"`
}

var dateLayouts = []string{"2006-01-02", time.RFC3339, "2006-01-02T15:04:05"}

// ParseOrderDate accepts a calendar date, RFC 3339 or a zone-less timestamp.
func ParseOrderDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", s)
}
