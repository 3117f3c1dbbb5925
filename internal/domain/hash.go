package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/unicode/norm"
)

const hashDomain = "erp-order-bridge/submission/v1"

type canonicalLine struct {
	ProductID     string `json:"p"`
	Quantity      string `json:"q"`
	Price         string `json:"pr"`
	Discount      string `json:"d"`
	Total         string `json:"t"`
	WarehouseCode string `json:"w"`
}

type canonicalSubmission struct {
	ExternalOrderID string          `json:"id"`
	InstanceID      string          `json:"inst"`
	Date            string          `json:"date"`
	CustomerID      string          `json:"cid"`
	CustomerName    string          `json:"cname"`
	CustomerPhone   string          `json:"cphone"`
	SellerID        *int            `json:"seller"`
	WarehouseID     *int            `json:"whid"`
	WarehouseCode   string          `json:"wh"`
	Lines           []canonicalLine `json:"lines"`
	ExtraExpense    string          `json:"extra"`
	Subtotal        string          `json:"sub"`
	Tax             string          `json:"tax"`
	Total           string          `json:"total"`
}

// PayloadHash fingerprints a submission. Strings are trimmed and NFC
// normalized, decimals use their shortest form, so 2 and 2.00 hash alike.
func PayloadHash(s Submission) (string, error) {
	c := canonicalSubmission{
		ExternalOrderID: canonString(s.ExternalOrderID),
		InstanceID:      canonString(s.InstanceID),
		Date:            canonString(s.Order.Date),
		CustomerID:      canonString(s.Order.Customer.ID),
		CustomerName:    canonString(s.Order.Customer.Name),
		CustomerPhone:   canonString(s.Order.Customer.Phone),
		SellerID:        s.Order.SellerID,
		WarehouseID:     s.Order.WarehouseID,
		WarehouseCode:   canonString(s.Order.WarehouseCode),
		Lines:           make([]canonicalLine, 0, len(s.Order.Lines)),
		ExtraExpense:    canonDecimal(s.Order.ExtraExpense),
		Subtotal:        canonDecimal(s.Order.Subtotal),
		Tax:             canonDecimal(s.Order.Tax),
		Total:           canonDecimal(s.Order.Total),
	}
	for _, l := range s.Order.Lines {
		c.Lines = append(c.Lines, canonicalLine{
			ProductID:     canonString(l.ProductID),
			Quantity:      canonDecimal(l.Quantity),
			Price:         canonDecimal(l.Price),
			Discount:      canonDecimal(l.Discount),
			Total:         canonDecimal(l.Total),
			WarehouseCode: canonString(l.WarehouseCode),
		})
	}

	data, err := json.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("payload hash: %w", err)
	}

	h := sha256.New()
	h.Write([]byte(hashDomain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil)), nil
}

func canonString(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

func canonDecimal(d decimal.Decimal) string {
	return d.String()
}
