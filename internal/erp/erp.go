// Package erp defines the capabilities the bridge needs from the system
// of record. Adapters live in subpackages.
package erp

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

//go:generate mockgen -source internal/erp/erp.go -destination=internal/application/orchestrator/erp_mock_test.go -package=orchestrator

// ErrAmbiguous marks a failure after a create request may have reached
// the ERP. The document may or may not exist.
var ErrAmbiguous = errors.New("erp outcome unknown")

type Document struct {
	CustomerCode string
	SellerCode   int
	Date         time.Time
	// Reference is stored on the ERP document for support lookups.
	Reference string
	Comments  string
	Lines     []DocumentLine
}

type DocumentLine struct {
	ItemCode        string
	Quantity        decimal.Decimal
	UnitPrice       decimal.Decimal
	DiscountPercent decimal.Decimal
	WarehouseCode   string
}

// Rejection is an explicit refusal by the ERP, carried verbatim.
type Rejection struct {
	Code    string
	Message string
}

func (r *Rejection) Error() string {
	return fmt.Sprintf("erp rejected document: [%s] %s", r.Code, r.Message)
}

type Connector interface {
	Connect(ctx context.Context) (Session, error)
}

// Session is a logged-in connection. It is not safe for concurrent use.
type Session interface {
	// AddOrder creates a sales order and returns its internal id.
	AddOrder(ctx context.Context, doc Document) (int, error)
	// DocNumber returns the user-facing number of a created document.
	DocNumber(ctx context.Context, docID int) (int, error)
	Close(ctx context.Context) error
}
