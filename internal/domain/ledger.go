package domain

import (
	"strings"
	"time"
)

type Status string

const (
	StatusProcessing  Status = "PROCESSING"
	StatusCreated     Status = "CREATED"
	StatusFailed      Status = "FAILED"
	StatusUnconfirmed Status = "UNCONFIRMED"
)

// ParseStatus accepts a status name in any case.
func ParseStatus(s string) (Status, error) {
	switch st := Status(strings.ToUpper(strings.TrimSpace(s))); st {
	case StatusProcessing, StatusCreated, StatusFailed, StatusUnconfirmed:
		return st, nil
	default:
		return "", Errorf(KindValidation, "ParseStatus", "unknown status %q", s)
	}
}

// LedgerRecord is the durable lifecycle entry of one OrderKey.
type LedgerRecord struct {
	Key                 OrderKey  `json:"key"`
	Status              Status    `json:"status"`
	PayloadHash         string    `json:"payloadHash"`
	DocID               *int      `json:"docId,omitempty"`
	DocNumber           *int      `json:"docNumber,omitempty"`
	ErrorMessage        string    `json:"errorMessage,omitempty"`
	ProcessingStartedAt time.Time `json:"processingStartedAt"`
	CreatedAt           time.Time `json:"createdAt"`
	UpdatedAt           time.Time `json:"updatedAt"`
}

type BeginCode uint8

const (
	Started BeginCode = iota
	DuplicateCreated
	InProgress
	ConflictHash
	Unconfirmed
)

func (c BeginCode) String() string {
	switch c {
	case Started:
		return "started"
	case DuplicateCreated:
		return "duplicate_created"
	case InProgress:
		return "in_progress"
	case ConflictHash:
		return "conflict_hash"
	case Unconfirmed:
		return "unconfirmed"
	default:
		return "unknown"
	}
}

// BeginResult carries the decision of TryBegin. Record is the stored
// state after the decision was applied.
type BeginResult struct {
	Code   BeginCode
	Record LedgerRecord
}

func IntPtr(v int) *int { return &v }
