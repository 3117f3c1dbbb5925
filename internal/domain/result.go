package domain

type ResultCode string

const (
	CodeCreated     ResultCode = "CREATED"
	CodeDuplicate   ResultCode = "DUPLICATE"
	CodeInProgress  ResultCode = "IN_PROGRESS"
	CodeConflict    ResultCode = "CONFLICT_HASH"
	CodeValidation  ResultCode = "VALIDATION"
	CodeError       ResultCode = "ERROR"
	CodeUnconfirmed ResultCode = "UNCONFIRMED"
)

// ItemResult is the outcome of one submission inside a batch.
type ItemResult struct {
	OK              bool             `json:"ok"`
	Code            ResultCode       `json:"code"`
	ExternalOrderID string           `json:"externalOrderId,omitempty"`
	InstanceID      string           `json:"instanceId,omitempty"`
	PayloadHash     string           `json:"payloadHash,omitempty"`
	DocID           *int             `json:"docId,omitempty"`
	DocNumber       *int             `json:"docNumber,omitempty"`
	Message         string           `json:"message,omitempty"`
	Resolved        *ResolvedContext `json:"resolved,omitempty"`
	Warnings        []string         `json:"warnings,omitempty"`
}

func (r ItemResult) Key() OrderKey {
	return OrderKey{ExternalOrderID: r.ExternalOrderID, InstanceID: r.InstanceID}
}
