package domain

import "time"

type EventType string

const (
	EventCreated     EventType = "order.created"
	EventFailed      EventType = "order.failed"
	EventUnconfirmed EventType = "order.unconfirmed"
	EventReconciled  EventType = "order.reconciled"
)

// Event is published after a ledger finalize.
type Event struct {
	ID              string    `json:"id"`
	Type            EventType `json:"type"`
	ExternalOrderID string    `json:"externalOrderId"`
	InstanceID      string    `json:"instanceId"`
	PayloadHash     string    `json:"payloadHash,omitempty"`
	Status          Status    `json:"status"`
	DocID           *int      `json:"docId,omitempty"`
	DocNumber       *int      `json:"docNumber,omitempty"`
	Message         string    `json:"message,omitempty"`
	OccurredAt      time.Time `json:"occurredAt"`
}

func (e Event) Key() OrderKey {
	return OrderKey{ExternalOrderID: e.ExternalOrderID, InstanceID: e.InstanceID}
}
