package domain

import "time"

// EventType names a committed customer mutation.
type EventType string

const (
	EventCustomerCreated EventType = "created"
	EventCustomerUpdated EventType = "updated"
	EventCustomerDeleted EventType = "deleted"
)

// CustomerEvent describes a committed customer mutation. Customer is nil for
// deletions.
type CustomerEvent struct {
	EventID    string    `json:"eventId"`
	Type       EventType `json:"type"`
	CustomerID int64     `json:"customerId"`
	Customer   *Customer `json:"customer,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
}
