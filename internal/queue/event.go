// Package queue carries reservation events over RabbitMQ: the publisher used
// by the booking service and the consumer that writes the booking audit log.
package queue

import "time"

// Event types.
const (
	EventReservationCreated = "reservation.created"
	EventStatusChanged      = "reservation.status_changed"
	EventCheckedOut         = "reservation.checked_out"
	EventPaymentRecorded    = "payment.recorded"
)

// ReservationEvent is published whenever a reservation is created or changes
// state.  It carries enough context for the audit log and for downstream
// notification services without a round-trip to the database.
type ReservationEvent struct {
	Type           string    `json:"type"`
	ReservationID  uint64    `json:"reservation_id"`
	RoomID         uint64    `json:"room_id"`
	RoomName       string    `json:"room_name,omitempty"`
	UserName       string    `json:"user_name"`
	Status         string    `json:"status"`
	PreviousStatus string    `json:"previous_status,omitempty"`
	CheckIn        string    `json:"check_in"`
	CheckOut       string    `json:"check_out"`
	Amount         float64   `json:"amount,omitempty"`
	Source         string    `json:"source,omitempty"`
	OccurredAt     time.Time `json:"occurred_at"`
}
