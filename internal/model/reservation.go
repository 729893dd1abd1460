package model

import (
	"fmt"
	"strings"
	"time"
)

// ReservationStatus is the lifecycle state of a reservation.  The set is
// closed; ParseReservationStatus is the only way to turn free text into a
// status.
type ReservationStatus string

const (
	StatusPending    ReservationStatus = "pending"
	StatusConfirmed  ReservationStatus = "confirmed"
	StatusCancelled  ReservationStatus = "cancelled"
	StatusRejected   ReservationStatus = "rejected"
	StatusCheckedOut ReservationStatus = "checked out"
)

// AllReservationStatuses lists every status in lifecycle order.
var AllReservationStatuses = []ReservationStatus{
	StatusPending, StatusConfirmed, StatusCancelled, StatusRejected, StatusCheckedOut,
}

// ParseReservationStatus normalises case and separators.  "completed" and
// "checked_out" are accepted as older spellings of StatusCheckedOut.
func ParseReservationStatus(s string) (ReservationStatus, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.NewReplacer("_", " ", "-", " ").Replace(norm)
	switch norm {
	case "pending":
		return StatusPending, nil
	case "confirmed":
		return StatusConfirmed, nil
	case "cancelled", "canceled":
		return StatusCancelled, nil
	case "rejected":
		return StatusRejected, nil
	case "checked out", "checkedout", "completed":
		return StatusCheckedOut, nil
	}
	return "", fmt.Errorf("unknown reservation status %q", s)
}

// Terminal reports whether no further transition is possible.
func (s ReservationStatus) Terminal() bool {
	return s == StatusCancelled || s == StatusRejected || s == StatusCheckedOut
}

// OccupiesInventory reports whether a paid reservation in this state counts
// against room capacity.
func (s ReservationStatus) OccupiesInventory() bool {
	return s == StatusConfirmed || s == StatusCheckedOut
}

func (s ReservationStatus) String() string { return string(s) }

// Reservation is a guest's stay in one unit of a room type over the
// half-open interval [CheckIn, CheckOut).  Reservations are never deleted,
// only moved between statuses.
type Reservation struct {
	ID              uint64            `json:"id"`
	UserName        string            `json:"user_name"`
	RoomID          uint64            `json:"room_id"`
	RoomName        string            `json:"room_name,omitempty"` // joined from rooms, not stored
	CheckIn         Date              `json:"check_in"`
	CheckOut        Date              `json:"check_out"`
	GuestCount      int               `json:"guest_count"`
	TotalAmount     float64           `json:"total_amount"`
	SpecialRequests string            `json:"special_requests"`
	ExtraBeds       int               `json:"extra_beds"`
	ExtraPersons    int               `json:"extra_persons"`
	Status          ReservationStatus `json:"status"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
	Payments        []Payment         `json:"payments,omitempty"`
}

// Nights returns the number of nights covered by the stay.
func (r Reservation) Nights() int {
	return int(r.CheckOut.In(time.UTC).Sub(r.CheckIn.In(time.UTC)).Hours() / 24)
}

// ReservationFilter narrows List.  The zero value lists everything.
type ReservationFilter struct {
	UserName string
	Limit    int
}

// ReservationPatch holds the guest-editable fields of a reservation.  Nil
// fields are left untouched.
type ReservationPatch struct {
	SpecialRequests *string
	GuestCount      *int
	ExtraBeds       *int
	ExtraPersons    *int
}

// Empty reports whether the patch changes nothing.
func (p ReservationPatch) Empty() bool {
	return p.SpecialRequests == nil && p.GuestCount == nil && p.ExtraBeds == nil && p.ExtraPersons == nil
}
