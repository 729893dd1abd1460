package model

import (
	"strings"
	"time"
)

// Room is a room type offered by the inn.  A room type has a number of
// physically interchangeable units; Available + Occupied is the number of
// units and therefore the ceiling for overlapping paid stays.
//
// Fields:
//  ID          – primary key; reservations reference rooms by ID.
//  Name        – unique display name.
//  Beds        – free-text bed description ("1 queen", "2 singles").
//  Capacity    – guests allowed per unit.
//  PriceCents  – nightly rate in cents.
//  Available   – units currently free according to staff bookkeeping.
//  Occupied    – units currently occupied according to staff bookkeeping.
//  Maintenance – when true no unit may be booked.
//  Status      – free-form status; "maintenance" also blocks booking.
//  Features    – amenity labels shown to guests.
type Room struct {
	ID          uint64    `json:"id"`
	Name        string    `json:"name"`
	Beds        string    `json:"beds"`
	Capacity    int       `json:"capacity"`
	PriceCents  uint32    `json:"price_cents"`
	Available   int       `json:"available"`
	Occupied    int       `json:"occupied"`
	Maintenance bool      `json:"maintenance"`
	Status      string    `json:"status"`
	Features    []string  `json:"features"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// RoomStatusMaintenance is the status label that blocks a room the same way
// the Maintenance flag does.
const RoomStatusMaintenance = "maintenance"

// Units returns the room's inventory: Available + Occupied, never less
// than one.
func (r Room) Units() int {
	n := r.Available + r.Occupied
	if n < 1 {
		return 1
	}
	return n
}

// UnderMaintenance reports whether the room is blocked for booking by either
// the flag or the status label.
func (r Room) UnderMaintenance() bool {
	return r.Maintenance || strings.EqualFold(strings.TrimSpace(r.Status), RoomStatusMaintenance)
}
