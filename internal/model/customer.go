package model

import "time"

// Customer is a guest profile as stored in the customer_profiles table.
// Reservations still name their guest by free-text user_name; a profile is
// the front desk's contact record for that guest.
//
// Fields:
//  ID            – primary key identifier of the profile.
//  FullName      – guest's full name.
//  Email         – unique, stored lower-cased.
//  Address       – postal address, free text.
//  ContactNumber – phone number, free text.
//  Gender        – free text; empty when not given.
//  PlateNo       – vehicle plate for the inn's parking, empty when none.
//  CreatedAt     – timestamp of creation.
//  UpdatedAt     – timestamp of last update.
type Customer struct {
	ID            uint64    `json:"id"`
	FullName      string    `json:"full_name"`
	Email         string    `json:"email"`
	Address       string    `json:"address"`
	ContactNumber string    `json:"contact_number"`
	Gender        string    `json:"gender"`
	PlateNo       string    `json:"plate_no"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
