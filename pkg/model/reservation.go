package model

import "time"

// ReservationStatus is the lifecycle state of a reservation.
type ReservationStatus string

const (
	StatusPending    ReservationStatus = "pending"
	StatusConfirmed  ReservationStatus = "confirmed"
	StatusCheckedIn  ReservationStatus = "checked_in"
	StatusCheckedOut ReservationStatus = "checked_out"
	StatusCancelled  ReservationStatus = "cancelled"
)

// ActiveStatuses are the statuses that occupy a room: reservations in these
// states must have pairwise non-overlapping [check_in, check_out) intervals
// per room. Pending reservations are tentative holds and exempt.
var ActiveStatuses = []ReservationStatus{StatusConfirmed, StatusCheckedIn}

// IsTerminal reports whether no transition leaves the status.
func (s ReservationStatus) IsTerminal() bool {
	return s == StatusCheckedOut || s == StatusCancelled
}

// IsActive reports whether the status occupies the room.
func (s ReservationStatus) IsActive() bool {
	return s == StatusConfirmed || s == StatusCheckedIn
}

// ValidStatus reports whether s is a known lifecycle status.
func ValidStatus(s ReservationStatus) bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCheckedIn, StatusCheckedOut, StatusCancelled:
		return true
	}
	return false
}

// Reservation books one room of one hotel for a half-open date range
// [check_in, check_out). UserID is empty for walk-ins, in which case the
// guest identity is captured inline.
type Reservation struct {
	ID              string            `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	HotelID         string            `json:"hotel_id" bson:"hotel_id" validate:"required,mongodb"`
	RoomID          string            `json:"room_id" bson:"room_id" validate:"required,mongodb"`
	UserID          string            `json:"user_id,omitempty" bson:"user_id,omitempty" validate:"omitempty,max=100"`
	GuestName       string            `json:"guest_name,omitempty" bson:"guest_name,omitempty" validate:"omitempty,min=2,max=200"`
	GuestEmail      string            `json:"guest_email,omitempty" bson:"guest_email,omitempty" validate:"omitempty,email"`
	CheckIn         Date              `json:"check_in" bson:"check_in" validate:"required,calendardate"`
	CheckOut        Date              `json:"check_out" bson:"check_out" validate:"required,calendardate"`
	Guests          int               `json:"guests" bson:"guests" validate:"required,min=1"`
	Status          ReservationStatus `json:"status" bson:"status" validate:"omitempty,oneof=pending confirmed checked_in checked_out cancelled"`
	SpecialRequests string            `json:"special_requests,omitempty" bson:"special_requests,omitempty" validate:"omitempty,max=2000"`
	CreatedAt       time.Time         `json:"created_at" bson:"created_at" validate:"omitempty"`
	UpdatedAt       time.Time         `json:"updated_at" bson:"updated_at" validate:"omitempty"`
}

// IsWalkIn reports whether the reservation has no linked user.
func (r *Reservation) IsWalkIn() bool { return r.UserID == "" }

// ReservationUpdate carries the patchable subset of Reservation. Status is
// intentionally absent; status changes go through the transition operation.
type ReservationUpdate struct {
	RoomID          string `json:"room_id,omitempty" validate:"omitempty,mongodb"`
	GuestName       string `json:"guest_name,omitempty" validate:"omitempty,min=2,max=200"`
	GuestEmail      string `json:"guest_email,omitempty" validate:"omitempty,email"`
	CheckIn         Date   `json:"check_in,omitempty" validate:"omitempty,calendardate"`
	CheckOut        Date   `json:"check_out,omitempty" validate:"omitempty,calendardate"`
	Guests          *int   `json:"guests,omitempty" validate:"omitempty,min=1"`
	SpecialRequests *string `json:"special_requests,omitempty" validate:"omitempty,max=2000"`
}
