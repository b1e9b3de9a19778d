package model

import "time"

// Room belongs to exactly one hotel. IsAvailable is an operator-controlled
// override (maintenance, renovation) and independent of whether the room is
// free for a given date range — that is derived from reservations.
type Room struct {
	ID          string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	HotelID     string    `json:"hotel_id" bson:"hotel_id" validate:"required,mongodb"`
	Type        string    `json:"type" bson:"type" validate:"required,min=1,max=100"`
	Price       float64   `json:"price" bson:"price" validate:"min=0"`
	Capacity    int       `json:"capacity" bson:"capacity" validate:"required,min=1"`
	IsAvailable bool      `json:"is_available" bson:"is_available"`
	Description string    `json:"description,omitempty" bson:"description,omitempty" validate:"omitempty,max=2000"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
	UpdatedAt   time.Time `json:"updated_at" bson:"updated_at" validate:"omitempty"`

	// ConfirmCapacity acknowledges a capacity above the operator-confirmation
	// threshold. Request-only; never persisted.
	ConfirmCapacity bool `json:"confirm_capacity,omitempty" bson:"-"`
}

// RoomUpdate carries the patchable subset of Room.
type RoomUpdate struct {
	Type        *string  `json:"type,omitempty" validate:"omitempty,min=1,max=100"`
	Price       *float64 `json:"price,omitempty" validate:"omitempty,min=0"`
	Capacity    *int     `json:"capacity,omitempty" validate:"omitempty,min=1"`
	IsAvailable *bool    `json:"is_available,omitempty"`
	Description *string  `json:"description,omitempty" validate:"omitempty,max=2000"`

	// ConfirmCapacity acknowledges a capacity above the operator-confirmation
	// threshold. Without it, such updates are rejected.
	ConfirmCapacity bool `json:"confirm_capacity,omitempty"`
}
