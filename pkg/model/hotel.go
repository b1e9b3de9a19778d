package model

import "time"

// Hotel is the tenant boundary: every room, reservation, audit entry and
// hotel-scoped backup belongs to exactly one hotel.
type Hotel struct {
	ID           string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	Name         string    `json:"name" bson:"name" validate:"required,min=2,max=100"`
	City         string    `json:"city" bson:"city" validate:"required,min=2,max=100"`
	Country      string    `json:"country" bson:"country" validate:"omitempty,min=2,max=100"`
	ContactEmail string    `json:"contact_email" bson:"contact_email" validate:"omitempty,email"`
	ContactPhone string    `json:"contact_phone" bson:"contact_phone" validate:"omitempty,e164"`
	TimeZone     string    `json:"time_zone,omitempty" bson:"time_zone,omitempty" validate:"omitempty,timezone"`
	CreatedAt    time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
	UpdatedAt    time.Time `json:"updated_at" bson:"updated_at" validate:"omitempty"`
}

// HotelUpdate carries the patchable subset of Hotel. Nil/empty fields are
// left untouched.
type HotelUpdate struct {
	Name         string `json:"name,omitempty" validate:"omitempty,min=2,max=100"`
	City         string `json:"city,omitempty" validate:"omitempty,min=2,max=100"`
	Country      string `json:"country,omitempty" validate:"omitempty,min=2,max=100"`
	ContactEmail string `json:"contact_email,omitempty" validate:"omitempty,email"`
	ContactPhone string `json:"contact_phone,omitempty" validate:"omitempty"`
	TimeZone     string `json:"time_zone,omitempty" validate:"omitempty,timezone"`
}
