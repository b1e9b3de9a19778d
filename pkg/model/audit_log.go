package model

import "time"

// AuditLogEntry is an immutable record of one mutating action. Entries are
// append-only: nothing in the service mutates or deletes them.
type AuditLogEntry struct {
	ID        string            `json:"id,omitempty" bson:"_id,omitempty"`
	Timestamp time.Time         `json:"timestamp" bson:"timestamp"`
	ActorID   string            `json:"actor_id" bson:"actor_id"`
	ActorName string            `json:"actor_name,omitempty" bson:"actor_name,omitempty"`
	// Action is a dotted namespace such as "reservation.confirmed" or
	// "room.deleted".
	Action string `json:"action" bson:"action"`
	// HotelID is empty for system-global actions (e.g. full-system backups).
	HotelID  string            `json:"hotel_id,omitempty" bson:"hotel_id,omitempty"`
	Metadata map[string]string `json:"metadata,omitempty" bson:"metadata,omitempty"`
}

// AuditFilter selects audit entries for a read. Zero values mean
// "no constraint on this dimension".
type AuditFilter struct {
	HotelID string
	ActorID string
	// Action matches case-insensitively as a substring of the entry action.
	Action string
	// From and To bound the timestamp inclusively; To is extended to the end
	// of its day.
	From Date
	To   Date
}
