package model

import "time"

// RoomLock is an advisory lock serializing status-changing operations on one
// room. The overlap check and the reservation write it guards form a single
// critical section; the lock document's unique _id makes acquisition atomic.
// ExpiresAt lets a TTL index reap locks leaked by a crashed process.
type RoomLock struct {
	ID        string    `bson:"_id" json:"id"`
	ExpiresAt time.Time `bson:"expires_at" json:"expires_at"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
