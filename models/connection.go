package models

import (
	"time"
)

const (
	ConnectionPending  = "pending"
	ConnectionAccepted = "accepted"
	ConnectionRejected = "rejected"
)

// Connection is a directed, status-qualified edge between two users:
// FollowerID requested, FollowingID decides. The unique index on the ordered
// pair blocks re-creation regardless of status (an existing rejected edge also
// blocks), while the reverse pair B→A stays creatable once A→B exists — that
// asymmetry is inherited behavior and is pinned by tests rather than fixed.
//
// Status transitions: pending → accepted or pending → rejected. The transition
// path validates only enum membership, not the current status.
type Connection struct {
	ID          uint   `json:"id" gorm:"primaryKey"`
	FollowerID  uint   `json:"follower_id" gorm:"not null;uniqueIndex:idx_connections_pair;index"`
	FollowingID uint   `json:"following_id" gorm:"not null;uniqueIndex:idx_connections_pair;index"`
	Status      string `json:"status" gorm:"type:varchar(16);default:'pending';index"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"` // acceptance/rejection time

	// Requester profile, attached on pending-inbound reads. Not stored.
	Requester *PublicProfile `json:"requester,omitempty" gorm:"-"`
}
