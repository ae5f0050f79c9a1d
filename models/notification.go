package models

import (
	"time"
)

const (
	NotificationMatch      = "match"
	NotificationConnection = "connection"
	NotificationLike       = "like"
	NotificationMessage    = "message"
	NotificationReminder   = "reminder"
)

// Notification is a synthesized timeline item, never persisted: the merger
// recomputes the full timeline on every request from the underlying entity
// sets. ID is stable across recomputations ("<type>-<entity id>") so clients
// can key on it. Only message items carry durable read state (copied from the
// message row); all other types are always unread.
type Notification struct {
	ID          string    `json:"id"`
	Type        string    `json:"type"` // match | connection | like | message | reminder
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
	Read        bool      `json:"read"`
	Payload     any       `json:"payload,omitempty"`
}

// Per-type payloads carrying the ids and denormalized names the client needs
// to render and route the item.

type MatchPayload struct {
	MatchID  uint   `json:"match_id"`
	LeagueID uint   `json:"league_id"`
	Team1    string `json:"team1"`
	Team2    string `json:"team2"`
	Status   string `json:"status"`
}

type ConnectionPayload struct {
	ConnectionID uint   `json:"connection_id"`
	UserID       uint   `json:"user_id"` // the accepting user
	Username     string `json:"username"`
}

type LikePayload struct {
	LikeID   uint   `json:"like_id"`
	PostID   uint   `json:"post_id"`
	UserID   uint   `json:"user_id"` // the liker
	Username string `json:"username"`
}

type MessagePayload struct {
	MessageID uint   `json:"message_id"`
	SenderID  uint   `json:"sender_id"`
	Username  string `json:"username"`
	Preview   string `json:"preview"`
}
