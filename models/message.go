package models

import (
	"time"
)

// Message is a direct message between two users. Read is the only mutable
// field, flipped by the mark-conversation-read path.
type Message struct {
	ID         uint   `json:"id" gorm:"primaryKey"`
	SenderID   uint   `json:"sender_id" gorm:"index;not null"`
	ReceiverID uint   `json:"receiver_id" gorm:"index;not null"`
	Content    string `json:"content" gorm:"type:text;not null"`
	Read       bool   `json:"read" gorm:"default:false;index"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}
