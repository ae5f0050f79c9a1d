package models

import (
	"time"
)

const (
	MediaTypeImage = "image"
	MediaTypeVideo = "video"
)

// Post is an athlete's status update. Authorship is immutable and there is no
// edit/delete path — posts are append-only.
type Post struct {
	ID        uint   `json:"id" gorm:"primaryKey"`
	UserID    uint   `json:"user_id" gorm:"index;not null"`
	Content   string `json:"content" gorm:"type:text;not null"`
	MediaURL  string `json:"media_url,omitempty"`
	MediaType string `json:"media_type,omitempty"` // image | video

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// Like marks a user's like on a post. The composite unique index is the
// idempotency boundary: a user may like a post at most once, enforced at the
// storage layer rather than by a check-then-insert.
type Like struct {
	ID     uint `json:"id" gorm:"primaryKey"`
	UserID uint `json:"user_id" gorm:"not null;uniqueIndex:idx_likes_user_post"`
	PostID uint `json:"post_id" gorm:"not null;uniqueIndex:idx_likes_user_post"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// Comment is append-only, ordered by creation time.
type Comment struct {
	ID      uint   `json:"id" gorm:"primaryKey"`
	UserID  uint   `json:"user_id" gorm:"index;not null"`
	PostID  uint   `json:"post_id" gorm:"index;not null"`
	Content string `json:"content" gorm:"type:text;not null"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}
