package models

import (
	"time"
)

// User is the athlete profile record.
// Identity (ID, Username, Email) is immutable after creation; profile fields
// are mutable by the owning user only. Password never leaves the core — every
// outward-facing view goes through Public().
type User struct {
	ID       uint   `json:"id" gorm:"primaryKey"`
	Username string `json:"username" gorm:"uniqueIndex;not null"`
	Email    string `json:"email" gorm:"uniqueIndex;not null"`
	Password string `json:"-" gorm:"not null"` // hashed upstream by the auth service

	FullName  string `json:"full_name"`
	AvatarURL string `json:"avatar_url,omitempty"`
	Sport     string `json:"sport,omitempty"`
	Position  string `json:"position,omitempty"`
	Team      string `json:"team,omitempty"`
	Bio       string `json:"bio,omitempty"`

	IsActive  bool       `json:"is_active" gorm:"default:true"`
	LastLogin *time.Time `json:"last_login,omitempty"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// PublicProfile is the password-stripped view of a user handed to other
// components and to the HTTP layer.
type PublicProfile struct {
	ID        uint   `json:"id"`
	Username  string `json:"username"`
	FullName  string `json:"full_name"`
	AvatarURL string `json:"avatar_url,omitempty"`
	Sport     string `json:"sport,omitempty"`
	Position  string `json:"position,omitempty"`
	Team      string `json:"team,omitempty"`
	Bio       string `json:"bio,omitempty"`
	IsActive  bool   `json:"is_active"`
}

func (u *User) Public() PublicProfile {
	return PublicProfile{
		ID:        u.ID,
		Username:  u.Username,
		FullName:  u.FullName,
		AvatarURL: u.AvatarURL,
		Sport:     u.Sport,
		Position:  u.Position,
		Team:      u.Team,
		Bio:       u.Bio,
		IsActive:  u.IsActive,
	}
}
