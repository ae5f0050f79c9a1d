package models

import (
	"time"
)

const (
	MatchUpcoming  = "upcoming"
	MatchLive      = "live"
	MatchCompleted = "completed"
)

// League is a static reference entity — no lifecycle beyond creation.
type League struct {
	ID          uint   `json:"id" gorm:"primaryKey"`
	Name        string `json:"name" gorm:"not null"`
	Slug        string `json:"slug" gorm:"uniqueIndex"`
	Sport       string `json:"sport" gorm:"index"`
	LogoURL     string `json:"logo_url,omitempty"`
	Description string `json:"description,omitempty"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// Match belongs to a league. Status is externally driven — by the admin
// endpoints, the match scheduler or the sports-feed sync worker — never
// derived from time by the read paths.
type Match struct {
	ID       uint `json:"id" gorm:"primaryKey"`
	LeagueID uint `json:"league_id" gorm:"index;not null"`

	Team1     string `json:"team1" gorm:"not null"`
	Team2     string `json:"team2" gorm:"not null"`
	Team1Logo string `json:"team1_logo,omitempty"`
	Team2Logo string `json:"team2_logo,omitempty"`

	Team1Score *int `json:"team1_score,omitempty"`
	Team2Score *int `json:"team2_score,omitempty"`

	Status    string     `json:"status" gorm:"type:varchar(16);default:'upcoming';index"`
	StartTime time.Time  `json:"start_time" gorm:"not null;index"`
	EndTime   *time.Time `json:"end_time,omitempty"`

	// Upstream sports-feed identifier for matches mirrored by the sync
	// worker; nil for matches created locally.
	ExternalRef *string `json:"external_ref,omitempty" gorm:"uniqueIndex"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`

	League *League `json:"league,omitempty" gorm:"foreignKey:LeagueID"`
}

// Subscription marks a user's interest in a league. Presence is the signal —
// there is no status field.
type Subscription struct {
	ID       uint `json:"id" gorm:"primaryKey"`
	UserID   uint `json:"user_id" gorm:"not null;uniqueIndex:idx_subscriptions_user_league"`
	LeagueID uint `json:"league_id" gorm:"not null;uniqueIndex:idx_subscriptions_user_league"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}
