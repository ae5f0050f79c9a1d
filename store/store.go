package store

import (
	"context"
	"strings"

	"athlete-network/models"
)

// Store is the entity-store contract shared by the in-memory realization
// (fixtures/tests) and the relational realization (production). Both must
// produce identical results for identical call sequences; only the relational
// store is crash-consistent, and the memory store is single-writer-assumed
// beyond basic map safety.
//
// Writes assign identity and creation timestamps server-side — caller-supplied
// values for those fields are overwritten. Uniqueness (username/email, ordered
// connection pairs, (user, post) likes, (user, league) subscriptions) is
// enforced inside the store so duplicate detection is atomic.
//
// Ordering contracts, where a caller may rely on them:
//   - MessagesBetween: ascending by creation time (chronological display).
//   - MessagesInvolving: descending by creation time (newest first).
//   - CommentsForPost: ascending by creation time.
//   - MatchesByStatus, MatchesForLeague: ascending by start time.
// Everything else is best-effort order and callers must not depend on it.
type Store interface {
	// Users
	CreateUser(ctx context.Context, u *models.User) error
	GetUser(ctx context.Context, id uint) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	// UpdateUser merges fields into the user row. Identity, password and
	// creation timestamp are silently dropped from the field map.
	UpdateUser(ctx context.Context, id uint, fields map[string]interface{}) (*models.User, error)
	// SearchUsers is a case-insensitive substring match over full name,
	// username, team and sport.
	SearchUsers(ctx context.Context, query string) ([]models.User, error)
	AllUsers(ctx context.Context) ([]models.User, error)

	// Posts
	CreatePost(ctx context.Context, p *models.Post) error
	GetPost(ctx context.Context, id uint) (*models.Post, error)
	PostsByAuthors(ctx context.Context, authorIDs []uint) ([]models.Post, error)

	// Likes and comments
	CreateLike(ctx context.Context, l *models.Like) error
	HasLiked(ctx context.Context, userID, postID uint) (bool, error)
	LikeCount(ctx context.Context, postID uint) (int64, error)
	// LikesOnPostsBy returns likes received by posts authored by the user.
	LikesOnPostsBy(ctx context.Context, authorID uint) ([]models.Like, error)
	CreateComment(ctx context.Context, c *models.Comment) error
	CommentsForPost(ctx context.Context, postID uint) ([]models.Comment, error)
	CommentCount(ctx context.Context, postID uint) (int64, error)

	// Connections
	CreateConnection(ctx context.Context, c *models.Connection) error
	GetConnection(ctx context.Context, id uint) (*models.Connection, error)
	UpdateConnectionStatus(ctx context.Context, id uint, status string) (*models.Connection, error)
	// ConnectionsFor returns every edge touching the user, any status,
	// either direction.
	ConnectionsFor(ctx context.Context, userID uint) ([]models.Connection, error)
	PendingInbound(ctx context.Context, userID uint) ([]models.Connection, error)
	// AcceptedFor returns accepted edges touching the user, either direction.
	AcceptedFor(ctx context.Context, userID uint) ([]models.Connection, error)

	// Messages
	CreateMessage(ctx context.Context, m *models.Message) error
	MessagesBetween(ctx context.Context, userA, userB uint) ([]models.Message, error)
	MessagesInvolving(ctx context.Context, userID uint) ([]models.Message, error)
	UnreadCount(ctx context.Context, userID uint) (int64, error)
	// MarkConversationRead flips unread messages sent by senderID to readerID.
	MarkConversationRead(ctx context.Context, readerID, senderID uint) error

	// Leagues, matches, subscriptions
	CreateLeague(ctx context.Context, l *models.League) error
	GetLeague(ctx context.Context, id uint) (*models.League, error)
	AllLeagues(ctx context.Context) ([]models.League, error)
	CreateMatch(ctx context.Context, m *models.Match) error
	GetMatch(ctx context.Context, id uint) (*models.Match, error)
	UpdateMatch(ctx context.Context, id uint, fields map[string]interface{}) (*models.Match, error)
	MatchesByStatus(ctx context.Context, status string) ([]models.Match, error)
	MatchesForLeague(ctx context.Context, leagueID uint) ([]models.Match, error)
	CreateSubscription(ctx context.Context, s *models.Subscription) error
	LeaguesForUser(ctx context.Context, userID uint) ([]models.League, error)
}

// Mutable user profile columns. Shared by both realizations so the
// immutability filter cannot drift between them.
var userMutableFields = map[string]bool{
	"full_name":  true,
	"avatar_url": true,
	"sport":      true,
	"position":   true,
	"team":       true,
	"bio":        true,
	"is_active":  true,
	"last_login": true,
}

// Mutable match columns: status, scores and end time are externally driven.
var matchMutableFields = map[string]bool{
	"status":      true,
	"team1_score": true,
	"team2_score": true,
	"end_time":    true,
}

func filterFields(fields map[string]interface{}, allowed map[string]bool) map[string]interface{} {
	out := make(map[string]interface{}, len(fields))
	for k, v := range fields {
		if allowed[k] {
			out[k] = v
		}
	}
	return out
}

func normalizeQuery(q string) string {
	return strings.ToLower(strings.TrimSpace(q))
}

// likeEscape keeps user-supplied search terms literal inside a LIKE pattern.
func likeEscape(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "%", `\%`)
	s = strings.ReplaceAll(s, "_", `\_`)
	return s
}
