package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"athlete-network/models"
)

// GormStore is the relational realization of Store, backed by Postgres.
// Identity generation is delegated to the database; uniqueness comes from the
// unique indexes declared on the models, surfaced as ErrConflict via GORM's
// error translation (gorm.Config{TranslateError: true} is required).
type GormStore struct {
	DB *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{DB: db}
}

// wrapErr maps GORM errors onto the shared taxonomy, annotated with the
// entity and operation that failed.
func wrapErr(err error, op string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%s: %w", op, ErrConflict)
	default:
		return fmt.Errorf("%s: %v: %w", op, err, ErrStorageUnavailable)
	}
}

// --- Users ---

func (s *GormStore) CreateUser(ctx context.Context, u *models.User) error {
	u.ID = 0
	return wrapErr(s.DB.WithContext(ctx).Create(u).Error, "create user")
}

func (s *GormStore) GetUser(ctx context.Context, id uint) (*models.User, error) {
	var u models.User
	if err := s.DB.WithContext(ctx).First(&u, "id = ?", id).Error; err != nil {
		return nil, wrapErr(err, "get user")
	}
	return &u, nil
}

func (s *GormStore) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var u models.User
	if err := s.DB.WithContext(ctx).First(&u, "username = ?", username).Error; err != nil {
		return nil, wrapErr(err, "get user by username")
	}
	return &u, nil
}

func (s *GormStore) UpdateUser(ctx context.Context, id uint, fields map[string]interface{}) (*models.User, error) {
	var u models.User
	if err := s.DB.WithContext(ctx).First(&u, "id = ?", id).Error; err != nil {
		return nil, wrapErr(err, "update user")
	}
	allowed := filterFields(fields, userMutableFields)
	if len(allowed) > 0 {
		if err := s.DB.WithContext(ctx).Model(&u).Updates(allowed).Error; err != nil {
			return nil, wrapErr(err, "update user")
		}
	}
	if err := s.DB.WithContext(ctx).First(&u, "id = ?", id).Error; err != nil {
		return nil, wrapErr(err, "update user")
	}
	return &u, nil
}

func (s *GormStore) SearchUsers(ctx context.Context, query string) ([]models.User, error) {
	users := []models.User{}
	term := "%" + likeEscape(normalizeQuery(query)) + "%"
	err := s.DB.WithContext(ctx).
		Where("LOWER(full_name) LIKE ? OR LOWER(username) LIKE ? OR LOWER(team) LIKE ? OR LOWER(sport) LIKE ?",
			term, term, term, term).
		Find(&users).Error
	if err != nil {
		return nil, wrapErr(err, "search users")
	}
	return users, nil
}

func (s *GormStore) AllUsers(ctx context.Context) ([]models.User, error) {
	users := []models.User{}
	if err := s.DB.WithContext(ctx).Order("id ASC").Find(&users).Error; err != nil {
		return nil, wrapErr(err, "list users")
	}
	return users, nil
}

// --- Posts ---

func (s *GormStore) CreatePost(ctx context.Context, p *models.Post) error {
	p.ID = 0
	return wrapErr(s.DB.WithContext(ctx).Create(p).Error, "create post")
}

func (s *GormStore) GetPost(ctx context.Context, id uint) (*models.Post, error) {
	var p models.Post
	if err := s.DB.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, wrapErr(err, "get post")
	}
	return &p, nil
}

func (s *GormStore) PostsByAuthors(ctx context.Context, authorIDs []uint) ([]models.Post, error) {
	if len(authorIDs) == 0 {
		return []models.Post{}, nil
	}
	posts := []models.Post{}
	if err := s.DB.WithContext(ctx).Where("user_id IN ?", authorIDs).Find(&posts).Error; err != nil {
		return nil, wrapErr(err, "posts by authors")
	}
	return posts, nil
}

// --- Likes and comments ---

func (s *GormStore) CreateLike(ctx context.Context, l *models.Like) error {
	l.ID = 0
	return wrapErr(s.DB.WithContext(ctx).Create(l).Error, "create like")
}

func (s *GormStore) HasLiked(ctx context.Context, userID, postID uint) (bool, error) {
	var count int64
	err := s.DB.WithContext(ctx).Model(&models.Like{}).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Count(&count).Error
	if err != nil {
		return false, wrapErr(err, "has liked")
	}
	return count > 0, nil
}

func (s *GormStore) LikeCount(ctx context.Context, postID uint) (int64, error) {
	var count int64
	err := s.DB.WithContext(ctx).Model(&models.Like{}).
		Where("post_id = ?", postID).
		Count(&count).Error
	if err != nil {
		return 0, wrapErr(err, "like count")
	}
	return count, nil
}

func (s *GormStore) LikesOnPostsBy(ctx context.Context, authorID uint) ([]models.Like, error) {
	likes := []models.Like{}
	err := s.DB.WithContext(ctx).
		Joins("JOIN posts ON posts.id = likes.post_id").
		Where("posts.user_id = ?", authorID).
		Find(&likes).Error
	if err != nil {
		return nil, wrapErr(err, "likes on posts")
	}
	return likes, nil
}

func (s *GormStore) CreateComment(ctx context.Context, c *models.Comment) error {
	c.ID = 0
	return wrapErr(s.DB.WithContext(ctx).Create(c).Error, "create comment")
}

func (s *GormStore) CommentsForPost(ctx context.Context, postID uint) ([]models.Comment, error) {
	comments := []models.Comment{}
	err := s.DB.WithContext(ctx).
		Where("post_id = ?", postID).
		Order("created_at ASC, id ASC").
		Find(&comments).Error
	if err != nil {
		return nil, wrapErr(err, "comments for post")
	}
	return comments, nil
}

func (s *GormStore) CommentCount(ctx context.Context, postID uint) (int64, error) {
	var count int64
	err := s.DB.WithContext(ctx).Model(&models.Comment{}).
		Where("post_id = ?", postID).
		Count(&count).Error
	if err != nil {
		return 0, wrapErr(err, "comment count")
	}
	return count, nil
}

// --- Connections ---

func (s *GormStore) CreateConnection(ctx context.Context, c *models.Connection) error {
	c.ID = 0
	return wrapErr(s.DB.WithContext(ctx).Create(c).Error, "create connection")
}

func (s *GormStore) GetConnection(ctx context.Context, id uint) (*models.Connection, error) {
	var c models.Connection
	if err := s.DB.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		return nil, wrapErr(err, "get connection")
	}
	return &c, nil
}

func (s *GormStore) UpdateConnectionStatus(ctx context.Context, id uint, status string) (*models.Connection, error) {
	var c models.Connection
	if err := s.DB.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		return nil, wrapErr(err, "update connection")
	}
	if err := s.DB.WithContext(ctx).Model(&c).Update("status", status).Error; err != nil {
		return nil, wrapErr(err, "update connection")
	}
	return &c, nil
}

func (s *GormStore) ConnectionsFor(ctx context.Context, userID uint) ([]models.Connection, error) {
	conns := []models.Connection{}
	err := s.DB.WithContext(ctx).
		Where("follower_id = ? OR following_id = ?", userID, userID).
		Find(&conns).Error
	if err != nil {
		return nil, wrapErr(err, "connections for user")
	}
	return conns, nil
}

func (s *GormStore) PendingInbound(ctx context.Context, userID uint) ([]models.Connection, error) {
	conns := []models.Connection{}
	err := s.DB.WithContext(ctx).
		Where("following_id = ? AND status = ?", userID, models.ConnectionPending).
		Find(&conns).Error
	if err != nil {
		return nil, wrapErr(err, "pending inbound")
	}
	return conns, nil
}

func (s *GormStore) AcceptedFor(ctx context.Context, userID uint) ([]models.Connection, error) {
	conns := []models.Connection{}
	err := s.DB.WithContext(ctx).
		Where("(follower_id = ? OR following_id = ?) AND status = ?", userID, userID, models.ConnectionAccepted).
		Find(&conns).Error
	if err != nil {
		return nil, wrapErr(err, "accepted connections")
	}
	return conns, nil
}

// --- Messages ---

func (s *GormStore) CreateMessage(ctx context.Context, m *models.Message) error {
	m.ID = 0
	return wrapErr(s.DB.WithContext(ctx).Create(m).Error, "create message")
}

func (s *GormStore) MessagesBetween(ctx context.Context, userA, userB uint) ([]models.Message, error) {
	msgs := []models.Message{}
	err := s.DB.WithContext(ctx).
		Where("(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)",
			userA, userB, userB, userA).
		Order("created_at ASC, id ASC").
		Find(&msgs).Error
	if err != nil {
		return nil, wrapErr(err, "messages between")
	}
	return msgs, nil
}

func (s *GormStore) MessagesInvolving(ctx context.Context, userID uint) ([]models.Message, error) {
	msgs := []models.Message{}
	err := s.DB.WithContext(ctx).
		Where("sender_id = ? OR receiver_id = ?", userID, userID).
		Order("created_at DESC, id DESC").
		Find(&msgs).Error
	if err != nil {
		return nil, wrapErr(err, "messages involving")
	}
	return msgs, nil
}

func (s *GormStore) UnreadCount(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := s.DB.WithContext(ctx).Model(&models.Message{}).
		Where("receiver_id = ? AND read = ?", userID, false).
		Count(&count).Error
	if err != nil {
		return 0, wrapErr(err, "unread count")
	}
	return count, nil
}

func (s *GormStore) MarkConversationRead(ctx context.Context, readerID, senderID uint) error {
	err := s.DB.WithContext(ctx).Model(&models.Message{}).
		Where("receiver_id = ? AND sender_id = ? AND read = ?", readerID, senderID, false).
		Update("read", true).Error
	return wrapErr(err, "mark conversation read")
}

// --- Leagues, matches, subscriptions ---

func (s *GormStore) CreateLeague(ctx context.Context, l *models.League) error {
	l.ID = 0
	return wrapErr(s.DB.WithContext(ctx).Create(l).Error, "create league")
}

func (s *GormStore) GetLeague(ctx context.Context, id uint) (*models.League, error) {
	var l models.League
	if err := s.DB.WithContext(ctx).First(&l, "id = ?", id).Error; err != nil {
		return nil, wrapErr(err, "get league")
	}
	return &l, nil
}

func (s *GormStore) AllLeagues(ctx context.Context) ([]models.League, error) {
	leagues := []models.League{}
	if err := s.DB.WithContext(ctx).Order("id ASC").Find(&leagues).Error; err != nil {
		return nil, wrapErr(err, "list leagues")
	}
	return leagues, nil
}

func (s *GormStore) CreateMatch(ctx context.Context, m *models.Match) error {
	m.ID = 0
	return wrapErr(s.DB.WithContext(ctx).Create(m).Error, "create match")
}

func (s *GormStore) GetMatch(ctx context.Context, id uint) (*models.Match, error) {
	var m models.Match
	if err := s.DB.WithContext(ctx).Preload("League").First(&m, "id = ?", id).Error; err != nil {
		return nil, wrapErr(err, "get match")
	}
	return &m, nil
}

func (s *GormStore) UpdateMatch(ctx context.Context, id uint, fields map[string]interface{}) (*models.Match, error) {
	var m models.Match
	if err := s.DB.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		return nil, wrapErr(err, "update match")
	}
	allowed := filterFields(fields, matchMutableFields)
	if len(allowed) > 0 {
		if err := s.DB.WithContext(ctx).Model(&m).Updates(allowed).Error; err != nil {
			return nil, wrapErr(err, "update match")
		}
	}
	if err := s.DB.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		return nil, wrapErr(err, "update match")
	}
	return &m, nil
}

func (s *GormStore) MatchesByStatus(ctx context.Context, status string) ([]models.Match, error) {
	matches := []models.Match{}
	err := s.DB.WithContext(ctx).
		Preload("League").
		Where("status = ?", status).
		Order("start_time ASC").
		Find(&matches).Error
	if err != nil {
		return nil, wrapErr(err, "matches by status")
	}
	return matches, nil
}

func (s *GormStore) MatchesForLeague(ctx context.Context, leagueID uint) ([]models.Match, error) {
	matches := []models.Match{}
	err := s.DB.WithContext(ctx).
		Where("league_id = ?", leagueID).
		Order("start_time ASC").
		Find(&matches).Error
	if err != nil {
		return nil, wrapErr(err, "matches for league")
	}
	return matches, nil
}

func (s *GormStore) CreateSubscription(ctx context.Context, sub *models.Subscription) error {
	sub.ID = 0
	return wrapErr(s.DB.WithContext(ctx).Create(sub).Error, "create subscription")
}

func (s *GormStore) LeaguesForUser(ctx context.Context, userID uint) ([]models.League, error) {
	leagues := []models.League{}
	err := s.DB.WithContext(ctx).
		Joins("JOIN subscriptions ON subscriptions.league_id = leagues.id").
		Where("subscriptions.user_id = ?", userID).
		Find(&leagues).Error
	if err != nil {
		return nil, wrapErr(err, "leagues for user")
	}
	return leagues, nil
}
