package store

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"athlete-network/models"
)

// MemoryStore is the map-backed realization of Store, used for fixtures and
// tests. It owns auto-incrementing integer identity generation, does not
// persist across restarts, and beyond the mutex guarding its maps offers no
// concurrency guarantees — single writer assumed.
//
// Iteration is in id order, which for monotonically assigned ids equals
// insertion order, so its best-effort result ordering is stable.
type MemoryStore struct {
	mu sync.RWMutex

	users         map[uint]*models.User
	posts         map[uint]*models.Post
	likes         map[uint]*models.Like
	comments      map[uint]*models.Comment
	connections   map[uint]*models.Connection
	messages      map[uint]*models.Message
	leagues       map[uint]*models.League
	matches       map[uint]*models.Match
	subscriptions map[uint]*models.Subscription

	userSeq, postSeq, likeSeq, commentSeq     uint
	connSeq, messageSeq, leagueSeq, matchSeq  uint
	subscriptionSeq                           uint
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:         make(map[uint]*models.User),
		posts:         make(map[uint]*models.Post),
		likes:         make(map[uint]*models.Like),
		comments:      make(map[uint]*models.Comment),
		connections:   make(map[uint]*models.Connection),
		messages:      make(map[uint]*models.Message),
		leagues:       make(map[uint]*models.League),
		matches:       make(map[uint]*models.Match),
		subscriptions: make(map[uint]*models.Subscription),
	}
}

func sortedIDs[K ~uint, V any](m map[K]V) []K {
	ids := make([]K, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// --- Users ---

func (s *MemoryStore) CreateUser(_ context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Username == u.Username || existing.Email == u.Email {
			return fmt.Errorf("create user: %w", ErrConflict)
		}
	}
	s.userSeq++
	u.ID = s.userSeq
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	cp := *u
	s.users[u.ID] = &cp
	return nil
}

func (s *MemoryStore) GetUser(_ context.Context, id uint) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, fmt.Errorf("get user: %w", ErrNotFound)
	}
	cp := *u
	return &cp, nil
}

func (s *MemoryStore) GetUserByUsername(_ context.Context, username string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, id := range sortedIDs(s.users) {
		if s.users[id].Username == username {
			cp := *s.users[id]
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("get user by username: %w", ErrNotFound)
}

func (s *MemoryStore) UpdateUser(_ context.Context, id uint, fields map[string]interface{}) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, fmt.Errorf("update user: %w", ErrNotFound)
	}
	for k, v := range filterFields(fields, userMutableFields) {
		switch k {
		case "full_name":
			u.FullName, _ = v.(string)
		case "avatar_url":
			u.AvatarURL, _ = v.(string)
		case "sport":
			u.Sport, _ = v.(string)
		case "position":
			u.Position, _ = v.(string)
		case "team":
			u.Team, _ = v.(string)
		case "bio":
			u.Bio, _ = v.(string)
		case "is_active":
			u.IsActive, _ = v.(bool)
		case "last_login":
			if t, ok := v.(*time.Time); ok {
				u.LastLogin = t
			} else if t, ok := v.(time.Time); ok {
				u.LastLogin = &t
			}
		}
	}
	u.UpdatedAt = time.Now()
	cp := *u
	return &cp, nil
}

func (s *MemoryStore) SearchUsers(_ context.Context, query string) ([]models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	term := normalizeQuery(query)
	out := []models.User{}
	for _, id := range sortedIDs(s.users) {
		u := s.users[id]
		if strings.Contains(strings.ToLower(u.FullName), term) ||
			strings.Contains(strings.ToLower(u.Username), term) ||
			strings.Contains(strings.ToLower(u.Team), term) ||
			strings.Contains(strings.ToLower(u.Sport), term) {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (s *MemoryStore) AllUsers(_ context.Context) ([]models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.User{}
	for _, id := range sortedIDs(s.users) {
		out = append(out, *s.users[id])
	}
	return out, nil
}

// --- Posts ---

func (s *MemoryStore) CreatePost(_ context.Context, p *models.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.postSeq++
	p.ID = s.postSeq
	p.CreatedAt = time.Now()
	cp := *p
	s.posts[p.ID] = &cp
	return nil
}

func (s *MemoryStore) GetPost(_ context.Context, id uint) (*models.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.posts[id]
	if !ok {
		return nil, fmt.Errorf("get post: %w", ErrNotFound)
	}
	cp := *p
	return &cp, nil
}

func (s *MemoryStore) PostsByAuthors(_ context.Context, authorIDs []uint) ([]models.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	authors := make(map[uint]bool, len(authorIDs))
	for _, id := range authorIDs {
		authors[id] = true
	}
	out := []models.Post{}
	for _, id := range sortedIDs(s.posts) {
		if authors[s.posts[id].UserID] {
			out = append(out, *s.posts[id])
		}
	}
	return out, nil
}

// --- Likes and comments ---

func (s *MemoryStore) CreateLike(_ context.Context, l *models.Like) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.likes {
		if existing.UserID == l.UserID && existing.PostID == l.PostID {
			return fmt.Errorf("create like: %w", ErrConflict)
		}
	}
	s.likeSeq++
	l.ID = s.likeSeq
	l.CreatedAt = time.Now()
	cp := *l
	s.likes[l.ID] = &cp
	return nil
}

func (s *MemoryStore) HasLiked(_ context.Context, userID, postID uint) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, l := range s.likes {
		if l.UserID == userID && l.PostID == postID {
			return true, nil
		}
	}
	return false, nil
}

func (s *MemoryStore) LikeCount(_ context.Context, postID uint) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var count int64
	for _, l := range s.likes {
		if l.PostID == postID {
			count++
		}
	}
	return count, nil
}

func (s *MemoryStore) LikesOnPostsBy(_ context.Context, authorID uint) ([]models.Like, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.Like{}
	for _, id := range sortedIDs(s.likes) {
		l := s.likes[id]
		if p, ok := s.posts[l.PostID]; ok && p.UserID == authorID {
			out = append(out, *l)
		}
	}
	return out, nil
}

func (s *MemoryStore) CreateComment(_ context.Context, c *models.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.commentSeq++
	c.ID = s.commentSeq
	c.CreatedAt = time.Now()
	cp := *c
	s.comments[c.ID] = &cp
	return nil
}

func (s *MemoryStore) CommentsForPost(_ context.Context, postID uint) ([]models.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.Comment{}
	for _, id := range sortedIDs(s.comments) {
		if s.comments[id].PostID == postID {
			out = append(out, *s.comments[id])
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *MemoryStore) CommentCount(_ context.Context, postID uint) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var count int64
	for _, c := range s.comments {
		if c.PostID == postID {
			count++
		}
	}
	return count, nil
}

// --- Connections ---

func (s *MemoryStore) CreateConnection(_ context.Context, c *models.Connection) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	// Ordered pair blocks re-creation regardless of status; the reverse
	// pair does not.
	for _, existing := range s.connections {
		if existing.FollowerID == c.FollowerID && existing.FollowingID == c.FollowingID {
			return fmt.Errorf("create connection: %w", ErrConflict)
		}
	}
	s.connSeq++
	c.ID = s.connSeq
	c.CreatedAt = time.Now()
	c.UpdatedAt = c.CreatedAt
	cp := *c
	cp.Requester = nil
	s.connections[c.ID] = &cp
	return nil
}

func (s *MemoryStore) GetConnection(_ context.Context, id uint) (*models.Connection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.connections[id]
	if !ok {
		return nil, fmt.Errorf("get connection: %w", ErrNotFound)
	}
	cp := *c
	return &cp, nil
}

func (s *MemoryStore) UpdateConnectionStatus(_ context.Context, id uint, status string) (*models.Connection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.connections[id]
	if !ok {
		return nil, fmt.Errorf("update connection: %w", ErrNotFound)
	}
	c.Status = status
	c.UpdatedAt = time.Now()
	cp := *c
	return &cp, nil
}

func (s *MemoryStore) ConnectionsFor(_ context.Context, userID uint) ([]models.Connection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.Connection{}
	for _, id := range sortedIDs(s.connections) {
		c := s.connections[id]
		if c.FollowerID == userID || c.FollowingID == userID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (s *MemoryStore) PendingInbound(_ context.Context, userID uint) ([]models.Connection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.Connection{}
	for _, id := range sortedIDs(s.connections) {
		c := s.connections[id]
		if c.FollowingID == userID && c.Status == models.ConnectionPending {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (s *MemoryStore) AcceptedFor(_ context.Context, userID uint) ([]models.Connection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.Connection{}
	for _, id := range sortedIDs(s.connections) {
		c := s.connections[id]
		if (c.FollowerID == userID || c.FollowingID == userID) && c.Status == models.ConnectionAccepted {
			out = append(out, *c)
		}
	}
	return out, nil
}

// --- Messages ---

func (s *MemoryStore) CreateMessage(_ context.Context, m *models.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messageSeq++
	m.ID = s.messageSeq
	m.CreatedAt = time.Now()
	cp := *m
	s.messages[m.ID] = &cp
	return nil
}

func (s *MemoryStore) MessagesBetween(_ context.Context, userA, userB uint) ([]models.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.Message{}
	for _, id := range sortedIDs(s.messages) {
		m := s.messages[id]
		if (m.SenderID == userA && m.ReceiverID == userB) || (m.SenderID == userB && m.ReceiverID == userA) {
			out = append(out, *m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *MemoryStore) MessagesInvolving(_ context.Context, userID uint) ([]models.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.Message{}
	for _, id := range sortedIDs(s.messages) {
		m := s.messages[id]
		if m.SenderID == userID || m.ReceiverID == userID {
			out = append(out, *m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *MemoryStore) UnreadCount(_ context.Context, userID uint) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var count int64
	for _, m := range s.messages {
		if m.ReceiverID == userID && !m.Read {
			count++
		}
	}
	return count, nil
}

func (s *MemoryStore) MarkConversationRead(_ context.Context, readerID, senderID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.messages {
		if m.ReceiverID == readerID && m.SenderID == senderID {
			m.Read = true
		}
	}
	return nil
}

// --- Leagues, matches, subscriptions ---

func (s *MemoryStore) CreateLeague(_ context.Context, l *models.League) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.leagues {
		if l.Slug != "" && existing.Slug == l.Slug {
			return fmt.Errorf("create league: %w", ErrConflict)
		}
	}
	s.leagueSeq++
	l.ID = s.leagueSeq
	l.CreatedAt = time.Now()
	cp := *l
	s.leagues[l.ID] = &cp
	return nil
}

func (s *MemoryStore) GetLeague(_ context.Context, id uint) (*models.League, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	l, ok := s.leagues[id]
	if !ok {
		return nil, fmt.Errorf("get league: %w", ErrNotFound)
	}
	cp := *l
	return &cp, nil
}

func (s *MemoryStore) AllLeagues(_ context.Context) ([]models.League, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.League{}
	for _, id := range sortedIDs(s.leagues) {
		out = append(out, *s.leagues[id])
	}
	return out, nil
}

func (s *MemoryStore) CreateMatch(_ context.Context, m *models.Match) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.matches {
		if m.ExternalRef != nil && existing.ExternalRef != nil && *existing.ExternalRef == *m.ExternalRef {
			return fmt.Errorf("create match: %w", ErrConflict)
		}
	}
	s.matchSeq++
	m.ID = s.matchSeq
	m.CreatedAt = time.Now()
	m.UpdatedAt = m.CreatedAt
	cp := *m
	cp.League = nil
	s.matches[m.ID] = &cp
	return nil
}

func (s *MemoryStore) GetMatch(_ context.Context, id uint) (*models.Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.matches[id]
	if !ok {
		return nil, fmt.Errorf("get match: %w", ErrNotFound)
	}
	cp := *m
	s.attachLeague(&cp)
	return &cp, nil
}

func (s *MemoryStore) attachLeague(m *models.Match) {
	if l, ok := s.leagues[m.LeagueID]; ok {
		lc := *l
		m.League = &lc
	}
}

func (s *MemoryStore) UpdateMatch(_ context.Context, id uint, fields map[string]interface{}) (*models.Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.matches[id]
	if !ok {
		return nil, fmt.Errorf("update match: %w", ErrNotFound)
	}
	for k, v := range filterFields(fields, matchMutableFields) {
		switch k {
		case "status":
			m.Status, _ = v.(string)
		case "team1_score":
			m.Team1Score = asIntPtr(v)
		case "team2_score":
			m.Team2Score = asIntPtr(v)
		case "end_time":
			if t, ok := v.(*time.Time); ok {
				m.EndTime = t
			} else if t, ok := v.(time.Time); ok {
				m.EndTime = &t
			}
		}
	}
	m.UpdatedAt = time.Now()
	cp := *m
	return &cp, nil
}

func asIntPtr(v interface{}) *int {
	switch n := v.(type) {
	case *int:
		return n
	case int:
		return &n
	}
	return nil
}

func (s *MemoryStore) MatchesByStatus(_ context.Context, status string) ([]models.Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.Match{}
	for _, id := range sortedIDs(s.matches) {
		if s.matches[id].Status == status {
			cp := *s.matches[id]
			s.attachLeague(&cp)
			out = append(out, cp)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	return out, nil
}

func (s *MemoryStore) MatchesForLeague(_ context.Context, leagueID uint) ([]models.Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.Match{}
	for _, id := range sortedIDs(s.matches) {
		if s.matches[id].LeagueID == leagueID {
			out = append(out, *s.matches[id])
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	return out, nil
}

func (s *MemoryStore) CreateSubscription(_ context.Context, sub *models.Subscription) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.subscriptions {
		if existing.UserID == sub.UserID && existing.LeagueID == sub.LeagueID {
			return fmt.Errorf("create subscription: %w", ErrConflict)
		}
	}
	s.subscriptionSeq++
	sub.ID = s.subscriptionSeq
	sub.CreatedAt = time.Now()
	cp := *sub
	s.subscriptions[sub.ID] = &cp
	return nil
}

func (s *MemoryStore) LeaguesForUser(_ context.Context, userID uint) ([]models.League, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.League{}
	for _, id := range sortedIDs(s.subscriptions) {
		sub := s.subscriptions[id]
		if sub.UserID == userID {
			if l, ok := s.leagues[sub.LeagueID]; ok {
				out = append(out, *l)
			}
		}
	}
	return out, nil
}
