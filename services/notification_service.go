package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/gofiber/fiber/v2"

	"athlete-network/models"
	"athlete-network/store"
)

// reminderWindow is how far ahead an upcoming match in a subscribed league is
// surfaced as a reminder.
const reminderWindow = time.Hour

// NotificationService merges heterogeneous event sources into one typed,
// reverse-chronological timeline. Nothing is persisted: every call recomputes
// the timeline from the entity sets, so item identities are derived from the
// source rows ("match-7", "like-12", ...). Read state is durable only for
// message items, which copy it from the message row; all other types are
// always unread.
type NotificationService struct {
	Store store.Store
}

func NewNotificationService(st store.Store) *NotificationService {
	return &NotificationService{Store: st}
}

// Timeline builds the merged notification stream for a user. Sources:
// currently-live matches and imminent upcoming matches in the user's
// subscribed leagues, acceptances of the user's connection requests, likes on
// the user's posts, and messages the user received. No deduplication across
// sources; ordering is non-increasing in timestamp.
func (s *NotificationService) Timeline(ctx context.Context, userID uint, unreadOnly bool) ([]models.Notification, error) {
	items := []models.Notification{}

	leagues, err := s.Store.LeaguesForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("timeline for user %d: %w", userID, err)
	}
	subscribed := make(map[uint]string, len(leagues))
	for _, l := range leagues {
		subscribed[l.ID] = l.Name
	}

	if len(subscribed) > 0 {
		live, err := s.Store.MatchesByStatus(ctx, models.MatchLive)
		if err != nil {
			return nil, fmt.Errorf("timeline for user %d: %w", userID, err)
		}
		for _, m := range live {
			leagueName, ok := subscribed[m.LeagueID]
			if !ok {
				continue
			}
			items = append(items, models.Notification{
				ID:          fmt.Sprintf("match-%d", m.ID),
				Type:        models.NotificationMatch,
				Title:       fmt.Sprintf("Live now: %s vs %s", m.Team1, m.Team2),
				Description: leagueName,
				Timestamp:   m.StartTime,
				Payload: models.MatchPayload{
					MatchID:  m.ID,
					LeagueID: m.LeagueID,
					Team1:    m.Team1,
					Team2:    m.Team2,
					Status:   m.Status,
				},
			})
		}

		now := time.Now()
		upcoming, err := s.Store.MatchesByStatus(ctx, models.MatchUpcoming)
		if err != nil {
			return nil, fmt.Errorf("timeline for user %d: %w", userID, err)
		}
		for _, m := range upcoming {
			leagueName, ok := subscribed[m.LeagueID]
			if !ok {
				continue
			}
			if m.StartTime.Before(now) || m.StartTime.After(now.Add(reminderWindow)) {
				continue
			}
			items = append(items, models.Notification{
				ID:          fmt.Sprintf("reminder-%d", m.ID),
				Type:        models.NotificationReminder,
				Title:       fmt.Sprintf("Starting soon: %s vs %s", m.Team1, m.Team2),
				Description: leagueName,
				Timestamp:   m.StartTime,
				Payload: models.MatchPayload{
					MatchID:  m.ID,
					LeagueID: m.LeagueID,
					Team1:    m.Team1,
					Team2:    m.Team2,
					Status:   m.Status,
				},
			})
		}
	}

	names := newProfileNames(s.Store)

	conns, err := s.Store.ConnectionsFor(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("timeline for user %d: %w", userID, err)
	}
	for _, c := range conns {
		if c.FollowerID != userID || c.Status != models.ConnectionAccepted {
			continue
		}
		username, err := names.lookup(ctx, c.FollowingID)
		if err != nil {
			return nil, err
		}
		items = append(items, models.Notification{
			ID:        fmt.Sprintf("connection-%d", c.ID),
			Type:      models.NotificationConnection,
			Title:     fmt.Sprintf("%s accepted your connection request", username),
			Timestamp: c.UpdatedAt,
			Payload: models.ConnectionPayload{
				ConnectionID: c.ID,
				UserID:       c.FollowingID,
				Username:     username,
			},
		})
	}

	likes, err := s.Store.LikesOnPostsBy(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("timeline for user %d: %w", userID, err)
	}
	for _, l := range likes {
		if l.UserID == userID {
			continue // own like on own post is not news
		}
		username, err := names.lookup(ctx, l.UserID)
		if err != nil {
			return nil, err
		}
		items = append(items, models.Notification{
			ID:        fmt.Sprintf("like-%d", l.ID),
			Type:      models.NotificationLike,
			Title:     fmt.Sprintf("%s liked your post", username),
			Timestamp: l.CreatedAt,
			Payload: models.LikePayload{
				LikeID:   l.ID,
				PostID:   l.PostID,
				UserID:   l.UserID,
				Username: username,
			},
		})
	}

	msgs, err := s.Store.MessagesInvolving(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("timeline for user %d: %w", userID, err)
	}
	for _, m := range msgs {
		if m.ReceiverID != userID {
			continue
		}
		username, err := names.lookup(ctx, m.SenderID)
		if err != nil {
			return nil, err
		}
		items = append(items, models.Notification{
			ID:          fmt.Sprintf("message-%d", m.ID),
			Type:        models.NotificationMessage,
			Title:       fmt.Sprintf("New message from %s", username),
			Description: preview(m.Content, 80),
			Timestamp:   m.CreatedAt,
			Read:        m.Read,
			Payload: models.MessagePayload{
				MessageID: m.ID,
				SenderID:  m.SenderID,
				Username:  username,
				Preview:   preview(m.Content, 80),
			},
		})
	}

	if unreadOnly {
		filtered := items[:0]
		for _, n := range items {
			if !n.Read {
				filtered = append(filtered, n)
			}
		}
		items = filtered
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Timestamp.After(items[j].Timestamp)
	})
	return items, nil
}

// profileNames memoizes username lookups within a single timeline build.
type profileNames struct {
	store store.Store
	cache map[uint]string
}

func newProfileNames(st store.Store) *profileNames {
	return &profileNames{store: st, cache: map[uint]string{}}
}

func (p *profileNames) lookup(ctx context.Context, userID uint) (string, error) {
	if name, ok := p.cache[userID]; ok {
		return name, nil
	}
	u, err := p.store.GetUser(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("notification actor %d: %w", userID, err)
	}
	p.cache[userID] = u.Username
	return u.Username, nil
}

func preview(content string, max int) string {
	r := []rune(content)
	if len(r) <= max {
		return content
	}
	return string(r[:max]) + "…"
}

// --- HTTP endpoints ---

// GetNotifications handles GET /notifications?unread_only=.
func (s *NotificationService) GetNotifications(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "missing user context"})
	}
	unreadOnly := c.Query("unread_only") == "true"
	timeline, err := s.Timeline(c.Context(), userID, unreadOnly)
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(timeline)
}
