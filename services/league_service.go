package services

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/gosimple/slug"

	"athlete-network/models"
	"athlete-network/store"
	"athlete-network/utils"
)

// LeagueService maps users to subscribed leagues and leagues to their
// matches. Match status is written here (admin endpoints), by the scheduler
// and by the sports-feed sync worker — the read paths only filter on it.
type LeagueService struct {
	Store store.Store
}

func NewLeagueService(st store.Store) *LeagueService {
	return &LeagueService{Store: st}
}

// AddLeague creates a league reference entity with a URL slug derived from
// its name.
func (s *LeagueService) AddLeague(ctx context.Context, l *models.League) error {
	if l.Name == "" {
		return fmt.Errorf("league name is required: %w", store.ErrValidation)
	}
	l.Slug = slug.Make(l.Name)
	return s.Store.CreateLeague(ctx, l)
}

// Subscribe registers a user's interest in a league. Presence is the signal;
// a duplicate pair conflicts at the storage layer.
func (s *LeagueService) Subscribe(ctx context.Context, userID, leagueID uint) (*models.Subscription, error) {
	if _, err := s.Store.GetLeague(ctx, leagueID); err != nil {
		return nil, fmt.Errorf("league %d: %w", leagueID, err)
	}
	sub := &models.Subscription{UserID: userID, LeagueID: leagueID}
	if err := s.Store.CreateSubscription(ctx, sub); err != nil {
		return nil, err
	}
	return sub, nil
}

// SubscribedLeagues returns the leagues reachable from the user's
// subscriptions.
func (s *LeagueService) SubscribedLeagues(ctx context.Context, userID uint) ([]models.League, error) {
	leagues, err := s.Store.LeaguesForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if leagues == nil {
		leagues = []models.League{}
	}
	return leagues, nil
}

// LiveMatches returns matches currently in play. Order is arbitrary.
func (s *LeagueService) LiveMatches(ctx context.Context) ([]models.Match, error) {
	return s.Store.MatchesByStatus(ctx, models.MatchLive)
}

// UpcomingMatches returns not-yet-started matches, soonest first.
func (s *LeagueService) UpcomingMatches(ctx context.Context) ([]models.Match, error) {
	return s.Store.MatchesByStatus(ctx, models.MatchUpcoming)
}

// LeagueMatches returns all matches of a league ascending by start time.
func (s *LeagueService) LeagueMatches(ctx context.Context, leagueID uint) ([]models.Match, error) {
	if _, err := s.Store.GetLeague(ctx, leagueID); err != nil {
		return nil, fmt.Errorf("league %d: %w", leagueID, err)
	}
	return s.Store.MatchesForLeague(ctx, leagueID)
}

// AddMatch creates a match under a league.
func (s *LeagueService) AddMatch(ctx context.Context, m *models.Match) error {
	if m.Team1 == "" || m.Team2 == "" {
		return fmt.Errorf("team1 and team2 are required: %w", store.ErrValidation)
	}
	if m.StartTime.IsZero() {
		return fmt.Errorf("start_time is required: %w", store.ErrValidation)
	}
	if _, err := s.Store.GetLeague(ctx, m.LeagueID); err != nil {
		return fmt.Errorf("league %d: %w", m.LeagueID, err)
	}
	if m.Status == "" {
		m.Status = models.MatchUpcoming
	}
	return s.Store.CreateMatch(ctx, m)
}

// SetMatchStatus drives a match through upcoming → live → completed, with
// optional score updates.
func (s *LeagueService) SetMatchStatus(ctx context.Context, matchID uint, status string, team1Score, team2Score *int) (*models.Match, error) {
	switch status {
	case models.MatchUpcoming, models.MatchLive, models.MatchCompleted:
	default:
		return nil, fmt.Errorf("invalid match status %q: %w", status, store.ErrValidation)
	}
	fields := map[string]interface{}{"status": status}
	if team1Score != nil {
		fields["team1_score"] = team1Score
	}
	if team2Score != nil {
		fields["team2_score"] = team2Score
	}
	if status == models.MatchCompleted {
		now := time.Now()
		fields["end_time"] = &now
	}
	return s.Store.UpdateMatch(ctx, matchID, fields)
}

// --- HTTP endpoints ---

// CreateLeague handles POST /leagues (multipart: name, sport, description,
// optional logo).
func (s *LeagueService) CreateLeague(c *fiber.Ctx) error {
	league := &models.League{
		Name:        c.FormValue("name"),
		Sport:       c.FormValue("sport"),
		Description: c.FormValue("description"),
	}

	if logo, err := c.FormFile("logo"); err == nil && logo.Size > 0 {
		ext := filepath.Ext(logo.Filename)
		if ext == "" {
			ext = ".png"
		}
		key := "leagues/" + uuid.NewString() + ext
		url, err := utils.UploadMedia(logo, key)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to upload logo"})
		}
		league.LogoURL = url
	}

	if err := s.AddLeague(c.Context(), league); err != nil {
		return httpError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(league)
}

// GetLeagues handles GET /leagues.
func (s *LeagueService) GetLeagues(c *fiber.Ctx) error {
	leagues, err := s.Store.AllLeagues(c.Context())
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(leagues)
}

// SubscribeToLeague handles POST /leagues/:id/subscribe.
func (s *LeagueService) SubscribeToLeague(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "missing user context"})
	}
	leagueID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid league id"})
	}
	sub, err := s.Subscribe(c.Context(), userID, uint(leagueID))
	if err != nil {
		return httpError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(sub)
}

// GetSubscribedLeagues handles GET /leagues/subscribed.
func (s *LeagueService) GetSubscribedLeagues(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "missing user context"})
	}
	leagues, err := s.SubscribedLeagues(c.Context(), userID)
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(leagues)
}

// GetLiveMatches handles GET /matches/live.
func (s *LeagueService) GetLiveMatches(c *fiber.Ctx) error {
	matches, err := s.LiveMatches(c.Context())
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(matches)
}

// GetUpcomingMatches handles GET /matches/upcoming.
func (s *LeagueService) GetUpcomingMatches(c *fiber.Ctx) error {
	matches, err := s.UpcomingMatches(c.Context())
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(matches)
}

// GetLeagueMatches handles GET /leagues/:id/matches.
func (s *LeagueService) GetLeagueMatches(c *fiber.Ctx) error {
	leagueID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid league id"})
	}
	matches, err := s.LeagueMatches(c.Context(), uint(leagueID))
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(matches)
}

// CreateMatch handles POST /leagues/:id/matches.
func (s *LeagueService) CreateMatch(c *fiber.Ctx) error {
	leagueID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid league id"})
	}
	type Req struct {
		Team1     string    `json:"team1"`
		Team2     string    `json:"team2"`
		Team1Logo string    `json:"team1_logo"`
		Team2Logo string    `json:"team2_logo"`
		StartTime time.Time `json:"start_time"`
	}
	var req Req
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON"})
	}
	match := &models.Match{
		LeagueID:  uint(leagueID),
		Team1:     req.Team1,
		Team2:     req.Team2,
		Team1Logo: req.Team1Logo,
		Team2Logo: req.Team2Logo,
		StartTime: req.StartTime,
	}
	if err := s.AddMatch(c.Context(), match); err != nil {
		return httpError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(match)
}

// UpdateMatchStatus handles PATCH /matches/:id/status.
func (s *LeagueService) UpdateMatchStatus(c *fiber.Ctx) error {
	matchID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid match id"})
	}
	type Req struct {
		Status     string `json:"status"`
		Team1Score *int   `json:"team1_score"`
		Team2Score *int   `json:"team2_score"`
	}
	var req Req
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON"})
	}
	match, err := s.SetMatchStatus(c.Context(), uint(matchID), req.Status, req.Team1Score, req.Team2Score)
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(match)
}
