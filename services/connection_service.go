package services

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"athlete-network/models"
	"athlete-network/store"
)

// DefaultSuggestionLimit caps the people-you-may-know list when the caller
// does not ask for fewer. Earlier revisions defaulted to 5 on the in-memory
// path and 10 on the database path; both now share this single constant, at
// the larger of the two values.
const DefaultSuggestionLimit = 10

// ConnectionService maintains the directed, status-qualified edge set between
// users and derives the graph views the feed and notification layers consume.
type ConnectionService struct {
	Store store.Store
}

func NewConnectionService(st store.Store) *ConnectionService {
	return &ConnectionService{Store: st}
}

// CreateEdge inserts a pending edge follower → following. Both users must
// resolve; an existing edge for the ordered pair blocks re-creation whatever
// its status. Conflict detection happens at the storage layer, not via a
// pre-read.
func (s *ConnectionService) CreateEdge(ctx context.Context, followerID, followingID uint) (*models.Connection, error) {
	if _, err := s.Store.GetUser(ctx, followerID); err != nil {
		return nil, fmt.Errorf("follower %d: %w", followerID, err)
	}
	if _, err := s.Store.GetUser(ctx, followingID); err != nil {
		return nil, fmt.Errorf("following %d: %w", followingID, err)
	}
	conn := &models.Connection{
		FollowerID:  followerID,
		FollowingID: followingID,
		Status:      models.ConnectionPending,
	}
	if err := s.Store.CreateConnection(ctx, conn); err != nil {
		return nil, err
	}
	return conn, nil
}

// SetEdgeStatus moves an existing edge to accepted or rejected. Only enum
// membership is validated, not the edge's current status: a rejected edge can
// still be flipped to accepted. A missing edge yields ErrNotFound before any
// write happens.
func (s *ConnectionService) SetEdgeStatus(ctx context.Context, edgeID uint, status string) (*models.Connection, error) {
	if status != models.ConnectionAccepted && status != models.ConnectionRejected {
		return nil, fmt.Errorf("status must be %q or %q: %w",
			models.ConnectionAccepted, models.ConnectionRejected, store.ErrValidation)
	}
	if _, err := s.Store.GetConnection(ctx, edgeID); err != nil {
		return nil, fmt.Errorf("connection %d: %w", edgeID, err)
	}
	return s.Store.UpdateConnectionStatus(ctx, edgeID, status)
}

// AcceptedNeighbors returns the ids of users connected to userID by an
// accepted edge in either direction — the relation is symmetric once
// accepted, even though storage is directional.
func (s *ConnectionService) AcceptedNeighbors(ctx context.Context, userID uint) ([]uint, error) {
	conns, err := s.Store.AcceptedFor(ctx, userID)
	if err != nil {
		return nil, err
	}
	seen := make(map[uint]bool)
	neighbors := []uint{}
	for _, c := range conns {
		other := c.FollowerID
		if other == userID {
			other = c.FollowingID
		}
		if other != userID && !seen[other] {
			seen[other] = true
			neighbors = append(neighbors, other)
		}
	}
	sort.Slice(neighbors, func(i, j int) bool { return neighbors[i] < neighbors[j] })
	return neighbors, nil
}

// PendingRequests returns inbound pending edges enriched with the requester's
// public profile.
func (s *ConnectionService) PendingRequests(ctx context.Context, userID uint) ([]models.Connection, error) {
	conns, err := s.Store.PendingInbound(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := []models.Connection{}
	for _, c := range conns {
		requester, err := s.Store.GetUser(ctx, c.FollowerID)
		if err != nil {
			return nil, fmt.Errorf("requester for edge %d: %w", c.ID, err)
		}
		p := requester.Public()
		c.Requester = &p
		out = append(out, c)
	}
	return out, nil
}

// Suggestions returns up to limit candidate profiles: every user except the
// subject and anyone touched by any edge — pending, accepted or rejected —
// involving the subject. Enumeration order is the store's best-effort order;
// this is a coverage heuristic, not a ranking.
func (s *ConnectionService) Suggestions(ctx context.Context, userID uint, limit int) ([]models.PublicProfile, error) {
	if limit <= 0 {
		limit = DefaultSuggestionLimit
	}
	conns, err := s.Store.ConnectionsFor(ctx, userID)
	if err != nil {
		return nil, err
	}
	excluded := map[uint]bool{userID: true}
	for _, c := range conns {
		excluded[c.FollowerID] = true
		excluded[c.FollowingID] = true
	}
	users, err := s.Store.AllUsers(ctx)
	if err != nil {
		return nil, err
	}
	out := []models.PublicProfile{}
	for _, u := range users {
		if excluded[u.ID] {
			continue
		}
		out = append(out, u.Public())
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}

// --- HTTP endpoints ---

// RequestConnection handles POST /connections.
func (s *ConnectionService) RequestConnection(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "missing user context"})
	}
	type Req struct {
		UserID uint `json:"user_id"`
	}
	var req Req
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON"})
	}
	if req.UserID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "user_id is required"})
	}
	conn, err := s.CreateEdge(c.Context(), userID, req.UserID)
	if err != nil {
		return httpError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(conn)
}

// RespondToConnection handles PATCH /connections/:id with {"status": ...}.
func (s *ConnectionService) RespondToConnection(c *fiber.Ctx) error {
	edgeID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid connection id"})
	}
	type Req struct {
		Status string `json:"status"`
	}
	var req Req
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON"})
	}
	conn, err := s.SetEdgeStatus(c.Context(), uint(edgeID), req.Status)
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(conn)
}

// GetPendingConnections handles GET /connections/pending.
func (s *ConnectionService) GetPendingConnections(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "missing user context"})
	}
	pending, err := s.PendingRequests(c.Context(), userID)
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(pending)
}

// GetSuggestions handles GET /connections/suggestions?limit=.
func (s *ConnectionService) GetSuggestions(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "missing user context"})
	}
	limit, _ := strconv.Atoi(c.Query("limit", "0"))
	suggestions, err := s.Suggestions(c.Context(), userID, limit)
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(suggestions)
}

// GetNeighbors handles GET /connections — the accepted-neighbor profiles.
func (s *ConnectionService) GetNeighbors(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "missing user context"})
	}
	ids, err := s.AcceptedNeighbors(c.Context(), userID)
	if err != nil {
		return httpError(c, err)
	}
	profiles := []models.PublicProfile{}
	for _, id := range ids {
		u, err := s.Store.GetUser(c.Context(), id)
		if err != nil {
			return httpError(c, err)
		}
		profiles = append(profiles, u.Public())
	}
	return c.JSON(profiles)
}
