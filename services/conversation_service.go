package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"athlete-network/models"
	"athlete-network/store"
)

// ConversationService threads and summarizes direct messages.
type ConversationService struct {
	Store store.Store
}

func NewConversationService(st store.Store) *ConversationService {
	return &ConversationService{Store: st}
}

// ConversationPreview drives the conversation-list view: one row per
// correspondent with their latest message and the count still unread from
// them.
type ConversationPreview struct {
	User        models.PublicProfile `json:"user"`
	LastMessage models.Message       `json:"last_message"`
	Unread      int64                `json:"unread"`
}

// Send delivers a message. Both parties must resolve; messages always start
// unread.
func (s *ConversationService) Send(ctx context.Context, senderID, receiverID uint, content string) (*models.Message, error) {
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("message content is required: %w", store.ErrValidation)
	}
	if _, err := s.Store.GetUser(ctx, senderID); err != nil {
		return nil, fmt.Errorf("sender %d: %w", senderID, err)
	}
	if _, err := s.Store.GetUser(ctx, receiverID); err != nil {
		return nil, fmt.Errorf("receiver %d: %w", receiverID, err)
	}
	msg := &models.Message{
		SenderID:   senderID,
		ReceiverID: receiverID,
		Content:    content,
		Read:       false,
	}
	if err := s.Store.CreateMessage(ctx, msg); err != nil {
		return nil, err
	}
	return msg, nil
}

// Conversation returns the full message history between two users, oldest
// first. Symmetric: Conversation(a, b) and Conversation(b, a) are identical.
func (s *ConversationService) Conversation(ctx context.Context, userA, userB uint) ([]models.Message, error) {
	msgs, err := s.Store.MessagesBetween(ctx, userA, userB)
	if err != nil {
		return nil, err
	}
	if msgs == nil {
		msgs = []models.Message{}
	}
	return msgs, nil
}

// Correspondents derives the distinct set of users the subject has exchanged
// messages with, each attached to the most recent message of that pair.
func (s *ConversationService) Correspondents(ctx context.Context, userID uint) ([]ConversationPreview, error) {
	msgs, err := s.Store.MessagesInvolving(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := []ConversationPreview{}
	index := map[uint]int{}
	for _, m := range msgs {
		partner := m.SenderID
		if partner == userID {
			partner = m.ReceiverID
		}
		if partner == userID {
			continue // self-messages have no correspondent
		}
		i, ok := index[partner]
		if !ok {
			u, err := s.Store.GetUser(ctx, partner)
			if err != nil {
				return nil, fmt.Errorf("correspondent %d: %w", partner, err)
			}
			// Messages come newest-first, so the first one seen per
			// partner is the preview message.
			out = append(out, ConversationPreview{User: u.Public(), LastMessage: m})
			index[partner] = len(out) - 1
			i = index[partner]
		}
		if m.ReceiverID == userID && !m.Read {
			out[i].Unread++
		}
	}
	return out, nil
}

// UnreadTotal counts unread messages addressed to the user.
func (s *ConversationService) UnreadTotal(ctx context.Context, userID uint) (int64, error) {
	return s.Store.UnreadCount(ctx, userID)
}

// MarkRead flips every unread message from the given correspondent to read.
// The original system never mutated read state; this is the deliberate
// completion of that gap.
func (s *ConversationService) MarkRead(ctx context.Context, readerID, otherID uint) error {
	return s.Store.MarkConversationRead(ctx, readerID, otherID)
}

// --- HTTP endpoints ---

// SendMessage handles POST /messages.
func (s *ConversationService) SendMessage(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "missing user context"})
	}
	type Req struct {
		ReceiverID uint   `json:"receiver_id"`
		Content    string `json:"content"`
	}
	var req Req
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON"})
	}
	if req.ReceiverID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "receiver_id is required"})
	}
	msg, err := s.Send(c.Context(), userID, req.ReceiverID, req.Content)
	if err != nil {
		return httpError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(msg)
}

// GetConversation handles GET /conversations/:user_id.
func (s *ConversationService) GetConversation(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "missing user context"})
	}
	otherID, err := strconv.ParseUint(c.Params("user_id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid user id"})
	}
	msgs, err := s.Conversation(c.Context(), userID, uint(otherID))
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(msgs)
}

// GetConversations handles GET /conversations.
func (s *ConversationService) GetConversations(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "missing user context"})
	}
	previews, err := s.Correspondents(c.Context(), userID)
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(previews)
}

// GetUnreadCount handles GET /messages/unread-count.
func (s *ConversationService) GetUnreadCount(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "missing user context"})
	}
	count, err := s.UnreadTotal(c.Context(), userID)
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(fiber.Map{"unread": count})
}

// MarkConversationRead handles POST /conversations/:user_id/read.
func (s *ConversationService) MarkConversationRead(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "missing user context"})
	}
	otherID, err := strconv.ParseUint(c.Params("user_id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid user id"})
	}
	if err := s.MarkRead(c.Context(), userID, uint(otherID)); err != nil {
		return httpError(c, err)
	}
	return c.JSON(fiber.Map{"message": "conversation marked read"})
}
