package services

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"athlete-network/models"
	"athlete-network/store"
	"athlete-network/utils"
)

// UserService owns athlete profiles: registration, lookup, profile updates
// and search. Identity fields (username, email) are set once at registration
// and never change; the storage layer enforces that by filtering update
// fields.
type UserService struct {
	Store store.Store
}

func NewUserService(st store.Store) *UserService {
	return &UserService{Store: st}
}

// Register creates a new profile. Username and email collide at the storage
// layer, not by a pre-check.
func (s *UserService) Register(ctx context.Context, u *models.User) error {
	if strings.TrimSpace(u.Username) == "" {
		return fmt.Errorf("username is required: %w", store.ErrValidation)
	}
	if strings.TrimSpace(u.Email) == "" {
		return fmt.Errorf("email is required: %w", store.ErrValidation)
	}
	if u.Password == "" {
		return fmt.Errorf("password is required: %w", store.ErrValidation)
	}
	u.IsActive = true
	return s.Store.CreateUser(ctx, u)
}

// Profile returns the public view of a user.
func (s *UserService) Profile(ctx context.Context, userID uint) (*models.PublicProfile, error) {
	user, err := s.Store.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	p := user.Public()
	return &p, nil
}

// ProfileByUsername resolves a public view by handle instead of numeric id.
func (s *UserService) ProfileByUsername(ctx context.Context, username string) (*models.PublicProfile, error) {
	user, err := s.Store.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("user %q: %w", username, err)
	}
	p := user.Public()
	return &p, nil
}

// UpdateProfile applies mutable profile fields. Unknown and identity fields
// are dropped by the store.
func (s *UserService) UpdateProfile(ctx context.Context, userID uint, fields map[string]interface{}) (*models.User, error) {
	return s.Store.UpdateUser(ctx, userID, fields)
}

// Search matches users by name, username, team or sport, case-insensitively.
func (s *UserService) Search(ctx context.Context, query string) ([]models.PublicProfile, error) {
	users, err := s.Store.SearchUsers(ctx, query)
	if err != nil {
		return nil, err
	}
	profiles := make([]models.PublicProfile, 0, len(users))
	for _, u := range users {
		profiles = append(profiles, u.Public())
	}
	return profiles, nil
}

// --- HTTP endpoints ---

// CreateUser handles POST /users.
func (s *UserService) CreateUser(c *fiber.Ctx) error {
	user := new(models.User)
	if err := c.BodyParser(user); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON"})
	}
	if err := s.Register(c.Context(), user); err != nil {
		return httpError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(user.Public())
}

// GetUserByID handles GET /users/:id.
func (s *UserService) GetUserByID(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid user id"})
	}
	profile, err := s.Profile(c.Context(), uint(id))
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(profile)
}

// GetUserByUsername handles GET /users/username/:username.
func (s *UserService) GetUserByUsername(c *fiber.Ctx) error {
	username := c.Params("username")
	if username == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "missing username"})
	}
	profile, err := s.ProfileByUsername(c.Context(), username)
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(profile)
}

// GetMe handles GET /users/me. Returns the full record, not the public view.
func (s *UserService) GetMe(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "missing user context"})
	}
	user, err := s.Store.GetUser(c.Context(), userID)
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(user)
}

// UpdateMe handles PATCH /users/me.
func (s *UserService) UpdateMe(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "missing user context"})
	}
	fields := map[string]interface{}{}
	if err := c.BodyParser(&fields); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON"})
	}
	user, err := s.UpdateProfile(c.Context(), userID, fields)
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(user)
}

// SearchUsers handles GET /users/search?q=.
func (s *UserService) SearchUsers(c *fiber.Ctx) error {
	query := c.Query("q")
	if strings.TrimSpace(query) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "query parameter q is required"})
	}
	profiles, err := s.Search(c.Context(), query)
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(profiles)
}

// UploadAvatar handles POST /users/me/avatar (multipart: avatar).
func (s *UserService) UploadAvatar(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "missing user context"})
	}
	file, err := c.FormFile("avatar")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "avatar file is required"})
	}
	ext := filepath.Ext(file.Filename)
	if ext == "" {
		ext = ".png"
	}
	key := "avatars/" + uuid.NewString() + ext
	url, err := utils.UploadMedia(file, key)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to upload avatar"})
	}
	user, err := s.UpdateProfile(c.Context(), userID, map[string]interface{}{"avatar_url": url})
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(user)
}
