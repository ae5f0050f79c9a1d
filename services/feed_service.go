package services

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"athlete-network/models"
	"athlete-network/store"
	"athlete-network/utils"
)

// FeedService owns posts, likes and comments, and composes the
// reverse-chronological feed a user sees.
type FeedService struct {
	Store       store.Store
	Connections *ConnectionService
}

func NewFeedService(st store.Store, connections *ConnectionService) *FeedService {
	return &FeedService{Store: st, Connections: connections}
}

// FeedPost is a post enriched with computed engagement counts, the viewer's
// like flag and the author's public profile.
type FeedPost struct {
	models.Post
	LikeCount    int64                `json:"like_count"`
	CommentCount int64                `json:"comment_count"`
	LikedByUser  bool                 `json:"liked_by_user"`
	Author       models.PublicProfile `json:"author"`
}

// Feed returns the posts of the user and their accepted neighbors, newest
// first. Pure read — no pagination, the whole eligible set per call.
func (s *FeedService) Feed(ctx context.Context, userID uint) ([]FeedPost, error) {
	neighbors, err := s.Connections.AcceptedNeighbors(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("feed for user %d: %w", userID, err)
	}
	authors := append(neighbors, userID)

	posts, err := s.Store.PostsByAuthors(ctx, authors)
	if err != nil {
		return nil, fmt.Errorf("feed for user %d: %w", userID, err)
	}
	sort.SliceStable(posts, func(i, j int) bool {
		return posts[i].CreatedAt.After(posts[j].CreatedAt)
	})

	profiles := make(map[uint]models.PublicProfile, len(authors))
	for _, id := range authors {
		u, err := s.Store.GetUser(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("feed author %d: %w", id, err)
		}
		profiles[id] = u.Public()
	}

	feed := []FeedPost{}
	for _, p := range posts {
		likeCount, err := s.Store.LikeCount(ctx, p.ID)
		if err != nil {
			return nil, fmt.Errorf("like count for post %d: %w", p.ID, err)
		}
		commentCount, err := s.Store.CommentCount(ctx, p.ID)
		if err != nil {
			return nil, fmt.Errorf("comment count for post %d: %w", p.ID, err)
		}
		liked, err := s.Store.HasLiked(ctx, userID, p.ID)
		if err != nil {
			return nil, fmt.Errorf("like flag for post %d: %w", p.ID, err)
		}
		feed = append(feed, FeedPost{
			Post:         p,
			LikeCount:    likeCount,
			CommentCount: commentCount,
			LikedByUser:  liked,
			Author:       profiles[p.UserID],
		})
	}
	return feed, nil
}

// PublishPost creates a post for the author.
func (s *FeedService) PublishPost(ctx context.Context, userID uint, content, mediaURL, mediaType string) (*models.Post, error) {
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("post content is required: %w", store.ErrValidation)
	}
	if _, err := s.Store.GetUser(ctx, userID); err != nil {
		return nil, fmt.Errorf("author %d: %w", userID, err)
	}
	post := &models.Post{
		UserID:    userID,
		Content:   content,
		MediaURL:  mediaURL,
		MediaType: mediaType,
	}
	if err := s.Store.CreatePost(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

// LikePost records a like. The storage-level uniqueness constraint surfaces a
// second like of the same post as a conflict.
func (s *FeedService) LikePost(ctx context.Context, userID, postID uint) (*models.Like, error) {
	if _, err := s.Store.GetPost(ctx, postID); err != nil {
		return nil, fmt.Errorf("post %d: %w", postID, err)
	}
	like := &models.Like{UserID: userID, PostID: postID}
	if err := s.Store.CreateLike(ctx, like); err != nil {
		return nil, err
	}
	return like, nil
}

// AddComment appends a comment to a post.
func (s *FeedService) AddComment(ctx context.Context, userID, postID uint, content string) (*models.Comment, error) {
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("comment content is required: %w", store.ErrValidation)
	}
	if _, err := s.Store.GetPost(ctx, postID); err != nil {
		return nil, fmt.Errorf("post %d: %w", postID, err)
	}
	comment := &models.Comment{UserID: userID, PostID: postID, Content: content}
	if err := s.Store.CreateComment(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

// --- HTTP endpoints ---

// GetFeed handles GET /feed.
func (s *FeedService) GetFeed(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "missing user context"})
	}
	feed, err := s.Feed(c.Context(), userID)
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(feed)
}

// CreatePost handles POST /posts (multipart: content + optional media).
func (s *FeedService) CreatePost(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "missing user context"})
	}
	content := c.FormValue("content")

	var mediaURL, mediaType string
	if media, err := c.FormFile("media"); err == nil && media.Size > 0 {
		ext := filepath.Ext(media.Filename)
		if ext == "" {
			ext = ".jpg"
		}
		key := "posts/" + uuid.NewString() + ext
		url, err := utils.UploadMedia(media, key)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to upload media"})
		}
		mediaURL = url
		mediaType = c.FormValue("media_type", models.MediaTypeImage)
	}

	post, err := s.PublishPost(c.Context(), userID, content, mediaURL, mediaType)
	if err != nil {
		return httpError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(post)
}

// LikePostEndpoint handles POST /posts/:id/like.
func (s *FeedService) LikePostEndpoint(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "missing user context"})
	}
	postID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid post id"})
	}
	like, err := s.LikePost(c.Context(), userID, uint(postID))
	if err != nil {
		return httpError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(like)
}

// CreateComment handles POST /posts/:id/comments.
func (s *FeedService) CreateComment(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "missing user context"})
	}
	postID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid post id"})
	}
	type Req struct {
		Content string `json:"content"`
	}
	var req Req
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON"})
	}
	comment, err := s.AddComment(c.Context(), userID, uint(postID), req.Content)
	if err != nil {
		return httpError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(comment)
}

// GetComments handles GET /posts/:id/comments.
func (s *FeedService) GetComments(c *fiber.Ctx) error {
	postID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid post id"})
	}
	comments, err := s.Store.CommentsForPost(c.Context(), uint(postID))
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(comments)
}
