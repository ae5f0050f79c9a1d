package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"athlete-network/models"
	"athlete-network/store"
)

func newFeedFixture(t *testing.T) (*FeedService, *ConnectionService, store.Store) {
	t.Helper()
	st := store.NewMemoryStore()
	conns := NewConnectionService(st)
	return NewFeedService(st, conns), conns, st
}

func acceptEdge(t *testing.T, conns *ConnectionService, from, to uint) {
	t.Helper()
	edge, err := conns.CreateEdge(context.Background(), from, to)
	require.NoError(t, err)
	_, err = conns.SetEdgeStatus(context.Background(), edge.ID, models.ConnectionAccepted)
	require.NoError(t, err)
}

func TestPublishPostValidation(t *testing.T) {
	ctx := context.Background()
	feed, _, st := newFeedFixture(t)
	alice := seedUser(t, st, "alice")

	_, err := feed.PublishPost(ctx, alice.ID, "   ", "", "")
	assert.True(t, errors.Is(err, store.ErrValidation))

	_, err = feed.PublishPost(ctx, 999, "hello", "", "")
	assert.True(t, errors.Is(err, store.ErrNotFound))

	post, err := feed.PublishPost(ctx, alice.ID, "first training done", "", "")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, post.UserID)
	assert.NotZero(t, post.ID)
}

func TestFeedVisibility(t *testing.T) {
	ctx := context.Background()
	feed, conns, st := newFeedFixture(t)

	alice := seedUser(t, st, "alice")
	bob := seedUser(t, st, "bob")
	carol := seedUser(t, st, "carol")
	dave := seedUser(t, st, "dave")

	acceptEdge(t, conns, alice.ID, bob.ID)
	// carol's request is still pending, dave is a stranger.
	_, err := conns.CreateEdge(ctx, carol.ID, alice.ID)
	require.NoError(t, err)

	_, err = feed.PublishPost(ctx, alice.ID, "my own post", "", "")
	require.NoError(t, err)
	_, err = feed.PublishPost(ctx, bob.ID, "neighbor post", "", "")
	require.NoError(t, err)
	_, err = feed.PublishPost(ctx, carol.ID, "pending requester post", "", "")
	require.NoError(t, err)
	_, err = feed.PublishPost(ctx, dave.ID, "stranger post", "", "")
	require.NoError(t, err)

	posts, err := feed.Feed(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, posts, 2)

	contents := []string{posts[0].Content, posts[1].Content}
	assert.Contains(t, contents, "my own post")
	assert.Contains(t, contents, "neighbor post")
}

func TestFeedNewestFirstWithCountsAndAuthor(t *testing.T) {
	ctx := context.Background()
	feed, conns, st := newFeedFixture(t)

	alice := seedUser(t, st, "alice")
	bob := seedUser(t, st, "bob")
	acceptEdge(t, conns, alice.ID, bob.ID)

	older, err := feed.PublishPost(ctx, bob.ID, "older", "", "")
	require.NoError(t, err)
	newer, err := feed.PublishPost(ctx, alice.ID, "newer", "", "")
	require.NoError(t, err)

	_, err = feed.LikePost(ctx, alice.ID, older.ID)
	require.NoError(t, err)
	_, err = feed.LikePost(ctx, bob.ID, older.ID)
	require.NoError(t, err)
	_, err = feed.AddComment(ctx, alice.ID, older.ID, "nice one")
	require.NoError(t, err)

	posts, err := feed.Feed(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, posts, 2)

	assert.Equal(t, newer.ID, posts[0].ID)
	assert.Equal(t, older.ID, posts[1].ID)

	assert.Equal(t, int64(2), posts[1].LikeCount)
	assert.Equal(t, int64(1), posts[1].CommentCount)
	assert.True(t, posts[1].LikedByUser)
	assert.False(t, posts[0].LikedByUser)

	assert.Equal(t, "bob", posts[1].Author.Username)
	assert.Equal(t, "alice", posts[0].Author.Username)
}

func TestLikePostOncePerUser(t *testing.T) {
	ctx := context.Background()
	feed, _, st := newFeedFixture(t)

	alice := seedUser(t, st, "alice")
	bob := seedUser(t, st, "bob")

	post, err := feed.PublishPost(ctx, alice.ID, "like me", "", "")
	require.NoError(t, err)

	_, err = feed.LikePost(ctx, bob.ID, post.ID)
	require.NoError(t, err)

	_, err = feed.LikePost(ctx, bob.ID, post.ID)
	assert.True(t, errors.Is(err, store.ErrConflict))

	_, err = feed.LikePost(ctx, bob.ID, 999)
	assert.True(t, errors.Is(err, store.ErrNotFound))
}

func TestAddCommentOrderedChronologically(t *testing.T) {
	ctx := context.Background()
	feed, _, st := newFeedFixture(t)

	alice := seedUser(t, st, "alice")
	post, err := feed.PublishPost(ctx, alice.ID, "discuss", "", "")
	require.NoError(t, err)

	_, err = feed.AddComment(ctx, alice.ID, post.ID, "first")
	require.NoError(t, err)
	_, err = feed.AddComment(ctx, alice.ID, post.ID, "second")
	require.NoError(t, err)

	_, err = feed.AddComment(ctx, alice.ID, post.ID, " ")
	assert.True(t, errors.Is(err, store.ErrValidation))

	comments, err := st.CommentsForPost(ctx, post.ID)
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, "first", comments[0].Content)
	assert.Equal(t, "second", comments[1].Content)
}
