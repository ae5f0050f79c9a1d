package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"athlete-network/store"
)

func TestSendValidation(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	svc := NewConversationService(st)

	alice := seedUser(t, st, "alice")
	bob := seedUser(t, st, "bob")

	_, err := svc.Send(ctx, alice.ID, bob.ID, "  ")
	assert.True(t, errors.Is(err, store.ErrValidation))

	_, err = svc.Send(ctx, alice.ID, 999, "hello")
	assert.True(t, errors.Is(err, store.ErrNotFound))

	msg, err := svc.Send(ctx, alice.ID, bob.ID, "hello")
	require.NoError(t, err)
	assert.False(t, msg.Read, "messages always start unread")
	assert.NotZero(t, msg.ID)
}

func TestConversationSymmetricChronological(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	svc := NewConversationService(st)

	alice := seedUser(t, st, "alice")
	bob := seedUser(t, st, "bob")
	carol := seedUser(t, st, "carol")

	_, err := svc.Send(ctx, alice.ID, bob.ID, "hey bob")
	require.NoError(t, err)
	_, err = svc.Send(ctx, bob.ID, alice.ID, "hey alice")
	require.NoError(t, err)
	_, err = svc.Send(ctx, alice.ID, carol.ID, "unrelated")
	require.NoError(t, err)

	ab, err := svc.Conversation(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	ba, err := svc.Conversation(ctx, bob.ID, alice.ID)
	require.NoError(t, err)

	assert.Equal(t, ab, ba)
	require.Len(t, ab, 2)
	assert.Equal(t, "hey bob", ab[0].Content)
	assert.Equal(t, "hey alice", ab[1].Content)

	empty, err := svc.Conversation(ctx, bob.ID, carol.ID)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestCorrespondentsPreviewAndUnread(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	svc := NewConversationService(st)

	alice := seedUser(t, st, "alice")
	bob := seedUser(t, st, "bob")
	carol := seedUser(t, st, "carol")

	_, err := svc.Send(ctx, bob.ID, alice.ID, "first from bob")
	require.NoError(t, err)
	_, err = svc.Send(ctx, bob.ID, alice.ID, "second from bob")
	require.NoError(t, err)
	_, err = svc.Send(ctx, alice.ID, carol.ID, "to carol")
	require.NoError(t, err)

	previews, err := svc.Correspondents(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, previews, 2)

	// Newest conversation first; the preview is the latest message of the
	// pair whoever sent it.
	assert.Equal(t, "carol", previews[0].User.Username)
	assert.Equal(t, "to carol", previews[0].LastMessage.Content)
	assert.Equal(t, int64(0), previews[0].Unread, "own outbound messages are not unread")

	assert.Equal(t, "bob", previews[1].User.Username)
	assert.Equal(t, "second from bob", previews[1].LastMessage.Content)
	assert.Equal(t, int64(2), previews[1].Unread)
}

func TestUnreadTotalAndMarkRead(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	svc := NewConversationService(st)

	alice := seedUser(t, st, "alice")
	bob := seedUser(t, st, "bob")
	carol := seedUser(t, st, "carol")

	_, err := svc.Send(ctx, bob.ID, alice.ID, "one")
	require.NoError(t, err)
	_, err = svc.Send(ctx, bob.ID, alice.ID, "two")
	require.NoError(t, err)
	_, err = svc.Send(ctx, carol.ID, alice.ID, "three")
	require.NoError(t, err)

	total, err := svc.UnreadTotal(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)

	require.NoError(t, svc.MarkRead(ctx, alice.ID, bob.ID))

	total, err = svc.UnreadTotal(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)

	previews, err := svc.Correspondents(ctx, alice.ID)
	require.NoError(t, err)
	for _, p := range previews {
		if p.User.ID == bob.ID {
			assert.Equal(t, int64(0), p.Unread)
		}
	}
}
