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

func seedUser(t *testing.T, st store.Store, username string) *models.User {
	t.Helper()
	u := &models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: "secret",
		FullName: username,
	}
	require.NoError(t, st.CreateUser(context.Background(), u))
	return u
}

func TestCreateEdgeRequiresBothUsers(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	svc := NewConnectionService(st)

	alice := seedUser(t, st, "alice")

	_, err := svc.CreateEdge(ctx, alice.ID, 999)
	assert.True(t, errors.Is(err, store.ErrNotFound))

	_, err = svc.CreateEdge(ctx, 999, alice.ID)
	assert.True(t, errors.Is(err, store.ErrNotFound))
}

func TestCreateEdgeStartsPending(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	svc := NewConnectionService(st)

	alice := seedUser(t, st, "alice")
	bob := seedUser(t, st, "bob")

	edge, err := svc.CreateEdge(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ConnectionPending, edge.Status)
	assert.Equal(t, alice.ID, edge.FollowerID)
	assert.Equal(t, bob.ID, edge.FollowingID)
}

func TestCreateEdgeDuplicateBlockedWhateverStatus(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	svc := NewConnectionService(st)

	alice := seedUser(t, st, "alice")
	bob := seedUser(t, st, "bob")

	edge, err := svc.CreateEdge(ctx, alice.ID, bob.ID)
	require.NoError(t, err)

	_, err = svc.CreateEdge(ctx, alice.ID, bob.ID)
	assert.True(t, errors.Is(err, store.ErrConflict))

	// Rejection does not free the pair for a new request.
	_, err = svc.SetEdgeStatus(ctx, edge.ID, models.ConnectionRejected)
	require.NoError(t, err)
	_, err = svc.CreateEdge(ctx, alice.ID, bob.ID)
	assert.True(t, errors.Is(err, store.ErrConflict))

	// But the reverse direction is a distinct edge and still works.
	_, err = svc.CreateEdge(ctx, bob.ID, alice.ID)
	assert.NoError(t, err)
}

func TestSetEdgeStatusValidatesEnumOnly(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	svc := NewConnectionService(st)

	alice := seedUser(t, st, "alice")
	bob := seedUser(t, st, "bob")

	edge, err := svc.CreateEdge(ctx, alice.ID, bob.ID)
	require.NoError(t, err)

	_, err = svc.SetEdgeStatus(ctx, edge.ID, "blocked")
	assert.True(t, errors.Is(err, store.ErrValidation))

	_, err = svc.SetEdgeStatus(ctx, edge.ID, models.ConnectionPending)
	assert.True(t, errors.Is(err, store.ErrValidation), "pending is not a response")

	// Current status is not consulted: rejected can still become accepted.
	_, err = svc.SetEdgeStatus(ctx, edge.ID, models.ConnectionRejected)
	require.NoError(t, err)
	updated, err := svc.SetEdgeStatus(ctx, edge.ID, models.ConnectionAccepted)
	require.NoError(t, err)
	assert.Equal(t, models.ConnectionAccepted, updated.Status)

	_, err = svc.SetEdgeStatus(ctx, 999, models.ConnectionAccepted)
	assert.True(t, errors.Is(err, store.ErrNotFound))
}

func TestAcceptedNeighborsSymmetric(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	svc := NewConnectionService(st)

	alice := seedUser(t, st, "alice")
	bob := seedUser(t, st, "bob")
	carol := seedUser(t, st, "carol")
	dave := seedUser(t, st, "dave")

	// alice → bob accepted, carol → alice accepted, alice → dave pending.
	e1, err := svc.CreateEdge(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	_, err = svc.SetEdgeStatus(ctx, e1.ID, models.ConnectionAccepted)
	require.NoError(t, err)

	e2, err := svc.CreateEdge(ctx, carol.ID, alice.ID)
	require.NoError(t, err)
	_, err = svc.SetEdgeStatus(ctx, e2.ID, models.ConnectionAccepted)
	require.NoError(t, err)

	_, err = svc.CreateEdge(ctx, alice.ID, dave.ID)
	require.NoError(t, err)

	neighbors, err := svc.AcceptedNeighbors(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{bob.ID, carol.ID}, neighbors, "accepted edges count in both directions, pending does not")

	// The relation is symmetric from the other end too.
	neighbors, err = svc.AcceptedNeighbors(ctx, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{alice.ID}, neighbors)
}

func TestPendingRequestsCarryRequesterProfile(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	svc := NewConnectionService(st)

	alice := seedUser(t, st, "alice")
	bob := seedUser(t, st, "bob")

	_, err := svc.CreateEdge(ctx, alice.ID, bob.ID)
	require.NoError(t, err)

	pending, err := svc.PendingRequests(ctx, bob.ID)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	require.NotNil(t, pending[0].Requester)
	assert.Equal(t, "alice", pending[0].Requester.Username)

	// Nothing inbound for the requester side.
	pending, err = svc.PendingRequests(ctx, alice.ID)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestSuggestionsExcludeSelfAndAnyEdge(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	svc := NewConnectionService(st)

	alice := seedUser(t, st, "alice")
	bob := seedUser(t, st, "bob")
	carol := seedUser(t, st, "carol")
	dave := seedUser(t, st, "dave")
	erin := seedUser(t, st, "erin")

	// Any edge excludes, whatever its status or direction.
	e1, err := svc.CreateEdge(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	_, err = svc.SetEdgeStatus(ctx, e1.ID, models.ConnectionAccepted)
	require.NoError(t, err)

	_, err = svc.CreateEdge(ctx, carol.ID, alice.ID)
	require.NoError(t, err)

	e3, err := svc.CreateEdge(ctx, alice.ID, dave.ID)
	require.NoError(t, err)
	_, err = svc.SetEdgeStatus(ctx, e3.ID, models.ConnectionRejected)
	require.NoError(t, err)

	suggestions, err := svc.Suggestions(ctx, alice.ID, 0)
	require.NoError(t, err)
	require.Len(t, suggestions, 1)
	assert.Equal(t, erin.ID, suggestions[0].ID)
}

func TestSuggestionsLimit(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	svc := NewConnectionService(st)

	alice := seedUser(t, st, "alice")
	seedUser(t, st, "bob")
	seedUser(t, st, "carol")
	seedUser(t, st, "dave")

	suggestions, err := svc.Suggestions(ctx, alice.ID, 2)
	require.NoError(t, err)
	assert.Len(t, suggestions, 2)

	suggestions, err = svc.Suggestions(ctx, alice.ID, 0)
	require.NoError(t, err)
	assert.Len(t, suggestions, 3, "zero limit falls back to the default cap")
}
