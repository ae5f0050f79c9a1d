package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"athlete-network/models"
	"athlete-network/store"
)

func seedLeague(t *testing.T, st store.Store, name, slug string) *models.League {
	t.Helper()
	l := &models.League{Name: name, Slug: slug}
	require.NoError(t, st.CreateLeague(context.Background(), l))
	return l
}

func seedMatch(t *testing.T, st store.Store, leagueID uint, status string, start time.Time) *models.Match {
	t.Helper()
	m := &models.Match{
		LeagueID: leagueID, Team1: "Home", Team2: "Away",
		Status: status, StartTime: start,
	}
	require.NoError(t, st.CreateMatch(context.Background(), m))
	return m
}

func TestTimelineMatchItemsScopedToSubscribedLeagues(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	svc := NewNotificationService(st)

	alice := seedUser(t, st, "alice")
	nba := seedLeague(t, st, "NBA", "nba")
	nfl := seedLeague(t, st, "NFL", "nfl")
	require.NoError(t, st.CreateSubscription(ctx, &models.Subscription{UserID: alice.ID, LeagueID: nba.ID}))

	subscribed := seedMatch(t, st, nba.ID, models.MatchLive, time.Now().Add(-10*time.Minute))
	seedMatch(t, st, nfl.ID, models.MatchLive, time.Now().Add(-10*time.Minute))
	seedMatch(t, st, nba.ID, models.MatchCompleted, time.Now().Add(-2*time.Hour))

	items, err := svc.Timeline(ctx, alice.ID, false)
	require.NoError(t, err)

	require.Len(t, items, 1)
	assert.Equal(t, models.NotificationMatch, items[0].Type)
	assert.Equal(t, "match-1", items[0].ID)
	payload, ok := items[0].Payload.(models.MatchPayload)
	require.True(t, ok)
	assert.Equal(t, subscribed.ID, payload.MatchID)
	assert.Equal(t, nba.ID, payload.LeagueID)
}

func TestTimelineReminderWindow(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	svc := NewNotificationService(st)

	alice := seedUser(t, st, "alice")
	nba := seedLeague(t, st, "NBA", "nba")
	require.NoError(t, st.CreateSubscription(ctx, &models.Subscription{UserID: alice.ID, LeagueID: nba.ID}))

	soon := seedMatch(t, st, nba.ID, models.MatchUpcoming, time.Now().Add(30*time.Minute))
	seedMatch(t, st, nba.ID, models.MatchUpcoming, time.Now().Add(3*time.Hour))

	items, err := svc.Timeline(ctx, alice.ID, false)
	require.NoError(t, err)

	require.Len(t, items, 1, "only matches starting within the hour produce reminders")
	assert.Equal(t, models.NotificationReminder, items[0].Type)
	payload, ok := items[0].Payload.(models.MatchPayload)
	require.True(t, ok)
	assert.Equal(t, soon.ID, payload.MatchID)
}

func TestTimelineConnectionAcceptances(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	conns := NewConnectionService(st)
	svc := NewNotificationService(st)

	alice := seedUser(t, st, "alice")
	bob := seedUser(t, st, "bob")
	carol := seedUser(t, st, "carol")

	// alice's outbound request accepted: notifies alice.
	e1, err := conns.CreateEdge(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	_, err = conns.SetEdgeStatus(ctx, e1.ID, models.ConnectionAccepted)
	require.NoError(t, err)

	// Inbound accepted edge does not notify the acceptor.
	e2, err := conns.CreateEdge(ctx, carol.ID, alice.ID)
	require.NoError(t, err)
	_, err = conns.SetEdgeStatus(ctx, e2.ID, models.ConnectionAccepted)
	require.NoError(t, err)

	// Pending and rejected outbound edges stay silent.
	_, err = conns.CreateEdge(ctx, alice.ID, carol.ID)
	require.NoError(t, err)

	items, err := svc.Timeline(ctx, alice.ID, false)
	require.NoError(t, err)

	require.Len(t, items, 1)
	assert.Equal(t, models.NotificationConnection, items[0].Type)
	assert.Contains(t, items[0].Title, "bob")
	payload, ok := items[0].Payload.(models.ConnectionPayload)
	require.True(t, ok)
	assert.Equal(t, bob.ID, payload.UserID)
}

func TestTimelineLikesExcludeSelf(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	feed := NewFeedService(st, NewConnectionService(st))
	svc := NewNotificationService(st)

	alice := seedUser(t, st, "alice")
	bob := seedUser(t, st, "bob")

	post, err := feed.PublishPost(ctx, alice.ID, "look at this", "", "")
	require.NoError(t, err)

	_, err = feed.LikePost(ctx, alice.ID, post.ID)
	require.NoError(t, err)
	_, err = feed.LikePost(ctx, bob.ID, post.ID)
	require.NoError(t, err)

	items, err := svc.Timeline(ctx, alice.ID, false)
	require.NoError(t, err)

	require.Len(t, items, 1, "own like on own post is not news")
	assert.Equal(t, models.NotificationLike, items[0].Type)
	assert.Contains(t, items[0].Title, "bob")
}

func TestTimelineMessageItemsCarryReadState(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	convs := NewConversationService(st)
	svc := NewNotificationService(st)

	alice := seedUser(t, st, "alice")
	bob := seedUser(t, st, "bob")

	_, err := convs.Send(ctx, bob.ID, alice.ID, "read me")
	require.NoError(t, err)
	_, err = convs.Send(ctx, bob.ID, alice.ID, "still unread")
	require.NoError(t, err)
	// Sent messages never appear in the sender's timeline.
	_, err = convs.Send(ctx, alice.ID, bob.ID, "outbound")
	require.NoError(t, err)

	items, err := svc.Timeline(ctx, alice.ID, false)
	require.NoError(t, err)
	require.Len(t, items, 2)
	for _, n := range items {
		assert.Equal(t, models.NotificationMessage, n.Type)
		assert.False(t, n.Read)
	}

	require.NoError(t, convs.MarkRead(ctx, alice.ID, bob.ID))

	unread, err := svc.Timeline(ctx, alice.ID, true)
	require.NoError(t, err)
	assert.Empty(t, unread, "unread-only filter drops read message items")

	all, err := svc.Timeline(ctx, alice.ID, false)
	require.NoError(t, err)
	require.Len(t, all, 2)
	for _, n := range all {
		assert.True(t, n.Read)
	}
}

func TestTimelineOrderingNonIncreasing(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	conns := NewConnectionService(st)
	feed := NewFeedService(st, conns)
	convs := NewConversationService(st)
	svc := NewNotificationService(st)

	alice := seedUser(t, st, "alice")
	bob := seedUser(t, st, "bob")

	nba := seedLeague(t, st, "NBA", "nba")
	require.NoError(t, st.CreateSubscription(ctx, &models.Subscription{UserID: alice.ID, LeagueID: nba.ID}))
	seedMatch(t, st, nba.ID, models.MatchLive, time.Now().Add(-30*time.Minute))

	edge, err := conns.CreateEdge(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	_, err = conns.SetEdgeStatus(ctx, edge.ID, models.ConnectionAccepted)
	require.NoError(t, err)

	post, err := feed.PublishPost(ctx, alice.ID, "post", "", "")
	require.NoError(t, err)
	_, err = feed.LikePost(ctx, bob.ID, post.ID)
	require.NoError(t, err)

	_, err = convs.Send(ctx, bob.ID, alice.ID, "hello")
	require.NoError(t, err)

	items, err := svc.Timeline(ctx, alice.ID, false)
	require.NoError(t, err)
	require.Len(t, items, 4)

	seen := map[string]bool{}
	for _, n := range items {
		seen[n.Type] = true
	}
	assert.True(t, seen[models.NotificationMatch])
	assert.True(t, seen[models.NotificationConnection])
	assert.True(t, seen[models.NotificationLike])
	assert.True(t, seen[models.NotificationMessage])

	for i := 1; i < len(items); i++ {
		assert.False(t, items[i-1].Timestamp.Before(items[i].Timestamp),
			"timestamps must be non-increasing")
	}
}

func TestTimelineStableIDs(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	convs := NewConversationService(st)
	svc := NewNotificationService(st)

	alice := seedUser(t, st, "alice")
	bob := seedUser(t, st, "bob")

	_, err := convs.Send(ctx, bob.ID, alice.ID, "hello")
	require.NoError(t, err)

	first, err := svc.Timeline(ctx, alice.ID, false)
	require.NoError(t, err)
	second, err := svc.Timeline(ctx, alice.ID, false)
	require.NoError(t, err)

	require.Len(t, first, 1)
	require.Len(t, second, 1)
	assert.Equal(t, first[0].ID, second[0].ID, "recomputation must not change item identity")
	assert.Equal(t, "message-1", first[0].ID)
}
