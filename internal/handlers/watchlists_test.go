package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"watchhub/internal/realtime"
	"watchhub/internal/types"
)

func TestCreateWatchlist(t *testing.T) {
	env := newTestEnv(t)
	sess, _ := env.newUser(t, "alice")
	movie := env.newContent(t, "m1")

	result, err := env.handler.CreateWatchlist(sess, raw(t, types.CreateWatchlistRequest{
		Name:    "Friday Movies",
		Content: movie.ID,
	}))
	require.NoError(t, err)

	watchlists, ok := result.([]types.Watchlist)
	require.True(t, ok)
	require.Len(t, watchlists, 1)
	assert.Equal(t, "Friday Movies", watchlists[0].Name)
	require.Len(t, watchlists[0].List, 1)
	require.NotNil(t, watchlists[0].List[0].Content)
	assert.Equal(t, movie.Title, watchlists[0].List[0].Content.Title)
}

func TestCreateWatchlistDuplicateName(t *testing.T) {
	env := newTestEnv(t)
	sess, _ := env.newUser(t, "alice")

	_, err := env.handler.CreateWatchlist(sess, raw(t, types.CreateWatchlistRequest{Name: "Queue"}))
	require.NoError(t, err)

	_, err = env.handler.CreateWatchlist(sess, raw(t, types.CreateWatchlistRequest{Name: "Queue"}))
	require.Error(t, err)
	assert.Equal(t, "A watchlist with that name already exists", err.Error())

	// Another user may reuse the name.
	otherSess, _ := env.newUser(t, "bob")
	_, err = env.handler.CreateWatchlist(otherSess, raw(t, types.CreateWatchlistRequest{Name: "Queue"}))
	assert.NoError(t, err)
}

func TestCreateWatchlistUnknownSeedContent(t *testing.T) {
	env := newTestEnv(t)
	sess, _ := env.newUser(t, "alice")

	_, err := env.handler.CreateWatchlist(sess, raw(t, types.CreateWatchlistRequest{
		Name:    "Queue",
		Content: "missing",
	}))
	require.Error(t, err)
	assert.Equal(t, "Content not found", err.Error())
}

func createHandlerWatchlist(t *testing.T, env *testEnv, sess *realtime.Session, name string) string {
	t.Helper()
	result, err := env.handler.CreateWatchlist(sess, raw(t, types.CreateWatchlistRequest{Name: name}))
	require.NoError(t, err)
	watchlists := result.([]types.Watchlist)
	for _, wl := range watchlists {
		if wl.Name == name {
			return wl.ID
		}
	}
	t.Fatalf("watchlist %q not in reply", name)
	return ""
}

func TestAddToWatchlist(t *testing.T) {
	env := newTestEnv(t)
	sess, _ := env.newUser(t, "alice")
	conn := env.connect(sess.UserID)
	movie := env.newContent(t, "m1")
	watchlistID := createHandlerWatchlist(t, env, sess, "Queue")

	_, err := env.handler.AddToWatchlist(sess, raw(t, types.WatchlistContentRequest{
		Watchlist: watchlistID,
		Content:   movie.ID,
	}))
	require.NoError(t, err)

	// Owners get the refreshed list pushed.
	pushes := conn.pushed()
	require.Len(t, pushes, 1)
	assert.Equal(t, realtime.PushUpdateWatchlist, pushes[0].event)
	pushed, ok := pushes[0].data.(*types.Watchlist)
	require.True(t, ok)
	require.Len(t, pushed.List, 1)
	assert.Equal(t, movie.ID, pushed.List[0].ContentID)
}

func TestAddToWatchlistDuplicate(t *testing.T) {
	env := newTestEnv(t)
	sess, _ := env.newUser(t, "alice")
	movie := env.newContent(t, "m1")
	watchlistID := createHandlerWatchlist(t, env, sess, "Queue")

	req := raw(t, types.WatchlistContentRequest{Watchlist: watchlistID, Content: movie.ID})
	_, err := env.handler.AddToWatchlist(sess, req)
	require.NoError(t, err)

	_, err = env.handler.AddToWatchlist(sess, req)
	require.Error(t, err)
	assert.Equal(t, "Content is already in this watchlist", err.Error())
}

func TestAddToWatchlistNotOwner(t *testing.T) {
	env := newTestEnv(t)
	aliceSess, _ := env.newUser(t, "alice")
	bobSess, _ := env.newUser(t, "bob")
	movie := env.newContent(t, "m1")
	watchlistID := createHandlerWatchlist(t, env, aliceSess, "Queue")

	_, err := env.handler.AddToWatchlist(bobSess, raw(t, types.WatchlistContentRequest{
		Watchlist: watchlistID,
		Content:   movie.ID,
	}))
	require.Error(t, err)
	assert.Equal(t, "Not an owner of this watchlist", err.Error())
}

func TestRemoveFromWatchlistAbsent(t *testing.T) {
	env := newTestEnv(t)
	sess, _ := env.newUser(t, "alice")
	movie := env.newContent(t, "m1")
	watchlistID := createHandlerWatchlist(t, env, sess, "Queue")

	_, err := env.handler.RemoveFromWatchlist(sess, raw(t, types.WatchlistContentRequest{
		Watchlist: watchlistID,
		Content:   movie.ID,
	}))
	require.Error(t, err)
	assert.Equal(t, "Content is not in this watchlist", err.Error())
}

func TestReorderWatchlist(t *testing.T) {
	env := newTestEnv(t)
	sess, _ := env.newUser(t, "alice")
	m1 := env.newContent(t, "m1")
	m2 := env.newContent(t, "m2")
	watchlistID := createHandlerWatchlist(t, env, sess, "Queue")

	for _, contentID := range []string{m1.ID, m2.ID} {
		_, err := env.handler.AddToWatchlist(sess, raw(t, types.WatchlistContentRequest{
			Watchlist: watchlistID,
			Content:   contentID,
		}))
		require.NoError(t, err)
	}

	_, err := env.handler.ReorderWatchlist(sess, raw(t, types.ReorderWatchlistRequest{
		Watchlist: watchlistID,
		Content:   map[string]int{m1.ID: 2, m2.ID: 1},
	}))
	require.NoError(t, err)

	wl, err := env.store.GetWatchlist(watchlistID, false)
	require.NoError(t, err)
	byContent := map[string]int{}
	for _, entry := range wl.List {
		byContent[entry.ContentID] = entry.Position
	}
	assert.Equal(t, map[string]int{m1.ID: 2, m2.ID: 1}, byContent)
}

func TestReorderWatchlistRejectsBadMappings(t *testing.T) {
	env := newTestEnv(t)
	sess, _ := env.newUser(t, "alice")
	m1 := env.newContent(t, "m1")
	m2 := env.newContent(t, "m2")
	watchlistID := createHandlerWatchlist(t, env, sess, "Queue")

	for _, contentID := range []string{m1.ID, m2.ID} {
		_, err := env.handler.AddToWatchlist(sess, raw(t, types.WatchlistContentRequest{
			Watchlist: watchlistID,
			Content:   contentID,
		}))
		require.NoError(t, err)
	}

	tests := []struct {
		name    string
		mapping map[string]int
	}{
		{name: "missing entry", mapping: map[string]int{m1.ID: 1}},
		{name: "unknown entry", mapping: map[string]int{m1.ID: 1, m2.ID: 2, "ghost": 3}},
		{name: "duplicate position", mapping: map[string]int{m1.ID: 1, m2.ID: 1}},
		{name: "position out of range", mapping: map[string]int{m1.ID: 1, m2.ID: 3}},
		{name: "zero position", mapping: map[string]int{m1.ID: 0, m2.ID: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.handler.ReorderWatchlist(sess, raw(t, types.ReorderWatchlistRequest{
				Watchlist: watchlistID,
				Content:   tt.mapping,
			}))
			assert.Error(t, err)
		})
	}

	// The ordering is untouched after every rejected attempt.
	wl, err := env.store.GetWatchlist(watchlistID, false)
	require.NoError(t, err)
	require.Len(t, wl.List, 2)
	assert.Equal(t, 1, wl.List[0].Position)
	assert.Equal(t, 2, wl.List[1].Position)
}

func TestValidateReordering(t *testing.T) {
	entries := []types.WatchlistEntry{
		{ContentID: "a", Position: 1},
		{ContentID: "b", Position: 2},
		{ContentID: "c", Position: 3},
	}

	assert.NoError(t, validateReordering(entries, map[string]int{"a": 3, "b": 1, "c": 2}))
	assert.NoError(t, validateReordering(nil, map[string]int{}))
	assert.Error(t, validateReordering(entries, map[string]int{"a": 1, "b": 2}))
	assert.Error(t, validateReordering(entries, map[string]int{"a": 1, "b": 2, "c": 4}))
	assert.Error(t, validateReordering(entries, map[string]int{"a": 1, "b": 1, "c": 2}))
}

func TestLeaveWatchlist(t *testing.T) {
	env := newTestEnv(t)
	aliceSess, _ := env.newUser(t, "alice")
	bobSess, bob := env.newUser(t, "bob")
	watchlistID := createHandlerWatchlist(t, env, aliceSess, "Shared")
	require.NoError(t, env.store.AddWatchlistOwner(watchlistID, bob.ID, ""))

	result, err := env.handler.LeaveWatchlist(aliceSess, raw(t, types.WatchlistRequest{Watchlist: watchlistID}))
	require.NoError(t, err)
	assert.Equal(t, false, result.(map[string]interface{})["deleted"])

	// Bob leaving empties the owner set and deletes the watchlist.
	result, err = env.handler.LeaveWatchlist(bobSess, raw(t, types.WatchlistRequest{Watchlist: watchlistID}))
	require.NoError(t, err)
	assert.Equal(t, true, result.(map[string]interface{})["deleted"])

	_, err = env.store.GetWatchlist(watchlistID, false)
	assert.Error(t, err)
}

func TestDeleteWatchlistNotifiesOtherOwners(t *testing.T) {
	env := newTestEnv(t)
	aliceSess, _ := env.newUser(t, "alice")
	bobSess, bob := env.newUser(t, "bob")
	aliceConn := env.connect(aliceSess.UserID)
	bobConn := env.connect(bobSess.UserID)
	watchlistID := createHandlerWatchlist(t, env, aliceSess, "Shared")
	require.NoError(t, env.store.AddWatchlistOwner(watchlistID, bob.ID, ""))

	_, err := env.handler.DeleteWatchlist(aliceSess, raw(t, types.WatchlistRequest{Watchlist: watchlistID}))
	require.NoError(t, err)

	// The actor learns from the reply; co-owners from the push.
	assert.Empty(t, aliceConn.eventNames())
	assert.Equal(t, []string{realtime.PushUpdateWatchlist}, bobConn.eventNames())

	_, err = env.store.GetWatchlist(watchlistID, false)
	assert.Error(t, err)
}

func TestGetAllWatchlists(t *testing.T) {
	env := newTestEnv(t)
	sess, _ := env.newUser(t, "alice")
	createHandlerWatchlist(t, env, sess, "First")
	createHandlerWatchlist(t, env, sess, "Second")

	result, err := env.handler.GetAllWatchlists(sess, nil)
	require.NoError(t, err)
	watchlists := result.([]types.Watchlist)
	require.Len(t, watchlists, 2)
}
