package handlers

import (
	"encoding/json"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"watchhub"
	"watchhub/internal/database"
	"watchhub/internal/realtime"
	"watchhub/internal/types"
)

type testEnv struct {
	store    *database.Store
	registry realtime.Registry
	handler  *Handler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := database.Connect(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	migrationsFS, err := watchhub.GetMigrationsFS()
	require.NoError(t, err)
	require.NoError(t, database.RunMigrations(db, migrationsFS))

	log := zaptest.NewLogger(t)
	store := database.NewStore(db)
	registry := realtime.NewRegistry(log)
	notifier := realtime.NewNotifier(registry, log)

	return &testEnv{
		store:    store,
		registry: registry,
		handler:  New(store, notifier, log),
	}
}

// newUser registers a user and returns their session plus resolved profile.
func (e *testEnv) newUser(t *testing.T, name string) (*realtime.Session, *types.Profile) {
	t.Helper()
	user, err := e.store.CreateUser(name, name+"@example.com", "digest")
	require.NoError(t, err)
	profile, err := e.store.GetOrCreateProfile(user.ID)
	require.NoError(t, err)
	return &realtime.Session{UserID: user.ID}, profile
}

// connect registers a push-recording connection for the user.
func (e *testEnv) connect(userID string) *recordedConn {
	conn := &recordedConn{}
	e.registry.Register(userID, conn)
	return conn
}

func (e *testEnv) newContent(t *testing.T, catalogID string) *types.Content {
	t.Helper()
	content, err := e.store.CreateContent(&types.Content{
		CatalogID: catalogID,
		Type:      types.ContentTypeMovie,
		Title:     "Movie " + catalogID,
	})
	require.NoError(t, err)
	return content
}

func raw(t *testing.T, v interface{}) json.RawMessage {
	t.Helper()
	payload, err := json.Marshal(v)
	require.NoError(t, err)
	return payload
}

type pushedEvent struct {
	event string
	data  interface{}
}

type recordedConn struct {
	mu     sync.Mutex
	events []pushedEvent
}

func (c *recordedConn) Push(event string, data interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, pushedEvent{event: event, data: data})
	return nil
}

func (c *recordedConn) Close() error { return nil }

func (c *recordedConn) pushed() []pushedEvent {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]pushedEvent(nil), c.events...)
}

func (c *recordedConn) eventNames() []string {
	names := []string{}
	for _, p := range c.pushed() {
		names = append(names, p.event)
	}
	return names
}
