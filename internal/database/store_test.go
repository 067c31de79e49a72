package database

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"watchhub"
	"watchhub/internal/types"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	db, err := Connect(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	migrationsFS, err := watchhub.GetMigrationsFS()
	require.NoError(t, err)
	require.NoError(t, RunMigrations(db, migrationsFS))

	return NewStore(db)
}

// createTestProfile registers a user and resolves their profile.
func createTestProfile(t *testing.T, s *Store, name string) *types.Profile {
	t.Helper()
	user, err := s.CreateUser(name, name+"@example.com", "digest")
	require.NoError(t, err)
	profile, err := s.GetOrCreateProfile(user.ID)
	require.NoError(t, err)
	return profile
}

func createTestContent(t *testing.T, s *Store, catalogID string) *types.Content {
	t.Helper()
	content, err := s.CreateContent(&types.Content{
		CatalogID: catalogID,
		Type:      types.ContentTypeMovie,
		Title:     "Movie " + catalogID,
		Genres:    []string{"drama"},
	})
	require.NoError(t, err)
	return content
}

func TestCreateUserRejectsDuplicateEmail(t *testing.T) {
	s := newTestStore(t)

	_, err := s.CreateUser("Alice", "alice@example.com", "digest")
	require.NoError(t, err)

	_, err = s.CreateUser("Other Alice", "alice@example.com", "digest")
	assert.ErrorIs(t, err, ErrConflict)
}

func TestGetUserByEmail(t *testing.T) {
	s := newTestStore(t)

	created, err := s.CreateUser("Alice", "alice@example.com", "digest")
	require.NoError(t, err)

	user, err := s.GetUserByEmail("alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID, user.ID)
	assert.Equal(t, "Alice", user.Name)

	_, err = s.GetUserByEmail("nobody@example.com")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetOrCreateProfileIsIdempotent(t *testing.T) {
	s := newTestStore(t)
	user, err := s.CreateUser("Alice", "alice@example.com", "digest")
	require.NoError(t, err)

	first, err := s.GetOrCreateProfile(user.ID)
	require.NoError(t, err)
	second, err := s.GetOrCreateProfile(user.ID)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Nil(t, first.Username)
	assert.Equal(t, []string{}, first.Subscriptions)
}

func TestUpdateProfile(t *testing.T) {
	s := newTestStore(t)
	profile := createTestProfile(t, s, "alice")

	updated, err := s.UpdateProfile(profile.ID, types.UpdateProfileRequest{
		Username:      "moviefan",
		Country:       "no",
		Subscriptions: []string{"netflix", "hbo"},
	})
	require.NoError(t, err)
	require.NotNil(t, updated.Username)
	assert.Equal(t, "moviefan", *updated.Username)
	assert.Equal(t, "no", updated.Country)
	assert.Equal(t, []string{"netflix", "hbo"}, updated.Subscriptions)

	// An empty username leaves the existing one in place.
	updated, err = s.UpdateProfile(profile.ID, types.UpdateProfileRequest{Country: "se"})
	require.NoError(t, err)
	require.NotNil(t, updated.Username)
	assert.Equal(t, "moviefan", *updated.Username)
	assert.Equal(t, "se", updated.Country)
}

func TestUpdateProfileRejectsTakenUsername(t *testing.T) {
	s := newTestStore(t)
	alice := createTestProfile(t, s, "alice")
	bob := createTestProfile(t, s, "bob")

	_, err := s.UpdateProfile(alice.ID, types.UpdateProfileRequest{Username: "moviefan"})
	require.NoError(t, err)

	_, err = s.UpdateProfile(bob.ID, types.UpdateProfileRequest{Username: "moviefan"})
	assert.ErrorIs(t, err, ErrConflict)

	// Re-asserting your own username is not a conflict.
	_, err = s.UpdateProfile(alice.ID, types.UpdateProfileRequest{Username: "moviefan"})
	assert.NoError(t, err)
}

func TestListNamedProfilesSkipsUnnamed(t *testing.T) {
	s := newTestStore(t)
	alice := createTestProfile(t, s, "alice")
	createTestProfile(t, s, "bob")

	_, err := s.UpdateProfile(alice.ID, types.UpdateProfileRequest{Username: "moviefan"})
	require.NoError(t, err)

	profiles, err := s.ListNamedProfiles()
	require.NoError(t, err)
	require.Len(t, profiles, 1)
	assert.Equal(t, alice.ID, profiles[0].ID)
}

func TestUserIDsForProfiles(t *testing.T) {
	s := newTestStore(t)
	alice := createTestProfile(t, s, "alice")
	bob := createTestProfile(t, s, "bob")

	userIDs, err := s.UserIDsForProfiles([]string{alice.ID, "missing-profile", bob.ID})
	require.NoError(t, err)
	assert.Equal(t, []string{alice.UserID, bob.UserID}, userIDs)
}
