package database

import (
	"database/sql"
	"fmt"
	"time"

	"watchhub/internal/types"
)

// GetOrCreateProfile finds the profile backing a user, creating an empty
// one on first use. Profiles are created lazily the first time a session
// touches profile state.
func (s *Store) GetOrCreateProfile(userID string) (*types.Profile, error) {
	profile, err := s.GetProfileByUserID(userID)
	if err == nil {
		return profile, nil
	}
	if err != ErrNotFound {
		return nil, err
	}

	now := time.Now().UTC()
	profile = &types.Profile{
		ID:            newID(),
		UserID:        userID,
		Subscriptions: []string{},
		Created:       now,
		Updated:       now,
	}

	_, err = s.db.Exec(`
		INSERT INTO profiles (id, user_id, username, country, subscriptions, created_at, updated_at)
		VALUES (?, ?, NULL, '', '[]', ?, ?)
	`, profile.ID, profile.UserID, profile.Created, profile.Updated)
	if err != nil {
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}

	return profile, nil
}

func (s *Store) GetProfileByUserID(userID string) (*types.Profile, error) {
	return s.scanProfile(s.db.QueryRow(`
		SELECT id, user_id, username, country, subscriptions, created_at, updated_at
		FROM profiles
		WHERE user_id = ?
	`, userID))
}

func (s *Store) GetProfileByID(id string) (*types.Profile, error) {
	return s.scanProfile(s.db.QueryRow(`
		SELECT id, user_id, username, country, subscriptions, created_at, updated_at
		FROM profiles
		WHERE id = ?
	`, id))
}

// UpdateProfile applies the requested profile fields. Returns ErrConflict
// when the username is taken by another profile.
func (s *Store) UpdateProfile(profileID string, req types.UpdateProfileRequest) (*types.Profile, error) {
	if req.Username != "" {
		var takenBy string
		err := s.db.QueryRow(
			"SELECT id FROM profiles WHERE username = ? AND id != ?",
			req.Username, profileID,
		).Scan(&takenBy)
		if err == nil {
			return nil, fmt.Errorf("username %q: %w", req.Username, ErrConflict)
		}
		if err != sql.ErrNoRows {
			return nil, fmt.Errorf("failed to check username: %w", err)
		}
	}

	var username interface{}
	if req.Username != "" {
		username = req.Username
	}
	subscriptions := req.Subscriptions
	if subscriptions == nil {
		subscriptions = []string{}
	}

	result, err := s.db.Exec(`
		UPDATE profiles
		SET username = COALESCE(?, username), country = ?, subscriptions = ?, updated_at = ?
		WHERE id = ?
	`, username, req.Country, toJSON(subscriptions), time.Now().UTC(), profileID)
	if err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return nil, ErrNotFound
	}

	return s.GetProfileByID(profileID)
}

// ListNamedProfiles returns every profile that has picked a username.
// Fuzzy ranking happens in the handler; the candidate set is small enough
// to score in memory.
func (s *Store) ListNamedProfiles() ([]types.ProfileView, error) {
	rows, err := s.db.Query(`
		SELECT id, user_id, username, country
		FROM profiles
		WHERE username IS NOT NULL
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}
	defer rows.Close()

	var profiles []types.ProfileView
	for rows.Next() {
		var p types.ProfileView
		if err := rows.Scan(&p.ID, &p.UserID, &p.Username, &p.Country); err != nil {
			return nil, fmt.Errorf("failed to scan profile: %w", err)
		}
		profiles = append(profiles, p)
	}

	return profiles, rows.Err()
}

// UserIDsForProfiles resolves profile ids to their owning user ids, used
// to target fan-out at connected users.
func (s *Store) UserIDsForProfiles(profileIDs []string) ([]string, error) {
	userIDs := make([]string, 0, len(profileIDs))
	for _, profileID := range profileIDs {
		var userID string
		err := s.db.QueryRow("SELECT user_id FROM profiles WHERE id = ?", profileID).Scan(&userID)
		if err == sql.ErrNoRows {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to resolve profile user: %w", err)
		}
		userIDs = append(userIDs, userID)
	}
	return userIDs, nil
}

func (s *Store) scanProfile(row *sql.Row) (*types.Profile, error) {
	var p types.Profile
	var subscriptions string
	err := row.Scan(&p.ID, &p.UserID, &p.Username, &p.Country, &subscriptions, &p.Created, &p.Updated)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan profile: %w", err)
	}
	p.Subscriptions = []string{}
	fromJSON(subscriptions, &p.Subscriptions)
	return &p, nil
}
