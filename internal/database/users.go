package database

import (
	"database/sql"
	"fmt"
	"time"

	"watchhub/internal/types"
)

// CreateUser registers a new user. Returns ErrConflict when the email is
// already taken.
func (s *Store) CreateUser(name, email, passwordDigest string) (*types.User, error) {
	var existing string
	err := s.db.QueryRow("SELECT id FROM users WHERE email = ?", email).Scan(&existing)
	if err == nil {
		return nil, fmt.Errorf("email %q: %w", email, ErrConflict)
	}
	if err != sql.ErrNoRows {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}

	now := time.Now().UTC()
	user := &types.User{
		ID:             newID(),
		Name:           name,
		Email:          email,
		PasswordDigest: passwordDigest,
		Created:        now,
		Updated:        now,
	}

	_, err = s.db.Exec(`
		INSERT INTO users (id, name, email, password_digest, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, user.ID, user.Name, user.Email, user.PasswordDigest, user.Created, user.Updated)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

func (s *Store) GetUserByEmail(email string) (*types.User, error) {
	return s.scanUser(s.db.QueryRow(`
		SELECT id, name, email, password_digest, created_at, updated_at
		FROM users
		WHERE email = ?
	`, email))
}

func (s *Store) GetUserByID(id string) (*types.User, error) {
	return s.scanUser(s.db.QueryRow(`
		SELECT id, name, email, password_digest, created_at, updated_at
		FROM users
		WHERE id = ?
	`, id))
}

func (s *Store) scanUser(row *sql.Row) (*types.User, error) {
	var user types.User
	err := row.Scan(&user.ID, &user.Name, &user.Email, &user.PasswordDigest, &user.Created, &user.Updated)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}
	return &user, nil
}
