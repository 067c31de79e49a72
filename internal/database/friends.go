package database

import (
	"database/sql"
	"fmt"
	"time"

	"watchhub/internal/types"
)

// GetFriendBetween finds any friend record linking the two profiles,
// regardless of which side initiated it.
func (s *Store) GetFriendBetween(profileA, profileB string) (*types.Friend, error) {
	var f types.Friend
	err := s.db.QueryRow(`
		SELECT id, requester_id, recipient_id, status, created_at, updated_at
		FROM friends
		WHERE (requester_id = ? AND recipient_id = ?)
		   OR (requester_id = ? AND recipient_id = ?)
		LIMIT 1
	`, profileA, profileB, profileB, profileA).Scan(
		&f.ID, &f.RequesterID, &f.RecipientID, &f.Status, &f.Created, &f.Updated)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query friend: %w", err)
	}
	return &f, nil
}

// CreateFriendPair inserts both directed records of a new friend request
// in one transaction. A partial pair is never observable.
func (s *Store) CreateFriendPair(requesterID, recipientID string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	_, err = tx.Exec(`
		INSERT INTO friends (id, requester_id, recipient_id, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, newID(), requesterID, recipientID, types.FriendStatusRequested, now, now)
	if err != nil {
		return fmt.Errorf("failed to create outgoing friend record: %w", err)
	}

	_, err = tx.Exec(`
		INSERT INTO friends (id, requester_id, recipient_id, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, newID(), recipientID, requesterID, types.FriendStatusPending, now, now)
	if err != nil {
		return fmt.Errorf("failed to create incoming friend record: %w", err)
	}

	return tx.Commit()
}

// AcceptFriendPair flips both directed records to friends. Only the side
// that received the request may accept: the accepter's own record must
// still be pending. Returns ErrNotFound otherwise, including when the
// requester tries to accept their own outgoing request.
func (s *Store) AcceptFriendPair(accepterID, requesterID string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	result, err := tx.Exec(`
		UPDATE friends
		SET status = ?, updated_at = ?
		WHERE requester_id = ? AND recipient_id = ? AND status = ?
	`, types.FriendStatusFriends, now, accepterID, requesterID, types.FriendStatusPending)
	if err != nil {
		return fmt.Errorf("failed to accept friend record: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to count accepted records: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}

	_, err = tx.Exec(`
		UPDATE friends
		SET status = ?, updated_at = ?
		WHERE requester_id = ? AND recipient_id = ?
	`, types.FriendStatusFriends, now, requesterID, accepterID)
	if err != nil {
		return fmt.Errorf("failed to accept mirror record: %w", err)
	}

	return tx.Commit()
}

// DeleteFriendPair removes both directed records. Returns ErrNotFound when
// nothing links the two profiles.
func (s *Store) DeleteFriendPair(profileA, profileB string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.Exec(`
		DELETE FROM friends
		WHERE (requester_id = ? AND recipient_id = ?)
		   OR (requester_id = ? AND recipient_id = ?)
	`, profileA, profileB, profileB, profileA)
	if err != nil {
		return fmt.Errorf("failed to delete friend pair: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to count deleted records: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}

	return tx.Commit()
}

// ListFriends returns the requester-side friend records joined with the
// counterparty's profile.
func (s *Store) ListFriends(profileID string) ([]types.FriendEntry, error) {
	rows, err := s.db.Query(`
		SELECT f.id, f.status, p.id, p.user_id, p.username, p.country
		FROM friends f
		JOIN profiles p ON f.recipient_id = p.id
		WHERE f.requester_id = ?
		ORDER BY f.created_at
	`, profileID)
	if err != nil {
		return nil, fmt.Errorf("failed to list friends: %w", err)
	}
	defer rows.Close()

	var entries []types.FriendEntry
	for rows.Next() {
		var e types.FriendEntry
		err := rows.Scan(&e.ID, &e.Status, &e.Profile.ID, &e.Profile.UserID, &e.Profile.Username, &e.Profile.Country)
		if err != nil {
			return nil, fmt.Errorf("failed to scan friend entry: %w", err)
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

// CountFriendRecords reports how many directed records link the two
// profiles. Used by tests to assert the pairing invariant.
func (s *Store) CountFriendRecords(profileA, profileB string) (int, error) {
	var n int
	err := s.db.QueryRow(`
		SELECT COUNT(*)
		FROM friends
		WHERE (requester_id = ? AND recipient_id = ?)
		   OR (requester_id = ? AND recipient_id = ?)
	`, profileA, profileB, profileB, profileA).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count friend records: %w", err)
	}
	return n, nil
}
