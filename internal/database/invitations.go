package database

import (
	"database/sql"
	"fmt"
	"time"

	"watchhub/internal/types"
)

func (s *Store) GetInvitation(id string) (*types.Invitation, error) {
	var inv types.Invitation
	err := s.db.QueryRow(`
		SELECT id, watchlist_id, requester_id, recipient_id, created_at
		FROM invitations
		WHERE id = ?
	`, id).Scan(&inv.ID, &inv.WatchlistID, &inv.RequesterID, &inv.RecipientID, &inv.Created)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan invitation: %w", err)
	}
	return &inv, nil
}

// InvitationExists reports whether a pending invitation already targets
// the recipient for this watchlist. At most one may exist per pair.
func (s *Store) InvitationExists(watchlistID, recipientID string) (bool, error) {
	var one int
	err := s.db.QueryRow(`
		SELECT 1 FROM invitations WHERE watchlist_id = ? AND recipient_id = ?
	`, watchlistID, recipientID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to query invitation: %w", err)
	}
	return true, nil
}

func (s *Store) CreateInvitation(watchlistID, requesterID, recipientID string) (*types.Invitation, error) {
	inv := &types.Invitation{
		ID:          newID(),
		WatchlistID: watchlistID,
		RequesterID: requesterID,
		RecipientID: recipientID,
		Created:     time.Now().UTC(),
	}

	_, err := s.db.Exec(`
		INSERT INTO invitations (id, watchlist_id, requester_id, recipient_id, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, inv.ID, inv.WatchlistID, inv.RequesterID, inv.RecipientID, inv.Created)
	if err != nil {
		return nil, fmt.Errorf("failed to create invitation: %w", err)
	}

	return inv, nil
}

func (s *Store) DeleteInvitation(id string) error {
	result, err := s.db.Exec("DELETE FROM invitations WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete invitation: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// ListInvitationsForRecipient returns the profile's pending invitations
// with the requester profile and target watchlist populated.
func (s *Store) ListInvitationsForRecipient(profileID string) ([]types.InvitationView, error) {
	rows, err := s.db.Query(`
		SELECT i.id, i.watchlist_id, p.id, p.user_id, p.username, p.country
		FROM invitations i
		JOIN profiles p ON i.requester_id = p.id
		WHERE i.recipient_id = ?
		ORDER BY i.created_at
	`, profileID)
	if err != nil {
		return nil, fmt.Errorf("failed to list invitations: %w", err)
	}
	defer rows.Close()

	type pending struct {
		view        types.InvitationView
		watchlistID string
	}
	var pendings []pending
	for rows.Next() {
		var p pending
		err := rows.Scan(&p.view.ID, &p.watchlistID,
			&p.view.Requester.ID, &p.view.Requester.UserID,
			&p.view.Requester.Username, &p.view.Requester.Country)
		if err != nil {
			return nil, fmt.Errorf("failed to scan invitation: %w", err)
		}
		pendings = append(pendings, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	views := []types.InvitationView{}
	for _, p := range pendings {
		wl, err := s.GetWatchlist(p.watchlistID, true)
		if err != nil {
			return nil, err
		}
		p.view.Watchlist = *wl
		views = append(views, p.view)
	}

	return views, nil
}
