package database

import (
	"database/sql"
	"fmt"
	"time"

	"watchhub/internal/types"
)

// GetWatchlist loads a watchlist with its owner set and entries in
// position order. When populate is true each entry carries its content.
func (s *Store) GetWatchlist(id string, populate bool) (*types.Watchlist, error) {
	var wl types.Watchlist
	err := s.db.QueryRow(`
		SELECT id, name, created_at, updated_at FROM watchlists WHERE id = ?
	`, id).Scan(&wl.ID, &wl.Name, &wl.Created, &wl.Updated)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan watchlist: %w", err)
	}

	wl.Owners, err = s.GetWatchlistOwners(id)
	if err != nil {
		return nil, err
	}

	wl.List, err = s.getWatchlistEntries(id, populate)
	if err != nil {
		return nil, err
	}

	return &wl, nil
}

func (s *Store) GetWatchlistOwners(id string) ([]string, error) {
	rows, err := s.db.Query(`
		SELECT profile_id FROM watchlist_owners WHERE watchlist_id = ? ORDER BY profile_id
	`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query watchlist owners: %w", err)
	}
	defer rows.Close()

	owners := []string{}
	for rows.Next() {
		var owner string
		if err := rows.Scan(&owner); err != nil {
			return nil, fmt.Errorf("failed to scan owner: %w", err)
		}
		owners = append(owners, owner)
	}

	return owners, rows.Err()
}

// IsWatchlistOwner reports whether the profile belongs to the owner set.
func (s *Store) IsWatchlistOwner(watchlistID, profileID string) (bool, error) {
	var one int
	err := s.db.QueryRow(`
		SELECT 1 FROM watchlist_owners WHERE watchlist_id = ? AND profile_id = ?
	`, watchlistID, profileID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to query ownership: %w", err)
	}
	return true, nil
}

// ListWatchlistsByOwner returns every watchlist the profile co-owns.
func (s *Store) ListWatchlistsByOwner(profileID string, populate bool) ([]types.Watchlist, error) {
	rows, err := s.db.Query(`
		SELECT w.id
		FROM watchlists w
		JOIN watchlist_owners o ON w.id = o.watchlist_id
		WHERE o.profile_id = ?
		ORDER BY w.created_at
	`, profileID)
	if err != nil {
		return nil, fmt.Errorf("failed to list watchlists: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan watchlist id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	watchlists := []types.Watchlist{}
	for _, id := range ids {
		wl, err := s.GetWatchlist(id, populate)
		if err != nil {
			return nil, err
		}
		watchlists = append(watchlists, *wl)
	}

	return watchlists, nil
}

// OwnerHasWatchlistNamed reports whether the profile already co-owns a
// watchlist with this exact name. Names are case-sensitive.
func (s *Store) OwnerHasWatchlistNamed(profileID, name string) (bool, error) {
	var one int
	err := s.db.QueryRow(`
		SELECT 1
		FROM watchlists w
		JOIN watchlist_owners o ON w.id = o.watchlist_id
		WHERE o.profile_id = ? AND w.name = ?
		LIMIT 1
	`, profileID, name).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to query watchlist name: %w", err)
	}
	return true, nil
}

// CreateWatchlist creates a watchlist owned solely by the profile,
// optionally seeded with one content entry at position 1.
func (s *Store) CreateWatchlist(ownerID, name, seedContentID string) (*types.Watchlist, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	id := newID()
	now := time.Now().UTC()
	_, err = tx.Exec(`
		INSERT INTO watchlists (id, name, created_at, updated_at) VALUES (?, ?, ?, ?)
	`, id, name, now, now)
	if err != nil {
		return nil, fmt.Errorf("failed to create watchlist: %w", err)
	}

	_, err = tx.Exec(`
		INSERT INTO watchlist_owners (watchlist_id, profile_id) VALUES (?, ?)
	`, id, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to add watchlist owner: %w", err)
	}

	if seedContentID != "" {
		_, err = tx.Exec(`
			INSERT INTO watchlist_entries (id, watchlist_id, content_id, position, added_at)
			VALUES (?, ?, ?, 1, ?)
		`, newID(), id, seedContentID, now)
		if err != nil {
			return nil, fmt.Errorf("failed to seed watchlist entry: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit watchlist: %w", err)
	}

	return s.GetWatchlist(id, false)
}

// AddWatchlistEntry appends content at max(position)+1. Freed positions
// are never reused. Duplicate content in the same list is rejected.
func (s *Store) AddWatchlistEntry(watchlistID, contentID string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var one int
	err = tx.QueryRow(`
		SELECT 1 FROM watchlist_entries WHERE watchlist_id = ? AND content_id = ?
	`, watchlistID, contentID).Scan(&one)
	if err == nil {
		return fmt.Errorf("content already in watchlist: %w", ErrConflict)
	}
	if err != sql.ErrNoRows {
		return fmt.Errorf("failed to check for duplicate entry: %w", err)
	}

	var maxPosition int
	err = tx.QueryRow(`
		SELECT COALESCE(MAX(position), 0) FROM watchlist_entries WHERE watchlist_id = ?
	`, watchlistID).Scan(&maxPosition)
	if err != nil {
		return fmt.Errorf("failed to query max position: %w", err)
	}

	now := time.Now().UTC()
	_, err = tx.Exec(`
		INSERT INTO watchlist_entries (id, watchlist_id, content_id, position, added_at)
		VALUES (?, ?, ?, ?, ?)
	`, newID(), watchlistID, contentID, maxPosition+1, now)
	if err != nil {
		return fmt.Errorf("failed to add watchlist entry: %w", err)
	}

	if err := touchWatchlist(tx, watchlistID, now); err != nil {
		return err
	}

	return tx.Commit()
}

// RemoveWatchlistEntry deletes the entry for the content and closes the
// gap, shifting every higher position down by one so the ordering stays
// dense. Returns ErrNotFound without mutating when the entry is absent.
func (s *Store) RemoveWatchlistEntry(watchlistID, contentID string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var removedPosition int
	err = tx.QueryRow(`
		SELECT position FROM watchlist_entries WHERE watchlist_id = ? AND content_id = ?
	`, watchlistID, contentID).Scan(&removedPosition)
	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to find entry: %w", err)
	}

	_, err = tx.Exec(`
		DELETE FROM watchlist_entries WHERE watchlist_id = ? AND content_id = ?
	`, watchlistID, contentID)
	if err != nil {
		return fmt.Errorf("failed to delete entry: %w", err)
	}

	_, err = tx.Exec(`
		UPDATE watchlist_entries SET position = position - 1
		WHERE watchlist_id = ? AND position > ?
	`, watchlistID, removedPosition)
	if err != nil {
		return fmt.Errorf("failed to compact positions: %w", err)
	}

	if err := touchWatchlist(tx, watchlistID, time.Now().UTC()); err != nil {
		return err
	}

	return tx.Commit()
}

// ReorderWatchlistEntries applies a content-id to position mapping
// wholesale. The handler validates that the mapping is a contiguous
// permutation over exactly the current entries before calling this.
func (s *Store) ReorderWatchlistEntries(watchlistID string, positions map[string]int) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for contentID, position := range positions {
		_, err = tx.Exec(`
			UPDATE watchlist_entries SET position = ?
			WHERE watchlist_id = ? AND content_id = ?
		`, position, watchlistID, contentID)
		if err != nil {
			return fmt.Errorf("failed to reorder entry: %w", err)
		}
	}

	if err := touchWatchlist(tx, watchlistID, time.Now().UTC()); err != nil {
		return err
	}

	return tx.Commit()
}

// RemoveWatchlistOwner drops the profile from the owner set. When the set
// empties the watchlist and everything hanging off it is deleted. Reports
// whether the watchlist was deleted.
func (s *Store) RemoveWatchlistOwner(watchlistID, profileID string) (deleted bool, err error) {
	tx, err := s.db.Begin()
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.Exec(`
		DELETE FROM watchlist_owners WHERE watchlist_id = ? AND profile_id = ?
	`, watchlistID, profileID)
	if err != nil {
		return false, fmt.Errorf("failed to remove owner: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return false, ErrNotFound
	}

	var remaining int
	err = tx.QueryRow(`
		SELECT COUNT(*) FROM watchlist_owners WHERE watchlist_id = ?
	`, watchlistID).Scan(&remaining)
	if err != nil {
		return false, fmt.Errorf("failed to count owners: %w", err)
	}

	if remaining == 0 {
		if err := deleteWatchlistTx(tx, watchlistID); err != nil {
			return false, err
		}
		deleted = true
	}

	return deleted, tx.Commit()
}

// AddWatchlistOwner adds the profile to the owner set and deletes the
// invitation that granted it, in one transaction.
func (s *Store) AddWatchlistOwner(watchlistID, profileID, invitationID string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT OR IGNORE INTO watchlist_owners (watchlist_id, profile_id) VALUES (?, ?)
	`, watchlistID, profileID)
	if err != nil {
		return fmt.Errorf("failed to add owner: %w", err)
	}

	if invitationID != "" {
		_, err = tx.Exec("DELETE FROM invitations WHERE id = ?", invitationID)
		if err != nil {
			return fmt.Errorf("failed to delete invitation: %w", err)
		}
	}

	return tx.Commit()
}

// DeleteWatchlist hard-deletes the watchlist, its entries, owner rows and
// pending invitations.
func (s *Store) DeleteWatchlist(id string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := deleteWatchlistTx(tx, id); err != nil {
		return err
	}

	return tx.Commit()
}

func deleteWatchlistTx(tx *sql.Tx, id string) error {
	for _, stmt := range []string{
		"DELETE FROM watchlist_entries WHERE watchlist_id = ?",
		"DELETE FROM watchlist_owners WHERE watchlist_id = ?",
		"DELETE FROM invitations WHERE watchlist_id = ?",
		"DELETE FROM watchlists WHERE id = ?",
	} {
		if _, err := tx.Exec(stmt, id); err != nil {
			return fmt.Errorf("failed to delete watchlist: %w", err)
		}
	}
	return nil
}

func touchWatchlist(tx *sql.Tx, id string, now time.Time) error {
	if _, err := tx.Exec("UPDATE watchlists SET updated_at = ? WHERE id = ?", now, id); err != nil {
		return fmt.Errorf("failed to touch watchlist: %w", err)
	}
	return nil
}

func (s *Store) getWatchlistEntries(watchlistID string, populate bool) ([]types.WatchlistEntry, error) {
	if !populate {
		rows, err := s.db.Query(`
			SELECT id, content_id, position
			FROM watchlist_entries
			WHERE watchlist_id = ?
			ORDER BY position
		`, watchlistID)
		if err != nil {
			return nil, fmt.Errorf("failed to query entries: %w", err)
		}
		defer rows.Close()

		entries := []types.WatchlistEntry{}
		for rows.Next() {
			var e types.WatchlistEntry
			if err := rows.Scan(&e.ID, &e.ContentID, &e.Position); err != nil {
				return nil, fmt.Errorf("failed to scan entry: %w", err)
			}
			entries = append(entries, e)
		}
		return entries, rows.Err()
	}

	rows, err := s.db.Query(`
		SELECT e.id, e.content_id, e.position, `+prefixedContentColumns("c")+`
		FROM watchlist_entries e
		JOIN content c ON e.content_id = c.id
		WHERE e.watchlist_id = ?
		ORDER BY e.position
	`, watchlistID)
	if err != nil {
		return nil, fmt.Errorf("failed to query entries: %w", err)
	}
	defer rows.Close()

	entries := []types.WatchlistEntry{}
	for rows.Next() {
		var e types.WatchlistEntry
		var c types.Content
		var genres, seasons, streamingInfo string
		err := rows.Scan(&e.ID, &e.ContentID, &e.Position,
			&c.ID, &c.CatalogID, &c.Type, &c.Title, &c.ReleaseYear,
			&c.Poster, &c.Backdrop, &c.Overview, &c.Rating, &c.Runtime,
			&genres, &seasons, &streamingInfo,
			&c.StreamingValidated, &c.StreamingUpdated, &c.Likes, &c.Dislikes, &c.Created)
		if err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		c.Genres = []string{}
		fromJSON(genres, &c.Genres)
		fromJSON(seasons, &c.Seasons)
		c.StreamingInfo = []types.Region{}
		fromJSON(streamingInfo, &c.StreamingInfo)
		e.Content = &c
		entries = append(entries, e)
	}

	return entries, rows.Err()
}
