package database

import (
	"database/sql"
	"fmt"
	"time"

	"watchhub/internal/types"
)

// Reaction kinds applied to a (profile, content) pair.
const (
	ReactionLike      = "like"
	ReactionDislike   = "dislike"
	ReactionUnlike    = "unlike"
	ReactionUndislike = "undislike"
)

// ApplyReaction upserts the watched record for (profile, content) and
// adjusts the content-level like/dislike counters in the same transaction,
// keeping the aggregate consistent with the per-user flags. Reactions are
// idempotent: liking already-liked content changes nothing.
func (s *Store) ApplyReaction(profileID, contentID, reaction string) (*types.Watched, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var exists int
	err = tx.QueryRow("SELECT 1 FROM content WHERE id = ?", contentID).Scan(&exists)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query content: %w", err)
	}

	watched, err := getWatchedTx(tx, profileID, contentID)
	if err != nil && err != ErrNotFound {
		return nil, err
	}

	now := time.Now().UTC()
	if watched == nil {
		watched = &types.Watched{
			ID:        newID(),
			ProfileID: profileID,
			ContentID: contentID,
			Created:   now,
			Updated:   now,
		}
		_, err = tx.Exec(`
			INSERT INTO watched (id, profile_id, content_id, liked, disliked, mood, created_at, updated_at)
			VALUES (?, ?, ?, 0, 0, '', ?, ?)
		`, watched.ID, profileID, contentID, now, now)
		if err != nil {
			return nil, fmt.Errorf("failed to create watched record: %w", err)
		}
	}

	likesDelta, dislikesDelta := 0, 0
	switch reaction {
	case ReactionLike:
		if !watched.Liked {
			likesDelta++
			if watched.Disliked {
				dislikesDelta--
			}
			watched.Liked, watched.Disliked = true, false
		}
	case ReactionDislike:
		if !watched.Disliked {
			dislikesDelta++
			if watched.Liked {
				likesDelta--
			}
			watched.Liked, watched.Disliked = false, true
		}
	case ReactionUnlike:
		if watched.Liked {
			likesDelta--
			watched.Liked = false
		}
	case ReactionUndislike:
		if watched.Disliked {
			dislikesDelta--
			watched.Disliked = false
		}
	default:
		return nil, fmt.Errorf("unknown reaction %q", reaction)
	}

	if likesDelta != 0 || dislikesDelta != 0 {
		_, err = tx.Exec(`
			UPDATE watched SET liked = ?, disliked = ?, updated_at = ? WHERE id = ?
		`, watched.Liked, watched.Disliked, now, watched.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to update watched record: %w", err)
		}

		_, err = tx.Exec(`
			UPDATE content SET likes = likes + ?, dislikes = dislikes + ? WHERE id = ?
		`, likesDelta, dislikesDelta, contentID)
		if err != nil {
			return nil, fmt.Errorf("failed to update reaction counters: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit reaction: %w", err)
	}

	watched.Updated = now
	return watched, nil
}

// SetMood records the mood on the watched record, creating the record when
// the profile has no reaction to the content yet. The upsert keeps two
// concurrent calls from tripping over the (profile_id, content_id) unique
// constraint.
func (s *Store) SetMood(profileID, contentID, mood string) (*types.Watched, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var exists int
	err = tx.QueryRow("SELECT 1 FROM content WHERE id = ?", contentID).Scan(&exists)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query content: %w", err)
	}

	now := time.Now().UTC()
	_, err = tx.Exec(`
		INSERT INTO watched (id, profile_id, content_id, liked, disliked, mood, created_at, updated_at)
		VALUES (?, ?, ?, 0, 0, ?, ?, ?)
		ON CONFLICT (profile_id, content_id) DO UPDATE
		SET mood = excluded.mood, updated_at = excluded.updated_at
	`, newID(), profileID, contentID, mood, now, now)
	if err != nil {
		return nil, fmt.Errorf("failed to set mood: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit mood: %w", err)
	}

	return s.GetWatched(profileID, contentID)
}

func (s *Store) GetWatched(profileID, contentID string) (*types.Watched, error) {
	var w types.Watched
	err := s.db.QueryRow(`
		SELECT id, profile_id, content_id, liked, disliked, mood, created_at, updated_at
		FROM watched
		WHERE profile_id = ? AND content_id = ?
	`, profileID, contentID).Scan(
		&w.ID, &w.ProfileID, &w.ContentID, &w.Liked, &w.Disliked, &w.Mood, &w.Created, &w.Updated)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan watched record: %w", err)
	}
	return &w, nil
}

// ListWatched returns the profile's watched records with content populated,
// most recent first.
func (s *Store) ListWatched(profileID string) ([]types.WatchedEntry, error) {
	rows, err := s.db.Query(`
		SELECT w.id, w.profile_id, w.content_id, w.liked, w.disliked, w.mood,
		       w.created_at, w.updated_at, `+prefixedContentColumns("c")+`
		FROM watched w
		JOIN content c ON w.content_id = c.id
		WHERE w.profile_id = ?
		ORDER BY w.updated_at DESC
	`, profileID)
	if err != nil {
		return nil, fmt.Errorf("failed to list watched records: %w", err)
	}
	defer rows.Close()

	var entries []types.WatchedEntry
	for rows.Next() {
		var e types.WatchedEntry
		var genres, seasons, streamingInfo string
		err := rows.Scan(
			&e.ID, &e.ProfileID, &e.ContentID, &e.Liked, &e.Disliked, &e.Mood,
			&e.Watched.Created, &e.Watched.Updated,
			&e.Content.ID, &e.Content.CatalogID, &e.Content.Type, &e.Content.Title,
			&e.Content.ReleaseYear, &e.Content.Poster, &e.Content.Backdrop,
			&e.Content.Overview, &e.Content.Rating, &e.Content.Runtime,
			&genres, &seasons, &streamingInfo,
			&e.Content.StreamingValidated, &e.Content.StreamingUpdated,
			&e.Content.Likes, &e.Content.Dislikes, &e.Content.Created)
		if err != nil {
			return nil, fmt.Errorf("failed to scan watched entry: %w", err)
		}
		e.Content.Genres = []string{}
		fromJSON(genres, &e.Content.Genres)
		fromJSON(seasons, &e.Content.Seasons)
		e.Content.StreamingInfo = []types.Region{}
		fromJSON(streamingInfo, &e.Content.StreamingInfo)
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

func getWatchedTx(tx *sql.Tx, profileID, contentID string) (*types.Watched, error) {
	var w types.Watched
	err := tx.QueryRow(`
		SELECT id, profile_id, content_id, liked, disliked, mood, created_at, updated_at
		FROM watched
		WHERE profile_id = ? AND content_id = ?
	`, profileID, contentID).Scan(
		&w.ID, &w.ProfileID, &w.ContentID, &w.Liked, &w.Disliked, &w.Mood, &w.Created, &w.Updated)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan watched record: %w", err)
	}
	return &w, nil
}

func prefixedContentColumns(alias string) string {
	return alias + `.id, ` + alias + `.catalog_id, ` + alias + `.type, ` + alias + `.title,
		` + alias + `.release_year, ` + alias + `.poster, ` + alias + `.backdrop,
		` + alias + `.overview, ` + alias + `.rating, ` + alias + `.runtime,
		` + alias + `.genres, ` + alias + `.seasons, ` + alias + `.streaming_info,
		` + alias + `.streaming_validated, ` + alias + `.streaming_validated_at,
		` + alias + `.likes, ` + alias + `.dislikes, ` + alias + `.created_at`
}
