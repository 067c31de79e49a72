package database

import (
	"database/sql"
	"fmt"
	"time"

	"watchhub/internal/types"
)

const contentColumns = `id, catalog_id, type, title, release_year, poster, backdrop,
	overview, rating, runtime, genres, seasons, streaming_info,
	streaming_validated, streaming_validated_at, likes, dislikes, created_at`

func (s *Store) GetContent(id string) (*types.Content, error) {
	return s.scanContent(s.db.QueryRow(
		"SELECT "+contentColumns+" FROM content WHERE id = ?", id))
}

// FindContentByCatalog looks content up by its natural key. Content is
// shared and de-duplicated on (catalog id, type).
func (s *Store) FindContentByCatalog(catalogID, contentType string) (*types.Content, error) {
	return s.scanContent(s.db.QueryRow(
		"SELECT "+contentColumns+" FROM content WHERE catalog_id = ? AND type = ?",
		catalogID, contentType))
}

// CreateContent inserts a new content item with zeroed reaction counters.
// Callers de-duplicate with FindContentByCatalog first.
func (s *Store) CreateContent(c *types.Content) (*types.Content, error) {
	c.ID = newID()
	c.Likes = 0
	c.Dislikes = 0
	c.Created = time.Now().UTC()

	var validatedAt interface{}
	if c.StreamingUpdated != nil {
		validatedAt = *c.StreamingUpdated
	}

	_, err := s.db.Exec(`
		INSERT INTO content (id, catalog_id, type, title, release_year, poster, backdrop,
			overview, rating, runtime, genres, seasons, streaming_info,
			streaming_validated, streaming_validated_at, likes, dislikes, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 0, 0, ?)
	`, c.ID, c.CatalogID, c.Type, c.Title, c.ReleaseYear, c.Poster, c.Backdrop,
		c.Overview, c.Rating, c.Runtime, toJSON(c.Genres), toJSON(c.Seasons),
		toJSON(c.StreamingInfo), c.StreamingValidated, validatedAt, c.Created)
	if err != nil {
		return nil, fmt.Errorf("failed to create content: %w", err)
	}

	return c, nil
}

// UpdateAvailability replaces the streaming availability block and stamps
// it as validated.
func (s *Store) UpdateAvailability(id string, regions []types.Region) (*types.Content, error) {
	now := time.Now().UTC()
	result, err := s.db.Exec(`
		UPDATE content
		SET streaming_info = ?, streaming_validated = 1, streaming_validated_at = ?
		WHERE id = ?
	`, toJSON(regions), now, id)
	if err != nil {
		return nil, fmt.Errorf("failed to update availability: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return nil, ErrNotFound
	}

	return s.GetContent(id)
}

func (s *Store) scanContent(row *sql.Row) (*types.Content, error) {
	var c types.Content
	var genres, seasons, streamingInfo string
	err := row.Scan(&c.ID, &c.CatalogID, &c.Type, &c.Title, &c.ReleaseYear,
		&c.Poster, &c.Backdrop, &c.Overview, &c.Rating, &c.Runtime,
		&genres, &seasons, &streamingInfo,
		&c.StreamingValidated, &c.StreamingUpdated, &c.Likes, &c.Dislikes, &c.Created)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan content: %w", err)
	}
	c.Genres = []string{}
	fromJSON(genres, &c.Genres)
	fromJSON(seasons, &c.Seasons)
	c.StreamingInfo = []types.Region{}
	fromJSON(streamingInfo, &c.StreamingInfo)
	return &c, nil
}
