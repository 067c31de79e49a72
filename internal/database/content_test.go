package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"watchhub/internal/types"
)

func TestCreateAndGetContent(t *testing.T) {
	s := newTestStore(t)
	runtime := 142

	created, err := s.CreateContent(&types.Content{
		CatalogID: "tt0111161",
		Type:      types.ContentTypeMovie,
		Title:     "The Shawshank Redemption",
		Runtime:   &runtime,
		Genres:    []string{"drama"},
		Likes:     99, // counters are zeroed on create regardless of input
	})
	require.NoError(t, err)
	assert.Equal(t, 0, created.Likes)
	assert.Equal(t, 0, created.Dislikes)

	got, err := s.GetContent(created.ID)
	require.NoError(t, err)
	assert.Equal(t, "The Shawshank Redemption", got.Title)
	require.NotNil(t, got.Runtime)
	assert.Equal(t, 142, *got.Runtime)
	assert.Equal(t, []string{"drama"}, got.Genres)
	assert.Nil(t, got.StreamingUpdated)
}

func TestGetContentNotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.GetContent("missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFindContentByCatalog(t *testing.T) {
	s := newTestStore(t)

	movie, err := s.CreateContent(&types.Content{
		CatalogID: "42", Type: types.ContentTypeMovie, Title: "Movie",
	})
	require.NoError(t, err)
	series, err := s.CreateContent(&types.Content{
		CatalogID: "42", Type: types.ContentTypeSeries, Title: "Series",
	})
	require.NoError(t, err)

	// The same catalog id can exist once per type.
	got, err := s.FindContentByCatalog("42", types.ContentTypeMovie)
	require.NoError(t, err)
	assert.Equal(t, movie.ID, got.ID)

	got, err = s.FindContentByCatalog("42", types.ContentTypeSeries)
	require.NoError(t, err)
	assert.Equal(t, series.ID, got.ID)

	_, err = s.FindContentByCatalog("43", types.ContentTypeMovie)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateAvailability(t *testing.T) {
	s := newTestStore(t)
	movie := createTestContent(t, s, "m1")
	assert.False(t, movie.StreamingValidated)

	regions := []types.Region{{
		Country: "no",
		Availability: []types.Availability{{
			Link: "https://example.com", Service: "netflix", StreamingType: "subscription",
		}},
	}}

	updated, err := s.UpdateAvailability(movie.ID, regions)
	require.NoError(t, err)
	assert.True(t, updated.StreamingValidated)
	require.NotNil(t, updated.StreamingUpdated)
	require.Len(t, updated.StreamingInfo, 1)
	assert.Equal(t, "no", updated.StreamingInfo[0].Country)

	_, err = s.UpdateAvailability("missing", regions)
	assert.ErrorIs(t, err, ErrNotFound)
}
