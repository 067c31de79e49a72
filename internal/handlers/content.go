package handlers

import (
	"encoding/json"
	"errors"

	"go.uber.org/zap"

	"watchhub/internal/database"
	"watchhub/internal/realtime"
	"watchhub/internal/types"
)

func (h *Handler) GetContent(sess *realtime.Session, data json.RawMessage) (interface{}, error) {
	var req types.ContentRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, errors.New("Invalid request body")
	}

	content, err := h.store.GetContent(req.ID)
	if errors.Is(err, database.ErrNotFound) {
		return nil, errors.New("Content not found")
	}
	if err != nil {
		h.log.Error("content load failed", zap.Error(err))
		return nil, errInternal
	}
	return content, nil
}

// CreateContent de-duplicates on the external catalog key: creating
// content that already exists returns the existing record's id.
func (h *Handler) CreateContent(sess *realtime.Session, data json.RawMessage) (interface{}, error) {
	var req types.Content
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, errors.New("Invalid request body")
	}
	if req.CatalogID == "" || req.Title == "" {
		return nil, errors.New("Catalog id and title are required")
	}
	if req.Type != types.ContentTypeMovie && req.Type != types.ContentTypeSeries {
		return nil, errors.New("Type must be movie or series")
	}

	existing, err := h.store.FindContentByCatalog(req.CatalogID, req.Type)
	if err == nil {
		return map[string]interface{}{"id": existing.ID}, nil
	}
	if !errors.Is(err, database.ErrNotFound) {
		h.log.Error("content lookup failed", zap.Error(err))
		return nil, errInternal
	}

	created, err := h.store.CreateContent(&req)
	if err != nil {
		h.log.Error("content creation failed", zap.Error(err))
		return nil, errInternal
	}
	return map[string]interface{}{"id": created.ID}, nil
}

func (h *Handler) UpdateAvailability(sess *realtime.Session, data json.RawMessage) (interface{}, error) {
	var req types.UpdateAvailabilityRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, errors.New("Invalid request body")
	}

	content, err := h.store.UpdateAvailability(req.ID, req.StreamingInfo)
	if errors.Is(err, database.ErrNotFound) {
		return nil, errors.New("Content not found")
	}
	if err != nil {
		h.log.Error("availability update failed", zap.Error(err))
		return nil, errInternal
	}
	return content, nil
}
