package handlers

import (
	"encoding/json"
	"errors"

	"go.uber.org/zap"

	"watchhub/internal/database"
	"watchhub/internal/realtime"
	"watchhub/internal/types"
)

func (h *Handler) LikeContent(sess *realtime.Session, data json.RawMessage) (interface{}, error) {
	return h.react(sess, data, database.ReactionLike)
}

func (h *Handler) DislikeContent(sess *realtime.Session, data json.RawMessage) (interface{}, error) {
	return h.react(sess, data, database.ReactionDislike)
}

func (h *Handler) UnlikeContent(sess *realtime.Session, data json.RawMessage) (interface{}, error) {
	return h.react(sess, data, database.ReactionUnlike)
}

func (h *Handler) UndislikeContent(sess *realtime.Session, data json.RawMessage) (interface{}, error) {
	return h.react(sess, data, database.ReactionUndislike)
}

// react applies one like/dislike transition. The entity lock is keyed on
// the content id because the reaction adjusts the shared content
// counters, not just the caller's watched record.
func (h *Handler) react(sess *realtime.Session, data json.RawMessage, reaction string) (interface{}, error) {
	var req types.ReactionRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, errors.New("Invalid request body")
	}

	profile, err := h.profile(sess)
	if err != nil {
		return nil, err
	}

	key := database.ContentKey(req.Content)
	h.store.Locks.Lock(key)
	watched, err := h.store.ApplyReaction(profile.ID, req.Content, reaction)
	h.store.Locks.Unlock(key)

	if errors.Is(err, database.ErrNotFound) {
		return nil, errors.New("Content not found")
	}
	if err != nil {
		h.log.Error("reaction failed", zap.String("reaction", reaction), zap.Error(err))
		return nil, errInternal
	}

	content, err := h.store.GetContent(req.Content)
	if err != nil {
		h.log.Error("content refresh failed", zap.Error(err))
		return nil, errInternal
	}

	return map[string]interface{}{
		"content": content,
		"watched": watched,
		"profile": profile,
	}, nil
}

func (h *Handler) SetMood(sess *realtime.Session, data json.RawMessage) (interface{}, error) {
	var req types.MoodRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, errors.New("Invalid request body")
	}

	profile, err := h.profile(sess)
	if err != nil {
		return nil, err
	}

	key := database.ContentKey(req.Content)
	h.store.Locks.Lock(key)
	watched, err := h.store.SetMood(profile.ID, req.Content, req.Mood)
	h.store.Locks.Unlock(key)

	if errors.Is(err, database.ErrNotFound) {
		return nil, errors.New("Content not found")
	}
	if err != nil {
		h.log.Error("mood update failed", zap.Error(err))
		return nil, errInternal
	}
	return watched, nil
}

func (h *Handler) GetWatchedHistory(sess *realtime.Session, data json.RawMessage) (interface{}, error) {
	profile, err := h.profile(sess)
	if err != nil {
		return nil, err
	}

	entries, err := h.store.ListWatched(profile.ID)
	if err != nil {
		h.log.Error("watched listing failed", zap.Error(err))
		return nil, errInternal
	}
	if entries == nil {
		entries = []types.WatchedEntry{}
	}
	return entries, nil
}
