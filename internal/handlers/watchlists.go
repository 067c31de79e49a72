package handlers

import (
	"encoding/json"
	"errors"

	"go.uber.org/zap"

	"watchhub/internal/database"
	"watchhub/internal/realtime"
	"watchhub/internal/types"
)

// requireOwner loads the watchlist and checks the profile is in its owner
// set. Mutating a list you do not co-own is an authorization failure.
func (h *Handler) requireOwner(watchlistID, profileID string) error {
	owner, err := h.store.IsWatchlistOwner(watchlistID, profileID)
	if err != nil {
		h.log.Error("ownership check failed", zap.String("watchlist_id", watchlistID), zap.Error(err))
		return errInternal
	}
	if !owner {
		return errors.New("Not an owner of this watchlist")
	}
	return nil
}

func (h *Handler) GetAllWatchlists(sess *realtime.Session, data json.RawMessage) (interface{}, error) {
	profile, err := h.profile(sess)
	if err != nil {
		return nil, err
	}

	watchlists, err := h.store.ListWatchlistsByOwner(profile.ID, true)
	if err != nil {
		h.log.Error("watchlist listing failed", zap.Error(err))
		return nil, errInternal
	}
	return watchlists, nil
}

func (h *Handler) CreateWatchlist(sess *realtime.Session, data json.RawMessage) (interface{}, error) {
	var req types.CreateWatchlistRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, errors.New("Invalid request body")
	}
	if req.Name == "" {
		return nil, errors.New("Watchlist name is required")
	}

	profile, err := h.profile(sess)
	if err != nil {
		return nil, err
	}

	taken, err := h.store.OwnerHasWatchlistNamed(profile.ID, req.Name)
	if err != nil {
		h.log.Error("watchlist name check failed", zap.Error(err))
		return nil, errInternal
	}
	if taken {
		return nil, errors.New("A watchlist with that name already exists")
	}

	if req.Content != "" {
		if _, err := h.store.GetContent(req.Content); err != nil {
			if errors.Is(err, database.ErrNotFound) {
				return nil, errors.New("Content not found")
			}
			h.log.Error("content lookup failed", zap.Error(err))
			return nil, errInternal
		}
	}

	if _, err := h.store.CreateWatchlist(profile.ID, req.Name, req.Content); err != nil {
		h.log.Error("watchlist creation failed", zap.Error(err))
		return nil, errInternal
	}

	// Reply with the full refreshed set the client renders from.
	watchlists, err := h.store.ListWatchlistsByOwner(profile.ID, true)
	if err != nil {
		h.log.Error("watchlist listing failed", zap.Error(err))
		return nil, errInternal
	}
	return watchlists, nil
}

func (h *Handler) AddToWatchlist(sess *realtime.Session, data json.RawMessage) (interface{}, error) {
	var req types.WatchlistContentRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, errors.New("Invalid request body")
	}

	profile, err := h.profile(sess)
	if err != nil {
		return nil, err
	}
	if err := h.requireOwner(req.Watchlist, profile.ID); err != nil {
		return nil, err
	}

	if _, err := h.store.GetContent(req.Content); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, errors.New("Content not found")
		}
		h.log.Error("content lookup failed", zap.Error(err))
		return nil, errInternal
	}

	key := database.WatchlistKey(req.Watchlist)
	h.store.Locks.Lock(key)
	err = h.store.AddWatchlistEntry(req.Watchlist, req.Content)
	h.store.Locks.Unlock(key)

	if errors.Is(err, database.ErrConflict) {
		return nil, errors.New("Content is already in this watchlist")
	}
	if err != nil {
		h.log.Error("watchlist add failed", zap.Error(err))
		return nil, errInternal
	}

	h.pushWatchlist(req.Watchlist)
	return map[string]interface{}{"watchlist": req.Watchlist}, nil
}

func (h *Handler) RemoveFromWatchlist(sess *realtime.Session, data json.RawMessage) (interface{}, error) {
	var req types.WatchlistContentRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, errors.New("Invalid request body")
	}

	profile, err := h.profile(sess)
	if err != nil {
		return nil, err
	}
	if err := h.requireOwner(req.Watchlist, profile.ID); err != nil {
		return nil, err
	}

	key := database.WatchlistKey(req.Watchlist)
	h.store.Locks.Lock(key)
	err = h.store.RemoveWatchlistEntry(req.Watchlist, req.Content)
	h.store.Locks.Unlock(key)

	if errors.Is(err, database.ErrNotFound) {
		return nil, errors.New("Content is not in this watchlist")
	}
	if err != nil {
		h.log.Error("watchlist remove failed", zap.Error(err))
		return nil, errInternal
	}

	h.pushWatchlist(req.Watchlist)
	return map[string]interface{}{"watchlist": req.Watchlist}, nil
}

func (h *Handler) ReorderWatchlist(sess *realtime.Session, data json.RawMessage) (interface{}, error) {
	var req types.ReorderWatchlistRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, errors.New("Invalid request body")
	}

	profile, err := h.profile(sess)
	if err != nil {
		return nil, err
	}
	if err := h.requireOwner(req.Watchlist, profile.ID); err != nil {
		return nil, err
	}

	key := database.WatchlistKey(req.Watchlist)
	h.store.Locks.Lock(key)
	defer h.store.Locks.Unlock(key)

	watchlist, err := h.store.GetWatchlist(req.Watchlist, false)
	if err != nil {
		h.log.Error("watchlist load failed", zap.Error(err))
		return nil, errInternal
	}

	// The mapping must cover exactly the current entries with a
	// contiguous 1..n permutation, otherwise it would silently corrupt
	// the dense ordering.
	if err := validateReordering(watchlist.List, req.Content); err != nil {
		return nil, err
	}

	if err := h.store.ReorderWatchlistEntries(req.Watchlist, req.Content); err != nil {
		h.log.Error("watchlist reorder failed", zap.Error(err))
		return nil, errInternal
	}

	h.pushWatchlist(req.Watchlist)
	return map[string]interface{}{"watchlist": req.Watchlist}, nil
}

func validateReordering(entries []types.WatchlistEntry, positions map[string]int) error {
	if len(positions) != len(entries) {
		return errors.New("Reordering must cover every entry exactly once")
	}

	seen := make(map[int]bool, len(positions))
	for _, entry := range entries {
		position, ok := positions[entry.ContentID]
		if !ok {
			return errors.New("Reordering must cover every entry exactly once")
		}
		if position < 1 || position > len(entries) || seen[position] {
			return errors.New("Reordering must be a permutation of the current positions")
		}
		seen[position] = true
	}
	return nil
}

func (h *Handler) LeaveWatchlist(sess *realtime.Session, data json.RawMessage) (interface{}, error) {
	var req types.WatchlistRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, errors.New("Invalid request body")
	}

	profile, err := h.profile(sess)
	if err != nil {
		return nil, err
	}

	key := database.WatchlistKey(req.Watchlist)
	h.store.Locks.Lock(key)
	deleted, err := h.store.RemoveWatchlistOwner(req.Watchlist, profile.ID)
	h.store.Locks.Unlock(key)

	if errors.Is(err, database.ErrNotFound) {
		return nil, errors.New("Not an owner of this watchlist")
	}
	if err != nil {
		h.log.Error("watchlist leave failed", zap.Error(err))
		return nil, errInternal
	}

	if !deleted {
		h.pushWatchlist(req.Watchlist)
	}
	return map[string]interface{}{"watchlist": req.Watchlist, "deleted": deleted}, nil
}

func (h *Handler) DeleteWatchlist(sess *realtime.Session, data json.RawMessage) (interface{}, error) {
	var req types.WatchlistRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, errors.New("Invalid request body")
	}

	profile, err := h.profile(sess)
	if err != nil {
		return nil, err
	}
	if err := h.requireOwner(req.Watchlist, profile.ID); err != nil {
		return nil, err
	}

	// Resolve the notification targets before the rows disappear.
	owners, err := h.store.GetWatchlistOwners(req.Watchlist)
	if err != nil {
		h.log.Error("owner resolution failed", zap.Error(err))
		return nil, errInternal
	}
	userIDs, err := h.store.UserIDsForProfiles(owners)
	if err != nil {
		h.log.Error("owner resolution failed", zap.Error(err))
		return nil, errInternal
	}

	key := database.WatchlistKey(req.Watchlist)
	h.store.Locks.Lock(key)
	err = h.store.DeleteWatchlist(req.Watchlist)
	h.store.Locks.Unlock(key)

	if err != nil {
		h.log.Error("watchlist delete failed", zap.Error(err))
		return nil, errInternal
	}

	h.notifier.NotifyExcept(userIDs, sess.UserID, realtime.PushUpdateWatchlist,
		map[string]interface{}{"watchlist": req.Watchlist, "deleted": true})
	return map[string]interface{}{"watchlist": req.Watchlist, "deleted": true}, nil
}
