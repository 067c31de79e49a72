package handlers

import (
	"encoding/json"
	"errors"

	"go.uber.org/zap"

	"watchhub/internal/database"
	"watchhub/internal/realtime"
	"watchhub/internal/types"
)

func (h *Handler) AddFriend(sess *realtime.Session, data json.RawMessage) (interface{}, error) {
	var req types.FriendRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, errors.New("Invalid request body")
	}

	profile, err := h.profile(sess)
	if err != nil {
		return nil, err
	}

	recipient, err := h.store.GetProfileByID(req.Profile)
	if errors.Is(err, database.ErrNotFound) {
		return nil, errors.New("Profile not found")
	}
	if err != nil {
		h.log.Error("recipient lookup failed", zap.Error(err))
		return nil, errInternal
	}
	if recipient.ID == profile.ID {
		return nil, errors.New("Cannot add yourself as a friend")
	}

	key := database.PairKey(profile.ID, recipient.ID)
	h.store.Locks.Lock(key)
	defer h.store.Locks.Unlock(key)

	// Idempotent on the unordered pair: a second request (or a mutual
	// double-request) leaves the existing pair untouched.
	_, err = h.store.GetFriendBetween(profile.ID, recipient.ID)
	if err == nil {
		return h.profileState(profile.ID)
	}
	if !errors.Is(err, database.ErrNotFound) {
		h.log.Error("friend lookup failed", zap.Error(err))
		return nil, errInternal
	}

	if err := h.store.CreateFriendPair(profile.ID, recipient.ID); err != nil {
		h.log.Error("friend pair creation failed", zap.Error(err))
		return nil, errInternal
	}

	h.pushProfileState(recipient.ID)
	return h.profileState(profile.ID)
}

func (h *Handler) AcceptFriend(sess *realtime.Session, data json.RawMessage) (interface{}, error) {
	var req types.FriendRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, errors.New("Invalid request body")
	}

	profile, err := h.profile(sess)
	if err != nil {
		return nil, err
	}

	key := database.PairKey(profile.ID, req.Profile)
	h.store.Locks.Lock(key)
	defer h.store.Locks.Unlock(key)

	err = h.store.AcceptFriendPair(profile.ID, req.Profile)
	if errors.Is(err, database.ErrNotFound) {
		return nil, errors.New("Friend request not found")
	}
	if err != nil {
		h.log.Error("friend accept failed", zap.Error(err))
		return nil, errInternal
	}

	h.pushProfileState(req.Profile)
	return h.profileState(profile.ID)
}

func (h *Handler) DeleteFriend(sess *realtime.Session, data json.RawMessage) (interface{}, error) {
	var req types.FriendRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, errors.New("Invalid request body")
	}

	profile, err := h.profile(sess)
	if err != nil {
		return nil, err
	}

	key := database.PairKey(profile.ID, req.Profile)
	h.store.Locks.Lock(key)
	defer h.store.Locks.Unlock(key)

	err = h.store.DeleteFriendPair(profile.ID, req.Profile)
	if errors.Is(err, database.ErrNotFound) {
		return nil, errors.New("Friend record not found")
	}
	if err != nil {
		h.log.Error("friend delete failed", zap.Error(err))
		return nil, errInternal
	}

	h.pushProfileState(req.Profile)
	return h.profileState(profile.ID)
}
