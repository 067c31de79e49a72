package handlers

import (
	"encoding/json"
	"errors"

	"go.uber.org/zap"

	"watchhub/internal/database"
	"watchhub/internal/realtime"
	"watchhub/internal/types"
)

func (h *Handler) InviteToWatchlist(sess *realtime.Session, data json.RawMessage) (interface{}, error) {
	var req types.InviteRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, errors.New("Invalid request body")
	}
	if len(req.Recipients) == 0 {
		return nil, errors.New("At least one recipient is required")
	}

	profile, err := h.profile(sess)
	if err != nil {
		return nil, err
	}

	watchlist, err := h.store.GetWatchlist(req.Watchlist, false)
	if errors.Is(err, database.ErrNotFound) {
		return nil, errors.New("Watchlist not found")
	}
	if err != nil {
		h.log.Error("watchlist load failed", zap.Error(err))
		return nil, errInternal
	}
	if err := h.requireOwner(watchlist.ID, profile.ID); err != nil {
		return nil, err
	}

	invited := []string{}
	for _, recipientID := range req.Recipients {
		recipient, err := h.store.GetProfileByID(recipientID)
		if errors.Is(err, database.ErrNotFound) {
			return nil, errors.New("Recipient not found")
		}
		if err != nil {
			h.log.Error("recipient lookup failed", zap.Error(err))
			return nil, errInternal
		}

		// Skip silently: already a co-owner, or already invited.
		owner, err := h.store.IsWatchlistOwner(watchlist.ID, recipient.ID)
		if err != nil {
			h.log.Error("ownership check failed", zap.Error(err))
			return nil, errInternal
		}
		if owner {
			continue
		}
		exists, err := h.store.InvitationExists(watchlist.ID, recipient.ID)
		if err != nil {
			h.log.Error("invitation check failed", zap.Error(err))
			return nil, errInternal
		}
		if exists {
			continue
		}

		invitation, err := h.store.CreateInvitation(watchlist.ID, profile.ID, recipient.ID)
		if err != nil {
			h.log.Error("invitation creation failed", zap.Error(err))
			return nil, errInternal
		}
		invited = append(invited, recipient.ID)

		h.pushInvitation(recipient, profile, watchlist, invitation)
	}

	return map[string]interface{}{"invited": invited}, nil
}

func (h *Handler) pushInvitation(recipient *types.Profile, requester *types.Profile, watchlist *types.Watchlist, invitation *types.Invitation) {
	view := types.InvitationView{
		ID:        invitation.ID,
		Watchlist: *watchlist,
		Requester: types.ProfileView{
			ID:       requester.ID,
			UserID:   requester.UserID,
			Username: requester.Username,
			Country:  requester.Country,
		},
	}
	h.notifier.Notify([]string{recipient.UserID}, realtime.PushNewInvitation, view)
}

func (h *Handler) GetInvitations(sess *realtime.Session, data json.RawMessage) (interface{}, error) {
	profile, err := h.profile(sess)
	if err != nil {
		return nil, err
	}

	invitations, err := h.store.ListInvitationsForRecipient(profile.ID)
	if err != nil {
		h.log.Error("invitation listing failed", zap.Error(err))
		return nil, errInternal
	}
	return invitations, nil
}

func (h *Handler) AcceptInvitation(sess *realtime.Session, data json.RawMessage) (interface{}, error) {
	var req types.InvitationRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, errors.New("Invalid request body")
	}

	profile, err := h.profile(sess)
	if err != nil {
		return nil, err
	}

	invitation, err := h.store.GetInvitation(req.Invitation)
	if errors.Is(err, database.ErrNotFound) {
		return nil, errors.New("Invitation not found")
	}
	if err != nil {
		h.log.Error("invitation load failed", zap.Error(err))
		return nil, errInternal
	}
	if invitation.RecipientID != profile.ID {
		return nil, errors.New("Invalid invitation")
	}

	key := database.WatchlistKey(invitation.WatchlistID)
	h.store.Locks.Lock(key)
	err = h.store.AddWatchlistOwner(invitation.WatchlistID, profile.ID, invitation.ID)
	h.store.Locks.Unlock(key)

	if err != nil {
		h.log.Error("invitation accept failed", zap.Error(err))
		return nil, errInternal
	}

	h.pushWatchlist(invitation.WatchlistID)
	return map[string]interface{}{"watchlist": invitation.WatchlistID}, nil
}

func (h *Handler) DeclineInvitation(sess *realtime.Session, data json.RawMessage) (interface{}, error) {
	var req types.InvitationRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, errors.New("Invalid request body")
	}

	profile, err := h.profile(sess)
	if err != nil {
		return nil, err
	}

	invitation, err := h.store.GetInvitation(req.Invitation)
	if errors.Is(err, database.ErrNotFound) {
		return nil, errors.New("Invitation not found")
	}
	if err != nil {
		h.log.Error("invitation load failed", zap.Error(err))
		return nil, errInternal
	}
	if invitation.RecipientID != profile.ID {
		return nil, errors.New("Invalid invitation")
	}

	if err := h.store.DeleteInvitation(invitation.ID); err != nil && !errors.Is(err, database.ErrNotFound) {
		h.log.Error("invitation decline failed", zap.Error(err))
		return nil, errInternal
	}

	return map[string]interface{}{"invitation": invitation.ID}, nil
}
