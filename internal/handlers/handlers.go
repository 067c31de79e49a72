package handlers

import (
	"errors"

	"go.uber.org/zap"

	"watchhub/internal/database"
	"watchhub/internal/realtime"
	"watchhub/internal/types"
)

var errInternal = errors.New("An error has occurred")

// Handler owns every realtime command. Each command resolves its own
// profile from the session's user id, mutates through the entity store,
// and fans updated state out to the affected parties.
type Handler struct {
	store    *database.Store
	notifier *realtime.Notifier
	log      *zap.Logger
}

func New(store *database.Store, notifier *realtime.Notifier, log *zap.Logger) *Handler {
	return &Handler{store: store, notifier: notifier, log: log}
}

// Register wires every command event onto the mux.
func Register(mux *realtime.Mux, store *database.Store, notifier *realtime.Notifier, log *zap.Logger) *Handler {
	h := New(store, notifier, log)

	mux.Handle("update profile", h.UpdateProfile)
	mux.Handle("search profiles", h.SearchProfiles)

	mux.Handle("add friend", h.AddFriend)
	mux.Handle("accept friend", h.AcceptFriend)
	mux.Handle("delete friend record", h.DeleteFriend)

	mux.Handle("get all watchlists", h.GetAllWatchlists)
	mux.Handle("create watchlist", h.CreateWatchlist)
	mux.Handle("add to watchlist", h.AddToWatchlist)
	mux.Handle("remove from watchlist", h.RemoveFromWatchlist)
	mux.Handle("reorder watchlist", h.ReorderWatchlist)
	mux.Handle("leave watchlist", h.LeaveWatchlist)
	mux.Handle("delete watchlist", h.DeleteWatchlist)

	mux.Handle("invite to watchlist", h.InviteToWatchlist)
	mux.Handle("get invitations", h.GetInvitations)
	mux.Handle("accept invitation", h.AcceptInvitation)
	mux.Handle("decline invitation", h.DeclineInvitation)

	mux.Handle("get content", h.GetContent)
	mux.Handle("create content", h.CreateContent)
	mux.Handle("update availability", h.UpdateAvailability)

	mux.Handle("like content", h.LikeContent)
	mux.Handle("dislike content", h.DislikeContent)
	mux.Handle("unlike content", h.UnlikeContent)
	mux.Handle("undislike content", h.UndislikeContent)
	mux.Handle("set mood", h.SetMood)
	mux.Handle("get watched", h.GetWatchedHistory)

	return h
}

// profile resolves the session user's profile, creating it lazily.
func (h *Handler) profile(sess *realtime.Session) (*types.Profile, error) {
	profile, err := h.store.GetOrCreateProfile(sess.UserID)
	if err != nil {
		h.log.Error("profile resolution failed", zap.String("user_id", sess.UserID), zap.Error(err))
		return nil, errInternal
	}
	return profile, nil
}

// profileState is the full self view: the profile plus its friend list.
// It is both the reply to profile/friend commands and the payload pushed
// to counterparties after friend-graph mutations.
func (h *Handler) profileState(profileID string) (map[string]interface{}, error) {
	profile, err := h.store.GetProfileByID(profileID)
	if err != nil {
		h.log.Error("profile load failed", zap.String("profile_id", profileID), zap.Error(err))
		return nil, errInternal
	}
	friends, err := h.store.ListFriends(profileID)
	if err != nil {
		h.log.Error("friend list load failed", zap.String("profile_id", profileID), zap.Error(err))
		return nil, errInternal
	}
	if friends == nil {
		friends = []types.FriendEntry{}
	}
	return map[string]interface{}{
		"profile": profile,
		"friends": friends,
	}, nil
}

// pushProfileState sends a counterparty their refreshed profile view if
// they are online. Failures are logged, never surfaced to the actor.
func (h *Handler) pushProfileState(profileID string) {
	userIDs, err := h.store.UserIDsForProfiles([]string{profileID})
	if err != nil || len(userIDs) == 0 {
		return
	}
	state, err := h.profileState(profileID)
	if err != nil {
		return
	}
	h.notifier.Notify(userIDs, realtime.PushUpdateProfile, state)
}

// pushWatchlist re-reads the watchlist after a mutation and fans it out
// to every current owner. The refresh happens after commit so a racing
// mutation is never clobbered by a stale in-memory view.
func (h *Handler) pushWatchlist(watchlistID string) {
	watchlist, err := h.store.GetWatchlist(watchlistID, true)
	if err != nil {
		h.log.Error("watchlist refresh failed", zap.String("watchlist_id", watchlistID), zap.Error(err))
		return
	}
	userIDs, err := h.store.UserIDsForProfiles(watchlist.Owners)
	if err != nil {
		h.log.Error("owner resolution failed", zap.String("watchlist_id", watchlistID), zap.Error(err))
		return
	}
	h.notifier.Notify(userIDs, realtime.PushUpdateWatchlist, watchlist)
}
