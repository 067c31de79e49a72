package handlers

import (
	"encoding/json"
	"errors"
	"sort"

	"go.uber.org/zap"

	"watchhub/internal/database"
	"watchhub/internal/realtime"
	"watchhub/internal/types"
	"watchhub/internal/utils"
)

// searchCutoff is the edit-distance ratio above which a username no
// longer counts as a match.
const searchCutoff = 0.5

func (h *Handler) UpdateProfile(sess *realtime.Session, data json.RawMessage) (interface{}, error) {
	var req types.UpdateProfileRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, errors.New("Invalid request body")
	}

	profile, err := h.profile(sess)
	if err != nil {
		return nil, err
	}

	updated, err := h.store.UpdateProfile(profile.ID, req)
	if errors.Is(err, database.ErrConflict) {
		return nil, errors.New("That username is already taken")
	}
	if err != nil {
		h.log.Error("profile update failed", zap.String("profile_id", profile.ID), zap.Error(err))
		return nil, errInternal
	}

	return updated, nil
}

func (h *Handler) SearchProfiles(sess *realtime.Session, data json.RawMessage) (interface{}, error) {
	var req types.SearchProfilesRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, errors.New("Invalid request body")
	}
	if req.Username == "" {
		return nil, errors.New("Username is required")
	}

	profile, err := h.profile(sess)
	if err != nil {
		return nil, err
	}

	candidates, err := h.store.ListNamedProfiles()
	if err != nil {
		h.log.Error("profile search failed", zap.Error(err))
		return nil, errInternal
	}

	type scored struct {
		profile types.ProfileView
		ratio   float64
	}
	matches := []scored{}
	for _, candidate := range candidates {
		if candidate.ID == profile.ID || candidate.Username == nil {
			continue
		}
		ratio := utils.EditDistanceRatio(req.Username, *candidate.Username)
		if ratio < searchCutoff {
			matches = append(matches, scored{profile: candidate, ratio: ratio})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].ratio < matches[j].ratio
	})

	results := make([]types.ProfileView, len(matches))
	for i, m := range matches {
		results[i] = m.profile
	}
	return results, nil
}
