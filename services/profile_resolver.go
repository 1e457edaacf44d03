package services

import (
	"context"
	"log/slog"

	"github.com/upadhyai/backend/models"
	"github.com/upadhyai/backend/repository"
)

// ProfileState classifies the outcome of a profile fetch. NotFound is the
// normal state for a freshly signed-up user and is recoverable; PolicyError
// means the store's access policies are misconfigured and needs an
// administrator, which must never be presented as a missing profile.
type ProfileState int

const (
	ProfilePending ProfileState = iota
	ProfileFound
	ProfileNotFound
	ProfilePolicyError
	ProfilePermissionDenied
	ProfileError
)

func (s ProfileState) String() string {
	switch s {
	case ProfilePending:
		return "pending"
	case ProfileFound:
		return "found"
	case ProfileNotFound:
		return "not_found"
	case ProfilePolicyError:
		return "policy_error"
	case ProfilePermissionDenied:
		return "permission_denied"
	case ProfileError:
		return "error"
	default:
		return "unknown"
	}
}

// User-facing messages per outcome. These are actionable text, not raw store
// errors; the policy message deliberately directs the user to an administrator.
const (
	msgProfileNotFound = "No profile found for your account. It may not be fully set up yet."
	msgProfilePolicy   = "Platform misconfiguration: there is a permissions issue with the role and profile policies. Please contact an administrator."
	msgProfileDenied   = "You do not have access to your profile. Please contact support."
	msgProfileGeneric  = "Failed to load your profile data. Please try again."
)

type ProfileResult struct {
	State   ProfileState
	Profile *models.Profile
	Role    *models.Role
	Err     string
}

// ProfileStore is the single read the resolver needs. (nil, nil) signals a
// missing row; any error is classified via repository.Classify.
type ProfileStore interface {
	GetProfileByUserID(ctx context.Context, userID string) (*models.Profile, error)
}

// ProfileResolver fetches the authenticated user's profile joined with its
// role and classifies the outcome. It has no side effects and may be
// re-invoked at any time; consumers tolerate last-write-wins on their own
// state.
type ProfileResolver struct {
	store ProfileStore
}

func NewProfileResolver(store ProfileStore) *ProfileResolver {
	return &ProfileResolver{store: store}
}

// Resolve fetches the profile for userID. An empty userID means no session;
// the resolver is inert and reports completion with no data.
func (r *ProfileResolver) Resolve(ctx context.Context, userID string) ProfileResult {
	if userID == "" {
		return ProfileResult{State: ProfileNotFound}
	}

	profile, err := r.store.GetProfileByUserID(ctx, userID)
	if err != nil {
		switch repository.Classify(err) {
		case repository.FaultPolicy:
			slog.Error("Profile fetch hit a policy misconfiguration", "error", err, "user_id", userID)
			return ProfileResult{State: ProfilePolicyError, Err: msgProfilePolicy}
		case repository.FaultPermission:
			slog.Error("Profile fetch denied", "error", err, "user_id", userID)
			return ProfileResult{State: ProfilePermissionDenied, Err: msgProfileDenied}
		default:
			slog.Error("Profile fetch failed", "error", err, "user_id", userID)
			return ProfileResult{State: ProfileError, Err: msgProfileGeneric}
		}
	}

	if profile == nil {
		return ProfileResult{State: ProfileNotFound, Err: msgProfileNotFound}
	}

	return ProfileResult{State: ProfileFound, Profile: profile, Role: profile.Role}
}
