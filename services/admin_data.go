package services

import (
	"context"
	"log/slog"
	"math"

	"github.com/upadhyai/backend/models"
)

const msgAdminDataFailed = "Failed to load platform data. Aggregate views may be incomplete."

// AdminDataResolver performs the privilege-gated bulk reads behind the admin
// and teacher dashboards. The gating decision lives here, not in the store:
// only admin and teacher trigger the queries, everyone else gets empty
// collections without a request being issued.
type AdminDataResolver struct {
	store AdminStore
}

type AdminStore interface {
	GetAllProfiles(ctx context.Context) ([]models.Profile, error)
	GetAllTrainingSessions(ctx context.Context) ([]models.TrainingSession, error)
}

type AdminData struct {
	Profiles []models.Profile
	Sessions []models.TrainingSession
	Err      string
}

func NewAdminDataResolver(store AdminStore) *AdminDataResolver {
	return &AdminDataResolver{store: store}
}

// Resolve fetches all profiles and all training sessions, newest first, when
// roleName carries the privilege; otherwise it returns empty collections.
// A partial failure (one query failing) still returns the collection that
// succeeded.
func (r *AdminDataResolver) Resolve(ctx context.Context, roleName models.RoleName) AdminData {
	if roleName != models.RoleAdmin && roleName != models.RoleTeacher {
		return AdminData{Profiles: []models.Profile{}, Sessions: []models.TrainingSession{}}
	}

	data := AdminData{Profiles: []models.Profile{}, Sessions: []models.TrainingSession{}}

	profiles, err := r.store.GetAllProfiles(ctx)
	if err != nil {
		slog.Error("Failed to fetch all profiles", "error", err)
		data.Err = msgAdminDataFailed
	} else {
		data.Profiles = profiles
	}

	sessions, err := r.store.GetAllTrainingSessions(ctx)
	if err != nil {
		slog.Error("Failed to fetch all training sessions", "error", err)
		data.Err = msgAdminDataFailed
	} else {
		data.Sessions = sessions
	}

	return data
}

// UserScoreStats summarizes one user's training sessions. SessionCount and
// ScoredCount let a consumer tell "no sessions" and "no scored sessions" apart
// from "scores averaging zero"; AverageScore alone cannot.
type UserScoreStats struct {
	SessionCount int `json:"session_count"`
	ScoredCount  int `json:"scored_count"`
	AverageScore int `json:"average_score"`
}

// ComputeUserAverages buckets sessions by user and averages only the sessions
// that carry a score. Users with zero scored sessions report an average of 0.
func ComputeUserAverages(sessions []models.TrainingSession) map[string]UserScoreStats {
	totals := make(map[string]int)
	stats := make(map[string]UserScoreStats)

	for _, session := range sessions {
		s := stats[session.UserID]
		s.SessionCount++
		if session.FluencyScore != nil {
			s.ScoredCount++
			totals[session.UserID] += *session.FluencyScore
		}
		stats[session.UserID] = s
	}

	for userID, s := range stats {
		if s.ScoredCount > 0 {
			s.AverageScore = int(math.Round(float64(totals[userID]) / float64(s.ScoredCount)))
			stats[userID] = s
		}
	}

	return stats
}

// PlatformAverage averages the scored sessions across all users; 0 when none
// are scored.
func PlatformAverage(sessions []models.TrainingSession) int {
	total, scored := 0, 0
	for _, session := range sessions {
		if session.FluencyScore != nil {
			total += *session.FluencyScore
			scored++
		}
	}
	if scored == 0 {
		return 0
	}
	return int(math.Round(float64(total) / float64(scored)))
}

// CountByRole tallies profiles per resolved role name. Profiles whose role is
// missing or unrecognized are counted under the student fallback, matching the
// dashboard dispatch rule.
func CountByRole(profiles []models.Profile) map[models.RoleName]int {
	counts := make(map[models.RoleName]int)
	for _, profile := range profiles {
		name := models.RoleStudent
		if profile.Role != nil {
			parsed, ok := models.ParseRoleName(profile.Role.Name)
			if !ok {
				slog.Warn("Unknown role name in profile, counting as student", "role", profile.Role.Name, "profile_id", profile.ID)
			}
			name = parsed
		}
		counts[name]++
	}
	return counts
}
