package services

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/upadhyai/backend/models"
	"github.com/upadhyai/backend/repository"
)

// AccessEndpoints exposes the resolved snapshot, the navigation menu derived
// from it, and the role-dispatched dashboard payload.
type AccessEndpoints struct {
	repo   *repository.GORMRepository
	access *RoleAccessService
}

func NewAccessEndpoints(repo *repository.GORMRepository, access *RoleAccessService) *AccessEndpoints {
	return &AccessEndpoints{
		repo:   repo,
		access: access,
	}
}

func (e *AccessEndpoints) RegisterRoutes(r chi.Router) {
	r.Get("/access", e.GetAccessHandler)
	r.Get("/navigation", e.GetNavigationHandler)
	r.Get("/dashboard", e.GetDashboardHandler)
}

func (e *AccessEndpoints) GetAccessHandler(w http.ResponseWriter, r *http.Request) {
	user := CurrentUser(r.Context())
	if user == nil {
		http.Error(w, "Not authenticated", http.StatusUnauthorized)
		return
	}

	snap := e.access.Resolve(r.Context(), user.ID)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"snapshot":      snap,
		"profile_state": snap.ProfileState.String(),
		"is_admin":      snap.IsAdmin(),
		"is_teacher":    snap.IsTeacher(),
		"is_student":    snap.IsStudent(),
	})
}

func (e *AccessEndpoints) GetNavigationHandler(w http.ResponseWriter, r *http.Request) {
	user := CurrentUser(r.Context())
	if user == nil {
		http.Error(w, "Not authenticated", http.StatusUnauthorized)
		return
	}

	snap := e.access.Resolve(r.Context(), user.ID)
	menu := BuildMenu(snap)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"items":        menu,
		"count":        len(menu),
		"route_access": RouteDecisions(snap),
	})
}

// GetDashboardHandler dispatches on the resolved role. The switch is
// exhaustive over the closed role set; unresolved or unknown roles get the
// student view with a logged warning.
func (e *AccessEndpoints) GetDashboardHandler(w http.ResponseWriter, r *http.Request) {
	user := CurrentUser(r.Context())
	if user == nil {
		http.Error(w, "Not authenticated", http.StatusUnauthorized)
		return
	}

	snap := e.access.Resolve(r.Context(), user.ID)

	name, ok := snap.RoleName()
	if !ok {
		slog.Warn("Dashboard requested with unresolved role, serving student view", "user_id", user.ID)
	}

	var payload map[string]interface{}
	switch name {
	case models.RoleAdmin:
		payload = e.adminDashboard(snap)
	case models.RoleTeacher:
		payload = e.teacherDashboard(snap)
	case models.RoleStudent:
		payload = e.studentDashboard(r, user.ID, snap)
	}
	payload["role"] = string(name)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(payload)
}

func (e *AccessEndpoints) adminDashboard(snap *Snapshot) map[string]interface{} {
	return map[string]interface{}{
		"profile_count":    len(snap.AllProfiles),
		"counts_by_role":   CountByRole(snap.AllProfiles),
		"session_count":    len(snap.AllSessions),
		"platform_average": PlatformAverage(snap.AllSessions),
		"agent_count":      len(snap.AccessibleAgents),
	}
}

func (e *AccessEndpoints) teacherDashboard(snap *Snapshot) map[string]interface{} {
	return map[string]interface{}{
		"profile_count":    len(snap.AllProfiles),
		"session_count":    len(snap.AllSessions),
		"platform_average": PlatformAverage(snap.AllSessions),
		"student_averages": ComputeUserAverages(snap.AllSessions),
		"agent_count":      len(snap.AccessibleAgents),
	}
}

func (e *AccessEndpoints) studentDashboard(r *http.Request, userID string, snap *Snapshot) map[string]interface{} {
	payload := map[string]interface{}{
		"profile":       snap.Profile,
		"profile_state": snap.ProfileState.String(),
		"agents":        snap.AccessibleAgents,
	}

	sessions, err := e.repo.GetTrainingSessions(r.Context(), userID, 10)
	if err != nil {
		slog.Error("Failed to load sessions for dashboard", "error", err, "user_id", userID)
		return payload
	}

	payload["recent_sessions"] = sessions
	if stats, ok := ComputeUserAverages(sessions)[userID]; ok {
		payload["score_stats"] = stats
	}
	return payload
}
