package services

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/upadhyai/backend/models"
	"github.com/upadhyai/backend/repository"
)

type AdminEndpoints struct {
	repo   *repository.GORMRepository
	access *RoleAccessService
}

type UpdateRoleRequest struct {
	Role string `json:"role"`
}

func NewAdminEndpoints(repo *repository.GORMRepository, access *RoleAccessService) *AdminEndpoints {
	return &AdminEndpoints{
		repo:   repo,
		access: access,
	}
}

// RegisterRoutes mounts the admin surface. The overview is shared with
// teachers; role reassignment is admin-only.
func (e *AdminEndpoints) RegisterRoutes(r chi.Router) {
	r.Route("/admin", func(r chi.Router) {
		r.With(RequireRole(e.access, models.RoleAdmin, models.RoleTeacher)).
			Get("/overview", e.OverviewHandler)
		r.With(RequireRole(e.access, models.RoleAdmin)).
			Put("/profiles/{id}/role", e.UpdateProfileRoleHandler)
	})
}

func (e *AdminEndpoints) OverviewHandler(w http.ResponseWriter, r *http.Request) {
	user := CurrentUser(r.Context())
	snap := e.access.Resolve(r.Context(), user.ID)

	response := map[string]interface{}{
		"profiles":         snap.AllProfiles,
		"counts_by_role":   CountByRole(snap.AllProfiles),
		"session_count":    len(snap.AllSessions),
		"platform_average": PlatformAverage(snap.AllSessions),
		"student_averages": ComputeUserAverages(snap.AllSessions),
	}
	if snap.Err != "" {
		response["error"] = snap.Err
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)

	slog.Info("Admin overview retrieved", "user_id", user.ID, "profiles", len(snap.AllProfiles))
}

func (e *AdminEndpoints) UpdateProfileRoleHandler(w http.ResponseWriter, r *http.Request) {
	user := CurrentUser(r.Context())

	profileID := chi.URLParam(r, "id")
	if profileID == "" {
		http.Error(w, "Profile ID is required", http.StatusBadRequest)
		return
	}

	var req UpdateRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	roleName, ok := models.ParseRoleName(req.Role)
	if !ok {
		http.Error(w, "Unknown role", http.StatusBadRequest)
		return
	}

	role, err := e.repo.GetRoleByName(r.Context(), string(roleName))
	if err != nil || role == nil {
		slog.Error("Failed to resolve role for reassignment", "error", err, "role", roleName)
		http.Error(w, "Failed to update role", http.StatusInternalServerError)
		return
	}

	if err := e.repo.UpdateProfileRole(r.Context(), profileID, role.ID); err != nil {
		slog.Error("Failed to update profile role", "error", err, "profile_id", profileID, "role", roleName)
		http.Error(w, "Failed to update role", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message": "Role updated successfully",
		"role":    string(roleName),
	})

	slog.Info("Profile role updated", "profile_id", profileID, "role", roleName, "by", user.ID)
}
