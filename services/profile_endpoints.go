package services

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/upadhyai/backend/models"
	"github.com/upadhyai/backend/repository"
)

type ProfileEndpoints struct {
	repo     *repository.GORMRepository
	resolver *ProfileResolver
	access   *RoleAccessService
}

func NewProfileEndpoints(repo *repository.GORMRepository, resolver *ProfileResolver, access *RoleAccessService) *ProfileEndpoints {
	return &ProfileEndpoints{
		repo:     repo,
		resolver: resolver,
		access:   access,
	}
}

func (e *ProfileEndpoints) RegisterRoutes(r chi.Router) {
	r.Get("/profile", e.GetProfileHandler)
	r.Put("/profile", e.UpdateProfileHandler)
}

// GetProfileHandler surfaces the resolver outcome directly: each state maps
// to its own status so the client can distinguish a missing profile from a
// misconfigured platform.
func (e *ProfileEndpoints) GetProfileHandler(w http.ResponseWriter, r *http.Request) {
	user := CurrentUser(r.Context())
	if user == nil {
		http.Error(w, "Not authenticated", http.StatusUnauthorized)
		return
	}

	result := e.resolver.Resolve(r.Context(), user.ID)

	w.Header().Set("Content-Type", "application/json")
	switch result.State {
	case ProfileFound:
		json.NewEncoder(w).Encode(map[string]interface{}{
			"profile": result.Profile,
			"role":    result.Role,
		})
	case ProfileNotFound:
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]interface{}{"error": result.Err})
	case ProfilePolicyError:
		w.WriteHeader(http.StatusServiceUnavailable)
		json.NewEncoder(w).Encode(map[string]interface{}{"error": result.Err})
	case ProfilePermissionDenied:
		w.WriteHeader(http.StatusForbidden)
		json.NewEncoder(w).Encode(map[string]interface{}{"error": result.Err})
	default:
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]interface{}{"error": result.Err})
	}
}

// UpdateProfileHandler upserts the caller's own profile. The role binding is
// not client-writable here: an existing profile keeps its role, a new profile
// gets the student role. Role changes go through the admin endpoint.
func (e *ProfileEndpoints) UpdateProfileHandler(w http.ResponseWriter, r *http.Request) {
	user := CurrentUser(r.Context())
	if user == nil {
		http.Error(w, "Not authenticated", http.StatusUnauthorized)
		return
	}

	var incoming models.Profile
	if err := json.NewDecoder(r.Body).Decode(&incoming); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	incoming.UserID = user.ID
	if incoming.Email == "" {
		incoming.Email = user.Email
	}

	existing, err := e.repo.GetProfileByUserID(r.Context(), user.ID)
	if err != nil {
		slog.Error("Failed to load profile for update", "error", err, "user_id", user.ID)
		http.Error(w, "Failed to update profile", http.StatusInternalServerError)
		return
	}

	if existing != nil {
		incoming.ID = existing.ID
		incoming.RoleID = existing.RoleID
	} else {
		role, err := e.repo.GetRoleByName(r.Context(), string(models.RoleStudent))
		if err != nil || role == nil {
			slog.Error("Failed to resolve default role", "error", err, "user_id", user.ID)
			http.Error(w, "Failed to update profile", http.StatusInternalServerError)
			return
		}
		incoming.RoleID = role.ID
	}

	if err := e.repo.UpsertProfile(r.Context(), &incoming); err != nil {
		slog.Error("Failed to upsert profile", "error", err, "user_id", user.ID)
		http.Error(w, "Failed to update profile", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"profile": incoming,
		"message": "Profile updated successfully",
	})

	slog.Info("Profile updated", "user_id", user.ID, "profile_id", incoming.ID)
}
