package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/upadhyai/backend/repository"
)

const maxResumeSize = 10 << 20 // 10MB

// ObjectStore is the slice of the storage client the resume upload needs.
type ObjectStore interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
}

type ResumeEndpoints struct {
	repo  *repository.GORMRepository
	store ObjectStore
}

func NewResumeEndpoints(repo *repository.GORMRepository, store ObjectStore) *ResumeEndpoints {
	return &ResumeEndpoints{
		repo:  repo,
		store: store,
	}
}

func (e *ResumeEndpoints) RegisterRoutes(r chi.Router) {
	r.Post("/resume", e.UploadResumeHandler)
}

var allowedResumeExtensions = map[string]bool{
	".pdf":  true,
	".doc":  true,
	".docx": true,
}

// UploadResumeHandler stores the uploaded file under the caller's own prefix
// and saves a presigned URL on their profile. Keys are namespaced per user so
// one user can never overwrite another's resume.
func (e *ResumeEndpoints) UploadResumeHandler(w http.ResponseWriter, r *http.Request) {
	user := CurrentUser(r.Context())
	if user == nil {
		http.Error(w, "Not authenticated", http.StatusUnauthorized)
		return
	}

	if e.store == nil {
		http.Error(w, "Resume storage is not configured", http.StatusServiceUnavailable)
		return
	}

	if err := r.ParseMultipartForm(maxResumeSize); err != nil {
		http.Error(w, "File too large or invalid form", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("resume")
	if err != nil {
		http.Error(w, "Resume file is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !allowedResumeExtensions[ext] {
		http.Error(w, "Unsupported file type", http.StatusBadRequest)
		return
	}

	key := fmt.Sprintf("resumes/%s/%s%s", user.ID, uuid.New().String(), ext)
	contentType := header.Header.Get("Content-Type")

	if err := e.store.Put(r.Context(), key, file, header.Size, contentType); err != nil {
		slog.Error("Failed to upload resume", "error", err, "user_id", user.ID)
		http.Error(w, "Failed to upload resume", http.StatusInternalServerError)
		return
	}

	url, err := e.store.PresignGet(r.Context(), key, 7*24*time.Hour)
	if err != nil {
		slog.Error("Failed to presign resume URL", "error", err, "user_id", user.ID, "key", key)
		http.Error(w, "Failed to upload resume", http.StatusInternalServerError)
		return
	}

	if err := e.repo.UpdateProfileResume(r.Context(), user.ID, url); err != nil {
		slog.Error("Failed to save resume URL", "error", err, "user_id", user.ID)
		http.Error(w, "Failed to save resume", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"resume_url": url,
		"message":    "Resume uploaded successfully",
	})

	slog.Info("Resume uploaded", "user_id", user.ID, "key", key, "size", header.Size)
}
