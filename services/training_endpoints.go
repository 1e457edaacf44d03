package services

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/upadhyai/backend/models"
	"github.com/upadhyai/backend/repository"
)

type TrainingEndpoints struct {
	repo *repository.GORMRepository
}

type CreateSessionRequest struct {
	Question        string `json:"question"`
	Transcript      string `json:"transcript"`
	DurationSeconds int    `json:"duration_seconds"`
	FluencyScore    *int   `json:"fluency_score"`
	AudioURL        string `json:"audio_url"`
}

// sessionView decorates a session with its score badge so clients do not
// re-implement the thresholds.
type sessionView struct {
	models.TrainingSession
	ScoreBadge string `json:"score_badge"`
}

func NewTrainingEndpoints(repo *repository.GORMRepository) *TrainingEndpoints {
	return &TrainingEndpoints{repo: repo}
}

func (e *TrainingEndpoints) RegisterRoutes(r chi.Router) {
	r.Route("/training/sessions", func(r chi.Router) {
		r.Post("/", e.CreateSessionHandler)
		r.Get("/", e.GetSessionsHandler)
	})
}

func (e *TrainingEndpoints) CreateSessionHandler(w http.ResponseWriter, r *http.Request) {
	user := CurrentUser(r.Context())
	if user == nil {
		http.Error(w, "Not authenticated", http.StatusUnauthorized)
		return
	}

	var req CreateSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.Question == "" {
		http.Error(w, "Question is required", http.StatusBadRequest)
		return
	}
	if req.FluencyScore != nil && (*req.FluencyScore < 0 || *req.FluencyScore > 100) {
		http.Error(w, "Fluency score must be between 0 and 100", http.StatusBadRequest)
		return
	}

	session := models.TrainingSession{
		UserID:          user.ID,
		Question:        req.Question,
		Transcript:      req.Transcript,
		DurationSeconds: req.DurationSeconds,
		FluencyScore:    req.FluencyScore,
		AudioURL:        req.AudioURL,
	}

	if err := e.repo.CreateTrainingSession(r.Context(), &session); err != nil {
		slog.Error("Failed to create training session", "error", err, "user_id", user.ID)
		http.Error(w, "Failed to create training session", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"session": sessionView{TrainingSession: session, ScoreBadge: models.ScoreBadge(session.FluencyScore)},
		"message": "Session recorded successfully",
	})

	slog.Info("Training session created", "session_id", session.ID, "user_id", user.ID)
}

func (e *TrainingEndpoints) GetSessionsHandler(w http.ResponseWriter, r *http.Request) {
	user := CurrentUser(r.Context())
	if user == nil {
		http.Error(w, "Not authenticated", http.StatusUnauthorized)
		return
	}

	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 && parsed <= 200 {
			limit = parsed
		}
	}

	sessions, err := e.repo.GetTrainingSessions(r.Context(), user.ID, limit)
	if err != nil {
		slog.Error("Failed to get training sessions", "error", err, "user_id", user.ID)
		http.Error(w, "Failed to get training sessions", http.StatusInternalServerError)
		return
	}

	views := make([]sessionView, 0, len(sessions))
	for _, session := range sessions {
		views = append(views, sessionView{TrainingSession: session, ScoreBadge: models.ScoreBadge(session.FluencyScore)})
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"sessions": views,
		"count":    len(views),
	})

	slog.Info("Training sessions retrieved", "user_id", user.ID, "count", len(views))
}
