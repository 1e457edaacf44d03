package services

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/upadhyai/backend/repository"
)

type AgentEndpoints struct {
	repo    *repository.GORMRepository
	access  *RoleAccessService
	invoker *AgentInvoker
}

// InvokeRequest carries the caller-supplied input for an invocation. The
// caller owns the input; the server owns everything else in the webhook
// payload (identity and profile).
type InvokeRequest struct {
	Input map[string]interface{} `json:"input"`
}

func NewAgentEndpoints(repo *repository.GORMRepository, access *RoleAccessService, invoker *AgentInvoker) *AgentEndpoints {
	return &AgentEndpoints{
		repo:    repo,
		access:  access,
		invoker: invoker,
	}
}

func (e *AgentEndpoints) RegisterRoutes(r chi.Router) {
	r.Route("/agents", func(r chi.Router) {
		r.Get("/", e.GetAgentsHandler)
		r.Get("/logs", e.GetLogsHandler)
		r.Post("/{id}/invoke", e.InvokeHandler)
	})
}

// GetAgentsHandler returns the caller's effective accessible set, already
// filtered for grants and active agents.
func (e *AgentEndpoints) GetAgentsHandler(w http.ResponseWriter, r *http.Request) {
	user := CurrentUser(r.Context())
	if user == nil {
		http.Error(w, "Not authenticated", http.StatusUnauthorized)
		return
	}

	snap := e.access.Resolve(r.Context(), user.ID)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"agents": snap.AccessibleAgents,
		"count":  len(snap.AccessibleAgents),
	})

	slog.Info("Agents retrieved", "user_id", user.ID, "count", len(snap.AccessibleAgents))
}

func (e *AgentEndpoints) InvokeHandler(w http.ResponseWriter, r *http.Request) {
	user := CurrentUser(r.Context())
	if user == nil {
		http.Error(w, "Not authenticated", http.StatusUnauthorized)
		return
	}

	agentID := chi.URLParam(r, "id")
	if agentID == "" {
		http.Error(w, "Agent ID is required", http.StatusBadRequest)
		return
	}

	agent, err := e.repo.GetAgentByID(r.Context(), agentID)
	if err != nil {
		slog.Error("Failed to get agent", "error", err, "agent_id", agentID, "user_id", user.ID)
		http.Error(w, "Failed to get agent", http.StatusInternalServerError)
		return
	}
	if agent == nil || !agent.IsActive {
		http.Error(w, "Agent not found", http.StatusNotFound)
		return
	}

	snap := e.access.Resolve(r.Context(), user.ID)
	if !snap.HasAccess(agent.Route) {
		slog.Warn("Invocation denied", "agent", agent.Name, "user_id", user.ID)
		http.Error(w, "You do not have access to this agent", http.StatusForbidden)
		return
	}

	var req InvokeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Input == nil {
		req.Input = map[string]interface{}{}
	}

	result, err := e.invoker.Invoke(r.Context(), user, agent, req.Input, snap.Profile)
	if err != nil {
		writeInvocationError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"agent":   agent.Name,
		"content": result.Content,
		"raw":     result.Raw,
	})
}

// writeInvocationError maps each failure kind to its own status so clients
// can show a specific message per kind.
func writeInvocationError(w http.ResponseWriter, err error) {
	var invErr *InvocationError
	status := http.StatusInternalServerError
	kind := "unknown"
	if errors.As(err, &invErr) {
		kind = invErr.Kind.String()
		switch invErr.Kind {
		case InvocationTimeout:
			status = http.StatusGatewayTimeout
		case InvocationNetwork:
			status = http.StatusServiceUnavailable
		case InvocationStatus:
			status = http.StatusBadGateway
		case InvocationEmpty:
			status = http.StatusInternalServerError
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"error": err.Error(),
		"kind":  kind,
	})
}

// GetLogsHandler returns the caller's own execution history, newest first,
// optionally filtered by agent display name.
func (e *AgentEndpoints) GetLogsHandler(w http.ResponseWriter, r *http.Request) {
	user := CurrentUser(r.Context())
	if user == nil {
		http.Error(w, "Not authenticated", http.StatusUnauthorized)
		return
	}

	agentName := r.URL.Query().Get("agent")
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 && parsed <= 200 {
			limit = parsed
		}
	}

	logs, err := e.repo.GetAgentLogs(r.Context(), user.ID, agentName, limit)
	if err != nil {
		slog.Error("Failed to get agent logs", "error", err, "user_id", user.ID)
		http.Error(w, "Failed to get agent logs", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"logs":  logs,
		"count": len(logs),
	})

	slog.Info("Agent logs retrieved", "user_id", user.ID, "count", len(logs), "agent", agentName)
}
