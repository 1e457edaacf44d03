package services

import (
	"context"
	"log/slog"

	"github.com/upadhyai/backend/models"
)

const msgAgentAccessFailed = "Failed to load your accessible agents. Some tools may be temporarily unavailable."

type AgentAccessResult struct {
	Agents []models.Agent
	Err    string
}

// HasAccess reports whether some agent in the effective set is bound to
// exactly this route.
func (r AgentAccessResult) HasAccess(route string) bool {
	for _, agent := range r.Agents {
		if agent.Route == route {
			return true
		}
	}
	return false
}

type AgentGrantStore interface {
	GetAgentGrants(ctx context.Context, roleID string) ([]models.RoleAgentAccess, error)
}

// AgentAccessResolver computes the effective accessible-agent set for a role:
// agents with a positive grant whose agent row still exists and is active.
// The inactive/missing filter is applied here, after the fetch, so a deleted
// agent degrades to exclusion instead of a fault.
type AgentAccessResolver struct {
	store AgentGrantStore
}

func NewAgentAccessResolver(store AgentGrantStore) *AgentAccessResolver {
	return &AgentAccessResolver{store: store}
}

// Resolve returns the effective set for role. A nil role yields the empty set,
// not an error - an unresolved role simply has no grants. A store fault is
// reported in Err but yields an empty set so the rest of the facade still
// resolves.
func (r *AgentAccessResolver) Resolve(ctx context.Context, role *models.Role) AgentAccessResult {
	if role == nil {
		return AgentAccessResult{Agents: []models.Agent{}}
	}

	grants, err := r.store.GetAgentGrants(ctx, role.ID)
	if err != nil {
		slog.Error("Failed to fetch agent grants", "error", err, "role_id", role.ID)
		return AgentAccessResult{Agents: []models.Agent{}, Err: msgAgentAccessFailed}
	}

	agents := make([]models.Agent, 0, len(grants))
	for _, grant := range grants {
		if grant.Agent == nil || !grant.Agent.IsActive {
			continue
		}
		agents = append(agents, *grant.Agent)
	}

	return AgentAccessResult{Agents: agents}
}
