package services

import (
	"context"
	"log/slog"
	"sync"

	"github.com/upadhyai/backend/models"
	"golang.org/x/sync/singleflight"
)

// Snapshot is one coherent view of everything role-dependent for a user:
// profile, role, the effective agent set, and (for privileged roles) the
// platform-wide aggregates. It is complete by construction - Resolve does not
// return until every constituent resolver has settled, so consumers never see
// a partially-ready snapshot.
type Snapshot struct {
	Profile          *models.Profile          `json:"profile"`
	Role             *models.Role             `json:"role"`
	AccessibleAgents []models.Agent           `json:"accessible_agents"`
	AllProfiles      []models.Profile         `json:"all_profiles,omitempty"`
	AllSessions      []models.TrainingSession `json:"all_sessions,omitempty"`
	ProfileState     ProfileState             `json:"-"`
	Err              string                   `json:"error,omitempty"`
}

// RoleName returns the parsed role, with ok=false when the role is unresolved
// or unrecognized.
func (s *Snapshot) RoleName() (models.RoleName, bool) {
	if s.Role == nil {
		return models.RoleStudent, false
	}
	name, ok := models.ParseRoleName(s.Role.Name)
	if !ok {
		slog.Warn("Unknown role name, treating as student", "role", s.Role.Name)
		return name, false
	}
	return name, true
}

// The role predicates are pure functions of the resolved role name. All three
// report false while the role is unresolved; at most one is true otherwise.

func (s *Snapshot) IsAdmin() bool {
	name, ok := s.RoleName()
	return ok && name == models.RoleAdmin
}

func (s *Snapshot) IsTeacher() bool {
	name, ok := s.RoleName()
	return ok && name == models.RoleTeacher
}

func (s *Snapshot) IsStudent() bool {
	name, ok := s.RoleName()
	return ok && name == models.RoleStudent
}

// HasAccess reports whether an agent in the effective set is bound to exactly
// this route.
func (s *Snapshot) HasAccess(route string) bool {
	for _, agent := range s.AccessibleAgents {
		if agent.Route == route {
			return true
		}
	}
	return false
}

// RoleAccessService composes the profile, agent-access, and admin-aggregate
// resolvers into one snapshot per request. The profile resolves first (it is
// the precondition for the other two), then agents and aggregates run
// concurrently; the first error in resolver priority order (profile > agents >
// admin) becomes the snapshot's error, but one resolver's fault never aborts
// the others.
type RoleAccessService struct {
	profiles *ProfileResolver
	agents   *AgentAccessResolver
	admin    *AdminDataResolver
	group    singleflight.Group
}

func NewRoleAccessService(profiles *ProfileResolver, agents *AgentAccessResolver, admin *AdminDataResolver) *RoleAccessService {
	return &RoleAccessService{
		profiles: profiles,
		agents:   agents,
		admin:    admin,
	}
}

// Resolve builds the snapshot for userID. Concurrent resolutions for the same
// user are coalesced onto one in-flight fetch; callers all receive the same
// snapshot (last-write-wins semantics for anyone holding an older one).
// The fetch runs on a context detached from cancellation so one caller
// hanging up does not poison the snapshot handed to everyone it coalesced
// with.
func (s *RoleAccessService) Resolve(ctx context.Context, userID string) *Snapshot {
	detached := context.WithoutCancel(ctx)
	v, _, _ := s.group.Do(userID, func() (interface{}, error) {
		return s.resolve(detached, userID), nil
	})
	return v.(*Snapshot)
}

func (s *RoleAccessService) resolve(ctx context.Context, userID string) *Snapshot {
	snap := &Snapshot{
		AccessibleAgents: []models.Agent{},
		AllProfiles:      []models.Profile{},
		AllSessions:      []models.TrainingSession{},
	}

	profileResult := s.profiles.Resolve(ctx, userID)
	snap.Profile = profileResult.Profile
	snap.Role = profileResult.Role
	snap.ProfileState = profileResult.State

	roleName := models.RoleName("")
	if profileResult.Role != nil {
		parsed, ok := models.ParseRoleName(profileResult.Role.Name)
		if !ok {
			slog.Warn("Unknown role name during resolution, treating as student", "role", profileResult.Role.Name, "user_id", userID)
		}
		roleName = parsed
	}

	var (
		wg          sync.WaitGroup
		agentResult AgentAccessResult
		adminData   AdminData
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		agentResult = s.agents.Resolve(ctx, profileResult.Role)
	}()
	go func() {
		defer wg.Done()
		adminData = s.admin.Resolve(ctx, roleName)
	}()
	wg.Wait()

	snap.AccessibleAgents = agentResult.Agents
	snap.AllProfiles = adminData.Profiles
	snap.AllSessions = adminData.Sessions

	// Error priority: a broken profile fetch invalidates everything downstream
	// and dominates the surfaced message. NotFound is a normal state, not an
	// error, so it does not mask downstream faults.
	switch {
	case profileResult.State == ProfilePolicyError,
		profileResult.State == ProfilePermissionDenied,
		profileResult.State == ProfileError:
		snap.Err = profileResult.Err
	case agentResult.Err != "":
		snap.Err = agentResult.Err
	case adminData.Err != "":
		snap.Err = adminData.Err
	}

	return snap
}
