package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/upadhyai/backend/models"
)

type slowGrantStore struct {
	fakeGrantStore
	delay time.Duration
}

func (s *slowGrantStore) GetAgentGrants(ctx context.Context, roleID string) ([]models.RoleAgentAccess, error) {
	time.Sleep(s.delay)
	return s.fakeGrantStore.GetAgentGrants(ctx, roleID)
}

func newTestAccessService(profiles ProfileStore, grants AgentGrantStore, admin AdminStore) *RoleAccessService {
	return NewRoleAccessService(
		NewProfileResolver(profiles),
		NewAgentAccessResolver(grants),
		NewAdminDataResolver(admin),
	)
}

func TestRoleAccessSnapshotForAdmin(t *testing.T) {
	adminRole := &models.Role{ID: "r-admin", Name: "admin"}
	agent := &models.Agent{ID: "a-1", Name: "Verify Profile", Route: "/verify-profile", IsActive: true}

	access := newTestAccessService(
		&fakeProfileStore{profile: &models.Profile{ID: "p-1", UserID: "u-1", Role: adminRole}},
		&fakeGrantStore{grants: []models.RoleAgentAccess{{RoleID: "r-admin", AgentID: "a-1", CanAccess: true, Agent: agent}}},
		&fakeAdminStore{
			profiles: []models.Profile{{ID: "p-1"}, {ID: "p-2"}},
			sessions: []models.TrainingSession{{ID: "s-1", UserID: "u-2", FluencyScore: score(75)}},
		},
	)

	snap := access.Resolve(context.Background(), "u-1")

	if snap.ProfileState != ProfileFound {
		t.Fatalf("profile state = %v, expected found", snap.ProfileState)
	}
	if !snap.IsAdmin() || snap.IsTeacher() || snap.IsStudent() {
		t.Error("expected exactly the admin predicate to hold")
	}
	if !snap.HasAccess("/verify-profile") {
		t.Error("expected access to the granted agent route")
	}
	if len(snap.AllProfiles) != 2 || len(snap.AllSessions) != 1 {
		t.Error("expected admin aggregates to be populated")
	}
	if snap.Err != "" {
		t.Errorf("unexpected error: %q", snap.Err)
	}
}

func TestRoleAccessSnapshotForStudent(t *testing.T) {
	studentRole := &models.Role{ID: "r-student", Name: "student"}
	adminStore := &fakeAdminStore{profiles: []models.Profile{{ID: "p-1"}}}

	access := newTestAccessService(
		&fakeProfileStore{profile: &models.Profile{ID: "p-1", UserID: "u-1", Role: studentRole}},
		&fakeGrantStore{},
		adminStore,
	)

	snap := access.Resolve(context.Background(), "u-1")

	if !snap.IsStudent() {
		t.Error("expected the student predicate to hold")
	}
	if adminStore.calls != 0 {
		t.Error("student snapshot must not trigger aggregate queries")
	}
	if len(snap.AllProfiles) != 0 {
		t.Error("student snapshot must carry empty aggregates")
	}
}

func TestRoleAccessPredicatesUnresolved(t *testing.T) {
	access := newTestAccessService(&fakeProfileStore{}, &fakeGrantStore{}, &fakeAdminStore{})

	snap := access.Resolve(context.Background(), "u-1")

	if snap.ProfileState != ProfileNotFound {
		t.Fatalf("profile state = %v, expected not found", snap.ProfileState)
	}
	if snap.IsAdmin() || snap.IsTeacher() || snap.IsStudent() {
		t.Error("all predicates must be false while the role is unresolved")
	}
}

func TestRoleAccessErrorPriority(t *testing.T) {
	studentRole := &models.Role{ID: "r-student", Name: "student"}
	adminRole := &models.Role{ID: "r-admin", Name: "admin"}
	storeErr := errors.New("connection refused")

	tests := []struct {
		name     string
		profiles ProfileStore
		grants   AgentGrantStore
		admin    AdminStore
		expected string
	}{
		{
			name:     "profile error dominates downstream errors",
			profiles: &fakeProfileStore{err: storeErr},
			grants:   &fakeGrantStore{err: storeErr},
			admin:    &fakeAdminStore{},
			expected: msgProfileGeneric,
		},
		{
			name:     "agents error surfaces when profile is fine",
			profiles: &fakeProfileStore{profile: &models.Profile{ID: "p-1", Role: studentRole}},
			grants:   &fakeGrantStore{err: storeErr},
			admin:    &fakeAdminStore{},
			expected: msgAgentAccessFailed,
		},
		{
			name:     "agents error outranks admin error",
			profiles: &fakeProfileStore{profile: &models.Profile{ID: "p-1", Role: adminRole}},
			grants:   &fakeGrantStore{err: storeErr},
			admin:    &fakeAdminStore{profilesErr: storeErr},
			expected: msgAgentAccessFailed,
		},
		{
			name:     "admin error surfaces last",
			profiles: &fakeProfileStore{profile: &models.Profile{ID: "p-1", Role: adminRole}},
			grants:   &fakeGrantStore{},
			admin:    &fakeAdminStore{profilesErr: storeErr},
			expected: msgAdminDataFailed,
		},
		{
			name:     "not found is not an error and does not mask anything",
			profiles: &fakeProfileStore{},
			grants:   &fakeGrantStore{},
			admin:    &fakeAdminStore{},
			expected: msgProfileNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			access := newTestAccessService(tt.profiles, tt.grants, tt.admin)
			snap := access.Resolve(context.Background(), "u-1")

			if tt.name == "not found is not an error and does not mask anything" {
				if snap.Err != "" {
					t.Errorf("snapshot err = %q, expected empty", snap.Err)
				}
				return
			}
			if snap.Err != tt.expected {
				t.Errorf("snapshot err = %q, expected %q", snap.Err, tt.expected)
			}
		})
	}
}

func TestRoleAccessWaitsForSlowestResolver(t *testing.T) {
	studentRole := &models.Role{ID: "r-student", Name: "student"}
	agent := &models.Agent{ID: "a-1", Name: "Verify Profile", Route: "/verify-profile", IsActive: true}
	grants := &slowGrantStore{
		fakeGrantStore: fakeGrantStore{grants: []models.RoleAgentAccess{
			{RoleID: "r-student", AgentID: "a-1", CanAccess: true, Agent: agent},
		}},
		delay: 30 * time.Millisecond,
	}

	access := newTestAccessService(
		&fakeProfileStore{profile: &models.Profile{ID: "p-1", Role: studentRole}},
		grants,
		&fakeAdminStore{},
	)

	// Resolve must not return a partially-ready snapshot: the slow grant
	// fetch has to be reflected in the result.
	snap := access.Resolve(context.Background(), "u-1")
	if len(snap.AccessibleAgents) != 1 {
		t.Errorf("agents = %d, expected the slow resolver's result to be included", len(snap.AccessibleAgents))
	}
}

type ctxAwareProfileStore struct {
	fakeProfileStore
}

func (f *ctxAwareProfileStore) GetProfileByUserID(ctx context.Context, userID string) (*models.Profile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return f.fakeProfileStore.GetProfileByUserID(ctx, userID)
}

func TestRoleAccessResolveDetachedFromCallerCancellation(t *testing.T) {
	studentRole := &models.Role{ID: "r-student", Name: "student"}
	access := newTestAccessService(
		&ctxAwareProfileStore{fakeProfileStore: fakeProfileStore{profile: &models.Profile{ID: "p-1", Role: studentRole}}},
		&fakeGrantStore{},
		&fakeAdminStore{},
	)

	// One caller hanging up must not poison the shared fetch for everyone
	// coalesced onto it.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	snap := access.Resolve(ctx, "u-1")
	if snap.ProfileState != ProfileFound {
		t.Fatalf("profile state = %v, expected the fetch to run despite the cancelled caller", snap.ProfileState)
	}
	if !snap.IsStudent() {
		t.Error("expected the student predicate to hold")
	}
}

func TestRoleAccessCoalescesConcurrentResolves(t *testing.T) {
	studentRole := &models.Role{ID: "r-student", Name: "student"}
	grants := &slowGrantStore{delay: 20 * time.Millisecond}
	access := newTestAccessService(
		&fakeProfileStore{profile: &models.Profile{ID: "p-1", Role: studentRole}},
		grants,
		&fakeAdminStore{},
	)

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			access.Resolve(context.Background(), "u-1")
		}()
	}
	wg.Wait()

	if grants.calls > 2 {
		t.Errorf("grant store calls = %d, expected concurrent resolves to coalesce", grants.calls)
	}
}
