package services

import (
	"context"
	"errors"
	"testing"

	"github.com/upadhyai/backend/models"
)

type fakeGrantStore struct {
	grants []models.RoleAgentAccess
	err    error
	calls  int
}

func (f *fakeGrantStore) GetAgentGrants(ctx context.Context, roleID string) ([]models.RoleAgentAccess, error) {
	f.calls++
	return f.grants, f.err
}

func TestAgentAccessResolver(t *testing.T) {
	active := &models.Agent{ID: "a-1", Name: "Verify Profile", Route: "/verify-profile", IsActive: true}
	inactive := &models.Agent{ID: "a-2", Name: "Old Agent", Route: "/old-agent", IsActive: false}

	tests := []struct {
		name        string
		role        *models.Role
		store       *fakeGrantStore
		expectedLen int
		expectErr   bool
		expectCalls int
	}{
		{
			name:        "nil role yields empty set without a query",
			role:        nil,
			store:       &fakeGrantStore{},
			expectedLen: 0,
			expectCalls: 0,
		},
		{
			name: "grants map to active agents",
			role: &models.Role{ID: "r-1"},
			store: &fakeGrantStore{grants: []models.RoleAgentAccess{
				{RoleID: "r-1", AgentID: "a-1", CanAccess: true, Agent: active},
			}},
			expectedLen: 1,
			expectCalls: 1,
		},
		{
			name: "inactive agents are excluded",
			role: &models.Role{ID: "r-1"},
			store: &fakeGrantStore{grants: []models.RoleAgentAccess{
				{RoleID: "r-1", AgentID: "a-1", CanAccess: true, Agent: active},
				{RoleID: "r-1", AgentID: "a-2", CanAccess: true, Agent: inactive},
			}},
			expectedLen: 1,
			expectCalls: 1,
		},
		{
			name: "grant to a deleted agent degrades to exclusion",
			role: &models.Role{ID: "r-1"},
			store: &fakeGrantStore{grants: []models.RoleAgentAccess{
				{RoleID: "r-1", AgentID: "gone", CanAccess: true, Agent: nil},
			}},
			expectedLen: 0,
			expectCalls: 1,
		},
		{
			name:        "store fault yields empty set with error",
			role:        &models.Role{ID: "r-1"},
			store:       &fakeGrantStore{err: errors.New("connection refused")},
			expectedLen: 0,
			expectErr:   true,
			expectCalls: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resolver := NewAgentAccessResolver(tt.store)
			result := resolver.Resolve(context.Background(), tt.role)

			if len(result.Agents) != tt.expectedLen {
				t.Errorf("agents = %d, expected %d", len(result.Agents), tt.expectedLen)
			}
			if result.Agents == nil {
				t.Error("agents must never be nil")
			}
			if (result.Err != "") != tt.expectErr {
				t.Errorf("err = %q, expectErr %v", result.Err, tt.expectErr)
			}
			if tt.store.calls != tt.expectCalls {
				t.Errorf("store calls = %d, expected %d", tt.store.calls, tt.expectCalls)
			}
		})
	}
}

func TestAgentAccessResultHasAccess(t *testing.T) {
	result := AgentAccessResult{Agents: []models.Agent{
		{Route: "/verify-profile"},
		{Route: "/recommend-jobs"},
	}}

	if !result.HasAccess("/verify-profile") {
		t.Error("expected access to /verify-profile")
	}
	if result.HasAccess("/verify-profile/extra") {
		t.Error("route matching must be exact")
	}
	if result.HasAccess("/admin-panel") {
		t.Error("expected no access to ungranted route")
	}
}
