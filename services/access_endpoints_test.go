package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/upadhyai/backend/models"
)

func authenticatedRequest(t *testing.T, target string, user *models.User) *http.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	return req.WithContext(context.WithValue(req.Context(), userContextKey, user))
}

func TestGetNavigationHandlerIncludesRouteAccess(t *testing.T) {
	studentRole := &models.Role{ID: "r-student", Name: "student"}
	agent := &models.Agent{ID: "a-1", Name: "Verify Profile", Route: "/verify-profile", IsActive: true}
	access := newTestAccessService(
		&fakeProfileStore{profile: &models.Profile{ID: "p-1", UserID: "u-1", Role: studentRole}},
		&fakeGrantStore{grants: []models.RoleAgentAccess{{RoleID: "r-student", AgentID: "a-1", CanAccess: true, Agent: agent}}},
		&fakeAdminStore{},
	)
	endpoints := NewAccessEndpoints(nil, access)

	rec := httptest.NewRecorder()
	endpoints.GetNavigationHandler(rec, authenticatedRequest(t, "/navigation", &models.User{ID: "u-1"}))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, expected 200", rec.Code)
	}

	var payload struct {
		Items       []MenuItem        `json:"items"`
		Count       int               `json:"count"`
		RouteAccess map[string]string `json:"route_access"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&payload); err != nil {
		t.Fatalf("payload did not decode: %v", err)
	}
	if payload.Count != len(payload.Items) || payload.Count == 0 {
		t.Errorf("count = %d with %d items", payload.Count, len(payload.Items))
	}
	if payload.RouteAccess["/verify-profile"] != "granted" {
		t.Errorf("/verify-profile = %q, expected granted", payload.RouteAccess["/verify-profile"])
	}
	if payload.RouteAccess["/admin-panel"] != "denied" {
		t.Errorf("/admin-panel = %q, expected denied", payload.RouteAccess["/admin-panel"])
	}
}

func TestGetNavigationHandlerUnauthenticated(t *testing.T) {
	endpoints := NewAccessEndpoints(nil, newTestAccessService(&fakeProfileStore{}, &fakeGrantStore{}, &fakeAdminStore{}))

	rec := httptest.NewRecorder()
	endpoints.GetNavigationHandler(rec, httptest.NewRequest(http.MethodGet, "/navigation", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, expected 401", rec.Code)
	}
}
