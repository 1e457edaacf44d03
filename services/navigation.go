package services

import (
	"net/http"

	"github.com/upadhyai/backend/models"
)

// MenuItem is one navigation entry. Icon is a display icon identifier the
// client maps to an actual glyph.
type MenuItem struct {
	Name string `json:"name"`
	Href string `json:"href"`
	Icon string `json:"icon"`
}

// iconTable maps the icon identifiers stored on agents to display icons.
// Identifiers not present fall back to iconDefault.
var iconTable = map[string]string{
	"bot":            "bot",
	"bar-chart":      "bar-chart",
	"briefcase":      "briefcase",
	"target":         "target",
	"mic":            "mic",
	"file-text":      "file-text",
	"graduation-cap": "graduation-cap",
	"shield-check":   "shield-check",
}

const iconDefault = "sparkles"

// DisplayIcon resolves a stored icon identifier through the fixed lookup
// table.
func DisplayIcon(identifier string) string {
	if icon, ok := iconTable[identifier]; ok {
		return icon
	}
	return iconDefault
}

// BuildMenu assembles the navigation menu for a snapshot: the fixed base
// items, then the role-specific dashboards, then one entry per accessible
// agent. Order is stable so the client renders deterministically.
func BuildMenu(snap *Snapshot) []MenuItem {
	items := []MenuItem{
		{Name: "Home", Href: "/", Icon: "home"},
		{Name: "Profile", Href: "/profile", Icon: "user"},
		{Name: "Upload Resume", Href: "/upload-resume", Icon: "upload"},
	}

	switch {
	case snap.IsAdmin():
		items = append(items,
			MenuItem{Name: "Admin Dashboard", Href: "/admin-dashboard", Icon: "layout-dashboard"},
			MenuItem{Name: "Admin Panel", Href: "/admin-panel", Icon: "settings"},
		)
	case snap.IsTeacher():
		items = append(items,
			MenuItem{Name: "Teacher Dashboard", Href: "/teacher-dashboard", Icon: "layout-dashboard"},
		)
	case snap.IsStudent():
		items = append(items,
			MenuItem{Name: "Student Dashboard", Href: "/student-dashboard", Icon: "layout-dashboard"},
		)
	}

	for _, agent := range snap.AccessibleAgents {
		items = append(items, MenuItem{
			Name: agent.Name,
			Href: agent.Route,
			Icon: DisplayIcon(agent.Icon),
		})
	}

	return items
}

// RouteDecision is the gate's verdict for one route.
type RouteDecision int

const (
	RouteGranted RouteDecision = iota
	RouteDenied
)

func (d RouteDecision) String() string {
	if d == RouteGranted {
		return "granted"
	}
	return "denied"
}

// adminRoutes and teacherRoutes are the role-fixed protected routes. Agent
// routes are gated through the snapshot's accessible set instead.
var (
	adminRoutes   = map[string]bool{"/admin-dashboard": true, "/admin-panel": true}
	teacherRoutes = map[string]bool{"/teacher-dashboard": true}
)

// Decide evaluates whether the snapshot's user may enter route. Nothing is
// persisted; every request re-evaluates against the current snapshot. Routes
// the gate does not know about are granted (they carry their own checks or
// none).
func Decide(snap *Snapshot, route string) RouteDecision {
	if adminRoutes[route] {
		if snap.IsAdmin() {
			return RouteGranted
		}
		return RouteDenied
	}
	if teacherRoutes[route] {
		if snap.IsTeacher() || snap.IsAdmin() {
			return RouteGranted
		}
		return RouteDenied
	}
	if snap.HasAccess(route) {
		return RouteGranted
	}

	// Unknown to the gate: only deny routes that look agent-shaped, i.e.
	// routes some agent in the catalogue could own. Everything else passes.
	if isGatedRoute(route) {
		return RouteDenied
	}
	return RouteGranted
}

// gatedRoutes enumerates the agent-bound routes the gate owns. Kept in sync
// with the seeded catalogue.
var gatedRoutes = map[string]bool{
	"/verify-profile":     true,
	"/analyze-skill-gap":  true,
	"/recommend-jobs":     true,
	"/interview-coach":    true,
	"/voice-training":     true,
	"/resume-maker":       true,
	"/certificate-course": true,
	"/plagiarism-test":    true,
}

func isGatedRoute(route string) bool {
	return gatedRoutes[route]
}

// RouteDecisions evaluates every route the gate owns against one snapshot.
// The client uses the map to disable links up front instead of discovering a
// denial on navigation.
func RouteDecisions(snap *Snapshot) map[string]string {
	decisions := make(map[string]string, len(adminRoutes)+len(teacherRoutes)+len(gatedRoutes))
	for _, routes := range []map[string]bool{adminRoutes, teacherRoutes, gatedRoutes} {
		for route := range routes {
			decisions[route] = Decide(snap, route).String()
		}
	}
	return decisions
}

// RequireRole is route middleware for role-gated endpoints: it resolves the
// caller's snapshot and rejects the request unless the resolved role is one
// of the allowed names. Unresolved or unknown roles are rejected, never
// granted by fallback.
func RequireRole(access *RoleAccessService, allowed ...models.RoleName) func(http.Handler) http.Handler {
	allowedSet := make(map[models.RoleName]bool, len(allowed))
	for _, name := range allowed {
		allowedSet[name] = true
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := CurrentUser(r.Context())
			if user == nil {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			snap := access.Resolve(r.Context(), user.ID)
			name, ok := snap.RoleName()
			if !ok || !allowedSet[name] {
				http.Error(w, "Forbidden", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
