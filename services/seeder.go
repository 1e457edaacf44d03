package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/upadhyai/backend/models"
	"github.com/upadhyai/backend/repository"
	"golang.org/x/crypto/bcrypt"
)

// DatabaseSeeder installs the reference data the platform needs to function:
// the three roles, the agent catalogue, and the default grants. All
// operations are idempotent so seeding runs safely on every boot.
type DatabaseSeeder struct {
	repo   *repository.GORMRepository
	config *Config
}

func NewDatabaseSeeder(repo *repository.GORMRepository, config *Config) *DatabaseSeeder {
	return &DatabaseSeeder{repo: repo, config: config}
}

type seedAgent struct {
	Name        string
	Description string
	Route       string
	Icon        string
	WebhookPath string
	// careerAgent marks the agents students get by default. Teacher and
	// admin roles are granted everything.
	careerAgent bool
}

var seedAgents = []seedAgent{
	{
		Name:        "Verify Profile",
		Description: "Checks the completeness and consistency of a student profile",
		Route:       "/verify-profile",
		Icon:        "bot",
		WebhookPath: "/webhook/verify-profile",
		careerAgent: true,
	},
	{
		Name:        "Skill Gap Analysis",
		Description: "Compares a student's skills against their target roles",
		Route:       "/analyze-skill-gap",
		Icon:        "bar-chart",
		WebhookPath: "/webhook/analyze-skill-gap",
		careerAgent: true,
	},
	{
		Name:        "Job Recommender",
		Description: "Suggests openings matching the student's profile",
		Route:       "/recommend-jobs",
		Icon:        "briefcase",
		WebhookPath: "/webhook/recommend-jobs",
		careerAgent: true,
	},
	{
		Name:        "Interview Coach",
		Description: "Runs practice interview questions with feedback",
		Route:       "/interview-coach",
		Icon:        "target",
		WebhookPath: "/webhook/interview-coach",
		careerAgent: true,
	},
	{
		Name:        "Voice Training",
		Description: "Spoken-fluency practice with transcript scoring",
		Route:       "/voice-training",
		Icon:        "mic",
		WebhookPath: "/webhook/voice-training",
		careerAgent: true,
	},
	{
		Name:        "Resume Maker",
		Description: "Builds a formatted resume from the student's profile",
		Route:       "/resume-maker",
		Icon:        "file-text",
		WebhookPath: "/webhook/resume-maker",
		careerAgent: true,
	},
	{
		Name:        "Certificate Courses",
		Description: "Recommends certificate courses for skill gaps",
		Route:       "/certificate-course",
		Icon:        "graduation-cap",
		WebhookPath: "/webhook/certificate-course",
	},
	{
		Name:        "Plagiarism Test",
		Description: "Checks submitted writing for plagiarism",
		Route:       "/plagiarism-test",
		Icon:        "shield-check",
		WebhookPath: "/webhook/plagiarism-test",
	},
}

// SeedDatabase installs roles, agents, grants, and the optional bootstrap
// admin account.
func (s *DatabaseSeeder) SeedDatabase() error {
	ctx := context.Background()

	roles, err := s.seedRoles(ctx)
	if err != nil {
		return err
	}

	agents, err := s.seedAgents(ctx)
	if err != nil {
		return err
	}

	if err := s.seedGrants(ctx, roles, agents); err != nil {
		return err
	}

	if err := s.seedAdmin(ctx, roles); err != nil {
		return err
	}

	slog.Info("Database seeding completed")
	return nil
}

func (s *DatabaseSeeder) seedRoles(ctx context.Context) (map[models.RoleName]*models.Role, error) {
	descriptions := map[models.RoleName]string{
		models.RoleStudent: "Default tier with access to the career development agents",
		models.RoleTeacher: "Faculty tier with student oversight and all agents",
		models.RoleAdmin:   "Platform administration tier",
	}

	roles := make(map[models.RoleName]*models.Role, len(descriptions))
	for _, name := range []models.RoleName{models.RoleStudent, models.RoleTeacher, models.RoleAdmin} {
		role, err := s.repo.GetRoleByName(ctx, string(name))
		if err != nil {
			return nil, fmt.Errorf("failed to check role %s: %w", name, err)
		}
		if role == nil {
			role = &models.Role{Name: string(name), Description: descriptions[name]}
			if err := s.repo.CreateRole(ctx, role); err != nil {
				return nil, fmt.Errorf("failed to create role %s: %w", name, err)
			}
			slog.Info("Created role", "name", name)
		}
		roles[name] = role
	}
	return roles, nil
}

func (s *DatabaseSeeder) seedAgents(ctx context.Context) (map[string]*models.Agent, error) {
	existing, err := s.repo.GetAllAgents(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list agents: %w", err)
	}
	byRoute := make(map[string]*models.Agent, len(existing))
	for i := range existing {
		byRoute[existing[i].Route] = &existing[i]
	}

	base := strings.TrimSuffix(s.config.Webhook.BaseURL, "/")
	agents := make(map[string]*models.Agent, len(seedAgents))
	for _, seed := range seedAgents {
		if agent, ok := byRoute[seed.Route]; ok {
			agents[seed.Route] = agent
			continue
		}

		agent := &models.Agent{
			Name:        seed.Name,
			Description: seed.Description,
			Route:       seed.Route,
			Icon:        seed.Icon,
			WebhookURL:  base + seed.WebhookPath,
			IsActive:    true,
		}
		if err := s.repo.CreateAgent(ctx, agent); err != nil {
			return nil, fmt.Errorf("failed to create agent %s: %w", seed.Name, err)
		}
		slog.Info("Created agent", "name", seed.Name, "route", seed.Route)
		agents[seed.Route] = agent
	}
	return agents, nil
}

func (s *DatabaseSeeder) seedGrants(ctx context.Context, roles map[models.RoleName]*models.Role, agents map[string]*models.Agent) error {
	granted := make(map[string]map[string]bool)
	for name, role := range roles {
		grants, err := s.repo.GetAgentGrants(ctx, role.ID)
		if err != nil {
			return fmt.Errorf("failed to list grants for %s: %w", name, err)
		}
		set := make(map[string]bool, len(grants))
		for _, grant := range grants {
			set[grant.AgentID] = true
		}
		granted[role.ID] = set
	}

	for _, seed := range seedAgents {
		agent := agents[seed.Route]
		for name, role := range roles {
			if name == models.RoleStudent && !seed.careerAgent {
				continue
			}
			if granted[role.ID][agent.ID] {
				continue
			}
			grant := &models.RoleAgentAccess{
				RoleID:    role.ID,
				AgentID:   agent.ID,
				CanAccess: true,
			}
			if err := s.repo.CreateAgentGrant(ctx, grant); err != nil {
				return fmt.Errorf("failed to grant %s to %s: %w", seed.Name, name, err)
			}
			slog.Info("Created agent grant", "agent", seed.Name, "role", name)
		}
	}
	return nil
}

// seedAdmin creates the bootstrap admin account when configured. Without it a
// fresh install has no way to reach the admin surface.
func (s *DatabaseSeeder) seedAdmin(ctx context.Context, roles map[models.RoleName]*models.Role) error {
	email := s.config.Seed.AdminEmail
	password := s.config.Seed.AdminPassword
	if email == "" || password == "" {
		slog.Info("No bootstrap admin configured, skipping")
		return nil
	}

	existing, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("failed to check admin user: %w", err)
	}
	if existing != nil {
		slog.Info("Bootstrap admin already exists, skipping", "email", email)
		return nil
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	user := &models.User{Email: email, Password: string(hashed)}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		return fmt.Errorf("failed to create admin user: %w", err)
	}

	profile := &models.Profile{
		UserID: user.ID,
		RoleID: roles[models.RoleAdmin].ID,
		Email:  email,
		Name:   "Platform Administrator",
	}
	if err := s.repo.UpsertProfile(ctx, profile); err != nil {
		return fmt.Errorf("failed to create admin profile: %w", err)
	}

	slog.Info("Created bootstrap admin", "email", email)
	return nil
}
