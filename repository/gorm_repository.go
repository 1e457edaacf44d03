package repository

import (
	"context"
	"log/slog"
	"time"

	"github.com/upadhyai/backend/models"
	"gorm.io/gorm"
)

type GORMRepository struct {
	db *gorm.DB
}

func NewGORMRepository(db *gorm.DB) *GORMRepository {
	return &GORMRepository{db: db}
}

// AutoMigrate runs database migrations
func (r *GORMRepository) AutoMigrate() error {
	return r.db.AutoMigrate(
		&models.User{},
		&models.RefreshToken{},
		&models.Role{},
		&models.Profile{},
		&models.Agent{},
		&models.RoleAgentAccess{},
		&models.AgentLog{},
		&models.TrainingSession{},
		&models.TrainingFeedback{},
	)
}

// Ping verifies the underlying connection is alive.
func (r *GORMRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// User operations

func (r *GORMRepository) CreateUser(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		slog.Error("Failed to create user", "error", err)
		return err
	}
	slog.Info("User created", "user_id", user.ID, "email", user.Email)
	return nil
}

func (r *GORMRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		slog.Error("Failed to get user by email", "error", err, "email", email)
		return nil, err
	}
	return &user, nil
}

func (r *GORMRepository) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		slog.Error("Failed to get user by ID", "error", err, "user_id", id)
		return nil, err
	}
	return &user, nil
}

// Token operations

func (r *GORMRepository) CreateRefreshToken(ctx context.Context, token *models.RefreshToken) error {
	if err := r.db.WithContext(ctx).Create(token).Error; err != nil {
		slog.Error("Failed to create refresh token", "error", err)
		return err
	}
	return nil
}

func (r *GORMRepository) GetRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	var refreshToken models.RefreshToken
	if err := r.db.WithContext(ctx).Where("token = ? AND expires_at > ?", token, time.Now()).First(&refreshToken).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		slog.Error("Failed to get refresh token", "error", err)
		return nil, err
	}
	return &refreshToken, nil
}

func (r *GORMRepository) DeleteAllUserTokens(ctx context.Context, userID string) error {
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.RefreshToken{}).Error; err != nil {
		slog.Error("Failed to delete user refresh tokens", "error", err, "user_id", userID)
		return err
	}
	return nil
}

// Role operations

func (r *GORMRepository) GetRoleByName(ctx context.Context, name string) (*models.Role, error) {
	var role models.Role
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&role).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		slog.Error("Failed to get role by name", "error", err, "name", name)
		return nil, err
	}
	return &role, nil
}

func (r *GORMRepository) GetRoles(ctx context.Context) ([]models.Role, error) {
	var roles []models.Role
	if err := r.db.WithContext(ctx).Find(&roles).Error; err != nil {
		slog.Error("Failed to get roles", "error", err)
		return nil, err
	}
	return roles, nil
}

func (r *GORMRepository) CreateRole(ctx context.Context, role *models.Role) error {
	if err := r.db.WithContext(ctx).Create(role).Error; err != nil {
		slog.Error("Failed to create role", "error", err, "name", role.Name)
		return err
	}
	slog.Info("Role created", "role_id", role.ID, "name", role.Name)
	return nil
}

// Profile operations

// GetProfileByUserID returns the profile joined with its role, or (nil, nil)
// when the user has no profile row yet. Store faults pass through unclassified;
// callers run them through Classify.
func (r *GORMRepository) GetProfileByUserID(ctx context.Context, userID string) (*models.Profile, error) {
	var profile models.Profile
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Preload("Role").First(&profile).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		slog.Error("Failed to get profile", "error", err, "user_id", userID)
		return nil, err
	}
	return &profile, nil
}

// UpsertProfile inserts or updates the row keyed by user_id. Server-managed
// fields (id, created_at) are never rewritten on the update path; a stored
// profile keeps its identity and creation time across every save.
func (r *GORMRepository) UpsertProfile(ctx context.Context, profile *models.Profile) error {
	tx := r.db.WithContext(ctx).Model(&models.Profile{}).
		Where("user_id = ?", profile.UserID).
		Select("*").Omit("ID", "CreatedAt", "UserID", "DeletedAt").
		Updates(profile)
	if tx.Error != nil {
		slog.Error("Failed to update profile", "error", tx.Error, "user_id", profile.UserID)
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		if err := r.db.WithContext(ctx).Create(profile).Error; err != nil {
			slog.Error("Failed to create profile", "error", err, "user_id", profile.UserID)
			return err
		}
	}
	slog.Info("Profile saved", "user_id", profile.UserID)
	return nil
}

func (r *GORMRepository) UpdateProfileRole(ctx context.Context, profileID, roleID string) error {
	err := r.db.WithContext(ctx).Model(&models.Profile{}).Where("id = ?", profileID).
		Update("role_id", roleID).Error
	if err != nil {
		slog.Error("Failed to update profile role", "error", err, "profile_id", profileID, "role_id", roleID)
		return err
	}
	slog.Info("Profile role updated", "profile_id", profileID, "role_id", roleID)
	return nil
}

func (r *GORMRepository) UpdateProfileResume(ctx context.Context, userID, resumeURL string) error {
	err := r.db.WithContext(ctx).Model(&models.Profile{}).Where("user_id = ?", userID).
		Update("resume_url", resumeURL).Error
	if err != nil {
		slog.Error("Failed to update profile resume", "error", err, "user_id", userID)
		return err
	}
	return nil
}

// GetAllProfiles returns every profile joined with its role, newest first.
// Privilege gating happens in the admin aggregate resolver, not here.
func (r *GORMRepository) GetAllProfiles(ctx context.Context) ([]models.Profile, error) {
	var profiles []models.Profile
	err := r.db.WithContext(ctx).Preload("Role").Order("created_at DESC").Find(&profiles).Error
	if err != nil {
		slog.Error("Failed to get all profiles", "error", err)
		return nil, err
	}
	return profiles, nil
}

// Agent operations

func (r *GORMRepository) CreateAgent(ctx context.Context, agent *models.Agent) error {
	if err := r.db.WithContext(ctx).Create(agent).Error; err != nil {
		slog.Error("Failed to create agent", "error", err, "name", agent.Name)
		return err
	}
	slog.Info("Agent created", "agent_id", agent.ID, "name", agent.Name)
	return nil
}

func (r *GORMRepository) GetAllAgents(ctx context.Context) ([]models.Agent, error) {
	var agents []models.Agent
	if err := r.db.WithContext(ctx).Find(&agents).Error; err != nil {
		slog.Error("Failed to get agents", "error", err)
		return nil, err
	}
	return agents, nil
}

func (r *GORMRepository) GetAgentByID(ctx context.Context, agentID string) (*models.Agent, error) {
	var agent models.Agent
	if err := r.db.WithContext(ctx).Where("id = ?", agentID).First(&agent).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		slog.Error("Failed to get agent by ID", "error", err, "agent_id", agentID)
		return nil, err
	}
	return &agent, nil
}

// GetAgentGrants returns the positive grant rows for a role, each preloaded
// with its agent. Inactive or vanished agents are NOT filtered here; the agent
// access resolver applies that filter client-side.
func (r *GORMRepository) GetAgentGrants(ctx context.Context, roleID string) ([]models.RoleAgentAccess, error) {
	var grants []models.RoleAgentAccess
	err := r.db.WithContext(ctx).Where("role_id = ? AND can_access = ?", roleID, true).
		Preload("Agent").Find(&grants).Error
	if err != nil {
		slog.Error("Failed to get agent grants", "error", err, "role_id", roleID)
		return nil, err
	}
	return grants, nil
}

func (r *GORMRepository) CreateAgentGrant(ctx context.Context, grant *models.RoleAgentAccess) error {
	if err := r.db.WithContext(ctx).Create(grant).Error; err != nil {
		slog.Error("Failed to create agent grant", "error", err, "role_id", grant.RoleID, "agent_id", grant.AgentID)
		return err
	}
	return nil
}

// Agent log operations

func (r *GORMRepository) CreateAgentLog(ctx context.Context, log *models.AgentLog) error {
	if err := r.db.WithContext(ctx).Create(log).Error; err != nil {
		slog.Error("Failed to create agent log", "error", err, "user_id", log.UserID, "agent_name", log.AgentName)
		return err
	}
	slog.Info("Agent log created", "log_id", log.ID, "user_id", log.UserID, "agent_name", log.AgentName)
	return nil
}

// GetAgentLogs returns a user's recent executions, newest first, optionally
// filtered to one agent title.
func (r *GORMRepository) GetAgentLogs(ctx context.Context, userID, agentName string, limit int) ([]models.AgentLog, error) {
	var logs []models.AgentLog
	query := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if agentName != "" {
		query = query.Where("agent_name = ?", agentName)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Order("created_at DESC").Find(&logs).Error; err != nil {
		slog.Error("Failed to get agent logs", "error", err, "user_id", userID)
		return nil, err
	}
	return logs, nil
}

// Training session operations

func (r *GORMRepository) CreateTrainingSession(ctx context.Context, session *models.TrainingSession) error {
	if err := r.db.WithContext(ctx).Create(session).Error; err != nil {
		slog.Error("Failed to create training session", "error", err, "user_id", session.UserID)
		return err
	}
	slog.Info("Training session created", "session_id", session.ID, "user_id", session.UserID)
	return nil
}

func (r *GORMRepository) GetTrainingSessions(ctx context.Context, userID string, limit int) ([]models.TrainingSession, error) {
	var sessions []models.TrainingSession
	query := r.db.WithContext(ctx).Where("user_id = ?", userID).Preload("Feedback").Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&sessions).Error; err != nil {
		slog.Error("Failed to get training sessions", "error", err, "user_id", userID)
		return nil, err
	}
	return sessions, nil
}

// GetAllTrainingSessions returns every session joined with feedback, newest
// first, for the admin aggregate view.
func (r *GORMRepository) GetAllTrainingSessions(ctx context.Context) ([]models.TrainingSession, error) {
	var sessions []models.TrainingSession
	err := r.db.WithContext(ctx).Preload("Feedback").Order("created_at DESC").Find(&sessions).Error
	if err != nil {
		slog.Error("Failed to get all training sessions", "error", err)
		return nil, err
	}
	return sessions, nil
}
