package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Agent is an externally hosted AI workflow bound to an application route.
// Rows are reference data, configured out-of-band and seeded; which roles may
// invoke an agent is decided by RoleAgentAccess grants, never by the agent row.
type Agent struct {
	ID          string         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Name        string         `gorm:"not null" json:"name"`
	Description string         `gorm:"type:text" json:"description"`
	Route       string         `gorm:"uniqueIndex;not null" json:"route"`
	Icon        string         `gorm:"size:100" json:"icon"`
	WebhookURL  string         `gorm:"size:500" json:"-"` // Never exposed to clients
	IsActive    bool           `gorm:"default:true" json:"is_active"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Grants []RoleAgentAccess `gorm:"foreignKey:AgentID" json:"grants,omitempty"`
}

// AgentLog is an append-only record of one invocation. AgentName stores the
// display title rather than the agent id - a deliberate denormalization so the
// history survives agent reconfiguration. Rows are never updated or deleted.
type AgentLog struct {
	ID           string            `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	UserID       string            `gorm:"type:uuid;not null;index" json:"user_id"`
	AgentName    string            `gorm:"not null;index" json:"agent_name"`
	InputData    datatypes.JSONMap `gorm:"type:jsonb" json:"input_data"`
	ResponseData datatypes.JSON    `gorm:"type:jsonb" json:"response_data"`
	CreatedAt    time.Time         `json:"created_at"`

	// Relationships
	User User `gorm:"foreignKey:UserID" json:"-"`
}

func (AgentLog) TableName() string {
	return "agent_logs"
}
