package models

import (
	"time"

	"gorm.io/gorm"
)

// RoleName is the closed set of access tiers. Unknown names must go through
// ParseRoleName so the student fallback is an explicit, logged decision at the
// call site rather than an implicit default branch.
type RoleName string

const (
	RoleStudent RoleName = "student"
	RoleTeacher RoleName = "teacher"
	RoleAdmin   RoleName = "admin"
)

// ParseRoleName maps a stored role name onto the closed set. The second return
// is false when the name is unrecognized; callers decide (and log) the fallback.
func ParseRoleName(name string) (RoleName, bool) {
	switch RoleName(name) {
	case RoleStudent:
		return RoleStudent, true
	case RoleTeacher:
		return RoleTeacher, true
	case RoleAdmin:
		return RoleAdmin, true
	default:
		return RoleStudent, false
	}
}

type Role struct {
	ID          string         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Name        string         `gorm:"uniqueIndex;not null" json:"name"`
	Description string         `gorm:"type:text" json:"description"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Profiles []Profile         `gorm:"foreignKey:RoleID" json:"profiles,omitempty"`
	Grants   []RoleAgentAccess `gorm:"foreignKey:RoleID" json:"grants,omitempty"`
}

// RoleAgentAccess is a boolean grant edge authorizing a role to invoke an
// agent. Absence of a row means no access (default-deny).
type RoleAgentAccess struct {
	ID        string         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	RoleID    string         `gorm:"type:uuid;not null;index:idx_role_agent,unique" json:"role_id"`
	AgentID   string         `gorm:"type:uuid;not null;index:idx_role_agent,unique" json:"agent_id"`
	CanAccess bool           `gorm:"not null;default:false" json:"can_access"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Role  Role   `gorm:"foreignKey:RoleID" json:"role,omitempty"`
	Agent *Agent `gorm:"foreignKey:AgentID" json:"agent,omitempty"`
}

func (RoleAgentAccess) TableName() string {
	return "role_agent_access"
}
