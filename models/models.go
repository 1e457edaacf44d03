package models

// This file serves as the central export point for all database models
// Import this package to access all model types

// All models are automatically exported from their respective files:
// - User, RefreshToken from user.go
// - Role, RoleName, RoleAgentAccess from role.go
// - Profile from profile.go
// - Agent, AgentLog from agent.go
// - TrainingSession, TrainingFeedback from training.go

// Database schema overview:
// 1. users - Managed by cookie-based authentication
// 2. roles - The three access tiers (student, teacher, admin)
// 3. profiles - One career/academic record per user, joined to exactly one role
// 4. agents - Externally hosted AI workflows, bound to a route and gated by role
// 5. role_agent_access - Boolean grant edges between roles and agents
// 6. agent_logs - Append-only audit trail of agent invocations
// 7. vaakshakti_sessions / vaakshakti_feedback - Voice-training practice records
