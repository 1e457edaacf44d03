package models

import (
	"time"

	"gorm.io/gorm"
)

// TrainingSession is one recorded voice-practice attempt (the VaakShakti
// domain). FluencyScore is produced by an external scoring workflow and may be
// absent; a session is never mutated after scoring.
type TrainingSession struct {
	ID              string         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	UserID          string         `gorm:"type:uuid;not null;index" json:"user_id"`
	Question        string         `gorm:"type:text;not null" json:"question"`
	Transcript      string         `gorm:"type:text" json:"transcript"`
	DurationSeconds int            `gorm:"not null;default:0" json:"duration_seconds"`
	FluencyScore    *int           `json:"fluency_score,omitempty"`
	AudioURL        string         `gorm:"size:500" json:"audio_url,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	User     User              `gorm:"foreignKey:UserID" json:"-"`
	Feedback *TrainingFeedback `gorm:"foreignKey:SessionID" json:"feedback,omitempty"`
}

func (TrainingSession) TableName() string {
	return "vaakshakti_sessions"
}

// TrainingFeedback holds externally generated commentary for one session.
type TrainingFeedback struct {
	ID              string         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	SessionID       string         `gorm:"type:uuid;not null;uniqueIndex" json:"session_id"`
	GrammarFeedback string         `gorm:"type:text" json:"grammar_feedback,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Session TrainingSession `gorm:"foreignKey:SessionID" json:"-"`
}

func (TrainingFeedback) TableName() string {
	return "vaakshakti_feedback"
}

// ScoreBadge buckets a fluency score for display: "good" at 80 and above,
// "ok" at 60 and above, "poor" below, "none" when unscored.
func ScoreBadge(score *int) string {
	if score == nil {
		return "none"
	}
	switch {
	case *score >= 80:
		return "good"
	case *score >= 60:
		return "ok"
	default:
		return "poor"
	}
}
