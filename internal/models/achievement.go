package models

import (
	"time"

	"github.com/google/uuid"
)

// Achievement records that a user has completed a skill. Created when the
// user marks the skill achieved, removed when unmarked, never mutated
// otherwise.
type Achievement struct {
	UserID     uuid.UUID `gorm:"type:uuid;primaryKey" json:"user_id"`
	SkillID    uuid.UUID `gorm:"type:uuid;primaryKey;index" json:"skill_id"`
	AchievedAt time.Time `gorm:"not null" json:"achieved_at"`
}

// TableName keeps the historical table name.
func (Achievement) TableName() string { return "user_skills" }
