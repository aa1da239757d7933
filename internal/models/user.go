package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ExperienceLevel classifies a user by cumulative skill score.
type ExperienceLevel string

const (
	ExperienceBeginner     ExperienceLevel = "Beginner"
	ExperienceIntermediate ExperienceLevel = "Intermediate"
	ExperienceAdvanced     ExperienceLevel = "Advanced"
	ExperienceExpert       ExperienceLevel = "Expert"
)

// Role gates write access to the skill collection.
type Role string

const (
	RoleAdmin  Role = "Admin"
	RoleMember Role = "Member"
)

// User represents a platform user with per-category fitness scores. Scores
// and experience level are recomputed by the worker after achievement
// changes; the core reads them but never mutates them inline.
type User struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Email           string          `gorm:"uniqueIndex;not null" json:"email" validate:"required,email"`
	PasswordHash    string          `gorm:"not null" json:"-"`
	Name            string          `gorm:"not null" json:"name" validate:"required"`
	PushScore       int             `gorm:"not null;default:0" json:"push_score"`
	PullScore       int             `gorm:"not null;default:0" json:"pull_score"`
	LegsScore       int             `gorm:"not null;default:0" json:"legs_score"`
	ExperienceLevel ExperienceLevel `gorm:"type:varchar(16);not null;default:'Beginner'" json:"experience_level"`
	Role            Role            `gorm:"type:varchar(8);not null;default:'Member'" json:"role"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
	DeletedAt       gorm.DeletedAt  `gorm:"index" json:"-"`
}
