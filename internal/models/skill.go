package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// SkillType distinguishes ordinary progression steps from milestones and
// variations of another skill.
type SkillType string

const (
	SkillTypeRegular   SkillType = "Regular"
	SkillTypeMilestone SkillType = "Milestone"
	SkillTypeVariation SkillType = "Variation"
)

// Category is one of the three fixed training categories.
type Category string

const (
	CategoryPush Category = "Push"
	CategoryPull Category = "Pull"
	CategoryLegs Category = "Legs"
)

// Categories lists all categories in reporting order.
func Categories() []Category {
	return []Category{CategoryPush, CategoryPull, CategoryLegs}
}

// Skill is a unit of exercise progression. PreviousSkills and NextSkills are
// the two directions of the prerequisite graph and are kept symmetric by the
// relationship engine: B in A.NextSkills iff A in B.PreviousSkills.
// Variations are sibling alternatives and not part of the prerequisite graph.
type Skill struct {
	ID             uuid.UUID                   `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Name           string                      `gorm:"not null" json:"name" validate:"required"`
	Difficulty     int                         `gorm:"not null" json:"difficulty" validate:"gte=1,lte=10"`
	Type           SkillType                   `gorm:"type:varchar(16);not null" json:"type" validate:"required,oneof=Regular Milestone Variation"`
	Category       Category                    `gorm:"type:varchar(8);not null;index" json:"category" validate:"required,oneof=Push Pull Legs"`
	Description    string                      `gorm:"type:text" json:"description,omitempty"`
	PreviousSkills datatypes.JSONSlice[string] `gorm:"type:jsonb" json:"previous_skills"`
	NextSkills     datatypes.JSONSlice[string] `gorm:"type:jsonb" json:"next_skills"`
	Variations     datatypes.JSONSlice[string] `gorm:"type:jsonb" json:"variations"`
	CreatedAt      time.Time                   `json:"created_at"`
	UpdatedAt      time.Time                   `json:"updated_at"`
	DeletedAt      gorm.DeletedAt              `gorm:"index" json:"-"`
}
