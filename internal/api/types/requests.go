package types

type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Name     string `json:"name" validate:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type SkillCreateRequest struct {
	Name           string   `json:"name" validate:"required"`
	Difficulty     int      `json:"difficulty" validate:"gte=1,lte=10"`
	Type           string   `json:"type" validate:"required,oneof=Regular Milestone Variation"`
	Category       string   `json:"category" validate:"required,oneof=Push Pull Legs"`
	Description    string   `json:"description"`
	PreviousSkills []string `json:"previous_skills"`
	NextSkills     []string `json:"next_skills"`
	Variations     []string `json:"variations"`
}

type SkillUpdateRequest struct {
	Name        *string  `json:"name" validate:"omitempty,min=1"`
	Difficulty  *int     `json:"difficulty" validate:"omitempty,gte=1,lte=10"`
	Type        *string  `json:"type" validate:"omitempty,oneof=Regular Milestone Variation"`
	Category    *string  `json:"category" validate:"omitempty,oneof=Push Pull Legs"`
	Description *string  `json:"description"`
	Variations  []string `json:"variations"`
}

// RelationshipsRequest carries the desired end state of both edge sets, not
// a delta.
type RelationshipsRequest struct {
	PreviousSkills []string `json:"previous_skills"`
	NextSkills     []string `json:"next_skills"`
}
