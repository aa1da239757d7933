package services

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/calisthenix/engine/internal/graph"
	"github.com/calisthenix/engine/internal/models"
	"github.com/calisthenix/engine/internal/repository"
	appErr "github.com/calisthenix/engine/pkg/errors"
	"github.com/calisthenix/engine/pkg/logger"
)

// SkillService owns the skill collection. Every mutating entry point takes
// the caller's role explicitly; nothing is read from ambient state.
type SkillService interface {
	CreateSkill(ctx context.Context, role models.Role, input *CreateSkillInput) (*models.Skill, error)
	GetSkill(ctx context.Context, id uuid.UUID) (*models.Skill, error)
	ListSkills(ctx context.Context, category *models.Category) ([]models.Skill, error)
	UpdateSkill(ctx context.Context, role models.Role, id uuid.UUID, input *UpdateSkillInput) (*models.Skill, error)
	DeleteSkill(ctx context.Context, role models.Role, id uuid.UUID) error
	DeleteAllSkills(ctx context.Context, role models.Role) (int64, error)

	SyncRelationships(ctx context.Context, role models.Role, id uuid.UUID, previous, next []string) error
	GetRelationships(ctx context.Context, id uuid.UUID) (*SkillRelationships, error)

	Tree(ctx context.Context) ([]*graph.Node, error)
	CategoryTotals(ctx context.Context) (map[models.Category]int, error)
	ListWithStats(ctx context.Context, role models.Role) ([]SkillStats, error)
}

type CreateSkillInput struct {
	Name           string           `validate:"required"`
	Difficulty     int              `validate:"gte=1,lte=10"`
	Type           models.SkillType `validate:"required,oneof=Regular Milestone Variation"`
	Category       models.Category  `validate:"required,oneof=Push Pull Legs"`
	Description    string
	PreviousSkills []string
	NextSkills     []string
	Variations     []string
}

type UpdateSkillInput struct {
	Name        *string `validate:"omitempty,min=1"`
	Difficulty  *int    `validate:"omitempty,gte=1,lte=10"`
	Type        *models.SkillType
	Category    *models.Category
	Description *string
	Variations  []string
}

// SkillRelationships resolves a skill's edge lists into full records, in
// list order, dropping ids that no longer resolve.
type SkillRelationships struct {
	Parents    []models.Skill `json:"parents"`
	Children   []models.Skill `json:"children"`
	Variations []models.Skill `json:"variations"`
}

type SkillStats struct {
	models.Skill
	UserCount int64 `json:"user_count"`
}

type skillService struct {
	skills       repository.SkillRepository
	achievements repository.AchievementRepository
	engine       *graph.Engine
	validate     *validator.Validate
}

func NewSkillService(skills repository.SkillRepository, achievements repository.AchievementRepository) SkillService {
	return &skillService{
		skills:       skills,
		achievements: achievements,
		engine:       graph.NewEngine(skills),
		validate:     validator.New(validator.WithRequiredStructEnabled()),
	}
}

var _ SkillService = (*skillService)(nil)

func requireAdmin(role models.Role) error {
	if role != models.RoleAdmin {
		return appErr.New(appErr.CodeForbidden, "admin role required")
	}
	return nil
}

func (s *skillService) CreateSkill(ctx context.Context, role models.Role, input *CreateSkillInput) (*models.Skill, error) {
	if err := requireAdmin(role); err != nil {
		return nil, err
	}
	if err := s.validate.Struct(input); err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInvalid, "invalid skill")
	}

	sk := &models.Skill{
		Name:           input.Name,
		Difficulty:     input.Difficulty,
		Type:           input.Type,
		Category:       input.Category,
		Description:    input.Description,
		PreviousSkills: datatypes.NewJSONSlice([]string{}),
		NextSkills:     datatypes.NewJSONSlice([]string{}),
		Variations:     datatypes.NewJSONSlice(emptyIfNil(input.Variations)),
	}
	if err := s.skills.Create(ctx, sk); err != nil {
		return nil, err
	}

	// Edges go through the engine so reverse links land on the neighbors.
	if len(input.PreviousSkills) > 0 || len(input.NextSkills) > 0 {
		if err := s.engine.SyncRelationships(ctx, sk.ID.String(), input.PreviousSkills, input.NextSkills); err != nil {
			return nil, err
		}
		var out models.Skill
		if err := s.skills.GetByID(ctx, sk.ID, &out); err != nil {
			return nil, err
		}
		sk = &out
	}

	logger.L().Info("skill created", zap.String("skill_id", sk.ID.String()), zap.String("name", sk.Name))
	return sk, nil
}

func (s *skillService) GetSkill(ctx context.Context, id uuid.UUID) (*models.Skill, error) {
	var sk models.Skill
	if err := s.skills.GetByID(ctx, id, &sk); err != nil {
		return nil, err
	}
	return &sk, nil
}

func (s *skillService) ListSkills(ctx context.Context, category *models.Category) ([]models.Skill, error) {
	if category != nil {
		return s.skills.ListByCategory(ctx, *category)
	}
	return s.skills.ListSkills(ctx)
}

func (s *skillService) UpdateSkill(ctx context.Context, role models.Role, id uuid.UUID, input *UpdateSkillInput) (*models.Skill, error) {
	if err := requireAdmin(role); err != nil {
		return nil, err
	}
	if err := s.validate.Struct(input); err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInvalid, "invalid skill update")
	}

	var sk models.Skill
	if err := s.skills.GetByID(ctx, id, &sk); err != nil {
		return nil, err
	}

	if input.Name != nil {
		sk.Name = *input.Name
	}
	if input.Difficulty != nil {
		sk.Difficulty = *input.Difficulty
	}
	if input.Type != nil {
		sk.Type = *input.Type
	}
	if input.Category != nil {
		sk.Category = *input.Category
	}
	if input.Description != nil {
		sk.Description = *input.Description
	}
	if input.Variations != nil {
		sk.Variations = datatypes.NewJSONSlice(input.Variations)
	}

	// Edge lists are deliberately not updatable here; SyncRelationships is
	// the single write path for the prerequisite graph.
	if err := s.skills.Update(ctx, &sk); err != nil {
		return nil, err
	}
	logger.L().Info("skill updated", zap.String("skill_id", id.String()))
	return &sk, nil
}

// DeleteSkill refuses to remove a skill any user has achieved; the record
// stays untouched and the caller is told to archive instead.
func (s *skillService) DeleteSkill(ctx context.Context, role models.Role, id uuid.UUID) error {
	if err := requireAdmin(role); err != nil {
		return err
	}
	n, err := s.achievements.CountBySkill(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return appErr.New(appErr.CodeReferential,
			"cannot delete a skill that users have achieved; consider archiving instead").
			WithMeta("achievement_count", n)
	}
	if err := s.skills.Delete(ctx, id); err != nil {
		return err
	}
	logger.L().Info("skill deleted", zap.String("skill_id", id.String()))
	return nil
}

// DeleteAllSkills is the unconditional reset: every achievement goes first,
// then every skill. It bypasses the per-skill guard on purpose.
func (s *skillService) DeleteAllSkills(ctx context.Context, role models.Role) (int64, error) {
	if err := requireAdmin(role); err != nil {
		return 0, err
	}
	if err := s.achievements.DeleteAll(ctx); err != nil {
		return 0, err
	}
	n, err := s.skills.DeleteAll(ctx)
	if err != nil {
		return 0, err
	}
	logger.L().Warn("all skills deleted", zap.Int64("count", n))
	return n, nil
}

func (s *skillService) SyncRelationships(ctx context.Context, role models.Role, id uuid.UUID, previous, next []string) error {
	if err := requireAdmin(role); err != nil {
		return err
	}
	return s.engine.SyncRelationships(ctx, id.String(), previous, next)
}

func (s *skillService) GetRelationships(ctx context.Context, id uuid.UUID) (*SkillRelationships, error) {
	var sk models.Skill
	if err := s.skills.GetByID(ctx, id, &sk); err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(sk.PreviousSkills)+len(sk.NextSkills)+len(sk.Variations))
	ids = append(ids, sk.PreviousSkills...)
	ids = append(ids, sk.NextSkills...)
	ids = append(ids, sk.Variations...)

	rel := &SkillRelationships{Parents: []models.Skill{}, Children: []models.Skill{}, Variations: []models.Skill{}}
	if len(ids) == 0 {
		return rel, nil
	}

	related, err := s.skills.ListByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]models.Skill, len(related))
	for _, r := range related {
		byID[r.ID.String()] = r
	}

	for _, pid := range sk.PreviousSkills {
		if r, ok := byID[pid]; ok {
			rel.Parents = append(rel.Parents, r)
		}
	}
	for _, nid := range sk.NextSkills {
		if r, ok := byID[nid]; ok {
			rel.Children = append(rel.Children, r)
		}
	}
	for _, vid := range sk.Variations {
		if r, ok := byID[vid]; ok {
			rel.Variations = append(rel.Variations, r)
		}
	}
	return rel, nil
}

func (s *skillService) Tree(ctx context.Context) ([]*graph.Node, error) {
	skills, err := s.skills.ListSkills(ctx)
	if err != nil {
		return nil, err
	}
	return graph.BuildHierarchy(graph.ReduceToParents(skills)), nil
}

func (s *skillService) CategoryTotals(ctx context.Context) (map[models.Category]int, error) {
	return s.skills.SumDifficultyByCategory(ctx)
}

func (s *skillService) ListWithStats(ctx context.Context, role models.Role) ([]SkillStats, error) {
	if err := requireAdmin(role); err != nil {
		return nil, err
	}
	skills, err := s.skills.ListSkills(ctx)
	if err != nil {
		return nil, err
	}
	counts, err := s.achievements.CountPerSkill(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]SkillStats, 0, len(skills))
	for _, sk := range skills {
		out = append(out, SkillStats{Skill: sk, UserCount: counts[sk.ID]})
	}
	return out, nil
}

func emptyIfNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}
