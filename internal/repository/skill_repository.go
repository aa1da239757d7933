package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/calisthenix/engine/internal/graph"
	"github.com/calisthenix/engine/internal/models"
	appErr "github.com/calisthenix/engine/pkg/errors"
)

// SkillRepository also satisfies graph.Store so the relationship engine can
// read and patch records without knowing about gorm.
type SkillRepository interface {
	BaseRepository[models.Skill]
	graph.Store
	ListByCategory(ctx context.Context, category models.Category) ([]models.Skill, error)
	ListByIDs(ctx context.Context, ids []string) ([]models.Skill, error)
	DeleteAll(ctx context.Context) (int64, error)
	SumDifficultyByCategory(ctx context.Context) (map[models.Category]int, error)
}

type skillRepository struct {
	BaseRepository[models.Skill]
	db *gorm.DB
}

func NewSkillRepository(db *gorm.DB) SkillRepository {
	return &skillRepository{BaseRepository: NewBaseRepository[models.Skill](db), db: db}
}

var _ graph.Store = (SkillRepository)(nil)

func (r *skillRepository) GetSkill(ctx context.Context, id string) (*models.Skill, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, appErr.New(appErr.CodeNotFound, "skill not found").WithMeta("id", id)
	}
	var s models.Skill
	if err := r.GetByID(ctx, uid, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// ListSkills returns every skill ordered by difficulty, the canonical read
// for tree building and overlays.
func (r *skillRepository) ListSkills(ctx context.Context) ([]models.Skill, error) {
	var out []models.Skill
	if err := r.db.WithContext(ctx).Order("difficulty ASC, created_at ASC").Find(&out).Error; err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInternal, "list skills failed")
	}
	return out, nil
}

func (r *skillRepository) ListByCategory(ctx context.Context, category models.Category) ([]models.Skill, error) {
	var out []models.Skill
	if err := r.db.WithContext(ctx).Where("category = ?", category).Order("difficulty ASC, created_at ASC").Find(&out).Error; err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInternal, "list skills by category failed")
	}
	return out, nil
}

func (r *skillRepository) ListByIDs(ctx context.Context, ids []string) ([]models.Skill, error) {
	uids := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if uid, err := uuid.Parse(id); err == nil {
			uids = append(uids, uid)
		}
	}
	if len(uids) == 0 {
		return nil, nil
	}
	var out []models.Skill
	if err := r.db.WithContext(ctx).Where("id IN ?", uids).Find(&out).Error; err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInternal, "list skills by ids failed")
	}
	return out, nil
}

// UpdateSkillEdges writes only the two edge columns, leaving the rest of the
// record alone. One record per call; the engine composes these into a full
// sync.
func (r *skillRepository) UpdateSkillEdges(ctx context.Context, id string, previous, next []string) error {
	uid, err := uuid.Parse(id)
	if err != nil {
		return appErr.New(appErr.CodeNotFound, "skill not found").WithMeta("id", id)
	}
	if previous == nil {
		previous = []string{}
	}
	if next == nil {
		next = []string{}
	}
	res := r.db.WithContext(ctx).Model(&models.Skill{}).Where("id = ?", uid).Updates(map[string]any{
		"previous_skills": datatypes.NewJSONSlice(previous),
		"next_skills":     datatypes.NewJSONSlice(next),
	})
	if res.Error != nil {
		return appErr.Wrap(res.Error, appErr.CodeInternal, "update skill edges failed")
	}
	if res.RowsAffected == 0 {
		return appErr.New(appErr.CodeNotFound, "skill not found").WithMeta("id", id)
	}
	return nil
}

func (r *skillRepository) DeleteAll(ctx context.Context) (int64, error) {
	res := r.db.WithContext(ctx).Where("1 = 1").Delete(&models.Skill{})
	if res.Error != nil {
		return 0, appErr.Wrap(res.Error, appErr.CodeInternal, "delete all skills failed")
	}
	return res.RowsAffected, nil
}

func (r *skillRepository) SumDifficultyByCategory(ctx context.Context) (map[models.Category]int, error) {
	var rows []struct {
		Category models.Category
		Total    int
	}
	if err := r.db.WithContext(ctx).Model(&models.Skill{}).
		Select("category, COALESCE(SUM(difficulty), 0) AS total").
		Group("category").
		Scan(&rows).Error; err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInternal, "sum difficulty by category failed")
	}

	totals := map[models.Category]int{}
	for _, c := range models.Categories() {
		totals[c] = 0
	}
	for _, row := range rows {
		totals[row.Category] = row.Total
	}
	return totals, nil
}
