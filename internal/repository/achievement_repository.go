package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/calisthenix/engine/internal/models"
	appErr "github.com/calisthenix/engine/pkg/errors"
)

// AchievementRepository manages (user, skill) achievement records. It does
// not embed BaseRepository because the table is keyed by a composite primary
// key rather than a single id column.
type AchievementRepository interface {
	Create(ctx context.Context, a *models.Achievement) error
	Delete(ctx context.Context, userID, skillID uuid.UUID) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Achievement, error)
	CountBySkill(ctx context.Context, skillID uuid.UUID) (int64, error)
	CountPerSkill(ctx context.Context) (map[uuid.UUID]int64, error)
	DeleteAll(ctx context.Context) error
}

type achievementRepository struct {
	db *gorm.DB
}

func NewAchievementRepository(db *gorm.DB) AchievementRepository {
	return &achievementRepository{db: db}
}

func (r *achievementRepository) Create(ctx context.Context, a *models.Achievement) error {
	if err := r.db.WithContext(ctx).Create(a).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return appErr.New(appErr.CodeAlreadyExists, "skill already achieved")
		}
		return appErr.Wrap(err, appErr.CodeInternal, "create achievement failed")
	}
	return nil
}

func (r *achievementRepository) Delete(ctx context.Context, userID, skillID uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("user_id = ? AND skill_id = ?", userID, skillID).Delete(&models.Achievement{})
	if res.Error != nil {
		return appErr.Wrap(res.Error, appErr.CodeInternal, "delete achievement failed")
	}
	if res.RowsAffected == 0 {
		return appErr.New(appErr.CodeNotFound, "achievement not found")
	}
	return nil
}

func (r *achievementRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Achievement, error) {
	var out []models.Achievement
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("achieved_at DESC").Find(&out).Error; err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInternal, "list achievements failed")
	}
	return out, nil
}

func (r *achievementRepository) CountBySkill(ctx context.Context, skillID uuid.UUID) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.Achievement{}).Where("skill_id = ?", skillID).Count(&n).Error; err != nil {
		return 0, appErr.Wrap(err, appErr.CodeInternal, "count achievements failed")
	}
	return n, nil
}

func (r *achievementRepository) CountPerSkill(ctx context.Context) (map[uuid.UUID]int64, error) {
	var rows []struct {
		SkillID uuid.UUID
		Total   int64
	}
	if err := r.db.WithContext(ctx).Model(&models.Achievement{}).
		Select("skill_id, COUNT(*) AS total").
		Group("skill_id").
		Scan(&rows).Error; err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInternal, "count achievements per skill failed")
	}
	out := make(map[uuid.UUID]int64, len(rows))
	for _, row := range rows {
		out[row.SkillID] = row.Total
	}
	return out, nil
}

func (r *achievementRepository) DeleteAll(ctx context.Context) error {
	if err := r.db.WithContext(ctx).Where("1 = 1").Delete(&models.Achievement{}).Error; err != nil {
		return appErr.Wrap(err, appErr.CodeInternal, "delete all achievements failed")
	}
	return nil
}
