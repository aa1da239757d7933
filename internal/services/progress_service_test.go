package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/calisthenix/engine/internal/models"
	appErr "github.com/calisthenix/engine/pkg/errors"
)

func TestProgressService_Achieve(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	t.Run("records the achievement", func(t *testing.T) {
		skills := &mockSkillRepository{}
		achievements := &mockAchievementRepository{}
		svc := NewProgressService(skills, achievements, nil)

		sk := newTestSkill("pullup", 4)
		skills.On("GetByID", mock.Anything, sk.ID, mock.AnythingOfType("*models.Skill")).
			Return(nil, sk).Once()
		achievements.On("Create", mock.Anything, mock.MatchedBy(func(a *models.Achievement) bool {
			return a.UserID == userID && a.SkillID == sk.ID && !a.AchievedAt.IsZero()
		})).Return(nil).Once()

		require.NoError(t, svc.Achieve(ctx, userID, sk.ID))
		mock.AssertExpectationsForObjects(t, skills, achievements)
	})

	t.Run("unknown skill", func(t *testing.T) {
		skills := &mockSkillRepository{}
		achievements := &mockAchievementRepository{}
		svc := NewProgressService(skills, achievements, nil)

		id := uuid.New()
		skills.On("GetByID", mock.Anything, id, mock.AnythingOfType("*models.Skill")).
			Return(appErr.New(appErr.CodeNotFound, "entity not found"), nil).Once()

		err := svc.Achieve(ctx, userID, id)
		require.True(t, appErr.IsCode(err, appErr.CodeNotFound))
		achievements.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("already achieved", func(t *testing.T) {
		skills := &mockSkillRepository{}
		achievements := &mockAchievementRepository{}
		svc := NewProgressService(skills, achievements, nil)

		sk := newTestSkill("pullup", 4)
		skills.On("GetByID", mock.Anything, sk.ID, mock.AnythingOfType("*models.Skill")).
			Return(nil, sk).Once()
		achievements.On("Create", mock.Anything, mock.Anything).
			Return(appErr.New(appErr.CodeAlreadyExists, "skill already achieved")).Once()

		err := svc.Achieve(ctx, userID, sk.ID)
		require.True(t, appErr.IsCode(err, appErr.CodeAlreadyExists))
	})
}

func TestProgressService_Unachieve(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	skillID := uuid.New()

	t.Run("removes the achievement", func(t *testing.T) {
		achievements := &mockAchievementRepository{}
		svc := NewProgressService(&mockSkillRepository{}, achievements, nil)

		achievements.On("Delete", mock.Anything, userID, skillID).Return(nil).Once()
		require.NoError(t, svc.Unachieve(ctx, userID, skillID))
		achievements.AssertExpectations(t)
	})

	t.Run("not achieved", func(t *testing.T) {
		achievements := &mockAchievementRepository{}
		svc := NewProgressService(&mockSkillRepository{}, achievements, nil)

		achievements.On("Delete", mock.Anything, userID, skillID).
			Return(appErr.New(appErr.CodeNotFound, "achievement not found")).Once()

		err := svc.Unachieve(ctx, userID, skillID)
		require.True(t, appErr.IsCode(err, appErr.CodeNotFound))
	})
}

func TestProgressService_Overview(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	skills := &mockSkillRepository{}
	achievements := &mockAchievementRepository{}
	svc := NewProgressService(skills, achievements, nil)

	push := newTestSkill("pushup", 2)
	pull := newTestSkill("pullup", 4)
	pull.Category = models.CategoryPull

	skills.On("ListSkills", mock.Anything).Return([]models.Skill{*push, *pull}, nil).Once()
	achievements.On("ListByUser", mock.Anything, userID).Return([]models.Achievement{
		{UserID: userID, SkillID: push.ID, AchievedAt: time.Now()},
	}, nil).Once()

	p, err := svc.Overview(ctx, userID)
	require.NoError(t, err)
	require.Equal(t, 1, p.Categories[models.CategoryPush].Achieved)
	require.Equal(t, 1, p.Categories[models.CategoryPush].Total)
	require.Equal(t, 0, p.Categories[models.CategoryPull].Achieved)
	require.Equal(t, 0, p.Categories[models.CategoryLegs].Total)
	require.True(t, p.IsAchieved(push.ID.String()))
}

func TestProgressService_TreeWithProgress(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	skills := &mockSkillRepository{}
	achievements := &mockAchievementRepository{}
	svc := NewProgressService(skills, achievements, nil)

	skills.On("ListSkills", mock.Anything).Return([]models.Skill{}, nil).Once()
	achievements.On("ListByUser", mock.Anything, userID).Return([]models.Achievement{}, nil).Once()

	out, err := svc.TreeWithProgress(ctx, userID)
	require.NoError(t, err)
	require.Empty(t, out.Roots)
	require.NotNil(t, out.Progress)
	require.Len(t, out.Progress.Categories, 3)
}
