package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/calisthenix/engine/internal/models"
	appErr "github.com/calisthenix/engine/pkg/errors"
)

func newTestSkill(name string, difficulty int) *models.Skill {
	return &models.Skill{
		ID:             uuid.New(),
		Name:           name,
		Difficulty:     difficulty,
		Type:           models.SkillTypeRegular,
		Category:       models.CategoryPush,
		PreviousSkills: datatypes.NewJSONSlice([]string{}),
		NextSkills:     datatypes.NewJSONSlice([]string{}),
		Variations:     datatypes.NewJSONSlice([]string{}),
	}
}

func TestSkillService_CreateSkill(t *testing.T) {
	ctx := context.Background()

	t.Run("member is rejected", func(t *testing.T) {
		svc := NewSkillService(&mockSkillRepository{}, &mockAchievementRepository{})

		_, err := svc.CreateSkill(ctx, models.RoleMember, &CreateSkillInput{
			Name: "pushup", Difficulty: 2, Type: models.SkillTypeRegular, Category: models.CategoryPush,
		})
		require.True(t, appErr.IsCode(err, appErr.CodeForbidden))
	})

	t.Run("invalid difficulty is rejected", func(t *testing.T) {
		svc := NewSkillService(&mockSkillRepository{}, &mockAchievementRepository{})

		_, err := svc.CreateSkill(ctx, models.RoleAdmin, &CreateSkillInput{
			Name: "pushup", Difficulty: 11, Type: models.SkillTypeRegular, Category: models.CategoryPush,
		})
		require.True(t, appErr.IsCode(err, appErr.CodeInvalid))
	})

	t.Run("creates without edges", func(t *testing.T) {
		skills := &mockSkillRepository{}
		svc := NewSkillService(skills, &mockAchievementRepository{})

		id := uuid.New()
		skills.On("Create", mock.Anything, mock.AnythingOfType("*models.Skill")).
			Run(func(args mock.Arguments) {
				args.Get(1).(*models.Skill).ID = id
			}).Return(nil).Once()

		out, err := svc.CreateSkill(ctx, models.RoleAdmin, &CreateSkillInput{
			Name: "pushup", Difficulty: 2, Type: models.SkillTypeRegular, Category: models.CategoryPush,
		})
		require.NoError(t, err)
		require.Equal(t, id, out.ID)
		require.NotNil(t, out.Variations)
		skills.AssertExpectations(t)
	})
}

func TestSkillService_DeleteSkill(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()

	t.Run("member is rejected", func(t *testing.T) {
		svc := NewSkillService(&mockSkillRepository{}, &mockAchievementRepository{})

		err := svc.DeleteSkill(ctx, models.RoleMember, id)
		require.True(t, appErr.IsCode(err, appErr.CodeForbidden))
	})

	t.Run("blocked while achievements reference the skill", func(t *testing.T) {
		skills := &mockSkillRepository{}
		achievements := &mockAchievementRepository{}
		svc := NewSkillService(skills, achievements)

		achievements.On("CountBySkill", mock.Anything, id).Return(int64(3), nil).Once()

		err := svc.DeleteSkill(ctx, models.RoleAdmin, id)
		require.True(t, appErr.IsCode(err, appErr.CodeReferential))

		var ae *appErr.AppError
		require.ErrorAs(t, err, &ae)
		require.Equal(t, int64(3), ae.Meta["achievement_count"])

		// The record must never be touched when the guard trips.
		skills.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
		achievements.AssertExpectations(t)
	})

	t.Run("deletes when unreferenced", func(t *testing.T) {
		skills := &mockSkillRepository{}
		achievements := &mockAchievementRepository{}
		svc := NewSkillService(skills, achievements)

		achievements.On("CountBySkill", mock.Anything, id).Return(int64(0), nil).Once()
		skills.On("Delete", mock.Anything, id).Return(nil).Once()

		require.NoError(t, svc.DeleteSkill(ctx, models.RoleAdmin, id))
		mock.AssertExpectationsForObjects(t, skills, achievements)
	})
}

func TestSkillService_DeleteAllSkills(t *testing.T) {
	ctx := context.Background()

	t.Run("member is rejected", func(t *testing.T) {
		svc := NewSkillService(&mockSkillRepository{}, &mockAchievementRepository{})

		_, err := svc.DeleteAllSkills(ctx, models.RoleMember)
		require.True(t, appErr.IsCode(err, appErr.CodeForbidden))
	})

	t.Run("achievements go before skills", func(t *testing.T) {
		skills := &mockSkillRepository{}
		achievements := &mockAchievementRepository{}
		svc := NewSkillService(skills, achievements)

		achievementsCleared := false
		achievements.On("DeleteAll", mock.Anything).
			Run(func(mock.Arguments) { achievementsCleared = true }).
			Return(nil).Once()
		skills.On("DeleteAll", mock.Anything).
			Run(func(mock.Arguments) { require.True(t, achievementsCleared) }).
			Return(int64(42), nil).Once()

		n, err := svc.DeleteAllSkills(ctx, models.RoleAdmin)
		require.NoError(t, err)
		require.Equal(t, int64(42), n)
		mock.AssertExpectationsForObjects(t, skills, achievements)
	})
}

func TestSkillService_SyncRelationships_RequiresAdmin(t *testing.T) {
	svc := NewSkillService(&mockSkillRepository{}, &mockAchievementRepository{})

	err := svc.SyncRelationships(context.Background(), models.RoleMember, uuid.New(), nil, nil)
	require.True(t, appErr.IsCode(err, appErr.CodeForbidden))
}

func TestSkillService_GetRelationships(t *testing.T) {
	ctx := context.Background()
	skills := &mockSkillRepository{}
	svc := NewSkillService(skills, &mockAchievementRepository{})

	parent := newTestSkill("incline pushup", 1)
	variation := newTestSkill("wide pushup", 2)
	missing := uuid.NewString()

	target := newTestSkill("pushup", 2)
	target.PreviousSkills = datatypes.NewJSONSlice([]string{parent.ID.String(), missing})
	target.Variations = datatypes.NewJSONSlice([]string{variation.ID.String()})

	skills.On("GetByID", mock.Anything, target.ID, mock.AnythingOfType("*models.Skill")).
		Return(nil, target).Once()
	skills.On("ListByIDs", mock.Anything, []string{parent.ID.String(), missing, variation.ID.String()}).
		Return([]models.Skill{*parent, *variation}, nil).Once()

	rel, err := svc.GetRelationships(ctx, target.ID)
	require.NoError(t, err)

	// Ids that no longer resolve are dropped, the rest keep list order.
	require.Len(t, rel.Parents, 1)
	require.Equal(t, parent.ID, rel.Parents[0].ID)
	require.Empty(t, rel.Children)
	require.Len(t, rel.Variations, 1)
	require.Equal(t, variation.ID, rel.Variations[0].ID)
	skills.AssertExpectations(t)
}

func TestSkillService_Tree(t *testing.T) {
	ctx := context.Background()
	skills := &mockSkillRepository{}
	svc := NewSkillService(skills, &mockAchievementRepository{})

	root := newTestSkill("incline pushup", 1)
	child := newTestSkill("pushup", 2)
	child.PreviousSkills = datatypes.NewJSONSlice([]string{root.ID.String()})

	skills.On("ListSkills", mock.Anything).Return([]models.Skill{*root, *child}, nil).Once()

	roots, err := svc.Tree(ctx)
	require.NoError(t, err)
	require.Len(t, roots, 1)
	require.Equal(t, root.ID, roots[0].Skill.ID)
	require.Len(t, roots[0].Children, 1)
	require.Equal(t, child.ID, roots[0].Children[0].Skill.ID)
}

func TestSkillService_ListWithStats(t *testing.T) {
	ctx := context.Background()

	t.Run("member is rejected", func(t *testing.T) {
		svc := NewSkillService(&mockSkillRepository{}, &mockAchievementRepository{})

		_, err := svc.ListWithStats(ctx, models.RoleMember)
		require.True(t, appErr.IsCode(err, appErr.CodeForbidden))
	})

	t.Run("joins achievement counts", func(t *testing.T) {
		skills := &mockSkillRepository{}
		achievements := &mockAchievementRepository{}
		svc := NewSkillService(skills, achievements)

		popular := newTestSkill("pushup", 2)
		unloved := newTestSkill("one arm pushup", 9)

		skills.On("ListSkills", mock.Anything).Return([]models.Skill{*popular, *unloved}, nil).Once()
		achievements.On("CountPerSkill", mock.Anything).
			Return(map[uuid.UUID]int64{popular.ID: 7}, nil).Once()

		stats, err := svc.ListWithStats(ctx, models.RoleAdmin)
		require.NoError(t, err)
		require.Len(t, stats, 2)
		require.Equal(t, int64(7), stats[0].UserCount)
		require.Equal(t, int64(0), stats[1].UserCount)
	})
}

func TestSkillService_UpdateSkill_AppliesPartialFields(t *testing.T) {
	ctx := context.Background()
	skills := &mockSkillRepository{}
	svc := NewSkillService(skills, &mockAchievementRepository{})

	existing := newTestSkill("pushup", 2)
	existing.NextSkills = datatypes.NewJSONSlice([]string{uuid.NewString()})

	skills.On("GetByID", mock.Anything, existing.ID, mock.AnythingOfType("*models.Skill")).
		Return(nil, existing).Once()

	var saved *models.Skill
	skills.On("Update", mock.Anything, mock.AnythingOfType("*models.Skill")).
		Run(func(args mock.Arguments) {
			saved = args.Get(1).(*models.Skill)
		}).Return(nil).Once()

	newName := "full pushup"
	newDifficulty := 3
	out, err := svc.UpdateSkill(ctx, models.RoleAdmin, existing.ID, &UpdateSkillInput{
		Name:       &newName,
		Difficulty: &newDifficulty,
	})
	require.NoError(t, err)
	require.Equal(t, "full pushup", out.Name)
	require.Equal(t, 3, out.Difficulty)
	require.Equal(t, existing.Category, out.Category)

	// Edge lists never change through the record update path.
	require.Equal(t, existing.NextSkills, saved.NextSkills)
	skills.AssertExpectations(t)
}
