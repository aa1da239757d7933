package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"github.com/calisthenix/engine/internal/graph"
	"github.com/calisthenix/engine/internal/models"
	"github.com/calisthenix/engine/internal/queue/tasks"
	"github.com/calisthenix/engine/internal/repository"
	"github.com/calisthenix/engine/pkg/logger"
)

// ProgressService covers achievement toggling and the read-side progress
// views. Callers pass the authenticated user id; toggling only ever touches
// that user's own records.
type ProgressService interface {
	Achieve(ctx context.Context, userID, skillID uuid.UUID) error
	Unachieve(ctx context.Context, userID, skillID uuid.UUID) error
	ListAchievements(ctx context.Context, userID uuid.UUID) ([]models.Achievement, error)

	Overview(ctx context.Context, userID uuid.UUID) (*graph.Progress, error)
	TreeWithProgress(ctx context.Context, userID uuid.UUID) (*TreeWithProgress, error)
}

type TreeWithProgress struct {
	Roots    []*graph.Node   `json:"roots"`
	Progress *graph.Progress `json:"progress"`
}

type progressService struct {
	skills       repository.SkillRepository
	achievements repository.AchievementRepository
	asynqClient  *asynq.Client
}

func NewProgressService(skills repository.SkillRepository, achievements repository.AchievementRepository, client *asynq.Client) ProgressService {
	return &progressService{skills: skills, achievements: achievements, asynqClient: client}
}

var _ ProgressService = (*progressService)(nil)

func (s *progressService) Achieve(ctx context.Context, userID, skillID uuid.UUID) error {
	var sk models.Skill
	if err := s.skills.GetByID(ctx, skillID, &sk); err != nil {
		return err
	}
	a := &models.Achievement{UserID: userID, SkillID: skillID, AchievedAt: time.Now().UTC()}
	if err := s.achievements.Create(ctx, a); err != nil {
		return err
	}
	logger.L().Info("skill achieved", zap.String("user_id", userID.String()), zap.String("skill_id", skillID.String()))
	s.enqueueRecalculate(ctx, userID)
	return nil
}

func (s *progressService) Unachieve(ctx context.Context, userID, skillID uuid.UUID) error {
	if err := s.achievements.Delete(ctx, userID, skillID); err != nil {
		return err
	}
	logger.L().Info("skill unachieved", zap.String("user_id", userID.String()), zap.String("skill_id", skillID.String()))
	s.enqueueRecalculate(ctx, userID)
	return nil
}

func (s *progressService) ListAchievements(ctx context.Context, userID uuid.UUID) ([]models.Achievement, error) {
	return s.achievements.ListByUser(ctx, userID)
}

func (s *progressService) Overview(ctx context.Context, userID uuid.UUID) (*graph.Progress, error) {
	skills, achieved, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	return graph.Overlay(skills, achieved), nil
}

func (s *progressService) TreeWithProgress(ctx context.Context, userID uuid.UUID) (*TreeWithProgress, error) {
	skills, achieved, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &TreeWithProgress{
		Roots:    graph.BuildHierarchy(graph.ReduceToParents(skills)),
		Progress: graph.Overlay(skills, achieved),
	}, nil
}

func (s *progressService) load(ctx context.Context, userID uuid.UUID) ([]models.Skill, map[string]struct{}, error) {
	skills, err := s.skills.ListSkills(ctx)
	if err != nil {
		return nil, nil, err
	}
	achievements, err := s.achievements.ListByUser(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	achieved := make(map[string]struct{}, len(achievements))
	for _, a := range achievements {
		achieved[a.SkillID.String()] = struct{}{}
	}
	return skills, achieved, nil
}

// enqueueRecalculate is best-effort: a missed recalculation only delays the
// next score refresh, it never blocks the achievement toggle.
func (s *progressService) enqueueRecalculate(ctx context.Context, userID uuid.UUID) {
	if s.asynqClient == nil {
		logger.L().Warn("asynq client not configured, skipping score recalculation", zap.String("user_id", userID.String()))
		return
	}
	pb, _ := json.Marshal(tasks.ScoresPayload{UserID: userID.String()})
	task := asynq.NewTask(tasks.TypeScoresRecalculate, pb)
	if _, err := s.asynqClient.EnqueueContext(ctx, task); err != nil {
		logger.L().Error("enqueue score recalculation failed", zap.Error(err), zap.String("user_id", userID.String()))
	}
}
