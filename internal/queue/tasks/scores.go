package tasks

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"github.com/calisthenix/engine/internal/models"
	"github.com/calisthenix/engine/internal/repository"
	appErr "github.com/calisthenix/engine/pkg/errors"
	"github.com/calisthenix/engine/pkg/logger"
)

// TypeScoresRecalculate is enqueued after every achievement toggle.
const TypeScoresRecalculate = "scores:recalculate"

// ScoresPayload is the task payload for score recalculation tasks.
type ScoresPayload struct {
	UserID string `json:"user_id"`
}

// Experience level thresholds over the summed difficulty of achieved skills.
const (
	intermediateScore = 25
	advancedScore     = 75
	expertScore       = 150
)

// ScoreTaskHandler recomputes a user's per-category scores from their
// achievement set.
type ScoreTaskHandler struct {
	users        repository.UserRepository
	skills       repository.SkillRepository
	achievements repository.AchievementRepository
}

func NewScoreTaskHandler(users repository.UserRepository, skills repository.SkillRepository, achievements repository.AchievementRepository) *ScoreTaskHandler {
	return &ScoreTaskHandler{users: users, skills: skills, achievements: achievements}
}

// HandleRecalculate sums the difficulty of the user's achieved skills per
// category, derives the experience level from the grand total, and persists
// the result. The computation is a full rebuild, so replays are harmless.
func (h *ScoreTaskHandler) HandleRecalculate(ctx context.Context, t *asynq.Task) error {
	var p ScoresPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		logger.L().Error("invalid scores task payload", zap.Error(err))
		return err
	}
	userID, err := uuid.Parse(p.UserID)
	if err != nil {
		logger.L().Error("invalid user id in scores task", zap.Error(err))
		return err
	}

	achieved, err := h.achievements.ListByUser(ctx, userID)
	if err != nil {
		return err
	}
	skills, err := h.skills.ListSkills(ctx)
	if err != nil {
		return err
	}

	byID := make(map[uuid.UUID]models.Skill, len(skills))
	for _, sk := range skills {
		byID[sk.ID] = sk
	}

	totals := map[models.Category]int{}
	for _, a := range achieved {
		sk, ok := byID[a.SkillID]
		if !ok {
			// Achievement referencing a vanished skill; skip rather than fail.
			continue
		}
		totals[sk.Category] += sk.Difficulty
	}

	push := totals[models.CategoryPush]
	pull := totals[models.CategoryPull]
	legs := totals[models.CategoryLegs]
	level := LevelForScore(push + pull + legs)

	if err := h.users.UpdateScores(ctx, userID, push, pull, legs, level); err != nil {
		if appErr.IsCode(err, appErr.CodeNotFound) {
			// User deleted since enqueue; nothing to update.
			logger.L().Warn("scores task for missing user", zap.String("user_id", p.UserID))
			return nil
		}
		return err
	}

	logger.L().Info("user scores recalculated",
		zap.String("user_id", p.UserID),
		zap.Int("push", push),
		zap.Int("pull", pull),
		zap.Int("legs", legs),
		zap.String("level", string(level)),
	)
	return nil
}

// LevelForScore maps a cumulative score to an experience level.
func LevelForScore(total int) models.ExperienceLevel {
	switch {
	case total >= expertScore:
		return models.ExperienceExpert
	case total >= advancedScore:
		return models.ExperienceAdvanced
	case total >= intermediateScore:
		return models.ExperienceIntermediate
	default:
		return models.ExperienceBeginner
	}
}
