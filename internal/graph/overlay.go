package graph

import (
	"github.com/calisthenix/engine/internal/models"
)

// CategoryProgress is the per-category completion count for one user.
type CategoryProgress struct {
	Achieved int     `json:"achieved"`
	Total    int     `json:"total"`
	Ratio    float64 `json:"ratio"`
}

// Progress merges a user's achievement set onto the skill collection. Purely
// presentational: achieving a skill does not imply its prerequisites, and no
// ordering is enforced.
type Progress struct {
	Categories map[models.Category]CategoryProgress `json:"categories"`

	achieved map[string]struct{}
}

// IsAchieved reports set membership for the given skill id.
func (p *Progress) IsAchieved(id string) bool {
	_, ok := p.achieved[id]
	return ok
}

// Overlay computes per-category completion for the given achieved-id set.
// A category with zero skills reports {0, 0, 0}, never a division error.
func Overlay(skills []models.Skill, achievedIDs map[string]struct{}) *Progress {
	p := &Progress{
		Categories: make(map[models.Category]CategoryProgress, 3),
		achieved:   achievedIDs,
	}
	if p.achieved == nil {
		p.achieved = map[string]struct{}{}
	}

	for _, c := range models.Categories() {
		p.Categories[c] = CategoryProgress{}
	}
	for i := range skills {
		cp := p.Categories[skills[i].Category]
		cp.Total++
		if p.IsAchieved(skills[i].ID.String()) {
			cp.Achieved++
		}
		p.Categories[skills[i].Category] = cp
	}
	for c, cp := range p.Categories {
		if cp.Total > 0 {
			cp.Ratio = float64(cp.Achieved) / float64(cp.Total)
		}
		p.Categories[c] = cp
	}
	return p
}
