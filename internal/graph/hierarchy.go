package graph

import (
	"github.com/calisthenix/engine/internal/models"
)

// Node is a transient display tree node: a skill plus its children in input
// order. Rebuilt on every read, never persisted.
type Node struct {
	Skill    models.Skill `json:"skill"`
	Children []*Node      `json:"children,omitempty"`
}

// ParentedSkill is the single-parent view of progression consumed by
// BuildHierarchy. Parent is nil for roots.
type ParentedSkill struct {
	Skill  models.Skill
	Parent *string
}

// ReduceToParents derives the single-parent display view from the canonical
// multi-prerequisite edge lists. The lowest-difficulty prerequisite becomes
// the display parent; ties break by list order. A prerequisite id that is not
// in the collection loses to any that is, but still becomes the parent when
// it is the only candidate, which makes BuildHierarchy drop the skill.
func ReduceToParents(skills []models.Skill) []ParentedSkill {
	byID := make(map[string]*models.Skill, len(skills))
	for i := range skills {
		byID[skills[i].ID.String()] = &skills[i]
	}

	out := make([]ParentedSkill, 0, len(skills))
	for i := range skills {
		ps := ParentedSkill{Skill: skills[i]}
		var bestID string
		bestDifficulty := 0
		bestKnown := false
		for _, prev := range skills[i].PreviousSkills {
			candidate, known := byID[prev]
			switch {
			case bestID == "":
				bestID = prev
				bestKnown = known
				if known {
					bestDifficulty = candidate.Difficulty
				}
			case known && !bestKnown:
				bestID = prev
				bestKnown = true
				bestDifficulty = candidate.Difficulty
			case known && bestKnown && candidate.Difficulty < bestDifficulty:
				bestID = prev
				bestDifficulty = candidate.Difficulty
			}
		}
		if bestID != "" {
			id := bestID
			ps.Parent = &id
		}
		out = append(out, ps)
	}
	return out
}

// BuildHierarchy converts the flat single-parent collection into zero or more
// rooted trees. Pure and deterministic: children and roots keep input order.
// A skill whose parent id is not in the input is dropped entirely (it is
// nobody's child and, having a non-nil parent, not a root either). Cyclic
// parent chains are not detected; their members simply never reach the root
// list.
func BuildHierarchy(skills []ParentedSkill) []*Node {
	nodes := make(map[string]*Node, len(skills))
	for i := range skills {
		nodes[skills[i].Skill.ID.String()] = &Node{Skill: skills[i].Skill}
	}

	for i := range skills {
		if skills[i].Parent == nil {
			continue
		}
		parent, ok := nodes[*skills[i].Parent]
		if !ok {
			continue
		}
		parent.Children = append(parent.Children, nodes[skills[i].Skill.ID.String()])
	}

	var roots []*Node
	for i := range skills {
		if skills[i].Parent == nil {
			roots = append(roots, nodes[skills[i].Skill.ID.String()])
		}
	}
	return roots
}
