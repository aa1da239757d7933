package graph

import (
	"context"

	"go.uber.org/zap"

	"github.com/calisthenix/engine/internal/models"
	appErr "github.com/calisthenix/engine/pkg/errors"
	"github.com/calisthenix/engine/pkg/logger"
)

// Store is the minimal persistence surface the engine needs. Implementations
// must return an AppError with CodeNotFound when a skill id does not exist,
// and per-record atomic writes are assumed; no multi-record transaction is.
type Store interface {
	GetSkill(ctx context.Context, id string) (*models.Skill, error)
	ListSkills(ctx context.Context) ([]models.Skill, error)
	UpdateSkillEdges(ctx context.Context, id string, previous, next []string) error
}

// Engine keeps the prerequisite graph bidirectionally consistent under
// incremental edits. It holds no state between calls; every sync re-reads
// what it needs and writes record by record.
type Engine struct {
	store Store
}

func NewEngine(store Store) *Engine {
	return &Engine{store: store}
}

// SyncRelationships replaces the target skill's previous/next edge sets with
// the desired end state and patches every affected neighbor so the symmetry
// invariant holds: B in A.NextSkills iff A in B.PreviousSkills.
//
// The operation is idempotent: it diffs against current state, so retrying
// with the same arguments after a partial failure converges. Neighbor writes
// are not transactional; if one fails after the target was written the error
// carries CodePartialSync and names the neighbor, and no rollback happens.
func (e *Engine) SyncRelationships(ctx context.Context, skillID string, newPrevious, newNext []string) error {
	if err := validateEdgeInput(skillID, newPrevious, newNext); err != nil {
		return err
	}

	target, err := e.store.GetSkill(ctx, skillID)
	if err != nil {
		return err
	}

	oldPrevious := append([]string(nil), target.PreviousSkills...)
	oldNext := append([]string(nil), target.NextSkills...)

	removedPrev, addedPrev := diff(oldPrevious, newPrevious)
	removedNext, addedNext := diff(oldNext, newNext)

	if len(removedPrev)+len(addedPrev)+len(removedNext)+len(addedNext) == 0 &&
		equal(oldPrevious, newPrevious) && equal(oldNext, newNext) {
		// The target already holds the desired state, but a previous call may
		// have died between the target write and a neighbor patch. Verify the
		// reverse edges instead of returning outright; a consistent graph
		// costs reads only.
		return e.repairNeighbors(ctx, skillID, newPrevious, newNext)
	}

	if err := e.checkAcyclic(ctx, skillID, newPrevious, newNext, removedPrev); err != nil {
		return err
	}

	// Primary write: the target's own record carries the desired end state.
	if err := e.store.UpdateSkillEdges(ctx, skillID, newPrevious, newNext); err != nil {
		return err
	}

	// Previous side: neighbors hold the reverse edge in their next list.
	for _, id := range removedPrev {
		if err := e.patchNeighbor(ctx, id, func(n *models.Skill) ([]string, []string) {
			return n.PreviousSkills, remove(n.NextSkills, skillID)
		}); err != nil {
			return partialSync(err, skillID, id, "previous")
		}
	}
	for _, id := range addedPrev {
		if err := e.patchNeighbor(ctx, id, func(n *models.Skill) ([]string, []string) {
			return n.PreviousSkills, appendMissing(n.NextSkills, skillID)
		}); err != nil {
			return partialSync(err, skillID, id, "previous")
		}
	}

	// Next side: neighbors hold the reverse edge in their previous list.
	for _, id := range removedNext {
		if err := e.patchNeighbor(ctx, id, func(n *models.Skill) ([]string, []string) {
			return remove(n.PreviousSkills, skillID), n.NextSkills
		}); err != nil {
			return partialSync(err, skillID, id, "next")
		}
	}
	for _, id := range addedNext {
		if err := e.patchNeighbor(ctx, id, func(n *models.Skill) ([]string, []string) {
			return appendMissing(n.PreviousSkills, skillID), n.NextSkills
		}); err != nil {
			return partialSync(err, skillID, id, "next")
		}
	}

	logger.L().Info("skill relationships synced",
		zap.String("skill_id", skillID),
		zap.Int("neighbors_touched", len(removedPrev)+len(addedPrev)+len(removedNext)+len(addedNext)),
	)
	return nil
}

// repairNeighbors re-derives every reverse edge of skillID from the desired
// edge sets and patches only the neighbors that disagree. This is what makes
// retrying after a partial failure converge.
func (e *Engine) repairNeighbors(ctx context.Context, skillID string, previous, next []string) error {
	skills, err := e.store.ListSkills(ctx)
	if err != nil {
		return err
	}
	inPrev := make(map[string]bool, len(previous))
	for _, id := range previous {
		inPrev[id] = true
	}
	inNext := make(map[string]bool, len(next))
	for _, id := range next {
		inNext[id] = true
	}

	for i := range skills {
		n := &skills[i]
		id := n.ID.String()
		if id == skillID {
			continue
		}
		wantNext := []string(n.NextSkills)
		if inPrev[id] {
			wantNext = appendMissing(wantNext, skillID)
		} else {
			wantNext = remove(wantNext, skillID)
		}
		wantPrev := []string(n.PreviousSkills)
		if inNext[id] {
			wantPrev = appendMissing(wantPrev, skillID)
		} else {
			wantPrev = remove(wantPrev, skillID)
		}
		if equal(wantPrev, n.PreviousSkills) && equal(wantNext, n.NextSkills) {
			continue
		}
		side := "next"
		if !equal(wantNext, n.NextSkills) {
			side = "previous"
		}
		if err := e.store.UpdateSkillEdges(ctx, id, wantPrev, wantNext); err != nil {
			return partialSync(err, skillID, id, side)
		}
	}
	return nil
}

func (e *Engine) patchNeighbor(ctx context.Context, id string, fix func(*models.Skill) ([]string, []string)) error {
	n, err := e.store.GetSkill(ctx, id)
	if err != nil {
		return err
	}
	previous, next := fix(n)
	return e.store.UpdateSkillEdges(ctx, id, previous, next)
}

// checkAcyclic rejects an edit that would make the target reachable from
// itself through next edges. Pre-existing cycles elsewhere in the graph are
// not this edit's fault and are left alone.
func (e *Engine) checkAcyclic(ctx context.Context, skillID string, newPrevious, newNext, removedPrev []string) error {
	skills, err := e.store.ListSkills(ctx)
	if err != nil {
		return err
	}

	adj := make(map[string][]string, len(skills))
	for i := range skills {
		adj[skills[i].ID.String()] = append([]string(nil), skills[i].NextSkills...)
	}
	adj[skillID] = append([]string(nil), newNext...)
	for _, p := range removedPrev {
		adj[p] = remove(adj[p], skillID)
	}
	for _, p := range newPrevious {
		adj[p] = appendMissing(adj[p], skillID)
	}

	seen := map[string]bool{}
	stack := append([]string(nil), adj[skillID]...)
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if cur == skillID {
			return appErr.New(appErr.CodeInvalid, "relationship change would create a cycle").
				WithMeta("skill_id", skillID)
		}
		if seen[cur] {
			continue
		}
		seen[cur] = true
		stack = append(stack, adj[cur]...)
	}
	return nil
}

func validateEdgeInput(skillID string, previous, next []string) error {
	seenPrev := map[string]bool{}
	for _, id := range previous {
		if id == skillID {
			return appErr.New(appErr.CodeInvalid, "skill cannot be its own prerequisite")
		}
		if seenPrev[id] {
			return appErr.New(appErr.CodeInvalid, "duplicate id in previous skills").WithMeta("id", id)
		}
		seenPrev[id] = true
	}
	seenNext := map[string]bool{}
	for _, id := range next {
		if id == skillID {
			return appErr.New(appErr.CodeInvalid, "skill cannot be its own follow-up")
		}
		if seenNext[id] {
			return appErr.New(appErr.CodeInvalid, "duplicate id in next skills").WithMeta("id", id)
		}
		seenNext[id] = true
	}
	return nil
}

func partialSync(err error, skillID, neighborID, side string) error {
	logger.L().Error("relationship sync left graph partially updated",
		zap.String("skill_id", skillID),
		zap.String("neighbor_id", neighborID),
		zap.String("side", side),
		zap.Error(err),
	)
	return appErr.Wrap(err, appErr.CodePartialSync,
		"target updated but a neighbor link may be stale; retry the same update").
		WithMeta("neighbor_id", neighborID).
		WithMeta("side", side)
}

// diff returns ids present only in old (removed) and only in new (added),
// each preserving list order.
func diff(old, new []string) (removed, added []string) {
	inOld := make(map[string]bool, len(old))
	for _, id := range old {
		inOld[id] = true
	}
	inNew := make(map[string]bool, len(new))
	for _, id := range new {
		inNew[id] = true
	}
	for _, id := range old {
		if !inNew[id] {
			removed = append(removed, id)
		}
	}
	for _, id := range new {
		if !inOld[id] {
			added = append(added, id)
		}
	}
	return removed, added
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func remove(ids []string, id string) []string {
	out := make([]string, 0, len(ids))
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

func appendMissing(ids []string, id string) []string {
	for _, v := range ids {
		if v == id {
			return ids
		}
	}
	return append(append([]string(nil), ids...), id)
}
