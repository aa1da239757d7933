package handlers

import (
	"net/http"

	"github.com/calisthenix/engine/internal/api/types"
	"github.com/calisthenix/engine/internal/services"
)

type ProgressHandler struct {
	skills   services.SkillService
	progress services.ProgressService
}

func NewProgressHandler(skills services.SkillService, progress services.ProgressService) *ProgressHandler {
	return &ProgressHandler{skills: skills, progress: progress}
}

// Tree returns the display hierarchy with the caller's achievement overlay.
func (h *ProgressHandler) Tree(w http.ResponseWriter, r *http.Request) {
	userID, ok := authedUser(w, r)
	if !ok {
		return
	}
	tree, err := h.progress.TreeWithProgress(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, types.APIResponse{Success: true, Data: tree})
}

// Overview returns per-category completion counts and ratios.
func (h *ProgressHandler) Overview(w http.ResponseWriter, r *http.Request) {
	userID, ok := authedUser(w, r)
	if !ok {
		return
	}
	p, err := h.progress.Overview(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, types.APIResponse{Success: true, Data: p})
}

// CategoryTotals returns the summed difficulty per category, the denominator
// used by score gauges.
func (h *ProgressHandler) CategoryTotals(w http.ResponseWriter, r *http.Request) {
	totals, err := h.skills.CategoryTotals(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, types.APIResponse{Success: true, Data: totals})
}
