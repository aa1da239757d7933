package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/calisthenix/engine/internal/api/middleware"
	"github.com/calisthenix/engine/internal/api/types"
	"github.com/calisthenix/engine/internal/services"
)

// AchievementsHandler toggles and lists achievements for the authenticated
// user only; the user id always comes from the verified token.
type AchievementsHandler struct {
	svc services.ProgressService
}

func NewAchievementsHandler(svc services.ProgressService) *AchievementsHandler {
	return &AchievementsHandler{svc: svc}
}

func (h *AchievementsHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := authedUser(w, r)
	if !ok {
		return
	}
	items, err := h.svc.ListAchievements(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, types.APIResponse{Success: true, Data: items})
}

func (h *AchievementsHandler) Achieve(w http.ResponseWriter, r *http.Request) {
	userID, ok := authedUser(w, r)
	if !ok {
		return
	}
	skillID, err := uuid.Parse(chi.URLParam(r, "skillID"))
	if err != nil {
		writeErrorStr(w, http.StatusBadRequest, "invalid skill id")
		return
	}
	if err := h.svc.Achieve(r.Context(), userID, skillID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, types.APIResponse{Success: true})
}

func (h *AchievementsHandler) Unachieve(w http.ResponseWriter, r *http.Request) {
	userID, ok := authedUser(w, r)
	if !ok {
		return
	}
	skillID, err := uuid.Parse(chi.URLParam(r, "skillID"))
	if err != nil {
		writeErrorStr(w, http.StatusBadRequest, "invalid skill id")
		return
	}
	if err := h.svc.Unachieve(r.Context(), userID, skillID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, types.APIResponse{Success: true})
}

func authedUser(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	userID, err := uuid.Parse(middleware.GetUserID(r.Context()))
	if err != nil {
		writeErrorStr(w, http.StatusUnauthorized, "not authenticated")
		return uuid.Nil, false
	}
	return userID, true
}
