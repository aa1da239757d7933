package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/calisthenix/engine/internal/api/middleware"
	"github.com/calisthenix/engine/internal/api/types"
	"github.com/calisthenix/engine/internal/models"
	"github.com/calisthenix/engine/internal/services"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

type SkillsHandler struct {
	svc services.SkillService
}

func NewSkillsHandler(svc services.SkillService) *SkillsHandler {
	return &SkillsHandler{svc: svc}
}

func (h *SkillsHandler) List(w http.ResponseWriter, r *http.Request) {
	var category *models.Category
	if c := r.URL.Query().Get("category"); c != "" {
		cat := models.Category(c)
		category = &cat
	}
	items, err := h.svc.ListSkills(r.Context(), category)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, types.APIResponse{Success: true, Data: items, Meta: &types.Meta{Total: int64(len(items))}})
}

func (h *SkillsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	sk, err := h.svc.GetSkill(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, types.APIResponse{Success: true, Data: sk})
}

func (h *SkillsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req types.SkillCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorStr(w, http.StatusBadRequest, "invalid json")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeErrorStr(w, http.StatusBadRequest, err.Error())
		return
	}
	sk, err := h.svc.CreateSkill(r.Context(), middleware.GetRole(r.Context()), &services.CreateSkillInput{
		Name:           req.Name,
		Difficulty:     req.Difficulty,
		Type:           models.SkillType(req.Type),
		Category:       models.Category(req.Category),
		Description:    req.Description,
		PreviousSkills: req.PreviousSkills,
		NextSkills:     req.NextSkills,
		Variations:     req.Variations,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, types.APIResponse{Success: true, Data: sk})
}

func (h *SkillsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req types.SkillUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorStr(w, http.StatusBadRequest, "invalid json")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeErrorStr(w, http.StatusBadRequest, err.Error())
		return
	}
	input := &services.UpdateSkillInput{
		Name:        req.Name,
		Difficulty:  req.Difficulty,
		Description: req.Description,
		Variations:  req.Variations,
	}
	if req.Type != nil {
		t := models.SkillType(*req.Type)
		input.Type = &t
	}
	if req.Category != nil {
		c := models.Category(*req.Category)
		input.Category = &c
	}
	sk, err := h.svc.UpdateSkill(r.Context(), middleware.GetRole(r.Context()), id, input)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, types.APIResponse{Success: true, Data: sk})
}

func (h *SkillsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.svc.DeleteSkill(r.Context(), middleware.GetRole(r.Context()), id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, types.APIResponse{Success: true})
}

func (h *SkillsHandler) DeleteAll(w http.ResponseWriter, r *http.Request) {
	n, err := h.svc.DeleteAllSkills(r.Context(), middleware.GetRole(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, types.APIResponse{Success: true, Data: map[string]int64{"deleted_count": n}})
}

func (h *SkillsHandler) SyncRelationships(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req types.RelationshipsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorStr(w, http.StatusBadRequest, "invalid json")
		return
	}
	if err := h.svc.SyncRelationships(r.Context(), middleware.GetRole(r.Context()), id, req.PreviousSkills, req.NextSkills); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, types.APIResponse{Success: true})
}

func (h *SkillsHandler) Relationships(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	rel, err := h.svc.GetRelationships(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, types.APIResponse{Success: true, Data: rel})
}

func (h *SkillsHandler) Stats(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.ListWithStats(r.Context(), middleware.GetRole(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, types.APIResponse{Success: true, Data: items})
}

func pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeErrorStr(w, http.StatusBadRequest, "invalid skill id")
		return uuid.Nil, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, types.StatusFromError(err), types.APIResponse{Success: false, Error: types.FromAppError(err)})
}

func writeErrorStr(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, types.APIResponse{Success: false, Error: &types.APIError{Code: "invalid", Message: msg}})
}
