package handlers

import (
	"net/http"

	"github.com/ligadelmazo/backend/services"
)

type RuleHandler struct {
	ruleService services.RuleService
}

func NewRuleHandler(ruleService services.RuleService) *RuleHandler {
	return &RuleHandler{ruleService: ruleService}
}

func (h *RuleHandler) List(w http.ResponseWriter, r *http.Request) {
	rules, err := h.ruleService.List(r.Context())
	if err != nil {
		mapServiceError(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, envelope{"normas": rules})
}

func (h *RuleHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input services.RuleInput
	if err := readJSON(w, r, &input); err != nil {
		respondBadRequest(w)
		return
	}

	rule, err := h.ruleService.Create(r.Context(), input)
	if err != nil {
		mapServiceError(w, err)
		return
	}
	respondSuccess(w, http.StatusCreated, envelope{
		"message": "Norma creada correctamente",
		"norma":   rule,
	})
}

func (h *RuleHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "id")
	if err != nil {
		respondBadRequest(w)
		return
	}

	var input services.RuleInput
	if err := readJSON(w, r, &input); err != nil {
		respondBadRequest(w)
		return
	}

	rule, err := h.ruleService.Update(r.Context(), id, input)
	if err != nil {
		mapServiceError(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, envelope{
		"message": "Norma actualizada correctamente",
		"norma":   rule,
	})
}

// Reorder applies a batch of drag-and-drop position changes in one request.
func (h *RuleHandler) Reorder(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Rules []services.RulePosition `json:"normas"`
	}
	if err := readJSON(w, r, &input); err != nil {
		respondBadRequest(w)
		return
	}

	if err := h.ruleService.Reorder(r.Context(), input.Rules); err != nil {
		mapServiceError(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, envelope{"message": "Normas reordenadas correctamente"})
}

func (h *RuleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "id")
	if err != nil {
		respondBadRequest(w)
		return
	}

	if err := h.ruleService.Delete(r.Context(), id); err != nil {
		mapServiceError(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, envelope{"message": "Norma eliminada correctamente"})
}
