package handlers

import (
	"net/http"

	"github.com/FedericoSorianox/TorneoBJJ/models"
	"github.com/FedericoSorianox/TorneoBJJ/services"
)

type RuleSetHandler struct {
	ruleSetService services.RuleSetService
}

func NewRuleSetHandler(ruleSetService services.RuleSetService) *RuleSetHandler {
	return &RuleSetHandler{ruleSetService: ruleSetService}
}

func (h *RuleSetHandler) Create(w http.ResponseWriter, r *http.Request) {
	var ruleSet models.RuleSet
	if err := readJSON(w, r, &ruleSet); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.ruleSetService.Create(r.Context(), &ruleSet); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"rule_set": ruleSet}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *RuleSetHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "id")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	ruleSet, err := h.ruleSetService.GetByID(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"rule_set": ruleSet}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *RuleSetHandler) List(w http.ResponseWriter, r *http.Request) {
	ruleSets, err := h.ruleSetService.List(r.Context())
	if err != nil {
		serverErrorResponse(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"rule_sets": ruleSets}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
