package handlers

import (
	"errors"
	"net/http"

	"github.com/Dosada05/bug-arena/services"
)

type BattleHandler struct {
	battleService services.BattleService
}

func NewBattleHandler(battleService services.BattleService) *BattleHandler {
	return &BattleHandler{battleService: battleService}
}

// ResolveExhibition godoc
// @Summary Выставочный бой между двумя бойцами
// @Tags battles
// @Accept json
// @Produce json
// @Success 201 {object} jsonResponse
// @Router /battles [post]
func (h *BattleHandler) ResolveExhibition(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Combatant1ID int `json:"combatant1_id"`
		Combatant2ID int `json:"combatant2_id"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if input.Combatant1ID < 1 || input.Combatant2ID < 1 {
		badRequestResponse(w, r, errors.New("combatant1_id and combatant2_id are required"))
		return
	}

	outcome, err := h.battleService.ResolveExhibition(r.Context(), input.Combatant1ID, input.Combatant2ID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusCreated, jsonResponse{"battle": outcome.Battle}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *BattleHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := readIDParam(r, "battleID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	battle, err := h.battleService.GetBattle(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"battle": battle}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListByCombatant возвращает историю боёв бойца, свежие первыми.
func (h *BattleHandler) ListByCombatant(w http.ResponseWriter, r *http.Request) {
	combatantID, err := readIDParam(r, "combatantID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	limit := readIntQuery(r, "limit", 20)
	offset := readIntQuery(r, "offset", 0)

	battles, err := h.battleService.ListByCombatant(r.Context(), combatantID, limit, offset)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"battles": battles}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
