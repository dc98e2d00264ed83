package handlers

import (
	"net/http"

	"github.com/Dosada05/bug-arena/middleware"
	"github.com/Dosada05/bug-arena/models"
	"github.com/Dosada05/bug-arena/services"
)

// AdminHandler обслуживает привилегированные представления: скрытые
// факторы, их обоснования и what-if прогнозы. Маршруты закрыты
// RequirePrivilegedViewer.
type AdminHandler struct {
	combatantService services.CombatantService
	battleService    services.BattleService
}

func NewAdminHandler(combatantService services.CombatantService, battleService services.BattleService) *AdminHandler {
	return &AdminHandler{
		combatantService: combatantService,
		battleService:    battleService,
	}
}

// privilegedCombatantView дополняет публичное представление скрытыми
// полями; существует только в ответах привилегированных маршрутов.
type privilegedCombatantView struct {
	*models.Combatant
	HiddenFactor       float64 `json:"hidden_factor"`
	HiddenFactorReason *string `json:"hidden_factor_reason,omitempty"`
}

type privilegedBattleView struct {
	*models.Battle
	HiddenFactorTriggered bool    `json:"hidden_factor_triggered"`
	HiddenFactorDetails   *string `json:"hidden_factor_details,omitempty"`
}

// GetCombatant отдаёт бойца вместе со скрытым фактором.
func (h *AdminHandler) GetCombatant(w http.ResponseWriter, r *http.Request) {
	id, err := readIDParam(r, "combatantID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	combatant, err := h.combatantService.GetByID(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	view := privilegedCombatantView{
		Combatant:          combatant,
		HiddenFactor:       combatant.HiddenFactor,
		HiddenFactorReason: combatant.HiddenFactorReason,
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"combatant": view}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// SetHiddenFactor задаёт скрытый фактор бойца; значение усекается к [-5,+5].
func (h *AdminHandler) SetHiddenFactor(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.UserFromContext(r.Context())

	id, err := readIDParam(r, "combatantID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.HiddenFactorInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	combatant, err := h.combatantService.SetHiddenFactor(r.Context(), actor, id, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	view := privilegedCombatantView{
		Combatant:          combatant,
		HiddenFactor:       combatant.HiddenFactor,
		HiddenFactorReason: combatant.HiddenFactorReason,
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"combatant": view}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetBattle отдаёт бой вместе с деталями скрытого фактора.
func (h *AdminHandler) GetBattle(w http.ResponseWriter, r *http.Request) {
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
	view := privilegedBattleView{
		Battle:                battle,
		HiddenFactorTriggered: battle.HiddenFactorTriggered,
		HiddenFactorDetails:   battle.HiddenFactorDetails,
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"battle": view}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Predict godoc
// @Summary What-if прогон боя без записи результата
// @Tags admin
// @Accept json
// @Produce json
// @Success 200 {object} jsonResponse
// @Router /admin/predictions [post]
func (h *AdminHandler) Predict(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Combatant1ID  int  `json:"combatant1_id"`
		Combatant2ID  int  `json:"combatant2_id"`
		NeutralJitter bool `json:"neutral_jitter"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	prediction, err := h.battleService.Predict(r.Context(), input.Combatant1ID, input.Combatant2ID, input.NeutralJitter)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"prediction": prediction}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
