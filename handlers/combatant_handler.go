package handlers

import (
	"errors"
	"net/http"

	"github.com/Dosada05/bug-arena/middleware"
	"github.com/Dosada05/bug-arena/services"
)

const maxImageUploadBytes = 5 << 20 // 5MB

type CombatantHandler struct {
	combatantService services.CombatantService
}

func NewCombatantHandler(combatantService services.CombatantService) *CombatantHandler {
	return &CombatantHandler{combatantService: combatantService}
}

// Create godoc
// @Summary Создание бойца
// @Tags combatants
// @Accept json
// @Produce json
// @Success 201 {object} jsonResponse
// @Router /combatants [post]
func (h *CombatantHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.UserFromContext(r.Context())
	if !ok {
		unauthorizedResponse(w, r, "authentication required")
		return
	}

	var input services.CreateCombatantInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	combatant, err := h.combatantService.Create(r.Context(), actor.ID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusCreated, jsonResponse{"combatant": combatant}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *CombatantHandler) GetByID(w http.ResponseWriter, r *http.Request) {
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
	payload := jsonResponse{
		"combatant": combatant,
		"win_rate":  combatant.WinRate(),
	}
	if err := writeJSON(w, http.StatusOK, payload, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *CombatantHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := readIntQuery(r, "limit", 20)
	offset := readIntQuery(r, "offset", 0)

	combatants, err := h.combatantService.List(r.Context(), limit, offset)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"combatants": combatants}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *CombatantHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.UserFromContext(r.Context())
	if !ok {
		unauthorizedResponse(w, r, "authentication required")
		return
	}
	combatants, err := h.combatantService.ListByOwner(r.Context(), actor.ID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"combatants": combatants}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// UpdateStats обновляет статы бойца; тир пересчитывается сервисом.
func (h *CombatantHandler) UpdateStats(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.UserFromContext(r.Context())

	id, err := readIDParam(r, "combatantID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.UpdateStatsInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	combatant, err := h.combatantService.UpdateStats(r.Context(), actor, id, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"combatant": combatant}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// UploadImage принимает multipart-форму с полем image.
func (h *CombatantHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.UserFromContext(r.Context())

	id, err := readIDParam(r, "combatantID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := r.ParseMultipartForm(maxImageUploadBytes); err != nil {
		badRequestResponse(w, r, errors.New("failed to parse multipart form"))
		return
	}
	file, header, err := r.FormFile("image")
	if err != nil {
		badRequestResponse(w, r, errors.New("image file is required"))
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	combatant, err := h.combatantService.UploadImage(r.Context(), actor, id, contentType, file)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"combatant": combatant}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
