package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/coreledger/internal/adapter/http/dto"
	"github.com/iho/coreledger/internal/usecase"
)

// PeriodHandler manages the accounting period close lifecycle.
type PeriodHandler struct {
	periods *usecase.PeriodService
}

// NewPeriodHandler creates a new PeriodHandler.
func NewPeriodHandler(periods *usecase.PeriodService) *PeriodHandler {
	return &PeriodHandler{periods: periods}
}

// Transition handles POST /api/v1/periods/{id}/status.
func (h *PeriodHandler) Transition(w http.ResponseWriter, r *http.Request) {
	periodID := chi.URLParam(r, "id")
	if periodID == "" {
		writeError(w, http.StatusBadRequest, "missing period id", "")
		return
	}

	var req dto.TransitionPeriodRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	tenantID, userID, _ := caller(r)

	result, err := h.periods.Transition(r.Context(), req.ToCommand(tenantID, periodID, userID))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.TransitionPeriodFromResult(result))
}
