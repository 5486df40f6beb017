package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/coreledger/internal/adapter/http/dto"
	"github.com/iho/coreledger/internal/usecase"
)

// EntryHandler handles journal entry HTTP requests.
type EntryHandler struct {
	createSvc  *usecase.CreateJournalEntryService
	reverseSvc *usecase.ReverseJournalEntryService
	entryRepo  usecase.JournalEntryRepository
}

// NewEntryHandler creates a new EntryHandler.
func NewEntryHandler(
	createSvc *usecase.CreateJournalEntryService,
	reverseSvc *usecase.ReverseJournalEntryService,
	entryRepo usecase.JournalEntryRepository,
) *EntryHandler {
	return &EntryHandler{
		createSvc:  createSvc,
		reverseSvc: reverseSvc,
		entryRepo:  entryRepo,
	}
}

// Post posts a new journal entry. The Idempotency-Key header makes the
// request safely retryable.
func (h *EntryHandler) Post(w http.ResponseWriter, r *http.Request) {
	var req dto.PostJournalEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	tenantID, userID, permissions := caller(r)
	cmd, err := req.ToCommand(tenantID, userID, r.Header.Get("Idempotency-Key"), permissions)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid posting date", err.Error())
		return
	}

	result, err := h.createSvc.Handle(r.Context(), cmd)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	status := http.StatusCreated
	if result.WasIdempotent {
		status = http.StatusOK
	}
	writeJSON(w, status, dto.PostResultFromUseCase(result))
}

// Reverse posts the correcting entry for an existing one.
func (h *EntryHandler) Reverse(w http.ResponseWriter, r *http.Request) {
	entryID := chi.URLParam(r, "id")
	if entryID == "" {
		writeError(w, http.StatusBadRequest, "missing entry ID", "")
		return
	}

	var req dto.ReverseJournalEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	tenantID, userID, permissions := caller(r)
	cmd, err := req.ToCommand(tenantID, entryID, userID, permissions)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid posting date", err.Error())
		return
	}

	result, err := h.reverseSvc.Handle(r.Context(), cmd)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.ReverseResultFromUseCase(result))
}

// Lookup resolves an idempotency key to the entry recorded under it,
// letting a client that only kept its key recover the full entry.
// Query: idempotency_key.
func (h *EntryHandler) Lookup(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Query().Get("idempotency_key")
	if key == "" {
		writeError(w, http.StatusBadRequest, "missing idempotency_key", "")
		return
	}

	tenantID, _, _ := caller(r)
	entry, err := h.entryRepo.GetByIdempotencyKey(r.Context(), tenantID, key)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.EntryFromDomain(entry))
}

// Get retrieves a journal entry with its lines.
func (h *EntryHandler) Get(w http.ResponseWriter, r *http.Request) {
	entryID := chi.URLParam(r, "id")
	if entryID == "" {
		writeError(w, http.StatusBadRequest, "missing entry ID", "")
		return
	}

	tenantID, _, _ := caller(r)
	entry, err := h.entryRepo.GetByID(r.Context(), tenantID, entryID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.EntryFromDomain(entry))
}
