package handler

import (
	"net/http"

	"github.com/iho/coreledger/internal/adapter/http/dto"
	"github.com/iho/coreledger/internal/domain"
	"github.com/iho/coreledger/internal/usecase"
)

// ReportHandler serves the reporting read paths.
type ReportHandler struct {
	trialBalanceRepo usecase.TrialBalanceRepository
	trialBalanceSvc  *usecase.TrialBalanceService
	balanceSheetSvc  *usecase.ConsolidatedBalanceSheetService
	closingSvc       *usecase.ClosingService
	eliminationSvc   *usecase.EliminationService
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(
	trialBalanceRepo usecase.TrialBalanceRepository,
	trialBalanceSvc *usecase.TrialBalanceService,
	balanceSheetSvc *usecase.ConsolidatedBalanceSheetService,
	closingSvc *usecase.ClosingService,
	eliminationSvc *usecase.EliminationService,
) *ReportHandler {
	return &ReportHandler{
		trialBalanceRepo: trialBalanceRepo,
		trialBalanceSvc:  trialBalanceSvc,
		balanceSheetSvc:  balanceSheetSvc,
		closingSvc:       closingSvc,
		eliminationSvc:   eliminationSvc,
	}
}

// TrialBalance builds the trial balance for an entity and period.
// Query: entity_id, period_start, period_end (YYYY-MM-DD).
func (h *ReportHandler) TrialBalance(w http.ResponseWriter, r *http.Request) {
	tenantID, _, _ := caller(r)
	entityID := r.URL.Query().Get("entity_id")
	if entityID == "" {
		writeError(w, http.StatusBadRequest, "missing entity_id", "")
		return
	}

	periodStart, err := parseDateQuery(r, "period_start")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid period_start", err.Error())
		return
	}
	periodEnd, err := parseDateQuery(r, "period_end")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid period_end", err.Error())
		return
	}

	lines, err := h.trialBalanceRepo.GetTrialBalanceLines(r.Context(), tenantID, entityID, periodStart, periodEnd)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	report, err := h.trialBalanceSvc.BuildReport(lines, periodStart, periodEnd)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.TrialBalanceFromUseCase(report))
}

// ConsolidatedBalanceSheet builds the consolidated snapshot.
// Query: parent_entity_id, as_of (YYYY-MM-DD).
func (h *ReportHandler) ConsolidatedBalanceSheet(w http.ResponseWriter, r *http.Request) {
	tenantID, _, _ := caller(r)
	parentEntityID := r.URL.Query().Get("parent_entity_id")
	if parentEntityID == "" {
		writeError(w, http.StatusBadRequest, "missing parent_entity_id", "")
		return
	}

	asOf, err := parseDateQuery(r, "as_of")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid as_of", err.Error())
		return
	}

	sheet, err := h.balanceSheetSvc.Build(r.Context(), tenantID, parentEntityID, asOf)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.BalanceSheetFromUseCase(sheet))
}

// ClosingPreview shows the closing entry a period close would book,
// without posting it. Query: entity_id, period_start, period_end,
// retained_earnings_account, currency.
func (h *ReportHandler) ClosingPreview(w http.ResponseWriter, r *http.Request) {
	tenantID, _, _ := caller(r)
	entityID := r.URL.Query().Get("entity_id")
	if entityID == "" {
		writeError(w, http.StatusBadRequest, "missing entity_id", "")
		return
	}
	retainedEarnings := r.URL.Query().Get("retained_earnings_account")
	if retainedEarnings == "" {
		writeError(w, http.StatusBadRequest, "missing retained_earnings_account", "")
		return
	}

	currency, err := domain.ParseCurrency(r.URL.Query().Get("currency"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid currency", err.Error())
		return
	}

	periodStart, err := parseDateQuery(r, "period_start")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid period_start", err.Error())
		return
	}
	periodEnd, err := parseDateQuery(r, "period_end")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid period_end", err.Error())
		return
	}

	result, err := h.closingSvc.BuildClosingEntry(r.Context(), tenantID, entityID, periodStart, periodEnd, retainedEarnings, currency)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ClosingPreviewFromUseCase(result))
}

// EliminationPreview shows the intercompany elimination entries a
// consolidation run would book for the window, without posting them.
// Query: entity_id, elimination_account, from, to.
func (h *ReportHandler) EliminationPreview(w http.ResponseWriter, r *http.Request) {
	tenantID, _, _ := caller(r)
	entityID := r.URL.Query().Get("entity_id")
	if entityID == "" {
		writeError(w, http.StatusBadRequest, "missing entity_id", "")
		return
	}
	eliminationAccount := r.URL.Query().Get("elimination_account")
	if eliminationAccount == "" {
		writeError(w, http.StatusBadRequest, "missing elimination_account", "")
		return
	}

	from, err := parseDateQuery(r, "from")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid from", err.Error())
		return
	}
	to, err := parseDateQuery(r, "to")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid to", err.Error())
		return
	}

	entries, err := h.eliminationSvc.BuildEliminationEntries(r.Context(), tenantID, entityID, from, to, eliminationAccount)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.EliminationPreviewFromUseCase(entries))
}
