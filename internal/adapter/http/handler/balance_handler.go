package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/iho/coreledger/internal/adapter/http/dto"
	"github.com/iho/coreledger/internal/domain"
	"github.com/iho/coreledger/internal/usecase"
)

// BalanceHandler serves point-in-time account balances from the
// bitemporal ledger.
type BalanceHandler struct {
	balances *usecase.TemporalBalanceService
}

// NewBalanceHandler creates a new BalanceHandler.
func NewBalanceHandler(balances *usecase.TemporalBalanceService) *BalanceHandler {
	return &BalanceHandler{balances: balances}
}

// Get answers "what was the balance on date X". With a transaction_time
// parameter it instead answers "what did we believe on date Y the
// balance on date X was", the audit view that ignores later corrections.
// Query: entity_id, valid_time, optional transaction_time (YYYY-MM-DD).
func (h *BalanceHandler) Get(w http.ResponseWriter, r *http.Request) {
	accountCode := chi.URLParam(r, "code")
	if accountCode == "" {
		writeError(w, http.StatusBadRequest, "missing account code", "")
		return
	}

	tenantID, _, _ := caller(r)
	entityID := r.URL.Query().Get("entity_id")
	if entityID == "" {
		writeError(w, http.StatusBadRequest, "missing entity_id", "")
		return
	}

	validTime, err := parseDateQuery(r, "valid_time")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid valid_time", err.Error())
		return
	}

	var (
		balance         domain.Money
		transactionTime string
	)
	if raw := r.URL.Query().Get("transaction_time"); raw != "" {
		var txTime time.Time
		txTime, err = parseDateQuery(r, "transaction_time")
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid transaction_time", err.Error())
			return
		}
		transactionTime = raw
		balance, err = h.balances.GetAuditBalanceAt(r.Context(), tenantID, entityID, accountCode, validTime, txTime)
	} else {
		balance, err = h.balances.GetBalanceAt(r.Context(), tenantID, entityID, accountCode, validTime)
	}
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.AccountBalanceResponse{
		AccountCode:     accountCode,
		EntityID:        entityID,
		ValidTime:       validTime.Format("2006-01-02"),
		TransactionTime: transactionTime,
		BalanceCents:    balance.Cents(),
		Currency:        balance.Currency().String(),
	})
}
