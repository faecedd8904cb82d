package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"chargeledger/internal/service"
)

type paymentRequest struct {
	SessionID int64 `json:"session_id"`
	Amount    int64 `json:"amount"` // tendered value in micro-units
}

// NewPaymentHandler returns POST /payments handler.
func NewPaymentHandler(svc *service.LedgerService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		holder, ok := account(w, r)
		if !ok {
			return
		}

		var req paymentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid json")
			return
		}
		if req.Amount < 0 {
			writeError(w, http.StatusBadRequest, "amount must not be negative")
			return
		}

		settlement, err := svc.PaySession(r.Context(), req.SessionID, holder, req.Amount)
		if err != nil {
			writeLedgerError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"session":    toSessionResponse(settlement.Session),
			"amount_due": settlement.AmountDue,
			"refund":     settlement.Refund,
		})
	}
}

// NewPaymentDueHandler returns GET /payments/due?session_id=N handler. A fee
// preview for an ended, unpaid session.
func NewPaymentDueHandler(svc *service.LedgerService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, err := strconv.ParseInt(r.URL.Query().Get("session_id"), 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid session id")
			return
		}

		due, err := svc.AmountDue(sessionID)
		if err != nil {
			writeLedgerError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"session_id": sessionID,
			"amount_due": due,
		})
	}
}
