package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"chargeledger/internal/http/middleware"
	"chargeledger/internal/ledger"
)

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeLedgerError maps each ledger failure kind to a client-facing status.
func writeLedgerError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ledger.ErrInvalidStation),
		errors.Is(err, ledger.ErrInvalidTimeRange),
		errors.Is(err, ledger.ErrDurationOutOfBounds):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ledger.ErrSlotConflict),
		errors.Is(err, ledger.ErrNoActiveReservation),
		errors.Is(err, ledger.ErrSessionNotActive),
		errors.Is(err, ledger.ErrSessionStillActive),
		errors.Is(err, ledger.ErrAlreadyPaid):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, ledger.ErrUnknownSession):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ledger.ErrNotSessionOwner),
		errors.Is(err, ledger.ErrNotOwner):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, ledger.ErrInsufficientPayment):
		writeError(w, http.StatusPaymentRequired, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// account pulls the authenticated caller identity injected by the auth
// middleware; requests without one are rejected before touching the ledger.
func account(w http.ResponseWriter, r *http.Request) (string, bool) {
	acct, ok := middleware.AccountFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing caller identity")
		return "", false
	}
	return acct, true
}
