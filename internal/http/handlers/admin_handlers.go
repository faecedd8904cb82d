package handlers

import (
	"net/http"

	"chargeledger/internal/service"
)

// NewWithdrawHandler returns POST /admin/withdraw handler. The ledger core
// decides ownership; anyone else gets a 403.
func NewWithdrawHandler(svc *service.LedgerService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, ok := account(w, r)
		if !ok {
			return
		}

		amount, err := svc.Withdraw(caller)
		if err != nil {
			writeLedgerError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"withdrawn": amount,
		})
	}
}

// NewBalanceHandler returns GET /admin/balance handler.
func NewBalanceHandler(svc *service.LedgerService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := account(w, r); !ok {
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"balance": svc.Balance(),
		})
	}
}
