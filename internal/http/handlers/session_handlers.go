package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"chargeledger/internal/ledger"
	"chargeledger/internal/service"
)

type sessionStartRequest struct {
	StationID int64 `json:"station_id"`
}

type sessionStopRequest struct {
	SessionID int64 `json:"session_id"`
}

type sessionResponse struct {
	ID      int64      `json:"id"`
	Holder  string     `json:"holder"`
	Station int64      `json:"station_id"`
	Status  string     `json:"status"`
	Start   time.Time  `json:"start_time"`
	End     *time.Time `json:"end_time,omitempty"`
	Amount  int64      `json:"amount"`
}

func toSessionResponse(s ledger.Session) sessionResponse {
	resp := sessionResponse{
		ID:      s.ID,
		Holder:  s.Holder,
		Station: s.Station,
		Status:  s.Status(),
		Start:   s.Start,
		Amount:  s.Amount,
	}
	if !s.End.IsZero() {
		end := s.End
		resp.End = &end
	}
	return resp
}

// NewSessionStartHandler returns POST /sessions/start handler.
func NewSessionStartHandler(svc *service.LedgerService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		holder, ok := account(w, r)
		if !ok {
			return
		}

		var req sessionStartRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid json")
			return
		}

		session, err := svc.StartSession(r.Context(), req.StationID, holder)
		if err != nil {
			writeLedgerError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, toSessionResponse(session))
	}
}

// NewSessionStopHandler returns POST /sessions/stop handler.
func NewSessionStopHandler(svc *service.LedgerService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		holder, ok := account(w, r)
		if !ok {
			return
		}

		var req sessionStopRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid json")
			return
		}

		session, err := svc.EndSession(r.Context(), req.SessionID, holder)
		if err != nil {
			writeLedgerError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toSessionResponse(session))
	}
}

// NewSessionGetHandler returns GET /sessions?id=N handler.
func NewSessionGetHandler(svc *service.LedgerService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, err := strconv.ParseInt(r.URL.Query().Get("id"), 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid session id")
			return
		}

		session, err := svc.Session(sessionID)
		if err != nil {
			writeLedgerError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toSessionResponse(session))
	}
}

// NewSessionsMeHandler returns GET /sessions/me handler.
func NewSessionsMeHandler(svc *service.LedgerService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		holder, ok := account(w, r)
		if !ok {
			return
		}

		sessions := make([]sessionResponse, 0)
		for _, s := range svc.SessionsByHolder(holder) {
			sessions = append(sessions, toSessionResponse(s))
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"sessions": sessions,
		})
	}
}
