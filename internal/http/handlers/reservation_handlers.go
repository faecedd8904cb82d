package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"chargeledger/internal/ledger"
	"chargeledger/internal/service"
)

type reservationCreateRequest struct {
	StationID int64     `json:"station_id"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
}

type reservationResponse struct {
	Holder  string    `json:"holder"`
	Station int64     `json:"station_id"`
	Start   time.Time `json:"start_time"`
	End     time.Time `json:"end_time"`
	Status  string    `json:"status"`
}

func toReservationResponse(r ledger.Reservation, now time.Time) reservationResponse {
	return reservationResponse{
		Holder:  r.Holder,
		Station: r.Station,
		Start:   r.Start,
		End:     r.End,
		Status:  r.Status(now),
	}
}

// NewReservationCreateHandler returns POST /reservations handler.
func NewReservationCreateHandler(svc *service.LedgerService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		holder, ok := account(w, r)
		if !ok {
			return
		}

		var req reservationCreateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid json")
			return
		}

		res, err := svc.Reserve(r.Context(), req.StationID, req.StartTime, req.EndTime, holder)
		if err != nil {
			writeLedgerError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, toReservationResponse(res, svc.Now()))
	}
}

// NewReservationsMeHandler returns GET /reservations/me handler. The
// optional status query filters by derived slot status.
func NewReservationsMeHandler(svc *service.LedgerService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		holder, ok := account(w, r)
		if !ok {
			return
		}

		statusFilter := r.URL.Query().Get("status")
		switch statusFilter {
		case "", ledger.ReservationStatusPending, ledger.ReservationStatusActive, ledger.ReservationStatusExpired:
		default:
			writeError(w, http.StatusBadRequest, "invalid status filter")
			return
		}

		now := svc.Now()
		reservations := make([]reservationResponse, 0)
		for _, res := range svc.ReservationsByHolder(holder) {
			resp := toReservationResponse(res, now)
			if statusFilter != "" && resp.Status != statusFilter {
				continue
			}
			reservations = append(reservations, resp)
		}

		writeJSON(w, http.StatusOK, map[string]interface{}{
			"reservations": reservations,
		})
	}
}

// NewStationAvailabilityHandler returns GET /stations/availability handler.
// It probes a window without booking it.
func NewStationAvailabilityHandler(svc *service.LedgerService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		stationID, err := strconv.ParseInt(query.Get("station_id"), 10, 64)
		if err != nil || stationID <= 0 {
			writeError(w, http.StatusBadRequest, "invalid station_id")
			return
		}
		from, err := time.Parse(time.RFC3339, query.Get("from"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid from timestamp")
			return
		}
		to, err := time.Parse(time.RFC3339, query.Get("to"))
		if err != nil || !to.After(from) {
			writeError(w, http.StatusBadRequest, "invalid to timestamp")
			return
		}

		writeJSON(w, http.StatusOK, map[string]interface{}{
			"station_id": stationID,
			"from":       from,
			"to":         to,
			"free":       svc.StationFree(stationID, from, to),
		})
	}
}
