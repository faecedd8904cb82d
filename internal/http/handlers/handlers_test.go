package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"chargeledger/internal/clock"
	"chargeledger/internal/http/middleware"
	"chargeledger/internal/ledger"
	"chargeledger/internal/service"
)

var testBase = time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

func newTestService() (*service.LedgerService, *clock.Manual) {
	clk := clock.NewManual(testBase)
	core := ledger.New("owner")
	return service.NewLedgerService(core, clk, zap.NewNop()), clk
}

func doJSON(t *testing.T, handler http.HandlerFunc, method, target, caller string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	if caller != "" {
		req = req.WithContext(middleware.WithAccount(req.Context(), caller))
	}
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, target any) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(target); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func reserveBody(station int64, startMin, endMin int) map[string]any {
	return map[string]any{
		"station_id": station,
		"start_time": testBase.Add(time.Duration(startMin) * time.Minute).Format(time.RFC3339),
		"end_time":   testBase.Add(time.Duration(endMin) * time.Minute).Format(time.RFC3339),
	}
}

func TestReservationCreateHandler(t *testing.T) {
	svc, _ := newTestService()
	handler := NewReservationCreateHandler(svc)

	rec := doJSON(t, handler, http.MethodPost, "/reservations", "alice", reserveBody(1, 100, 200))
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: got %d, want 201 (%s)", rec.Code, rec.Body)
	}

	var resp struct {
		Holder string `json:"holder"`
		Status string `json:"status"`
	}
	decodeBody(t, rec, &resp)
	if resp.Holder != "alice" || resp.Status != ledger.ReservationStatusPending {
		t.Fatalf("unexpected response: %+v", resp)
	}

	// Overlapping request maps to 409.
	rec = doJSON(t, handler, http.MethodPost, "/reservations", "bob", reserveBody(1, 150, 250))
	if rec.Code != http.StatusConflict {
		t.Fatalf("conflict: got %d, want 409", rec.Code)
	}

	// Validation failures map to 400.
	rec = doJSON(t, handler, http.MethodPost, "/reservations", "bob", reserveBody(0, 100, 200))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("invalid station: got %d, want 400", rec.Code)
	}

	// Missing identity is rejected before touching the ledger.
	rec = doJSON(t, handler, http.MethodPost, "/reservations", "", reserveBody(2, 100, 200))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous: got %d, want 401", rec.Code)
	}
}

func TestSessionLifecycleOverHTTP(t *testing.T) {
	svc, clk := newTestService()

	rec := doJSON(t, NewReservationCreateHandler(svc), http.MethodPost, "/reservations", "alice", reserveBody(1, 100, 200))
	if rec.Code != http.StatusCreated {
		t.Fatalf("reserve: got %d (%s)", rec.Code, rec.Body)
	}

	clk.Set(testBase.Add(120 * time.Minute))
	rec = doJSON(t, NewSessionStartHandler(svc), http.MethodPost, "/sessions/start", "alice", map[string]any{"station_id": 1})
	if rec.Code != http.StatusCreated {
		t.Fatalf("start: got %d (%s)", rec.Code, rec.Body)
	}
	var started struct {
		ID     int64  `json:"id"`
		Status string `json:"status"`
	}
	decodeBody(t, rec, &started)
	if started.ID != 1 || started.Status != ledger.SessionStatusActive {
		t.Fatalf("unexpected session: %+v", started)
	}

	// A holder without a covering reservation maps to 409.
	rec = doJSON(t, NewSessionStartHandler(svc), http.MethodPost, "/sessions/start", "bob", map[string]any{"station_id": 1})
	if rec.Code != http.StatusConflict {
		t.Fatalf("unreserved start: got %d, want 409", rec.Code)
	}

	clk.Set(testBase.Add(160 * time.Minute))
	rec = doJSON(t, NewSessionStopHandler(svc), http.MethodPost, "/sessions/stop", "bob", map[string]any{"session_id": started.ID})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("foreign stop: got %d, want 403", rec.Code)
	}

	rec = doJSON(t, NewSessionStopHandler(svc), http.MethodPost, "/sessions/stop", "alice", map[string]any{"session_id": started.ID})
	if rec.Code != http.StatusOK {
		t.Fatalf("stop: got %d (%s)", rec.Code, rec.Body)
	}

	// Fee preview matches the settled amount.
	rec = doJSON(t, NewPaymentDueHandler(svc), http.MethodGet, fmt.Sprintf("/payments/due?session_id=%d", started.ID), "alice", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("due: got %d (%s)", rec.Code, rec.Body)
	}
	var due struct {
		AmountDue int64 `json:"amount_due"`
	}
	decodeBody(t, rec, &due)
	if want := ledger.Fee(40 * time.Minute); due.AmountDue != want {
		t.Fatalf("amount due: got %d, want %d", due.AmountDue, want)
	}

	rec = doJSON(t, NewPaymentHandler(svc), http.MethodPost, "/payments", "alice",
		map[string]any{"session_id": started.ID, "amount": due.AmountDue - 1})
	if rec.Code != http.StatusPaymentRequired {
		t.Fatalf("underpay: got %d, want 402", rec.Code)
	}

	rec = doJSON(t, NewPaymentHandler(svc), http.MethodPost, "/payments", "alice",
		map[string]any{"session_id": started.ID, "amount": due.AmountDue + 5})
	if rec.Code != http.StatusOK {
		t.Fatalf("pay: got %d (%s)", rec.Code, rec.Body)
	}
	var paid struct {
		AmountDue int64 `json:"amount_due"`
		Refund    int64 `json:"refund"`
	}
	decodeBody(t, rec, &paid)
	if paid.Refund != 5 || paid.AmountDue != due.AmountDue {
		t.Fatalf("settlement: %+v", paid)
	}

	rec = doJSON(t, NewPaymentHandler(svc), http.MethodPost, "/payments", "alice",
		map[string]any{"session_id": started.ID, "amount": due.AmountDue})
	if rec.Code != http.StatusConflict {
		t.Fatalf("double pay: got %d, want 409", rec.Code)
	}
}

func TestSessionGetHandler(t *testing.T) {
	svc, clk := newTestService()
	doJSON(t, NewReservationCreateHandler(svc), http.MethodPost, "/reservations", "alice", reserveBody(1, 100, 200))
	clk.Set(testBase.Add(110 * time.Minute))
	doJSON(t, NewSessionStartHandler(svc), http.MethodPost, "/sessions/start", "alice", map[string]any{"station_id": 1})

	rec := doJSON(t, NewSessionGetHandler(svc), http.MethodGet, "/sessions?id=1", "anyone", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get: got %d (%s)", rec.Code, rec.Body)
	}

	rec = doJSON(t, NewSessionGetHandler(svc), http.MethodGet, "/sessions?id=42", "anyone", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown: got %d, want 404", rec.Code)
	}

	rec = doJSON(t, NewSessionGetHandler(svc), http.MethodGet, "/sessions?id=abc", "anyone", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("malformed id: got %d, want 400", rec.Code)
	}
}

func TestReservationsMeHandlerStatusFilter(t *testing.T) {
	svc, clk := newTestService()
	handler := NewReservationsMeHandler(svc)

	doJSON(t, NewReservationCreateHandler(svc), http.MethodPost, "/reservations", "alice", reserveBody(1, 100, 200))
	doJSON(t, NewReservationCreateHandler(svc), http.MethodPost, "/reservations", "alice", reserveBody(2, 500, 600))

	clk.Set(testBase.Add(120 * time.Minute))

	var resp struct {
		Reservations []struct {
			Station int64  `json:"station_id"`
			Status  string `json:"status"`
		} `json:"reservations"`
	}

	rec := doJSON(t, handler, http.MethodGet, "/reservations/me", "alice", nil)
	decodeBody(t, rec, &resp)
	if len(resp.Reservations) != 2 {
		t.Fatalf("unfiltered: got %d reservations, want 2", len(resp.Reservations))
	}

	rec = doJSON(t, handler, http.MethodGet, "/reservations/me?status=active", "alice", nil)
	resp.Reservations = nil
	decodeBody(t, rec, &resp)
	if len(resp.Reservations) != 1 || resp.Reservations[0].Station != 1 {
		t.Fatalf("active filter: %+v", resp.Reservations)
	}

	rec = doJSON(t, handler, http.MethodGet, "/reservations/me?status=bogus", "alice", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bogus filter: got %d, want 400", rec.Code)
	}
}

func TestStationAvailabilityHandler(t *testing.T) {
	svc, _ := newTestService()
	doJSON(t, NewReservationCreateHandler(svc), http.MethodPost, "/reservations", "alice", reserveBody(1, 100, 200))

	probe := func(station int64, fromMin, toMin int) *httptest.ResponseRecorder {
		target := fmt.Sprintf("/stations/availability?station_id=%d&from=%s&to=%s",
			station,
			testBase.Add(time.Duration(fromMin)*time.Minute).Format(time.RFC3339),
			testBase.Add(time.Duration(toMin)*time.Minute).Format(time.RFC3339),
		)
		return doJSON(t, NewStationAvailabilityHandler(svc), http.MethodGet, target, "anyone", nil)
	}

	var resp struct {
		Free bool `json:"free"`
	}

	rec := probe(1, 150, 250)
	decodeBody(t, rec, &resp)
	if resp.Free {
		t.Fatal("overlapping window reported free")
	}

	rec = probe(1, 200, 260)
	decodeBody(t, rec, &resp)
	if !resp.Free {
		t.Fatal("back-to-back window reported busy")
	}
}

func TestWithdrawHandler(t *testing.T) {
	svc, clk := newTestService()
	doJSON(t, NewReservationCreateHandler(svc), http.MethodPost, "/reservations", "alice", reserveBody(1, 100, 200))
	clk.Set(testBase.Add(120 * time.Minute))
	doJSON(t, NewSessionStartHandler(svc), http.MethodPost, "/sessions/start", "alice", map[string]any{"station_id": 1})
	clk.Set(testBase.Add(180 * time.Minute))
	doJSON(t, NewSessionStopHandler(svc), http.MethodPost, "/sessions/stop", "alice", map[string]any{"session_id": 1})
	due := ledger.Fee(60 * time.Minute)
	doJSON(t, NewPaymentHandler(svc), http.MethodPost, "/payments", "alice", map[string]any{"session_id": 1, "amount": due})

	rec := doJSON(t, NewWithdrawHandler(svc), http.MethodPost, "/admin/withdraw", "alice", nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("non-owner withdraw: got %d, want 403", rec.Code)
	}

	rec = doJSON(t, NewBalanceHandler(svc), http.MethodGet, "/admin/balance", "owner", nil)
	var balance struct {
		Balance int64 `json:"balance"`
	}
	decodeBody(t, rec, &balance)
	if balance.Balance != due {
		t.Fatalf("balance: got %d, want %d", balance.Balance, due)
	}

	rec = doJSON(t, NewWithdrawHandler(svc), http.MethodPost, "/admin/withdraw", "owner", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("owner withdraw: got %d (%s)", rec.Code, rec.Body)
	}
	var withdrawn struct {
		Withdrawn int64 `json:"withdrawn"`
	}
	decodeBody(t, rec, &withdrawn)
	if withdrawn.Withdrawn != due {
		t.Fatalf("withdrawn: got %d, want %d", withdrawn.Withdrawn, due)
	}
}
