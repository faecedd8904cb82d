package httpserver

import "net/http"

// Routes groups handlers by endpoint. Nil entries are simply not registered.
type Routes struct {
	ReservationCreate   http.HandlerFunc
	ReservationsMe      http.HandlerFunc
	StationAvailability http.HandlerFunc
	SessionStart        http.HandlerFunc
	SessionStop         http.HandlerFunc
	SessionGet          http.HandlerFunc
	SessionsMe          http.HandlerFunc
	PaymentDue          http.HandlerFunc
	PaymentCreate       http.HandlerFunc
	AdminWithdraw       http.HandlerFunc
	AdminBalance        http.HandlerFunc
	Events              http.HandlerFunc
	Metrics             http.Handler
	Health              http.HandlerFunc
}

// NewRouter registers endpoints. Mutating endpoints are POST only; the
// gateway never retries them on failure.
func NewRouter(routes Routes) http.Handler {
	mux := http.NewServeMux()
	if routes.ReservationCreate != nil {
		mux.Handle("/reservations", method(http.MethodPost, routes.ReservationCreate))
	}
	if routes.ReservationsMe != nil {
		mux.Handle("/reservations/me", method(http.MethodGet, routes.ReservationsMe))
	}
	if routes.StationAvailability != nil {
		mux.Handle("/stations/availability", method(http.MethodGet, routes.StationAvailability))
	}
	if routes.SessionStart != nil {
		mux.Handle("/sessions/start", method(http.MethodPost, routes.SessionStart))
	}
	if routes.SessionStop != nil {
		mux.Handle("/sessions/stop", method(http.MethodPost, routes.SessionStop))
	}
	if routes.SessionGet != nil {
		mux.Handle("/sessions", method(http.MethodGet, routes.SessionGet))
	}
	if routes.SessionsMe != nil {
		mux.Handle("/sessions/me", method(http.MethodGet, routes.SessionsMe))
	}
	if routes.PaymentDue != nil {
		mux.Handle("/payments/due", method(http.MethodGet, routes.PaymentDue))
	}
	if routes.PaymentCreate != nil {
		mux.Handle("/payments", method(http.MethodPost, routes.PaymentCreate))
	}
	if routes.AdminWithdraw != nil {
		mux.Handle("/admin/withdraw", method(http.MethodPost, routes.AdminWithdraw))
	}
	if routes.AdminBalance != nil {
		mux.Handle("/admin/balance", method(http.MethodGet, routes.AdminBalance))
	}
	if routes.Events != nil {
		mux.Handle("/events", method(http.MethodGet, routes.Events))
	}
	if routes.Metrics != nil {
		mux.Handle("/metrics", routes.Metrics)
	}
	if routes.Health != nil {
		mux.Handle("/health", method(http.MethodGet, routes.Health))
	}
	return mux
}

func method(expected string, handler http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != expected {
			w.Header().Set("Allow", expected)
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		handler(w, r)
	}
}
