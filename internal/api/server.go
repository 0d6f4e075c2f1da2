// Package api exposes the matching core over HTTP: placing orders, reading
// depth snapshots and recent trades, and the usual health/metrics
// endpoints. Routing is github.com/gorilla/mux rather than the standard
// library's ServeMux, matching the router style used across the reference
// corpus's HTTP services.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"lumenex/internal/intake"
	"lumenex/internal/metrics"
	"lumenex/internal/models"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"
)

// placeOrderRequest is the wire shape for POST /v1/orders. Side and Kind
// decode through models' own UnmarshalJSON, so "BUY"/"SELL"/"LIMIT"/"MARKET"
// are the only accepted spellings.
type placeOrderRequest struct {
	UserID string      `json:"user_id,omitempty"`
	Symbol string      `json:"symbol"`
	Side   models.Side `json:"side"`
	Kind   models.Kind `json:"kind"`
	Price  int64       `json:"price,omitempty"`
	Qty    int64       `json:"qty"`
}

// tradeResponse is one fill, either embedded in a placeOrderResponse or
// listed from GET /v1/trades/{symbol}.
type tradeResponse struct {
	TradeID string `json:"trade_id"`
	Price   int64  `json:"price"`
	Qty     int64  `json:"qty"`
	Time    int64  `json:"timestamp"`
}

// placeOrderResponse is the body of a successful POST /v1/orders.
type placeOrderResponse struct {
	OrderID string          `json:"order_id"`
	Filled  bool            `json:"filled"`
	Trades  []tradeResponse `json:"trades,omitempty"`
}

// healthResponse is the body of GET /v1/health.
type healthResponse struct {
	Status        string  `json:"status"`
	UptimeSeconds float64 `json:"uptime_seconds"`
}

// Server is the HTTP transport over an intake.Service.
type Server struct {
	svc     *intake.Service
	metrics *metrics.Metrics
	router  *mux.Router
}

// NewServer builds a Server with every route registered, ready to be
// mounted on an *http.Server or used directly as an http.Handler.
func NewServer(svc *intake.Service, m *metrics.Metrics) *Server {
	s := &Server{svc: svc, metrics: m, router: mux.NewRouter()}
	s.routes()
	return s
}

// ServeHTTP lets Server itself be used as an http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.HandleFunc("/v1/orders", s.handlePlaceOrder).Methods(http.MethodPost)
	s.router.HandleFunc("/v1/symbols", s.handleListSymbols).Methods(http.MethodGet)
	s.router.HandleFunc("/v1/orderbook/{symbol}", s.handleOrderBook).Methods(http.MethodGet)
	s.router.HandleFunc("/v1/trades/{symbol}", s.handleTrades).Methods(http.MethodGet)
	s.router.HandleFunc("/v1/health", s.handleHealth).Methods(http.MethodGet)
	s.router.Handle("/v1/metrics", s.metrics.Handler()).Methods(http.MethodGet)
}

func (s *Server) handlePlaceOrder(w http.ResponseWriter, r *http.Request) {
	var req placeOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.metrics.OrdersRejected.Inc()
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	start := time.Now()
	result, err := s.svc.PlaceOrder(intake.PlaceOrderRequest{
		UserID: req.UserID,
		Symbol: req.Symbol,
		Side:   req.Side,
		Kind:   req.Kind,
		Price:  req.Price,
		Qty:    req.Qty,
	})
	s.metrics.ObserveLatency(time.Since(start))
	if err != nil {
		s.metrics.OrdersRejected.Inc()
		writeServiceError(w, err)
		return
	}
	s.metrics.OrdersReceived.Inc()
	s.metrics.TradesExecuted.Add(float64(len(result.Trades)))

	resp := placeOrderResponse{OrderID: result.OrderID, Filled: result.Filled}
	for _, t := range result.Trades {
		resp.Trades = append(resp.Trades, tradeResponse{TradeID: t.ID, Price: t.Price, Qty: t.Qty, Time: t.Timestamp})
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleListSymbols(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"symbols": s.svc.ListSymbols()})
}

func (s *Server) handleOrderBook(w http.ResponseWriter, r *http.Request) {
	symbol := mux.Vars(r)["symbol"]
	depth := queryInt(r, "depth", 0)

	snap, err := s.svc.GetSnapshot(symbol, depth)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleTrades(w http.ResponseWriter, r *http.Request) {
	symbol := mux.Vars(r)["symbol"]
	n := queryInt(r, "n", 0)

	trades, err := s.svc.GetRecentTrades(symbol, n)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	out := make([]tradeResponse, 0, len(trades))
	for _, t := range trades {
		out = append(out, tradeResponse{TradeID: t.ID, Price: t.Price, Qty: t.Qty, Time: t.Timestamp})
	}
	writeJSON(w, http.StatusOK, map[string][]tradeResponse{"trades": out})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "healthy", UptimeSeconds: s.metrics.Uptime().Seconds()})
}

// writeServiceError maps intake's sentinel errors to HTTP status codes;
// anything else (there shouldn't be anything else) falls back to 400.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, intake.ErrUnknownSymbol):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, intake.ErrInvalidQty),
		errors.Is(err, intake.ErrInvalidPrice),
		errors.Is(err, intake.ErrInvalidSide),
		errors.Is(err, intake.ErrInvalidKind):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusBadRequest, err.Error())
	}
}

func queryInt(r *http.Request, key string, def int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
