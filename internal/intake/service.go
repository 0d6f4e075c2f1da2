// Package intake is the facade external transports call into: it validates
// requests, allocates order identity, drives the target OrderBook under its
// lock, and queues the resulting event on the registry's per-symbol
// dispatcher, which hands it to the Notifier outside the lock.
package intake

import (
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"lumenex/internal/book"
	"lumenex/internal/metrics"
	"lumenex/internal/models"
	"lumenex/internal/notify"
	"lumenex/internal/registry"

	"github.com/google/uuid"
)

// Sentinel errors per spec.md §7's taxonomy. Transports map these to
// specific status codes with errors.Is.
var (
	ErrUnknownSymbol = errors.New("unknown symbol")
	ErrInvalidQty    = errors.New("quantity must be positive")
	ErrInvalidPrice  = errors.New("limit orders require a positive price")
	ErrInvalidSide   = errors.New("invalid side")
	ErrInvalidKind   = errors.New("invalid order kind")
)

// PlaceOrderRequest is the input to PlaceOrder, corresponding to spec.md
// §6's place_order request shape.
type PlaceOrderRequest struct {
	UserID string
	Symbol string
	Side   models.Side
	Kind   models.Kind
	Price  int64
	Qty    int64
}

// PlaceOrderResult is the place_order response shape from spec.md §6.
type PlaceOrderResult struct {
	OrderID string
	Filled  bool
	Trades  []*models.Trade
	Order   *models.Order
}

// DefaultSnapshotDepth is the fallback used when New is given a
// non-positive snapshotDepthDefault.
const DefaultSnapshotDepth = 10

// DefaultRecentTrades is the fallback used when New is given a
// non-positive recentTradesDefault.
const DefaultRecentTrades = 200

// Service is the intake facade. Event publication flows through reg's
// per-symbol dispatcher, so Service does not talk to a Notifier directly.
type Service struct {
	registry *registry.Registry
	metrics  *metrics.Metrics
	seq      atomic.Int64

	snapshotDepthDefault int // embedded in every published event, and get_snapshot's default
	recentTradesDefault  int // get_recent_trades' default
}

// New builds a Service over reg. snapshotDepthDefault and
// recentTradesDefault come from config.Config; a non-positive value falls
// back to DefaultSnapshotDepth/DefaultRecentTrades, mirroring config.go's
// own getEnvInt fallback-on-invalid idiom.
func New(reg *registry.Registry, m *metrics.Metrics, snapshotDepthDefault, recentTradesDefault int) *Service {
	if snapshotDepthDefault <= 0 {
		snapshotDepthDefault = DefaultSnapshotDepth
	}
	if recentTradesDefault <= 0 {
		recentTradesDefault = DefaultRecentTrades
	}
	return &Service{
		registry:             reg,
		metrics:              m,
		snapshotDepthDefault: snapshotDepthDefault,
		recentTradesDefault:  recentTradesDefault,
	}
}

// PlaceOrder implements spec.md §4.4: reject unknown symbol, then validate
// the request fields, allocate identity, match under the book's lock,
// publish, respond.
func (s *Service) PlaceOrder(req PlaceOrderRequest) (*PlaceOrderResult, error) {
	b, ok := s.registry.Book(req.Symbol)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSymbol, req.Symbol)
	}

	if req.Side != models.Buy && req.Side != models.Sell {
		return nil, ErrInvalidSide
	}
	if req.Kind != models.Limit && req.Kind != models.Market {
		return nil, ErrInvalidKind
	}
	if req.Qty <= 0 {
		return nil, ErrInvalidQty
	}
	if req.Kind == models.Limit && req.Price <= 0 {
		return nil, ErrInvalidPrice
	}

	id := uuid.NewString()
	arrivalSeq := s.seq.Add(1)
	order := models.New(id, req.UserID, req.Symbol, req.Side, req.Kind, req.Price, req.Qty, arrivalSeq, time.Now().UnixNano())

	b.Lock()
	trades, restingDelta := b.ProcessOrderLocked(order)
	snap := b.SnapshotLocked(s.snapshotDepthDefault)
	// Enqueue while still holding the lock: this is the in-memory,
	// non-blocking step that preserves per-symbol commit order (spec.md
	// §5). The registry's dispatcher goroutine performs the actual
	// Notifier.Broadcast fan-out after we unlock below.
	s.registry.Enqueue(req.Symbol, notify.Event{
		Symbol:   req.Symbol,
		Order:    order,
		Trades:   trades,
		Snapshot: snap,
	})
	b.Unlock()
	s.metrics.OrdersInBook.Add(float64(restingDelta))

	return &PlaceOrderResult{
		OrderID: order.ID,
		Filled:  len(trades) > 0,
		Trades:  trades,
		Order:   order,
	}, nil
}

// ListSymbols implements list_symbols.
func (s *Service) ListSymbols() []string {
	return s.registry.Symbols()
}

// GetSnapshot implements get_snapshot.
func (s *Service) GetSnapshot(symbol string, depth int) (book.Snapshot, error) {
	b, ok := s.registry.Book(symbol)
	if !ok {
		return book.Snapshot{}, fmt.Errorf("%w: %s", ErrUnknownSymbol, symbol)
	}
	if depth <= 0 {
		depth = s.snapshotDepthDefault
	}
	return b.Snapshot(depth), nil
}

// GetRecentTrades implements get_recent_trades.
func (s *Service) GetRecentTrades(symbol string, n int) ([]*models.Trade, error) {
	b, ok := s.registry.Book(symbol)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSymbol, symbol)
	}
	if n <= 0 {
		n = s.recentTradesDefault
	}
	return b.RecentTrades(n), nil
}
