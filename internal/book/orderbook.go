// Package book implements the per-symbol order book: the priority queues,
// the process_order matching algorithm, and a bounded trade history. It
// knows nothing about transports, registries, or notification — callers
// hold its lock, drive process_order, and read snapshot/trades.
package book

import (
	"sync"
	"time"

	"lumenex/internal/models"

	"github.com/google/uuid"
)

// defaultTradeHistory bounds the in-memory trade log so a long-running book
// never grows it unboundedly; get_recent_trades can never ask for more than
// this many trades anyway once older ones have rotated out.
const defaultTradeHistory = 4096

// Snapshot is the aggregated depth view returned by OrderBook.Snapshot.
type Snapshot struct {
	Symbol string  `json:"symbol"`
	Bids   []Level `json:"bids"`
	Asks   []Level `json:"asks"`
}

// OrderBook owns the bid/ask priority queues and the trade log for one
// symbol. All mutation happens under mu; snapshot reads take the read lock
// so they never observe a partially-applied match.
type OrderBook struct {
	Symbol string

	mu       sync.RWMutex
	bids     *PriorityQueue
	asks     *PriorityQueue
	trades   *tradeRing
	nextID   func() string
	nowNanos func() int64
}

// New creates an empty order book for symbol, with a trade history bounded
// at history entries (defaultTradeHistory if history <= 0). Trade ids are
// allocated via uuid and timestamps via the wall clock.
func New(symbol string, history int) *OrderBook {
	return newBook(symbol, history, func() string { return uuid.NewString() }, func() int64 { return time.Now().UnixNano() })
}

// newBook is the test seam: lets orderbook_test.go supply deterministic ids
// and timestamps instead of uuid/wall-clock.
func newBook(symbol string, history int, nextID func() string, nowNanos func() int64) *OrderBook {
	if history <= 0 {
		history = defaultTradeHistory
	}
	return &OrderBook{
		Symbol:   symbol,
		bids:     NewPriorityQueue(models.Buy),
		asks:     NewPriorityQueue(models.Sell),
		trades:   newTradeRing(history),
		nextID:   nextID,
		nowNanos: nowNanos,
	}
}

// Lock acquires the book for a mutating process_order call.
func (b *OrderBook) Lock() { b.mu.Lock() }

// Unlock releases the lock acquired by Lock.
func (b *OrderBook) Unlock() { b.mu.Unlock() }

// RLock acquires the book for a non-mutating read (snapshot, trade history).
func (b *OrderBook) RLock() { b.mu.RLock() }

// RUnlock releases the lock acquired by RLock.
func (b *OrderBook) RUnlock() { b.mu.RUnlock() }

// ProcessOrderLocked runs the matching algorithm from spec.md §4.2.1. The
// caller must hold the write lock (Lock). order.Remaining must equal
// order.Qty and be > 0 on entry. Returns every Trade produced by this
// order (in the order they were matched) and the net change in resting
// order count this call caused: -1 for every opposing order it fully
// consumed, +1 if order itself ends up resting.
func (b *OrderBook) ProcessOrderLocked(order *models.Order) ([]*models.Trade, int) {
	var opp, same *PriorityQueue
	if order.Side == models.Buy {
		opp, same = b.asks, b.bids
	} else {
		opp, same = b.bids, b.asks
	}

	var trades []*models.Trade
	restingDelta := 0
	for order.Remaining > 0 {
		resting, ok := opp.Peek()
		if !ok {
			break
		}

		if !priceCrosses(order, resting) {
			break
		}

		qty := min64(order.Remaining, resting.Remaining)
		price := resting.Price // maker price

		order.Remaining -= qty
		resting.Remaining -= qty

		trade := b.newTrade(order, resting, price, qty)
		trades = append(trades, trade)
		b.trades.append(trade)

		if resting.Remaining == 0 {
			opp.Pop()
			restingDelta--
		}
	}

	if order.Remaining > 0 && order.Kind == models.Limit {
		same.Push(order)
		restingDelta++
	}
	// Market remainder, if any, is dropped: it can never rest (spec.md §4.2.1 step 3).

	return trades, restingDelta
}

// priceCrosses implements the price gate of spec.md §4.2.1 step 2d.
func priceCrosses(taker, resting *models.Order) bool {
	if taker.Kind == models.Market {
		return true
	}
	if taker.Side == models.Buy {
		return taker.Price >= resting.Price
	}
	return taker.Price <= resting.Price
}

func (b *OrderBook) newTrade(taker, resting *models.Order, price, qty int64) *models.Trade {
	buyID, sellID := taker.ID, resting.ID
	if taker.Side == models.Sell {
		buyID, sellID = resting.ID, taker.ID
	}
	return models.NewTrade(b.nextID(), taker.Symbol, buyID, sellID, price, qty, b.nowNanos())
}

// SnapshotLocked aggregates up to depth price levels per side. Caller must
// hold at least the read lock.
func (b *OrderBook) SnapshotLocked(depth int) Snapshot {
	return Snapshot{
		Symbol: b.Symbol,
		Bids:   b.bids.Levels(depth),
		Asks:   b.asks.Levels(depth),
	}
}

// Snapshot is the convenience, self-locking form of SnapshotLocked for
// read-only callers (e.g. the REST query path) that are not already inside
// a process_order critical section.
func (b *OrderBook) Snapshot(depth int) Snapshot {
	b.RLock()
	defer b.RUnlock()
	return b.SnapshotLocked(depth)
}

// RecentTrades returns up to the last n trades, most-recent-last.
func (b *OrderBook) RecentTrades(n int) []*models.Trade {
	b.RLock()
	defer b.RUnlock()
	return b.trades.last(n)
}

func min64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}
