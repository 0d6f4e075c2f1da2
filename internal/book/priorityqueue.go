package book

import (
	"lumenex/internal/models"

	"github.com/emirpasic/gods/trees/redblacktree"
	"github.com/emirpasic/gods/utils"
)

// priceLevel holds every resting order at one price, in arrival order: the
// order at index 0 has the lowest ArrivalSeq and is matched first.
type priceLevel struct {
	price  int64
	orders []*models.Order
}

// PriorityQueue is a bounded-key priority queue over (price, arrival_seq,
// order). Direction is configured per side at construction: bids compare
// price descending, asks ascending. Within a price level, orders are kept in
// a slice sorted by ArrivalSeq, giving the arrival-sequence tie-break.
//
// Stale entries are never left behind: Pop removes a fully-filled order
// eagerly when it is the top of queue (the Book never needs to skip over
// exhausted orders below the top).
type PriorityQueue struct {
	levels *redblacktree.Tree // price (int64) -> *priceLevel
}

// NewPriorityQueue builds a queue for the given side. side selects the
// comparator direction: Buy sorts descending by price, Sell ascending.
func NewPriorityQueue(side models.Side) *PriorityQueue {
	cmp := utils.Int64Comparator
	if side == models.Buy {
		cmp = func(a, b interface{}) int {
			return utils.Int64Comparator(b, a)
		}
	}
	return &PriorityQueue{levels: redblacktree.NewWith(cmp)}
}

// Push inserts a resting order. O(log n) in the number of distinct price
// levels, plus a shift within the level when o arrives with a lower
// ArrivalSeq than orders already resting there.
func (q *PriorityQueue) Push(o *models.Order) {
	if v, found := q.levels.Get(o.Price); found {
		lvl := v.(*priceLevel)
		i := len(lvl.orders)
		for i > 0 && lvl.orders[i-1].ArrivalSeq > o.ArrivalSeq {
			i--
		}
		lvl.orders = append(lvl.orders, nil)
		copy(lvl.orders[i+1:], lvl.orders[i:])
		lvl.orders[i] = o
		return
	}
	q.levels.Put(o.Price, &priceLevel{price: o.Price, orders: []*models.Order{o}})
}

// Peek returns the best order without removing it. O(log n) in the number
// of distinct price levels: the tree walks down to its leftmost node.
func (q *PriorityQueue) Peek() (*models.Order, bool) {
	node := q.levels.Left()
	if node == nil {
		return nil, false
	}
	lvl := node.Value.(*priceLevel)
	if len(lvl.orders) == 0 {
		return nil, false
	}
	return lvl.orders[0], true
}

// Pop removes and returns the best order. O(log n).
func (q *PriorityQueue) Pop() (*models.Order, bool) {
	node := q.levels.Left()
	if node == nil {
		return nil, false
	}
	lvl := node.Value.(*priceLevel)
	if len(lvl.orders) == 0 {
		return nil, false
	}
	o := lvl.orders[0]
	lvl.orders = lvl.orders[1:]
	if len(lvl.orders) == 0 {
		q.levels.Remove(lvl.price)
	}
	return o, true
}

// Empty reports whether the queue holds no resting orders.
func (q *PriorityQueue) Empty() bool {
	return q.levels.Empty()
}

// Level is one aggregated price level, as returned by Levels.
type Level struct {
	Price int64
	Qty   int64
}

// Levels aggregates up to depth price levels in priority order, summing the
// Remaining quantity of every live order at each level. depth <= 0 means
// unbounded. Non-destructive: does not mutate the queue.
func (q *PriorityQueue) Levels(depth int) []Level {
	out := make([]Level, 0, max(depth, 4))
	it := q.levels.Iterator()
	it.Begin()
	for it.Next() {
		if depth > 0 && len(out) >= depth {
			break
		}
		lvl := it.Value().(*priceLevel)
		var qty int64
		for _, o := range lvl.orders {
			qty += o.Remaining
		}
		if qty > 0 {
			out = append(out, Level{Price: lvl.price, Qty: qty})
		}
	}
	return out
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
