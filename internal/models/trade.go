package models

import "fmt"

// Trade represents a single match between a buy and a sell order. Trades
// are never mutated once created; the price is always the resting
// (maker) order's price.
type Trade struct {
	ID          string `json:"trade_id"`
	Symbol      string `json:"symbol"`
	BuyOrderID  string `json:"buy_order_id"`
	SellOrderID string `json:"sell_order_id"`
	Price       int64  `json:"price"`
	Qty         int64  `json:"qty"`
	Timestamp   int64  `json:"timestamp"`
}

// NewTrade creates a Trade. ts should be a monotonically-useful timestamp
// (UnixNano); the core never relies on it for ordering, only arrival_seq
// does.
func NewTrade(id, symbol, buyOrderID, sellOrderID string, price, qty, ts int64) *Trade {
	return &Trade{
		ID:          id,
		Symbol:      symbol,
		BuyOrderID:  buyOrderID,
		SellOrderID: sellOrderID,
		Price:       price,
		Qty:         qty,
		Timestamp:   ts,
	}
}

func (t *Trade) String() string {
	return fmt.Sprintf("Trade[id=%s symbol=%s buy=%s sell=%s price=%d qty=%d]",
		t.ID, t.Symbol, t.BuyOrderID, t.SellOrderID, t.Price, t.Qty)
}
