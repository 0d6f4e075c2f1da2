package intake

import (
	"context"
	"errors"
	"testing"

	"lumenex/internal/metrics"
	"lumenex/internal/models"
	"lumenex/internal/notify"
	"lumenex/internal/registry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T, symbols ...string) (*Service, *registry.Registry, func()) {
	t.Helper()
	n := notify.New()
	reg := registry.New(symbols, 0, n)
	ctx, cancel := context.WithCancel(context.Background())
	reg.Start(ctx)
	return New(reg, metrics.New(), DefaultSnapshotDepth, DefaultRecentTrades), reg, func() {
		cancel()
		reg.Close()
	}
}

func TestPlaceOrderUnknownSymbol(t *testing.T) {
	svc, _, done := newTestService(t, "BTCUSD")
	defer done()

	_, err := svc.PlaceOrder(PlaceOrderRequest{
		Symbol: "DOGEUSD", Side: models.Buy, Kind: models.Limit, Price: 1, Qty: 1,
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownSymbol))
}

func TestPlaceOrderUnknownSymbolTakesPrecedenceOverFieldValidation(t *testing.T) {
	svc, _, done := newTestService(t, "BTCUSD")
	defer done()

	_, err := svc.PlaceOrder(PlaceOrderRequest{
		Symbol: "DOGEUSD", Side: models.Buy, Kind: models.Limit, Price: 0, Qty: -1,
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownSymbol))
	assert.False(t, errors.Is(err, ErrInvalidQty))
	assert.False(t, errors.Is(err, ErrInvalidPrice))
}

func TestPlaceOrderValidation(t *testing.T) {
	svc, _, done := newTestService(t, "BTCUSD")
	defer done()

	_, err := svc.PlaceOrder(PlaceOrderRequest{Symbol: "BTCUSD", Side: models.Buy, Kind: models.Limit, Price: 0, Qty: 1})
	assert.ErrorIs(t, err, ErrInvalidPrice)

	_, err = svc.PlaceOrder(PlaceOrderRequest{Symbol: "BTCUSD", Side: models.Buy, Kind: models.Limit, Price: 1, Qty: 0})
	assert.ErrorIs(t, err, ErrInvalidQty)
}

func TestPlaceOrderMatchesAndRecordsTrade(t *testing.T) {
	svc, _, done := newTestService(t, "BTCUSD")
	defer done()

	sellRes, err := svc.PlaceOrder(PlaceOrderRequest{
		UserID: "seller", Symbol: "BTCUSD", Side: models.Sell, Kind: models.Limit, Price: 100, Qty: 5,
	})
	require.NoError(t, err)
	assert.False(t, sellRes.Filled)

	buyRes, err := svc.PlaceOrder(PlaceOrderRequest{
		UserID: "buyer", Symbol: "BTCUSD", Side: models.Buy, Kind: models.Limit, Price: 100, Qty: 5,
	})
	require.NoError(t, err)
	assert.True(t, buyRes.Filled)
	require.Len(t, buyRes.Trades, 1)
	assert.Equal(t, int64(100), buyRes.Trades[0].Price)

	snap, err := svc.GetSnapshot("BTCUSD", 10)
	require.NoError(t, err)
	assert.Empty(t, snap.Bids)
	assert.Empty(t, snap.Asks)

	trades, err := svc.GetRecentTrades("BTCUSD", 10)
	require.NoError(t, err)
	require.Len(t, trades, 1)
}

func TestListSymbols(t *testing.T) {
	svc, _, done := newTestService(t, "ETHUSD", "BTCUSD")
	defer done()
	assert.Equal(t, []string{"BTCUSD", "ETHUSD"}, svc.ListSymbols())
}

func TestArrivalSeqStrictlyIncreases(t *testing.T) {
	svc, _, done := newTestService(t, "BTCUSD")
	defer done()

	r1, err := svc.PlaceOrder(PlaceOrderRequest{Symbol: "BTCUSD", Side: models.Buy, Kind: models.Limit, Price: 100, Qty: 1})
	require.NoError(t, err)
	r2, err := svc.PlaceOrder(PlaceOrderRequest{Symbol: "BTCUSD", Side: models.Buy, Kind: models.Limit, Price: 100, Qty: 1})
	require.NoError(t, err)

	assert.Less(t, r1.Order.ArrivalSeq, r2.Order.ArrivalSeq)
}
