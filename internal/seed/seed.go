// Package seed places a handful of resting orders at process startup so a
// freshly booted instance has visible depth instead of an empty book.
package seed

import (
	"math/rand"

	"lumenex/internal/intake"
	"lumenex/internal/models"

	"github.com/rs/zerolog/log"
)

// levelsPerSide is how many price levels get one resting order on each
// side of the midpoint, per symbol.
const levelsPerSide = 5

// Run places levelsPerSide limit orders on each side of midPrice for every
// symbol svc knows about. Errors are logged and skipped rather than
// propagated: a seeding failure should never stop the process from
// serving.
func Run(svc *intake.Service, midPrice int64, tick int64, rng *rand.Rand) {
	for _, symbol := range svc.ListSymbols() {
		for i := 1; i <= levelsPerSide; i++ {
			placeSeedOrder(svc, symbol, models.Buy, midPrice-int64(i)*tick, rng)
			placeSeedOrder(svc, symbol, models.Sell, midPrice+int64(i)*tick, rng)
		}
	}
}

func placeSeedOrder(svc *intake.Service, symbol string, side models.Side, price int64, rng *rand.Rand) {
	qty := int64(1 + rng.Intn(100))
	_, err := svc.PlaceOrder(intake.PlaceOrderRequest{
		UserID: "seed",
		Symbol: symbol,
		Side:   side,
		Kind:   models.Limit,
		Price:  price,
		Qty:    qty,
	})
	if err != nil {
		log.Warn().Err(err).Str("symbol", symbol).Msg("failed to place seed order")
	}
}
