// Package registry maps symbols to order books, fixed at startup, and owns
// one dispatcher goroutine per symbol that preserves per-symbol event order
// between the matching critical section and the Notifier's fan-out.
package registry

import (
	"context"
	"sort"

	"lumenex/internal/book"
	"lumenex/internal/notify"

	"github.com/rs/zerolog/log"
	tomb "gopkg.in/tomb.v2"
)

// dispatchBuffer bounds the per-symbol event queue between the locked
// matching section (which only enqueues) and the dispatcher goroutine
// (which calls Notifier.Broadcast). A buffer this size only fills if the
// dispatcher falls far behind sustained matching throughput.
const dispatchBuffer = 4096

type entry struct {
	book   *book.OrderBook
	events chan notify.Event
}

// Registry is a symbol -> OrderBook map, fixed at construction (spec.md
// §2 item 4: "fixed at startup").
type Registry struct {
	entries  map[string]*entry
	symbols  []string
	notifier *notify.Notifier
	t        tomb.Tomb
}

// New builds a Registry with one empty OrderBook per symbol. history bounds
// each book's trade ring (see book.New); history <= 0 uses the book
// package's default.
func New(symbols []string, history int, notifier *notify.Notifier) *Registry {
	r := &Registry{
		entries:  make(map[string]*entry, len(symbols)),
		symbols:  append([]string(nil), symbols...),
		notifier: notifier,
	}
	sort.Strings(r.symbols)
	for _, s := range symbols {
		r.entries[s] = &entry{
			book:   book.New(s, history),
			events: make(chan notify.Event, dispatchBuffer),
		}
	}
	return r
}

// Start launches the per-symbol dispatcher goroutines, supervised by a
// tomb.Tomb so a panic or error in one doesn't silently vanish.
func (r *Registry) Start(ctx context.Context) {
	for symbol, e := range r.entries {
		e := e
		symbol := symbol
		r.t.Go(func() error {
			return r.dispatch(ctx, symbol, e)
		})
	}
}

func (r *Registry) dispatch(ctx context.Context, symbol string, e *entry) error {
	log.Debug().Str("symbol", symbol).Msg("dispatcher starting")
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-r.t.Dying():
			return nil
		case ev := <-e.events:
			r.notifier.Broadcast(ev)
		}
	}
}

// Close stops every dispatcher and waits for them to exit.
func (r *Registry) Close() error {
	r.t.Kill(nil)
	return r.t.Wait()
}

// Symbols returns the known symbols in a stable, sorted order
// (list_symbols).
func (r *Registry) Symbols() []string {
	return append([]string(nil), r.symbols...)
}

// Book returns the order book for symbol, or false if it is not known to
// this registry (unknown-symbol error, per spec.md §7).
func (r *Registry) Book(symbol string) (*book.OrderBook, bool) {
	e, ok := r.entries[symbol]
	if !ok {
		return nil, false
	}
	return e.book, true
}

// Enqueue hands ev to symbol's dispatcher. Called by the intake facade
// while still holding the book's write lock, so enqueue order equals
// lock-acquisition order; the actual Notifier.Broadcast happens later, off
// the lock, in the dispatcher goroutine. Returns false if the queue is
// saturated (should not happen under normal operation; logged as a warning
// rather than blocking the matching critical section).
func (r *Registry) Enqueue(symbol string, ev notify.Event) bool {
	e, ok := r.entries[symbol]
	if !ok {
		return false
	}
	select {
	case e.events <- ev:
		return true
	default:
		log.Warn().Str("symbol", symbol).Msg("event dispatch queue saturated, dropping notification")
		return false
	}
}
