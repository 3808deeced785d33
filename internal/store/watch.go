// internal/store/watch.go
//
// Subscription hub shared by store implementations. Every mutation
// broadcasts a wake-up; each watcher re-runs its filtered query on its
// own goroutine and pushes the full result set to the subscriber.
// Cancellation is synchronous from the caller's perspective: once
// cancel returns, no further callbacks are delivered.

package store

import (
	"sync"

	"github.com/forcaduo/server/internal/match"
)

// watchQueryFunc re-evaluates a status-filtered query for a watcher.
type watchQueryFunc func(status match.Status, limit int) ([]match.Game, error)

type watcher struct {
	status     match.Status
	limit      int
	onSnapshot func([]match.Game)
	onError    func(error)

	notify chan struct{} // coalesced wake-ups, capacity 1
	done   chan struct{}

	deliverMu sync.Mutex // serializes delivery against cancellation
	cancelled bool
}

func (w *watcher) run(query watchQueryFunc) {
	for {
		select {
		case <-w.done:
			return
		case <-w.notify:
			snap, err := query(w.status, w.limit)
			w.deliverMu.Lock()
			if !w.cancelled {
				if err != nil {
					w.onError(err)
				} else {
					w.onSnapshot(snap)
				}
			}
			w.deliverMu.Unlock()
		}
	}
}

// watchHub tracks live watchers for one store instance.
type watchHub struct {
	mu       sync.Mutex
	nextTok  int
	watchers map[int]*watcher
	query    watchQueryFunc
}

func newWatchHub(query watchQueryFunc) *watchHub {
	return &watchHub{watchers: make(map[int]*watcher), query: query}
}

// subscribe registers a watcher, schedules its initial snapshot, and
// returns an idempotent cancel.
func (h *watchHub) subscribe(status match.Status, limit int, onSnapshot func([]match.Game), onError func(error)) func() {
	w := &watcher{
		status:     status,
		limit:      limit,
		onSnapshot: onSnapshot,
		onError:    onError,
		notify:     make(chan struct{}, 1),
		done:       make(chan struct{}),
	}

	h.mu.Lock()
	tok := h.nextTok
	h.nextTok++
	h.watchers[tok] = w
	h.mu.Unlock()

	go w.run(h.query)
	w.notify <- struct{}{} // initial snapshot

	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.watchers, tok)
			h.mu.Unlock()

			w.deliverMu.Lock()
			w.cancelled = true
			w.deliverMu.Unlock()
			close(w.done)
		})
	}
}

// broadcast wakes every watcher. Sends are non-blocking: a watcher that
// already has a pending wake-up will pick up the latest state anyway.
func (h *watchHub) broadcast() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, w := range h.watchers {
		select {
		case w.notify <- struct{}{}:
		default:
		}
	}
}
