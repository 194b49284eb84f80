package table

import (
	"sync"
	"time"

	"github.com/fadedpez/blackjack/pkg/services/blackjack"
)

// subscriberBuffer is how many snapshots a slow watcher may fall behind
const subscriberBuffer = 4

// Table is one running game: its round plus the bookkeeping the manager needs
type Table struct {
	ID string

	mu       sync.Mutex // serialises every command on the round
	round    *blackjack.Round
	lastUsed time.Time
	recorded string // ID of the last round whose result was stored
	closed   bool

	subscribers map[int]chan blackjack.Snapshot
	nextSub     int
}

func newTable(id string, round *blackjack.Round, now time.Time) *Table {
	return &Table{
		ID:          id,
		round:       round,
		lastUsed:    now,
		subscribers: make(map[int]chan blackjack.Snapshot),
	}
}

// humansBroke reports whether no human seat has chips left
func (t *Table) humansBroke() bool {
	for _, s := range t.round.Seats {
		if !s.IsAI && s.Chips > 0 {
			return false
		}
	}
	return true
}

// publish sends a snapshot to every watcher. A watcher that is full loses its
// oldest snapshot rather than blocking the table.
func (t *Table) publish(snap blackjack.Snapshot) {
	for _, ch := range t.subscribers {
		select {
		case ch <- snap:
			continue
		default:
		}
		select {
		case <-ch:
		default:
		}
		// only publish sends, and it holds t.mu, so there is room now
		ch <- snap
	}
}

func (t *Table) subscribe() (int, chan blackjack.Snapshot) {
	id := t.nextSub
	t.nextSub++
	ch := make(chan blackjack.Snapshot, subscriberBuffer)
	t.subscribers[id] = ch
	return id, ch
}

func (t *Table) unsubscribe(id int) {
	if ch, ok := t.subscribers[id]; ok {
		delete(t.subscribers, id)
		close(ch)
	}
}

// close ends every subscription; the table accepts no further commands
func (t *Table) close() {
	t.closed = true
	for id := range t.subscribers {
		t.unsubscribe(id)
	}
}
