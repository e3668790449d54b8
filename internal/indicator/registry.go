package indicator

import (
	"sort"
	"sync"

	"github.com/front-depiction/cli-stock/internal/model"
)

// updateBufferSize is the capacity of the update channel.
const updateBufferSize = 256

// Entry pairs an indicator's latest state with its derived signal.
type Entry struct {
	State  model.IndicatorState
	Signal model.Signal
}

// Update notifies observers that an indicator produced a new signal.
type Update struct {
	ID     string
	Name   string
	Symbol model.Symbol
	Signal model.Signal
}

// Registry holds the latest observation of every running indicator,
// keyed by indicator ID. Reads return copies.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]Entry

	updates chan Update
}

func NewRegistry() *Registry {
	return &Registry{
		entries: make(map[string]Entry),
		updates: make(chan Update, updateBufferSize),
	}
}

// Put records the latest state and signal for an indicator and
// notifies observers without blocking. When the update channel is full
// the oldest pending update is dropped.
func (r *Registry) Put(state model.IndicatorState, sig model.Signal) {
	r.mu.Lock()
	r.entries[state.ID] = Entry{State: state, Signal: sig}
	r.mu.Unlock()

	update := Update{ID: state.ID, Name: state.Name, Symbol: state.Symbol, Signal: sig}
	select {
	case r.updates <- update:
	default:
		select {
		case <-r.updates:
		default:
		}
		select {
		case r.updates <- update:
		default:
		}
	}
}

// Remove forgets an indicator's entry, e.g. when its runner stops.
// Removing an unknown ID is a no-op.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	delete(r.entries, id)
	r.mu.Unlock()
}

// Get returns the latest entry for an indicator ID.
func (r *Registry) Get(id string) (Entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.entries[id]
	return e, ok
}

// Snapshot returns all entries ordered by name then symbol, for stable
// rendering.
func (r *Registry) Snapshot() []Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Entry, 0, len(r.entries))
	for _, e := range r.entries {
		result = append(result, e)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].State.Name != result[j].State.Name {
			return result[i].State.Name < result[j].State.Name
		}
		return result[i].State.Symbol < result[j].State.Symbol
	})
	return result
}

// Updates returns the notification channel.
func (r *Registry) Updates() <-chan Update {
	return r.updates
}
