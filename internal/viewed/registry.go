// Package viewed tracks which event IDs a user has already decided on, so
// the discovery deck never re-offers them. The set is mirrored: a local
// in-memory copy answers exclusion checks synchronously, while a remote
// store is the authority across sessions.
package viewed

import (
	"context"
	"log/slog"
	"sync"
)

// Action tags how an event left the deck.
type Action string

// Valid decision actions.
const (
	ActionSaved  Action = "saved"
	ActionPassed Action = "passed"
)

// Valid reports whether a is a recognized decision action.
func (a Action) Valid() bool {
	return a == ActionSaved || a == ActionPassed
}

// Registry is the session-local exclusion set for a single user. It is
// monotonic: IDs are only ever added, never removed, so a refill computed
// against it can never reintroduce a decided card. The local set is
// authoritative within the session; the remote store catches up
// asynchronously and is never waited on.
//
// Registry is safe for concurrent use.
type Registry struct {
	mu     sync.RWMutex
	userID string
	ids    map[string]Action

	store  Store
	logger *slog.Logger
}

// NewRegistry creates a registry for userID backed by the given remote
// store. The registry starts empty; call Load to merge in the remote set.
func NewRegistry(userID string, store Store, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		userID: userID,
		ids:    make(map[string]Action),
		store:  store,
		logger: logger,
	}
}

// Load fetches the authoritative remote set and merges it into the local
// set. Failure is fail-open: the local set is left as-is and an empty
// remote contribution is assumed. The worst case of failing open is
// re-showing an already-seen event, never a hard failure.
func (r *Registry) Load(ctx context.Context) {
	ids, err := r.store.LoadIDs(ctx, r.userID)
	if err != nil {
		r.logger.Warn("failed to load viewed event ids, continuing with local set",
			"error", err, "user_id", r.userID)
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range ids {
		if _, ok := r.ids[id]; !ok {
			// Action tags are not returned by LoadIDs; exclusion only needs
			// membership.
			r.ids[id] = ""
		}
	}
}

// MarkLocal adds eventID to the local set. The registry never writes the
// remote store itself; the decision recorder owns that leg, so a marked
// event is excluded immediately while its upsert is still in flight.
func (r *Registry) MarkLocal(eventID string, action Action) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ids[eventID] = action
}

// Contains reports whether eventID has been decided on this session.
func (r *Registry) Contains(eventID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.ids[eventID]
	return ok
}

// ExcludedIDs returns a snapshot of every decided event ID, local and
// remote merged. The slice is a copy and safe to retain.
func (r *Registry) ExcludedIDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.ids))
	for id := range r.ids {
		ids = append(ids, id)
	}
	return ids
}

// Len returns the size of the exclusion set.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.ids)
}
