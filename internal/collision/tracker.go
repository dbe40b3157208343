package collision

import (
	"github.com/arloliu/beamterm/errs"
	"github.com/arloliu/beamterm/internal/hash"
)

// Tracker detects module name collisions while an archive is encoded.
//
// Index entries key module streams by xxHash64, so two distinct names hashing
// to the same ID would silently shadow each other. The tracker remembers the
// name behind every ID and rejects both exact duplicates and true hash
// collisions before they reach the index.
type Tracker struct {
	names map[uint64]string
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{
		names: make(map[uint64]string),
	}
}

// Track registers a module name and returns its ID.
//
// Returns errs.ErrDuplicateModule when the same name was tracked before and
// errs.ErrHashCollision when a different name already owns the ID.
func (t *Tracker) Track(module string) (uint64, error) {
	id := hash.ModuleID(module)

	if prev, exists := t.names[id]; exists {
		if prev == module {
			return 0, errs.ErrDuplicateModule
		}

		return 0, errs.ErrHashCollision
	}

	t.names[id] = module

	return id, nil
}

// Len returns the number of tracked modules.
func (t *Tracker) Len() int {
	return len(t.names)
}
