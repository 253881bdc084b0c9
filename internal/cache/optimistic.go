package cache

import (
	"encoding/json"

	applog "github.com/AdriBusse/FinanZApp2025-sub000/internal/log"
)

// Optimistic is a discardable overlay created for a single in-flight mutation.
// Writes through it land in the layer, never in the base, so dropping the
// layer is a complete rollback.
type Optimistic struct {
	store *Store
	id    int
	done  bool
}

// Begin opens a new optimistic layer on top of the base cache.
func (s *Store) Begin() *Optimistic {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	l := &layer{id: s.nextID, patch: make(map[string]json.RawMessage)}
	s.layers = append(s.layers, l)
	return &Optimistic{store: s, id: l.id}
}

// Rollback discards the layer. Safe to call after Commit; the second call is
// a no-op.
func (o *Optimistic) Rollback() {
	o.discard()
}

// Commit discards the layer; the caller then applies the confirmed server
// payload to the base cache with the same update function, which is written
// to tolerate running against either phase.
func (o *Optimistic) Commit() {
	o.discard()
}

func (o *Optimistic) discard() {
	o.store.mu.Lock()
	defer o.store.mu.Unlock()

	if o.done {
		return
	}
	o.done = true
	for i, l := range o.store.layers {
		if l.id == o.id {
			o.store.layers = append(o.store.layers[:i], o.store.layers[i+1:]...)
			return
		}
	}
}

// UpdateIn performs a read-modify-write through the optimistic layer: it
// reads the currently visible value (base plus layers) and writes the result
// into this mutation's layer only.
func UpdateIn[T any](o *Optimistic, key string, fn func(T) T) UpdateOutcome {
	s := o.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if o.done {
		return Skipped
	}

	raw, ok := s.effective(key)
	if !ok {
		s.logger.Debug("optimistic update skipped", applog.FieldCacheKey, key)
		return Skipped
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		s.logger.Warn("optimistic update skipped on unmarshal", applog.FieldCacheKey, key, applog.FieldError, err.Error())
		return Skipped
	}
	out, err := json.Marshal(fn(v))
	if err != nil {
		s.logger.Warn("optimistic update skipped on marshal", applog.FieldCacheKey, key, applog.FieldError, err.Error())
		return Skipped
	}

	for _, l := range s.layers {
		if l.id == o.id {
			l.patch[key] = out
			return Applied
		}
	}
	return Skipped
}
