// Package cache implements the client-side query cache. Query results are
// stored JSON-shaped under their query key with a per-key merge policy, and
// optimistic mutations write into discardable overlay layers so a failed
// mutation rolls back without custom undo code.
package cache

import (
	"encoding/json"
	"fmt"
	"sync"

	applog "github.com/AdriBusse/FinanZApp2025-sub000/internal/log"
)

// MergePolicy controls how an incoming query result combines with a cached one.
type MergePolicy int

const (
	// Replace discards the cached value and keeps the incoming one. Used for
	// list-valued queries that are always refetched in full.
	Replace MergePolicy = iota

	// ShallowMerge combines object fields, incoming fields winning. Used for
	// the summary, where partial updates are possible.
	ShallowMerge
)

// UpdateOutcome reports whether a read-modify-write actually ran. A Skipped
// outcome means the target query was never fetched into the cache; the UI
// recovers on the next full refetch.
type UpdateOutcome int

const (
	Applied UpdateOutcome = iota
	Skipped
)

// String implements fmt.Stringer.
func (o UpdateOutcome) String() string {
	if o == Applied {
		return "applied"
	}
	return "skipped"
}

// Store is the shared query cache. All access is mutex-guarded; optimistic
// layers overlay the base in creation order.
type Store struct {
	mu       sync.Mutex
	logger   *applog.Logger
	policies map[string]MergePolicy
	base     map[string]json.RawMessage
	layers   []*layer
	nextID   int
}

type layer struct {
	id    int
	patch map[string]json.RawMessage
}

// New creates an empty store with the given per-query merge policies.
func New(logger *applog.Logger, policies map[string]MergePolicy) *Store {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	p := make(map[string]MergePolicy, len(policies))
	for k, v := range policies {
		p[k] = v
	}
	return &Store{
		logger:   logger.WithComponent(applog.ComponentCache),
		policies: p,
		base:     make(map[string]json.RawMessage),
	}
}

// Clear drops every cached query result and all optimistic layers. Called on
// logout so no entry survives into the next session.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.base = make(map[string]json.RawMessage)
	s.layers = nil
	s.logger.Debug("cache cleared")
}

// Write stores a query result under key, applying the key's merge policy.
func (s *Store) Write(key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal cache value for %s: %w", key, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.policies[key] == ShallowMerge {
		if existing, ok := s.base[key]; ok {
			merged, err := mergeObjects(existing, raw)
			if err != nil {
				return fmt.Errorf("merge cache value for %s: %w", key, err)
			}
			s.base[key] = merged
			return nil
		}
	}
	s.base[key] = raw
	return nil
}

// Evict removes a single query result from the base cache.
func (s *Store) Evict(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.base, key)
}

// effective returns the visible value for key: the topmost layer patch if any
// layer touched it, otherwise the base entry. Callers must hold s.mu.
func (s *Store) effective(key string) (json.RawMessage, bool) {
	for i := len(s.layers) - 1; i >= 0; i-- {
		if raw, ok := s.layers[i].patch[key]; ok {
			return raw, true
		}
	}
	raw, ok := s.base[key]
	return raw, ok
}

// Read unmarshals the visible value for key into T. The second return is
// false when the query was never cached.
func Read[T any](s *Store, key string) (T, bool) {
	s.mu.Lock()
	raw, ok := s.effective(key)
	s.mu.Unlock()

	var zero T
	if !ok {
		return zero, false
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		s.logger.Warn("cache entry unmarshal failed", applog.FieldCacheKey, key, applog.FieldError, err.Error())
		return zero, false
	}
	return v, true
}

// Update performs a read-modify-write against the base cache. Missing entries
// yield Skipped without invoking fn.
func Update[T any](s *Store, key string, fn func(T) T) UpdateOutcome {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, ok := s.base[key]
	if !ok {
		s.logger.Debug("cache update skipped", applog.FieldCacheKey, key)
		return Skipped
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		s.logger.Warn("cache update skipped on unmarshal", applog.FieldCacheKey, key, applog.FieldError, err.Error())
		return Skipped
	}
	out, err := json.Marshal(fn(v))
	if err != nil {
		s.logger.Warn("cache update skipped on marshal", applog.FieldCacheKey, key, applog.FieldError, err.Error())
		return Skipped
	}
	s.base[key] = out
	return Applied
}

func mergeObjects(existing, incoming json.RawMessage) (json.RawMessage, error) {
	var dst, src map[string]json.RawMessage
	if err := json.Unmarshal(existing, &dst); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(incoming, &src); err != nil {
		return nil, err
	}
	for k, v := range src {
		dst[k] = v
	}
	return json.Marshal(dst)
}
