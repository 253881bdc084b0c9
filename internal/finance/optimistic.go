package finance

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/AdriBusse/FinanZApp2025-sub000/internal/cache"
	"github.com/AdriBusse/FinanZApp2025-sub000/internal/graphql"
)

// listMutation describes one optimistic list patch: which cached query holds
// the parent list, how to locate the parent, and how a transaction moves the
// parent's aggregate sum. The four create/delete call sites (saving and
// expense transactions) share this one implementation.
type listMutation[P any, T any] struct {
	queryKey string
	parent   func(*P) bool
	txs      func(*P) *[]T
	sum      func(*P) *float64
	txID     func(T) string
	amount   func(T) float64
}

// add removes any entry whose id matches one of dropIDs or the incoming
// transaction (so the optimistic placeholder never shows next to the real
// row), appends tx, and adds its amount to the parent's cached sum.
func (m listMutation[P, T]) add(items []P, tx T, dropIDs ...string) []P {
	drop := map[string]bool{m.txID(tx): true}
	for _, id := range dropIDs {
		drop[id] = true
	}
	for i := range items {
		if !m.parent(&items[i]) {
			continue
		}
		list := m.txs(&items[i])
		kept := (*list)[:0]
		for _, existing := range *list {
			if !drop[m.txID(existing)] {
				kept = append(kept, existing)
			}
		}
		*list = append(kept, tx)
		*m.sum(&items[i]) += m.amount(tx)
		break
	}
	return items
}

// remove looks the transaction up by id first (to know its amount), removes
// it, and subtracts its amount from the parent's cached sum. Unknown ids
// leave the list untouched.
func (m listMutation[P, T]) remove(items []P, txID string) []P {
	for i := range items {
		if !m.parent(&items[i]) {
			continue
		}
		list := m.txs(&items[i])
		for j, existing := range *list {
			if m.txID(existing) == txID {
				*m.sum(&items[i]) -= m.amount(existing)
				*list = append((*list)[:j], (*list)[j+1:]...)
				break
			}
		}
		break
	}
	return items
}

// runOptimisticAdd applies the optimistic transaction to the cache, runs the
// mutation, and reconciles: on success the optimistic layer is dropped and
// the same patch re-runs with the server payload; on failure the layer is
// dropped and nothing else happens (automatic rollback). A cache miss makes
// the patching a no-op in both phases; correctness is restored by the next
// refetch.
func runOptimisticAdd[P any, T any](
	ctx context.Context,
	client *graphql.Client,
	store *cache.Store,
	m listMutation[P, T],
	req *graphql.Request,
	dataField string,
	optimistic T,
) (T, cache.UpdateOutcome, error) {
	tempID := m.txID(optimistic)

	layer := store.Begin()
	outcome := cache.UpdateIn(layer, m.queryKey, func(items []P) []P {
		return m.add(items, optimistic)
	})

	var zero T
	resp, err := client.Do(ctx, req)
	if err != nil {
		layer.Rollback()
		return zero, outcome, err
	}

	var payload map[string]json.RawMessage
	if err := json.Unmarshal(resp.Data, &payload); err != nil {
		layer.Rollback()
		return zero, outcome, fmt.Errorf("decode %s response: %w", req.OperationName, err)
	}
	var real T
	if err := json.Unmarshal(payload[dataField], &real); err != nil {
		layer.Rollback()
		return zero, outcome, fmt.Errorf("decode %s payload: %w", req.OperationName, err)
	}

	layer.Commit()
	outcome = cache.Update(store, m.queryKey, func(items []P) []P {
		return m.add(items, real, tempID)
	})
	return real, outcome, nil
}

// runOptimisticRemove mirrors runOptimisticAdd for deletions.
func runOptimisticRemove[P any, T any](
	ctx context.Context,
	client *graphql.Client,
	store *cache.Store,
	m listMutation[P, T],
	req *graphql.Request,
	txID string,
) (cache.UpdateOutcome, error) {
	layer := store.Begin()
	outcome := cache.UpdateIn(layer, m.queryKey, func(items []P) []P {
		return m.remove(items, txID)
	})

	if _, err := client.Do(ctx, req); err != nil {
		layer.Rollback()
		return outcome, err
	}

	layer.Commit()
	outcome = cache.Update(store, m.queryKey, func(items []P) []P {
		return m.remove(items, txID)
	})
	return outcome, nil
}
