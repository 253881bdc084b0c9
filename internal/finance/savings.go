// Package finance wraps the domain GraphQL operations and keeps the client
// cache in step with them, optimistically where the UI needs instant
// feedback. Aggregate sums are recomputed client-side by adding or
// subtracting the transaction amount; the server's value wins on the next
// refetch.
package finance

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/AdriBusse/FinanZApp2025-sub000/internal/cache"
	"github.com/AdriBusse/FinanZApp2025-sub000/internal/graphql"
	applog "github.com/AdriBusse/FinanZApp2025-sub000/internal/log"
	"github.com/AdriBusse/FinanZApp2025-sub000/internal/models"
)

// Savings exposes depot and saving-transaction operations.
type Savings struct {
	client *graphql.Client
	cache  *cache.Store
	logger *applog.Logger
}

func NewSavings(client *graphql.Client, store *cache.Store, logger *applog.Logger) *Savings {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	return &Savings{
		client: client,
		cache:  store,
		logger: logger.WithComponent(applog.ComponentSavings),
	}
}

// Depots returns the cached depot list, fetching it when absent or when
// refresh is forced.
func (s *Savings) Depots(ctx context.Context, refresh bool) ([]models.SavingDepot, error) {
	if !refresh {
		if depots, ok := cache.Read[[]models.SavingDepot](s.cache, KeySavingDepots); ok {
			return depots, nil
		}
	}

	var result struct {
		GetSavingDepots []models.SavingDepot `json:"getSavingDepots"`
	}
	err := s.client.Run(ctx, &graphql.Request{
		Query:         graphql.QueryGetSavingDepots,
		OperationName: graphql.OpGetSavingDepots,
	}, &result)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Write(KeySavingDepots, result.GetSavingDepots); err != nil {
		s.logger.WarnContext(ctx, "caching depots failed", applog.FieldError, err.Error())
	}
	return result.GetSavingDepots, nil
}

// CreateDepot creates a depot and appends it to the cached list.
func (s *Savings) CreateDepot(ctx context.Context, name, short, currency string, savinggoal float64) (*models.SavingDepot, error) {
	depot := models.SavingDepot{Name: name, Short: short}
	if err := depot.Validate(); err != nil {
		return nil, err
	}

	var result struct {
		CreateSavingDepot models.SavingDepot `json:"createSavingDepot"`
	}
	err := s.client.Run(ctx, &graphql.Request{
		Query:         graphql.QueryCreateSavingDepot,
		OperationName: graphql.OpCreateSavingDepot,
		Variables: map[string]any{
			"name":       name,
			"short":      short,
			"currency":   currency,
			"savinggoal": savinggoal,
		},
	}, &result)
	if err != nil {
		return nil, err
	}

	outcome := cache.Update(s.cache, KeySavingDepots, func(depots []models.SavingDepot) []models.SavingDepot {
		return append(depots, result.CreateSavingDepot)
	})
	s.logger.DebugContext(ctx, "depot created",
		applog.FieldDepotID, result.CreateSavingDepot.ID,
		applog.FieldOutcome, outcome.String())
	return &result.CreateSavingDepot, nil
}

// UpdateDepot patches depot fields and mirrors the change into the cache.
func (s *Savings) UpdateDepot(ctx context.Context, id string, fields map[string]any) (*models.SavingDepot, error) {
	variables := map[string]any{"id": id}
	for k, v := range fields {
		variables[k] = v
	}

	var result struct {
		UpdateSavingDepot models.SavingDepot `json:"updateSavingDepot"`
	}
	err := s.client.Run(ctx, &graphql.Request{
		Query:         graphql.QueryUpdateSavingDepot,
		OperationName: graphql.OpUpdateSavingDepot,
		Variables:     variables,
	}, &result)
	if err != nil {
		return nil, err
	}

	updated := result.UpdateSavingDepot
	cache.Update(s.cache, KeySavingDepots, func(depots []models.SavingDepot) []models.SavingDepot {
		for i := range depots {
			if depots[i].ID == id {
				transactions := depots[i].Transactions
				depots[i] = updated
				depots[i].Transactions = transactions
				break
			}
		}
		return depots
	})
	return &updated, nil
}

// DeleteDepot deletes a depot and drops it from the cached list.
func (s *Savings) DeleteDepot(ctx context.Context, id string) error {
	_, err := s.client.Do(ctx, &graphql.Request{
		Query:         graphql.QueryDeleteSavingDepot,
		OperationName: graphql.OpDeleteSavingDepot,
		Variables:     map[string]any{"id": id},
	})
	if err != nil {
		return err
	}

	cache.Update(s.cache, KeySavingDepots, func(depots []models.SavingDepot) []models.SavingDepot {
		kept := depots[:0]
		for _, d := range depots {
			if d.ID != id {
				kept = append(kept, d)
			}
		}
		return kept
	})
	return nil
}

func savingsMutation(depotID string) listMutation[models.SavingDepot, models.SavingTransaction] {
	return listMutation[models.SavingDepot, models.SavingTransaction]{
		queryKey: KeySavingDepots,
		parent:   func(d *models.SavingDepot) bool { return d.ID == depotID },
		txs:      func(d *models.SavingDepot) *[]models.SavingTransaction { return &d.Transactions },
		sum:      func(d *models.SavingDepot) *float64 { return &d.Sum },
		txID:     func(t models.SavingTransaction) string { return t.ID },
		amount:   func(t models.SavingTransaction) float64 { return t.Amount },
	}
}

// CreateTransaction books a deposit or withdrawal against a depot with an
// optimistic cache patch under a temporary id.
func (s *Savings) CreateTransaction(ctx context.Context, depotID string, amount float64, describtion string) (*models.SavingTransaction, error) {
	optimistic := models.SavingTransaction{
		ID:          "tmp-" + uuid.NewString(),
		Amount:      amount,
		Describtion: describtion,
		CreatedAt:   time.Now(),
	}
	if err := optimistic.Validate(); err != nil {
		return nil, err
	}

	req := &graphql.Request{
		Query:         graphql.QueryCreateSavingTransaction,
		OperationName: graphql.OpCreateSavingTx,
		Variables: map[string]any{
			"depotId":     depotID,
			"amount":      amount,
			"describtion": describtion,
		},
	}
	real, outcome, err := runOptimisticAdd(ctx, s.client, s.cache, savingsMutation(depotID), req, "createSavingTransaction", optimistic)
	if err != nil {
		return nil, err
	}
	s.logger.DebugContext(ctx, "saving transaction created",
		applog.FieldDepotID, depotID,
		applog.FieldAmount, amount,
		applog.FieldOutcome, outcome.String())
	return &real, nil
}

// DeleteTransaction removes a transaction and subtracts its amount from the
// depot's cached sum.
func (s *Savings) DeleteTransaction(ctx context.Context, depotID, txID string) error {
	req := &graphql.Request{
		Query:         graphql.QueryDeleteSavingTransaction,
		OperationName: graphql.OpDeleteSavingTx,
		Variables:     map[string]any{"id": txID},
	}
	outcome, err := runOptimisticRemove(ctx, s.client, s.cache, savingsMutation(depotID), req, txID)
	if err != nil {
		return err
	}
	s.logger.DebugContext(ctx, "saving transaction deleted",
		applog.FieldDepotID, depotID,
		applog.FieldOutcome, outcome.String())
	return nil
}
