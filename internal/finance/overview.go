package finance

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/AdriBusse/FinanZApp2025-sub000/internal/cache"
	"github.com/AdriBusse/FinanZApp2025-sub000/internal/graphql"
	applog "github.com/AdriBusse/FinanZApp2025-sub000/internal/log"
	"github.com/AdriBusse/FinanZApp2025-sub000/internal/models"
)

// Overview loads everything the dashboard renders from.
type Overview struct {
	client   *graphql.Client
	cache    *cache.Store
	savings  *Savings
	expenses *Expenses
	logger   *applog.Logger
}

func NewOverview(client *graphql.Client, store *cache.Store, savings *Savings, expenses *Expenses, logger *applog.Logger) *Overview {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	return &Overview{
		client:   client,
		cache:    store,
		savings:  savings,
		expenses: expenses,
		logger:   logger.WithComponent(applog.ComponentApp),
	}
}

// Snapshot is the data the dashboard tiles are computed from.
type Snapshot struct {
	Summary  models.Summary
	Depots   []models.SavingDepot
	Expenses []models.Expense
}

// Summary returns the cached server aggregate, fetching when absent or forced.
func (o *Overview) Summary(ctx context.Context, refresh bool) (models.Summary, error) {
	if !refresh {
		if summary, ok := cache.Read[models.Summary](o.cache, KeySummary); ok {
			return summary, nil
		}
	}

	var result struct {
		Summary models.Summary `json:"summary"`
	}
	err := o.client.Run(ctx, &graphql.Request{
		Query:         graphql.QuerySummary,
		OperationName: graphql.OpSummary,
	}, &result)
	if err != nil {
		return models.Summary{}, err
	}
	if err := o.cache.Write(KeySummary, result.Summary); err != nil {
		o.logger.WarnContext(ctx, "caching summary failed", applog.FieldError, err.Error())
	}
	return result.Summary, nil
}

// Load fetches the summary, depots, and expenses concurrently. One failing
// fetch fails the whole load; the dashboard either renders a consistent
// snapshot or an error state.
func (o *Overview) Load(ctx context.Context, refresh bool) (*Snapshot, error) {
	var snapshot Snapshot
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		summary, err := o.Summary(gctx, refresh)
		if err == nil {
			snapshot.Summary = summary
		}
		return err
	})
	g.Go(func() error {
		depots, err := o.savings.Depots(gctx, refresh)
		if err == nil {
			snapshot.Depots = depots
		}
		return err
	})
	g.Go(func() error {
		expenses, err := o.expenses.Expenses(gctx, refresh)
		if err == nil {
			snapshot.Expenses = expenses
		}
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &snapshot, nil
}
