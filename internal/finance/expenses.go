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

// Expenses exposes expense tracker, category, and template operations.
type Expenses struct {
	client *graphql.Client
	cache  *cache.Store
	logger *applog.Logger
}

func NewExpenses(client *graphql.Client, store *cache.Store, logger *applog.Logger) *Expenses {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	return &Expenses{
		client: client,
		cache:  store,
		logger: logger.WithComponent(applog.ComponentExpenses),
	}
}

// Expenses returns the cached expense list, fetching when absent or forced.
// Archived trackers are excluded; they are fetched separately via Archived.
func (e *Expenses) Expenses(ctx context.Context, refresh bool) ([]models.Expense, error) {
	if !refresh {
		if expenses, ok := cache.Read[[]models.Expense](e.cache, KeyExpenses); ok {
			return expenses, nil
		}
	}

	result, err := e.fetch(ctx, false)
	if err != nil {
		return nil, err
	}
	if err := e.cache.Write(KeyExpenses, result); err != nil {
		e.logger.WarnContext(ctx, "caching expenses failed", applog.FieldError, err.Error())
	}
	return result, nil
}

// Archived fetches archived trackers. These are not cached; the archive
// screen is rarely visited and always wants fresh data.
func (e *Expenses) Archived(ctx context.Context) ([]models.Expense, error) {
	return e.fetch(ctx, true)
}

func (e *Expenses) fetch(ctx context.Context, archived bool) ([]models.Expense, error) {
	var result struct {
		GetExpenses []models.Expense `json:"getExpenses"`
	}
	err := e.client.Run(ctx, &graphql.Request{
		Query:         graphql.QueryGetExpenses,
		OperationName: graphql.OpGetExpenses,
		Variables:     map[string]any{"archived": archived},
	}, &result)
	if err != nil {
		return nil, err
	}
	return result.GetExpenses, nil
}

// CreateExpense creates a tracker and appends it to the cached list.
func (e *Expenses) CreateExpense(ctx context.Context, title, currency string, monthlyRecurring bool, spendingLimit float64) (*models.Expense, error) {
	expense := models.Expense{Title: title}
	if err := expense.Validate(); err != nil {
		return nil, err
	}

	var result struct {
		CreateExpense models.Expense `json:"createExpense"`
	}
	err := e.client.Run(ctx, &graphql.Request{
		Query:         graphql.QueryCreateExpense,
		OperationName: graphql.OpCreateExpense,
		Variables: map[string]any{
			"title":            title,
			"currency":         currency,
			"monthlyRecurring": monthlyRecurring,
			"spendingLimit":    spendingLimit,
		},
	}, &result)
	if err != nil {
		return nil, err
	}

	cache.Update(e.cache, KeyExpenses, func(expenses []models.Expense) []models.Expense {
		return append(expenses, result.CreateExpense)
	})
	e.logger.DebugContext(ctx, "expense created", applog.FieldExpenseID, result.CreateExpense.ID)
	return &result.CreateExpense, nil
}

// UpdateExpense patches tracker fields and mirrors the change into the cache.
// Archiving is an update with archived=true; an archived tracker leaves the
// cached active list.
func (e *Expenses) UpdateExpense(ctx context.Context, id string, fields map[string]any) (*models.Expense, error) {
	variables := map[string]any{"id": id}
	for k, v := range fields {
		variables[k] = v
	}

	var result struct {
		UpdateExpense models.Expense `json:"updateExpense"`
	}
	err := e.client.Run(ctx, &graphql.Request{
		Query:         graphql.QueryUpdateExpense,
		OperationName: graphql.OpUpdateExpense,
		Variables:     variables,
	}, &result)
	if err != nil {
		return nil, err
	}

	updated := result.UpdateExpense
	cache.Update(e.cache, KeyExpenses, func(expenses []models.Expense) []models.Expense {
		for i := range expenses {
			if expenses[i].ID != id {
				continue
			}
			if updated.Archived {
				return append(expenses[:i], expenses[i+1:]...)
			}
			transactions := expenses[i].Transactions
			byCategory := expenses[i].ExpenseByCategory
			expenses[i] = updated
			expenses[i].Transactions = transactions
			expenses[i].ExpenseByCategory = byCategory
			break
		}
		return expenses
	})
	return &updated, nil
}

// Archive marks a tracker archived.
func (e *Expenses) Archive(ctx context.Context, id string) (*models.Expense, error) {
	return e.UpdateExpense(ctx, id, map[string]any{"archived": true})
}

// DeleteExpense deletes a tracker and drops it from the cached list.
func (e *Expenses) DeleteExpense(ctx context.Context, id string) error {
	_, err := e.client.Do(ctx, &graphql.Request{
		Query:         graphql.QueryDeleteExpense,
		OperationName: graphql.OpDeleteExpense,
		Variables:     map[string]any{"id": id},
	})
	if err != nil {
		return err
	}

	cache.Update(e.cache, KeyExpenses, func(expenses []models.Expense) []models.Expense {
		kept := expenses[:0]
		for _, x := range expenses {
			if x.ID != id {
				kept = append(kept, x)
			}
		}
		return kept
	})
	return nil
}

func expensesMutation(expenseID string) listMutation[models.Expense, models.ExpenseTransaction] {
	return listMutation[models.Expense, models.ExpenseTransaction]{
		queryKey: KeyExpenses,
		parent:   func(x *models.Expense) bool { return x.ID == expenseID },
		txs:      func(x *models.Expense) *[]models.ExpenseTransaction { return &x.Transactions },
		sum:      func(x *models.Expense) *float64 { return &x.Sum },
		txID:     func(t models.ExpenseTransaction) string { return t.ID },
		amount:   func(t models.ExpenseTransaction) float64 { return t.Amount },
	}
}

// CreateTransaction books a spend against a tracker with an optimistic cache
// patch under a temporary id. An optional receipt is sent as a multipart
// upload alongside the mutation.
func (e *Expenses) CreateTransaction(ctx context.Context, expenseID string, amount float64, describtion, categoryID string, attachment *graphql.Upload) (*models.ExpenseTransaction, error) {
	optimistic := models.ExpenseTransaction{
		ID:          "tmp-" + uuid.NewString(),
		Amount:      amount,
		Describtion: describtion,
		CreatedAt:   time.Now(),
	}
	if err := optimistic.Validate(); err != nil {
		return nil, err
	}
	if categoryID != "" {
		if categories, ok := cache.Read[[]models.ExpenseCategory](e.cache, KeyExpenseCategories); ok {
			for i := range categories {
				if categories[i].ID == categoryID {
					optimistic.Category = &categories[i]
					break
				}
			}
		}
	}

	variables := map[string]any{
		"expenseId":   expenseID,
		"amount":      amount,
		"describtion": describtion,
	}
	if categoryID != "" {
		variables["categoryId"] = categoryID
	}
	req := &graphql.Request{
		Query:         graphql.QueryCreateExpenseTransaction,
		OperationName: graphql.OpCreateExpenseTx,
		Variables:     variables,
	}
	if attachment != nil {
		upload := *attachment
		upload.VariablePath = "variables.attachment"
		req.Variables["attachment"] = nil
		req.Files = []graphql.Upload{upload}
	}

	real, outcome, err := runOptimisticAdd(ctx, e.client, e.cache, expensesMutation(expenseID), req, "createExpenseTransaction", optimistic)
	if err != nil {
		return nil, err
	}
	e.logger.DebugContext(ctx, "expense transaction created",
		applog.FieldExpenseID, expenseID,
		applog.FieldAmount, amount,
		applog.FieldOutcome, outcome.String())
	return &real, nil
}

// DeleteTransaction removes a transaction and subtracts its amount from the
// tracker's cached sum.
func (e *Expenses) DeleteTransaction(ctx context.Context, expenseID, txID string) error {
	req := &graphql.Request{
		Query:         graphql.QueryDeleteExpenseTransaction,
		OperationName: graphql.OpDeleteExpenseTx,
		Variables:     map[string]any{"id": txID},
	}
	outcome, err := runOptimisticRemove(ctx, e.client, e.cache, expensesMutation(expenseID), req, txID)
	if err != nil {
		return err
	}
	e.logger.DebugContext(ctx, "expense transaction deleted",
		applog.FieldExpenseID, expenseID,
		applog.FieldOutcome, outcome.String())
	return nil
}

// Categories returns the cached category list, fetching when absent or forced.
func (e *Expenses) Categories(ctx context.Context, refresh bool) ([]models.ExpenseCategory, error) {
	if !refresh {
		if categories, ok := cache.Read[[]models.ExpenseCategory](e.cache, KeyExpenseCategories); ok {
			return categories, nil
		}
	}

	var result struct {
		GetExpenseCategories []models.ExpenseCategory `json:"getExpenseCategories"`
	}
	err := e.client.Run(ctx, &graphql.Request{
		Query:         graphql.QueryGetExpenseCategories,
		OperationName: graphql.OpGetExpenseCategories,
	}, &result)
	if err != nil {
		return nil, err
	}
	if err := e.cache.Write(KeyExpenseCategories, result.GetExpenseCategories); err != nil {
		e.logger.WarnContext(ctx, "caching categories failed", applog.FieldError, err.Error())
	}
	return result.GetExpenseCategories, nil
}

// CreateCategory creates an expense category and appends it to the cache.
func (e *Expenses) CreateCategory(ctx context.Context, name, color, icon string) (*models.ExpenseCategory, error) {
	category := models.ExpenseCategory{Name: name}
	if err := category.Validate(); err != nil {
		return nil, err
	}

	var result struct {
		CreateExpenseCategory models.ExpenseCategory `json:"createExpenseCategory"`
	}
	err := e.client.Run(ctx, &graphql.Request{
		Query:         graphql.QueryCreateExpenseCategory,
		OperationName: graphql.OpCreateExpenseCategory,
		Variables:     map[string]any{"name": name, "color": color, "icon": icon},
	}, &result)
	if err != nil {
		return nil, err
	}

	cache.Update(e.cache, KeyExpenseCategories, func(categories []models.ExpenseCategory) []models.ExpenseCategory {
		return append(categories, result.CreateExpenseCategory)
	})
	return &result.CreateExpenseCategory, nil
}

// DeleteCategory deletes a category and drops it from the cache. Transactions
// keep their denormalized category snapshot until the next refetch.
func (e *Expenses) DeleteCategory(ctx context.Context, id string) error {
	_, err := e.client.Do(ctx, &graphql.Request{
		Query:         graphql.QueryDeleteExpenseCategory,
		OperationName: graphql.OpDeleteExpenseCategory,
		Variables:     map[string]any{"id": id},
	})
	if err != nil {
		return err
	}

	cache.Update(e.cache, KeyExpenseCategories, func(categories []models.ExpenseCategory) []models.ExpenseCategory {
		kept := categories[:0]
		for _, c := range categories {
			if c.ID != id {
				kept = append(kept, c)
			}
		}
		return kept
	})
	return nil
}

// Templates returns the cached template list, fetching when absent or forced.
func (e *Expenses) Templates(ctx context.Context, refresh bool) ([]models.ExpenseTransactionTemplate, error) {
	if !refresh {
		if templates, ok := cache.Read[[]models.ExpenseTransactionTemplate](e.cache, KeyTemplates); ok {
			return templates, nil
		}
	}

	var result struct {
		GetExpenseTransactionTemplates []models.ExpenseTransactionTemplate `json:"getExpenseTransactionTemplates"`
	}
	err := e.client.Run(ctx, &graphql.Request{
		Query:         graphql.QueryGetTemplates,
		OperationName: graphql.OpGetTemplates,
	}, &result)
	if err != nil {
		return nil, err
	}
	if err := e.cache.Write(KeyTemplates, result.GetExpenseTransactionTemplates); err != nil {
		e.logger.WarnContext(ctx, "caching templates failed", applog.FieldError, err.Error())
	}
	return result.GetExpenseTransactionTemplates, nil
}

// CreateTemplate saves a reusable transaction prefill.
func (e *Expenses) CreateTemplate(ctx context.Context, describtion string, amount float64, categoryID string) (*models.ExpenseTransactionTemplate, error) {
	probe := models.ExpenseTransaction{Amount: amount, Describtion: describtion}
	if err := probe.Validate(); err != nil {
		return nil, err
	}

	variables := map[string]any{"describtion": describtion, "amount": amount}
	if categoryID != "" {
		variables["categoryId"] = categoryID
	}
	var result struct {
		CreateExpenseTransactionTemplate models.ExpenseTransactionTemplate `json:"createExpenseTransactionTemplate"`
	}
	err := e.client.Run(ctx, &graphql.Request{
		Query:         graphql.QueryCreateTemplate,
		OperationName: graphql.OpCreateTemplate,
		Variables:     variables,
	}, &result)
	if err != nil {
		return nil, err
	}

	cache.Update(e.cache, KeyTemplates, func(templates []models.ExpenseTransactionTemplate) []models.ExpenseTransactionTemplate {
		return append(templates, result.CreateExpenseTransactionTemplate)
	})
	return &result.CreateExpenseTransactionTemplate, nil
}

// DeleteTemplate removes a template.
func (e *Expenses) DeleteTemplate(ctx context.Context, id string) error {
	_, err := e.client.Do(ctx, &graphql.Request{
		Query:         graphql.QueryDeleteTemplate,
		OperationName: graphql.OpDeleteTemplate,
		Variables:     map[string]any{"id": id},
	})
	if err != nil {
		return err
	}

	cache.Update(e.cache, KeyTemplates, func(templates []models.ExpenseTransactionTemplate) []models.ExpenseTransactionTemplate {
		kept := templates[:0]
		for _, t := range templates {
			if t.ID != id {
				kept = append(kept, t)
			}
		}
		return kept
	})
	return nil
}
