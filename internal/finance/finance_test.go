package finance

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/AdriBusse/FinanZApp2025-sub000/internal/cache"
	"github.com/AdriBusse/FinanZApp2025-sub000/internal/graphql"
	"github.com/AdriBusse/FinanZApp2025-sub000/internal/models"
)

// fakeServer answers each operation with the configured handler. Unconfigured
// operations fail the test.
type fakeServer struct {
	t        *testing.T
	handlers map[string]func(variables map[string]any) string
}

func newFakeServer(t *testing.T) (*fakeServer, *graphql.Client, *cache.Store) {
	t.Helper()
	fs := &fakeServer{t: t, handlers: make(map[string]func(map[string]any) string)}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			OperationName string         `json:"operationName"`
			Variables     map[string]any `json:"variables"`
		}
		if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
			if err := r.ParseMultipartForm(1 << 20); err != nil {
				fs.t.Errorf("bad multipart request: %v", err)
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			if err := json.Unmarshal([]byte(r.FormValue("operations")), &req); err != nil {
				fs.t.Errorf("bad operations field: %v", err)
				return
			}
		} else if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			fs.t.Errorf("bad request body: %v", err)
			return
		}

		handler, ok := fs.handlers[req.OperationName]
		if !ok {
			fs.t.Errorf("unexpected operation %q", req.OperationName)
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(handler(req.Variables)))
	}))
	t.Cleanup(server.Close)

	client := graphql.New(graphql.Config{Endpoint: server.URL, Timeout: 5 * time.Second})
	store := cache.New(nil, CachePolicies())
	return fs, client, store
}

func (fs *fakeServer) handle(operation string, fn func(map[string]any) string) {
	fs.handlers[operation] = fn
}

func seedDepots(store *cache.Store) {
	store.Write(KeySavingDepots, []models.SavingDepot{{
		ID: "d1", Name: "Vacation", Short: "VAC", Sum: 100,
		Transactions: []models.SavingTransaction{
			{ID: "t1", Amount: 100, Describtion: "seed", CreatedAt: time.Now()},
		},
	}})
}

func cachedDepot(t *testing.T, store *cache.Store) models.SavingDepot {
	t.Helper()
	depots, ok := cache.Read[[]models.SavingDepot](store, KeySavingDepots)
	if !ok || len(depots) != 1 {
		t.Fatalf("expected one cached depot, got %v (ok=%v)", depots, ok)
	}
	return depots[0]
}

func TestSavings_CreateTransaction_Confirmed(t *testing.T) {
	fs, client, store := newFakeServer(t)
	seedDepots(store)
	savings := NewSavings(client, store, nil)

	fs.handle(graphql.OpCreateSavingTx, func(v map[string]any) string {
		return `{"data":{"createSavingTransaction":{"id":"t2","amount":50,"describtion":"bonus","createdAt":"2026-08-30T10:00:00Z"}}}`
	})

	tx, err := savings.CreateTransaction(context.Background(), "d1", 50, "bonus")
	if err != nil {
		t.Fatalf("CreateTransaction failed: %v", err)
	}
	if tx.ID != "t2" {
		t.Fatalf("expected server id, got %q", tx.ID)
	}

	depot := cachedDepot(t, store)
	if len(depot.Transactions) != 2 {
		t.Fatalf("expected 2 transactions, got %v", depot.Transactions)
	}
	for _, cached := range depot.Transactions {
		if strings.HasPrefix(cached.ID, "tmp-") {
			t.Fatalf("temporary entry survived resolution: %v", depot.Transactions)
		}
	}
	if depot.Sum != 150 {
		t.Fatalf("expected sum 150, got %v", depot.Sum)
	}
}

func TestSavings_CreateTransaction_RolledBack(t *testing.T) {
	fs, client, store := newFakeServer(t)
	seedDepots(store)
	savings := NewSavings(client, store, nil)

	fs.handle(graphql.OpCreateSavingTx, func(v map[string]any) string {
		return `{"errors":[{"message":"depot is locked","extensions":{"code":"BAD_USER_INPUT"}}]}`
	})

	before := cachedDepot(t, store)
	_, err := savings.CreateTransaction(context.Background(), "d1", 50, "bonus")
	if err == nil {
		t.Fatal("expected mutation error")
	}

	after := cachedDepot(t, store)
	if len(after.Transactions) != len(before.Transactions) || after.Sum != before.Sum {
		t.Fatalf("rollback must restore the cache exactly: before=%+v after=%+v", before, after)
	}
}

func TestSavings_DeleteTransaction_Confirmed(t *testing.T) {
	fs, client, store := newFakeServer(t)
	seedDepots(store)
	savings := NewSavings(client, store, nil)

	fs.handle(graphql.OpDeleteSavingTx, func(v map[string]any) string {
		return `{"data":{"deleteSavingTransaction":true}}`
	})

	if err := savings.DeleteTransaction(context.Background(), "d1", "t1"); err != nil {
		t.Fatalf("DeleteTransaction failed: %v", err)
	}

	depot := cachedDepot(t, store)
	if len(depot.Transactions) != 0 {
		t.Fatalf("expected empty list, got %v", depot.Transactions)
	}
	if depot.Sum != 0 {
		t.Fatalf("expected sum 0 after removing the only deposit, got %v", depot.Sum)
	}
}

func TestSavings_DeleteTransaction_RolledBack(t *testing.T) {
	fs, client, store := newFakeServer(t)
	seedDepots(store)
	savings := NewSavings(client, store, nil)

	fs.handle(graphql.OpDeleteSavingTx, func(v map[string]any) string {
		return `{"errors":[{"message":"not found","extensions":{"code":"BAD_USER_INPUT"}}]}`
	})

	if err := savings.DeleteTransaction(context.Background(), "d1", "t1"); err == nil {
		t.Fatal("expected mutation error")
	}

	depot := cachedDepot(t, store)
	if len(depot.Transactions) != 1 || depot.Sum != 100 {
		t.Fatalf("rollback must restore the cache exactly, got %+v", depot)
	}
}

func TestSavings_CreateTransaction_UncachedListStillSucceeds(t *testing.T) {
	fs, client, store := newFakeServer(t)
	savings := NewSavings(client, store, nil)

	fs.handle(graphql.OpCreateSavingTx, func(v map[string]any) string {
		return `{"data":{"createSavingTransaction":{"id":"t2","amount":50,"describtion":"bonus","createdAt":"2026-08-30T10:00:00Z"}}}`
	})

	// The depot list was never fetched; the cache patch is skipped but the
	// mutation still goes through.
	tx, err := savings.CreateTransaction(context.Background(), "d1", 50, "bonus")
	if err != nil {
		t.Fatalf("CreateTransaction failed: %v", err)
	}
	if tx.ID != "t2" {
		t.Fatalf("expected server payload, got %+v", tx)
	}
	if _, ok := cache.Read[[]models.SavingDepot](store, KeySavingDepots); ok {
		t.Fatal("skipped patch must not materialize a cache entry")
	}
}

func TestSavings_CreateTransaction_RejectsInvalidInput(t *testing.T) {
	_, client, store := newFakeServer(t)
	savings := NewSavings(client, store, nil)

	if _, err := savings.CreateTransaction(context.Background(), "d1", 0, "x"); err == nil {
		t.Fatal("zero amount must be rejected before any request")
	}
	if _, err := savings.CreateTransaction(context.Background(), "d1", 10, ""); err == nil {
		t.Fatal("empty description must be rejected before any request")
	}
}

func TestSavings_Depots_CacheFirst(t *testing.T) {
	fs, client, store := newFakeServer(t)
	savings := NewSavings(client, store, nil)

	fetches := 0
	fs.handle(graphql.OpGetSavingDepots, func(v map[string]any) string {
		fetches++
		return `{"data":{"getSavingDepots":[{"id":"d1","name":"Vacation","short":"VAC","sum":0,"transactions":[]}]}}`
	})

	ctx := context.Background()
	if _, err := savings.Depots(ctx, false); err != nil {
		t.Fatalf("first load failed: %v", err)
	}
	if _, err := savings.Depots(ctx, false); err != nil {
		t.Fatalf("cached load failed: %v", err)
	}
	if fetches != 1 {
		t.Fatalf("second load must come from cache, saw %d fetches", fetches)
	}

	if _, err := savings.Depots(ctx, true); err != nil {
		t.Fatalf("refresh failed: %v", err)
	}
	if fetches != 2 {
		t.Fatalf("refresh must bypass the cache, saw %d fetches", fetches)
	}
}

func TestExpenses_CreateTransaction_WithAttachment(t *testing.T) {
	fs, client, store := newFakeServer(t)
	store.Write(KeyExpenses, []models.Expense{{ID: "e1", Title: "Groceries", Sum: 10,
		Transactions: []models.ExpenseTransaction{{ID: "x1", Amount: 10, Describtion: "seed"}}}})
	expenses := NewExpenses(client, store, nil)

	fs.handle(graphql.OpCreateExpenseTx, func(v map[string]any) string {
		return `{"data":{"createExpenseTransaction":{"id":"x2","amount":4.2,"describtion":"coffee","createdAt":"2026-08-30T10:00:00Z"}}}`
	})

	upload := &graphql.Upload{FileName: "receipt.png", ContentType: "image/png", Content: strings.NewReader("png")}
	tx, err := expenses.CreateTransaction(context.Background(), "e1", 4.2, "coffee", "", upload)
	if err != nil {
		t.Fatalf("CreateTransaction failed: %v", err)
	}
	if tx.ID != "x2" {
		t.Fatalf("expected server id, got %q", tx.ID)
	}

	cached, _ := cache.Read[[]models.Expense](store, KeyExpenses)
	if len(cached[0].Transactions) != 2 || cached[0].Sum != 14.2 {
		t.Fatalf("expected updated tracker, got %+v", cached[0])
	}
}

func TestExpenses_CreateTransaction_AttachesCachedCategory(t *testing.T) {
	fs, client, store := newFakeServer(t)
	store.Write(KeyExpenses, []models.Expense{{ID: "e1", Title: "Groceries"}})
	store.Write(KeyExpenseCategories, []models.ExpenseCategory{{ID: "c1", Name: "Food"}})
	expenses := NewExpenses(client, store, nil)

	var sentCategory any
	fs.handle(graphql.OpCreateExpenseTx, func(v map[string]any) string {
		sentCategory = v["categoryId"]
		return `{"data":{"createExpenseTransaction":{"id":"x2","amount":4.2,"describtion":"coffee","createdAt":"2026-08-30T10:00:00Z","category":{"id":"c1","name":"Food"}}}}`
	})

	tx, err := expenses.CreateTransaction(context.Background(), "e1", 4.2, "coffee", "c1", nil)
	if err != nil {
		t.Fatalf("CreateTransaction failed: %v", err)
	}
	if sentCategory != "c1" {
		t.Fatalf("expected categoryId variable, got %v", sentCategory)
	}
	if tx.Category == nil || tx.Category.ID != "c1" {
		t.Fatalf("expected category on payload, got %+v", tx.Category)
	}
}

func TestExpenses_UpdateExpense_ArchivingLeavesActiveList(t *testing.T) {
	fs, client, store := newFakeServer(t)
	store.Write(KeyExpenses, []models.Expense{{ID: "e1", Title: "Groceries"}, {ID: "e2", Title: "Travel"}})
	expenses := NewExpenses(client, store, nil)

	fs.handle(graphql.OpUpdateExpense, func(v map[string]any) string {
		return `{"data":{"updateExpense":{"id":"e1","title":"Groceries","archived":true,"sum":0}}}`
	})

	if _, err := expenses.Archive(context.Background(), "e1"); err != nil {
		t.Fatalf("Archive failed: %v", err)
	}

	cached, _ := cache.Read[[]models.Expense](store, KeyExpenses)
	if len(cached) != 1 || cached[0].ID != "e2" {
		t.Fatalf("archived tracker must leave the cached active list, got %v", cached)
	}
}

func TestOverview_LoadFansOut(t *testing.T) {
	fs, client, store := newFakeServer(t)
	savings := NewSavings(client, store, nil)
	expenses := NewExpenses(client, store, nil)
	overview := NewOverview(client, store, savings, expenses, nil)

	fs.handle(graphql.OpSummary, func(v map[string]any) string {
		return `{"data":{"summary":{"savingSum":100,"expenseTotal":40,"spendToday":4.2,"netWorth":60}}}`
	})
	fs.handle(graphql.OpGetSavingDepots, func(v map[string]any) string {
		return `{"data":{"getSavingDepots":[{"id":"d1","name":"Vacation","short":"VAC","sum":100,"transactions":[]}]}}`
	})
	fs.handle(graphql.OpGetExpenses, func(v map[string]any) string {
		return `{"data":{"getExpenses":[{"id":"e1","title":"Groceries","sum":40,"transactions":[]}]}}`
	})

	snapshot, err := overview.Load(context.Background(), true)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if snapshot.Summary.NetWorth != 60 || len(snapshot.Depots) != 1 || len(snapshot.Expenses) != 1 {
		t.Fatalf("unexpected snapshot: %+v", snapshot)
	}
}

func TestOverview_Summary_NextFetchWins(t *testing.T) {
	fs, client, store := newFakeServer(t)
	savings := NewSavings(client, store, nil)
	expenses := NewExpenses(client, store, nil)
	overview := NewOverview(client, store, savings, expenses, nil)
	ctx := context.Background()

	spendToday := 4.2
	fs.handle(graphql.OpSummary, func(v map[string]any) string {
		return fmt.Sprintf(`{"data":{"summary":{"savingSum":100,"expenseTotal":40,"spendToday":%v,"netWorth":60}}}`, spendToday)
	})

	if _, err := overview.Summary(ctx, true); err != nil {
		t.Fatalf("first fetch failed: %v", err)
	}

	// A new day starts and the server reports zero spend; the refetch must
	// overwrite the cached value even though the field is now zero.
	spendToday = 0
	if _, err := overview.Summary(ctx, true); err != nil {
		t.Fatalf("second fetch failed: %v", err)
	}

	got, ok := cache.Read[models.Summary](store, KeySummary)
	if !ok {
		t.Fatal("expected cached summary")
	}
	if got.SpendToday != 0 {
		t.Fatalf("next fetch must win: cached spendToday = %v, want 0", got.SpendToday)
	}
	if got.NetWorth != 60 {
		t.Fatalf("untouched fields must survive the merge, got %+v", got)
	}
}

func TestOverview_LoadFailsWhole(t *testing.T) {
	fs, client, store := newFakeServer(t)
	savings := NewSavings(client, store, nil)
	expenses := NewExpenses(client, store, nil)
	overview := NewOverview(client, store, savings, expenses, nil)

	fs.handle(graphql.OpSummary, func(v map[string]any) string {
		return `{"data":{"summary":{"netWorth":60}}}`
	})
	fs.handle(graphql.OpGetSavingDepots, func(v map[string]any) string {
		return `{"errors":[{"message":"shard down","extensions":{"code":"INTERNAL"}}]}`
	})
	fs.handle(graphql.OpGetExpenses, func(v map[string]any) string {
		return `{"data":{"getExpenses":[]}}`
	})

	if _, err := overview.Load(context.Background(), true); err == nil {
		t.Fatal("one failed fetch must fail the whole load")
	}
}

func TestListMutation_AddDeduplicates(t *testing.T) {
	m := savingsMutation("d1")
	items := []models.SavingDepot{{ID: "d1", Sum: 100, Transactions: []models.SavingTransaction{
		{ID: "tmp-1", Amount: 50},
		{ID: "t1", Amount: 100},
	}}}

	// Applying the confirmed payload drops both the temp entry and any copy
	// of the confirmed id already present.
	items = m.add(items, models.SavingTransaction{ID: "t2", Amount: 50}, "tmp-1")
	ids := make([]string, 0, len(items[0].Transactions))
	for _, tx := range items[0].Transactions {
		ids = append(ids, tx.ID)
	}
	if fmt.Sprint(ids) != "[t1 t2]" {
		t.Fatalf("expected [t1 t2], got %v", ids)
	}

	items = m.add(items, models.SavingTransaction{ID: "t2", Amount: 50})
	if len(items[0].Transactions) != 2 {
		t.Fatalf("re-adding the same id must not duplicate, got %v", items[0].Transactions)
	}
}
