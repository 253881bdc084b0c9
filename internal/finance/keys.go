package finance

import "github.com/AdriBusse/FinanZApp2025-sub000/internal/cache"

// Cache keys for the root queries. The list-valued queries are always
// refetched in full, so their cached value is replaced wholly; the summary
// can arrive partially and is shallow-merged.
const (
	KeySavingDepots      = "getSavingDepots"
	KeyExpenses          = "getExpenses"
	KeyExpenseCategories = "getExpenseCategories"
	KeyTemplates         = "getExpenseTransactionTemplates"
	KeySummary           = "summary"
)

// CachePolicies returns the per-query merge policies for the client cache.
func CachePolicies() map[string]cache.MergePolicy {
	return map[string]cache.MergePolicy{
		KeySavingDepots:      cache.Replace,
		KeyExpenses:          cache.Replace,
		KeyExpenseCategories: cache.Replace,
		KeyTemplates:         cache.Replace,
		KeySummary:           cache.ShallowMerge,
	}
}
