package models

import "fmt"

// WidgetType is the closed set of dashboard tile types. Each type determines
// which foreign key (DepotID or ExpenseID) is meaningful.
type WidgetType string

const (
	WidgetSavingSum     WidgetType = "saving_sum"
	WidgetExpenseTotal  WidgetType = "expense_total"
	WidgetLinkExpense   WidgetType = "link_expense"
	WidgetLinkSaving    WidgetType = "link_saving"
	WidgetQuickExpense  WidgetType = "quick_expense"
	WidgetNetWorth      WidgetType = "net_worth"
	WidgetSpendToday    WidgetType = "spend_today"
	WidgetLatestExpense WidgetType = "latest_expense"
)

// IsValid returns true if the widget type is part of the closed enum.
func (wt WidgetType) IsValid() bool {
	switch wt {
	case WidgetSavingSum, WidgetExpenseTotal, WidgetLinkExpense, WidgetLinkSaving,
		WidgetQuickExpense, WidgetNetWorth, WidgetSpendToday, WidgetLatestExpense:
		return true
	default:
		return false
	}
}

// String implements fmt.Stringer.
func (wt WidgetType) String() string {
	return string(wt)
}

// DashboardWidget is a purely local tile descriptor, persisted per user as a
// preference. Order in the persisted list controls grid position. Duplicates
// of (type, depot/expense) are permitted.
type DashboardWidget struct {
	ID        string     `json:"id"`
	Type      WidgetType `json:"type"`
	Title     string     `json:"title,omitempty"`
	DepotID   string     `json:"depotId,omitempty"`
	ExpenseID string     `json:"expenseId,omitempty"`
}

func (w DashboardWidget) Validate() error {
	if !w.Type.IsValid() {
		return fmt.Errorf("unknown widget type: %s", w.Type)
	}
	switch w.Type {
	case WidgetSavingSum, WidgetLinkSaving:
		if w.DepotID == "" {
			return fmt.Errorf("widget type %s requires a depot id", w.Type)
		}
	case WidgetExpenseTotal, WidgetLinkExpense, WidgetQuickExpense, WidgetLatestExpense:
		if w.ExpenseID == "" {
			return fmt.Errorf("widget type %s requires an expense id", w.Type)
		}
	}
	return nil
}
