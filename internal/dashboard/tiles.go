package dashboard

import (
	"github.com/AdriBusse/FinanZApp2025-sub000/internal/finance"
	"github.com/AdriBusse/FinanZApp2025-sub000/internal/models"
)

// Tile is a rendered widget: the descriptor plus the value computed from the
// loaded data. Missing is set when the widget references a depot or expense
// that no longer exists; the tile renders as a placeholder instead of
// crashing the grid.
type Tile struct {
	Widget   models.DashboardWidget
	Label    string
	Value    float64
	Currency string
	Missing  bool
}

// Render computes tiles for the current layout from a loaded snapshot.
func (s *Store) Render(snapshot *finance.Snapshot) []Tile {
	widgets := s.widgets.Get()
	tiles := make([]Tile, 0, len(widgets))
	for _, w := range widgets {
		tiles = append(tiles, renderTile(w, snapshot))
	}
	return tiles
}

func renderTile(w models.DashboardWidget, snapshot *finance.Snapshot) Tile {
	tile := Tile{Widget: w, Label: w.Title}

	switch w.Type {
	case models.WidgetNetWorth:
		if tile.Label == "" {
			tile.Label = "Net worth"
		}
		tile.Value = snapshot.Summary.NetWorth

	case models.WidgetSpendToday:
		if tile.Label == "" {
			tile.Label = "Spent today"
		}
		tile.Value = snapshot.Summary.SpendToday

	case models.WidgetSavingSum, models.WidgetLinkSaving:
		depot := findDepot(snapshot.Depots, w.DepotID)
		if depot == nil {
			tile.Missing = true
			return tile
		}
		if tile.Label == "" {
			tile.Label = depot.Name
		}
		tile.Value = depot.Sum
		tile.Currency = depot.Currency

	case models.WidgetExpenseTotal, models.WidgetLinkExpense, models.WidgetQuickExpense:
		expense := findExpense(snapshot.Expenses, w.ExpenseID)
		if expense == nil {
			tile.Missing = true
			return tile
		}
		if tile.Label == "" {
			tile.Label = expense.Title
		}
		tile.Value = expense.Sum
		tile.Currency = expense.Currency

	case models.WidgetLatestExpense:
		expense := findExpense(snapshot.Expenses, w.ExpenseID)
		if expense == nil {
			tile.Missing = true
			return tile
		}
		if tile.Label == "" {
			tile.Label = expense.Title
		}
		tile.Currency = expense.Currency
		if latest := latestTransaction(expense.Transactions); latest != nil {
			tile.Value = latest.Amount
			if latest.Describtion != "" {
				tile.Label = latest.Describtion
			}
		}
	}
	return tile
}

func findDepot(depots []models.SavingDepot, id string) *models.SavingDepot {
	for i := range depots {
		if depots[i].ID == id {
			return &depots[i]
		}
	}
	return nil
}

func findExpense(expenses []models.Expense, id string) *models.Expense {
	for i := range expenses {
		if expenses[i].ID == id {
			return &expenses[i]
		}
	}
	return nil
}

func latestTransaction(txs []models.ExpenseTransaction) *models.ExpenseTransaction {
	var latest *models.ExpenseTransaction
	for i := range txs {
		if latest == nil || txs[i].CreatedAt.After(latest.CreatedAt) {
			latest = &txs[i]
		}
	}
	return latest
}
