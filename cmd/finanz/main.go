package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/AdriBusse/FinanZApp2025-sub000/internal/auth"
	"github.com/AdriBusse/FinanZApp2025-sub000/internal/cli"
	applog "github.com/AdriBusse/FinanZApp2025-sub000/internal/log"
	"github.com/AdriBusse/FinanZApp2025-sub000/internal/models"
)

const usage = `finanz <command> [flags]

Commands:
  login      -u <username> -p <password>
  whoami
  overview   [-refresh]
  depots     [-refresh]
  expenses   [-refresh]
  deposit    -depot <id> -amount <value> -note <text>
  spend      -expense <id> -amount <value> -note <text> [-category <id>] [-receipt <file>]
  dashboard  [-add <type>] [-depot <id>] [-expense <id>] [-remove <widget id>]
  logout
`

func main() {
	cli.LoadEnvFile()

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	command := os.Args[1]
	args := os.Args[2:]

	logger := cli.SetupLogger(os.Getenv("FINANZ_LOG_LEVEL"))
	cfg := cli.LoadAndValidateConfig(logger)

	app, err := cli.InitApp(cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize application", applog.FieldError, err.Error())
		os.Exit(1)
	}

	// SIGINT/SIGTERM cancel in-flight requests and flush the pending
	// dashboard write before the process exits.
	ctx, _ := cli.GracefulShutdown(logger, 5*time.Second, func() {
		app.Close(context.Background())
	})
	defer app.Close(context.Background())

	// Every command except login starts from the restored session.
	if command != "login" {
		app.Auth.InitFromStorage(ctx)
	}

	if err := run(ctx, app, command, args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, app *cli.App, command string, args []string) error {
	switch command {
	case "login":
		return runLogin(ctx, app, args)
	case "whoami":
		return runWhoami(app)
	case "overview":
		return runOverview(ctx, app, args)
	case "depots":
		return runDepots(ctx, app, args)
	case "expenses":
		return runExpenses(ctx, app, args)
	case "deposit":
		return runDeposit(ctx, app, args)
	case "spend":
		return runSpend(ctx, app, args)
	case "dashboard":
		return runDashboard(ctx, app, args)
	case "logout":
		app.Dashboard.Deactivate(ctx)
		app.Auth.Logout(ctx)
		fmt.Println("logged out")
		return nil
	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", command)
	}
}

func runLogin(ctx context.Context, app *cli.App, args []string) error {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	username := fs.String("u", "", "username")
	password := fs.String("p", "", "password")
	fs.Parse(args)

	if err := app.Auth.Login(ctx, *username, *password); err != nil {
		return err
	}
	session := app.Auth.Session()
	fmt.Printf("logged in as %s\n", session.User.Username)
	return nil
}

func runWhoami(app *cli.App) error {
	session := app.Auth.Session()
	if session.Status != auth.StatusAuthenticated {
		fmt.Println("not logged in")
		return nil
	}
	fmt.Printf("%s <%s>\n", session.User.Username, session.User.Email)
	return nil
}

func runOverview(ctx context.Context, app *cli.App, args []string) error {
	fs := flag.NewFlagSet("overview", flag.ExitOnError)
	refresh := fs.Bool("refresh", false, "bypass the cache")
	fs.Parse(args)

	if err := requireSession(app); err != nil {
		return err
	}

	snapshot, err := app.Overview.Load(ctx, *refresh)
	if err != nil {
		return err
	}

	session := app.Auth.Session()
	if err := app.Dashboard.Activate(ctx, session.User.ID); err != nil {
		return err
	}

	fmt.Printf("net worth: %.2f  savings: %.2f  expenses: %.2f  today: %.2f\n",
		snapshot.Summary.NetWorth, snapshot.Summary.SavingSum,
		snapshot.Summary.ExpenseTotal, snapshot.Summary.SpendToday)

	tiles := app.Dashboard.Render(snapshot)
	if len(tiles) == 0 {
		fmt.Println("no widgets configured")
		return nil
	}
	for _, tile := range tiles {
		if tile.Missing {
			fmt.Printf("  [%s] %s (target missing)\n", tile.Widget.Type, tile.Label)
			continue
		}
		fmt.Printf("  [%s] %s: %.2f %s\n", tile.Widget.Type, tile.Label, tile.Value, tile.Currency)
	}
	return nil
}

func runDepots(ctx context.Context, app *cli.App, args []string) error {
	fs := flag.NewFlagSet("depots", flag.ExitOnError)
	refresh := fs.Bool("refresh", false, "bypass the cache")
	fs.Parse(args)

	if err := requireSession(app); err != nil {
		return err
	}

	depots, err := app.Savings.Depots(ctx, *refresh)
	if err != nil {
		return err
	}
	for _, d := range depots {
		fmt.Printf("%s  %-20s %10.2f %s", d.ID, d.Name, d.Sum, d.Currency)
		if d.Savinggoal > 0 {
			fmt.Printf("  (goal %.2f)", d.Savinggoal)
		}
		fmt.Println()
	}
	return nil
}

func runExpenses(ctx context.Context, app *cli.App, args []string) error {
	fs := flag.NewFlagSet("expenses", flag.ExitOnError)
	refresh := fs.Bool("refresh", false, "bypass the cache")
	fs.Parse(args)

	if err := requireSession(app); err != nil {
		return err
	}

	expenses, err := app.Expenses.Expenses(ctx, *refresh)
	if err != nil {
		return err
	}
	for _, x := range expenses {
		fmt.Printf("%s  %-20s %10.2f %s", x.ID, x.Title, x.Sum, x.Currency)
		if x.SpendingLimit > 0 {
			fmt.Printf("  (limit %.2f)", x.SpendingLimit)
		}
		fmt.Println()
	}
	return nil
}

func runDeposit(ctx context.Context, app *cli.App, args []string) error {
	fs := flag.NewFlagSet("deposit", flag.ExitOnError)
	depotID := fs.String("depot", "", "depot id")
	rawAmount := fs.String("amount", "", "amount, negative for withdrawal")
	note := fs.String("note", "", "description")
	fs.Parse(args)

	if err := requireSession(app); err != nil {
		return err
	}
	amount, err := models.ParseAmount(*rawAmount)
	if err != nil {
		return err
	}

	tx, err := app.Savings.CreateTransaction(ctx, *depotID, amount, *note)
	if err != nil {
		return err
	}
	fmt.Printf("booked %.2f (%s)\n", tx.Amount, tx.ID)
	return nil
}

func runSpend(ctx context.Context, app *cli.App, args []string) error {
	fs := flag.NewFlagSet("spend", flag.ExitOnError)
	expenseID := fs.String("expense", "", "expense tracker id")
	rawAmount := fs.String("amount", "", "amount")
	note := fs.String("note", "", "description")
	categoryID := fs.String("category", "", "category id")
	receipt := fs.String("receipt", "", "receipt file to attach")
	fs.Parse(args)

	if err := requireSession(app); err != nil {
		return err
	}
	amount, err := models.ParseAmount(*rawAmount)
	if err != nil {
		return err
	}

	upload, err := cli.ReadUpload(*receipt)
	if err != nil {
		return err
	}

	tx, err := app.Expenses.CreateTransaction(ctx, *expenseID, amount, *note, *categoryID, upload)
	if err != nil {
		return err
	}
	fmt.Printf("booked %.2f (%s)\n", tx.Amount, tx.ID)
	return nil
}

func runDashboard(ctx context.Context, app *cli.App, args []string) error {
	fs := flag.NewFlagSet("dashboard", flag.ExitOnError)
	add := fs.String("add", "", "widget type to add")
	depotID := fs.String("depot", "", "depot id for saving widgets")
	expenseID := fs.String("expense", "", "expense id for expense widgets")
	remove := fs.String("remove", "", "widget id to remove")
	fs.Parse(args)

	if err := requireSession(app); err != nil {
		return err
	}
	session := app.Auth.Session()
	if err := app.Dashboard.Activate(ctx, session.User.ID); err != nil {
		return err
	}

	switch {
	case *add != "":
		widget, err := app.Dashboard.Add(models.DashboardWidget{
			Type:      models.WidgetType(*add),
			DepotID:   *depotID,
			ExpenseID: *expenseID,
		})
		if err != nil {
			return err
		}
		fmt.Printf("added widget %s (%s)\n", widget.ID, widget.Type)
	case *remove != "":
		if app.Dashboard.Remove(*remove, confirmRemoval) {
			fmt.Println("widget removed")
		} else {
			fmt.Println("nothing removed")
		}
	default:
		for i, w := range app.Dashboard.Widgets() {
			fmt.Printf("%2d. %s  %s  depot=%s expense=%s\n", i+1, w.ID, w.Type, w.DepotID, w.ExpenseID)
		}
	}

	app.Dashboard.Flush(ctx)
	return nil
}

func confirmRemoval(widget models.DashboardWidget) bool {
	fmt.Printf("remove widget %s (%s)? [y/N] ", widget.ID, widget.Type)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(line), "y")
}

func requireSession(app *cli.App) error {
	if app.Auth.Session().Status != auth.StatusAuthenticated {
		return fmt.Errorf("not logged in, run: finanz login -u <username> -p <password>")
	}
	return nil
}
