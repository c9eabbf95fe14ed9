package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"fintrack/internal/core"
	"fintrack/internal/importer"
	"fintrack/internal/services"
	"fintrack/internal/sheets"
)

// Opener returns the store a command works on and a function releasing
// it.
type Opener func(ctx context.Context) (sheets.Workbook, func() error, error)

type app struct {
	open  Opener
	store sheets.Workbook
	close func() error
}

// NewRootCommand builds the fintrackctl command tree over the stores
// returned by open.
func NewRootCommand(open Opener) *cobra.Command {
	a := &app{open: open}
	root := &cobra.Command{
		Use:   "fintrackctl",
		Short: "Operate the fintrack spreadsheet from the terminal",
		Long: `fintrackctl imports statements, prints the budget reconciliation
and assigns categories and savings goals without the web UI.

The store is chosen like the server's: DATA_BACKEND, DATA_DIR,
GOOGLE_SPREADSHEET_ID and friends, read from the environment or .env.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			store, closeFn, err := a.open(cmd.Context())
			if err != nil {
				return fmt.Errorf("open store: %w", err)
			}
			a.store, a.close = store, closeFn
			return nil
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			if a.close == nil {
				return nil
			}
			return a.close()
		},
	}
	root.AddCommand(
		a.importCommand(),
		a.reconcileCommand(),
		a.uncategorizedCommand(),
		a.categorizeCommand(),
		a.savingsCommand(),
	)
	return root
}

func (a *app) importCommand() *cobra.Command {
	var kind, person string
	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Append a bank or card statement CSV to its sheet",
		Example: `  fintrackctl import --kind bank --person Nithya statement.csv
  fintrackctl import --kind card --person Divyaraj card-march.csv`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			k, err := importer.ParseKind(kind)
			if err != nil {
				return err
			}
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			res, err := services.NewImportService(a.store).Import(cmd.Context(), k, person, f)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d rows from %s into %s (batch %s)\n",
				res.Rows, filepath.Base(args[0]), res.Sheet, res.BatchID)
			return nil
		},
	}
	cmd.Flags().StringVar(&kind, "kind", "bank", "statement kind: bank or card")
	cmd.Flags().StringVar(&person, "person", "", "who the statement belongs to")
	_ = cmd.MarkFlagRequired("person")
	return cmd
}

func (a *app) reconcileCommand() *cobra.Command {
	var person, month string
	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Print budget vs actual per category",
		Long:  "Print budget vs actual per category. Without --month the newest budget month is used.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var m core.Month
			if strings.TrimSpace(month) != "" {
				var err error
				if m, err = core.ParseMonth(month); err != nil {
					return fmt.Errorf("--month %q: %w", month, err)
				}
			}
			if person == "" {
				person = core.AllPeople
			}
			view, err := services.NewReconciliationService(a.store).Reconcile(cmd.Context(), core.Filter{Person: person, Month: m})
			if err != nil {
				return err
			}
			printReconciliation(cmd.OutOrStdout(), view.Reconciliation)
			return nil
		},
	}
	cmd.Flags().StringVar(&person, "person", core.AllPeople, "person to reconcile, or all")
	cmd.Flags().StringVar(&month, "month", "", "month as YYYY-MM")
	return cmd
}

func (a *app) uncategorizedCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "uncategorized",
		Aliases: []string{"pending"},
		Short:   "List transactions without a category",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			txns, err := services.NewCategorizationService(a.store).Pending(cmd.Context())
			if err != nil {
				return err
			}
			if len(txns) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Every transaction has a category.")
				return nil
			}
			printTransactions(cmd.OutOrStdout(), txns)
			return nil
		},
	}
}

func (a *app) categorizeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "categorize SOURCE POSITION CATEGORY",
		Short: "Set the category of one transaction",
		Long: "Set the category of one transaction. SOURCE is bank or card, POSITION is the\n" +
			"row position printed by uncategorized. Categories: " + strings.Join(core.CategoryOptions, ", ") + ".",
		Example: "  fintrackctl categorize bank 12 Food",
		Args:    cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := parseSource(args[0])
			if err != nil {
				return err
			}
			pos, err := parsePosition(args[1])
			if err != nil {
				return err
			}
			n, err := services.NewCategorizationService(a.store).Save(cmd.Context(), []services.Assignment{
				{Source: src, Position: pos, Category: args[2]},
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved %d categories\n", n)
			return nil
		},
	}
}

func (a *app) savingsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "savings",
		Short: "Inspect and allocate savings transfers",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "pending",
		Short: "List savings transfers not yet allocated to a goal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			o, err := services.NewSavingsService(a.store).Overview(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(o.Pending) == 0 {
				fmt.Fprintln(out, "Nothing waiting to be allocated.")
			} else {
				printTransactions(out, o.Pending)
			}
			fmt.Fprintf(out, "\nTotal saved %s, monthly average %s\n", money(o.Summary.Total), money(o.Summary.MonthlyAverage))
			return nil
		},
	}, &cobra.Command{
		Use:     "allocate POSITION GOAL",
		Short:   "Record a bank savings transfer against a goal",
		Long:    "Record a bank savings transfer against a goal. Goals: " + strings.Join(core.SavingsGoals, ", ") + ".",
		Example: `  fintrackctl savings allocate 7 "Emergency Fund"`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			pos, err := parsePosition(args[0])
			if err != nil {
				return err
			}
			alloc, err := services.NewSavingsService(a.store).Allocate(cmd.Context(), pos, args[1])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Allocated %s to %s\n", money(alloc.Amount), alloc.Goal)
			return nil
		},
	})
	return cmd
}

func parseSource(s string) (core.Source, error) {
	switch core.Source(strings.ToLower(strings.TrimSpace(s))) {
	case core.SourceBank:
		return core.SourceBank, nil
	case core.SourceCard:
		return core.SourceCard, nil
	}
	return "", fmt.Errorf("unknown source %q: want bank or card", s)
}

func parsePosition(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid position %q", s)
	}
	return n, nil
}

func money(m core.Money) string {
	return m.Decimal().StringFixed(2)
}

func printReconciliation(w io.Writer, r core.Reconciliation) {
	month := "all months"
	if !r.Filter.Month.IsZero() {
		month = r.Filter.Month.String()
	}
	fmt.Fprintf(w, "Person: %s  Month: %s\n\n", r.Filter.Person, month)
	if len(r.Rows) == 0 {
		fmt.Fprintln(w, "No budget or spending for this selection.")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "CATEGORY\tBUDGETED\tSPENT\tUSED\t")
	for _, row := range r.Rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%.1f%%\t\n", row.Category, money(row.Budgeted), money(row.Spent), row.PercentUsed)
	}
	fmt.Fprintf(tw, "Total\t%s\t%s\t%.1f%%\t\n", money(r.TotalBudgeted), money(r.TotalSpent), r.PercentUsed)
	tw.Flush()
}

func printTransactions(w io.Writer, txns []core.Transaction) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SOURCE\tPOSITION\tWHEN\tPERSON\tMERCHANT\tAMOUNT")
	for _, t := range txns {
		when := ""
		if !t.Timestamp.IsZero() {
			when = t.Timestamp.Format("2006-01-02 15:04")
		}
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\t%s\n", t.Source, t.Position, when, t.Person, t.Merchant, money(t.Amount))
	}
	tw.Flush()
}
