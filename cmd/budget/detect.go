package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/robertromore/budget-sub019/internal/model"
	"github.com/robertromore/budget-sub019/internal/recurring"
	"github.com/robertromore/budget-sub019/internal/service"
)

func detectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "detect",
		Short: "Detect recurring transaction patterns",
		Long: `Analyze the transaction history for recurring patterns: groups of
transactions with the same counterparty and account that repeat on a
regular cadence with stable amounts. Results are ranked by confidence.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			opts := recurring.DefaultOptions()
			opts.AccountID, _ = cmd.Flags().GetString("account")
			opts.LookbackMonths, _ = cmd.Flags().GetInt("months")
			opts.MinTransactions, _ = cmd.Flags().GetInt("min-transactions")
			opts.MinConfidence, _ = cmd.Flags().GetFloat64("min-confidence")
			opts.MinPredictability, _ = cmd.Flags().GetFloat64("min-predictability")
			opts.IncludeExisting, _ = cmd.Flags().GetBool("include-existing")

			typesFlag, _ := cmd.Flags().GetString("types")
			opts.PatternTypes, err = parsePatternTypes(typesFlag)
			if err != nil {
				return err
			}

			detector := recurring.NewDetector(store, store)
			patterns, err := detector.Detect(ctx, opts)
			if err != nil {
				return fmt.Errorf("detection failed: %w", err)
			}

			if len(patterns) == 0 {
				fmt.Println("No recurring patterns found.")
				return nil
			}

			if err := printPatterns(patterns); err != nil {
				return err
			}

			if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
				return printPatternDetails(ctx, store, patterns)
			}
			return nil
		},
	}

	cmd.Flags().StringP("account", "a", "", "Restrict detection to one account")
	cmd.Flags().IntP("months", "m", recurring.DefaultLookbackMonths, "Lookback window in months")
	cmd.Flags().Int("min-transactions", recurring.DefaultMinTransactions, "Minimum transactions per group")
	cmd.Flags().Float64("min-confidence", recurring.DefaultMinConfidence, "Minimum overall confidence (0-100)")
	cmd.Flags().Float64("min-predictability", recurring.DefaultMinPredictability, "Minimum amount predictability (0-100)")
	cmd.Flags().Bool("include-existing", false, "Include patterns already tracked by a schedule")
	cmd.Flags().StringP("types", "t", "", "Comma-separated pattern types (subscription,bill,income,transfer,other)")
	cmd.Flags().BoolP("verbose", "v", false, "Show amount trend and price-change details")

	return cmd
}

func printPatterns(patterns []model.RecurringPattern) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "#\tNAME\tACCOUNT\tTYPE\tFREQUENCY\tMEDIAN\tNEXT\tCONFIDENCE\tSTATUS")
	_, _ = fmt.Fprintln(w, "─\t────\t───────\t────\t─────────\t──────\t────\t──────────\t──────")

	now := time.Now()
	for i, p := range patterns {
		_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%.2f\t%s\t%.0f%%\t%s\n",
			i+1,
			truncateString(p.DisplayName, 28),
			truncateString(p.AccountName, 16),
			p.Classification.Type,
			p.Frequency,
			p.Amount.Median,
			p.SuggestedNextDate.Format("2006-01-02"),
			p.OverallConfidence,
			p.Status(now))
	}
	return w.Flush()
}

// printPatternDetails fetches each pattern's member transactions and
// reports amount drift and detected price changes.
func printPatternDetails(ctx context.Context, store service.Storage, patterns []model.RecurringPattern) error {
	for i, p := range patterns {
		amounts := make([]float64, 0, len(p.TransactionIDs))
		dates := make([]time.Time, 0, len(p.TransactionIDs))
		for _, id := range p.TransactionIDs {
			txn, err := store.GetTransactionByID(ctx, id)
			if err != nil {
				return fmt.Errorf("failed to load transaction %s: %w", id, err)
			}
			amounts = append(amounts, txn.Amount)
			dates = append(dates, txn.Date)
		}

		fmt.Printf("\n[%d] %s (%d transactions, %s to %s)\n",
			i+1, p.DisplayName, p.TransactionCount,
			p.FirstDate.Format("2006-01-02"), p.LastDate.Format("2006-01-02"))
		fmt.Printf("    amounts: median %.2f, mean %.2f, range [%.2f, %.2f], predictability %.0f%%\n",
			p.Amount.Median, p.Amount.Mean, p.Amount.Min, p.Amount.Max, p.Amount.Predictability)

		trend := recurring.DetectTrend(amounts, dates)
		fmt.Printf("    trend: %s (%+.1f%% first to last)\n", trend.Direction, trend.PercentChange)

		for _, change := range recurring.DetectPriceChanges(amounts, dates, 0) {
			fmt.Printf("    price change on %s: %.2f -> %.2f (%+.1f%%)\n",
				change.Date.Format("2006-01-02"), change.OldAmount, change.NewAmount, change.PercentChange)
		}
	}
	return nil
}
