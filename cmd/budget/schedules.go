package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/robertromore/budget-sub019/internal/model"
	"github.com/robertromore/budget-sub019/internal/recurring"
)

func schedulesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "schedules",
		Aliases: []string{"schedule"},
		Short:   "Manage tracked recurring schedules",
		Long: `Manage the recurring schedules you track. Detected patterns become
schedules via "budget schedules add --from-detection".`,
	}

	cmd.AddCommand(schedulesListCmd())
	cmd.AddCommand(schedulesAddCmd())
	cmd.AddCommand(schedulesDeleteCmd())

	return cmd
}

func schedulesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List tracked schedules",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			schedules, err := store.GetSchedules(ctx)
			if err != nil {
				return fmt.Errorf("failed to list schedules: %w", err)
			}

			if len(schedules) == 0 {
				fmt.Println("No schedules tracked yet.")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			_, _ = fmt.Fprintln(w, "ID\tNAME\tACCOUNT\tFREQUENCY\tAMOUNT\tNEXT\tACTIVE")
			for _, s := range schedules {
				next := "-"
				if !s.NextOccurrence.IsZero() {
					next = s.NextOccurrence.Format("2006-01-02")
				}
				_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%.2f\t%s\t%t\n",
					truncateString(s.ID, 8),
					truncateString(s.Name, 28),
					s.AccountID,
					s.Frequency,
					s.Amount,
					next,
					s.Active)
			}
			return w.Flush()
		},
	}
}

func schedulesAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Track a new schedule from a detected pattern",
		Long: `Re-run detection and materialize the Nth ranked pattern (as shown by
"budget detect") into a tracked schedule.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			index, _ := cmd.Flags().GetInt("from-detection")
			if index < 1 {
				return fmt.Errorf("--from-detection requires a 1-based pattern index")
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			opts := recurring.DefaultOptions()
			opts.AccountID, _ = cmd.Flags().GetString("account")

			detector := recurring.NewDetector(store, store)
			patterns, err := detector.Detect(ctx, opts)
			if err != nil {
				return fmt.Errorf("detection failed: %w", err)
			}
			if index > len(patterns) {
				return fmt.Errorf("pattern %d not found: detection returned %d patterns", index, len(patterns))
			}

			p := patterns[index-1]
			schedule := &model.Schedule{
				Name:           p.DisplayName,
				CounterpartyID: p.CounterpartyID,
				AccountID:      p.AccountID,
				Frequency:      p.Frequency,
				Amount:         p.Amount.Median,
				NextOccurrence: p.SuggestedNextDate,
				Active:         true,
			}
			if err := store.CreateSchedule(ctx, schedule); err != nil {
				return fmt.Errorf("failed to create schedule: %w", err)
			}

			fmt.Printf("Tracking %q (%s, %.2f) as schedule %s\n",
				schedule.Name, schedule.Frequency, schedule.Amount, schedule.ID)
			return nil
		},
	}

	cmd.Flags().Int("from-detection", 0, "1-based index of the detected pattern to track")
	cmd.Flags().StringP("account", "a", "", "Restrict detection to one account")
	_ = cmd.MarkFlagRequired("from-detection")

	return cmd
}

func schedulesDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Stop tracking a schedule",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if err := store.DeleteSchedule(ctx, args[0]); err != nil {
				return fmt.Errorf("failed to delete schedule: %w", err)
			}

			fmt.Printf("Deleted schedule %s\n", args[0])
			return nil
		},
	}
}
