package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/anatolykoptev/go_factcheck/internal/history"
	"github.com/anatolykoptev/go_factcheck/internal/toolutil"
)

// history: list recent fact checks.
func historyCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent fact checks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := history.Open(ctx, databaseURL, historyDB)
			if err != nil {
				return err
			}
			defer store.Close()

			recs, err := store.List(ctx, limit)
			if err != nil {
				return err
			}
			items := make([]toolutil.HistoryItem, 0, len(recs))
			for _, r := range recs {
				items = append(items, toolutil.ToHistoryItem(r))
			}
			if asJSON {
				return printJSON(cmd.OutOrStdout(), items)
			}

			w := cmd.OutOrStdout()
			if len(items) == 0 {
				fmt.Fprintln(w, "no fact checks yet")
				return nil
			}
			for _, it := range items {
				outcome := fmt.Sprintf("%d claims", len(it.Claims))
				if it.Error != "" {
					outcome = "error: " + it.Error
				}
				fmt.Fprintf(w, "%-5d %s  %s  %s\n", it.ID, it.CreatedAt, strings.TrimSpace(it.URL), outcome)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "max records to show")
	return cmd
}
