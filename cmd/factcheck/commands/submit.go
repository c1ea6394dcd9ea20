package commands

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/anatolykoptev/go_factcheck/internal/factcheck"
	"github.com/anatolykoptev/go_factcheck/internal/history"
	"github.com/anatolykoptev/go_factcheck/internal/toolutil"
)

// submit <url>: run a full fact check the way the web form does.
func submitCmd() *cobra.Command {
	var noHistory bool
	cmd := &cobra.Command{
		Use:   "submit <url>",
		Short: "Fetch a video's thumbnail and extracted claims",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			url, err := toolutil.RequireURL(args[0])
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			var rec history.Recorder
			if !noHistory {
				store, err := history.Open(ctx, databaseURL, historyDB)
				if err != nil {
					slog.Warn("history unavailable", slog.Any("error", err))
				} else {
					defer store.Close()
					rec = store
				}
			}

			st, err := toolutil.CheckVideo(ctx, client, rec, url)
			if err != nil {
				return err
			}
			if asJSON {
				if err := printJSON(cmd.OutOrStdout(), st); err != nil {
					return err
				}
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), factcheck.Render(st))
			}
			if st.Error != nil {
				return fmt.Errorf("%s", *st.Error)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&noHistory, "no-history", false, "do not record the result")
	return cmd
}
