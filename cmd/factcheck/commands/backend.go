package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/anatolykoptev/go_factcheck/internal/toolutil"
)

// info <url>: print video metadata.
func infoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info <url>",
		Short: "Show the thumbnail URL and title of a video",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			url, err := toolutil.RequireURL(args[0])
			if err != nil {
				return err
			}
			info, err := client.VideoInfo(cmd.Context(), url)
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(cmd.OutOrStdout(), info)
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "title:     %s\n", info.Title)
			fmt.Fprintf(w, "thumbnail: %s\n", info.ThumbnailURL)
			return nil
		},
	}
}

// claims <url>: print extracted claims, one per line.
func claimsCmd() *cobra.Command {
	var transcript bool
	cmd := &cobra.Command{
		Use:   "claims <url>",
		Short: "List the factual claims extracted from a video",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			url, err := toolutil.RequireURL(args[0])
			if err != nil {
				return err
			}
			res, err := client.ExtractClaims(cmd.Context(), url)
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(cmd.OutOrStdout(), res)
			}
			w := cmd.OutOrStdout()
			for i, c := range res.Claims {
				fmt.Fprintf(w, "%d. %s\n", i+1, c)
			}
			if transcript && res.Transcript != "" {
				fmt.Fprintf(w, "\n%s\n", res.Transcript)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&transcript, "transcript", false, "also print the transcript")
	return cmd
}

// health: check the backend's /health endpoint.
func healthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check that the backend is up",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := client.Health(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "ok")
			return nil
		},
	}
}
