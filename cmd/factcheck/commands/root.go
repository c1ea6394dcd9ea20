package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/anatolykoptev/go_factcheck/internal/backend"
	"github.com/anatolykoptev/go_factcheck/internal/engine"
)

var (
	apiBase     string
	timeout     time.Duration
	retries     int
	proxyURL    string
	asJSON      bool
	historyDB   string
	databaseURL string

	client *backend.Client
)

// Execute runs the root command.
func Execute() error {
	return NewRoot().Execute()
}

// NewRoot builds the command tree. Flag defaults come from the environment.
func NewRoot() *cobra.Command {
	cfg := engine.ConfigFromEnv()
	root := &cobra.Command{
		Use:           "factcheck",
		Short:         "Extract the factual claims made in YouTube videos",
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			client = backend.New(apiBase, engine.NewHTTPClient(proxyURL, timeout))
			client.Retry = engine.Config{BackendRetries: retries}.BackendRetryConfig()
			return nil
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&apiBase, "api", cfg.APIBaseURL, "backend base URL")
	pf.DurationVar(&timeout, "timeout", cfg.BackendTimeout, "per-call timeout (0 = none)")
	pf.IntVar(&retries, "retries", cfg.BackendRetries, "retries per backend call on transient failures")
	pf.StringVar(&proxyURL, "proxy", cfg.ProxyURL, "socks5 proxy for backend calls")
	pf.BoolVar(&asJSON, "json", false, "print JSON instead of text")
	pf.StringVar(&historyDB, "history-db", cfg.HistoryDBPath, "sqlite history file (default ~/.go_factcheck/history.db)")
	pf.StringVar(&databaseURL, "database-url", cfg.DatabaseURL, "postgres history DSN (overrides --history-db)")

	root.AddCommand(submitCmd(), infoCmd(), claimsCmd(), healthCmd(), historyCmd())
	return root
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}
