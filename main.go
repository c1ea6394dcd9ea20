// go_factcheck is the front end of the YouTube fact checker.
//
// Submits a video URL to the fact-checking backend and shows the video's
// thumbnail plus the factual claims extracted from it. Serves the form as a
// web page, as MCP tools, and optionally as a Telegram bot.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/anatolykoptev/go-kit/env"
	"github.com/anatolykoptev/go-mcpserver"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/anatolykoptev/go_factcheck/internal/backend"
	"github.com/anatolykoptev/go_factcheck/internal/engine"
	"github.com/anatolykoptev/go_factcheck/internal/factserver"
	"github.com/anatolykoptev/go_factcheck/internal/history"
	"github.com/anatolykoptev/go_factcheck/internal/telegram"
	"github.com/anatolykoptev/go_factcheck/internal/webui"
)

var version = "dev"

func main() {
	if err := godotenv.Load(); err == nil {
		slog.Info("loaded .env")
	}
	mcpPort := env.Str("MCP_PORT", "8893")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	initEngine()
	c := *engine.Cfg

	client := backend.New(c.APIBaseURL, c.HTTPClient)
	client.Retry = c.BackendRetryConfig()
	if c.WaitBackend > 0 {
		if err := client.WaitHealthy(ctx, c.WaitBackend); err != nil {
			slog.Warn("backend not ready, continuing", slog.Any("error", err))
		}
	}
	api := backend.Cached{API: client}

	store, err := history.Open(ctx, c.DatabaseURL, c.HistoryDBPath)
	if err != nil {
		slog.Warn("history disabled", slog.Any("error", err))
	} else {
		defer store.Close()
	}
	var rec history.Recorder
	if store != nil {
		rec = store
	}

	slog.Info("starting go_factcheck",
		slog.String("port", mcpPort),
		slog.String("api", c.APIBaseURL),
	)

	if c.WebPort != "" {
		gin.SetMode(gin.ReleaseMode)
		web := webui.New(webui.Config{
			CORSOrigins: c.CORSOrigins,
			RatePerMin:  c.SubmitRatePerMin,
			MaxSessions: c.WebMaxSessions,
		}, api, rec)
		defer web.Close()
		go func() {
			if err := web.Run(ctx, ":"+c.WebPort); err != nil {
				slog.Error("webui failed", slog.Any("error", err))
			}
		}()
	}

	if c.TelegramToken != "" {
		bot, err := telegram.New(c.TelegramToken, nil, api, rec)
		if err != nil {
			slog.Warn("telegram bot disabled", slog.Any("error", err))
		} else {
			go func() {
				if err := bot.Run(ctx); err != nil {
					slog.Error("telegram bot failed", slog.Any("error", err))
				}
			}()
		}
	}

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "go_factcheck",
		Version: version,
	}, nil)

	deps := factserver.Deps{API: api}
	if store != nil {
		deps.History = store
	}
	n := factserver.RegisterTools(server, deps)
	slog.Info("tools registered", slog.Int("count", n))

	if err := mcpserver.Run(server, mcpserver.Config{
		Name:         "go_factcheck",
		Version:      version,
		Port:         mcpPort,
		WriteTimeout: 600 * time.Second,
		Metrics:      engine.FormatMetrics,
	}); err != nil {
		slog.Error("server failed", slog.Any("error", err))
	}
}

func initEngine() {
	c := engine.ConfigFromEnv()
	if c.HistoryDBPath == "" {
		c.HistoryDBPath = history.DefaultSQLitePath()
	}
	engine.Init(c)
	engine.InitCache(c.RedisURL, c.CacheTTL, c.CacheMaxEntries, c.CacheCleanupInterval)
}
