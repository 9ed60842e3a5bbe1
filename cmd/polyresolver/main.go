package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/alanyoungcy/polyresolver/internal/app"
	"github.com/alanyoungcy/polyresolver/internal/config"
	"github.com/alanyoungcy/polyresolver/internal/domain"
)

func main() {
	var (
		configPath = flag.String("config", "config.toml", "path to TOML config file")
		mode       = flag.String("mode", "", "run mode: resolve or mirror (overrides config)")
		input      = flag.String("input", "", "market reference: URL, slug, id, condition id, or token id")
		question   = flag.String("question", "", "free-text market question")
		user       = flag.String("user", "", "polymarket wallet address (0x...)")
		contextID  = flag.String("context", "", "conversation context id for follow-up turns")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	if *mode != "" {
		cfg.Mode = *mode
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("startup failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer a.Close()

	switch cfg.Mode {
	case "resolve":
		intent := domain.ResolutionIntent{
			MarketID:       *input,
			MarketQuestion: *question,
			PolymarketUser: *user,
		}
		if *input == "" && *question == "" && *contextID == "" {
			fmt.Fprintln(os.Stderr, "resolve mode needs -input, -question, or -context")
			os.Exit(2)
		}
		if err := a.ResolveOnce(ctx, *contextID, intent); err != nil {
			logger.Error("resolution failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
	default:
		if err := a.Run(ctx); err != nil {
			logger.Error("run failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
