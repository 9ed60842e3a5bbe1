package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/alanyoungcy/polyresolver/internal/config"
	"github.com/alanyoungcy/polyresolver/internal/domain"
)

// App is the top-level application object. It owns the wired dependency
// graph and runs the configured mode until the context is cancelled.
type App struct {
	cfg    *config.Config
	logger *slog.Logger
	deps   *Dependencies
}

// New wires the application from configuration.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	deps, err := Wire(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	return &App{cfg: cfg, logger: logger, deps: deps}, nil
}

// Run executes the configured mode. In "mirror" mode it blocks on the
// catalog sync loop until ctx is cancelled; "resolve" mode is one-shot and
// driven through ResolveOnce by the caller.
func (a *App) Run(ctx context.Context) error {
	switch a.cfg.Mode {
	case "mirror":
		a.logger.Info("starting catalog mirror",
			slog.String("interval", a.cfg.Mirror.Interval.Duration.String()),
		)
		err := a.deps.Syncer.RunLoop(ctx, a.cfg.Mirror.Interval.Duration)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	case "resolve":
		return fmt.Errorf("app: resolve mode is one-shot, use ResolveOnce")
	default:
		return fmt.Errorf("app: unknown mode %q", a.cfg.Mode)
	}
}

// ResolveOnce resolves a single intent within an optional conversation and
// writes the outcome as JSON to stdout. A no-match outcome is reported in
// the payload, not as an error.
func (a *App) ResolveOnce(ctx context.Context, contextID string, intent domain.ResolutionIntent) error {
	res, ctxID, err := a.deps.Engine.ResolveConversation(ctx, contextID, intent)
	if err != nil {
		return fmt.Errorf("app: resolve: %w", err)
	}

	out := struct {
		Matched   bool                   `json:"matched"`
		ContextID string                 `json:"contextId,omitempty"`
		Result    *domain.ResolvedMarket `json:"result,omitempty"`
	}{
		Matched:   res != nil,
		ContextID: ctxID,
		Result:    res,
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// Close releases all application resources.
func (a *App) Close() {
	a.deps.Close()
}
