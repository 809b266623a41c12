// Package commands implements the audiorelay command line.
package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/edgard/audiorelay/internal/app"
	"github.com/edgard/audiorelay/internal/config"
	"github.com/edgard/audiorelay/internal/logger"
)

var (
	configPath string
	appCtx     *app.App
	log        *slog.Logger
)

// Execute runs the root command with ctx.
func Execute(ctx context.Context) error {
	return newRootCmd().ExecuteContext(ctx)
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "audiorelay",
		Short:        "Relay audio recordings to a Telegram chat",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(configPath)
			if err != nil {
				slog.Error("Failed to load configuration", "path", configPath, "error", err)
				return err
			}

			log = logger.NewLogger(cfg.Log.Level, cfg.Log.JSON)
			slog.SetDefault(log)
			log.Debug("Logger initialized", "level", cfg.Log.Level, "json", cfg.Log.JSON)

			appCtx, err = app.New(cfg, log)
			if err != nil {
				return fmt.Errorf("failed to initialize relay: %w", err)
			}
			return nil
		},
	}

	root.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML configuration file (optional)")

	root.AddCommand(serveCmd(), sendCmd(), checkCmd())
	return root
}
