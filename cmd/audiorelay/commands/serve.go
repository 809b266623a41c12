package commands

import (
	"github.com/spf13/cobra"
)

// serve: run the HTTP relay and the optional token probe.
func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the relay endpoint over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			log.Info("Starting audio relay...")
			return appCtx.Run(cmd.Context())
		},
	}
}
