package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// check: verify the bot token with getMe.
func checkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Verify the configured bot token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			prober, err := appCtx.Prober()
			if err != nil {
				return err
			}
			me, err := prober.Probe(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "ok: @%s (id %d)\n", me.Username, me.ID)
			return nil
		},
	}
}
