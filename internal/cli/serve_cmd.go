package cli

import (
	"context"
	"fmt"

	"github.com/haytac/lounge-emotes/internal/app"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// NewServeCmd creates the serve command.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "serve",
		Aliases: []string{"run"},
		Short:   "Serve the emote HTTP API and metrics",
		Long:    `Fetches the emote catalog and serves the rewrite, emote and settings API until interrupted.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireConfig("serve"); err != nil {
				return err
			}
			application, err := app.NewApplication(AppCfg)
			if err != nil {
				log.Error().Err(err).Msg("Failed to initialize application")
				return fmt.Errorf("failed to initialize application: %w", err)
			}

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()
			return application.Run(ctx)
		},
	}
	return cmd
}
