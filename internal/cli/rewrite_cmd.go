package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/haytac/lounge-emotes/internal/app"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/net/html"
)

// NewRewriteCmd creates the rewrite command.
func NewRewriteCmd() *cobra.Command {
	var eager bool
	cmd := &cobra.Command{
		Use:   "rewrite [file]",
		Short: "Render emotes in a chat HTML page (file or stdin) to stdout",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireConfig("rewrite"); err != nil {
				return err
			}

			var in io.Reader = cmd.InOrStdin()
			if len(args) == 1 {
				f, err := os.Open(args[0])
				if err != nil {
					return fmt.Errorf("failed to open %s: %w", args[0], err)
				}
				defer f.Close()
				in = f
			}
			doc, err := html.Parse(in)
			if err != nil {
				return fmt.Errorf("failed to parse HTML: %w", err)
			}

			application, err := app.NewApplication(AppCfg)
			if err != nil {
				return fmt.Errorf("failed to initialize application: %w", err)
			}
			defer application.Close()

			n, err := application.RewriteDocument(cmd.Context(), doc, eager)
			if err != nil {
				return err
			}
			log.Info().Int("emotes", n).Msg("Document rewritten")
			return html.Render(cmd.OutOrStdout(), doc)
		},
	}
	cmd.Flags().BoolVar(&eager, "eager", false, "set the real image source instead of a lazy placeholder")
	return cmd
}
