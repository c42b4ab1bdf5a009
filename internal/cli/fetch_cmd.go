package cli

import (
	"encoding/json"
	"fmt"

	"github.com/haytac/lounge-emotes/internal/app"
	"github.com/spf13/cobra"
)

// NewFetchCmd creates the fetch command.
func NewFetchCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Fetch the emote catalog once and print a summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireConfig("fetch"); err != nil {
				return err
			}
			application, err := app.NewApplication(AppCfg)
			if err != nil {
				return fmt.Errorf("failed to initialize application: %w", err)
			}
			defer application.Close()

			table, err := application.Catalog.FetchCatalog(cmd.Context())
			if err != nil {
				return fmt.Errorf("catalog fetch failed: %w", err)
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(table.Entries())
			}
			fmt.Fprintf(out, "Loaded %d emotes from %d categories.\n", table.Len(), len(AppCfg.Catalog.Categories))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print every emote as JSON")
	return cmd
}
