package cli

import (
	"fmt"
	"os"

	"github.com/haytac/lounge-emotes/internal/config"
	"github.com/haytac/lounge-emotes/internal/logging"
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	// AppCfg is populated in PersistentPreRunE.
	AppCfg *config.AppConfig
)

var RootCmd = &cobra.Command{
	Use:   "lounge-emotes",
	Short: "7TV emotes for The Lounge chat markup.",
	Long: `lounge-emotes fetches the 7TV emote catalog, renders emote names in chat
messages as lazily loaded images and offers ":" autocomplete in a chat input.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loadedCfg, err := config.LoadConfig(cfgFile)
		if err != nil {
			return fmt.Errorf("error loading config: %w", err)
		}
		AppCfg = loadedCfg

		logging.Setup(AppCfg.Log)

		if AppCfg.DatabasePath == "" {
			return fmt.Errorf("database_path is not configured")
		}
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	RootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml, $HOME/.lounge-emotes/config.yaml)")

	RootCmd.AddCommand(NewServeCmd())
	RootCmd.AddCommand(NewFetchCmd())
	RootCmd.AddCommand(NewRewriteCmd())
	RootCmd.AddCommand(NewSettingsCmd())
	RootCmd.AddCommand(NewCheckCmd())
	RootCmd.AddCommand(NewChatCmd())
	RootCmd.AddCommand(NewDbCmd())
}

func requireConfig(name string) error {
	if AppCfg == nil {
		return fmt.Errorf("configuration not loaded for %s", name)
	}
	return nil
}
