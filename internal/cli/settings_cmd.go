package cli

import (
	"fmt"
	"sort"

	"github.com/haytac/lounge-emotes/internal/database"
	"github.com/haytac/lounge-emotes/internal/settings"
	"github.com/spf13/cobra"
)

// NewSettingsCmd creates the 'settings' command for display preferences.
func NewSettingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change display settings",
	}
	cmd.AddCommand(newSettingsGetCmd())
	cmd.AddCommand(newSettingsSetCmd())
	cmd.AddCommand(newSettingsResetCmd())
	cmd.AddCommand(newSettingsListCmd())
	return cmd
}

func openSettings(name string) (*database.DB, *settings.Provider, error) {
	if err := requireConfig(name); err != nil {
		return nil, nil, err
	}
	db, err := database.Connect(AppCfg.DatabasePath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, settings.NewProvider(database.NewSettingsStore(db)), nil
}

func newSettingsGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get",
		Short: "Print the emote size in effect",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, provider, err := openSettings("settings get")
			if err != nil {
				return err
			}
			defer db.Close()
			fmt.Fprintln(cmd.OutOrStdout(), provider.EmoteSize(cmd.Context()))
			return nil
		},
	}
}

func newSettingsSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <size>",
		Short: "Set the emote size (a number followed by em or px, e.g. 1.5em, 28px)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, provider, err := openSettings("settings set")
			if err != nil {
				return err
			}
			defer db.Close()
			if err := provider.SetEmoteSize(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Emote size saved: %s\n", args[0])
			return nil
		},
	}
}

func newSettingsResetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Restore the default emote size",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireConfig("settings reset"); err != nil {
				return err
			}
			db, err := database.Connect(AppCfg.DatabasePath)
			if err != nil {
				return fmt.Errorf("failed to connect to database: %w", err)
			}
			defer db.Close()
			if err := database.NewSettingsStore(db).Delete(cmd.Context(), settings.EmoteSizeKey); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Emote size reset to %s\n", settings.DefaultEmoteSize)
			return nil
		},
	}
}

func newSettingsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every stored setting",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireConfig("settings list"); err != nil {
				return err
			}
			db, err := database.Connect(AppCfg.DatabasePath)
			if err != nil {
				return fmt.Errorf("failed to connect to database: %w", err)
			}
			defer db.Close()
			all, err := database.NewSettingsStore(db).All(cmd.Context())
			if err != nil {
				return err
			}
			if len(all) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No settings stored.")
				return nil
			}
			keys := make([]string, 0, len(all))
			for k := range all {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				fmt.Fprintf(cmd.OutOrStdout(), "%-20s %s\n", k, all[k])
			}
			return nil
		},
	}
}
