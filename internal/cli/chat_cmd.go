package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/haytac/lounge-emotes/internal/app"
	"github.com/haytac/lounge-emotes/internal/logging"
	"github.com/haytac/lounge-emotes/internal/tui"
	"github.com/spf13/cobra"
)

// NewChatCmd creates the 'chat' command, a terminal sandbox for the emote pipeline.
func NewChatCmd() *cobra.Command {
	var (
		nick    string
		margin  int
		logFile string
	)
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Open a local chat sandbox with emotes and autocomplete",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireConfig("chat"); err != nil {
				return err
			}
			cfg := *AppCfg
			// lines, not pixels
			cfg.LazyMargin = margin

			// the terminal belongs to the chat
			cfg.Log.Console = false
			cfg.Log.File = logFile
			logging.Setup(cfg.Log)
			defer logging.Close()

			application, err := app.NewApplication(&cfg)
			if err != nil {
				return fmt.Errorf("failed to initialize application: %w", err)
			}
			defer application.Close()

			chat, err := tui.NewChat(cmd.Context(), application, tui.Options{Nick: nick})
			if err != nil {
				return err
			}
			_, err = tea.NewProgram(chat, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(cmd.Context())).Run()
			return err
		},
	}
	cmd.Flags().StringVar(&nick, "nick", "you", "nickname shown on sent messages")
	cmd.Flags().IntVar(&margin, "margin", 3, "lines above and below the view whose emotes are loaded early")
	cmd.Flags().StringVar(&logFile, "log-file", "lounge-emotes-chat.log", "file receiving log output while the chat is open")
	return cmd
}
