package cli

import (
	"fmt"
	"strings"

	"github.com/haytac/lounge-emotes/internal/config"
	"github.com/haytac/lounge-emotes/internal/proxy"
	"github.com/spf13/cobra"
)

// NewCheckCmd creates the 'check' command, validating that the catalog
// endpoint is reachable through the configured (or given) proxy.
func NewCheckCmd() *cobra.Command {
	var (
		targetURL string
		pType     string
		address   string
		username  string
		password  string
	)

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Check connectivity to the emote catalog endpoint",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireConfig("check"); err != nil {
				return err
			}
			p := AppCfg.Proxy
			if address != "" {
				pType = strings.ToLower(pType)
				if pType != "http" && pType != "https" && pType != "socks5" {
					return fmt.Errorf("invalid proxy type: %s. Must be http, https, or socks5", pType)
				}
				p = &config.ProxyConfig{Type: pType, Address: address, Username: username, Password: password}
			}
			if targetURL == "" {
				targetURL = AppCfg.Catalog.Endpoint
			}

			validator := proxy.NewDefaultProxyValidator(proxy.NewHTTPClientFactory(AppCfg.Catalog.Timeout))

			out := cmd.OutOrStdout()
			via := "direct connection"
			if p != nil {
				via = fmt.Sprintf("%s proxy %s", p.Type, p.Address)
			}
			fmt.Fprintf(out, "Checking %s via %s...\n", targetURL, via)
			if err := validator.Validate(cmd.Context(), p, targetURL); err != nil {
				fmt.Fprintf(out, "Check failed: %v\n", err)
				return err
			}
			fmt.Fprintln(out, "Catalog endpoint reachable.")
			return nil
		},
	}
	cmd.Flags().StringVar(&targetURL, "target-url", "", "URL to test connectivity against (default: catalog endpoint)")
	cmd.Flags().StringVar(&pType, "proxy-type", "http", "proxy type to test instead of the configured one: http, https or socks5")
	cmd.Flags().StringVar(&address, "proxy-address", "", "proxy host:port to test instead of the configured one")
	cmd.Flags().StringVar(&username, "proxy-username", "", "proxy username")
	cmd.Flags().StringVar(&password, "proxy-password", "", "proxy password")
	return cmd
}
