package proxy

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/haytac/lounge-emotes/internal/config"
	"github.com/haytac/lounge-emotes/pkg/interfaces"
	"github.com/rs/zerolog/log"
)

// DefaultProxyValidator checks that an endpoint answers through a proxy.
type DefaultProxyValidator struct {
	clientFactory interfaces.HTTPClientFactory
}

// NewDefaultProxyValidator creates a new validator.
func NewDefaultProxyValidator(factory interfaces.HTTPClientFactory) *DefaultProxyValidator {
	return &DefaultProxyValidator{clientFactory: factory}
}

// Validate checks that targetURL answers through p (or directly when p is nil).
// The catalog endpoint only accepts POST, so any response below 500 counts as reachable.
func (v *DefaultProxyValidator) Validate(ctx context.Context, p *config.ProxyConfig, targetURL string) error {
	via := "direct"
	if p != nil {
		via = p.Type + "://" + p.Address
	}

	client, err := v.clientFactory.GetClient(p)
	if err != nil {
		return fmt.Errorf("%s: failed to get HTTP client: %w", via, err)
	}

	reqCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, targetURL, nil)
	if err != nil {
		return fmt.Errorf("%s: failed to create request to %s: %w", via, targetURL, err)
	}
	req.Header.Set("User-Agent", "lounge-emotes-check/1.0")

	log.Debug().Str("via", via).Str("target_url", targetURL).Msg("Checking connectivity")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("%s: connection test to %s failed: %w", via, targetURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 500 {
		log.Info().Str("via", via).Int("status_code", resp.StatusCode).Msg("Connectivity check successful")
		return nil
	}

	return fmt.Errorf("%s: connection test to %s returned status %d", via, targetURL, resp.StatusCode)
}
