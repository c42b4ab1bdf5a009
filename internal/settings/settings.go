// Package settings provides the display preferences read at startup.
package settings

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/haytac/lounge-emotes/internal/logging"
	"github.com/haytac/lounge-emotes/pkg/interfaces"
	"github.com/rs/zerolog"
)

const (
	// EmoteSizeKey is the store key of the emote display height.
	EmoteSizeKey = "emoteSize"
	// DefaultEmoteSize applies when nothing valid is stored.
	DefaultEmoteSize = "1.5em"
)

// ErrInvalidSize rejects sizes that are not a number followed by em or px.
var ErrInvalidSize = errors.New("invalid size format: use a number followed by em or px (e.g. 1.5em, 28px)")

var sizePattern = regexp.MustCompile(`(?i)^\d+(\.\d+)?(em|px)$`)

// ValidSize reports whether v is an acceptable emote size.
func ValidSize(v string) bool {
	return sizePattern.MatchString(v)
}

// Provider reads and writes settings through a key-value store.
type Provider struct {
	store interfaces.KeyValueStore
	log   zerolog.Logger
}

// NewProvider creates a Provider on top of store.
func NewProvider(store interfaces.KeyValueStore) *Provider {
	return &Provider{store: store, log: logging.Component("settings")}
}

// EmoteSize returns the configured size, or the default when the stored value
// is missing, malformed or unreadable.
func (p *Provider) EmoteSize(ctx context.Context) string {
	if p == nil || p.store == nil {
		return DefaultEmoteSize
	}
	v, err := p.store.Get(ctx, EmoteSizeKey)
	if err != nil {
		if !errors.Is(err, interfaces.ErrKeyNotFound) {
			p.log.Error().Err(err).Msg("Error loading configuration, using default emote size")
		}
		return DefaultEmoteSize
	}
	if !ValidSize(v) {
		p.log.Warn().Str("stored", v).Str("default", DefaultEmoteSize).Msg("Invalid emote size found in storage, using default")
		return DefaultEmoteSize
	}
	p.log.Debug().Str("emote_size", v).Msg("Configuration loaded")
	return v
}

// SetEmoteSize validates and stores a new size.
func (p *Provider) SetEmoteSize(ctx context.Context, v string) error {
	if !ValidSize(v) {
		return fmt.Errorf("%q: %w", v, ErrInvalidSize)
	}
	if err := p.store.Set(ctx, EmoteSizeKey, v); err != nil {
		return fmt.Errorf("saving emote size: %w", err)
	}
	return nil
}
