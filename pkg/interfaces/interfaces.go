package interfaces

import (
	"context"
	"errors"
	"net/http"

	"github.com/haytac/lounge-emotes/internal/config"
)

// ErrKeyNotFound is returned by KeyValueStore.Get when the key was never set.
var ErrKeyNotFound = errors.New("key not found")

// KeyValueStore persists string settings.
type KeyValueStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
}

// EmoteLookup resolves emote names to image URLs.
type EmoteLookup interface {
	Get(name string) (string, bool)
	Len() int
	// Names returns every name in alphabetical order.
	Names() []string
}

// HTTPClientFactory creates HTTP clients.
type HTTPClientFactory interface {
	GetClient(proxy *config.ProxyConfig) (*http.Client, error)
}
