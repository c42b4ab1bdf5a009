package settings

import (
	"context"
	"errors"
	"testing"

	"github.com/haytac/lounge-emotes/pkg/interfaces"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memStore struct {
	values map[string]string
	getErr error
}

func (m *memStore) Get(_ context.Context, key string) (string, error) {
	if m.getErr != nil {
		return "", m.getErr
	}
	v, ok := m.values[key]
	if !ok {
		return "", interfaces.ErrKeyNotFound
	}
	return v, nil
}

func (m *memStore) Set(_ context.Context, key, value string) error {
	if m.values == nil {
		m.values = map[string]string{}
	}
	m.values[key] = value
	return nil
}

func TestValidSize(t *testing.T) {
	for _, v := range []string{"1.5em", "2em", "28px", "28PX", "0.75Em"} {
		assert.True(t, ValidSize(v), v)
	}
	for _, v := range []string{"", "em", "1.5", "1.em", "-2px", "2 px", "2rem", "2px;color:red"} {
		assert.False(t, ValidSize(v), v)
	}
}

func TestProvider_EmoteSize(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name  string
		store *memStore
		want  string
	}{
		{name: "missing", store: &memStore{}, want: DefaultEmoteSize},
		{name: "valid", store: &memStore{values: map[string]string{EmoteSizeKey: "32px"}}, want: "32px"},
		{name: "malformed", store: &memStore{values: map[string]string{EmoteSizeKey: "huge"}}, want: DefaultEmoteSize},
		{name: "store error", store: &memStore{getErr: errors.New("disk on fire")}, want: DefaultEmoteSize},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NewProvider(tt.store).EmoteSize(ctx))
		})
	}

	var nilProvider *Provider
	assert.Equal(t, DefaultEmoteSize, nilProvider.EmoteSize(ctx))
}

func TestProvider_SetEmoteSize(t *testing.T) {
	ctx := context.Background()
	store := &memStore{}
	p := NewProvider(store)

	err := p.SetEmoteSize(ctx, "big")
	assert.ErrorIs(t, err, ErrInvalidSize)
	assert.Empty(t, store.values)

	require.NoError(t, p.SetEmoteSize(ctx, "2.25em"))
	assert.Equal(t, "2.25em", p.EmoteSize(ctx))
}
