package catalog

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSelectImageURL(t *testing.T) {
	const base = "https://cdn.7tv.app/emote/01F/"
	tests := []struct {
		name   string
		images []Image
		want   string
	}{
		{
			name: "prefers 1x webp",
			images: []Image{
				{URL: base + "4x.png", Mime: "image/png", Scale: 4},
				{URL: base + "2x.webp", Mime: "image/webp", Scale: 2},
				{URL: base + "1x.webp", Mime: "image/webp", Scale: 1},
			},
			want: base + "1x.webp",
		},
		{
			name: "falls back to 2x webp",
			images: []Image{
				{URL: base + "1x.avif", Mime: "image/avif", Scale: 1},
				{URL: base + "2x.webp", Mime: "image/webp", Scale: 2},
				{URL: base + "3x.webp", Mime: "image/webp", Scale: 3},
			},
			want: base + "2x.webp",
		},
		{
			name: "any webp",
			images: []Image{
				{URL: base + "1x.gif", Mime: "image/gif", Scale: 1},
				{URL: base + "4x.webp", Mime: "image/webp", Scale: 4},
			},
			want: base + "4x.webp",
		},
		{
			name: "first listed",
			images: []Image{
				{URL: base + "1x.gif", Mime: "image/gif", Scale: 1},
				{URL: base + "1x.avif", Mime: "image/avif", Scale: 1},
			},
			want: base + "1x.gif",
		},
		{name: "none", images: nil, want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SelectImageURL(tt.images))
		})
	}
}

func TestTable_AddRules(t *testing.T) {
	table := NewTable()
	assert.True(t, table.Add("pogU", "u1"))
	assert.False(t, table.Add("pogU", "u2"), "first seen wins")
	assert.False(t, table.Add("", "u3"))
	assert.False(t, table.Add("noUrl", ""))

	url, ok := table.Get("pogU")
	assert.True(t, ok)
	assert.Equal(t, "u1", url)
	assert.False(t, table.Has("pogu"), "lookup is case-sensitive")
	assert.Equal(t, 1, table.Len())

	added := table.AddItems([]Item{
		{DefaultName: "sadge", Images: []Image{{URL: "s.webp", Mime: "image/webp"}}},
		{DefaultName: "noImages"},
		{DefaultName: "", Images: []Image{{URL: "x.webp", Mime: "image/webp"}}},
	})
	assert.Equal(t, 1, added)
	assert.Equal(t, []Entry{{Name: "pogU", ImageURL: "u1"}, {Name: "sadge", ImageURL: "s.webp"}}, table.Entries())

	table.Reset()
	assert.Zero(t, table.Len())
}

func TestTable_ReplaceAndSnapshot(t *testing.T) {
	live := NewTable()
	live.Add("old", "o")

	staging := NewTable()
	staging.Add("new", "n")
	live.Replace(staging)
	assert.Equal(t, []string{"new"}, live.Names())

	staging.Add("later", "l")
	assert.False(t, live.Has("later"), "replace copies the entries")

	snap := live.Snapshot()
	live.Reset()
	assert.Equal(t, []string{"new"}, snap.Names())
}

func TestTable_ConcurrentAdd(t *testing.T) {
	table := NewTable()
	var wg sync.WaitGroup
	wins := make(chan bool, 50)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			wins <- table.Add("same", "url")
		}()
	}
	wg.Wait()
	close(wins)

	count := 0
	for w := range wins {
		if w {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "idle", StateIdle.String())
	assert.Equal(t, "loading", StateLoading.String())
	assert.Equal(t, "loaded", StateLoaded.String())
	assert.Equal(t, "failed", StateFailed.String())
}
