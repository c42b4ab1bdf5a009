package catalog

import (
	"maps"
	"sort"
	"sync"
)

// Table maps emote names to image URLs. The first URL recorded for a name wins.
// Category fetches populate it from several goroutines, hence the lock.
type Table struct {
	mu      sync.RWMutex
	entries map[string]string
}

// NewTable returns an empty table.
func NewTable() *Table {
	return &Table{entries: make(map[string]string)}
}

// Add records name if both fields are set and the name is new.
func (t *Table) Add(name, url string) bool {
	if name == "" || url == "" {
		return false
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, exists := t.entries[name]; exists {
		return false
	}
	t.entries[name] = url
	return true
}

// AddItems admits every item with a name and a usable image.
func (t *Table) AddItems(items []Item) int {
	added := 0
	for _, item := range items {
		if t.Add(item.DefaultName, SelectImageURL(item.Images)) {
			added++
		}
	}
	return added
}

// Get returns the image URL for an exact (case-sensitive) name.
func (t *Table) Get(name string) (string, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	url, ok := t.entries[name]
	return url, ok
}

func (t *Table) Has(name string) bool {
	_, ok := t.Get(name)
	return ok
}

func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entries)
}

// Names returns all names in alphabetical order.
func (t *Table) Names() []string {
	t.mu.RLock()
	names := make([]string, 0, len(t.entries))
	for name := range t.entries {
		names = append(names, name)
	}
	t.mu.RUnlock()
	sort.Strings(names)
	return names
}

// Entries returns all entries ordered by name.
func (t *Table) Entries() []Entry {
	names := t.Names()
	out := make([]Entry, 0, len(names))
	t.mu.RLock()
	defer t.mu.RUnlock()
	for _, name := range names {
		if url, ok := t.entries[name]; ok {
			out = append(out, Entry{Name: name, ImageURL: url})
		}
	}
	return out
}

// Reset drops every entry.
func (t *Table) Reset() {
	t.mu.Lock()
	t.entries = make(map[string]string)
	t.mu.Unlock()
}

// Replace swaps in a copy of src's entries in one step.
func (t *Table) Replace(src *Table) {
	src.mu.RLock()
	entries := maps.Clone(src.entries)
	src.mu.RUnlock()

	t.mu.Lock()
	t.entries = entries
	t.mu.Unlock()
}

// Snapshot returns an independent copy of the table.
func (t *Table) Snapshot() *Table {
	out := NewTable()
	out.Replace(t)
	return out
}
