package picker

import (
	"fmt"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type names []string

func (n names) Get(name string) (string, bool) {
	for _, v := range n {
		if v == name {
			return "https://cdn.7tv.app/emote/" + v, true
		}
	}
	return "", false
}

func (n names) Len() int { return len(n) }

func (n names) Names() []string {
	out := append([]string(nil), n...)
	sort.Strings(out)
	return out
}

var catalog = names{"pogU", "pogChamp", "sadge", "KEKW", "kekHeim"}

func TestTrigger(t *testing.T) {
	tests := []struct {
		value  string
		cursor int
		term   string
		ok     bool
	}{
		{"hello :pog", 10, "pog", true},
		{"hello :", 7, "", true},
		{"hello :pog there", 10, "pog", true},
		{"hello :pog there", 16, "", false},
		{"hello pog", 9, "", false},
		{"a:b c", 5, "", false},
		{":pog", 99, "pog", true},
	}
	for _, tt := range tests {
		term, ok := Trigger(tt.value, tt.cursor)
		assert.Equal(t, tt.ok, ok, "%q@%d", tt.value, tt.cursor)
		assert.Equal(t, tt.term, term, "%q@%d", tt.value, tt.cursor)
	}
}

func TestFilter(t *testing.T) {
	assert.Equal(t, []string{"pogChamp", "pogU"}, Filter(names{"pogU", "pogChamp", "sadge"}, "pog", MaxResults))
	assert.Equal(t, []string{"KEKW", "kekHeim"}, Filter(catalog, "KEK", MaxResults))
	assert.Empty(t, Filter(catalog, "", MaxResults))
	assert.Empty(t, Filter(catalog, "zzz", MaxResults))
	assert.Empty(t, Filter(nil, "pog", MaxResults))

	var many names
	for i := 0; i < 50; i++ {
		many = append(many, fmt.Sprintf("pog%02d", i))
	}
	got := Filter(many, "POG", MaxResults)
	require.Len(t, got, MaxResults)
	assert.Equal(t, "pog00", got[0])
	assert.Equal(t, "pog19", got[MaxResults-1])
	assert.True(t, sort.StringsAreSorted(got))
}

func TestCommit(t *testing.T) {
	edit, ok := Commit("hello :pog", 10, "pog", "pogChamp")
	require.True(t, ok)
	assert.Equal(t, "hello pogChamp ", edit.Value)
	assert.Equal(t, 15, edit.Cursor)
	assert.True(t, edit.Notify)

	edit, ok = Commit("hi :ke and more", 6, "ke", "KEKW")
	require.True(t, ok)
	assert.Equal(t, "hi KEKW  and more", edit.Value)
	assert.Equal(t, 8, edit.Cursor)

	_, ok = Commit("hello :xyz", 10, "pog", "pogChamp")
	assert.False(t, ok, "typed text no longer starts with the term's first character")
	_, ok = Commit("hello :P", 8, "pog", "pogChamp")
	assert.True(t, ok, "first character compares case-insensitively")
	_, ok = Commit("hello :", 7, "pog", "pogChamp")
	assert.False(t, ok, "nothing typed after the colon")
	_, ok = Commit("hello :", 7, "", "sadge")
	assert.False(t, ok)
	_, ok = Commit("hello", 5, "h", "hi")
	assert.False(t, ok)
}

func TestLayout(t *testing.T) {
	assert.Equal(t, Placement{Bottom: 200, Left: 10, Width: 150}, Layout(Box{Top: 600, Left: 10, Width: 90}, 800))
	assert.Equal(t, Placement{Bottom: 40, Left: 0, Width: 640}, Layout(Box{Top: 760, Width: 640}, 800))
}

func TestPicker_ShowAndHide(t *testing.T) {
	p := New(catalog)
	p.HandleInput("hello :pog", 10)
	require.True(t, p.Visible())
	assert.Equal(t, "pog", p.Term())
	assert.Equal(t, []string{"pogChamp", "pogU"}, p.Results())
	assert.Equal(t, 0, p.Selected())

	p.HandleInput("hello :xyz", 10)
	assert.False(t, p.Visible(), "no matches hides the picker")
	assert.Equal(t, -1, p.Selected())

	p.HandleInput("hello :pog", 10)
	p.HandleClick(OnInput)
	assert.True(t, p.Visible())
	p.HandleClick(OnList)
	assert.True(t, p.Visible())
	p.HandleClick(Outside)
	assert.False(t, p.Visible())
}

func TestPicker_NavigationWraps(t *testing.T) {
	p := New(names{"pogA", "pogB", "pogC"})
	p.HandleInput(":pog", 4)
	require.Len(t, p.Results(), 3)

	assert.Equal(t, KeyResult{Handled: true}, p.HandleKey(KeyArrowUp))
	assert.Equal(t, 2, p.Selected())
	p.HandleKey(KeyArrowDown)
	assert.Equal(t, 0, p.Selected())
	p.HandleKey(KeyArrowDown)
	assert.Equal(t, 1, p.Selected())

	assert.Equal(t, KeyResult{}, p.HandleKey("a"))

	assert.Equal(t, KeyResult{Handled: true}, p.HandleKey(KeyEscape))
	assert.False(t, p.Visible())
	assert.Equal(t, KeyResult{}, p.HandleKey(KeyArrowDown), "keys pass through while hidden")
	assert.Equal(t, KeyResult{}, p.HandleKey(KeyEnter))
}

func TestPicker_CommitWithKeys(t *testing.T) {
	for _, key := range []string{KeyEnter, KeyTab} {
		p := New(catalog)
		p.HandleInput("hello :pog", 10)
		p.HandleKey(KeyArrowDown)

		res := p.HandleKey(key)
		require.True(t, res.Handled, key)
		require.NotNil(t, res.Edit, key)
		assert.Equal(t, "hello pogU ", res.Edit.Value)
		assert.Equal(t, 11, res.Edit.Cursor)
		assert.False(t, p.Visible())
	}
}

func TestPicker_Select(t *testing.T) {
	p := New(catalog)
	assert.Nil(t, p.Select("pogU"), "nothing to commit while hidden")

	p.HandleInput("gg :kek", 7)
	edit := p.Select("kekHeim")
	require.NotNil(t, edit)
	assert.Equal(t, "gg kekHeim ", edit.Value)
	assert.False(t, p.Visible())

	p.HandleInput("gg :kek", 7)
	p.SetInput("gg :zz", 6)
	assert.Nil(t, p.Select("kekHeim"), "input changed under the open picker")
	assert.False(t, p.Visible(), "a rejected selection still hides")
}
