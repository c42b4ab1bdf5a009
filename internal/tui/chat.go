// Package tui is a terminal chat sandbox driving the emote pipeline: messages
// sent here are rewritten, emotes load as they scroll into view and the input
// offers ":" autocomplete.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/haytac/lounge-emotes/internal/app"
	"github.com/haytac/lounge-emotes/internal/lazyload"
	"github.com/haytac/lounge-emotes/internal/picker"
	"github.com/haytac/lounge-emotes/internal/rewrite"
	"github.com/haytac/lounge-emotes/internal/watcher"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const (
	inputHeight  = 1
	statusHeight = 1
	// pickerRows is the number of results shown at once.
	pickerRows = 8
)

const page = `<html><head><title>lounge-emotes</title></head><body>
<div class="chat-content"><div class="chat"><div class="messages">
<div id="msg-0" class="msg"><span class="from">*</span><span class="content">Type : and a few letters to pick an emote, Tab or Enter to insert it.</span></div>
</div></div></div>
<textarea id="input"></textarea>
</body></html>`

type catalogLoadedMsg struct{ err error }

type retryMsg struct{}

// Options tunes the chat sandbox.
type Options struct {
	Nick string
}

// Chat is the bubbletea model of the sandbox. It is also the app.Host the
// pipeline is attached to.
type Chat struct {
	ctx     context.Context
	app     *app.Application
	session *app.Session
	nick    string

	doc       *html.Node
	container *html.Node
	imgLines  map[*html.Node]int
	nextID    int

	input        textinput.Model
	viewport     viewport.Model
	inputChanged bool
	width        int
	height       int
	err          error
}

// NewChat creates the sandbox on a fresh chat page.
func NewChat(ctx context.Context, a *app.Application, opts Options) (*Chat, error) {
	doc, err := html.Parse(strings.NewReader(page))
	if err != nil {
		return nil, fmt.Errorf("parsing chat page: %w", err)
	}
	if opts.Nick == "" {
		opts.Nick = "you"
	}

	ti := textinput.New()
	ti.Placeholder = "Send a message..."
	ti.Prompt = "› "
	ti.Focus()

	c := &Chat{
		ctx:      ctx,
		app:      a,
		nick:     opts.Nick,
		doc:      doc,
		imgLines: make(map[*html.Node]int),
		nextID:   1,
		input:    ti,
		viewport: viewport.New(0, 0),
	}
	c.session = app.NewSession(a, c)
	return c, nil
}

func (c *Chat) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, c.loadCatalog(), c.waitForRetry())
}

// loadCatalog fetches off the event loop; the table is safe for concurrent use.
func (c *Chat) loadCatalog() tea.Cmd {
	return func() tea.Msg {
		_, err := c.app.Catalog.FetchCatalog(c.ctx)
		return catalogLoadedMsg{err: err}
	}
}

func (c *Chat) waitForRetry() tea.Cmd {
	retries := c.session.Retries()
	return func() tea.Msg {
		<-retries
		return retryMsg{}
	}
}

func (c *Chat) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		c.width, c.height = msg.Width, msg.Height
		c.input.Width = max(msg.Width-len(c.input.Prompt)-1, 10)
		c.refresh(false)

	case catalogLoadedMsg:
		if msg.err != nil {
			c.err = msg.err
			return c, nil
		}
		c.attach()

	case retryMsg:
		c.attach()
		return c, c.waitForRetry()

	case tea.KeyMsg:
		return c.handleKey(msg)

	case tea.MouseMsg:
		c.handleMouse(msg)
	}
	return c, nil
}

func (c *Chat) attach() {
	eff := c.session.Dispatch(c.ctx, app.InitEvent{})
	if eff.Err != nil {
		c.err = eff.Err
		return
	}
	c.err = nil
	c.container = c.app.Container()
	c.refresh(true)
}

// domKeys maps terminal keys to the key names the picker understands.
var domKeys = map[tea.KeyType]string{
	tea.KeyDown:  picker.KeyArrowDown,
	tea.KeyUp:    picker.KeyArrowUp,
	tea.KeyEnter: picker.KeyEnter,
	tea.KeyTab:   picker.KeyTab,
	tea.KeyEsc:   picker.KeyEscape,
}

func (c *Chat) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return c, tea.Quit
	}

	if key, ok := domKeys[msg.Type]; ok {
		eff := c.session.Dispatch(c.ctx, app.KeyEvent{Key: key})
		if eff.PreventDefault {
			c.afterEdit()
			c.refresh(false)
			return c, nil
		}
	}

	switch msg.Type {
	case tea.KeyEnter:
		c.send()
		return c, nil
	case tea.KeyUp, tea.KeyDown, tea.KeyPgUp, tea.KeyPgDown:
		var cmd tea.Cmd
		c.viewport, cmd = c.viewport.Update(msg)
		c.checkVisible()
		return c, cmd
	case tea.KeyEsc, tea.KeyTab:
		return c, nil
	}

	var cmd tea.Cmd
	c.input, cmd = c.input.Update(msg)
	c.session.Dispatch(c.ctx, app.InputEvent{})
	c.refresh(false)
	return c, cmd
}

func (c *Chat) handleMouse(msg tea.MouseMsg) {
	switch {
	case msg.Button == tea.MouseButtonWheelUp || msg.Button == tea.MouseButtonWheelDown:
		c.viewport, _ = c.viewport.Update(msg)
		c.checkVisible()
	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
		ev := app.ClickEvent{Target: picker.Outside}
		if name, ok := c.pickerRowAt(msg.Y); ok {
			ev = app.ClickEvent{Target: picker.OnList, Name: name}
		} else if msg.Y == c.height-inputHeight-statusHeight {
			ev.Target = picker.OnInput
		}
		c.session.Dispatch(c.ctx, ev)
		c.afterEdit()
		c.refresh(false)
	}
}

// afterEdit delivers the input event a committed selection asks for.
func (c *Chat) afterEdit() {
	if c.inputChanged {
		c.inputChanged = false
		c.session.Dispatch(c.ctx, app.InputEvent{})
	}
}

// send appends the typed line as a new message and reports the mutation.
func (c *Chat) send() {
	text := strings.TrimSpace(c.input.Value())
	if text == "" || c.container == nil {
		return
	}
	msg := newMessage(c.nextID, c.nick, text)
	c.nextID++
	c.container.AppendChild(msg)
	c.session.Dispatch(c.ctx, app.MutationEvent{Batch: []watcher.Mutation{{Added: []*html.Node{msg}}}})
	c.input.Reset()
	c.session.Dispatch(c.ctx, app.InputEvent{})
	c.refresh(true)
}

func newMessage(id int, nick, text string) *html.Node {
	span := func(class, data string) *html.Node {
		n := &html.Node{Type: html.ElementNode, DataAtom: atom.Span, Data: "span", Attr: []html.Attribute{{Key: "class", Val: class}}}
		n.AppendChild(&html.Node{Type: html.TextNode, Data: data})
		return n
	}
	msg := &html.Node{
		Type:     html.ElementNode,
		DataAtom: atom.Div,
		Data:     "div",
		Attr:     []html.Attribute{{Key: "id", Val: fmt.Sprintf("msg-%d", id)}, {Key: "class", Val: "msg"}},
	}
	msg.AppendChild(span("from", nick))
	msg.AppendChild(span("content", text))
	return msg
}

// refresh re-lays out the screen, re-renders the messages and loads the
// emotes that became visible.
func (c *Chat) refresh(gotoBottom bool) {
	c.layout()
	c.render()
	if gotoBottom {
		c.viewport.GotoBottom()
	}
	c.checkVisible()
}

func (c *Chat) layout() {
	reserved := inputHeight + statusHeight
	if c.app.Picker.Visible() {
		reserved += c.pickerHeight()
	}
	c.viewport.Width = c.width
	c.viewport.Height = max(c.height-reserved, 1)
}

func (c *Chat) checkVisible() {
	top := c.viewport.YOffset
	eff := c.session.Dispatch(c.ctx, app.ScrollEvent{
		Viewport: lazyload.Rect{Top: top, Bottom: top + c.viewport.Height},
		Locate:   c.locate,
	})
	if len(eff.Resolved) > 0 {
		c.render()
	}
}

func (c *Chat) locate(n *html.Node) (lazyload.Rect, bool) {
	line, ok := c.imgLines[n]
	if !ok {
		return lazyload.Rect{}, false
	}
	return lazyload.Rect{Top: line, Bottom: line + 1}, true
}

// render draws one line per message and records the line of every emote.
func (c *Chat) render() {
	clear(c.imgLines)
	if c.container == nil {
		c.viewport.SetContent("")
		return
	}
	var lines []string
	for m := c.container.FirstChild; m != nil; m = m.NextSibling {
		if m.Type != html.ElementNode {
			continue
		}
		lines = append(lines, c.renderMessage(m, len(lines)))
	}
	c.viewport.SetContent(strings.Join(lines, "\n"))
}

func (c *Chat) renderMessage(m *html.Node, line int) string {
	var b strings.Builder
	for part := m.FirstChild; part != nil; part = part.NextSibling {
		switch {
		case rewrite.HasClass(part, "from"):
			b.WriteString(NickStyle.Render(rewrite.PlainText(part)))
			b.WriteString(": ")
		case rewrite.HasClass(part, "content"):
			rewrite.Walk(part, func(n *html.Node) rewrite.WalkAction {
				switch {
				case n.Type == html.TextNode:
					b.WriteString(n.Data)
				case rewrite.IsEmote(n):
					c.imgLines[n] = line
					if rewrite.IsPending(n) {
						b.WriteString(PendingStyle.Render(PendingGlyph))
					} else {
						alt, _ := rewrite.Attr(n, "alt")
						b.WriteString(EmoteStyle.Render(alt))
					}
					return rewrite.Skip
				}
				return rewrite.Descend
			})
		}
	}
	return b.String()
}

func (c *Chat) pickerWindow() (start, end int) {
	results := c.app.Picker.Results()
	if sel := c.app.Picker.Selected(); sel >= pickerRows {
		start = sel - pickerRows + 1
	}
	return start, min(start+pickerRows, len(results))
}

func (c *Chat) pickerHeight() int {
	start, end := c.pickerWindow()
	return end - start + 2
}

// pickerRowAt returns the result drawn on screen row y.
func (c *Chat) pickerRowAt(y int) (string, bool) {
	if !c.app.Picker.Visible() {
		return "", false
	}
	start, end := c.pickerWindow()
	idx := start + y - (c.viewport.Height + 1)
	if idx < start || idx >= end {
		return "", false
	}
	return c.app.Picker.Results()[idx], true
}

func (c *Chat) renderPicker() string {
	p := picker.Layout(c.InputBox(), c.ViewportHeight())
	width := max(min(p.Width, c.width)-2, 1)
	results := c.app.Picker.Results()
	start, end := c.pickerWindow()
	rows := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		row := results[i]
		if i == c.app.Picker.Selected() {
			row = SelectedStyle.Render(row)
		}
		rows = append(rows, row)
	}
	return PickerStyle.Width(width).MarginLeft(p.Left).Render(strings.Join(rows, "\n"))
}

func (c *Chat) statusLine() string {
	if c.err != nil {
		return ErrorStyle.Render("error: " + c.err.Error())
	}
	pending := 0
	if obs := c.app.Registry.Current(); obs != nil {
		pending = obs.Pending()
	}
	return StatusStyle.Render(fmt.Sprintf("catalog %s · %d emotes · %d pending · ctrl+c to quit",
		c.app.Catalog.State(), c.app.Catalog.Table().Len(), pending))
}

func (c *Chat) View() string {
	parts := []string{c.viewport.View()}
	if c.app.Picker.Visible() {
		parts = append(parts, c.renderPicker())
	}
	parts = append(parts, c.input.View(), c.statusLine())
	return strings.Join(parts, "\n")
}
