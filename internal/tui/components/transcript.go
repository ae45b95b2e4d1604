package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

// Transcript is the scrolling record of everything exchanged during the
// session, newest entry at the bottom.
type Transcript struct {
	viewport  viewport.Model
	formatter *Formatter
	lines     []string
}

func NewTranscript(width, height int) *Transcript {
	return &Transcript{
		viewport:  viewport.New(width, height),
		formatter: NewFormatter(false),
		lines:     make([]string, 0),
	}
}

func (t *Transcript) SetSize(width, height int) {
	t.viewport.Width = width
	t.viewport.Height = height
}

func (t *Transcript) Width() int {
	return t.viewport.Width
}

func (t *Transcript) Add(msg EventMsg) {
	t.lines = append(t.lines, t.formatter.FormatEvent(msg))
	t.viewport.SetContent(strings.Join(t.lines, "\n"))
	t.viewport.GotoBottom()
}

// Refresh re-renders the whole transcript from raw events, used after a
// display mode toggle.
func (t *Transcript) Refresh(events []EventMsg) {
	t.lines = t.formatter.FormatEvents(events)
	t.viewport.SetContent(strings.Join(t.lines, "\n"))
	t.viewport.GotoBottom()
}

func (t *Transcript) Clear() {
	t.lines = make([]string, 0)
	t.viewport.SetContent("")
}

func (t *Transcript) ToggleHex() {
	t.formatter.ToggleHex()
}

func (t *Transcript) Update(msg tea.Msg) (viewport.Model, tea.Cmd) {
	// Only window resizes reach the viewport so it cannot swallow key
	// bindings.
	switch msg.(type) {
	case tea.WindowSizeMsg:
		return t.viewport.Update(msg)
	default:
		return t.viewport, nil
	}
}

func (t *Transcript) View() string {
	return t.viewport.View()
}
