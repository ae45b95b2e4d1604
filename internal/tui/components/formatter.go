package components

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/toddleonhardt/go-tdlchar/internal/tui/colors"
)

// EventKind classifies a transcript entry.
type EventKind int

const (
	EventTX   EventKind = iota // payload written to the device
	EventRX                    // message read back from the device
	EventNote                  // session status notes and errors
)

// EventMsg is one transcript entry, also used as a bubbletea message.
type EventMsg struct {
	Timestamp time.Time
	Kind      EventKind
	Data      []byte
	Status    string // TX: "PENDING", "WRITTEN", "ERROR"; RX: "EMPTY" when drained
}

// Formatter renders transcript entries, optionally with a hex column.
type Formatter struct {
	showHex bool
}

func NewFormatter(showHex bool) *Formatter {
	return &Formatter{showHex: showHex}
}

func (f *Formatter) ToggleHex() {
	f.showHex = !f.showHex
}

func (f *Formatter) ShowHex() bool {
	return f.showHex
}

func (f *Formatter) FormatEvent(msg EventMsg) string {
	timestamp := msg.Timestamp.Format("15:04:05.000")

	var indicator string
	switch msg.Kind {
	case EventTX:
		var txColor lipgloss.Color
		var statusText string
		switch msg.Status {
		case "PENDING":
			txColor = colors.Yellow
			statusText = "TX ○"
		case "WRITTEN":
			txColor = colors.Green
			statusText = "TX ✓"
		case "ERROR":
			txColor = colors.Red
			statusText = "TX ✗"
		default:
			txColor = colors.Peach
			statusText = "TX"
		}
		indicator = lipgloss.NewStyle().
			Foreground(txColor).
			Bold(true).
			Render("↗ " + statusText)
	case EventRX:
		indicator = lipgloss.NewStyle().
			Foreground(colors.Sky).
			Bold(true).
			Render("↙ RX")
	default:
		indicator = lipgloss.NewStyle().
			Foreground(colors.Overlay0).
			Render("· ")
	}

	body := printableASCII(msg.Data)
	if msg.Kind == EventRX && msg.Status == "EMPTY" {
		body = lipgloss.NewStyle().Foreground(colors.Overlay0).Italic(true).Render("(store empty)")
	}
	if f.showHex && msg.Kind != EventNote && len(msg.Data) > 0 {
		body = fmt.Sprintf("%s  %s", body,
			lipgloss.NewStyle().Foreground(colors.Subtext0).Render(fmt.Sprintf("[% X]", msg.Data)))
	}

	timeStr := lipgloss.NewStyle().Foreground(colors.Subtext1).Render(timestamp)
	return fmt.Sprintf("%s %s %s", timeStr, indicator, body)
}

func (f *Formatter) FormatEvents(events []EventMsg) []string {
	out := make([]string, 0, len(events))
	for _, e := range events {
		out = append(out, f.FormatEvent(e))
	}
	return out
}

func printableASCII(data []byte) string {
	buf := make([]byte, len(data))
	for i, b := range data {
		if b >= 32 && b <= 126 {
			buf[i] = b
		} else {
			buf[i] = '.'
		}
	}
	return string(buf)
}
