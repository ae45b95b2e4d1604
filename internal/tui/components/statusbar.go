package components

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/toddleonhardt/go-tdlchar/internal/tui/colors"
)

// SessionStatusMsg reports the outcome of the background session open.
type SessionStatusMsg struct {
	Open  bool
	Error error
}

// DeviceInfo is the static connection detail shown in the status bar.
type DeviceInfo struct {
	Capacity int
}

type StatusBar struct {
	socketPath string
	status     string
	err        error
	width      int
	info       *DeviceInfo
}

func NewStatusBar(socketPath string) *StatusBar {
	return &StatusBar{
		socketPath: socketPath,
		status:     "Opening...",
	}
}

func (sb *StatusBar) SetWidth(width int) {
	sb.width = width
}

func (sb *StatusBar) SetDeviceInfo(info *DeviceInfo) {
	sb.info = info
}

func (sb *StatusBar) SetOpening() {
	sb.status = "Opening..."
	sb.err = nil
}

func (sb *StatusBar) SetOpen() {
	sb.status = "Session open"
	sb.err = nil
}

func (sb *StatusBar) SetFailed(err error) {
	if err != nil {
		sb.status = fmt.Sprintf("Open failed: %v", err)
		sb.err = err
	} else {
		sb.status = "Closed"
		sb.err = nil
	}
}

// View renders the full-width status bar: mode, socket, session indicator,
// device detail and clock.
func (sb *StatusBar) View(inputMode, sendingMode string, open bool) string {
	terminalWidth := sb.width
	if terminalWidth <= 0 {
		terminalWidth = 80
	}

	var modeStyle lipgloss.Style
	if inputMode == "INSERT" {
		modeStyle = lipgloss.NewStyle().
			Foreground(colors.Base).
			Background(colors.Green).
			Bold(true).
			Padding(0, 1)
	} else {
		modeStyle = lipgloss.NewStyle().
			Foreground(colors.Base).
			Background(colors.Blue).
			Bold(true).
			Padding(0, 1)
	}
	mode := modeStyle.Render(inputMode)

	socketStyle := lipgloss.NewStyle().
		Foreground(colors.Mauve).
		Bold(true).
		Padding(0, 1)
	socket := socketStyle.Render(sb.socketPath)

	var connStyle lipgloss.Style
	var connIndicator string
	switch {
	case sb.err != nil:
		connStyle = lipgloss.NewStyle().Foreground(colors.Red)
		connIndicator = "✗"
	case open:
		connStyle = lipgloss.NewStyle().Foreground(colors.Green)
		connIndicator = "●"
	default:
		connStyle = lipgloss.NewStyle().Foreground(colors.Yellow)
		connIndicator = "○"
	}
	sessionIndicator := connStyle.Render(connIndicator)

	var detail string
	if sb.info != nil {
		detail = fmt.Sprintf("⚡ %d byte buffer", sb.info.Capacity)
	} else {
		detail = "⚡ tdlchar"
	}
	detailStyle := lipgloss.NewStyle().
		Foreground(colors.Subtext0).
		Padding(0, 1)
	deviceDetails := detailStyle.Render(detail)

	timeStyle := lipgloss.NewStyle().
		Foreground(colors.Subtext1).
		Padding(0, 1)
	clock := timeStyle.Render(time.Now().Format("15:04:05"))

	dividerStyle := lipgloss.NewStyle().
		Foreground(colors.Surface2).
		Padding(0, 1)
	divider := dividerStyle.Render("│")

	var sendingModeInfo string
	if inputMode == "INSERT" {
		sendingModeStyle := lipgloss.NewStyle().
			Foreground(colors.Peach).
			Bold(true).
			Padding(0, 1)
		sendingModeInfo = sendingModeStyle.Render(fmt.Sprintf("[%s] Tab to toggle", sendingMode))
	}

	var leftSide string
	if sendingModeInfo != "" {
		leftSide = lipgloss.JoinHorizontal(lipgloss.Left, mode, socket, sessionIndicator, sendingModeInfo, divider)
	} else {
		leftSide = lipgloss.JoinHorizontal(lipgloss.Left, mode, socket, sessionIndicator, divider)
	}
	rightSide := lipgloss.JoinHorizontal(lipgloss.Left, deviceDetails, divider, clock)

	spacerWidth := terminalWidth - lipgloss.Width(leftSide) - lipgloss.Width(rightSide)
	if spacerWidth < 1 {
		spacerWidth = 1
	}
	spacer := lipgloss.NewStyle().Width(spacerWidth).Render("")

	statusBarStyle := lipgloss.NewStyle().
		Foreground(colors.Text).
		Background(colors.Surface0).
		Width(terminalWidth)

	return statusBarStyle.Render(lipgloss.JoinHorizontal(lipgloss.Left, leftSide, spacer, rightSide))
}
