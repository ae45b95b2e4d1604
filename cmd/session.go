/*
Copyright © 2026 Todd Leonhardt
*/
package cmd

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/toddleonhardt/go-tdlchar/internal/client"
	"github.com/toddleonhardt/go-tdlchar/internal/tui/components"
	"github.com/toddleonhardt/go-tdlchar/internal/tui/keys"
	"github.com/toddleonhardt/go-tdlchar/internal/tui/models"
	"github.com/toddleonhardt/go-tdlchar/internal/tui/styles"
)

// sessionCmd represents the session command
var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Hold an interactive device session",
	Long: `Hold an exclusive device session in an interactive terminal.

While this TUI runs it owns the device: every other client is refused with a
busy error until you quit. Type a message and press Enter to write it, press
'r' to read the transformed message back. Features include:
- Transcript of writes and read-backs with timestamps
- ASCII and hex input modes
- Input history
- Session status indicators

Example usage:
  tdlchar session
  tdlchar session --socket /run/tdlchar.sock`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := runSessionTUI(socketPath()); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(sessionCmd)
}

// sessionModel represents the Bubble Tea model for the session command
type sessionModel struct {
	*models.SessionModel
	transcript *components.Transcript
	statusBar  *components.StatusBar
	input      *components.Input
	help       help.Model
	keys       keys.SessionKeys
}

func runSessionTUI(socket string) error {
	m := sessionModel{
		SessionModel: models.NewSessionModel(socket),
		transcript:   components.NewTranscript(0, 0), // sized by WindowSizeMsg
		statusBar:    components.NewStatusBar(socket),
		input:        components.NewInput("Type message and press Enter to write..."),
		help:         help.New(),
		keys:         keys.NewSessionKeys(),
	}
	m.statusBar.SetOpening()
	m.statusBar.SetDeviceInfo(&components.DeviceInfo{Capacity: 256})

	p := tea.NewProgram(&m, tea.WithAltScreen())

	// Acquire the session in the background so a busy device shows up as a
	// status instead of a hang.
	go func() {
		sess, err := client.Open(socket, 5*time.Second)
		if err != nil {
			p.Send(components.SessionStatusMsg{Open: false, Error: err})
			return
		}
		m.SetSession(sess)
		p.Send(components.SessionStatusMsg{Open: true})
	}()

	_, err := p.Run()
	m.Cleanup()
	return err
}

func (m *sessionModel) Init() tea.Cmd {
	return nil
}

func (m *sessionModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		inputHeight := 3
		helpHeight := 1
		statusBarHeight := 1
		m.transcript.SetSize(msg.Width, msg.Height-inputHeight-helpHeight-statusBarHeight)
		m.help.Width = msg.Width
		m.input.SetWidth(msg.Width)
		m.statusBar.SetWidth(msg.Width)
		m.SetReady(true)

	case components.SessionStatusMsg:
		m.SetOpen(msg.Open)
		if msg.Error != nil {
			m.SetError(msg.Error)
			m.statusBar.SetFailed(msg.Error)
			m.transcript.Add(components.EventMsg{
				Timestamp: time.Now(),
				Kind:      components.EventNote,
				Data:      []byte(fmt.Sprintf("open failed: %v", msg.Error)),
			})
		} else {
			m.statusBar.SetOpen()
			m.input.Focus()
		}

	case components.EventMsg:
		if m.IsReady() {
			m.AddEvent(msg)
			m.transcript.Add(msg)
		}

	case tea.KeyMsg:
		if m.IsInInsertMode() {
			switch {
			case key.Matches(msg, m.keys.Escape):
				m.SetInputMode(models.InputModeNormal)
				m.input.Blur()
				return m, tea.Batch(cmds...)
			case key.Matches(msg, m.keys.Enter):
				if cmd := m.writeCurrentInput(); cmd != nil {
					cmds = append(cmds, cmd)
				}
				return m, tea.Batch(cmds...)
			case key.Matches(msg, m.keys.Up):
				m.input.NavigateHistoryUp()
				return m, tea.Batch(cmds...)
			case key.Matches(msg, m.keys.Down):
				m.input.NavigateHistoryDown()
				return m, tea.Batch(cmds...)
			case key.Matches(msg, m.keys.ToggleSendMode):
				m.input.ToggleSendingMode()
				return m, tea.Batch(cmds...)
			}
		} else {
			switch {
			case key.Matches(msg, m.keys.Quit):
				m.Cleanup()
				return m, tea.Quit

			case key.Matches(msg, m.keys.InsertMode):
				m.SetInputMode(models.InputModeInsert)
				m.input.Focus()
				return m, tea.Batch(cmds...)

			case key.Matches(msg, m.keys.ReadBack):
				if cmd := m.readBack(); cmd != nil {
					cmds = append(cmds, cmd)
				}
				return m, tea.Batch(cmds...)

			case key.Matches(msg, m.keys.Clear):
				m.ClearEvents()
				m.transcript.Clear()

			case key.Matches(msg, m.keys.Help):
				m.help.ShowAll = !m.help.ShowAll

			case key.Matches(msg, m.keys.ToggleHex):
				m.transcript.ToggleHex()
				m.transcript.Refresh(m.GetEvents())
			}
		}
	}

	var cmd tea.Cmd
	if m.IsInInsertMode() {
		m.input, cmd = m.input.Update(msg)
		cmds = append(cmds, cmd)
	}

	switch msg.(type) {
	case tea.WindowSizeMsg:
		_, cmd = m.transcript.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// writeCurrentInput parses the input field per sending mode and issues the
// write asynchronously, echoing a pending transcript entry right away.
func (m *sessionModel) writeCurrentInput() tea.Cmd {
	sess := m.GetSession()
	inputStr := m.input.Value()
	if inputStr == "" || sess == nil {
		return nil
	}

	var payload []byte
	switch m.input.GetSendingMode() {
	case components.SendingModeHex:
		decoded, err := parseHexInput(inputStr)
		if err != nil {
			m.transcript.Add(components.EventMsg{
				Timestamp: time.Now(),
				Kind:      components.EventNote,
				Data:      []byte(fmt.Sprintf("invalid hex input: %v", err)),
			})
			return nil
		}
		payload = decoded
	default:
		payload = []byte(inputStr)
	}

	pending := components.EventMsg{
		Timestamp: time.Now(),
		Kind:      components.EventTX,
		Data:      payload,
		Status:    "PENDING",
	}
	m.AddEvent(pending)
	m.transcript.Add(pending)

	m.input.AddToHistory(inputStr)
	m.input.SetValue("")

	return func() tea.Msg {
		result := components.EventMsg{
			Timestamp: time.Now(),
			Kind:      components.EventTX,
			Data:      payload,
			Status:    "WRITTEN",
		}
		if _, err := sess.Write(payload); err != nil {
			result.Status = "ERROR"
			result.Data = []byte(fmt.Sprintf("%s (%v)", payload, err))
		}
		return result
	}
}

// readBack drains the device store asynchronously and reports the result as
// an RX transcript entry.
func (m *sessionModel) readBack() tea.Cmd {
	sess := m.GetSession()
	if sess == nil {
		return nil
	}

	return func() tea.Msg {
		msg, err := sess.Read(256)
		event := components.EventMsg{
			Timestamp: time.Now(),
			Kind:      components.EventRX,
			Data:      msg,
		}
		if err != nil {
			event.Kind = components.EventNote
			event.Data = []byte(fmt.Sprintf("read failed: %v", err))
		} else if len(msg) == 0 {
			event.Status = "EMPTY"
		}
		return event
	}
}

func (m *sessionModel) View() string {
	var content string
	if m.IsReady() {
		content = m.transcript.View()
	} else {
		content = "Initializing..."
	}

	isInsertMode := m.IsInInsertMode()
	input := m.input.ViewWithMode(isInsertMode)

	inputMode := m.GetInputMode().String()
	sendingMode := m.input.GetSendingMode().String()
	statusBar := m.statusBar.View(inputMode, sendingMode, m.IsOpen())

	contentWithBorder := styles.ContentBorderStyle.Render(content)
	helpView := m.help.View(m.keys)

	return lipgloss.JoinVertical(
		lipgloss.Left,
		contentWithBorder,
		input,
		helpView,
		statusBar,
	)
}

// parseHexInput converts hex strings to bytes. Supports both:
// - Space-separated: "48 65 6C 6C 6F"
// - Continuous: "48656C6C6F"
func parseHexInput(hexStr string) ([]byte, error) {
	cleanHex := strings.ReplaceAll(strings.TrimSpace(hexStr), " ", "")
	cleanHex = strings.TrimPrefix(strings.TrimPrefix(cleanHex, "0x"), "0X")
	if len(cleanHex) == 0 {
		return nil, fmt.Errorf("empty input")
	}

	if len(cleanHex)%2 != 0 {
		return nil, fmt.Errorf("hex string must have even number of digits (got %d)", len(cleanHex))
	}

	bytes := make([]byte, 0, len(cleanHex)/2)
	for i := 0; i < len(cleanHex); i += 2 {
		b, err := strconv.ParseUint(cleanHex[i:i+2], 16, 8)
		if err != nil {
			return nil, fmt.Errorf("invalid hex byte '%s': %v", cleanHex[i:i+2], err)
		}
		bytes = append(bytes, byte(b))
	}
	return bytes, nil
}
