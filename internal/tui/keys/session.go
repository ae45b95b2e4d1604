package keys

import "github.com/charmbracelet/bubbles/key"

// SessionKeys drive the interactive device session: write from the input
// field, read to drain the store, plus transcript controls.
type SessionKeys struct {
	CommonKeys
	Enter          key.Binding
	ReadBack       key.Binding
	Clear          key.Binding
	ToggleHex      key.Binding
	ToggleSendMode key.Binding
	Up             key.Binding
	Down           key.Binding
}

func NewSessionKeys() SessionKeys {
	return SessionKeys{
		CommonKeys: NewCommonKeys(),
		Enter: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "write message"),
		),
		ReadBack: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "read back"),
		),
		Clear: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "clear transcript"),
		),
		ToggleHex: key.NewBinding(
			key.WithKeys("h"),
			key.WithHelp("h", "toggle hex"),
		),
		ToggleSendMode: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "toggle send mode"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "history up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "history down"),
		),
	}
}

func (k SessionKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Help, k.InsertMode, k.ReadBack, k.Enter, k.Quit}
}

func (k SessionKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.InsertMode, k.Escape, k.Enter, k.ReadBack},
		{k.Clear, k.ToggleHex, k.ToggleSendMode},
		{k.Up, k.Down, k.Help, k.Quit},
	}
}
