package app

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vzahradnik/garden/internal/grammar"
)

// Keys holds the control bindings. Restart, pause and quit are single
// runes that programs may remap through their dictionary; force-quit is
// fixed.
type Keys struct {
	Restart rune
	Pause   rune
	Quit    rune

	ForceQuit key.Binding
}

// NewKeys builds the control keys for a grammar, applying its remaps.
func NewKeys(g *grammar.Grammar) Keys {
	return Keys{
		Restart: g.ControlKey('x'),
		Pause:   g.ControlKey(' '),
		Quit:    g.ControlKey('q'),
		ForceQuit: key.NewBinding(
			key.WithKeys("esc", "ctrl+c"),
			key.WithHelp("esc", "quit"),
		),
	}
}

// keyRune extracts the input symbol from a key message. Non-character
// keys (arrows, function keys) carry no symbol and are ignored.
func keyRune(msg tea.KeyMsg) rune {
	switch msg.Type {
	case tea.KeyRunes:
		if len(msg.Runes) > 0 {
			return msg.Runes[0]
		}
	case tea.KeySpace:
		return ' '
	case tea.KeyEnter:
		return '\n'
	case tea.KeyTab:
		return '\t'
	}
	return 0
}
