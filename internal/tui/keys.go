package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Open    key.Binding
	Analyze key.Binding
	Reset   key.Binding
	Cancel  key.Binding
	Help    key.Binding
	Quit    key.Binding
}

func newKeyMap(text catalog) keyMap {
	keys := keyMap{
		Open:    key.NewBinding(key.WithKeys("o"), key.WithHelp("o", text.KeyOpen)),
		Analyze: key.NewBinding(key.WithKeys("a"), key.WithHelp("a", text.KeyAnalyze)),
		Reset:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", text.KeyReset)),
		Cancel:  key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", text.KeyCancel)),
		Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", text.KeyHelp)),
		Quit:    key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", text.KeyQuit)),
	}
	keys.Analyze.SetEnabled(false)
	keys.Cancel.SetEnabled(false)
	return keys
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Open, k.Analyze, k.Reset, k.Cancel, k.Help}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Open, k.Analyze, k.Reset},
		{k.Cancel, k.Help, k.Quit},
	}
}

// matchesKeys reports whether msg is one of the binding's keys, regardless of
// whether the binding is enabled.
func matchesKeys(msg string, binding key.Binding) bool {
	for _, k := range binding.Keys() {
		if k == msg {
			return true
		}
	}
	return false
}
