package app

import tea "github.com/charmbracelet/bubbletea"

// stateChangedMsg is sent when the store reports a change.
type stateChangedMsg struct{}

// waitForChange returns a tea.Cmd that blocks until the store signals a
// change. It is re-issued after every signal to keep the subscription
// alive.
func waitForChange(ch <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return stateChangedMsg{}
	}
}
