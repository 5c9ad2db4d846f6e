package ui

import "github.com/charmbracelet/bubbles/key"

// BackMsg asks the app to leave the current screen for the dashboard.
type BackMsg struct{}

// AuthErrorMsg reports that the API rejected the session token.
type AuthErrorMsg struct {
	Err error
}

// HintLine joins the help text of bindings for the status bar.
func HintLine(bindings ...key.Binding) string {
	s := ""
	for i, b := range bindings {
		if !b.Enabled() {
			continue
		}
		if i > 0 && s != "" {
			s += "  "
		}
		h := b.Help()
		s += h.Key + " " + h.Desc
	}
	return s
}
