// Package hotkey delivers the global record-toggle shortcut (Alt+E),
// independent of window focus.
package hotkey

type Hotkey interface {
	Register() error
	Unregister()
	// Toggled fires once per Alt+E press.
	Toggled() <-chan struct{}
}
