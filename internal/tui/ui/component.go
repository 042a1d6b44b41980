package ui

import "github.com/rivo/tview"

// MenuHint is one key listed in the header menu.
type MenuHint struct {
	Key         string
	Description string
	PageSwitch  bool
}

// Page is one screen of the console. It draws itself and is told when it
// becomes visible and when it is left; the live console page opens and
// closes the feed there.
type Page interface {
	tview.Primitive
	Name() string
	Start()
	Stop()
	// Hints lists keys handled by the page's own widgets.
	Hints() []MenuHint
}
