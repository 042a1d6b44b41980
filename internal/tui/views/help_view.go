package views

import (
	"fmt"

	"github.com/rivo/tview"

	"github.com/matheus3301/botadmin/internal/tui/ui"
)

// HelpView displays key binding reference.
type HelpView struct {
	*tview.TextView
	theme *ui.Theme
}

// NewHelpView creates a new help view.
func NewHelpView(theme *ui.Theme) *HelpView {
	tv := tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true)
	tv.SetBorder(true)
	tv.SetBorderColor(theme.BorderColor)
	tv.SetBackgroundColor(theme.BgColor)
	tv.SetTextColor(theme.FgColor)
	tv.SetTitle(" Help ")
	tv.SetTitleColor(theme.TitleColor)

	hv := &HelpView{
		TextView: tv,
		theme:    theme,
	}
	hv.render()
	return hv
}

// Name implements ui.Page.
func (hv *HelpView) Name() string { return "help" }

// Start implements ui.Page.
func (hv *HelpView) Start() {}

// Stop implements ui.Page.
func (hv *HelpView) Stop() {}

// Hints implements ui.Page.
func (hv *HelpView) Hints() []ui.MenuHint {
	return []ui.MenuHint{
		{Key: "Esc", Description: "Back"},
	}
}

func (hv *HelpView) render() {
	kc := ui.Tag(hv.theme.MenuKeyColor)
	nc := ui.Tag(hv.theme.PageKeyColor)

	help := fmt.Sprintf(`
  [::b]Pages[-:-:-]

  [%[2]s]1[-:-:-]    Dashboard           [%[2]s]2[-:-:-]     Live console
  [%[2]s]3[-:-:-]    Config editor       [%[1]s]?[-:-:-]     This help

  [::b]Global Keys[-:-:-]

  [%[1]s]r[-:-:-]    Refresh page data   [%[1]s]L[-:-:-]     Logout
  [%[1]s]q[-:-:-]    Quit                [%[1]s]Ctrl-C[-:-:-] Quit immediately
  [%[1]s]Esc[-:-:-]  Back / leave form

  [::b]Console[-:-:-]

  Opening the console connects the live feed; leaving it disconnects.
  A dropped connection is not retried: press [%[1]s]r[-:-:-] to reconnect.

  [::b]Config[-:-:-]

  [%[1]s]Tab[-:-:-]  Next field          [%[1]s]Enter[-:-:-] Activate button
  Save sends the whole document; the form then shows what the backend stored.
`, kc, nc)

	_, _ = fmt.Fprint(hv, help)
}
