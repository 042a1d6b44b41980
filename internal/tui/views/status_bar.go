package views

import (
	"fmt"
	"time"

	"github.com/rivo/tview"

	"github.com/matheus3301/botadmin/internal/status"
	"github.com/matheus3301/botadmin/internal/tui/ui"
)

// StatusBar displays the profile, login state and live feed state.
type StatusBar struct {
	*tview.TextView
	theme   *ui.Theme
	profile string
	user    string
	feed    status.State
}

// NewStatusBar creates a new status bar.
func NewStatusBar(theme *ui.Theme) *StatusBar {
	tv := tview.NewTextView().
		SetDynamicColors(true)
	tv.SetBackgroundColor(tview.Styles.MoreContrastBackgroundColor)

	return &StatusBar{TextView: tv, theme: theme, feed: status.Disconnected}
}

// SetProfile updates the profile name display.
func (sb *StatusBar) SetProfile(name string) {
	sb.profile = name
	sb.render()
}

// SetUser updates the logged-in indicator; "" means logged out.
func (sb *StatusBar) SetUser(user string) {
	sb.user = user
	sb.render()
}

// SetFeed updates the feed state indicator.
func (sb *StatusBar) SetFeed(s status.State) {
	sb.feed = s
	sb.render()
}

// Tick redraws the clock.
func (sb *StatusBar) Tick() {
	sb.render()
}

func (sb *StatusBar) render() {
	sb.Clear()

	user := "[::d]logged out[-:-:-]"
	if sb.user != "" {
		user = tview.Escape(sb.user)
	}
	clock := time.Now().Format("15:04")
	feed := fmt.Sprintf("[%s]%s[-]", ui.Tag(sb.theme.FeedColor(sb.feed)), sb.feed)

	_, _ = fmt.Fprintf(sb, " [::b]%s[-:-:-] | %s | feed %s | %s", sb.profile, user, feed, clock)
}
