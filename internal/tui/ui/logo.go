package ui

import (
	"fmt"
	"strings"

	"github.com/rivo/tview"

	"github.com/matheus3301/botadmin/internal/status"
)

var logoLines = []string{
	"╔╗ ╔═╗╔╦╗",
	"╠╩╗║ ║ ║ ",
	"╚═╝╚═╝ ╩ ",
}

// Logo is the header mark. Its color follows the live feed: lit while
// connected, dim otherwise.
type Logo struct {
	*tview.TextView
	theme *Theme
	feed  status.State
}

// NewLogo creates the logo in the disconnected color.
func NewLogo(theme *Theme) *Logo {
	tv := tview.NewTextView().SetDynamicColors(true)
	tv.SetBackgroundColor(theme.BgColor)
	tv.SetBorderPadding(1, 0, 1, 0)

	l := &Logo{TextView: tv, theme: theme, feed: status.Disconnected}
	l.SetText(l.text())
	return l
}

// SetFeed recolors the logo for s.
func (l *Logo) SetFeed(s status.State) {
	if s == l.feed {
		return
	}
	l.feed = s
	l.SetText(l.text())
}

func (l *Logo) text() string {
	mark := Tag(l.theme.TitleColor)
	if l.feed != status.Connected {
		mark = Tag(l.theme.FgColor)
	}
	var b strings.Builder
	for _, line := range logoLines {
		fmt.Fprintf(&b, "[%s::b]%s[-:-:-]\n", mark, line)
	}
	fmt.Fprintf(&b, "[%s]%s[-]", Tag(l.theme.FeedColor(l.feed)), feedCaption(l.feed))
	return b.String()
}

func feedCaption(s status.State) string {
	switch s {
	case status.Connected:
		return "● live"
	case status.Connecting:
		return "◌ connecting"
	}
	return "○ offline"
}
