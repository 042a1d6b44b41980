package views

import (
	"fmt"
	"strings"

	"github.com/rivo/tview"

	"github.com/matheus3301/botadmin/internal/messages"
	"github.com/matheus3301/botadmin/internal/tui/ui"
)

// ConsoleView is the live message console. Showing the page activates the
// live feed and leaving it deactivates the feed.
type ConsoleView struct {
	*tview.TextView
	theme        *ui.Theme
	onActivate   func()
	onDeactivate func()
}

// NewConsoleView creates the console page.
func NewConsoleView(theme *ui.Theme) *ConsoleView {
	tv := tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetWordWrap(true)
	tv.SetBorder(true)
	tv.SetBorderColor(theme.BorderColor)
	tv.SetBackgroundColor(theme.BgColor)
	tv.SetTextColor(theme.FgColor)
	tv.SetTitle(" Console ")
	tv.SetTitleColor(theme.TitleColor)

	return &ConsoleView{TextView: tv, theme: theme}
}

// Name implements ui.Page.
func (cv *ConsoleView) Name() string { return "console" }

// Start implements ui.Page.
func (cv *ConsoleView) Start() {
	if cv.onActivate != nil {
		cv.onActivate()
	}
}

// Stop implements ui.Page.
func (cv *ConsoleView) Stop() {
	if cv.onDeactivate != nil {
		cv.onDeactivate()
	}
}

// Hints implements ui.Page.
func (cv *ConsoleView) Hints() []ui.MenuHint {
	return []ui.MenuHint{{Key: "j/k", Description: "Scroll"}}
}

// SetLifecycle sets the callbacks run when the page is shown and left.
func (cv *ConsoleView) SetLifecycle(activate, deactivate func()) {
	cv.onActivate = activate
	cv.onDeactivate = deactivate
}

// Update renders msgs (newest first) with the newest at the bottom.
func (cv *ConsoleView) Update(msgs []messages.ChatMessage) {
	cv.Clear()
	_, _ = fmt.Fprint(cv, FormatMessages(msgs, cv.theme))
	cv.SetTitle(fmt.Sprintf(" Console [%s](%d)[-] ", ui.Tag(cv.theme.CounterColor), len(msgs)))
	cv.ScrollToEnd()
}

// FormatMessages renders msgs oldest first as tview-tagged text.
func FormatMessages(msgs []messages.ChatMessage, theme *ui.Theme) string {
	var b strings.Builder
	live := ui.Tag(theme.LiveSenderColor)
	for i := len(msgs) - 1; i >= 0; i-- {
		m := msgs[i]
		sender := tview.Escape(messages.Printable(m.Sender))
		if m.Live {
			sender = fmt.Sprintf("[%s]%s[-]", live, sender)
		}
		body := tview.Escape(messages.Printable(m.Content))
		if m.MsgType == messages.Image {
			body = "[::i]<image>[-:-:-] " + body
		}
		_, _ = fmt.Fprintf(&b, "[::b]%s[-:-:-] [::d]%s[-:-:-]\n%s\n\n", sender, formatTime(m.CreatedAt), body)
	}
	return b.String()
}
