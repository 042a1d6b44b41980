package views

import (
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/matheus3301/botadmin/internal/console"
	"github.com/matheus3301/botadmin/internal/gateway"
	"github.com/matheus3301/botadmin/internal/messages"
	"github.com/matheus3301/botadmin/internal/status"
	"github.com/matheus3301/botadmin/internal/tui/ui"
)

// DashboardData is everything the dashboard renders.
type DashboardData struct {
	Messages int
	Capacity int
	Feed     status.State
	Toggles  []console.Toggle
	Sessions []gateway.BotSession
}

// DashboardView shows platform toggles, feed state and the bot's sessions.
type DashboardView struct {
	*tview.Flex
	theme    *ui.Theme
	summary  *tview.TextView
	sessions *tview.Table
}

// NewDashboardView creates the dashboard page.
func NewDashboardView(theme *ui.Theme) *DashboardView {
	summary := tview.NewTextView().
		SetDynamicColors(true)
	summary.SetBorder(true)
	summary.SetBorderColor(theme.BorderColor)
	summary.SetBackgroundColor(theme.BgColor)
	summary.SetTextColor(theme.FgColor)
	summary.SetTitle(" Overview ")
	summary.SetTitleColor(theme.TitleColor)

	table := tview.NewTable().
		SetSelectable(true, false).
		SetBorders(false).
		SetFixed(1, 0)
	table.SetBorder(true)
	table.SetBorderColor(theme.BorderColor)
	table.SetBackgroundColor(theme.BgColor)
	table.SetSelectedStyle(tcell.StyleDefault.
		Foreground(theme.TableCursorFg).
		Background(theme.TableCursorBg))
	table.SetTitle(" Sessions ")
	table.SetTitleColor(theme.TitleColor)

	flex := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(summary, 0, 1, false).
		AddItem(table, 0, 2, true)

	return &DashboardView{
		Flex:     flex,
		theme:    theme,
		summary:  summary,
		sessions: table,
	}
}

// Name implements ui.Page.
func (dv *DashboardView) Name() string { return "dashboard" }

// Start implements ui.Page.
func (dv *DashboardView) Start() {}

// Stop implements ui.Page.
func (dv *DashboardView) Stop() {}

// Hints implements ui.Page.
func (dv *DashboardView) Hints() []ui.MenuHint {
	return []ui.MenuHint{{Key: "↑↓", Description: "Sessions"}}
}

// Update re-renders both panels.
func (dv *DashboardView) Update(data DashboardData) {
	dv.renderSummary(data)
	dv.renderSessions(data.Sessions)
}

func (dv *DashboardView) renderSummary(data DashboardData) {
	dv.summary.Clear()

	counter := ui.Tag(dv.theme.CounterColor)
	_, _ = fmt.Fprintf(dv.summary, " [::b]History[-:-:-]   [%s]%d[-] of %d buffered\n", counter, data.Messages, data.Capacity)
	_, _ = fmt.Fprintf(dv.summary, " [::b]Live feed[-:-:-] [%s]%s[-]\n\n", ui.Tag(dv.theme.FeedColor(data.Feed)), data.Feed)

	if len(data.Toggles) == 0 {
		_, _ = fmt.Fprint(dv.summary, " [::d]no platform toggles in config[-:-:-]")
		return
	}
	_, _ = fmt.Fprint(dv.summary, " [::b]Platforms[-:-:-]\n")
	for _, t := range data.Toggles {
		mark, color := "off", dv.theme.FeedDownColor
		if t.Enabled {
			mark, color = "on", dv.theme.FeedUpColor
		}
		_, _ = fmt.Fprintf(dv.summary, "   %-12s [%s]%s[-]\n", tview.Escape(t.Platform), ui.Tag(color), mark)
	}
}

func (dv *DashboardView) renderSessions(list []gateway.BotSession) {
	dv.sessions.Clear()

	headers := []struct {
		text string
		exp  int
	}{
		{" PLATFORM", 0},
		{" NAME", 2},
		{" ID", 1},
		{" LAST ACTIVE", 0},
	}
	for col, h := range headers {
		cell := tview.NewTableCell(h.text).
			SetSelectable(false).
			SetTextColor(dv.theme.TableHeaderFg).
			SetBackgroundColor(dv.theme.TableHeaderBg).
			SetAttributes(tcell.AttrBold).
			SetExpansion(h.exp)
		dv.sessions.SetCell(0, col, cell)
	}

	for i, s := range list {
		row := i + 1
		name := s.PlatformName
		if name == "" {
			name = s.PlatformID
		}
		cells := []string{s.Platform, messages.Printable(name), s.PlatformID, formatTime(s.LastActive)}
		for col, text := range cells {
			dv.sessions.SetCell(row, col, tview.NewTableCell(" "+text).
				SetTextColor(dv.theme.FgColor).
				SetExpansion(headers[col].exp))
		}
	}
	dv.sessions.SetTitle(fmt.Sprintf(" Sessions [%s](%d)[-] ", ui.Tag(dv.theme.CounterColor), len(list)))
}

// formatTime shows a clock time for today and a date otherwise.
func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	local := t.Local()
	now := time.Now()
	if local.Year() == now.Year() && local.YearDay() == now.YearDay() {
		return local.Format("15:04")
	}
	return local.Format("Jan 02")
}
