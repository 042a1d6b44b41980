package ui

import (
	"fmt"
	"time"

	"github.com/rivo/tview"

	"github.com/matheus3301/botadmin/internal/status"
)

// ProfileData holds what the header shows about the active profile.
type ProfileData struct {
	Profile       string
	APIURL        string
	Authenticated bool
	Feed          status.State
	Buffered      int
	Capacity      int
	ConfigAge     time.Duration // zero before the first fetch
}

// ProfileInfo displays profile and connection metadata in the header.
type ProfileInfo struct {
	*tview.TextView
	theme *Theme
}

// NewProfileInfo creates a new profile info panel.
func NewProfileInfo(theme *Theme) *ProfileInfo {
	tv := tview.NewTextView().
		SetDynamicColors(true)
	tv.SetBackgroundColor(theme.BgColor)
	tv.SetBorderPadding(0, 0, 1, 1)

	return &ProfileInfo{
		TextView: tv,
		theme:    theme,
	}
}

// Update renders the profile info.
func (pi *ProfileInfo) Update(data *ProfileData) {
	pi.Clear()
	if data == nil {
		return
	}

	fgColor := Tag(pi.theme.FgColor)
	counterColor := Tag(pi.theme.CounterColor)
	feedColor := Tag(pi.theme.FeedColor(data.Feed))

	auth := "no"
	if data.Authenticated {
		auth = "yes"
	}
	config := "-"
	if data.ConfigAge > 0 {
		config = formatDuration(data.ConfigAge) + " ago"
	}

	text := fmt.Sprintf(
		"[%s::b]Profile:[-:-:-] [%s]%s[-]\n"+
			"[%s::b]API:[-:-:-]     [%s]%s[-]\n"+
			"[%s::b]Auth:[-:-:-]    [%s]%s[-]\n"+
			"[%s::b]Feed:[-:-:-]    [%s]%s[-]\n"+
			"[%s::b]Msgs:[-:-:-]    [%s]%d/%d[-]\n"+
			"[%s::b]Config:[-:-:-]  [%s]%s[-]",
		fgColor, counterColor, data.Profile,
		fgColor, counterColor, data.APIURL,
		fgColor, counterColor, auth,
		fgColor, feedColor, data.Feed,
		fgColor, counterColor, data.Buffered, data.Capacity,
		fgColor, counterColor, config,
	)

	_, _ = fmt.Fprint(pi, text)
}

func formatDuration(d time.Duration) string {
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	switch {
	case h > 0:
		return fmt.Sprintf("%dh%dm", h, m)
	case m > 0:
		return fmt.Sprintf("%dm", m)
	}
	return fmt.Sprintf("%ds", int(d.Seconds()))
}
