package ui

import (
	"fmt"

	"github.com/gdamore/tcell/v2"

	"github.com/matheus3301/botadmin/internal/console"
	"github.com/matheus3301/botadmin/internal/status"
)

// Theme holds color constants for the TUI.
type Theme struct {
	BgColor          tcell.Color
	FgColor          tcell.Color
	BorderColor      tcell.Color
	BorderFocusColor tcell.Color
	TableHeaderFg    tcell.Color
	TableHeaderBg    tcell.Color
	TableCursorFg    tcell.Color
	TableCursorBg    tcell.Color
	CrumbActiveFg    tcell.Color
	CrumbActiveBg    tcell.Color
	CrumbInactiveFg  tcell.Color
	CrumbInactiveBg  tcell.Color
	MenuKeyColor     tcell.Color
	PageKeyColor     tcell.Color
	TitleColor       tcell.Color
	CounterColor     tcell.Color
	FlashInfoColor   tcell.Color
	FlashWarnColor   tcell.Color
	FlashErrColor    tcell.Color
	FieldBgColor     tcell.Color
	LiveSenderColor  tcell.Color
	FeedUpColor      tcell.Color
	FeedPendingColor tcell.Color
	FeedDownColor    tcell.Color
}

// DefaultTheme returns a k9s-inspired dark theme.
func DefaultTheme() *Theme {
	return &Theme{
		BgColor:          tcell.ColorBlack,
		FgColor:          tcell.ColorCadetBlue,
		BorderColor:      tcell.ColorDodgerBlue,
		BorderFocusColor: tcell.ColorLightSkyBlue,
		TableHeaderFg:    tcell.ColorWhite,
		TableHeaderBg:    tcell.ColorBlack,
		TableCursorFg:    tcell.ColorBlack,
		TableCursorBg:    tcell.ColorAqua,
		CrumbActiveFg:    tcell.ColorBlack,
		CrumbActiveBg:    tcell.ColorOrange,
		CrumbInactiveFg:  tcell.ColorBlack,
		CrumbInactiveBg:  tcell.ColorAqua,
		MenuKeyColor:     tcell.ColorDodgerBlue,
		PageKeyColor:     tcell.ColorFuchsia,
		TitleColor:       tcell.ColorFuchsia,
		CounterColor:     tcell.ColorPapayaWhip,
		FlashInfoColor:   tcell.ColorNavajoWhite,
		FlashWarnColor:   tcell.ColorOrange,
		FlashErrColor:    tcell.ColorOrangeRed,
		FieldBgColor:     tcell.ColorDarkSlateGray,
		LiveSenderColor:  tcell.ColorLightGreen,
		FeedUpColor:      tcell.ColorLime,
		FeedPendingColor: tcell.ColorYellow,
		FeedDownColor:    tcell.ColorOrangeRed,
	}
}

// FeedColor returns the color used to render a feed state.
func (t *Theme) FeedColor(s status.State) tcell.Color {
	switch s {
	case status.Connected:
		return t.FeedUpColor
	case status.Connecting:
		return t.FeedPendingColor
	}
	return t.FeedDownColor
}

// FlashColor returns the color for a flash of level l.
func (t *Theme) FlashColor(l console.FlashLevel) tcell.Color {
	switch l {
	case console.FlashWarn:
		return t.FlashWarnColor
	case console.FlashErr:
		return t.FlashErrColor
	}
	return t.FlashInfoColor
}

// Tag returns c as a tview color tag value: a color name when tcell knows
// one, otherwise #rrggbb.
func Tag(c tcell.Color) string {
	if name, ok := colorNames[c]; ok {
		return name
	}
	return fmt.Sprintf("#%06x", c.Hex())
}

var colorNames = func() map[tcell.Color]string {
	m := make(map[tcell.Color]string, len(tcell.ColorNames))
	for name, c := range tcell.ColorNames {
		// Several names share a value (grey/gray); keep the shortest, then
		// the first alphabetically, so tags are stable.
		if prev, ok := m[c]; !ok || len(name) < len(prev) || (len(name) == len(prev) && name < prev) {
			m[c] = name
		}
	}
	return m
}()
