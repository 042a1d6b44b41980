package ui

import (
	"fmt"

	"github.com/rivo/tview"

	"github.com/matheus3301/botadmin/internal/console"
)

// FlashBar shows the current flash notification on one line.
type FlashBar struct {
	*tview.TextView
	theme *Theme
}

// NewFlashBar creates an empty flash bar.
func NewFlashBar(theme *Theme) *FlashBar {
	tv := tview.NewTextView().SetDynamicColors(true)
	tv.SetBackgroundColor(theme.BgColor)
	return &FlashBar{TextView: tv, theme: theme}
}

// Update shows msg, or clears the bar when msg is nil.
func (fb *FlashBar) Update(msg *console.FlashMessage) {
	if msg == nil {
		fb.SetText("")
		return
	}
	fb.SetText(fmt.Sprintf(" [%s]%s %s[-]", Tag(fb.theme.FlashColor(msg.Level)), flashMark(msg.Level), tview.Escape(msg.Text)))
}

func flashMark(l console.FlashLevel) string {
	switch l {
	case console.FlashWarn:
		return "!"
	case console.FlashErr:
		return "✗"
	}
	return "✓"
}
