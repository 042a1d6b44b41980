package ui

import (
	"fmt"
	"strings"

	"github.com/rivo/tview"
)

// menuRows is the number of hints per column; it matches the header height.
const menuRows = 6

// Menu displays keyboard shortcut hints in columns.
type Menu struct {
	*tview.TextView
	theme *Theme
}

// NewMenu creates a new menu hint bar.
func NewMenu(theme *Theme) *Menu {
	tv := tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignLeft)
	tv.SetBackgroundColor(theme.BgColor)
	tv.SetBorderPadding(0, 0, 2, 0)

	return &Menu{
		TextView: tv,
		theme:    theme,
	}
}

// Update renders hints top to bottom, starting a new column every
// menuRows entries.
func (m *Menu) Update(hints []MenuHint) {
	m.Clear()
	_, _ = fmt.Fprint(m, m.layout(hints))
}

func (m *Menu) layout(hints []MenuHint) string {
	keyColor := Tag(m.theme.MenuKeyColor)
	numColor := Tag(m.theme.PageKeyColor)

	rows := make([]string, min(len(hints), menuRows))
	for i, h := range hints {
		kc := keyColor
		if h.PageSwitch {
			kc = numColor
		}
		cell := fmt.Sprintf("[%s::b]<%s>[-:-:-] %s", kc, h.Key, h.Description)
		if pad := 18 - len(h.Key) - len(h.Description); pad > 0 && i+menuRows < len(hints) {
			cell += strings.Repeat(" ", pad)
		}
		rows[i%menuRows] += cell
	}
	return strings.Join(rows, "\n")
}
