package ui

import (
	"fmt"
	"strings"

	"github.com/rivo/tview"
)

// Crumbs shows where the operator is: the profile, then the page stack.
type Crumbs struct {
	*tview.TextView
	theme *Theme
}

// NewCrumbs creates an empty breadcrumb bar.
func NewCrumbs(theme *Theme) *Crumbs {
	tv := tview.NewTextView().SetDynamicColors(true)
	tv.SetBackgroundColor(theme.BgColor)
	return &Crumbs{TextView: tv, theme: theme}
}

// Update redraws the trail. The top page is highlighted; an empty stack
// clears the bar.
func (c *Crumbs) Update(profile string, stack []string) {
	c.SetText(c.trail(profile, stack))
}

func (c *Crumbs) trail(profile string, stack []string) string {
	if len(stack) == 0 {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "[%s::b]@%s[-:-:-]", Tag(c.theme.TitleColor), tview.Escape(profile))
	for i, name := range stack {
		fg, bg, attr := c.theme.CrumbInactiveFg, c.theme.CrumbInactiveBg, ""
		if i == len(stack)-1 {
			fg, bg, attr = c.theme.CrumbActiveFg, c.theme.CrumbActiveBg, "b"
		}
		fmt.Fprintf(&b, " [%s:%s:%s] %s [-:-:-]", Tag(fg), Tag(bg), attr, name)
	}
	return b.String()
}
