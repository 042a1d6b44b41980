package ui

import "github.com/rivo/tview"

// Pages is a stack of console pages over tview.Pages. Showing a page
// starts it; hiding it stops it.
type Pages struct {
	*tview.Pages
	stack    []string
	byName   map[string]Page
	onChange func(stack []string)
}

// NewPages creates an empty page manager.
func NewPages() *Pages {
	return &Pages{
		Pages:  tview.NewPages(),
		byName: make(map[string]Page),
	}
}

// Add registers pg, hidden, under its name.
func (p *Pages) Add(pg Page) {
	p.byName[pg.Name()] = pg
	p.AddPage(pg.Name(), pg, true, false)
}

// Page returns the page registered as name, or nil.
func (p *Pages) Page(name string) Page {
	return p.byName[name]
}

// Top returns the visible page, or nil before the first Reset.
func (p *Pages) Top() Page {
	return p.byName[p.Current()]
}

// SetOnChange sets a callback that fires when the stack changes.
func (p *Pages) SetOnChange(fn func(stack []string)) {
	p.onChange = fn
}

// Push shows name on top of the stack.
func (p *Pages) Push(name string) {
	if p.Current() == name {
		return
	}
	if cur := p.Current(); cur != "" {
		p.HidePage(cur)
		p.stop(cur)
	}
	p.stack = append(p.stack, name)
	p.show(name)
	p.notify()
}

// Pop removes the top page and shows the previous one. It returns the
// popped name, or "" when at most one page is on the stack.
func (p *Pages) Pop() string {
	if len(p.stack) < 2 {
		return ""
	}
	top := p.stack[len(p.stack)-1]
	p.HidePage(top)
	p.stop(top)
	p.stack = p.stack[:len(p.stack)-1]
	p.show(p.Current())
	p.notify()
	return top
}

// Current returns the name of the top page.
func (p *Pages) Current() string {
	if len(p.stack) == 0 {
		return ""
	}
	return p.stack[len(p.stack)-1]
}

// Stack returns a copy of the page stack.
func (p *Pages) Stack() []string {
	s := make([]string, len(p.stack))
	copy(s, p.stack)
	return s
}

// Reset clears the stack and shows only name. Resetting to the page that is
// already alone on the stack does nothing.
func (p *Pages) Reset(name string) {
	if len(p.stack) == 1 && p.stack[0] == name {
		return
	}
	if cur := p.Current(); cur != "" {
		p.stop(cur)
	}
	for _, n := range p.stack {
		p.HidePage(n)
	}
	p.stack = []string{name}
	p.show(name)
	p.notify()
}

func (p *Pages) show(name string) {
	p.ShowPage(name)
	p.SendToFront(name)
	if pg := p.byName[name]; pg != nil {
		pg.Start()
	}
}

func (p *Pages) stop(name string) {
	if pg := p.byName[name]; pg != nil {
		pg.Stop()
	}
}

func (p *Pages) notify() {
	if p.onChange != nil {
		p.onChange(p.Stack())
	}
}
