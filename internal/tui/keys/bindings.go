// Package keys maps key presses to console actions per page.
package keys

import (
	"slices"

	"github.com/gdamore/tcell/v2"
)

// Binding is one key and the action it triggers.
type Binding struct {
	Key     tcell.Key // tcell.KeyRune for printable keys
	Rune    rune
	Label   string // menu text, e.g. "refresh"
	Handler func()
	// PageSwitch marks the digit keys that change page; menus color them
	// apart.
	PageSwitch bool
	Hidden     bool
}

// Rune returns a binding for a printable key.
func Rune(r rune, label string, handler func()) *Binding {
	return &Binding{Key: tcell.KeyRune, Rune: r, Label: label, Handler: handler}
}

// Matches reports whether ev presses this binding's key.
func (b *Binding) Matches(ev *tcell.EventKey) bool {
	if b.Key != tcell.KeyRune {
		return ev.Key() == b.Key
	}
	return ev.Key() == tcell.KeyRune && ev.Rune() == b.Rune
}

// KeyName is the key as shown to the operator: "q", "Esc", "Ctrl+R".
func (b *Binding) KeyName() string {
	if b.Key == tcell.KeyRune {
		return string(b.Rune)
	}
	return tcell.NewEventKey(b.Key, 0, tcell.ModNone).Name()
}

func (b *Binding) sameKey(o *Binding) bool {
	return b.Key == o.Key && (b.Key != tcell.KeyRune || b.Rune == o.Rune)
}

// Registry holds global bindings and per-page bindings in registration
// order. A page binding shadows a global one on the same key.
type Registry struct {
	global []*Binding
	pages  map[string][]*Binding
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{pages: make(map[string][]*Binding)}
}

// Global registers b on every page.
func (r *Registry) Global(b *Binding) {
	r.global = append(r.global, b)
}

// Page registers b on each of the named pages.
func (r *Registry) Page(b *Binding, pages ...string) {
	for _, p := range pages {
		r.pages[p] = append(r.pages[p], b)
	}
}

// Bindings returns what is active on page: its own bindings, then the
// globals it does not shadow.
func (r *Registry) Bindings(page string) []*Binding {
	own := r.pages[page]
	out := slices.Clone(own)
	for _, g := range r.global {
		if !slices.ContainsFunc(own, g.sameKey) {
			out = append(out, g)
		}
	}
	return out
}

// Handle runs the binding ev selects on page and reports whether one did.
func (r *Registry) Handle(page string, ev *tcell.EventKey) bool {
	for _, b := range r.Bindings(page) {
		if b.Matches(ev) {
			if b.Handler != nil {
				b.Handler()
			}
			return true
		}
	}
	return false
}
