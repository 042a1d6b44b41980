package status

import (
	"fmt"
	"slices"
	"sync"

	"github.com/matheus3301/botadmin/internal/bus"
)

// State is a live feed connection state.
type State string

const (
	Disconnected State = "DISCONNECTED"
	Connecting   State = "CONNECTING"
	Connected    State = "CONNECTED"
)

// validTransitions defines allowed state transitions. Disconnected is terminal
// for one activation; a new activation starts from it again.
var validTransitions = map[State][]State{
	Disconnected: {Connecting},
	Connecting:   {Connected, Disconnected},
	Connected:    {Disconnected},
}

// Machine tracks and enforces live feed state transitions.
type Machine struct {
	mu      sync.RWMutex
	current State
	bus     *bus.Bus
}

// NewMachine creates a machine in the Disconnected state.
func NewMachine(b *bus.Bus) *Machine {
	return &Machine{
		current: Disconnected,
		bus:     b,
	}
}

// Current returns the current state.
func (m *Machine) Current() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Transition moves to a new state. Returns an error if the transition is not
// allowed from the current state.
func (m *Machine) Transition(to State) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !slices.Contains(validTransitions[m.current], to) {
		return fmt.Errorf("invalid transition from %s to %s", m.current, to)
	}
	from := m.current
	m.current = to
	m.bus.Emit(bus.FeedStateChanged, StatusChange{From: from, To: to})
	return nil
}

// Reset forces the machine back to Disconnected, publishing a change if the
// state was different. Used when an activation is torn down mid-dial.
func (m *Machine) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == Disconnected {
		return
	}
	from := m.current
	m.current = Disconnected
	m.bus.Emit(bus.FeedStateChanged, StatusChange{From: from, To: Disconnected})
}

// StatusChange is the payload for feed.state_changed events.
type StatusChange struct {
	From State
	To   State
}
