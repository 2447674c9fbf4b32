// Package booking drives the booking, reschedule, cancel and complete
// interactions against the appointment client.
package booking

import "sync"

// State represents the current state of a booking interaction.
type State string

const (
	StateIdle         State = "idle"
	StateListsLoading State = "lists_loading"
	StateReady        State = "ready"
	StateSubmitting   State = "submitting"
	StateSuccess      State = "success"
	StateFailed       State = "failed"
)

// FSM manages state transitions for a booking interaction.
type FSM struct {
	transitions map[State][]State
}

// NewFSM creates a new FSM with predefined transitions.
func NewFSM() *FSM {
	return &FSM{
		transitions: map[State][]State{
			StateIdle:         {StateListsLoading},
			StateListsLoading: {StateReady, StateIdle},
			StateReady:        {StateSubmitting, StateListsLoading},
			StateSubmitting:   {StateSuccess, StateFailed},
			StateFailed:       {StateReady, StateListsLoading},
			StateSuccess:      {StateIdle},
		},
	}
}

// CanTransition checks if transition is allowed.
func (f *FSM) CanTransition(from, to State) bool {
	allowed, ok := f.transitions[from]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}

// machine is the state holder embedded by each workflow.
type machine struct {
	fsm   *FSM
	mu    sync.Mutex
	state State
}

// State returns the current state.
func (m *machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// transition must be called with mu held.
func (m *machine) transition(to State) bool {
	if !m.fsm.CanTransition(m.state, to) {
		return false
	}
	m.state = to
	return true
}
