// Package machine is a small generic state machine with declared transitions.
package machine

import (
	"errors"
	"fmt"
	"slices"
	"sync"
)

type State interface {
	~string
}

// Allowable maps where a from state is allowed to transition to
type Allowable[S State] struct {
	from S
	to   []S
}

// StateMachine tracks the current state of one subject
type StateMachine[S State] struct {
	mu       sync.Mutex
	current  S
	toStates []Allowable[S]
}

var (
	ErrInvalidTransition = errors.New("invalid state transition")
)

// TransitionBuilder helps in creating a from-to relationship for state transitions
type TransitionBuilder[S State] struct {
	transition Allowable[S]
}

func New[S State](currentState S, transitions ...Allowable[S]) *StateMachine[S] {
	return &StateMachine[S]{current: currentState, toStates: transitions}
}

// From initializes a transition from a specific state
func From[S State](from S) *TransitionBuilder[S] {
	return &TransitionBuilder[S]{transition: Allowable[S]{from: from}}
}

// To sets the possible destination states and returns the configured transition
func (tb *TransitionBuilder[S]) To(to ...S) Allowable[S] {
	tb.transition.to = to
	return tb.transition
}

// Current returns the state the machine is in
func (m *StateMachine[S]) Current() S {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// Can reports whether the machine may move to s
func (m *StateMachine[S]) Can(s S) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.allowed(s)
}

// ToState moves the machine to s and returns the previous state.
// The machine is left unchanged when the transition is not declared.
func (m *StateMachine[S]) ToState(s S) (S, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	prev := m.current
	if !m.allowed(s) {
		return prev, fmt.Errorf("%w: %s to %s", ErrInvalidTransition, prev, s)
	}

	m.current = s
	return prev, nil
}

func (m *StateMachine[S]) allowed(s S) bool {
	for _, transition := range m.toStates {
		// only transitions out of the current state apply
		if transition.from != m.current {
			continue
		}
		if slices.Contains(transition.to, s) {
			return true
		}
	}
	return false
}
