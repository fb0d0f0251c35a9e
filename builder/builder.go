// Package builder provides a fluent way to assemble a qhsm.StateHandler
// from named entry/exit/init actions and a table of external transitions,
// instead of hand-writing the switch statement every handler otherwise
// needs. It deliberately has no notion of guards or history pseudostates:
// every transition it builds is unconditional, and is either external or,
// for a signal registered without a target, handled in place.
package builder

import "github.com/quantum-hsm/qhsm"

// Target resolves a transition's destination, or a state's parent, lazily —
// at the moment the built handler actually fires, not at Build time. This
// lets two StateBuilders reference each other regardless of which one is
// built first, the same way struct fields referencing each other do in a
// hand-written handler.
type Target[O comparable] func() qhsm.StateHandler[O]

type transitionSpec[O comparable] struct {
	name   string
	target Target[O]
	action func(O)
}

// StateBuilder assembles one StateHandler. The zero value is not usable;
// construct with NewState.
type StateBuilder[O comparable] struct {
	sm     *qhsm.StateMachine[O]
	name   string
	parent Target[O]

	entryName string
	entryFn   func(O)
	exitName  string
	exitFn    func(O)

	initial Target[O]
	on      map[qhsm.Signal]transitionSpec[O]
}

// NewState starts building a state named name. parent resolves the state
// this one bubbles unhandled signals to; pass nil for a top-level state
// with no parent.
func NewState[O comparable](sm *qhsm.StateMachine[O], name string, parent Target[O]) *StateBuilder[O] {
	return &StateBuilder[O]{sm: sm, name: name, parent: parent, on: make(map[qhsm.Signal]transitionSpec[O])}
}

// Entry sets the action run when this state is entered.
func (b *StateBuilder[O]) Entry(name string, fn func(O)) *StateBuilder[O] {
	b.entryName, b.entryFn = name, fn
	return b
}

// Exit sets the action run when this state is exited.
func (b *StateBuilder[O]) Exit(name string, fn func(O)) *StateBuilder[O] {
	b.exitName, b.exitFn = name, fn
	return b
}

// Initial nominates this state's default child, making it composite.
// Omit for a leaf state.
func (b *StateBuilder[O]) Initial(child Target[O]) *StateBuilder[O] {
	b.initial = child
	return b
}

// On registers an external transition for sig. target may be nil, in which
// case the signal is handled in place (action runs, no Transition call, no
// exit/entry cascade) — the same shape as S11's guarded evH handling in a
// hand-written switch. action may be nil if the transition needs no
// side effect beyond moving state.
func (b *StateBuilder[O]) On(sig qhsm.Signal, name string, target Target[O], action func(O)) *StateBuilder[O] {
	b.on[sig] = transitionSpec[O]{name: name, target: target, action: action}
	return b
}

// Build returns the finished handler bound to owner. The same
// StateBuilder must not be built more than once.
func (b *StateBuilder[O]) Build(owner O) qhsm.StateHandler[O] {
	return qhsm.NewStateHandler(owner, func(o O, sig qhsm.Signal) qhsm.StateHandler[O] {
		switch sig {
		case qhsm.Entry:
			if b.entryFn != nil {
				b.entryFn(o)
			}
			return b.sm.Handled()
		case qhsm.Exit:
			if b.exitFn != nil {
				b.exitFn(o)
			}
			return b.sm.Handled()
		case qhsm.Init:
			if b.initial == nil {
				return b.sm.TopState()
			}
			b.sm.Initializer(b.initial())
			return b.sm.Handled()
		}

		if spec, ok := b.on[sig]; ok {
			if spec.action != nil {
				spec.action(o)
			}
			if spec.target != nil {
				b.sm.Transition(spec.target())
			}
			return b.sm.Handled()
		}

		if b.parent == nil {
			return b.sm.TopState()
		}
		return b.parent()
	})
}
