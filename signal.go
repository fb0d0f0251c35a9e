package qhsm

import "strconv"

// Signal identifies the event delivered to a state handler. Applications
// define their own signals starting at UserStart; the engine reserves the
// handful of low values below for internal pseudo-events.
type Signal int

const (
	// Inquire asks a state for its parent, with no side effect. Handlers
	// must never act on Inquire beyond returning their parent.
	Inquire Signal = iota - 5
	// Init asks a state to nominate its default child via
	// [StateMachine.Initializer].
	Init
	// Entry tells a state it is being entered.
	Entry
	// Exit tells a state it is being exited.
	Exit
	// Dummy is reserved for places where a signal value is structurally
	// required but semantically unused. The engine itself never sends it.
	Dummy
)

// UserStart is the first signal value applications may use for their own
// events. Values below it are reserved for the engine.
const UserStart Signal = 3

func (s Signal) String() string {
	switch s {
	case Inquire:
		return "INQUIRE"
	case Init:
		return "INIT"
	case Entry:
		return "ENTRY"
	case Exit:
		return "EXIT"
	case Dummy:
		return "DUMMY"
	default:
		return "SIG" + strconv.Itoa(int(s))
	}
}
