// Package qhsm implements a hierarchical state machine (HSM) engine built
// around the UML "Least Common Ancestor" transition semantics described by
// Miro Samek in Practical Statecharts in C/C++.
//
// A state is not a value but a function: a [HandlerFunc] bound to an owner
// via [StateHandler]. The engine never inspects a state's structure
// directly. Instead it drives the handler with reserved signals — Entry,
// Exit, Init, Inquire — and interprets the handler's return value as either
// "handled" or "bubble this signal up to my parent". [StateMachine] owns no
// tree; the hierarchy exists only implicitly, in how handlers answer
// Inquire.
//
// Callers build states as ordinary Go functions, wire them to a
// [StateMachine] with [StateMachine.Open], and drive the machine with
// [StateMachine.Dispatch]. See qhsm_samek_test.go for the canonical
// six-state example from Samek's book, reproduced signal-for-signal.
package qhsm
