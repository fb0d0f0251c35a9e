// Command qhsmdemo is a terminal driver for the canonical six-state
// hierarchy (S0/S1/S11/S2/S21/S211), built with the builder package. It is
// an external collaborator exercising the engine, not part of it: type a
// letter a-h to fire the matching signal, Ctrl-C to quit.
package main

import (
	"bufio"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/quantum-hsm/qhsm"
	"github.com/quantum-hsm/qhsm/builder"
)

const (
	sigA = qhsm.UserStart + iota
	sigB
	sigC
	sigD
	sigE
	sigF
	sigG
	sigH
	sigQuit
)

// StateHandler embeds a function value, so it cannot be a map key; names
// are kept as a small linear-scanned roster instead, the same approach
// diagram.Builder uses for the same reason.
type namedState struct {
	name string
	h    qhsm.StateHandler[*tester]
}

type tester struct {
	sm                         *qhsm.StateMachine[*tester]
	s0, s1, s11, s2, s21, s211 qhsm.StateHandler[*tester]
	names                      []namedState
	foo                        bool
}

func (t *tester) named(name string, h qhsm.StateHandler[*tester]) qhsm.StateHandler[*tester] {
	t.names = append(t.names, namedState{name: name, h: h})
	return h
}

func (t *tester) currentName() string {
	cur := t.sm.Current()
	for _, n := range t.names {
		if n.h.Equals(cur) {
			return n.name
		}
	}
	return "?"
}

func newTester() *tester {
	t := &tester{sm: &qhsm.StateMachine[*tester]{}}

	t.s0 = t.named("S0", builder.NewState[*tester](t.sm, "S0", nil).
		Entry("S0-ENTRY", func(o *tester) { fmt.Print("S0-ENTRY ") }).
		Exit("S0-EXIT", func(o *tester) { fmt.Print("S0-EXIT ") }).
		Initial(func() qhsm.StateHandler[*tester] { return t.s1 }).
		On(sigE, "S0-E", func() qhsm.StateHandler[*tester] { return t.s211 }, func(o *tester) { fmt.Print("S0-E ") }).
		On(sigQuit, "S0-X", nil, func(o *tester) { fmt.Println("S0-X"); os.Exit(0) }).
		Build(t))

	t.s1 = t.named("S1", builder.NewState[*tester](t.sm, "S1", func() qhsm.StateHandler[*tester] { return t.s0 }).
		Entry("S1-ENTRY", func(o *tester) { fmt.Print("S1-ENTRY ") }).
		Exit("S1-EXIT", func(o *tester) { fmt.Print("S1-EXIT ") }).
		Initial(func() qhsm.StateHandler[*tester] { return t.s11 }).
		On(sigA, "S1-A", func() qhsm.StateHandler[*tester] { return t.s1 }, func(o *tester) { fmt.Print("S1-A ") }).
		On(sigB, "S1-B", func() qhsm.StateHandler[*tester] { return t.s11 }, func(o *tester) { fmt.Print("S1-B ") }).
		On(sigC, "S1-C", func() qhsm.StateHandler[*tester] { return t.s2 }, func(o *tester) { fmt.Print("S1-C ") }).
		On(sigD, "S1-D", func() qhsm.StateHandler[*tester] { return t.s0 }, func(o *tester) { fmt.Print("S1-D ") }).
		On(sigF, "S1-F", func() qhsm.StateHandler[*tester] { return t.s211 }, func(o *tester) { fmt.Print("S1-F ") }).
		Build(t))

	t.s11 = t.named("S11", builder.NewState[*tester](t.sm, "S11", func() qhsm.StateHandler[*tester] { return t.s1 }).
		Entry("S11-ENTRY", func(o *tester) { fmt.Print("S11-ENTRY ") }).
		Exit("S11-EXIT", func(o *tester) { fmt.Print("S11-EXIT ") }).
		On(sigG, "S11-G", func() qhsm.StateHandler[*tester] { return t.s211 }, func(o *tester) { fmt.Print("S11-G ") }).
		On(sigH, "S11-H", nil, func(o *tester) {
			if o.foo {
				fmt.Print("S11-H ")
				o.foo = false
			}
		}).
		Build(t))

	t.s2 = t.named("S2", builder.NewState[*tester](t.sm, "S2", func() qhsm.StateHandler[*tester] { return t.s0 }).
		Entry("S2-ENTRY", func(o *tester) { fmt.Print("S2-ENTRY ") }).
		Exit("S2-EXIT", func(o *tester) { fmt.Print("S2-EXIT ") }).
		Initial(func() qhsm.StateHandler[*tester] { return t.s21 }).
		On(sigC, "S2-C", func() qhsm.StateHandler[*tester] { return t.s1 }, func(o *tester) { fmt.Print("S2-C ") }).
		On(sigF, "S2-F", func() qhsm.StateHandler[*tester] { return t.s11 }, func(o *tester) { fmt.Print("S2-F ") }).
		Build(t))

	t.s21 = t.named("S21", builder.NewState[*tester](t.sm, "S21", func() qhsm.StateHandler[*tester] { return t.s2 }).
		Entry("S21-ENTRY", func(o *tester) { fmt.Print("S21-ENTRY ") }).
		Exit("S21-EXIT", func(o *tester) { fmt.Print("S21-EXIT ") }).
		Initial(func() qhsm.StateHandler[*tester] { return t.s211 }).
		On(sigB, "S21-B", func() qhsm.StateHandler[*tester] { return t.s211 }, func(o *tester) { fmt.Print("S21-B ") }).
		On(sigH, "S21-H", nil, func(o *tester) {
			if !o.foo {
				fmt.Print("S21-H ")
				o.foo = true
			}
		}).
		Build(t))

	t.s211 = t.named("S211", builder.NewState[*tester](t.sm, "S211", func() qhsm.StateHandler[*tester] { return t.s21 }).
		Entry("S211-ENTRY", func(o *tester) { fmt.Print("S211-ENTRY ") }).
		Exit("S211-EXIT", func(o *tester) { fmt.Print("S211-EXIT ") }).
		On(sigD, "S211-D", func() qhsm.StateHandler[*tester] { return t.s21 }, func(o *tester) { fmt.Print("S211-D ") }).
		On(sigG, "S211-G", func() qhsm.StateHandler[*tester] { return t.s0 }, func(o *tester) { fmt.Print("S211-G ") }).
		Build(t))

	return t
}

func main() {
	t := newTester()
	t.sm.Open(t, t.s0)
	fmt.Println()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT)
	go func() {
		<-quit
		t.sm.Dispatch(sigQuit)
	}()

	in := bufio.NewReader(os.Stdin)
	for {
		fmt.Printf("\n%s<-signal:", t.currentName())
		c, _, err := in.ReadRune()
		if err != nil {
			return
		}
		if c == '\n' {
			continue
		}
		in.ReadRune() // discard trailing newline, matching the original two-getc read

		if c < 'a' || c > 'z' {
			continue
		}
		t.sm.Dispatch(qhsm.UserStart + qhsm.Signal(c-'a'))
	}
}
