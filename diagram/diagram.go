// Package diagram renders a qhsm state hierarchy as PlantUML, for a caller
// who wants a picture of a machine instead of reading the switch statements.
//
// The engine keeps no parent pointers of its own — a state only knows its
// parent by answering Inquire — so the builder discovers nesting by asking
// every named state that question and grouping by the answer. Entry/Exit
// are never invoked here: doing so would run the real handler side effects.
// Transition arrows are supplied explicitly by the caller instead, since a
// dispatch target otherwise only exists inside a handler's switch body.
package diagram

import (
	"fmt"
	"sort"
	"strings"

	"github.com/quantum-hsm/qhsm"
)

type named[O comparable] struct {
	name  string
	state qhsm.StateHandler[O]
}

type edge[O comparable] struct {
	from, to qhsm.StateHandler[O]
	signal   string
}

// Builder accumulates named states and labeled transitions before
// rendering a diagram with Build.
type Builder[O comparable] struct {
	states []named[O]
	edges  []edge[O]
	arrow  string
}

// NewBuilder returns an empty Builder. Arrow defaults to "-->".
func NewBuilder[O comparable]() *Builder[O] {
	return &Builder[O]{arrow: "-->"}
}

// Arrow overrides the PlantUML arrow style used for every transition.
func (b *Builder[O]) Arrow(style string) *Builder[O] {
	b.arrow = style
	return b
}

// State registers s under name. Every state that should appear in the
// diagram, including the outermost one, must be registered.
func (b *Builder[O]) State(name string, s qhsm.StateHandler[O]) *Builder[O] {
	b.states = append(b.states, named[O]{name: name, state: s})
	return b
}

// Transition records an external transition to draw from -> to, labeled
// with signal. It has no effect on dispatch; it only feeds the diagram.
func (b *Builder[O]) Transition(signal string, from, to qhsm.StateHandler[O]) *Builder[O] {
	b.edges = append(b.edges, edge[O]{from: from, to: to, signal: signal})
	return b
}

func (b *Builder[O]) nameOf(s qhsm.StateHandler[O]) (string, bool) {
	for _, n := range b.states {
		if n.state.Equals(s) {
			return n.name, true
		}
	}
	return "", false
}

// parentName returns the registered name of s's Inquire-parent, or "" if s
// has no registered parent (it is a root of the diagram).
func (b *Builder[O]) parentName(s qhsm.StateHandler[O]) string {
	parent := s.Invoke(qhsm.Inquire)
	name, ok := b.nameOf(parent)
	if !ok {
		return ""
	}
	return name
}

// Build renders the registered states and transitions as a PlantUML
// @startuml document.
func (b *Builder[O]) Build() string {
	children := make(map[string][]string)
	var roots []string
	byName := make(map[string]named[O], len(b.states))
	for _, n := range b.states {
		byName[n.name] = n
	}
	for _, n := range b.states {
		parent := b.parentName(n.state)
		if parent == "" {
			roots = append(roots, n.name)
		} else {
			children[parent] = append(children[parent], n.name)
		}
	}
	sort.Strings(roots)
	for k := range children {
		sort.Strings(children[k])
	}

	var out strings.Builder
	out.WriteString("@startuml\n\n")

	var dump func(indent int, name string)
	dump = func(indent int, name string) {
		prefix := strings.Repeat("  ", indent)
		kids := children[name]
		if len(kids) == 0 {
			fmt.Fprintf(&out, "%sstate %s\n", prefix, name)
			return
		}
		fmt.Fprintf(&out, "%sstate %s {\n", prefix, name)
		for _, k := range kids {
			dump(indent+1, k)
		}
		fmt.Fprintf(&out, "%s}\n", prefix)
	}
	for _, r := range roots {
		dump(0, r)
	}

	out.WriteString("\n")
	for _, e := range b.edges {
		from, _ := b.nameOf(e.from)
		to, _ := b.nameOf(e.to)
		fmt.Fprintf(&out, "%s %s %s : %s\n", from, b.arrow, to, e.signal)
	}

	out.WriteString("\n@enduml\n")
	return out.String()
}
