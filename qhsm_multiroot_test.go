package qhsm_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantum-hsm/qhsm"
)

// multiRoot hosts two independent top-level subtrees, rootA>childA and
// rootB>childB, with no common ancestor below TOP. It exercises the
// boundary case where a transition's least common ancestor is TOP itself,
// rather than any real state.
type multiRoot struct {
	sm                           *qhsm.StateMachine[*multiRoot]
	rootA, childA, rootB, childB qhsm.StateHandler[*multiRoot]
	buf                          bytes.Buffer
}

const evCross qhsm.Signal = qhsm.UserStart

func (m *multiRoot) rootAHandler(sig qhsm.Signal) qhsm.StateHandler[*multiRoot] {
	switch sig {
	case qhsm.Init:
		m.sm.Initializer(m.childA)
		return m.sm.Handled()
	case qhsm.Entry:
		m.buf.WriteString("ROOTA-ENTRY ")
		return m.sm.Handled()
	case qhsm.Exit:
		m.buf.WriteString("ROOTA-EXIT ")
		return m.sm.Handled()
	}
	return m.sm.TopState()
}

func (m *multiRoot) childAHandler(sig qhsm.Signal) qhsm.StateHandler[*multiRoot] {
	switch sig {
	case qhsm.Entry:
		m.buf.WriteString("CHILDA-ENTRY ")
		return m.sm.Handled()
	case qhsm.Exit:
		m.buf.WriteString("CHILDA-EXIT ")
		return m.sm.Handled()
	case evCross:
		m.buf.WriteString("CHILDA-CROSS ")
		m.sm.Transition(m.childB)
		return m.sm.Handled()
	}
	return m.rootA
}

func (m *multiRoot) rootBHandler(sig qhsm.Signal) qhsm.StateHandler[*multiRoot] {
	switch sig {
	case qhsm.Init:
		m.sm.Initializer(m.childB)
		return m.sm.Handled()
	case qhsm.Entry:
		m.buf.WriteString("ROOTB-ENTRY ")
		return m.sm.Handled()
	case qhsm.Exit:
		m.buf.WriteString("ROOTB-EXIT ")
		return m.sm.Handled()
	}
	return m.sm.TopState()
}

func (m *multiRoot) childBHandler(sig qhsm.Signal) qhsm.StateHandler[*multiRoot] {
	switch sig {
	case qhsm.Entry:
		m.buf.WriteString("CHILDB-ENTRY ")
		return m.sm.Handled()
	case qhsm.Exit:
		m.buf.WriteString("CHILDB-EXIT ")
		return m.sm.Handled()
	}
	return m.rootB
}

func newMultiRoot() *multiRoot {
	m := &multiRoot{sm: &qhsm.StateMachine[*multiRoot]{}}
	m.rootA = qhsm.NewStateHandler(m, (*multiRoot).rootAHandler)
	m.childA = qhsm.NewStateHandler(m, (*multiRoot).childAHandler)
	m.rootB = qhsm.NewStateHandler(m, (*multiRoot).rootBHandler)
	m.childB = qhsm.NewStateHandler(m, (*multiRoot).childBHandler)
	return m
}

func TestCrossSubtreeTransitionUsesTopAsLeastCommonAncestor(t *testing.T) {
	m := newMultiRoot()
	m.sm.Open(m, m.rootA)
	require.True(t, m.sm.Current().Equals(m.childA))
	m.buf.Reset()

	ok := m.sm.Dispatch(evCross)
	require.True(t, ok)
	// LCA is TOP: every one of childA's ancestors up to (not including)
	// TOP exits, then every one of childB's ancestors from (not including)
	// TOP down to childB enters.
	assert.Equal(t, "CHILDA-CROSS CHILDA-EXIT ROOTA-EXIT ROOTB-ENTRY CHILDB-ENTRY ", m.buf.String())
	assert.True(t, m.sm.Current().Equals(m.childB))
}
