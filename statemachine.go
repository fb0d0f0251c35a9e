package qhsm

// Tracer receives one call per reserved-signal invocation the engine makes
// on behalf of a transition (Entry, Exit, Init). It never sees user
// signals — those are the caller's own business. The zero StateMachine
// uses a no-op Tracer; set one with WithTracer.
type Tracer func(signal Signal)

func noopTracer(Signal) {}

// Option configures a StateMachine at Open time.
type Option[O comparable] func(*StateMachine[O])

// WithMaxDepth overrides DefaultMaxDepth for one machine's path buffer.
// Hierarchies deeper than this bound cause Dispatch to panic; size it to
// the deepest hierarchy the machine will ever host.
func WithMaxDepth[O comparable](maxDepth int) Option[O] {
	return func(sm *StateMachine[O]) { sm.maxDepth = maxDepth }
}

// WithTracer installs a Tracer for one machine.
func WithTracer[O comparable](t Tracer) Option[O] {
	return func(sm *StateMachine[O]) { sm.tracer = t }
}

// StateMachine drives one hierarchy of [StateHandler] values for a single
// owner. The zero value is ready for [StateMachine.Open]; a StateMachine
// must not be copied after Open.
type StateMachine[O comparable] struct {
	owner O

	current StateHandler[O] // deepest active state
	pitcher StateHandler[O] // ancestor of current that handled the triggering signal
	target  StateHandler[O] // state requested via Transition, or top for an internal transition

	top     StateHandler[O]
	handled StateHandler[O]

	path     *pathBuffer[O]
	maxDepth int
	tracer   Tracer
}

// topSentinel and handledSentinel back the Top/Handled sentinels. They are
// identity markers only — the engine never calls them through Invoke, so a
// handler that somehow did receive one of these as its owner's bound
// function has a broken state graph.
func topSentinel[O comparable](O, Signal) StateHandler[O] {
	panic("qhsm: TOP sentinel handler invoked — a state returned TOP as if it were a real state")
}

func handledSentinel[O comparable](O, Signal) StateHandler[O] {
	panic("qhsm: HANDLED sentinel handler invoked — a state returned HANDLED as if it were a real state")
}

// Open binds owner, enters initial, and walks any chain of default
// sub-state selections, leaving current at a leaf (invariant I1).
func (sm *StateMachine[O]) Open(owner O, initial StateHandler[O], opts ...Option[O]) {
	sm.owner = owner
	sm.maxDepth = DefaultMaxDepth
	sm.tracer = noopTracer
	for _, opt := range opts {
		opt(sm)
	}
	sm.path = newPathBuffer[O](sm.maxDepth)
	sm.top = NewStateHandler(owner, topSentinel[O])
	sm.handled = NewStateHandler(owner, handledSentinel[O])

	sm.pitcher = sm.top
	sm.current = sm.handled // non-matching placeholder until initChain assigns it
	sm.target = initial

	sm.tracer(Entry)
	initial.Invoke(Entry)
	sm.initChain(initial)
}

// Current returns the currently active leaf state.
func (sm *StateMachine[O]) Current() StateHandler[O] {
	return sm.current
}

// TopState is the sentinel a state handler returns when it does not
// recognize a signal and has no parent.
func (sm *StateMachine[O]) TopState() StateHandler[O] {
	return sm.top
}

// Handled is the sentinel a state handler returns when it consumed a
// signal — including Entry, Exit and Init — and bubbling should stop.
func (sm *StateMachine[O]) Handled() StateHandler[O] {
	return sm.handled
}

// Initializer nominates s as the immediate default child of the state
// currently receiving an Init signal. Valid only when called from within a
// handler's response to Init.
func (sm *StateMachine[O]) Initializer(s StateHandler[O]) {
	sm.current = s
}

// Transition requests a transition to s. Valid only when called from
// within a handler's response to a user signal. If called more than once
// while handling a single signal, the last call wins — the engine does not
// guard against repeated calls, matching the reference implementation.
func (sm *StateMachine[O]) Transition(s StateHandler[O]) {
	sm.target = s
}

// IsInState reports the relationship of s to the currently active state:
// 2 if s is current, 1 if s is a proper ancestor of current, 0 otherwise.
// TOP is never reported as an ancestor even though the ancestor walk
// terminates there.
func (sm *StateMachine[O]) IsInState(s StateHandler[O]) int {
	if sm.current.Equals(s) {
		return 2
	}
	for anc := sm.current.Invoke(Inquire); !anc.Equals(sm.top); anc = anc.Invoke(Inquire) {
		if anc.Equals(s) {
			return 1
		}
	}
	return 0
}

// initChain assigns current := s and then repeatedly invokes Init on
// current: a handled Init is expected to have called Initializer, moving
// current to the nominated child, which is then entered before Init is
// tried again. The loop stops the first time Init is not handled.
func (sm *StateMachine[O]) initChain(s StateHandler[O]) {
	sm.current = s
	for {
		sm.tracer(Init)
		result := sm.current.Invoke(Init)
		if !result.Equals(sm.handled) {
			return
		}
		sm.tracer(Entry)
		sm.current.Invoke(Entry)
	}
}

// replayEntries pops sm.path until empty, invoking Entry on each popped
// state. Because the path was built outermost-last (target first, then
// successive parents), popping replays entries outermost-first.
func (sm *StateMachine[O]) replayEntries() {
	for {
		s, ok := sm.path.pop()
		if !ok {
			return
		}
		sm.tracer(Entry)
		s.Invoke(Entry)
	}
}

// exitOne invokes Exit on s and returns its parent: Inquire if s handled
// the Exit, or the bubbled-up value itself if it did not (meaning s had no
// Exit action and deferred to its parent per I3).
func (sm *StateMachine[O]) exitOne(s StateHandler[O]) StateHandler[O] {
	sm.tracer(Exit)
	next := s.Invoke(Exit)
	if next.Equals(sm.handled) {
		return s.Invoke(Inquire)
	}
	return next
}

// Dispatch delivers signal to the machine. It returns false if no state
// from current up to the top handled it, in which case the machine is
// unchanged. Otherwise it runs whatever exit/entry/init actions the
// requested transition (or lack thereof, for an internal transition)
// implies, and returns true.
func (sm *StateMachine[O]) Dispatch(signal Signal) bool {
	// Phase 1: find the pitcher — the ancestor of current that handles signal.
	sm.target = sm.top
	sm.pitcher = sm.current
	for {
		if sm.pitcher.Equals(sm.top) {
			return false
		}
		next := sm.pitcher.Invoke(signal)
		if next.Equals(sm.handled) {
			break
		}
		sm.pitcher = next
	}

	// Phase 2: no Transition call during handling means an internal
	// transition — no exit, entry or init fires.
	if sm.target.Equals(sm.top) {
		return true
	}

	// Exit-cascade from current up to (but not including) the pitcher.
	for s := sm.current; !s.Equals(sm.pitcher); {
		s = sm.exitOne(s)
	}

	tp := sm.target.Invoke(Inquire)
	pp := sm.pitcher.Invoke(Inquire)

	switch {
	case sm.pitcher.Equals(sm.target): // (a) transition to self
		sm.exitOne(sm.pitcher)
		sm.tracer(Entry)
		sm.target.Invoke(Entry)
		sm.initChain(sm.target)
		return true

	case sm.pitcher.Equals(tp): // (b) pitcher is target's parent
		sm.tracer(Entry)
		sm.target.Invoke(Entry)
		sm.initChain(sm.target)
		return true

	case pp.Equals(tp): // (c) pitcher and target are siblings
		sm.exitOne(sm.pitcher)
		sm.tracer(Entry)
		sm.target.Invoke(Entry)
		sm.initChain(sm.target)
		return true

	case pp.Equals(sm.target): // (d) pitcher is a child of target
		sm.exitOne(sm.pitcher)
		sm.initChain(sm.target)
		return true
	}

	// (e)-(g): no shallow relation matched. Record target's proper-ancestor
	// chain (outward from target, through TOP if the pitcher isn't found
	// first) and search it for the pitcher or one of the pitcher's
	// ancestors. Including TOP as the outermost element means a
	// transition between two states in separate top-level subtrees always
	// finds a match — TOP is itself a legal least common ancestor.
	path := sm.path
	path.init()
	cur := sm.target
	path.push(cur)
	for !cur.Equals(sm.pitcher) && !cur.Equals(sm.top) {
		parent := cur.Invoke(Inquire)
		path.push(parent)
		cur = parent
	}

	if cur.Equals(sm.pitcher) { // (e) target lies strictly inside pitcher
		n := path.contains(sm.pitcher)
		path.dropFirstN(n)
		sm.replayEntries()
		sm.initChain(sm.target)
		return true
	}

	if n := path.contains(pp); n > 0 { // (f) pitcher's parent is on the target chain
		sm.exitOne(sm.pitcher)
		path.dropFirstN(n)
		sm.replayEntries()
		sm.initChain(sm.target)
		return true
	}

	// (g) general case: walk the pitcher's ancestors, exiting each one that
	// is not on the target chain, until one is found that is. Because the
	// target chain recorded above always terminates at TOP, this always
	// finds a match eventually — even when pitcher and target live in
	// separate top-level subtrees, the LCA is just TOP, and the result is
	// an exit of every one of the pitcher's ancestors followed by an entry
	// of every one of the target's. The step bound only guards against a
	// handler that never bubbles to a real ancestor or to TOP at all.
	sm.exitOne(sm.pitcher)
	anc := pp
	for steps := 0; ; steps++ {
		if n := path.contains(anc); n > 0 {
			path.dropFirstN(n)
			break
		}
		if steps >= sm.maxDepth {
			panic("qhsm: impossible transition — pitcher's ancestor chain never reached a state on target's chain")
		}
		anc = sm.exitOne(anc)
	}
	sm.replayEntries()
	sm.initChain(sm.target)
	return true
}
