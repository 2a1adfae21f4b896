// Package bt is a generic behaviour-tree engine. A tree is ticked at a
// fixed cadence against a caller-supplied context value; every tick
// returns Failure, Running or Success. Composites keep a resume cursor
// between ticks so a long-running child is not restarted each frame.
package bt

// Status is the result of ticking a node.
type Status int

const (
	Failure Status = iota
	Running
	Success
)

func (s Status) String() string {
	switch s {
	case Failure:
		return "FAILURE"
	case Running:
		return "RUNNING"
	case Success:
		return "SUCCESS"
	}
	return "UNKNOWN"
}

// Node is anything evaluable against a context of type C.
type Node[C any] interface {
	Tick(ctx C) Status
}

// Leaf wraps a plain function as a node.
type Leaf[C any] struct {
	fn func(C) Status
}

func NewLeaf[C any](fn func(C) Status) *Leaf[C] {
	return &Leaf[C]{fn: fn}
}

// NewLeaf1 binds one extra argument at build time.
func NewLeaf1[C, A any](fn func(C, A) Status, arg A) *Leaf[C] {
	return &Leaf[C]{fn: func(ctx C) Status { return fn(ctx, arg) }}
}

// NewLeaf2 binds two extra arguments at build time.
func NewLeaf2[C, A, B any](fn func(C, A, B) Status, a A, b B) *Leaf[C] {
	return &Leaf[C]{fn: func(ctx C) Status { return fn(ctx, a, b) }}
}

func (l *Leaf[C]) Tick(ctx C) Status {
	if l.fn == nil {
		return Failure
	}
	return l.fn(ctx)
}

// Composite holds an ordered child list and the resume cursor into it.
// The cursor is an index so that append-only mutation keeps it valid;
// AddChild resets it to the first child.
type Composite[C any] struct {
	children []Node[C]
	cursor   int
}

func (c *Composite[C]) AddChild(child Node[C]) {
	c.children = append(c.children, child)
	c.cursor = 0
}

func (c *Composite[C]) Len() int { return len(c.children) }

// Sequence ticks children in order until one fails. Logical AND.
// A Running child short-circuits the tick; the next tick re-enters it.
type Sequence[C any] struct {
	Composite[C]
}

func NewSequence[C any]() *Sequence[C] { return &Sequence[C]{} }

func (s *Sequence[C]) Tick(ctx C) Status {
	for s.cursor < len(s.children) {
		switch s.children[s.cursor].Tick(ctx) {
		case Failure:
			s.cursor = 0
			return Failure
		case Running:
			return Running
		case Success:
			s.cursor++
		}
	}
	// All children succeeded.
	s.cursor = 0
	return Success
}

// Selector ticks children in order until one succeeds. Logical OR.
type Selector[C any] struct {
	Composite[C]
}

func NewSelector[C any]() *Selector[C] { return &Selector[C]{} }

func (s *Selector[C]) Tick(ctx C) Status {
	for s.cursor < len(s.children) {
		switch s.children[s.cursor].Tick(ctx) {
		case Failure:
			s.cursor++
		case Running:
			return Running
		case Success:
			s.cursor = 0
			return Success
		}
	}
	// No child succeeded.
	s.cursor = 0
	return Failure
}

// Tree owns a single root and is itself a Node, so trees nest as subtrees.
type Tree[C any] struct {
	root Node[C]
}

func NewTree[C any](root Node[C]) *Tree[C] { return &Tree[C]{root: root} }

func (t *Tree[C]) SetRoot(root Node[C]) { t.root = root }

// Tick forwards to the root. An unset root is not an error: it fails.
func (t *Tree[C]) Tick(ctx C) Status {
	if t == nil || t.root == nil {
		return Failure
	}
	return t.root.Tick(ctx)
}
