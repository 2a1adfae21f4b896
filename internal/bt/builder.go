package bt

import "errors"

// CompositeNode is a user-extensible composite: the builder only needs
// Tick plus child appending.
type CompositeNode[C any] interface {
	Node[C]
	AddChild(Node[C])
}

// DecoratorNode is a user-extensible decorator; SetChild overwrites.
type DecoratorNode[C any] interface {
	Node[C]
	SetChild(Node[C])
}

var (
	ErrUnclosedBuilder = errors.New("bt: build with unclosed composite or decorator")
	ErrUnbalancedEnd   = errors.New("bt: end without matching composite or decorator")
	ErrEmptyDecorator  = errors.New("bt: decorator closed without a child")
	ErrUnsetRoot       = errors.New("bt: build without a root node")
)

type frame[C any] struct {
	composite CompositeNode[C]
	decorator DecoratorNode[C]
	childSet  bool
}

// Builder assembles a tree through method chaining. Composite and
// decorator calls open a scope closed by End; Leaf and Tree attach into
// the innermost open scope (a decorator scope keeps only the last
// child). Misuse is reported by Build, so call sites stay chainable.
type Builder[C any] struct {
	root  Node[C]
	stack []*frame[C]
	err   error
}

func NewBuilder[C any]() *Builder[C] {
	return &Builder[C]{}
}

func (b *Builder[C]) fail(err error) *Builder[C] {
	if b.err == nil {
		b.err = err
	}
	return b
}

// attach places a finished node into the innermost open scope, or at
// the root when no scope is open (a second root attach overwrites).
func (b *Builder[C]) attach(n Node[C]) {
	if len(b.stack) == 0 {
		b.root = n
		return
	}
	top := b.stack[len(b.stack)-1]
	if top.decorator != nil {
		top.decorator.SetChild(n)
		top.childSet = true
		return
	}
	top.composite.AddChild(n)
}

func (b *Builder[C]) Leaf(fn func(C) Status) *Builder[C] {
	b.attach(NewLeaf(fn))
	return b
}

// Tree nests an already-built tree as a subtree. A subtree can never be
// its own ancestor this way: it has to exist before it can be nested.
func (b *Builder[C]) Tree(t *Tree[C]) *Builder[C] {
	b.attach(t)
	return b
}

func (b *Builder[C]) Sequence() *Builder[C] {
	return b.Composite(NewSequence[C]())
}

func (b *Builder[C]) Selector() *Builder[C] {
	return b.Composite(NewSelector[C]())
}

// Composite opens a scope for any user-supplied composite node.
func (b *Builder[C]) Composite(n CompositeNode[C]) *Builder[C] {
	b.attach(n)
	b.stack = append(b.stack, &frame[C]{composite: n})
	return b
}

func (b *Builder[C]) Inverter() *Builder[C] {
	return b.Decorator(NewInverter[C]())
}

func (b *Builder[C]) Succeeder() *Builder[C] {
	return b.Decorator(NewSucceeder[C]())
}

func (b *Builder[C]) Repeater(n int) *Builder[C] {
	return b.Decorator(NewRepeater[C](n))
}

// Decorator opens a scope for any user-supplied decorator node.
func (b *Builder[C]) Decorator(n DecoratorNode[C]) *Builder[C] {
	b.attach(n)
	b.stack = append(b.stack, &frame[C]{decorator: n})
	return b
}

// End closes the innermost scope and returns to the enclosing one.
func (b *Builder[C]) End() *Builder[C] {
	if len(b.stack) == 0 {
		return b.fail(ErrUnbalancedEnd)
	}
	top := b.stack[len(b.stack)-1]
	b.stack = b.stack[:len(b.stack)-1]
	if top.decorator != nil && !top.childSet {
		return b.fail(ErrEmptyDecorator)
	}
	return b
}

func (b *Builder[C]) Build() (*Tree[C], error) {
	if b.err != nil {
		return nil, b.err
	}
	if len(b.stack) != 0 {
		return nil, ErrUnclosedBuilder
	}
	if b.root == nil {
		return nil, ErrUnsetRoot
	}
	return NewTree(b.root), nil
}
