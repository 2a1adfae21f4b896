package bt

import (
	"errors"
	"testing"
)

func TestBuilder_SelectorScenario(t *testing.T) {
	tree, err := NewBuilder[struct{}]().
		Selector().
		Sequence().
		Leaf(func(struct{}) Status { return Failure }).
		Leaf(func(struct{}) Status { return Success }).
		End().
		Leaf(func(struct{}) Status { return Success }).
		End().
		Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	// The inner sequence fails on its first leaf; the selector's second
	// child succeeds.
	if got := tree.Tick(struct{}{}); got != Success {
		t.Fatalf("first tick: got %v want %v", got, Success)
	}
	if got := tree.Tick(struct{}{}); got != Success {
		t.Fatalf("re-tick: got %v want %v", got, Success)
	}
}

func TestBuilder_RepeaterScenario(t *testing.T) {
	tree, err := NewBuilder[struct{}]().
		Repeater(3).
		Leaf(func(struct{}) Status { return Failure }).
		End().
		Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	want := []Status{Running, Running, Failure}
	for i, w := range want {
		if got := tree.Tick(struct{}{}); got != w {
			t.Fatalf("tick %d: got %v want %v", i, got, w)
		}
	}
}

func TestBuilder_DecoratorChildOverwrites(t *testing.T) {
	tree, err := NewBuilder[struct{}]().
		Inverter().
		Leaf(func(struct{}) Status { return Success }).
		Leaf(func(struct{}) Status { return Failure }).
		End().
		Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	// Only the last child sticks: Failure inverted is Success.
	if got := tree.Tick(struct{}{}); got != Success {
		t.Fatalf("got %v want %v", got, Success)
	}
}

func TestBuilder_RootLeaf(t *testing.T) {
	tree, err := NewBuilder[struct{}]().
		Leaf(func(struct{}) Status { return Success }).
		Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if got := tree.Tick(struct{}{}); got != Success {
		t.Fatalf("got %v want %v", got, Success)
	}
}

func TestBuilder_NestedTree(t *testing.T) {
	sub, err := NewBuilder[struct{}]().
		Leaf(func(struct{}) Status { return Failure }).
		Build()
	if err != nil {
		t.Fatalf("build sub: %v", err)
	}

	tree, err := NewBuilder[struct{}]().
		Selector().
		Tree(sub).
		Leaf(func(struct{}) Status { return Success }).
		End().
		Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if got := tree.Tick(struct{}{}); got != Success {
		t.Fatalf("got %v want %v", got, Success)
	}
}

func TestBuilder_Errors(t *testing.T) {
	t.Run("unclosed composite", func(t *testing.T) {
		_, err := NewBuilder[struct{}]().Sequence().Build()
		if !errors.Is(err, ErrUnclosedBuilder) {
			t.Fatalf("got %v want %v", err, ErrUnclosedBuilder)
		}
	})
	t.Run("unbalanced end", func(t *testing.T) {
		_, err := NewBuilder[struct{}]().End().Build()
		if !errors.Is(err, ErrUnbalancedEnd) {
			t.Fatalf("got %v want %v", err, ErrUnbalancedEnd)
		}
	})
	t.Run("empty decorator", func(t *testing.T) {
		_, err := NewBuilder[struct{}]().Inverter().End().Build()
		if !errors.Is(err, ErrEmptyDecorator) {
			t.Fatalf("got %v want %v", err, ErrEmptyDecorator)
		}
	})
	t.Run("no root", func(t *testing.T) {
		_, err := NewBuilder[struct{}]().Build()
		if !errors.Is(err, ErrUnsetRoot) {
			t.Fatalf("got %v want %v", err, ErrUnsetRoot)
		}
	})
}

// anyOf is a user-defined composite: succeeds if any child succeeds on
// this tick, with no resume state.
type anyOf struct {
	Composite[struct{}]
}

func (a *anyOf) Tick(ctx struct{}) Status {
	for _, c := range a.children {
		if c.Tick(ctx) == Success {
			return Success
		}
	}
	return Failure
}

func TestBuilder_UserComposite(t *testing.T) {
	tree, err := NewBuilder[struct{}]().
		Composite(&anyOf{}).
		Leaf(func(struct{}) Status { return Failure }).
		Leaf(func(struct{}) Status { return Success }).
		End().
		Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if got := tree.Tick(struct{}{}); got != Success {
		t.Fatalf("got %v want %v", got, Success)
	}
}
