package bt

// Decorator holds exactly one child. SetChild overwrites. A decorator
// whose child was never set ticks as Failure rather than panicking.
type Decorator[C any] struct {
	child Node[C]
}

func (d *Decorator[C]) SetChild(child Node[C]) { d.child = child }

func (d *Decorator[C]) tickChild(ctx C) Status {
	if d.child == nil {
		return Failure
	}
	return d.child.Tick(ctx)
}

// Inverter swaps Failure and Success; Running passes through.
type Inverter[C any] struct {
	Decorator[C]
}

func NewInverter[C any]() *Inverter[C] { return &Inverter[C]{} }

func (i *Inverter[C]) Tick(ctx C) Status {
	switch i.tickChild(ctx) {
	case Failure:
		return Success
	case Running:
		return Running
	default:
		return Failure
	}
}

// Succeeder always succeeds unless the child is still Running.
// Wrap in an Inverter for an always-Failure node.
type Succeeder[C any] struct {
	Decorator[C]
}

func NewSucceeder[C any]() *Succeeder[C] { return &Succeeder[C]{} }

func (s *Succeeder[C]) Tick(ctx C) Status {
	if s.tickChild(ctx) == Running {
		return Running
	}
	return Success
}

// Repeater retries a failing child up to n times, reporting Running in
// between. n == 0 retries forever. A Success from the child resets the
// counter and succeeds immediately.
type Repeater[C any] struct {
	Decorator[C]
	n       int
	counter int
}

func NewRepeater[C any](n int) *Repeater[C] { return &Repeater[C]{n: n} }

func (r *Repeater[C]) Tick(ctx C) Status {
	switch r.tickChild(ctx) {
	case Failure:
		r.counter++
		if r.n > 0 && r.counter >= r.n {
			r.counter = 0
			return Failure
		}
		return Running
	case Running:
		return Running
	default:
		r.counter = 0
		return Success
	}
}
