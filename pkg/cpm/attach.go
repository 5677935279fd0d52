package cpm

import "fmt"

// Attach validates c and registers it by its declared capability, wiring
// the lifecycle hooks it implements. Initializers run immediately so
// constraints attached after seeding start from the current grid.
func (e *Engine) Attach(c Constraint) error {
	if c == nil {
		return fmt.Errorf("%w: nil constraint", ErrCapability)
	}
	if v, ok := c.(Validator); ok {
		if err := v.Validate(e); err != nil {
			return fmt.Errorf("attach %s: %w", c.Name(), err)
		}
	}
	switch c.Capability() {
	case Soft:
		s, ok := c.(SoftConstraint)
		if !ok {
			return fmt.Errorf("%w: %s declares soft but has no DeltaH", ErrCapability, c.Name())
		}
		e.soft = append(e.soft, s)
	case Hard:
		h, ok := c.(HardConstraint)
		if !ok {
			return fmt.Errorf("%w: %s declares hard but has no Fulfilled", ErrCapability, c.Name())
		}
		e.hard = append(e.hard, h)
	default:
		return fmt.Errorf("%w: %s declares %s", ErrCapability, c.Name(), c.Capability())
	}
	if init, ok := c.(Initializer); ok {
		init.Init(e)
	}
	if l, ok := c.(PixelListener); ok {
		e.onPixel = append(e.onPixel, l)
	}
	if l, ok := c.(StepListener); ok {
		e.onStep = append(e.onStep, l)
	}
	e.constraints = append(e.constraints, c)
	return nil
}

// Constraint returns the n-th attached constraint named name.
func (e *Engine) Constraint(name string, n int) (Constraint, bool) {
	for _, c := range e.constraints {
		if c.Name() != name {
			continue
		}
		if n == 0 {
			return c, true
		}
		n--
	}
	return nil, false
}

// Constraints returns the attached constraints in attach order.
func (e *Engine) Constraints() []Constraint {
	return append([]Constraint(nil), e.constraints...)
}

// ConstraintOf returns the n-th attached constraint of type T.
func ConstraintOf[T Constraint](e *Engine, n int) (T, bool) {
	for _, c := range e.constraints {
		t, ok := c.(T)
		if !ok {
			continue
		}
		if n == 0 {
			return t, true
		}
		n--
	}
	var zero T
	return zero, false
}
