package event

// Condition gates whether a matching trigger fires for an envelope.
// Conditions must not block; they run inline on the dispatch loop.
//
// A panicking condition is recovered, logged, and counted as not passed
// for that trigger only.
type Condition interface {
	Test(e Envelope) bool
}

// CondFunc adapts a plain function to the Condition interface.
type CondFunc func(e Envelope) bool

// Test implements Condition.
func (f CondFunc) Test(e Envelope) bool { return f(e) }

// CondValue is a fixed boolean condition. Registering a false value mutes
// a trigger without removing it from the subscription.
type CondValue bool

// Test implements Condition.
func (v CondValue) Test(Envelope) bool { return bool(v) }
