package payment

import "math/rand/v2"

// OutcomeSource decides whether the simulated gateway approves a charge.
// It is the only source of non-determinism in the pipeline; tests inject a
// fixed source to force either branch.
type OutcomeSource interface {
	Approve() bool
}

// RandomOutcome approves a configurable fraction of charges.
type RandomOutcome struct {
	Rate float64
}

// NewRandomOutcome returns a source approving rate of all charges. Values
// outside [0, 1] are clamped.
func NewRandomOutcome(rate float64) RandomOutcome {
	if rate < 0 {
		rate = 0
	}
	if rate > 1 {
		rate = 1
	}
	return RandomOutcome{Rate: rate}
}

func (r RandomOutcome) Approve() bool {
	return rand.Float64() < r.Rate
}

// FixedOutcome always returns its value. Used in tests and for forced
// gateway behaviour in demos.
type FixedOutcome bool

func (f FixedOutcome) Approve() bool { return bool(f) }

const txnAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// newTransactionID generates an opaque gateway-style reference like
// TXN4F7Q0ZK2M9XA.
func newTransactionID() string {
	b := make([]byte, 12)
	for i := range b {
		b[i] = txnAlphabet[rand.IntN(len(txnAlphabet))]
	}
	return "TXN" + string(b)
}
