// atomic_float holds float64 values shared between a solving goroutine and its observers
// without locking.
package atomic_float

import (
	"math"
	"sync/atomic"
)

// AtomicFloat64 is a float64 stored as its IEEE-754 bits in an atomic word.
// The zero value holds 0.
type AtomicFloat64 struct {
	bits atomic.Uint64
}

func NewAtomicFloat64(val float64) *AtomicFloat64 {
	af := &AtomicFloat64{}
	af.Store(val)
	return af
}

func (af *AtomicFloat64) Load() float64 {
	return math.Float64frombits(af.bits.Load())
}

func (af *AtomicFloat64) Store(val float64) {
	af.bits.Store(math.Float64bits(val))
}

// Add adds addend and returns the new value, retrying until no concurrent writer interferes.
func (af *AtomicFloat64) Add(addend float64) (newVal float64) {
	for {
		old := af.bits.Load()
		newVal = math.Float64frombits(old) + addend
		if af.bits.CompareAndSwap(old, math.Float64bits(newVal)) {
			return
		}
	}
}

// StoreMin stores val if it is below the current value and returns the resulting value.
// A running minimum of sweep deltas shows how close a solve has come to theta.
func (af *AtomicFloat64) StoreMin(val float64) float64 {
	for {
		old := af.bits.Load()
		cur := math.Float64frombits(old)
		if val >= cur {
			return cur
		}
		if af.bits.CompareAndSwap(old, math.Float64bits(val)) {
			return val
		}
	}
}
