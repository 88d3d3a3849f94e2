package bloom

import (
	bitsbloom "github.com/bits-and-blooms/bloom/v3"

	"github.com/haukened/staffdir/internal/staff/repos/denylist"
)

// factory implements denylist.BloomFactory using the sizer formulas.
type factory struct {
	sizer denylist.BloomSizer
}

// NewFactory returns a BloomFactory that sizes filters from capacity and FP rate.
func NewFactory() denylist.BloomFactory { return factory{sizer: NewSizer()} }

// New constructs a new BloomFilter sized for the given capacity and target
// false-positive rate.
func (f factory) New(capacity uint64, fpRate float64) denylist.BloomFilter {
	m, k := f.sizer.Size(capacity, fpRate)
	return &filter{bf: bitsbloom.New(uint(m), uint(k))}
}
