package bloom

import (
	"math"

	"github.com/haukened/staffdir/internal/staff/repos/denylist"
)

// fallbackFPRate is used when the configured rate is outside (0, 1).
const fallbackFPRate = 0.01

// sizer picks bit count m and hash count k for n denied passwords at
// false-positive rate p:
//
//	m = ceil(-n * ln(p) / ln(2)^2)
//	k = round(m/n * ln(2))
//
// Both are at least 1.
type sizer struct{}

// NewSizer returns the default BloomSizer.
func NewSizer() denylist.BloomSizer { return sizer{} }

func (sizer) Size(n uint64, p float64) (uint64, uint8) {
	n = max(n, 1)
	if p <= 0 || p >= 1 || math.IsNaN(p) {
		p = fallbackFPRate
	}
	bits := math.Ceil(-float64(n) * math.Log(p) / (math.Ln2 * math.Ln2))
	m := max(uint64(bits), 1)
	k := math.Round(float64(m) / float64(n) * math.Ln2)
	return m, uint8(max(k, 1))
}
