package tracks

import (
	"encoding/binary"
	"math"

	"github.com/cespare/xxhash/v2"
)

// hasher feeds fields into a single xxhash digest in a fixed order.
type hasher struct {
	d *xxhash.Digest
}

func newHasher() hasher {
	return hasher{d: xxhash.New()}
}

func (h hasher) uint(v uint64) {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	_, _ = h.d.Write(buf[:])
}

func (h hasher) int(v int) {
	h.uint(uint64(v))
}

// float folds -0 into 0 so values that compare equal hash equally.
func (h hasher) float(v float64) {
	if v == 0 {
		v = 0
	}
	h.uint(math.Float64bits(v))
}

func (h hasher) bool(v bool) {
	if v {
		h.uint(1)
		return
	}
	h.uint(0)
}

// str is length-prefixed so adjacent strings cannot alias.
func (h hasher) str(s string) {
	h.int(len(s))
	_, _ = h.d.WriteString(s)
}

func (h hasher) sum() uint64 {
	return h.d.Sum64()
}
