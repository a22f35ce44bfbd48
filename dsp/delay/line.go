package delay

import (
	"errors"
	"fmt"
	"math"

	"github.com/cwbudde/algo-diffuser/dsp/core"
)

// ErrInvalidCapacity is returned when a line is initialised with fewer than one slot.
var ErrInvalidCapacity = errors.New("delay: capacity must be > 0")

const (
	// factorOffset keeps the factor-mapped read position clear of the write head.
	factorOffset = 2.0
	// factorSpan is the usable share of the ring for factor-mapped reads.
	factorSpan = 0.98
)

// Line is a fixed-capacity circular delay line with linearly interpolated
// fractional reads.
//
// The zero value is not usable; call [Line.Init] (or use [New]) first.
// Write and the read methods do not allocate.
type Line struct {
	buffer []float32
	head   int
}

// New returns an initialised delay line with the given capacity.
func New(capacity int) (*Line, error) {
	l := &Line{}
	if err := l.Init(capacity); err != nil {
		return nil, err
	}
	return l, nil
}

// Init allocates storage for capacity samples and resets the write head.
// Re-initialising discards all previous content.
func (l *Line) Init(capacity int) error {
	if capacity <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidCapacity, capacity)
	}

	l.buffer = make([]float32, capacity)
	l.head = 0

	return nil
}

// Len returns the capacity in samples.
func (l *Line) Len() int {
	return len(l.buffer)
}

// Head returns the current write position.
func (l *Line) Head() int {
	return l.head
}

// Write stores one sample at the head and advances it, overwriting the
// oldest sample in the ring.
func (l *Line) Write(sample float32) {
	l.buffer[l.head] = sample
	l.head++
	if l.head >= len(l.buffer) {
		l.head = 0
	}
}

// Read returns the sample written delay steps ago (delay 1 is the most
// recent write).
func (l *Line) Read(delay int) float32 {
	size := len(l.buffer)
	if size == 0 {
		return 0
	}

	pos := (l.head - delay) % size
	if pos < 0 {
		pos += size
	}

	return l.buffer[pos]
}

// ReadAtDelay returns the linearly interpolated sample delay samples behind
// the head. The nominal domain is [0, Len()); positions outside it wrap
// around the ring instead of indexing out of range.
func (l *Line) ReadAtDelay(delay float64) float32 {
	size := len(l.buffer)
	if size == 0 {
		return 0
	}

	n := float64(size)
	pos := float64(l.head) + n - delay
	if !(pos >= 0 && pos < n) {
		pos = wrap(pos, n)
	}

	i0 := int(pos)
	w := pos - float64(i0)
	if i0 >= size {
		i0 -= size
	}

	i1 := i0 + 1
	if i1 >= size {
		i1 = 0
	}

	return float32(float64(l.buffer[i0])*(1-w) + float64(l.buffer[i1])*w)
}

// ReadAtFactor maps factor in [0, 1] onto the ring and reads there:
// delay = 2 + Len()*factor*0.98. Factors outside [0, 1] are clamped and
// NaN reads as 0.
func (l *Line) ReadAtFactor(factor float64) float32 {
	if math.IsNaN(factor) {
		factor = 0
	}
	factor = core.Clamp(factor, 0, 1)
	return l.ReadAtDelay(factorOffset + float64(len(l.buffer))*factor*factorSpan)
}

// Clear zeroes the contents and resets the head without reallocating.
func (l *Line) Clear() {
	clear(l.buffer)
	l.head = 0
}

// wrap folds pos into [0, n). Non-finite positions collapse to 0.
func wrap(pos, n float64) float64 {
	if !core.IsFinite(pos) {
		return 0
	}
	pos = math.Mod(pos, n)
	if pos < 0 {
		pos += n
	}
	if pos >= n {
		pos = 0
	}
	return pos
}
