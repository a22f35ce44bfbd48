// Package playback streams a file through the diffuser to the sound card.
package playback

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"sync/atomic"
	"time"

	"github.com/cwbudde/algo-diffuser/dsp/core"
	"github.com/cwbudde/algo-diffuser/dsp/effects/diffuser"
	"github.com/cwbudde/algo-diffuser/internal/wavio"
)

// ErrChannelMismatch is returned when the processor and the audio disagree
// on the channel count.
var ErrChannelMismatch = errors.New("playback: channel count mismatch")

// bytesPerSample is the size of one float32 LE sample on the wire.
const bytesPerSample = 4

// Source is an io.Reader producing processed float32 LE frames. Reads happen
// on the audio goroutine; Peak, Frames and Done may be polled from any
// goroutine, and parameters change through the shared store.
type Source struct {
	audio  *wavio.Audio
	proc   *diffuser.Processor
	params *diffuser.SharedParams
	loop   bool

	pos     int // next input frame
	tail    int // frames rendered past the end of the input
	scratch []float32

	frames atomic.Int64
	peak   atomic.Uint32
	done   atomic.Bool
}

// NewSource prepares a source reading audio through proc. With loop set the
// input restarts at its end and the source never finishes.
func NewSource(audio *wavio.Audio, proc *diffuser.Processor, params *diffuser.SharedParams, loop bool) (*Source, error) {
	if audio.Channels != proc.Channels() {
		return nil, fmt.Errorf("%w: audio has %d, processor %d", ErrChannelMismatch, audio.Channels, proc.Channels())
	}

	return &Source{
		audio:  audio,
		proc:   proc,
		params: params,
		loop:   loop,
	}, nil
}

// Read fills p with whole frames. After the input and the diffusion tail
// are exhausted it returns io.EOF.
func (s *Source) Read(p []byte) (int, error) {
	ch := s.audio.Channels
	frameBytes := bytesPerSample * ch

	frames := len(p) / frameBytes
	if frames == 0 {
		return 0, io.ErrShortBuffer
	}
	if s.done.Load() {
		return 0, io.EOF
	}

	params := s.params.Snapshot()
	tailLimit := s.proc.TailSamples(params)
	total := s.audio.Frames()

	s.scratch = core.EnsureLen(s.scratch, frames*ch)
	buf := s.scratch

	n := 0
fill:
	for n < frames {
		switch {
		case s.pos < total:
			k := min(frames-n, total-s.pos)
			core.CopyInto(buf[n*ch:(n+k)*ch], s.audio.Samples[s.pos*ch:(s.pos+k)*ch])
			s.pos += k
			n += k
		case s.loop && total > 0:
			s.pos = 0
		case s.tail < tailLimit:
			k := min(frames-n, tailLimit-s.tail)
			core.Zero(buf[n*ch : (n+k)*ch])
			s.tail += k
			n += k
		default:
			break fill
		}
	}

	if n == 0 {
		s.done.Store(true)
		return 0, io.EOF
	}

	buf = buf[:n*ch]
	s.proc.ProcessInterleaved(buf, ch, params)

	for i, v := range buf {
		binary.LittleEndian.PutUint32(p[i*bytesPerSample:], math.Float32bits(v))
	}

	var peak float32
	for c := 0; c < ch; c++ {
		peak = max(peak, s.proc.LastPeak(c))
	}
	s.peak.Store(math.Float32bits(peak))
	s.frames.Add(int64(n))

	return n * frameBytes, nil
}

// Peak returns the output peak of the most recent read.
func (s *Source) Peak() float32 {
	return math.Float32frombits(s.peak.Load())
}

// Frames returns the number of frames produced so far.
func (s *Source) Frames() int64 {
	return s.frames.Load()
}

// Position returns the produced duration.
func (s *Source) Position() time.Duration {
	return time.Duration(s.Frames()) * time.Second / time.Duration(s.audio.SampleRate)
}

// Done reports whether the source has returned io.EOF.
func (s *Source) Done() bool {
	return s.done.Load()
}
