package dynamics

import (
	"errors"
	"fmt"
	"math"

	"github.com/cwbudde/algo-diffuser/dsp/core"
)

const (
	// DefaultAttackMs is the follower rise time used by the diffuser.
	DefaultAttackMs = 10.0
	// DefaultReleaseMs is the follower fall time used by the diffuser.
	DefaultReleaseMs = 200.0
)

// Errors returned by [EnvelopeFollower] configuration.
var (
	ErrInvalidSampleRate = errors.New("dynamics: sample rate must be > 0")
	ErrInvalidTime       = errors.New("dynamics: attack and release must be finite and > 0")
)

// EnvelopeFollower tracks the peak envelope of a signal with separate
// attack and release speeds.
//
// The zero value reports a sample rate of 0; call Init and SetCoef before
// processing.
type EnvelopeFollower struct {
	sampleRate  int
	envelope    float32
	attackCoef  float32
	releaseCoef float32
}

// NewEnvelopeFollower returns a follower initialised for sampleRate with the
// given attack and release times in milliseconds.
func NewEnvelopeFollower(sampleRate int, attackMs, releaseMs float64) (*EnvelopeFollower, error) {
	f := &EnvelopeFollower{}
	if err := f.Init(sampleRate); err != nil {
		return nil, err
	}
	if err := f.SetCoef(attackMs, releaseMs); err != nil {
		return nil, err
	}
	return f, nil
}

// Init stores the sample rate and resets the envelope to 0.
func (f *EnvelopeFollower) Init(sampleRate int) error {
	if sampleRate <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidSampleRate, sampleRate)
	}

	f.sampleRate = sampleRate
	f.envelope = 0

	return nil
}

// SetCoef derives the one-pole coefficients exp(-1000/(ms*sampleRate)).
// Longer times give coefficients closer to 1 and slower tracking.
func (f *EnvelopeFollower) SetCoef(attackMs, releaseMs float64) error {
	if f.sampleRate <= 0 {
		return fmt.Errorf("%w: call Init first", ErrInvalidSampleRate)
	}
	if attackMs <= 0 || !core.IsFinite(attackMs) {
		return fmt.Errorf("%w: attack %f", ErrInvalidTime, attackMs)
	}
	if releaseMs <= 0 || !core.IsFinite(releaseMs) {
		return fmt.Errorf("%w: release %f", ErrInvalidTime, releaseMs)
	}

	f.attackCoef = timeCoef(attackMs, f.sampleRate)
	f.releaseCoef = timeCoef(releaseMs, f.sampleRate)

	return nil
}

func timeCoef(ms float64, sampleRate int) float32 {
	return float32(math.Exp(-1000 / (ms * float64(sampleRate))))
}

// Process feeds one sample and returns the updated envelope. The attack
// coefficient is used whenever |in| exceeds the current envelope, the
// release coefficient otherwise. A decayed envelope settles on exact 0.
func (f *EnvelopeFollower) Process(in float32) float32 {
	rect := in
	if rect < 0 {
		rect = -rect
	}

	coef := f.releaseCoef
	if rect > f.envelope {
		coef = f.attackCoef
	}

	f.envelope = core.FlushDenormals(rect + coef*(f.envelope-rect))

	return f.envelope
}

// Envelope returns the current envelope level.
func (f *EnvelopeFollower) Envelope() float32 { return f.envelope }

// SampleRate returns the configured sample rate.
func (f *EnvelopeFollower) SampleRate() int { return f.sampleRate }

// Coefficients returns the attack and release coefficients.
func (f *EnvelopeFollower) Coefficients() (attack, release float32) {
	return f.attackCoef, f.releaseCoef
}

// Reset sets the envelope back to 0, keeping the coefficients.
func (f *EnvelopeFollower) Reset() {
	f.envelope = 0
}
