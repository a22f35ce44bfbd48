package dynamics

import (
	"errors"
	"math"
	"testing"
)

func newFollower(t *testing.T) *EnvelopeFollower {
	t.Helper()

	f, err := NewEnvelopeFollower(48000, DefaultAttackMs, DefaultReleaseMs)
	if err != nil {
		t.Fatal(err)
	}

	return f
}

func TestEnvelopeFollowerValidation(t *testing.T) {
	var f EnvelopeFollower
	if err := f.SetCoef(10, 200); !errors.Is(err, ErrInvalidSampleRate) {
		t.Fatalf("SetCoef before Init err = %v, want ErrInvalidSampleRate", err)
	}
	if err := f.Init(0); !errors.Is(err, ErrInvalidSampleRate) {
		t.Fatalf("Init(0) err = %v, want ErrInvalidSampleRate", err)
	}

	if err := f.Init(44100); err != nil {
		t.Fatal(err)
	}

	for _, tc := range [][2]float64{{0, 200}, {10, -1}, {math.NaN(), 200}, {10, math.Inf(1)}} {
		if err := f.SetCoef(tc[0], tc[1]); !errors.Is(err, ErrInvalidTime) {
			t.Fatalf("SetCoef(%v, %v) err = %v, want ErrInvalidTime", tc[0], tc[1], err)
		}
	}
}

func TestEnvelopeFollowerCoefficients(t *testing.T) {
	f := newFollower(t)
	attack, release := f.Coefficients()

	wantAttack := math.Exp(-1000.0 / (10 * 48000))
	wantRelease := math.Exp(-1000.0 / (200 * 48000))

	if math.Abs(float64(attack)-wantAttack) > 1e-7 {
		t.Fatalf("attack = %v, want %v", attack, wantAttack)
	}
	if math.Abs(float64(release)-wantRelease) > 1e-7 {
		t.Fatalf("release = %v, want %v", release, wantRelease)
	}
	if !(attack < release && release < 1) {
		t.Fatalf("expected attack < release < 1, got %v, %v", attack, release)
	}
}

func TestEnvelopeFollowerMonotonicAttack(t *testing.T) {
	const amp = 0.5

	f := newFollower(t)

	prev := f.Envelope()
	if prev != 0 {
		t.Fatalf("initial envelope = %v, want 0", prev)
	}

	for i := 0; i < 2000; i++ {
		in := float32(amp)
		if i%2 == 1 {
			in = -amp
		}

		env := f.Process(in)
		if env <= prev {
			t.Fatalf("sample %d: envelope %v did not rise above %v", i, env, prev)
		}
		if env >= amp {
			t.Fatalf("sample %d: envelope %v overshot %v", i, env, amp)
		}
		prev = env
	}

	for i := 0; i < 48000; i++ {
		f.Process(amp)
	}
	if math.Abs(float64(f.Envelope())-amp) > 1e-3 {
		t.Fatalf("envelope = %v, want converged to %v", f.Envelope(), amp)
	}
}

func TestEnvelopeFollowerRelease(t *testing.T) {
	f := newFollower(t)
	for i := 0; i < 48000; i++ {
		f.Process(1)
	}

	prev := f.Envelope()
	for i := 0; i < 1000; i++ {
		env := f.Process(0)
		if env >= prev || env < 0 {
			t.Fatalf("sample %d: envelope %v did not fall below %v", i, env, prev)
		}
		prev = env
	}
}

func TestEnvelopeFollowerReleaseReachesZero(t *testing.T) {
	f := newFollower(t)
	f.Process(1)

	for i := 0; i < 1_000_000; i++ {
		f.Process(0)
	}

	if f.Envelope() != 0 {
		t.Fatalf("envelope after long silence = %g, want 0", f.Envelope())
	}
}

func TestEnvelopeFollowerBranchPerSample(t *testing.T) {
	f := newFollower(t)
	attack, release := f.Coefficients()

	env := f.Process(1)
	if want := 1 - attack; math.Abs(float64(env-want)) > 1e-7 {
		t.Fatalf("attack step = %v, want %v", env, want)
	}

	// Input below the envelope must take the release branch immediately.
	low := float32(0.001)
	want := low + release*(env-low)
	if got := f.Process(low); math.Abs(float64(got-want)) > 1e-7 {
		t.Fatalf("release step = %v, want %v", got, want)
	}
}

func TestEnvelopeFollowerAttackFasterThanRelease(t *testing.T) {
	f := newFollower(t)

	riseSamples := 0
	for f.Process(1) < 0.5 {
		riseSamples++
	}

	for i := 0; i < 48000; i++ {
		f.Process(1)
	}

	fallSamples := 0
	for f.Process(0) > 0.5 {
		fallSamples++
	}

	if riseSamples >= fallSamples {
		t.Fatalf("rise %d samples, fall %d samples; attack should be faster", riseSamples, fallSamples)
	}
}

func TestEnvelopeFollowerReset(t *testing.T) {
	f := newFollower(t)
	f.Process(1)
	f.Reset()

	if f.Envelope() != 0 {
		t.Fatalf("envelope after Reset = %v, want 0", f.Envelope())
	}
	if a, _ := f.Coefficients(); a == 0 {
		t.Fatal("Reset dropped coefficients")
	}
}
