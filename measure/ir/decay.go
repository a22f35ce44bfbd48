package ir

import (
	"math"

	"github.com/cwbudde/algo-vecmath"
)

// schroederFloorDB is reported where no energy remains.
const schroederFloorDB = -200.0

// SchroederIntegral returns the backward-integrated energy decay curve in
// dB relative to the total energy:
//
//	S(t) = 10*log10( ∫_t^∞ h²(τ) dτ / ∫_0^∞ h²(τ) dτ )
func (a *Analyzer) SchroederIntegral(ir []float64) ([]float64, error) {
	if len(ir) == 0 {
		return nil, ErrEmptyIR
	}
	return schroederDB(backwardEnergy(ir)), nil
}

// RT60 estimates the reverberation time from the T30 slope, falling back
// to T20.
func (a *Analyzer) RT60(ir []float64) (float64, error) {
	if err := a.validate(ir); err != nil {
		return 0, err
	}

	curve := schroederDB(backwardEnergy(ir))
	if rt := decayTime(curve, -5, -35, a.SampleRate); rt > 0 {
		return rt, nil
	}
	if rt := decayTime(curve, -5, -25, a.SampleRate); rt > 0 {
		return rt, nil
	}

	return 0, ErrNoDecay
}

// backwardEnergy returns e[i] = Σ_{k>=i} h[k]².
func backwardEnergy(ir []float64) []float64 {
	e := make([]float64, len(ir))
	vecmath.MulBlock(e, ir, ir)

	for i := len(e) - 2; i >= 0; i-- {
		e[i] += e[i+1]
	}

	return e
}

// schroederDB normalizes a backward energy curve to its first value in dB.
func schroederDB(e []float64) []float64 {
	out := make([]float64, len(e))
	if len(e) == 0 || e[0] <= 0 {
		return out
	}

	total := e[0]
	for i, v := range e {
		if v <= 0 {
			out[i] = schroederFloorDB
			continue
		}
		out[i] = 10 * math.Log10(v/total)
	}

	return out
}

// decayTime fits a line to the curve between startDB and endDB and
// extrapolates it to -60 dB. It returns 0 when the curve never spans the
// range or does not decay.
func decayTime(curve []float64, startDB, endDB, sampleRate float64) float64 {
	start, end := -1, -1
	for i, v := range curve {
		if start < 0 && v <= startDB {
			start = i
		}
		if start >= 0 && v <= endDB {
			end = i
			break
		}
	}

	if start < 0 || end <= start {
		return 0
	}

	slope := regressionSlope(curve[start : end+1])
	if slope >= 0 {
		return 0
	}

	return -60 / (slope * sampleRate)
}

// regressionSlope returns the least-squares slope of y over its indices.
func regressionSlope(y []float64) float64 {
	n := float64(len(y))
	if n < 2 {
		return 0
	}

	// x runs 0..n-1, so its sums have closed forms.
	sumX := n * (n - 1) / 2
	sumXX := (n - 1) * n * (2*n - 1) / 6

	var sumY, sumXY float64
	for i, v := range y {
		sumY += v
		sumXY += float64(i) * v
	}

	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return 0
	}

	return (n*sumXY - sumX*sumY) / denom
}
