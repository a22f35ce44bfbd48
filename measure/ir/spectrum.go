package ir

import (
	"fmt"
	"math"

	algofft "github.com/MeKo-Christian/algo-fft"
	"github.com/cwbudde/algo-diffuser/dsp/core"
	"github.com/cwbudde/algo-vecmath"
)

// flatnessEpsilon keeps empty bins from collapsing the geometric mean.
const flatnessEpsilon = 1e-30

// MagnitudeResponse returns the magnitude in dB of bins 0..fftSize/2 of the
// response, truncated or zero padded to fftSize.
func (a *Analyzer) MagnitudeResponse(ir []float64, fftSize int) ([]float64, error) {
	if len(ir) == 0 {
		return nil, ErrEmptyIR
	}

	re, im, err := halfSpectrum(ir, fftSize)
	if err != nil {
		return nil, err
	}

	mag := make([]float64, len(re))
	vecmath.Magnitude(mag, re, im)

	for i, m := range mag {
		mag[i] = core.GainToDB(m, schroederFloorDB)
	}

	return mag, nil
}

// SpectralFlatness returns the geometric over arithmetic mean of the power
// spectrum, using the next power of two at or above len(ir).
func (a *Analyzer) SpectralFlatness(ir []float64) (float64, error) {
	if len(ir) == 0 {
		return 0, ErrEmptyIR
	}
	return spectralFlatness(ir, nextPow2(len(ir)))
}

func spectralFlatness(ir []float64, fftSize int) (float64, error) {
	re, im, err := halfSpectrum(ir, fftSize)
	if err != nil {
		return 0, err
	}

	power := make([]float64, len(re))
	vecmath.Power(power, re, im)

	var logSum, sum float64
	for _, p := range power {
		logSum += math.Log(p + flatnessEpsilon)
		sum += p
	}

	n := float64(len(power))
	if sum <= 0 {
		return 0, nil
	}

	return core.Clamp(math.Exp(logSum/n)/(sum/n), 0, 1), nil
}

// halfSpectrum transforms ir and splits bins 0..fftSize/2 into real and
// imaginary parts.
func halfSpectrum(ir []float64, fftSize int) (re, im []float64, err error) {
	if fftSize < 2 || fftSize&(fftSize-1) != 0 {
		return nil, nil, fmt.Errorf("%w: %d", ErrInvalidFFTSize, fftSize)
	}

	plan, err := algofft.NewPlan64(fftSize)
	if err != nil {
		return nil, nil, fmt.Errorf("ir: fft plan: %w", err)
	}

	in := make([]complex128, fftSize)
	for i := 0; i < min(len(ir), fftSize); i++ {
		in[i] = complex(ir[i], 0)
	}

	out := make([]complex128, fftSize)
	if err := plan.Forward(out, in); err != nil {
		return nil, nil, fmt.Errorf("ir: fft: %w", err)
	}

	bins := fftSize/2 + 1
	re = make([]float64, bins)
	im = make([]float64, bins)

	for i := range bins {
		re[i] = real(out[i])
		im[i] = imag(out[i])
	}

	return re, im, nil
}

func nextPow2(n int) int {
	p := 2
	for p < n {
		p <<= 1
	}
	return p
}
