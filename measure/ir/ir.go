package ir

import (
	"errors"
	"math"

	"github.com/cwbudde/algo-diffuser/dsp/core"
)

// Errors returned by IR analysis functions.
var (
	ErrEmptyIR           = errors.New("ir: impulse response is empty")
	ErrInvalidSampleRate = errors.New("ir: sample rate must be positive")
	ErrInvalidWindow     = errors.New("ir: window must be positive")
	ErrInvalidFFTSize    = errors.New("ir: fft size must be a power of two >= 2")
	ErrNoDecay           = errors.New("ir: insufficient decay for RT calculation")
)

// DefaultDensityWindowMs is the echo density window length.
const DefaultDensityWindowMs = 20.0

// Metrics holds impulse response analysis results.
type Metrics struct {
	PeakIndex        int     // sample index of the absolute maximum
	Peak             float64 // absolute maximum
	Energy           float64 // sum of squared samples
	RMS              float64 // root mean square over the whole response
	EDT              float64 // early decay time in seconds
	T20              float64 // RT from the -5 to -25 dB slope
	T30              float64 // RT from the -5 to -35 dB slope
	RT60             float64 // T30, or T20 when T30 cannot be measured
	CenterTime       float64 // energy centroid in seconds, from the peak
	TailSamples      int     // one past the last sample above the floor
	EchoDensity      float64 // mean normalized echo density between peak and tail
	SpectralFlatness float64 // Wiener entropy of the power spectrum, [0, 1]
}

// TailSeconds returns TailSamples in seconds.
func (m Metrics) TailSeconds(sampleRate float64) float64 {
	if sampleRate <= 0 {
		return 0
	}
	return float64(m.TailSamples) / sampleRate
}

// Analyzer computes IR metrics. The zero value of FloorDB and
// DensityWindowMs selects the defaults.
type Analyzer struct {
	SampleRate      float64
	FloorDB         float64 // level at which a sample counts as silent
	DensityWindowMs float64
}

// NewAnalyzer creates an IR analyzer with the given sample rate.
func NewAnalyzer(sampleRate float64) *Analyzer {
	return &Analyzer{
		SampleRate:      sampleRate,
		FloorDB:         core.MinusInfinityDB,
		DensityWindowMs: DefaultDensityWindowMs,
	}
}

func (a *Analyzer) validate(ir []float64) error {
	if len(ir) == 0 {
		return ErrEmptyIR
	}
	if a.SampleRate <= 0 || !core.IsFinite(a.SampleRate) {
		return ErrInvalidSampleRate
	}
	return nil
}

func (a *Analyzer) floorGain() float64 {
	floor := a.FloorDB
	if floor == 0 {
		floor = core.MinusInfinityDB
	}
	return core.DBToLinear(floor)
}

func (a *Analyzer) windowSamples() int {
	ms := a.DensityWindowMs
	if ms <= 0 {
		ms = DefaultDensityWindowMs
	}
	return max(1, int(math.Round(ms*0.001*a.SampleRate)))
}

// AnalyzeFloat32 is Analyze for single-precision responses.
func (a *Analyzer) AnalyzeFloat32(ir []float32) (Metrics, error) {
	return a.Analyze(core.ToFloat64(nil, ir))
}

// Analyze computes all metrics of an impulse response. Decay and density
// metrics are measured from the peak on.
func (a *Analyzer) Analyze(ir []float64) (Metrics, error) {
	if err := a.validate(ir); err != nil {
		return Metrics{}, err
	}

	peakIdx, peak := findPeak(ir)
	energy := backwardEnergy(ir)

	m := Metrics{
		PeakIndex:   peakIdx,
		Peak:        peak,
		Energy:      energy[0],
		RMS:         math.Sqrt(energy[0] / float64(len(ir))),
		TailSamples: tailLength(ir, a.floorGain()),
	}

	if m.Energy == 0 {
		return m, nil
	}

	fromPeak := ir[peakIdx:]
	curve := schroederDB(energy[peakIdx:])

	m.EDT = decayTime(curve, 0, -10, a.SampleRate)
	m.T20 = decayTime(curve, -5, -25, a.SampleRate)
	m.T30 = decayTime(curve, -5, -35, a.SampleRate)

	m.RT60 = m.T30
	if m.RT60 == 0 {
		m.RT60 = m.T20
	}

	m.CenterTime = centerTime(fromPeak, a.SampleRate)

	if m.TailSamples > peakIdx {
		profile := densityProfile(ir[peakIdx:m.TailSamples], a.windowSamples())
		m.EchoDensity = mean(profile)
	}

	flatness, err := spectralFlatness(ir, nextPow2(len(ir)))
	if err != nil {
		return Metrics{}, err
	}
	m.SpectralFlatness = flatness

	return m, nil
}

// CenterTime computes the temporal energy centroid in seconds.
func (a *Analyzer) CenterTime(ir []float64) (float64, error) {
	if err := a.validate(ir); err != nil {
		return 0, err
	}
	return centerTime(ir, a.SampleRate), nil
}

// TailSamples returns one past the index of the last sample whose magnitude
// exceeds the analyzer floor, or 0 for a silent response.
func (a *Analyzer) TailSamples(ir []float64) int {
	return tailLength(ir, a.floorGain())
}

func findPeak(ir []float64) (int, float64) {
	idx, peak := 0, 0.0
	for i, v := range ir {
		if av := math.Abs(v); av > peak {
			idx, peak = i, av
		}
	}
	return idx, peak
}

func tailLength(ir []float64, floor float64) int {
	for i := len(ir) - 1; i >= 0; i-- {
		if math.Abs(ir[i]) > floor {
			return i + 1
		}
	}
	return 0
}

func centerTime(ir []float64, sampleRate float64) float64 {
	var weighted, total float64
	for i, v := range ir {
		e := v * v
		weighted += float64(i) * e
		total += e
	}

	if total <= 0 {
		return 0
	}

	return weighted / total / sampleRate
}

func mean(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}

	var sum float64
	for _, v := range x {
		sum += v
	}

	return sum / float64(len(x))
}
