package diffusion

import (
	"errors"
	"fmt"
	"math"

	"github.com/cwbudde/algo-diffuser/dsp/core"
)

const (
	// MaxStages is the number of stages provisioned per network.
	MaxStages = 8
	// MinDensity is the smallest number of stages ever run.
	MinDensity = 2

	stageDepthOffset = 0.87
	seedBias         = 0.1
	dryBleed         = 0.5
	outputGain       = 0.015
	densityGainSlope = 0.75
)

// lineBaseFactors scale the base length per line index.
var lineBaseFactors = [LinesPerStage]float64{0.49, 1.41, 6.85, 11.23}

// Errors returned by [Network.Init].
var (
	ErrInvalidSampleRate   = errors.New("diffusion: sample rate must be > 0")
	ErrInvalidLengthFactor = errors.New("diffusion: length factor must be finite and >= 0")
)

// Option configures a [Network].
type Option func(*Network)

// WithLegacySeedBias feeds constant -0.1/+0.1 offsets into lines 2 and 3
// instead of offsets proportional to the input. The constant offsets leave
// a short DC transient behind every Clear.
func WithLegacySeedBias() Option {
	return func(n *Network) {
		n.legacyBias = true
	}
}

// Network is a cascade of [MaxStages] diffusion stages for one channel.
type Network struct {
	stages     [MaxStages]Stage
	legacyBias bool
	ready      bool
}

// NewNetwork returns an initialised network.
func NewNetwork(lengthFactor float64, sampleRate int, opts ...Option) (*Network, error) {
	n := &Network{}
	for _, opt := range opts {
		if opt != nil {
			opt(n)
		}
	}

	if err := n.Init(lengthFactor, sampleRate); err != nil {
		return nil, err
	}

	return n, nil
}

// LineCapacity returns the capacity of line in stage for the given base
// length and sample rate: 1 + floor(length * rate * 0.001 * base[line] * (0.87 + stage)).
func LineCapacity(lengthFactor float64, sampleRate, stage, line int) int {
	sampleFactor := lengthFactor * float64(sampleRate) * 0.001
	return 1 + int(math.Floor(sampleFactor*lineBaseFactors[line]*(stageDepthOffset+float64(stage))))
}

// Init sizes every delay line from the base length and sample rate and
// clears all state. It must be called while processing is stopped.
func (n *Network) Init(lengthFactor float64, sampleRate int) error {
	if sampleRate <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidSampleRate, sampleRate)
	}
	if lengthFactor < 0 || !core.IsFinite(lengthFactor) {
		return fmt.Errorf("%w: %f", ErrInvalidLengthFactor, lengthFactor)
	}

	for s := range n.stages {
		var caps [LinesPerStage]int
		for l := range caps {
			caps[l] = LineCapacity(lengthFactor, sampleRate, s, l)
		}

		if err := n.stages[s].Init(caps); err != nil {
			return fmt.Errorf("diffusion: stage %d: %w", s, err)
		}
	}

	n.ready = true

	return nil
}

// SetLegacySeedBias switches between constant and input-scaled seed offsets.
func (n *Network) SetLegacySeedBias(enabled bool) {
	n.legacyBias = enabled
}

// Ready reports whether Init has completed successfully.
func (n *Network) Ready() bool {
	return n.ready
}

// Capacities returns the line sizes of every stage.
func (n *Network) Capacities() [MaxStages][LinesPerStage]int {
	var out [MaxStages][LinesPerStage]int
	for s := range n.stages {
		out[s] = n.stages[s].Capacities()
	}
	return out
}

// ClampDensity limits density to [MinDensity, MaxStages].
func ClampDensity(density int) int {
	return core.ClampInt(density, MinDensity, MaxStages)
}

// ProcessSample runs one input sample through the first density stages
// (clamped to [MinDensity, MaxStages]) reading every line at factor, and
// returns the loudness-compensated wet sample.
func (n *Network) ProcessSample(in float32, factor float64, density int) float32 {
	density = ClampDensity(density)

	bias := seedBias * in
	if n.legacyBias {
		bias = seedBias
	}

	lines := [LinesPerStage]float32{
		0.8 * in,
		1.2 * in,
		-in - bias,
		-in + bias,
	}

	fd := float32(density)
	for s := 0; s < density; s++ {
		mixed := n.stages[s].Process(lines, factor)

		dry := (1 - float32(s)/fd) * dryBleed * in
		for k := range lines {
			lines[k] = dry + mixed[k]
		}
	}

	sum := lines[0] + lines[1] + lines[2] + lines[3]

	return outputGain * sum * (1 - (fd/MaxStages)*densityGainSlope)
}

// ProcessInPlace applies the network to buf in place.
func (n *Network) ProcessInPlace(buf []float32, factor float64, density int) {
	for i := range buf {
		buf[i] = n.ProcessSample(buf[i], factor, density)
	}
}

// TailSamples returns an upper bound on how many samples an input keeps
// influencing the output for the given read factor and density. The
// network has no feedback, so its impulse response is finite.
func (n *Network) TailSamples(factor float64, density int) int {
	density = ClampDensity(density)
	if math.IsNaN(factor) {
		factor = 0
	}
	factor = core.Clamp(factor, 0, 1)

	total := 0
	for s := 0; s < density; s++ {
		longest := 0
		for _, c := range n.stages[s].Capacities() {
			d := int(math.Ceil(2 + float64(c)*factor*0.98))
			longest = max(longest, min(d, c))
		}
		total += longest
	}

	return total + 1
}

// Clear zeroes every delay line in all stages.
func (n *Network) Clear() {
	for s := range n.stages {
		n.stages[s].Clear()
	}
}
