package diffusion

import (
	"fmt"

	"github.com/cwbudde/algo-diffuser/dsp/delay"
)

// LinesPerStage is the number of parallel delay lines in a [Stage].
const LinesPerStage = 4

// Stage is one diffusion layer: four delay lines followed by a fixed
// butterfly that spreads every line into all four outputs.
type Stage struct {
	lines [LinesPerStage]delay.Line
}

// Init sizes the four delay lines and clears them.
func (s *Stage) Init(capacities [LinesPerStage]int) error {
	for i := range s.lines {
		if err := s.lines[i].Init(capacities[i]); err != nil {
			return fmt.Errorf("diffusion: line %d: %w", i, err)
		}
	}
	return nil
}

// Capacities returns the size of each line in samples.
func (s *Stage) Capacities() [LinesPerStage]int {
	var out [LinesPerStage]int
	for i := range s.lines {
		out[i] = s.lines[i].Len()
	}
	return out
}

// Process writes in to the lines, reads each line at factor and returns the
// butterfly-mixed outputs. The dry bleed is left to the caller.
func (s *Stage) Process(in [LinesPerStage]float32, factor float64) [LinesPerStage]float32 {
	var o [LinesPerStage]float32
	for i := range s.lines {
		s.lines[i].Write(in[i])
		o[i] = s.lines[i].ReadAtFactor(factor)
	}

	return [LinesPerStage]float32{
		o[0] + o[1] + o[2] + o[3],
		o[0] - o[1] + o[2] - o[3],
		o[0] + o[1] - o[2] - o[3],
		o[0] - o[1] - o[2] + o[3],
	}
}

// Clear zeroes all four lines.
func (s *Stage) Clear() {
	for i := range s.lines {
		s.lines[i].Clear()
	}
}
