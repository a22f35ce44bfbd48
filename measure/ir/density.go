package ir

import "math"

// gaussianOutlierShare is erfc(1/√2): the share of a normal distribution
// lying outside one standard deviation.
var gaussianOutlierShare = math.Erfc(1 / math.Sqrt2)

// EchoDensityProfile returns the normalized echo density of consecutive
// half-overlapping windows of DensityWindowMs. Sparse early reflections
// score near 0; a fully diffused tail scores near 1.
func (a *Analyzer) EchoDensityProfile(ir []float64) ([]float64, error) {
	if err := a.validate(ir); err != nil {
		return nil, err
	}
	if a.DensityWindowMs < 0 {
		return nil, ErrInvalidWindow
	}

	return densityProfile(ir, a.windowSamples()), nil
}

func densityProfile(ir []float64, window int) []float64 {
	window = min(window, len(ir))
	if window == 0 {
		return nil
	}

	hop := max(1, window/2)
	profile := make([]float64, 0, (len(ir)-window)/hop+1)

	for start := 0; start+window <= len(ir); start += hop {
		profile = append(profile, windowDensity(ir[start:start+window]))
	}

	return profile
}

func windowDensity(w []float64) float64 {
	var energy float64
	for _, v := range w {
		energy += v * v
	}

	if energy == 0 {
		return 0
	}

	sigma := math.Sqrt(energy / float64(len(w)))

	outliers := 0
	for _, v := range w {
		if math.Abs(v) > sigma {
			outliers++
		}
	}

	return float64(outliers) / (float64(len(w)) * gaussianOutlierShare)
}
