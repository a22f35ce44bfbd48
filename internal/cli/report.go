package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/cwbudde/algo-diffuser/dsp/effects/diffuser"
	"github.com/cwbudde/algo-diffuser/measure/ir"
)

// Row is one key/value line of a report section.
type Row struct {
	Key   string
	Value string
}

// Section is a titled group of rows.
type Section struct {
	Title string
	Rows  []Row
}

// RenderReport writes the sections as styled key/value blocks.
func RenderReport(w io.Writer, sections ...Section) error {
	var sb strings.Builder

	for i, s := range sections {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(SectionStyle.Render(s.Title))
		sb.WriteString("\n")

		for _, r := range s.Rows {
			sb.WriteString("  ")
			sb.WriteString(KeyStyle.Render(r.Key))
			sb.WriteString(ValueStyle.Render(r.Value))
			sb.WriteString("\n")
		}
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

// ParamsSection describes a parameter set in host units.
func ParamsSection(p diffuser.Params) Section {
	p = p.Normalize()

	return Section{
		Title: "Parameters",
		Rows: []Row{
			{"Length", fmt.Sprintf("%.2f", p.Length)},
			{"Density", fmt.Sprintf("%d stages", int(p.Density))},
			{"Threshold", fmt.Sprintf("%.1f dB", p.ThresholdDB)},
			{"Mix", fmt.Sprintf("%.0f %%", 100*p.Mix)},
			{"Volume", fmt.Sprintf("%+.1f dB", p.VolumeDB)},
		},
	}
}

// MetricsSection describes impulse response metrics.
func MetricsSection(m ir.Metrics, sampleRate float64) Section {
	return Section{
		Title: "Impulse response",
		Rows: []Row{
			{"Peak", fmt.Sprintf("%.4f @ %d", m.Peak, m.PeakIndex)},
			{"RMS", fmt.Sprintf("%.6f", m.RMS)},
			{"Tail", fmt.Sprintf("%d samples (%.3f s)", m.TailSamples, m.TailSeconds(sampleRate))},
			{"EDT", seconds(m.EDT)},
			{"T20", seconds(m.T20)},
			{"T30", seconds(m.T30)},
			{"RT60", seconds(m.RT60)},
			{"Center time", fmt.Sprintf("%.1f ms", 1000*m.CenterTime)},
			{"Echo density", fmt.Sprintf("%.3f", m.EchoDensity)},
			{"Flatness", fmt.Sprintf("%.3f", m.SpectralFlatness)},
		},
	}
}

// seconds formats a decay time, showing "n/a" where none was measurable.
func seconds(v float64) string {
	if v <= 0 {
		return "n/a"
	}
	return fmt.Sprintf("%.3f s", v)
}
