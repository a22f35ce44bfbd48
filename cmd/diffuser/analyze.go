package main

import (
	"os"

	"github.com/cwbudde/algo-diffuser/dsp/effects/diffuser"
	"github.com/cwbudde/algo-diffuser/internal/cli"
	"github.com/cwbudde/algo-diffuser/internal/wavio"
	"github.com/cwbudde/algo-diffuser/measure/ir"
	"github.com/sirupsen/logrus"
)

// AnalyzeCmd renders the impulse response and prints its metrics.
type AnalyzeCmd struct {
	ParamFlags  `embed:""`
	EngineFlags `embed:""`

	Rate    int     `default:"48000" help:"Sample rate in Hz."`
	Seconds float64 `default:"1" help:"Impulse response length in seconds."`
	Out     string  `type:"path" help:"Also write the impulse response to this WAV file."`
}

func (a *AnalyzeCmd) Run(_ *Globals) error {
	if err := a.EngineFlags.validate(); err != nil {
		return err
	}

	params := a.ParamFlags.Params()
	length := int(a.Seconds * float64(a.Rate))

	response, err := diffuser.ImpulseResponse(params, length, a.EngineFlags.Options(a.Rate, 1)...)
	if err != nil {
		return err
	}

	metrics, err := ir.NewAnalyzer(float64(a.Rate)).AnalyzeFloat32(response)
	if err != nil {
		return err
	}

	if a.Out != "" {
		audio := &wavio.Audio{SampleRate: a.Rate, Channels: 1, Samples: response}
		if err := wavio.WriteFile(a.Out, audio, wavio.Float32); err != nil {
			return err
		}

		logrus.WithFields(logrus.Fields{
			"function": "AnalyzeCmd.Run",
			"output":   a.Out,
			"samples":  len(response),
		}).Info("wrote impulse response")
	}

	return cli.RenderReport(os.Stdout,
		cli.ParamsSection(params),
		cli.MetricsSection(metrics, float64(a.Rate)),
	)
}
