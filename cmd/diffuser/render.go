package main

import (
	"context"
	"fmt"
	"time"

	"github.com/cwbudde/algo-diffuser/dsp/effects/diffuser"
	"github.com/cwbudde/algo-diffuser/internal/wavio"
	"github.com/sirupsen/logrus"
)

// RenderCmd processes a file offline.
type RenderCmd struct {
	Input  string `arg:"" type:"existingfile" help:"Input WAV file."`
	Output string `arg:"" type:"path" help:"Output WAV file."`

	ParamFlags  `embed:""`
	EngineFlags `embed:""`

	Format   string `enum:"float32,pcm16,pcm24" default:"float32" help:"Output sample format (float32, pcm16, pcm24)."`
	NoTail   bool   `help:"Stop at the input length instead of rendering the diffusion tail."`
	Parallel bool   `help:"Process channels on separate goroutines."`
}

func (r *RenderCmd) Run(_ *Globals) error {
	if err := r.EngineFlags.validate(); err != nil {
		return err
	}

	format, err := wavio.ParseFormat(r.Format)
	if err != nil {
		return err
	}

	in, err := wavio.ReadFile(r.Input)
	if err != nil {
		return err
	}

	start := time.Now()
	out, err := render(context.Background(), in, r.ParamFlags.Params(), r.EngineFlags, !r.NoTail, r.Parallel)
	if err != nil {
		return err
	}

	if err := wavio.WriteFile(r.Output, out, format); err != nil {
		return err
	}

	logrus.WithFields(logrus.Fields{
		"function": "RenderCmd.Run",
		"input":    r.Input,
		"output":   r.Output,
		"channels": out.Channels,
		"rate":     out.SampleRate,
		"seconds":  fmt.Sprintf("%.2f", out.Duration()),
		"elapsed":  time.Since(start).Round(time.Millisecond),
	}).Info("rendered")

	return nil
}

// render runs in through a fresh processor block by block. With withTail
// set the output is extended by the processor's diffusion tail.
func render(ctx context.Context, in *wavio.Audio, params diffuser.Params, engine EngineFlags, withTail, parallel bool) (*wavio.Audio, error) {
	proc, err := diffuser.NewProcessor(engine.Options(in.SampleRate, in.Channels)...)
	if err != nil {
		return nil, err
	}

	channels := in.Planar()
	if withTail {
		tail := proc.TailSamples(params)
		for ch := range channels {
			channels[ch] = append(channels[ch], make([]float32, tail)...)
		}
	}

	frames := 0
	if len(channels) > 0 {
		frames = len(channels[0])
	}

	logrus.WithFields(logrus.Fields{
		"function":  "render",
		"frames":    frames,
		"block":     engine.Block,
		"length":    params.Length,
		"density":   int(params.Density),
		"threshold": params.ThresholdDB,
		"mix":       params.Mix,
		"volume":    params.VolumeDB,
	}).Debug("rendering")

	block := make([][]float32, len(channels))
	for pos := 0; pos < frames; pos += engine.Block {
		end := min(pos+engine.Block, frames)
		for ch := range channels {
			block[ch] = channels[ch][pos:end]
		}

		if parallel {
			if err := proc.ProcessParallel(ctx, block, params); err != nil {
				return nil, err
			}
			continue
		}
		proc.ProcessBlock(block, params)
	}

	return wavio.FromPlanar(in.SampleRate, channels), nil
}
