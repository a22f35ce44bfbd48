package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cwbudde/algo-diffuser/dsp/effects/diffuser"
	"github.com/cwbudde/algo-diffuser/internal/playback"
	"github.com/cwbudde/algo-diffuser/internal/wavio"
	"github.com/sirupsen/logrus"
)

// PlayCmd streams a file through the effect to the default output device.
type PlayCmd struct {
	Input string `arg:"" type:"existingfile" help:"Input WAV file."`

	ParamFlags  `embed:""`
	EngineFlags `embed:""`

	Loop   bool          `help:"Repeat the input until interrupted."`
	Buffer time.Duration `default:"50ms" help:"Output device buffer."`
	Report time.Duration `default:"500ms" help:"Interval of position and peak debug logs."`
}

func (p *PlayCmd) Run(_ *Globals) error {
	if err := p.EngineFlags.validate(); err != nil {
		return err
	}

	in, err := wavio.ReadFile(p.Input)
	if err != nil {
		return err
	}

	proc, err := diffuser.NewProcessor(p.EngineFlags.Options(in.SampleRate, in.Channels)...)
	if err != nil {
		return err
	}

	src, err := playback.NewSource(in, proc, diffuser.NewSharedParams(p.ParamFlags.Params()), p.Loop)
	if err != nil {
		return err
	}

	player, err := playback.NewPlayer(in.SampleRate, in.Channels, p.Buffer)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logrus.WithFields(logrus.Fields{
		"function": "PlayCmd.Run",
		"input":    p.Input,
		"seconds":  in.Duration(),
		"loop":     p.Loop,
	}).Info("playing")

	err = player.Play(ctx, src, p.Report)
	if errors.Is(err, context.Canceled) {
		return nil
	}

	return err
}
