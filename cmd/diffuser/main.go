// Command diffuser runs the dynamic diffusion effect on WAV files.
//
// Usage:
//
//	diffuser <command> [flags]
//
// Examples:
//
//	diffuser render in.wav out.wav --length 0.7 --density 6
//	diffuser render in.wav out.wav --mix 1 --threshold -60 --format pcm24
//	diffuser analyze --density 8 --seconds 2 --out ir.wav
//	diffuser play in.wav --loop
package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/alecthomas/kong"
	"github.com/cwbudde/algo-diffuser/dsp/core"
	"github.com/cwbudde/algo-diffuser/dsp/effects/diffuser"
	"github.com/cwbudde/algo-diffuser/internal/cli"
	"github.com/sirupsen/logrus"
)

var version = "0.1.0"

// Globals are flags shared by every command.
type Globals struct {
	Verbose   bool   `short:"v" help:"Enable debug logging."`
	LogFormat string `enum:"text,json" default:"text" help:"Log output format (text, json)."`
}

// CLI defines the command-line interface.
type CLI struct {
	Globals

	Render  RenderCmd  `cmd:"" help:"Process a WAV file offline."`
	Analyze AnalyzeCmd `cmd:"" help:"Render and measure the impulse response."`
	Play    PlayCmd    `cmd:"" help:"Play a WAV file through the effect."`
	Version VersionCmd `cmd:"" help:"Show version information."`
}

// VersionCmd prints the version.
type VersionCmd struct{}

func (VersionCmd) Run(_ *Globals) error {
	cli.PrintVersion(os.Stdout, version)
	return nil
}

func kongVars() kong.Vars {
	f := func(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }

	return kong.Vars{
		"version":    version,
		"length":     f(diffuser.LengthRange.Default),
		"density":    f(diffuser.DensityRange.Default),
		"threshold":  f(diffuser.ThresholdRange.Default),
		"mix":        f(diffuser.MixRange.Default),
		"volume":     f(diffuser.VolumeRange.Default),
		"max_length": f(diffuser.DefaultMaxLength),
	}
}

func configureLogging(g *Globals) {
	logrus.SetOutput(os.Stderr)
	logrus.SetLevel(logrus.InfoLevel)
	if g.Verbose {
		logrus.SetLevel(logrus.DebugLevel)
	}

	if g.LogFormat == "json" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
}

func main() {
	cliArgs := &CLI{}
	ctx := kong.Parse(cliArgs,
		kong.Name("diffuser"),
		kong.Description("Dynamic diffusion effect"),
		kong.UsageOnError(),
		kongVars(),
		kong.Help(cli.StyledHelpPrinter("Diffuser", "Dynamic diffusion effect")),
	)

	configureLogging(&cliArgs.Globals)

	if err := ctx.Run(&cliArgs.Globals); err != nil {
		cli.PrintError(os.Stderr, err.Error())
		logrus.WithFields(logrus.Fields{
			"function": "main",
			"command":  ctx.Command(),
			"error":    err.Error(),
		}).Debug("command failed")
		os.Exit(1)
	}
}

// ParamFlags are the five host parameters.
type ParamFlags struct {
	Length    float64 `default:"${length}" help:"Read position inside the delay lines, 0..1."`
	Density   float64 `default:"${density}" help:"Active diffusion stages, 2..8."`
	Threshold float64 `default:"${threshold}" help:"Envelope level in dB where dynamic diffusion starts, -60..0."`
	Mix       float64 `default:"${mix}" help:"Static wet share, 0..1."`
	Volume    float64 `default:"${volume}" help:"Output gain in dB, -12..12."`
}

// Params converts the flags into a clamped parameter set.
func (p ParamFlags) Params() diffuser.Params {
	return diffuser.Params{
		Length:      p.Length,
		Density:     p.Density,
		ThresholdDB: p.Threshold,
		Mix:         p.Mix,
		VolumeDB:    p.Volume,
	}.Normalize()
}

// EngineFlags are the settings fixed when the processor is prepared.
type EngineFlags struct {
	MaxLength  float64 `default:"${max_length}" help:"Base diffusion length."`
	Attack     float64 `default:"10" help:"Envelope attack in ms."`
	Release    float64 `default:"200" help:"Envelope release in ms."`
	LegacySeed bool    `help:"Use constant seed offsets in the first stage."`
	Block      int     `default:"512" help:"Processing block size in frames."`
}

// Options returns processor options for the given stream layout.
func (e EngineFlags) Options(sampleRate, channels int) []diffuser.Option {
	opts := []diffuser.Option{
		diffuser.WithProcessorOptions(
			core.WithSampleRate(float64(sampleRate)),
			core.WithChannels(channels),
			core.WithBlockSize(e.Block),
		),
		diffuser.WithMaxLength(e.MaxLength),
		diffuser.WithAttack(e.Attack),
		diffuser.WithRelease(e.Release),
	}
	if e.LegacySeed {
		opts = append(opts, diffuser.WithLegacySeedBias())
	}

	return opts
}

func (e EngineFlags) validate() error {
	if e.Block <= 0 {
		return fmt.Errorf("block size must be positive, got %d", e.Block)
	}
	return nil
}
