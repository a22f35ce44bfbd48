package main

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/cwbudde/algo-diffuser/dsp/effects/diffuser"
	"github.com/cwbudde/algo-diffuser/internal/testutil"
	"github.com/cwbudde/algo-diffuser/internal/wavio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultEngine() EngineFlags {
	return EngineFlags{MaxLength: diffuser.DefaultMaxLength, Attack: 10, Release: 200, Block: 256}
}

func stereoInput() *wavio.Audio {
	return wavio.FromPlanar(48000, [][]float32{
		testutil.DeterministicNoise(1, 0.5, 3000),
		testutil.DeterministicSine(220, 48000, 0.5, 3000),
	})
}

func TestRenderAppendsTail(t *testing.T) {
	in := stereoInput()
	params := diffuser.DefaultParams()

	out, err := render(context.Background(), in, params, defaultEngine(), true, false)
	require.NoError(t, err)

	proc, err := diffuser.NewProcessor(defaultEngine().Options(48000, 2)...)
	require.NoError(t, err)

	assert.Equal(t, in.Frames()+proc.TailSamples(params), out.Frames())
	assert.Equal(t, 2, out.Channels)
	testutil.RequireFinite(t, out.Samples)
}

func TestRenderBlockSizeIndependent(t *testing.T) {
	params := diffuser.Params{Length: 0.7, Density: 6, ThresholdDB: -40, Mix: 0.8, VolumeDB: -3}

	small := defaultEngine()
	small.Block = 64
	large := defaultEngine()
	large.Block = 4096

	a, err := render(context.Background(), stereoInput(), params, small, false, false)
	require.NoError(t, err)
	b, err := render(context.Background(), stereoInput(), params, large, false, true)
	require.NoError(t, err)

	assert.Equal(t, 3000, a.Frames())
	testutil.RequireSliceNearlyEqual(t, a.Samples, b.Samples, 0)
}

func TestRenderCmdWritesFile(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "in.wav")
	output := filepath.Join(dir, "out.wav")
	require.NoError(t, wavio.WriteFile(input, stereoInput(), wavio.PCM16))

	cmd := &RenderCmd{
		Input:       input,
		Output:      output,
		ParamFlags:  ParamFlags{Length: 0.5, Density: 4, Threshold: -30, Mix: 0.5},
		EngineFlags: defaultEngine(),
		Format:      "pcm24",
		NoTail:      true,
	}
	require.NoError(t, cmd.Run(&Globals{}))

	out, err := wavio.ReadFile(output)
	require.NoError(t, err)
	assert.Equal(t, 3000, out.Frames())
	assert.Equal(t, 48000, out.SampleRate)
}

func TestRenderCmdRejectsBadBlock(t *testing.T) {
	cmd := &RenderCmd{EngineFlags: EngineFlags{Block: 0}, Format: "float32"}
	assert.Error(t, cmd.Run(&Globals{}))
}

func TestAnalyzeCmdWritesImpulseResponse(t *testing.T) {
	out := filepath.Join(t.TempDir(), "ir.wav")

	cmd := &AnalyzeCmd{
		ParamFlags:  ParamFlags{Length: 0.5, Density: 8, Threshold: -60, Mix: 1},
		EngineFlags: defaultEngine(),
		Rate:        48000,
		Seconds:     0.5,
		Out:         out,
	}
	require.NoError(t, cmd.Run(&Globals{}))

	audio, err := wavio.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, 24000, audio.Frames())
	assert.Equal(t, 1, audio.Channels)
}

func TestParamFlagsClamp(t *testing.T) {
	p := ParamFlags{Length: 3, Density: 20, Threshold: -100, Mix: -1, Volume: 30}.Params()
	assert.Equal(t, diffuser.Params{Length: 1, Density: 8, ThresholdDB: -60, Mix: 0, VolumeDB: 12}, p)
}

func TestCLIDefaults(t *testing.T) {
	var cliArgs CLI
	parser, err := kong.New(&cliArgs, kongVars(), kong.Exit(func(int) {}))
	require.NoError(t, err)

	_, err = parser.Parse([]string{"analyze"})
	require.NoError(t, err)

	assert.Equal(t, diffuser.DefaultParams(), cliArgs.Analyze.ParamFlags.Params())
	assert.Equal(t, diffuser.DefaultMaxLength, cliArgs.Analyze.MaxLength)
	assert.Equal(t, 512, cliArgs.Analyze.Block)
	assert.Equal(t, "text", cliArgs.LogFormat)
}
