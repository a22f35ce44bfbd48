package diffuser

import (
	"github.com/cwbudde/algo-diffuser/dsp/core"
	"github.com/cwbudde/algo-diffuser/dsp/effects/diffusion"
	"github.com/cwbudde/algo-diffuser/dsp/effects/dynamics"
)

// KneeDB is the level span above threshold over which the dynamic mix
// moves from fully dry to fully diffused.
const KneeDB = 12

// DynamicMix returns the loudness-dependent wet share for an envelope level:
// 0 at or below threshold, rising linearly to 1 at KneeDB above it.
func DynamicMix(envelopeDB, thresholdDB float32) float32 {
	if envelopeDB <= thresholdDB {
		return 0
	}
	return min((envelopeDB-thresholdDB)/KneeDB, 1)
}

// ChannelProcessor is the per-channel signal path: diffusion network,
// envelope follower and the dynamic and static mix stages.
//
// Init must be called before processing.
type ChannelProcessor struct {
	network  diffusion.Network
	follower dynamics.EnvelopeFollower
}

// Init sizes the network and configures the follower from cfg.
func (c *ChannelProcessor) Init(cfg Config) error {
	rate := int(cfg.SampleRate)

	c.network.SetLegacySeedBias(cfg.LegacySeedBias)
	if err := c.network.Init(cfg.MaxLength, rate); err != nil {
		return err
	}

	if err := c.follower.Init(rate); err != nil {
		return err
	}

	return c.follower.SetCoef(cfg.AttackMs, cfg.ReleaseMs)
}

// ProcessSample returns the processed output for one input sample.
func (c *ChannelProcessor) ProcessSample(in float32, p BlockParams) float32 {
	wet := c.network.ProcessSample(in, p.Factor, p.Density)

	env := c.follower.Process(wet)
	envDB := float32(core.GainToDB(float64(env), core.MinusInfinityDB))

	dyn := DynamicMix(envDB, p.ThresholdDB)
	wetDyn := dyn*wet + (1-dyn)*in

	return p.Volume * (p.Mix*wetDyn + (1-p.Mix)*in)
}

// ProcessBlock transforms buf in place and returns its output peak.
func (c *ChannelProcessor) ProcessBlock(buf []float32, p BlockParams) float32 {
	var peak float32
	for i, x := range buf {
		y := c.ProcessSample(x, p)
		buf[i] = y

		if y < 0 {
			y = -y
		}
		peak = max(peak, y)
	}
	return peak
}

// Envelope returns the follower's current level.
func (c *ChannelProcessor) Envelope() float32 {
	return c.follower.Envelope()
}

// TailSamples returns how long the diffused signal can ring on.
func (c *ChannelProcessor) TailSamples(p BlockParams) int {
	return c.network.TailSamples(p.Factor, p.Density)
}

// Clear drops all delay-line content and the envelope level.
func (c *ChannelProcessor) Clear() {
	c.network.Clear()
	c.follower.Reset()
}
