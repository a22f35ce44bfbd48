package diffuser

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Processor runs one [ChannelProcessor] per audio channel.
//
// Init, Clear and Release must not run concurrently with processing.
// Channels never share state, so ProcessParallel may fan them out.
type Processor struct {
	cfg      Config
	channels []ChannelProcessor
	peaks    []float32
}

// NewProcessor validates the configuration and prepares all channels.
func NewProcessor(opts ...Option) (*Processor, error) {
	cfg := ApplyOptions(opts...)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	p := &Processor{
		cfg:      cfg,
		channels: make([]ChannelProcessor, cfg.Channels),
		peaks:    make([]float32, cfg.Channels),
	}

	if err := p.prepare(); err != nil {
		return nil, err
	}

	return p, nil
}

// Init re-prepares every channel for a new sample rate and block size hint
// and clears all state.
func (p *Processor) Init(sampleRate float64, blockSizeHint int) error {
	cfg := p.cfg
	cfg.SampleRate = sampleRate
	if blockSizeHint > 0 {
		cfg.BlockSize = blockSizeHint
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	p.cfg = cfg

	return p.prepare()
}

func (p *Processor) prepare() error {
	for i := range p.channels {
		if err := p.channels[i].Init(p.cfg); err != nil {
			return fmt.Errorf("diffuser: channel %d: %w", i, err)
		}
	}

	p.Clear()

	return nil
}

// Config returns the active configuration.
func (p *Processor) Config() Config { return p.cfg }

// SampleRate returns the active sample rate in Hz.
func (p *Processor) SampleRate() float64 { return p.cfg.SampleRate }

// Channels returns the number of processed channels.
func (p *Processor) Channels() int { return len(p.channels) }

// Channel returns the processor for channel i.
func (p *Processor) Channel(i int) *ChannelProcessor { return &p.channels[i] }

// ProcessBlock transforms each channel buffer in place with one parameter
// snapshot. Buffers beyond Channels() are left untouched.
func (p *Processor) ProcessBlock(channels [][]float32, params Params) {
	bp := params.Block()

	n := min(len(channels), len(p.channels))
	for ch := 0; ch < n; ch++ {
		p.peaks[ch] = p.channels[ch].ProcessBlock(channels[ch], bp)
	}
}

// ProcessInterleaved transforms an interleaved buffer with numChannels
// samples per frame. Channels beyond Channels() pass through.
func (p *Processor) ProcessInterleaved(buf []float32, numChannels int, params Params) {
	if numChannels <= 0 {
		return
	}

	bp := params.Block()
	n := min(numChannels, len(p.channels))

	for ch := 0; ch < n; ch++ {
		p.peaks[ch] = 0
	}

	for frame := 0; frame+numChannels <= len(buf); frame += numChannels {
		for ch := 0; ch < n; ch++ {
			y := p.channels[ch].ProcessSample(buf[frame+ch], bp)
			buf[frame+ch] = y

			if y < 0 {
				y = -y
			}
			p.peaks[ch] = max(p.peaks[ch], y)
		}
	}
}

// ProcessParallel is ProcessBlock with one goroutine per channel. It is
// meant for offline rendering; the real-time path should use ProcessBlock.
func (p *Processor) ProcessParallel(ctx context.Context, channels [][]float32, params Params) error {
	bp := params.Block()
	g, ctx := errgroup.WithContext(ctx)

	n := min(len(channels), len(p.channels))
	for ch := 0; ch < n; ch++ {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			p.peaks[ch] = p.channels[ch].ProcessBlock(channels[ch], bp)
			return nil
		})
	}

	return g.Wait()
}

// LastPeak returns the output peak of channel ch in the last processed block.
func (p *Processor) LastPeak(ch int) float32 {
	if ch < 0 || ch >= len(p.peaks) {
		return 0
	}
	return p.peaks[ch]
}

// TailSamples returns how many samples of output an input can still cause
// with the given parameters.
func (p *Processor) TailSamples(params Params) int {
	if len(p.channels) == 0 {
		return 0
	}
	return p.channels[0].TailSamples(params.Block())
}

// TailSeconds is TailSamples converted to seconds.
func (p *Processor) TailSeconds(params Params) float64 {
	return float64(p.TailSamples(params)) / p.cfg.SampleRate
}

// Clear resets every channel; call it before playback starts.
func (p *Processor) Clear() {
	for i := range p.channels {
		p.channels[i].Clear()
		p.peaks[i] = 0
	}
}

// Release clears all state when playback stops.
func (p *Processor) Release() {
	p.Clear()
}

// ImpulseResponse renders length samples of the mono response to a unit
// impulse with the given configuration and parameters.
func ImpulseResponse(params Params, length int, opts ...Option) ([]float32, error) {
	if length <= 0 {
		return nil, fmt.Errorf("%w: impulse length %d", ErrInvalidConfig, length)
	}

	opts = append(opts[:len(opts):len(opts)], func(cfg *Config) { cfg.Channels = 1 })

	p, err := NewProcessor(opts...)
	if err != nil {
		return nil, err
	}

	buf := make([]float32, length)
	buf[0] = 1
	p.ProcessBlock([][]float32{buf}, params)

	return buf, nil
}
