//go:build !headless

package playback

import (
	"context"
	"fmt"
	"time"

	"github.com/ebitengine/oto/v3"
	"github.com/sirupsen/logrus"
)

// Player owns the process-wide oto context.
type Player struct {
	ctx        *oto.Context
	sampleRate int
	channels   int
}

// NewPlayer opens the default output device. Only one Player may exist per
// process.
func NewPlayer(sampleRate, channels int, bufferSize time.Duration) (*Player, error) {
	op := &oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: channels,
		Format:       oto.FormatFloat32LE,
		BufferSize:   bufferSize,
	}

	ctx, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, fmt.Errorf("playback: open device: %w", err)
	}
	<-ready

	logrus.WithFields(logrus.Fields{
		"function":    "NewPlayer",
		"sample_rate": sampleRate,
		"channels":    channels,
		"buffer":      bufferSize,
	}).Debug("audio device ready")

	return &Player{ctx: ctx, sampleRate: sampleRate, channels: channels}, nil
}

// Play streams src until it is exhausted or ctx is cancelled. Every
// reportEvery it logs the position and output peak.
func (p *Player) Play(ctx context.Context, src *Source, reportEvery time.Duration) error {
	player := p.ctx.NewPlayer(src)
	defer player.Close()

	player.Play()

	if reportEvery <= 0 {
		reportEvery = 100 * time.Millisecond
	}
	ticker := time.NewTicker(reportEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			player.Pause()
			return ctx.Err()
		case <-ticker.C:
			if err := player.Err(); err != nil {
				return fmt.Errorf("playback: %w", err)
			}
			if !player.IsPlaying() {
				return nil
			}

			logrus.WithFields(logrus.Fields{
				"function": "Play",
				"position": src.Position().Round(time.Millisecond),
				"peak":     src.Peak(),
			}).Debug("playing")
		}
	}
}
