//go:build headless

package playback

import (
	"context"
	"errors"
	"time"
)

// ErrNoDevice is returned by headless builds.
var ErrNoDevice = errors.New("playback: built without audio output")

// Player is unavailable in headless builds.
type Player struct{}

// NewPlayer always fails in headless builds.
func NewPlayer(sampleRate, channels int, bufferSize time.Duration) (*Player, error) {
	return nil, ErrNoDevice
}

// Play always fails in headless builds.
func (p *Player) Play(ctx context.Context, src *Source, reportEvery time.Duration) error {
	return ErrNoDevice
}
