// Package feedback plays an audible click when a menu action fires.
package feedback

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/speaker"
)

const (
	sampleRate = beep.SampleRate(44100)

	// ClickFrequency and ClickDuration shape the activation tone.
	ClickFrequency = 880.0
	ClickDuration  = 40 * time.Millisecond

	// clickVolume attenuates the tone (base 2, so -2 is a quarter).
	clickVolume = -2
)

// Player gives activation feedback.
type Player interface {
	Click()
	Close()
}

// Nop is a Player that does nothing.
type Nop struct{}

func (Nop) Click() {}
func (Nop) Close() {}

// Tone plays a short sine tone through the default audio device.
type Tone struct {
	logger *slog.Logger

	mu     sync.Mutex
	closed bool
}

// NewTone initializes the speaker. Audio is optional: when the device
// cannot be opened the error is logged and a Nop player is returned.
func NewTone(logger *slog.Logger) Player {
	if logger == nil {
		logger = slog.Default()
	}

	if err := speaker.Init(sampleRate, sampleRate.N(time.Second/10)); err != nil {
		logger.Warn("audio feedback disabled", "error", err)
		return Nop{}
	}

	return &Tone{logger: logger}
}

// Click plays the activation tone without waiting for it to finish.
func (t *Tone) Click() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return
	}

	s, err := clickStreamer(sampleRate, ClickFrequency, ClickDuration)
	if err != nil {
		t.logger.Debug("building click tone", "error", err)
		return
	}
	speaker.Play(s)
}

// Close releases the audio device.
func (t *Tone) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return
	}
	t.closed = true
	speaker.Close()
}

// clickStreamer returns a finite, attenuated sine tone.
func clickStreamer(rate beep.SampleRate, freq float64, d time.Duration) (beep.Streamer, error) {
	sine, err := generators.SineTone(rate, freq)
	if err != nil {
		return nil, fmt.Errorf("sine tone %.0fHz: %w", freq, err)
	}

	return &effects.Volume{
		Streamer: beep.Take(rate.N(d), sine),
		Base:     2,
		Volume:   clickVolume,
	}, nil
}
