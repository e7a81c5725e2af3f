package assistant

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/innokenty/voicecast/pkg/ai/wake"
	"github.com/innokenty/voicecast/pkg/rtc"
	"github.com/innokenty/voicecast/pkg/voice"
)

// Trigger is a detected wake phrase.
type Trigger struct {
	// Text is the finalized fragment the wake phrase was found in.
	Text string
	// Latency is how long the current listening window ran before the
	// detection.
	Latency time.Duration
	// PreTrigger is the audio heard just before the wake phrase,
	// oldest-first.
	PreTrigger []float32
}

// DetectorConfig configures a wake detector.
type DetectorConfig struct {
	Engine wake.Engine
	// Keywords are matched as substrings of the lower-cased finalized
	// fragment. Deliberately no word-boundary check: users clip the wake
	// word ("кентий" for "Иннокентий") and expect it to still work.
	Keywords   []string
	SampleRate int
	// PreTriggerWindow is how much trailing audio to keep for inclusion
	// in the recording.
	PreTriggerWindow time.Duration
	Logger           *slog.Logger
}

// Detector finds wake phrases in an audio stream while keeping a rolling
// pre-trigger window.
type Detector struct {
	engine   wake.Engine
	keywords []string
	ring     *voice.RingBuffer
	logger   *slog.Logger

	windowStart time.Time
}

// NewDetector creates a detector.
func NewDetector(cfg DetectorConfig) (*Detector, error) {
	if cfg.Engine == nil {
		return nil, fmt.Errorf("wake engine is required")
	}
	if len(cfg.Keywords) == 0 {
		return nil, fmt.Errorf("at least one keyword is required")
	}
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = 16000
	}
	if cfg.PreTriggerWindow <= 0 {
		cfg.PreTriggerWindow = 2 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	keywords := make([]string, len(cfg.Keywords))
	for i, k := range cfg.Keywords {
		keywords[i] = strings.ToLower(k)
	}

	capacity := cfg.SampleRate * int(cfg.PreTriggerWindow.Milliseconds()) / 1000

	return &Detector{
		engine:   cfg.Engine,
		keywords: keywords,
		ring:     voice.NewRingBuffer(capacity),
		logger:   cfg.Logger,
	}, nil
}

// Process feeds one frame through the detector. The frame always lands in
// the pre-trigger buffer before the engine sees it, so the snapshot taken
// on a trigger includes the frame that completed the wake phrase.
func (d *Detector) Process(ctx context.Context, frame *rtc.AudioFrame) (*Trigger, bool) {
	if d.windowStart.IsZero() {
		d.windowStart = time.Now()
	}

	d.ring.Write(frame.Samples)

	fragment, err := d.engine.Accept(ctx, frame)
	if err != nil {
		d.logger.Warn("wake engine error", slog.String("error", err.Error()))
		return nil, false
	}
	if !fragment.Finalized {
		return nil, false
	}

	text := strings.ToLower(fragment.Text)
	for _, kw := range d.keywords {
		if strings.Contains(text, kw) {
			trigger := &Trigger{
				Text:       fragment.Text,
				Latency:    time.Since(d.windowStart),
				PreTrigger: d.ring.Snapshot(),
			}
			d.logger.Info("wake phrase detected",
				slog.String("keyword", kw),
				slog.String("text", fragment.Text),
				slog.Duration("latency", trigger.Latency))
			d.engine.Reset()
			d.windowStart = time.Time{}
			return trigger, true
		}
	}

	return nil, false
}

// Reset clears engine state and the pre-trigger window.
func (d *Detector) Reset() {
	d.engine.Reset()
	d.ring.Reset()
	d.windowStart = time.Time{}
}
