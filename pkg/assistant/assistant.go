// Package assistant implements the voice assistant turn loop as a finite
// state machine: Listening → Recording → Transcribing → Synthesizing →
// Listening. Frames arrive on the capture goroutine; transcription and
// synthesis run on a worker goroutine so the capture path never blocks.
package assistant

import (
	"context"
	"expvar"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/innokenty/voicecast/pkg/ai/stt"
	"github.com/innokenty/voicecast/pkg/ai/tts"
	"github.com/innokenty/voicecast/pkg/rtc"
	"github.com/innokenty/voicecast/pkg/session"
	"github.com/innokenty/voicecast/pkg/voice"
)

// State represents the current state of the assistant.
type State int32

const (
	StateListening State = iota
	StateRecording
	StateTranscribing
	StateSynthesizing
)

func (s State) String() string {
	switch s {
	case StateListening:
		return "Listening"
	case StateRecording:
		return "Recording"
	case StateTranscribing:
		return "Transcribing"
	case StateSynthesizing:
		return "Synthesizing"
	default:
		return fmt.Sprintf("Unknown(%d)", s)
	}
}

// StopReason records why a recording ended.
type StopReason string

const (
	StopUnknown StopReason = "unknown"
	StopPause   StopReason = "pause"
	StopTimeout StopReason = "timeout"
)

// Reply is a completed assistant turn handed to the output sink.
type Reply struct {
	Transcript string
	Text       string
	Audio      *rtc.AudioFrame
	StopReason StopReason
}

// Config holds configuration for creating an Assistant.
type Config struct {
	Detector *Detector
	STT      stt.STT
	TTS      tts.TTS
	// Session is optional. Without one the assistant echoes the
	// transcript back instead of asking an LLM.
	Session *session.Session

	Gate       *voice.Gate
	StopPolicy *voice.StopPolicy

	// MaxRecording is the hard ceiling on a single recording.
	MaxRecording time.Duration
	Voice        string
	Language     string

	// OnReply receives each finished turn. Called from the worker
	// goroutine.
	OnReply func(Reply)

	Logger *slog.Logger
}

// Metrics holds performance metrics for the assistant.
type Metrics struct {
	StateTransitions *expvar.Map
	TurnsCompleted   *expvar.Int
	EmptyRecordings  *expvar.Int
}

// Assistant coordinates wake detection, recording and the downstream
// pipeline. A single mutex guards the state, the recording buffer, the
// deadline timer and the stop reason.
type Assistant struct {
	cfg    Config
	logger *slog.Logger

	mu             sync.Mutex
	state          State
	buffer         []float32
	recordingStart time.Time
	deadline       *time.Timer
	stopReason     StopReason

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	metrics *Metrics
}

// New creates an Assistant in the Listening state.
func New(cfg Config) (*Assistant, error) {
	if cfg.Detector == nil {
		return nil, fmt.Errorf("detector is required")
	}
	if cfg.STT == nil {
		return nil, fmt.Errorf("STT is required")
	}
	if cfg.TTS == nil {
		return nil, fmt.Errorf("TTS is required")
	}
	if cfg.Gate == nil {
		cfg.Gate = voice.NewGate(voice.GateConfig{Logger: cfg.Logger})
	}
	if cfg.StopPolicy == nil {
		cfg.StopPolicy = voice.NewStopPolicy(voice.StopConfig{})
	}
	if cfg.MaxRecording == 0 {
		cfg.MaxRecording = 15 * time.Second
	}
	if cfg.Language == "" {
		cfg.Language = "ru-RU"
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())

	a := &Assistant{
		cfg:        cfg,
		logger:     cfg.Logger,
		state:      StateListening,
		stopReason: StopUnknown,
		ctx:        ctx,
		cancel:     cancel,
		metrics:    newMetrics(),
	}
	return a, nil
}

// State returns the current state.
func (a *Assistant) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// LastStopReason returns why the most recent recording ended.
func (a *Assistant) LastStopReason() StopReason {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.stopReason
}

// Metrics exposes the assistant's counters.
func (a *Assistant) Metrics() *Metrics {
	return a.metrics
}

// ProcessFrame is the capture callback. In Listening it runs wake
// detection; in Recording it accumulates audio and applies the stop
// policy; in the busy states it drops the frame.
func (a *Assistant) ProcessFrame(frame *rtc.AudioFrame) {
	a.mu.Lock()
	defer a.mu.Unlock()

	switch a.state {
	case StateListening:
		trigger, ok := a.cfg.Detector.Process(a.ctx, frame)
		if ok {
			a.startRecordingLocked(trigger)
		}

	case StateRecording:
		a.buffer = append(a.buffer, frame.Samples...)

		voiced := a.cfg.Gate.IsVoice(frame.Samples)
		a.cfg.StopPolicy.Observe(voiced)

		elapsed := time.Since(a.recordingStart)
		if a.cfg.StopPolicy.ShouldStop(elapsed) {
			a.stopReason = StopPause
			a.finishRecordingLocked()
			return
		}
		// The timer normally fires first; this inline check covers a
		// stalled or mis-set timer.
		if elapsed >= a.cfg.MaxRecording {
			a.stopReason = StopTimeout
			a.finishRecordingLocked()
		}

	default:
		// Busy transcribing or synthesizing; the frame is dropped.
	}
}

// startRecordingLocked seeds the buffer from the pre-trigger window and
// arms the deadline timer. Caller holds a.mu.
func (a *Assistant) startRecordingLocked(trigger *Trigger) {
	a.buffer = append([]float32(nil), trigger.PreTrigger...)
	a.recordingStart = time.Now()
	a.stopReason = StopUnknown

	a.cfg.Gate.Reset()
	a.cfg.StopPolicy.Reset()

	if a.deadline != nil {
		a.deadline.Stop()
	}
	a.deadline = time.AfterFunc(a.cfg.MaxRecording, a.onDeadline)

	a.setStateLocked(StateRecording)
	a.logger.Info("recording started",
		slog.String("wake_text", trigger.Text),
		slog.Int("pre_trigger_samples", len(trigger.PreTrigger)))
}

// onDeadline fires when a recording hits the hard ceiling.
func (a *Assistant) onDeadline() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.state != StateRecording {
		return
	}
	a.stopReason = StopTimeout
	a.logger.Info("recording deadline reached")
	a.finishRecordingLocked()
}

// finishRecordingLocked hands the buffered audio to the worker goroutine.
// Caller holds a.mu.
func (a *Assistant) finishRecordingLocked() {
	if a.deadline != nil {
		a.deadline.Stop()
		a.deadline = nil
	}

	recording := a.buffer
	a.buffer = nil
	reason := a.stopReason

	a.setStateLocked(StateTranscribing)
	a.logger.Info("recording finished",
		slog.String("reason", string(reason)),
		slog.Int("samples", len(recording)),
		slog.Duration("duration", time.Since(a.recordingStart)))

	a.wg.Add(1)
	go a.process(recording, reason)
}

// process runs transcription, the conversation turn and synthesis off the
// capture path. Every failure funnels back to Listening.
func (a *Assistant) process(samples []float32, reason StopReason) {
	defer a.wg.Done()

	if len(samples) == 0 {
		a.logger.Info("empty recording, skipping")
		a.metrics.EmptyRecordings.Add(1)
		a.toListening()
		return
	}

	sampleRate := 16000
	if caps := a.cfg.STT.Capabilities(); len(caps.SampleRates) > 0 {
		sampleRate = caps.SampleRates[0]
	}
	frame := &rtc.AudioFrame{Samples: samples, SampleRate: sampleRate}

	result, err := a.cfg.STT.Transcribe(a.ctx, frame)
	if err != nil {
		a.logger.Warn("transcription failed", slog.String("error", err.Error()))
		a.toListening()
		return
	}

	transcript := strings.TrimSpace(result.Text)
	if transcript == "" {
		a.logger.Info("blank transcript, skipping")
		a.metrics.EmptyRecordings.Add(1)
		a.toListening()
		return
	}

	a.mu.Lock()
	if a.ctx.Err() != nil {
		a.mu.Unlock()
		return
	}
	a.setStateLocked(StateSynthesizing)
	a.mu.Unlock()

	reply := transcript
	if a.cfg.Session != nil {
		answer, err := a.cfg.Session.Send(a.ctx, transcript)
		if err != nil || answer == "" {
			// Degraded mode: echo what was heard rather than go mute.
			a.logger.Warn("conversation turn failed, echoing transcript")
		} else {
			reply = answer
		}
	}

	audio, err := a.cfg.TTS.Synthesize(a.ctx, tts.SynthesizeRequest{
		Text:     reply,
		Voice:    a.cfg.Voice,
		Language: a.cfg.Language,
	})
	if err != nil {
		a.logger.Warn("synthesis failed", slog.String("error", err.Error()))
		a.toListening()
		return
	}

	if a.cfg.OnReply != nil {
		a.cfg.OnReply(Reply{
			Transcript: transcript,
			Text:       reply,
			Audio:      audio,
			StopReason: reason,
		})
	}

	a.metrics.TurnsCompleted.Add(1)
	a.toListening()
}

// toListening returns to the Listening state and clears turn scratch.
func (a *Assistant) toListening() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.deadline != nil {
		a.deadline.Stop()
		a.deadline = nil
	}
	a.buffer = nil
	a.setStateLocked(StateListening)
}

// setStateLocked updates the state and records the transition metric.
// Caller holds a.mu.
func (a *Assistant) setStateLocked(newState State) {
	oldState := a.state
	a.state = newState

	transitionKey := fmt.Sprintf("%s_to_%s", oldState.String(), newState.String())
	if counter := a.metrics.StateTransitions.Get(transitionKey); counter != nil {
		counter.(*expvar.Int).Add(1)
	} else {
		newCounter := &expvar.Int{}
		newCounter.Set(1)
		a.metrics.StateTransitions.Set(transitionKey, newCounter)
	}
}

// Close stops the assistant and waits for the worker to drain.
func (a *Assistant) Close() error {
	a.cancel()

	a.mu.Lock()
	if a.deadline != nil {
		a.deadline.Stop()
		a.deadline = nil
	}
	a.mu.Unlock()

	a.wg.Wait()
	return nil
}

// newMetrics creates unregistered metrics so tests can run in parallel.
func newMetrics() *Metrics {
	transitions := &expvar.Map{}
	transitions.Init()
	return &Metrics{
		StateTransitions: transitions,
		TurnsCompleted:   &expvar.Int{},
		EmptyRecordings:  &expvar.Int{},
	}
}
