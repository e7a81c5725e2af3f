// Package remote implements stt.STT against a recognition gateway reached
// over WebSocket. The client sends a "transcribe" envelope describing the
// utterance, streams the PCM as one binary message, and waits for a
// "transcript" envelope back.
package remote

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/innokenty/voicecast/internal/gateway"
	"github.com/innokenty/voicecast/pkg/ai"
	"github.com/innokenty/voicecast/pkg/ai/stt"
	"github.com/innokenty/voicecast/pkg/rtc"
)

// Config configures the remote transcriber.
type Config struct {
	URL      string
	Token    string
	Language string
	Timeout  time.Duration
	Logger   *slog.Logger
}

// STT is a batch transcriber backed by a remote gateway.
type STT struct {
	cfg    Config
	logger *slog.Logger
}

// New creates a remote transcriber.
func New(cfg Config) (*STT, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("gateway URL is required")
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.Language == "" {
		cfg.Language = "ru-RU"
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &STT{cfg: cfg, logger: cfg.Logger}, nil
}

// Transcribe sends the utterance to the gateway and returns its transcript.
// A fresh connection is used per utterance; recognition is batch, not
// streaming, so there is nothing to keep alive between turns.
func (s *STT) Transcribe(ctx context.Context, audio *rtc.AudioFrame) (stt.Result, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	client := gateway.NewClient(s.cfg.URL, s.cfg.Token, s.logger)
	if err := client.Connect(ctx); err != nil {
		return stt.Result{}, ai.NewRecoverableError(err, "gateway connect failed")
	}
	defer client.Close()

	err := client.Write(ctx, &gateway.Envelope{
		Type: "transcribe",
		Data: map[string]any{
			"sample_rate": audio.SampleRate,
			"language":    s.cfg.Language,
			"samples":     len(audio.Samples),
		},
	})
	if err != nil {
		return stt.Result{}, ai.NewRecoverableError(err, "gateway write failed")
	}

	if err := client.WriteBinary(ctx, audio.Int16Bytes()); err != nil {
		return stt.Result{}, ai.NewRecoverableError(err, "gateway audio write failed")
	}

	for {
		env, err := client.Read(ctx)
		if err != nil {
			return stt.Result{}, ai.NewRecoverableError(err, "gateway read failed")
		}

		switch env.Type {
		case "transcript":
			text, _ := env.Data["text"].(string)
			lang, _ := env.Data["language"].(string)
			if lang == "" {
				lang = s.cfg.Language
			}
			return stt.Result{Text: text, Language: lang}, nil
		case "error":
			msg, _ := env.Data["message"].(string)
			return stt.Result{}, ai.NewFatalError(fmt.Errorf("gateway error: %s", msg), "")
		default:
			// progress and keepalive envelopes are ignored
			s.logger.Debug("ignoring envelope", slog.String("type", env.Type))
		}
	}
}

// Capabilities returns the provider's capabilities.
func (s *STT) Capabilities() stt.STTCapabilities {
	return stt.STTCapabilities{
		SupportedLanguages: []string{"ru-RU", "en-US"},
		SampleRates:        []int{16000, 48000},
	}
}
