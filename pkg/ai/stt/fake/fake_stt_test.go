package fake

import (
	"context"
	"errors"
	"testing"

	"github.com/innokenty/voicecast/pkg/rtc"
)

func TestFakeSTTScriptedTranscripts(t *testing.T) {
	f := NewFakeSTT("первый", "второй")
	ctx := context.Background()
	frame := &rtc.AudioFrame{Samples: make([]float32, 160), SampleRate: 16000}

	r1, err := f.Transcribe(ctx, frame)
	if err != nil {
		t.Fatalf("Transcribe() error = %v", err)
	}
	r2, err := f.Transcribe(ctx, frame)
	if err != nil {
		t.Fatalf("Transcribe() error = %v", err)
	}
	r3, err := f.Transcribe(ctx, frame)
	if err != nil {
		t.Fatalf("Transcribe() error = %v", err)
	}

	if r1.Text != "первый" {
		t.Errorf("first transcript = %q, want %q", r1.Text, "первый")
	}
	if r2.Text != "второй" {
		t.Errorf("second transcript = %q, want %q", r2.Text, "второй")
	}
	if r3.Text != "второй" {
		t.Errorf("third transcript = %q, want repeat of last %q", r3.Text, "второй")
	}
	if f.CallCount() != 3 {
		t.Errorf("CallCount() = %d, want 3", f.CallCount())
	}
}

func TestFakeSTTDefaultTranscript(t *testing.T) {
	f := NewFakeSTT()
	r, err := f.Transcribe(context.Background(), &rtc.AudioFrame{SampleRate: 16000})
	if err != nil {
		t.Fatalf("Transcribe() error = %v", err)
	}
	if r.Text != DefaultTranscript {
		t.Errorf("transcript = %q, want default", r.Text)
	}
}

func TestFakeSTTFailWith(t *testing.T) {
	f := NewFakeSTT("ok")
	wantErr := errors.New("engine offline")
	f.FailWith(wantErr)

	_, err := f.Transcribe(context.Background(), &rtc.AudioFrame{SampleRate: 16000})
	if !errors.Is(err, wantErr) {
		t.Errorf("Transcribe() error = %v, want %v", err, wantErr)
	}
}
