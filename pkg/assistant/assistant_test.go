package assistant

import (
	"testing"
	"time"

	sttfake "github.com/innokenty/voicecast/pkg/ai/stt/fake"
	ttsfake "github.com/innokenty/voicecast/pkg/ai/tts/fake"
	wakefake "github.com/innokenty/voicecast/pkg/ai/wake/fake"
	"github.com/innokenty/voicecast/pkg/rtc"
	"github.com/innokenty/voicecast/pkg/session"
	"github.com/innokenty/voicecast/pkg/voice"

	llmfake "github.com/innokenty/voicecast/pkg/ai/llm/fake"
)

// newTestAssistant wires an assistant whose wake engine fires on the first
// frame and whose stop policy ends a recording after 5 silent frames.
func newTestAssistant(t *testing.T, transcript string, replies chan Reply) (*Assistant, *sttfake.FakeSTT, *ttsfake.FakeTTS) {
	t.Helper()

	engine := wakefake.NewFakeEngine("привет кентий", 1)
	detector, err := NewDetector(DetectorConfig{
		Engine:     engine,
		Keywords:   []string{"кентий"},
		SampleRate: 16000,
	})
	if err != nil {
		t.Fatalf("NewDetector() error = %v", err)
	}

	sttProv := sttfake.NewFakeSTT(transcript)
	ttsProv := ttsfake.NewFakeTTS()

	a, err := New(Config{
		Detector: detector,
		STT:      sttProv,
		TTS:      ttsProv,
		Gate:     voice.NewGate(voice.GateConfig{Threshold: 0.01}),
		StopPolicy: voice.NewStopPolicy(voice.StopConfig{
			PauseThreshold:  50 * time.Millisecond,
			FramesPerSecond: 100,
		}),
		OnReply: func(r Reply) {
			if replies != nil {
				replies <- r
			}
		},
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { a.Close() })

	return a, sttProv, ttsProv
}

func silentFrame() *rtc.AudioFrame {
	return &rtc.AudioFrame{Samples: make([]float32, 160), SampleRate: 16000}
}

func voicedFrame(value float32) *rtc.AudioFrame {
	samples := make([]float32, 160)
	for i := range samples {
		samples[i] = value
	}
	return &rtc.AudioFrame{Samples: samples, SampleRate: 16000}
}

// driveRecordingToPause feeds calibration frames plus enough silence for
// the stop policy to end the recording.
func driveRecordingToPause(a *Assistant) {
	for i := 0; i < voice.CalibrationFrames+5; i++ {
		if a.State() != StateRecording {
			return
		}
		a.ProcessFrame(silentFrame())
	}
}

func waitForState(t *testing.T, a *Assistant, want State) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		if a.State() == want {
			return
		}
		select {
		case <-deadline:
			t.Fatalf("state = %v, want %v", a.State(), want)
		case <-time.After(time.Millisecond):
		}
	}
}

func TestAssistantFullTurn(t *testing.T) {
	replies := make(chan Reply, 1)
	a, _, ttsProv := newTestAssistant(t, "который час", replies)

	if a.State() != StateListening {
		t.Fatalf("initial state = %v, want Listening", a.State())
	}

	// The wake engine fires on the first frame.
	a.ProcessFrame(voicedFrame(0.3))
	if a.State() != StateRecording {
		t.Fatalf("state after trigger = %v, want Recording", a.State())
	}

	driveRecordingToPause(a)

	var reply Reply
	select {
	case reply = <-replies:
	case <-time.After(2 * time.Second):
		t.Fatal("no reply produced")
	}

	if reply.Transcript != "который час" {
		t.Errorf("transcript = %q", reply.Transcript)
	}
	if reply.Text != "который час" {
		t.Errorf("reply text = %q, want echo of transcript without a session", reply.Text)
	}
	if reply.Audio == nil || len(reply.Audio.Samples) == 0 {
		t.Error("reply has no audio")
	}
	if reply.StopReason != StopPause {
		t.Errorf("stop reason = %q, want pause", reply.StopReason)
	}
	if ttsProv.CallCount() != 1 {
		t.Errorf("TTS calls = %d, want 1", ttsProv.CallCount())
	}

	waitForState(t, a, StateListening)
}

func TestAssistantRecordingIncludesPreTrigger(t *testing.T) {
	replies := make(chan Reply, 1)
	a, sttProv, _ := newTestAssistant(t, "проверка", replies)

	// The trigger frame carries a distinctive value so it can be found
	// at the head of the recording.
	a.ProcessFrame(voicedFrame(0.5))
	driveRecordingToPause(a)

	select {
	case <-replies:
	case <-time.After(2 * time.Second):
		t.Fatal("no reply produced")
	}

	audio := sttProv.LastAudio()
	if audio == nil {
		t.Fatal("STT saw no audio")
	}
	// The recording starts with the pre-trigger snapshot, which is the
	// trigger frame itself.
	if len(audio.Samples) < 160 {
		t.Fatalf("recording has %d samples, want at least 160", len(audio.Samples))
	}
	for i := 0; i < 160; i++ {
		if audio.Samples[i] != 0.5 {
			t.Fatalf("recording[%d] = %f, want pre-trigger value 0.5", i, audio.Samples[i])
		}
	}
}

func TestAssistantBlankTranscriptSkipsSynthesis(t *testing.T) {
	a, _, ttsProv := newTestAssistant(t, "   ", nil)

	a.ProcessFrame(voicedFrame(0.3))
	driveRecordingToPause(a)

	waitForState(t, a, StateListening)

	if ttsProv.CallCount() != 0 {
		t.Errorf("TTS calls = %d after blank transcript, want 0", ttsProv.CallCount())
	}
	if a.Metrics().EmptyRecordings.Value() != 1 {
		t.Errorf("empty recordings = %d, want 1", a.Metrics().EmptyRecordings.Value())
	}
}

func TestAssistantTimeoutStop(t *testing.T) {
	engine := wakefake.NewFakeEngine("кентий", 1)
	detector, err := NewDetector(DetectorConfig{
		Engine:   engine,
		Keywords: []string{"кентий"},
	})
	if err != nil {
		t.Fatalf("NewDetector() error = %v", err)
	}

	replies := make(chan Reply, 1)
	a, err := New(Config{
		Detector: detector,
		STT:      sttfake.NewFakeSTT("длинный монолог"),
		TTS:      ttsfake.NewFakeTTS(),
		// A pause threshold far above anything the test reaches, so only
		// the deadline can stop the recording.
		StopPolicy: voice.NewStopPolicy(voice.StopConfig{
			PauseThreshold:  time.Hour,
			FramesPerSecond: 100,
		}),
		MaxRecording: 30 * time.Millisecond,
		OnReply:      func(r Reply) { replies <- r },
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer a.Close()

	a.ProcessFrame(voicedFrame(0.3))
	if a.State() != StateRecording {
		t.Fatalf("state = %v, want Recording", a.State())
	}

	select {
	case reply := <-replies:
		if reply.StopReason != StopTimeout {
			t.Errorf("stop reason = %q, want timeout", reply.StopReason)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("deadline did not stop the recording")
	}

	waitForState(t, a, StateListening)
}

func TestAssistantConversationTurn(t *testing.T) {
	engine := wakefake.NewFakeEngine("кентий", 1)
	detector, err := NewDetector(DetectorConfig{
		Engine:   engine,
		Keywords: []string{"кентий"},
	})
	if err != nil {
		t.Fatalf("NewDetector() error = %v", err)
	}

	sess, err := session.New(session.Config{
		Backend: llmfake.NewFakeLLM("Сейчас полдень."),
	})
	if err != nil {
		t.Fatalf("session.New() error = %v", err)
	}

	replies := make(chan Reply, 1)
	a, err := New(Config{
		Detector: detector,
		STT:      sttfake.NewFakeSTT("который час"),
		TTS:      ttsfake.NewFakeTTS(),
		Session:  sess,
		StopPolicy: voice.NewStopPolicy(voice.StopConfig{
			PauseThreshold:  50 * time.Millisecond,
			FramesPerSecond: 100,
		}),
		OnReply: func(r Reply) { replies <- r },
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer a.Close()

	a.ProcessFrame(voicedFrame(0.3))
	driveRecordingToPause(a)

	select {
	case reply := <-replies:
		if reply.Transcript != "который час" {
			t.Errorf("transcript = %q", reply.Transcript)
		}
		if reply.Text != "Сейчас полдень. (You said: который час)" {
			t.Errorf("reply text = %q", reply.Text)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no reply produced")
	}

	// The conversation turn is in the session history.
	if sess.Len() != 2 {
		t.Errorf("session.Len() = %d, want 2", sess.Len())
	}
}
