package podcast

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/innokenty/voicecast/pkg/ai/llm"
	llmfake "github.com/innokenty/voicecast/pkg/ai/llm/fake"
	ttsfake "github.com/innokenty/voicecast/pkg/ai/tts/fake"
)

func testRoster() *Roster {
	r := NewRoster()
	r.Add(DefaultModerator())
	r.Add(TechExpert())
	r.Add(BusinessAnalyst())
	return r
}

func newTestOrchestrator(t *testing.T, cfg Config) *Orchestrator {
	t.Helper()
	if cfg.LLM == nil {
		cfg.LLM = llmfake.NewFakeLLM("Отличный вопрос, давайте обсудим.")
	}
	if cfg.Roster == nil {
		cfg.Roster = testRoster()
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = t.TempDir()
	}
	o, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return o
}

func TestRunRecordsAllSegments(t *testing.T) {
	o := newTestOrchestrator(t, Config{NoAudio: true})
	ctx := context.Background()

	if err := o.Start(ctx, "искусственный интеллект", 1); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if err := o.Run(ctx); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if o.Phase() != PhaseComplete {
		t.Errorf("Phase() = %q, want complete", o.Phase())
	}

	s := o.Session()
	if !s.Completed || s.Active {
		t.Error("session should be completed and inactive")
	}

	// Opening, round intro, two speaker responses, closing.
	if len(s.Transcript) != 5 {
		t.Fatalf("got %d transcript entries, want 5", len(s.Transcript))
	}
	wantSpeakers := []string{"moderator", "moderator", "tech_expert", "business_analyst", "moderator"}
	for i, want := range wantSpeakers {
		if s.Transcript[i].ParticipantID != want {
			t.Errorf("transcript[%d] by %q, want %q", i, s.Transcript[i].ParticipantID, want)
		}
	}
	for i, e := range s.Transcript {
		if e.AudioFile != "" {
			t.Errorf("transcript[%d] has audio %q in text-only mode", i, e.AudioFile)
		}
	}
}

func TestRunWritesAudio(t *testing.T) {
	o := newTestOrchestrator(t, Config{TTS: ttsfake.NewFakeTTS()})
	ctx := context.Background()

	if err := o.Start(ctx, "технологии", 1); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if err := o.Run(ctx); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	for i, e := range o.Session().Transcript {
		if e.AudioFile == "" {
			t.Errorf("transcript[%d] has no audio file", i)
			continue
		}
		path := filepath.Join(o.OutputDir(), e.AudioFile)
		if _, err := os.Stat(path); err != nil {
			t.Errorf("audio file %s: %v", path, err)
		}
	}
}

// selectiveLLM fails for one participant, identified by a marker in the
// system prompt, and delegates everything else.
type selectiveLLM struct {
	inner   llm.LLM
	failFor string
}

func (s *selectiveLLM) Chat(ctx context.Context, req llm.ChatRequest) (llm.ChatResponse, error) {
	if len(req.Messages) > 0 && strings.Contains(req.Messages[0].Content, s.failFor) {
		return llm.ChatResponse{}, errors.New("backend down")
	}
	return s.inner.Chat(ctx, req)
}

func (s *selectiveLLM) Capabilities() llm.LLMCapabilities {
	return s.inner.Capabilities()
}

func TestSpeakerFailureSkipsTurn(t *testing.T) {
	backend := &selectiveLLM{
		inner:   llmfake.NewFakeLLM("Продолжаем обсуждение."),
		failFor: "Твое имя: Анна",
	}
	o := newTestOrchestrator(t, Config{LLM: backend, NoAudio: true})
	ctx := context.Background()

	if err := o.Start(ctx, "технологии", 1); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if err := o.Run(ctx); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	s := o.Session()
	if len(s.Transcript) != 4 {
		t.Fatalf("got %d entries, want 4 with one speaker skipped", len(s.Transcript))
	}
	for _, e := range s.Transcript {
		if e.ParticipantID == "tech_expert" {
			t.Error("failed speaker should not appear in the transcript")
		}
	}

	var skipped bool
	for _, ev := range s.Events {
		if ev.Type == "speaker_error" {
			skipped = true
		}
	}
	if !skipped {
		t.Error("skip should be recorded as a speaker_error event")
	}
}

func TestMissingModeratorFails(t *testing.T) {
	r := NewRoster()
	r.Add(TechExpert())
	o := newTestOrchestrator(t, Config{Roster: r, NoAudio: true})
	ctx := context.Background()

	if err := o.Start(ctx, "технологии", 1); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if err := o.Run(ctx); err == nil {
		t.Fatal("Run() without a moderator should fail")
	}

	if o.Phase() != PhaseFailed {
		t.Errorf("Phase() = %q, want failed", o.Phase())
	}
	if o.Session().Active {
		t.Error("failed session should be inactive")
	}
}

func TestModeratorOpeningFailureFailsSession(t *testing.T) {
	backend := llmfake.NewFakeLLM()
	backend.FailWith(errors.New("model not loaded"))
	o := newTestOrchestrator(t, Config{LLM: backend, NoAudio: true})
	ctx := context.Background()

	if err := o.Start(ctx, "технологии", 1); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if err := o.Run(ctx); err == nil {
		t.Fatal("Run() should fail when the moderator cannot open")
	}
	if o.Phase() != PhaseFailed {
		t.Errorf("Phase() = %q, want failed", o.Phase())
	}
}

func TestSaveResults(t *testing.T) {
	o := newTestOrchestrator(t, Config{NoAudio: true})
	ctx := context.Background()

	if err := o.Start(ctx, "образование", 1); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if err := o.Run(ctx); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if err := o.SaveResults(); err != nil {
		t.Fatalf("SaveResults() error = %v", err)
	}

	data, err := os.ReadFile(filepath.Join(o.OutputDir(), "transcript.json"))
	if err != nil {
		t.Fatalf("transcript.json: %v", err)
	}
	var saved Session
	if err := json.Unmarshal(data, &saved); err != nil {
		t.Fatalf("transcript.json does not parse: %v", err)
	}
	if saved.ID != o.Session().ID {
		t.Errorf("saved ID = %q, want %q", saved.ID, o.Session().ID)
	}
	if len(saved.Transcript) != 5 {
		t.Errorf("saved transcript has %d entries, want 5", len(saved.Transcript))
	}

	md, err := os.ReadFile(filepath.Join(o.OutputDir(), "transcript.md"))
	if err != nil {
		t.Fatalf("transcript.md: %v", err)
	}
	if !strings.Contains(string(md), "# Подкаст: образование") {
		t.Error("transcript.md missing header")
	}
	if !strings.Contains(string(md), "**[") {
		t.Error("transcript.md missing utterance lines")
	}
}

func TestStartTwiceRefused(t *testing.T) {
	o := newTestOrchestrator(t, Config{NoAudio: true})
	ctx := context.Background()

	if err := o.Start(ctx, "тема", 1); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if err := o.Start(ctx, "тема", 1); err == nil {
		t.Error("second Start() should be refused")
	}
}
