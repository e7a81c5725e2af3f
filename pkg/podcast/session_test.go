package podcast

import (
	"strings"
	"testing"
)

func TestNewSessionDefaults(t *testing.T) {
	s := NewSession("космос", 3)

	if !strings.HasPrefix(s.ID, "podcast_") {
		t.Errorf("ID = %q, want podcast_ prefix", s.ID)
	}
	if s.MaxRounds != 3 {
		t.Errorf("MaxRounds = %d, want 3", s.MaxRounds)
	}
	if !s.EnableSearch {
		t.Error("EnableSearch should default to true")
	}
	if s.OutputFormat != "both" {
		t.Errorf("OutputFormat = %q, want both", s.OutputFormat)
	}
	if s.Active || s.Completed {
		t.Error("new session must be inactive and incomplete")
	}
}

func TestSpeakerRotation(t *testing.T) {
	s := NewSession("тема", 1)
	s.SpeakingQueue = []string{"moderator", "tech_expert", "business_analyst"}
	s.CurrentSpeaker = "moderator"

	next, ok := s.NextSpeaker()
	if !ok || next != "moderator" {
		t.Fatalf("NextSpeaker() = %q, %v; want moderator", next, ok)
	}

	got, ok := s.AdvanceSpeaker()
	if !ok || got != "tech_expert" {
		t.Fatalf("AdvanceSpeaker() = %q, %v; want tech_expert", got, ok)
	}
	wantQueue := []string{"tech_expert", "business_analyst", "moderator"}
	for i, id := range wantQueue {
		if s.SpeakingQueue[i] != id {
			t.Errorf("queue[%d] = %q, want %q", i, s.SpeakingQueue[i], id)
		}
	}

	s.AdvanceSpeaker()
	s.AdvanceSpeaker()
	if s.CurrentSpeaker != "moderator" {
		t.Errorf("after full rotation CurrentSpeaker = %q, want moderator", s.CurrentSpeaker)
	}
}

func TestAdvanceSpeakerEmptyQueue(t *testing.T) {
	s := NewSession("тема", 1)
	if _, ok := s.AdvanceSpeaker(); ok {
		t.Error("AdvanceSpeaker() on empty queue should report false")
	}
}

func TestStartNewRoundCap(t *testing.T) {
	s := NewSession("тема", 2)
	s.Active = true

	if !s.StartNewRound() || !s.StartNewRound() {
		t.Fatal("first two rounds should start")
	}
	events := len(s.Events)

	if s.StartNewRound() {
		t.Error("round past MaxRounds should be refused")
	}
	if s.CurrentRound != 2 {
		t.Errorf("CurrentRound = %d, want 2 after refusal", s.CurrentRound)
	}
	if len(s.Events) != events {
		t.Error("refused round must not log an event")
	}
	if s.CanContinue() {
		t.Error("CanContinue() should be false at the round cap")
	}
}

func TestTranscript(t *testing.T) {
	s := NewSession("тема", 1)
	mod := DefaultModerator()
	tech := TechExpert()

	s.AddTranscriptEntry(mod, "Добрый день!", nil)
	s.AddTranscriptEntry(tech, "Рада участвовать.", nil)
	s.AddTranscriptEntry(mod, "Начнем.", nil)

	forMod := s.TranscriptFor(mod.ID)
	if len(forMod) != 2 {
		t.Fatalf("TranscriptFor(moderator) = %d entries, want 2", len(forMod))
	}
	if forMod[1].Text != "Начнем." {
		t.Errorf("second moderator entry = %q", forMod[1].Text)
	}

	text := s.TranscriptText()
	if !strings.Contains(text, "Максим: Добрый день!") {
		t.Errorf("TranscriptText() missing moderator line:\n%s", text)
	}
	if !strings.Contains(text, "Анна: Рада участвовать.") {
		t.Errorf("TranscriptText() missing speaker line:\n%s", text)
	}
}
