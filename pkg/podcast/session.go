package podcast

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// TranscriptEntry is one utterance in the podcast transcript.
type TranscriptEntry struct {
	ParticipantID   string    `json:"participant_id"`
	ParticipantName string    `json:"participant_name"`
	Role            Role      `json:"role"`
	Text            string    `json:"text"`
	Timestamp       time.Time `json:"timestamp"`
	AudioFile       string    `json:"audio_file,omitempty"`
	Sources         []string  `json:"sources,omitempty"`
	Round           int       `json:"round_number"`
}

// Event records something that happened during the session.
type Event struct {
	Timestamp     time.Time      `json:"timestamp"`
	Type          string         `json:"event_type"`
	Message       string         `json:"message"`
	ParticipantID string         `json:"participant_id,omitempty"`
	Extra         map[string]any `json:"extra_data,omitempty"`
}

// Session holds the full state of one podcast recording.
type Session struct {
	Topic     string    `json:"topic"`
	ID        string    `json:"session_id"`
	CreatedAt time.Time `json:"created_at"`

	Participants   []string `json:"participants"`
	SpeakingQueue  []string `json:"speaking_queue"`
	CurrentSpeaker string   `json:"current_speaker,omitempty"`

	MaxRounds    int    `json:"max_rounds"`
	CurrentRound int    `json:"current_round"`
	EnableSearch bool   `json:"enable_search"`
	OutputFormat string `json:"output_format"` // "audio", "text" or "both"
	OutputDir    string `json:"output_directory,omitempty"`

	Context    *Context          `json:"enriched_context,omitempty"`
	Transcript []TranscriptEntry `json:"transcript"`
	Events     []Event           `json:"events"`

	Active    bool `json:"is_active"`
	Completed bool `json:"is_completed"`
}

// NewSession creates an inactive session with a unique identifier.
func NewSession(topic string, maxRounds int) *Session {
	now := time.Now()
	return &Session{
		Topic:        topic,
		ID:           fmt.Sprintf("podcast_%s_%s", now.Format("20060102_150405"), uuid.NewString()[:8]),
		CreatedAt:    now,
		MaxRounds:    maxRounds,
		EnableSearch: true,
		OutputFormat: "both",
	}
}

// AddTranscriptEntry appends an utterance stamped with the current round.
func (s *Session) AddTranscriptEntry(p *Profile, text string, sources []string) {
	s.Transcript = append(s.Transcript, TranscriptEntry{
		ParticipantID:   p.ID,
		ParticipantName: p.Name,
		Role:            p.Role,
		Text:            text,
		Timestamp:       time.Now(),
		Sources:         sources,
		Round:           s.CurrentRound,
	})
}

// LogEvent appends a session event.
func (s *Session) LogEvent(eventType, message string) {
	s.Events = append(s.Events, Event{
		Timestamp: time.Now(),
		Type:      eventType,
		Message:   message,
	})
}

// NextSpeaker returns the head of the speaking queue without advancing.
func (s *Session) NextSpeaker() (string, bool) {
	if len(s.SpeakingQueue) == 0 {
		return "", false
	}
	return s.SpeakingQueue[0], true
}

// AdvanceSpeaker rotates the queue: the head moves to the back and the new
// head becomes the current speaker.
func (s *Session) AdvanceSpeaker() (string, bool) {
	if len(s.SpeakingQueue) == 0 {
		return "", false
	}

	current := s.SpeakingQueue[0]
	s.SpeakingQueue = append(s.SpeakingQueue[1:], current)
	s.CurrentSpeaker = s.SpeakingQueue[0]
	return s.CurrentSpeaker, true
}

// StartNewRound increments the round counter. Past MaxRounds it refuses
// without mutating anything.
func (s *Session) StartNewRound() bool {
	if s.CurrentRound >= s.MaxRounds {
		return false
	}
	s.CurrentRound++
	s.LogEvent("round_start", fmt.Sprintf("Начался раунд %d", s.CurrentRound))
	return true
}

// CanContinue reports whether another round may run.
func (s *Session) CanContinue() bool {
	return !s.Completed && s.Active && s.CurrentRound < s.MaxRounds
}

// Complete marks the session finished.
func (s *Session) Complete() {
	s.Active = false
	s.Completed = true
	s.LogEvent("session_complete", "Сессия подкаста завершена")
}

// TranscriptFor returns every transcript entry by the given participant.
func (s *Session) TranscriptFor(participantID string) []TranscriptEntry {
	var out []TranscriptEntry
	for _, e := range s.Transcript {
		if e.ParticipantID == participantID {
			out = append(out, e)
		}
	}
	return out
}

// TranscriptText renders the transcript as human-readable lines.
func (s *Session) TranscriptText() string {
	lines := make([]string, 0, len(s.Transcript))
	for _, e := range s.Transcript {
		lines = append(lines, fmt.Sprintf("[%s] %s: %s",
			e.Timestamp.Format("15:04:05"), e.ParticipantName, e.Text))
	}
	return strings.Join(lines, "\n")
}
