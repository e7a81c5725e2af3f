package podcast

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/innokenty/voicecast/pkg/ai/llm"
	"github.com/innokenty/voicecast/pkg/ai/tts"
	"github.com/innokenty/voicecast/pkg/audio/wav"
	"github.com/innokenty/voicecast/pkg/session"
)

// Phase is the stage the orchestrator is currently in.
type Phase string

const (
	PhaseSetup    Phase = "setup"
	PhaseOpening  Phase = "opening"
	PhaseRounds   Phase = "rounds"
	PhaseClosing  Phase = "closing"
	PhaseComplete Phase = "complete"
	PhaseFailed   Phase = "failed"
)

// Config configures an Orchestrator.
type Config struct {
	LLM      llm.LLM
	TTS      tts.TTS
	Enricher *Enricher
	Splitter *Splitter
	Roster   *Roster

	// Store, when set, receives a session snapshot on SaveResults.
	Store *Store

	// OutputDir is the base directory for recordings; the session gets a
	// subdirectory named after its ID. Defaults to "output".
	OutputDir string
	// NoAudio disables synthesis entirely; the session becomes text-only.
	NoAudio bool

	Logger *slog.Logger
}

// Orchestrator runs a full podcast recording: setup, the moderator's
// opening, a fixed number of discussion rounds, and a closing summary.
type Orchestrator struct {
	cfg    Config
	logger *slog.Logger

	phase    Phase
	session  *Session
	contexts map[string]*PersonalizedContext
	chats    map[string]*session.Session
	outDir   string
}

// New creates an orchestrator. LLM and Roster are required; Enricher and
// Splitter default to fresh instances.
func New(cfg Config) (*Orchestrator, error) {
	if cfg.LLM == nil {
		return nil, fmt.Errorf("orchestrator requires an LLM backend")
	}
	if cfg.Roster == nil || len(cfg.Roster.All()) == 0 {
		return nil, fmt.Errorf("orchestrator requires a non-empty roster")
	}
	if cfg.Enricher == nil {
		cfg.Enricher = NewEnricher(EnricherConfig{Logger: cfg.Logger})
	}
	if cfg.Splitter == nil {
		cfg.Splitter = NewSplitter()
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = "output"
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Orchestrator{
		cfg:    cfg,
		logger: cfg.Logger,
		phase:  PhaseSetup,
	}, nil
}

// Phase returns the current phase.
func (o *Orchestrator) Phase() Phase {
	return o.phase
}

// Session returns the session being recorded, nil before Start.
func (o *Orchestrator) Session() *Session {
	return o.session
}

// OutputDir returns the directory recordings and transcripts go to.
func (o *Orchestrator) OutputDir() string {
	return o.outDir
}

// Start prepares a recording: creates the session, enriches the topic,
// distributes context and opens one chat per participant.
func (o *Orchestrator) Start(ctx context.Context, topic string, rounds int) error {
	if o.phase != PhaseSetup {
		return fmt.Errorf("orchestrator already started (phase %s)", o.phase)
	}
	if rounds <= 0 {
		rounds = 1
	}

	s := NewSession(topic, rounds)
	if o.cfg.NoAudio || o.cfg.TTS == nil {
		s.OutputFormat = "text"
	}

	o.logger.Info("enriching podcast topic", slog.String("topic", topic))
	enriched := o.cfg.Enricher.Enrich(ctx, topic)
	s.Context = enriched
	s.EnableSearch = o.cfg.Enricher.SearchEnabled()

	o.contexts = o.cfg.Splitter.Split(enriched, o.cfg.Roster)

	o.chats = make(map[string]*session.Session)
	for _, p := range o.cfg.Roster.All() {
		chat, err := session.New(session.Config{
			Backend:      o.cfg.LLM,
			SystemPrompt: p.SystemPrompt(topic, enriched),
			MaxTokens:    p.MaxResponseWords * 3,
			Temperature:  p.Temperature,
			Logger:       o.logger,
		})
		if err != nil {
			return fmt.Errorf("chat for %s: %w", p.ID, err)
		}
		o.chats[p.ID] = chat
		s.Participants = append(s.Participants, p.ID)
	}

	s.SpeakingQueue = o.cfg.Roster.SpeakingOrder()
	if len(s.SpeakingQueue) > 0 {
		s.CurrentSpeaker = s.SpeakingQueue[0]
	}

	o.outDir = filepath.Join(o.cfg.OutputDir, s.ID)
	if err := os.MkdirAll(o.outDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	s.OutputDir = o.outDir

	s.Active = true
	s.LogEvent("session_start", fmt.Sprintf("Подкаст на тему '%s' начат, участников: %d",
		topic, len(s.Participants)))

	o.session = s
	o.phase = PhaseOpening
	o.logger.Info("podcast session ready",
		slog.String("session_id", s.ID),
		slog.Int("rounds", s.MaxRounds),
		slog.String("output_dir", o.outDir))
	return nil
}

// Run records the whole podcast: opening, rounds, closing. A moderator
// failure during the opening fails the session; a single speaker failure
// only skips that turn.
func (o *Orchestrator) Run(ctx context.Context) error {
	if o.phase != PhaseOpening {
		return fmt.Errorf("Run requires Start first (phase %s)", o.phase)
	}

	if err := o.runOpening(ctx); err != nil {
		return err
	}

	o.phase = PhaseRounds
	for o.session.StartNewRound() {
		if err := o.runRound(ctx); err != nil {
			o.logger.Warn("round aborted", slog.Int("round", o.session.CurrentRound),
				slog.String("error", err.Error()))
			break
		}
	}

	o.phase = PhaseClosing
	o.runClosing(ctx)

	o.session.Complete()
	o.phase = PhaseComplete
	o.logger.Info("podcast complete",
		slog.String("session_id", o.session.ID),
		slog.Int("utterances", len(o.session.Transcript)))
	return nil
}

func (o *Orchestrator) runOpening(ctx context.Context) error {
	mod, ok := o.cfg.Roster.Moderator()
	if !ok {
		return o.fail("в составе участников нет модератора")
	}

	var speakers []string
	for _, p := range o.cfg.Roster.Speakers() {
		speakers = append(speakers, fmt.Sprintf("%s (%s)", p.Name, strings.Join(p.Expertise, ", ")))
	}
	prompt := fmt.Sprintf(
		"Открой подкаст на тему %q. Представь тему и участников: %s. "+
			"Расскажи, почему тема актуальна, и объяви начало обсуждения.",
		o.session.Topic, strings.Join(speakers, "; "))

	if _, err := o.speak(ctx, mod, prompt, "opening"); err != nil {
		return o.fail(fmt.Sprintf("модератор не смог открыть подкаст: %v", err))
	}
	return nil
}

func (o *Orchestrator) runRound(ctx context.Context) error {
	mod, _ := o.cfg.Roster.Moderator()
	round := o.session.CurrentRound

	var lineup []string
	for _, p := range o.cfg.Roster.Speakers() {
		areas := p.Expertise
		if len(areas) > 2 {
			areas = areas[:2]
		}
		lineup = append(lineup, fmt.Sprintf("%s — %s", p.Name, strings.Join(areas, ", ")))
	}
	intro := fmt.Sprintf(
		"Начни раунд %d обсуждения. Спикеры этого раунда: %s. "+
			"Задай открытый вопрос, обращаясь к первому спикеру по имени.",
		round, strings.Join(lineup, "; "))

	if _, err := o.speak(ctx, mod, intro, fmt.Sprintf("round_%d_intro", round)); err != nil {
		return fmt.Errorf("round %d intro: %w", round, err)
	}

	for _, p := range o.cfg.Roster.Speakers() {
		question := o.lastModeratorText(mod.ID)
		prompt := fmt.Sprintf(
			"Модератор сказал: %q\n\nОтветь из своей области экспертизы, "+
				"приведи конкретный пример.", question)

		if _, err := o.speak(ctx, p, prompt, fmt.Sprintf("response_%d", round)); err != nil {
			o.logger.Warn("speaker turn skipped",
				slog.String("participant", p.ID),
				slog.String("error", err.Error()))
			o.session.LogEvent("speaker_error",
				fmt.Sprintf("Спикер %s пропустил ход в раунде %d", p.Name, round))
			continue
		}
		o.session.AdvanceSpeaker()
	}
	return nil
}

func (o *Orchestrator) runClosing(ctx context.Context) {
	mod, ok := o.cfg.Roster.Moderator()
	if !ok {
		return
	}

	var points []string
	for _, p := range o.cfg.Roster.Speakers() {
		entries := o.session.TranscriptFor(p.ID)
		if len(entries) == 0 {
			continue
		}
		points = append(points, fmt.Sprintf("%s: %s", p.Name, truncateRunes(entries[0].Text, 100)))
	}

	prompt := fmt.Sprintf(
		"Подведи итоги подкаста на тему %q. Основные моменты обсуждения:\n%s\n\n"+
			"Поблагодари участников и попрощайся со слушателями.",
		o.session.Topic, strings.Join(points, "\n"))

	if _, err := o.speak(ctx, mod, prompt, "closing"); err != nil {
		o.logger.Warn("closing skipped", slog.String("error", err.Error()))
		o.session.LogEvent("error", "Модератор не смог завершить подкаст")
	}
}

// speak sends the prompt to the participant's chat, records the reply in
// the transcript and synthesizes audio for it.
func (o *Orchestrator) speak(ctx context.Context, p *Profile, prompt, segment string) (string, error) {
	chat, ok := o.chats[p.ID]
	if !ok {
		return "", fmt.Errorf("no chat for participant %s", p.ID)
	}

	text, err := chat.Send(ctx, prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("empty reply from %s", p.ID)
	}

	o.session.AddTranscriptEntry(p, text, nil)
	o.logger.Info("utterance recorded",
		slog.String("participant", p.ID),
		slog.String("segment", segment),
		slog.Int("chars", len(text)))

	o.synthesize(ctx, p, text, segment)
	return text, nil
}

// synthesize renders the utterance to a WAV file next to the transcript.
// Synthesis problems are logged, never fatal: the text transcript is the
// source of truth.
func (o *Orchestrator) synthesize(ctx context.Context, p *Profile, text, segment string) {
	if o.session.OutputFormat == "text" || o.cfg.TTS == nil {
		return
	}

	frame, err := o.cfg.TTS.Synthesize(ctx, tts.SynthesizeRequest{
		Text:     text,
		Voice:    p.Voice.Speaker,
		Language: "ru",
		Speed:    p.Voice.Speed,
	})
	if err != nil {
		o.logger.Warn("synthesis failed",
			slog.String("participant", p.ID),
			slog.String("error", err.Error()))
		o.session.LogEvent("tts_error",
			fmt.Sprintf("Не удалось синтезировать реплику %s", p.Name))
		return
	}

	filename := fmt.Sprintf("%s_%s_%d.wav", p.ID, segment, time.Now().Unix())
	path := filepath.Join(o.outDir, filename)
	if err := wav.WriteFile(path, frame); err != nil {
		o.logger.Warn("audio write failed",
			slog.String("path", path),
			slog.String("error", err.Error()))
		return
	}

	if n := len(o.session.Transcript); n > 0 {
		o.session.Transcript[n-1].AudioFile = filename
	}
}

// lastModeratorText scans the transcript backwards for the moderator's
// most recent utterance.
func (o *Orchestrator) lastModeratorText(moderatorID string) string {
	for i := len(o.session.Transcript) - 1; i >= 0; i-- {
		if o.session.Transcript[i].ParticipantID == moderatorID {
			return o.session.Transcript[i].Text
		}
	}
	return o.session.Topic
}

func (o *Orchestrator) fail(msg string) error {
	o.phase = PhaseFailed
	if o.session != nil {
		o.session.Active = false
		o.session.LogEvent("error", msg)
	}
	o.logger.Error("podcast failed", slog.String("reason", msg))
	return fmt.Errorf("podcast failed: %s", msg)
}

// SaveResults writes transcript.json and transcript.md into the output
// directory and snapshots the session into the store when one is
// configured. Safe to call after a failed run: it saves what was recorded.
func (o *Orchestrator) SaveResults() error {
	if o.session == nil {
		return fmt.Errorf("nothing to save: Start was never called")
	}

	data, err := json.MarshalIndent(o.session, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal transcript: %w", err)
	}
	jsonPath := filepath.Join(o.outDir, "transcript.json")
	if err := os.WriteFile(jsonPath, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", jsonPath, err)
	}

	mdPath := filepath.Join(o.outDir, "transcript.md")
	if err := os.WriteFile(mdPath, []byte(o.renderMarkdown()), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", mdPath, err)
	}

	if o.cfg.Store != nil {
		if err := o.cfg.Store.SaveSession(o.session); err != nil {
			return err
		}
	}

	o.logger.Info("results saved",
		slog.String("json", jsonPath),
		slog.String("markdown", mdPath))
	return nil
}

func (o *Orchestrator) renderMarkdown() string {
	s := o.session

	var b strings.Builder
	fmt.Fprintf(&b, "# Подкаст: %s\n\n", s.Topic)
	fmt.Fprintf(&b, "- Дата: %s\n", s.CreatedAt.Format("2006-01-02 15:04"))
	fmt.Fprintf(&b, "- Раундов: %d\n", s.CurrentRound)

	var names []string
	for _, id := range s.Participants {
		if p, ok := o.cfg.Roster.Get(id); ok {
			names = append(names, p.Name)
		} else {
			names = append(names, id)
		}
	}
	fmt.Fprintf(&b, "- Участники: %s\n\n", strings.Join(names, ", "))

	for _, e := range s.Transcript {
		fmt.Fprintf(&b, "**[%s] %s:** %s\n\n",
			e.Timestamp.Format("15:04:05"), e.ParticipantName, e.Text)
	}
	return b.String()
}
