// Package session maintains a conversation with an LLM backend: a
// system-first message history, a Send operation and reset semantics.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/innokenty/voicecast/pkg/ai/llm"
)

// DefaultSystemPrompt is the assistant's personality when none is given.
const DefaultSystemPrompt = "Ты — Иннокентий, дружелюбный голосовой ассистент. " +
	"Отвечай кратко и по делу, на русском языке."

// Config configures a Session.
type Config struct {
	Backend      llm.LLM
	SystemPrompt string
	MaxTokens    int
	Temperature  float32
	Logger       *slog.Logger
}

// Session is a conversation with an LLM. The history always starts with
// exactly one system message. Safe for concurrent use.
type Session struct {
	mu      sync.Mutex
	backend llm.LLM
	system  string
	history []llm.Message

	maxTokens   int
	temperature float32
	logger      *slog.Logger
}

// New creates a session with the system prompt as the first history entry.
func New(cfg Config) (*Session, error) {
	if cfg.Backend == nil {
		return nil, fmt.Errorf("session requires an LLM backend")
	}
	if cfg.SystemPrompt == "" {
		cfg.SystemPrompt = DefaultSystemPrompt
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 512
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return &Session{
		backend:     cfg.Backend,
		system:      cfg.SystemPrompt,
		history:     []llm.Message{{Role: llm.RoleSystem, Content: cfg.SystemPrompt}},
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		logger:      cfg.Logger,
	}, nil
}

// Send appends the user message, asks the backend for a reply with the full
// history, filters reasoning markup from it and appends the result. On
// backend failure the user message stays in the history and an error is
// returned; the caller decides whether to retry or degrade.
func (s *Session) Send(ctx context.Context, text string) (string, error) {
	s.mu.Lock()
	s.history = append(s.history, llm.Message{Role: llm.RoleUser, Content: text})
	messages := make([]llm.Message, len(s.history))
	copy(messages, s.history)
	s.mu.Unlock()

	resp, err := s.backend.Chat(ctx, llm.ChatRequest{
		Messages:    messages,
		MaxTokens:   s.maxTokens,
		Temperature: s.temperature,
	})
	if err != nil {
		s.logger.Warn("chat backend failed", slog.String("error", err.Error()))
		return "", fmt.Errorf("send failed: %w", err)
	}

	reply := FilterThinking(resp.Message.Content)

	s.mu.Lock()
	s.history = append(s.history, llm.Message{Role: llm.RoleAssistant, Content: reply})
	s.mu.Unlock()

	s.logger.Debug("assistant reply recorded",
		slog.Int("tokens", resp.TokensUsed),
		slog.Int("reply_len", len(reply)))
	return reply, nil
}

// Reset truncates the history back to the original system message.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = []llm.Message{{Role: llm.RoleSystem, Content: s.system}}
}

// ResetSystem replaces the system prompt and clears the conversation.
func (s *Session) ResetSystem(prompt string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.system = prompt
	s.history = []llm.Message{{Role: llm.RoleSystem, Content: prompt}}
}

// History returns a copy of the full history including the system message.
func (s *Session) History() []llm.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]llm.Message, len(s.history))
	copy(out, s.history)
	return out
}

// Len returns the number of conversation turns, excluding the system
// message.
func (s *Session) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.history) - 1
}

// LastUser returns the most recent user message.
func (s *Session) LastUser() (string, bool) {
	return s.last(llm.RoleUser)
}

// LastAssistant returns the most recent assistant reply.
func (s *Session) LastAssistant() (string, bool) {
	return s.last(llm.RoleAssistant)
}

func (s *Session) last(role llm.MessageRole) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.history) - 1; i >= 0; i-- {
		if s.history[i].Role == role {
			return s.history[i].Content, true
		}
	}
	return "", false
}
