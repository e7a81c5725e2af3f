package fake

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/innokenty/voicecast/pkg/ai/llm"
)

// FakeLLM is a fake LLM implementation for testing.
type FakeLLM struct {
	mu        sync.Mutex
	responses []string
	callCount int
	err       error
	echo      bool
}

// NewFakeLLM creates a new fake LLM provider with predefined responses,
// returned round-robin.
func NewFakeLLM(responses ...string) *FakeLLM {
	if len(responses) == 0 {
		responses = []string{
			"This is a fake response from the fake LLM provider.",
			"I'm a fake AI assistant. How can I help you?",
			"This is another fake response for testing purposes.",
		}
	}
	return &FakeLLM{responses: responses}
}

// NewEchoLLM creates a fake provider that replies with the last user
// message verbatim.
func NewEchoLLM() *FakeLLM {
	return &FakeLLM{echo: true}
}

// FailWith makes every subsequent Chat call return err.
func (f *FakeLLM) FailWith(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

// CallCount returns how many Chat calls have been made.
func (f *FakeLLM) CallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.callCount
}

// Chat processes a chat request and returns a fake response.
func (f *FakeLLM) Chat(ctx context.Context, req llm.ChatRequest) (llm.ChatResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.callCount++
	if f.err != nil {
		return llm.ChatResponse{}, f.err
	}

	var lastUser string
	for _, msg := range req.Messages {
		if msg.Role == llm.RoleUser {
			lastUser = msg.Content
		}
	}

	var response string
	if f.echo {
		response = lastUser
	} else {
		response = f.responses[(f.callCount-1)%len(f.responses)]
		if lastUser != "" {
			response = fmt.Sprintf("%s (You said: %s)", response, lastUser)
		}
	}

	return llm.ChatResponse{
		Message: llm.Message{
			Role:    llm.RoleAssistant,
			Content: response,
		},
		TokensUsed:   len(strings.Fields(response)) + 10,
		FinishReason: "stop",
	}, nil
}

// Capabilities returns the fake LLM capabilities.
func (f *FakeLLM) Capabilities() llm.LLMCapabilities {
	return llm.LLMCapabilities{
		SupportsStreaming:  false,
		MaxTokens:          4096,
		SupportedModels:    []string{"fake-model-1", "fake-model-2"},
		SupportsSystemRole: true,
	}
}
