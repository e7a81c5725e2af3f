package fake

import (
	"context"
	"errors"
	"testing"

	"github.com/innokenty/voicecast/pkg/ai/llm"
)

func TestFakeLLMRoundRobin(t *testing.T) {
	f := NewFakeLLM("first", "second")
	ctx := context.Background()
	req := llm.ChatRequest{}

	resp1, err := f.Chat(ctx, req)
	if err != nil {
		t.Fatalf("Chat() error = %v", err)
	}
	resp2, err := f.Chat(ctx, req)
	if err != nil {
		t.Fatalf("Chat() error = %v", err)
	}
	resp3, err := f.Chat(ctx, req)
	if err != nil {
		t.Fatalf("Chat() error = %v", err)
	}

	if resp1.Message.Content != "first" {
		t.Errorf("first response = %q, want %q", resp1.Message.Content, "first")
	}
	if resp2.Message.Content != "second" {
		t.Errorf("second response = %q, want %q", resp2.Message.Content, "second")
	}
	if resp3.Message.Content != "first" {
		t.Errorf("third response = %q, want wrap-around to %q", resp3.Message.Content, "first")
	}
	if f.CallCount() != 3 {
		t.Errorf("CallCount() = %d, want 3", f.CallCount())
	}
}

func TestFakeLLMEchoesUserMessage(t *testing.T) {
	f := NewEchoLLM()

	resp, err := f.Chat(context.Background(), llm.ChatRequest{
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: "be brief"},
			{Role: llm.RoleUser, Content: "hello there"},
		},
	})
	if err != nil {
		t.Fatalf("Chat() error = %v", err)
	}
	if resp.Message.Content != "hello there" {
		t.Errorf("echo response = %q, want %q", resp.Message.Content, "hello there")
	}
	if resp.Message.Role != llm.RoleAssistant {
		t.Errorf("response role = %q, want assistant", resp.Message.Role)
	}
}

func TestFakeLLMFailWith(t *testing.T) {
	f := NewFakeLLM("ok")
	wantErr := errors.New("backend down")
	f.FailWith(wantErr)

	_, err := f.Chat(context.Background(), llm.ChatRequest{})
	if !errors.Is(err, wantErr) {
		t.Errorf("Chat() error = %v, want %v", err, wantErr)
	}
	if f.CallCount() != 1 {
		t.Errorf("CallCount() = %d, want 1", f.CallCount())
	}
}

func TestFakeLLMCapabilities(t *testing.T) {
	provider := NewFakeLLM()
	caps := provider.Capabilities()

	if caps.MaxTokens <= 0 {
		t.Error("Expected MaxTokens to be positive")
	}
	if len(caps.SupportedModels) == 0 {
		t.Error("Expected SupportedModels to be non-empty")
	}
	if !caps.SupportsSystemRole {
		t.Error("Expected SupportsSystemRole to be true")
	}
}
