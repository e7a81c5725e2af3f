package podcast

import (
	"context"
	"strings"
	"testing"
)

func TestMockProviderTopicalMatch(t *testing.T) {
	p := NewMockProvider()

	results, err := p.Search(context.Background(), "Искусственный интеллект в медицине", 5)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}
	for i := 1; i < len(results); i++ {
		if results[i].Relevance > results[i-1].Relevance {
			t.Errorf("results not sorted by relevance: [%d]=%f > [%d]=%f",
				i, results[i].Relevance, i-1, results[i-1].Relevance)
		}
	}
}

func TestMockProviderGenericFallback(t *testing.T) {
	p := NewMockProvider()

	results, err := p.Search(context.Background(), "садоводство", 5)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2 generic ones", len(results))
	}
	if !strings.Contains(results[0].Title, "садоводство") {
		t.Errorf("generic result should mention the query, got %q", results[0].Title)
	}
}

func TestMockProviderMaxResults(t *testing.T) {
	p := NewMockProvider()

	results, err := p.Search(context.Background(), "искусственный интеллект", 2)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(results) != 2 {
		t.Errorf("got %d results, want maxResults=2", len(results))
	}
}

func TestEnrichBuildsContext(t *testing.T) {
	e := NewEnricher(EnricherConfig{})

	enriched := e.Enrich(context.Background(), "искусственный интеллект")

	if enriched.Provider != "mock" {
		t.Errorf("Provider = %q, want mock", enriched.Provider)
	}
	if len(enriched.Facts) == 0 || len(enriched.Facts) > 6 {
		t.Errorf("got %d facts, want 1..6", len(enriched.Facts))
	}
	if len(enriched.Sources) == 0 || len(enriched.Sources) > 4 {
		t.Errorf("got %d sources, want 1..4", len(enriched.Sources))
	}
	seen := make(map[string]bool)
	for _, src := range enriched.Sources {
		if seen[src] {
			t.Errorf("duplicate source %q", src)
		}
		seen[src] = true
	}
	if !strings.Contains(enriched.Overview, "искусственный интеллект") {
		t.Errorf("overview should mention the topic, got %q", enriched.Overview)
	}
}

func TestEnrichFallbackWhenUnavailable(t *testing.T) {
	e := NewEnricher(EnricherConfig{Provider: NewWebProvider("")})

	if e.SearchEnabled() {
		t.Fatal("web provider without a key should be unavailable")
	}

	enriched := e.Enrich(context.Background(), "редкая тема")

	if enriched.Provider != "fallback" {
		t.Errorf("Provider = %q, want fallback", enriched.Provider)
	}
	if len(enriched.Facts) != 3 {
		t.Errorf("fallback facts = %d, want 3", len(enriched.Facts))
	}
	if len(enriched.Sources) != 1 || enriched.Sources[0] != "expert_knowledge" {
		t.Errorf("fallback sources = %v", enriched.Sources)
	}
}
