package podcast

import (
	"strings"
	"testing"
)

func TestSystemPromptIncludesContext(t *testing.T) {
	p := TechExpert()
	enriched := &Context{
		Topic:   "технологии",
		Facts:   []string{"факт один", "факт два", "факт три", "факт четыре"},
		Sources: []string{"src1", "src2", "src3"},
	}

	prompt := p.SystemPrompt("технологии", enriched)

	if !strings.Contains(prompt, "Твое имя: Анна") {
		t.Error("prompt missing participant name")
	}
	if !strings.Contains(prompt, "Максимум 180 слов") {
		t.Error("prompt missing word cap")
	}
	if !strings.Contains(prompt, "факт три") {
		t.Error("prompt should include the third fact")
	}
	if strings.Contains(prompt, "факт четыре") {
		t.Error("prompt should cap facts at 3")
	}
	if !strings.Contains(prompt, "src1, src2") {
		t.Error("prompt should include the first two sources")
	}
	if strings.Contains(prompt, "src3") {
		t.Error("prompt should cap sources at 2")
	}
}

func TestSystemPromptWithoutContext(t *testing.T) {
	p := DefaultModerator()

	prompt := p.SystemPrompt("космос", nil)

	if !strings.Contains(prompt, `"космос"`) {
		t.Error("prompt missing topic")
	}
	if strings.Contains(prompt, "Дополнительная информация") {
		t.Error("prompt should not mention context facts when there are none")
	}
}

func TestSystemPromptExpertiseFallback(t *testing.T) {
	p := &Profile{Name: "Гость", Role: RoleSpeaker, MaxResponseWords: 100}

	prompt := p.SystemPrompt("тема", nil)

	if !strings.Contains(prompt, "общие знания") {
		t.Error("empty expertise should render as общие знания")
	}
}

func TestRosterSpeakingOrder(t *testing.T) {
	r := NewRoster()
	r.Add(TechExpert())
	r.Add(BusinessAnalyst())
	r.Add(DefaultModerator()) // registered last, must still speak first

	order := r.SpeakingOrder()
	if len(order) != 3 {
		t.Fatalf("got %d ids, want 3", len(order))
	}
	if order[0] != "moderator" {
		t.Errorf("order[0] = %q, want moderator", order[0])
	}
	if order[1] != "tech_expert" || order[2] != "business_analyst" {
		t.Errorf("speakers out of registration order: %v", order[1:])
	}
}

func TestRosterReplace(t *testing.T) {
	r := NewRoster()
	r.Add(TechExpert())

	replacement := TechExpert()
	replacement.Name = "Ольга"
	r.Add(replacement)

	if len(r.All()) != 1 {
		t.Fatalf("duplicate ID should replace, got %d participants", len(r.All()))
	}
	p, _ := r.Get("tech_expert")
	if p.Name != "Ольга" {
		t.Errorf("Name = %q, want Ольга", p.Name)
	}
}

func TestDefaultRoster(t *testing.T) {
	r := DefaultRoster()

	if len(r.All()) != 4 {
		t.Fatalf("got %d participants, want 4", len(r.All()))
	}
	mod, ok := r.Moderator()
	if !ok || mod.Name != "Максим" {
		t.Errorf("Moderator() = %v, %v", mod, ok)
	}
	if len(r.Speakers()) != 3 {
		t.Errorf("got %d speakers, want 3", len(r.Speakers()))
	}
}

func TestFromConfigDefaults(t *testing.T) {
	r := FromConfig([]ProfileConfig{
		{ID: "host", Role: "moderator"},
		{ID: "guest", Expertise: []string{"история"}},
	})

	host, _ := r.Get("host")
	if host.Role != RoleModerator {
		t.Errorf("host role = %q, want moderator", host.Role)
	}
	if host.Name != "host" {
		t.Errorf("empty name should default to ID, got %q", host.Name)
	}

	guest, _ := r.Get("guest")
	if guest.Role != RoleSpeaker {
		t.Errorf("unknown role should default to speaker, got %q", guest.Role)
	}
	if guest.Voice.Speaker != "aidar" {
		t.Errorf("voice = %q, want aidar", guest.Voice.Speaker)
	}
	if guest.MaxResponseWords != 200 {
		t.Errorf("MaxResponseWords = %d, want 200", guest.MaxResponseWords)
	}
	if guest.Temperature != 0.7 {
		t.Errorf("Temperature = %f, want 0.7", guest.Temperature)
	}
	if guest.SpeakingStyle != "professional" {
		t.Errorf("style = %q, want professional", guest.SpeakingStyle)
	}
}
