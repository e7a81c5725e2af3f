// Package podcast implements the multi-agent podcast pipeline: participant
// profiles, the session model, topic enrichment and distribution, and the
// orchestrator that runs a full recording.
package podcast

import (
	"fmt"
	"strings"
)

// Role is a participant's role in the podcast.
type Role string

const (
	RoleModerator Role = "moderator"
	RoleSpeaker   Role = "speaker"
)

// VoiceSettings selects and tunes a synthesis voice.
type VoiceSettings struct {
	Speaker string  `json:"speaker"`
	Speed   float32 `json:"speed"`
	Volume  float32 `json:"volume"`
}

// Profile describes one podcast participant.
type Profile struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Role  Role   `json:"role"`
	Voice VoiceSettings

	Personality   string
	Expertise     []string
	SpeakingStyle string

	Instructions        string
	SpecialInstructions string

	// MaxResponseWords caps the reply length the prompt asks for.
	MaxResponseWords int
	Temperature      float32
	UseSearchContext bool
}

// SystemPrompt renders the participant's full system prompt for the given
// topic, appending up to 3 facts and 2 sources from the enriched context.
func (p *Profile) SystemPrompt(topic string, enriched *Context) string {
	expertise := "общие знания"
	if len(p.Expertise) > 0 {
		expertise = strings.Join(p.Expertise, ", ")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Ты участвуешь в подкасте на тему: %q\n\n", topic)
	fmt.Fprintf(&b, "Твоя роль: %s\n", p.Role)
	fmt.Fprintf(&b, "Твое имя: %s\n", p.Name)
	fmt.Fprintf(&b, "Твоя личность: %s\n", p.Personality)
	fmt.Fprintf(&b, "Твой стиль общения: %s\n\n", p.SpeakingStyle)
	fmt.Fprintf(&b, "Области экспертизы: %s\n\n", expertise)
	fmt.Fprintf(&b, "Основные инструкции:\n%s\n\n", p.Instructions)
	fmt.Fprintf(&b, "Дополнительные указания:\n%s\n\n", p.SpecialInstructions)
	fmt.Fprintf(&b, "Ограничения:\n")
	fmt.Fprintf(&b, "- Максимум %d слов в ответе\n", p.MaxResponseWords)
	b.WriteString("- Говори естественно, как в живом разговоре\n")
	b.WriteString("- Не повторяй информацию, уже озвученную другими участниками\n")
	b.WriteString("- Будь вовлеченным и заинтересованным в обсуждении")

	if enriched != nil && p.UseSearchContext {
		if len(enriched.Facts) > 0 {
			b.WriteString("\n\nДополнительная информация по теме:\n")
			for i, fact := range enriched.Facts {
				if i >= 3 {
					break
				}
				fmt.Fprintf(&b, "- %s\n", fact)
			}
		}
		if len(enriched.Sources) > 0 {
			sources := enriched.Sources
			if len(sources) > 2 {
				sources = sources[:2]
			}
			fmt.Fprintf(&b, "\nИсточники: %s", strings.Join(sources, ", "))
		}
	}

	return b.String()
}

// Roster is an ordered set of participants. The moderator always speaks
// first.
type Roster struct {
	order    []string
	profiles map[string]*Profile
}

// NewRoster creates an empty roster.
func NewRoster() *Roster {
	return &Roster{profiles: make(map[string]*Profile)}
}

// Add registers a participant, replacing any existing one with the same ID.
func (r *Roster) Add(p *Profile) {
	if _, ok := r.profiles[p.ID]; !ok {
		r.order = append(r.order, p.ID)
	}
	r.profiles[p.ID] = p
}

// Get returns a participant by ID.
func (r *Roster) Get(id string) (*Profile, bool) {
	p, ok := r.profiles[id]
	return p, ok
}

// Moderator returns the first participant with the moderator role.
func (r *Roster) Moderator() (*Profile, bool) {
	for _, id := range r.order {
		if r.profiles[id].Role == RoleModerator {
			return r.profiles[id], true
		}
	}
	return nil, false
}

// Speakers returns all non-moderator participants in registration order.
func (r *Roster) Speakers() []*Profile {
	var speakers []*Profile
	for _, id := range r.order {
		if r.profiles[id].Role == RoleSpeaker {
			speakers = append(speakers, r.profiles[id])
		}
	}
	return speakers
}

// All returns every participant in registration order.
func (r *Roster) All() []*Profile {
	out := make([]*Profile, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.profiles[id])
	}
	return out
}

// SpeakingOrder returns participant IDs with the moderator first.
func (r *Roster) SpeakingOrder() []string {
	var order []string
	if mod, ok := r.Moderator(); ok {
		order = append(order, mod.ID)
	}
	for _, s := range r.Speakers() {
		order = append(order, s.ID)
	}
	return order
}

// DefaultRoster returns the stock four-person lineup: a moderator and
// three domain speakers.
func DefaultRoster() *Roster {
	r := NewRoster()
	r.Add(DefaultModerator())
	r.Add(TechExpert())
	r.Add(BusinessAnalyst())
	r.Add(SocialCommentator())
	return r
}

// DefaultModerator returns the stock moderator profile.
func DefaultModerator() *Profile {
	return &Profile{
		ID:            "moderator",
		Name:          "Максим",
		Role:          RoleModerator,
		Voice:         VoiceSettings{Speaker: "aidar", Speed: 1.0, Volume: 1.0},
		Personality:   "Опытный журналист и ведущий, умеет направлять дискуссию и задавать интересные вопросы",
		Expertise:     []string{"журналистика", "медиа", "интервью"},
		SpeakingStyle: "professional",
		Instructions: `Ты - ведущий подкаста. Твоя задача:

1. Открыть подкаст представлением темы и участников
2. Задавать интересные вопросы спикерам
3. Направлять дискуссию и поддерживать диалог
4. Делать краткие связки между выступлениями
5. Подводить итоги в конце каждого раунда
6. Завершить подкаст общим резюме

Стиль: профессиональный, но дружелюбный. Задавай открытые вопросы, которые позволяют спикерам раскрыть тему.`,
		SpecialInstructions: "Начинай вопросы с имени спикера. Делай плавные переходы между темами.",
		MaxResponseWords:    150,
		Temperature:         0.6,
		UseSearchContext:    true,
	}
}

// TechExpert returns the stock technology speaker.
func TechExpert() *Profile {
	return &Profile{
		ID:            "tech_expert",
		Name:          "Анна",
		Role:          RoleSpeaker,
		Voice:         VoiceSettings{Speaker: "kseniya", Speed: 1.0, Volume: 1.0},
		Personality:   "IT-эксперт с большим опытом в разработке и технологиях",
		Expertise:     []string{"программирование", "искусственный интеллект", "технологии", "разработка"},
		SpeakingStyle: "professional",
		Instructions: `Ты - технический эксперт в подкасте. Твоя роль:

1. Объяснять технические аспекты темы простым языком
2. Приводить конкретные примеры и кейсы
3. Анализировать технические возможности и ограничения
4. Делиться практическим опытом

Стиль: экспертный, но доступный. Избегай сложного жаргона, объясняй термины.`,
		SpecialInstructions: "Приводи практические примеры. Если тема сложная, делай аналогии.",
		MaxResponseWords:    180,
		Temperature:         0.7,
		UseSearchContext:    true,
	}
}

// BusinessAnalyst returns the stock business speaker.
func BusinessAnalyst() *Profile {
	return &Profile{
		ID:            "business_analyst",
		Name:          "Дмитрий",
		Role:          RoleSpeaker,
		Voice:         VoiceSettings{Speaker: "eugene", Speed: 1.0, Volume: 1.0},
		Personality:   "Бизнес-аналитик с опытом в стратегии и рыночном анализе",
		Expertise:     []string{"бизнес", "стратегия", "экономика", "рынки", "инвестиции"},
		SpeakingStyle: "analytical",
		Instructions: `Ты - бизнес-аналитик в подкасте. Твоя роль:

1. Анализировать экономические и рыночные аспекты темы
2. Обсуждать бизнес-модели и стратегии
3. Прогнозировать тренды и перспективы
4. Оценивать риски и возможности

Стиль: аналитический, структурированный. Используй данные и факты для аргументации.`,
		SpecialInstructions: "Структурируй ответы логично. Упоминай конкретные цифры и тренды если знаешь.",
		MaxResponseWords:    170,
		Temperature:         0.6,
		UseSearchContext:    true,
	}
}

// SocialCommentator returns the stock society-and-culture speaker.
func SocialCommentator() *Profile {
	return &Profile{
		ID:            "social_commentator",
		Name:          "Елена",
		Role:          RoleSpeaker,
		Voice:         VoiceSettings{Speaker: "baya", Speed: 1.0, Volume: 1.0},
		Personality:   "Социолог и журналист, специализируется на общественных процессах",
		Expertise:     []string{"социология", "культура", "общество", "медиа", "тренды"},
		SpeakingStyle: "thoughtful",
		Instructions: `Ты - социальный комментатор в подкасте. Твоя роль:

1. Анализировать социальные и культурные аспекты темы
2. Обсуждать влияние на общество и повседневную жизнь
3. Рассматривать этические и моральные вопросы
4. Предлагать альтернативные точки зрения

Стиль: вдумчивый, сбалансированный. Учитывай разные мнения и социальные группы.`,
		SpecialInstructions: "Поднимай важные социальные вопросы. Будь объективной, но эмоционально вовлеченной.",
		MaxResponseWords:    160,
		Temperature:         0.8,
		UseSearchContext:    true,
	}
}

// ProfileConfig is the external (file or flag driven) description of a
// participant.
type ProfileConfig struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Role         string   `json:"role"`
	Voice        string   `json:"voice"`
	Personality  string   `json:"personality"`
	Expertise    []string `json:"expertise"`
	Style        string   `json:"style"`
	Instructions string   `json:"instructions"`
	MaxWords     int      `json:"max_words"`
	Temperature  float32  `json:"temperature"`
}

// FromConfig builds a roster from external participant descriptions,
// filling unset fields with defaults.
func FromConfig(configs []ProfileConfig) *Roster {
	r := NewRoster()
	for _, c := range configs {
		role := Role(c.Role)
		if role != RoleModerator {
			role = RoleSpeaker
		}
		name := c.Name
		if name == "" {
			name = c.ID
		}
		voice := c.Voice
		if voice == "" {
			voice = "aidar"
		}
		style := c.Style
		if style == "" {
			style = "professional"
		}
		maxWords := c.MaxWords
		if maxWords == 0 {
			maxWords = 200
		}
		temperature := c.Temperature
		if temperature == 0 {
			temperature = 0.7
		}

		r.Add(&Profile{
			ID:               c.ID,
			Name:             name,
			Role:             role,
			Voice:            VoiceSettings{Speaker: voice, Speed: 1.0, Volume: 1.0},
			Personality:      c.Personality,
			Expertise:        c.Expertise,
			SpeakingStyle:    style,
			Instructions:     c.Instructions,
			MaxResponseWords: maxWords,
			Temperature:      temperature,
			UseSearchContext: true,
		})
	}
	return r
}
