package podcast

import (
	"fmt"
	"strings"
)

// PersonalizedContext is the slice of the enriched context one participant
// actually receives.
type PersonalizedContext struct {
	Topic    string
	Overview string
	Role     Role
	Name     string

	RoleInstructions string

	// Moderator only.
	FullFacts         []string
	SearchSummary     string
	DiscussionPoints  []string
	TransitionPhrases []string

	// Speakers only.
	RelevantFacts         []string
	ExpertiseAreas        []string
	StyleTips             []string
	RelevantSearchSummary string
}

var transitionPhrases = []string{
	"Интересная точка зрения! А что думает по этому поводу",
	"Спасибо за комментарий. Хотелось бы услышать мнение",
	"Это поднимает важный вопрос. Как видит эту проблему",
	"Давайте рассмотрим другой аспект. Что скажет",
	"Отличный анализ! А как это связано с опытом",
}

var styleTips = map[string][]string{
	"professional": {
		"Используй структурированные ответы",
		"Приводи конкретные примеры",
		"Ссылайся на данные и исследования",
		"Поддерживай деловой тон",
	},
	"casual": {
		"Говори простым языком",
		"Используй понятные аналогии",
		"Делись личным опытом",
		"Будь дружелюбным и открытым",
	},
	"academic": {
		"Структурируй информацию логично",
		"Ссылайся на исследования и теории",
		"Используй точную терминологию",
		"Анализируй причинно-следственные связи",
	},
	"enthusiastic": {
		"Проявляй энергию и интерес",
		"Используй яркие примеры",
		"Выражай эмоции по поводу темы",
		"Мотивируй других участников",
	},
	"analytical": {
		"Структурируй ответы по пунктам",
		"Приводи цифры и статистику",
		"Анализируй плюсы и минусы",
		"Делай обоснованные выводы",
	},
	"thoughtful": {
		"Рассматривай вопрос с разных сторон",
		"Делись размышлениями и сомнениями",
		"Поднимай глубокие вопросы",
		"Проявляй эмпатию к разным точкам зрения",
	},
}

// Splitter distributes an enriched context among participants: the
// moderator gets the full picture plus discussion scaffolding, speakers
// get facts filtered to their expertise.
type Splitter struct{}

// NewSplitter creates a splitter.
func NewSplitter() *Splitter {
	return &Splitter{}
}

// Split builds the personalized context for every roster member.
func (s *Splitter) Split(enriched *Context, roster *Roster) map[string]*PersonalizedContext {
	out := make(map[string]*PersonalizedContext)
	for _, p := range roster.All() {
		pc := &PersonalizedContext{
			Topic:    enriched.Topic,
			Overview: enriched.Overview,
			Role:     p.Role,
			Name:     p.Name,
		}
		if p.Role == RoleModerator {
			s.fillModerator(pc, enriched)
		} else {
			s.fillSpeaker(pc, enriched, p)
		}
		out[p.ID] = pc
	}
	return out
}

func (s *Splitter) fillModerator(pc *PersonalizedContext, enriched *Context) {
	pc.RoleInstructions = `Ты ведущий подкаста. Твои задачи:
1. Открыть подкаст представлением темы и участников
2. Задавать вопросы спикерам по очереди
3. Направлять дискуссию и поддерживать диалог
4. Делать плавные переходы между выступлениями
5. Подводить итоги в конце каждого раунда`

	pc.FullFacts = enriched.Facts
	pc.SearchSummary = summarizeResults(enriched.Results)
	pc.DiscussionPoints = discussionPoints(enriched)
	pc.TransitionPhrases = transitionPhrases
}

func (s *Splitter) fillSpeaker(pc *PersonalizedContext, enriched *Context, p *Profile) {
	pc.RoleInstructions = fmt.Sprintf(`Ты %s

Твоя задача в подкасте:
1. Отвечать на вопросы модератора из своей области экспертизы
2. Приводить конкретные примеры и практические кейсы
3. Взаимодействовать с другими участниками
4. Поддерживать живую и интересную дискуссию

Твои области экспертизы: %s
Стиль общения: %s`,
		p.Personality, strings.Join(p.Expertise, ", "), p.SpeakingStyle)

	pc.RelevantFacts = filterFactsByExpertise(enriched.Facts, p.Expertise)
	pc.ExpertiseAreas = p.Expertise
	pc.StyleTips = tipsForStyle(p.SpeakingStyle)
	pc.RelevantSearchSummary = summarizeRelevantResults(
		filterResultsByExpertise(enriched.Results, p.Expertise))
}

// filterFactsByExpertise keeps facts mentioning any expertise keyword,
// padding with general facts up to 3 when fewer than 2 match, and capping
// the result at 4.
func filterFactsByExpertise(facts []string, expertise []string) []string {
	if len(expertise) == 0 {
		if len(facts) > 3 {
			return facts[:3]
		}
		return facts
	}

	keywords := expertiseKeywords(expertise)

	var relevant []string
	for _, fact := range facts {
		factLower := strings.ToLower(fact)
		for kw := range keywords {
			if strings.Contains(factLower, kw) {
				relevant = append(relevant, fact)
				break
			}
		}
	}

	if len(relevant) < 2 {
		for _, fact := range facts {
			if !contains(relevant, fact) {
				relevant = append(relevant, fact)
			}
			if len(relevant) >= 3 {
				break
			}
		}
	}

	if len(relevant) > 4 {
		relevant = relevant[:4]
	}
	return relevant
}

func filterResultsByExpertise(results []SearchResult, expertise []string) []SearchResult {
	if len(expertise) == 0 || len(results) == 0 {
		if len(results) > 2 {
			return results[:2]
		}
		return results
	}

	keywords := expertiseKeywords(expertise)

	var relevant []SearchResult
	for _, r := range results {
		text := strings.ToLower(r.Title + " " + r.Summary)
		for kw := range keywords {
			if strings.Contains(text, kw) {
				relevant = append(relevant, r)
				break
			}
		}
	}

	if len(relevant) > 3 {
		relevant = relevant[:3]
	}
	return relevant
}

func summarizeResults(results []SearchResult) string {
	if len(results) == 0 {
		return "Результаты поиска недоступны, обсуждение будет основано на экспертизе участников."
	}

	var parts []string
	for i, r := range results {
		if i >= 3 {
			break
		}
		summary := truncateRunes(r.Summary, 100)
		parts = append(parts, fmt.Sprintf("%d. %s: %s...", i+1, r.Title, summary))
	}
	return "Ключевые источники:\n" + strings.Join(parts, "\n")
}

func summarizeRelevantResults(results []SearchResult) string {
	if len(results) == 0 {
		return "Дополнительная информация из внешних источников недоступна."
	}

	var parts []string
	for i, r := range results {
		if i >= 2 {
			break
		}
		parts = append(parts, fmt.Sprintf("• %s", r.Summary))
	}
	return "Дополнительная информация:\n" + strings.Join(parts, "\n")
}

// discussionPoints templates topic questions and derives follow-ups from
// substantial facts (longer than 50 characters).
func discussionPoints(enriched *Context) []string {
	topic := strings.ToLower(enriched.Topic)

	points := []string{
		fmt.Sprintf("Как каждый из вас видит текущее состояние %s?", topic),
		fmt.Sprintf("Какие основные вызовы существуют в области %s?", topic),
		fmt.Sprintf("Какие тенденции вы видите в развитии %s?", topic),
		fmt.Sprintf("Как %s влияет на повседневную жизнь людей?", topic),
		fmt.Sprintf("Какие возможности открывает %s в будущем?", topic),
	}

	for i, fact := range enriched.Facts {
		if i >= 2 {
			break
		}
		if len([]rune(fact)) > 50 {
			points = append(points, fmt.Sprintf("Что вы думаете о том, что %s?", strings.ToLower(fact)))
		}
	}

	return points
}

func tipsForStyle(style string) []string {
	if tips, ok := styleTips[style]; ok {
		return tips
	}
	return styleTips["professional"]
}

func expertiseKeywords(expertise []string) map[string]bool {
	keywords := make(map[string]bool)
	for _, area := range expertise {
		for _, word := range strings.Fields(strings.ToLower(area)) {
			keywords[word] = true
		}
	}
	return keywords
}

// truncateRunes cuts s to at most n runes, never splitting a character.
func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
