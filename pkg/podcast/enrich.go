package podcast

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"
)

// SearchResult is a single result from a search provider.
type SearchResult struct {
	Title     string  `json:"title"`
	Summary   string  `json:"summary"`
	URL       string  `json:"url,omitempty"`
	Relevance float64 `json:"relevance_score"`
	Source    string  `json:"source"`
}

// Context is the enriched background for a podcast topic.
type Context struct {
	Topic      string         `json:"topic"`
	Overview   string         `json:"overview"`
	Facts      []string       `json:"facts"`
	Sources    []string       `json:"sources"`
	Results    []SearchResult `json:"search_results"`
	SearchTime time.Duration  `json:"search_time"`
	Provider   string         `json:"search_provider"`
}

// SearchProvider finds background material for a topic.
type SearchProvider interface {
	// Search returns up to maxResults results ordered by descending
	// relevance.
	Search(ctx context.Context, query string, maxResults int) ([]SearchResult, error)

	// Available reports whether the provider can serve requests.
	Available() bool
}

// MockProvider serves canned results for a few known topics and a generic
// pair for everything else. It needs no network and is always available.
type MockProvider struct{}

// NewMockProvider creates a mock search provider.
func NewMockProvider() *MockProvider {
	return &MockProvider{}
}

var mockData = map[string][]SearchResult{
	"искусственный интеллект": {
		{
			Title:     "Развитие ИИ в 2024 году",
			Summary:   "Искусственный интеллект продолжает развиваться с появлением новых языковых моделей и применений в различных отраслях",
			URL:       "https://example.com/ai-2024",
			Relevance: 0.95,
			Source:    "mock_tech_news",
		},
		{
			Title:     "Этические аспекты ИИ",
			Summary:   "Вопросы этики ИИ становятся все более актуальными с развитием технологий машинного обучения",
			URL:       "https://example.com/ai-ethics",
			Relevance: 0.88,
			Source:    "mock_ethics",
		},
		{
			Title:     "ИИ в бизнесе",
			Summary:   "Компании активно внедряют ИИ для автоматизации процессов и улучшения эффективности",
			URL:       "https://example.com/ai-business",
			Relevance: 0.82,
			Source:    "mock_business",
		},
	},
	"криптовалюта": {
		{
			Title:     "Тренды криптовалютного рынка",
			Summary:   "Криптовалютный рынок показывает волатильность с новыми регулятивными изменениями",
			URL:       "https://example.com/crypto-trends",
			Relevance: 0.90,
			Source:    "mock_finance",
		},
		{
			Title:     "Технология блокчейн",
			Summary:   "Блокчейн находит применение не только в криптовалютах, но и в других отраслях",
			URL:       "https://example.com/blockchain-tech",
			Relevance: 0.85,
			Source:    "mock_tech",
		},
	},
	"климат": {
		{
			Title:     "Изменение климата и технологии",
			Summary:   "Новые технологии помогают в борьбе с изменением климата и снижении углеродного следа",
			URL:       "https://example.com/climate-tech",
			Relevance: 0.92,
			Source:    "mock_environment",
		},
		{
			Title:     "Зеленая энергетика",
			Summary:   "Возобновляемые источники энергии становятся более доступными и эффективными",
			URL:       "https://example.com/green-energy",
			Relevance: 0.87,
			Source:    "mock_energy",
		},
	},
	"образование": {
		{
			Title:     "Цифровое образование",
			Summary:   "Онлайн обучение и образовательные технологии меняют подходы к образованию",
			URL:       "https://example.com/digital-education",
			Relevance: 0.89,
			Source:    "mock_education",
		},
		{
			Title:     "Будущее образования",
			Summary:   "Персонализированное обучение и ИИ-помощники становятся частью образовательного процесса",
			URL:       "https://example.com/future-education",
			Relevance: 0.84,
			Source:    "mock_future",
		},
	},
}

// Search matches the query against the known topics by keyword and falls
// back to a generic pair when nothing matches.
func (m *MockProvider) Search(ctx context.Context, query string, maxResults int) ([]SearchResult, error) {
	queryLower := strings.ToLower(query)

	var results []SearchResult
	for topic, topicResults := range mockData {
		for _, keyword := range strings.Fields(topic) {
			if strings.Contains(queryLower, keyword) {
				results = append(results, topicResults...)
				break
			}
		}
	}

	if len(results) == 0 {
		results = []SearchResult{
			{
				Title:     fmt.Sprintf("Общая информация по запросу: %s", query),
				Summary:   fmt.Sprintf("Тема '%s' представляет интерес и заслуживает обсуждения с различных точек зрения", query),
				URL:       "https://example.com/general",
				Relevance: 0.5,
				Source:    "mock_general",
			},
			{
				Title:     fmt.Sprintf("Актуальные тренды: %s", query),
				Summary:   fmt.Sprintf("Современные тенденции в области '%s' показывают интересные направления развития", query),
				URL:       "https://example.com/trends",
				Relevance: 0.45,
				Source:    "mock_trends",
			},
		}
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Relevance > results[j].Relevance
	})
	if len(results) > maxResults {
		results = results[:maxResults]
	}
	return results, nil
}

// Available always reports true for the mock provider.
func (m *MockProvider) Available() bool {
	return true
}

// WebProvider is a placeholder for a real search backend.
// TODO: wire an actual web search API behind this once one is chosen.
type WebProvider struct {
	apiKey string
}

// NewWebProvider creates a web search provider with the given API key.
func NewWebProvider(apiKey string) *WebProvider {
	return &WebProvider{apiKey: apiKey}
}

// Search is not implemented yet.
func (w *WebProvider) Search(ctx context.Context, query string, maxResults int) ([]SearchResult, error) {
	return nil, fmt.Errorf("web search not implemented yet")
}

// Available reports whether an API key is configured.
func (w *WebProvider) Available() bool {
	return w.apiKey != ""
}

// EnricherConfig configures an Enricher.
type EnricherConfig struct {
	Provider   SearchProvider
	MaxResults int
	Logger     *slog.Logger
}

// Enricher builds enriched topic context from a search provider. Enrich
// never fails: any provider problem degrades to a fallback context.
type Enricher struct {
	provider   SearchProvider
	maxResults int
	logger     *slog.Logger
}

// NewEnricher creates an enricher. A nil provider means the mock one.
func NewEnricher(cfg EnricherConfig) *Enricher {
	if cfg.Provider == nil {
		cfg.Provider = NewMockProvider()
	}
	if cfg.MaxResults == 0 {
		cfg.MaxResults = 5
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Enricher{
		provider:   cfg.Provider,
		maxResults: cfg.MaxResults,
		logger:     cfg.Logger,
	}
}

// Enrich builds the context for a topic.
func (e *Enricher) Enrich(ctx context.Context, topic string) *Context {
	start := time.Now()

	if !e.provider.Available() {
		e.logger.Warn("search provider unavailable, using fallback context")
		return fallbackContext(topic)
	}

	results, err := e.provider.Search(ctx, topic, e.maxResults)
	if err != nil {
		e.logger.Warn("search failed, using fallback context",
			slog.String("error", err.Error()))
		return fallbackContext(topic)
	}

	return processResults(topic, results, time.Since(start), providerName(e.provider))
}

// Refresh re-runs enrichment, fully replacing the previous context.
func (e *Enricher) Refresh(ctx context.Context, topic string) *Context {
	e.logger.Info("refreshing topic context", slog.String("topic", topic))
	return e.Enrich(ctx, topic)
}

// SearchEnabled reports whether the underlying provider is usable.
func (e *Enricher) SearchEnabled() bool {
	return e.provider.Available()
}

func processResults(topic string, results []SearchResult, elapsed time.Duration, provider string) *Context {
	var overview string
	if len(results) > 0 {
		overview = fmt.Sprintf("По теме '%s' найдено %d релевантных источников. ", topic, len(results)) +
			"Основные аспекты для обсуждения включают различные точки зрения и актуальные тренды."
	} else {
		overview = fmt.Sprintf("Тема '%s' представляет интерес для детального обсуждения.", topic)
	}

	var facts []string
	var sources []string
	seen := make(map[string]bool)

	for _, r := range results {
		if len(r.Summary) > 20 {
			facts = append(facts, r.Summary)
		}
		src := r.URL
		if src == "" {
			src = r.Source
		}
		if src != "" && !seen[src] {
			seen[src] = true
			sources = append(sources, src)
		}
	}

	if len(facts) > 6 {
		facts = facts[:6]
	}
	if len(sources) > 4 {
		sources = sources[:4]
	}

	return &Context{
		Topic:      topic,
		Overview:   overview,
		Facts:      facts,
		Sources:    sources,
		Results:    results,
		SearchTime: elapsed,
		Provider:   provider,
	}
}

func fallbackContext(topic string) *Context {
	return &Context{
		Topic:    topic,
		Overview: fmt.Sprintf("Тема '%s' будет обсуждаться участниками подкаста на основе их экспертизы и опыта.", topic),
		Facts: []string{
			fmt.Sprintf("Тема '%s' актуальна в современном мире", topic),
			"Различные эксперты могут иметь разные точки зрения на эту тему",
			"Обсуждение поможет раскрыть разные аспекты темы",
		},
		Sources:  []string{"expert_knowledge"},
		Provider: "fallback",
	}
}

func providerName(p SearchProvider) string {
	switch p.(type) {
	case *MockProvider:
		return "mock"
	case *WebProvider:
		return "web"
	default:
		return "custom"
	}
}
