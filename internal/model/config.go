package model

import (
	"fmt"
	"strings"
	"time"
)

// Source kinds understood by the translation resolver
const (
	SourceWooordHunt = "wooordhunt"
	SourceMultitran  = "multitran"
	SourceLLM        = "llm"
)

// Store drivers
const (
	StoreJSON   = "json"
	StoreSQLite = "sqlite"
	StoreLegacy = "legacy"
)

// Config is the complete runtime configuration
type Config struct {
	HTTP         HTTPConfig       `yaml:"http" mapstructure:"http"`
	Cache        CacheConfig      `yaml:"cache" mapstructure:"cache"`
	RateLimiting RateLimitConfig  `yaml:"rate_limiting" mapstructure:"rate_limiting"`
	Annotator    AnnotatorConfig  `yaml:"annotator" mapstructure:"annotator"`
	Extraction   ExtractionConfig `yaml:"extraction" mapstructure:"extraction"`
	Sources      []SourceConfig   `yaml:"sources" mapstructure:"sources"`
	Store        StoreConfig      `yaml:"store" mapstructure:"store"`
	Transcripts  TranscriptConfig `yaml:"transcripts" mapstructure:"transcripts"`
	LLM          LLMConfig        `yaml:"llm" mapstructure:"llm"`
	Log          LogConfig        `yaml:"log" mapstructure:"log"`
	Server       ServerConfig     `yaml:"server" mapstructure:"server"`
	Output       OutputConfig     `yaml:"output" mapstructure:"output"`
}

// HTTPConfig controls outbound page fetching
type HTTPConfig struct {
	Timeout       time.Duration `yaml:"timeout" mapstructure:"timeout"`
	UserAgent     string        `yaml:"user_agent" mapstructure:"user_agent"`
	MaxBodyBytes  int64         `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
	MaxAttempts   int           `yaml:"max_attempts" mapstructure:"max_attempts"` // 1 disables retries
	RespectRobots bool          `yaml:"respect_robots" mapstructure:"respect_robots"`
	HTTPProxy     string        `yaml:"http_proxy" mapstructure:"http_proxy"`
	HTTPSProxy    string        `yaml:"https_proxy" mapstructure:"https_proxy"`
}

// CacheConfig controls the dictionary page cache
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled" mapstructure:"enabled"`
	Dir       string        `yaml:"dir" mapstructure:"dir"`
	MemoryTTL time.Duration `yaml:"memory_ttl" mapstructure:"memory_ttl"`
	DiskTTL   time.Duration `yaml:"disk_ttl" mapstructure:"disk_ttl"`
}

// RateLimitConfig sets the default per-host request budget
type RateLimitConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	BurstSize         int     `yaml:"burst_size" mapstructure:"burst_size"`
}

// AnnotatorConfig points at the CoreNLP server
type AnnotatorConfig struct {
	URL        string        `yaml:"url" mapstructure:"url"`
	Annotators []string      `yaml:"annotators" mapstructure:"annotators"`
	Timeout    time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// ExtractionConfig is the linguistic policy for candidate extraction
type ExtractionConfig struct {
	ExcludedTags   []string `yaml:"excluded_tags" mapstructure:"excluded_tags"`
	MinLemmaLength int      `yaml:"min_lemma_length" mapstructure:"min_lemma_length"` // lemmas must be longer than this
	StopwordsFile  string   `yaml:"stopwords_file" mapstructure:"stopwords_file"`
	KnownWordsFile string   `yaml:"known_words_file" mapstructure:"known_words_file"`
}

// SourceConfig describes one dictionary source in resolver order
type SourceConfig struct {
	Name    string        `yaml:"name" mapstructure:"name"`
	Kind    string        `yaml:"kind" mapstructure:"kind"`
	BaseURL string        `yaml:"base_url" mapstructure:"base_url"`
	Rate    float64       `yaml:"rate,omitempty" mapstructure:"rate"` // per-host override, 0 keeps the default
	Page    PageSelectors `yaml:"page" mapstructure:"page"`
}

// PageSelectors holds the CSS selectors and positions used to read a result page.
// Only the fields relevant to a source kind are used.
type PageSelectors struct {
	// wooordhunt
	Transcription string `yaml:"transcription,omitempty" mapstructure:"transcription"`
	Translation   string `yaml:"translation,omitempty" mapstructure:"translation"`
	WordForms     string `yaml:"word_forms,omitempty" mapstructure:"word_forms"`

	// multitran; nil positions take the built-in layout, 0 is a real index
	QueryTemplate   string `yaml:"query_template,omitempty" mapstructure:"query_template"`
	Block           string `yaml:"block,omitempty" mapstructure:"block"`
	BlockIndex      *int   `yaml:"block_index,omitempty" mapstructure:"block_index"`
	HeadRow         *int   `yaml:"head_row,omitempty" mapstructure:"head_row"`
	TranslationRow  *int   `yaml:"translation_row,omitempty" mapstructure:"translation_row"`
	TranslationCell *int   `yaml:"translation_cell,omitempty" mapstructure:"translation_cell"`
	MaxSenses       int    `yaml:"max_senses,omitempty" mapstructure:"max_senses"`
}

// Position returns n as an explicit PageSelectors table position
func Position(n int) *int {
	return &n
}

// StoreConfig selects the episode dictionary store
type StoreConfig struct {
	Driver string `yaml:"driver" mapstructure:"driver"`
	Path   string `yaml:"path" mapstructure:"path"`
}

// TranscriptConfig locates transcript pages
type TranscriptConfig struct {
	IndexURL      string `yaml:"index_url" mapstructure:"index_url"`
	LinkPattern   string `yaml:"link_pattern" mapstructure:"link_pattern"`
	TextSelector  string `yaml:"text_selector" mapstructure:"text_selector"`
	TitleSelector string `yaml:"title_selector" mapstructure:"title_selector"`
}

// LLMConfig configures the optional model-backed translation source
type LLMConfig struct {
	APIKey     string        `yaml:"api_key,omitempty" mapstructure:"api_key"`
	BaseURL    string        `yaml:"base_url,omitempty" mapstructure:"base_url"`
	Model      string        `yaml:"model" mapstructure:"model"`
	Timeout    time.Duration `yaml:"timeout" mapstructure:"timeout"`
	MaxTokens  int           `yaml:"max_tokens" mapstructure:"max_tokens"`
	TargetLang string        `yaml:"target_lang" mapstructure:"target_lang"`
}

// LogConfig selects the slog handler
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// ServerConfig configures the read-only HTTP API
type ServerConfig struct {
	Addr string `yaml:"addr" mapstructure:"addr"`
}

// OutputConfig controls console output
type OutputConfig struct {
	Verbose bool `yaml:"verbose" mapstructure:"verbose"`
}

// DefaultExcludedTags are the Penn Treebank tags never kept as standalone candidates
var DefaultExcludedTags = []string{
	"PRP", "DT", "IN", "TO", "NNP", "CC", "CD", "EX", "JJR", "JJS", "LS", "MD", "PDT",
	"RP", "PRP$", "RBR", "RBS", "UH", "WDT", "WP", "WP$", "WRB", "NNPS", "POS", "SYM",
}

// DefaultSources returns the built-in resolver order: wooordhunt, then multitran
func DefaultSources() []SourceConfig {
	return []SourceConfig{
		{
			Name:    SourceWooordHunt,
			Kind:    SourceWooordHunt,
			BaseURL: "https://wooordhunt.ru",
			Page: PageSelectors{
				Transcription: "div.trans_sound span",
				Translation:   "div.t_inline_en",
				WordForms:     "div#word_forms",
			},
		},
		{
			Name:    SourceMultitran,
			Kind:    SourceMultitran,
			BaseURL: "https://www.multitran.com",
			Page: PageSelectors{
				QueryTemplate:   "/m.exe?l1=1&l2=2&s=%s",
				Block:           "div.middle_col",
				BlockIndex:      Position(2),
				HeadRow:         Position(1),
				TranslationRow:  Position(2),
				TranslationCell: Position(1),
				MaxSenses:       4,
			},
		},
	}
}

// DefaultConfig returns the configuration used when nothing is overridden
func DefaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Timeout:       30 * time.Second,
			UserAgent:     "Episodic/0.1 (+https://github.com/ppiankov/episodic)",
			MaxBodyBytes:  2_000_000,
			MaxAttempts:   1,
			RespectRobots: true,
		},
		Cache: CacheConfig{
			Enabled:   true,
			Dir:       "~/.episodic/cache",
			MemoryTTL: time.Hour,
			DiskTTL:   30 * 24 * time.Hour,
		},
		RateLimiting: RateLimitConfig{
			RequestsPerSecond: 2,
			BurstSize:         2,
		},
		Annotator: AnnotatorConfig{
			URL:        "http://localhost:9000",
			Annotators: []string{"tokenize", "ssplit", "pos", "lemma", "depparse"},
			Timeout:    2 * time.Minute,
		},
		Extraction: ExtractionConfig{
			ExcludedTags:   append([]string(nil), DefaultExcludedTags...),
			MinLemmaLength: 1,
		},
		Sources: DefaultSources(),
		Store: StoreConfig{
			Driver: StoreJSON,
			Path:   "~/.episodic/corpus.json",
		},
		Transcripts: TranscriptConfig{
			IndexURL:      "https://bigbangtrans.wordpress.com/",
			LinkPattern:   `Series \d{2} Episode \d{2}`,
			TextSelector:  "div.entrytext p",
			TitleSelector: "h2.pagetitle",
		},
		LLM: LLMConfig{
			Model:      "gpt-4o-mini",
			Timeout:    30 * time.Second,
			MaxTokens:  200,
			TargetLang: "Russian",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
	}
}

// Validate checks the configuration for values no component can work with
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case StoreJSON, StoreSQLite, StoreLegacy:
	default:
		return fmt.Errorf("store.driver: unknown driver %q", c.Store.Driver)
	}
	if c.Store.Path == "" {
		return fmt.Errorf("store.path: must not be empty")
	}
	if len(c.Sources) == 0 {
		return fmt.Errorf("sources: at least one source is required")
	}
	seen := make(map[string]bool, len(c.Sources))
	for i, s := range c.Sources {
		switch s.Kind {
		case SourceWooordHunt, SourceMultitran, SourceLLM:
		default:
			return fmt.Errorf("sources[%d]: unknown kind %q", i, s.Kind)
		}
		if s.Name == "" {
			return fmt.Errorf("sources[%d]: name must not be empty", i)
		}
		if seen[s.Name] {
			return fmt.Errorf("sources[%d]: duplicate name %q", i, s.Name)
		}
		seen[s.Name] = true
		if s.Kind != SourceLLM && s.BaseURL == "" {
			return fmt.Errorf("sources[%d]: base_url must not be empty", i)
		}
		if s.Rate < 0 {
			return fmt.Errorf("sources[%d]: rate must not be negative", i)
		}
	}
	if c.RateLimiting.RequestsPerSecond <= 0 {
		return fmt.Errorf("rate_limiting.requests_per_second: must be positive")
	}
	if c.HTTP.MaxAttempts < 1 {
		return fmt.Errorf("http.max_attempts: must be at least 1")
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("log.level: unknown level %q", c.Log.Level)
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("log.format: unknown format %q", c.Log.Format)
	}
	return nil
}
