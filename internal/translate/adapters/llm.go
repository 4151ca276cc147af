package adapters

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/ppiankov/episodic/internal/model"
	"github.com/ppiankov/episodic/internal/translate"
	"github.com/sashabaranov/go-openai"
)

const llmMaxSenses = 4

// LLM asks a chat-completion model for translations. It is off unless
// listed in the source order and given an API key.
type LLM struct {
	name   string
	client *openai.Client
	config model.LLMConfig
	logger *slog.Logger
}

// NewLLM builds the source; an empty API key is an error
func NewLLM(name string, cfg model.LLMConfig, logger *slog.Logger) (*LLM, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("source %s: llm.api_key is required", name)
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	return &LLM{
		name:   name,
		client: openai.NewClientWithConfig(clientConfig),
		config: cfg,
		logger: logger.With("source", name),
	}, nil
}

// Name returns the configured source name
func (s *LLM) Name() string { return s.name }

// Lookup requests up to four senses and keeps the Cyrillic ones
func (s *LLM) Lookup(ctx context.Context, word string) translate.Result {
	timeout := s.config.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	modelName := s.config.Model
	if modelName == "" {
		modelName = openai.GPT4oMini
	}
	maxTokens := s.config.MaxTokens
	if maxTokens == 0 {
		maxTokens = 200
	}
	lang := s.config.TargetLang
	if lang == "" {
		lang = "Russian"
	}

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: modelName,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "You are a bilingual dictionary. Answer with translations only.",
			},
			{
				Role: openai.ChatMessageRoleUser,
				Content: fmt.Sprintf("Translate the English word or phrase %q into %s. "+
					"Give at most %d short translations separated by semicolons.", word, lang, llmMaxSenses),
			},
		},
		MaxTokens:   maxTokens,
		Temperature: 0.2,
	})
	if err != nil {
		return translate.Miss("completion: %v", err)
	}
	if len(resp.Choices) == 0 {
		return translate.Miss("empty completion")
	}

	senses := parseSenses(resp.Choices[0].Message.Content)
	if len(senses) == 0 {
		return translate.Miss("no translations in completion")
	}
	return translate.Found(model.TranslationEntry{
		Word:      word,
		Rendering: " – " + strings.Join(senses, "; "),
		Source:    s.name,
	})
}

func parseSenses(content string) []string {
	var senses []string
	for _, part := range strings.FieldsFunc(content, func(r rune) bool { return r == ';' || r == '\n' }) {
		sense := strings.Trim(cleanText(part), ".\"'")
		if sense == "" || !hasCyrillic(sense) {
			continue
		}
		senses = append(senses, normalizeQuotes(sense))
		if len(senses) == llmMaxSenses {
			break
		}
	}
	return senses
}
