package annotate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ppiankov/episodic/internal/model"
	"github.com/ppiankov/episodic/internal/util"
)

// ErrAnnotation wraps every failure of the annotation service
var ErrAnnotation = errors.New("annotation failed")

// Annotator turns raw text into sentences of tokens and dependency edges
type Annotator interface {
	Annotate(ctx context.Context, text string) (model.Document, error)
}

// CoreNLPClient talks to a Stanford CoreNLP server over HTTP
type CoreNLPClient struct {
	baseURL    string
	annotators []string
	httpClient *http.Client
	logger     *slog.Logger
}

// CoreNLP JSON output, reduced to the fields the extractor reads
type coreNLPResponse struct {
	Sentences []coreNLPSentence `json:"sentences"`
}

type coreNLPSentence struct {
	Index             int                 `json:"index"`
	Tokens            []coreNLPToken      `json:"tokens"`
	BasicDependencies []coreNLPDependency `json:"basicDependencies"`
}

type coreNLPToken struct {
	Index int    `json:"index"`
	Word  string `json:"word"`
	Lemma string `json:"lemma"`
	POS   string `json:"pos"`
}

type coreNLPDependency struct {
	Dep            string `json:"dep"`
	Governor       int    `json:"governor"`
	GovernorGloss  string `json:"governorGloss"`
	Dependent      int    `json:"dependent"`
	DependentGloss string `json:"dependentGloss"`
}

// NewCoreNLPClient creates a client for the server described by cfg
func NewCoreNLPClient(cfg model.AnnotatorConfig, httpCfg model.HTTPConfig, logger *slog.Logger) *CoreNLPClient {
	baseURL := cfg.URL
	if baseURL == "" {
		baseURL = "http://localhost:9000"
	}
	annotators := cfg.Annotators
	if len(annotators) == 0 {
		annotators = []string{"tokenize", "ssplit", "pos", "lemma", "depparse"}
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 2 * time.Minute // depparse on a full episode is slow
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &CoreNLPClient{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		annotators: annotators,
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: util.NewTransport(httpCfg.HTTPProxy, httpCfg.HTTPSProxy),
		},
		logger: logger.With("component", "corenlp"),
	}
}

// Annotate posts text to the server and converts the response
func (c *CoreNLPClient) Annotate(ctx context.Context, text string) (model.Document, error) {
	props, err := json.Marshal(map[string]string{
		"annotators":   strings.Join(c.annotators, ","),
		"outputFormat": "json",
	})
	if err != nil {
		return model.Document{}, fmt.Errorf("%w: encode properties: %v", ErrAnnotation, err)
	}

	endpoint := c.baseURL + "/?properties=" + url.QueryEscape(string(props))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(text))
	if err != nil {
		return model.Document{}, fmt.Errorf("%w: create request: %v", ErrAnnotation, err)
	}
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")

	started := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return model.Document{}, fmt.Errorf("%w: %v", ErrAnnotation, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return model.Document{}, fmt.Errorf("%w: HTTP %d: %s", ErrAnnotation, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var out coreNLPResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return model.Document{}, fmt.Errorf("%w: decode response: %v", ErrAnnotation, err)
	}

	doc := convert(out)
	c.logger.Debug("annotated text",
		"chars", len(text),
		"sentences", len(doc.Sentences),
		"tokens", doc.TokenCount(),
		"elapsed", time.Since(started))

	return doc, nil
}

// convert maps the server response onto the model, resolving dependency
// indexes to the tokens of the same sentence.
func convert(resp coreNLPResponse) model.Document {
	doc := model.Document{Sentences: make([]model.Sentence, 0, len(resp.Sentences))}

	for _, s := range resp.Sentences {
		byIndex := make(map[int]model.Token, len(s.Tokens))
		sentence := model.Sentence{Tokens: make([]model.Token, 0, len(s.Tokens))}

		for _, t := range s.Tokens {
			tok := model.Token{Index: t.Index, Surface: t.Word, POS: t.POS, Lemma: t.Lemma}
			byIndex[t.Index] = tok
			sentence.Tokens = append(sentence.Tokens, tok)
		}

		for _, d := range s.BasicDependencies {
			gov, ok := byIndex[d.Governor]
			if !ok {
				gov = model.Token{Index: d.Governor, Surface: d.GovernorGloss}
			}
			dep, ok := byIndex[d.Dependent]
			if !ok {
				dep = model.Token{Index: d.Dependent, Surface: d.DependentGloss}
			}
			sentence.Dependencies = append(sentence.Dependencies, model.DependencyEdge{
				Relation:  d.Dep,
				Governor:  gov,
				Dependent: dep,
			})
		}

		doc.Sentences = append(doc.Sentences, sentence)
	}

	return doc
}
