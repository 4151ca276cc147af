package adapters

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strings"

	"github.com/andybalholm/cascadia"
	"github.com/ppiankov/episodic/internal/model"
	"github.com/ppiankov/episodic/internal/translate"
	"golang.org/x/net/html"
)

// WooordHunt looks words up by slug on an English-Russian dictionary site
// that serves one page per word. It is the primary source.
type WooordHunt struct {
	name          string
	baseURL       string
	pages         Getter
	transcription cascadia.Selector
	translation   cascadia.Selector
	wordForms     cascadia.Selector
	logger        *slog.Logger
}

// NewWooordHunt builds the source from its config entry
func NewWooordHunt(cfg model.SourceConfig, pages Getter, logger *slog.Logger) (*WooordHunt, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	page := cfg.Page
	defaults := model.DefaultSources()[0].Page
	if page.Transcription == "" {
		page.Transcription = defaults.Transcription
	}
	if page.Translation == "" {
		page.Translation = defaults.Translation
	}
	if page.WordForms == "" {
		page.WordForms = defaults.WordForms
	}

	s := &WooordHunt{
		name:    cfg.Name,
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		pages:   pages,
		logger:  logger.With("source", cfg.Name),
	}
	var err error
	if s.transcription, err = selector(page.Transcription); err != nil {
		return nil, err
	}
	if s.translation, err = selector(page.Translation); err != nil {
		return nil, err
	}
	if s.wordForms, err = selector(page.WordForms); err != nil {
		return nil, err
	}
	return s, nil
}

// Name returns the configured source name
func (s *WooordHunt) Name() string { return s.name }

// URL returns the page address for word; the word is a single path segment
func (s *WooordHunt) URL(word string) string {
	return s.baseURL + "/word/" + url.PathEscape(word)
}

// Lookup fetches and parses the word page
func (s *WooordHunt) Lookup(ctx context.Context, word string) translate.Result {
	body, err := s.pages.Get(ctx, s.URL(word))
	if err != nil {
		return translate.Miss("fetch: %v", err)
	}
	doc, err := parseHTML(body)
	if err != nil {
		return translate.Miss("parse: %v", err)
	}

	rendering, err := s.render(doc)
	if err != nil {
		return translate.Miss("%v", err)
	}
	return translate.Found(model.TranslationEntry{Word: word, Rendering: rendering, Source: s.name})
}

func (s *WooordHunt) render(doc *html.Node) (string, error) {
	transcriptionNode := s.transcription.MatchFirst(doc)
	if transcriptionNode == nil {
		return "", fmt.Errorf("no transcription block")
	}
	translationNode := s.translation.MatchFirst(doc)
	if translationNode == nil {
		return "", fmt.Errorf("no translation block")
	}

	transcription := strings.ReplaceAll(cleanText(textContent(transcriptionNode)), "'", "ˈ")
	translation := normalizeQuotes(cleanText(textContent(translationNode)))
	if translation == "" {
		return "", fmt.Errorf("empty translation block")
	}

	var forms []string
	if formsNode := s.wordForms.MatchFirst(doc); formsNode != nil {
		forms = wordForms(formsNode)
	}

	// a single alternate form is usually just a plural
	if len(forms) == 2 {
		return " (" + strings.Join(forms, ", ") + ") " + transcription + " – " + translation, nil
	}
	return " " + transcription + " – " + translation, nil
}

// wordForms reads the forms listed after each label span, e.g.
// <span>Past:</span> gave <br>. Only a single token followed by markup counts.
func wordForms(container *html.Node) []string {
	var forms []string
	for _, span := range elements(container, "span") {
		next := span.NextSibling
		if next == nil || next.Type != html.TextNode || !strings.HasPrefix(next.Data, " ") {
			continue
		}
		form := strings.TrimRight(next.Data[1:], " \t\r\n")
		if form == "" || strings.ContainsAny(form, " \t\r\n") {
			continue
		}
		forms = append(forms, form)
	}
	return forms
}
