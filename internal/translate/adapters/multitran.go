package adapters

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/andybalholm/cascadia"
	"github.com/ppiankov/episodic/internal/model"
	"github.com/ppiankov/episodic/internal/translate"
	"golang.org/x/net/html"
)

// Multitran queries a full-text dictionary and reads its result table by
// position. It is the fallback source.
type Multitran struct {
	name          string
	baseURL       string
	queryTemplate string
	layout        tableLayout
	block         cascadia.Selector
	pages         Getter
	logger        *slog.Logger
}

// tableLayout holds the resolved result table positions
type tableLayout struct {
	blockIndex      int
	headRow         int
	translationRow  int
	translationCell int
	maxSenses       int
}

// NewMultitran builds the source from its config entry. Unset positions and
// selectors take the built-in layout.
func NewMultitran(cfg model.SourceConfig, pages Getter, logger *slog.Logger) (*Multitran, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	page := cfg.Page
	defaults := model.DefaultSources()[1].Page
	if page.QueryTemplate == "" {
		page.QueryTemplate = defaults.QueryTemplate
	}
	if page.Block == "" {
		page.Block = defaults.Block
	}
	if page.MaxSenses <= 0 {
		page.MaxSenses = defaults.MaxSenses
	}
	if !strings.Contains(page.QueryTemplate, "%s") {
		return nil, fmt.Errorf("source %s: query_template must contain %%s", cfg.Name)
	}

	layout := tableLayout{
		blockIndex:      position(page.BlockIndex, defaults.BlockIndex),
		headRow:         position(page.HeadRow, defaults.HeadRow),
		translationRow:  position(page.TranslationRow, defaults.TranslationRow),
		translationCell: position(page.TranslationCell, defaults.TranslationCell),
		maxSenses:       page.MaxSenses,
	}
	if layout.blockIndex < 0 || layout.headRow < 0 || layout.translationRow < 0 || layout.translationCell < 0 {
		return nil, fmt.Errorf("source %s: table positions must not be negative", cfg.Name)
	}

	block, err := selector(page.Block)
	if err != nil {
		return nil, err
	}
	return &Multitran{
		name:          cfg.Name,
		baseURL:       strings.TrimSuffix(cfg.BaseURL, "/"),
		queryTemplate: page.QueryTemplate,
		layout:        layout,
		block:         block,
		pages:         pages,
		logger:        logger.With("source", cfg.Name),
	}, nil
}

func position(v, fallback *int) int {
	if v != nil {
		return *v
	}
	return *fallback
}

// Name returns the configured source name
func (s *Multitran) Name() string { return s.name }

// URL returns the query address for word: spaces become '+', the typographic
// apostrophe becomes %27, everything else is sent as is.
func (s *Multitran) URL(word string) string {
	q := strings.ReplaceAll(word, " ", "+")
	q = strings.ReplaceAll(q, "’", "%27")
	return s.baseURL + fmt.Sprintf(s.queryTemplate, q)
}

// Lookup fetches the result page and reads transcription and senses
func (s *Multitran) Lookup(ctx context.Context, word string) translate.Result {
	body, err := s.pages.Get(ctx, s.URL(word))
	if err != nil {
		return translate.Miss("fetch: %v", err)
	}
	doc, err := parseHTML(body)
	if err != nil {
		return translate.Miss("parse: %v", err)
	}

	rendering, err := s.render(doc, word)
	if err != nil {
		return translate.Miss("%v", err)
	}
	return translate.Found(model.TranslationEntry{Word: word, Rendering: rendering, Source: s.name})
}

func (s *Multitran) render(doc *html.Node, word string) (string, error) {
	blocks := s.block.MatchAll(doc)
	if len(blocks) <= s.layout.blockIndex {
		return "", fmt.Errorf("expected %d result blocks, found %d", s.layout.blockIndex+1, len(blocks))
	}
	rows := elements(blocks[s.layout.blockIndex], "tr")
	if len(rows) <= s.layout.headRow || len(rows) <= s.layout.translationRow {
		return "", fmt.Errorf("result table has %d rows", len(rows))
	}

	head := rows[s.layout.headRow]
	headword := firstElement(head, "a")
	if headword == nil {
		return "", fmt.Errorf("no headword")
	}
	if echoed := strings.ToLower(strings.TrimSpace(textContent(headword))); echoed != word {
		return "", fmt.Errorf("partial match %q", echoed)
	}

	transcription := ""
	if span := firstElement(head, "span"); span != nil {
		transcription = " " + strings.ReplaceAll(cleanText(textContent(span)), "'", "ˈ")
	}

	cells := elements(rows[s.layout.translationRow], "td")
	if len(cells) <= s.layout.translationCell {
		return "", fmt.Errorf("no translation cell")
	}

	var senses []string
	for _, link := range childElements(cells[s.layout.translationCell], "a", s.layout.maxSenses) {
		sense := cleanText(textContent(link))
		if !hasCyrillic(sense) {
			continue
		}
		senses = append(senses, normalizeQuotes(sense))
	}
	if len(senses) == 0 {
		return "", fmt.Errorf("no translations")
	}

	return transcription + " - " + strings.Join(senses, "; "), nil
}
