package transcript

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"regexp"
	"strings"

	"github.com/andybalholm/cascadia"
	readability "github.com/go-shiori/go-readability"
	"golang.org/x/net/html"

	"github.com/ppiankov/episodic/internal/model"
)

// ErrNoText is returned when neither the configured container nor the
// readability fallback yields any text
var ErrNoText = errors.New("no transcript text")

// Getter returns the body of a page. The pipeline Fetcher satisfies it.
type Getter interface {
	Get(ctx context.Context, rawURL string) ([]byte, error)
}

// Link is an episode link found on the index page
type Link struct {
	Title string
	URL   string
}

// Page is a scraped transcript page
type Page struct {
	Link
	Text         string
	FromFallback bool
}

// Scraper collects transcripts from an index page and the episode pages it links to
type Scraper struct {
	pages    Getter
	indexURL *url.URL
	link     *regexp.Regexp
	text     cascadia.Selector
	title    cascadia.Selector
	logger   *slog.Logger
}

// NewScraper validates cfg and compiles its selectors
func NewScraper(cfg model.TranscriptConfig, pages Getter, logger *slog.Logger) (*Scraper, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	indexURL, err := url.Parse(cfg.IndexURL)
	if err != nil || indexURL.Host == "" {
		return nil, fmt.Errorf("invalid transcript index url %q", cfg.IndexURL)
	}
	link, err := regexp.Compile(cfg.LinkPattern)
	if err != nil {
		return nil, fmt.Errorf("compile link pattern: %w", err)
	}
	text, err := cascadia.Compile(cfg.TextSelector)
	if err != nil {
		return nil, fmt.Errorf("compile text selector %q: %w", cfg.TextSelector, err)
	}
	s := &Scraper{
		pages:    pages,
		indexURL: indexURL,
		link:     link,
		text:     text,
		logger:   logger.With("component", "transcripts"),
	}
	if cfg.TitleSelector != "" {
		if s.title, err = cascadia.Compile(cfg.TitleSelector); err != nil {
			return nil, fmt.Errorf("compile title selector %q: %w", cfg.TitleSelector, err)
		}
	}
	return s, nil
}

// Links returns the episode links of the index page in page order, without duplicates
func (s *Scraper) Links(ctx context.Context) ([]Link, error) {
	body, err := s.pages.Get(ctx, s.indexURL.String())
	if err != nil {
		return nil, fmt.Errorf("fetch index: %w", err)
	}
	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse index: %w", err)
	}

	var links []Link
	seen := make(map[string]bool)
	for _, a := range cascadia.QueryAll(doc, cascadia.MustCompile("a[href]")) {
		title := collapse(nodeText(a))
		if !s.link.MatchString(title) {
			continue
		}
		ref, err := url.Parse(attr(a, "href"))
		if err != nil {
			continue
		}
		target := s.indexURL.ResolveReference(ref)
		target.Fragment = ""
		if seen[target.String()] {
			continue
		}
		seen[target.String()] = true
		links = append(links, Link{Title: title, URL: target.String()})
	}
	return links, nil
}

// Page fetches one transcript. Paragraphs under the text selector are
// kept one per line; without them the readability article text is used.
func (s *Scraper) Page(ctx context.Context, link Link) (*Page, error) {
	body, err := s.pages.Get(ctx, link.URL)
	if err != nil {
		return nil, err
	}
	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", link.URL, err)
	}

	page := &Page{Link: link}
	if s.title != nil {
		if n := cascadia.Query(doc, s.title); n != nil {
			if t := collapse(nodeText(n)); s.link.MatchString(t) {
				page.Title = t
			}
		}
	}

	var lines []string
	for _, p := range cascadia.QueryAll(doc, s.text) {
		lines = append(lines, nonBlankLines(nodeText(p))...)
	}
	if len(lines) == 0 {
		pageURL, _ := url.Parse(link.URL)
		article, err := readability.FromReader(bytes.NewReader(body), pageURL)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrNoText, link.URL, err)
		}
		lines = nonBlankLines(article.TextContent)
		page.FromFallback = true
	}
	if len(lines) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoText, link.URL)
	}
	page.Text = strings.Join(lines, "\n")
	return page, nil
}

// Scrape writes every linked transcript to w as a corpus that Split reads
// back: the header line, the transcript lines and a blank line. Pages that
// fail are logged and skipped; only context errors stop the run.
func (s *Scraper) Scrape(ctx context.Context, w io.Writer) (int, error) {
	links, err := s.Links(ctx)
	if err != nil {
		return 0, err
	}
	s.logger.Info("transcript links found", "count", len(links))

	written := 0
	for _, link := range links {
		if err := ctx.Err(); err != nil {
			return written, err
		}
		page, err := s.Page(ctx, link)
		if err != nil {
			if ctx.Err() != nil {
				return written, ctx.Err()
			}
			s.logger.Warn("transcript skipped", "title", link.Title, "url", link.URL, "error", err)
			continue
		}
		if page.FromFallback {
			s.logger.Debug("readability fallback used", "url", link.URL)
		}
		if _, err := fmt.Fprintf(w, "%s\n%s\n\n", page.Title, page.Text); err != nil {
			return written, fmt.Errorf("write corpus: %w", err)
		}
		written++
	}
	return written, nil
}

// nodeText returns the text of n with <br> turned into line breaks
func nodeText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		switch {
		case node.Type == html.TextNode:
			b.WriteString(node.Data)
		case node.Type == html.ElementNode && node.Data == "br":
			b.WriteByte('\n')
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

func nonBlankLines(s string) []string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}
