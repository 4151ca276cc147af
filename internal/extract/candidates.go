package extract

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"

	"github.com/ppiankov/episodic/internal/annotate"
	"github.com/ppiankov/episodic/internal/model"
)

var (
	// h-e-e-l-p, n-n-nothing: stuttering, not vocabulary
	stretchedPattern = regexp.MustCompile(`[\p{L}\p{N}_]-[\p{L}\p{N}_]-`)
	digitPattern     = regexp.MustCompile(`\p{Nd}`)
	latinPattern     = regexp.MustCompile(`[a-zA-Z]`)
)

// Extractor turns raw text into an ordered list of candidate vocabulary items
type Extractor struct {
	annotator annotate.Annotator
	policy    Policy
	logger    *slog.Logger
}

// NewExtractor creates an extractor backed by the given annotator
func NewExtractor(annotator annotate.Annotator, policy Policy, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Extractor{
		annotator: annotator,
		policy:    policy,
		logger:    logger.With("component", "extractor"),
	}
}

// Extract annotates text and returns the candidates not in exclusion.
// Annotation errors are returned unchanged in kind; there is no partial result.
func (e *Extractor) Extract(ctx context.Context, text string, exclusion model.WordSet) ([]string, error) {
	doc, err := e.annotator.Annotate(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("annotate: %w", err)
	}

	items := Candidates(doc, e.policy, exclusion)
	e.logger.Debug("extracted candidates",
		"sentences", len(doc.Sentences),
		"tokens", doc.TokenCount(),
		"candidates", len(items))

	return items, nil
}

// Candidates applies the extraction rules to an annotated document:
// lemma filtering, phrasal verbs, hyphen normalization and the final filter.
// Output order follows sentence and token order; items are unique.
func Candidates(doc model.Document, policy Policy, exclusion model.WordSet) []string {
	lemmas := newOrderedSet()

	for _, sentence := range doc.Sentences {
		for _, tok := range sentence.Tokens {
			if !policy.ExcludesTag(tok.POS) && !exclusion.Has(tok.Lemma) && policy.LongEnough(tok.Lemma) {
				lemmas.add(tok.Lemma)
			}

			// The governor is matched by surface form; the phrase uses its lemma
			for _, edge := range sentence.Dependencies {
				if edge.Relation != model.RelationParticle || edge.Governor.Surface != tok.Surface {
					continue
				}
				lemmas.add(tok.Lemma + " " + edge.Dependent.Surface)
			}
		}
	}

	normalized := splitHyphenated(lemmas.items, policy)

	out := make([]string, 0, len(normalized))
	for _, item := range normalized {
		if exclusion.Has(item) || digitPattern.MatchString(item) || !latinPattern.MatchString(item) {
			continue
		}
		out = append(out, item)
	}
	return out
}

// splitHyphenated expands hyphenated items into their parts and drops
// stretched-letter items. Whole forms starting with "un-" are not kept.
func splitHyphenated(items []string, policy Policy) []string {
	out := newOrderedSet()

	for _, item := range items {
		if !strings.Contains(item, "-") {
			out.add(item)
			continue
		}
		if stretchedPattern.MatchString(item) {
			continue
		}

		for _, part := range strings.Fields(strings.ReplaceAll(item, "-", " ")) {
			if policy.LongEnough(part) {
				out.add(part)
			}
		}
		if !strings.HasPrefix(item, "un-") {
			out.add(item)
		}
	}

	return out.items
}

type orderedSet struct {
	seen  map[string]struct{}
	items []string
}

func newOrderedSet() *orderedSet {
	return &orderedSet{seen: make(map[string]struct{})}
}

func (s *orderedSet) add(item string) {
	if _, ok := s.seen[item]; ok {
		return
	}
	s.seen[item] = struct{}{}
	s.items = append(s.items, item)
}
