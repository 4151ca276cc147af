package extract

import "github.com/ppiankov/episodic/internal/model"

// Policy is the linguistic filter applied to annotated tokens
type Policy struct {
	excludedTags   map[string]struct{}
	minLemmaLength int
}

// NewPolicy builds a policy from the extraction config. An empty tag list
// falls back to model.DefaultExcludedTags.
func NewPolicy(cfg model.ExtractionConfig) Policy {
	tags := cfg.ExcludedTags
	if len(tags) == 0 {
		tags = model.DefaultExcludedTags
	}
	minLen := cfg.MinLemmaLength
	if minLen < 1 {
		minLen = 1
	}

	p := Policy{
		excludedTags:   make(map[string]struct{}, len(tags)),
		minLemmaLength: minLen,
	}
	for _, tag := range tags {
		p.excludedTags[tag] = struct{}{}
	}
	return p
}

// DefaultPolicy excludes the default tag set and single-character lemmas
func DefaultPolicy() Policy {
	return NewPolicy(model.ExtractionConfig{})
}

// ExcludesTag reports whether tokens with this POS tag are never kept
func (p Policy) ExcludesTag(tag string) bool {
	_, ok := p.excludedTags[tag]
	return ok
}

// LongEnough reports whether s has more characters than the minimum
func (p Policy) LongEnough(s string) bool {
	return runeLen(s) > p.minLemmaLength
}

func runeLen(s string) int {
	n := 0
	for range s {
		n++
	}
	return n
}
