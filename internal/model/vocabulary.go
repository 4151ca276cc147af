package model

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidEpisodeID is returned for identifiers that are not exactly four digits
	ErrInvalidEpisodeID = errors.New("invalid episode id")
	// ErrUnknownEpisode is returned when an episode is absent from the corpus index
	ErrUnknownEpisode = errors.New("unknown episode")
)

// EpisodeID identifies an episode as SSEE: season and episode, two digits each
type EpisodeID string

// NewEpisodeID formats season and episode numbers as an EpisodeID
func NewEpisodeID(season, episode int) (EpisodeID, error) {
	if season < 0 || season > 99 || episode < 0 || episode > 99 {
		return "", fmt.Errorf("%w: season %d episode %d", ErrInvalidEpisodeID, season, episode)
	}
	return EpisodeID(fmt.Sprintf("%02d%02d", season, episode)), nil
}

// ParseEpisodeID validates s as an SSEE identifier
func ParseEpisodeID(s string) (EpisodeID, error) {
	if len(s) != 4 {
		return "", fmt.Errorf("%w: %q", ErrInvalidEpisodeID, s)
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return "", fmt.Errorf("%w: %q", ErrInvalidEpisodeID, s)
		}
	}
	return EpisodeID(s), nil
}

// Season returns the season part of the identifier
func (id EpisodeID) Season() string {
	if len(id) != 4 {
		return ""
	}
	return string(id[:2])
}

// Episode returns the episode part of the identifier
func (id EpisodeID) Episode() string {
	if len(id) != 4 {
		return ""
	}
	return string(id[2:])
}

// TranslationEntry is a resolved candidate with its display rendering
type TranslationEntry struct {
	Word      string `json:"word"`             // Candidate item (lemma or phrasal verb)
	Rendering string `json:"rendering"`        // Transcription, forms and senses composed for display
	Source    string `json:"source,omitempty"` // Dictionary source that produced the rendering
}

// EpisodeDictionary maps candidate items to translations for one episode,
// keeping the order in which words were added.
type EpisodeDictionary struct {
	ID      EpisodeID
	order   []string
	entries map[string]TranslationEntry
}

// NewEpisodeDictionary creates an empty dictionary for the episode
func NewEpisodeDictionary(id EpisodeID) *EpisodeDictionary {
	return &EpisodeDictionary{
		ID:      id,
		entries: make(map[string]TranslationEntry),
	}
}

// Add appends an entry. The first entry for a word wins; Add reports
// whether the entry was stored.
func (d *EpisodeDictionary) Add(e TranslationEntry) bool {
	if _, exists := d.entries[e.Word]; exists {
		return false
	}
	d.entries[e.Word] = e
	d.order = append(d.order, e.Word)
	return true
}

// Get returns the entry for word
func (d *EpisodeDictionary) Get(word string) (TranslationEntry, bool) {
	e, ok := d.entries[word]
	return e, ok
}

// Words returns the keys in insertion order
func (d *EpisodeDictionary) Words() []string {
	out := make([]string, len(d.order))
	copy(out, d.order)
	return out
}

// Entries returns the entries in insertion order
func (d *EpisodeDictionary) Entries() []TranslationEntry {
	out := make([]TranslationEntry, 0, len(d.order))
	for _, w := range d.order {
		out = append(out, d.entries[w])
	}
	return out
}

// Len returns the number of entries
func (d *EpisodeDictionary) Len() int {
	return len(d.order)
}

// CorpusIndex maps episode identifiers to their dictionaries, in the order
// episodes were added.
type CorpusIndex struct {
	order    []EpisodeID
	episodes map[EpisodeID]*EpisodeDictionary
}

// NewCorpusIndex creates an empty index
func NewCorpusIndex() *CorpusIndex {
	return &CorpusIndex{
		episodes: make(map[EpisodeID]*EpisodeDictionary),
	}
}

// Put stores dict under its ID. An existing episode is replaced in place.
func (c *CorpusIndex) Put(dict *EpisodeDictionary) {
	if _, exists := c.episodes[dict.ID]; !exists {
		c.order = append(c.order, dict.ID)
	}
	c.episodes[dict.ID] = dict
}

// Lookup returns the dictionary for id or ErrUnknownEpisode
func (c *CorpusIndex) Lookup(id EpisodeID) (*EpisodeDictionary, error) {
	dict, ok := c.episodes[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownEpisode, id)
	}
	return dict, nil
}

// IDs returns the episode identifiers in insertion order
func (c *CorpusIndex) IDs() []EpisodeID {
	out := make([]EpisodeID, len(c.order))
	copy(out, c.order)
	return out
}

// Episodes returns the dictionaries in insertion order
func (c *CorpusIndex) Episodes() []*EpisodeDictionary {
	out := make([]*EpisodeDictionary, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.episodes[id])
	}
	return out
}

// Len returns the number of episodes
func (c *CorpusIndex) Len() int {
	return len(c.order)
}

// Merge puts every episode of other into c, replacing episodes with the same ID
func (c *CorpusIndex) Merge(other *CorpusIndex) {
	for _, dict := range other.Episodes() {
		c.Put(dict)
	}
}
