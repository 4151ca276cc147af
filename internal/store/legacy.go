package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/ppiankov/episodic/internal/model"
)

// The legacy format is a literal dict dump:
//
//	{'0101': {'hello': ' hɛˈləʊ – привет', 'give up': ' - бросать'}, '0102': {...}}
//
// It is kept for import and export only.

var legacyEpisodeHeader = regexp.MustCompile(`['"](\d{4})['"]:\s*\{`)

// LegacyStore reads and writes the flat literal format
type LegacyStore struct {
	path string
}

// NewLegacyStore creates a store for a legacy dump at path
func NewLegacyStore(path string) *LegacyStore {
	return &LegacyStore{path: path}
}

// Load parses the file; a missing file is an empty index
func (s *LegacyStore) Load(ctx context.Context) (*model.CorpusIndex, error) {
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return model.NewCorpusIndex(), nil
	}
	if err != nil {
		return nil, err
	}
	return ParseLegacy(string(raw))
}

// Save overwrites the file with the literal dump of index
func (s *LegacyStore) Save(ctx context.Context, index *model.CorpusIndex) error {
	return os.WriteFile(s.path, []byte(MarshalLegacy(index)), 0o644)
}

// Close is a no-op
func (s *LegacyStore) Close() error { return nil }

// MarshalLegacy renders index in the literal dict format
func MarshalLegacy(index *model.CorpusIndex) string {
	var b strings.Builder
	b.WriteByte('{')
	for i, dict := range index.Episodes() {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(quoteLiteral(string(dict.ID)))
		b.WriteString(": {")
		for j, e := range dict.Entries() {
			if j > 0 {
				b.WriteString(", ")
			}
			b.WriteString(quoteLiteral(e.Word))
			b.WriteString(": ")
			b.WriteString(quoteLiteral(e.Rendering))
		}
		b.WriteByte('}')
	}
	b.WriteByte('}')
	return b.String()
}

// ParseLegacy rebuilds the index from a literal dump. Each body is scanned
// key by value, so a quote inside a translation either parses correctly or
// fails with ErrCorrupt; keys and values can never drift apart.
func ParseLegacy(text string) (*model.CorpusIndex, error) {
	index := model.NewCorpusIndex()
	pos := 0

	for {
		loc := legacyEpisodeHeader.FindStringSubmatchIndex(text[pos:])
		if loc == nil {
			break
		}
		id := model.EpisodeID(text[pos+loc[2] : pos+loc[3]])
		sc := &literalScanner{text: text, pos: pos + loc[1]}

		dict, err := sc.episodeBody(id)
		if err != nil {
			return nil, err
		}
		index.Put(dict)
		pos = sc.pos
	}

	if index.Len() == 0 && strings.TrimSpace(strings.Trim(strings.TrimSpace(text), "{}")) != "" {
		return nil, fmt.Errorf("%w: no episodes found", ErrCorrupt)
	}
	return index, nil
}

type literalScanner struct {
	text string
	pos  int
}

func (sc *literalScanner) fail(id model.EpisodeID, format string, args ...any) error {
	return fmt.Errorf("%w: episode %s at offset %d: %s", ErrCorrupt, id, sc.pos, fmt.Sprintf(format, args...))
}

func (sc *literalScanner) skipSpace() {
	for sc.pos < len(sc.text) && strings.IndexByte(" \t\r\n", sc.text[sc.pos]) >= 0 {
		sc.pos++
	}
}

func (sc *literalScanner) peek() byte {
	if sc.pos >= len(sc.text) {
		return 0
	}
	return sc.text[sc.pos]
}

// episodeBody reads `'key': 'value', ... }` after the opening brace
func (sc *literalScanner) episodeBody(id model.EpisodeID) (*model.EpisodeDictionary, error) {
	dict := model.NewEpisodeDictionary(id)

	for {
		sc.skipSpace()
		if sc.peek() == '}' {
			sc.pos++
			return dict, nil
		}

		key, err := sc.quoted()
		if err != nil {
			return nil, sc.fail(id, "key: %v", err)
		}
		sc.skipSpace()
		if sc.peek() != ':' {
			return nil, sc.fail(id, "expected ':' after key %q", key)
		}
		sc.pos++
		sc.skipSpace()
		value, err := sc.quoted()
		if err != nil {
			return nil, sc.fail(id, "value for %q: %v", key, err)
		}
		dict.Add(model.TranslationEntry{Word: key, Rendering: value})

		sc.skipSpace()
		switch sc.peek() {
		case ',':
			sc.pos++
		case '}':
		default:
			return nil, sc.fail(id, "expected ',' or '}' after value for %q", key)
		}
	}
}

// quoted reads a single- or double-quoted literal with backslash escapes
func (sc *literalScanner) quoted() (string, error) {
	q := sc.peek()
	if q != '\'' && q != '"' {
		return "", fmt.Errorf("expected quote, found %q", string(q))
	}
	sc.pos++

	var b strings.Builder
	for sc.pos < len(sc.text) {
		c := sc.text[sc.pos]
		switch {
		case c == q:
			sc.pos++
			return b.String(), nil
		case c == '\\':
			if err := sc.escape(&b); err != nil {
				return "", err
			}
		default:
			r, size := utf8.DecodeRuneInString(sc.text[sc.pos:])
			b.WriteRune(r)
			sc.pos += size
		}
	}
	return "", fmt.Errorf("unterminated string")
}

func (sc *literalScanner) escape(b *strings.Builder) error {
	if sc.pos+1 >= len(sc.text) {
		return fmt.Errorf("dangling backslash")
	}
	c := sc.text[sc.pos+1]
	sc.pos += 2
	switch c {
	case '\\', '\'', '"':
		b.WriteByte(c)
	case 'n':
		b.WriteByte('\n')
	case 't':
		b.WriteByte('\t')
	case 'r':
		b.WriteByte('\r')
	case 'x', 'u', 'U':
		width := map[byte]int{'x': 2, 'u': 4, 'U': 8}[c]
		if sc.pos+width > len(sc.text) {
			return fmt.Errorf("short \\%c escape", c)
		}
		n, err := strconv.ParseUint(sc.text[sc.pos:sc.pos+width], 16, 32)
		if err != nil {
			return fmt.Errorf("bad \\%c escape: %v", c, err)
		}
		b.WriteRune(rune(n))
		sc.pos += width
	default:
		b.WriteByte('\\')
		b.WriteByte(c)
	}
	return nil
}

// quoteLiteral quotes s the way a literal dict dump does: single quotes
// unless s holds a single quote and no double quote.
func quoteLiteral(s string) string {
	q := byte('\'')
	if strings.IndexByte(s, '\'') >= 0 && strings.IndexByte(s, '"') < 0 {
		q = '"'
	}

	var b strings.Builder
	b.WriteByte(q)
	for _, r := range s {
		switch {
		case r == '\\':
			b.WriteString(`\\`)
		case r == rune(q):
			b.WriteByte('\\')
			b.WriteByte(q)
		case r == '\n':
			b.WriteString(`\n`)
		case r == '\t':
			b.WriteString(`\t`)
		case r == '\r':
			b.WriteString(`\r`)
		case r < 0x20 || r == 0x7f:
			fmt.Fprintf(&b, `\x%02x`, r)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte(q)
	return b.String()
}
