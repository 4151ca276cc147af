package vocab

import (
	"fmt"
	"io"
	"strings"

	"github.com/ppiankov/episodic/internal/model"
)

// ParseLearned splits a line of space separated words into a set
func ParseLearned(line string) model.WordSet {
	return model.NewWordSet(strings.Fields(line)...)
}

// FilterLearned returns the words of dict that are not in learned, in
// dictionary order. dict is not modified.
func FilterLearned(dict *model.EpisodeDictionary, learned model.WordSet) []string {
	var out []string
	for _, w := range dict.Words() {
		if !learned.Has(w) {
			out = append(out, w)
		}
	}
	return out
}

// FormatEntries writes word and rendering for each of words, one per line.
// Renderings carry their own leading space.
func FormatEntries(w io.Writer, dict *model.EpisodeDictionary, words []string) error {
	for _, word := range words {
		e, ok := dict.Get(word)
		if !ok {
			continue
		}
		if _, err := fmt.Fprintf(w, "%s%s\n", e.Word, e.Rendering); err != nil {
			return err
		}
	}
	return nil
}
