package vocab

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/ppiankov/episodic/internal/model"
)

// Frequency is one line of the series-wide frequency dictionary
type Frequency struct {
	Word      string `json:"word"`
	Count     int    `json:"count"`
	Rendering string `json:"rendering"`
}

// Frequencies counts in how many episodes each word occurs. The rendering
// comes from the first episode (index order) that has the word. Results
// are sorted by count descending, then word.
func Frequencies(index *model.CorpusIndex) []Frequency {
	byWord := make(map[string]*Frequency)
	var order []*Frequency

	for _, dict := range index.Episodes() {
		for _, e := range dict.Entries() {
			if f, ok := byWord[e.Word]; ok {
				f.Count++
				continue
			}
			f := &Frequency{Word: e.Word, Count: 1, Rendering: e.Rendering}
			byWord[e.Word] = f
			order = append(order, f)
		}
	}

	out := make([]Frequency, 0, len(order))
	for _, f := range order {
		out = append(out, *f)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Word < out[j].Word
	})
	return out
}

// FormatFrequencies writes one line per word: the count padded to nine
// columns (eight spaces after wider counts), the word and its rendering.
func FormatFrequencies(w io.Writer, freqs []Frequency) error {
	for _, f := range freqs {
		count := strconv.Itoa(f.Count)
		pad := 9 - len(count)
		if len(count) > 3 {
			pad = 8
		}
		if _, err := fmt.Fprintf(w, "%s%s%s%s\n", count, strings.Repeat(" ", pad), f.Word, f.Rendering); err != nil {
			return err
		}
	}
	return nil
}
