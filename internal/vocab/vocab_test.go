package vocab

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ppiankov/episodic/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func episode(id model.EpisodeID, kv ...string) *model.EpisodeDictionary {
	dict := model.NewEpisodeDictionary(id)
	for i := 0; i+1 < len(kv); i += 2 {
		dict.Add(model.TranslationEntry{Word: kv[i], Rendering: kv[i+1]})
	}
	return dict
}

func TestParseWordList(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"lines", "the\na\n\nan\n", []string{"the", "a", "an"}},
		{"whitespace", "the a  an\tof", []string{"the", "a", "an", "of"}},
		{"comments", "# stopwords\nthe\n  # more\nof", []string{"the", "of"}},
		{"bracketed", `['the', 'a', "don't", '']`, []string{"the", "a", "don't"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseWordList(strings.NewReader(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoadWordSet_MergesFiles(t *testing.T) {
	dir := t.TempDir()
	stop := filepath.Join(dir, "stopwords.txt")
	known := filepath.Join(dir, "known.txt")
	require.NoError(t, os.WriteFile(stop, []byte("['the', 'a']\n"), 0o644))
	require.NoError(t, os.WriteFile(known, []byte("time\nyear\n"), 0o644))

	set, err := LoadWordSet(stop, "", known)
	require.NoError(t, err)
	assert.Len(t, set, 4)
	for _, w := range []string{"the", "a", "time", "year"} {
		assert.True(t, set.Has(w), w)
	}
}

func TestLoadWordSet_MissingFile(t *testing.T) {
	_, err := LoadWordSet(filepath.Join(t.TempDir(), "nope.txt"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestFilterLearned(t *testing.T) {
	dict := episode("0101",
		"physics", " ˈfɪzɪks – физика",
		"give up", " - бросать",
		"laser", " ˈleɪzə – лазер",
	)

	got := FilterLearned(dict, ParseLearned("  laser   physics "))
	assert.Equal(t, []string{"give up"}, got)
	assert.Equal(t, 3, dict.Len())

	assert.Equal(t, []string{"physics", "give up", "laser"}, FilterLearned(dict, nil))
	assert.Equal(t, []string{"give up"}, FilterLearned(dict, ParseLearned("physics laser give up")),
		"a phrase stays until it is itself in the learned set")
	assert.Empty(t, FilterLearned(dict, model.NewWordSet("physics", "laser", "give up")))
}

func TestFormatEntries(t *testing.T) {
	dict := episode("0101", "hello", " hɛˈləʊ – привет", "give up", " - бросать")
	var buf bytes.Buffer
	require.NoError(t, FormatEntries(&buf, dict, []string{"hello", "missing", "give up"}))
	assert.Equal(t, "hello hɛˈləʊ – привет\ngive up - бросать\n", buf.String())
}

func TestFrequencies(t *testing.T) {
	index := model.NewCorpusIndex()
	index.Put(episode("0101", "physics", " A", "laser", " B"))
	index.Put(episode("0102", "laser", " C", "atom", " D"))
	index.Put(episode("0103", "laser", " E", "physics", " F", "boson", " G"))

	got := Frequencies(index)
	assert.Equal(t, []Frequency{
		{Word: "laser", Count: 3, Rendering: " B"},
		{Word: "physics", Count: 2, Rendering: " A"},
		{Word: "atom", Count: 1, Rendering: " D"},
		{Word: "boson", Count: 1, Rendering: " G"},
	}, got)
}

func TestFormatFrequencies(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, FormatFrequencies(&buf, []Frequency{
		{Word: "a", Count: 1234, Rendering: " x"},
		{Word: "b", Count: 123, Rendering: " y"},
		{Word: "c", Count: 12, Rendering: " z"},
		{Word: "d", Count: 1, Rendering: " w"},
	}))
	want := "1234        a x\n" +
		"123      b y\n" +
		"12       c z\n" +
		"1        d w\n"
	assert.Equal(t, want, buf.String())
}
