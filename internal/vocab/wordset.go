package vocab

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/ppiankov/episodic/internal/model"
	"github.com/ppiankov/episodic/internal/util"
)

var quotedWord = regexp.MustCompile(`'([^']*)'|"([^"]*)"`)

// LoadWordSet reads and merges word lists from paths. Empty paths are
// skipped, so optional config entries can be passed through as-is.
func LoadWordSet(paths ...string) (model.WordSet, error) {
	set := model.NewWordSet()
	for _, path := range paths {
		if path == "" {
			continue
		}
		file, err := os.Open(util.ExpandHome(path))
		if err != nil {
			return nil, fmt.Errorf("open word list: %w", err)
		}
		words, err := ParseWordList(file)
		_ = file.Close()
		if err != nil {
			return nil, fmt.Errorf("read word list %s: %w", path, err)
		}
		set = set.Union(model.NewWordSet(words...))
	}
	return set, nil
}

// ParseWordList accepts either plain words (whitespace or newline
// separated, # starts a comment line) or a bracketed quoted list such as
// ['the', 'a', "don't"].
func ParseWordList(r io.Reader) ([]string, error) {
	var words []string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasPrefix(line, "[") {
			for _, m := range quotedWord.FindAllStringSubmatch(line, -1) {
				w := m[1] + m[2]
				if w = strings.TrimSpace(w); w != "" {
					words = append(words, w)
				}
			}
			continue
		}
		words = append(words, strings.Fields(line)...)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return words, nil
}
