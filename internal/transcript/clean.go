package transcript

import (
	"regexp"
	"strings"
)

var (
	creditLine      = regexp.MustCompile(`^(Scene:|Teleplay:|Story:|Written by) `)
	stageDirection  = regexp.MustCompile(`\([^)]*\)[,: ]*`)
	doubleSpace     = regexp.MustCompile(`\s\s`)
	brokenEllipsis  = regexp.MustCompile(`\.\s\.\.`)
	strayPeriod     = regexp.MustCompile(`([.!,?…])\s\.`)
	spaceBeforeStop = regexp.MustCompile(`\s\.`)
)

// Clean reduces a transcript body to the spoken text on a single line.
// Lines without a colon are narration and are dropped, as are scene and
// credit lines. Speaker labels, parenthesised stage directions and a few
// punctuation artifacts of the transcript site are removed.
func Clean(body string) string {
	var spoken []string
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimRight(line, "\r")
		if !strings.Contains(line, ":") || creditLine.MatchString(line) {
			continue
		}
		if i := strings.Index(line, ": "); i >= 0 {
			line = line[i+2:]
		}
		spoken = append(spoken, line)
	}

	text := strings.Join(spoken, "\n")
	text = stageDirection.ReplaceAllString(text, "")
	text = doubleSpace.ReplaceAllString(text, " ")
	text = brokenEllipsis.ReplaceAllString(text, "…")
	text = strayPeriod.ReplaceAllString(text, "$1")
	text = spaceBeforeStop.ReplaceAllString(text, ".")
	text = strings.ReplaceAll(text, "%", " percent")

	text = strings.ReplaceAll(text, "\u00a0", "")
	text = strings.ReplaceAll(text, "\n", " ")
	return strings.Join(strings.Fields(text), " ")
}
