package transcript

import (
	"bufio"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/ppiankov/episodic/internal/model"
)

var headerPattern = regexp.MustCompile(`^Series (\d{2}) Episode (\d{2}) [–-] ?(.*)$`)

// Episode is one transcript taken from the corpus
type Episode struct {
	ID    model.EpisodeID `json:"id"`
	Title string          `json:"title"`
	Text  string          `json:"text"`
}

// Split finds every "Series NN Episode NN – title" header in corpus and
// takes the lines after it, up to the first blank line, as the episode
// body. Blank lines directly after a header are skipped. A header without
// a body yields an episode with empty text.
func Split(corpus string) []Episode {
	var (
		episodes []Episode
		current  *Episode
		body     []string
		closed   bool
	)

	flush := func() {
		if current != nil {
			current.Text = strings.Join(body, "\n")
			episodes = append(episodes, *current)
		}
		current, body, closed = nil, nil, false
	}

	scanner := bufio.NewScanner(strings.NewReader(corpus))
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")

		if m := headerPattern.FindStringSubmatch(strings.TrimSpace(line)); m != nil {
			flush()
			id, err := headerID(m[1], m[2])
			if err != nil {
				continue
			}
			current = &Episode{ID: id, Title: strings.TrimSpace(m[3])}
			continue
		}
		if current == nil || closed {
			continue
		}
		if strings.TrimSpace(line) == "" {
			if len(body) > 0 {
				closed = true
			}
			continue
		}
		body = append(body, line)
	}
	flush()
	return episodes
}

func headerID(season, episode string) (model.EpisodeID, error) {
	s, err := strconv.Atoi(season)
	if err != nil {
		return "", fmt.Errorf("%w: season %q", model.ErrInvalidEpisodeID, season)
	}
	e, err := strconv.Atoi(episode)
	if err != nil {
		return "", fmt.Errorf("%w: episode %q", model.ErrInvalidEpisodeID, episode)
	}
	return model.NewEpisodeID(s, e)
}

// Prepare splits corpus and cleans every episode body
func Prepare(corpus string) []Episode {
	episodes := Split(corpus)
	for i := range episodes {
		episodes[i].Text = Clean(episodes[i].Text)
	}
	return episodes
}
