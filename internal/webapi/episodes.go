package webapi

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/ppiankov/episodic/internal/model"
	"github.com/ppiankov/episodic/internal/vocab"
)

type episodeSummary struct {
	ID      model.EpisodeID `json:"id"`
	Season  string          `json:"season"`
	Episode string          `json:"episode"`
	Entries int             `json:"entries"`
}

// Episodes serves the episode list and the per-episode vocabulary.
// ?learned=a+b removes already learned words from the listing.
func Episodes(group *echo.Group, index *model.CorpusIndex) {
	group.GET("", func(c echo.Context) error {
		summaries := make([]episodeSummary, 0, index.Len())
		for _, dict := range index.Episodes() {
			summaries = append(summaries, episodeSummary{
				ID:      dict.ID,
				Season:  dict.ID.Season(),
				Episode: dict.ID.Episode(),
				Entries: dict.Len(),
			})
		}
		return c.JSON(http.StatusOK, map[string]any{
			"episodes": summaries,
		})
	})

	group.GET("/:id", func(c echo.Context) error {
		id, err := model.ParseEpisodeID(c.Param("id"))
		if err != nil {
			return err
		}
		dict, err := index.Lookup(id)
		if err != nil {
			return err
		}

		learned := vocab.ParseLearned(strings.Join(c.QueryParams()["learned"], " "))
		entries := make([]model.TranslationEntry, 0, dict.Len())
		for _, word := range vocab.FilterLearned(dict, learned) {
			e, _ := dict.Get(word)
			entries = append(entries, e)
		}

		return c.JSON(http.StatusOK, map[string]any{
			"id":      id,
			"total":   dict.Len(),
			"entries": entries,
		})
	})
}

// Frequencies serves the series-wide frequency dictionary, optionally
// truncated with ?limit=N
func Frequencies(group *echo.Group, index *model.CorpusIndex) {
	freqs := vocab.Frequencies(index)

	group.GET("", func(c echo.Context) error {
		out := freqs
		if raw := c.QueryParam("limit"); raw != "" {
			limit, err := strconv.Atoi(raw)
			if err != nil || limit < 0 {
				return echo.NewHTTPError(http.StatusBadRequest, "limit must be a non-negative integer")
			}
			if limit < len(out) {
				out = out[:limit]
			}
		}
		return c.JSON(http.StatusOK, map[string]any{
			"total":       len(freqs),
			"frequencies": out,
		})
	})
}
