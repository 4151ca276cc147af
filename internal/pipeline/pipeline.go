package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/ppiankov/episodic/internal/extract"
	"github.com/ppiankov/episodic/internal/model"
	"github.com/ppiankov/episodic/internal/transcript"
	"github.com/ppiankov/episodic/internal/translate"
)

// Pipeline builds episode dictionaries: annotate, extract candidates,
// resolve translations. Episodes are processed one after another.
type Pipeline struct {
	extractor *extract.Extractor
	resolver  *translate.Resolver
	exclusion model.WordSet
	logger    *slog.Logger
	OnEpisode func(EpisodeResult) // optional progress hook
}

// EpisodeResult summarizes one built episode
type EpisodeResult struct {
	ID         model.EpisodeID
	Candidates int
	Translated int
	Elapsed    time.Duration
}

// NewPipeline wires an extractor and a resolver. exclusion holds the
// stopwords and already known words dropped during extraction.
func NewPipeline(extractor *extract.Extractor, resolver *translate.Resolver, exclusion model.WordSet, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Pipeline{
		extractor: extractor,
		resolver:  resolver,
		exclusion: exclusion,
		logger:    logger.With("component", "pipeline"),
	}
}

// BuildEpisode returns the dictionary of one episode. An annotation
// failure aborts the episode; translation misses never do. On
// cancellation the partial dictionary is returned with the context error.
func (p *Pipeline) BuildEpisode(ctx context.Context, ep transcript.Episode) (*model.EpisodeDictionary, error) {
	start := time.Now()

	candidates, err := p.extractor.Extract(ctx, ep.Text, p.exclusion)
	if err != nil {
		return nil, fmt.Errorf("episode %s: %w", ep.ID, err)
	}
	p.logger.Debug("candidates extracted", "episode", ep.ID, "count", len(candidates))

	dict, err := p.resolver.Resolve(ctx, ep.ID, candidates)
	if err != nil {
		return dict, fmt.Errorf("episode %s: %w", ep.ID, err)
	}

	res := EpisodeResult{ID: ep.ID, Candidates: len(candidates), Translated: dict.Len(), Elapsed: time.Since(start)}
	p.logger.Info("episode built", "episode", ep.ID, "candidates", res.Candidates, "translated", res.Translated, "elapsed", res.Elapsed)
	if p.OnEpisode != nil {
		p.OnEpisode(res)
	}
	return dict, nil
}

// BuildCorpus builds every episode in order. Episodes with no text are
// skipped. The first error stops the run; episodes finished before it are
// returned in the index so the caller can still save them.
func (p *Pipeline) BuildCorpus(ctx context.Context, episodes []transcript.Episode) (*model.CorpusIndex, error) {
	index := model.NewCorpusIndex()

	for _, ep := range episodes {
		if strings.TrimSpace(ep.Text) == "" {
			p.logger.Warn("episode has no text", "episode", ep.ID)
			continue
		}
		dict, err := p.BuildEpisode(ctx, ep)
		if err != nil {
			return index, err
		}
		index.Put(dict)
	}
	return index, nil
}
