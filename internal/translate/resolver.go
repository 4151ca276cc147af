package translate

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/ppiankov/episodic/internal/model"
)

// Source is one dictionary lookup strategy
type Source interface {
	Name() string
	Lookup(ctx context.Context, word string) Result
}

// Resolver tries its sources in order for each word and keeps the first
// translation. Words no source can translate are dropped.
type Resolver struct {
	sources  []Source
	logger   *slog.Logger
	OnResult func(word string, res Result) // optional progress hook
}

// NewResolver creates a resolver over sources, in priority order
func NewResolver(sources []Source, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Resolver{sources: sources, logger: logger.With("component", "resolver")}
}

// Sources returns the source names in lookup order
func (r *Resolver) Sources() []string {
	names := make([]string, len(r.sources))
	for i, s := range r.sources {
		names[i] = s.Name()
	}
	return names
}

// Lookup runs the fallback chain for a single word
func (r *Resolver) Lookup(ctx context.Context, word string) Result {
	last := Miss("no sources configured")
	for _, src := range r.sources {
		if ctx.Err() != nil {
			return Miss("cancelled")
		}
		res := src.Lookup(ctx, word)
		if res.OK() {
			if res.Entry.Source == "" {
				res.Entry.Source = src.Name()
			}
			return res
		}
		r.logger.Debug("source miss", "source", src.Name(), "word", word, "reason", res.Reason)
		last = res
	}
	return last
}

// Resolve translates candidates one at a time, in order, into a dictionary
// for episode id. The only error is context cancellation, returned with the
// entries resolved so far.
func (r *Resolver) Resolve(ctx context.Context, id model.EpisodeID, candidates []string) (*model.EpisodeDictionary, error) {
	dict := model.NewEpisodeDictionary(id)
	started := time.Now()
	missed := 0

	for _, word := range candidates {
		if err := ctx.Err(); err != nil {
			return dict, err
		}

		res := r.Lookup(ctx, word)
		if r.OnResult != nil {
			r.OnResult(word, res)
		}
		if !res.OK() {
			missed++
			continue
		}
		dict.Add(res.Entry)
	}

	r.logger.Info("resolved episode",
		"episode", id,
		"candidates", len(candidates),
		"translated", dict.Len(),
		"dropped", missed,
		"elapsed", time.Since(started).Round(time.Millisecond))

	return dict, ctx.Err()
}
