package pipeline

import (
	"fmt"
	"log/slog"

	"github.com/ppiankov/episodic/internal/annotate"
	"github.com/ppiankov/episodic/internal/cache"
	"github.com/ppiankov/episodic/internal/extract"
	"github.com/ppiankov/episodic/internal/model"
	"github.com/ppiankov/episodic/internal/throttle"
	"github.com/ppiankov/episodic/internal/translate"
	"github.com/ppiankov/episodic/internal/translate/adapters"
)

// NewFetcherFromConfig builds the shared fetcher with its page cache and
// per-host limiter. The limiter is returned for per-source rate overrides.
func NewFetcherFromConfig(cfg *model.Config, logger *slog.Logger) (*Fetcher, *throttle.Limiter) {
	limiter := throttle.NewLimiter(cfg.RateLimiting.RequestsPerSecond, cfg.RateLimiting.BurstSize)
	return NewFetcher(cfg.HTTP, cache.New(cfg.Cache), limiter, logger), limiter
}

// New wires the annotation client, the extraction policy and the
// configured dictionary sources into a pipeline
func New(cfg *model.Config, exclusion model.WordSet, logger *slog.Logger) (*Pipeline, error) {
	fetcher, limiter := NewFetcherFromConfig(cfg, logger)

	sources, err := adapters.BuildSources(cfg, fetcher, limiter, logger)
	if err != nil {
		return nil, fmt.Errorf("build sources: %w", err)
	}

	annotator := annotate.NewCoreNLPClient(cfg.Annotator, cfg.HTTP, logger)
	extractor := extract.NewExtractor(annotator, extract.NewPolicy(cfg.Extraction), logger)
	resolver := translate.NewResolver(sources, logger)

	return NewPipeline(extractor, resolver, exclusion, logger), nil
}

// Resolver exposes the resolver, mainly for progress hooks
func (p *Pipeline) Resolver() *translate.Resolver {
	return p.resolver
}
