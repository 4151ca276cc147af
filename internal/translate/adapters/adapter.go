package adapters

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/ppiankov/episodic/internal/model"
	"github.com/ppiankov/episodic/internal/translate"
)

// Getter returns the body of a page. The pipeline Fetcher satisfies it.
type Getter interface {
	Get(ctx context.Context, rawURL string) ([]byte, error)
}

// HostRater accepts per-host rate overrides
type HostRater interface {
	SetHostRate(host string, requestsPerSecond float64, burst int)
}

// BuildSources creates the sources in configured order. An llm source
// without an API key is skipped with a warning instead of failing the run.
func BuildSources(cfg *model.Config, pages Getter, rater HostRater, logger *slog.Logger) ([]translate.Source, error) {
	var sources []translate.Source

	for _, sc := range cfg.Sources {
		if sc.Rate > 0 && rater != nil && sc.BaseURL != "" {
			if u, err := url.Parse(sc.BaseURL); err == nil && u.Host != "" {
				rater.SetHostRate(u.Host, sc.Rate, 0)
			}
		}

		switch sc.Kind {
		case model.SourceWooordHunt:
			s, err := NewWooordHunt(sc, pages, logger)
			if err != nil {
				return nil, fmt.Errorf("source %s: %w", sc.Name, err)
			}
			sources = append(sources, s)
		case model.SourceMultitran:
			s, err := NewMultitran(sc, pages, logger)
			if err != nil {
				return nil, fmt.Errorf("source %s: %w", sc.Name, err)
			}
			sources = append(sources, s)
		case model.SourceLLM:
			llmCfg := cfg.LLM
			if sc.BaseURL != "" {
				llmCfg.BaseURL = sc.BaseURL
			}
			s, err := NewLLM(sc.Name, llmCfg, logger)
			if err != nil {
				if logger != nil {
					logger.Warn("llm source disabled", "source", sc.Name, "error", err)
				}
				continue
			}
			sources = append(sources, s)
		default:
			return nil, fmt.Errorf("source %s: unknown kind %q", sc.Name, sc.Kind)
		}
	}

	if len(sources) == 0 {
		return nil, fmt.Errorf("no usable dictionary sources configured")
	}
	return sources, nil
}
