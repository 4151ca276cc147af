package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/ppiankov/episodic/internal/model"
	"github.com/ppiankov/episodic/internal/util"
)

var (
	// ErrCorrupt is returned when persisted data cannot be read back faithfully
	ErrCorrupt = errors.New("corrupt corpus data")
	// ErrUnknownDriver is returned by Open for an unsupported driver name
	ErrUnknownDriver = errors.New("unknown store driver")
)

// Store persists the whole corpus index. Save replaces the stored index;
// callers load, merge new episodes and save once per run.
type Store interface {
	Load(ctx context.Context) (*model.CorpusIndex, error)
	Save(ctx context.Context, index *model.CorpusIndex) error
	Close() error
}

// Open returns the store selected by cfg.Driver
func Open(cfg model.StoreConfig) (Store, error) {
	path := util.ExpandHome(cfg.Path)
	switch cfg.Driver {
	case model.StoreJSON, "":
		return NewJSONStore(path), nil
	case model.StoreSQLite:
		return OpenSQLite(path)
	case model.StoreLegacy:
		return NewLegacyStore(path), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.Driver)
	}
}

// Append loads the stored index, puts every episode of built into it and
// saves the result. Episodes already stored under the same ID are replaced.
func Append(ctx context.Context, s Store, built *model.CorpusIndex) (*model.CorpusIndex, error) {
	index, err := s.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	index.Merge(built)
	if err := s.Save(ctx, index); err != nil {
		return nil, fmt.Errorf("save: %w", err)
	}
	return index, nil
}
