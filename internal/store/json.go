package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/ppiankov/episodic/internal/model"
)

const documentVersion = 1

// JSONStore keeps the corpus index in a single JSON document
type JSONStore struct {
	mu   sync.Mutex
	path string
}

// Document is the on-disk JSON layout
type Document struct {
	Version  int               `json:"version"`
	Episodes []EpisodeDocument `json:"episodes"`
}

// EpisodeDocument is one episode with its entries in order
type EpisodeDocument struct {
	ID      string                   `json:"id"`
	Entries []model.TranslationEntry `json:"entries"`
}

// NewJSONStore creates a store for path; the file is created on first Save
func NewJSONStore(path string) *JSONStore {
	return &JSONStore{path: path}
}

// Load reads the index; a missing file is an empty index
func (s *JSONStore) Load(ctx context.Context) (*model.CorpusIndex, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := os.Open(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return model.NewCorpusIndex(), nil
	}
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var doc Document
	if err := json.NewDecoder(file).Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorrupt, s.path, err)
	}
	if doc.Version > documentVersion {
		return nil, fmt.Errorf("%w: %s: unsupported version %d", ErrCorrupt, s.path, doc.Version)
	}
	return FromDocument(doc)
}

// Save writes the index atomically
func (s *JSONStore) Save(ctx context.Context, index *model.CorpusIndex) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create store dir: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".corpus-*.json")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := WriteJSON(tmp, index); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), s.path)
}

// Close is a no-op; the file is only open during Load and Save
func (s *JSONStore) Close() error { return nil }

// ToDocument converts an index to its JSON layout
func ToDocument(index *model.CorpusIndex) Document {
	doc := Document{Version: documentVersion, Episodes: make([]EpisodeDocument, 0, index.Len())}
	for _, dict := range index.Episodes() {
		doc.Episodes = append(doc.Episodes, EpisodeDocument{ID: string(dict.ID), Entries: dict.Entries()})
	}
	return doc
}

// FromDocument validates a JSON layout and builds the index
func FromDocument(doc Document) (*model.CorpusIndex, error) {
	index := model.NewCorpusIndex()
	for _, ep := range doc.Episodes {
		id, err := model.ParseEpisodeID(ep.ID)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
		}
		dict := model.NewEpisodeDictionary(id)
		for _, e := range ep.Entries {
			if e.Word == "" {
				return nil, fmt.Errorf("%w: episode %s: entry without word", ErrCorrupt, id)
			}
			dict.Add(e)
		}
		index.Put(dict)
	}
	return index, nil
}

// WriteJSON encodes the index as an indented document
func WriteJSON(w io.Writer, index *model.CorpusIndex) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(ToDocument(index)); err != nil {
		return fmt.Errorf("encode corpus: %w", err)
	}
	return nil
}
