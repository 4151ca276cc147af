package model

import (
	"errors"
	"testing"
)

func TestParseEpisodeID(t *testing.T) {
	tests := []struct {
		in      string
		wantErr bool
	}{
		{"0101", false},
		{"1024", false},
		{"101", true},
		{"01a1", true},
		{"", true},
		{"01010", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			id, err := ParseEpisodeID(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidEpisodeID) {
					t.Fatalf("expected ErrInvalidEpisodeID, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if string(id) != tt.in {
				t.Errorf("expected %s, got %s", tt.in, id)
			}
		})
	}
}

func TestNewEpisodeID(t *testing.T) {
	id, err := NewEpisodeID(1, 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != "0107" {
		t.Errorf("expected 0107, got %s", id)
	}
	if id.Season() != "01" || id.Episode() != "07" {
		t.Errorf("unexpected parts: %s %s", id.Season(), id.Episode())
	}

	if _, err := NewEpisodeID(100, 1); !errors.Is(err, ErrInvalidEpisodeID) {
		t.Errorf("expected ErrInvalidEpisodeID, got %v", err)
	}
}

func TestEpisodeDictionary_Order(t *testing.T) {
	d := NewEpisodeDictionary("0101")
	d.Add(TranslationEntry{Word: "zebra", Rendering: " z"})
	d.Add(TranslationEntry{Word: "apple", Rendering: " a"})
	if d.Add(TranslationEntry{Word: "zebra", Rendering: " other"}) {
		t.Errorf("expected duplicate add to be rejected")
	}

	words := d.Words()
	if len(words) != 2 || words[0] != "zebra" || words[1] != "apple" {
		t.Fatalf("unexpected order: %v", words)
	}

	e, ok := d.Get("zebra")
	if !ok || e.Rendering != " z" {
		t.Errorf("first entry should win, got %+v", e)
	}
}

func TestCorpusIndex_PutLookup(t *testing.T) {
	idx := NewCorpusIndex()
	first := NewEpisodeDictionary("0102")
	idx.Put(first)
	idx.Put(NewEpisodeDictionary("0101"))

	replacement := NewEpisodeDictionary("0102")
	replacement.Add(TranslationEntry{Word: "hello", Rendering: " hi"})
	idx.Put(replacement)

	ids := idx.IDs()
	if len(ids) != 2 || ids[0] != "0102" || ids[1] != "0101" {
		t.Fatalf("unexpected ids: %v", ids)
	}

	got, err := idx.Lookup("0102")
	if err != nil {
		t.Fatalf("lookup failed: %v", err)
	}
	if got.Len() != 1 {
		t.Errorf("expected replaced episode, got %d entries", got.Len())
	}

	if _, err := idx.Lookup("0909"); !errors.Is(err, ErrUnknownEpisode) {
		t.Errorf("expected ErrUnknownEpisode, got %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}

	cfg.Store.Driver = "xml"
	if err := cfg.Validate(); err == nil {
		t.Errorf("expected error for unknown driver")
	}

	cfg = DefaultConfig()
	cfg.Sources = append(cfg.Sources, SourceConfig{Name: "x", Kind: "babelfish", BaseURL: "http://x"})
	if err := cfg.Validate(); err == nil {
		t.Errorf("expected error for unknown source kind")
	}

	cfg = DefaultConfig()
	cfg.HTTP.MaxAttempts = 0
	if err := cfg.Validate(); err == nil {
		t.Errorf("expected error for zero attempts")
	}
}
