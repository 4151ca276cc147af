package translate

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/ppiankov/episodic/internal/model"
)

type mapSource struct {
	name    string
	entries map[string]string
	calls   []string
}

func (s *mapSource) Name() string { return s.name }

func (s *mapSource) Lookup(ctx context.Context, word string) Result {
	s.calls = append(s.calls, word)
	r, ok := s.entries[word]
	if !ok {
		return Miss("%s: no entry", s.name)
	}
	return Found(model.TranslationEntry{Word: word, Rendering: r})
}

func TestResolver_FallbackOrder(t *testing.T) {
	primary := &mapSource{name: "primary", entries: map[string]string{"hello": " hɛˈləʊ – привет"}}
	secondary := &mapSource{name: "secondary", entries: map[string]string{
		"hello":   " should not be used",
		"give up": " - бросать",
	}}

	r := NewResolver([]Source{primary, secondary}, nil)
	dict, err := r.Resolve(context.Background(), "0101", []string{"hello", "give up", "zzzz"})
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	if !reflect.DeepEqual(dict.Words(), []string{"hello", "give up"}) {
		t.Fatalf("unexpected words %v", dict.Words())
	}
	hello, _ := dict.Get("hello")
	if hello.Rendering != " hɛˈləʊ – привет" || hello.Source != "primary" {
		t.Errorf("primary should win: %+v", hello)
	}
	giveUp, _ := dict.Get("give up")
	if giveUp.Source != "secondary" {
		t.Errorf("expected fallback to secondary: %+v", giveUp)
	}

	if !reflect.DeepEqual(secondary.calls, []string{"give up", "zzzz"}) {
		t.Errorf("secondary should only see primary misses, got %v", secondary.calls)
	}
	if dict.ID != "0101" {
		t.Errorf("unexpected episode id %s", dict.ID)
	}
}

func TestResolver_OnResult(t *testing.T) {
	src := &mapSource{name: "a", entries: map[string]string{"cat": " кот"}}
	r := NewResolver([]Source{src}, nil)

	outcomes := map[string]Outcome{}
	r.OnResult = func(word string, res Result) { outcomes[word] = res.Outcome }

	if _, err := r.Resolve(context.Background(), "0101", []string{"cat", "dog"}); err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if outcomes["cat"] != Translated || outcomes["dog"] != NotFound {
		t.Errorf("unexpected outcomes %v", outcomes)
	}
}

func TestResolver_NoSources(t *testing.T) {
	r := NewResolver(nil, nil)
	if res := r.Lookup(context.Background(), "word"); res.OK() {
		t.Errorf("expected miss without sources")
	}
}

func TestResolver_Cancelled(t *testing.T) {
	src := &mapSource{name: "a", entries: map[string]string{"cat": " кот"}}
	r := NewResolver([]Source{src}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	dict, err := r.Resolve(ctx, "0101", []string{"cat"})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if dict == nil || dict.Len() != 0 {
		t.Errorf("expected empty partial dictionary")
	}
	if len(src.calls) != 0 {
		t.Errorf("no lookups expected after cancellation")
	}
}
