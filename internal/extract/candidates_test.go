package extract

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/ppiankov/episodic/internal/model"
)

// tok builds a token; the surface form doubles as the lemma unless given
func tok(index int, surface, pos string, lemma ...string) model.Token {
	l := surface
	if len(lemma) > 0 {
		l = lemma[0]
	}
	return model.Token{Index: index, Surface: surface, POS: pos, Lemma: l}
}

func sentence(tokens ...model.Token) model.Sentence {
	return model.Sentence{Tokens: tokens}
}

func gaveUpSmoking() model.Document {
	she := tok(1, "She", "PRP", "she")
	gave := tok(2, "gave", "VBD", "give")
	up := tok(3, "up", "RP")
	smoking := tok(4, "smoking", "NN")
	stop := tok(5, ".", ".")

	s := sentence(she, gave, up, smoking, stop)
	s.Dependencies = []model.DependencyEdge{
		{Relation: "nsubj", Governor: gave, Dependent: she},
		{Relation: model.RelationParticle, Governor: gave, Dependent: up},
		{Relation: "obj", Governor: gave, Dependent: smoking},
	}
	return model.Document{Sentences: []model.Sentence{s}}
}

func TestCandidates_PhrasalVerb(t *testing.T) {
	got := Candidates(gaveUpSmoking(), DefaultPolicy(), nil)
	want := []string{"give", "give up", "smoking"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestCandidates_PickUp(t *testing.T) {
	picked := tok(2, "picked", "VBD", "pick")
	it := tok(3, "it", "PRP")
	up := tok(4, "up", "RP")
	s := sentence(tok(1, "He", "PRP", "he"), picked, it, up)
	s.Dependencies = []model.DependencyEdge{
		{Relation: model.RelationParticle, Governor: picked, Dependent: up},
	}

	got := Candidates(model.Document{Sentences: []model.Sentence{s}}, DefaultPolicy(), nil)
	if !contains(got, "pick up") {
		t.Errorf("expected phrase 'pick up' in %v", got)
	}
	if contains(got, "up") || contains(got, "it") {
		t.Errorf("particle or pronoun leaked: %v", got)
	}
}

func TestCandidates_ExcludedTags(t *testing.T) {
	var tokens []model.Token
	for i, tag := range model.DefaultExcludedTags {
		tokens = append(tokens, tok(i+1, "word"+string(rune('a'+i)), tag))
	}
	tokens = append(tokens, tok(len(tokens)+1, "table", "NN"))

	got := Candidates(model.Document{Sentences: []model.Sentence{sentence(tokens...)}}, DefaultPolicy(), nil)
	if !reflect.DeepEqual(got, []string{"table"}) {
		t.Fatalf("expected only 'table', got %v", got)
	}
}

func TestCandidates_Hyphenated(t *testing.T) {
	tests := []struct {
		name  string
		lemma string
		want  []string
	}{
		{"parts and whole", "well-known", []string{"well", "known", "well-known"}},
		{"single letter part dropped", "x-ray", []string{"ray", "x-ray"}},
		{"un- prefix keeps parts only", "un-american", []string{"un", "american"}},
		{"stretched letters", "h-e-e-l-p", nil},
		{"stuttering", "n-n-n-nothing", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := model.Document{Sentences: []model.Sentence{sentence(tok(1, tt.lemma, "JJ"))}}
			got := Candidates(doc, DefaultPolicy(), nil)
			if len(got) == 0 && len(tt.want) == 0 {
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestCandidates_HyphenDedup(t *testing.T) {
	doc := model.Document{Sentences: []model.Sentence{
		sentence(tok(1, "known", "VBN"), tok(2, "well-known", "JJ"), tok(3, "well", "RB")),
	}}

	got := Candidates(doc, DefaultPolicy(), nil)
	want := []string{"known", "well", "well-known"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestCandidates_FinalFilter(t *testing.T) {
	doc := model.Document{Sentences: []model.Sentence{
		sentence(
			tok(1, "3d", "NN"),
			tok(2, "...", ":"),
			tok(3, "привет", "NN"),
			tok(4, "mp3", "NN"),
			tok(5, "coffee", "NN"),
		),
	}}

	got := Candidates(doc, DefaultPolicy(), nil)
	if !reflect.DeepEqual(got, []string{"coffee"}) {
		t.Fatalf("expected only 'coffee', got %v", got)
	}
}

func TestCandidates_Exclusion(t *testing.T) {
	exclusion := model.NewWordSet("smoking", "give up", "well")
	doc := gaveUpSmoking()
	doc.Sentences = append(doc.Sentences, sentence(tok(1, "well-known", "JJ")))

	got := Candidates(doc, DefaultPolicy(), exclusion)
	want := []string{"give", "known", "well-known"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestCandidates_Deterministic(t *testing.T) {
	first := Candidates(gaveUpSmoking(), DefaultPolicy(), nil)
	for i := 0; i < 5; i++ {
		if got := Candidates(gaveUpSmoking(), DefaultPolicy(), nil); !reflect.DeepEqual(got, first) {
			t.Fatalf("run %d differs: %v vs %v", i, got, first)
		}
	}
}

func TestNewPolicy_Custom(t *testing.T) {
	p := NewPolicy(model.ExtractionConfig{ExcludedTags: []string{"NN"}, MinLemmaLength: 3})
	if !p.ExcludesTag("NN") || p.ExcludesTag("PRP") {
		t.Errorf("custom tag table not applied")
	}
	if p.LongEnough("cat") || !p.LongEnough("café") {
		t.Errorf("length should count characters above the minimum")
	}
}

type stubAnnotator struct {
	doc model.Document
	err error
}

func (s stubAnnotator) Annotate(ctx context.Context, text string) (model.Document, error) {
	return s.doc, s.err
}

func TestExtractor_Extract(t *testing.T) {
	e := NewExtractor(stubAnnotator{doc: gaveUpSmoking()}, DefaultPolicy(), nil)
	got, err := e.Extract(context.Background(), "She gave up smoking.", model.WordSet{})
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if len(got) != 3 {
		t.Errorf("expected 3 candidates, got %v", got)
	}
}

func TestExtractor_AnnotationFailure(t *testing.T) {
	boom := errors.New("connection refused")
	e := NewExtractor(stubAnnotator{err: boom}, DefaultPolicy(), nil)
	got, err := e.Extract(context.Background(), "text", nil)
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped annotation error, got %v", err)
	}
	if got != nil {
		t.Errorf("expected no partial result, got %v", got)
	}
}

func contains(items []string, s string) bool {
	for _, it := range items {
		if it == s {
			return true
		}
	}
	return false
}
