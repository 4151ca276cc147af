package model

// WordSet is an unordered set of words (stopwords, known or learned words)
type WordSet map[string]struct{}

// NewWordSet builds a set from the given words
func NewWordSet(words ...string) WordSet {
	s := make(WordSet, len(words))
	for _, w := range words {
		s[w] = struct{}{}
	}
	return s
}

// Has reports whether word is in the set. A nil set contains nothing.
func (s WordSet) Has(word string) bool {
	_, ok := s[word]
	return ok
}

// Union returns a new set with the members of s and other
func (s WordSet) Union(other WordSet) WordSet {
	out := make(WordSet, len(s)+len(other))
	for w := range s {
		out[w] = struct{}{}
	}
	for w := range other {
		out[w] = struct{}{}
	}
	return out
}
