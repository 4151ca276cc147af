package model

// Token is one annotated word of a sentence
type Token struct {
	Index   int    `json:"index"`   // 1-based position within the sentence (0 is the parse root)
	Surface string `json:"surface"` // Word as written in the text
	POS     string `json:"pos"`     // Penn Treebank part-of-speech tag
	Lemma   string `json:"lemma"`   // Dictionary base form
}

// DependencyEdge is a labeled relation between two tokens of one sentence
type DependencyEdge struct {
	Relation  string `json:"relation"`  // Universal dependency label, e.g. "compound:prt"
	Governor  Token  `json:"governor"`  // Head token (zero Token for the root)
	Dependent Token  `json:"dependent"` // Attached token
}

// RelationParticle marks a verb particle, the signal for a phrasal verb
const RelationParticle = "compound:prt"

// Sentence holds the tokens and basic dependencies of one sentence
type Sentence struct {
	Tokens       []Token          `json:"tokens"`
	Dependencies []DependencyEdge `json:"dependencies"`
}

// Document is the full annotation of a text, sentences in text order
type Document struct {
	Sentences []Sentence `json:"sentences"`
}

// TokenCount returns the number of tokens across all sentences
func (d Document) TokenCount() int {
	n := 0
	for _, s := range d.Sentences {
		n += len(s.Tokens)
	}
	return n
}
