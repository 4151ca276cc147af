package translate

import (
	"fmt"

	"github.com/ppiankov/episodic/internal/model"
)

// Outcome tags a lookup Result
type Outcome int

const (
	// NotFound means the source produced no usable translation
	NotFound Outcome = iota
	// Translated means Entry holds a complete translation
	Translated
)

func (o Outcome) String() string {
	if o == Translated {
		return "translated"
	}
	return "not_found"
}

// Result is what a source returns for one word: either a translation or
// the reason there is none. Sources never return errors.
type Result struct {
	Outcome Outcome
	Entry   model.TranslationEntry
	Reason  string
}

// Found wraps a translated entry
func Found(entry model.TranslationEntry) Result {
	return Result{Outcome: Translated, Entry: entry}
}

// Miss reports a failed lookup with a short reason for debug logs
func Miss(format string, args ...any) Result {
	return Result{Outcome: NotFound, Reason: fmt.Sprintf(format, args...)}
}

// OK reports whether the result carries a translation
func (r Result) OK() bool {
	return r.Outcome == Translated
}
