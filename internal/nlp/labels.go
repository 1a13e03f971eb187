package nlp

import (
	"fmt"
	"sort"
)

// LabelEncoder maps class names to a dense integer space. Classes are
// sorted so the encoding is stable for a given label set.
type LabelEncoder struct {
	Classes []string `json:"classes"`

	index map[string]int
}

func FitLabelEncoder(labels []string) *LabelEncoder {
	seen := map[string]bool{}
	classes := make([]string, 0)
	for _, l := range labels {
		if !seen[l] {
			seen[l] = true
			classes = append(classes, l)
		}
	}
	sort.Strings(classes)
	enc := &LabelEncoder{Classes: classes}
	enc.buildIndex()
	return enc
}

func (e *LabelEncoder) buildIndex() {
	e.index = make(map[string]int, len(e.Classes))
	for i, c := range e.Classes {
		e.index[c] = i
	}
}

func (e *LabelEncoder) NumClasses() int { return len(e.Classes) }

func (e *LabelEncoder) Transform(labels []string) ([]int, error) {
	if e.index == nil {
		e.buildIndex()
	}
	out := make([]int, len(labels))
	for i, l := range labels {
		id, ok := e.index[l]
		if !ok {
			return nil, fmt.Errorf("unknown label %q", l)
		}
		out[i] = id
	}
	return out, nil
}

// Inverse returns the class name for an encoded id.
func (e *LabelEncoder) Inverse(id int) (string, error) {
	if id < 0 || id >= len(e.Classes) {
		return "", fmt.Errorf("label id %d out of range", id)
	}
	return e.Classes[id], nil
}
