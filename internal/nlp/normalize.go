package nlp

import "strings"

// Normalize is the single text transform shared by training and
// inference. Lowercases, replaces non-letter runes with spaces,
// collapses whitespace, then stems each token. The same input always
// yields the same output.
func Normalize(text string) string {
	text = strings.ToLower(text)

	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if r >= 'a' && r <= 'z' {
			b.WriteRune(r)
		} else {
			b.WriteByte(' ')
		}
	}

	fields := strings.Fields(b.String())
	for i, w := range fields {
		fields[i] = stem(w)
	}
	return strings.Join(fields, " ")
}

// stem strips common suffixes. Deliberately conservative: short words
// pass through untouched so intent keywords are not mangled.
func stem(w string) string {
	switch {
	case len(w) > 5 && strings.HasSuffix(w, "ing"):
		return w[:len(w)-3]
	case len(w) > 4 && strings.HasSuffix(w, "ies"):
		return w[:len(w)-3] + "y"
	case len(w) > 4 && strings.HasSuffix(w, "ed"):
		return w[:len(w)-2]
	case len(w) > 3 && strings.HasSuffix(w, "s") &&
		!strings.HasSuffix(w, "ss") && !strings.HasSuffix(w, "us") && !strings.HasSuffix(w, "is"):
		return w[:len(w)-1]
	default:
		return w
	}
}
