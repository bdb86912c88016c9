package field

import (
	"strings"

	"golang.org/x/text/cases"
)

// Line is a classified input line.
type Line struct {
	// Number is the 1-based position in the input.
	Number int

	// Text is the line with surrounding whitespace removed.
	Text string

	// Kind is the classification.
	Kind Kind

	// Name is the field name exactly as written. Empty for non-field kinds.
	Name string

	// Value is the text after the colon, trimmed. Empty for non-field kinds.
	Value string
}

// foldedNames maps case-folded field names to kinds.
var foldedNames = func() map[string]Kind {
	m := make(map[string]Kind, len(fieldNames))
	for k, name := range fieldNames {
		m[cases.Fold().String(name)] = k
	}
	return m
}()

// Classify assigns a kind to a raw line. Field names are matched
// case-insensitively; anything that is not a known field, a comment or
// whitespace is KindInvalid.
func Classify(number int, raw string) Line {
	text := strings.TrimSpace(raw)
	line := Line{Number: number, Text: text}

	switch {
	case text == "":
		line.Kind = KindBlank
		return line
	case strings.HasPrefix(text, "#"):
		line.Kind = KindComment
		return line
	}

	idx := strings.IndexByte(text, ':')
	if idx <= 0 {
		line.Kind = KindInvalid
		return line
	}

	kind, ok := foldedNames[cases.Fold().String(text[:idx])]
	if !ok {
		line.Kind = KindInvalid
		return line
	}

	line.Kind = kind
	line.Name = text[:idx]
	line.Value = strings.TrimSpace(text[idx+1:])
	return line
}

// Render builds "Name: value" using the name as it was written.
func (l Line) Render(value string) string {
	name := l.Name
	if name == "" {
		name = l.Kind.String()
	}
	return name + ": " + value
}
