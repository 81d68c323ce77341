package narrative

import "strings"

// Kind says how the lines of a section are collected
type Kind int

const (
	// Scalar sections join their non-blank lines with single spaces
	Scalar Kind = iota
	// List sections keep only "-" bullet lines, one item each
	List
)

// Section describes one labelled part of a generated narrative.
// A line containing any of Patterns (case-insensitive) starts the section.
type Section struct {
	Field         string
	Patterns      []string
	Kind          Kind
	Fallback      string
	FallbackItems []string
}

// Layout is the ordered set of sections a narrative is expected to contain.
// Header detection tries sections in this order.
type Layout []Section

// Narrative holds the resolved text of every section in a layout
type Narrative struct {
	Text  map[string]string   `json:"text,omitempty"`
	Items map[string][]string `json:"items,omitempty"`

	// Fallbacks lists the fields that were not found in the raw text
	Fallbacks []string `json:"-"`
}

// Get returns a scalar field
func (n Narrative) Get(field string) string {
	return n.Text[field]
}

// List returns a list field
func (n Narrative) List(field string) []string {
	return n.Items[field]
}

// Complete reports whether every field came from the raw text
func (n Narrative) Complete() bool {
	return len(n.Fallbacks) == 0
}

// Parse splits raw into the sections of layout. Lines before the first
// header are dropped; header lines themselves are never part of a section.
// Every field of the result is non-empty: sections missing from raw take
// their fallback.
func Parse(raw string, layout Layout) Narrative {
	text := make(map[string][]string, len(layout))
	items := make(map[string][]string, len(layout))

	current := -1
	for _, line := range strings.Split(raw, "\n") {
		if i := layout.header(line); i >= 0 {
			current = i
			continue
		}
		if current < 0 {
			continue
		}

		sec := layout[current]
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}

		switch sec.Kind {
		case Scalar:
			text[sec.Field] = append(text[sec.Field], trimmed)
		case List:
			if !strings.HasPrefix(trimmed, "-") {
				continue
			}
			if item := strings.TrimSpace(strings.TrimPrefix(trimmed, "-")); item != "" {
				items[sec.Field] = append(items[sec.Field], item)
			}
		}
	}

	n := Narrative{
		Text:  make(map[string]string),
		Items: make(map[string][]string),
	}
	for _, sec := range layout {
		switch sec.Kind {
		case Scalar:
			if v := strings.Join(text[sec.Field], " "); v != "" {
				n.Text[sec.Field] = v
			} else {
				n.Text[sec.Field] = sec.Fallback
				n.Fallbacks = append(n.Fallbacks, sec.Field)
			}
		case List:
			if v := items[sec.Field]; len(v) > 0 {
				n.Items[sec.Field] = v
			} else {
				n.Items[sec.Field] = append([]string(nil), sec.FallbackItems...)
				n.Fallbacks = append(n.Fallbacks, sec.Field)
			}
		}
	}
	return n
}

// Fallback resolves every section of layout to its fallback
func Fallback(layout Layout) Narrative {
	return Parse("", layout)
}

// header returns the index of the first section whose pattern appears in
// line, or -1
func (l Layout) header(line string) int {
	lower := strings.ToLower(line)
	for i, sec := range l {
		for _, p := range sec.Patterns {
			if p != "" && strings.Contains(lower, strings.ToLower(p)) {
				return i
			}
		}
	}
	return -1
}
