package narrative

import (
	"fmt"
	"strings"
)

// Item is one entry of a record's item list, e.g. a track
type Item struct {
	Title  string `json:"title" yaml:"title"`
	Artist string `json:"artist" yaml:"artist"`
}

// Record is one element of a generated batch such as a challenge or a playlist
type Record struct {
	Label       string `json:"emoji" yaml:"emoji"`
	Title       string `json:"title" yaml:"title"`
	Description string `json:"description" yaml:"description"`
	Items       []Item `json:"tracks,omitempty" yaml:"tracks,omitempty"`
}

// Field names a record field a batch layout can require
type Field string

const (
	FieldLabel       Field = "label"
	FieldTitle       Field = "title"
	FieldDescription Field = "description"
)

// BatchLayout describes the repeated "key: value" blocks of a batch.
// Keys are matched case-insensitively against the text before the first ":".
type BatchLayout struct {
	// LabelKey starts a new record
	LabelKey       string
	TitleKey       string
	DescriptionKey string
	// ItemsKey switches on bullet collection; empty means records carry no items
	ItemsKey string

	Required []Field
	MinItems int
	Count    int
}

type batchState int

const (
	noRecord batchState = iota
	accumulating
)

// ParseBatch reads the records in raw. When fewer than layout.Count records
// pass validation, a copy of fallback is returned instead; a partial batch is
// never mixed with fallback records.
func ParseBatch(raw string, layout BatchLayout, fallback []Record) []Record {
	records, ok := TryParseBatch(raw, layout)
	if !ok {
		return copyRecords(fallback)
	}
	return records
}

// TryParseBatch is ParseBatch without the fallback. It reports false when
// raw does not hold layout.Count valid records.
func TryParseBatch(raw string, layout BatchLayout) ([]Record, bool) {
	var (
		records    []Record
		open       Record
		state      = noRecord
		collecting bool
	)

	flush := func() {
		if state == accumulating {
			records = append(records, open)
		}
		open = Record{}
		collecting = false
	}

	for _, line := range strings.Split(raw, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}

		if key, value, ok := layout.field(trimmed); ok {
			switch key {
			case layout.LabelKey:
				flush()
				state = accumulating
				open.Label = value
				continue
			}
			if state == noRecord {
				continue
			}
			collecting = false
			switch key {
			case layout.TitleKey:
				open.Title = value
			case layout.DescriptionKey:
				open.Description = value
			case layout.ItemsKey:
				collecting = true
			}
			continue
		}

		if state != accumulating || !collecting || !strings.HasPrefix(trimmed, "-") {
			continue
		}
		entry := strings.TrimSpace(strings.TrimPrefix(trimmed, "-"))
		title, artist, ok := strings.Cut(entry, " - ")
		if !ok {
			continue
		}
		open.Items = append(open.Items, Item{Title: strings.TrimSpace(title), Artist: strings.TrimSpace(artist)})
	}
	flush()

	valid := records[:0]
	for _, r := range records {
		if layout.valid(r) {
			valid = append(valid, r)
		}
	}

	if layout.Count < 0 || len(valid) < layout.Count {
		return nil, false
	}
	return valid[:layout.Count], true
}

// Check reports why records cannot stand in as a full batch for l. Records
// past l.Count are ignored.
func (l BatchLayout) Check(records []Record) error {
	if len(records) < l.Count {
		return fmt.Errorf("need %d records, got %d", l.Count, len(records))
	}
	for i, r := range records[:l.Count] {
		if !l.valid(r) {
			return fmt.Errorf("record %d is missing a required field or has fewer than %d items", i+1, l.MinItems)
		}
	}
	return nil
}

// field splits a "key: value" line whose key is one the layout knows
func (l BatchLayout) field(line string) (key, value string, ok bool) {
	k, v, found := strings.Cut(line, ":")
	if !found {
		return "", "", false
	}
	k = strings.ToLower(strings.TrimSpace(k))
	for _, known := range []string{l.LabelKey, l.TitleKey, l.DescriptionKey, l.ItemsKey} {
		if known != "" && k == strings.ToLower(known) {
			return known, strings.TrimSpace(v), true
		}
	}
	return "", "", false
}

func (l BatchLayout) valid(r Record) bool {
	for _, f := range l.Required {
		var v string
		switch f {
		case FieldLabel:
			v = r.Label
		case FieldTitle:
			v = r.Title
		case FieldDescription:
			v = r.Description
		}
		if v == "" {
			return false
		}
	}
	return len(r.Items) >= l.MinItems
}

func copyRecords(src []Record) []Record {
	out := make([]Record, len(src))
	for i, r := range src {
		out[i] = r
		out[i].Items = append([]Item(nil), r.Items...)
	}
	return out
}
