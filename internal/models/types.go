package models

import (
	"strings"
	"time"
)

// Category is a mood category chosen when an entry is logged
type Category string

// Mood categories offered by the entry form
const (
	MoodHappy   Category = "happy"
	MoodSad     Category = "sad"
	MoodAnxious Category = "anxious"
	MoodAngry   Category = "angry"
	MoodCalm    Category = "calm"
	MoodTired   Category = "tired"

	// MoodUncategorized buckets stored values outside the fixed set
	MoodUncategorized Category = "uncategorized"
)

// Categories is the fixed enumeration, in display order.
// Analytics use this order to break ties.
var Categories = []Category{MoodHappy, MoodSad, MoodAnxious, MoodAngry, MoodCalm, MoodTired}

// Valid reports whether c belongs to the fixed enumeration
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Emoji returns the glyph the entry form shows next to the category
func (c Category) Emoji() string {
	switch c {
	case MoodHappy:
		return "😊"
	case MoodSad:
		return "😔"
	case MoodAnxious:
		return "😰"
	case MoodAngry:
		return "😡"
	case MoodCalm:
		return "😌"
	case MoodTired:
		return "😴"
	default:
		return "📝"
	}
}

// ParseCategory normalizes user input into a known category
func ParseCategory(s string) (Category, bool) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	return c, c.Valid()
}

// MoodEntry is one journal record
type MoodEntry struct {
	ID        string    `json:"id"`
	Owner     string    `json:"owner"`
	Mood      Category  `json:"mood"`
	Note      string    `json:"note"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateMoodRequest is the body of POST /moods
type CreateMoodRequest struct {
	Mood string `json:"mood"`
	Note string `json:"note"`
}

// CreateMoodResponse is returned after an entry is stored
type CreateMoodResponse struct {
	Entry  MoodEntry `json:"entry"`
	Streak int       `json:"streak"`
}

// HealthResponse is returned by the health endpoint
type HealthResponse struct {
	Status    string `json:"status"`
	Generator string `json:"generator"`
	Database  string `json:"database"`
	Version   string `json:"version"`
}

// Letter represents a generated weekly reflection
type Letter struct {
	LetterID  string `json:"letter_id"`
	Type      string `json:"type"`
	ForDate   string `json:"for_date"`
	Text      string `json:"text"`
	CreatedTS string `json:"created_ts"`
}

// LettersResponse is returned by the letters endpoint
type LettersResponse struct {
	Letters []Letter `json:"letters"`
}

// Generation is one logged feature request
type Generation struct {
	Feature   string    `json:"feature"`
	Outcome   string    `json:"outcome"`
	LatencyMS int64     `json:"latency_ms"`
	CreatedAt time.Time `json:"created_at"`
}

// GenerationsResponse is returned by the generations endpoint
type GenerationsResponse struct {
	Generations []Generation `json:"generations"`
}

// Generation outcomes recorded for every feature that may call the generator
const (
	OutcomeGenerated   = "generated"
	OutcomeEmptyLog    = "empty_log"
	OutcomeUnavailable = "service_unavailable"
	OutcomeMalformed   = "malformed_response"
)
