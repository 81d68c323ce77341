package wellness

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mrwolf/moodlog/internal/analytics"
	"github.com/mrwolf/moodlog/internal/db"
	"github.com/mrwolf/moodlog/internal/models"
	"github.com/mrwolf/moodlog/internal/narrative"
)

// LetterView is a rendered weekly reflection
type LetterView struct {
	// ForDate is the ISO week, e.g. "2026-W41"
	ForDate string `json:"for_date"`
	Entries int    `json:"entries"`
	Text    string `json:"text"`
	Outcome string `json:"outcome"`
}

// WeeklyLetter writes a reflection over the seven days before end
func (s *Service) WeeklyLetter(ctx context.Context, owner string, end time.Time) (*LetterView, error) {
	end = end.In(s.loc)
	entries, err := s.store.ListEntries(ctx, owner, db.ListOptions{
		Since: end.AddDate(0, 0, -7),
		Until: end,
		Order: db.OldestFirst,
	})
	if err != nil {
		return nil, fmt.Errorf("loading week: %w", err)
	}

	year, week := end.ISOWeek()
	view := &LetterView{ForDate: fmt.Sprintf("%d-W%02d", year, week), Entries: len(entries)}

	n, outcome := s.narrate(ctx, owner, FeatureWeeklyLetter, entries, s.content.Layouts[NarrativeWeekly], func() string {
		return fmt.Sprintf(weeklyLetterPrompt, s.dayLines(entries), moodCounts(entries))
	})
	view.Text = renderLetter(n)
	view.Outcome = outcome
	return view, nil
}

// dayLines renders entries as "Mon 12 Oct, mood: note" lines
func (s *Service) dayLines(entries []models.MoodEntry) string {
	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		day := e.CreatedAt.In(s.loc).Format("Mon 2 Jan")
		lines = append(lines, fmt.Sprintf("%s, %s: %s", day, e.Mood, truncate(strings.TrimSpace(e.Note), maxNoteLen)))
	}
	return strings.Join(lines, "\n")
}

// moodCounts renders the distribution as "happy 3, sad 1" in category order
func moodCounts(entries []models.MoodEntry) string {
	dist := analytics.Analyze(entries, analytics.Presets[analytics.PresetDashboard]).Distribution
	var parts []string
	for _, c := range append(append([]models.Category{}, models.Categories...), models.MoodUncategorized) {
		if dist[c] > 0 {
			parts = append(parts, fmt.Sprintf("%s %d", c, dist[c]))
		}
	}
	return strings.Join(parts, ", ")
}

func renderLetter(n narrative.Narrative) string {
	var b strings.Builder
	fmt.Fprintf(&b, "THIS WEEK: %s\n\nPATTERNS:\n", n.Get("this_week"))
	for _, p := range n.List("patterns") {
		fmt.Fprintf(&b, "- %s\n", p)
	}
	fmt.Fprintf(&b, "\nSHIFTS: %s\n\nNEXT WEEK: %s", n.Get("shifts"), n.Get("next_week"))
	return b.String()
}
