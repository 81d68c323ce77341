package wellness

import (
	"context"
	"fmt"
	"strings"

	"github.com/mrwolf/moodlog/internal/db"
	"github.com/mrwolf/moodlog/internal/models"
)

// PageSize is the number of entries per history page
const PageSize = 20

// HistoryQuery selects a page of the journal
type HistoryQuery struct {
	// Sort is "newest" (default) or "oldest"
	Sort string
	// Mood filters to one category, case-insensitively. Empty or "all" means no filter.
	Mood string
	Page int
}

// HistoryStats summarizes the whole journal regardless of filters
type HistoryStats struct {
	Total        int    `json:"total"`
	MostCommon   string `json:"most_common"`
	MonthEntries int    `json:"month_entries"`
	WeekEntries  int    `json:"week_entries"`
}

// HistoryView is one page of the journal
type HistoryView struct {
	Entries    []models.MoodEntry `json:"entries"`
	Page       int                `json:"page"`
	TotalPages int                `json:"total_pages"`
	Matching   int                `json:"matching"`
	Sort       string             `json:"sort"`
	Mood       string             `json:"mood"`
	Stats      HistoryStats       `json:"stats"`
}

// History returns a page of entries. Pages below 1 become the first page and
// pages past the end become the last page.
func (s *Service) History(ctx context.Context, owner string, q HistoryQuery) (*HistoryView, error) {
	view := &HistoryView{Sort: "newest", Mood: "all"}
	order := db.NewestFirst
	if q.Sort == "oldest" {
		order = db.OldestFirst
		view.Sort = "oldest"
	}
	mood := strings.ToLower(strings.TrimSpace(q.Mood))
	if mood == "all" {
		mood = ""
	}
	if mood != "" {
		view.Mood = mood
	}

	matching, err := s.store.CountEntries(ctx, owner, db.CountFilter{Mood: mood})
	if err != nil {
		return nil, fmt.Errorf("counting history: %w", err)
	}
	view.Matching = matching
	view.TotalPages = (matching + PageSize - 1) / PageSize
	if view.TotalPages == 0 {
		view.TotalPages = 1
	}
	view.Page = q.Page
	if view.Page < 1 {
		view.Page = 1
	}
	if view.Page > view.TotalPages {
		view.Page = view.TotalPages
	}

	view.Entries, err = s.store.ListEntries(ctx, owner, db.ListOptions{
		Mood:   mood,
		Order:  order,
		Limit:  PageSize,
		Offset: (view.Page - 1) * PageSize,
	})
	if err != nil {
		return nil, fmt.Errorf("loading history: %w", err)
	}
	if view.Entries == nil {
		view.Entries = []models.MoodEntry{}
	}

	view.Stats, err = s.historyStats(ctx, owner)
	if err != nil {
		return nil, err
	}
	return view, nil
}

func (s *Service) historyStats(ctx context.Context, owner string) (HistoryStats, error) {
	var st HistoryStats
	var err error

	if st.Total, err = s.store.CountEntries(ctx, owner, db.CountFilter{}); err != nil {
		return st, fmt.Errorf("counting journal: %w", err)
	}
	start, _ := s.monthBounds()
	if st.MonthEntries, err = s.store.CountEntries(ctx, owner, db.CountFilter{Since: start}); err != nil {
		return st, fmt.Errorf("counting month: %w", err)
	}
	if st.WeekEntries, err = s.store.CountEntries(ctx, owner, db.CountFilter{Since: s.now().AddDate(0, 0, -7)}); err != nil {
		return st, fmt.Errorf("counting week: %w", err)
	}

	common, _, err := s.store.MostCommonMood(ctx, owner)
	if err != nil {
		return st, fmt.Errorf("finding most common mood: %w", err)
	}
	st.MostCommon = "N/A"
	if common != "" {
		st.MostCommon = capitalizeFirst(string(common))
	}
	return st, nil
}
