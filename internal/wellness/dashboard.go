package wellness

import (
	"context"
	"fmt"
	"log"

	"github.com/mrwolf/moodlog/internal/analytics"
	"github.com/mrwolf/moodlog/internal/db"
	"github.com/mrwolf/moodlog/internal/models"
	"github.com/mrwolf/moodlog/internal/narrative"
)

// DashboardView is the wellness analytics page for the current month
type DashboardView struct {
	Month             string                  `json:"month"`
	Total             int                     `json:"total"`
	Distribution      map[models.Category]int `json:"distribution"`
	Percentages       map[models.Category]int `json:"percentages"`
	MostFrequent      string                  `json:"most_frequent"`
	MostFrequentCount int                     `json:"most_frequent_count"`
	Streak            int                     `json:"streak"`
	Balance           analytics.Verdict       `json:"balance"`
	PositiveCount     int                     `json:"positive_count"`
	NeutralCount      int                     `json:"neutral_count"`
	HeavyCount        int                     `json:"heavy_count"`
	Summary           string                  `json:"summary"`
	Patterns          string                  `json:"patterns"`
	Insight           string                  `json:"insight"`
	Suggestions       string                  `json:"suggestions"`
	Outcome           string                  `json:"outcome"`
}

// Dashboard builds the analytics view over this month's entries with a
// generated four part narrative
func (s *Service) Dashboard(ctx context.Context, owner string) (*DashboardView, error) {
	start, end := s.monthBounds()
	entries, err := s.store.ListEntries(ctx, owner, db.ListOptions{Since: start, Until: end})
	if err != nil {
		return nil, fmt.Errorf("loading month: %w", err)
	}
	streak, err := s.Streak(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("computing streak: %w", err)
	}

	report := analytics.Analyze(entries, s.preset)
	view := &DashboardView{
		Month:             start.Format("January 2006"),
		Total:             report.Total,
		Distribution:      report.Distribution,
		Percentages:       report.Percentages,
		MostFrequent:      report.MostFrequentLabel("neutral"),
		MostFrequentCount: report.MostFrequentCount,
		Streak:            streak,
		Balance:           report.Balance,
		PositiveCount:     report.Groups.Positive,
		NeutralCount:      report.Groups.Neutral,
		HeavyCount:        report.Groups.Heavy,
	}

	layout := s.content.Layouts[NarrativeDashboard]
	n, outcome := s.narrate(ctx, owner, FeatureDashboard, entries, layout, func() string {
		return fmt.Sprintf(dashboardPrompt, moodNoteLines(entries, ""))
	})
	view.Summary = n.Get("summary")
	view.Patterns = n.Get("patterns")
	view.Insight = n.Get("insight")
	view.Suggestions = n.Get("suggestions")
	view.Outcome = outcome
	return view, nil
}

// narrate generates and parses a narrative for entries. An empty journal
// skips the generator. A response with none of the layout's sections counts
// as malformed.
func (s *Service) narrate(ctx context.Context, owner, feature string, entries []models.MoodEntry, layout narrative.Layout, prompt func() string) (narrative.Narrative, string) {
	if len(entries) == 0 {
		s.record(ctx, owner, feature, models.OutcomeEmptyLog, 0)
		return narrative.Fallback(layout), models.OutcomeEmptyLog
	}

	g := s.ask(ctx, owner, feature, prompt())
	n := narrative.Parse(g.text, layout)
	outcome := outcomeOf(g, len(n.Fallbacks) < len(layout))
	if outcome == models.OutcomeGenerated && !n.Complete() {
		log.Printf("wellness: %s for %s: sections fell back: %v", feature, owner, n.Fallbacks)
	}
	s.record(ctx, owner, feature, outcome, g.latency)
	return n, outcome
}

// InsightsView is the summary card strip over the whole journal
type InsightsView struct {
	Total           int               `json:"total"`
	MostFrequent    string            `json:"most_frequent"`
	Streak          int               `json:"streak"`
	Balance         analytics.Verdict `json:"balance"`
	PositivePercent int               `json:"positive_percent"`
	MonthlyEntries  int               `json:"monthly_entries"`
	CurrentMonth    string            `json:"current_month"`
}

// Insights summarizes the whole journal with the insights balance preset
func (s *Service) Insights(ctx context.Context, owner string) (*InsightsView, error) {
	entries, err := s.store.ListEntries(ctx, owner, db.ListOptions{})
	if err != nil {
		return nil, fmt.Errorf("loading journal: %w", err)
	}
	start, _ := s.monthBounds()
	monthly, err := s.store.CountEntries(ctx, owner, db.CountFilter{Since: start})
	if err != nil {
		return nil, fmt.Errorf("counting month: %w", err)
	}

	report := analytics.Analyze(entries, analytics.Presets[analytics.PresetInsights])
	mostFrequent := "N/A"
	if report.Total > 0 {
		mostFrequent = capitalizeFirst(string(report.MostFrequent))
	}

	return &InsightsView{
		Total:           report.Total,
		MostFrequent:    mostFrequent,
		Streak:          analytics.ComputeStreak(entries, s.today()),
		Balance:         report.Balance,
		PositivePercent: report.PositivePercent,
		MonthlyEntries:  monthly,
		CurrentMonth:    start.Month().String(),
	}, nil
}

// MonthlyView is the structured monthly analysis
type MonthlyView struct {
	Month        string                  `json:"month"`
	Total        int                     `json:"total"`
	Distribution map[models.Category]int `json:"distribution,omitempty"`
	Message      string                  `json:"message,omitempty"`
	Overview     string                  `json:"overview,omitempty"`
	Patterns     []string                `json:"patterns,omitempty"`
	Insight      string                  `json:"insight,omitempty"`
	Suggestions  []string                `json:"suggestions,omitempty"`
	Outcome      string                  `json:"outcome"`
}

// MonthlyAnalysis writes a structured analysis of this month's entries.
// Without entries it returns only a message.
func (s *Service) MonthlyAnalysis(ctx context.Context, owner string) (*MonthlyView, error) {
	start, end := s.monthBounds()
	entries, err := s.store.ListEntries(ctx, owner, db.ListOptions{Since: start, Until: end, Order: db.OldestFirst})
	if err != nil {
		return nil, fmt.Errorf("loading month: %w", err)
	}

	view := &MonthlyView{Month: start.Format("January 2006"), Total: len(entries)}
	if len(entries) == 0 {
		s.record(ctx, owner, FeatureMonthly, models.OutcomeEmptyLog, 0)
		view.Message = emptyMonthMessage
		view.Outcome = models.OutcomeEmptyLog
		return view, nil
	}

	view.Distribution = analytics.Analyze(entries, s.preset).Distribution
	n, outcome := s.narrate(ctx, owner, FeatureMonthly, entries, s.content.Layouts[NarrativeMonthly], func() string {
		return fmt.Sprintf(monthlyPrompt, moodNoteLines(entries, "- "))
	})
	view.Overview = n.Get("overview")
	view.Patterns = n.List("patterns")
	view.Insight = n.Get("insight")
	view.Suggestions = n.List("suggestions")
	view.Outcome = outcome
	return view, nil
}
