package analytics

import (
	"math"

	"github.com/mrwolf/moodlog/internal/models"
)

// Report is the derived view of a set of entries. It is computed per request
// and never stored.
type Report struct {
	Total             int                     `json:"total"`
	Distribution      map[models.Category]int `json:"distribution"`
	Percentages       map[models.Category]int `json:"percentages"`
	MostFrequent      models.Category         `json:"most_frequent"`
	MostFrequentCount int                     `json:"most_frequent_count"`
	Groups            GroupCounts             `json:"groups"`
	PositivePercent   int                     `json:"positive_percent"`
	Balance           Verdict                 `json:"balance"`
}

// Analyze counts entries per category and classifies the balance with preset.
//
// Categories outside the fixed enumeration are counted as uncategorized in the
// distribution; group counts use the raw value so presets with a wider
// vocabulary still see it. Percentages are rounded independently and need not
// add up to 100.
func Analyze(entries []models.MoodEntry, preset BalancePreset) Report {
	r := Report{
		Total:        len(entries),
		Distribution: make(map[models.Category]int),
		Percentages:  make(map[models.Category]int),
	}

	raw := make([]models.Category, 0, len(entries))
	for _, e := range entries {
		raw = append(raw, e.Mood)
		c := e.Mood
		if !c.Valid() {
			c = models.MoodUncategorized
		}
		r.Distribution[c]++
	}

	if r.Total > 0 {
		for c, n := range r.Distribution {
			r.Percentages[c] = percent(n, r.Total)
		}
	}

	r.MostFrequent, r.MostFrequentCount = mostFrequent(r.Distribution)
	r.Groups = preset.Count(raw)
	if r.Total > 0 {
		r.PositivePercent = r.Groups.Positive * 100 / r.Total
	}
	r.Balance = preset.Classify(r.Groups, r.Total)
	return r
}

// percent rounds half to even
func percent(n, total int) int {
	return int(math.RoundToEven(float64(n) / float64(total) * 100))
}

// mostFrequent picks the highest count; ties go to the category listed first
// in models.Categories, with uncategorized last.
func mostFrequent(dist map[models.Category]int) (models.Category, int) {
	order := append(append([]models.Category{}, models.Categories...), models.MoodUncategorized)

	var best models.Category
	bestCount := 0
	for _, c := range order {
		if n := dist[c]; n > bestCount {
			best, bestCount = c, n
		}
	}
	return best, bestCount
}

// MostFrequentLabel returns the most frequent category for display, or
// fallback when there are no entries
func (r Report) MostFrequentLabel(fallback string) string {
	if r.MostFrequent == "" {
		return fallback
	}
	return string(r.MostFrequent)
}
