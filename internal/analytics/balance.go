package analytics

import "github.com/mrwolf/moodlog/internal/models"

// Balance is a qualitative label summarizing the mix of mood groups
type Balance string

const (
	BalancePositive       Balance = "Positive"
	BalanceBalanced       Balance = "Balanced"
	BalanceReflective     Balance = "Reflective"
	BalanceNoData         Balance = "No Data"
	BalanceThriving       Balance = "Thriving"
	BalanceVaried         Balance = "Varied"
	BalanceGettingStarted Balance = "Getting Started"
)

// Group selects which mood group a rule measures
type Group string

const (
	GroupPositive Group = "positive"
	GroupNeutral  Group = "neutral"
	GroupHeavy    Group = "heavy"
)

// Verdict is what a view shows for a balance classification
type Verdict struct {
	Label   Balance `json:"label" yaml:"label"`
	Emoji   string  `json:"emoji" yaml:"emoji"`
	Insight string  `json:"insight,omitempty" yaml:"insight"`
}

// Rule matches when the group's share of all entries reaches Percent.
// Strict rules need the share to exceed Percent.
type Rule struct {
	Group   Group
	Percent int
	Strict  bool
	Verdict Verdict
}

// BalancePreset bundles the category groups and the ordered threshold rules
// of one view. Rules are tried in order; Otherwise applies when none match
// and Empty when there are no entries at all.
type BalancePreset struct {
	Name      string
	Positive  []models.Category
	Neutral   []models.Category
	Heavy     []models.Category
	Rules     []Rule
	Otherwise Verdict
	Empty     Verdict
}

const (
	PresetDashboard = "dashboard"
	PresetInsights  = "insights"
)

// Presets holds the balance configurations known to the service
var Presets = map[string]BalancePreset{
	PresetDashboard: {
		Name:     PresetDashboard,
		Positive: []models.Category{models.MoodHappy, models.MoodCalm},
		Neutral:  []models.Category{models.MoodTired},
		Heavy:    []models.Category{models.MoodSad, models.MoodAnxious, models.MoodAngry},
		Rules: []Rule{
			{Group: GroupPositive, Percent: 60, Verdict: Verdict{Label: BalancePositive, Emoji: "✨"}},
			{Group: GroupPositive, Percent: 40, Verdict: Verdict{Label: BalanceBalanced, Emoji: "⚖️"}},
		},
		Otherwise: Verdict{Label: BalanceReflective, Emoji: "🌙"},
		Empty:     Verdict{Label: BalanceNoData, Emoji: "📊"},
	},
	PresetInsights: {
		Name:     PresetInsights,
		Positive: []models.Category{"happy", "peaceful", "content", "excited", "grateful", "energetic"},
		Neutral:  []models.Category{"calm", "neutral", "okay", "balanced"},
		Heavy:    []models.Category{"sad", "anxious", "stressed", "angry", "overwhelmed", "lonely"},
		Rules: []Rule{
			{Group: GroupPositive, Percent: 50, Strict: true, Verdict: Verdict{Label: BalanceThriving, Emoji: "🌟", Insight: "You're in a positive state"}},
			{Group: GroupNeutral, Percent: 40, Strict: true, Verdict: Verdict{Label: BalanceBalanced, Emoji: "⚖️", Insight: "You're maintaining equilibrium"}},
			{Group: GroupHeavy, Percent: 40, Strict: true, Verdict: Verdict{Label: BalanceReflective, Emoji: "🌙", Insight: "You're processing your emotions"}},
		},
		Otherwise: Verdict{Label: BalanceVaried, Emoji: "🌈", Insight: "You're experiencing different states"},
		Empty:     Verdict{Label: BalanceGettingStarted, Emoji: "🌱", Insight: "Start tracking to see your balance"},
	},
}

// Preset looks up a named preset
func Preset(name string) (BalancePreset, bool) {
	p, ok := Presets[name]
	return p, ok
}

// GroupCounts holds the number of entries falling in each mood group
type GroupCounts struct {
	Positive int `json:"positive"`
	Neutral  int `json:"neutral"`
	Heavy    int `json:"heavy"`
}

func (g GroupCounts) of(group Group) int {
	switch group {
	case GroupPositive:
		return g.Positive
	case GroupNeutral:
		return g.Neutral
	case GroupHeavy:
		return g.Heavy
	}
	return 0
}

// Classify applies the preset's rules to the group counts of total entries
func (p BalancePreset) Classify(counts GroupCounts, total int) Verdict {
	if total <= 0 {
		return p.Empty
	}
	for _, r := range p.Rules {
		// integer comparison keeps 6/10 at exactly 60%
		share := counts.of(r.Group) * 100
		limit := r.Percent * total
		if share > limit || (!r.Strict && share == limit) {
			return r.Verdict
		}
	}
	return p.Otherwise
}

// Count sorts raw mood values into the preset's groups. Values outside every
// group are not counted.
func (p BalancePreset) Count(moods []models.Category) GroupCounts {
	var g GroupCounts
	for _, m := range moods {
		switch {
		case contains(p.Positive, m):
			g.Positive++
		case contains(p.Neutral, m):
			g.Neutral++
		case contains(p.Heavy, m):
			g.Heavy++
		}
	}
	return g
}

func contains(set []models.Category, c models.Category) bool {
	for _, s := range set {
		if s == c {
			return true
		}
	}
	return false
}
