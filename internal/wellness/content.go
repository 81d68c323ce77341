package wellness

import (
	"fmt"
	"strings"

	"github.com/mrwolf/moodlog/internal/config"
	"github.com/mrwolf/moodlog/internal/narrative"
)

// Narrative names used for content pack overrides
const (
	NarrativeDashboard = "dashboard"
	NarrativeMonthly   = "monthly"
	NarrativeWeekly    = "weekly"
)

const (
	emptyMonthMessage = "Not enough mood data for this month 🌸"
	defaultWisdom     = "Slow down. You are allowed to heal at your own pace."
	defaultSuggestion = "Take a few slow breaths and stretch your shoulders. Be gentle with yourself today 🌿"
	defaultPlaylist   = "Enjoy music tailored to your emotional needs right now."

	// moods sent for playlists when the journal is empty
	defaultPlaylistMoods = "calm, balanced"
)

func dashboardLayout() narrative.Layout {
	return narrative.Layout{
		{
			Field:    "summary",
			Patterns: []string{"emotional summary"},
			Kind:     narrative.Scalar,
			Fallback: "Your emotional wellness dashboard shows your mood patterns over time.",
		},
		{
			Field:    "patterns",
			Patterns: []string{"mood patterns"},
			Kind:     narrative.Scalar,
			Fallback: "Keep tracking your moods to discover your emotional patterns.",
		},
		{
			Field:    "insight",
			Patterns: []string{"emotional insight"},
			Kind:     narrative.Scalar,
			Fallback: "Your recent mood trends show a positive pattern with more calm and happy moments. Keep maintaining your wellness routine!",
		},
		{
			Field:    "suggestions",
			Patterns: []string{"gentle suggestions", "suggestions"},
			Kind:     narrative.Scalar,
			Fallback: "Continue journaling regularly to track your emotional growth.\nPractice breathing exercises when you feel overwhelmed.\nSchedule regular breaks for mindfulness and self-care.",
		},
	}
}

func monthlyLayout() narrative.Layout {
	return narrative.Layout{
		{
			Field:    "overview",
			Patterns: []string{"mood overview"},
			Kind:     narrative.Scalar,
			Fallback: "You checked in with yourself this month. Every entry adds to a clearer picture of how you feel.",
		},
		{
			Field:         "patterns",
			Patterns:      []string{"patterns observed"},
			Kind:          narrative.List,
			FallbackItems: []string{"Keep logging your moods so patterns have room to appear."},
		},
		{
			Field:    "insight",
			Patterns: []string{"emotional insight"},
			Kind:     narrative.Scalar,
			Fallback: "Light days and heavy days both belong in the story of your month.",
		},
		{
			Field:    "suggestions",
			Patterns: []string{"gentle suggestions"},
			Kind:     narrative.List,
			FallbackItems: []string{
				"Continue journaling regularly to track your emotional growth.",
				"Practice breathing exercises when you feel overwhelmed.",
				"Schedule regular breaks for rest.",
			},
		},
	}
}

func weeklyLayout() narrative.Layout {
	return narrative.Layout{
		{
			Field:    "this_week",
			Patterns: []string{"this week:"},
			Kind:     narrative.Scalar,
			Fallback: "A quiet week in the journal.",
		},
		{
			Field:         "patterns",
			Patterns:      []string{"patterns:"},
			Kind:          narrative.List,
			FallbackItems: []string{"Not enough entries to see a pattern yet."},
		},
		{
			Field:    "shifts",
			Patterns: []string{"shifts:"},
			Kind:     narrative.Scalar,
			Fallback: "No shifts noticed.",
		},
		{
			Field:    "next_week",
			Patterns: []string{"next week:"},
			Kind:     narrative.Scalar,
			Fallback: "A short check-in each day would make next week's letter richer.",
		},
	}
}

var challengeLayout = narrative.BatchLayout{
	LabelKey:       "emoji",
	TitleKey:       "title",
	DescriptionKey: "description",
	Required:       []narrative.Field{narrative.FieldLabel, narrative.FieldTitle, narrative.FieldDescription},
	Count:          3,
}

var playlistLayout = narrative.BatchLayout{
	LabelKey:       "emoji",
	TitleKey:       "title",
	DescriptionKey: "description",
	ItemsKey:       "tracks",
	Required:       []narrative.Field{narrative.FieldLabel, narrative.FieldTitle, narrative.FieldDescription},
	MinItems:       3,
	Count:          5,
}

func defaultChallenges() []narrative.Record {
	return []narrative.Record{
		{Label: "🧘", Title: "5-Minute Meditation", Description: "Start your day with a brief meditation to calm your mind"},
		{Label: "🚶", Title: "Mindful Walk", Description: "Take a slow walk and notice the world around you"},
		{Label: "📓", Title: "Gratitude Journal", Description: "Write three things you're grateful for today"},
	}
}

func defaultPlaylists() []narrative.Record {
	return []narrative.Record{
		{
			Label:       "😊",
			Title:       "Daily Boost",
			Description: "Energize your day with uplifting melodies that inspire positivity and motivation.",
			Items: []narrative.Item{
				{Title: "Good as Hell", Artist: "Lizzo"},
				{Title: "Walking on Sunshine", Artist: "Katrina & The Waves"},
				{Title: "Shut Up and Dance", Artist: "Walk the Moon"},
				{Title: "Mr. Brightside", Artist: "The Killers"},
			},
		},
		{
			Label:       "🧘",
			Title:       "Calm Sanctuary",
			Description: "Find peace and serenity with gentle soundscapes designed to soothe your mind.",
			Items: []narrative.Item{
				{Title: "Only Time", Artist: "Enya"},
				{Title: "Don't Know Why", Artist: "Norah Jones"},
				{Title: "Holocene", Artist: "Bon Iver"},
				{Title: "Weightless", Artist: "Marconi Union"},
			},
		},
		{
			Label:       "💪",
			Title:       "Power Hour",
			Description: "Unlock your strength with dynamic, motivating tracks that fuel your ambition.",
			Items: []narrative.Item{
				{Title: "Don't Stop Me Now", Artist: "Queen"},
				{Title: "Eye of the Tiger", Artist: "Survivor"},
				{Title: "Take On Me", Artist: "a-ha"},
				{Title: "Don't Start Now", Artist: "Dua Lipa"},
			},
		},
		{
			Label:       "🌙",
			Title:       "Evening Unwind",
			Description: "Transition into relaxation with calming tracks perfect for winding down your day.",
			Items: []narrative.Item{
				{Title: "Someone Like You", Artist: "Adele"},
				{Title: "Fake Plastic Trees", Artist: "Radiohead"},
				{Title: "The Night We Met", Artist: "Lord Huron"},
				{Title: "Back to Black", Artist: "Amy Winehouse"},
			},
		},
		{
			Label:       "🌈",
			Title:       "Mood Lifter",
			Description: "Shift your perspective with songs that blend joy, hope, and gentle inspiration.",
			Items: []narrative.Item{
				{Title: "Here Comes the Sun", Artist: "The Beatles"},
				{Title: "Good Life", Artist: "Kanye West"},
				{Title: "Three Little Birds", Artist: "Bob Marley"},
				{Title: "Walking on Air", Artist: "Kerrie Roberts"},
			},
		},
	}
}

// MoodPlaylist is the fixed playlist offered for one mood
type MoodPlaylist struct {
	Mood  string           `json:"mood"`
	Emoji string           `json:"emoji"`
	Songs []narrative.Item `json:"songs"`
}

var moodPlaylists = map[string]MoodPlaylist{
	"happy": {Mood: "Happy", Emoji: "😊", Songs: []narrative.Item{
		{Title: "Happy", Artist: "Pharrell Williams"},
		{Title: "Not the Same", Artist: "Ben Folds"},
		{Title: "Shut Up and Dance", Artist: "Walk the Moon"},
		{Title: "Good as Hell", Artist: "Lizzo"},
		{Title: "Kids", Artist: "MGMT"},
	}},
	"calm": {Mood: "Calm", Emoji: "🧘", Songs: []narrative.Item{
		{Title: "Don't Know Why", Artist: "Norah Jones"},
		{Title: "Only Time", Artist: "Enya"},
		{Title: "Holocene", Artist: "Bon Iver"},
		{Title: "Hoppípolla", Artist: "Sigur Rós"},
		{Title: "Bloodbuzz Ohio", Artist: "The National"},
	}},
	"sad": {Mood: "Sad", Emoji: "😢", Songs: []narrative.Item{
		{Title: "Someone Like You", Artist: "Adele"},
		{Title: "Fake Plastic Trees", Artist: "Radiohead"},
		{Title: "I'm Not the Only One", Artist: "Sam Smith"},
		{Title: "Back to Black", Artist: "Amy Winehouse"},
		{Title: "Red Right Hand", Artist: "Nick Cave"},
	}},
	"anxious": {Mood: "Anxious", Emoji: "😰", Songs: []narrative.Item{
		{Title: "breathe in", Artist: "Billie Eilish"},
		{Title: "Shake It Out", Artist: "Florence + The Machine"},
		{Title: "Fix You", Artist: "Coldplay"},
		{Title: "Crystalised", Artist: "The xx"},
		{Title: "Breezeblocks", Artist: "Alt-J"},
	}},
	"energetic": {Mood: "Energetic", Emoji: "⚡", Songs: []narrative.Item{
		{Title: "Don't Stop Me Now", Artist: "Queen"},
		{Title: "Mr. Brightside", Artist: "The Killers"},
		{Title: "Do I Wanna Know?", Artist: "Arctic Monkeys"},
		{Title: "Don't Start Now", Artist: "Dua Lipa"},
		{Title: "The Less I Know The Better", Artist: "Tame Impala"},
	}},
}

func defaultPlaylistDescriptions() map[string]string {
	return map[string]string{
		"happy":     "Keep the good vibes flowing with uplifting tracks that celebrate joy and positivity.",
		"calm":      "Soothe your mind with gentle, peaceful music that helps you relax and find inner peace.",
		"sad":       "Allow yourself to feel and process your emotions with meaningful, reflective songs.",
		"anxious":   "Find comfort and grounding with music that eases tension and brings stability.",
		"energetic": "Amplify your energy with dynamic, uplifting tracks that keep you moving forward.",
	}
}

// Content is the resolved fallback material of a service
type Content struct {
	Layouts              map[string]narrative.Layout
	Challenges           []narrative.Record
	Playlists            []narrative.Record
	PlaylistDescriptions map[string]string
	Wisdom               string
}

// DefaultContent returns the built-in fallback material
func DefaultContent() Content {
	return Content{
		Layouts: map[string]narrative.Layout{
			NarrativeDashboard: dashboardLayout(),
			NarrativeMonthly:   monthlyLayout(),
			NarrativeWeekly:    weeklyLayout(),
		},
		Challenges:           defaultChallenges(),
		Playlists:            defaultPlaylists(),
		PlaylistDescriptions: defaultPlaylistDescriptions(),
		Wisdom:               defaultWisdom,
	}
}

// WithOverrides applies a content pack on top of c and returns the result;
// c itself is left unchanged. A batch in the pack must be a full valid batch,
// the same as a generated one.
func (c Content) WithOverrides(pack *config.Content) (Content, error) {
	if pack == nil {
		return c, nil
	}

	if len(pack.Challenges) > 0 {
		if err := challengeLayout.Check(pack.Challenges); err != nil {
			return c, fmt.Errorf("content pack challenges: %w", err)
		}
	}
	if len(pack.Playlists) > 0 {
		if err := playlistLayout.Check(pack.Playlists); err != nil {
			return c, fmt.Errorf("content pack playlists: %w", err)
		}
	}

	layouts := make(map[string]narrative.Layout, len(c.Layouts))
	for name, layout := range c.Layouts {
		layouts[name] = layout
	}
	for name, override := range pack.Narratives {
		layout, ok := layouts[name]
		if !ok {
			continue
		}
		updated := make(narrative.Layout, len(layout))
		copy(updated, layout)
		for i, sec := range updated {
			if v, ok := override.Text[sec.Field]; ok && v != "" && sec.Kind == narrative.Scalar {
				updated[i].Fallback = v
			}
			if v, ok := override.Items[sec.Field]; ok && len(v) > 0 && sec.Kind == narrative.List {
				updated[i].FallbackItems = v
			}
		}
		layouts[name] = updated
	}
	c.Layouts = layouts

	if len(pack.Challenges) > 0 {
		c.Challenges = pack.Challenges[:challengeLayout.Count]
	}
	if len(pack.Playlists) > 0 {
		c.Playlists = pack.Playlists[:playlistLayout.Count]
	}

	descriptions := make(map[string]string, len(c.PlaylistDescriptions)+len(pack.PlaylistDescriptions))
	for mood, desc := range c.PlaylistDescriptions {
		descriptions[mood] = desc
	}
	for mood, desc := range pack.PlaylistDescriptions {
		if desc != "" {
			descriptions[strings.ToLower(mood)] = desc
		}
	}
	c.PlaylistDescriptions = descriptions

	if pack.Wisdom != "" {
		c.Wisdom = pack.Wisdom
	}
	return c, nil
}

func (c Content) playlistDescription(mood string) string {
	if d, ok := c.PlaylistDescriptions[mood]; ok {
		return d
	}
	if d, ok := c.PlaylistDescriptions["default"]; ok {
		return d
	}
	return defaultPlaylist
}
