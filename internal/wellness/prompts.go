package wellness

import (
	"fmt"
	"strings"

	"github.com/mrwolf/moodlog/internal/models"
)

// Prompt templates. Every template asks for header lines on their own so the
// section parser can find them.

const dashboardPrompt = `You are a warm, emotionally aware wellness companion reading someone's mood journal for the current month.

MOOD ENTRIES (mood: note):
%s

YOUR TASK:
Write a short wellness analysis of this month.

RULES:
- Write to the person directly, kindly and without judgement
- Stay with what the entries show; do not diagnose
- No markdown, no bold, no numbering
- Put each section heading on its own line, with the content on the lines below it

OUTPUT FORMAT (exactly these four headings, in this order):
EMOTIONAL SUMMARY:
[2-3 lines on the overall emotional state]

MOOD PATTERNS:
[2-3 lines on patterns across the entries]

EMOTIONAL INSIGHT:
[2-3 lines of gentle reflection]

GENTLE SUGGESTIONS:
[3-4 lines of small, doable ideas]

Write the analysis now:`

const monthlyPrompt = `You are a gentle mental wellness companion. Here are someone's mood entries for this month:

%s

Reply in this structure and nothing else. Headings go on their own line.

Mood Overview:
[2-3 lines on how the month felt overall]

Patterns Observed:
- [pattern]
- [pattern]
- [pattern]

Emotional Insight:
[a few lines of deeper reflection]

Gentle Suggestions:
- [suggestion]
- [suggestion]
- [suggestion]

Tone: warm and supportive. Do not add anything outside this structure.`

const challengesPrompt = `You are a kind wellness coach. Recent moods, newest first: %s

Create EXACTLY 3 small mindful challenges that suit these moods.

Each challenge has exactly three lines:
emoji: [one emoji]
title: [2-3 words]
description: [one short encouraging sentence]

Leave a blank line between challenges. No other text.

Example:
emoji: 🧘
title: Breathing Break
description: Pause for five slow breaths before lunch.`

const playlistsPrompt = `You are a music therapist. Recent moods, newest first: %s

Create EXACTLY 5 playlists that could help with these moods. Use real, well-known songs.

Each playlist looks like this:
emoji: [one emoji]
title: [2-3 catchy words]
description: [one supportive sentence about how it helps]
tracks:
- [Song Title] - [Artist]
- [Song Title] - [Artist]
- [Song Title] - [Artist]

Give 3 to 5 tracks per playlist. Leave a blank line between playlists. No other text.`

const playlistDescriptionPrompt = `You are a music recommendation expert. Someone is feeling %s.
Their latest journal note: %s

Write 2-3 warm sentences on how a playlist for this mood could help them feel supported.
Only the description. Do not list songs.`

const wisdomPrompt = `You are a compassionate wellness guide. Write a short calming quote for %s, who is feeling %s today.

RULES:
- 1-2 lines
- Soothing, hopeful and kind to mental health
- Only the quote, with no explanation or attribution

Example tone: "Even on quiet days, your strength is growing."

Quote:`

const suggestionPrompt = `Someone is feeling %s.
Their journal note: "%s"

Offer a short, kind suggestion that mixes one gentle physical activity with one small mental exercise.
Keep it calm and friendly, add a few emojis, and avoid medical advice.`

const weeklyLetterPrompt = `You are writing a short weekly reflection letter from someone's mood journal.

ENTRIES FROM THE PAST 7 DAYS (day, mood: note):
%s

MOOD COUNTS: %s

RULES:
- Only mention what the entries show
- Warm and plain; no clinical language
- Put each heading on its own line with the content below it

OUTPUT FORMAT (exactly this structure):
THIS WEEK:
[2-3 sentences on how the week felt]

PATTERNS:
- [pattern with evidence from the entries]
- [pattern with evidence from the entries]

SHIFTS:
[what changed during the week, or "No clear shifts."]

NEXT WEEK:
[one gentle observation worth carrying forward]

Write the letter now:`

const maxNoteLen = 500

// moodNoteLines renders entries as "mood: note" lines
func moodNoteLines(entries []models.MoodEntry, bullet string) string {
	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		lines = append(lines, fmt.Sprintf("%s%s: %s", bullet, e.Mood, truncate(strings.TrimSpace(e.Note), maxNoteLen)))
	}
	return strings.Join(lines, "\n")
}

// moodList renders the categories of entries as a comma separated list
func moodList(entries []models.MoodEntry, capitalize bool) string {
	moods := make([]string, 0, len(entries))
	for _, e := range entries {
		m := string(e.Mood)
		if capitalize {
			m = capitalizeFirst(m)
		}
		moods = append(moods, m)
	}
	return strings.Join(moods, ", ")
}

func capitalizeFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}
