package wellness

import (
	"context"
	"fmt"
	"strings"

	"github.com/mrwolf/moodlog/internal/db"
	"github.com/mrwolf/moodlog/internal/models"
	"github.com/mrwolf/moodlog/internal/narrative"
)

// BatchView carries a generated or fallback batch of records
type BatchView struct {
	Records []narrative.Record `json:"records"`
	Moods   string             `json:"moods,omitempty"`
	Outcome string             `json:"outcome"`
}

// Challenges suggests three mindful challenges from the last seven moods
func (s *Service) Challenges(ctx context.Context, owner string) (*BatchView, error) {
	recent, err := s.store.ListEntries(ctx, owner, db.ListOptions{Limit: 7})
	if err != nil {
		return nil, fmt.Errorf("loading recent moods: %w", err)
	}

	moods := moodList(recent, false)
	records, outcome := s.batch(ctx, owner, FeatureChallenges, recent, challengeLayout, s.content.Challenges, func() string {
		return fmt.Sprintf(challengesPrompt, moods)
	})
	return &BatchView{Records: records, Moods: moods, Outcome: outcome}, nil
}

// Playlists suggests five playlists from the last four moods
func (s *Service) Playlists(ctx context.Context, owner string) (*BatchView, error) {
	recent, err := s.store.ListEntries(ctx, owner, db.ListOptions{Limit: 4})
	if err != nil {
		return nil, fmt.Errorf("loading recent moods: %w", err)
	}

	moods := moodList(recent, true)
	if moods == "" {
		moods = defaultPlaylistMoods
	}
	records, outcome := s.batch(ctx, owner, FeaturePlaylists, recent, playlistLayout, s.content.Playlists, func() string {
		return fmt.Sprintf(playlistsPrompt, moods)
	})
	return &BatchView{Records: records, Moods: moods, Outcome: outcome}, nil
}

// batch generates and parses a record batch. An empty journal skips the
// generator; any response short of a full valid batch uses fallback whole.
func (s *Service) batch(ctx context.Context, owner, feature string, entries []models.MoodEntry, layout narrative.BatchLayout, fallback []narrative.Record, prompt func() string) ([]narrative.Record, string) {
	if len(entries) == 0 {
		s.record(ctx, owner, feature, models.OutcomeEmptyLog, 0)
		return narrative.ParseBatch("", layout, fallback), models.OutcomeEmptyLog
	}

	g := s.ask(ctx, owner, feature, prompt())
	records, parsed := narrative.TryParseBatch(g.text, layout)
	outcome := outcomeOf(g, parsed)
	s.record(ctx, owner, feature, outcome, g.latency)
	if !parsed {
		return narrative.ParseBatch("", layout, fallback), outcome
	}
	return records, outcome
}

// PlaylistView is the fixed playlist for the latest mood
type PlaylistView struct {
	Mood        string       `json:"mood"`
	Playlist    MoodPlaylist `json:"playlist"`
	Description string       `json:"description"`
	Outcome     string       `json:"outcome"`
}

// PersonalizedPlaylist returns the playlist for the owner's latest mood with
// a generated description. Moods without a playlist get the calm one.
func (s *Service) PersonalizedPlaylist(ctx context.Context, owner string) (*PlaylistView, error) {
	latest, err := s.latest(ctx, owner)
	if err != nil {
		return nil, err
	}

	mood, note := string(models.MoodCalm), ""
	if latest != nil {
		mood, note = strings.ToLower(string(latest.Mood)), latest.Note
	}
	playlist, ok := moodPlaylists[mood]
	if !ok {
		playlist = moodPlaylists[string(models.MoodCalm)]
	}

	view := &PlaylistView{
		Mood:        capitalizeFirst(mood),
		Playlist:    playlist,
		Description: s.content.playlistDescription(mood),
	}
	if latest == nil {
		view.Outcome = models.OutcomeEmptyLog
		s.record(ctx, owner, FeaturePlaylist, view.Outcome, 0)
		return view, nil
	}

	if note == "" {
		note = "No specific note provided"
	}
	g := s.ask(ctx, owner, FeaturePlaylist, fmt.Sprintf(playlistDescriptionPrompt, mood, truncate(note, maxNoteLen)))
	view.Outcome = outcomeOf(g, true)
	if g.ok {
		view.Description = strings.TrimSpace(g.text)
	}
	s.record(ctx, owner, FeaturePlaylist, view.Outcome, g.latency)
	return view, nil
}

// WisdomView is a short quote for the latest mood
type WisdomView struct {
	Mood    string `json:"mood"`
	Quote   string `json:"quote"`
	Outcome string `json:"outcome"`
}

// Wisdom writes a one or two line quote for the owner's latest mood
func (s *Service) Wisdom(ctx context.Context, owner string) (*WisdomView, error) {
	latest, err := s.latest(ctx, owner)
	if err != nil {
		return nil, err
	}

	view := &WisdomView{Mood: string(models.MoodCalm), Quote: s.content.Wisdom}
	if latest == nil {
		view.Outcome = models.OutcomeEmptyLog
		s.record(ctx, owner, FeatureWisdom, view.Outcome, 0)
		return view, nil
	}
	view.Mood = string(latest.Mood)

	g := s.ask(ctx, owner, FeatureWisdom, fmt.Sprintf(wisdomPrompt, owner, latest.Mood))
	view.Outcome = outcomeOf(g, true)
	if g.ok {
		view.Quote = strings.TrimSpace(g.text)
	}
	s.record(ctx, owner, FeatureWisdom, view.Outcome, g.latency)
	return view, nil
}

// SuggestionView is a supportive suggestion for the latest entry. Suggestion
// is empty when there is no entry yet.
type SuggestionView struct {
	Entry      *models.MoodEntry `json:"entry,omitempty"`
	Suggestion string            `json:"suggestion,omitempty"`
	Outcome    string            `json:"outcome"`
}

// Suggestion responds to the owner's latest entry
func (s *Service) Suggestion(ctx context.Context, owner string) (*SuggestionView, error) {
	latest, err := s.latest(ctx, owner)
	if err != nil {
		return nil, err
	}

	if latest == nil {
		s.record(ctx, owner, FeatureSuggestion, models.OutcomeEmptyLog, 0)
		return &SuggestionView{Outcome: models.OutcomeEmptyLog}, nil
	}

	view := &SuggestionView{Entry: latest, Suggestion: defaultSuggestion}
	g := s.ask(ctx, owner, FeatureSuggestion, fmt.Sprintf(suggestionPrompt, latest.Mood, truncate(latest.Note, maxNoteLen)))
	view.Outcome = outcomeOf(g, true)
	if g.ok {
		view.Suggestion = strings.TrimSpace(g.text)
	}
	s.record(ctx, owner, FeatureSuggestion, view.Outcome, g.latency)
	return view, nil
}

// latest returns the newest entry or nil
func (s *Service) latest(ctx context.Context, owner string) (*models.MoodEntry, error) {
	entries, err := s.store.ListEntries(ctx, owner, db.ListOptions{Limit: 1})
	if err != nil {
		return nil, fmt.Errorf("loading latest mood: %w", err)
	}
	if len(entries) == 0 {
		return nil, nil
	}
	return &entries[0], nil
}
