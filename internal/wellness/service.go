package wellness

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/mrwolf/moodlog/internal/analytics"
	"github.com/mrwolf/moodlog/internal/db"
	"github.com/mrwolf/moodlog/internal/llm"
	"github.com/mrwolf/moodlog/internal/models"
)

// MoodLog is the read side of the journal the features work from
type MoodLog interface {
	ListEntries(ctx context.Context, owner string, opts db.ListOptions) ([]models.MoodEntry, error)
	CountEntries(ctx context.Context, owner string, f db.CountFilter) (int, error)
	MostCommonMood(ctx context.Context, owner string) (models.Category, int, error)
}

// GenerationLog records the outcome of every feature that may call the generator
type GenerationLog interface {
	LogGeneration(ctx context.Context, owner, feature, outcome string, latency time.Duration) error
}

// Store is everything the service needs from persistence
type Store interface {
	MoodLog
	GenerationLog
}

// Feature names recorded in the generation log
const (
	FeatureDashboard    = "dashboard"
	FeatureMonthly      = "monthly"
	FeatureChallenges   = "challenges"
	FeaturePlaylists    = "playlists"
	FeaturePlaylist     = "playlist"
	FeatureWisdom       = "wisdom"
	FeatureSuggestion   = "suggestion"
	FeatureWeeklyLetter = "weekly_letter"
)

// Options configures a Service
type Options struct {
	// Timeout bounds each generator call
	Timeout time.Duration
	// Location sets calendar day and month boundaries
	Location *time.Location
	// Preset is the balance preset used by the dashboard
	Preset  string
	Content Content
	Now     func() time.Time
}

// Service builds the journal views. It is safe for concurrent use.
type Service struct {
	store   Store
	gen     llm.Generator
	timeout time.Duration
	loc     *time.Location
	preset  analytics.BalancePreset
	content Content
	now     func() time.Time
}

// NewService creates a service. gen may be nil, in which case every
// generated section uses its fallback.
func NewService(store Store, gen llm.Generator, opts Options) *Service {
	s := &Service{
		store:   store,
		gen:     gen,
		timeout: opts.Timeout,
		loc:     opts.Location,
		content: opts.Content,
		now:     opts.Now,
	}
	if s.timeout <= 0 {
		s.timeout = 20 * time.Second
	}
	if s.loc == nil {
		s.loc = time.UTC
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.content.Layouts == nil {
		s.content = DefaultContent()
	}
	preset, ok := analytics.Preset(opts.Preset)
	if !ok {
		preset = analytics.Presets[analytics.PresetDashboard]
	}
	s.preset = preset
	return s
}

// Generator returns the generator in use, possibly nil
func (s *Service) Generator() llm.Generator {
	return s.gen
}

// today returns the current time in the service location
func (s *Service) today() time.Time {
	return s.now().In(s.loc)
}

func (s *Service) monthBounds() (time.Time, time.Time) {
	now := s.today()
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, s.loc)
	return start, start.AddDate(0, 1, 0)
}

// generation is the result of one generator call
type generation struct {
	text    string
	ok      bool
	latency time.Duration
}

// ask calls the generator once. Failures are logged and come back as !ok.
func (s *Service) ask(ctx context.Context, owner, feature, prompt string) generation {
	start := time.Now()
	text, err := llm.Ask(ctx, s.gen, prompt, s.timeout)
	g := generation{text: text, ok: err == nil, latency: time.Since(start)}
	if err != nil && !errors.Is(err, llm.ErrNotConfigured) {
		log.Printf("wellness: %s for %s: generator unavailable: %v", feature, owner, err)
	}
	return g
}

// outcomeOf maps a generation and whether its text parsed into an outcome
func outcomeOf(g generation, parsed bool) string {
	switch {
	case !g.ok:
		return models.OutcomeUnavailable
	case !parsed:
		return models.OutcomeMalformed
	default:
		return models.OutcomeGenerated
	}
}

// record stores the outcome of a feature request. Logging failures never
// fail the request.
func (s *Service) record(ctx context.Context, owner, feature, outcome string, latency time.Duration) {
	if outcome == models.OutcomeMalformed {
		log.Printf("wellness: %s for %s: response did not match the expected format", feature, owner)
	}
	if err := s.store.LogGeneration(ctx, owner, feature, outcome, latency); err != nil {
		log.Printf("wellness: recording %s outcome: %v", feature, err)
	}
}

// Streak returns the owner's current logging streak
func (s *Service) Streak(ctx context.Context, owner string) (int, error) {
	entries, err := s.store.ListEntries(ctx, owner, db.ListOptions{})
	if err != nil {
		return 0, err
	}
	return analytics.ComputeStreak(entries, s.today()), nil
}

// WithPreset returns a copy of s whose dashboard classifies with the named
// balance preset. It reports false for unknown names.
func (s *Service) WithPreset(name string) (*Service, bool) {
	p, ok := analytics.Preset(name)
	if !ok {
		return s, false
	}
	c := *s
	c.preset = p
	return &c, true
}
