package scheduler

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mrwolf/moodlog/internal/db"
	"github.com/mrwolf/moodlog/internal/vault"
)

// GenerateWeeklyNow writes the weekly letter for owner covering the seven
// days up to now. Generating twice in the same ISO week replaces the letter.
func (s *Scheduler) GenerateWeeklyNow(ctx context.Context, owner string) (*db.LetterRecord, error) {
	var rec *db.LetterRecord
	err := s.track(ctx, owner, JobWeeklyLetter, func() error {
		var err error
		rec, err = s.writeWeeklyLetter(ctx, owner, s.now().In(s.timezone))
		return err
	})
	return rec, err
}

func (s *Scheduler) writeWeeklyLetter(ctx context.Context, owner string, end time.Time) (*db.LetterRecord, error) {
	letter, err := s.svc.WeeklyLetter(ctx, owner, end)
	if err != nil {
		return nil, fmt.Errorf("building letter: %w", err)
	}

	rec := &db.LetterRecord{
		LetterID: "let_" + letter.ForDate + "_" + owner + "_weekly",
		Owner:    owner,
		Type:     "weekly",
		ForDate:  letter.ForDate,
		Body:     letter.Text,
	}

	if s.vault != nil {
		path, err := s.vault.WriteWeeklyLetter(vault.Letter{
			ID:      rec.LetterID,
			ForDate: letter.ForDate,
			Owner:   owner,
			Entries: letter.Entries,
			Outcome: letter.Outcome,
			Created: end.UTC().Format(time.RFC3339),
			Content: letter.Text,
		})
		if err != nil {
			log.Printf("scheduler: writing letter %s to vault: %v", rec.LetterID, err)
		}
		rec.FilePath = path
	}

	if err := s.db.SaveLetter(ctx, *rec); err != nil {
		return nil, fmt.Errorf("saving letter: %w", err)
	}
	log.Printf("scheduler: weekly letter for %s (%s, %d entries, %s)", owner, letter.ForDate, letter.Entries, letter.Outcome)
	return rec, nil
}
