package db

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/mrwolf/moodlog/internal/models"
)

func setupTestDB(t *testing.T) (*DB, func()) {
	t.Helper()

	tmpFile, err := os.CreateTemp("", "moodlog-db-test-*.db")
	if err != nil {
		t.Fatalf("creating temp file: %v", err)
	}
	tmpFile.Close()

	db, err := Open(tmpFile.Name())
	if err != nil {
		os.Remove(tmpFile.Name())
		t.Fatalf("opening database: %v", err)
	}

	cleanup := func() {
		db.Close()
		os.Remove(tmpFile.Name())
	}

	return db, cleanup
}

// clock returns a now func that advances by step on every call
func clock(start time.Time, step time.Duration) func() time.Time {
	current := start.Add(-step)
	return func() time.Time {
		current = current.Add(step)
		return current
	}
}

func seed(t *testing.T, db *DB, owner string, moods ...models.Category) {
	t.Helper()
	for _, m := range moods {
		if _, err := db.CreateMood(context.Background(), owner, m, "note "+string(m)); err != nil {
			t.Fatalf("creating mood: %v", err)
		}
	}
}

func TestCreateAndListMoods(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	db.now = clock(time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC), time.Hour)
	seed(t, db, "alice", models.MoodHappy, models.MoodSad, models.MoodCalm)
	seed(t, db, "bob", models.MoodAngry)

	entries, err := db.ListEntries(ctx, "alice", ListOptions{})
	if err != nil {
		t.Fatalf("listing: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	if entries[0].Mood != models.MoodCalm || entries[2].Mood != models.MoodHappy {
		t.Errorf("expected newest first, got %s..%s", entries[0].Mood, entries[2].Mood)
	}
	if entries[0].ID == "" || entries[0].Owner != "alice" || entries[0].Note != "note calm" {
		t.Errorf("unexpected entry %+v", entries[0])
	}
	if !entries[2].CreatedAt.Equal(time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)) {
		t.Errorf("CreatedAt = %s", entries[2].CreatedAt)
	}

	oldest, err := db.ListEntries(ctx, "alice", ListOptions{Order: OldestFirst})
	if err != nil {
		t.Fatalf("listing: %v", err)
	}
	if oldest[0].Mood != models.MoodHappy {
		t.Errorf("expected oldest first, got %s", oldest[0].Mood)
	}
}

func TestListEntriesFilters(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	db.now = clock(start, 24*time.Hour)
	seed(t, db, "alice", models.MoodHappy, models.MoodSad, models.MoodHappy, models.MoodTired, models.MoodHappy)

	tests := []struct {
		name string
		opts ListOptions
		want int
	}{
		{"all", ListOptions{}, 5},
		{"mood case insensitive", ListOptions{Mood: " HAPPY "}, 3},
		{"since", ListOptions{Since: start.AddDate(0, 0, 3)}, 2},
		{"until exclusive", ListOptions{Until: start.AddDate(0, 0, 2)}, 2},
		{"window and mood", ListOptions{Since: start.AddDate(0, 0, 1), Until: start.AddDate(0, 0, 4), Mood: "happy"}, 1},
		{"page", ListOptions{Limit: 2, Offset: 4}, 1},
		{"single mood", ListOptions{Mood: "sad"}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries, err := db.ListEntries(ctx, "alice", tt.opts)
			if err != nil {
				t.Fatalf("listing: %v", err)
			}
			if len(entries) != tt.want {
				t.Errorf("got %d entries, want %d", len(entries), tt.want)
			}
		})
	}

	none, err := db.ListEntries(ctx, "bob", ListOptions{})
	if err != nil {
		t.Fatalf("listing: %v", err)
	}
	if len(none) != 0 {
		t.Errorf("bob should have no entries, got %d", len(none))
	}
}

func TestSameTimestampKeepsInsertionOrder(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	fixed := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	db.now = func() time.Time { return fixed }
	seed(t, db, "alice", models.MoodSad, models.MoodHappy)

	entries, err := db.ListEntries(context.Background(), "alice", ListOptions{})
	if err != nil {
		t.Fatalf("listing: %v", err)
	}
	if entries[0].Mood != models.MoodHappy {
		t.Errorf("later insert should list first, got %s", entries[0].Mood)
	}
}

func TestCountEntries(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	db.now = clock(start, 24*time.Hour)
	seed(t, db, "alice", models.MoodHappy, models.MoodSad, models.MoodHappy)

	n, err := db.CountEntries(ctx, "alice", CountFilter{})
	if err != nil || n != 3 {
		t.Errorf("CountEntries = %d, %v; want 3", n, err)
	}
	n, err = db.CountEntries(ctx, "alice", CountFilter{Since: start.AddDate(0, 0, 1)})
	if err != nil || n != 2 {
		t.Errorf("CountEntries since = %d, %v; want 2", n, err)
	}
	n, err = db.CountEntries(ctx, "alice", CountFilter{Mood: "happy"})
	if err != nil || n != 2 {
		t.Errorf("CountEntries happy = %d, %v; want 2", n, err)
	}
}

func TestMostCommonMood(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	mood, n, err := db.MostCommonMood(ctx, "alice")
	if err != nil || mood != "" || n != 0 {
		t.Errorf("empty journal: got %q %d %v", mood, n, err)
	}

	seed(t, db, "alice", models.MoodTired, models.MoodCalm, models.MoodTired, models.MoodCalm)
	mood, n, err = db.MostCommonMood(ctx, "alice")
	if err != nil {
		t.Fatalf("MostCommonMood: %v", err)
	}
	if mood != models.MoodCalm || n != 2 {
		t.Errorf("got %s (%d), want calm (2)", mood, n)
	}
}

func TestOwners(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	seed(t, db, "bob", models.MoodHappy)
	seed(t, db, "alice", models.MoodSad, models.MoodSad)

	owners, err := db.Owners(context.Background())
	if err != nil {
		t.Fatalf("Owners: %v", err)
	}
	if len(owners) != 2 || owners[0] != "alice" || owners[1] != "bob" {
		t.Errorf("Owners = %v", owners)
	}
}

func TestGenerationLog(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	db.now = clock(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), time.Minute)
	if err := db.LogGeneration(ctx, "alice", "wisdom", models.OutcomeGenerated, 1500*time.Millisecond); err != nil {
		t.Fatalf("logging: %v", err)
	}
	if err := db.LogGeneration(ctx, "alice", "playlists", models.OutcomeMalformed, 2*time.Second); err != nil {
		t.Fatalf("logging: %v", err)
	}

	records, err := db.RecentGenerations(ctx, "alice", 10)
	if err != nil {
		t.Fatalf("RecentGenerations: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].Feature != "playlists" || records[0].Outcome != models.OutcomeMalformed {
		t.Errorf("newest record = %+v", records[0])
	}
	if records[1].Latency != 1500*time.Millisecond {
		t.Errorf("latency = %s", records[1].Latency)
	}
}

func TestLetters(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	err := db.SaveLetter(ctx, LetterRecord{
		LetterID: "weekly_alice_2024-W10",
		Owner:    "alice",
		Type:     "weekly",
		ForDate:  "2024-03-10",
		Body:     "Dear Alice",
		FilePath: "/path/to/letter.md",
	})
	if err != nil {
		t.Fatalf("saving letter: %v", err)
	}

	letters, err := db.GetLetters(ctx, "alice", "weekly", nil)
	if err != nil {
		t.Fatalf("getting letters: %v", err)
	}
	if len(letters) != 1 {
		t.Fatalf("expected 1 letter, got %d", len(letters))
	}
	if letters[0].ForDate != "2024-03-10" || letters[0].Body != "Dear Alice" {
		t.Errorf("unexpected letter %+v", letters[0])
	}

	others, err := db.GetLetters(ctx, "bob", "all", nil)
	if err != nil {
		t.Fatalf("getting letters: %v", err)
	}
	if len(others) != 0 {
		t.Errorf("bob should not see alice's letters")
	}
}

func TestSaveLetterReplaces(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	l := LetterRecord{LetterID: "weekly_alice_2024-W10", Owner: "alice", Type: "weekly", ForDate: "2024-03-10", Body: "first"}
	if err := db.SaveLetter(ctx, l); err != nil {
		t.Fatalf("saving letter: %v", err)
	}
	l.Body = "second"
	if err := db.SaveLetter(ctx, l); err != nil {
		t.Fatalf("saving letter: %v", err)
	}

	letters, _ := db.GetLetters(ctx, "alice", "", nil)
	if len(letters) != 1 || letters[0].Body != "second" {
		t.Errorf("expected one replaced letter, got %+v", letters)
	}
}

func TestSchedulerRuns(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	run, err := db.GetLastSchedulerRun(ctx, "alice", "weekly_letter")
	if err != nil || run != nil {
		t.Fatalf("expected no run, got %+v %v", run, err)
	}

	db.now = clock(time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC), time.Second)
	id, err := db.StartSchedulerRun(ctx, "alice", "weekly_letter")
	if err != nil {
		t.Fatalf("starting run: %v", err)
	}
	if err := db.CompleteSchedulerRun(ctx, id, "generator down"); err != nil {
		t.Fatalf("completing run: %v", err)
	}

	run, err = db.GetLastSchedulerRun(ctx, "alice", "weekly_letter")
	if err != nil {
		t.Fatalf("getting run: %v", err)
	}
	if run.Status != "failed" || run.ErrorMessage != "generator down" || run.CompletedAt == nil {
		t.Errorf("unexpected run %+v", run)
	}
}
