package vault

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/mrwolf/moodlog/internal/models"
)

func TestAppendMood(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "vault-test-*")
	if err != nil {
		t.Fatalf("creating temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	v := NewVault(tmpDir)
	entry := models.MoodEntry{
		ID:        "3f6c",
		Owner:     "alice",
		Mood:      models.MoodCalm,
		Note:      "quiet evening",
		CreatedAt: time.Date(2024, 1, 15, 21, 0, 0, 0, time.UTC),
	}
	if err := v.AppendMood(entry); err != nil {
		t.Fatalf("appending mood: %v", err)
	}

	content, err := os.ReadFile(filepath.Join(tmpDir, "Log", "moods.jsonl"))
	if err != nil {
		t.Fatalf("reading log: %v", err)
	}

	var line MoodLine
	if err := json.Unmarshal(content, &line); err != nil {
		t.Fatalf("decoding line: %v", err)
	}
	if line.ID != "3f6c" || line.Mood != "calm" || line.TS != "2024-01-15T21:00:00Z" {
		t.Errorf("line = %+v", line)
	}
}

func TestAppendMoodConcurrent(t *testing.T) {
	tmpDir := t.TempDir()
	v := NewVault(tmpDir)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v.AppendMood(models.MoodEntry{ID: "x", Owner: "bob", Mood: models.MoodHappy, CreatedAt: time.Now()})
		}()
	}
	wg.Wait()

	f, err := os.Open(filepath.Join(tmpDir, "Log", "moods.jsonl"))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	lines := 0
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var line MoodLine
		if err := json.Unmarshal(scanner.Bytes(), &line); err != nil {
			t.Errorf("line %d is not JSON: %v", lines, err)
		}
		lines++
	}
	if lines != 20 {
		t.Errorf("got %d lines, want 20", lines)
	}
}

func TestWeeklyLetterRoundTrip(t *testing.T) {
	tmpDir := t.TempDir()
	v := NewVault(tmpDir)

	letter := Letter{
		ID:      "let_1",
		ForDate: "2024-W12",
		Owner:   "Alice Smith",
		Entries: 4,
		Outcome: models.OutcomeGenerated,
		Created: "2024-03-24T08:00:00Z",
		Content: "THIS WEEK: Calm.\n\nPATTERNS:\n- Walks help",
	}

	relPath, err := v.WriteWeeklyLetter(letter)
	if err != nil {
		t.Fatalf("writing letter: %v", err)
	}
	if want := filepath.Join("Letters", "Weekly", "2024-W12-alice-smith.md"); relPath != want {
		t.Errorf("path = %q, want %q", relPath, want)
	}

	raw, _ := os.ReadFile(filepath.Join(tmpDir, relPath))
	if !strings.HasPrefix(string(raw), "---\nid: let_1\ntype: weekly\n") {
		t.Errorf("unexpected frontmatter:\n%s", raw)
	}

	got, err := v.ReadLetter(relPath)
	if err != nil {
		t.Fatalf("reading letter: %v", err)
	}
	if got.Content != letter.Content {
		t.Errorf("Content = %q, want %q", got.Content, letter.Content)
	}
	if got.Owner != "Alice Smith" || got.Entries != 4 || got.Type != "weekly" {
		t.Errorf("metadata = %+v", got)
	}
}

func TestWeeklyLetterRequiresDate(t *testing.T) {
	v := NewVault(t.TempDir())
	if _, err := v.WriteWeeklyLetter(Letter{ID: "let_2", Owner: "bob"}); err == nil {
		t.Error("expected error for a letter without a date")
	}
}

func TestParseLetter(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		content string
		wantErr bool
	}{
		{"no frontmatter", "just text\n", "just text", false},
		{"frontmatter", "---\nid: a\n---\n\nbody\n", "body", false},
		{"unterminated", "---\nid: a\nbody\n", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := parseLetter(tt.raw)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && l.Content != tt.content {
				t.Errorf("Content = %q, want %q", l.Content, tt.content)
			}
		})
	}
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"alice", "alice"},
		{"Alice Smith", "alice-smith"},
		{"bob_jones", "bob-jones"},
		{"Special!@#Characters", "specialcharacters"},
		{"", "owner"},
		{"---", "owner"},
	}

	for _, tc := range tests {
		if result := slugify(tc.input); result != tc.expected {
			t.Errorf("slugify(%q) = %q, want %q", tc.input, result, tc.expected)
		}
	}
}
