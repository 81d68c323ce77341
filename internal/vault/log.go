package vault

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"github.com/mrwolf/moodlog/internal/models"
)

// MoodLine is one line of Log/moods.jsonl
type MoodLine struct {
	ID    string `json:"id"`
	TS    string `json:"ts"`
	Owner string `json:"owner"`
	Mood  string `json:"mood"`
	Note  string `json:"note,omitempty"`
}

// AppendMood mirrors a stored entry to the mood log
func (v *Vault) AppendMood(entry models.MoodEntry) error {
	v.logLock.Lock()
	defer v.logLock.Unlock()

	line, err := json.Marshal(MoodLine{
		ID:    entry.ID,
		TS:    entry.CreatedAt.UTC().Format(time.RFC3339),
		Owner: entry.Owner,
		Mood:  string(entry.Mood),
		Note:  entry.Note,
	})
	if err != nil {
		return fmt.Errorf("marshaling mood line: %w", err)
	}

	if err := AppendLine(filepath.Join(v.basePath, "Log", "moods.jsonl"), line); err != nil {
		return fmt.Errorf("appending mood log: %w", err)
	}
	return nil
}
