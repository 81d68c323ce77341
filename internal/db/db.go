package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/mrwolf/moodlog/internal/models"
)

const schema = `
-- Mood journal, append only
CREATE TABLE IF NOT EXISTS moods (
    id TEXT PRIMARY KEY,
    owner TEXT NOT NULL,
    mood TEXT NOT NULL,
    note TEXT NOT NULL DEFAULT '',
    created_at TEXT NOT NULL
);

-- One row per feature request that could call the generator
CREATE TABLE IF NOT EXISTS generation_log (
    id TEXT PRIMARY KEY,
    owner TEXT NOT NULL,
    feature TEXT NOT NULL,
    outcome TEXT NOT NULL,
    latency_ms INTEGER NOT NULL DEFAULT 0,
    created_at TEXT NOT NULL
);

-- Letter tracking
CREATE TABLE IF NOT EXISTS letters (
    letter_id TEXT PRIMARY KEY,
    owner TEXT NOT NULL,
    type TEXT NOT NULL,
    for_date TEXT NOT NULL,
    body TEXT NOT NULL,
    created_at TEXT NOT NULL,
    file_path TEXT NOT NULL DEFAULT ''
);

-- Scheduler job tracking per owner
CREATE TABLE IF NOT EXISTS scheduler_runs (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    owner TEXT NOT NULL,
    job_type TEXT NOT NULL,
    status TEXT NOT NULL,
    started_at TEXT NOT NULL,
    completed_at TEXT,
    error_message TEXT
);

CREATE INDEX IF NOT EXISTS idx_moods_owner_created ON moods(owner, created_at);
CREATE INDEX IF NOT EXISTS idx_generation_owner ON generation_log(owner, created_at);
CREATE INDEX IF NOT EXISTS idx_letters_owner_date ON letters(owner, for_date);
CREATE INDEX IF NOT EXISTS idx_scheduler_owner ON scheduler_runs(owner, job_type);
`

// timeLayout is fixed width so stored timestamps sort as text
const timeLayout = "2006-01-02T15:04:05.000000Z"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		t, _ = time.Parse(time.RFC3339, s)
	}
	return t
}

type DB struct {
	conn *sql.DB
	now  func() time.Time
}

func Open(path string) (*DB, error) {
	conn, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := conn.Ping(); err != nil {
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	db := &DB{conn: conn, now: time.Now}
	if err := db.migrate(); err != nil {
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return db, nil
}

func (db *DB) migrate() error {
	_, err := db.conn.Exec(schema)
	if err != nil {
		return fmt.Errorf("executing migration: %w", err)
	}
	return nil
}

func (db *DB) Close() error {
	return db.conn.Close()
}

// Ping checks the connection for the health endpoint
func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

// ============== Moods ==============

// CreateMood appends an entry to owner's journal
func (db *DB) CreateMood(ctx context.Context, owner string, mood models.Category, note string) (*models.MoodEntry, error) {
	entry := &models.MoodEntry{
		ID:        uuid.NewString(),
		Owner:     owner,
		Mood:      mood,
		Note:      note,
		CreatedAt: db.now().UTC(),
	}
	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO moods (id, owner, mood, note, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, entry.ID, entry.Owner, string(entry.Mood), entry.Note, formatTime(entry.CreatedAt))
	if err != nil {
		return nil, fmt.Errorf("inserting mood: %w", err)
	}
	return entry, nil
}

// Order sorts entries by creation time
type Order int

const (
	NewestFirst Order = iota
	OldestFirst
)

// ListOptions filters a journal listing. Zero values mean no filter.
type ListOptions struct {
	Since  time.Time
	Until  time.Time
	Mood   string
	Order  Order
	Limit  int
	Offset int
}

// CountFilter narrows CountEntries
type CountFilter struct {
	Since time.Time
	Mood  string
}

func (o ListOptions) where(owner string) (string, []interface{}) {
	clause := `owner = ?`
	args := []interface{}{owner}
	if !o.Since.IsZero() {
		clause += ` AND created_at >= ?`
		args = append(args, formatTime(o.Since))
	}
	if !o.Until.IsZero() {
		clause += ` AND created_at < ?`
		args = append(args, formatTime(o.Until))
	}
	if o.Mood != "" {
		clause += ` AND LOWER(mood) = ?`
		args = append(args, strings.ToLower(strings.TrimSpace(o.Mood)))
	}
	return clause, args
}

// ListEntries returns owner's entries matching opts
func (db *DB) ListEntries(ctx context.Context, owner string, opts ListOptions) ([]models.MoodEntry, error) {
	where, args := opts.where(owner)
	query := `SELECT id, owner, mood, note, created_at FROM moods WHERE ` + where
	if opts.Order == OldestFirst {
		query += ` ORDER BY created_at ASC, rowid ASC`
	} else {
		query += ` ORDER BY created_at DESC, rowid DESC`
	}
	if opts.Limit > 0 {
		query += ` LIMIT ? OFFSET ?`
		args = append(args, opts.Limit, opts.Offset)
	}

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing moods: %w", err)
	}
	defer rows.Close()

	var entries []models.MoodEntry
	for rows.Next() {
		var e models.MoodEntry
		var mood, created string
		if err := rows.Scan(&e.ID, &e.Owner, &mood, &e.Note, &created); err != nil {
			return nil, err
		}
		e.Mood = models.Category(mood)
		e.CreatedAt = parseTime(created)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// CountEntries counts owner's entries matching f
func (db *DB) CountEntries(ctx context.Context, owner string, f CountFilter) (int, error) {
	where, args := ListOptions{Since: f.Since, Mood: f.Mood}.where(owner)
	var n int
	err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM moods WHERE `+where, args...).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting moods: %w", err)
	}
	return n, nil
}

// MostCommonMood returns owner's most logged category and its count.
// Ties go to the category listed first in models.Categories; an empty journal
// returns "" and 0.
func (db *DB) MostCommonMood(ctx context.Context, owner string) (models.Category, int, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT mood, COUNT(*) FROM moods WHERE owner = ? GROUP BY mood
	`, owner)
	if err != nil {
		return "", 0, fmt.Errorf("grouping moods: %w", err)
	}
	defer rows.Close()

	counts := make(map[models.Category]int)
	for rows.Next() {
		var mood string
		var n int
		if err := rows.Scan(&mood, &n); err != nil {
			return "", 0, err
		}
		c := models.Category(mood)
		if !c.Valid() {
			c = models.MoodUncategorized
		}
		counts[c] += n
	}
	if err := rows.Err(); err != nil {
		return "", 0, err
	}

	var best models.Category
	bestCount := 0
	for _, c := range append(append([]models.Category{}, models.Categories...), models.MoodUncategorized) {
		if counts[c] > bestCount {
			best, bestCount = c, counts[c]
		}
	}
	return best, bestCount, nil
}

// Owners returns every owner with at least one entry
func (db *DB) Owners(ctx context.Context) ([]string, error) {
	rows, err := db.conn.QueryContext(ctx, `SELECT DISTINCT owner FROM moods ORDER BY owner`)
	if err != nil {
		return nil, fmt.Errorf("listing owners: %w", err)
	}
	defer rows.Close()

	var owners []string
	for rows.Next() {
		var o string
		if err := rows.Scan(&o); err != nil {
			return nil, err
		}
		owners = append(owners, o)
	}
	return owners, rows.Err()
}

// ============== Generation log ==============

// GenerationRecord is one feature request that could call the generator
type GenerationRecord struct {
	ID        string
	Owner     string
	Feature   string
	Outcome   string
	Latency   time.Duration
	CreatedAt time.Time
}

// LogGeneration records the outcome of a feature request
func (db *DB) LogGeneration(ctx context.Context, owner, feature, outcome string, latency time.Duration) error {
	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO generation_log (id, owner, feature, outcome, latency_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, uuid.NewString(), owner, feature, outcome, latency.Milliseconds(), formatTime(db.now()))
	return err
}

// RecentGenerations returns owner's latest generation records, newest first
func (db *DB) RecentGenerations(ctx context.Context, owner string, limit int) ([]GenerationRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := db.conn.QueryContext(ctx, `
		SELECT id, owner, feature, outcome, latency_ms, created_at
		FROM generation_log
		WHERE owner = ?
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?
	`, owner, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []GenerationRecord
	for rows.Next() {
		var r GenerationRecord
		var ms int64
		var created string
		if err := rows.Scan(&r.ID, &r.Owner, &r.Feature, &r.Outcome, &ms, &created); err != nil {
			return nil, err
		}
		r.Latency = time.Duration(ms) * time.Millisecond
		r.CreatedAt = parseTime(created)
		records = append(records, r)
	}
	return records, rows.Err()
}

// ============== Letters ==============

type LetterRecord struct {
	LetterID  string
	Owner     string
	Type      string
	ForDate   string
	Body      string
	CreatedAt string
	FilePath  string
}

// SaveLetter records a generated letter. Saving the same letter ID again
// replaces it.
func (db *DB) SaveLetter(ctx context.Context, l LetterRecord) error {
	_, err := db.conn.ExecContext(ctx, `
		INSERT OR REPLACE INTO letters (letter_id, owner, type, for_date, body, created_at, file_path)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, l.LetterID, l.Owner, l.Type, l.ForDate, l.Body, formatTime(db.now()), l.FilePath)
	return err
}

// GetLetters returns owner's letters optionally filtered by type and date
func (db *DB) GetLetters(ctx context.Context, owner, letterType string, since *time.Time) ([]LetterRecord, error) {
	query := `SELECT letter_id, owner, type, for_date, body, created_at, file_path FROM letters WHERE owner = ?`
	args := []interface{}{owner}

	if letterType != "" && letterType != "all" {
		query += ` AND type = ?`
		args = append(args, letterType)
	}
	if since != nil {
		query += ` AND created_at >= ?`
		args = append(args, formatTime(*since))
	}
	query += ` ORDER BY created_at DESC LIMIT 50`

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var letters []LetterRecord
	for rows.Next() {
		var l LetterRecord
		if err := rows.Scan(&l.LetterID, &l.Owner, &l.Type, &l.ForDate, &l.Body, &l.CreatedAt, &l.FilePath); err != nil {
			return nil, err
		}
		letters = append(letters, l)
	}
	return letters, rows.Err()
}

// ============== Scheduler runs ==============

type SchedulerRun struct {
	ID           int64
	Owner        string
	JobType      string
	Status       string
	StartedAt    time.Time
	CompletedAt  *time.Time
	ErrorMessage string
}

// StartSchedulerRun records the start of a scheduler job
func (db *DB) StartSchedulerRun(ctx context.Context, owner, jobType string) (int64, error) {
	result, err := db.conn.ExecContext(ctx, `
		INSERT INTO scheduler_runs (owner, job_type, status, started_at)
		VALUES (?, ?, 'running', ?)
	`, owner, jobType, formatTime(db.now()))
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// CompleteSchedulerRun marks a scheduler job as completed
func (db *DB) CompleteSchedulerRun(ctx context.Context, runID int64, errMsg string) error {
	status := "completed"
	if errMsg != "" {
		status = "failed"
	}
	_, err := db.conn.ExecContext(ctx, `
		UPDATE scheduler_runs
		SET status = ?, completed_at = ?, error_message = ?
		WHERE id = ?
	`, status, formatTime(db.now()), errMsg, runID)
	return err
}

// GetLastSchedulerRun returns the last run for an owner and job type
func (db *DB) GetLastSchedulerRun(ctx context.Context, owner, jobType string) (*SchedulerRun, error) {
	var run SchedulerRun
	var startedStr string
	var completedStr, errMsg sql.NullString
	err := db.conn.QueryRowContext(ctx, `
		SELECT id, owner, job_type, status, started_at, completed_at, error_message
		FROM scheduler_runs
		WHERE owner = ? AND job_type = ?
		ORDER BY started_at DESC, id DESC
		LIMIT 1
	`, owner, jobType).Scan(&run.ID, &run.Owner, &run.JobType, &run.Status, &startedStr, &completedStr, &errMsg)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	run.StartedAt = parseTime(startedStr)
	if completedStr.Valid {
		t := parseTime(completedStr.String)
		run.CompletedAt = &t
	}
	if errMsg.Valid {
		run.ErrorMessage = errMsg.String
	}
	return &run, nil
}
