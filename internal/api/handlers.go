package api

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/mrwolf/moodlog/internal/config"
	"github.com/mrwolf/moodlog/internal/db"
	"github.com/mrwolf/moodlog/internal/llm"
	"github.com/mrwolf/moodlog/internal/models"
	"github.com/mrwolf/moodlog/internal/vault"
	"github.com/mrwolf/moodlog/internal/wellness"
)

// ErrorResponse is the standard error response format
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func writeError(w http.ResponseWriter, status int, message, code string) {
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponse{
		Error: message,
		Code:  code,
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("api: encoding response: %v", err)
	}
}

const maxBodyBytes = 64 << 10

type Handlers struct {
	cfg   *config.Config
	db    *db.DB
	vault *vault.Vault // nil when no vault path is configured
	svc   *wellness.Service
}

func NewHandlers(cfg *config.Config, database *db.DB, v *vault.Vault, svc *wellness.Service) *Handlers {
	return &Handlers{
		cfg:   cfg,
		db:    database,
		vault: v,
		svc:   svc,
	}
}

// Health handles GET /health
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, http.StatusOK, models.HealthResponse{
		Status:    "ok",
		Generator: h.checkGenerator(r.Context()),
		Database:  h.checkDatabase(r.Context()),
		Version:   "1.0.0",
	})
}

func (h *Handlers) checkGenerator(ctx context.Context) string {
	gen := h.svc.Generator()
	if gen == nil {
		return "not configured"
	}
	checker, ok := gen.(llm.HealthChecker)
	if !ok {
		return llm.NameOf(gen)
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := checker.HealthCheck(ctx); err != nil {
		return "error: " + err.Error()
	}
	return "connected"
}

func (h *Handlers) checkDatabase(ctx context.Context) string {
	if err := h.db.Ping(ctx); err != nil {
		return "error: " + err.Error()
	}
	return "ok"
}

// CreateMood handles POST /moods
func (h *Handlers) CreateMood(w http.ResponseWriter, r *http.Request) {
	var req models.CreateMoodRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", "INVALID_BODY")
		return
	}

	mood, ok := models.ParseCategory(req.Mood)
	if !ok {
		writeError(w, http.StatusBadRequest, "mood must be one of happy, sad, anxious, angry, calm, tired", "INVALID_MOOD")
		return
	}

	owner := GetOwner(r)
	entry, err := h.db.CreateMood(r.Context(), owner, mood, strings.TrimSpace(req.Note))
	if err != nil {
		log.Printf("api: storing mood for %s: %v", owner, err)
		writeError(w, http.StatusInternalServerError, "database error", "DB_ERROR")
		return
	}

	if h.vault != nil {
		if err := h.vault.AppendMood(*entry); err != nil {
			log.Printf("api: mirroring mood %s to vault: %v", entry.ID, err)
		}
	}

	streak, err := h.svc.Streak(r.Context(), owner)
	if err != nil {
		log.Printf("api: computing streak for %s: %v", owner, err)
	}

	writeJSON(w, http.StatusCreated, models.CreateMoodResponse{Entry: *entry, Streak: streak})
}

// History handles GET /moods
func (h *Handlers) History(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, err := strconv.Atoi(q.Get("page"))
	if err != nil {
		page = 1
	}

	view, err := h.svc.History(r.Context(), GetOwner(r), wellness.HistoryQuery{
		Sort: q.Get("sort"),
		Mood: q.Get("mood"),
		Page: page,
	})
	h.respond(w, view, err)
}

// Streak handles GET /streak
func (h *Handlers) Streak(w http.ResponseWriter, r *http.Request) {
	streak, err := h.svc.Streak(r.Context(), GetOwner(r))
	h.respond(w, map[string]int{"streak": streak}, err)
}

// Dashboard handles GET /dashboard. ?preset selects the balance preset.
func (h *Handlers) Dashboard(w http.ResponseWriter, r *http.Request) {
	svc := h.svc
	if name := r.URL.Query().Get("preset"); name != "" {
		var ok bool
		if svc, ok = h.svc.WithPreset(name); !ok {
			writeError(w, http.StatusBadRequest, "unknown preset "+strconv.Quote(name), "INVALID_PRESET")
			return
		}
	}

	view, err := svc.Dashboard(r.Context(), GetOwner(r))
	h.respond(w, view, err)
}

// Insights handles GET /insights
func (h *Handlers) Insights(w http.ResponseWriter, r *http.Request) {
	view, err := h.svc.Insights(r.Context(), GetOwner(r))
	h.respond(w, view, err)
}

// Monthly handles GET /monthly
func (h *Handlers) Monthly(w http.ResponseWriter, r *http.Request) {
	view, err := h.svc.MonthlyAnalysis(r.Context(), GetOwner(r))
	h.respond(w, view, err)
}

// Challenges handles GET /challenges
func (h *Handlers) Challenges(w http.ResponseWriter, r *http.Request) {
	view, err := h.svc.Challenges(r.Context(), GetOwner(r))
	h.respond(w, view, err)
}

// Playlists handles GET /playlists
func (h *Handlers) Playlists(w http.ResponseWriter, r *http.Request) {
	view, err := h.svc.Playlists(r.Context(), GetOwner(r))
	h.respond(w, view, err)
}

// Playlist handles GET /playlist
func (h *Handlers) Playlist(w http.ResponseWriter, r *http.Request) {
	view, err := h.svc.PersonalizedPlaylist(r.Context(), GetOwner(r))
	h.respond(w, view, err)
}

// Wisdom handles GET /wisdom
func (h *Handlers) Wisdom(w http.ResponseWriter, r *http.Request) {
	view, err := h.svc.Wisdom(r.Context(), GetOwner(r))
	h.respond(w, view, err)
}

// Suggestion handles GET /suggestion
func (h *Handlers) Suggestion(w http.ResponseWriter, r *http.Request) {
	view, err := h.svc.Suggestion(r.Context(), GetOwner(r))
	h.respond(w, view, err)
}

// respond writes view, or a database error when the journal could not be read
func (h *Handlers) respond(w http.ResponseWriter, view interface{}, err error) {
	if err != nil {
		log.Printf("api: %v", err)
		writeError(w, http.StatusInternalServerError, "database error", "DB_ERROR")
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// Letters handles GET /letters
func (h *Handlers) Letters(w http.ResponseWriter, r *http.Request) {
	owner := GetOwner(r)
	letterType := r.URL.Query().Get("type")
	sinceStr := r.URL.Query().Get("since")

	var since *time.Time
	if sinceStr != "" {
		parsed, err := time.Parse(time.RFC3339, sinceStr)
		if err != nil {
			parsed, err = time.Parse("2006-01-02", sinceStr)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid since format, use RFC3339 or YYYY-MM-DD", "INVALID_DATE")
				return
			}
		}
		since = &parsed
	}

	records, err := h.db.GetLetters(r.Context(), owner, letterType, since)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "database error", "DB_ERROR")
		return
	}

	letters := make([]models.Letter, 0, len(records))
	for _, rec := range records {
		letters = append(letters, models.Letter{
			LetterID:  rec.LetterID,
			Type:      rec.Type,
			ForDate:   rec.ForDate,
			Text:      h.letterText(rec),
			CreatedTS: rec.CreatedAt,
		})
	}

	writeJSON(w, http.StatusOK, models.LettersResponse{Letters: letters})
}

// letterText prefers the vault copy of a letter, which the owner may have
// edited, over the body stored at generation time
func (h *Handlers) letterText(rec db.LetterRecord) string {
	if h.vault == nil || rec.FilePath == "" {
		return rec.Body
	}
	letter, err := h.vault.ReadLetter(rec.FilePath)
	if err != nil {
		log.Printf("api: reading letter %s from vault: %v", rec.LetterID, err)
		return rec.Body
	}
	if letter.Content == "" {
		return rec.Body
	}
	return letter.Content
}

const (
	defaultGenerationsLimit = 20
	maxGenerationsLimit     = 100
)

// Generations handles GET /generations, the owner's recent generation log
func (h *Handlers) Generations(w http.ResponseWriter, r *http.Request) {
	limit := defaultGenerationsLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer", "INVALID_LIMIT")
			return
		}
		limit = min(n, maxGenerationsLimit)
	}

	owner := GetOwner(r)
	records, err := h.db.RecentGenerations(r.Context(), owner, limit)
	if err != nil {
		log.Printf("api: loading generation log for %s: %v", owner, err)
		writeError(w, http.StatusInternalServerError, "database error", "DB_ERROR")
		return
	}

	generations := make([]models.Generation, 0, len(records))
	for _, rec := range records {
		generations = append(generations, models.Generation{
			Feature:   rec.Feature,
			Outcome:   rec.Outcome,
			LatencyMS: rec.Latency.Milliseconds(),
			CreatedAt: rec.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, models.GenerationsResponse{Generations: generations})
}
