package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/mrwolf/moodlog/internal/config"
	"github.com/mrwolf/moodlog/internal/db"
	"github.com/mrwolf/moodlog/internal/models"
	"github.com/mrwolf/moodlog/internal/vault"
	"github.com/mrwolf/moodlog/internal/wellness"
)

// cannedGenerator answers every prompt with the same text
type cannedGenerator struct {
	reply string
	calls int
}

func (g *cannedGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	g.calls++
	return g.reply, nil
}

type testServer struct {
	*httptest.Server
	db        *db.DB
	vaultPath string
	gen       *cannedGenerator
}

func setupTestServer(t *testing.T) (*testServer, func()) {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "moodlog-test-*")
	if err != nil {
		t.Fatalf("creating temp dir: %v", err)
	}

	vaultPath := filepath.Join(tmpDir, "vault")
	dbPath := filepath.Join(tmpDir, "test.db")

	cfg := config.Config{
		Port:          "0",
		VaultPath:     vaultPath,
		DBPath:        dbPath,
		Timezone:      "UTC",
		LLMProvider:   config.ProviderNone,
		LLMTimeout:    time.Second,
		BalancePreset: "dashboard",
	}.WithUsers(map[string]string{
		"test_alice_token": "alice",
		"test_bob_token":   "bob",
	})

	database, err := db.Open(dbPath)
	if err != nil {
		os.RemoveAll(tmpDir)
		t.Fatalf("opening database: %v", err)
	}

	gen := &cannedGenerator{reply: "EMOTIONAL SUMMARY:\nSteady.\nMOOD PATTERNS:\nMornings are brighter.\nEMOTIONAL INSIGHT:\nRest matters.\nGENTLE SUGGESTIONS:\nSleep early."}
	svc := wellness.NewService(database, gen, wellness.Options{Timeout: time.Second, Location: time.UTC})

	router := NewRouter(cfg, database, vault.NewVault(vaultPath), svc)
	server := httptest.NewServer(router)

	cleanup := func() {
		server.Close()
		database.Close()
		os.RemoveAll(tmpDir)
	}

	return &testServer{Server: server, db: database, vaultPath: vaultPath, gen: gen}, cleanup
}

func (s *testServer) do(t *testing.T, method, path, token, body string) *http.Response {
	t.Helper()
	var reader *bytes.Buffer
	if body != "" {
		reader = bytes.NewBufferString(body)
	} else {
		reader = &bytes.Buffer{}
	}
	req, _ := http.NewRequest(method, s.URL+path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	return resp
}

func decode(t *testing.T, resp *http.Response, v interface{}) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
}

func TestHealthEndpoint(t *testing.T) {
	server, cleanup := setupTestServer(t)
	defer cleanup()

	resp, err := http.Get(server.URL + "/health")
	if err != nil {
		t.Fatalf("GET /health: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected status 200, got %d", resp.StatusCode)
	}

	var body models.HealthResponse
	decode(t, resp, &body)

	if body.Status != "ok" || body.Version != "1.0.0" {
		t.Errorf("health = %+v", body)
	}
	if body.Database != "ok" {
		t.Errorf("database = %q", body.Database)
	}
}

func TestAuth(t *testing.T) {
	server, cleanup := setupTestServer(t)
	defer cleanup()

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"wrong scheme", "Basic dGVzdA=="},
		{"unknown token", "Bearer nope"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, _ := http.NewRequest("GET", server.URL+"/api/v1/streak", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				t.Fatal(err)
			}
			if resp.StatusCode != http.StatusUnauthorized {
				t.Errorf("expected 401, got %d", resp.StatusCode)
			}
			var body ErrorResponse
			decode(t, resp, &body)
			if body.Code != "UNAUTHORIZED" {
				t.Errorf("code = %q", body.Code)
			}
		})
	}
}

func TestCreateMood(t *testing.T) {
	server, cleanup := setupTestServer(t)
	defer cleanup()

	resp := server.do(t, "POST", "/api/v1/moods", "test_alice_token", `{"mood":" Happy ","note":"  sunny  "}`)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}

	var body models.CreateMoodResponse
	decode(t, resp, &body)

	if body.Entry.Mood != models.MoodHappy || body.Entry.Note != "sunny" || body.Entry.Owner != "alice" {
		t.Errorf("entry = %+v", body.Entry)
	}
	if body.Streak != 1 {
		t.Errorf("streak = %d, want 1", body.Streak)
	}

	logged, err := os.ReadFile(filepath.Join(server.vaultPath, "Log", "moods.jsonl"))
	if err != nil {
		t.Fatalf("reading vault log: %v", err)
	}
	if !strings.Contains(string(logged), body.Entry.ID) {
		t.Error("entry was not mirrored to the vault")
	}
}

func TestCreateMoodValidation(t *testing.T) {
	server, cleanup := setupTestServer(t)
	defer cleanup()

	tests := []struct {
		name string
		body string
		code string
	}{
		{"bad json", `{"mood":`, "INVALID_BODY"},
		{"unknown mood", `{"mood":"bored"}`, "INVALID_MOOD"},
		{"missing mood", `{"note":"hi"}`, "INVALID_MOOD"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := server.do(t, "POST", "/api/v1/moods", "test_alice_token", tt.body)
			if resp.StatusCode != http.StatusBadRequest {
				t.Errorf("expected 400, got %d", resp.StatusCode)
			}
			var body ErrorResponse
			decode(t, resp, &body)
			if body.Code != tt.code {
				t.Errorf("code = %q, want %q", body.Code, tt.code)
			}
		})
	}
}

func TestHistoryIsPerOwner(t *testing.T) {
	server, cleanup := setupTestServer(t)
	defer cleanup()
	ctx := context.Background()

	for _, m := range []models.Category{models.MoodSad, models.MoodCalm, models.MoodSad} {
		if _, err := server.db.CreateMood(ctx, "alice", m, ""); err != nil {
			t.Fatal(err)
		}
	}
	server.db.CreateMood(ctx, "bob", models.MoodAngry, "")

	resp := server.do(t, "GET", "/api/v1/moods?mood=sad&page=abc", "test_alice_token", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var view wellness.HistoryView
	decode(t, resp, &view)

	if len(view.Entries) != 2 || view.Page != 1 {
		t.Errorf("got %d entries on page %d", len(view.Entries), view.Page)
	}
	if view.Stats.Total != 3 || view.Stats.MostCommon != "Sad" {
		t.Errorf("stats = %+v", view.Stats)
	}

	resp = server.do(t, "GET", "/api/v1/moods", "test_bob_token", "")
	decode(t, resp, &view)
	if view.Stats.Total != 1 || view.Entries[0].Mood != models.MoodAngry {
		t.Errorf("bob sees %+v", view)
	}
}

func TestDashboardEndpoint(t *testing.T) {
	server, cleanup := setupTestServer(t)
	defer cleanup()

	server.db.CreateMood(context.Background(), "alice", models.MoodTired, "long shift")

	resp := server.do(t, "GET", "/api/v1/dashboard", "test_alice_token", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var view wellness.DashboardView
	decode(t, resp, &view)

	if view.Summary != "Steady." || view.Outcome != models.OutcomeGenerated {
		t.Errorf("dashboard = %+v", view)
	}
	if view.Total != 1 || view.Streak != 1 {
		t.Errorf("total/streak = %d/%d", view.Total, view.Streak)
	}

	resp = server.do(t, "GET", "/api/v1/dashboard?preset=insights", "test_alice_token", "")
	decode(t, resp, &view)
	if view.Balance.Label != "Varied" {
		t.Errorf("insights preset balance = %q, want Varied", view.Balance.Label)
	}

	resp = server.do(t, "GET", "/api/v1/dashboard?preset=nope", "test_alice_token", "")
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("unknown preset: expected 400, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	records, err := server.db.RecentGenerations(context.Background(), "alice", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 2 || records[0].Feature != wellness.FeatureDashboard {
		t.Errorf("generation log = %+v", records)
	}
}

func TestChallengesFallBackOnMalformedReply(t *testing.T) {
	server, cleanup := setupTestServer(t)
	defer cleanup()

	server.db.CreateMood(context.Background(), "alice", models.MoodAnxious, "")

	resp := server.do(t, "GET", "/api/v1/challenges", "test_alice_token", "")
	var view wellness.BatchView
	decode(t, resp, &view)

	if len(view.Records) != 3 || view.Outcome != models.OutcomeMalformed {
		t.Errorf("challenges = %+v", view)
	}
}

func TestEmptyJournalEndpoints(t *testing.T) {
	server, cleanup := setupTestServer(t)
	defer cleanup()

	for _, path := range []string{"/dashboard", "/monthly", "/challenges", "/playlists", "/playlist", "/wisdom", "/suggestion", "/insights", "/streak"} {
		t.Run(path, func(t *testing.T) {
			resp := server.do(t, "GET", "/api/v1"+path, "test_bob_token", "")
			if resp.StatusCode != http.StatusOK {
				t.Errorf("expected 200, got %d", resp.StatusCode)
			}
			resp.Body.Close()
		})
	}
	if server.gen.calls != 0 {
		t.Errorf("generator called %d times for an empty journal", server.gen.calls)
	}
}

func TestLettersEndpoint(t *testing.T) {
	server, cleanup := setupTestServer(t)
	defer cleanup()

	err := server.db.SaveLetter(context.Background(), db.LetterRecord{
		LetterID: "let_1",
		Owner:    "alice",
		Type:     "weekly",
		ForDate:  "2024-W12",
		Body:     "THIS WEEK: Calm.",
	})
	if err != nil {
		t.Fatal(err)
	}

	resp := server.do(t, "GET", "/api/v1/letters?type=weekly", "test_alice_token", "")
	var body models.LettersResponse
	decode(t, resp, &body)
	if len(body.Letters) != 1 || body.Letters[0].Text != "THIS WEEK: Calm." {
		t.Errorf("letters = %+v", body.Letters)
	}

	resp = server.do(t, "GET", "/api/v1/letters", "test_bob_token", "")
	decode(t, resp, &body)
	if len(body.Letters) != 0 {
		t.Errorf("bob sees alice's letters: %+v", body.Letters)
	}

	resp = server.do(t, "GET", "/api/v1/letters?since=yesterday", "test_alice_token", "")
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("invalid since: expected 400, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestLettersPreferVaultCopy(t *testing.T) {
	server, cleanup := setupTestServer(t)
	defer cleanup()
	ctx := context.Background()

	relPath, err := vault.NewVault(server.vaultPath).WriteWeeklyLetter(vault.Letter{
		ID:      "let_2024-W12_alice_weekly",
		ForDate: "2024-W12",
		Owner:   "alice",
		Content: "THIS WEEK: Edited by hand.",
	})
	if err != nil {
		t.Fatal(err)
	}
	records := []db.LetterRecord{
		{LetterID: "let_2024-W12_alice_weekly", Owner: "alice", Type: "weekly", ForDate: "2024-W12", Body: "THIS WEEK: As generated.", FilePath: relPath},
		{LetterID: "let_2024-W11_alice_weekly", Owner: "alice", Type: "weekly", ForDate: "2024-W11", Body: "THIS WEEK: Stored only.", FilePath: "Letters/Weekly/missing.md"},
	}
	for _, rec := range records {
		if err := server.db.SaveLetter(ctx, rec); err != nil {
			t.Fatal(err)
		}
	}

	resp := server.do(t, "GET", "/api/v1/letters", "test_alice_token", "")
	var body models.LettersResponse
	decode(t, resp, &body)

	got := map[string]string{}
	for _, l := range body.Letters {
		got[l.ForDate] = l.Text
	}
	if got["2024-W12"] != "THIS WEEK: Edited by hand." {
		t.Errorf("W12 text = %q, want the vault copy", got["2024-W12"])
	}
	if got["2024-W11"] != "THIS WEEK: Stored only." {
		t.Errorf("W11 text = %q, want the stored body", got["2024-W11"])
	}
}

func TestGenerationsEndpoint(t *testing.T) {
	server, cleanup := setupTestServer(t)
	defer cleanup()
	ctx := context.Background()

	server.db.CreateMood(ctx, "alice", models.MoodCalm, "")
	for _, path := range []string{"/wisdom", "/suggestion", "/dashboard"} {
		server.do(t, "GET", "/api/v1"+path, "test_alice_token", "").Body.Close()
	}
	server.do(t, "GET", "/api/v1/wisdom", "test_bob_token", "").Body.Close()

	resp := server.do(t, "GET", "/api/v1/generations?limit=2", "test_alice_token", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var body models.GenerationsResponse
	decode(t, resp, &body)
	if len(body.Generations) != 2 {
		t.Fatalf("got %d generations, want 2", len(body.Generations))
	}
	if body.Generations[0].Feature != wellness.FeatureDashboard || body.Generations[0].Outcome != models.OutcomeGenerated {
		t.Errorf("newest generation = %+v", body.Generations[0])
	}

	resp = server.do(t, "GET", "/api/v1/generations", "test_bob_token", "")
	decode(t, resp, &body)
	if len(body.Generations) != 1 || body.Generations[0].Outcome != models.OutcomeEmptyLog {
		t.Errorf("bob generations = %+v", body.Generations)
	}

	for _, limit := range []string{"0", "-3", "lots"} {
		resp = server.do(t, "GET", "/api/v1/generations?limit="+limit, "test_alice_token", "")
		var errBody map[string]interface{}
		decode(t, resp, &errBody)
		if resp.StatusCode != http.StatusBadRequest || errBody["code"] != "INVALID_LIMIT" {
			t.Errorf("limit=%s: status %d, body %v", limit, resp.StatusCode, errBody)
		}
		if _, ok := errBody["details"]; ok {
			t.Errorf("error body carries details: %v", errBody)
		}
	}
}

func TestRateLimiter(t *testing.T) {
	limiter := NewRateLimiter(2, time.Minute)
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return now }

	if !limiter.Allow("alice") || !limiter.Allow("alice") {
		t.Fatal("first two requests should pass")
	}
	if limiter.Allow("alice") {
		t.Error("third request inside the window should be refused")
	}
	if !limiter.Allow("bob") {
		t.Error("limits are per key")
	}

	now = now.Add(61 * time.Second)
	if !limiter.Allow("alice") {
		t.Error("window should have slid past the old requests")
	}
}
