package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/medscribe/scribe/internal/config"
	"github.com/medscribe/scribe/internal/domain/scribe"
	"github.com/medscribe/scribe/internal/platform/llm"
)

type memStore struct {
	mu      sync.Mutex
	items   []*scribe.NoteRecord
	pingErr error
}

func (m *memStore) Append(_ context.Context, r *scribe.NoteRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r.ID = "rec-" + strconv.Itoa(len(m.items)+1)
	cp := *r
	m.items = append(m.items, &cp)
	return nil
}

func (m *memStore) AppendMany(ctx context.Context, rs []*scribe.NoteRecord) error {
	for _, r := range rs {
		if err := m.Append(ctx, r); err != nil {
			return err
		}
	}
	return nil
}

func (m *memStore) ListAll(_ context.Context) ([]*scribe.NoteRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*scribe.NoteRecord, len(m.items))
	copy(out, m.items)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	return out, nil
}

func (m *memStore) Count(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.items)), nil
}

func (m *memStore) Ping(_ context.Context) error  { return m.pingErr }
func (m *memStore) Close(_ context.Context) error { return nil }

func testConfig() *config.Config {
	return &config.Config{
		Port:              "3001",
		Env:               "test",
		DatabaseURL:       "mongodb://localhost:27017",
		DatabaseName:      "medical_scribe",
		HistoryCollection: "history",
		CORSOrigins:       []string{"*"},
		RequestTimeout:    5 * time.Second,
		BodyLimit:         "1M",
	}
}

func newTestServer(t *testing.T, cfg *config.Config, store *memStore) http.Handler {
	t.Helper()
	gen, err := llm.New(context.Background(), llm.Options{Demo: true, DemoNote: scribe.DemoSOAPNote})
	if err != nil {
		t.Fatalf("llm.New: %v", err)
	}
	return newServer(cfg, zerolog.Nop(), store, config.StoreMongo, gen)
}

func serve(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestServer_Health(t *testing.T) {
	h := newTestServer(t, testConfig(), &memStore{})
	rec := serve(h, http.MethodGet, "/health", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["status"] != "ok" || body["mode"] != "demo" || body["store"] != "mongodb" {
		t.Errorf("unexpected health body %v", body)
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("expected X-Request-ID response header")
	}
}

func TestServer_HealthDB_Unhealthy(t *testing.T) {
	h := newTestServer(t, testConfig(), &memStore{pingErr: errors.New("no reachable servers")})
	rec := serve(h, http.MethodGet, "/health/db", "")

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "no reachable servers") {
		t.Error("ping error must not be exposed")
	}
}

func TestServer_DemoRoundTrip(t *testing.T) {
	store := &memStore{}
	if _, err := scribe.Seed(context.Background(), store, time.Now()); err != nil {
		t.Fatalf("seed: %v", err)
	}
	h := newTestServer(t, testConfig(), store)

	rec := serve(h, http.MethodPost, "/api/generate", `{"transcript":"sore throat"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var gen scribe.GenerateResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &gen); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if gen.SOAPNote != scribe.DemoSOAPNote || gen.Confidence != 98 {
		t.Errorf("unexpected response %+v", gen)
	}

	rec = serve(h, http.MethodGet, "/api/history", "")
	var items []scribe.NoteRecord
	if err := json.Unmarshal(rec.Body.Bytes(), &items); err != nil {
		t.Fatalf("decode history: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("expected 3 records, got %d", len(items))
	}
	if items[0].PatientID != scribe.DefaultPatientID || items[0].Transcript != "sore throat" {
		t.Errorf("expected the new note first, got %+v", items[0])
	}
}

func TestServer_MissingTranscript(t *testing.T) {
	h := newTestServer(t, testConfig(), &memStore{})
	rec := serve(h, http.MethodPost, "/api/generate", `{}`)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
	if got := strings.TrimSpace(rec.Body.String()); got != `{"error":"Transcript is required"}` {
		t.Errorf("unexpected body %s", got)
	}
}

func TestServer_NotFound(t *testing.T) {
	h := newTestServer(t, testConfig(), &memStore{})
	rec := serve(h, http.MethodGet, "/api/unknown", "")

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"error"`) {
		t.Errorf("expected error body, got %s", rec.Body.String())
	}
}

func TestServer_BodyLimit(t *testing.T) {
	cfg := testConfig()
	cfg.BodyLimit = "64"
	store := &memStore{}
	h := newTestServer(t, cfg, store)

	body := `{"transcript":"` + strings.Repeat("x", 256) + `"}`
	rec := serve(h, http.MethodPost, "/api/generate", body)
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("expected 413, got %d", rec.Code)
	}
	if len(store.items) != 0 {
		t.Error("oversized request must not be stored")
	}
}

func TestServer_CORSPreflight(t *testing.T) {
	h := newTestServer(t, testConfig(), &memStore{})
	req := httptest.NewRequest(http.MethodOptions, "/api/generate", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Errorf("expected 204, got %d", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("expected wildcard origin, got %q", got)
	}
}

func TestAssessmentLine(t *testing.T) {
	tests := []struct {
		name string
		note string
		want string
	}{
		{"bold markers", "**S:** cough\n**A:** Viral pharyngitis.\n**P:** rest", "Viral pharyngitis."},
		{"plain", "S: a\nA: Tension headache.", "Tension headache."},
		{"no assessment", "\nfree text only\nsecond", "free text only"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := assessmentLine(tt.note); got != tt.want {
				t.Errorf("assessmentLine() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Errorf("truncate(short) = %q", got)
	}
	if got := truncate("abcdefghijkl", 8); got != "abcde..." {
		t.Errorf("truncate(long) = %q", got)
	}
}

func TestPrintHistory(t *testing.T) {
	now := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)
	items := []*scribe.NoteRecord{
		{ID: "a1", PatientID: "PID-002", SOAPNote: "**A:** Controlled hypertension.", Timestamp: now},
		{ID: "a2", PatientID: "PID-001", SOAPNote: "**A:** Tension headache.", Timestamp: now.Add(-time.Hour)},
	}

	var buf bytes.Buffer
	printHistory(&buf, items, 1)
	out := buf.String()

	if !strings.Contains(out, "Controlled hypertension.") {
		t.Errorf("expected first note in output:\n%s", out)
	}
	if strings.Contains(out, "PID-001") {
		t.Errorf("limit should drop the second note:\n%s", out)
	}
	if !strings.Contains(out, "1 note(s)") {
		t.Errorf("expected count footer:\n%s", out)
	}
}

// stalledStore accepts a connection but never answers queries.
type stalledStore struct{ memStore }

func (s *stalledStore) Count(ctx context.Context) (int64, error) {
	<-ctx.Done()
	return 0, ctx.Err()
}

func TestSeedOnStart_Inserts(t *testing.T) {
	store := &memStore{}
	if got := seedOnStart(context.Background(), store, zerolog.Nop(), time.Second); got != 2 {
		t.Errorf("expected 2 inserted notes, got %d", got)
	}
	if got := seedOnStart(context.Background(), store, zerolog.Nop(), time.Second); got != 0 {
		t.Errorf("expected second seed to insert nothing, got %d", got)
	}
}

func TestSeedOnStart_StalledStoreTimesOut(t *testing.T) {
	done := make(chan int, 1)
	go func() {
		done <- seedOnStart(context.Background(), &stalledStore{}, zerolog.Nop(), 50*time.Millisecond)
	}()

	select {
	case got := <-done:
		if got != 0 {
			t.Errorf("expected nothing inserted, got %d", got)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("seeding a stalled store did not time out")
	}
}

func TestHistoryCmd_LimitFlag(t *testing.T) {
	envFile := ""
	cmd := historyCmd(&envFile)

	if err := cmd.ParseFlags([]string{"--limit", "3"}); err != nil {
		t.Fatalf("parse valid limit: %v", err)
	}
	if got := cmd.Flags().Lookup("limit").Value.String(); got != "3" {
		t.Errorf("expected limit 3, got %s", got)
	}

	if err := historyCmd(&envFile).ParseFlags([]string{"--limit", "ten"}); err == nil {
		t.Error("expected a non-numeric limit to be rejected")
	}
}
