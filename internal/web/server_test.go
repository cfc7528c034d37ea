package web

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/JonMunkholm/petclinic-export/internal/config"
	"github.com/JonMunkholm/petclinic-export/internal/export"
)

const wantHeader = "First name,Last name,Address,City,Telephone,Pet,Type,Pet DoB"

// memCursor serves rows of the 8-column layout from memory.
type memCursor struct {
	rows   [][]any
	pos    int
	closed bool
}

func (c *memCursor) Columns() []string { return export.NewLayout(false).Names() }

func (c *memCursor) Values() ([]any, error) {
	if c.pos < 0 || c.pos >= len(c.rows) {
		return nil, errors.New("no current row")
	}
	return c.rows[c.pos], nil
}

func (c *memCursor) Next() bool {
	if c.closed || c.pos+1 >= len(c.rows) {
		return false
	}
	c.pos++
	return true
}

func (c *memCursor) Err() error { return nil }

func (c *memCursor) Close() error {
	c.closed = true
	return nil
}

type memStore struct {
	rows    [][]any
	err     error
	pingErr error

	mu      sync.Mutex
	queries int
}

func (s *memStore) Query(ctx context.Context) (export.Cursor, error) {
	return s.open(s.rows)
}

func (s *memStore) QueryPage(ctx context.Context, limit, offset int) (export.Cursor, error) {
	start := min(offset, len(s.rows))
	end := min(offset+limit, len(s.rows))
	return s.open(s.rows[start:end])
}

func (s *memStore) open(rows [][]any) (export.Cursor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queries++
	if s.err != nil {
		return nil, s.err
	}
	return &memCursor{rows: rows, pos: -1}, nil
}

func (s *memStore) Ping(ctx context.Context) error { return s.pingErr }

func pet(first, last, name, kind string) []any {
	return []any{first, last, "638 Cardinal Ave.", "Sun Prairie", "6085551749",
		name, kind, time.Date(2019, 3, 7, 0, 0, 0, 0, time.UTC)}
}

func demoStore() *memStore {
	return &memStore{rows: [][]any{
		pet("Jeff", "Black", "Lucky", "bird"),
		pet("Jean", "Coleman", "Samantha", "cat"),
		pet("Betty", "Davis", "Basil", "hamster"),
	}}
}

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{Host: "127.0.0.1", Port: 0, RequestTimeout: 5 * time.Second},
		Export: config.ExportConfig{PageSize: 1, MaxConcurrent: 2, MaxWaitTime: 50 * time.Millisecond},
	}
}

func newTestServer(t *testing.T, store *memStore, cfg *config.Config) *Server {
	t.Helper()
	exporter, err := export.NewExporter(
		export.NewSource(store, export.NewLayout(false)),
		export.Options{PageSize: cfg.Export.PageSize},
	)
	if err != nil {
		t.Fatalf("NewExporter: %v", err)
	}
	s := NewServer(exporter, store, cfg)
	t.Cleanup(func() {
		if s.rate != nil {
			s.rate.stop()
		}
	})
	return s
}

func get(s *Server, path string, header ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return resp
}

func TestExportRoutes(t *testing.T) {
	wantBody := strings.Join([]string{
		wantHeader,
		"Jeff,Black,638 Cardinal Ave.,Sun Prairie,6085551749,Lucky,bird,2019-03-07",
		"Jean,Coleman,638 Cardinal Ave.,Sun Prairie,6085551749,Samantha,cat,2019-03-07",
		"Betty,Davis,638 Cardinal Ave.,Sun Prairie,6085551749,Basil,hamster,2019-03-07",
	}, "\n") + "\n"

	tests := []struct {
		path     string
		filename string
		want     string
		queries  int
	}{
		{"/pets.csv", "pets-full.csv", wantBody, 1},
		{"/pets-paginated.csv", "pets-paginated.csv", wantBody, 4},
		{"/pets-stream.csv", "pets-stream.csv", wantBody, 1},
		{"/export/stream", "pets-stream.csv", wantBody, 1},
		{"/pets-broken.csv", "pets-broken.csv", wantHeader + "\n", 1},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			store := demoStore()
			rec := get(newTestServer(t, store, testConfig()), tt.path)

			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
			}
			if got := rec.Header().Get("Content-Type"); got != "text/csv; charset=utf-8" {
				t.Errorf("Content-Type = %q", got)
			}
			if got := rec.Header().Get("Content-Disposition"); !strings.Contains(got, tt.filename) {
				t.Errorf("Content-Disposition = %q, want filename %s", got, tt.filename)
			}
			if rec.Header().Get("X-Export-ID") == "" {
				t.Error("missing X-Export-ID")
			}
			if got := rec.Body.String(); got != tt.want {
				t.Errorf("body:\n%s\nwant:\n%s", got, tt.want)
			}
			if store.queries != tt.queries {
				t.Errorf("queries = %d, want %d", store.queries, tt.queries)
			}
		})
	}
}

func TestExportRoute_UnknownStrategy(t *testing.T) {
	store := demoStore()
	rec := get(newTestServer(t, store, testConfig()), "/export/bogus")

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if resp := decodeError(t, rec); resp.Code != "EXP002" {
		t.Errorf("code = %q, want EXP002", resp.Code)
	}
	if store.queries != 0 {
		t.Errorf("queries = %d, want 0", store.queries)
	}
}

func TestExportRoute_StoreError(t *testing.T) {
	store := demoStore()
	store.err = errors.New("dial tcp: connection refused")
	rec := get(newTestServer(t, store, testConfig()), "/pets.csv")

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	if got := rec.Header().Get("Content-Type"); got != "application/json" {
		t.Errorf("Content-Type = %q", got)
	}
	if resp := decodeError(t, rec); resp.Code != "DB004" {
		t.Errorf("code = %q, want DB004", resp.Code)
	}
}

func TestExportRoute_MappingError(t *testing.T) {
	store := demoStore()
	store.rows = append(store.rows, []any{"Too", "Short"})
	rec := get(newTestServer(t, store, testConfig()), "/pets-stream.csv")

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	if resp := decodeError(t, rec); resp.Code != "EXP001" {
		t.Errorf("code = %q, want EXP001", resp.Code)
	}
	if strings.Contains(rec.Body.String(), "First name") {
		t.Error("partial CSV leaked into error response")
	}
}

func TestExportRoute_Busy(t *testing.T) {
	s := newTestServer(t, demoStore(), testConfig())
	for range s.cfg.Export.MaxConcurrent {
		if err := s.limiter.Acquire(context.Background()); err != nil {
			t.Fatalf("Acquire: %v", err)
		}
		defer s.limiter.Release()
	}

	rec := get(s, "/pets.csv")
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Error("missing Retry-After")
	}
	if resp := decodeError(t, rec); resp.Code != "EXP004" {
		t.Errorf("code = %q, want EXP004", resp.Code)
	}
}

func TestExportRoute_APIKey(t *testing.T) {
	cfg := testConfig()
	cfg.Security = config.SecurityConfig{RequireAPIKey: true, APIKeys: []string{"s3cret"}}
	s := newTestServer(t, demoStore(), cfg)

	if rec := get(s, "/pets.csv"); rec.Code != http.StatusUnauthorized {
		t.Errorf("no key: status = %d, want 401", rec.Code)
	}
	if rec := get(s, "/pets.csv", "X-API-Key", "wrong"); rec.Code != http.StatusForbidden {
		t.Errorf("wrong key: status = %d, want 403", rec.Code)
	}
	if rec := get(s, "/pets.csv", "X-API-Key", "s3cret"); rec.Code != http.StatusOK {
		t.Errorf("valid key: status = %d, want 200", rec.Code)
	}
	if rec := get(s, "/healthz"); rec.Code != http.StatusOK {
		t.Errorf("healthz must stay open: status = %d", rec.Code)
	}
}

func TestRateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.Rate = config.RateLimitConfig{Enabled: true, RequestsPerMinute: 2}
	s := newTestServer(t, demoStore(), cfg)

	for i := range 2 {
		if rec := get(s, "/pets.csv"); rec.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d", i, rec.Code)
		}
	}
	rec := get(s, "/pets.csv")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", rec.Code)
	}
	if resp := decodeError(t, rec); resp.Code != "RATE001" {
		t.Errorf("code = %q, want RATE001", resp.Code)
	}
}

func TestRateLimiter_Window(t *testing.T) {
	rl := newRateLimiter(1, 20*time.Millisecond)
	defer rl.stop()

	if !rl.allow("a") {
		t.Fatal("first request denied")
	}
	if rl.allow("a") {
		t.Fatal("second request in window allowed")
	}
	if !rl.allow("b") {
		t.Fatal("other client denied")
	}
	time.Sleep(30 * time.Millisecond)
	if !rl.allow("a") {
		t.Fatal("request in new window denied")
	}
}

func TestHealth(t *testing.T) {
	tests := []struct {
		name       string
		pingErr    error
		wantStatus int
		wantBody   string
		wantDB     string
	}{
		{"ok", nil, http.StatusOK, "ok", "ok"},
		{"degraded", errors.New("i/o timeout"), http.StatusServiceUnavailable, "degraded", "DB006"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := demoStore()
			store.pingErr = tt.pingErr
			rec := get(newTestServer(t, store, testConfig()), "/healthz")

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			var resp HealthResponse
			if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if resp.Status != tt.wantBody || resp.Database != tt.wantDB {
				t.Errorf("health = %+v", resp)
			}
			if resp.Exports.MaxConcurrent != 2 {
				t.Errorf("exports = %+v", resp.Exports)
			}
		})
	}
}

func TestIndex(t *testing.T) {
	rec := get(newTestServer(t, demoStore(), testConfig()), "/")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{`href="/pets.csv"`, `href="/pets-paginated.csv"`, `href="/pets-stream.csv"`, `href="/pets-broken.csv"`, "<li>Pet DoB</li>"} {
		if !strings.Contains(body, want) {
			t.Errorf("index missing %s", want)
		}
	}
	if strings.Contains(body, "Export date") {
		t.Error("8-column layout lists Export date")
	}
	if got := rec.Header().Get("X-Frame-Options"); got != "DENY" {
		t.Errorf("X-Frame-Options = %q", got)
	}
}

func TestMetrics(t *testing.T) {
	s := newTestServer(t, demoStore(), testConfig())
	get(s, "/pets.csv")

	rec := get(s, "/metrics")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "petexport_exports_total") {
		t.Error("metrics missing petexport_exports_total")
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{&export.ConfigurationError{Field: "page_size", Value: 0, Reason: "must be at least 1"}, http.StatusBadRequest},
		{export.ErrTooManyExports, http.StatusServiceUnavailable},
		{context.DeadlineExceeded, http.StatusGatewayTimeout},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := statusFor(tt.err); got != tt.want {
			t.Errorf("statusFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestIndexPage_Escapes(t *testing.T) {
	links := []exportLink{{Href: "javascript:alert(1)", Strategy: "x", Summary: "<script>bad</script>"}}

	var buf strings.Builder
	if err := indexPage(export.NewLayout(true), links).Render(context.Background(), &buf); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	out := buf.String()
	if strings.Contains(out, "<script>") {
		t.Error("summary not escaped")
	}
	if strings.Contains(out, `href="javascript:`) {
		t.Error("unsafe href not sanitized")
	}
	if !strings.Contains(out, "<li>Export date</li>") {
		t.Error("timestamped layout missing Export date column")
	}
}

func TestServe_ShutdownWaitsForRunningExport(t *testing.T) {
	cfg := testConfig()
	cfg.Server.ShutdownTimeout = 5 * time.Second

	store := demoStore()
	exporter, err := export.NewExporter(
		export.NewSource(store, export.NewLayout(false)),
		export.Options{PageSize: 1, Throttle: export.FixedDelay(60 * time.Millisecond)},
	)
	if err != nil {
		t.Fatalf("NewExporter: %v", err)
	}
	s := NewServer(exporter, store, cfg)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	served := make(chan error, 1)
	go func() { served <- s.Serve(ctx, ln) }()

	type result struct {
		status int
		body   string
		err    error
	}
	fetched := make(chan result, 1)
	go func() {
		resp, err := http.Get("http://" + ln.Addr().String() + "/pets-stream.csv")
		if err != nil {
			fetched <- result{err: err}
			return
		}
		defer resp.Body.Close()
		b, err := io.ReadAll(resp.Body)
		fetched <- result{status: resp.StatusCode, body: string(b), err: err}
	}()

	deadline := time.Now().Add(2 * time.Second)
	for s.ExportStatus().Active == 0 {
		if time.Now().After(deadline) {
			t.Fatal("export never started")
		}
		time.Sleep(5 * time.Millisecond)
	}
	cancel()

	if err := <-served; err != nil {
		t.Fatalf("Serve() error = %v", err)
	}
	if active := s.ExportStatus().Active; active != 0 {
		t.Errorf("Serve returned with %d exports still running", active)
	}

	select {
	case r := <-fetched:
		if r.err != nil {
			t.Fatalf("request failed: %v", r.err)
		}
		if r.status != http.StatusOK {
			t.Fatalf("status = %d", r.status)
		}
		if lines := strings.Count(r.body, "\n"); lines != 4 {
			t.Errorf("body has %d lines, want header + 3:\n%s", lines, r.body)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("in-flight request never completed")
	}
}

func TestServe_ListenerError(t *testing.T) {
	s := newTestServer(t, demoStore(), testConfig())
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	ln.Close()

	if err := s.Serve(context.Background(), ln); err == nil {
		t.Fatal("Serve() on a closed listener returned nil")
	}
}
