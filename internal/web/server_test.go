package web

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/csvqc/csvqc/internal/config"
	"github.com/csvqc/csvqc/internal/profile"
	"github.com/csvqc/csvqc/internal/store"
)

// stubStore is an in-memory Store for handler tests.
type stubStore struct {
	records   []store.Record
	insertErr error
	listErr   error
}

func (s *stubStore) InsertReport(_ context.Context, filename, savedTo string, rep *profile.Report) (*store.Record, error) {
	if s.insertErr != nil {
		return nil, s.insertErr
	}
	rec := store.Record{
		ID:          uuid.New(),
		Filename:    filename,
		SavedTo:     savedTo,
		Status:      store.StatusCompleted,
		RowCount:    rep.RowCount,
		ColumnCount: rep.ColumnCount,
		Summary:     rep.Summary,
		Report:      rep,
		CreatedAt:   time.Now().UTC(),
	}
	s.records = append(s.records, rec)
	return &rec, nil
}

func (s *stubStore) InsertFailure(_ context.Context, filename, savedTo, readErr string) (*store.Record, error) {
	if s.insertErr != nil {
		return nil, s.insertErr
	}
	rec := store.Record{
		ID:        uuid.New(),
		Filename:  filename,
		SavedTo:   savedTo,
		Status:    store.StatusReadError,
		ReadError: readErr,
		CreatedAt: time.Now().UTC(),
	}
	s.records = append(s.records, rec)
	return &rec, nil
}

func (s *stubStore) ListRecent(_ context.Context, limit int) ([]store.Record, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	if len(s.records) > limit {
		return s.records[:limit], nil
	}
	return s.records, nil
}

func (s *stubStore) GetByID(_ context.Context, id uuid.UUID) (*store.Record, error) {
	for i := range s.records {
		if s.records[i].ID == id {
			return &s.records[i], nil
		}
	}
	return nil, store.ErrNotFound
}

func testServer(t *testing.T, st Store) *Server {
	t.Helper()

	cfg := &config.Config{
		Server: config.ServerConfig{
			Port:           8080,
			RequestTimeout: 10 * time.Second,
		},
		Upload: config.UploadConfig{
			MaxFileSize: 1 << 20,
			Dir:         t.TempDir(),
			Timeout:     10 * time.Second,
		},
		Rate: config.RateLimitConfig{Enabled: false},
	}

	engCfg := profile.DefaultConfig()
	engCfg.AsOf = time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	return NewServer(st, profile.New(engCfg), cfg, nil)
}

// multipartBody builds a multipart form with a single file field.
func multipartBody(t *testing.T, fieldName, filename, content string) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(fieldName, filename)
	if err != nil {
		t.Fatalf("CreateFormFile: %v", err)
	}
	if _, err := fw.Write([]byte(content)); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	mw.Close()
	return &buf, mw.FormDataContentType()
}

func TestHandleUpload_Success(t *testing.T) {
	st := &stubStore{}
	srv := testServer(t, st)

	csv := "email,age\nalice@example.com,30\nnot-an-email,17\n"
	body, contentType := multipartBody(t, "file", "customers.csv", csv)

	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusOK, rec.Body.String())
	}

	var resp UploadResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Report == nil {
		t.Fatal("response should include the report")
	}
	if resp.Report.RowCount != 2 {
		t.Errorf("RowCount = %d, want 2", resp.Report.RowCount)
	}
	if got := resp.Report.Formats["email_invalid"].Count; got != 1 {
		t.Errorf("email_invalid = %d, want 1", got)
	}
	if got := resp.Report.Formats["unrealistic_ages"].Count; got != 1 {
		t.Errorf("unrealistic_ages = %d, want 1", got)
	}
	if resp.ReadError != "" {
		t.Errorf("ReadError = %q, want empty", resp.ReadError)
	}

	if len(st.records) != 1 {
		t.Fatalf("stored records = %d, want 1", len(st.records))
	}
	if st.records[0].Status != store.StatusCompleted {
		t.Errorf("stored status = %q, want %q", st.records[0].Status, store.StatusCompleted)
	}
}

func TestHandleUpload_ParseErrorDegrades(t *testing.T) {
	st := &stubStore{}
	srv := testServer(t, st)

	// Ragged rows make the CSV unreadable but the upload still succeeds.
	csv := "a,b\n1,2,3\n"
	body, contentType := multipartBody(t, "file", "broken.csv", csv)

	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusOK, rec.Body.String())
	}

	var resp UploadResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.ReadError == "" {
		t.Error("ReadError should be set")
	}
	if resp.Report != nil {
		t.Error("degraded response should not include a report")
	}

	if len(st.records) != 1 {
		t.Fatalf("stored records = %d, want 1", len(st.records))
	}
	if st.records[0].Status != store.StatusReadError {
		t.Errorf("stored status = %q, want %q", st.records[0].Status, store.StatusReadError)
	}
}

func TestHandleUpload_NoFile(t *testing.T) {
	srv := testServer(t, &stubStore{})

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	mw.WriteField("other", "value")
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}

	var resp ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Code != codeNoFile {
		t.Errorf("code = %q, want %q", resp.Code, codeNoFile)
	}
}

func TestHandleUpload_BadExtension(t *testing.T) {
	srv := testServer(t, &stubStore{})

	body, contentType := multipartBody(t, "file", "data.xlsx", "not,a,csv")
	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}

	var resp ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Code != codeBadExtension {
		t.Errorf("code = %q, want %q", resp.Code, codeBadExtension)
	}
}

func TestHandleGetReport(t *testing.T) {
	st := &stubStore{}
	srv := testServer(t, st)

	rep := profile.New(profile.DefaultConfig()).Profile(context.Background(), mustTable(t, "a\n1\n"))
	rec, err := st.InsertReport(context.Background(), "f.csv", "uploads/f.csv", rep)
	if err != nil {
		t.Fatalf("InsertReport: %v", err)
	}

	// Found
	req := httptest.NewRequest(http.MethodGet, "/api/report/"+rec.ID.String(), nil)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	var got store.Record
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got.ID != rec.ID {
		t.Errorf("ID = %s, want %s", got.ID, rec.ID)
	}
	if got.Report == nil {
		t.Error("response should include the report")
	}

	// Unknown ID
	req = httptest.NewRequest(http.MethodGet, "/api/report/"+uuid.NewString(), nil)
	w = httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNotFound)
	}

	// Malformed ID
	req = httptest.NewRequest(http.MethodGet, "/api/report/not-a-uuid", nil)
	w = httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestHandleAPIHistory(t *testing.T) {
	st := &stubStore{}
	srv := testServer(t, st)

	// Empty history returns an array, not null
	req := httptest.NewRequest(http.MethodGet, "/api/history", nil)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if body := bytes.TrimSpace(w.Body.Bytes()); string(body) != "[]" {
		t.Errorf("empty history body = %s, want []", body)
	}

	rep := profile.New(profile.DefaultConfig()).Profile(context.Background(), mustTable(t, "a\n1\n"))
	if _, err := st.InsertReport(context.Background(), "f.csv", "uploads/f.csv", rep); err != nil {
		t.Fatalf("InsertReport: %v", err)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/history", nil)
	w = httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	var records []store.Record
	if err := json.Unmarshal(w.Body.Bytes(), &records); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(records) != 1 {
		t.Errorf("records = %d, want 1", len(records))
	}
}

func TestHandleHistoryPage(t *testing.T) {
	st := &stubStore{}
	srv := testServer(t, st)

	rep := profile.New(profile.DefaultConfig()).Profile(context.Background(), mustTable(t, "a\n1\n"))
	if _, err := st.InsertReport(context.Background(), "orders.csv", "uploads/orders.csv", rep); err != nil {
		t.Fatalf("InsertReport: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/history", nil)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if ct := w.Header().Get("Content-Type"); ct != "text/html; charset=utf-8" {
		t.Errorf("Content-Type = %q", ct)
	}
	if !bytes.Contains(w.Body.Bytes(), []byte("orders.csv")) {
		t.Error("history page should list the uploaded file")
	}
}

func TestHandleHealth(t *testing.T) {
	srv := testServer(t, &stubStore{})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var resp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp["status"] != "ok" {
		t.Errorf("status = %q, want ok", resp["status"])
	}
}

func TestSecurityHeaders(t *testing.T) {
	srv := testServer(t, &stubStore{})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	if got := w.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q, want nosniff", got)
	}
	if got := w.Header().Get("X-Frame-Options"); got != "DENY" {
		t.Errorf("X-Frame-Options = %q, want DENY", got)
	}
}

func TestRateLimiter(t *testing.T) {
	rl := newRateLimiter(2, time.Minute)

	if !rl.allow("1.2.3.4") {
		t.Error("first request should be allowed")
	}
	if !rl.allow("1.2.3.4") {
		t.Error("second request should be allowed")
	}
	if rl.allow("1.2.3.4") {
		t.Error("third request should be rejected")
	}
	if !rl.allow("5.6.7.8") {
		t.Error("different IP should be allowed")
	}
}

func TestAllowedFile(t *testing.T) {
	tests := []struct {
		filename string
		want     bool
	}{
		{"data.csv", true},
		{"DATA.CSV", true},
		{"data.xlsx", false},
		{"data", false},
		{"data.csv.exe", false},
	}

	for _, tt := range tests {
		if got := allowedFile(tt.filename); got != tt.want {
			t.Errorf("allowedFile(%q) = %v, want %v", tt.filename, got, tt.want)
		}
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"orders.csv", "orders.csv"},
		{"../../etc/passwd", "passwd"},
		{"my file (1).csv", "my_file__1_.csv"},
		{"..\\..\\evil.csv", "evil.csv"},
		{"", "upload.csv"},
	}

	for _, tt := range tests {
		if got := sanitizeFilename(tt.in); got != tt.want {
			t.Errorf("sanitizeFilename(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSanitizeErrorMessage(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"report not found", "report not found"},
		{"connect failed: postgres://user:pw@host/db", "internal error"},
		{"open /var/data/secret: permission denied", "internal error"},
	}

	for _, tt := range tests {
		if got := sanitizeErrorMessage(tt.in); got != tt.want {
			t.Errorf("sanitizeErrorMessage(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func mustTable(t *testing.T, csv string) *profile.Table {
	t.Helper()
	table, err := profile.LoadTable([]byte(csv))
	if err != nil {
		t.Fatalf("LoadTable: %v", err)
	}
	return table
}
