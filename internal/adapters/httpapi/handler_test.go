package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"userdesk/internal/metrics"
	"userdesk/internal/query"
	"userdesk/internal/report"
	"userdesk/internal/service"
	"userdesk/internal/store"
	"userdesk/pkg/domain"
)

type captureReporter struct {
	mu   sync.Mutex
	errs []error
	tags []report.Tags
}

func (c *captureReporter) Capture(_ context.Context, err error, tags report.Tags) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.errs = append(c.errs, err)
	c.tags = append(c.tags, tags)
}

func (c *captureReporter) Flush(time.Duration) bool { return true }

type brokenUsers struct{}

var errDisk = errors.New("disk unplugged")

func (brokenUsers) List(context.Context, query.Query) (query.Page, error) { return query.Page{}, errDisk }
func (brokenUsers) Get(context.Context, string) (domain.User, error)      { return domain.User{}, errDisk }
func (brokenUsers) Create(context.Context, domain.User) (domain.User, error) {
	return domain.User{}, errDisk
}
func (brokenUsers) Update(context.Context, string, map[string]any) (domain.User, error) {
	return domain.User{}, errDisk
}
func (brokenUsers) Delete(context.Context, string) error { return errDisk }

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func newServer(t *testing.T, users Users, reporter report.Reporter) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(NewRouter(Options{
		Users:    users,
		Reporter: reporter,
		Logger:   quietLogger(),
		Metrics:  metrics.New(),
		Hostname: "test-host",
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newUserServer(t *testing.T) *httptest.Server {
	t.Helper()
	return newServer(t, service.New(store.NewMemory()), &captureReporter{})
}

func userJSON(name, email, role string, active bool) string {
	body := map[string]any{
		"name":           name,
		"username":       strings.ToLower(strings.ReplaceAll(name, " ", "")),
		"email":          email,
		"phone":          "+1 555-0100",
		"isActive":       active,
		"skills":         []string{"go", "sql"},
		"availableSlots": []string{"2025-04-01T09:00:00.000Z"},
		"address":        map[string]any{"street": "1 Loop", "city": "Cupertino", "zipcode": "95014"},
		"company":        map[string]any{"name": "Acme"},
		"role":           role,
	}
	raw, _ := json.Marshal(body)
	return string(raw)
}

func do(t *testing.T, method, url, body string, headers ...string) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var out T
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return out
}

func create(t *testing.T, base, body string) domain.User {
	t.Helper()
	resp := do(t, http.MethodPost, base+"/api/users", body)
	if resp.StatusCode != http.StatusCreated {
		raw, _ := io.ReadAll(resp.Body)
		t.Fatalf("create: status %d: %s", resp.StatusCode, raw)
	}
	return decode[domain.User](t, resp)
}

func TestEndToEndFilters(t *testing.T) {
	srv := newUserServer(t)
	a := create(t, srv.URL, userJSON("Alice Viewer", "alice@wonder.land", "Viewer", false))
	b := create(t, srv.URL, userJSON("Bob Admin", "bob@example.com", "Admin", true))

	cases := map[string]string{
		"role=Admin":    b.ID,
		"isActive=true": b.ID,
		"q=wonder":      a.ID,
	}
	for params, want := range cases {
		resp := do(t, http.MethodGet, srv.URL+"/api/users?"+params, "")
		users := decode[[]domain.User](t, resp)
		if len(users) != 1 || users[0].ID != want {
			t.Fatalf("%s: unexpected users %+v", params, users)
		}
		if got := resp.Header.Get(TotalCountHeader); got != "1" {
			t.Fatalf("%s: expected total 1, got %q", params, got)
		}
	}
}

func TestListPaginatesAndExposesTotal(t *testing.T) {
	srv := newUserServer(t)
	for _, name := range []string{"Carol", "Alice", "Bobby"} {
		create(t, srv.URL, userJSON(name+" Test", strings.ToLower(name)+"@example.com", "Editor", true))
	}
	resp := do(t, http.MethodGet, srv.URL+"/api/users?_sort=name&_order=asc&_page=2&_limit=2", "", "Origin", "http://ui.test")
	users := decode[[]domain.User](t, resp)
	if len(users) != 1 || users[0].Name != "Carol Test" {
		t.Fatalf("unexpected page %+v", users)
	}
	if resp.Header.Get(TotalCountHeader) != "3" {
		t.Fatalf("expected total 3, got %q", resp.Header.Get(TotalCountHeader))
	}
	if !strings.Contains(resp.Header.Get("Access-Control-Expose-Headers"), TotalCountHeader) {
		t.Fatalf("total header not exposed: %v", resp.Header)
	}
	if resp.Header.Get("Access-Control-Allow-Origin") == "" {
		t.Fatalf("expected CORS allow origin header")
	}

	resp = do(t, http.MethodGet, srv.URL+"/api/users?_page=9", "")
	if users := decode[[]domain.User](t, resp); len(users) != 0 {
		t.Fatalf("out of range page should be empty, got %d", len(users))
	}
	if resp.StatusCode != http.StatusOK || resp.Header.Get(TotalCountHeader) != "3" {
		t.Fatalf("unexpected out of range reply %d %q", resp.StatusCode, resp.Header.Get(TotalCountHeader))
	}

	resp = do(t, http.MethodGet, srv.URL+"/api/users?_page=3&_limit=9223372036854775807", "")
	if resp.StatusCode != http.StatusOK || resp.Header.Get(TotalCountHeader) != "3" {
		t.Fatalf("huge limit: unexpected reply %d %q", resp.StatusCode, resp.Header.Get(TotalCountHeader))
	}
	if users := decode[[]domain.User](t, resp); len(users) != 0 {
		t.Fatalf("huge limit: expected empty page, got %d", len(users))
	}
}

func TestListRejectsInvalidParameters(t *testing.T) {
	srv := newUserServer(t)
	for _, params := range []string{
		"_page=0", "_page=two", "_limit=-1", "_order=sideways",
		"_sort=address", "role=Root", "isActive=yes",
	} {
		resp := do(t, http.MethodGet, srv.URL+"/api/users?"+params, "")
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", params, resp.StatusCode)
		}
		body := decode[ErrorResponse](t, resp)
		if body.Message == "" {
			t.Fatalf("%s: expected message", params)
		}
	}
}

func TestPreflightAllowsPatch(t *testing.T) {
	srv := newUserServer(t)
	resp := do(t, http.MethodOptions, srv.URL+"/api/users/abc", "",
		"Origin", "http://ui.test",
		"Access-Control-Request-Method", http.MethodPatch)
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		t.Fatalf("unexpected preflight status %d", resp.StatusCode)
	}
	if !strings.Contains(resp.Header.Get("Access-Control-Allow-Methods"), http.MethodPatch) {
		t.Fatalf("PATCH not allowed in preflight: %v", resp.Header)
	}
}

func TestCreateValidation(t *testing.T) {
	srv := newUserServer(t)
	resp := do(t, http.MethodPost, srv.URL+"/api/users", `{"name":"Al","role":"Root"}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	body := decode[struct {
		Message string `json:"message"`
		Details []struct {
			Field string `json:"field"`
		} `json:"details"`
	}](t, resp)
	if !strings.Contains(body.Message, `"name" length must be at least 3`) || len(body.Details) < 2 {
		t.Fatalf("unexpected validation body %+v", body)
	}

	for _, raw := range []string{`{"name":`, ``, `{} {}`} {
		resp = do(t, http.MethodPost, srv.URL+"/api/users", raw)
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("%q: expected 400, got %d", raw, resp.StatusCode)
		}
	}
}

func TestGetUpdateDeleteLifecycle(t *testing.T) {
	srv := newUserServer(t)
	u := create(t, srv.URL, userJSON("Dora Explorer", "dora@example.com", "Viewer", true))

	resp := do(t, http.MethodGet, srv.URL+"/api/users/"+u.ID, "")
	if got := decode[domain.User](t, resp); got.ID != u.ID || got.Email != "dora@example.com" {
		t.Fatalf("unexpected user %+v", got)
	}

	resp = do(t, http.MethodPatch, srv.URL+"/api/users/"+u.ID, `{"address":{"city":"Lima"},"skills":["maps"],"isActive":"false"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("patch status %d", resp.StatusCode)
	}
	patched := decode[domain.User](t, resp)
	if patched.Address.City != "Lima" || patched.Address.Street != "1 Loop" {
		t.Fatalf("unexpected merged address %+v", patched.Address)
	}
	if len(patched.Skills) != 1 || patched.Skills[0] != "maps" || patched.IsActive {
		t.Fatalf("unexpected merge %+v", patched)
	}

	resp = do(t, http.MethodPatch, srv.URL+"/api/users/"+u.ID, `{}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("empty patch: expected 400, got %d", resp.StatusCode)
	}

	resp = do(t, http.MethodDelete, srv.URL+"/api/users/"+u.ID, "")
	if got := decode[map[string]string](t, resp); got["message"] != "Deleted" {
		t.Fatalf("unexpected delete reply %v", got)
	}

	for _, method := range []string{http.MethodGet, http.MethodDelete} {
		resp = do(t, method, srv.URL+"/api/users/"+u.ID, "")
		if resp.StatusCode != http.StatusNotFound {
			t.Fatalf("%s after delete: expected 404, got %d", method, resp.StatusCode)
		}
		if got := decode[ErrorResponse](t, resp); got.Message != "User not found" {
			t.Fatalf("unexpected not found body %+v", got)
		}
	}
	resp = do(t, http.MethodPatch, srv.URL+"/api/users/"+u.ID, `{"name":"Someone"}`)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("patch missing: expected 404, got %d", resp.StatusCode)
	}
}

func TestUnexpectedErrorsAreReportedNotLeaked(t *testing.T) {
	reporter := &captureReporter{}
	srv := newServer(t, brokenUsers{}, reporter)
	resp := do(t, http.MethodGet, srv.URL+"/api/users", "")
	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", resp.StatusCode)
	}
	raw, _ := io.ReadAll(resp.Body)
	if bytes.Contains(raw, []byte("disk")) || !bytes.Contains(raw, []byte("Internal server error")) {
		t.Fatalf("unexpected body %s", raw)
	}
	reporter.mu.Lock()
	defer reporter.mu.Unlock()
	if len(reporter.errs) != 1 || !errors.Is(reporter.errs[0], errDisk) {
		t.Fatalf("expected reported disk error, got %v", reporter.errs)
	}
	if reporter.tags[0]["operation"] != "list" || reporter.tags[0]["request_id"] == "" {
		t.Fatalf("unexpected tags %v", reporter.tags[0])
	}
}

func TestAuxiliaryRoutes(t *testing.T) {
	srv := newUserServer(t)
	resp := do(t, http.MethodGet, srv.URL+"/", "")
	raw, _ := io.ReadAll(resp.Body)
	if string(raw) != Banner {
		t.Fatalf("unexpected banner %q", raw)
	}
	resp = do(t, http.MethodGet, srv.URL+"/healthz", "")
	if got := decode[map[string]string](t, resp); got["status"] != "up" || got["host"] != "test-host" {
		t.Fatalf("unexpected health %v", got)
	}
	do(t, http.MethodGet, srv.URL+"/api/users", "")
	resp = do(t, http.MethodGet, srv.URL+"/metrics", "")
	raw, _ = io.ReadAll(resp.Body)
	if !bytes.Contains(raw, []byte(`userdesk_http_requests_total{code="200",method="GET",route="/api/users`)) {
		t.Fatalf("expected request counter in metrics:\n%s", raw)
	}
	resp = do(t, http.MethodGet, srv.URL+"/nowhere", "")
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}
