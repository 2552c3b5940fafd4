package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/text/language"
	"orderdesk/internal/backend"
	"orderdesk/internal/backend/backendtest"
	"orderdesk/internal/dashboard"
	"orderdesk/internal/domain"
	"orderdesk/internal/storage"
	"orderdesk/internal/validation"
)

type failingStore struct {
	storage.Store
}

func (failingStore) Ping(context.Context) error { return errors.New("connection refused") }

type testEnv struct {
	router  *gin.Engine
	backend *backendtest.Server
	cookie  *http.Cookie
}

func newTestEnv(t *testing.T, store storage.Store) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	srv := backendtest.New(t)
	client, err := backend.New(srv.URL, 5*time.Second, nil)
	if err != nil {
		t.Fatalf("backend client: %v", err)
	}
	v := validation.New()
	opts := dashboard.Options{PageSize: 10, Locale: language.English}
	registry := dashboard.NewRegistry(time.Hour, func(id string) *dashboard.Workspace {
		return dashboard.NewWorkspace(id, store, client, v, opts)
	})
	router, err := buildRouter(Deps{Store: store, Registry: registry, FallbackMessage: "Try again later"})
	if err != nil {
		t.Fatalf("build router: %v", err)
	}
	return &testEnv{router: router, backend: srv}
}

func (e *testEnv) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	if e.cookie != nil {
		req.AddCookie(e.cookie)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	for _, c := range rec.Result().Cookies() {
		if c.Name == sessionCookie {
			e.cookie = c
		}
	}
	return rec
}

func (e *testEnv) signIn(t *testing.T, token, role string) {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/api/session", `{"token":"`+token+`","role":"`+role+`"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("sign in: expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode body %q: %v", rec.Body.String(), err)
	}
	return out
}

func TestHealthAndReadiness(t *testing.T) {
	env := newTestEnv(t, storage.NewMemory())

	if rec := env.do(t, http.MethodGet, "/healthz", ""); rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if rec := env.do(t, http.MethodGet, "/readyz", ""); rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	down := newTestEnv(t, failingStore{Store: storage.NewMemory()})
	if rec := down.do(t, http.MethodGet, "/readyz", ""); rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected status 503, got %d", rec.Code)
	}
}

func TestSessionCookieIsIssuedAndReused(t *testing.T) {
	env := newTestEnv(t, storage.NewMemory())

	rec := env.do(t, http.MethodGet, "/api/session", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if env.cookie == nil || env.cookie.Value == "" {
		t.Fatalf("expected %s cookie", sessionCookie)
	}
	first := env.cookie.Value
	if got := decodeBody(t, rec)["signedIn"]; got != false {
		t.Fatalf("expected signedIn=false, got %v", got)
	}

	env.signIn(t, "tok", "agent")
	body := decodeBody(t, env.do(t, http.MethodGet, "/api/session", ""))
	if body["signedIn"] != true || body["role"] != "agent" || body["loginRoute"] != "/agent/login" {
		t.Fatalf("unexpected session body: %v", body)
	}
	if env.cookie.Value != first {
		t.Fatalf("expected cookie to be reused")
	}

	rec = env.do(t, http.MethodDelete, "/api/session", "")
	if got := decodeBody(t, rec)["redirect"]; got != "/agent/login" {
		t.Fatalf("expected agent login redirect, got %v", got)
	}
}

func TestSignInRejectsUnknownRole(t *testing.T) {
	env := newTestEnv(t, storage.NewMemory())

	rec := env.do(t, http.MethodPost, "/api/session", `{"token":"tok","role":"admin"}`)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected status 422, got %d", rec.Code)
	}
	fields := decodeBody(t, rec)["fields"].(map[string]any)
	if _, ok := fields["role"]; !ok {
		t.Fatalf("expected role field error, got %v", fields)
	}
}

func TestListWithoutTokenRedirectsToLogin(t *testing.T) {
	env := newTestEnv(t, storage.NewMemory())

	rec := env.do(t, http.MethodGet, "/api/brands", "")

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", rec.Code)
	}
	if got := decodeBody(t, rec)["redirect"]; got != "/login" {
		t.Fatalf("expected /login redirect, got %v", got)
	}
	if n := len(env.backend.Calls()); n != 0 {
		t.Fatalf("expected no backend calls, got %d", n)
	}
}

func TestBackendUnauthorizedSignsOut(t *testing.T) {
	env := newTestEnv(t, storage.NewMemory())
	env.backend.Token = "fresh"
	env.signIn(t, "stale", "agent")

	rec := env.do(t, http.MethodGet, "/api/orders", "")

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", rec.Code)
	}
	if got := decodeBody(t, rec)["redirect"]; got != "/agent/login" {
		t.Fatalf("expected /agent/login redirect, got %v", got)
	}
	if got := decodeBody(t, env.do(t, http.MethodGet, "/api/session", ""))["signedIn"]; got != false {
		t.Fatalf("expected token to be cleared")
	}
}

func TestListBrandsPaginates(t *testing.T) {
	env := newTestEnv(t, storage.NewMemory())
	env.backend.Seed("brands",
		domain.Brand{ID: "1", Name: "Gamma"},
		domain.Brand{ID: "2", Name: "alpha"},
		domain.Brand{ID: "3", Name: "Beta"},
	)
	env.signIn(t, "tok", "manager")

	rec := env.do(t, http.MethodGet, "/api/brands?size=2&page=1&dir=asc", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var snap dashboard.Snapshot[domain.Brand]
	if err := json.Unmarshal(rec.Body.Bytes(), &snap); err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}
	if snap.TotalPages != 2 || snap.FilteredCount != 3 {
		t.Fatalf("unexpected paging: %+v", snap)
	}
	if snap.Page != 0 {
		t.Fatalf("a page size change must reset to page 0, got %d", snap.Page)
	}

	rec = env.do(t, http.MethodGet, "/api/brands?page=1", "")
	if err := json.Unmarshal(rec.Body.Bytes(), &snap); err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}
	if snap.Page != 1 || len(snap.Items) != 1 || snap.Items[0].Name != "Gamma" {
		t.Fatalf("unexpected second page: %+v", snap)
	}

	rec = env.do(t, http.MethodGet, "/api/brands?page=-1", "")
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected status 422, got %d", rec.Code)
	}
}

func TestWriteFlows(t *testing.T) {
	env := newTestEnv(t, storage.NewMemory())
	env.backend.Seed("brands", domain.Brand{ID: "1", Name: "Acme"})
	env.signIn(t, "tok", "manager")
	env.do(t, http.MethodGet, "/api/brands", "")

	rec := env.do(t, http.MethodPost, "/api/brands", `{"name":"   "}`)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected status 422, got %d", rec.Code)
	}

	rec = env.do(t, http.MethodPost, "/api/brands", `{"name":`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}

	env.backend.ResetCalls()
	rec = env.do(t, http.MethodPut, "/api/brands/1", `{"name":"Acme"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if got := decodeBody(t, rec)["written"]; got != false {
		t.Fatalf("expected written=false, got %v", got)
	}
	if n := env.backend.Count(http.MethodPut, "/brands"); n != 0 {
		t.Fatalf("expected no PUT, got %d", n)
	}

	rec = env.do(t, http.MethodPost, "/api/brands", `{"name":"Globex"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}

	env.backend.Fail(http.MethodDelete, "/brands/1", http.StatusInternalServerError, `{"userMessage":"Brand is in use"}`)
	rec = env.do(t, http.MethodDelete, "/api/brands/1", "")
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected status 502, got %d", rec.Code)
	}
	if got := decodeBody(t, rec)["error"]; got != "Brand is in use" {
		t.Fatalf("expected backend user message, got %v", got)
	}

	env.backend.Fail(http.MethodDelete, "/brands/1", http.StatusConflict, `{"message":"fk violation"}`)
	rec = env.do(t, http.MethodDelete, "/api/brands/1", "")
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected status 409, got %d", rec.Code)
	}
	if got := decodeBody(t, rec)["error"]; got != "Try again later" {
		t.Fatalf("expected fallback message, got %v", got)
	}
}

func TestConsentFlow(t *testing.T) {
	env := newTestEnv(t, storage.NewMemory())

	body := decodeBody(t, env.do(t, http.MethodGet, "/api/consent", ""))
	if body["showBanner"] != true {
		t.Fatalf("expected banner for a new session, got %v", body)
	}

	rec := env.do(t, http.MethodPost, "/api/consent", `{"status":"accepted","categories":{"analytics":true}}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	record := decodeBody(t, rec)["record"].(map[string]any)
	categories := record["categories"].(map[string]any)
	if categories["necessary"] != true || categories["analytics"] != true {
		t.Fatalf("unexpected categories: %v", categories)
	}

	body = decodeBody(t, env.do(t, http.MethodGet, "/api/consent", ""))
	if body["showBanner"] != false {
		t.Fatalf("expected banner to be hidden, got %v", body)
	}

	rec = env.do(t, http.MethodPost, "/api/consent", `{"status":"later"}`)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected status 422, got %d", rec.Code)
	}
}
