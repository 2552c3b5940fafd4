// Package backendtest provides an in-memory REST backend for tests.
package backendtest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
)

type Call struct {
	Method string
	Path   string
	Query  string
	Body   string
}

type failure struct {
	status int
	body   string
}

// Server serves /{resource} and /{resource}/{id} from memory.
type Server struct {
	*httptest.Server

	// Token, when set, must match the bearer token of every request.
	Token string

	mu     sync.Mutex
	data   map[string][]map[string]any
	nextID int
	calls  []Call
	fail   map[string]failure
}

func New(t testing.TB) *Server {
	t.Helper()
	s := &Server{
		data:   map[string][]map[string]any{},
		nextID: 1000,
		fail:   map[string]failure{},
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.serve))
	t.Cleanup(s.Close)
	return s
}

// Seed appends items to resource. Items are stored as their JSON form.
func (s *Server) Seed(resource string, items ...any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, item := range items {
		s.data[resource] = append(s.data[resource], toMap(item))
	}
}

// Items returns a copy of the stored items of resource.
func (s *Server) Items(resource string) []map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]map[string]any, len(s.data[resource]))
	copy(out, s.data[resource])
	return out
}

// Fail makes the next request for method and path answer with status and body.
func (s *Server) Fail(method, path string, status int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fail[method+" "+path] = failure{status: status, body: body}
}

func (s *Server) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Call, len(s.calls))
	copy(out, s.calls)
	return out
}

// Count returns how many requests used method on a path starting with prefix.
func (s *Server) Count(method, prefix string) int {
	n := 0
	for _, c := range s.Calls() {
		if c.Method == method && strings.HasPrefix(c.Path, prefix) {
			n++
		}
	}
	return n
}

func (s *Server) ResetCalls() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = nil
}

func (s *Server) serve(w http.ResponseWriter, r *http.Request) {
	var body bytes.Buffer
	_, _ = body.ReadFrom(r.Body)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, Call{Method: r.Method, Path: r.URL.Path, Query: r.URL.RawQuery, Body: body.String()})

	if f, ok := s.fail[r.Method+" "+r.URL.Path]; ok {
		delete(s.fail, r.Method+" "+r.URL.Path)
		writeRaw(w, f.status, f.body)
		return
	}
	if s.Token != "" && r.Header.Get("Authorization") != "Bearer "+s.Token {
		writeRaw(w, http.StatusUnauthorized, `{"message":"invalid token"}`)
		return
	}

	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	resource := parts[0]
	switch {
	case len(parts) == 1 && r.Method == http.MethodGet:
		s.list(w, r, resource)
	case len(parts) == 1 && r.Method == http.MethodPost:
		item := decode(body.Bytes())
		s.nextID++
		item["id"] = json.Number(strconv.Itoa(s.nextID))
		s.data[resource] = append(s.data[resource], item)
		writeJSON(w, http.StatusCreated, item)
	case len(parts) == 2 && r.Method == http.MethodPut:
		i := s.find(resource, parts[1])
		if i < 0 {
			writeRaw(w, http.StatusNotFound, `{"userMessage":"Item not found"}`)
			return
		}
		for k, v := range decode(body.Bytes()) {
			if k != "id" {
				s.data[resource][i][k] = v
			}
		}
		writeJSON(w, http.StatusOK, s.data[resource][i])
	case len(parts) == 2 && r.Method == http.MethodDelete:
		i := s.find(resource, parts[1])
		if i < 0 {
			writeRaw(w, http.StatusNotFound, `{"userMessage":"Item not found"}`)
			return
		}
		s.data[resource] = append(s.data[resource][:i], s.data[resource][i+1:]...)
		w.WriteHeader(http.StatusNoContent)
	default:
		writeRaw(w, http.StatusMethodNotAllowed, `{"message":"unsupported"}`)
	}
}

func (s *Server) list(w http.ResponseWriter, r *http.Request, resource string) {
	q := r.URL.Query()
	matched := []map[string]any{}
	for _, item := range s.data[resource] {
		if matches(item, q) {
			matched = append(matched, item)
		}
	}

	page, _ := strconv.Atoi(q.Get("page"))
	size, _ := strconv.Atoi(q.Get("size"))
	if size <= 0 {
		size = 20
	}
	totalPages := (len(matched) + size - 1) / size
	start := min(page*size, len(matched))
	end := min(start+size, len(matched))

	writeJSON(w, http.StatusOK, map[string]any{
		"content":       matched[start:end],
		"totalPages":    totalPages,
		"totalElements": len(matched),
	})
}

func matches(item map[string]any, q map[string][]string) bool {
	for k, vs := range q {
		switch k {
		case "page", "size", "sortBy", "sortDirection":
			continue
		}
		if len(vs) == 0 || vs[0] == "" {
			continue
		}
		if fmt.Sprint(item[k]) != vs[0] {
			return false
		}
	}
	return true
}

func (s *Server) find(resource, id string) int {
	for i, item := range s.data[resource] {
		if fmt.Sprint(item["id"]) == id {
			return i
		}
	}
	return -1
}

func toMap(item any) map[string]any {
	raw, err := json.Marshal(item)
	if err != nil {
		panic(err)
	}
	return decode(raw)
}

func decode(raw []byte) map[string]any {
	out := map[string]any{}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	_ = dec.Decode(&out)
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeRaw(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}
