package http

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/tracery"
	"github.com/aretw0/tracery/pkg/adapters/file"
	"github.com/aretw0/tracery/pkg/adapters/memory"
	"github.com/aretw0/tracery/pkg/grammar"
	"github.com/aretw0/tracery/pkg/observability"
	"github.com/aretw0/tracery/pkg/ports"
	"github.com/aretw0/tracery/pkg/session"
)

func newTestServer(t *testing.T, loader ports.GrammarLoader, opts ...Option) *httptest.Server {
	t.Helper()
	mgr := session.NewManager(loader, session.WithEngineOptions(tracery.WithMaxDepth(16)))
	h, err := NewHandler(mgr, opts...)
	require.NoError(t, err)
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return srv
}

func newStore() *memory.Store {
	return memory.NewFromGrammars(map[string]grammar.Grammar{
		"greeting": {
			"origin": grammar.Single("hello #name#"),
			"name":   grammar.Single("ada"),
			"loop":   grammar.Single("#loop#"),
		},
	})
}

func do(t *testing.T, method, url, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	require.NoError(t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestLoadSpec(t *testing.T) {
	doc, err := LoadSpec(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "1.0.0", doc.Info.Version)
	assert.NotNil(t, doc.Paths.Find("/flatten"))
	assert.NotNil(t, schema(doc, "Grammar"))
	assert.Nil(t, schema(doc, "Missing"))
}

func TestHealthAndInfo(t *testing.T) {
	srv := newTestServer(t, newStore())

	resp := do(t, "GET", srv.URL+"/health", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = do(t, "GET", srv.URL+"/info", "")
	var info map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&info))
	assert.Equal(t, "tracery-http", info["app"])
	assert.Equal(t, tracery.Version, info["version"])
	assert.Equal(t, "1.0.0", info["api_version"])

	resp = do(t, "GET", srv.URL+"/openapi.yaml", "")
	assert.Equal(t, "text/yaml", resp.Header.Get("Content-Type"))
}

func TestFlatten(t *testing.T) {
	srv := newTestServer(t, newStore())

	resp := do(t, "POST", srv.URL+"/flatten", `{"grammar":"greeting","count":2,"session":"s1"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out FlattenResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, "s1", out.Session)
	assert.Equal(t, []string{"hello ada", "hello ada"}, out.Results)
}

func TestFlatten_CustomTemplateAndAnonymousSession(t *testing.T) {
	srv := newTestServer(t, newStore())

	resp := do(t, "POST", srv.URL+"/flatten", `{"grammar":"greeting","template":"#name.capitalize#!"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out FlattenResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.NotEmpty(t, out.Session)
	assert.Equal(t, []string{"Ada!"}, out.Results)
}

func TestFlatten_Errors(t *testing.T) {
	srv := newTestServer(t, newStore(), WithMaxInputSize(32))

	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"malformed body", `{`, http.StatusBadRequest},
		{"missing grammar", `{"template":"x"}`, http.StatusBadRequest},
		{"unknown grammar", `{"grammar":"nope"}`, http.StatusNotFound},
		{"negative count", `{"grammar":"greeting","count":-1}`, http.StatusBadRequest},
		{"count above maximum", `{"grammar":"greeting","count":5000000}`, http.StatusBadRequest},
		{"huge count", `{"grammar":"greeting","count":4611686018427387904}`, http.StatusBadRequest},
		{"recursion", `{"grammar":"greeting","template":"#loop#"}`, http.StatusUnprocessableEntity},
		{"template too large", `{"grammar":"greeting","template":"` + strings.Repeat("a", 40) + `"}`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := do(t, "POST", srv.URL+"/flatten", tt.body)
			assert.Equal(t, tt.status, resp.StatusCode)
		})
	}
}

func TestGrammarCRUD(t *testing.T) {
	srv := newTestServer(t, newStore())

	resp := do(t, "GET", srv.URL+"/grammars", "")
	var names []string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&names))
	assert.Equal(t, []string{"greeting"}, names)

	resp = do(t, "PUT", srv.URL+"/grammars/weather", `{"origin":"it is #sky#","sky":["grey"]}`)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = do(t, "GET", srv.URL+"/grammars/weather", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var g grammar.Grammar
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&g))
	assert.Equal(t, []string{"grey"}, g["sky"].Variants())

	resp = do(t, "POST", srv.URL+"/flatten", `{"grammar":"weather"}`)
	var out FlattenResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, []string{"it is grey"}, out.Results)

	resp = do(t, "DELETE", srv.URL+"/grammars/weather", "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = do(t, "GET", srv.URL+"/grammars/weather", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	// Deleting twice is not an error.
	resp = do(t, "DELETE", srv.URL+"/grammars/weather", "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestPutGrammar_Rejected(t *testing.T) {
	srv := newTestServer(t, newStore())

	for _, body := range []string{`not json`, `{"origin":42}`, `{"origin":[]}`, `{"origin":[1,2]}`} {
		resp := do(t, "PUT", srv.URL+"/grammars/bad", body)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, body)
	}
}

func TestPutGrammar_ReloadsSessions(t *testing.T) {
	srv := newTestServer(t, newStore())

	body := `{"grammar":"greeting","session":"sticky"}`
	resp := do(t, "POST", srv.URL+"/flatten", body)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = do(t, "PUT", srv.URL+"/grammars/greeting", `{"origin":"bye"}`)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = do(t, "POST", srv.URL+"/flatten", body)
	var out FlattenResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, []string{"bye"}, out.Results)
}

// readOnlyLoader exposes only the loader half of a store.
type readOnlyLoader struct {
	ports.GrammarLoader
}

func TestReadOnlyStore(t *testing.T) {
	srv := newTestServer(t, readOnlyLoader{newStore()})

	resp := do(t, "PUT", srv.URL+"/grammars/x", `{"origin":"y"}`)
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)

	resp = do(t, "DELETE", srv.URL+"/grammars/greeting", "")
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)

	resp = do(t, "GET", srv.URL+"/events", "")
	assert.Equal(t, http.StatusNotImplemented, resp.StatusCode)
}

func TestMetricsEndpoint(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := observability.NewMetrics(reg)
	require.NoError(t, err)

	mgr := session.NewManager(newStore(), session.WithEngineOptions(tracery.WithLifecycleHooks(m.Hooks())))
	h, err := NewHandler(mgr, WithMetrics(reg))
	require.NoError(t, err)
	srv := httptest.NewServer(h)
	defer srv.Close()

	resp := do(t, "POST", srv.URL+"/flatten", `{"grammar":"greeting"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = do(t, "GET", srv.URL+"/metrics", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var found bool
	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		if scanner.Text() == "tracery_flatten_total 1" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestMetricsEndpoint_DisabledByDefault(t *testing.T) {
	srv := newTestServer(t, newStore())
	resp := do(t, "GET", srv.URL+"/metrics", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

// watchingStore emits preloaded change events.
type watchingStore struct {
	*memory.Store
	events chan string
}

func (w *watchingStore) Watch(ctx context.Context) (<-chan string, error) {
	return w.events, nil
}

func TestSubscribeEvents(t *testing.T) {
	store := &watchingStore{Store: newStore(), events: make(chan string, 1)}
	store.events <- "greeting"
	close(store.events)

	mgr := session.NewManager(store)
	h, err := NewHandler(mgr)
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/events", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/event-stream", w.Header().Get("Content-Type"))
	body := w.Body.String()
	assert.Contains(t, body, "event: ping")
	assert.Contains(t, body, "event: grammar\ndata: greeting\n\n")
}

func TestCORSPreflight(t *testing.T) {
	srv := newTestServer(t, newStore())
	resp := do(t, "OPTIONS", srv.URL+"/flatten", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestGrammar_InvalidNameIsBadRequest(t *testing.T) {
	srv := newTestServer(t, file.New(t.TempDir()))

	resp := do(t, "GET", srv.URL+"/grammars/.", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = do(t, "PUT", srv.URL+"/grammars/.", `{"origin":"x"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
