package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/sankey/pkg/cache"
	"github.com/matzehuels/sankey/pkg/observability"
	"github.com/matzehuels/sankey/pkg/observability/prom"
	"github.com/matzehuels/sankey/pkg/pipeline"
)

const flowsCSV = "count,from,to\n3,a,x\n1,a,y\n2,b,x\n"

const flowsYAML = `
columns: [count, from, to]
rows:
  - [3, a, x]
  - [1, a, y]
  - [2, b, x]
`

func newTestServer(t *testing.T, opts ...Option) *httptest.Server {
	t.Helper()
	fc, err := cache.NewFileCache(t.TempDir())
	require.NoError(t, err)
	logger := log.NewWithOptions(io.Discard, log.Options{})
	srv := httptest.NewServer(New(pipeline.NewRunner(fc, nil, logger), opts...).Handler())
	t.Cleanup(srv.Close)
	return srv
}

func post(t *testing.T, srv *httptest.Server, path, contentType, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(srv.URL+path, contentType, strings.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeError(t *testing.T, resp *http.Response) errorBody {
	t.Helper()
	var body errorBody
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])
	assert.NotEmpty(t, body["version"])

	_, err = uuid.Parse(resp.Header.Get(RequestIDHeader))
	assert.NoError(t, err, "response should carry a generated request ID")
}

func TestRequestIDPropagation(t *testing.T) {
	srv := newTestServer(t)
	id := uuid.NewString()

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/healthz", nil)
	require.NoError(t, err)
	req.Header.Set(RequestIDHeader, id)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, id, resp.Header.Get(RequestIDHeader))
}

func TestRenderSVG(t *testing.T) {
	srv := newTestServer(t)

	resp := post(t, srv, "/v1/render?format=svg&width=400&height=232", "text/csv", flowsCSV)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/svg+xml", resp.Header.Get("Content-Type"))
	assert.Equal(t, "miss", resp.Header.Get("X-Cache"))

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(body), "<svg"))
	assert.Contains(t, string(body), `width="400"`)

	again := post(t, srv, "/v1/render?format=svg&width=400&height=232", "text/csv", flowsCSV)
	require.Equal(t, http.StatusOK, again.StatusCode)
	assert.Equal(t, "hit", again.Header.Get("X-Cache"))
}

func TestRenderLayoutJSONFromYAML(t *testing.T) {
	srv := newTestServer(t)

	resp := post(t, srv, "/v1/render?format=json&input=yaml&order=label", "application/octet-stream", flowsYAML)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var doc struct {
		Order  string `json:"order"`
		Stages []struct {
			Nodes []struct {
				Label string `json:"label"`
			} `json:"nodes"`
		} `json:"stages"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&doc))
	assert.Equal(t, "label", doc.Order)
	require.Len(t, doc.Stages, 2)
	assert.Len(t, doc.Stages[1].Nodes, 2)
}

func TestRenderDOT(t *testing.T) {
	srv := newTestServer(t)

	resp := post(t, srv, "/v1/render?format=dot&viz_type=nodelink", "text/csv", flowsCSV)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "digraph")
}

func TestRenderErrors(t *testing.T) {
	tests := []struct {
		name   string
		query  string
		body   string
		status int
		code   string
	}{
		{"two formats", "?format=svg,png", flowsCSV, http.StatusBadRequest, "INVALID_INPUT"},
		{"unknown option", "?colour=red", flowsCSV, http.StatusBadRequest, "INVALID_INPUT"},
		{"unknown colormap", "?colormap=rainbow", flowsCSV, http.StatusBadRequest, "INVALID_COLORMAP"},
		{"alpha out of range", "?flow_alpha=2", flowsCSV, http.StatusBadRequest, "INVALID_INPUT"},
		{"nodelink json", "?format=json&viz_type=nodelink", flowsCSV, http.StatusUnsupportedMediaType, "UNSUPPORTED"},
		{"png too large", "?format=png&width=100000&height=100000&scale=4", flowsCSV, http.StatusBadRequest, "INVALID_INPUT"},
		{"nan width", "?width=NaN", flowsCSV, http.StatusBadRequest, "INVALID_INPUT"},
		{"empty body", "", "", http.StatusBadRequest, "EMPTY_INPUT"},
		{"bad weight", "", "count,from\nmany,a\n", http.StatusBadRequest, "INVALID_WEIGHT"},
		{"one column", "", "count\n1\n", http.StatusBadRequest, "INVALID_SHAPE"},
	}

	srv := newTestServer(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := post(t, srv, "/v1/render"+tt.query, "text/csv", tt.body)
			assert.Equal(t, tt.status, resp.StatusCode)
			body := decodeError(t, resp)
			assert.Equal(t, tt.code, body.Code)
			assert.NotEmpty(t, body.Error)
			assert.Equal(t, resp.Header.Get(RequestIDHeader), body.RequestID)
		})
	}
}

func TestBodyTooLarge(t *testing.T) {
	srv := newTestServer(t, WithMaxBodyBytes(8))

	resp := post(t, srv, "/v1/render", "text/csv", flowsCSV)
	assert.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)
}

func TestInspect(t *testing.T) {
	srv := newTestServer(t)

	resp := post(t, srv, "/v1/inspect", "text/csv", flowsCSV)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got inspection
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, 6.0, got.Total)
	assert.Equal(t, []string{"a", "x", "y", "b"}, got.Labels)
	require.Len(t, got.Stages, 2)
	assert.Equal(t, "from", got.Stages[0].Name)
	assert.Equal(t, []nodeReport{{"a", 4}, {"b", 2}}, got.Stages[0].Nodes)
	assert.Len(t, got.Flows, 3)
}

func TestMetrics(t *testing.T) {
	defer observability.Reset()
	reg := prometheus.NewRegistry()
	observability.SetHTTPHooks(prom.New(reg))
	srv := newTestServer(t, WithGatherer(reg))

	post(t, srv, "/v1/inspect", "text/csv", flowsCSV)

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `sankey_http_requests_total{code="200",method="POST",route="/v1/inspect"} 1`)
}

// routeRecorder records the routes reported by the HTTP hooks.
type routeRecorder struct {
	observability.NoopHTTPHooks
	mu     sync.Mutex
	routes []string
	errors int
}

func (h *routeRecorder) OnResponse(_ context.Context, method, route string, code int, _ time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.routes = append(h.routes, method+" "+route)
}

func (h *routeRecorder) OnError(context.Context, string, string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.errors++
}

func TestHooksUseRoutePatterns(t *testing.T) {
	defer observability.Reset()
	h := &routeRecorder{}
	observability.SetHTTPHooks(h)
	srv := newTestServer(t)

	post(t, srv, "/v1/render?format=svg", "text/csv", flowsCSV)
	post(t, srv, "/v1/render?format=gif", "text/csv", flowsCSV)
	resp, err := http.Get(srv.URL + "/nope")
	require.NoError(t, err)
	resp.Body.Close()

	h.mu.Lock()
	defer h.mu.Unlock()
	assert.Equal(t, []string{"POST /v1/render", "POST /v1/render", "GET unmatched"}, h.routes)
	assert.Equal(t, 1, h.errors)
}
