package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"theory-keys/analysis"
)

type stubAnalyzer struct {
	result *analysis.Result
	err    error
}

func (s stubAnalyzer) Analyze(ctx context.Context, query string) (*analysis.Result, error) {
	return s.result, s.err
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestKeyboardSVG(t *testing.T) {
	s := New(Options{})
	rec := do(t, s, http.MethodGet, "/keyboard.svg?notes=C,E&notes=G4", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/svg+xml", rec.Header().Get("Content-Type"))
	body := rec.Body.String()
	assert.True(t, strings.HasPrefix(body, "<svg"))
	assert.Equal(t, 6, strings.Count(body, `fill="#6366f1"`))
}

func TestKeyboardJSON(t *testing.T) {
	s := New(Options{})
	rec := do(t, s, http.MethodGet, "/keyboard?notes=C%23", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var keys []KeyJSON
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&keys))
	require.Len(t, keys, 24)
	assert.Equal(t, "C#", keys[1].Note)
	assert.True(t, keys[1].Active)
	assert.True(t, keys[13].Active)
	assert.False(t, keys[0].Active)
}

func TestAnalyze(t *testing.T) {
	s := New(Options{Analyzer: stubAnalyzer{result: &analysis.Result{
		Name: "A minor", Type: analysis.Scale, Notes: []string{"A", "B", "C", "D", "E", "F", "G"},
	}}})

	rec := do(t, s, http.MethodPost, "/analyze", `{"query":"a minor scale"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp AnalyzeResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "A minor", resp.Result.Name)
	active := 0
	for _, k := range resp.Keys {
		if k.Active {
			active++
			assert.False(t, k.Black)
		}
	}
	assert.Equal(t, 14, active)
	assert.Contains(t, resp.SVG, "<svg")
}

func TestAnalyzeErrors(t *testing.T) {
	s := New(Options{Analyzer: stubAnalyzer{err: analysis.ErrNotRunning}})
	assert.Equal(t, http.StatusBadRequest, do(t, s, http.MethodPost, "/analyze", `{"query":"  "}`).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, s, http.MethodPost, "/analyze", `nope`).Code)

	rec := do(t, s, http.MethodPost, "/analyze", `{"query":"c"}`)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), "not running")

	slow := New(Options{Analyzer: stubAnalyzer{err: analysis.ErrTimeout}})
	assert.Equal(t, http.StatusGatewayTimeout, do(t, slow, http.MethodPost, "/analyze", `{"query":"c"}`).Code)

	none := New(Options{})
	assert.Equal(t, http.StatusNotImplemented, do(t, none, http.MethodPost, "/analyze", `{"query":"c"}`).Code)
}

func TestMethodAndCORS(t *testing.T) {
	s := New(Options{AllowedOrigins: []string{"http://localhost:3000"}})
	assert.Equal(t, http.StatusMethodNotAllowed, do(t, s, http.MethodPost, "/keyboard.svg", "").Code)

	req := httptest.NewRequest(http.MethodGet, "/keyboard", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
}
