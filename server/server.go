// Package server exposes the keyboard over HTTP.
//
//	GET  /keyboard.svg?notes=C,E,G   SVG drawing
//	GET  /keyboard?notes=C,E,G       computed keys as JSON
//	POST /analyze {"query": "..."}   analysis result, keys and SVG
package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"theory-keys/analysis"
	"theory-keys/debug"
	"theory-keys/keyboard"
	"theory-keys/render"
)

type Server struct {
	renderer *render.Renderer
	analyzer analysis.Analyzer
	timeout  time.Duration
	handler  http.Handler
}

type Options struct {
	Style          render.Style
	Analyzer       analysis.Analyzer // nil disables /analyze
	AllowedOrigins []string
	Timeout        time.Duration // per-analysis deadline, default 60s
}

// KeyJSON is the wire form of a keyboard.Key
type KeyJSON struct {
	Note   string  `json:"note"`
	Octave int     `json:"octave"`
	Black  bool    `json:"black"`
	X      float64 `json:"x"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Active bool    `json:"active"`
}

type AnalyzeRequest struct {
	Query string `json:"query"`
}

type AnalyzeResponse struct {
	Result *analysis.Result `json:"result"`
	Keys   []KeyJSON        `json:"keys"`
	SVG    string           `json:"svg"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func New(opts Options) *Server {
	if opts.Timeout <= 0 {
		opts.Timeout = 60 * time.Second
	}
	s := &Server{
		renderer: render.New(opts.Style),
		analyzer: opts.Analyzer,
		timeout:  opts.Timeout,
	}

	router := mux.NewRouter().StrictSlash(true)
	router.HandleFunc("/keyboard.svg", s.handleSVG).Methods(http.MethodGet)
	router.HandleFunc("/keyboard", s.handleKeys).Methods(http.MethodGet)
	router.HandleFunc("/analyze", s.handleAnalyze).Methods(http.MethodPost)
	router.Use(logRequests)

	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	s.handler = cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
		AllowedHeaders: []string{"Content-Type"},
	}).Handler(router)

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// ListenAndServe serves until ctx is cancelled
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// notesParam accepts ?notes=C,E,G and ?notes=C&notes=E alike
func notesParam(r *http.Request) []string {
	var notes []string
	for _, v := range r.URL.Query()["notes"] {
		for _, n := range strings.Split(v, ",") {
			if n = strings.TrimSpace(n); n != "" {
				notes = append(notes, n)
			}
		}
	}
	return notes
}

func (s *Server) handleSVG(w http.ResponseWriter, r *http.Request) {
	keys := keyboard.Compute(notesParam(r))
	svg := render.NewSVG()
	s.renderer.Render(svg, keys)

	w.Header().Set("Content-Type", "image/svg+xml")
	svg.WriteTo(w)
}

func (s *Server) handleKeys(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, keysJSON(keyboard.Compute(notesParam(r))))
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if s.analyzer == nil {
		writeJSON(w, http.StatusNotImplemented, errorResponse{Error: "analysis is not configured"})
		return
	}

	var req AnalyzeRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<16)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body: " + err.Error()})
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "query is required"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.timeout)
	defer cancel()

	result, err := s.analyzer.Analyze(ctx, req.Query)
	if err != nil {
		debug.Log("server", "analyze %q: %v", req.Query, err)
		status := http.StatusBadGateway
		if errors.Is(err, analysis.ErrTimeout) {
			status = http.StatusGatewayTimeout
		}
		writeJSON(w, status, errorResponse{Error: err.Error()})
		return
	}

	keys := keyboard.Compute(result.Notes)
	writeJSON(w, http.StatusOK, AnalyzeResponse{
		Result: result,
		Keys:   keysJSON(keys),
		SVG:    render.RenderSVG(s.renderer, keys),
	})
}

func keysJSON(keys []keyboard.Key) []KeyJSON {
	out := make([]KeyJSON, len(keys))
	for i, k := range keys {
		out[i] = KeyJSON{
			Note:   string(k.Note),
			Octave: k.Octave,
			Black:  k.Black,
			X:      k.X,
			Width:  k.Width(),
			Height: k.Height(),
			Active: k.Active,
		}
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		debug.Log("http", "%s %s %s", r.Method, r.URL.RequestURI(), time.Since(start).Round(time.Microsecond))
	})
}
