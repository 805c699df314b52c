// Package stubserver is a stand-in analysis server. It accepts uploads the
// way the real service does and serves the stored image back as the
// "annotated" result.
package stubserver

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/benamedd/phytoscan/internal/analysis"
)

const (
	DefaultSeverity       = "42 % infected"
	DefaultMaxUploadBytes = 10 << 20
)

// Options configure the stub.
type Options struct {
	// Severity is returned verbatim. Empty omits the field.
	Severity       string
	MaxUploadBytes int64
	Logger         *zap.SugaredLogger
}

type storedImage struct {
	data        []byte
	contentType string
}

// Server holds uploaded images in memory.
type Server struct {
	opts   Options
	router *mux.Router
	newID  func() string

	mu      sync.RWMutex
	results map[string]storedImage
}

// New builds a stub server.
func New(opts Options) *Server {
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = DefaultMaxUploadBytes
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop().Sugar()
	}
	s := &Server{
		opts:    opts,
		newID:   uuid.NewString,
		results: map[string]storedImage{},
	}
	router := mux.NewRouter()
	router.HandleFunc(analysis.UploadPath, s.handleUpload).Methods(http.MethodPost)
	router.HandleFunc("/results/{id:[a-zA-Z0-9-]+}.png", s.handleResult).Methods(http.MethodGet)
	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "not found"})
	})
	s.router = router
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Stored returns the number of uploads held in memory.
func (s *Server) Stored() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.results)
}

// ListenAndServe serves on addr until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.opts.Logger.Infow("stub analysis server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return nil
	}
}

type errorBody struct {
	Error string `json:"error"`
}

type uploadBody struct {
	Severity string `json:"severity,omitempty"`
	ImageURL string `json:"image_url"`
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if r.ContentLength > s.opts.MaxUploadBytes {
		writeJSON(w, http.StatusRequestEntityTooLarge, errorBody{Error: "file too large"})
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxUploadBytes)
	file, header, err := r.FormFile(analysis.FileField)
	if err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			writeJSON(w, http.StatusRequestEntityTooLarge, errorBody{Error: "file too large"})
		default:
			writeJSON(w, http.StatusBadRequest, errorBody{Error: "no file provided"})
		}
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "could not read upload"})
		return
	}

	id := s.newID()
	s.mu.Lock()
	s.results[id] = storedImage{data: data, contentType: http.DetectContentType(data)}
	s.mu.Unlock()

	s.opts.Logger.Infow("upload analysed",
		"id", id,
		"file", header.Filename,
		"bytes", len(data),
		"request_id", r.Header.Get("X-Request-ID"),
	)
	writeJSON(w, http.StatusOK, uploadBody{
		Severity: s.opts.Severity,
		ImageURL: "/results/" + id + ".png",
	})
}

func (s *Server) handleResult(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	s.mu.RLock()
	image, ok := s.results[id]
	s.mu.RUnlock()
	if !ok {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "unknown result"})
		return
	}
	w.Header().Set("Content-Type", image.contentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(image.data)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
