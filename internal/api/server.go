package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/JakeFAU/launch-table-crawler/internal/config"
	"github.com/JakeFAU/launch-table-crawler/internal/crawler"
	"github.com/JakeFAU/launch-table-crawler/internal/dataset"
	"github.com/JakeFAU/launch-table-crawler/internal/hash/sha256"
	"github.com/JakeFAU/launch-table-crawler/internal/metrics"
	"github.com/JakeFAU/launch-table-crawler/internal/storage"
)

const requestTimeout = 30 * time.Second

// DatasetInfo describes one dataset the crawler produces.
type DatasetInfo struct {
	File        string `json:"file"`
	Kind        string `json:"kind"`
	Source      string `json:"source"`
	Description string `json:"description,omitempty"`
}

// Server wires HTTP handlers to the dataset store.
type Server struct {
	router   chi.Router
	store    storage.BlobStore
	datasets map[string]DatasetInfo
	files    []string
	hasher   crawler.Hasher
	logger   *zap.Logger
}

// NewServer constructs a Server with middleware and routes. Only files
// named by a target or composite output are served.
func NewServer(store storage.BlobStore, cfg config.Config, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		store:    store,
		datasets: datasetIndex(cfg),
		hasher:   sha256.New(),
		logger:   logger.Named("api"),
	}
	for file := range s.datasets {
		s.files = append(s.files, file)
	}
	sort.Strings(s.files)
	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware(s.logger))
	r.Use(recoverMiddleware(s.logger))
	r.Use(metricsMiddleware)
	r.Use(timeoutMiddleware(requestTimeout))

	r.Get("/healthz", s.healthz)
	r.Get("/readyz", s.readyz)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/", s.listDatasets)
		r.Get("/{file}", s.getDataset)
	})

	s.router = r
	return s
}

// Handler returns the Router for use with http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// readyz reports ready once the store answers a read of the first
// configured dataset. A missing dataset still counts as an answer.
func (s *Server) readyz(w http.ResponseWriter, r *http.Request) {
	if len(s.files) > 0 {
		_, err := s.readDataset(r.Context(), s.files[0])
		if err != nil && !errors.Is(err, storage.ErrNotFound) {
			s.logger.Warn("store not ready", zap.Error(err))
			s.writeError(w, http.StatusServiceUnavailable, "store unavailable")
			return
		}
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (s *Server) listDatasets(w http.ResponseWriter, _ *http.Request) {
	list := make([]DatasetInfo, 0, len(s.files))
	for _, file := range s.files {
		list = append(list, s.datasets[file])
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"datasets": list})
}

func (s *Server) getDataset(w http.ResponseWriter, r *http.Request) {
	file := chi.URLParam(r, "file")
	if _, ok := s.datasets[file]; !ok {
		s.writeError(w, http.StatusNotFound, "dataset not found")
		return
	}
	body, err := s.readDataset(r.Context(), file)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		s.writeError(w, http.StatusNotFound, "dataset not found")
		return
	case err != nil:
		s.logger.Error("read dataset failed", zap.String("file", file), zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "failed to read dataset")
		return
	}

	digest, err := s.hasher.Hash(body)
	if err != nil {
		s.logger.Error("hash dataset failed", zap.String("file", file), zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "failed to read dataset")
		return
	}
	w.Header().Set("Content-Type", dataset.ContentType)
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("ETag", `"`+digest+`"`)
	http.ServeContent(w, r, file, time.Time{}, bytes.NewReader(body))
}

func (s *Server) readDataset(ctx context.Context, file string) ([]byte, error) {
	rc, err := s.store.GetObject(ctx, file)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", file, err)
	}
	defer func() { _ = rc.Close() }()
	body, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", file, err)
	}
	return body, nil
}

func datasetIndex(cfg config.Config) map[string]DatasetInfo {
	index := make(map[string]DatasetInfo, len(cfg.Targets)+len(cfg.Composites))
	for name, t := range cfg.Targets {
		index[t.Output] = DatasetInfo{File: t.Output, Kind: string(t.Kind), Source: name, Description: t.Description}
	}
	for name, c := range cfg.Composites {
		index[c.Output] = DatasetInfo{File: c.Output, Kind: string(c.Kind), Source: name, Description: c.Description}
	}
	return index
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("write JSON failed", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}
