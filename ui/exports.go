package ui

import (
	"encoding/json"
	"io/fs"
	"net/http"
	"os"
	"path"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"lumos/internal"
)

// exportListing is the JSON body of GET /exports/{runID}
type exportListing struct {
	RunID string   `json:"run_id"`
	Files []string `json:"files"`
}

// newExportsRouter serves the artifacts written by exports, read-only:
//
//	GET /exports/{runID}     lists the files of a run
//	GET /exports/{runID}/*   downloads one file
func newExportsRouter(root string, logger *internal.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Compress(5))

	runDir := func(w http.ResponseWriter, req *http.Request) (string, bool) {
		id := chi.URLParam(req, "runID")
		if _, err := uuid.Parse(id); err != nil {
			http.NotFound(w, req)
			return "", false
		}
		dir := filepath.Join(root, id)
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			http.NotFound(w, req)
			return "", false
		}
		return dir, true
	}

	r.Get("/exports/{runID}", func(w http.ResponseWriter, req *http.Request) {
		dir, ok := runDir(w, req)
		if !ok {
			return
		}
		listing := exportListing{RunID: chi.URLParam(req, "runID"), Files: []string{}}
		err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
			if err != nil || d.IsDir() {
				return err
			}
			rel, err := filepath.Rel(dir, p)
			if err != nil {
				return err
			}
			listing.Files = append(listing.Files, filepath.ToSlash(rel))
			return nil
		})
		if err != nil {
			logger.Error("list %s: %v", dir, err)
			http.Error(w, "failed to list export", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		_ = json.NewEncoder(w).Encode(listing)
	})

	r.Get("/exports/{runID}/*", func(w http.ResponseWriter, req *http.Request) {
		dir, ok := runDir(w, req)
		if !ok {
			return
		}
		rel := path.Clean("/" + chi.URLParam(req, "*"))
		target := filepath.Join(dir, filepath.FromSlash(rel))
		info, err := os.Stat(target)
		if err != nil || info.IsDir() {
			http.NotFound(w, req)
			return
		}
		http.ServeFile(w, req, target)
	})

	return r
}
