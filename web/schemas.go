// ABOUTME: Schema catalog: serves *.md form definitions from a configured directory.
package web

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/formpilot/formpilot-ai/formcontext"
)

// SchemaInfo is one catalog entry returned by GET /api/schemas.
type SchemaInfo struct {
	Filename string `json:"filename"`
	Title    string `json:"title"`
	Size     int64  `json:"size"`
}

func (s *Server) handleListSchemas(w http.ResponseWriter, r *http.Request) {
	entries, err := os.ReadDir(s.schemasDir)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to read schema directory")
		return
	}

	schemas := make([]SchemaInfo, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".md") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		raw, err := os.ReadFile(filepath.Join(s.schemasDir, e.Name()))
		if err != nil {
			continue
		}
		title := e.Name()
		if form, err := formcontext.Parse(string(raw)); err == nil {
			title = form.Title
		}
		schemas = append(schemas, SchemaInfo{Filename: e.Name(), Title: title, Size: info.Size()})
	}

	writeJSON(w, http.StatusOK, map[string]any{"schemas": schemas})
}

func (s *Server) handleGetSchema(w http.ResponseWriter, r *http.Request) {
	filename := chi.URLParam(r, "filename")
	if filename == "" || strings.Contains(filename, "..") || strings.ContainsRune(filename, os.PathSeparator) {
		writeJSONError(w, http.StatusNotFound, "schema not found")
		return
	}

	raw, err := os.ReadFile(filepath.Join(s.schemasDir, filename))
	if err != nil {
		writeJSONError(w, http.StatusNotFound, "schema not found")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"filename": filename,
		"content":  string(raw),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
