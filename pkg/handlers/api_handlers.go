package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"indexo/pkg/models"
	"indexo/pkg/services"
	"indexo/pkg/store"
)

// maxUploadBytes bounds an uploaded index document
const maxUploadBytes = 32 << 20

// withCORS lets the design plugin, served from another origin, call the API
func withCORS(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		next(w, r)
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{
		"success": false,
		"error":   message,
	})
}

// IndexFilesHandler lists stored index files, newest first
func (h *Handlers) IndexFilesHandler(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.svc.ListProjects(r.Context(), services.SortByDate)
	if err != nil {
		h.log.Error("Failed to list index files", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to fetch index files")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"files":   summaries,
	})
}

// IndexDataHandler returns one stored record with normalized index data
func (h *Handlers) IndexDataHandler(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "Missing id parameter")
		return
	}

	rec, err := h.svc.Record(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Index file not found")
		return
	}
	if err != nil {
		h.log.Error("Failed to fetch index data", zap.String("id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to fetch index data")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data":    rec,
	})
}

// UploadIndexHandler stores a document posted by the plugin
func (h *Handlers) UploadIndexHandler(w http.ResponseWriter, r *http.Request) {
	token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	if err := services.CheckToken(h.secretKey, token); err != nil {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var upload models.Upload
	if err := json.NewDecoder(io.LimitReader(r.Body, maxUploadBytes)).Decode(&upload); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	rec, err := h.svc.Upload(r.Context(), upload)
	if errors.Is(err, store.ErrEmptyUpload) {
		writeError(w, http.StatusBadRequest, "Missing indexData")
		return
	}
	if err != nil {
		h.log.Error("Failed to store upload", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to upload index")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data":    rec,
	})
}
