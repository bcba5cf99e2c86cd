// Package handler exposes the ingestion pipeline over a thin HTTP surface.
package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/finlytics/finlytics-api/internal/domain/ingest/extractor"
	"github.com/finlytics/finlytics-api/internal/domain/ingest/repository"
	"github.com/finlytics/finlytics-api/internal/domain/ingest/service"
)

// maxUploadBytes caps statement uploads; bank exports are small files.
const maxUploadBytes = 25 << 20

const userIDHeader = "X-User-ID"

// DataSource is one selectable statement format.
type DataSource struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
}

var dataSources = []DataSource{
	{ID: extractor.SourceHDFCBank, Name: "HDFC Bank", Type: "BANK"},
	{ID: extractor.SourceSBIBank, Name: "SBI Bank", Type: "BANK"},
	{ID: extractor.SourceFederalBank, Name: "Federal Bank", Type: "BANK"},
	{ID: extractor.SourceHDFCCard, Name: "HDFC Credit Card", Type: "CREDIT_CARD"},
	{ID: extractor.SourceSBICard, Name: "SBI Credit Card", Type: "CREDIT_CARD"},
	{ID: extractor.SourceSCBCard, Name: "Standard Chartered Credit Card", Type: "CREDIT_CARD"},
	{ID: extractor.SourceGenericCSV, Name: "Generic CSV/Excel", Type: "BANK"},
}

// ImportHandler serves statement upload and import bookkeeping endpoints.
type ImportHandler struct {
	svc    *service.ImportService
	logger *slog.Logger
}

func NewImportHandler(svc *service.ImportService, logger *slog.Logger) *ImportHandler {
	return &ImportHandler{svc: svc, logger: logger}
}

// Register mounts the handler's routes on the router.
func (h *ImportHandler) Register(r *mux.Router) {
	r.HandleFunc("/data-sources", h.DataSources).Methods(http.MethodGet)
	r.HandleFunc("/import", h.Import).Methods(http.MethodPost)
	r.HandleFunc("/import-history", h.ImportHistory).Methods(http.MethodGet)
	// Frontend compatibility alias.
	r.HandleFunc("/imports", h.ImportHistory).Methods(http.MethodGet)
}

func (h *ImportHandler) DataSources(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, dataSources)
}

// Import accepts a multipart upload (file, account_id, data_source) and runs
// the pipeline synchronously. The response is the batch summary; whole-file
// failures still return the summary alongside a failure status code.
func (h *ImportHandler) Import(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart request")
		return
	}

	accountID, err := uuid.Parse(r.FormValue("account_id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid account_id")
		return
	}
	dataSource := r.FormValue("data_source")
	if dataSource == "" {
		writeError(w, http.StatusBadRequest, "data_source is required")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read upload")
		return
	}

	start := time.Now()
	summary, err := h.svc.ImportStatement(r.Context(), userID, accountID, dataSource, header.Filename, data)
	if err != nil {
		status := http.StatusUnprocessableEntity
		if errors.Is(err, repository.ErrAccountNotFound) {
			status = http.StatusNotFound
		}
		writeJSON(w, status, summary)
		return
	}

	h.logger.Info("import request served",
		slog.String("user_id", userID.String()),
		slog.String("data_source", dataSource),
		slog.Duration("took", time.Since(start)),
	)
	writeJSON(w, http.StatusOK, summary)
}

func (h *ImportHandler) ImportHistory(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	batches, err := h.svc.ListImportHistory(r.Context(), userID, 50)
	if err != nil {
		h.logger.Error("failed to list import history", slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, "failed to list import history")
		return
	}
	if batches == nil {
		batches = []repository.ImportBatch{}
	}
	writeJSON(w, http.StatusOK, batches)
}

func (h *ImportHandler) userID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	raw := r.Header.Get(userIDHeader)
	if raw == "" {
		writeError(w, http.StatusUnauthorized, "missing user identity")
		return uuid.Nil, false
	}
	userID, err := uuid.Parse(raw)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "invalid user identity")
		return uuid.Nil, false
	}
	return userID, true
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
