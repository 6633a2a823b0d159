package orchestrator

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/local/docorchestrator/internal/storage"
)

func (o *Orchestrator) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	req, data, err := o.readDocument(w, r)
	if err != nil {
		writeInputError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, o.deps.Analyzer.Analyze(data, req.Filename))
}

func (o *Orchestrator) handleStatus(w http.ResponseWriter, r *http.Request) {
	if o.deps.Status == nil {
		writeError(w, http.StatusServiceUnavailable, "status tracking is not configured")
		return
	}
	id := r.PathValue("id")
	st, ok, err := o.deps.Status.Get(r.Context(), id)
	if err != nil {
		log.Error().Err(err).Str("document_id", id).Msg("status lookup failed")
		writeError(w, http.StatusInternalServerError, "status lookup failed")
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "document not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"document_id": id,
		"status":      st,
	})
}

type presignReq struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
}

func (o *Orchestrator) handlePresign(w http.ResponseWriter, r *http.Request) {
	var req presignReq
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Filename == "" {
		writeError(w, http.StatusBadRequest, "filename is required")
		return
	}
	if o.deps.Storage == nil || o.deps.Storage.Bucket() == "" {
		writeError(w, http.StatusServiceUnavailable, "document storage is not configured")
		return
	}
	if req.ContentType == "" {
		req.ContentType = "application/octet-stream"
	}

	id := uuid.NewString()
	key := storage.UploadKey(o.deps.Now(), id, req.Filename)
	url, err := o.deps.Storage.PresignUpload(r.Context(), key, req.ContentType)
	if err != nil {
		log.Error().Err(err).Str("key", key).Msg("failed to presign upload")
		writeError(w, http.StatusInternalServerError, "failed to generate upload URL")
		return
	}

	log.Info().Str("document_id", id).Str("key", key).Msg("issued presigned upload URL")
	writeJSON(w, http.StatusOK, map[string]any{
		"presigned_url": url,
		"document_id":   id,
		"s3_key":        key,
		"bucket":        o.deps.Storage.Bucket(),
		"expires_in":    int(o.deps.Storage.PresignTTL().Seconds()),
	})
}
