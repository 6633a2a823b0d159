package orchestrator

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/local/docorchestrator/internal/storage"
)

// documentReq is the body accepted by /process and /analyze. The document is
// given inline as base64 or as a key in the documents bucket.
type documentReq struct {
	DocumentBytes string `json:"document_bytes"`
	S3Key         string `json:"s3_key"`
	Filename      string `json:"filename"`
	DocumentID    string `json:"document_id"`
	SkipCache     bool   `json:"skip_cache"`
}

// inputError carries the HTTP status for a request that cannot be served.
type inputError struct {
	status int
	msg    string
}

func (e *inputError) Error() string { return e.msg }

// readDocument decodes the request body and resolves the document bytes.
func (o *Orchestrator) readDocument(w http.ResponseWriter, r *http.Request) (documentReq, []byte, error) {
	var req documentReq
	body := http.MaxBytesReader(w, r.Body, o.deps.MaxBodyBytes)
	defer body.Close()

	if err := json.NewDecoder(body).Decode(&req); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return req, nil, &inputError{http.StatusRequestEntityTooLarge, "request body too large"}
		}
		return req, nil, &inputError{http.StatusBadRequest, "invalid JSON body"}
	}

	data, err := base64.StdEncoding.DecodeString(req.DocumentBytes)
	if err != nil {
		return req, nil, &inputError{http.StatusBadRequest, "document_bytes is not valid base64"}
	}

	if len(data) == 0 && req.S3Key != "" {
		if o.deps.Storage == nil {
			return req, nil, &inputError{http.StatusServiceUnavailable, "document storage is not configured"}
		}
		obj, meta, err := o.deps.Storage.GetDocument(r.Context(), req.S3Key)
		switch {
		case errors.Is(err, storage.ErrNotFound):
			return req, nil, &inputError{http.StatusNotFound, fmt.Sprintf("document %s not found", req.S3Key)}
		case err != nil:
			return req, nil, &inputError{http.StatusBadGateway, err.Error()}
		}
		data = obj
		if req.Filename == "" {
			req.Filename = meta.OriginalName
		}
	}

	if len(data) == 0 {
		return req, nil, &inputError{http.StatusBadRequest, "No document bytes provided"}
	}
	if req.Filename == "" {
		req.Filename = "unknown"
	}
	return req, data, nil
}

func writeInputError(w http.ResponseWriter, err error) {
	var ie *inputError
	if errors.As(err, &ie) {
		writeError(w, ie.status, ie.msg)
		return
	}
	writeError(w, http.StatusInternalServerError, err.Error())
}
