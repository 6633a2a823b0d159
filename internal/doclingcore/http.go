package doclingcore

import (
	"encoding/base64"
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"
)

type request struct {
	DocumentBytes string `json:"document_bytes"`
	Filename      string `json:"filename"`
	DocumentID    string `json:"document_id"`
}

// Handler serves POST requests in the router envelope format. Extraction
// failures are still answered with 200 and success=false.
func (s *Service) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeJSON(w, http.StatusMethodNotAllowed, map[string]any{"success": false, "error": "method not allowed"})
			return
		}

		var req request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "error": "invalid JSON body"})
			return
		}
		data, err := base64.StdEncoding.DecodeString(req.DocumentBytes)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "error": "document_bytes is not valid base64"})
			return
		}
		if len(data) == 0 {
			writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "error": "No document bytes provided"})
			return
		}
		if req.Filename == "" {
			req.Filename = "unknown"
		}

		writeJSON(w, http.StatusOK, s.Process(data, req.Filename, req.DocumentID))
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("failed to write response")
	}
}
