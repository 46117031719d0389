package handlers

import (
	"encoding/json"
	"errors"
	"io/fs"
	"net/http"

	"image-viewer/internal/logging"
	"image-viewer/internal/pipeline"
)

// errorResponse is the body of every failed command.
type errorResponse struct {
	Error    string `json:"error"`
	Kind     string `json:"kind"`
	Exported *int   `json:"exported,omitempty"`
}

// writeJSON encodes v as JSON and writes it to the response writer.
// Any encoding or write errors are logged since we typically cannot
// recover from them in an HTTP handler context.
func writeJSON(w http.ResponseWriter, v interface{}) {
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Error("failed to encode JSON response: %v", err)
	}
}

// writeJSONResponse writes v with a JSON content type and 200 status.
func writeJSONResponse(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, v)
}

// writeJSONError writes an error response as JSON with the given status code.
func writeJSONError(w http.ResponseWriter, message, kind string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	writeJSON(w, errorResponse{Error: message, Kind: kind})
}

// writeCommandError reports a pipeline failure with the status for its kind.
func writeCommandError(w http.ResponseWriter, err error) {
	kind := pipeline.Kind(err)
	status := statusForError(kind, err)
	if status >= http.StatusInternalServerError {
		logging.Error("command failed (%s): %v", kind, err)
	}
	writeJSONError(w, err.Error(), kind, status)
}

// statusForError maps an error kind to an HTTP status. A decode that failed
// because the file does not exist is reported as 404.
func statusForError(kind string, err error) int {
	switch kind {
	case pipeline.KindInvalidArgument:
		return http.StatusBadRequest
	case pipeline.KindNotFound:
		return http.StatusNotFound
	case pipeline.KindDecode:
		if errors.Is(err, fs.ErrNotExist) {
			return http.StatusNotFound
		}
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// decodeBody reads a bounded JSON body into v.
func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeJSONError(w, "invalid request body: "+err.Error(), pipeline.KindInvalidArgument, http.StatusBadRequest)
		return false
	}
	return true
}
