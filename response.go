package dataobject

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
)

const jsonContentType = "application/json; charset=utf-8"

// Empty represents a void request or response.
// The zero value is nil, which serializes to JSON null.
//
// Wire format: {"result": null}
type Empty *struct{}

// response is the envelope of successful responses.
type response struct {
	Result any `json:"result"`
}

// errorResponse is the envelope of error responses.
type errorResponse struct {
	Error *Error `json:"error"`
}

// jsonWriter is satisfied by http.ResponseWriter and allows testing.
type jsonWriter interface {
	Write([]byte) (int, error)
}

// encodeResponse writes a successful response. Non-ASCII text and HTML
// characters are written as is.
func encodeResponse(w jsonWriter, result any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return enc.Encode(response{Result: result})
}

// encodeErrorResponse writes an error response.
func encodeErrorResponse(w jsonWriter, err *Error) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return enc.Encode(errorResponse{Error: err})
}

// jsonResult renders a result to the client: the JSON content type, the
// front-end origin when one is configured, and the status code.
type jsonResult struct {
	status   int
	frontURL string
	result   any
}

func (r *jsonResult) render(w http.ResponseWriter, logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	var buf bytes.Buffer
	if err := encodeResponse(&buf, r.result); err != nil {
		logger.Error("failed to encode response", slog.Any("error", err))
		writeError(w, NewError(CodeInternal, "failed to encode response"), logger)
		return
	}
	if r.frontURL != "" {
		w.Header().Set("Access-Control-Allow-Origin", r.frontURL)
	}
	w.Header().Set("Content-Type", jsonContentType)
	status := r.status
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)
	if _, err := w.Write(buf.Bytes()); err != nil {
		logger.Debug("failed to write response", slog.Any("error", err))
	}
}
