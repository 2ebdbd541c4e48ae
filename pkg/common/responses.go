package common

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	pkgerrors "numtree-backend/pkg/errors"
)

// DefaultMaxBodyBytes bounds JSON request bodies
const DefaultMaxBodyBytes = 1 << 20

// StatusSuccess is the status field of every successful envelope
const StatusSuccess = "success"

// Envelope is a success response body. Fields are merged at the top level.
type Envelope map[string]interface{}

// encodeFailureBody is sent when a response cannot be encoded
var encodeFailureBody = []byte(`{"error":true,"type":"INTERNAL","message":"An internal error occurred"}` + "\n")

// RespondJSON sends data as a JSON response. Data is encoded before the
// status is written, so an unencodable value becomes a 500.
func RespondJSON(w http.ResponseWriter, status int, data interface{}) error {
	body, err := json.Marshal(data)
	w.Header().Set("Content-Type", "application/json")
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write(encodeFailureBody)
		return fmt.Errorf("encode response: %w", err)
	}

	w.WriteHeader(status)
	_, err = w.Write(append(body, '\n'))
	return err
}

// RespondSuccess sends {"status":"success", ...fields}
func RespondSuccess(w http.ResponseWriter, status int, fields Envelope) error {
	body := Envelope{"status": StatusSuccess}
	for k, v := range fields {
		body[k] = v
	}
	return RespondJSON(w, status, body)
}

// ParseJSONBody parses JSON request body with size limit.
// Decoding failures are returned as VALIDATION errors.
func ParseJSONBody(w http.ResponseWriter, r *http.Request, v interface{}, maxBytes int64) error {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBodyBytes
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)

	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(v); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.Is(err, io.EOF):
			return pkgerrors.NewValidationError("request body is required")
		case errors.As(err, &maxErr):
			return pkgerrors.NewValidationError("request body is too large")
		default:
			return pkgerrors.NewValidationError("invalid JSON body").WithCause(err)
		}
	}

	return nil
}
