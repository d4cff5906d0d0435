package handler

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/mcoot/lineupsheet/internal/api/apierr"
)

// maxBodyBytes caps request bodies; a full roster with positions is a few KB
const maxBodyBytes = 64 << 10

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	apierr.WriteError(w, err)
}

// decodeJSON decodes the request body into v. An empty body leaves v untouched.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v)
	if err == nil || err == io.EOF {
		return nil
	}
	return apierr.NewBadRequestError("Request body is not valid JSON for this operation")
}
