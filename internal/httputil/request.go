package httputil

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// maxRequestBodyBytes bounds API request bodies. Catalog requests are tiny
// JSON documents; 1MB leaves generous headroom.
const maxRequestBodyBytes = 1 << 20

// ParseJSON decodes JSON from the request body into the given destination.
// It limits the request body size to prevent abuse and provides clear
// error messages.
func ParseJSON(w http.ResponseWriter, r *http.Request, dest interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)

	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}

	return nil
}
