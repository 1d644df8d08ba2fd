package handler

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"net/url"
)

const maxFormMemory = 1 << 20

// parseForm fills r.PostForm from url-encoded and multipart bodies alike.
func parseForm(r *http.Request) error {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		return r.ParseForm()
	}
	if err := r.ParseMultipartForm(maxFormMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return err
	}
	return nil
}

// writeText writes a plain text body with the given status. Unlike http.Error
// the body is written as is, without a trailing newline.
func writeText(w http.ResponseWriter, statusCode int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(statusCode)
	io.WriteString(w, body)
}

// writeJSON writes a JSON response payload with status code.
func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

// valueOr returns the first value of key, or fallback when the key is absent.
// A present but empty value is returned as is.
func valueOr(values url.Values, key, fallback string) string {
	if v, ok := values[key]; ok && len(v) > 0 {
		return v[0]
	}
	return fallback
}
