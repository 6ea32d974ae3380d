package controllers

import (
	"bytes"
	"encoding/hex"
	"io"
	"net/http"
	"strconv"
	"strings"

	"scribe/app/errs"

	"github.com/gorilla/mux"
	jsoniter "github.com/json-iterator/go"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/sha3"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// strictJSON decodes request bodies. Unlike json it rejects unknown fields;
// its Unmarshal also rejects anything after the first value.
var strictJSON = jsoniter.Config{
	EscapeHTML:             true,
	SortMapKeys:            true,
	ValidateJsonRawMessage: true,
	DisallowUnknownFields:  true,
}.Froze()

const maxBodyBytes = 1 << 20

// sendJSON writes data as the JSON response body with the given status
func sendJSON(w http.ResponseWriter, status int, data interface{}) {
	body, err := json.Marshal(data)
	if err != nil {
		log.Error().Err(err).Msg("Unable to encode response")
		writeBody(w, http.StatusInternalServerError, []byte(`{"error":"internal server error"}`))
		return
	}
	writeBody(w, status, body)
}

func writeBody(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		log.Debug().Err(err).Msg("Unable to write response")
	}
}

// sendTagged writes data with a content hash ETag, answering 304 when the
// client already holds the same representation.
func sendTagged(w http.ResponseWriter, r *http.Request, data interface{}) {
	body, err := json.Marshal(data)
	if err != nil {
		sendError(w, r, err)
		return
	}
	sum := sha3.Sum256(body)
	etag := `"` + hex.EncodeToString(sum[:]) + `"`
	w.Header().Set("ETag", etag)
	if etagMatches(r.Header.Get("If-None-Match"), etag) {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	writeBody(w, http.StatusOK, body)
}

// etagMatches reports whether an If-None-Match header lists etag. Weak
// validators compare by their opaque tag.
func etagMatches(header, etag string) bool {
	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimSpace(candidate)
		if candidate == "*" || strings.TrimPrefix(candidate, "W/") == etag {
			return true
		}
	}
	return false
}

// sendError answers with the status of err's kind. Unexpected errors are
// logged and reported without detail.
func sendError(w http.ResponseWriter, r *http.Request, err error) {
	status := errs.StatusCode(err)
	response := map[string]string{"error": err.Error()}
	if status == http.StatusInternalServerError {
		log.Error().Err(err).Str("method", r.Method).Str("path", r.URL.Path).Msg("Request failed")
		response["error"] = "internal server error"
	} else if field := errs.FieldOf(err); field != "" {
		response["field"] = field
	}
	sendJSON(w, status, response)
}

// decodeJSON reads exactly one JSON value from the request body into dst,
// rejecting unknown fields, and validates it. Parser detail is logged, not
// returned.
func decodeJSON(r *http.Request, dst interface{}) error {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if err != nil {
		return errs.Validation("", "unable to read request body")
	}
	if len(data) > maxBodyBytes {
		return errs.Validation("", "request body is too large")
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return errs.Validation("", "request body is required")
	}
	if err := strictJSON.Unmarshal(data, dst); err != nil {
		log.Debug().Err(err).Str("path", r.URL.Path).Msg("Rejected request body")
		return errs.Validation("", "invalid JSON body")
	}
	return validateRequest(dst)
}

// pathID parses the named mux variable as a positive id
func pathID(r *http.Request, name string) (int, error) {
	id, err := strconv.Atoi(mux.Vars(r)[name])
	if err != nil || id <= 0 {
		return 0, errs.Validation(name, "invalid %s", name)
	}
	return id, nil
}

// queryInt parses an optional positive integer query parameter
func queryInt(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, errs.Validation(name, "%s must be a non-negative integer", name)
	}
	return n, nil
}
