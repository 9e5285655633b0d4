package httpx

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
)

// parseIntQuery returns the integer value of a query param or a default.
// It is tolerant of missing/invalid values.
func parseIntQuery(r *http.Request, key string, def int) int {
	if v := r.URL.Query().Get(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

// parseBoolQuery returns a pointer to the boolean value of a query param,
// or nil when the param is missing or not a boolean.
func parseBoolQuery(r *http.Request, key string) *bool {
	v := strings.TrimSpace(r.URL.Query().Get(key))
	if v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return nil
	}
	return &b
}

// ParseLimitOffset parses common pagination params and clamps to sane bounds.
// - defLimit: default limit when not specified
// - maxLimit: maximum allowed limit (values > maxLimit are clamped to maxLimit).
func ParseLimitOffset(r *http.Request, defLimit, maxLimit int) (int, int) {
	if maxLimit < 1 {
		maxLimit = 1
	}

	lim := parseIntQuery(r, "limit", defLimit)
	off := parseIntQuery(r, "offset", 0)
	if lim < 1 {
		lim = 1
	}
	if lim > maxLimit {
		lim = maxLimit
	}
	if off < 0 {
		off = 0
	}
	return lim, off
}

// pathID reads the numeric {id} path value. On failure it writes a 400 and returns false.
func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := r.PathValue("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		WriteError(w, ErrorParams{
			Code:    http.StatusBadRequest,
			ErrCode: "invalid_path",
			Err:     errors.New("event id must be a positive integer"),
		})
		return 0, false
	}
	return id, true
}
