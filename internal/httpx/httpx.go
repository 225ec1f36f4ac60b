// Package httpx holds the small request-side helpers shared by every
// handler: strict JSON decoding and query pagination.
package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

var ErrTrailingJSON = errors.New("request body holds more than one JSON value")

// DecodeJSON decodes exactly one JSON value from body. Unknown fields and
// trailing garbage are both errors, so a client typo never half-applies.
func DecodeJSON(body io.Reader, v interface{}) error {
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return ErrTrailingJSON
	}
	return nil
}

// ValidationDetails flattens validator errors into a field -> failed-tag map
// for the error envelope.
func ValidationDetails(errs validator.ValidationErrors) map[string]string {
	if len(errs) == 0 {
		return nil
	}
	details := make(map[string]string, len(errs))
	for _, err := range errs {
		details[err.Field()] = err.Tag()
	}
	return details
}

// ParseLimitOffset reads limit and offset query parameters. Absent values
// fall back to defaultLimit and zero; limit is clamped to maxLimit.
func ParseLimitOffset(values url.Values, defaultLimit, maxLimit int64) (int64, int64, error) {
	limit, err := parseQueryInt(values, "limit", defaultLimit, 1)
	if err != nil {
		return 0, 0, err
	}
	offset, err := parseQueryInt(values, "offset", 0, 0)
	if err != nil {
		return 0, 0, err
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return limit, offset, nil
}

func parseQueryInt(values url.Values, name string, fallback, min int64) (int64, error) {
	raw := strings.TrimSpace(values.Get(name))
	if raw == "" {
		return fallback, nil
	}
	parsed, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || parsed < min {
		return 0, fmt.Errorf("invalid %s parameter", name)
	}
	return parsed, nil
}
