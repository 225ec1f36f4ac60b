package httpx

import (
	"errors"
	"net/url"
	"strings"
	"testing"
)

func TestDecodeJSONStrictness(t *testing.T) {
	var dst struct {
		Name string `json:"name"`
	}

	if err := DecodeJSON(strings.NewReader(`{"name":"amy"}`), &dst); err != nil {
		t.Fatalf("DecodeJSON error: %v", err)
	}
	if dst.Name != "amy" {
		t.Fatalf("name = %q", dst.Name)
	}

	if err := DecodeJSON(strings.NewReader(`{"name":"amy","extra":1}`), &dst); err == nil {
		t.Fatalf("unknown field must be rejected")
	}
	if err := DecodeJSON(strings.NewReader(`{"name":"amy"}{"name":"ben"}`), &dst); !errors.Is(err, ErrTrailingJSON) {
		t.Fatalf("expected ErrTrailingJSON, got %v", err)
	}
}

func TestParseLimitOffset(t *testing.T) {
	limit, offset, err := ParseLimitOffset(url.Values{}, 50, 500)
	if err != nil || limit != 50 || offset != 0 {
		t.Fatalf("defaults: limit=%d offset=%d err=%v", limit, offset, err)
	}

	limit, offset, err = ParseLimitOffset(url.Values{"limit": {"9000"}, "offset": {"20"}}, 50, 500)
	if err != nil || limit != 500 || offset != 20 {
		t.Fatalf("clamp: limit=%d offset=%d err=%v", limit, offset, err)
	}

	if _, _, err := ParseLimitOffset(url.Values{"limit": {"0"}}, 50, 500); err == nil {
		t.Fatalf("zero limit must be rejected")
	}
	if _, _, err := ParseLimitOffset(url.Values{"offset": {"-1"}}, 50, 500); err == nil {
		t.Fatalf("negative offset must be rejected")
	}
}
