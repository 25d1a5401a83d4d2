package safeurl

import (
	"errors"
	"testing"
)

func TestServerBase(t *testing.T) {
	tests := []struct {
		raw  string
		want string
		err  error
	}{
		{"http://example.com/", "http://example.com", nil},
		{"  https://example.com:8443/panel//  ", "https://example.com:8443/panel", nil},
		{"HTTP://x", "HTTP://x", nil},
		{"file:///etc/passwd", "", ErrScheme},
		{"ftp://example.com", "", ErrScheme},
		{"", "", ErrScheme},
		{"not-a-url", "", ErrScheme},
		{"javascript:alert(1)", "", ErrScheme},
		{"http://", "", ErrHost},
		{"http://u:p@example.com", "", ErrExtra},
		{"http://example.com/?x=1", "", ErrExtra},
		{"http://example.com/#top", "", ErrExtra},
	}
	for _, tt := range tests {
		got, err := ServerBase(tt.raw)
		if !errors.Is(err, tt.err) {
			t.Errorf("ServerBase(%q) err = %v, want %v", tt.raw, err, tt.err)
			continue
		}
		if got != tt.want {
			t.Errorf("ServerBase(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}
