package iam

import (
	"errors"
	"fmt"
	"testing"

	"google.golang.org/api/googleapi"
)

func TestQualifyKeyName(t *testing.T) {
	tests := []struct {
		name  string
		keyID string
		want  string
	}{
		{
			name:  "bare identifier",
			keyID: "abc123",
			want:  "projects/p1/serviceAccounts/a1/keys/abc123",
		},
		{
			name:  "already qualified",
			keyID: "projects/other/serviceAccounts/svc@other.iam.gserviceaccount.com/keys/xyz",
			want:  "projects/other/serviceAccounts/svc@other.iam.gserviceaccount.com/keys/xyz",
		},
		{
			name:  "partial path is qualified",
			keyID: "keys/abc123",
			want:  "projects/p1/serviceAccounts/a1/keys/keys/abc123",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := QualifyKeyName("p1", "a1", tt.keyID); got != tt.want {
				t.Errorf("QualifyKeyName() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestKeyID(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"projects/p1/serviceAccounts/a1/keys/abc123", "abc123"},
		{"abc123", "abc123"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := KeyID(tt.name); got != tt.want {
			t.Errorf("KeyID(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestAccountName(t *testing.T) {
	want := "projects/p1/serviceAccounts/a1"
	if got := AccountName("p1", "a1"); got != want {
		t.Errorf("AccountName() = %q, want %q", got, want)
	}
}

func TestStatusCode(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		code   int
		server bool
	}{
		{"nil", nil, 0, false},
		{"plain error", errors.New("dial tcp: refused"), 0, false},
		{"not found", &googleapi.Error{Code: 404}, 404, false},
		{"unavailable", &googleapi.Error{Code: 503}, 503, true},
		{"lower bound", &googleapi.Error{Code: 500}, 500, true},
		{"upper bound", &googleapi.Error{Code: 599}, 599, true},
		{"above range", &googleapi.Error{Code: 600}, 600, false},
		{"wrapped", fmt.Errorf("list keys: %w", &googleapi.Error{Code: 502}), 502, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StatusCode(tt.err); got != tt.code {
				t.Errorf("StatusCode() = %d, want %d", got, tt.code)
			}
			if got := IsServerError(tt.err); got != tt.server {
				t.Errorf("IsServerError() = %v, want %v", got, tt.server)
			}
		})
	}
}
