// ABOUTME: Model tests
// ABOUTME: Covers scope inclusion and record failure wrapping
package models

import (
	"errors"
	"fmt"
	"testing"
)

func TestScopeIncludes(t *testing.T) {
	tests := []struct {
		name        string
		regions     []string
		countryCode string
		want        bool
	}{
		{"enabled region", []string{"se", "us"}, "se", true},
		{"case insensitive", []string{"se"}, "SE", true},
		{"disabled region", []string{"se"}, "fr", false},
		{"empty scope syncs nothing", nil, "se", false},
		{"empty country code", []string{"se"}, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scope := Scope{Account: "work", Regions: tt.regions}
			if got := scope.Includes(tt.countryCode); got != tt.want {
				t.Errorf("Includes(%q) = %v, want %v", tt.countryCode, got, tt.want)
			}
		})
	}
}

func TestRecordFailureUnwrap(t *testing.T) {
	cause := errors.New("store rejected batch")
	failure := RecordFailure{SourceID: "a@example.com", Err: fmt.Errorf("apply: %w", cause)}

	if !errors.Is(failure, cause) {
		t.Error("expected RecordFailure to unwrap to its cause")
	}
	if failure.Error() != "a@example.com: apply: store rejected batch" {
		t.Errorf("unexpected message %q", failure.Error())
	}
}
