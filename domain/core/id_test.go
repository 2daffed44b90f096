package core

import (
	"errors"
	"testing"
)

// TestNewIDUniqueness tests that NewID generates unique identifiers
func TestNewIDUniqueness(t *testing.T) {
	const numIDs = 10000

	ids := make(map[ID]bool, numIDs)
	for i := 0; i < numIDs; i++ {
		id := NewID()
		if id.IsEmpty() {
			t.Errorf("Generated empty ID at iteration %d", i)
		}
		if ids[id] {
			t.Errorf("Generated duplicate ID: %s", id)
		}
		ids[id] = true
	}
}

func TestParseRunID(t *testing.T) {
	valid := NewRunID().String()
	tests := []struct {
		input    string
		hasError bool
	}{
		{valid, false},
		{"  " + valid + " ", false},
		{"", true},
		{"   ", true},
		{"not-a-uuid", true},
	}

	for _, tt := range tests {
		got, err := ParseRunID(tt.input)
		if tt.hasError {
			if err == nil {
				t.Errorf("ParseRunID(%q) expected error", tt.input)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseRunID(%q) unexpected error: %v", tt.input, err)
		}
		if got.String() != valid {
			t.Errorf("ParseRunID(%q) = %q, want %q", tt.input, got, valid)
		}
	}
}

func TestErrorHelpers(t *testing.T) {
	if !IsLayoutError(NewAnchorNotFoundError("Segments")) {
		t.Error("anchor error should be a layout error")
	}
	if !IsStructuralError(NewColumnOverflowError("PC", 9, 5)) {
		t.Error("overflow error should be structural")
	}
	if !errors.Is(NewInvalidKPIError("CVR", "unknown type"), ErrInvalidKPIConfig) {
		t.Error("invalid KPI error should wrap ErrInvalidKPIConfig")
	}
	if !IsNotFoundError(ErrRunNotFound) {
		t.Error("ErrRunNotFound should be a not-found error")
	}
}
