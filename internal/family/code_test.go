package family

import (
	"strings"
	"testing"
)

func TestGenerateCode(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		code, err := GenerateCode()
		if err != nil {
			t.Fatalf("generate: %v", err)
		}
		if len(code) != CodeLength {
			t.Fatalf("code %q length = %d, want %d", code, len(code), CodeLength)
		}
		if !ValidCode(code) {
			t.Fatalf("generated code %q fails validation", code)
		}
		seen[code] = true
	}
	if len(seen) < 2 {
		t.Error("generator returned the same code every time")
	}
}

func TestNormalizeCode(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"abc123", "ABC123"},
		{"  AbC123  ", "ABC123"},
		{"ABC123", "ABC123"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := NormalizeCode(tt.in); got != tt.want {
			t.Errorf("NormalizeCode(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestValidCode(t *testing.T) {
	valid := []string{"ABC123", "ZZZZZZ", "000000"}
	for _, code := range valid {
		if !ValidCode(code) {
			t.Errorf("ValidCode(%q) = false, want true", code)
		}
	}

	invalid := []string{
		"ABC12",            // too short
		"ABC1234",          // too long
		"abc123",           // lowercase not normalized
		"ABC-12",           // punctuation
		"ABC 12",           // space
		strings.Repeat("A", 100),
		"",
	}
	for _, code := range invalid {
		if ValidCode(code) {
			t.Errorf("ValidCode(%q) = true, want false", code)
		}
	}
}
