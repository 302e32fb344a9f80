package normalize

import (
	"testing"
)

func TestCode(t *testing.T) {

	tests := map[string]string{
		"82":   "82",
		"2":    "02",
		" 06 ": "06",
	}

	for raw, expected := range tests {

		code, err := Code(raw, 2)

		if err != nil {
			t.Fatalf("Failed to normalize code '%s', %v", raw, err)
		}

		if code != expected {
			t.Fatalf("Invalid code for '%s'. Got '%s' but expected '%s'", raw, code, expected)
		}
	}
}

func TestCodeInvalid(t *testing.T) {

	invalid := []string{
		"",
		"8A",
		"123",
	}

	for _, raw := range invalid {

		_, err := Code(raw, 2)

		if err == nil {
			t.Fatalf("Expected error for code '%s'", raw)
		}
	}
}
