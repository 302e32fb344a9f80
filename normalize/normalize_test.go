package normalize

import (
	"testing"
)

func TestKey(t *testing.T) {

	tests := map[string]string{
		"Avenida Córdoba":       "AVENIDA CORDOBA",
		"  gral.  GÜEMES ":      "GRAL GUEMES",
		"25 de Mayo":            "25 DE MAYO",
		"SAN MARTÍN":            "SAN MARTIN",
		"Juan B. Justo (Norte)": "JUAN B JUSTO NORTE",
	}

	for name, expected := range tests {

		key := Key(name)

		if key != expected {
			t.Fatalf("Invalid key for '%s'. Got '%s' but expected '%s'", name, key, expected)
		}
	}
}

func TestKeyEquivalence(t *testing.T) {

	pairs := [][2]string{
		{"Avenida Córdoba", "AVENIDA CORDOBA"},
		{"Güemes", "GUEMES"},
		{"25 de   Mayo", "25 DE MAYO"},
	}

	for _, pair := range pairs {

		if Key(pair[0]) != Key(pair[1]) {
			t.Fatalf("Expected '%s' and '%s' to share a key", pair[0], pair[1])
		}
	}
}

func TestDisplayName(t *testing.T) {

	tests := map[string]string{
		"  Avenida   Córdoba ": "Avenida Córdoba",
		"San Martín":           "San Martín",
	}

	for raw, expected := range tests {

		name := DisplayName(raw)

		if name != expected {
			t.Fatalf("Invalid display name for '%s'. Got '%s' but expected '%s'", raw, name, expected)
		}
	}
}

func TestBackfill(t *testing.T) {

	dst := ""
	Backfill(&dst, "Santa Fe")

	if dst != "Santa Fe" {
		t.Fatalf("Expected backfill into empty value. Got '%s'", dst)
	}

	Backfill(&dst, "Córdoba")

	if dst != "Santa Fe" {
		t.Fatalf("Expected non-empty value to be kept. Got '%s'", dst)
	}
}
