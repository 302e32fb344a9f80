package georef

import (
	"errors"
	"testing"
)

func TestGeometryInvalid(t *testing.T) {

	e := GeometryInvalid{Ref: "82", Reason: "empty geometry"}

	if !IsGeometryInvalid(e) {
		t.Fatalf("Expected GeometryInvalid error")
	}

	if e.String() != "Invalid geometry for '82': empty geometry" {
		t.Fatalf("Invalid stringification")
	}
}

func TestOrphanEntity(t *testing.T) {

	e := OrphanEntity{Kind: MunicipalityKind, Code: "820196"}

	if !IsOrphanEntity(e) {
		t.Fatalf("Expected OrphanEntity error")
	}

	if e.String() != "No parent found for municipalities '820196'" {
		t.Fatalf("Invalid stringification")
	}
}

func TestTopologyDerivationFailed(t *testing.T) {

	e := TopologyDerivationFailed{Street: "8207001000105", Reason: "no valid segments"}

	if !IsTopologyDerivationFailed(e) {
		t.Fatalf("Expected TopologyDerivationFailed error")
	}

	if e.String() != "Failed to derive topology for street '8207001000105': no valid segments" {
		t.Fatalf("Invalid stringification")
	}
}

func TestReferentialViolation(t *testing.T) {

	cause := errors.New("insert or update on table \"departments\" violates foreign key constraint")
	e := ReferentialViolation{Kind: DepartmentKind, Err: cause}

	if !IsReferentialViolation(e) {
		t.Fatalf("Expected ReferentialViolation error")
	}

	if !errors.Is(e, cause) {
		t.Fatalf("Expected unwrapping to yield the cause")
	}
}

func TestSourceUnavailable(t *testing.T) {

	cause := errors.New("no such file or directory")
	e := SourceUnavailable{URI: "geojson:///tmp/missing.geojson", Err: cause}

	if !IsSourceUnavailable(e) {
		t.Fatalf("Expected SourceUnavailable error")
	}

	if !errors.Is(e, cause) {
		t.Fatalf("Expected unwrapping to yield the cause")
	}
}

func TestKindsOrder(t *testing.T) {

	kinds := Kinds()

	if len(kinds) != 7 {
		t.Fatalf("Invalid kind count. Got %d but expected 7", len(kinds))
	}

	if kinds[0] != ProvinceKind {
		t.Fatalf("Expected provinces first. Got %s", kinds[0])
	}

	if kinds[6] != BlockKind {
		t.Fatalf("Expected blocks last. Got %s", kinds[6])
	}
}
