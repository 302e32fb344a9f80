package pipeline

import (
	"fmt"
	"strings"
	"testing"

	"github.com/georef-ar/go-georef-etl"
)

func TestDiagnostics(t *testing.T) {

	errs := []error{
		georef.GeometryInvalid{Ref: "82", Reason: "empty geometry"},
		georef.OrphanEntity{Kind: georef.MunicipalityKind, Code: "820196"},
		georef.GeometryInvalid{Ref: "06", Reason: "no valid rings"},
	}

	messages := diagnostics(errs)

	if len(messages) != 3 {
		t.Fatalf("Invalid message count. Got %d but expected 3", len(messages))
	}

	// Messages are grouped by error kind, in first-seen order.

	if !strings.HasPrefix(messages[0], "[geometry]") {
		t.Fatalf("Invalid first message, %s", messages[0])
	}

	if !strings.HasPrefix(messages[1], "[geometry]") {
		t.Fatalf("Invalid second message, %s", messages[1])
	}

	if !strings.HasPrefix(messages[2], "[orphan]") {
		t.Fatalf("Invalid third message, %s", messages[2])
	}
}

func TestDiagnosticsCap(t *testing.T) {

	errs := make([]error, 0)

	for i := 0; i < 50; i++ {
		errs = append(errs, georef.OrphanEntity{Kind: georef.LocalityKind, Code: fmt.Sprintf("%08d", i)})
	}

	messages := diagnostics(errs)

	if len(messages) != MaxDiagnostics {
		t.Fatalf("Invalid message count. Got %d but expected %d", len(messages), MaxDiagnostics)
	}
}

func TestCountFailed(t *testing.T) {

	errs := []error{
		georef.TopologyDerivationFailed{Street: "8209802000001", Reason: "no usable segments"},
		georef.OrphanEntity{Kind: georef.StreetKind, Code: "8209802000002"},
	}

	count := countFailed(errs)

	if count != 1 {
		t.Fatalf("Invalid failed count. Got %d but expected 1", count)
	}
}

func TestReport(t *testing.T) {

	summaries := []*Summary{
		{Kind: georef.ProvinceKind, Status: StageCommitted, Loaded: 24},
		{Kind: georef.DepartmentKind, Status: StageFailed, Err: fmt.Errorf("connection refused")},
		{Kind: georef.MunicipalityKind, Status: StageSkipped},
	}

	report := Report(summaries)

	lines := strings.Split(report, "\n")

	if len(lines) != 3 {
		t.Fatalf("Invalid line count. Got %d but expected 3", len(lines))
	}

	if !strings.Contains(lines[0], "committed") {
		t.Fatalf("Invalid first line, %s", lines[0])
	}

	if !strings.Contains(lines[1], "connection refused") {
		t.Fatalf("Invalid second line, %s", lines[1])
	}

	if !strings.Contains(lines[2], "skipped") {
		t.Fatalf("Invalid third line, %s", lines[2])
	}
}
