package pipeline

import (
	"fmt"
	"strings"

	"github.com/georef-ar/go-georef-etl"
)

type StageStatus string

const (
	StageCommitted StageStatus = "committed"
	StageFailed    StageStatus = "failed"
	StageSkipped   StageStatus = "skipped"
)

// MaxDiagnostics caps the number of diagnostic messages reported per error
// kind per stage.
const MaxDiagnostics = 10

// Summary reports the outcome of one stage.
type Summary struct {
	Kind        georef.Kind `json:"kind"`
	Status      StageStatus `json:"status"`
	Loaded      int         `json:"loaded"`
	Skipped     int         `json:"skipped"`
	Failed      int         `json:"failed"`
	Diagnostics []string    `json:"diagnostics,omitempty"`
	Err         error       `json:"-"`
}

func (s *Summary) String() string {

	msg := fmt.Sprintf("%-14s %-9s loaded: %d skipped: %d failed: %d", s.Kind, s.Status, s.Loaded, s.Skipped, s.Failed)

	if s.Err != nil {
		msg = fmt.Sprintf("%s (%v)", msg, s.Err)
	}

	return msg
}

// diagnostics folds accumulated per-entity errors into at most
// MaxDiagnostics messages per error kind.
func diagnostics(errs []error) []string {

	buckets := make(map[string][]string)
	order := make([]string, 0)

	for _, err := range errs {

		var label string

		switch {
		case georef.IsGeometryInvalid(err):
			label = "geometry"
		case georef.IsOrphanEntity(err):
			label = "orphan"
		case georef.IsTopologyDerivationFailed(err):
			label = "topology"
		default:
			label = "other"
		}

		_, exists := buckets[label]

		if !exists {
			order = append(order, label)
		}

		if len(buckets[label]) < MaxDiagnostics {
			buckets[label] = append(buckets[label], err.Error())
		}
	}

	messages := make([]string, 0)

	for _, label := range order {

		for _, msg := range buckets[label] {
			messages = append(messages, fmt.Sprintf("[%s] %s", label, msg))
		}
	}

	return messages
}

// countFailed tallies the errors that represent per-entity derivation
// failures rather than skipped features.
func countFailed(errs []error) int {

	failed := 0

	for _, err := range errs {

		if georef.IsTopologyDerivationFailed(err) {
			failed = failed + 1
		}
	}

	return failed
}

// Report renders the per-stage summaries as a human-readable table.
func Report(summaries []*Summary) string {

	lines := make([]string, 0, len(summaries))

	for _, s := range summaries {
		lines = append(lines, s.String())
	}

	return strings.Join(lines, "\n")
}
