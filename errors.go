package georef

import (
	"fmt"
)

// GeometryInvalid signals a raw feature whose geometry is empty, of the
// wrong topological dimension, or broken beyond repair. It is recoverable:
// the feature is skipped and the batch continues.
type GeometryInvalid struct {
	Ref    string
	Reason string
}

func (e GeometryInvalid) Error() string {
	return fmt.Sprintf("Invalid geometry for '%s': %s", e.Ref, e.Reason)
}

func (e GeometryInvalid) String() string {
	return e.Error()
}

// OrphanEntity signals a child entity with no overlapping parent. It is
// recoverable: the entity is excluded from the load unless a force-include
// policy is configured.
type OrphanEntity struct {
	Kind Kind
	Code string
}

func (e OrphanEntity) Error() string {
	return fmt.Sprintf("No parent found for %s '%s'", e.Kind, e.Code)
}

func (e OrphanEntity) String() string {
	return e.Error()
}

// TopologyDerivationFailed signals a street whose geometry could not be
// decomposed. It is recoverable: that street's derived entities are skipped.
type TopologyDerivationFailed struct {
	Street string
	Reason string
}

func (e TopologyDerivationFailed) Error() string {
	return fmt.Sprintf("Failed to derive topology for street '%s': %s", e.Street, e.Reason)
}

func (e TopologyDerivationFailed) String() string {
	return e.Error()
}

// ReferentialViolation signals a load stage that failed its uniqueness or
// foreign-key checks. It is fatal to that stage and to every stage depending
// on it.
type ReferentialViolation struct {
	Kind Kind
	Err  error
}

func (e ReferentialViolation) Error() string {
	return fmt.Sprintf("Referential violation loading %s: %v", e.Kind, e.Err)
}

func (e ReferentialViolation) String() string {
	return e.Error()
}

func (e ReferentialViolation) Unwrap() error {
	return e.Err
}

// SourceUnavailable signals a raw source that could not be opened or read.
// It is fatal to the run.
type SourceUnavailable struct {
	URI string
	Err error
}

func (e SourceUnavailable) Error() string {
	return fmt.Sprintf("Source '%s' unavailable: %v", e.URI, e.Err)
}

func (e SourceUnavailable) String() string {
	return e.Error()
}

func (e SourceUnavailable) Unwrap() error {
	return e.Err
}

func IsGeometryInvalid(e error) bool {

	switch e.(type) {
	case GeometryInvalid, *GeometryInvalid:
		return true
	default:
		return false
	}
}

func IsOrphanEntity(e error) bool {

	switch e.(type) {
	case OrphanEntity, *OrphanEntity:
		return true
	default:
		return false
	}
}

func IsTopologyDerivationFailed(e error) bool {

	switch e.(type) {
	case TopologyDerivationFailed, *TopologyDerivationFailed:
		return true
	default:
		return false
	}
}

func IsReferentialViolation(e error) bool {

	switch e.(type) {
	case ReferentialViolation, *ReferentialViolation:
		return true
	default:
		return false
	}
}

func IsSourceUnavailable(e error) bool {

	switch e.(type) {
	case SourceUnavailable, *SourceUnavailable:
		return true
	default:
		return false
	}
}
