// Package georef provides common types for building a hierarchically
// consistent geographic reference dataset (provinces, departments,
// municipalities, localities, streets, street intersections and street
// blocks) from heterogeneous raw vector sources.
package georef
