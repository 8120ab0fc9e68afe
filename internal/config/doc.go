// Package config defines the format-agnostic model of a tiled wall layout:
// the logical canvas, the machines driving it, and the rectangular tile each
// machine renders.
//
// # Lifecycle
//
// A Layout is produced exactly once at startup by a format adapter (see the
// Loader interface) and is immutable afterwards. Every other component
// (identity resolution, viewport derivation, group membership) reads it and
// never writes it, so it is shared across the frame loop without locking.
//
// # Validation Philosophy
//
// Validate enforces structural sanity (positive dimensions, in-bounds tiles,
// unique identities). Geometric tiling correctness, that tiles actually
// cover the canvas without overlap, is the operator's responsibility;
// overlap rejection is an opt-in strictness knob, not a default, because
// deliberately overlapping setups (edge-blended projectors) are legitimate.
package config
