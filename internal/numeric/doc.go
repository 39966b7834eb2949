// Package numeric holds the pure, deterministic transforms behind the
// dashboard views: percentiles, domain discovery, top-N reduction with an
// "other" bucket, rolling means, and the turn-angle / maneuver-score
// derivation over a trajectory.
//
// Nothing here reads or writes shared state. Inputs are never mutated.
package numeric
