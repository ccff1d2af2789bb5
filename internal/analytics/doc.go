// Package analytics holds the pure computations over a session's records:
// filtering, Pareto concentration, priority scoring, capture simulation and
// the KPI sections built on top of them.
//
// Every function takes its inputs by value and returns new slices; the base
// records are never modified. Functions that depend on optional source
// columns accept a domain.Schema and fall back to neutral values (zero, empty,
// no restriction) when a column is missing.
package analytics
