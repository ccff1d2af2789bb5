// Package services holds the session state behind the HTTP API and the CLI.
//
// A SessionService owns one immutable base dataset and the current filter
// selection. Loading a table replaces the dataset wholesale; every analytic
// is recomputed from the base set and the selection on each call, so readers
// never observe a partially updated session.
//
// Reads take a shared lock and work on the dataset snapshot they captured;
// Load, Reset and SetSelection take the exclusive lock only to swap state.
package services
