// Package pipeline ties the compliance engine together. One Run loads
// the catalog, normalizes both listings, selects and evaluates rules,
// scores and compares the sections, generates suggestions, renders the
// markdown report, and persists the run to history.
package pipeline
