// Package ocds fetches and flattens Contracts Finder OCDS release
// packages. Each package URI from a daily notice CSV is fetched as JSON
// and flattened into one wide tabular record; multi-valued fields are
// pipe-joined so a notice always stays a single row.
package ocds
