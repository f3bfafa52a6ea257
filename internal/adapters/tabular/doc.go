// Package tabular reads daily extract files (CSV and XLSX) as positional
// row streams
//
// Design choices:
// - One-pass readers: Header once, then Next until io.EOF; no replay without reopening.
// - CSV rides encoding/csv with FieldsPerRecord pinned to the header width,
//   so ragged rows surface as row parse errors with a line offset.
// - XLSX rides excelize's streaming Rows iterator; short rows are padded to
//   the header width (trailing empty cells are a format artifact, not damage),
//   over-wide rows are rejected.
// - Open dispatches on the filename extension so the merge stage never cares
//   which format a day arrived in
package tabular
