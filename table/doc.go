// Package table provides a record-oriented view over a single sheet.
//
// # Overview
//
// [New] reads every cell of a [sheet.Sheet] once. The first row becomes the
// field list and every following row becomes a [Record]. The records are kept
// in memory for the lifetime of the [Table]; there is no background refresh.
// Reads are served from memory and always return clones.
//
// # Positions
//
// The record at cache index i lives in sheet row [sheet.DataRow](i): the
// header is row 1 and rows are 1-based. Every mutation performs the matching
// sheet write or delete in the same call and only changes the cache once the
// sheet confirmed it, so the two never drift apart while the table is the
// sheet's only writer. Writes made to the sheet by anyone else are not
// detected.
//
// # Errors
//
// Failures are reported with the sentinel errors of this package, to be
// tested with [errors.Is]. A failed call leaves both the cache and the sheet
// unchanged.
package table
