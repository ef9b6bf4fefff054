// Package dataset loads marketplace listing exports into typed product
// records and cleans them for aggregation.
//
// The package owns the first two stages of the analysis pipeline:
//
//	upload -> Loader -> Cleaner -> analytics
//
// The Loader parses an .xlsx export, validates the header against the
// required column set, and maps each row into a ProductRecord. Parsed
// tables are memoized per session by Cache, keyed by content hash, so a
// repeated upload of the same file never triggers a second parse.
//
// The Cleaner deduplicates records by ASIN (first occurrence wins) and
// drops records without a revenue value. Cleaning is idempotent.
package dataset
