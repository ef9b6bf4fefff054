// Package analytics derives dashboard metrics from a cleaned listing
// table: scalar KPIs, top-N rankings, market shares, per-group means,
// value counts and the revenue-per-review engagement ratio.
//
// Every function here is pure: it reads the table it is given and
// returns a fresh value. Arithmetic edge cases (a percentage of a zero
// total, a ratio over zero reviews) never fail; they produce sentinel
// values that marshal to JSON null.
package analytics
