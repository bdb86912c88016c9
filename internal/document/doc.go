// Package document validates a whole security.txt file and produces its
// canonical body.
//
// ValidateAndFormat is a single pass over the input lines. Each line is
// classified, validated by the field package and either appended to the
// output or dropped with a diagnostic. Rules that span lines live here:
// Expires and Preferred-Languages may appear once, at least one Contact is
// required, blank lines never repeat and the output ends with exactly one
// newline.
//
// Running ValidateAndFormat on its own output (with the same clock, key
// and network answers) returns the same document.
package document
