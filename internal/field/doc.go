// Package field classifies security.txt lines and validates each field kind.
//
// Classification turns a raw line into a Line tagged with its Kind.
// Validation is a function of one Line and an Env of capabilities (URL
// fetching, fingerprint cross-reference, the resolved expiration) and
// returns a Decision: keep the line as is, keep a repaired version with a
// warning, or drop it with a reason.
//
// Validators never look at other lines. Rules that span lines (once-only
// fields, the mandatory Contact, blank-line handling) belong to the
// document package.
package field
