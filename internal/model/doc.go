// Package model defines the data structures shared by the sectxt packages.
//
// This package contains the following main types:
//   - SigningKey: The OpenPGP key a document is going to be signed with
//   - Diagnostic: A warning or error attached to one line of a document
//   - Result: The outcome of validating one document
//   - Run: One file moving through the check/sign pipeline
//
// Design decision: We keep these types in their own package so that the
// validator, report, store and pipeline packages can share them without
// import cycles. All of them serialize to JSON for reports and the history
// database.
package model
