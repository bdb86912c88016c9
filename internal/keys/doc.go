// Package keys loads OpenPGP signing keys and clear-signs documents.
//
// A Ring is read from a keyring file, armored or binary, as exported by
// "gpg --export-secret-keys". Keys are addressed by any hexadecimal
// suffix of their fingerprint (short key ID, long key ID or the full
// fingerprint) or by a fragment of a user ID such as an email address.
package keys
