// Package fetch retrieves the web resources a security.txt refers to.
//
// The validators only need two answers from the network: the status of a
// URL (did it answer 200, possibly after redirects) and, for Encryption
// fields, the body of a key document. Client answers both over HTTPS and
// routes .onion hosts through Tor. Prefetch resolves every URL of a
// document concurrently ahead of the sequential validation pass and
// serves the memoized answers afterwards.
package fetch
