// Package main provides the entry point for the sectxt CLI.
//
// sectxt validates and normalizes RFC 9116 security.txt files, rewrites
// their Expires field and clear-signs them with an OpenPGP key.
//
// Usage:
//
//	sectxt check security.txt
//	sectxt sign security.txt --key security@example.com --keyring team.asc
//	sectxt history security.txt
//
// See --help for all available options.
package main

// main is the entry point for sectxt.
func main() {
	Execute()
}
