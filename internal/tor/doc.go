// Package tor lets sectxt reach URLs hosted on Tor onion services.
//
// security.txt files published by onion services often point at other
// .onion resources (policies, keys, contact forms). Those cannot be
// fetched over the clearnet, so the fetch package routes every request
// whose host is a v3 onion address through the SOCKS5 dialer built here.
//
// Two modes are supported:
//   - An external Tor daemon reachable at a SOCKS5 address (--tor-proxy)
//   - An embedded daemon started with tornago (--tor)
package tor
