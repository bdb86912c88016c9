package tor

import (
	"encoding/base32"
	"strings"

	"golang.org/x/crypto/sha3"
)

const (
	// onionSuffix is the special-use TLD of onion services.
	onionSuffix = ".onion"

	// v3AddressLength is the number of base32 characters in a v3 address label.
	v3AddressLength = 56

	// v3Version is the trailing version byte of a decoded v3 address.
	v3Version = 0x03
)

// IsOnionHost reports whether host ends in ".onion". Subdomains of an onion
// service ("www.<addr>.onion") count as onion hosts.
func IsOnionHost(host string) bool {
	return strings.HasSuffix(strings.ToLower(strings.TrimSuffix(host, ".")), onionSuffix)
}

// IsValidV3Host reports whether host names a v3 onion service with a valid
// checksum. The checksum is the first two bytes of
// SHA3-256(".onion checksum" || pubkey || version).
func IsValidV3Host(host string) bool {
	host = strings.ToLower(strings.TrimSuffix(host, "."))
	if !strings.HasSuffix(host, onionSuffix) {
		return false
	}

	labels := strings.Split(strings.TrimSuffix(host, onionSuffix), ".")
	addr := labels[len(labels)-1]
	if len(addr) != v3AddressLength {
		return false
	}

	decoded, err := base32.StdEncoding.DecodeString(strings.ToUpper(addr))
	if err != nil || len(decoded) != 35 {
		return false
	}

	pubkey, checksum, version := decoded[:32], decoded[32:34], decoded[34]
	if version != v3Version {
		return false
	}

	data := make([]byte, 0, 15+32+1)
	data = append(data, ".onion checksum"...)
	data = append(data, pubkey...)
	data = append(data, version)
	sum := sha3.Sum256(data)

	return checksum[0] == sum[0] && checksum[1] == sum[1]
}
