// Package fingerprint computes Avro schema fingerprints over a Parsing
// Canonical Form byte string. Used by each schema node's cached
// Fingerprint() method in the main avro package.
package fingerprint

import "hash/crc64"

// Table is the hash/crc64 table built from the constant
// 0xc15d213aa4d7a795 (the 64-bit fingerprint constant of the Avro
// specification).
var Table = crc64.MakeTable(0xc15d213aa4d7a795)

// CRC64 hashes data (expected to be a schema's Parsing Canonical Form)
// with hash/crc64 over Table.
func CRC64(data []byte) uint64 {
	h := crc64.New(Table)
	h.Write(data)
	return h.Sum64()
}
