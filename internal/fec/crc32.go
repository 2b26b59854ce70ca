// Package fec provides the checksum used to guard detection frames and
// exported symbol captures against corruption in transit.
package fec

import (
	"encoding/binary"
	"hash/crc32"
)

// Checksum returns the IEEE CRC-32 of data.
func Checksum(data []byte) uint32 {
	return crc32.ChecksumIEEE(data)
}

// Append returns data with its CRC-32 appended as a trailing big-endian
// uint32.
func Append(data []byte) []byte {
	sum := Checksum(data)
	out := make([]byte, len(data)+4)
	copy(out, data)
	binary.BigEndian.PutUint32(out[len(data):], sum)
	return out
}

// Verify splits dataWithCRC into payload and trailing CRC-32, returning the
// payload and whether the checksum matches. If dataWithCRC is shorter than
// 4 bytes it is rejected.
func Verify(dataWithCRC []byte) ([]byte, bool) {
	if len(dataWithCRC) < 4 {
		return nil, false
	}
	split := len(dataWithCRC) - 4
	payload := dataWithCRC[:split]
	want := binary.BigEndian.Uint32(dataWithCRC[split:])
	return payload, Checksum(payload) == want
}
