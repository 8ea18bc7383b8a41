// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package dmxproto

// Checksum computes the XOR checksum over data.
//
// XOR is commutative and associative, so the checksum of a packet can be
// accumulated incrementally as bytes arrive; the per-byte decoder relies
// on this when validating a packet it never held as one contiguous read.
func Checksum(data []byte) byte {
	var sum byte
	for _, b := range data {
		sum ^= b
	}
	return sum
}

// VerifyChecksum checks a complete packet's trailing checksum byte.
// Returns false for packets shorter than the minimum packet size.
func VerifyChecksum(packet []byte) bool {
	if len(packet) < MinPacketSize {
		return false
	}
	return Checksum(packet[:len(packet)-1]) == packet[len(packet)-1]
}
