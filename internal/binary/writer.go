// Copyright (c) 2025 Niema Moshiri and The Zaparoo Project.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of go-gameid.
//
// go-gameid is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// go-gameid is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with go-gameid.  If not, see <https://www.gnu.org/licenses/>.

package binary

import (
	"encoding/binary"
)

// GetUint32LEAt reads a little-endian uint32 out of buf at offset, the
// in-memory counterpart to ReadUint32LEAt for callers that already hold
// the whole buffer in memory.
func GetUint32LEAt(buf []byte, offset int) uint32 {
	return binary.LittleEndian.Uint32(buf[offset : offset+4])
}

// PutUint16LEAt writes a little-endian uint16 into buf at offset.
func PutUint16LEAt(buf []byte, offset int, v uint16) {
	binary.LittleEndian.PutUint16(buf[offset:offset+2], v)
}

// PutUint16BEAt writes a big-endian uint16 into buf at offset.
func PutUint16BEAt(buf []byte, offset int, v uint16) {
	binary.BigEndian.PutUint16(buf[offset:offset+2], v)
}

// PutUint32LEAt writes a little-endian uint32 into buf at offset.
func PutUint32LEAt(buf []byte, offset int, v uint32) {
	binary.LittleEndian.PutUint32(buf[offset:offset+4], v)
}

// PutUint32BEAt writes a big-endian uint32 into buf at offset.
func PutUint32BEAt(buf []byte, offset int, v uint32) {
	binary.BigEndian.PutUint32(buf[offset:offset+4], v)
}

// PutBothEndianUint16At writes v as both little-endian and big-endian uint16,
// the "both-byte-order" encoding ISO9660 uses for the path-table/volume-size
// fields that must be readable regardless of host endianness.
func PutBothEndianUint16At(buf []byte, offset int, v uint16) {
	PutUint16LEAt(buf, offset, v)
	PutUint16BEAt(buf, offset+2, v)
}

// PutBothEndianUint32At writes v as both little-endian and big-endian uint32.
func PutBothEndianUint32At(buf []byte, offset int, v uint32) {
	PutUint32LEAt(buf, offset, v)
	PutUint32BEAt(buf, offset+4, v)
}

// PutStringPadded copies s into buf[offset:offset+n], padding the remainder
// with the given pad byte (ISO9660 text fields are fixed-width and
// space-padded).
func PutStringPadded(buf []byte, offset int, n int, s string, pad byte) {
	dst := buf[offset : offset+n]
	for i := range dst {
		dst[i] = pad
	}
	copy(dst, s)
}

// ToBCD encodes a decimal value 0-99 as a single packed-BCD byte.
func ToBCD(v int) byte {
	return byte((v/10)<<4 | (v % 10)) //nolint:gosec // v is always 0-99 by contract
}

// FromBCD decodes a packed-BCD byte back to its decimal value.
func FromBCD(b byte) int {
	return int(b>>4)*10 + int(b&0x0F)
}
