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

package xasector

// edcTable is the reflected CRC-32 table for the CD-ROM/CD-ROM XA EDC field
// (ECMA-130 / Yellow Book), generator polynomial 0xD8018001. No library in
// the retrieval pack implements this exact construction (it differs from
// CRC-32/IEEE, which is what klauspost/compress and the stdlib hash/crc32
// package provide) — see DESIGN.md.
var edcTable = buildEDCTable()

func buildEDCTable() [256]uint32 {
	var table [256]uint32
	for i := range uint32(256) {
		edc := i
		for range 8 {
			if edc&1 != 0 {
				edc = (edc >> 1) ^ 0xD8018001
			} else {
				edc >>= 1
			}
		}
		table[i] = edc
	}
	return table
}

// ComputeEDC computes the CD-ROM XA EDC over buf, starting from an initial
// value of 0 as specified for Mode-2 sectors.
func ComputeEDC(buf []byte) uint32 {
	var edc uint32
	for _, b := range buf {
		edc = (edc >> 8) ^ edcTable[byte(edc)^b]
	}
	return edc
}
