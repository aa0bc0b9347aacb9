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

package layout

import (
	vbin "github.com/vcdauthoring/vcdauthor/internal/binary"
)

// buildPVD renders the Primary Volume Descriptor: type 1, identifier
// "CD001", version 1, the volume label/application id, the path-table
// extents and sizes, and the root directory record.
func buildPVD(p Params, isoSize uint32, dirExtent uint32, dirSize uint32, lPathExtent, mPathExtent uint32, ptSize uint32) []byte {
	buf := make([]byte, sectorSize)
	buf[0] = 1 // volume descriptor type: primary
	copy(buf[1:6], "CD001")
	buf[6] = 1 // version

	vbin.PutStringPadded(buf, 8, 32, "", ' ')          // system id: unused
	vbin.PutStringPadded(buf, 40, 32, p.VolumeLabel, ' ')
	vbin.PutBothEndianUint32At(buf, 80, isoSize)
	vbin.PutBothEndianUint16At(buf, 120, 1) // volume set size
	vbin.PutBothEndianUint16At(buf, 124, 1) // volume sequence number
	vbin.PutBothEndianUint16At(buf, 128, sectorSize)

	vbin.PutBothEndianUint32At(buf, 132, ptSize)
	vbin.PutUint32LEAt(buf, 140, lPathExtent)
	vbin.PutUint32LEAt(buf, 144, 0) // optional L-path-table: unused
	vbin.PutUint32BEAt(buf, 148, mPathExtent)
	vbin.PutUint32BEAt(buf, 152, 0) // optional M-path-table: unused

	rootRecordOff := 156
	putRootDirRecord(buf[rootRecordOff:rootRecordOff+34], dirExtent, dirSize)

	vbin.PutStringPadded(buf, 190, 128, "", ' ') // volume set id: unused
	vbin.PutStringPadded(buf, 318, 128, p.ApplicationID, ' ')
	vbin.PutStringPadded(buf, 446, 128, "", ' ') // copyright file id: unused
	vbin.PutStringPadded(buf, 574, 37, "", ' ')  // abstract file id: unused
	vbin.PutStringPadded(buf, 702, 37, "", ' ')  // bibliographic file id: unused

	buf[881] = 1 // file structure version
	return buf
}

// putRootDirRecord writes the PVD's embedded copy of the root directory
// record: a fixed 34-byte self-record (no XA extension at this position).
func putRootDirRecord(dst []byte, extent, size uint32) {
	dst[0] = 34
	vbin.PutBothEndianUint32At(dst, 2, extent)
	vbin.PutBothEndianUint32At(dst, 10, size)
	dst[25] = 0x02 // directory flag
	vbin.PutBothEndianUint16At(dst, 28, 1)
	dst[32] = 1
	dst[33] = 0 // identifier: single null byte (root)
}

// buildEVD renders the Volume Descriptor Set Terminator: type 255.
func buildEVD() []byte {
	buf := make([]byte, sectorSize)
	buf[0] = 255
	copy(buf[1:6], "CD001")
	buf[6] = 1
	return buf
}
