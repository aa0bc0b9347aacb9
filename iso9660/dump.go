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

package iso9660

import (
	"fmt"

	vbin "github.com/vcdauthoring/vcdauthor/internal/binary"
)

const sectorSize = 2048

// layoutDirs assigns each directory its own extent and rounded byte size,
// in depth-first pre-order starting at baseExtent.
func (b *Builder) layoutDirs(baseExtent uint32) {
	next := baseExtent
	var assign func(d *entry)
	assign = func(d *entry) {
		d.extent = next
		own := ownDirBytes(d)
		d.size = uint32(own)
		next += uint32(own / sectorSize)
		for _, c := range d.children {
			if c.isDir {
				assign(c)
			}
		}
	}
	assign(b.root)
}

// RootRecord returns the root directory's own extent and byte size, valid
// once DumpEntries has run (layoutDirs assigns every directory's extent as
// a side effect of serialization).
func (b *Builder) RootRecord() (extent, size uint32) {
	return b.root.extent, b.root.size
}

// DumpEntries serializes every directory's records (self, parent, and one
// per child, each followed by its 14-byte XA attribute extension) into buf
// at the sector offsets assigned starting at baseExtent.
func (b *Builder) DumpEntries(buf []byte, baseExtent uint32) error {
	b.layoutDirs(baseExtent)

	var dump func(d *entry) error
	dump = func(d *entry) error {
		off := int(d.extent-baseExtent) * sectorSize
		if off+int(d.size) > len(buf) {
			return fmt.Errorf("iso9660: directory at extent %d overruns buffer", d.extent)
		}
		region := buf[off : off+int(d.size)]

		parentExtent := d.extent
		if d.parent != nil {
			parentExtent = d.parent.extent
		}

		pos := 0
		pos += putDirRecord(region[pos:], "\x00", d.extent, d.size, true, dirXA(true))
		pos += putDirRecord(region[pos:], "\x01", parentExtent, parentSizeOf(d), true, dirXA(true))
		for _, c := range d.children {
			pos += putDirRecord(region[pos:], c.name, c.extent, c.size, c.isDir, fileXA(c))
		}

		for _, c := range d.children {
			if c.isDir {
				if err := dump(c); err != nil {
					return err
				}
			}
		}
		return nil
	}
	return dump(b.root)
}

func parentSizeOf(d *entry) uint32 {
	if d.parent != nil {
		return d.parent.size
	}
	return d.size
}

func dirXA(isDir bool) xaFields {
	attrs := XAPermAllRead | XAPermAllExec
	if isDir {
		attrs |= XAAttrDirectory
	}
	return xaFields{attrs: attrs}
}

func fileXA(c *entry) xaFields {
	if c.isDir {
		return dirXA(true)
	}
	attrs := XAPermAllRead | XAPermAllExec
	if c.raw {
		attrs |= XAAttrForm2
	} else {
		attrs |= XAAttrForm1
	}
	return xaFields{attrs: attrs, fileNum: c.fileNum}
}

type xaFields struct {
	attrs   uint16
	fileNum byte
}

// putDirRecord writes one ISO9660 directory record plus its XA extension
// into dst and returns the number of bytes consumed.
func putDirRecord(dst []byte, name string, extent, size uint32, isDir bool, xa xaFields) int {
	n := len(name)
	namePad := 0
	if n%2 == 0 {
		namePad = 1
	}
	recLen := dirRecordMin + n + namePad + xaRecordSize

	dst[0] = byte(recLen)
	dst[1] = 0 // extended attribute record length
	vbin.PutBothEndianUint32At(dst, 2, extent)
	vbin.PutBothEndianUint32At(dst, 10, size)

	// Recording date/time (18-24): left zeroed. The disc image carries no
	// wall-clock timestamp; VCD players never read this field.
	flags := byte(0)
	if isDir {
		flags |= 0x02
	}
	dst[25] = flags
	dst[26] = 0 // file unit size
	dst[27] = 0 // interleave gap size
	vbin.PutBothEndianUint16At(dst, 28, 1)
	dst[32] = byte(n)
	copy(dst[33:33+n], name)

	xaOff := 33 + n + namePad
	vbin.PutUint16BEAt(dst, xaOff, 0)   // user_id
	vbin.PutUint16BEAt(dst, xaOff+2, 0) // group_id
	vbin.PutUint16BEAt(dst, xaOff+4, xa.attrs)
	dst[xaOff+6] = 'X'
	dst[xaOff+7] = 'A'
	dst[xaOff+8] = xa.fileNum
	// dst[xaOff+9 : xaOff+14] reserved, left zero

	return recLen
}

// assignPathNumbers gives every directory its 1-based path table index, in
// the level-then-name order ECMA-119 requires.
func (b *Builder) assignPathNumbers() []*entry {
	var levels [][]*entry
	var collect func(d *entry, depth int)
	collect = func(d *entry, depth int) {
		for len(levels) <= depth {
			levels = append(levels, nil)
		}
		levels[depth] = append(levels[depth], d)
		sortChildren(d)
		for _, c := range d.children {
			if c.isDir {
				collect(c, depth+1)
			}
		}
	}
	collect(b.root, 0)

	var ordered []*entry
	num := 1
	for _, level := range levels {
		for _, d := range level {
			d.pathNum = num
			ordered = append(ordered, d)
			num++
		}
	}
	return ordered
}

// DumpPathTables emits the L-path-table (little-endian extent, LE parent
// index) into lBuf and the M-path-table (big-endian extent, BE parent
// index) into mBuf.
func (b *Builder) DumpPathTables(lBuf, mBuf []byte) error {
	ordered := b.assignPathNumbers()

	lPos, mPos := 0, 0
	for _, d := range ordered {
		parentNum := 1
		if d.parent != nil {
			parentNum = d.parent.pathNum
		}
		name := d.name
		if d == b.root {
			name = "\x00"
		}
		n, err := putPathRecordLE(lBuf[lPos:], name, d.extent, uint16(parentNum))
		if err != nil {
			return err
		}
		lPos += n
		n, err = putPathRecordBE(mBuf[mPos:], name, d.extent, uint16(parentNum))
		if err != nil {
			return err
		}
		mPos += n
	}
	return nil
}

func putPathRecordLE(dst []byte, name string, extent uint32, parentNum uint16) (int, error) {
	n, pad := pathNameLen(name)
	if len(dst) < 8+n+pad {
		return 0, fmt.Errorf("iso9660: path table buffer too small")
	}
	dst[0] = byte(n)
	dst[1] = 0
	vbin.PutUint32LEAt(dst, 2, extent)
	vbin.PutUint16LEAt(dst, 6, parentNum)
	copy(dst[8:8+n], name)
	return 8 + n + pad, nil
}

func putPathRecordBE(dst []byte, name string, extent uint32, parentNum uint16) (int, error) {
	n, pad := pathNameLen(name)
	if len(dst) < 8+n+pad {
		return 0, fmt.Errorf("iso9660: path table buffer too small")
	}
	dst[0] = byte(n)
	dst[1] = 0
	vbin.PutUint32BEAt(dst, 2, extent)
	vbin.PutUint16BEAt(dst, 6, parentNum)
	copy(dst[8:8+n], name)
	return 8 + n + pad, nil
}

func pathNameLen(name string) (n, pad int) {
	n = len(name)
	if n%2 != 0 {
		pad = 1
	}
	return n, pad
}
