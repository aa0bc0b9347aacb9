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

package pbc

import (
	"errors"
	"fmt"

	vbin "github.com/vcdauthoring/vcdauthor/internal/binary"
)

// ErrOffsetOverflow is returned when a node's resolved offset does not fit
// the base encoding's 16-bit navigation fields.
var ErrOffsetOverflow = errors.New("pbc: offset does not fit base 16-bit encoding")

// ErrTooManyNodes is returned by LOT construction when a node's LID exceeds
// LOTEntries.
var ErrTooManyNodes = errors.New("pbc: more nodes than a LOT can index")

func tagFor(k nodeKind) byte {
	switch k {
	case kindPlayList:
		return 0
	case kindSelection:
		return 1
	case kindEndList:
		return 2
	case kindExtendedSelection:
		return 3
	default:
		return 0xFF
	}
}

// resolve returns the raw offset value a reference id encodes: another
// node's PSD-relative offset (in 8-byte units) if id names a node, or the
// caller-supplied external symbol value otherwise. ref == nil reports the
// "unavailable" sentinel for the given encoding.
func (c *Compiler) resolve(ref *string, offsets map[string]uint32, wide bool) uint32 {
	if ref == nil {
		if wide {
			return UnavailableExt
		}
		return UnavailableBase
	}
	if v, ok := offsets[*ref]; ok {
		return v
	}
	return c.ext[*ref]
}

func writeOffset(buf []byte, at int, v uint32, wide bool) error {
	if wide {
		vbin.PutUint32BEAt(buf, at, v)
		return nil
	}
	if v != uint32(uint16(v)) {
		return fmt.Errorf("%w: %d", ErrOffsetOverflow, v)
	}
	vbin.PutUint16BEAt(buf, at, uint16(v))
	return nil
}

// seconds16 packs a seconds value into a fixed-point uint16 with one
// decimal digit of precision (matching the tenths-of-a-second granularity
// VCD PBC timing fields use).
func seconds16(s float64) uint16 {
	v := int(s*10 + 0.5)
	if v < 0 {
		v = 0
	}
	if v > 0xFFFF {
		v = 0xFFFF
	}
	return uint16(v) //nolint:gosec // clamped above
}

// emit runs PBC compiler pass 3 for one encoding: it serializes every node,
// in declaration order, into a single PSD blob.
func (c *Compiler) emit(lids map[string]uint16, offsets map[string]uint32, wide bool) ([]byte, error) {
	buf := make([]byte, c.totalSize(wide))
	w := offsetWidth(wide)
	cursor := 0

	for _, n := range c.nodes {
		size := sizeOf(n, wide)
		rec := buf[cursor : cursor+size]
		rec[0] = tagFor(n.kind())

		var err error
		switch v := n.(type) {
		case *PlayList:
			err = c.emitPlayList(rec, v, offsets, wide, w)
		case *Selection:
			err = c.emitSelection(rec, v, offsets, wide, w)
		case *EndList:
			err = c.emitEndList(rec, v, offsets, wide, w)
		case *ExtendedSelection:
			err = c.emitExtendedSelection(rec, v, offsets, wide, w)
		}
		if err != nil {
			return nil, fmt.Errorf("pbc: node %q: %w", n.id(), err)
		}
		cursor += size
	}

	_ = lids // LIDs feed LOT construction, not the PSD bytes themselves.
	return buf, nil
}

func (c *Compiler) emitPlayList(rec []byte, p *PlayList, offsets map[string]uint32, wide bool, w int) error {
	rec[1] = byte(len(p.Items)) //nolint:gosec // bounded by MaxSelectionItems-scale inputs
	vbin.PutUint16BEAt(rec, headerSize, seconds16(p.Wait))
	vbin.PutUint16BEAt(rec, headerSize+2, seconds16(p.AutoWait))
	vbin.PutUint16BEAt(rec, headerSize+4, seconds16(p.PlayTime))

	off := headerSize + 6
	for _, ref := range []*string{p.Prev, p.Next, p.Return} {
		if err := writeOffset(rec, off, c.resolve(ref, offsets, wide), wide); err != nil {
			return err
		}
		off += w
	}
	for _, item := range p.Items {
		s := item
		if err := writeOffset(rec, off, c.resolve(&s, offsets, wide), wide); err != nil {
			return err
		}
		off += w
	}
	return nil
}

func (c *Compiler) emitSelection(rec []byte, s *Selection, offsets map[string]uint32, wide bool, w int) error {
	rec[1] = byte(len(s.Items)) //nolint:gosec
	vbin.PutUint16BEAt(rec, headerSize, seconds16(s.Wait))
	rec[headerSize+2] = byte(s.BSN)      //nolint:gosec // BSN is a small 1-99 menu index
	rec[headerSize+3] = byte(s.NumLoops) //nolint:gosec

	off := headerSize + 4
	for _, ref := range []*string{s.Prev, s.Default, s.Timeout} {
		if err := writeOffset(rec, off, c.resolve(ref, offsets, wide), wide); err != nil {
			return err
		}
		off += w
	}
	for _, item := range s.Items {
		it := item
		if err := writeOffset(rec, off, c.resolve(&it, offsets, wide), wide); err != nil {
			return err
		}
		off += w
	}
	return nil
}

func (c *Compiler) emitEndList(rec []byte, e *EndList, offsets map[string]uint32, wide bool, w int) error {
	return writeOffset(rec, headerSize, c.resolve(e.Next, offsets, wide), wide)
}

func (c *Compiler) emitExtendedSelection(rec []byte, e *ExtendedSelection, offsets map[string]uint32, wide bool, w int) error {
	if err := c.emitSelection(rec, &e.Selection, offsets, wide, w); err != nil {
		return err
	}
	tail := headerSize + 4 + w*3 + w*len(e.Items)
	vbin.PutUint16BEAt(rec, tail, seconds16(e.JumpTiming))
	vbin.PutUint16BEAt(rec, tail+2, uint16(e.LoopCount)) //nolint:gosec // loop counts are small by construction
	return nil
}

// buildLOT renders a full LOTSectors-sector LOT: a zero-padded array of
// LOTEntries 4-byte offsets indexed by LID-1.
func (c *Compiler) buildLOT(lids map[string]uint16, offsets map[string]uint32) ([]byte, error) {
	buf := make([]byte, LOTSectors*2048)
	for id, lid := range lids {
		idx := int(lid) - 1
		if idx >= LOTEntries {
			return nil, fmt.Errorf("%w: LID %d", ErrTooManyNodes, lid)
		}
		vbin.PutUint32BEAt(buf, idx*4, offsets[id])
	}
	return buf, nil
}
