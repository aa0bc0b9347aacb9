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

// headerSize is the fixed 4-byte prefix every node carries: a kind tag, an
// item count, and two reserved bytes.
const headerSize = 4

// offsetWidth returns the byte width of every navigation and item reference
// field for a given encoding: 2 bytes for the base VCD-2.0 PSD, 4 bytes for
// the extended 0.4 PSD.
func offsetWidth(wide bool) int {
	if wide {
		return 4
	}
	return 2
}

// sizeOf returns the padded, 8-byte-aligned byte size a node occupies in
// the PSD blob for the given encoding. Offsets recorded during layout are
// this size divided by 8, per the "8-byte units relative to PSD start"
// convention.
func sizeOf(n Node, wide bool) int {
	w := offsetWidth(wide)
	var raw int
	switch v := n.(type) {
	case *PlayList:
		raw = headerSize + 6 + w*3 + w*len(v.Items) // wait, autowait, playtime + prev/next/retn + items
	case *Selection:
		raw = headerSize + 4 + w*3 + w*len(v.Items) // wait + bsn/numloops + prev/default/timeout + items
	case *EndList:
		raw = headerSize + w // next
	case *ExtendedSelection:
		raw = headerSize + 4 + w*3 + w*len(v.Items) + 4 // Selection fields + jump-timing/loop-count
	}
	return pad8(raw)
}

func pad8(n int) int {
	return (n + 7) &^ 7
}

// layout runs PBC compiler pass 2: it assigns each node's 8-byte-unit
// offset, relative to PSD start, in declaration order, for both the base
// and extended encodings.
func (c *Compiler) layout() (base, ext map[string]uint32, err error) {
	base = make(map[string]uint32, len(c.nodes))
	ext = make(map[string]uint32, len(c.nodes))

	var cumBase, cumExt int
	for _, n := range c.nodes {
		base[n.id()] = uint32(cumBase / 8) //nolint:gosec // PSD blobs stay well under 4G*8 bytes
		ext[n.id()] = uint32(cumExt / 8)   //nolint:gosec
		cumBase += sizeOf(n, false)
		cumExt += sizeOf(n, true)
	}
	return base, ext, nil
}

// totalSize returns the overall PSD blob length for the given encoding.
func (c *Compiler) totalSize(wide bool) int {
	total := 0
	for _, n := range c.nodes {
		total += sizeOf(n, wide)
	}
	return total
}
