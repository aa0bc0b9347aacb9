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

package vcdauthor

import "github.com/vcdauthoring/vcdauthor/pbc"

// Numeric bands the external symbol table's values are drawn from, one
// per id kind, so two ids in different namespaces never collide on value
// even though nothing downstream currently reads more than a symbol's
// presence (pbc.Compiler's validateReferences only checks that an id
// resolves, never what it resolves to). Sequence numbers line up with
// sequencePath's 1-based AVSEQ numbering; segment and entry bands sit
// comfortably above the 99-sequence ceiling AddSequence enforces.
const (
	sequenceSymbolBase = 0
	segmentSymbolBase  = 1000
	entrySymbolBase    = 100000
)

// buildSymbolTable assembles the pbc.SymbolTable every cross-reference
// into a sequence, segment or entry point resolves against. d.claimID has
// already guaranteed every id here is unique across all four namespaces
// (sequences, segments, entries, PBC nodes), so this is pure assembly, not
// validation — uniqueness was already enforced at Add-time.
func (d *Disc) buildSymbolTable() pbc.SymbolTable {
	table := make(pbc.SymbolTable, len(d.ids))

	for i, seq := range d.sequences {
		if seq.ID != "" {
			table[seq.ID] = uint32(sequenceSymbolBase + i + 1) //nolint:gosec // bounded by the 99-sequence cap
		}
	}
	for i, seg := range d.segments {
		if seg.ID != "" {
			table[seg.ID] = uint32(segmentSymbolBase + i + 1) //nolint:gosec // segment counts stay well below 2^32
		}
	}
	entryNum := 0
	for _, seq := range d.sequences {
		for _, e := range seq.Entries {
			if e.ID != "" {
				table[e.ID] = uint32(entrySymbolBase + entryNum) //nolint:gosec // entry counts stay well below 2^32
			}
			entryNum++
		}
	}

	return table
}
