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

package image

import "github.com/vcdauthoring/vcdauthor/layout"

// roleKind identifies what a single ISO-track sector is for.
type roleKind int

const (
	roleZero roleKind = iota
	roleDict
	roleSegment
	roleCustomFile
)

// role resolves one LSN within [0, ISOSize) to the content that sector
// belongs to, and its position within that content.
type role struct {
	kind  roleKind
	dict  *layout.DictEntry
	seg   *layout.SegmentItem
	cf    *layout.CustomFile
	local int64 // sector index within the entry/segment/file
}

// buildRoles assigns a role to every sector of the ISO track, so the writer
// can resolve LSN 0..ISOSize-1 with a single slice lookup instead of
// re-scanning the dict and content lists per sector.
func buildRoles(pl *layout.Plan) []role {
	roles := make([]role, pl.ISOSize)

	for i := range pl.Dict {
		d := &pl.Dict[i]
		n := int64(len(d.Buf)) / 2048
		for j := int64(0); j < n; j++ {
			roles[int64(d.StartExtent)+j] = role{kind: roleDict, dict: d, local: j}
		}
	}

	for _, seg := range pl.Params.Segments {
		n := seg.SegmentCount() * 150
		for j := int64(0); j < n; j++ {
			roles[int64(seg.StartExtent)+j] = role{kind: roleSegment, seg: seg, local: j}
		}
	}

	for _, cf := range pl.Params.CustomFiles {
		for j := int64(0); j < int64(cf.Sectors); j++ {
			roles[int64(cf.StartExtent)+j] = role{kind: roleCustomFile, cf: cf, local: j}
		}
	}

	return roles
}
