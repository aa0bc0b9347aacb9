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

import (
	"testing"

	"github.com/vcdauthoring/vcdauthor/layout"
	"github.com/vcdauthoring/vcdauthor/mpeg"
)

func TestBuildRolesAssignsEachRegion(t *testing.T) {
	t.Parallel()

	dict := layout.DictEntry{Name: "pvd", StartExtent: 16, Buf: make([]byte, 2048)}
	seg := &layout.SegmentItem{ID: "ITEM0001", StartExtent: 150, Info: mpeg.Info{PacketCount: 1}}
	cf := &layout.CustomFile{ISOPath: "README.TXT", StartExtent: 310, Sectors: 2}

	pl := &layout.Plan{
		ISOSize: 312,
		Dict:    []layout.DictEntry{dict},
		Params: layout.Params{
			Segments:    []*layout.SegmentItem{seg},
			CustomFiles: []*layout.CustomFile{cf},
		},
	}

	roles := buildRoles(pl)

	if roles[16].kind != roleDict || roles[16].dict.Name != "pvd" {
		t.Errorf("lsn 16: got role %+v, want dict entry pvd", roles[16])
	}
	if roles[15].kind != roleZero {
		t.Errorf("lsn 15: got role %+v, want roleZero", roles[15])
	}

	for lsn := 150; lsn < 300; lsn++ {
		if roles[lsn].kind != roleSegment || roles[lsn].seg != seg {
			t.Fatalf("lsn %d: got role %+v, want segment", lsn, roles[lsn])
		}
	}
	if roles[149].kind != roleZero {
		t.Errorf("lsn 149: got role %+v, want roleZero", roles[149])
	}
	if roles[300].kind != roleZero {
		t.Errorf("lsn 300 (past segment's 150-sector block, before the custom file): got role %+v, want roleZero", roles[300])
	}

	for lsn := 310; lsn < 312; lsn++ {
		if roles[lsn].kind != roleCustomFile || roles[lsn].cf != cf {
			t.Fatalf("lsn %d: got role %+v, want custom file", lsn, roles[lsn])
		}
	}
}
