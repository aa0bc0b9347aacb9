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
	"fmt"

	"github.com/vcdauthoring/vcdauthor/iso9660"
	"github.com/vcdauthoring/vcdauthor/mpeg"
	"github.com/vcdauthoring/vcdauthor/pbc"
)

// sequencePath returns the on-disc ISO9660 path for the i'th (1-based)
// sequence item, honoring the SVCD_VCD3_MPEGAV compatibility flag.
func sequencePath(p Params, i int) string {
	switch {
	case p.Type == SVCD && p.SVCDMPEGAV:
		return fmt.Sprintf("MPEGAV/AVSEQ%02d.DAT", i)
	case p.Type == SVCD:
		return fmt.Sprintf("MPEG2/AVSEQ%02d.MPG", i)
	default:
		return fmt.Sprintf("MPEGAV/AVSEQ%02d.DAT", i)
	}
}

// segmentPath returns the on-disc path for the i'th (1-based, contiguous
// across all segments) segment picture.
func segmentPath(i int) string {
	return fmt.Sprintf("SEGMENT/ITEM%04d.MPG", i)
}

func infoPath(t DiscType) string {
	if t == SVCD {
		return "SVCD/INFO.SVD"
	}
	return "VCD/INFO.VCD"
}

func entriesPath(t DiscType, svcdLegacySig bool) string {
	if t == SVCD {
		if svcdLegacySig {
			return "SVCD/ENTRIES.VCD"
		}
		return "SVCD/ENTRIES.SVD"
	}
	return "VCD/ENTRIES.VCD"
}

func tracksPath() string  { return "SVCD/TRACKS.SVD" }
func searchPath() string  { return "EXT/SEARCH.DAT" }
func lotPath(t DiscType) string {
	if t == SVCD {
		return "SVCD/LOT.SVD"
	}
	return "VCD/LOT.VCD"
}
func psdPath(t DiscType) string {
	if t == SVCD {
		return "SVCD/PSD.SVD"
	}
	return "VCD/PSD.VCD"
}
func lotExtPath() string { return "EXT/LOT_X.VCD" }
func psdExtPath() string { return "EXT/PSD_X.VCD" }
func scanDataPath() string { return "EXT/SCANDATA.DAT" }

// registerTree populates builder with every required directory and file
// entry (step 10 of Compile): the fixed VCD/SVCD directories, the info
// files whose extents were assigned in steps 4-7, the caller's custom
// directories and files, and one entry per sequence and segment item.
// Every extent except the sequence items' (patched in later via SetExtent
// once ISOSize is frozen) must already be assigned on pl before this runs.
func registerTree(b *iso9660.Builder, p Params, pl *Plan) error {
	required := []string{"CDI", "EXT"}
	if p.Type == SVCD {
		required = append(required, "MPEG2", "SVCD")
	} else {
		required = append(required, "MPEGAV", "VCD")
	}
	if len(p.Segments) > 0 {
		required = append(required, "SEGMENT")
	}
	for _, d := range required {
		if err := b.Mkdir(d); err != nil {
			return err
		}
	}
	for _, d := range p.CustomDirs {
		if err := b.Mkdir(d); err != nil {
			return err
		}
	}

	const sectorSize = 2048
	if err := b.Mkfile(infoPath(p.Type), pl.InfoExtent, sectorSize, false, 0); err != nil {
		return err
	}
	if err := b.Mkfile(entriesPath(p.Type, p.SVCDEntrySVD), pl.EntriesExtent, sectorSize, false, 0); err != nil {
		return err
	}
	if pl.HasPBC {
		if err := b.Mkfile(lotPath(p.Type), pl.LOTExtent, uint32(pbc.LOTSectors*sectorSize), false, 0); err != nil {
			return err
		}
		if err := b.Mkfile(psdPath(p.Type), pl.PSDExtent, uint32(len(pl.PBC.PSDBase)), false, 0); err != nil {
			return err
		}
	}
	if p.Type == SVCD {
		if err := b.Mkfile(tracksPath(), pl.TracksExtent, sectorSize, false, 0); err != nil {
			return err
		}
		if err := b.Mkfile(searchPath(), pl.SearchExtent, uint32(searchContentLen(p.Sequences)), false, 0); err != nil {
			return err
		}
	}
	if pl.HasPBC && p.Type == VCD2 {
		if err := b.Mkfile(lotExtPath(), pl.LOTXExtent, uint32(pbc.LOTSectors*sectorSize), false, 0); err != nil {
			return err
		}
		if err := b.Mkfile(psdExtPath(), pl.PSDXExtent, uint32(len(pl.PBC.PSDExtended)), false, 0); err != nil {
			return err
		}
	}
	if p.Type == SVCD {
		if err := b.Mkfile(scanDataPath(), pl.ScanDataExtent, uint32(scanDataContentLen(p.Sequences)), false, 0); err != nil {
			return err
		}
	}

	for i, seq := range p.Sequences {
		// The sequence's own extent is relative to ISOSize and isn't known
		// until the ISO track is sized; register a zero-extent placeholder
		// here, which Compile overwrites via SetExtent with
		// ISOSize+seq.RelativeStartExtent before the tree is dumped.
		if err := b.Mkfile(sequencePath(p, i+1), 0, uint32(seq.Info.PacketCount)*mpeg.PackSize, true, byte(i+1)); err != nil {
			return err
		}
	}

	itemNum := 1
	for _, seg := range p.Segments {
		if err := b.Mkfile(segmentPath(itemNum), seg.StartExtent, uint32(seg.SegmentCount()*150)*2324, true, 0); err != nil {
			return err
		}
		itemNum++
	}

	for _, cf := range p.CustomFiles {
		if err := b.Mkfile(cf.ISOPath, cf.StartExtent, cf.SizeBytes, cf.Raw, cf.FileNum); err != nil {
			return err
		}
	}

	return nil
}
