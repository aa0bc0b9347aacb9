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
	"github.com/vcdauthoring/vcdauthor/iso9660"
	"github.com/vcdauthoring/vcdauthor/mpeg"
	"github.com/vcdauthoring/vcdauthor/vcdinfo"
)

// searchSectors returns the number of sectors SEARCH.DAT needs: a 16-byte
// header plus one 4-byte LSN per half-second of total playtime across every
// sequence.
func searchSectors(seqs []*SequenceItem) int64 {
	return ceilDiv(searchContentLen(seqs), sectorSize)
}

// scanDataSectors returns the number of sectors SCANDATA.DAT needs: a
// 12-byte header plus one 4-byte LSN per packet (of any type) across every
// sequence.
func scanDataSectors(seqs []*SequenceItem) int64 {
	return ceilDiv(scanDataContentLen(seqs), sectorSize)
}

// searchContentLen returns SEARCH.DAT's real (unpadded) byte length, the
// value its directory record reports.
func searchContentLen(seqs []*SequenceItem) int64 {
	var points int64
	for _, s := range seqs {
		points += int64(s.Info.Playtime*2 + 0.999999)
	}
	return 16 + points*4
}

// scanDataContentLen returns SCANDATA.DAT's real (unpadded) byte length.
func scanDataContentLen(seqs []*SequenceItem) int64 {
	var frames int64
	for _, s := range seqs {
		frames += int64(s.Info.PacketCount)
	}
	return 12 + frames*4
}

func toVCDInfoType(t DiscType) vcdinfo.DiscType {
	switch t {
	case VCD11:
		return vcdinfo.TypeVCD11
	case SVCD:
		return vcdinfo.TypeSVCD
	default:
		return vcdinfo.TypeVCD2
	}
}

// collectEntries builds one ENTRIES.VCD/SVD record per named entry point,
// approximating its LSN from the sequence's average packets-per-second
// ratio.
func collectEntries(p Params, isoSize uint32) []vcdinfo.EntryPoint {
	var out []vcdinfo.EntryPoint
	for i, seq := range p.Sequences {
		ratio := 0.0
		if seq.Info.Playtime > 0 {
			ratio = float64(seq.Info.PacketCount) / seq.Info.Playtime
		}
		for _, e := range seq.Entries {
			off := uint32(e.Time * ratio)
			out = append(out, vcdinfo.EntryPoint{
				Track: byte(i + 1), //nolint:gosec // capped at 99 sequences
				LSN:   isoSize + seq.RelativeStartExtent + off,
			})
		}
	}
	return out
}

// collectTracks builds one TRACKS.SVD record per sequence. The source
// format carries no per-track CGMS/audio-info input in this layer, so every
// record reports the unrestricted default.
func collectTracks(p Params) []vcdinfo.TrackInfo {
	tracks := make([]vcdinfo.TrackInfo, len(p.Sequences))
	return tracks
}

// buildScanPoints renders one SEARCH.DAT scan point per half-second of
// playtime, mapped to the nearest preceding packet via the sequence's
// average packets-per-second ratio.
func buildScanPoints(p Params, isoSize uint32) []vcdinfo.ScanPoint {
	var out []vcdinfo.ScanPoint
	for _, seq := range p.Sequences {
		ratio := 0.0
		if seq.Info.Playtime > 0 {
			ratio = float64(seq.Info.PacketCount) / seq.Info.Playtime
		}
		n := int(seq.Info.Playtime*2 + 0.999999)
		for k := 0; k < n; k++ {
			t := float64(k) * 0.5
			off := uint32(t * ratio)
			out = append(out, vcdinfo.ScanPoint{LSN: isoSize + seq.RelativeStartExtent + off})
		}
	}
	return out
}

// buildFrameOffsets renders SCANDATA.DAT's dense table: the LSN of every
// packet (of any type), in playback order.
func buildFrameOffsets(p Params, isoSize uint32) []uint32 {
	var out []uint32
	for _, seq := range p.Sequences {
		base := isoSize + seq.RelativeStartExtent
		for j := 0; j < seq.Info.PacketCount; j++ {
			out = append(out, base+uint32(j)) //nolint:gosec // packet counts stay well under 2^32
		}
	}
	return out
}

// padToSector pads buf with zero bytes up to the next sectorSize boundary.
func padToSector(buf []byte) []byte {
	n := ceilDiv(int64(len(buf)), sectorSize) * sectorSize
	if int64(len(buf)) == n {
		return buf
	}
	out := make([]byte, n)
	copy(out, buf)
	return out
}

func dominantNorm(p Params) mpeg.Norm {
	for _, s := range p.Sequences {
		return s.Info.Norm
	}
	return mpeg.NormOther
}

// buildDict renders every staged sector buffer — the PVD/EVD, the
// directory records and path tables, the VCD/SVCD info files, and the PBC
// LOT/PSD blobs — now that every extent in the plan is frozen, and records
// them as DictEntry values the image writer streams out in LSN order.
func (pl *Plan) buildDict(b *iso9660.Builder) error {
	p := pl.Params

	dirSectors := int64(b.DirSectors())
	ptSectors := int64(b.PathTableSectors())
	dirExtent := uint32(dirRegionStart)
	lPathExtent := uint32(dirRegionStart) + uint32(dirSectors)
	mPathExtent := lPathExtent + uint32(ptSectors)

	dirBuf := make([]byte, dirSectors*sectorSize)
	if err := b.DumpEntries(dirBuf, dirExtent); err != nil {
		return err
	}
	rootExtent, rootSize := b.RootRecord()

	lBuf := make([]byte, ptSectors*sectorSize)
	mBuf := make([]byte, ptSectors*sectorSize)
	if err := b.DumpPathTables(lBuf, mBuf); err != nil {
		return err
	}

	pvd := buildPVD(p, pl.ISOSize, rootExtent, rootSize, lPathExtent, mPathExtent, uint32(b.PathTableSize()))
	evd := buildEVD()

	pl.Dict = append(pl.Dict,
		DictEntry{Name: "PVD", StartExtent: PVDExtent, Buf: pvd, EOR: true, EOF: true},
		DictEntry{Name: "EVD", StartExtent: EVDExtent, Buf: evd, EOR: true, EOF: true},
		DictEntry{Name: "DIR", StartExtent: dirExtent, Buf: dirBuf, EOR: true, EOF: true},
		DictEntry{Name: "PATH_L", StartExtent: lPathExtent, Buf: lBuf, EOR: true, EOF: true},
		DictEntry{Name: "PATH_M", StartExtent: mPathExtent, Buf: mBuf, EOR: true, EOF: true},
	)

	infoBuf := make([]byte, sectorSize)
	info := vcdinfo.InfoFields{
		Type:            toVCDInfoType(p.Type),
		VolumeCount:     p.VolumeCount,
		VolumeNumber:    p.VolumeNumber,
		AlbumID:         p.AlbumID,
		FirstSegmentLSN: pl.MPEGSegmentStartExtent,
		Restriction:     p.Restriction,
	}
	if pl.HasPBC {
		info.PSDSize = uint32(len(pl.PBC.PSDBase))
		info.MaxLID = pl.PBC.MaxLID
	}
	if p.Type == SVCD {
		info.ScanOffsetsUpdated = p.UpdateScanOffs
	}
	if err := vcdinfo.WriteInfo(infoBuf, info); err != nil {
		return err
	}
	pl.Dict = append(pl.Dict, DictEntry{Name: "INFO", StartExtent: pl.InfoExtent, Buf: infoBuf, EOR: true, EOF: true})

	entriesBuf := make([]byte, sectorSize)
	if err := vcdinfo.WriteEntries(entriesBuf, toVCDInfoType(p.Type), collectEntries(p, pl.ISOSize)); err != nil {
		return err
	}
	pl.Dict = append(pl.Dict, DictEntry{Name: "ENTRIES", StartExtent: pl.EntriesExtent, Buf: entriesBuf, EOR: true, EOF: true})

	if pl.HasPBC {
		lotBuf := padToSector(pl.PBC.LOTBase)
		psdBuf := padToSector(pl.PBC.PSDBase)
		pl.Dict = append(pl.Dict,
			DictEntry{Name: "LOT", StartExtent: pl.LOTExtent, Buf: lotBuf, EOR: true, EOF: true},
			DictEntry{Name: "PSD", StartExtent: pl.PSDExtent, Buf: psdBuf, EOR: true, EOF: true},
		)
		if p.Type == VCD2 {
			lotXBuf := padToSector(pl.PBC.LOTExtended)
			psdXBuf := padToSector(pl.PBC.PSDExtended)
			pl.Dict = append(pl.Dict,
				DictEntry{Name: "LOT_X", StartExtent: pl.LOTXExtent, Buf: lotXBuf, EOR: true, EOF: true},
				DictEntry{Name: "PSD_X", StartExtent: pl.PSDXExtent, Buf: psdXBuf, EOR: true, EOF: true},
			)
		}
	}

	if p.Type == SVCD {
		tracksBuf := make([]byte, sectorSize)
		if err := vcdinfo.WriteTracks(tracksBuf, collectTracks(p)); err != nil {
			return err
		}
		pl.Dict = append(pl.Dict, DictEntry{Name: "TRACKS", StartExtent: pl.TracksExtent, Buf: tracksBuf, EOR: true, EOF: true})

		searchN := searchSectors(p.Sequences)
		searchBuf := make([]byte, searchN*sectorSize)
		if err := vcdinfo.WriteSearch(searchBuf, dominantNorm(p), buildScanPoints(p, pl.ISOSize)); err != nil {
			return err
		}
		pl.Dict = append(pl.Dict, DictEntry{Name: "SEARCH", StartExtent: pl.SearchExtent, Buf: searchBuf, EOR: true, EOF: true})

		scanN := scanDataSectors(p.Sequences)
		scanBuf := make([]byte, scanN*sectorSize)
		if err := vcdinfo.WriteScanData(scanBuf, buildFrameOffsets(p, pl.ISOSize)); err != nil {
			return err
		}
		pl.Dict = append(pl.Dict, DictEntry{Name: "SCANDATA", StartExtent: pl.ScanDataExtent, Buf: scanBuf, EOR: true, EOF: true})
	}

	return nil
}
