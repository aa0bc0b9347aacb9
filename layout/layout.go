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

// Package layout drives the sector allocator, ISO9660 builder, info-file
// writers and PBC compiler to assign every sector of a VCD/SVCD image to
// exactly one role. Compile runs once, deterministically, and freezes a
// Plan the image writer then walks in ascending LSN order.
package layout

import (
	"errors"
	"fmt"

	"github.com/vcdauthoring/vcdauthor/allocator"
	"github.com/vcdauthoring/vcdauthor/iso9660"
	"github.com/vcdauthoring/vcdauthor/mpeg"
	"github.com/vcdauthoring/vcdauthor/pbc"
	"github.com/vcdauthoring/vcdauthor/source"
)

// DiscType selects which flavor of VCD/SVCD layout rules apply.
type DiscType int

const (
	VCD11 DiscType = iota
	VCD2
	SVCD
)

// sectorSize is the 2048-byte logical block size every dict entry and
// directory region is measured in.
const sectorSize = 2048

// Fixed sector addresses mandated by the on-disc layout invariants.
const (
	systemAreaSectors = 16 // LSN 0..15
	PVDExtent         = 16
	EVDExtent         = 17
	dirRegionStart    = 18

	// MinISOSize is the smallest permitted ISO track length.
	MinISOSize = 75

	// MaxTotalSectors is the largest address a 74-minute-class disc can
	// hold; exceeding it is a fatal LayoutError.
	MaxTotalSectors = 333000
)

var (
	// ErrConfig reports a configuration problem: something the caller gave
	// layout.Compile that can never be laid out, independent of sector
	// placement (an empty sequence list, an unresolved PBC cross-reference).
	ErrConfig = errors.New("layout: configuration error")

	// ErrLayout reports that a valid configuration still doesn't fit the
	// address space or a fixed-size region (directory overflow, total
	// sectors beyond MaxTotalSectors).
	ErrLayout = errors.New("layout: does not fit")

	// ErrInvariant reports an internal allocator inconsistency: a fixed
	// reservation failed unexpectedly. This always signals a bug in this
	// package, never a user error.
	ErrInvariant = errors.New("layout: invariant violation")
)

// EntryPoint is a sequence item's named time index.
type EntryPoint struct {
	ID   string
	Time float64
}

// PausePoint is a sequence item's named pause index.
type PausePoint struct {
	ID   string
	Time float64
}

// SequenceItem is one MPEG-PS track.
type SequenceItem struct {
	ID                  string
	Source              source.Opener // reopened fresh for each write pass
	Info                mpeg.Info
	Entries             []EntryPoint
	Pauses              []PausePoint
	RelativeStartExtent uint32 // assigned by Compile, relative to ISOSize
}

// SegmentItem is one MPEG still-picture group.
type SegmentItem struct {
	ID          string
	Source      source.Opener
	Info        mpeg.Info
	StartExtent uint32 // assigned by Compile, 150-sector aligned
}

// SegmentCount returns ceil(packets / 150), the number of 150-sector
// blocks the segment occupies.
func (s *SegmentItem) SegmentCount() int64 {
	return ceilDiv(int64(s.Info.PacketCount), 150)
}

// CustomFile is a user-supplied file placed into the ISO9660 tree.
type CustomFile struct {
	ISOPath     string
	Source      source.Opener
	SizeBytes   uint32
	Raw         bool // raw Mode-2 (2336-byte sectors) vs Form1 (2048-byte)
	FileNum     byte
	StartExtent uint32
	Sectors     uint32
}

// ChunkSize returns the byte size of one on-disc sector for this file: 2336
// (raw Mode-2, subheader+payload+EDC already assembled by the caller) or
// 2048 (Form1, the image writer wraps each chunk itself).
func (c *CustomFile) ChunkSize() uint32 {
	return c.sectorSize()
}

func (c *CustomFile) sectorSize() uint32 {
	if c.Raw {
		return 2336
	}
	return 2048
}

func (c *CustomFile) sectorCount() int64 {
	if c.SizeBytes == 0 {
		return 1 // placeholder, per step 8
	}
	return ceilDiv(int64(c.SizeBytes), int64(c.sectorSize()))
}

// Params describes everything Compile needs to place a disc's content.
type Params struct {
	Type           DiscType
	VolumeLabel    string
	ApplicationID  string
	AlbumID        string
	VolumeCount    uint16
	VolumeNumber   uint16
	Restriction    byte
	RelaxedAPS     bool
	SVCDMPEGAV     bool // SVCD_VCD3_MPEGAV compat flag
	SVCDEntrySVD   bool // SVCD_VCD3_ENTRYSVD: SVCD entries file named ENTRIES.VCD (signature unchanged)
	UpdateScanOffs bool

	Sequences   []*SequenceItem
	Segments    []*SegmentItem
	CustomFiles []*CustomFile
	CustomDirs  []string

	PBCNodes   []pbc.Node
	PBCSymbols pbc.SymbolTable

	// Gap parameters, in sectors; set by disc type (VCD and SVCD use
	// different defaults) before Compile is called.
	PreTrackGap  int64
	PreDataGap   int64
	PostDataGap  int64
}

// DictEntry is a named, pre-allocated LSN range holding the bytes the image
// writer streams out verbatim, plus the end-of-record/end-of-file flags its
// final sector carries.
type DictEntry struct {
	Name        string
	StartExtent uint32
	Buf         []byte // len(Buf) is always a sectorSize multiple
	EOR, EOF    bool
}

// Plan is the frozen result of Compile: every sector from LSN 0 up to
// ISOSize-1 is accounted for by either a DictEntry or a gap the image
// writer fills with zeroed data sectors; segment and custom-file extents
// are recorded on their respective items.
type Plan struct {
	Params Params

	Alloc   *allocator.Allocator
	ISOSize uint32

	Dict []DictEntry

	PBC        pbc.Output
	HasPBC     bool
	LOTExtent  uint32
	PSDExtent  uint32
	LOTXExtent uint32
	PSDXExtent uint32

	InfoExtent    uint32
	EntriesExtent uint32
	TracksExtent  uint32
	SearchExtent  uint32

	MPEGSegmentStartExtent uint32
	ExtFileStartExtent     uint32
	CustomFileStartExtent  uint32
	ScanDataExtent         uint32

	Warnings []string
}

func ceilDiv(a, b int64) int64 {
	return (a + b - 1) / b
}

func roundUp(v, multiple int64) int64 {
	return ceilDiv(v, multiple) * multiple
}

// Compile runs the 11-step layout algorithm and returns a frozen Plan, or
// the first ConfigError/LayoutError/invariant violation encountered.
func Compile(p Params) (*Plan, error) {
	if len(p.Sequences) == 0 {
		return nil, fmt.Errorf("%w: no sequence items", ErrConfig)
	}
	if len(p.Sequences) > 99 {
		return nil, fmt.Errorf("%w: more than 99 sequence items", ErrConfig)
	}

	plan := &Plan{Params: p, Alloc: allocator.New()}
	a := plan.Alloc

	// Step 1: system area, plus VCD's reserved padding band 75..149.
	a.Reserve(0, systemAreaSectors)
	if p.Type != SVCD {
		a.Reserve(75, 75)
	}

	// Step 2: PVD / EVD at their fixed addresses.
	if a.Reserve(PVDExtent, 1) != PVDExtent {
		return nil, fmt.Errorf("%w: PVD address unavailable", ErrInvariant)
	}
	if a.Reserve(EVDExtent, 1) != EVDExtent {
		return nil, fmt.Errorf("%w: EVD address unavailable", ErrInvariant)
	}

	// Step 3: directory region placeholder; sized and reserved for real in
	// step 10, once the tree is known. dirRegionStart is left free here.

	// Step 4: VCD info area.
	infoSector := a.ReserveNext(1)
	entriesSector := a.ReserveNext(1)
	plan.InfoExtent = uint32(infoSector)
	plan.EntriesExtent = uint32(entriesSector)

	if len(p.PBCNodes) > 0 {
		compiled, err := pbc.NewCompiler(p.PBCNodes, p.PBCSymbols).Compile()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrConfig, err)
		}
		plan.PBC = compiled
		plan.HasPBC = true

		lot := a.ReserveNext(pbc.LOTSectors)
		psdSectors := ceilDiv(int64(len(compiled.PSDBase)), sectorSize)
		psd := a.ReserveNext(psdSectors)
		plan.LOTExtent = uint32(lot)
		plan.PSDExtent = uint32(psd)
	}

	var tracksSector, searchSector int64 = allocator.NoLSN, allocator.NoLSN
	if p.Type == SVCD {
		tracksSector = a.ReserveNext(1)
		searchSector = a.ReserveNext(searchSectors(p.Sequences))
		plan.TracksExtent = uint32(tracksSector)
		plan.SearchExtent = uint32(searchSector)
	}

	// Step 5: round up to the next 75-sector boundary.
	cur := a.Highest() + 1
	segStart := roundUp(cur, 75)
	if gap := segStart - cur; gap > 0 {
		a.Reserve(cur, gap)
	}
	plan.MPEGSegmentStartExtent = uint32(segStart)

	// Step 6: segment items, 150-sector aligned contiguous blocks.
	for _, seg := range p.Segments {
		n := seg.SegmentCount() * 150
		start := a.ReserveNext(n)
		if start%150 != 0 {
			return nil, fmt.Errorf("%w: segment %q not 150-aligned", ErrInvariant, seg.ID)
		}
		seg.StartExtent = uint32(start)
	}

	// Step 7: EXT-area files.
	plan.ExtFileStartExtent = uint32(a.Highest() + 1)
	var lotX, psdX int64 = allocator.NoLSN, allocator.NoLSN
	if plan.HasPBC && p.Type == VCD2 {
		lotX = a.ReserveNext(pbc.LOTSectors)
		psdXSectors := ceilDiv(int64(len(plan.PBC.PSDExtended)), sectorSize)
		psdX = a.ReserveNext(psdXSectors)
		plan.LOTXExtent = uint32(lotX)
		plan.PSDXExtent = uint32(psdX)
	}
	var scanData int64 = allocator.NoLSN
	if p.Type == SVCD {
		scanData = a.ReserveNext(scanDataSectors(p.Sequences))
		plan.ScanDataExtent = uint32(scanData)
	}

	// Step 8: custom files.
	plan.CustomFileStartExtent = uint32(a.Highest() + 1)
	for _, cf := range p.CustomFiles {
		n := cf.sectorCount()
		start := a.ReserveNext(n)
		cf.StartExtent = uint32(start)
		cf.Sectors = uint32(n)
	}

	// Step 9: freeze iso_size.
	isoSize := a.Highest() + 1
	if isoSize < MinISOSize {
		isoSize = MinISOSize
	}

	// Step 10: build the ISO9660 tree and reserve its exact sector count.
	builder := iso9660.New()
	if err := registerTree(builder, p, plan); err != nil {
		return nil, err
	}

	dirLimit := int64(75)
	if p.Type == SVCD {
		dirLimit = 150
	}
	dirBudget := dirLimit - dirRegionStart
	dirSize := int64(builder.GetSize())
	if dirSize > dirBudget {
		return nil, fmt.Errorf("%w: directory needs %d sectors, budget is %d", ErrLayout, dirSize, dirBudget)
	}
	if a.Reserve(dirRegionStart, dirSize) != dirRegionStart {
		return nil, fmt.Errorf("%w: directory region unavailable", ErrInvariant)
	}
	if isoSize < dirRegionStart+dirSize {
		isoSize = dirRegionStart + dirSize
	}
	plan.ISOSize = uint32(isoSize)

	if isoSize+totalSequenceSectors(p.Sequences, p.PreTrackGap, p.PreDataGap, p.PostDataGap) > MaxTotalSectors {
		return nil, fmt.Errorf("%w: image exceeds %d sectors", ErrLayout, MaxTotalSectors)
	}
	plan.collectWarnings()

	// Sequence addresses are only known now that ISOSize is frozen; patch
	// the placeholder extents registerTree wrote with their real absolute
	// LSNs before the directory tree is serialized.
	assignSequenceExtents(p.Sequences, p.PreTrackGap, p.PreDataGap, p.PostDataGap)
	for i, seq := range p.Sequences {
		abs := plan.ISOSize + seq.RelativeStartExtent
		if err := builder.SetExtent(sequencePath(p, i+1), abs); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvariant, err)
		}
	}

	// Step 11 and dict population: render every staged sector buffer now
	// that every extent is known.
	if err := plan.buildDict(builder); err != nil {
		return nil, err
	}

	return plan, nil
}

// collectWarnings records the non-fatal conditions Compile can detect on its
// own, independent of anything the image writer later observes while
// streaming MPEG packets (a mismatched version or a non-video-dominant
// stream needs the scanned Info the caller already supplied on each item).
func (pl *Plan) collectWarnings() {
	p := pl.Params
	for _, s := range p.Sequences {
		if int64(s.Info.PacketCount) < MinISOSize {
			pl.Warnings = append(pl.Warnings, fmt.Sprintf("sequence %q is shorter than 75 sectors", s.ID))
		}
		wantVersion := 2
		if p.Type != SVCD {
			wantVersion = 1
		}
		if s.Info.Version != 0 && s.Info.Version != wantVersion {
			pl.Warnings = append(pl.Warnings, fmt.Sprintf("sequence %q is MPEG-%d on a disc type that expects MPEG-%d", s.ID, s.Info.Version, wantVersion))
		}
	}
	if p.Type == SVCD && p.SVCDMPEGAV {
		pl.Warnings = append(pl.Warnings, "SVCD_VCD3_MPEGAV compatibility mode is deprecated")
	}
}

func totalSequenceSectors(seqs []*SequenceItem, preTrackGap, preDataGap, postDataGap int64) int64 {
	total := preTrackGap
	for _, s := range seqs {
		total += preDataGap + int64(s.Info.PacketCount) + postDataGap
	}
	return total
}

// RelativeEndExtent returns the sector offset, relative to ISOSize, one past
// the last sequence byte — the address the image writer's LeadOut cue point
// sits at once ISOSize is added back in.
func (pl *Plan) RelativeEndExtent() uint32 {
	p := pl.Params
	return uint32(totalSequenceSectors(p.Sequences, p.PreTrackGap, p.PreDataGap, p.PostDataGap)) //nolint:gosec // bounded by MaxTotalSectors
}

// TotalSectors returns the image's full sector count: the ISO track plus
// every sequence's pre/post gaps and payload.
func (pl *Plan) TotalSectors() uint32 {
	return pl.ISOSize + pl.RelativeEndExtent()
}

// assignSequenceExtents lays sequence items out back-to-back; their
// addresses are relative to ISOSize and only resolved to absolute LSNs at
// write time (sequence items are not allocator-tracked, per the "not
// allocated through the bitmap" design).
func assignSequenceExtents(seqs []*SequenceItem, preTrackGap, preDataGap, postDataGap int64) {
	cursor := preTrackGap
	for _, s := range seqs {
		cursor += preDataGap
		s.RelativeStartExtent = uint32(cursor) //nolint:gosec // packet counts stay well under 2^32
		cursor += int64(s.Info.PacketCount)
		cursor += postDataGap
	}
}
