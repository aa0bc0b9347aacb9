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

// Package vcdauthor is the disc object and parameter surface every other
// package in this module is driven through. A Disc accumulates sequence
// items, segment items, custom files/directories and PBC nodes, then runs
// BeginOutput to freeze a layout.Plan, WriteImage to stream it to a
// caller-supplied image.Sink, and EndOutput to release the working state
// so the Disc can be reused for another cycle.
package vcdauthor

import (
	"fmt"

	"github.com/vcdauthoring/vcdauthor/layout"
	"github.com/vcdauthoring/vcdauthor/mpeg"
	"github.com/vcdauthoring/vcdauthor/pbc"
	"github.com/vcdauthoring/vcdauthor/source"
)

// Default gap parameters in sectors, shared by VCD and SVCD: two seconds
// of pre-track gap, 30 sectors of pre-data gap, 45 sectors of post-data
// gap (vcd.c: PRE_TRACK_GAP/PRE_DATA_GAP/POST_DATA_GAP).
const (
	defaultPreTrackGap = 150
	defaultPreDataGap  = 30
	defaultPostDataGap = 45
)

// buildState tracks where a Disc sits in the begin/write/end lifecycle.
type buildState int

const (
	stateBuilding buildState = iota
	stateFrozen
)

// idKind names which list an id belongs to, for cross-namespace
// uniqueness reporting and for symbols.go's SymbolTable construction.
type idKind int

const (
	kindSequence idKind = iota
	kindSegment
	kindEntry
	kindPBCNode
)

func (k idKind) String() string {
	switch k {
	case kindSequence:
		return "sequence"
	case kindSegment:
		return "segment"
	case kindEntry:
		return "entry point"
	case kindPBCNode:
		return "PBC node"
	default:
		return "unknown"
	}
}

// Disc is the root object: it owns every sequence, segment, custom file,
// custom directory and PBC node a disc build consists of, plus the disc
// type, volume metadata and flag parameters that govern how they're laid
// out. Sequences, segments, entry points and PBC nodes share one id
// namespace: AddSequence/AddSegment/AddEntryPoint/AddPBCNode all reject an
// id already claimed by any of the other three.
type Disc struct {
	discType layout.DiscType
	state    buildState

	volumeLabel   string
	applicationID string
	albumID       string
	volumeCount   uint16
	volumeNumber  uint16
	restriction   byte

	relaxedAPS     bool
	svcdMPEGAV     bool
	svcdEntrySVD   bool
	updateScanOffs bool
	nextVolLID2    bool
	nextVolSeq2    bool

	rawSectorSize int

	preTrackGap int64
	preDataGap  int64
	postDataGap int64

	sequences   []*layout.SequenceItem
	segments    []*layout.SegmentItem
	customFiles []*layout.CustomFile
	customDirs  []string
	pbcNodes    []pbc.Node

	ids map[string]idKind

	warnings []string

	plan *layout.Plan
}

// New builds a Disc of the given type, with default gap parameters and a
// raw sector size of 2352. t must be layout.VCD11, layout.VCD2 or
// layout.SVCD; any other value is a ConfigError (unsupported disc type).
func New(t layout.DiscType) (*Disc, error) {
	switch t {
	case layout.VCD11, layout.VCD2, layout.SVCD:
	default:
		return nil, fmt.Errorf("%w: unsupported disc type %d", ErrConfig, t)
	}
	return &Disc{
		discType:      t,
		volumeCount:   1,
		rawSectorSize: 2352,
		preTrackGap:   defaultPreTrackGap,
		preDataGap:    defaultPreDataGap,
		postDataGap:   defaultPostDataGap,
		ids:           make(map[string]idKind),
	}, nil
}

// Type reports the disc type New was called with.
func (d *Disc) Type() layout.DiscType { return d.discType }

// Warnings returns every non-fatal condition recorded so far: clamped
// parameters, deprecated compatibility flags, and (once BeginOutput has
// run) everything layout.Compile collected.
func (d *Disc) Warnings() []string { return d.warnings }

func (d *Disc) warnf(format string, args ...any) {
	d.warnings = append(d.warnings, fmt.Sprintf(format, args...))
}

// checkMutable rejects any Set/Add call once BeginOutput has frozen the
// disc; a frozen Disc only accepts WriteImage/EndOutput.
func (d *Disc) checkMutable() error {
	if d.state != stateBuilding {
		return ErrFrozen
	}
	return nil
}

// claimID records id under kind, failing with DuplicateIDError if any
// other sequence, segment, entry point or PBC node already claimed it.
// IDs are globally unique across sequences, segments, entries and PBC
// nodes, enforced eagerly at the mutator that introduces the id rather
// than deferred to BeginOutput, so a failed Add leaves the disc's state
// unchanged.
func (d *Disc) claimID(id string, kind idKind) error {
	if id == "" {
		return nil
	}
	if existing, taken := d.ids[id]; taken {
		return fmt.Errorf("%w: %v", ErrConfig, DuplicateIDError{ID: id, Kind: kind.String(), FirstKind: existing.String()})
	}
	d.ids[id] = kind
	return nil
}

// AddSequence scans src's MPEG content immediately, once, to fill in its
// mpeg.Info, and appends a new sequence item. id may be empty; a non-empty
// id must be unique across every sequence, segment, entry point and PBC
// node.
func (d *Disc) AddSequence(id string, src source.Opener) (*layout.SequenceItem, error) {
	if err := d.checkMutable(); err != nil {
		return nil, err
	}
	if len(d.sequences) >= 99 {
		return nil, fmt.Errorf("%w: at most 99 sequence items are permitted", ErrConfig)
	}
	if err := d.claimID(id, kindSequence); err != nil {
		return nil, err
	}

	info, err := scan(src, d.relaxedAPS)
	if err != nil {
		delete(d.ids, id)
		return nil, err
	}

	seq := &layout.SequenceItem{ID: id, Source: src, Info: info}
	d.sequences = append(d.sequences, seq)
	return seq, nil
}

// AddSegment scans src's MPEG still-picture content immediately and
// appends a new segment item.
func (d *Disc) AddSegment(id string, src source.Opener) (*layout.SegmentItem, error) {
	if err := d.checkMutable(); err != nil {
		return nil, err
	}
	if err := d.claimID(id, kindSegment); err != nil {
		return nil, err
	}

	info, err := scan(src, d.relaxedAPS)
	if err != nil {
		delete(d.ids, id)
		return nil, err
	}

	seg := &layout.SegmentItem{ID: id, Source: src, Info: info}
	d.segments = append(d.segments, seg)
	return seg, nil
}

// scan runs a fresh mpeg.Scanner over one pass of src, the append-time
// scan that fills in a sequence or segment item's mpeg.Info before it can
// be laid out.
func scan(src source.Opener, relaxedAPS bool) (mpeg.Info, error) {
	ds, err := src()
	if err != nil {
		return mpeg.Info{}, fmt.Errorf("vcdauthor: open source: %w", err)
	}
	defer func() { _ = ds.Close() }()

	scanner, err := mpeg.NewScanner(ds, relaxedAPS)
	if err != nil {
		return mpeg.Info{}, fmt.Errorf("vcdauthor: scan source: %w", err)
	}
	info, err := scanner.Scan()
	if err != nil {
		return mpeg.Info{}, fmt.Errorf("vcdauthor: scan source: %w", err)
	}
	return info, nil
}

// AddEntryPoint appends a named time index to seq, sorted into its
// existing entry list by time. At most 98 entries are permitted per
// sequence item.
func (d *Disc) AddEntryPoint(seq *layout.SequenceItem, id string, t float64) error {
	if err := d.checkMutable(); err != nil {
		return err
	}
	if len(seq.Entries) >= 98 {
		return fmt.Errorf("%w: sequence %q already has 98 entry points", ErrConfig, seq.ID)
	}
	if err := d.claimID(id, kindEntry); err != nil {
		return err
	}

	seq.Entries = append(seq.Entries, layout.EntryPoint{ID: id, Time: t})
	sortEntries(seq.Entries)
	return nil
}

func sortEntries(e []layout.EntryPoint) {
	for i := 1; i < len(e); i++ {
		for j := i; j > 0 && e[j].Time < e[j-1].Time; j-- {
			e[j], e[j-1] = e[j-1], e[j]
		}
	}
}

// AddPausePoint appends a named pause index to seq, sorted by time. Pause
// ids are not tracked in the cross-namespace id set: only sequences,
// segments, entries and PBC nodes share that namespace.
func (d *Disc) AddPausePoint(seq *layout.SequenceItem, id string, t float64) error {
	if err := d.checkMutable(); err != nil {
		return err
	}
	seq.Pauses = append(seq.Pauses, layout.PausePoint{ID: id, Time: t})
	sortPauses(seq.Pauses)
	return nil
}

func sortPauses(p []layout.PausePoint) {
	for i := 1; i < len(p); i++ {
		for j := i; j > 0 && p[j].Time < p[j-1].Time; j-- {
			p[j], p[j-1] = p[j-1], p[j]
		}
	}
}

// AddCustomFile registers a user-supplied file to be placed into the
// ISO9660 tree at isoPath.
func (d *Disc) AddCustomFile(isoPath string, src source.Opener, sizeBytes uint32, raw bool) error {
	if err := d.checkMutable(); err != nil {
		return err
	}
	d.customFiles = append(d.customFiles, &layout.CustomFile{
		ISOPath:   isoPath,
		Source:    src,
		SizeBytes: sizeBytes,
		Raw:       raw,
	})
	return nil
}

// AddCustomDir registers a user-supplied empty directory in the ISO9660
// tree.
func (d *Disc) AddCustomDir(path string) error {
	if err := d.checkMutable(); err != nil {
		return err
	}
	d.customDirs = append(d.customDirs, path)
	return nil
}

// AddPBCNode appends a playback-control node. VCD-1.1 predates playback
// control entirely; adding a node to a VCD-1.1 disc is a ConfigError
// (wrong disc type for operation).
func (d *Disc) AddPBCNode(n pbc.Node) error {
	if err := d.checkMutable(); err != nil {
		return err
	}
	if d.discType == layout.VCD11 {
		return fmt.Errorf("%w: VCD-1.1 does not support playback control", ErrConfig)
	}
	if err := d.claimID(pbc.NodeID(n), kindPBCNode); err != nil {
		return err
	}
	d.pbcNodes = append(d.pbcNodes, n)
	return nil
}
