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

// Package planstore caches the expensive, fully-deterministic half of a
// disc build: layout.Compile's output. An authoring UI that re-runs
// BeginOutput after a minor edit (changing the volume label, say) can hash
// its new parameters, find a hit, and skip straight to WriteImage.
//
// Only the part of a layout.Plan that Compile actually computes is cached —
// not the allocator bitmap, which nothing reads again once ISOSize is
// frozen, and not Params, which carries source.Opener closures that are not
// serializable and that the caller supplies fresh on every run regardless.
package planstore

import (
	"bytes"
	"encoding/gob"
	"fmt"

	"github.com/vcdauthoring/vcdauthor/layout"
	"github.com/vcdauthoring/vcdauthor/pbc"
)

// Snapshot is the gob-encodable result of begin_output.
type Snapshot struct {
	ISOSize uint32
	Dict    []layout.DictEntry

	PBC    pbc.Output
	HasPBC bool

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

	// SequenceStartExtents, SegmentStartExtents, CustomFileExtents and
	// CustomFileSectors carry the per-item extents Compile assigned, in
	// the same order as the Sequences/Segments/CustomFiles slices Apply
	// is given.
	SequenceStartExtents []uint32
	SegmentStartExtents  []uint32
	CustomFileExtents    []uint32
	CustomFileSectors    []uint32

	Warnings []string
}

// TakeSnapshot extracts the cacheable half of pl.
func TakeSnapshot(pl *layout.Plan) Snapshot {
	snap := Snapshot{
		ISOSize:                pl.ISOSize,
		Dict:                   pl.Dict,
		PBC:                    pl.PBC,
		HasPBC:                 pl.HasPBC,
		LOTExtent:              pl.LOTExtent,
		PSDExtent:              pl.PSDExtent,
		LOTXExtent:             pl.LOTXExtent,
		PSDXExtent:             pl.PSDXExtent,
		InfoExtent:             pl.InfoExtent,
		EntriesExtent:          pl.EntriesExtent,
		TracksExtent:           pl.TracksExtent,
		SearchExtent:           pl.SearchExtent,
		MPEGSegmentStartExtent: pl.MPEGSegmentStartExtent,
		ExtFileStartExtent:     pl.ExtFileStartExtent,
		CustomFileStartExtent:  pl.CustomFileStartExtent,
		ScanDataExtent:         pl.ScanDataExtent,
		Warnings:               pl.Warnings,
	}
	for _, s := range pl.Params.Sequences {
		snap.SequenceStartExtents = append(snap.SequenceStartExtents, s.RelativeStartExtent)
	}
	for _, s := range pl.Params.Segments {
		snap.SegmentStartExtents = append(snap.SegmentStartExtents, s.StartExtent)
	}
	for _, cf := range pl.Params.CustomFiles {
		snap.CustomFileExtents = append(snap.CustomFileExtents, cf.StartExtent)
		snap.CustomFileSectors = append(snap.CustomFileSectors, cf.Sectors)
	}
	return snap
}

// ErrItemCountMismatch is returned by Apply when the sequence/segment/
// custom-file slices it is given don't match the counts the snapshot was
// taken with — almost always a sign the caller's parameters changed enough
// that the cached layout no longer applies, and begin_output should be
// re-run instead of reusing the snapshot.
var ErrItemCountMismatch = fmt.Errorf("planstore: item count does not match snapshot")

// Apply patches seqs/segs/files in place with the extents this snapshot
// recorded, and returns a *layout.Plan built from the snapshot and p. The
// returned Plan's Alloc is nil: nothing downstream of begin_output reads it.
func (s Snapshot) Apply(p layout.Params, seqs []*layout.SequenceItem, segs []*layout.SegmentItem, files []*layout.CustomFile) (*layout.Plan, error) {
	if len(seqs) != len(s.SequenceStartExtents) {
		return nil, fmt.Errorf("%w: %d sequences, snapshot has %d", ErrItemCountMismatch, len(seqs), len(s.SequenceStartExtents))
	}
	if len(segs) != len(s.SegmentStartExtents) {
		return nil, fmt.Errorf("%w: %d segments, snapshot has %d", ErrItemCountMismatch, len(segs), len(s.SegmentStartExtents))
	}
	if len(files) != len(s.CustomFileExtents) {
		return nil, fmt.Errorf("%w: %d custom files, snapshot has %d", ErrItemCountMismatch, len(files), len(s.CustomFileExtents))
	}

	for i, seq := range seqs {
		seq.RelativeStartExtent = s.SequenceStartExtents[i]
	}
	for i, seg := range segs {
		seg.StartExtent = s.SegmentStartExtents[i]
	}
	for i, cf := range files {
		cf.StartExtent = s.CustomFileExtents[i]
		cf.Sectors = s.CustomFileSectors[i]
	}

	return &layout.Plan{
		Params:                 p,
		ISOSize:                s.ISOSize,
		Dict:                   s.Dict,
		PBC:                    s.PBC,
		HasPBC:                 s.HasPBC,
		LOTExtent:              s.LOTExtent,
		PSDExtent:              s.PSDExtent,
		LOTXExtent:             s.LOTXExtent,
		PSDXExtent:             s.PSDXExtent,
		InfoExtent:             s.InfoExtent,
		EntriesExtent:          s.EntriesExtent,
		TracksExtent:           s.TracksExtent,
		SearchExtent:           s.SearchExtent,
		MPEGSegmentStartExtent: s.MPEGSegmentStartExtent,
		ExtFileStartExtent:     s.ExtFileStartExtent,
		CustomFileStartExtent:  s.CustomFileStartExtent,
		ScanDataExtent:         s.ScanDataExtent,
		Warnings:               s.Warnings,
	}, nil
}

// encode gob-encodes snap into a fresh buffer.
func encode(snap Snapshot) (*bytes.Buffer, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(snap); err != nil {
		return nil, fmt.Errorf("planstore: encode snapshot: %w", err)
	}
	return &buf, nil
}

// decode gob-decodes a snapshot from buf.
func decode(buf []byte) (Snapshot, error) {
	var snap Snapshot
	if err := gob.NewDecoder(bytes.NewReader(buf)).Decode(&snap); err != nil {
		return Snapshot{}, fmt.Errorf("planstore: decode snapshot: %w", err)
	}
	return snap, nil
}
