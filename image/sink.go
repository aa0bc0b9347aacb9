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

// Package image streams a compiled layout.Plan out to a disc image sink:
// it hands the sink the plan's cue sheet first, then writes one 2352-byte
// raw CD-ROM XA sector at a time, in strictly ascending LSN order.
//
// Concrete sink backends (raw BIN/CUE, CDRDAO TOC+img, NRG) are external
// collaborators; this package only defines the Sink contract and drives it.
package image

// CueKind classifies one cue-sheet boundary.
type CueKind int

const (
	TrackStart CueKind = iota
	PregapStart
	SubIndex
	LeadOut
)

func (k CueKind) String() string {
	switch k {
	case TrackStart:
		return "TrackStart"
	case PregapStart:
		return "PregapStart"
	case SubIndex:
		return "SubIndex"
	case LeadOut:
		return "LeadOut"
	default:
		return "Unknown"
	}
}

// CueEntry is one boundary in the disc's table of contents.
type CueEntry struct {
	LSN  uint32
	Kind CueKind
}

// Sink is the pluggable disc-image output contract. Implementations receive
// exactly one SetCueSheet call before any Write, then monotonically
// non-decreasing Write calls in LSN order, then one Free.
type Sink interface {
	// SetCueSheet is called once, before the first Write.
	SetCueSheet(cues []CueEntry) error

	// Write delivers one raw 2352-byte sector at the given LSN. Sinks may
	// split the underlying byte stream across files using the cue sheet
	// (e.g. a CDRDAO backend splitting on PregapStart/TrackStart).
	Write(lsn uint32, sector [2352]byte) error

	// Free releases any sink-held state. Called once, whether or not the
	// write completed successfully.
	Free() error
}

// ProgressFunc is invoked roughly every 75 sectors and forced at track
// boundaries. A non-zero return aborts the write at the next callback
// point; in-memory state is still released via Sink.Free, but no attempt
// is made to unwind output already delivered to the sink.
type ProgressFunc func(written, total uint32) int
