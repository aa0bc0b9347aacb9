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

import (
	"fmt"

	"github.com/vcdauthoring/vcdauthor/image"
	"github.com/vcdauthoring/vcdauthor/layout"
)

// BeginOutput freezes the disc's current content into a layout.Plan: it
// builds the cross-namespace symbol table AddSequence/AddSegment/
// AddEntryPoint/AddPBCNode already validated, then runs the 11-step
// layout algorithm. On success the disc is frozen — only WriteImage and
// EndOutput are accepted until EndOutput releases it. On failure the disc
// is left exactly as it was (no state change), so the caller may fix the
// offending parameter and call BeginOutput again.
func (d *Disc) BeginOutput() error {
	if d.state != stateBuilding {
		return ErrFrozen
	}

	params := layout.Params{
		Type:           d.discType,
		VolumeLabel:    d.volumeLabel,
		ApplicationID:  d.applicationID,
		AlbumID:        d.albumID,
		VolumeCount:    d.volumeCount,
		VolumeNumber:   d.volumeNumber,
		Restriction:    d.restriction,
		RelaxedAPS:     d.relaxedAPS,
		SVCDMPEGAV:     d.svcdMPEGAV,
		SVCDEntrySVD:   d.svcdEntrySVD,
		UpdateScanOffs: d.updateScanOffs,
		Sequences:      d.sequences,
		Segments:       d.segments,
		CustomFiles:    d.customFiles,
		CustomDirs:     d.customDirs,
		PBCNodes:       d.pbcNodes,
		PBCSymbols:     d.buildSymbolTable(),
		PreTrackGap:    d.preTrackGap,
		PreDataGap:     d.preDataGap,
		PostDataGap:    d.postDataGap,
	}

	plan, err := layout.Compile(params)
	if err != nil {
		return err
	}

	d.plan = plan
	d.state = stateFrozen
	d.warnings = append(d.warnings, plan.Warnings...)
	return nil
}

// WriteImage streams the plan BeginOutput froze out to sink, in ascending
// LSN order, emitting the cue sheet first. progress may be nil.
func (d *Disc) WriteImage(sink image.Sink, progress image.ProgressFunc) error {
	if d.state != stateFrozen {
		return ErrNotFrozen
	}
	return image.Write(d.plan, sink, progress)
}

// EndOutput releases the allocator, directory builder and dict state
// BeginOutput produced, and returns the disc to the building state so it
// may be reused for another output cycle with the same or modified
// content.
func (d *Disc) EndOutput() error {
	if d.state != stateFrozen {
		return ErrNotFrozen
	}
	d.plan = nil
	d.state = stateBuilding
	return nil
}

// EstimateImageSize runs BeginOutput and EndOutput back-to-back, without
// WriteImage, and reports the total sector count the resulting image
// would occupy (vcd_obj_get_image_size, vcd.c:1064) — the ISO track plus
// every sequence's gaps and payload.
func (d *Disc) EstimateImageSize() (int64, error) {
	if err := d.BeginOutput(); err != nil {
		return 0, err
	}
	total := int64(d.plan.TotalSectors())
	if err := d.EndOutput(); err != nil {
		return 0, fmt.Errorf("vcdauthor: estimate image size: %w", err)
	}
	return total, nil
}
