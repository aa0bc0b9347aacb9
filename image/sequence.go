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
	"fmt"

	"github.com/vcdauthoring/vcdauthor/layout"
	"github.com/vcdauthoring/vcdauthor/mpeg"
	"github.com/vcdauthoring/vcdauthor/xasector"
)

// writeSequences emits the pre_track_gap once, then each sequence item's
// pre_data_gap/payload/post_data_gap triple, in declaration order (which is
// also ascending LSN order, since RelativeStartExtent was assigned
// monotonically by layout.Compile).
func (w *writer) writeSequences() error {
	base := w.pl.ISOSize

	for n := int64(0); n < w.pl.Params.PreTrackGap; n++ {
		sec, err := zeroForm2(base+uint32(n), 0, 0) //nolint:gosec // bounded by MaxTotalSectors
		if err != nil {
			return err
		}
		if err := w.emit(base+uint32(n), sec, false); err != nil { //nolint:gosec // same
			return err
		}
	}

	for idx, seq := range w.pl.Params.Sequences {
		if err := w.writeSequence(idx, seq); err != nil {
			return err
		}
	}
	return nil
}

func (w *writer) writeSequence(idx int, seq *layout.SequenceItem) error {
	base := w.pl.ISOSize
	fnum := byte(idx + 1) //nolint:gosec // track indices stay well under 254
	p := w.pl.Params

	payloadStart := base + seq.RelativeStartExtent
	gapStart := payloadStart - uint32(p.PreDataGap)        //nolint:gosec // bounded by MaxTotalSectors
	payloadEnd := payloadStart + uint32(seq.Info.PacketCount) //nolint:gosec // bounded by MaxTotalSectors
	postEnd := payloadEnd + uint32(p.PostDataGap)          //nolint:gosec // bounded by MaxTotalSectors

	for lsn := gapStart; lsn < payloadStart; lsn++ {
		sec, err := zeroForm2(lsn, xasector.SMRealt, fnum)
		if err != nil {
			return err
		}
		if err := w.emit(lsn, sec, lsn == gapStart); err != nil {
			return err
		}
	}

	src, err := seq.Source()
	if err != nil {
		return fmt.Errorf("%w: open sequence %q: %v", ErrMedia, seq.ID, err)
	}
	scanner, err := mpeg.NewScanner(src, p.RelaxedAPS)
	if err != nil {
		_ = src.Close()
		return fmt.Errorf("%w: open sequence %q: %v", ErrMedia, seq.ID, err)
	}
	if _, err := scanner.Scan(); err != nil {
		_ = src.Close()
		return fmt.Errorf("%w: scan sequence %q: %v", ErrMedia, seq.ID, err)
	}

	cursor := newPauseCursor(seq.Pauses)
	svcdIEC62107 := p.Type == layout.SVCD && !p.SVCDMPEGAV
	buf := make([]byte, xasector.Form2UserSize)

	for k := int64(0); k < int64(seq.Info.PacketCount); k++ {
		var flags mpeg.PacketFlags
		if err := scanner.GetPacket(int(k), buf, &flags, p.UpdateScanOffs); err != nil {
			_ = src.Close()
			return fmt.Errorf("%w: sequence %q packet %d: %v", ErrMedia, seq.ID, k, err)
		}

		sm := xasector.SMForm2 | xasector.SMRealt | submodeTypeBit(flags.Type)
		if flags.HasPTS && cursor.consume(flags.PTS) {
			sm |= xasector.SMTrig
		}
		last := k == int64(seq.Info.PacketCount)-1
		if last {
			sm |= xasector.SMEOR | xasector.SMEOF
		}

		sectorFnum, ci := sequenceFileNumAndCI(svcdIEC62107, fnum, flags.Type)

		lsn := payloadStart + uint32(k) //nolint:gosec // bounded by MaxTotalSectors
		sec, err := xasector.Format(buf, xasector.Subheader{FileNumber: sectorFnum, ChannelNumber: 1, Submode: sm, CodingInfo: ci}, lsn)
		if err != nil {
			_ = src.Close()
			return fmt.Errorf("image: format sequence %q sector: %w", seq.ID, err)
		}
		if err := w.emit(lsn, sec, last); err != nil {
			_ = src.Close()
			return err
		}
	}

	if err := src.Close(); err != nil {
		return fmt.Errorf("%w: close sequence %q: %v", ErrMedia, seq.ID, err)
	}

	for lsn := payloadEnd; lsn < postEnd; lsn++ {
		sec, err := zeroForm2(lsn, xasector.SMRealt, fnum)
		if err != nil {
			return err
		}
		if err := w.emit(lsn, sec, lsn == postEnd-1); err != nil {
			return err
		}
	}
	return nil
}

// sequenceFileNumAndCI picks the subheader file-number/coding-info pair for
// a payload sector: SVCD's IEC62107 mode collapses every sequence onto
// fnum=1 with a shared coding-info byte, independent of packet content;
// VCD (and SVCD's VCD-3 compat mode) keeps the per-track fnum and codes
// video/audio separately.
func sequenceFileNumAndCI(svcdIEC62107 bool, trackFnum byte, t mpeg.PacketType) (fnum, ci byte) {
	if svcdIEC62107 {
		return 1, xasector.CISVCDCommon
	}
	return trackFnum, codingInfoFor(t)
}

// pauseCursor advances through a sequence's pause points in declaration
// order, firing (at most once per pause) on the first packet whose PTS
// reaches or passes the pause's time.
type pauseCursor struct {
	pauses []layout.PausePoint
	next   int
}

func newPauseCursor(pauses []layout.PausePoint) *pauseCursor {
	return &pauseCursor{pauses: pauses}
}

// consume reports whether pts has reached the next unconsumed pause,
// advancing past it if so.
func (c *pauseCursor) consume(pts float64) bool {
	if c.next >= len(c.pauses) {
		return false
	}
	if pts < c.pauses[c.next].Time {
		return false
	}
	c.next++
	return true
}
