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
	"github.com/vcdauthoring/vcdauthor/source"
	"github.com/vcdauthoring/vcdauthor/xasector"
)

// segmentReader lazily opens a segment's data source and keeps its scanner
// alive across the 150-sector-aligned region the layout planner reserved
// for it, so each of the region's sectors is read exactly once.
type segmentReader struct {
	src     source.DataSource
	scanner *mpeg.Scanner
}

func (w *writer) segmentFor(seg *layout.SegmentItem) (*segmentReader, error) {
	if sr, ok := w.segScanners[seg]; ok {
		return sr, nil
	}

	src, err := seg.Source()
	if err != nil {
		return nil, fmt.Errorf("%w: open segment %q: %v", ErrMedia, seg.ID, err)
	}
	scanner, err := mpeg.NewScanner(src, w.pl.Params.RelaxedAPS)
	if err != nil {
		_ = src.Close()
		return nil, fmt.Errorf("%w: open segment %q: %v", ErrMedia, seg.ID, err)
	}
	if _, err := scanner.Scan(); err != nil {
		_ = src.Close()
		return nil, fmt.Errorf("%w: scan segment %q: %v", ErrMedia, seg.ID, err)
	}

	sr := &segmentReader{src: src, scanner: scanner}
	w.segScanners[seg] = sr
	return sr, nil
}

func (w *writer) formatSegmentSector(lsn uint32, r role) ([2352]byte, error) {
	seg := r.seg
	total := seg.SegmentCount() * 150
	last := r.local == total-1

	if r.local >= int64(seg.Info.PacketCount) {
		sec, err := zeroForm2(lsn, segmentFiller(last), 0)
		if err != nil {
			return sec, fmt.Errorf("image: format segment %q padding: %w", seg.ID, err)
		}
		return sec, nil
	}

	sr, err := w.segmentFor(seg)
	if err != nil {
		return [2352]byte{}, err
	}

	buf := make([]byte, xasector.Form2UserSize)
	var flags mpeg.PacketFlags
	if err := sr.scanner.GetPacket(int(r.local), buf, &flags, false); err != nil {
		return [2352]byte{}, fmt.Errorf("%w: segment %q packet %d: %v", ErrMedia, seg.ID, r.local, err)
	}

	sm := xasector.SMForm2 | submodeTypeBit(flags.Type)
	ci := codingInfoFor(flags.Type)
	if last {
		sm |= xasector.SMEOR | xasector.SMEOF
	}

	sec, err := xasector.Format(buf, xasector.Subheader{Submode: sm, CodingInfo: ci}, lsn)
	if err != nil {
		return sec, fmt.Errorf("image: format segment %q sector: %w", seg.ID, err)
	}
	return sec, nil
}

func segmentFiller(last bool) byte {
	sm := byte(xasector.SMData)
	if last {
		sm |= xasector.SMEOR | xasector.SMEOF
	}
	return sm
}

func submodeTypeBit(t mpeg.PacketType) byte {
	switch t {
	case mpeg.Video:
		return xasector.SMVideo
	case mpeg.Audio:
		return xasector.SMAudio
	default:
		return xasector.SMData
	}
}

func codingInfoFor(t mpeg.PacketType) byte {
	switch t {
	case mpeg.Video:
		return xasector.CIVCDVideo
	case mpeg.Audio:
		return xasector.CIVCDAudioStereo
	default:
		return 0
	}
}

func (w *writer) closeSegmentReaders() error {
	for seg, sr := range w.segScanners {
		if err := sr.src.Close(); err != nil {
			return fmt.Errorf("%w: close segment %q: %v", ErrMedia, seg.ID, err)
		}
	}
	return nil
}
