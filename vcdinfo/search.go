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

package vcdinfo

import (
	"fmt"

	vbin "github.com/vcdauthoring/vcdauthor/internal/binary"
	"github.com/vcdauthoring/vcdauthor/mpeg"
)

// TimeStep returns the SEARCH.DAT scan-point interval, in video frames, for
// a given norm: one scan point every half second, so the step is half the
// norm's frame rate.
func TimeStep(n mpeg.Norm) float64 {
	_, _, fps := n.Dimensions()
	if fps == 0 {
		fps = 25 // OTHER falls back to PAL timing
	}
	return fps / 2
}

// ScanPoint maps a half-second offset to the nearest access-point LSN.
type ScanPoint struct {
	LSN uint32
}

// WriteSearch renders a SEARCH.DAT scan-point table: one entry per
// half-second, mapping to the nearest access point sector.
func WriteSearch(buf []byte, norm mpeg.Norm, points []ScanPoint) error {
	headerLen := 16
	need := headerLen + len(points)*4
	if len(buf) < need {
		return fmt.Errorf("%w: need %d bytes, got %d", ErrBufferTooSmall, need, len(buf))
	}
	for i := range buf[:need] {
		buf[i] = 0
	}

	vbin.PutStringPadded(buf, 0, 8, "SEARCDAT", ' ')
	buf[8] = 1 // version
	step := TimeStep(norm)
	vbin.PutUint16BEAt(buf, 10, uint16(step*100)) // fixed-point, 2 decimal places
	vbin.PutUint32BEAt(buf, 12, uint32(len(points)))

	off := headerLen
	for _, p := range points {
		vbin.PutUint32BEAt(buf, off, p.LSN)
		off += 4
	}
	return nil
}

// WriteScanData renders SCANDATA.DAT: a dense per-frame table of the
// nearest preceding access-point LSN, used by SVCD players for frame-
// accurate seeking.
func WriteScanData(buf []byte, frameOffsets []uint32) error {
	headerLen := 12
	need := headerLen + len(frameOffsets)*4
	if len(buf) < need {
		return fmt.Errorf("%w: need %d bytes, got %d", ErrBufferTooSmall, need, len(buf))
	}
	for i := range buf[:need] {
		buf[i] = 0
	}

	vbin.PutStringPadded(buf, 0, 8, "SCANDATA", ' ')
	buf[8] = 1 // version
	vbin.PutUint32BEAt(buf, headerLen-4, uint32(len(frameOffsets)))

	off := headerLen
	for _, o := range frameOffsets {
		vbin.PutUint32BEAt(buf, off, o)
		off += 4
	}
	return nil
}
