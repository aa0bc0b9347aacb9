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

// Package vcdinfo writes the VCD/SVCD navigation info files: INFO.VCD/SVD,
// ENTRIES.VCD/SVD, TRACKS.SVD, SEARCH.DAT and SCANDATA.DAT. Every writer is
// a pure function of its inputs: given the same disc state, it produces
// the same bytes.
package vcdinfo

import (
	"errors"
	"fmt"

	vbin "github.com/vcdauthoring/vcdauthor/internal/binary"
	"github.com/vcdauthoring/vcdauthor/xasector"
)

// DiscType distinguishes VCD from SVCD info-file layouts.
type DiscType int

const (
	TypeVCD11 DiscType = iota
	TypeVCD2
	TypeSVCD
)

const sectorSize = 2048

// MaxEntries is the hard cap on ENTRIES.VCD/SVD records.
const MaxEntries = 500

// ErrTooManyEntries is returned by WriteEntries when more than MaxEntries
// entry points are supplied.
var ErrTooManyEntries = errors.New("vcdinfo: too many entry points")

// ErrBufferTooSmall is returned when the destination sector buffer cannot
// hold the encoded structure.
var ErrBufferTooSmall = errors.New("vcdinfo: destination buffer too small")

func signatureFor(t DiscType) string {
	if t == TypeSVCD {
		return "SUPERVCD"
	}
	return "VIDEO_CD"
}

// InfoFields carries the values INFO.VCD/SVD reports.
type InfoFields struct {
	Type               DiscType
	VolumeCount        uint16
	VolumeNumber       uint16
	AlbumID            string // up to 16 d-characters
	FirstSegmentLSN    uint32
	PSDSize            uint32
	MaxLID             uint16
	Restriction        byte
	ScanOffsetsUpdated bool // SVCD-only "scan offset update" flag
}

// WriteInfo renders fields into a single 2048-byte sector at buf[0:2048].
func WriteInfo(buf []byte, fields InfoFields) error {
	if len(buf) < sectorSize {
		return fmt.Errorf("%w: need %d bytes, got %d", ErrBufferTooSmall, sectorSize, len(buf))
	}
	for i := range buf[:sectorSize] {
		buf[i] = 0
	}

	vbin.PutStringPadded(buf, 0, 8, signatureFor(fields.Type), ' ')
	buf[8] = formatVersionByte(fields.Type)
	buf[9] = 0 // system profile tag: unused, generic
	vbin.PutStringPadded(buf, 10, 16, fields.AlbumID, ' ')
	vbin.PutUint16BEAt(buf, 26, fields.VolumeCount)
	vbin.PutUint16BEAt(buf, 28, fields.VolumeNumber)
	buf[30] = fields.Restriction
	if fields.ScanOffsetsUpdated {
		buf[31] = 1
	}
	vbin.PutUint32BEAt(buf, 32, fields.FirstSegmentLSN)
	vbin.PutUint32BEAt(buf, 36, fields.PSDSize)
	vbin.PutUint16BEAt(buf, 40, fields.MaxLID)

	return nil
}

func formatVersionByte(t DiscType) byte {
	switch t {
	case TypeVCD11:
		return 0x01
	case TypeVCD2:
		return 0x02
	case TypeSVCD:
		return 0x00
	default:
		return 0x00
	}
}

// EntryPoint is one ENTRIES.VCD/SVD record: a track number and the MSF
// address it resolves to.
type EntryPoint struct {
	Track byte   // 1-based track number, stored as packed BCD
	LSN   uint32 // resolved to MSF at write time
}

// WriteEntries renders up to MaxEntries entry points, sorted by Track then
// LSN, into a single 2048-byte sector.
func WriteEntries(buf []byte, discType DiscType, entries []EntryPoint) error {
	if len(entries) > MaxEntries {
		return fmt.Errorf("%w: got %d, max %d", ErrTooManyEntries, len(entries), MaxEntries)
	}
	if len(buf) < sectorSize {
		return fmt.Errorf("%w: need %d bytes, got %d", ErrBufferTooSmall, sectorSize, len(buf))
	}
	for i := range buf[:sectorSize] {
		buf[i] = 0
	}

	sorted := append([]EntryPoint(nil), entries...)
	sortEntries(sorted)

	sig := "ENTRYVCD"
	if discType == TypeSVCD {
		sig = "ENTRYSVD"
	}
	vbin.PutStringPadded(buf, 0, 8, sig, ' ')
	buf[8] = formatVersionByte(discType)
	vbin.PutUint16BEAt(buf, 10, uint16(len(sorted)))

	off := 12
	for _, e := range sorted {
		buf[off] = vbin.ToBCD(int(e.Track))
		mm, ss, ff := xasector.LSNToMSF(e.LSN)
		buf[off+1] = mm
		buf[off+2] = ss
		buf[off+3] = ff
		off += 4
	}
	return nil
}

func sortEntries(e []EntryPoint) {
	for i := 1; i < len(e); i++ {
		for j := i; j > 0 && less(e[j], e[j-1]); j-- {
			e[j], e[j-1] = e[j-1], e[j]
		}
	}
}

func less(a, b EntryPoint) bool {
	if a.Track != b.Track {
		return a.Track < b.Track
	}
	return a.LSN < b.LSN
}

// TrackInfo is one TRACKS.SVD record.
type TrackInfo struct {
	CGMS      byte // copy generation management system bits
	AudioInfo byte
}

// WriteTracks renders the SVCD per-track CGMS/audio-info table.
func WriteTracks(buf []byte, tracks []TrackInfo) error {
	if len(buf) < sectorSize {
		return fmt.Errorf("%w: need %d bytes, got %d", ErrBufferTooSmall, sectorSize, len(buf))
	}
	if 10+len(tracks)*2 > sectorSize {
		return fmt.Errorf("%w: %d tracks do not fit in one sector", ErrBufferTooSmall, len(tracks))
	}
	for i := range buf[:sectorSize] {
		buf[i] = 0
	}

	vbin.PutStringPadded(buf, 0, 8, "TRACKSVD", ' ')
	buf[8] = formatVersionByte(TypeSVCD)
	buf[9] = byte(len(tracks))

	off := 10
	for _, t := range tracks {
		buf[off] = t.CGMS
		buf[off+1] = t.AudioInfo
		off += 2
	}
	return nil
}
