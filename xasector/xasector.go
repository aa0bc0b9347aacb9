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

// Package xasector formats CD-ROM XA Mode-2 sectors: raw 2352-byte sectors
// built from a sync pattern, a BCD MSF header, a duplicated 8-byte
// subheader, the 2048- or 2324-byte user payload, and an EDC. ECC is
// intentionally left zeroed; sinks that need a valid ECC must compute it
// themselves.
package xasector

import (
	"errors"
	"fmt"

	vbin "github.com/vcdauthoring/vcdauthor/internal/binary"
)

// Sizes of the fields making up a raw Mode-2 sector.
const (
	RawSectorSize = 2352
	SyncSize      = 12
	HeaderSize    = 4
	SubheaderSize = 8 // two identical 4-byte copies
	Form1UserSize = 2048
	Form2UserSize = 2324
	EDCSize       = 4
	ECCSize       = 276 // Form1 only; zeroed, never computed.

	// PregapLSN is the offset added to an LSN to get the standard CD
	// addressing base (2-second lead-in, 75 sectors/sec * 2 = 150).
	PregapLSN = 150
)

// Submode flag bits.
const (
	SMEOR   byte = 0x01
	SMVideo byte = 0x02
	SMAudio byte = 0x04
	SMData  byte = 0x08
	SMTrig  byte = 0x10
	SMForm2 byte = 0x20
	SMRealt byte = 0x40
	SMEOF   byte = 0x80
)

// Coding-info constants: VCD and SVCD disagree on what goes in the
// subheader's coding-information byte for audio/video sectors.
const (
	CIVCDVideo       byte = 0x0F
	CIVCDAudioStereo byte = 0x00
	CISVCDCommon     byte = 0x80
)

var syncPattern = [SyncSize]byte{
	0x00, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0x00,
}

// ErrBadPayloadSize indicates a payload that doesn't match the size implied
// by the FORM2 submode bit.
var ErrBadPayloadSize = errors.New("xasector: payload size does not match submode form bit")

// ErrBadRawSize indicates a raw Mode-2 payload that isn't exactly
// SubheaderSize+Form2UserSize+EDCSize bytes (2336), the on-disk size of a
// "raw Mode-2" custom file.
var ErrBadRawSize = errors.New("xasector: raw Mode-2 payload must be 2336 bytes")

// Subheader carries the four fields CD-ROM XA duplicates at offsets 16-19
// and 20-23 of every Mode-2 sector.
type Subheader struct {
	FileNumber    byte
	ChannelNumber byte
	Submode       byte
	CodingInfo    byte
}

// LSNToMSF converts a 0-based logical sector number to a BCD-encoded
// minute/second/frame address, applying the standard 150-sector pregap.
// Exported so info-file and PBC writers can address sectors the same way
// sector headers do.
func LSNToMSF(lsn uint32) (minBCD, secBCD, frameBCD byte) {
	addr := lsn + PregapLSN
	minute := addr / (75 * 60)
	second := (addr / 75) % 60
	frame := addr % 75
	return vbin.ToBCD(int(minute)), vbin.ToBCD(int(second)), vbin.ToBCD(int(frame))
}

// Format assembles a full 2352-byte Mode-2 sector from payload and
// subheader fields. payload must be Form1UserSize bytes when
// sh.Submode&SMForm2 == 0, or Form2UserSize bytes when it is set.
func Format(payload []byte, sh Subheader, lsn uint32) ([RawSectorSize]byte, error) {
	var out [RawSectorSize]byte

	form2 := sh.Submode&SMForm2 != 0
	wantLen := Form1UserSize
	if form2 {
		wantLen = Form2UserSize
	}
	if len(payload) != wantLen {
		return out, fmt.Errorf("%w: got %d bytes, want %d", ErrBadPayloadSize, len(payload), wantLen)
	}

	copy(out[0:SyncSize], syncPattern[:])

	mm, ss, ff := LSNToMSF(lsn)
	out[SyncSize] = mm
	out[SyncSize+1] = ss
	out[SyncSize+2] = ff
	out[SyncSize+3] = 0x02 // mode 2

	subOff := SyncSize + HeaderSize
	putSubheader(out[subOff:subOff+SubheaderSize], sh)

	dataOff := subOff + SubheaderSize
	copy(out[dataOff:dataOff+len(payload)], payload)

	edc := ComputeEDC(out[subOff : dataOff+len(payload)])
	edcOff := dataOff + len(payload)
	vbin.PutUint32LEAt(out[:], edcOff, edc)

	// ECC (Form1 only) is left zeroed; see package doc.
	return out, nil
}

// FormatRawMode2 wraps an already-assembled 2336-byte Mode-2 payload (8-byte
// subheader + 2324-byte data + 4-byte EDC, as supplied for a raw custom
// file) with sync and header bytes, without touching subheader or EDC.
func FormatRawMode2(raw []byte, lsn uint32) ([RawSectorSize]byte, error) {
	var out [RawSectorSize]byte

	wantLen := SubheaderSize + Form2UserSize + EDCSize
	if len(raw) != wantLen {
		return out, fmt.Errorf("%w: got %d bytes", ErrBadRawSize, len(raw))
	}

	copy(out[0:SyncSize], syncPattern[:])

	mm, ss, ff := LSNToMSF(lsn)
	out[SyncSize] = mm
	out[SyncSize+1] = ss
	out[SyncSize+2] = ff
	out[SyncSize+3] = 0x02

	copy(out[SyncSize+HeaderSize:], raw)
	return out, nil
}

func putSubheader(dst []byte, sh Subheader) {
	quad := [4]byte{sh.FileNumber, sh.ChannelNumber, sh.Submode, sh.CodingInfo}
	copy(dst[0:4], quad[:])
	copy(dst[4:8], quad[:])
}

// ParsedSector is the result of Parse: the fields recoverable from a raw
// Mode-2 sector produced by Format, round-trip.
type ParsedSector struct {
	LSN       uint32
	Form2     bool
	Subheader Subheader
	Payload   []byte
	EDCValid  bool
}

// ErrBadSync indicates the sector doesn't start with the Mode-2 sync
// pattern.
var ErrBadSync = errors.New("xasector: invalid sync pattern")

// Parse extracts sync/header/subheader/payload/EDC from a raw sector
// produced by Format, verifying the EDC in the process.
func Parse(raw [RawSectorSize]byte) (ParsedSector, error) {
	var ps ParsedSector

	if [SyncSize]byte(raw[0:SyncSize]) != syncPattern {
		return ps, ErrBadSync
	}

	mm := vbin.FromBCD(raw[SyncSize])
	ss := vbin.FromBCD(raw[SyncSize+1])
	ff := vbin.FromBCD(raw[SyncSize+2])
	addr := uint32((mm*60+ss)*75 + ff) //nolint:gosec // MSF fields are 0-99, bounded
	ps.LSN = addr - PregapLSN

	subOff := SyncSize + HeaderSize
	sh := Subheader{
		FileNumber:    raw[subOff],
		ChannelNumber: raw[subOff+1],
		Submode:       raw[subOff+2],
		CodingInfo:    raw[subOff+3],
	}
	ps.Subheader = sh
	ps.Form2 = sh.Submode&SMForm2 != 0

	dataOff := subOff + SubheaderSize
	dataLen := Form1UserSize
	if ps.Form2 {
		dataLen = Form2UserSize
	}
	ps.Payload = append([]byte(nil), raw[dataOff:dataOff+dataLen]...)

	want := ComputeEDC(raw[subOff : dataOff+dataLen])
	got := vbin.GetUint32LEAt(raw[:], dataOff+dataLen)
	ps.EDCValid = want == got

	return ps, nil
}
