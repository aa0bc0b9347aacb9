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

package mpeg

import (
	"encoding/binary"
)

// MPEG-PS / PES start codes (ISO/IEC 13818-1).
const (
	packStartCode     = 0x000001BA
	systemHeaderCode  = 0x000001BB
	privateStream1    = 0xBD // OGT sub-picture overlay in VCD/SVCD
	paddingStream     = 0xBE
	pictureStartCode  = 0x00000100
	sequenceHdrCode   = 0x000001B3
	sequenceEndCode   = 0x000001B7
	extensionStartHdr = 0x000001B5
	videoStreamMin    = 0xE0
	videoStreamMax    = 0xEF
	audioStreamMin    = 0xC0
	audioStreamMax    = 0xDF
)

// startCodeAt reports the 4-byte start code beginning at buf[off], or 0 if
// out of range.
func startCodeAt(buf []byte, off int) uint32 {
	if off < 0 || off+4 > len(buf) {
		return 0
	}
	return binary.BigEndian.Uint32(buf[off : off+4])
}

// classify inspects a single PackSize-byte pack and returns its
// classification flags along with whether the pack begins with a fresh
// MPEG-PS pack header (pack_start_code) — the "begins a new pack" condition
// the access-point policy checks.
func classify(buf []byte) (PacketFlags, bool) {
	if allZero(buf) {
		return PacketFlags{Type: Zero}, false
	}

	off := 0
	newPack := startCodeAt(buf, 0) == packStartCode
	if newPack {
		off = skipPackHeader(buf)
		if startCodeAt(buf, off) == systemHeaderCode {
			off = skipSystemHeader(buf, off)
		}
	}

	if off+4 > len(buf) {
		return PacketFlags{Type: Empty}, newPack
	}

	code := startCodeAt(buf, off)
	streamByte := byte(code & 0xFF)
	prefix := code &^ 0xFF

	if prefix != 0x00000100 {
		return PacketFlags{Type: Invalid}, newPack
	}

	switch {
	case streamByte >= videoStreamMin && streamByte <= videoStreamMax:
		return classifyVideo(buf, off), newPack
	case streamByte >= audioStreamMin && streamByte <= audioStreamMax:
		return classifyAudio(buf, off, streamByte), newPack
	case streamByte == privateStream1:
		return classifyOGT(buf, off), newPack
	case streamByte == paddingStream:
		return PacketFlags{Type: Empty}, newPack
	default:
		return PacketFlags{Type: Invalid}, newPack
	}
}

func allZero(buf []byte) bool {
	for _, b := range buf {
		if b != 0 {
			return false
		}
	}
	return true
}

// skipPackHeader returns the offset just past a 14-byte MPEG-2 pack header
// (the pack_start_code through pack_stuffing_length and its stuffing
// bytes).
func skipPackHeader(buf []byte) int {
	const base = 14
	if base > len(buf) {
		return len(buf)
	}
	stuffing := int(buf[base-1] & 0x07)
	end := base + stuffing
	if end > len(buf) {
		return len(buf)
	}
	return end
}

func skipSystemHeader(buf []byte, off int) int {
	if off+6 > len(buf) {
		return len(buf)
	}
	length := int(binary.BigEndian.Uint16(buf[off+4 : off+6]))
	end := off + 6 + length
	if end > len(buf) {
		return len(buf)
	}
	return end
}

// pesHeaderLen returns the offset of the PES payload relative to off (the
// start of the PES start code), and whether a PTS was present.
func pesHeaderLen(buf []byte, off int) (payloadOff int, hasPTS bool, pts float64) {
	if off+9 > len(buf) {
		return off, false, 0
	}
	flags := buf[off+7]
	headerDataLen := int(buf[off+8])
	payloadOff = off + 9 + headerDataLen

	if flags&0x80 != 0 && off+9+5 <= len(buf) {
		pts = decodePTS(buf[off+9 : off+9+5])
		hasPTS = true
	}
	return payloadOff, hasPTS, pts
}

// decodePTS decodes a 5-byte PTS/DTS field (33-bit value split across
// marker bits) into seconds at the MPEG 90kHz clock.
func decodePTS(b []byte) float64 {
	v := uint64(b[0]&0x0E) << 29
	v |= uint64(b[1]) << 22
	v |= uint64(b[2]&0xFE) << 14
	v |= uint64(b[3]) << 7
	v |= uint64(b[4]&0xFE) >> 1
	return float64(v) / 90000.0
}

func classifyVideo(buf []byte, off int) PacketFlags {
	payloadOff, hasPTS, pts := pesHeaderLen(buf, off)
	f := PacketFlags{Type: Video, HasPTS: hasPTS, PTS: pts}

	for p := payloadOff; p+4 <= len(buf); p++ {
		switch startCodeAt(buf, p) {
		case pictureStartCode:
			if p+5 < len(buf) {
				pictureType := (buf[p+5] >> 3) & 0x07
				if pictureType == 1 { // I-frame: still-picture candidates carry one
					f.StillNormal = true
				}
			}
		case sequenceEndCode:
			f.SeqEnd = true
		}
	}
	return f
}

func classifyAudio(buf []byte, off int, streamByte byte) PacketFlags {
	_, hasPTS, pts := pesHeaderLen(buf, off)
	f := PacketFlags{Type: Audio, HasPTS: hasPTS, PTS: pts}
	switch streamByte - audioStreamMin {
	case 0:
		f.Chan0 = true
	case 1:
		f.Chan1 = true
	default:
		f.Chan2 = true
	}
	return f
}

func classifyOGT(buf []byte, off int) PacketFlags {
	_, hasPTS, pts := pesHeaderLen(buf, off)
	return PacketFlags{Type: OGT, HasPTS: hasPTS, PTS: pts}
}

// streamID returns the PES stream_id byte of a classified audio/video pack,
// used to tell independent streams of the same type apart.
func streamID(buf []byte) byte {
	off := 0
	if startCodeAt(buf, 0) == packStartCode {
		off = skipPackHeader(buf)
		if startCodeAt(buf, off) == systemHeaderCode {
			off = skipSystemHeader(buf, off)
		}
	}
	if off+4 > len(buf) {
		return 0
	}
	return byte(startCodeAt(buf, off) & 0xFF)
}

// isIFrame reports whether buf's video PES carries an I-frame (picture_type
// == 1).
func isIFrame(buf []byte) bool {
	off := 0
	if startCodeAt(buf, 0) == packStartCode {
		off = skipPackHeader(buf)
		if startCodeAt(buf, off) == systemHeaderCode {
			off = skipSystemHeader(buf, off)
		}
	}
	payloadOff, _, _ := pesHeaderLen(buf, off)
	for p := payloadOff; p+6 <= len(buf); p++ {
		if startCodeAt(buf, p) == pictureStartCode {
			return (buf[p+5]>>3)&0x07 == 1
		}
	}
	return false
}

// scanSequenceHeader looks for an MPEG sequence_header in buf and, if
// found, decodes width/height/framerate/version/norm.
func scanSequenceHeader(buf []byte) (width, height int, fps float64, version int, norm Norm, ok bool) {
	for p := 0; p+12 <= len(buf); p++ {
		if startCodeAt(buf, p) != sequenceHdrCode {
			continue
		}
		width = int(buf[p+4])<<4 | int(buf[p+5])>>4
		height = int(buf[p+5]&0x0F)<<8 | int(buf[p+6])

		frCode := buf[p+7] & 0x0F
		fps = frameRateFor(frCode)

		norm = normFor(width, height, fps)
		version = 1
		if startCodeAt(buf, p+12) == extensionStartHdr {
			version = 2
		}
		return width, height, fps, version, norm, true
	}
	return 0, 0, 0, 0, NormOther, false
}

func frameRateFor(code byte) float64 {
	switch code {
	case 1:
		return 23.976
	case 2:
		return 24
	case 3:
		return 25
	case 4:
		return 29.97
	case 5:
		return 30
	default:
		return 0
	}
}

func normFor(width, height int, fps float64) Norm {
	switch {
	case width == 352 && height == 288 && fps == 25:
		return NormPAL
	case width == 352 && height == 240 && (fps == 29.97 || fps == 30):
		return NormNTSC
	case width == 352 && height == 240 && fps == 24:
		return NormFILM
	case width == 480 && height == 576 && fps == 25:
		return NormPALShq
	case width == 480 && height == 480 && (fps == 29.97 || fps == 30):
		return NormNTSCShq
	default:
		return NormOther
	}
}

// scanOffsetMarker is the private user-data start code VCD/SVCD encoders
// use to carry forward/backward SCAN offsets inside a video PES.
const scanOffsetMarker = 0x000001B2

// patchScanOffsets rewrites the forward/backward APS offsets (relative to
// the current pack index) into buf's MPEG user-data SCAN marker, if
// present.
func patchScanOffsets(buf []byte, idx, forward, backward int) {
	for p := 0; p+12 <= len(buf); p++ {
		if startCodeAt(buf, p) != scanOffsetMarker {
			continue
		}
		fwd, bwd := int32(NoAPS), int32(NoAPS)
		if forward != NoAPS {
			fwd = int32(forward - idx)
		}
		if backward != NoAPS {
			bwd = int32(backward - idx)
		}
		binary.BigEndian.PutUint32(buf[p+4:p+8], uint32(fwd))
		binary.BigEndian.PutUint32(buf[p+8:p+12], uint32(bwd))
		return
	}
}
