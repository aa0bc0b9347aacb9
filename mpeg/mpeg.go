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

// Package mpeg scans MPEG-1/2 program-stream data packed into fixed
// 2324-byte CD-sector payloads and classifies each pack so the layout
// planner and image writer can reason about it without re-parsing the
// stream.
//
// The scanner is pure and restartable: GetPacket never depends on state
// left behind by a previous call, only on the pack index built by Scan.
package mpeg

import (
	"bufio"
	"errors"
	"fmt"
	"io"

	lru "github.com/hashicorp/golang-lru/v2"
)

// PackSize is the fixed size of one MPEG-PS pack as stored in a CD-ROM XA
// Form2 user payload.
const PackSize = 2324

// PacketType classifies a single pack.
type PacketType int

const (
	Invalid PacketType = iota
	Video
	Audio
	OGT
	Empty
	Zero
)

func (t PacketType) String() string {
	switch t {
	case Video:
		return "VIDEO"
	case Audio:
		return "AUDIO"
	case OGT:
		return "OGT"
	case Empty:
		return "EMPTY"
	case Zero:
		return "ZERO"
	default:
		return "INVALID"
	}
}

// Norm identifies an MPEG video norm and its canonical resolution/framerate.
type Norm int

const (
	NormOther Norm = iota
	NormPAL
	NormNTSC
	NormFILM
	NormPALShq
	NormNTSCShq
)

// Dimensions reports the canonical width, height and frames-per-second for
// n, or (0, 0, 0) for NormOther.
func (n Norm) Dimensions() (width, height int, fps float64) {
	switch n {
	case NormPAL:
		return 352, 288, 25
	case NormNTSC:
		return 352, 240, 30
	case NormFILM:
		return 352, 240, 24
	case NormPALShq:
		return 480, 576, 25
	case NormNTSCShq:
		return 480, 480, 30
	default:
		return 0, 0, 0
	}
}

// AudioLayout describes how many independent audio streams a sequence
// carries.
type AudioLayout int

const (
	AudioNone AudioLayout = iota
	AudioSingleStream
	AudioDualStream
	AudioMultichannel
)

// PacketFlags carries the per-pack classification detail beyond PacketType.
type PacketFlags struct {
	Type PacketType

	HasPTS bool
	PTS    float64 // seconds

	// Video-only: still-picture resolution flags and end-of-sequence marker.
	StillNormal bool // e0
	StillHi     bool // e1
	StillLo     bool // e2
	SeqEnd      bool

	// Audio-only: stream-channel membership mask.
	Chan0 bool // c0
	Chan1 bool // c1
	Chan2 bool // c2
}

// Info is the result of a full scan.
type Info struct {
	Version     int // 1 or 2
	Norm        Norm
	Width       int
	Height      int
	FPS         float64
	AudioLayout AudioLayout
	PacketCount int
	Playtime    float64 // seconds

	// APS is the list of pack indices that qualify as access points.
	APS []int
}

// ErrInvalidPacket is returned by Scan/GetPacket when a pack cannot be
// classified at all; this always fails the write pipeline.
var ErrInvalidPacket = errors.New("mpeg: invalid packet")

// Scanner scans a seekable MPEG-PS byte stream organized as PackSize-byte
// packs.
type Scanner struct {
	r          io.ReadSeeker
	relaxedAPS bool
	offsets    []int64 // byte offset of pack i within the stream
	aps        []int   // ascending pack indices that qualify as access points
	cache      *lru.Cache[int, []byte]
	audioIDs   map[byte]bool
}

// NewScanner constructs a Scanner over r. relaxedAPS controls the access
// point qualification policy: when false, an APS must coincide with an
// I-frame that also begins a new pack; when true, any I-frame pack
// qualifies.
func NewScanner(r io.ReadSeeker, relaxedAPS bool) (*Scanner, error) {
	cache, err := lru.New[int, []byte](256)
	if err != nil {
		return nil, fmt.Errorf("mpeg: build packet cache: %w", err)
	}
	return &Scanner{
		r:          r,
		relaxedAPS: relaxedAPS,
		cache:      cache,
		audioIDs:   make(map[byte]bool),
	}, nil
}

// Scan walks the entire stream once, building the pack-offset index used by
// GetPacket and computing Info. It must be called before GetPacket.
func (s *Scanner) Scan() (Info, error) {
	var info Info
	info.Version = 2

	if _, err := s.r.Seek(0, io.SeekStart); err != nil {
		return info, fmt.Errorf("mpeg: seek to start: %w", err)
	}
	br := bufio.NewReaderSize(s.r, PackSize)

	var (
		idx         int
		lastIFrame  = -1
		sawSequence bool
	)

	for {
		buf := make([]byte, PackSize)
		n, err := io.ReadFull(br, buf)
		if errors.Is(err, io.EOF) {
			break
		}
		if errors.Is(err, io.ErrUnexpectedEOF) {
			// Trailing partial pack: pad with zero and classify as-is.
			for i := n; i < PackSize; i++ {
				buf[i] = 0
			}
		} else if err != nil {
			return info, fmt.Errorf("mpeg: read pack %d: %w", idx, err)
		}

		flags, isNewPack := classify(buf)
		if flags.Type == Invalid {
			return info, fmt.Errorf("%w: pack %d", ErrInvalidPacket, idx)
		}

		s.offsets = append(s.offsets, int64(idx)*PackSize)
		s.cache.Add(idx, buf)

		switch flags.Type {
		case Video:
			if !sawSequence {
				if w, h, fr, ver, norm, ok := scanSequenceHeader(buf); ok {
					info.Width, info.Height, info.FPS = w, h, fr
					info.Version = ver
					info.Norm = norm
					sawSequence = true
				}
			}
			if isIFrame(buf) {
				lastIFrame = idx
				qualifies := isNewPack || s.relaxedAPS
				if qualifies {
					info.APS = append(info.APS, idx)
				}
			}
			if flags.StillNormal || flags.StillHi || flags.StillLo {
				// still pictures are their own access points regardless
				// of the relaxed_aps policy
				if lastIFrame != idx {
					info.APS = append(info.APS, idx)
					lastIFrame = idx
				}
			}
		case Audio:
			id := streamID(buf)
			if !s.audioIDs[id] {
				s.audioIDs[id] = true
			}
		}

		if flags.HasPTS && flags.PTS > info.Playtime {
			info.Playtime = flags.PTS
		}

		idx++
	}

	info.PacketCount = idx
	info.AudioLayout = audioLayoutFor(s.audioIDs)
	s.aps = info.APS
	return info, nil
}

func audioLayoutFor(ids map[byte]bool) AudioLayout {
	switch len(ids) {
	case 0:
		return AudioNone
	case 1:
		return AudioSingleStream
	case 2:
		return AudioDualStream
	default:
		return AudioMultichannel
	}
}

// GetPacket returns pack i's raw bytes into out (which must be PackSize
// bytes) and its classification flags. When rewriteScanOffsets is true and
// the pack carries an MPEG user-data SCAN marker, the forward/backward APS
// offsets relative to i are patched into the copy returned in out; the
// scanner's own index is never mutated, keeping the call idempotent.
func (s *Scanner) GetPacket(i int, out []byte, flags *PacketFlags, rewriteScanOffsets bool) error {
	if i < 0 || i >= len(s.offsets) {
		return fmt.Errorf("mpeg: packet index %d out of range [0,%d)", i, len(s.offsets))
	}
	if len(out) != PackSize {
		return fmt.Errorf("mpeg: out buffer must be %d bytes, got %d", PackSize, len(out))
	}

	buf, ok := s.cache.Get(i)
	if !ok {
		var err error
		buf, err = s.readPack(i)
		if err != nil {
			return err
		}
		s.cache.Add(i, buf)
	}
	copy(out, buf)

	f, _ := classify(out)
	if f.Type == Invalid {
		return fmt.Errorf("%w: pack %d", ErrInvalidPacket, i)
	}
	if flags != nil {
		*flags = f
	}

	if rewriteScanOffsets && f.Type == Video {
		forward, backward := s.nearestAPS(i)
		patchScanOffsets(out, i, forward, backward)
	}
	return nil
}

func (s *Scanner) readPack(i int) ([]byte, error) {
	buf := make([]byte, PackSize)
	if _, err := s.r.Seek(s.offsets[i], io.SeekStart); err != nil {
		return nil, fmt.Errorf("mpeg: seek to pack %d: %w", i, err)
	}
	if _, err := io.ReadFull(s.r, buf); err != nil && !errors.Is(err, io.ErrUnexpectedEOF) {
		return nil, fmt.Errorf("mpeg: read pack %d: %w", i, err)
	}
	return buf, nil
}

// NoAPS marks a missing forward/backward access point in nearestAPS.
const NoAPS = -1

// nearestAPS returns the nearest access-point pack index at or after i
// (forward) and strictly before i (backward). s.aps is sorted ascending by
// Scan, so both searches are a binary search.
func (s *Scanner) nearestAPS(i int) (forward, backward int) {
	forward, backward = NoAPS, NoAPS
	lo, hi := 0, len(s.aps)
	for lo < hi {
		mid := (lo + hi) / 2
		if s.aps[mid] < i {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	if lo < len(s.aps) {
		forward = s.aps[lo]
	}
	if lo > 0 {
		backward = s.aps[lo-1]
	}
	return forward, backward
}
