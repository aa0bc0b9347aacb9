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
	"bytes"
	"encoding/binary"
	"fmt"
	"sort"

	"github.com/vcdauthoring/vcdauthor/mpeg"
)

// buildPack assembles a synthetic PackSize pack carrying one video or audio
// PES, mirroring the fixtures mpeg's own tests use.
func buildPack(streamByte byte, pts *float64, iFrame bool) []byte {
	buf := make([]byte, mpeg.PackSize)
	binary.BigEndian.PutUint32(buf[0:4], 0x000001BA)
	buf[13] = 0xF8 // no pack stuffing bytes

	off := 14
	binary.BigEndian.PutUint32(buf[off:off+4], 0x00000100|uint32(streamByte))

	headerDataLen := 0
	if pts != nil {
		headerDataLen = 5
		buf[off+7] = 0x80
	}
	buf[off+8] = byte(headerDataLen)
	if pts != nil {
		encodePTS(buf[off+9:off+14], *pts)
	}

	payloadOff := off + 9 + headerDataLen
	if iFrame && payloadOff+6 <= len(buf) {
		binary.BigEndian.PutUint32(buf[payloadOff:payloadOff+4], 0x00000100)
		buf[payloadOff+5] = 1 << 3 // picture_coding_type = 1 (I-frame)
	}
	return buf
}

func encodePTS(b []byte, seconds float64) {
	v := uint64(seconds * 90000.0)
	b[0] = byte((v>>29)&0x0E) | 0x21
	b[1] = byte(v >> 22)
	b[2] = byte((v>>14)&0xFE) | 0x01
	b[3] = byte(v >> 7)
	b[4] = byte((v<<1)&0xFE) | 0x01
}

// memSource is an in-memory, repeatably-openable source.DataSource backed
// by a byte slice.
type memSource struct {
	*bytes.Reader
	closed bool
}

func newMemSource(data []byte) *memSource {
	return &memSource{Reader: bytes.NewReader(data)}
}

func (m *memSource) Stat() (int64, error) {
	return m.Reader.Size(), nil
}

func (m *memSource) Close() error {
	m.closed = true
	return nil
}

func concatPacks(packs ...[]byte) []byte {
	var buf bytes.Buffer
	for _, p := range packs {
		buf.Write(p)
	}
	return buf.Bytes()
}

// fakeSink records every call made to it in order, asserting nothing
// itself: tests inspect its fields after Write returns.
type fakeSink struct {
	cues    []CueEntry
	written map[uint32][2352]byte
	order   []uint32
	freed   bool
}

func newFakeSink() *fakeSink {
	return &fakeSink{written: make(map[uint32][2352]byte)}
}

func (f *fakeSink) SetCueSheet(cues []CueEntry) error {
	f.cues = cues
	return nil
}

func (f *fakeSink) Write(lsn uint32, sector [2352]byte) error {
	if len(f.order) > 0 && lsn <= f.order[len(f.order)-1] {
		return fmt.Errorf("fakeSink: lsn %d out of order after %d", lsn, f.order[len(f.order)-1])
	}
	f.written[lsn] = sector
	f.order = append(f.order, lsn)
	return nil
}

func (f *fakeSink) Free() error {
	f.freed = true
	return nil
}

func (f *fakeSink) sortedLSNs() []uint32 {
	out := append([]uint32(nil), f.order...)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
