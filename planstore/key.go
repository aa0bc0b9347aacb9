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

package planstore

import (
	"bytes"
	"crypto/sha256"
	"encoding/gob"
	"encoding/hex"
	"fmt"

	"github.com/vcdauthoring/vcdauthor/layout"
)

// hashableParams mirrors the fields of layout.Params that affect begin_
// output's result, omitting source.Opener closures (not comparable, not
// serializable, and irrelevant to the computed layout — only each item's
// id and packet/byte count matter).
type hashableParams struct {
	Type          layout.DiscType
	VolumeLabel   string
	ApplicationID string
	AlbumID       string
	VolumeCount   uint16
	VolumeNumber  uint16
	Restriction   byte

	RelaxedAPS     bool
	SVCDMPEGAV     bool
	SVCDEntrySVD   bool
	UpdateScanOffs bool

	SequenceIDs          []string
	SequencePacketCounts []int
	SegmentIDs           []string
	SegmentPacketCounts  []int
	CustomFilePaths      []string
	CustomFileSizes      []uint32
	CustomFileRaw        []bool
	CustomDirs           []string

	PBCNodeCount int

	PreTrackGap int64
	PreDataGap  int64
	PostDataGap int64
}

// Key hashes the parameters that determine begin_output's result into a
// stable, hex-encoded cache key.
func Key(p layout.Params) (string, error) {
	h := hashableParams{
		Type:           p.Type,
		VolumeLabel:    p.VolumeLabel,
		ApplicationID:  p.ApplicationID,
		AlbumID:        p.AlbumID,
		VolumeCount:    p.VolumeCount,
		VolumeNumber:   p.VolumeNumber,
		Restriction:    p.Restriction,
		RelaxedAPS:     p.RelaxedAPS,
		SVCDMPEGAV:     p.SVCDMPEGAV,
		SVCDEntrySVD:   p.SVCDEntrySVD,
		UpdateScanOffs: p.UpdateScanOffs,
		CustomDirs:     p.CustomDirs,
		PBCNodeCount:   len(p.PBCNodes),
		PreTrackGap:    p.PreTrackGap,
		PreDataGap:     p.PreDataGap,
		PostDataGap:    p.PostDataGap,
	}
	for _, s := range p.Sequences {
		h.SequenceIDs = append(h.SequenceIDs, s.ID)
		h.SequencePacketCounts = append(h.SequencePacketCounts, s.Info.PacketCount)
	}
	for _, s := range p.Segments {
		h.SegmentIDs = append(h.SegmentIDs, s.ID)
		h.SegmentPacketCounts = append(h.SegmentPacketCounts, s.Info.PacketCount)
	}
	for _, cf := range p.CustomFiles {
		h.CustomFilePaths = append(h.CustomFilePaths, cf.ISOPath)
		h.CustomFileSizes = append(h.CustomFileSizes, cf.SizeBytes)
		h.CustomFileRaw = append(h.CustomFileRaw, cf.Raw)
	}

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(h); err != nil {
		return "", fmt.Errorf("planstore: encode key: %w", err)
	}

	sum := sha256.Sum256(buf.Bytes())
	return hex.EncodeToString(sum[:]), nil
}
