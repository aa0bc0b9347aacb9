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

import "github.com/vcdauthoring/vcdauthor/layout"

// BuildCueSheet renders the cue sequence for pl: a TrackStart at LSN 0,
// then a (PregapStart, TrackStart) pair per sequence item marking its
// pre_track/pre_data gap and payload boundary, and a final LeadOut one
// sector past the image's last sector.
func BuildCueSheet(pl *layout.Plan) []CueEntry {
	cues := []CueEntry{{LSN: 0, Kind: TrackStart}}

	cursor := pl.Params.PreTrackGap
	for _, seq := range pl.Params.Sequences {
		pregapLSN := pl.ISOSize + uint32(cursor) //nolint:gosec // bounded by MaxTotalSectors
		cursor += pl.Params.PreDataGap
		trackLSN := pl.ISOSize + uint32(cursor) //nolint:gosec // bounded by MaxTotalSectors
		cues = append(cues,
			CueEntry{LSN: pregapLSN, Kind: PregapStart},
			CueEntry{LSN: trackLSN, Kind: TrackStart},
		)
		cursor += int64(seq.Info.PacketCount) + pl.Params.PostDataGap
	}

	cues = append(cues, CueEntry{LSN: pl.TotalSectors(), Kind: LeadOut})
	return cues
}
