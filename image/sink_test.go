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

import "testing"

func TestCueKindString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		k    CueKind
		want string
	}{
		{TrackStart, "TrackStart"},
		{PregapStart, "PregapStart"},
		{SubIndex, "SubIndex"},
		{LeadOut, "LeadOut"},
		{CueKind(99), "Unknown"},
	}
	for _, tc := range tests {
		if got := tc.k.String(); got != tc.want {
			t.Errorf("CueKind(%d).String() = %q, want %q", tc.k, got, tc.want)
		}
	}
}
