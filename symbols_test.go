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

package vcdauthor

import (
	"testing"

	"github.com/vcdauthoring/vcdauthor/layout"
)

func TestBuildSymbolTableCoversSequencesSegmentsAndEntries(t *testing.T) {
	t.Parallel()

	d, _ := New(layout.VCD2)
	seq, err := d.AddSequence("AVSEQ01", minimalSequence())
	if err != nil {
		t.Fatalf("AddSequence: %v", err)
	}
	if _, err := d.AddSegment("ITEM0001", minimalSequence()); err != nil {
		t.Fatalf("AddSegment: %v", err)
	}
	if err := d.AddEntryPoint(seq, "chapter1", 0); err != nil {
		t.Fatalf("AddEntryPoint: %v", err)
	}

	table := d.buildSymbolTable()

	seqVal, ok := table["AVSEQ01"]
	if !ok {
		t.Fatal("AVSEQ01 missing from symbol table")
	}
	segVal, ok := table["ITEM0001"]
	if !ok {
		t.Fatal("ITEM0001 missing from symbol table")
	}
	entryVal, ok := table["chapter1"]
	if !ok {
		t.Fatal("chapter1 missing from symbol table")
	}

	if seqVal >= segmentSymbolBase {
		t.Errorf("sequence value %d collides with the segment band", seqVal)
	}
	if segVal < segmentSymbolBase || segVal >= entrySymbolBase {
		t.Errorf("segment value %d is not in the segment band", segVal)
	}
	if entryVal < entrySymbolBase {
		t.Errorf("entry value %d is not in the entry band", entryVal)
	}
}

func TestBuildSymbolTableOmitsUnnamedItems(t *testing.T) {
	t.Parallel()

	d, _ := New(layout.VCD2)
	if _, err := d.AddSequence("", minimalSequence()); err != nil {
		t.Fatalf("AddSequence: %v", err)
	}

	table := d.buildSymbolTable()
	if len(table) != 0 {
		t.Errorf("table = %v, want empty for an unnamed sequence", table)
	}
}
