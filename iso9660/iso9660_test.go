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

package iso9660

import "testing"

func TestMkfileRejectsLowercase(t *testing.T) {
	t.Parallel()

	b := New()
	if err := b.Mkdir("vcd"); err == nil {
		t.Error("Mkdir(\"vcd\") succeeded, want error (lowercase)")
	}
	if err := b.Mkfile("vcd/info.vcd", 0, 0, false, 0); err == nil {
		t.Error("Mkfile(\"vcd/info.vcd\") succeeded, want error (lowercase)")
	}
}

func TestMkfileAcceptsValidPath(t *testing.T) {
	t.Parallel()

	b := New()
	if err := b.Mkdir("VCD"); err != nil {
		t.Fatalf("Mkdir(\"VCD\") error = %v", err)
	}
	if err := b.Mkfile("VCD/INFO.VCD", 100, 2048, false, 0); err != nil {
		t.Fatalf("Mkfile(\"VCD/INFO.VCD\") error = %v", err)
	}
}

func TestMkfileRejectsLongComponent(t *testing.T) {
	t.Parallel()

	b := New()
	if err := b.Mkfile("TOOLONGNAME.DAT", 0, 0, false, 0); err == nil {
		t.Error("expected error for a 11-character base name")
	}
}

func TestMkdirDuplicateIsIdempotent(t *testing.T) {
	t.Parallel()

	b := New()
	if err := b.Mkdir("SEGMENT"); err != nil {
		t.Fatalf("first Mkdir() error = %v", err)
	}
	if err := b.Mkdir("SEGMENT"); err != nil {
		t.Errorf("second Mkdir() of the same directory should be idempotent, got %v", err)
	}
}

func TestGetSizeGrowsWithEntries(t *testing.T) {
	t.Parallel()

	b := New()
	before := b.GetSize()

	if err := b.Mkdir("MPEGAV"); err != nil {
		t.Fatalf("Mkdir() error = %v", err)
	}
	if err := b.Mkfile("MPEGAV/AVSEQ01.DAT", 1000, 4096, false, 1); err != nil {
		t.Fatalf("Mkfile() error = %v", err)
	}

	after := b.GetSize()
	if after < before {
		t.Errorf("GetSize() after adding entries = %d, want >= %d", after, before)
	}
}

func TestDumpEntriesRoundTrip(t *testing.T) {
	t.Parallel()

	b := New()
	if err := b.Mkdir("VCD"); err != nil {
		t.Fatalf("Mkdir() error = %v", err)
	}
	if err := b.Mkfile("VCD/INFO.VCD", 500, 2048, false, 0); err != nil {
		t.Fatalf("Mkfile() error = %v", err)
	}

	size := b.GetSize()
	buf := make([]byte, size*sectorSize)
	const baseExtent = 18
	if err := b.DumpEntries(buf, baseExtent); err != nil {
		t.Fatalf("DumpEntries() error = %v", err)
	}

	// Self record for the root directory starts at offset 0.
	recLen := buf[0]
	if recLen == 0 {
		t.Fatal("expected a non-zero self directory record length at offset 0")
	}
	if buf[0+33] != 0x00 {
		t.Errorf("expected self record identifier byte 0x00, got %#x", buf[33])
	}

	xaOff := int(33 + 1) // name len 1 (\x00), odd -> no pad byte
	if buf[xaOff+6] != 'X' || buf[xaOff+7] != 'A' {
		t.Errorf("expected XA signature at offset %d, got %q", xaOff+6, buf[xaOff+6:xaOff+8])
	}
}

func TestDumpPathTables(t *testing.T) {
	t.Parallel()

	b := New()
	if err := b.Mkdir("VCD"); err != nil {
		t.Fatalf("Mkdir() error = %v", err)
	}
	if err := b.Mkdir("MPEGAV"); err != nil {
		t.Fatalf("Mkdir() error = %v", err)
	}

	l, m := make([]byte, 2048), make([]byte, 2048)
	if err := b.DumpPathTables(l, m); err != nil {
		t.Fatalf("DumpPathTables() error = %v", err)
	}

	// Root record: name length 1, parent number 1.
	if l[0] != 1 {
		t.Errorf("root path record name length = %d, want 1", l[0])
	}
	if l[6] != 1 || l[7] != 0 {
		t.Errorf("root path record parent number = %d, want 1", uint16(l[6])|uint16(l[7])<<8)
	}
}
