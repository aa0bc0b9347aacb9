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

package source_test

import (
	"archive/zip"
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/vcdauthoring/vcdauthor/source"
)

func writeTestZIP(t *testing.T, files map[string][]byte) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "disc.zip")
	f, err := os.Create(path) //nolint:gosec // test fixture in temp dir
	if err != nil {
		t.Fatalf("create zip: %v", err)
	}
	defer func() { _ = f.Close() }()

	w := zip.NewWriter(f)
	for name, content := range files {
		fw, err := w.Create(name)
		if err != nil {
			t.Fatalf("create entry: %v", err)
		}
		if _, err := fw.Write(content); err != nil {
			t.Fatalf("write entry: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return path
}

func TestArchivedSourceReadsMember(t *testing.T) {
	t.Parallel()

	content := bytes.Repeat([]byte{0x5A}, 2324*3)
	path := writeTestZIP(t, map[string][]byte{"AVSEQ01.DAT": content})

	open := source.Archived(path, "AVSEQ01.DAT")
	src, err := open()
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer func() { _ = src.Close() }()

	size, err := src.Stat()
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if size != int64(len(content)) {
		t.Errorf("size = %d, want %d", size, len(content))
	}

	got, err := io.ReadAll(src)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !bytes.Equal(got, content) {
		t.Error("content mismatch")
	}
}

func TestArchivedSourceSeek(t *testing.T) {
	t.Parallel()

	path := writeTestZIP(t, map[string][]byte{"AVSEQ01.DAT": []byte("0123456789")})

	src, err := source.Archived(path, "AVSEQ01.DAT")()
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer func() { _ = src.Close() }()

	if _, err := src.Seek(-4, io.SeekEnd); err != nil {
		t.Fatalf("seek: %v", err)
	}
	buf := make([]byte, 4)
	if _, err := io.ReadFull(src, buf); err != nil {
		t.Fatalf("read: %v", err)
	}
	if !bytes.Equal(buf, []byte("6789")) {
		t.Errorf("got %q, want %q", buf, "6789")
	}
}

func TestResolvePlainFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "avseq01.dat")
	if err := os.WriteFile(path, []byte("plain"), 0o600); err != nil {
		t.Fatalf("write file: %v", err)
	}

	open, err := source.Resolve(path)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	src, err := open()
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer func() { _ = src.Close() }()

	got, err := io.ReadAll(src)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(got) != "plain" {
		t.Errorf("got %q, want %q", got, "plain")
	}
}

func TestResolveArchiveMember(t *testing.T) {
	t.Parallel()

	path := writeTestZIP(t, map[string][]byte{"folder/AVSEQ01.DAT": []byte("nested")})

	open, err := source.Resolve(path + "/folder/AVSEQ01.DAT")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	src, err := open()
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer func() { _ = src.Close() }()

	got, err := io.ReadAll(src)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(got) != "nested" {
		t.Errorf("got %q, want %q", got, "nested")
	}
}

func TestResolveArchiveAutoDetect(t *testing.T) {
	t.Parallel()

	path := writeTestZIP(t, map[string][]byte{"AVSEQ01.DAT": []byte("only-one")})

	open, err := source.Resolve(path)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	src, err := open()
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer func() { _ = src.Close() }()

	got, err := io.ReadAll(src)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(got) != "only-one" {
		t.Errorf("got %q, want %q", got, "only-one")
	}
}
