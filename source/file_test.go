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
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/vcdauthoring/vcdauthor/source"
)

func writeTempFile(t *testing.T, content []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "avseq01.dat")
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	return path
}

func TestFileSourceStatAndRead(t *testing.T) {
	t.Parallel()

	content := bytes.Repeat([]byte{0xAB}, 4096)
	path := writeTempFile(t, content)

	open := source.File(path)
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

func TestFileSourceSeek(t *testing.T) {
	t.Parallel()

	content := []byte("0123456789")
	path := writeTempFile(t, content)

	src, err := source.File(path)()
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer func() { _ = src.Close() }()

	if _, err := src.Seek(5, io.SeekStart); err != nil {
		t.Fatalf("seek: %v", err)
	}
	buf := make([]byte, 3)
	if _, err := io.ReadFull(src, buf); err != nil {
		t.Fatalf("read: %v", err)
	}
	if !bytes.Equal(buf, []byte("567")) {
		t.Errorf("got %q, want %q", buf, "567")
	}
}

func TestFileSourceOpenerReusable(t *testing.T) {
	t.Parallel()

	path := writeTempFile(t, []byte("reusable"))
	open := source.File(path)

	for i := 0; i < 2; i++ {
		src, err := open()
		if err != nil {
			t.Fatalf("open #%d: %v", i, err)
		}
		if _, err := io.ReadAll(src); err != nil {
			t.Fatalf("read #%d: %v", i, err)
		}
		if err := src.Close(); err != nil {
			t.Fatalf("close #%d: %v", i, err)
		}
	}
}

func TestFileSourceMissing(t *testing.T) {
	t.Parallel()

	_, err := source.File(filepath.Join(t.TempDir(), "missing.dat"))()
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}
