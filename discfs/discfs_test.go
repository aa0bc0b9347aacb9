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

package discfs

import (
	"io"
	"sort"
	"testing"

	"github.com/spf13/afero"
)

func writeFile(t *testing.T, fsys afero.Fs, path, content string) {
	t.Helper()
	if err := afero.WriteFile(fsys, path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestTreeCollectsDirsAndFiles(t *testing.T) {
	t.Parallel()

	fsys := afero.NewMemMapFs()
	writeFile(t, fsys, "/drop/readme.txt", "hello")
	writeFile(t, fsys, "/drop/extras/bonus.dat", "world!!")

	dirs, files, err := Tree(fsys, "/drop", nil)
	if err != nil {
		t.Fatalf("Tree: %v", err)
	}

	if len(dirs) != 1 || dirs[0] != "EXTRAS" {
		t.Fatalf("dirs = %v, want [EXTRAS]", dirs)
	}

	byPath := make(map[string]int)
	for i, f := range files {
		byPath[f.ISOPath] = i
	}
	if _, ok := byPath["README.TXT"]; !ok {
		t.Errorf("missing README.TXT in %v", files)
	}
	if _, ok := byPath["EXTRAS/BONUS.DAT"]; !ok {
		t.Errorf("missing EXTRAS/BONUS.DAT in %v", files)
	}

	bonus := files[byPath["EXTRAS/BONUS.DAT"]]
	if bonus.SizeBytes != 7 {
		t.Errorf("BONUS.DAT size = %d, want 7", bonus.SizeBytes)
	}
	if bonus.Raw {
		t.Error("BONUS.DAT should not be raw with a nil predicate")
	}
}

func TestTreeSourceReopensIndependently(t *testing.T) {
	t.Parallel()

	fsys := afero.NewMemMapFs()
	writeFile(t, fsys, "/drop/a.dat", "ABCDEF")

	_, files, err := Tree(fsys, "/drop", nil)
	if err != nil {
		t.Fatalf("Tree: %v", err)
	}
	if len(files) != 1 {
		t.Fatalf("got %d files, want 1", len(files))
	}

	for pass := 0; pass < 2; pass++ {
		src, err := files[0].Source()
		if err != nil {
			t.Fatalf("pass %d: Source: %v", pass, err)
		}
		got, err := io.ReadAll(src)
		if err != nil {
			t.Fatalf("pass %d: ReadAll: %v", pass, err)
		}
		if string(got) != "ABCDEF" {
			t.Errorf("pass %d: got %q, want ABCDEF", pass, got)
		}
		if err := src.Close(); err != nil {
			t.Fatalf("pass %d: Close: %v", pass, err)
		}
	}
}

func TestTreeRawPredicate(t *testing.T) {
	t.Parallel()

	fsys := afero.NewMemMapFs()
	writeFile(t, fsys, "/drop/a.raw", "xx")
	writeFile(t, fsys, "/drop/b.dat", "yy")

	_, files, err := Tree(fsys, "/drop", func(isoPath string) bool {
		return isoPath == "A.RAW"
	})
	if err != nil {
		t.Fatalf("Tree: %v", err)
	}

	sort.Slice(files, func(i, j int) bool { return files[i].ISOPath < files[j].ISOPath })
	if !files[0].Raw {
		t.Errorf("%s should be raw", files[0].ISOPath)
	}
	if files[1].Raw {
		t.Errorf("%s should not be raw", files[1].ISOPath)
	}
}

func TestTreeDeterministicAcrossRuns(t *testing.T) {
	t.Parallel()

	fsys := afero.NewMemMapFs()
	writeFile(t, fsys, "/drop/z.dat", "1")
	writeFile(t, fsys, "/drop/a.dat", "2")
	writeFile(t, fsys, "/drop/m/n.dat", "3")

	dirs1, files1, err := Tree(fsys, "/drop", nil)
	if err != nil {
		t.Fatalf("Tree: %v", err)
	}
	dirs2, files2, err := Tree(fsys, "/drop", nil)
	if err != nil {
		t.Fatalf("Tree: %v", err)
	}

	if len(dirs1) != len(dirs2) || len(files1) != len(files2) {
		t.Fatalf("run counts differ: dirs %d/%d files %d/%d", len(dirs1), len(dirs2), len(files1), len(files2))
	}
	for i := range dirs1 {
		if dirs1[i] != dirs2[i] {
			t.Errorf("dirs[%d] = %q, want %q", i, dirs2[i], dirs1[i])
		}
	}
	for i := range files1 {
		if files1[i].ISOPath != files2[i].ISOPath {
			t.Errorf("files[%d] = %q, want %q", i, files2[i].ISOPath, files1[i].ISOPath)
		}
	}
}
