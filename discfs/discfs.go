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

// Package discfs stages a user's custom-file/custom-directory tree for
// layout.Compile. A caller drops files under a root on any afero.Fs — the
// real OS filesystem or, for tests, afero.NewMemMapFs() — and Tree walks it
// into the []string custom-directory list and []*layout.CustomFile slice
// layout.Params takes directly.
package discfs

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/vcdauthoring/vcdauthor/layout"
	"github.com/vcdauthoring/vcdauthor/source"
)

// RawPredicate reports whether the file at isoPath (the path it will be
// registered under on the ISO9660 tree, forward-slashed, relative to the
// scanned root) should be staged as raw Mode-2 (2336-byte sectors the
// caller has already wrapped with subheader+EDC) instead of Form1
// (2048-byte sectors the image writer wraps itself). A nil predicate
// stages every file as Form1.
type RawPredicate func(isoPath string) bool

// Tree walks fsys under root in lexical order and returns the custom
// directories and files it contains, ready to assign to
// layout.Params.CustomDirs/CustomFiles. Walking in lexical order, with no
// dependency on filesystem metadata beyond name and size, keeps repeated
// scans of an unchanged tree byte-identical across runs.
//
// Each returned CustomFile's Source reopens the file fresh from fsys on
// every call, satisfying source.Opener's "safe to invoke more than once"
// contract; StartExtent, Sectors and FileNum are left zero for
// layout.Compile to assign.
func Tree(fsys afero.Fs, root string, raw RawPredicate) ([]string, []*layout.CustomFile, error) {
	var dirs []string
	var files []*layout.CustomFile

	err := afero.Walk(fsys, root, func(walked string, info fs.FileInfo, walkErr error) error {
		if walkErr != nil {
			return fmt.Errorf("discfs: walk %s: %w", walked, walkErr)
		}
		if walked == root {
			return nil
		}

		rel, err := relISOPath(root, walked)
		if err != nil {
			return err
		}

		if info.IsDir() {
			dirs = append(dirs, rel)
			return nil
		}

		size := info.Size()
		if size < 0 || size > 1<<32-1 {
			return fmt.Errorf("discfs: %s: size %d out of range", walked, size)
		}

		isRaw := raw != nil && raw(rel)
		files = append(files, &layout.CustomFile{
			ISOPath:   rel,
			Source:    opener(fsys, walked),
			SizeBytes: uint32(size), //nolint:gosec // bounds checked above
			Raw:       isRaw,
		})
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	return dirs, files, nil
}

// relISOPath renders walked's path relative to root as a forward-slashed,
// uppercased ISO9660-style path; the iso9660 builder performs the actual
// d-character/length validation when the file is registered.
func relISOPath(root, walked string) (string, error) {
	rel, err := filepath.Rel(root, walked)
	if err != nil {
		return "", fmt.Errorf("discfs: relative path for %s under %s: %w", walked, root, err)
	}
	if rel == "." || rel == "" {
		return "", fmt.Errorf("discfs: empty relative path for %s under %s", walked, root)
	}
	return strings.ToUpper(filepath.ToSlash(rel)), nil
}
