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
	"github.com/spf13/afero"

	"github.com/vcdauthoring/vcdauthor/discfs"
)

// AddCustomTree walks root on fsys (the real filesystem, or
// afero.NewMemMapFs() in a test) and registers every file and directory
// it finds as custom content, the bulk way of populating a disc's
// custom-file/custom-directory lists instead of calling AddCustomFile/
// AddCustomDir one at a time.
func (d *Disc) AddCustomTree(fsys afero.Fs, root string, raw discfs.RawPredicate) error {
	if err := d.checkMutable(); err != nil {
		return err
	}

	dirs, files, err := discfs.Tree(fsys, root, raw)
	if err != nil {
		return err
	}
	d.customDirs = append(d.customDirs, dirs...)
	d.customFiles = append(d.customFiles, files...)
	return nil
}
