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

package source

import (
	"fmt"

	"github.com/vcdauthoring/vcdauthor/archive"
)

// Resolve builds an Opener for path, which may name a plain file or, in
// MiSTer-style notation ("/drop/movies.zip/AVSEQ01.DAT"), a member inside
// a ZIP/7z/RAR archive. When path names an archive with no internal
// member given, the first file is used — the common case of one sequence
// or one custom file packed per archive.
func Resolve(path string) (Opener, error) {
	parsed, err := archive.ParsePath(path)
	if err != nil {
		return nil, fmt.Errorf("source: resolve %s: %w", path, err)
	}
	if parsed == nil {
		return File(path), nil
	}
	if parsed.InternalPath != "" {
		return Archived(parsed.ArchivePath, parsed.InternalPath), nil
	}

	arc, err := archive.Open(parsed.ArchivePath)
	if err != nil {
		return nil, fmt.Errorf("source: open archive %s: %w", parsed.ArchivePath, err)
	}
	defer func() { _ = arc.Close() }()

	files, err := arc.List()
	if err != nil {
		return nil, fmt.Errorf("source: list archive %s: %w", parsed.ArchivePath, err)
	}
	if len(files) == 0 {
		return nil, archive.EmptyArchiveError{Archive: parsed.ArchivePath}
	}
	return Archived(parsed.ArchivePath, files[0].Name), nil
}
