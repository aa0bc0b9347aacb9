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
	"fmt"

	"github.com/spf13/afero"

	"github.com/vcdauthoring/vcdauthor/source"
)

// aferoSource adapts an afero.File to source.DataSource.
type aferoSource struct {
	f afero.File
}

// Open opens path on fsys as a source.DataSource, the afero equivalent of
// source.File. Each call to the returned Opener opens a fresh handle, so it
// is safe to reuse across the layout planner's sizing pass and the image
// writer's emission pass.
func Open(fsys afero.Fs, path string) source.Opener {
	return func() (source.DataSource, error) {
		f, err := fsys.Open(path)
		if err != nil {
			return nil, fmt.Errorf("discfs: open %s: %w", path, err)
		}
		return &aferoSource{f: f}, nil
	}
}

// opener is the internal alias Tree uses to build each CustomFile's Source.
func opener(fsys afero.Fs, path string) source.Opener {
	return Open(fsys, path)
}

func (s *aferoSource) Stat() (int64, error) {
	info, err := s.f.Stat()
	if err != nil {
		return 0, fmt.Errorf("discfs: stat: %w", err)
	}
	return info.Size(), nil
}

func (s *aferoSource) Seek(offset int64, whence int) (int64, error) {
	n, err := s.f.Seek(offset, whence)
	if err != nil {
		return n, fmt.Errorf("discfs: seek: %w", err)
	}
	return n, nil
}

func (s *aferoSource) Read(buf []byte) (int, error) {
	n, err := s.f.Read(buf)
	if err != nil {
		return n, err //nolint:wrapcheck // io.EOF must pass through unwrapped
	}
	return n, nil
}

func (s *aferoSource) Close() error {
	if err := s.f.Close(); err != nil {
		return fmt.Errorf("discfs: close: %w", err)
	}
	return nil
}
