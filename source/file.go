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
	"os"
)

// fileSource adapts an *os.File to DataSource.
type fileSource struct {
	f *os.File
}

// File opens path as a plain filesystem DataSource. Each call to the
// returned Opener opens a fresh file descriptor, so it is safe to reuse
// across multiple passes over the same disc build.
func File(path string) Opener {
	return func() (DataSource, error) {
		f, err := os.Open(path) //nolint:gosec // caller-supplied disc content path
		if err != nil {
			return nil, fmt.Errorf("source: open %s: %w", path, err)
		}
		return &fileSource{f: f}, nil
	}
}

func (s *fileSource) Stat() (int64, error) {
	info, err := s.f.Stat()
	if err != nil {
		return 0, fmt.Errorf("source: stat: %w", err)
	}
	return info.Size(), nil
}

func (s *fileSource) Seek(offset int64, whence int) (int64, error) {
	n, err := s.f.Seek(offset, whence)
	if err != nil {
		return n, fmt.Errorf("source: seek: %w", err)
	}
	return n, nil
}

func (s *fileSource) Read(buf []byte) (int, error) {
	n, err := s.f.Read(buf)
	if err != nil {
		return n, err //nolint:wrapcheck // io.EOF must pass through unwrapped
	}
	return n, nil
}

func (s *fileSource) Close() error {
	if err := s.f.Close(); err != nil {
		return fmt.Errorf("source: close: %w", err)
	}
	return nil
}
