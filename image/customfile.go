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

package image

import (
	"fmt"
	"io"

	"github.com/vcdauthoring/vcdauthor/layout"
	"github.com/vcdauthoring/vcdauthor/source"
)

// customReader streams a custom file chunk-by-chunk in its on-disc sector
// size (2336 raw Mode-2, or 2048 Form1), zero-padding the final short
// chunk. A zero-sized file never opens a source; its single placeholder
// sector is produced from an all-zero chunk.
type customReader struct {
	src       source.DataSource
	chunkSize int
}

func (w *writer) customReader(cf *layout.CustomFile) (*customReader, error) {
	if cr, ok := w.customReaders[cf]; ok {
		return cr, nil
	}

	cr := &customReader{chunkSize: int(cf.ChunkSize())}
	if cf.SizeBytes > 0 {
		src, err := cf.Source()
		if err != nil {
			return nil, fmt.Errorf("%w: open custom file %q: %v", ErrMedia, cf.ISOPath, err)
		}
		cr.src = src
	}

	w.customReaders[cf] = cr
	return cr, nil
}

func (cr *customReader) next() ([]byte, error) {
	chunk := make([]byte, cr.chunkSize)
	if cr.src == nil {
		return chunk, nil
	}

	n, err := io.ReadFull(cr.src, chunk)
	switch {
	case err == nil, err == io.ErrUnexpectedEOF: //nolint:errorlint // io.ReadFull returns these sentinels directly
		return chunk, nil
	case err == io.EOF && n == 0: //nolint:errorlint // same
		return chunk, nil
	default:
		return nil, fmt.Errorf("read custom file chunk: %w", err)
	}
}

func (cr *customReader) close() error {
	if cr.src == nil {
		return nil
	}
	if err := cr.src.Close(); err != nil {
		return fmt.Errorf("close: %w", err)
	}
	return nil
}
