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

	"github.com/vcdauthoring/vcdauthor/xasector"
)

// writeISOTrack streams LSN 0..ISOSize-1, resolving each sector through the
// precomputed role table: dict-backed bytes, segment still-picture content,
// custom-file content, or zero fill.
func (w *writer) writeISOTrack() error {
	for lsn := uint32(0); lsn < w.pl.ISOSize; lsn++ {
		r := w.roles[lsn]

		var (
			sec [2352]byte
			err error
		)
		switch r.kind {
		case roleDict:
			sec, err = w.formatDictSector(lsn, r)
		case roleSegment:
			sec, err = w.formatSegmentSector(lsn, r)
		case roleCustomFile:
			sec, err = w.formatCustomFileSector(lsn, r)
		default:
			sec, err = zeroForm1(lsn, xasector.SMData, 0)
		}
		if err != nil {
			return err
		}

		forced := lsn == w.pl.ISOSize-1
		if err := w.emit(lsn, sec, forced); err != nil {
			return err
		}
	}

	return nil
}

func (w *writer) formatDictSector(lsn uint32, r role) ([2352]byte, error) {
	d := r.dict
	last := r.local == int64(len(d.Buf))/2048-1

	sm := byte(xasector.SMData)
	if last && d.EOR {
		sm |= xasector.SMEOR
	}
	if last && d.EOF {
		sm |= xasector.SMEOF
	}

	off := r.local * 2048
	payload := d.Buf[off : off+2048]
	sec, err := xasector.Format(payload, xasector.Subheader{Submode: sm}, lsn)
	if err != nil {
		return sec, fmt.Errorf("image: format dict sector %q: %w", d.Name, err)
	}
	return sec, nil
}

func (w *writer) formatCustomFileSector(lsn uint32, r role) ([2352]byte, error) {
	cf := r.cf
	last := r.local == int64(cf.Sectors)-1

	cr, err := w.customReader(cf)
	if err != nil {
		return [2352]byte{}, err
	}

	chunk, err := cr.next()
	if err != nil {
		return [2352]byte{}, fmt.Errorf("%w: custom file %q: %v", ErrMedia, cf.ISOPath, err)
	}

	if cf.Raw {
		sec, err := xasector.FormatRawMode2(chunk, lsn)
		if err != nil {
			return sec, fmt.Errorf("image: format custom file %q: %w", cf.ISOPath, err)
		}
		return sec, nil
	}

	sm := byte(xasector.SMData)
	if last {
		sm |= xasector.SMEOR | xasector.SMEOF
	}
	sec, err := xasector.Format(chunk, xasector.Subheader{FileNumber: cf.FileNum, Submode: sm}, lsn)
	if err != nil {
		return sec, fmt.Errorf("image: format custom file %q: %w", cf.ISOPath, err)
	}
	return sec, nil
}

func (w *writer) closeCustomReaders() error {
	for cf, cr := range w.customReaders {
		if err := cr.close(); err != nil {
			return fmt.Errorf("%w: close custom file %q: %v", ErrMedia, cf.ISOPath, err)
		}
	}
	return nil
}
