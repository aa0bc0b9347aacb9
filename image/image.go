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
	"errors"
	"fmt"

	"github.com/vcdauthoring/vcdauthor/layout"
	"github.com/vcdauthoring/vcdauthor/xasector"
)

// ErrMedia reports a problem with the content being streamed: an invalid
// MPEG packet, a raw custom file whose size isn't a multiple of 2336, or a
// source read failure. It fails the in-progress write, leaving the sink
// partially written.
var ErrMedia = errors.New("image: media error")

// ErrSink reports an I/O failure returned by the sink.
var ErrSink = errors.New("image: sink error")

// ErrAborted reports that the progress callback returned non-zero; the
// writer stopped at the next callback point without unwinding partial
// sink output.
var ErrAborted = errors.New("image: aborted by progress callback")

const progressInterval = 75

// writer holds the running state of one Write call: the sector cursor, the
// progress callback's pending count, and the lazily-opened scanners/files
// that must each be closed once drained.
type writer struct {
	pl       *layout.Plan
	sink     Sink
	progress ProgressFunc
	roles    []role

	written       uint32
	sinceCallback uint32
	segScanners   map[*layout.SegmentItem]*segmentReader
	customReaders map[*layout.CustomFile]*customReader
}

// Write streams pl out to sink in ascending LSN order: the cue sheet first,
// then the ISO track, then the pre-track gap, then each sequence's
// gap/payload/gap triple. progress may be nil, in which case the write
// cannot be cancelled mid-stream.
func Write(pl *layout.Plan, sink Sink, progress ProgressFunc) (err error) {
	if progress == nil {
		progress = func(uint32, uint32) int { return 0 }
	}

	if err := sink.SetCueSheet(BuildCueSheet(pl)); err != nil {
		return fmt.Errorf("%w: set cue sheet: %v", ErrSink, err)
	}
	w := &writer{
		pl:            pl,
		sink:          sink,
		progress:      progress,
		roles:         buildRoles(pl),
		segScanners:   make(map[*layout.SegmentItem]*segmentReader),
		customReaders: make(map[*layout.CustomFile]*customReader),
	}
	defer func() {
		if cerr := w.closeRemaining(); cerr != nil && err == nil {
			err = cerr
		}
		if ferr := sink.Free(); ferr != nil && err == nil {
			err = fmt.Errorf("%w: free: %v", ErrSink, ferr)
		}
	}()

	if err := w.writeISOTrack(); err != nil {
		return err
	}
	if err := w.writeSequences(); err != nil {
		return err
	}
	return nil
}

// closeRemaining closes every segment/custom-file reader the ISO-track pass
// opened, whether the write completed or aborted partway through.
func (w *writer) closeRemaining() error {
	if err := w.closeSegmentReaders(); err != nil {
		return err
	}
	return w.closeCustomReaders()
}

// emit hands one formatted sector to the sink and advances the progress
// cursor, forcing a callback at forced (a track boundary) even if fewer
// than progressInterval sectors have elapsed since the last one.
func (w *writer) emit(lsn uint32, sector [2352]byte, forced bool) error {
	if err := w.sink.Write(lsn, sector); err != nil {
		return fmt.Errorf("%w: write lsn %d: %v", ErrSink, lsn, err)
	}
	w.written++
	w.sinceCallback++

	if forced || w.sinceCallback >= progressInterval {
		w.sinceCallback = 0
		if w.progress(w.written, w.pl.TotalSectors()) != 0 {
			return ErrAborted
		}
	}
	return nil
}

func zeroForm1(lsn uint32, sm, fnum byte) ([2352]byte, error) {
	payload := make([]byte, xasector.Form1UserSize)
	sec, err := xasector.Format(payload, xasector.Subheader{FileNumber: fnum, Submode: sm}, lsn)
	if err != nil {
		return sec, fmt.Errorf("image: format zero sector: %w", err)
	}
	return sec, nil
}

func zeroForm2(lsn uint32, sm, fnum byte) ([2352]byte, error) {
	payload := make([]byte, xasector.Form2UserSize)
	sm |= xasector.SMForm2
	sec, err := xasector.Format(payload, xasector.Subheader{FileNumber: fnum, Submode: sm}, lsn)
	if err != nil {
		return sec, fmt.Errorf("image: format zero sector: %w", err)
	}
	return sec, nil
}
