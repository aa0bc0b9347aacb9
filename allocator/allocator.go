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

// Package allocator implements a deterministic sector allocator over the
// Logical Sector Number (LSN) address space of a disc image.
//
// The address space runs up to 333,000 sectors, so the allocator is a
// sorted run-length interval set rather than a dense bit-per-sector
// bitmap.
package allocator

import (
	"fmt"
	"sort"
)

// NoLSN is returned by Reserve/ReserveNext when no matching free run exists.
const NoLSN = -1

// ErrOverlap indicates an attempt to reserve a sector range that is already
// (fully or partially) reserved. Double-reserving a fixed sector is an
// invariant violation: it always signals a bug in the caller, never a
// recoverable user error.
var ErrOverlap = fmt.Errorf("allocator: overlapping reservation")

// run is a half-open reserved interval [Start, Start+Len).
type run struct {
	Start int64
	Len   int64
}

func (r run) end() int64 { return r.Start + r.Len }

// Allocator is a sparse, sorted set of reserved LSN ranges.
// The zero value is an empty allocator ready to use.
type Allocator struct {
	runs []run // sorted by Start, non-overlapping; touching runs are kept separate, never merged
}

// New returns an empty Allocator.
func New() *Allocator {
	return &Allocator{}
}

// indexAtOrAfter returns the index of the first run whose Start is >= lsn.
func (a *Allocator) indexAtOrAfter(lsn int64) int {
	return sort.Search(len(a.runs), func(i int) bool { return a.runs[i].Start >= lsn })
}

// overlaps reports whether [start, start+n) intersects any existing run.
func (a *Allocator) overlaps(start, n int64) bool {
	end := start + n
	// Any run starting before end and ending after start overlaps.
	idx := a.indexAtOrAfter(start)
	if idx > 0 {
		prev := a.runs[idx-1]
		if prev.end() > start {
			return true
		}
	}
	if idx < len(a.runs) && a.runs[idx].Start < end {
		return true
	}
	return false
}

// insert adds [start, start+n) to the run list, keeping it sorted. Callers
// must have already verified there is no overlap.
func (a *Allocator) insert(start, n int64) {
	idx := a.indexAtOrAfter(start)
	a.runs = append(a.runs, run{})
	copy(a.runs[idx+1:], a.runs[idx:])
	a.runs[idx] = run{Start: start, Len: n}
}

// Reserve reserves n contiguous sectors.
//
// If start is not NoLSN, it reserves exactly [start, start+n), returning
// NoLSN if any sector in that range is already reserved (the spec treats
// this as the allocator signaling an overlap to its caller, not as a panic
// — callers that expect the range to be free, e.g. the layout planner's
// fixed-address reservations, should treat a NoLSN result as
// allocator.ErrOverlap).
//
// If start is NoLSN, it behaves like ReserveNext(n).
func (a *Allocator) Reserve(start, n int64) int64 {
	if start == NoLSN {
		return a.ReserveNext(n)
	}
	if n <= 0 || a.overlaps(start, n) {
		return NoLSN
	}
	a.insert(start, n)
	return start
}

// ReserveNext scans from LSN 0 for the first run of n free sectors and
// reserves it, returning its starting LSN. Scanning always starts from 0,
// so results are deterministic for a fixed sequence of calls.
func (a *Allocator) ReserveNext(n int64) int64 {
	if n <= 0 {
		return NoLSN
	}

	cursor := int64(0)
	for _, r := range a.runs {
		if r.Start-cursor >= n {
			break
		}
		cursor = r.end()
	}

	a.insert(cursor, n)
	return cursor
}

// Free releases [start, start+n) that was previously reserved. Partial
// overlaps with existing runs are trimmed or split as needed.
func (a *Allocator) Free(start, n int64) {
	if n <= 0 {
		return
	}
	end := start + n

	var kept []run
	for _, r := range a.runs {
		switch {
		case r.end() <= start || r.Start >= end:
			// No overlap with the freed range.
			kept = append(kept, r)
		case r.Start < start && r.end() > end:
			// Freed range is a strict interior slice: split into two runs.
			kept = append(kept, run{Start: r.Start, Len: start - r.Start})
			kept = append(kept, run{Start: end, Len: r.end() - end})
		case r.Start < start:
			kept = append(kept, run{Start: r.Start, Len: start - r.Start})
		case r.end() > end:
			kept = append(kept, run{Start: end, Len: r.end() - end})
		}
		// Fully-contained runs are dropped entirely.
	}
	a.runs = kept
}

// Highest returns the highest allocated LSN, or NoLSN if nothing is
// reserved.
func (a *Allocator) Highest() int64 {
	if len(a.runs) == 0 {
		return NoLSN
	}
	return a.runs[len(a.runs)-1].end() - 1
}

// IsReserved reports whether the given LSN is reserved.
func (a *Allocator) IsReserved(lsn int64) bool {
	idx := a.indexAtOrAfter(lsn + 1)
	if idx == 0 {
		return false
	}
	r := a.runs[idx-1]
	return lsn >= r.Start && lsn < r.end()
}
