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

package allocator

import "testing"

func TestReserveFixed(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		prepare func(a *Allocator)
		start   int64
		n       int64
		want    int64
	}{
		{"empty allocator accepts any range", nil, 16, 1, 16},
		{"disjoint reservation succeeds", func(a *Allocator) { a.Reserve(0, 16) }, 16, 1, 16},
		{"overlapping reservation fails", func(a *Allocator) { a.Reserve(16, 2) }, 16, 1, NoLSN},
		{"partially overlapping reservation fails", func(a *Allocator) { a.Reserve(10, 10) }, 15, 10, NoLSN},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			a := New()
			if tt.prepare != nil {
				tt.prepare(a)
			}
			if got := a.Reserve(tt.start, tt.n); got != tt.want {
				t.Errorf("Reserve(%d, %d) = %d, want %d", tt.start, tt.n, got, tt.want)
			}
		})
	}
}

func TestReserveNextIsDeterministic(t *testing.T) {
	t.Parallel()

	a := New()
	a.Reserve(0, 16)  // system area
	a.Reserve(16, 1)  // PVD
	a.Reserve(17, 1)  // EVD

	got := a.ReserveNext(5)
	want := int64(18)
	if got != want {
		t.Errorf("ReserveNext(5) = %d, want %d", got, want)
	}

	// Repeating the identical sequence of calls from a fresh allocator
	// must produce the identical result.
	b := New()
	b.Reserve(0, 16)
	b.Reserve(16, 1)
	b.Reserve(17, 1)
	if got2 := b.ReserveNext(5); got2 != want {
		t.Errorf("second run ReserveNext(5) = %d, want %d", got2, want)
	}
}

func TestReserveNextFillsGap(t *testing.T) {
	t.Parallel()

	a := New()
	a.Reserve(0, 10)
	a.Reserve(20, 10)

	// Gap [10,20) is 10 sectors wide; a request for 10 should land there
	// rather than after the second run.
	if got := a.ReserveNext(10); got != 10 {
		t.Errorf("ReserveNext(10) = %d, want 10", got)
	}

	// Now the gap is filled; the next request must go to the tail.
	if got := a.ReserveNext(1); got != 30 {
		t.Errorf("ReserveNext(1) = %d, want 30", got)
	}
}

func TestFreeSplitsRun(t *testing.T) {
	t.Parallel()

	a := New()
	a.Reserve(0, 10)
	a.Free(3, 2) // frees [3,5) out of [0,10)

	if a.IsReserved(3) || a.IsReserved(4) {
		t.Errorf("expected [3,5) to be free after Free()")
	}
	if !a.IsReserved(0) || !a.IsReserved(9) {
		t.Errorf("expected the rest of the run to remain reserved")
	}

	// The freed gap should be reusable.
	if got := a.ReserveNext(2); got != 3 {
		t.Errorf("ReserveNext(2) after Free() = %d, want 3", got)
	}
}

func TestHighest(t *testing.T) {
	t.Parallel()

	a := New()
	if got := a.Highest(); got != NoLSN {
		t.Errorf("Highest() on empty allocator = %d, want %d", got, NoLSN)
	}

	a.Reserve(0, 16)
	a.Reserve(100, 50)
	if got := a.Highest(); got != 149 {
		t.Errorf("Highest() = %d, want 149", got)
	}
}

func TestNoOverlapInvariant(t *testing.T) {
	t.Parallel()

	// No two allocated ranges may overlap, across a mixed sequence of
	// fixed and next-fit reservations.
	a := New()
	fixed := []struct{ start, n int64 }{{0, 16}, {16, 1}, {17, 1}, {75, 75}}
	for _, f := range fixed {
		if got := a.Reserve(f.start, f.n); got != f.start {
			t.Fatalf("Reserve(%d, %d) = %d, want %d", f.start, f.n, got, f.start)
		}
	}
	for range 20 {
		a.ReserveNext(150)
	}

	for i, r1 := range a.runs {
		for _, r2 := range a.runs[i+1:] {
			if r1.Start < r2.end() && r2.Start < r1.end() {
				t.Fatalf("overlapping runs: %+v and %+v", r1, r2)
			}
		}
	}
}
