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
	"errors"
	"fmt"
)

// ErrConfig reports a configuration problem caught before any layout or
// media work begins: an unsupported disc type, a parameter rejected by a
// mutator, or an operation attempted on the wrong disc type. Returned with
// no state change, per the mutator contract every Set/Add method follows.
var ErrConfig = errors.New("vcdauthor: configuration error")

// ErrFrozen is returned by a mutator called after BeginOutput has frozen
// the disc; the disc object accepts no further Set/Add calls until
// EndOutput releases it back to the building state.
var ErrFrozen = errors.New("vcdauthor: disc is frozen by an output cycle")

// ErrNotFrozen is returned by WriteImage or EndOutput when BeginOutput has
// not yet produced a plan to write or release.
var ErrNotFrozen = errors.New("vcdauthor: BeginOutput has not been called")

// DuplicateIDError reports that id names two different things — a
// sequence, segment, entry point or PBC node — with the first use
// recorded by FirstKind and the rejected one by Kind.
type DuplicateIDError struct {
	ID        string
	Kind      string
	FirstKind string
}

func (e DuplicateIDError) Error() string {
	return fmt.Sprintf("vcdauthor: id %q already used as a %s, cannot also be a %s", e.ID, e.FirstKind, e.Kind)
}
