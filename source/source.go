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

// Package source provides the input side of disc authoring: a uniform
// stat/seek/read/close contract over MPEG sequence streams and custom
// files, whether they sit on disk or inside a ZIP/7z/RAR container.
//
// The image writer opens a source, drains it in one forward pass, and
// closes it again immediately, so descriptor counts stay bounded across a
// disc with hundreds of custom files. A source may be opened more than
// once across the lifetime of a build (the layout planner's sizing pass
// and the image writer's emission pass each need their own read of the
// same bytes), so every Opener is expected to be stateless and safe to
// invoke repeatedly.
package source

import (
	"fmt"
	"io"
)

// DataSource is the read contract a disc source must satisfy: a seekable,
// closable byte stream with an up-front size.
type DataSource interface {
	// Stat returns the source's total size in bytes.
	Stat() (int64, error)

	io.Seeker
	io.Reader
	io.Closer
}

// Opener produces a fresh DataSource for one logical input (an MPEG
// sequence, a segment picture, or a custom file). It is called once per
// pass over the disc's content, so implementations must be safe to invoke
// more than once and must not share state across the sources they return.
type Opener func() (DataSource, error)

// ErrShortRead indicates a source produced fewer bytes than its own Stat
// promised, which would desynchronize the caller's sector cursor from the
// planned extent.
var ErrShortRead = fmt.Errorf("source: fewer bytes available than reported size")

// ReadFull reads exactly n bytes from src into buf, the way the image
// writer pulls a sector's worth of payload out of a sequence or custom
// file, distinguishing a genuinely short source from a plain io.EOF.
func ReadFull(src DataSource, buf []byte) (int, error) {
	read, err := io.ReadFull(src, buf)
	switch {
	case err == nil:
		return read, nil
	case err == io.EOF || err == io.ErrUnexpectedEOF: //nolint:errorlint // io.ReadFull returns these sentinels directly
		return read, fmt.Errorf("%w: got %d of %d bytes", ErrShortRead, read, len(buf))
	default:
		return read, fmt.Errorf("source: read: %w", err)
	}
}
