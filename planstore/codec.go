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

package planstore

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"
)

// Codec selects the compression wrapped around a snapshot's gob stream,
// generalizing database.go's gob+gzip round trip to two codecs better
// suited to the 7z/rar ecosystem this module already depends on.
type Codec byte

const (
	None Codec = iota
	Zstd
	XZ
)

// ErrUnknownCodec is returned by Save/Load for a Codec value outside
// None/Zstd/XZ.
var ErrUnknownCodec = errors.New("planstore: unknown codec")

// Save gob-encodes snap and writes it to w, compressed per codec.
func Save(w io.Writer, codec Codec, snap Snapshot) error {
	buf, err := encode(snap)
	if err != nil {
		return err
	}

	switch codec {
	case None:
		if _, err := w.Write(buf.Bytes()); err != nil {
			return fmt.Errorf("planstore: write snapshot: %w", err)
		}
		return nil
	case Zstd:
		enc, err := zstd.NewWriter(w)
		if err != nil {
			return fmt.Errorf("planstore: zstd writer: %w", err)
		}
		if _, err := enc.Write(buf.Bytes()); err != nil {
			_ = enc.Close()
			return fmt.Errorf("planstore: zstd compress: %w", err)
		}
		if err := enc.Close(); err != nil {
			return fmt.Errorf("planstore: zstd close: %w", err)
		}
		return nil
	case XZ:
		enc, err := xz.NewWriter(w)
		if err != nil {
			return fmt.Errorf("planstore: xz writer: %w", err)
		}
		if _, err := enc.Write(buf.Bytes()); err != nil {
			_ = enc.Close()
			return fmt.Errorf("planstore: xz compress: %w", err)
		}
		if err := enc.Close(); err != nil {
			return fmt.Errorf("planstore: xz close: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("%w: %d", ErrUnknownCodec, codec)
	}
}

// Load reads a snapshot previously written by Save with the same codec.
func Load(r io.Reader, codec Codec) (Snapshot, error) {
	var raw bytes.Buffer

	switch codec {
	case None:
		if _, err := raw.ReadFrom(r); err != nil {
			return Snapshot{}, fmt.Errorf("planstore: read snapshot: %w", err)
		}
	case Zstd:
		dec, err := zstd.NewReader(r)
		if err != nil {
			return Snapshot{}, fmt.Errorf("planstore: zstd reader: %w", err)
		}
		defer dec.Close()
		if _, err := raw.ReadFrom(dec); err != nil {
			return Snapshot{}, fmt.Errorf("planstore: zstd decompress: %w", err)
		}
	case XZ:
		dec, err := xz.NewReader(r)
		if err != nil {
			return Snapshot{}, fmt.Errorf("planstore: xz reader: %w", err)
		}
		if _, err := raw.ReadFrom(dec); err != nil {
			return Snapshot{}, fmt.Errorf("planstore: xz decompress: %w", err)
		}
	default:
		return Snapshot{}, fmt.Errorf("%w: %d", ErrUnknownCodec, codec)
	}

	return decode(raw.Bytes())
}
