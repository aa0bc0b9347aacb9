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

// Package iso9660 builds the directory tree, directory records and path
// tables of an ISO9660/CD-ROM XA filesystem. It only
// constructs the directory-side structures; the primary/supplementary
// volume descriptors and the sector payloads the tree points into are the
// layout planner's responsibility.
package iso9660

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// XA attribute bits, as recorded in the 14-byte extension appended to
// every directory record.
const (
	XAAttrUserRead   uint16 = 1 << 0
	XAAttrUserExec   uint16 = 1 << 2
	XAAttrGroupRead  uint16 = 1 << 4
	XAAttrGroupExec  uint16 = 1 << 6
	XAAttrOtherRead  uint16 = 1 << 8
	XAAttrOtherExec  uint16 = 1 << 10
	XAAttrForm1      uint16 = 1 << 11
	XAAttrForm2      uint16 = 1 << 12
	XAAttrInterleave uint16 = 1 << 13
	XAAttrCDDA       uint16 = 1 << 14
	XAAttrDirectory  uint16 = 1 << 15

	XAPermAllRead = XAAttrUserRead | XAAttrGroupRead | XAAttrOtherRead
	XAPermAllExec = XAAttrUserExec | XAAttrGroupExec | XAAttrOtherExec
)

const (
	xaRecordSize = 14
	dirRecordMin = 33 // fixed fields before the file identifier
)

// ErrBadPathComponent is returned when a path component violates the
// ISO9660 d-character / length rules.
var ErrBadPathComponent = errors.New("iso9660: invalid path component")

// ErrExists is returned by Mkdir/Mkfile when the path is already occupied.
var ErrExists = errors.New("iso9660: path already exists")

// ErrNotDir is returned when a path component that should be a directory
// isn't.
var ErrNotDir = errors.New("iso9660: not a directory")

// entry is one node of the directory tree.
type entry struct {
	name     string // d-character name, as stored on disc
	isDir    bool
	children []*entry // sorted by name (sortChildren) once the tree is sized or dumped; insertion order until then

	extent  uint32
	size    uint32
	raw     bool
	fileNum byte
	parent  *entry
	pathNum int // 1-based path table index, assigned by assignPathNumbers
}

// Builder accumulates a directory tree and renders it into ISO9660
// directory records and path tables.
type Builder struct {
	root *entry
}

// New returns an empty Builder with just a root directory.
func New() *Builder {
	return &Builder{root: &entry{name: "", isDir: true}}
}

// transliterate strips combining marks (NFD-decompose, drop every Unicode
// Mn mark, NFC-recompose) before the [A-Z0-9_] d-character check runs, so
// an accented letter reaches that check as its base letter. No other
// character is changed: anything still outside the d-character set fails
// the check with ErrBadPathComponent.
func transliterate(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// Mkdir creates directory path (slash-separated, relative to the root),
// creating intermediate directories as needed.
func (b *Builder) Mkdir(path string) error {
	_, err := b.makeDir(path)
	return err
}

// Mkfile registers a file at path with the sector extent and size it will
// occupy once the layout planner assigns them, and whether it is a raw
// Mode-2 file and which XA file number it carries.
func (b *Builder) Mkfile(path string, extent uint32, sizeBytes uint32, rawFlag bool, fileNum byte) error {
	dir, base, err := b.splitPath(path)
	if err != nil {
		return err
	}
	name, err := validateComponent(base, true)
	if err != nil {
		return err
	}
	if findChild(dir, name) != nil {
		return fmt.Errorf("%w: %s", ErrExists, path)
	}
	dir.children = append(dir.children, &entry{
		name:    name,
		extent:  extent,
		size:    sizeBytes,
		raw:     rawFlag,
		fileNum: fileNum,
		parent:  dir,
	})
	return nil
}

// SetExtent updates the extent recorded for the file at path. It exists so
// callers that must register a file before its final sector address is
// known (sequence items, whose address depends on the frozen ISO track
// size) can patch the real value in once it is.
func (b *Builder) SetExtent(path string, extent uint32) error {
	dir, base, err := b.splitPath(path)
	if err != nil {
		return err
	}
	name, err := validateComponent(base, true)
	if err != nil {
		return err
	}
	child := findChild(dir, name)
	if child == nil {
		return fmt.Errorf("%w: %s", ErrNotDir, path)
	}
	child.extent = extent
	return nil
}

func (b *Builder) makeDir(path string) (*entry, error) {
	path = strings.Trim(path, "/")
	if path == "" {
		return b.root, nil
	}
	cur := b.root
	for _, comp := range strings.Split(path, "/") {
		name, err := validateComponent(comp, false)
		if err != nil {
			return nil, err
		}
		if total := totalPathLen(cur, name); total > 255 {
			return nil, fmt.Errorf("%w: path exceeds 255 characters", ErrBadPathComponent)
		}
		child := findChild(cur, name)
		if child == nil {
			child = &entry{name: name, isDir: true, parent: cur}
			cur.children = append(cur.children, child)
		} else if !child.isDir {
			return nil, fmt.Errorf("%w: %s", ErrNotDir, path)
		}
		cur = child
	}
	return cur, nil
}

func (b *Builder) splitPath(path string) (dir *entry, base string, err error) {
	path = strings.Trim(path, "/")
	idx := strings.LastIndex(path, "/")
	if idx < 0 {
		return b.root, path, nil
	}
	d, err := b.makeDir(path[:idx])
	if err != nil {
		return nil, "", err
	}
	return d, path[idx+1:], nil
}

func findChild(dir *entry, name string) *entry {
	for _, c := range dir.children {
		if c.name == name {
			return c
		}
	}
	return nil
}

func totalPathLen(dir *entry, name string) int {
	n := len(name)
	for d := dir; d != nil && d.parent != nil; d = d.parent {
		n += len(d.name) + 1
	}
	return n
}

// validateComponent enforces the ISO9660 d-character / length rules:
// uppercase [A-Z0-9_], component name ≤ 8 characters, optional
// 3-character extension when allowExtension is true.
func validateComponent(raw string, allowExtension bool) (string, error) {
	s := transliterate(raw)
	if s == "" {
		return "", fmt.Errorf("%w: empty component", ErrBadPathComponent)
	}

	name, ext, hasExt := strings.Cut(s, ".")
	if !allowExtension && hasExt {
		return "", fmt.Errorf("%w: %q: directories may not have an extension", ErrBadPathComponent, raw)
	}
	if len(name) == 0 || len(name) > 8 {
		return "", fmt.Errorf("%w: %q: name must be 1-8 d-characters", ErrBadPathComponent, raw)
	}
	if hasExt && len(ext) > 3 {
		return "", fmt.Errorf("%w: %q: extension must be 0-3 d-characters", ErrBadPathComponent, raw)
	}
	if !isDString(name) || (hasExt && !isDString(ext)) {
		return "", fmt.Errorf("%w: %q: must use only [A-Z0-9_]", ErrBadPathComponent, raw)
	}
	if hasExt {
		return name + "." + ext, nil
	}
	return name, nil
}

func isDString(s string) bool {
	for _, r := range s {
		if !((r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_') {
			return false
		}
	}
	return true
}

// GetSize returns the number of 2048-byte sectors the directory records
// and path tables will occupy once rendered, the value the layout planner
// reserves before calling DumpEntries/DumpPathTables.
func (b *Builder) GetSize() int {
	dirSectors := b.DirSectors()
	ptSectors := b.PathTableSectors()
	return dirSectors + 2*ptSectors // both L and M tables reserve the same rounded size
}

// DirSectors returns the number of sectors the directory record tree alone
// occupies.
func (b *Builder) DirSectors() int {
	const sectorSize = 2048
	dirBytes := b.dirSize(b.root)
	return (dirBytes + sectorSize - 1) / sectorSize
}

// PathTableSectors returns the number of sectors a single path table (L or
// M; they are always the same rounded size) occupies.
func (b *Builder) PathTableSectors() int {
	const sectorSize = 2048
	lBytes, _ := b.pathTableSize()
	return (lBytes + sectorSize - 1) / sectorSize
}

// PathTableSize returns the unrounded byte length of a single path table,
// the value the PVD's path-table-size field records.
func (b *Builder) PathTableSize() int {
	l, _ := b.pathTableSize()
	return l
}

func (b *Builder) dirSize(dir *entry) int {
	rounded := ownDirBytes(dir)
	for _, c := range dir.children {
		if c.isDir {
			rounded += b.dirSize(c)
		}
	}
	return rounded
}

// ownDirBytes returns the sector-rounded byte size of dir's own directory
// record block (self + parent + every immediate child), not counting any
// subdirectory's own contents.
func ownDirBytes(dir *entry) int {
	total := recordLen("\x00") + recordLen("\x01") // self + parent
	sortChildren(dir)
	for _, c := range dir.children {
		total += recordLen(c.name)
	}
	const sectorSize = 2048
	return ((total + sectorSize - 1) / sectorSize) * sectorSize
}

func (b *Builder) pathTableSize() (l, m int) {
	total := 0
	walkDirs(b.root, func(d *entry) {
		name := d.name
		if d == b.root {
			name = "\x00"
		}
		total += pathRecordLen(name)
	})
	return total, total
}

func recordLen(name string) int {
	n := dirRecordMin + len(name)
	if len(name)%2 == 0 {
		n++
	}
	n += xaRecordSize
	return n
}

func pathRecordLen(name string) int {
	n := 8 + len(name)
	if len(name)%2 != 0 {
		n++
	}
	return n
}

func sortChildren(dir *entry) {
	sort.Slice(dir.children, func(i, j int) bool {
		return dir.children[i].name < dir.children[j].name
	})
}

func walkDirs(d *entry, fn func(*entry)) {
	fn(d)
	sortChildren(d)
	for _, c := range d.children {
		if c.isDir {
			walkDirs(c, fn)
		}
	}
}
