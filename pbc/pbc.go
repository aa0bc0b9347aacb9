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

// Package pbc compiles a graph of playback-control nodes — play lists,
// selections, end lists and extended selections, linked by symbolic
// cross-references — into the binary LOT (List Of offsets Table) and PSD
// (Play Sequence Descriptor) blobs a VCD/SVCD player reads, in both a base
// VCD-2.0 encoding (16-bit navigation offsets) and an extended 0.4 encoding
// (32-bit navigation offsets).
package pbc

import (
	"errors"
	"fmt"
)

// MaxSelectionItems is the largest selection mask a Selection node may
// carry.
const MaxSelectionItems = 99

// LOTSectors is the fixed size of a LOT, in 2048-byte sectors.
const LOTSectors = 32

// LOTEntries is the number of 4-byte LID-to-offset slots a LOT holds.
const LOTEntries = LOTSectors * 2048 / 4

// Unavailable sentinel values for the base and extended encodings.
const (
	UnavailableBase uint32 = 0xFFFF
	UnavailableExt  uint32 = 0xFFFFFFFF
)

var (
	// ErrDuplicateID is returned when two nodes, or a node and an external
	// symbol, share the same id.
	ErrDuplicateID = errors.New("pbc: duplicate id")

	// ErrUnresolvedReference is returned when a node references an id that
	// resolves neither to another node nor to an external symbol.
	ErrUnresolvedReference = errors.New("pbc: reference to unknown id")

	// ErrSelectionTooLarge is returned when a Selection's item list exceeds
	// MaxSelectionItems.
	ErrSelectionTooLarge = errors.New("pbc: selection exceeds maximum item count")

	// ErrSelfSelection is returned when a Selection lists itself among its
	// selectable items without its Default field pointing back at itself.
	ErrSelfSelection = errors.New("pbc: selection points at itself")

	// ErrNoNodes is returned by Compile when given an empty node list.
	ErrNoNodes = errors.New("pbc: no nodes to compile")
)

// Node is the sum type of the four PBC node kinds. Each concrete type
// implements it with an unexported method so the set is closed to this
// package's four variants.
type Node interface {
	id() string
	items() []string
	nav() []*string // navigation references: prev, next, retn, default, timeout, in a fixed order per kind
	kind() nodeKind
}

// NodeID returns n's declared id, the same value NewCompiler numbers
// against — exported so a caller building up a node list (e.g. the root
// disc object tracking cross-namespace id uniqueness) doesn't have to
// duplicate each variant's ID field access.
func NodeID(n Node) string { return n.id() }

type nodeKind int

const (
	kindPlayList nodeKind = iota
	kindSelection
	kindEndList
	kindExtendedSelection
)

// PlayList plays its Items in order, then follows Next (or loops per
// PlayTime/LoopCount semantics left to the player).
type PlayList struct {
	ID       string
	Items    []string // sequence/segment/other-node ids, played in order
	Prev     *string
	Next     *string
	Return   *string
	Wait     float64 // seconds; 0 = no wait
	AutoWait float64
	PlayTime float64
}

func (p *PlayList) id() string      { return p.ID }
func (p *PlayList) items() []string { return p.Items }
func (p *PlayList) nav() []*string  { return []*string{p.Prev, p.Next, p.Return} }
func (p *PlayList) kind() nodeKind  { return kindPlayList }

// Selection presents Items as a numbered menu; BSN is the first selection
// number shown to the viewer, NumLoops bounds how many times the menu may
// be re-entered before falling back to Default.
type Selection struct {
	ID        string
	Items     []string // candidate targets, up to MaxSelectionItems
	Prev      *string
	Default   *string
	Timeout   *string
	Wait      float64
	BSN       int
	NumLoops  int
}

func (s *Selection) id() string      { return s.ID }
func (s *Selection) items() []string { return s.Items }
func (s *Selection) nav() []*string  { return []*string{s.Prev, s.Default, s.Timeout} }
func (s *Selection) kind() nodeKind  { return kindSelection }

// EndList terminates playback, optionally resuming at Next.
type EndList struct {
	ID   string
	Next *string
}

func (e *EndList) id() string      { return e.ID }
func (e *EndList) items() []string { return nil }
func (e *EndList) nav() []*string  { return []*string{e.Next} }
func (e *EndList) kind() nodeKind  { return kindEndList }

// ExtendedSelection is a Selection with the 0.4-format jump-timing and
// loop-count fields; only meaningful in the extended PSD encoding.
type ExtendedSelection struct {
	Selection
	JumpTiming float64
	LoopCount  int
}

func (e *ExtendedSelection) kind() nodeKind { return kindExtendedSelection }

// SymbolTable resolves ids that name something other than a PBC node —
// a sequence item, a segment item, or an entry point — to the raw
// navigation-offset value the PSD format expects for that target. PBC node
// ids are resolved internally by the compiler and must not appear here.
type SymbolTable map[string]uint32

// Output holds the four blobs a completed compilation produces.
type Output struct {
	PSDBase     []byte
	PSDExtended []byte
	LOTBase     []byte
	LOTExtended []byte
	MaxLID      uint16 // highest LID assigned, for the INFO.VCD/SVD header field
}

// Compiler runs the three PBC compilation passes over a declared node list.
type Compiler struct {
	nodes []Node
	ext   SymbolTable
}

// NewCompiler builds a Compiler over nodes in declaration order. ext
// resolves any id referenced by a node that isn't itself a node id.
func NewCompiler(nodes []Node, ext SymbolTable) *Compiler {
	return &Compiler{nodes: nodes, ext: ext}
}

// lids maps each node id to its 1-based LID, assigned in declaration order.
func (c *Compiler) lids() (map[string]uint16, error) {
	lids := make(map[string]uint16, len(c.nodes))
	for i, n := range c.nodes {
		id := n.id()
		if _, dup := lids[id]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateID, id)
		}
		if _, dup := c.ext[id]; dup {
			return nil, fmt.Errorf("%w: %q collides with external symbol", ErrDuplicateID, id)
		}
		lids[id] = uint16(i + 1) //nolint:gosec // node count bounded well below 65535 in practice
	}
	return lids, nil
}

// validateReferences checks every navigation and item reference resolves,
// selection sizes stay within MaxSelectionItems, and self-selection is only
// permitted via Default.
func (c *Compiler) validateReferences(lids map[string]uint16) error {
	resolves := func(id string) bool {
		if _, ok := lids[id]; ok {
			return true
		}
		_, ok := c.ext[id]
		return ok
	}

	for _, n := range c.nodes {
		for _, ref := range n.nav() {
			if ref != nil && !resolves(*ref) {
				return fmt.Errorf("%w: %q", ErrUnresolvedReference, *ref)
			}
		}
		for _, it := range n.items() {
			if !resolves(it) {
				return fmt.Errorf("%w: %q", ErrUnresolvedReference, it)
			}
		}

		sel, ok := asSelection(n)
		if !ok {
			continue
		}
		if len(sel.Items) > MaxSelectionItems {
			return fmt.Errorf("%w: %q has %d items", ErrSelectionTooLarge, sel.ID, len(sel.Items))
		}
		for _, it := range sel.Items {
			if it != sel.ID {
				continue
			}
			if sel.Default == nil || *sel.Default != sel.ID {
				return fmt.Errorf("%w: %q", ErrSelfSelection, sel.ID)
			}
		}
	}
	return nil
}

// asSelection extracts the embedded Selection from either a *Selection or
// a *ExtendedSelection, or reports false for other node kinds.
func asSelection(n Node) (*Selection, bool) {
	switch v := n.(type) {
	case *Selection:
		return v, true
	case *ExtendedSelection:
		return &v.Selection, true
	default:
		return nil, false
	}
}

// Compile runs numbering, sizing and emission, returning the four output
// blobs or the first validation error encountered.
func (c *Compiler) Compile() (Output, error) {
	if len(c.nodes) == 0 {
		return Output{}, ErrNoNodes
	}

	lids, err := c.lids()
	if err != nil {
		return Output{}, err
	}
	if err := c.validateReferences(lids); err != nil {
		return Output{}, err
	}

	offBase, offExt, err := c.layout()
	if err != nil {
		return Output{}, err
	}

	psdBase, err := c.emit(lids, offBase, false)
	if err != nil {
		return Output{}, err
	}
	psdExt, err := c.emit(lids, offExt, true)
	if err != nil {
		return Output{}, err
	}

	lotBase, err := c.buildLOT(lids, offBase)
	if err != nil {
		return Output{}, err
	}
	lotExt, err := c.buildLOT(lids, offExt)
	if err != nil {
		return Output{}, err
	}

	return Output{
		PSDBase:     psdBase,
		PSDExtended: psdExt,
		LOTBase:     lotBase,
		LOTExtended: lotExt,
		MaxLID:      uint16(len(c.nodes)), //nolint:gosec // node count bounded well below 65535 in practice
	}, nil
}
