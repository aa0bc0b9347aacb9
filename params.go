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

import "fmt"

// SetVolumeLabel sets the ISO volume label, truncating to 32 characters
// with a warning if longer.
func (d *Disc) SetVolumeLabel(s string) error {
	if err := d.checkMutable(); err != nil {
		return err
	}
	d.volumeLabel = clampString(d, "VOLUME_ID", s, 32)
	return nil
}

// SetApplicationID sets the ISO application id, truncating to 128
// characters with a warning if longer.
func (d *Disc) SetApplicationID(s string) error {
	if err := d.checkMutable(); err != nil {
		return err
	}
	d.applicationID = clampString(d, "APPLICATION_ID", s, 128)
	return nil
}

// SetAlbumID sets the VCD album id, truncating to 16 characters with a
// warning if longer.
func (d *Disc) SetAlbumID(s string) error {
	if err := d.checkMutable(); err != nil {
		return err
	}
	d.albumID = clampString(d, "ALBUM_ID", s, 16)
	return nil
}

func clampString(d *Disc, name, s string, max int) string {
	if len(s) <= max {
		return s
	}
	d.warnf("%s truncated from %d to %d characters", name, len(s), max)
	return s[:max]
}

// SetVolumeCount sets the disc's position-within-set count, clamping to
// the 1..65535 range (a count of 0 is clamped up to 1) and recording a
// warning when clamped.
func (d *Disc) SetVolumeCount(n int) error {
	if err := d.checkMutable(); err != nil {
		return err
	}
	clamped := n
	switch {
	case clamped < 1:
		clamped = 1
	case clamped > 65535:
		clamped = 65535
	}
	if clamped != n {
		d.warnf("VOLUME_COUNT %d out of range, clamped to %d", n, clamped)
	}
	d.volumeCount = uint16(clamped) //nolint:gosec // clamped into uint16 range above
	return nil
}

// SetVolumeNumber sets this disc's index within its set, clamping to the
// 0..65534 range (70000 clamps to 65534).
func (d *Disc) SetVolumeNumber(n int) error {
	if err := d.checkMutable(); err != nil {
		return err
	}
	clamped := n
	switch {
	case clamped < 0:
		clamped = 0
	case clamped > 65534:
		clamped = 65534
	}
	if clamped != n {
		d.warnf("VOLUME_NUMBER %d out of range, clamped to %d", n, clamped)
	}
	d.volumeNumber = uint16(clamped) //nolint:gosec // clamped into uint16 range above
	return nil
}

// SetRestriction sets the parental-restriction byte, clamping to the
// 0..3 range.
func (d *Disc) SetRestriction(n int) error {
	if err := d.checkMutable(); err != nil {
		return err
	}
	clamped := n
	switch {
	case clamped < 0:
		clamped = 0
	case clamped > 3:
		clamped = 3
	}
	if clamped != n {
		d.warnf("RESTRICTION %d out of range, clamped to %d", n, clamped)
	}
	d.restriction = byte(clamped) //nolint:gosec // clamped into 0..3 above
	return nil
}

// SetRelaxedAPS toggles the access-point scan policy new sequences/segments
// are scanned under: when true, any I-frame pack qualifies as an access
// point; when false (the default), an APS must also begin a new pack.
func (d *Disc) SetRelaxedAPS(b bool) error {
	if err := d.checkMutable(); err != nil {
		return err
	}
	d.relaxedAPS = b
	return nil
}

// SetSVCDMPEGAV enables the SVCD_VCD3_MPEGAV compatibility flag: SVCD
// sequences are placed in MPEGAV/ instead of MPEG2/, a deprecated layout a
// warning is recorded for.
func (d *Disc) SetSVCDMPEGAV(b bool) error {
	if err := d.checkMutable(); err != nil {
		return err
	}
	d.svcdMPEGAV = b
	if b {
		d.warnf("SVCD_VCD3_MPEGAV compatibility mode is deprecated")
	}
	return nil
}

// SetSVCDEntrySVD sets the SVCD_VCD3_ENTRYSVD compatibility flag: on an
// SVCD disc the entry-point file is then named SVCD/ENTRIES.VCD instead of
// SVCD/ENTRIES.SVD. The signature written inside that file is ENTRYSVD
// either way; the flag does not change it. Ignored for non-SVCD discs.
func (d *Disc) SetSVCDEntrySVD(b bool) error {
	if err := d.checkMutable(); err != nil {
		return err
	}
	d.svcdEntrySVD = b
	return nil
}

// SetUpdateScanOffsets enables patching SCAN offset fields in SVCD MPEG
// streams during write; ignored for non-SVCD discs.
func (d *Disc) SetUpdateScanOffsets(b bool) error {
	if err := d.checkMutable(); err != nil {
		return err
	}
	d.updateScanOffs = b
	return nil
}

// SetNextVolLID2 enables auto-advance to LID 2 when this disc ends, the
// NEXT_VOL_LID2 parameter. The value is accepted and stored on the disc's
// parameter surface; no writer in this module encodes it into INFO.VCD's
// byte layout, since no reference source pins its exact bit position —
// see DESIGN.md.
func (d *Disc) SetNextVolLID2(b bool) error {
	if err := d.checkMutable(); err != nil {
		return err
	}
	d.nextVolLID2 = b
	return nil
}

// SetNextVolSeq2 enables auto-advance to sequence 2 when this disc ends,
// the NEXT_VOL_SEQ2 parameter. See SetNextVolLID2's doc comment: stored,
// not yet wire-encoded.
func (d *Disc) SetNextVolSeq2(b bool) error {
	if err := d.checkMutable(); err != nil {
		return err
	}
	d.nextVolSeq2 = b
	return nil
}

// SetGaps overrides the pre-track/pre-data/post-data gap parameters, in
// sectors. New discs start with vcd.c's PRE_TRACK_GAP/PRE_DATA_GAP/
// POST_DATA_GAP defaults (150/30/45).
func (d *Disc) SetGaps(preTrack, preData, postData int64) error {
	if err := d.checkMutable(); err != nil {
		return err
	}
	if preTrack < 0 || preData < 0 || postData < 0 {
		return fmt.Errorf("%w: gap parameters must be non-negative", ErrConfig)
	}
	d.preTrackGap = preTrack
	d.preDataGap = preData
	d.postDataGap = postData
	return nil
}

// SetRawSectorSize selects the output file's sector size: 2352 (the
// default, full raw sectors) or 2336 (subheader onward, no sync/header).
// This is independent of the in-memory 2352-byte raw sector xasector
// always formats; it only affects what byte range a concrete sink writes
// to disk (vcd_obj_set_param's VCD_PARM_SEC_TYPE).
func (d *Disc) SetRawSectorSize(n int) error {
	if err := d.checkMutable(); err != nil {
		return err
	}
	if n != 2336 && n != 2352 {
		return fmt.Errorf("%w: raw sector size must be 2336 or 2352, got %d", ErrConfig, n)
	}
	d.rawSectorSize = n
	return nil
}

// RawSectorSize returns the output sector size SetRawSectorSize last set
// (2352 by default), for a caller's concrete sink to size its cue-track
// MODE2/2336 or MODE2/2352 line by.
func (d *Disc) RawSectorSize() int { return d.rawSectorSize }
