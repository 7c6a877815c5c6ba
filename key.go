// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/pbo

package dbpf

import "fmt"

// LocalGroup is the sentinel group value ("LOCAL") stored in an entry's
// internal TGI when the entry's real group is the package's own group ID.
const LocalGroup uint32 = 0xFFFFFFFF

// DirTypeID is the resource type of the compression directory entry.
const DirTypeID uint32 = 0xE86B1EEF

// DirKey is the canonical TGI a freshly created compression directory is
// stored under when the package has never carried one.
var DirKey = ResourceKey{Type: DirTypeID, Group: 0xE86B1EEF, InstanceLo: 0x286B1F03}

// ResourceKey is a Type-Group-Instance(-InstanceHi) composite identifier.
// It is comparable and used directly as a map key throughout this package.
type ResourceKey struct {
	Type       uint32
	Group      uint32
	InstanceLo uint32
	InstanceHi uint32
}

// WithLocalGroup returns a copy of k with Group replaced by ownerGroup when
// Group is the LOCAL sentinel; otherwise it returns k unchanged.
func (k ResourceKey) WithLocalGroup(ownerGroup uint32) ResourceKey {
	if k.Group != LocalGroup {
		return k
	}
	k.Group = ownerGroup
	return k
}

// IsDir reports whether k identifies the package's compression directory.
func (k ResourceKey) IsDir() bool {
	return k.Type == DirTypeID
}

// String renders k as colon-separated hex fields for diagnostics.
func (k ResourceKey) String() string {
	if k.InstanceHi != 0 {
		return fmt.Sprintf("%08x:%08x:%08x:%08x", k.Type, k.Group, k.InstanceHi, k.InstanceLo)
	}
	return fmt.Sprintf("%08x:%08x:%08x", k.Type, k.Group, k.InstanceLo)
}
