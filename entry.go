// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/pbo

package dbpf

// Entry describes one resource slot in a package's merged view. Entries
// backed by the original archive are immutable after parse; entries backed
// by a ChangeSet edit are synthesized fresh on each query.
type Entry struct {
	// Internal is the TGI as stored in the archive's index table (Group may
	// be the LOCAL sentinel).
	Internal ResourceKey
	// Global is Internal with LOCAL resolved against the package's group ID.
	Global ResourceKey
	// FileOffset is the byte offset of the payload in the archive file.
	// Zero and meaningless for overlay (not-yet-serialized) entries.
	FileOffset uint32
	// FileSize is the stored payload size in bytes (compressed size, if the
	// entry is compressed).
	FileSize uint32

	pkg *Package
}

// Package returns the package this entry belongs to.
func (e *Entry) Package() *Package { return e.pkg }
