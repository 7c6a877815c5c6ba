// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/pbo

package dbpf

// ParseOptions configures Open/Read behavior.
type ParseOptions struct {
	// Provider receives synchronous notifications as the package's merged
	// view changes. Nil means no notifications are sent.
	Provider Provider
}

func (opts *ParseOptions) applyDefaults() {
	if opts.Provider == nil {
		opts.Provider = nilProvider{}
	}
}

// WriteEntryProgress is reported once per entry as WriteToFile writes its
// payload. Serialize takes no options and reports no progress.
type WriteEntryProgress struct {
	// TGI is the entry's global TGI.
	TGI ResourceKey
	// Offset is the payload's byte offset in the output.
	Offset uint32
	// Size is the stored payload size (compressed size, if compressed).
	Size uint32
	// Compressed reports whether the payload was written compressed.
	Compressed bool
}

// WriteOptions configures WriteToFile behavior.
type WriteOptions struct {
	// OnEntryDone is called after each entry's payload is written.
	OnEntryDone func(WriteEntryProgress)
	// DeleteIfEmpty makes WriteToFile remove the file from disk and mark
	// the package deleted when the merged view has no entries.
	DeleteIfEmpty bool
}

func (opts *WriteOptions) applyDefaults() {}
