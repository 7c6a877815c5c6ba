// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/pbo

package dbpf

import "errors"

// Sentinel errors for DBPF operations. Use errors.Is in callers.
var (
	// ErrNotDBPF means the source does not start with the "DBPF" magic.
	ErrNotDBPF = errors.New("not a DBPF file: missing magic")
	// ErrUnsupportedVersion means the header declares a major/minor pair
	// this package does not know how to dispatch.
	ErrUnsupportedVersion = errors.New("unsupported DBPF version")
	// ErrTruncatedHeader means the source ended before the fixed header
	// fields for the detected version could be read.
	ErrTruncatedHeader = errors.New("truncated DBPF header")
	// ErrTruncatedIndex means the source ended before the declared index
	// table could be read in full.
	ErrTruncatedIndex = errors.New("truncated DBPF index")
	// ErrEntryOutOfRange means an entry's offset/size falls outside the
	// archive bounds.
	ErrEntryOutOfRange = errors.New("entry offset/size out of archive range")
	// ErrCorruptCompression means a compressed payload is malformed: a
	// back-reference pointed outside decoded history, or the decoded
	// length did not match the length DIR declared.
	ErrCorruptCompression = errors.New("corrupt compressed payload")
	// ErrCompressionTooLarge means the input exceeds what the refpack
	// 24-bit uncompressed-size field can represent.
	ErrCompressionTooLarge = errors.New("input too large for refpack encoding")
	// ErrMissingEntry means the requested TGI has no corresponding entry
	// in the merged view.
	ErrMissingEntry = errors.New("entry not found")
	// ErrNoCodec means no codec is registered for a resource's type ID.
	ErrNoCodec = errors.New("no codec registered for resource type")
	// ErrNilPackage means a method was called on a nil *Package.
	ErrNilPackage = errors.New("package is nil")
	// ErrClosed means the package's read handle is already disposed.
	ErrClosed = errors.New("package is closed")
	// ErrIo wraps filesystem failures during WriteToFile and Dispose.
	ErrIo = errors.New("dbpf i/o error")
)
