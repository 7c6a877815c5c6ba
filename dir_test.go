// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/pbo

package dbpf

import (
	"errors"
	"testing"
)

func TestDir_EncodeDecodeRoundTrip(t *testing.T) {
	t.Parallel()

	records := []DirEntry{
		{TGI: ResourceKey{Type: 0x10, Group: 0x20, InstanceLo: 0x30, InstanceHi: 0x40}, UncompressedSize: 100},
		{TGI: ResourceKey{Type: 0x11, Group: LocalGroup, InstanceLo: 0x31}, UncompressedSize: 7},
	}

	for _, minor := range []uint32{1, 2} {
		data := EncodeDir(records, minor)

		recordSize := 16
		if minor >= 2 {
			recordSize = 20
		}
		if len(data) != len(records)*recordSize {
			t.Fatalf("minor %d: encoded %d bytes, want %d", minor, len(data), len(records)*recordSize)
		}

		got, err := DecodeDir(data, minor)
		if err != nil {
			t.Fatalf("minor %d: DecodeDir: %v", minor, err)
		}
		if len(got) != len(records) {
			t.Fatalf("minor %d: decoded %d records, want %d", minor, len(got), len(records))
		}
		for _, r := range records {
			key := r.TGI
			if minor < 2 {
				key.InstanceHi = 0 // not on the wire below minor 2
			}
			if got[key] != r.UncompressedSize {
				t.Fatalf("minor %d: size for %s = %d, want %d", minor, key, got[key], r.UncompressedSize)
			}
		}
	}
}

func TestDecodeDir_BadLength(t *testing.T) {
	t.Parallel()

	_, err := DecodeDir(make([]byte, 21), 2)
	if !errors.Is(err, ErrCorruptCompression) {
		t.Fatalf("expected ErrCorruptCompression, got %v", err)
	}
}

func TestDirCodec_RoundTrip(t *testing.T) {
	t.Parallel()

	codec := dirCodec{indexMinor: 2}
	src := &DirAsset{Entries: []DirEntry{
		{TGI: ResourceKey{Type: 1, Group: 2, InstanceLo: 3}, UncompressedSize: 9},
	}}

	data, err := codec.Encode(src)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	decoded, err := codec.Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	dir, ok := decoded.(*DirAsset)
	if !ok {
		t.Fatalf("decoded %T, want *DirAsset", decoded)
	}
	if len(dir.Entries) != 1 || dir.Entries[0] != src.Entries[0] {
		t.Fatalf("decoded entries %+v, want %+v", dir.Entries, src.Entries)
	}
}
