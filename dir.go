// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/pbo

package dbpf

import "fmt"

// DirEntry is one record of the compression directory: an internal TGI
// paired with its uncompressed size.
type DirEntry struct {
	TGI              ResourceKey
	UncompressedSize uint32
}

// EncodeDir serializes the compression directory in the order given.
// indexMinor controls whether each record carries an InstanceHi field.
func EncodeDir(entries []DirEntry, indexMinor uint32) []byte {
	buf := NewIoBufferForWrite()
	for _, e := range entries {
		buf.WriteUint32(e.TGI.Type)
		buf.WriteUint32(e.TGI.Group)
		buf.WriteUint32(e.TGI.InstanceLo)
		if indexMinor >= 2 {
			buf.WriteUint32(e.TGI.InstanceHi)
		}
		buf.WriteUint32(e.UncompressedSize)
	}
	return buf.Bytes()
}

// DirAsset is the decoded form of the compression directory resource. It
// is what updateDir stages through the overlay before serialization, and
// what AssetByTGI returns for the DIR entry once dirCodec is registered.
type DirAsset struct {
	Entries []DirEntry

	tgi ResourceKey
	pkg *Package
}

// TGI returns the directory's current global TGI.
func (d *DirAsset) TGI() ResourceKey { return d.tgi }

// SetOwner records where the directory lives.
func (d *DirAsset) SetOwner(pkg *Package, tgi ResourceKey, _ bool) {
	d.pkg = pkg
	d.tgi = tgi
}

// dirCodec serializes DirAsset records at a fixed index minor version.
type dirCodec struct {
	indexMinor uint32
}

func (c dirCodec) Encode(asset Asset) ([]byte, error) {
	d, ok := asset.(*DirAsset)
	if !ok {
		return nil, fmt.Errorf("dir codec: unexpected asset %T", asset)
	}
	return EncodeDir(d.Entries, c.indexMinor), nil
}

func (c dirCodec) Decode(data []byte) (Asset, error) {
	sizes, err := DecodeDir(data, c.indexMinor)
	if err != nil {
		return nil, err
	}
	d := &DirAsset{Entries: make([]DirEntry, 0, len(sizes))}
	for tgi, size := range sizes {
		d.Entries = append(d.Entries, DirEntry{TGI: tgi, UncompressedSize: size})
	}
	return d, nil
}

// DecodeDir parses a compression directory resource's raw bytes into a
// lookup keyed by internal TGI.
func DecodeDir(data []byte, indexMinor uint32) (map[ResourceKey]uint32, error) {
	recordSize := 16
	if indexMinor >= 2 {
		recordSize = 20
	}
	if len(data)%recordSize != 0 {
		return nil, fmt.Errorf("%w: DIR length %d is not a multiple of record size %d", ErrCorruptCompression, len(data), recordSize)
	}

	buf := NewIoBuffer(data)
	out := make(map[ResourceKey]uint32, len(data)/recordSize)
	for buf.Remaining() > 0 {
		typ, err := buf.ReadUint32()
		if err != nil {
			return nil, err
		}
		grp, err := buf.ReadUint32()
		if err != nil {
			return nil, err
		}
		instLo, err := buf.ReadUint32()
		if err != nil {
			return nil, err
		}
		var instHi uint32
		if indexMinor >= 2 {
			instHi, err = buf.ReadUint32()
			if err != nil {
				return nil, err
			}
		}
		size, err := buf.ReadUint32()
		if err != nil {
			return nil, err
		}
		out[ResourceKey{Type: typ, Group: grp, InstanceLo: instLo, InstanceHi: instHi}] = size
	}
	return out, nil
}
