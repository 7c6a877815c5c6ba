// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/pbo

package dbpf

// Serialize rebuilds the archive from the merged view into a single byte
// buffer. The compression directory is regenerated first, so the emitted
// DIR always matches what was actually compressed. Output is always v1.2
// with index minor 2, regardless of the source version.
func (p *Package) Serialize() ([]byte, error) {
	if p == nil {
		return nil, ErrNilPackage
	}
	return p.serialize(WriteOptions{})
}

func (p *Package) serialize(opts WriteOptions) ([]byte, error) {
	newDir, err := p.updateDir()
	if err != nil {
		return nil, err
	}

	merged := p.Entries()

	buf := NewIoBufferForWrite()
	buf.Write([]byte(dbpfMagic))
	buf.WriteUint32(writerMajor)
	buf.WriteUint32(writerMinor)
	buf.Write(make([]byte, 12))
	buf.WriteInt32(0) // date created
	buf.WriteInt32(0) // date modified
	buf.WriteUint32(writerIndexMajor)
	buf.WriteUint32(uint32(len(merged)))
	indexOffsetPos := buf.Pos()
	buf.WriteUint32(0)
	indexSizePos := buf.Pos()
	buf.WriteUint32(0)
	buf.WriteInt32(0) // trash entry count
	buf.WriteInt32(0) // trash index offset
	buf.WriteInt32(0) // trash index size
	buf.WriteUint32(writerIndexMinor)
	buf.Write(make([]byte, 32))

	indexStart := buf.Pos()
	if err := buf.PatchUint32(indexOffsetPos, uint32(indexStart)); err != nil {
		return nil, err
	}

	// Index table with placeholder offsets. Sizes are placeholders too;
	// each is re-patched once the payload's written length is known.
	offsetPos := make([]int64, len(merged))
	sizePos := make([]int64, len(merged))
	for i, e := range merged {
		buf.WriteUint32(e.Internal.Type)
		buf.WriteUint32(e.Internal.Group)
		buf.WriteUint32(e.Internal.InstanceLo)
		buf.WriteUint32(e.Internal.InstanceHi)
		offsetPos[i] = buf.Pos()
		buf.WriteUint32(0)
		sizePos[i] = buf.Pos()
		buf.WriteUint32(e.FileSize)
	}

	for i, e := range merged {
		start := buf.Pos()
		if err := buf.PatchUint32(offsetPos[i], uint32(start)); err != nil {
			return nil, err
		}

		data, err := p.bytesByInternal(e.Internal, false)
		if err != nil {
			return nil, err
		}

		compressed := false
		if _, listed := newDir[e.Internal]; listed && !e.Internal.IsDir() {
			data, err = Compress(data)
			if err != nil {
				return nil, err
			}
			compressed = true
		}

		if err := buf.PatchUint32(sizePos[i], uint32(len(data))); err != nil {
			return nil, err
		}
		buf.Write(data)

		if opts.OnEntryDone != nil {
			opts.OnEntryDone(WriteEntryProgress{
				TGI:        e.Global,
				Offset:     uint32(start),
				Size:       uint32(len(data)),
				Compressed: compressed,
			})
		}
	}

	if err := buf.PatchUint32(indexSizePos, uint32(buf.Pos()-indexStart)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// updateDir regenerates the compression directory from the merged view:
// overlay entries contribute their current byte length when staged
// compressed, originals carry their prior uncompressed size forward. The
// fresh DIR is staged through the overlay (replacing any existing one), or
// the DIR entry is deleted when nothing is compressed. Returns the
// regenerated directory for the serializer's compress decisions.
func (p *Package) updateDir() (map[ResourceKey]uint32, error) {
	cs := p.changes
	dirKey := p.dirKey()

	var records []DirEntry
	for _, e := range p.Entries() {
		if e.Internal.IsDir() {
			continue
		}
		if item, ok := cs.changed[e.Internal]; ok {
			if !item.compressed {
				continue
			}
			b, err := item.Bytes()
			if err != nil {
				return nil, err
			}
			records = append(records, DirEntry{TGI: e.Internal, UncompressedSize: uint32(len(b))})
			continue
		}
		if size, ok := p.dir[e.Internal]; ok {
			records = append(records, DirEntry{TGI: e.Internal, UncompressedSize: size})
		}
	}

	if len(records) == 0 {
		_, staged := cs.changed[dirKey]
		_, original := p.byInternal[dirKey]
		if staged || original {
			cs.Delete(dirKey)
		}
		return nil, nil
	}

	cs.SetAsset(dirKey, &DirAsset{Entries: records}, dirCodec{indexMinor: writerIndexMinor}, false)

	out := make(map[ResourceKey]uint32, len(records))
	for _, r := range records {
		out[r.TGI] = r.UncompressedSize
	}
	return out, nil
}

// dirKey returns the internal TGI the regenerated DIR should live under:
// a staged DIR's key, then the original DIR's key, then the canonical one.
func (p *Package) dirKey() ResourceKey {
	for _, tgi := range p.changes.changedOrder {
		if tgi.IsDir() {
			return tgi
		}
	}
	for _, e := range p.originals {
		if e.Internal.IsDir() {
			return e.Internal
		}
	}
	return DirKey
}
