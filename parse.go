// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/pbo

package dbpf

import (
	"fmt"
	"io"
	"os"
)

const (
	// dbpfMagic is the four-byte signature every archive starts with.
	dbpfMagic = "DBPF"
	// headerProbeSize covers the largest fixed header layout (v1.x: 96 bytes).
	headerProbeSize = 96

	// Writer output format: v1.2 with index minor 2.
	writerMajor      = 1
	writerMinor      = 2
	writerIndexMajor = 7
	writerIndexMinor = 2
)

// Open opens a DBPF archive by path and parses its header and index. The
// file handle stays open for lazy payload reads until Dispose or
// WriteToFile.
func Open(path string) (*Package, error) {
	return OpenWithOptions(path, ParseOptions{})
}

// OpenWithOptions opens a DBPF archive by path using explicit parse options.
func OpenWithOptions(path string, opts ParseOptions) (*Package, error) {
	opts.applyDefaults()

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open DBPF: %w", err)
	}

	fi, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("stat: %w", err)
	}

	p := newPackage(opts.Provider)
	p.filePath = path
	p.groupID = GroupIDFromFilename(path)
	p.ra = f
	p.file = f
	p.size = fi.Size()

	if err := p.parseFrom(f, fi.Size()); err != nil {
		_ = f.Close()
		return nil, err
	}

	p.attachToProvider()
	return p, nil
}

// Read parses a DBPF archive from an existing ReaderAt and known size. The
// package has no file path (and so no derived group ID) until SetFilePath.
func Read(ra io.ReaderAt, size int64) (*Package, error) {
	return ReadWithOptions(ra, size, ParseOptions{})
}

// ReadWithOptions parses a DBPF archive from an existing ReaderAt and known
// size using explicit parse options.
func ReadWithOptions(ra io.ReaderAt, size int64, opts ParseOptions) (*Package, error) {
	opts.applyDefaults()

	p := newPackage(opts.Provider)
	p.ra = ra
	p.size = size

	if err := p.parseFrom(ra, size); err != nil {
		return nil, err
	}

	p.attachToProvider()
	return p, nil
}

// parseFrom reads the header and index table and caches the compression
// directory. On error the package keeps no partial state.
func (p *Package) parseFrom(ra io.ReaderAt, size int64) error {
	probe := make([]byte, headerProbeSize)
	n, err := ra.ReadAt(probe, 0)
	if err != nil && err != io.EOF {
		return fmt.Errorf("read header: %w", err)
	}
	buf := NewIoBuffer(probe[:n])

	magic, err := buf.ReadFixedString(4)
	if err != nil || magic != dbpfMagic {
		return ErrNotDBPF
	}

	hdr, err := parseHeader(buf)
	if err != nil {
		return err
	}

	entries, byInternal, err := p.parseIndex(ra, size, hdr)
	if err != nil {
		return err
	}

	p.major = hdr.major
	p.minor = hdr.minor
	p.indexMajor = hdr.indexMajor
	p.indexMinor = hdr.indexMinor
	p.dateCreated = hdr.dateCreated
	p.dateModified = hdr.dateModified
	p.originals = entries
	p.byInternal = byInternal
	p.size = size
	p.dir = nil

	if err := p.loadDir(); err != nil {
		p.major, p.minor = 0, 0
		p.indexMajor, p.indexMinor = 0, 0
		p.dateCreated, p.dateModified = 0, 0
		p.originals = nil
		p.byInternal = make(map[ResourceKey]*Entry)
		return err
	}
	return nil
}

// header is the parsed fixed header, normalized across format versions.
type header struct {
	major, minor           uint32
	indexMajor, indexMinor uint32
	dateCreated            int32
	dateModified           int32
	numEntries             uint32
	indexOffset            uint32
	indexSize              uint32
}

// parseHeader dispatches on the explicit (major, minor) pair. Recognized
// arms are (1,0), (1,1), (1,2) and (2,0); anything else is unsupported,
// including any minor above 0 paired with major 2.
func parseHeader(buf *IoBuffer) (hdr header, err error) {
	defer func() {
		if err != nil && err != ErrUnsupportedVersion {
			err = fmt.Errorf("%w: %v", ErrTruncatedHeader, err)
		}
	}()

	if hdr.major, err = buf.ReadUint32(); err != nil {
		return hdr, err
	}
	if hdr.minor, err = buf.ReadUint32(); err != nil {
		return hdr, err
	}

	var legacy bool
	switch {
	case hdr.major == 1 && hdr.minor <= 2:
		legacy = true
	case hdr.major == 2 && hdr.minor == 0:
		legacy = false
	default:
		return hdr, ErrUnsupportedVersion
	}

	if err = buf.Skip(12); err != nil {
		return hdr, err
	}

	if legacy {
		if hdr.dateCreated, err = buf.ReadInt32(); err != nil {
			return hdr, err
		}
		if hdr.dateModified, err = buf.ReadInt32(); err != nil {
			return hdr, err
		}
		if hdr.indexMajor, err = buf.ReadUint32(); err != nil {
			return hdr, err
		}
	}

	if hdr.numEntries, err = buf.ReadUint32(); err != nil {
		return hdr, err
	}

	if legacy {
		if hdr.indexOffset, err = buf.ReadUint32(); err != nil {
			return hdr, err
		}
	}

	if hdr.indexSize, err = buf.ReadUint32(); err != nil {
		return hdr, err
	}

	if legacy {
		// Trash entry count, trash index offset, trash index size.
		if err = buf.Skip(12); err != nil {
			return hdr, err
		}
		if hdr.indexMinor, err = buf.ReadUint32(); err != nil {
			return hdr, err
		}
	} else {
		if hdr.indexMinor, err = buf.ReadUint32(); err != nil {
			return hdr, err
		}
		if hdr.indexOffset, err = buf.ReadUint32(); err != nil {
			return hdr, err
		}
		if err = buf.Skip(4); err != nil {
			return hdr, err
		}
	}

	return hdr, nil
}

// parseIndex reads the full entry table at hdr.indexOffset.
func (p *Package) parseIndex(ra io.ReaderAt, size int64, hdr header) ([]*Entry, map[ResourceKey]*Entry, error) {
	recordSize := int64(20)
	if hdr.indexMinor >= 2 {
		recordSize = 24
	}

	need := int64(hdr.numEntries) * recordSize
	if int64(hdr.indexOffset) > size || int64(hdr.indexOffset)+need > size {
		return nil, nil, fmt.Errorf("%w: %d entries at offset %d exceed archive size %d",
			ErrTruncatedIndex, hdr.numEntries, hdr.indexOffset, size)
	}
	if hdr.numEntries == 0 {
		return nil, make(map[ResourceKey]*Entry), nil
	}

	raw := make([]byte, need)
	if _, err := ra.ReadAt(raw, int64(hdr.indexOffset)); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrTruncatedIndex, err)
	}

	buf := NewIoBuffer(raw)
	entries := make([]*Entry, 0, hdr.numEntries)
	byInternal := make(map[ResourceKey]*Entry, hdr.numEntries)

	readField := func(dst *uint32) error {
		v, err := buf.ReadUint32()
		if err != nil {
			return fmt.Errorf("%w: %v", ErrTruncatedIndex, err)
		}
		*dst = v
		return nil
	}

	for i := uint32(0); i < hdr.numEntries; i++ {
		var tgi ResourceKey
		if err := readField(&tgi.Type); err != nil {
			return nil, nil, err
		}
		if err := readField(&tgi.Group); err != nil {
			return nil, nil, err
		}
		if err := readField(&tgi.InstanceLo); err != nil {
			return nil, nil, err
		}
		if hdr.indexMinor >= 2 {
			if err := readField(&tgi.InstanceHi); err != nil {
				return nil, nil, err
			}
		}

		e := &Entry{Internal: tgi, Global: tgi.WithLocalGroup(p.groupID), pkg: p}
		if err := readField(&e.FileOffset); err != nil {
			return nil, nil, err
		}
		if err := readField(&e.FileSize); err != nil {
			return nil, nil, err
		}

		entries = append(entries, e)
		byInternal[tgi] = e
	}

	return entries, byInternal, nil
}

// loadDir finds the compression directory entry, if any, and caches its
// parsed form. A package without a DIR entry simply has nothing compressed.
func (p *Package) loadDir() error {
	for _, e := range p.originals {
		if !e.Internal.IsDir() {
			continue
		}
		raw, err := p.readRaw(e)
		if err != nil {
			return err
		}
		dir, err := DecodeDir(raw, p.indexMinor)
		if err != nil {
			return err
		}
		p.dir = dir
		return nil
	}
	return nil
}
