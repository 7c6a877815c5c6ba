// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/pbo

package dbpf

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// Package is one DBPF archive: the parsed on-disk mirror (original entries,
// compression directory, version fields, an open read handle for lazy
// payload reads) plus the in-memory ChangeSet overlay. Every query merges
// the overlay against the originals; the on-disk state only changes on
// WriteToFile.
//
// A Package is single-threaded: concurrent mutation from multiple
// goroutines is not supported. Multiple packages may be used in parallel as
// long as any shared Provider is synchronized by the caller.
type Package struct {
	filePath string
	groupID  uint32
	provider Provider

	// ra is the retained read handle for lazy payload reads; file is set
	// when the package owns an *os.File opened via Open.
	ra   io.ReaderAt
	file *os.File
	size int64

	// originals are the entries as parsed, in index order.
	originals  []*Entry
	byInternal map[ResourceKey]*Entry

	// dir is the compression directory snapshot as parsed: internal TGI to
	// uncompressed size, for exactly the compressed subset of originals.
	dir map[ResourceKey]uint32

	major, minor           uint32
	indexMajor, indexMinor uint32
	dateCreated            int32
	dateModified           int32

	changes *ChangeSet

	closed  bool
	deleted bool
}

// New returns an empty package with no backing file. Use SetFilePath before
// WriteToFile.
func New() *Package {
	return NewWithOptions(ParseOptions{})
}

// NewWithOptions returns an empty package using explicit options.
func NewWithOptions(opts ParseOptions) *Package {
	opts.applyDefaults()
	p := newPackage(opts.Provider)
	p.attachToProvider()
	return p
}

func newPackage(provider Provider) *Package {
	p := &Package{
		provider:   provider,
		byInternal: make(map[ResourceKey]*Entry),
	}
	p.changes = newChangeSet(p)
	return p
}

// attachToProvider announces the package and its current entries.
func (p *Package) attachToProvider() {
	p.provider.AddPackage(p)
	for _, e := range p.originals {
		p.provider.AddEntry(e)
	}
}

// FilePath returns the path the package was opened from or rebound to.
func (p *Package) FilePath() string { return p.filePath }

// GroupID returns the group ID derived from the package's filename stem,
// substituted for the LOCAL sentinel in global TGIs.
func (p *Package) GroupID() uint32 { return p.groupID }

// Deleted reports whether WriteToFile removed the package from disk.
func (p *Package) Deleted() bool { return p.deleted }

// Changes returns the package's overlay of pending edits.
func (p *Package) Changes() *ChangeSet { return p.changes }

// Version returns the parsed header version pair (zero for a new package).
func (p *Package) Version() (major, minor uint32) { return p.major, p.minor }

// IndexVersion returns the parsed index version pair.
func (p *Package) IndexVersion() (major, minor uint32) { return p.indexMajor, p.indexMinor }

// Dates returns the header creation/modification timestamps (v1.x only).
func (p *Package) Dates() (created, modified int32) { return p.dateCreated, p.dateModified }

// SetFilePath rebinds the package to a new path: the group ID is rederived
// from the new filename stem, every entry's global TGI is rewritten through
// the new LOCAL substitution, and the package is re-announced to the
// provider under its new identity.
func (p *Package) SetFilePath(path string) {
	p.provider.RemovePackage(p)
	p.filePath = path
	p.groupID = GroupIDFromFilename(path)
	for _, e := range p.originals {
		e.Global = e.Internal.WithLocalGroup(p.groupID)
	}
	p.provider.AddPackage(p)
	for _, e := range p.originals {
		p.provider.AddEntry(e)
	}
}

// OriginalEntries returns a copy of the entry list as parsed from disk,
// ignoring the overlay.
func (p *Package) OriginalEntries() []*Entry {
	out := make([]*Entry, len(p.originals))
	copy(out, p.originals)
	return out
}

// Entries returns the merged view: every original entry not deleted and not
// replaced, in index order, followed by every overlay entry in insertion
// order. Overlay entries are synthesized fresh on each call.
func (p *Package) Entries() []*Entry {
	cs := p.changes
	out := make([]*Entry, 0, len(p.originals)+len(cs.changedOrder))
	for _, e := range p.originals {
		if _, del := cs.deleted[e.Internal]; del {
			continue
		}
		if _, ch := cs.changed[e.Internal]; ch {
			continue
		}
		out = append(out, e)
	}
	for _, tgi := range cs.changedOrder {
		e, err := p.entryForChange(tgi, cs.changed[tgi])
		if err != nil {
			continue
		}
		out = append(out, e)
	}
	return out
}

// entryForChange synthesizes the virtual Entry for a staged edit: the TGI
// is the edit key and FileSize is the current byte length.
func (p *Package) entryForChange(tgi ResourceKey, item *changedItem) (*Entry, error) {
	b, err := item.Bytes()
	if err != nil {
		return nil, err
	}
	return &Entry{
		Internal: tgi,
		Global:   tgi.WithLocalGroup(p.groupID),
		FileSize: uint32(len(b)),
		pkg:      p,
	}, nil
}

// resolveInternal maps a caller-supplied TGI (internal or global form) to
// the internal key used by the package's maps.
func (p *Package) resolveInternal(tgi ResourceKey) (ResourceKey, bool) {
	if _, ok := p.changes.changed[tgi]; ok {
		return tgi, true
	}
	if _, ok := p.byInternal[tgi]; ok {
		return tgi, true
	}
	if tgi.Group == p.groupID {
		local := tgi
		local.Group = LocalGroup
		if _, ok := p.changes.changed[local]; ok {
			return local, true
		}
		if _, ok := p.byInternal[local]; ok {
			return local, true
		}
	}
	if _, ok := p.changes.deleted[tgi]; ok {
		return tgi, true
	}
	return tgi, false
}

// EntryByTGI looks up an entry by TGI (internal or global form) in the
// merged view. Deleted entries are not found.
func (p *Package) EntryByTGI(tgi ResourceKey) (*Entry, bool) {
	key, ok := p.resolveInternal(tgi)
	if !ok {
		return nil, false
	}
	if _, del := p.changes.deleted[key]; del {
		return nil, false
	}
	if item, ok := p.changes.changed[key]; ok {
		e, err := p.entryForChange(key, item)
		if err != nil {
			return nil, false
		}
		return e, true
	}
	e, ok := p.byInternal[key]
	return e, ok
}

// Bytes returns the entry's payload: overlay bytes for staged edits,
// otherwise the on-disk bytes, decompressed when the compression directory
// lists the entry.
func (p *Package) Bytes(e *Entry) ([]byte, error) {
	return p.bytesByInternal(e.Internal, true)
}

// BytesByTGI is Bytes keyed by TGI (internal or global form).
func (p *Package) BytesByTGI(tgi ResourceKey) ([]byte, error) {
	key, ok := p.resolveInternal(tgi)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingEntry, tgi)
	}
	return p.bytesByInternal(key, true)
}

// bytesByInternal is the single payload read path. When ignoreDeleted is
// set, entries staged as deleted are reported missing; the serializer
// passes false so it can still drain bytes while rebuilding.
func (p *Package) bytesByInternal(tgi ResourceKey, ignoreDeleted bool) ([]byte, error) {
	cs := p.changes
	if ignoreDeleted {
		if _, del := cs.deleted[tgi]; del {
			return nil, fmt.Errorf("%w: %s is deleted", ErrMissingEntry, tgi)
		}
	}
	if item, ok := cs.changed[tgi]; ok {
		return item.Bytes()
	}

	e, ok := p.byInternal[tgi]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingEntry, tgi)
	}

	raw, err := p.readRaw(e)
	if err != nil {
		return nil, err
	}
	if size, ok := p.dir[tgi]; ok && !tgi.IsDir() {
		return Decompress(raw, int(size))
	}
	return raw, nil
}

// readRaw reads an original entry's stored bytes without decompression.
func (p *Package) readRaw(e *Entry) ([]byte, error) {
	if p.closed {
		return nil, ErrClosed
	}
	if int64(e.FileOffset)+int64(e.FileSize) > p.size {
		return nil, fmt.Errorf("%w: %s at %d+%d, archive is %d bytes",
			ErrEntryOutOfRange, e.Internal, e.FileOffset, e.FileSize, p.size)
	}
	raw := make([]byte, e.FileSize)
	if _, err := p.ra.ReadAt(raw, int64(e.FileOffset)); err != nil {
		return nil, fmt.Errorf("read payload %s: %w", e.Internal, err)
	}
	return raw, nil
}

// Asset returns the entry's decoded form: the stashed overlay asset when
// one is staged, otherwise the payload bytes run through the codec
// registered for the entry's type. The asset is stamped with its owning
// package, global TGI, and compression state.
func (p *Package) Asset(e *Entry) (Asset, error) {
	return p.assetByInternal(e.Internal)
}

// AssetByTGI is Asset keyed by TGI (internal or global form).
func (p *Package) AssetByTGI(tgi ResourceKey) (Asset, error) {
	key, ok := p.resolveInternal(tgi)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingEntry, tgi)
	}
	return p.assetByInternal(key)
}

func (p *Package) assetByInternal(tgi ResourceKey) (Asset, error) {
	cs := p.changes
	if _, del := cs.deleted[tgi]; del {
		return nil, fmt.Errorf("%w: %s is deleted", ErrMissingEntry, tgi)
	}
	if item, ok := cs.changed[tgi]; ok && item.kind == itemKindAsset {
		return item.asset, nil
	}

	data, err := p.bytesByInternal(tgi, true)
	if err != nil {
		return nil, err
	}

	global := tgi.WithLocalGroup(p.groupID)
	codec, ok := lookupCodec(global.Type)
	if !ok {
		return nil, fmt.Errorf("%w: type %08x", ErrNoCodec, global.Type)
	}
	asset, err := codec.Decode(data)
	if err != nil {
		return nil, err
	}
	asset.SetOwner(p, global, p.isCompressed(tgi))
	return asset, nil
}

// isCompressed reports whether tgi's payload is stored (or staged to be
// stored) compressed.
func (p *Package) isCompressed(tgi ResourceKey) bool {
	if item, ok := p.changes.changed[tgi]; ok {
		return item.compressed
	}
	_, ok := p.dir[tgi]
	return ok && !tgi.IsDir()
}

// WriteToFile rebuilds the archive at the package's file path. When
// DeleteIfEmpty is set and the merged view is empty, the file is removed
// instead and the package is marked deleted. On success the read handle is
// reopened on the fresh file, the package is re-parsed, and the overlay is
// cleared to a clean baseline. On error the previous on-disk file is left
// intact (the rebuild goes through a temp file and rename).
func (p *Package) WriteToFile(opts WriteOptions) error {
	if p == nil {
		return ErrNilPackage
	}
	if p.deleted {
		return ErrClosed
	}
	if p.filePath == "" {
		return fmt.Errorf("%w: package has no file path", ErrIo)
	}
	opts.applyDefaults()

	if opts.DeleteIfEmpty && len(p.Entries()) == 0 {
		p.disposeHandle()
		p.provider.RemovePackage(p)
		if err := os.Remove(p.filePath); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %v", ErrIo, err)
		}
		p.changes = newChangeSet(p)
		p.deleted = true
		return nil
	}

	data, err := p.serialize(opts)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(p.filePath), ".dbpf-write-*")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrIo, err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("%w: %v", ErrIo, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("%w: %v", ErrIo, err)
	}

	p.disposeHandle()
	if err := os.Rename(tmpPath, p.filePath); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("%w: %v", ErrIo, err)
	}

	f, err := os.Open(p.filePath)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrIo, err)
	}
	fi, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return fmt.Errorf("%w: %v", ErrIo, err)
	}

	p.ra = f
	p.file = f
	p.size = fi.Size()
	p.closed = false
	p.changes = newChangeSet(p)
	p.originals = nil
	p.byInternal = make(map[ResourceKey]*Entry)
	p.dir = nil

	if err := p.parseFrom(f, fi.Size()); err != nil {
		return err
	}
	p.attachToProvider()
	return nil
}

// Dispose releases the read handle. Payload reads of original entries fail
// with ErrClosed afterwards; overlay reads keep working.
func (p *Package) Dispose() error {
	if p == nil {
		return ErrNilPackage
	}
	return p.disposeHandle()
}

func (p *Package) disposeHandle() error {
	if p.closed {
		return nil
	}
	p.closed = true
	p.ra = nil
	if p.file != nil {
		f := p.file
		p.file = nil
		if err := f.Close(); err != nil {
			return fmt.Errorf("%w: %v", ErrIo, err)
		}
	}
	return nil
}
