// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/pbo

package dbpf

// changedItemKind tags what a changedItem holds: raw bytes staged directly,
// or a decoded Asset awaiting on-demand, memoized encoding.
type changedItemKind uint8

const (
	itemKindRaw changedItemKind = iota
	itemKindAsset
)

// changedItem is one staged edit. Bytes() serializes on demand for the
// asset variant and memoizes the result; the raw variant has nothing to do.
type changedItem struct {
	kind       changedItemKind
	compressed bool

	rawBytes []byte

	asset Asset
	codec Codec

	cached      bool
	cachedBytes []byte
	cacheErr    error
}

// Bytes returns the item's serialized form, computing and caching it on
// first access for asset-backed items.
func (it *changedItem) Bytes() ([]byte, error) {
	if it.kind == itemKindRaw {
		return it.rawBytes, nil
	}
	if it.cached {
		return it.cachedBytes, it.cacheErr
	}
	b, err := it.codec.Encode(it.asset)
	it.cachedBytes = b
	it.cacheErr = err
	it.cached = true
	return b, err
}

// ChangeSet is the in-memory overlay of deletions and replacements applied
// on top of a package's original, on-disk entries. It never mutates
// originals; Package.Entries merges it against them on every query.
type ChangeSet struct {
	pkg *Package

	deleted map[ResourceKey]struct{}
	changed map[ResourceKey]*changedItem
	// changedOrder preserves insertion order for changed, since map
	// iteration order is not stable and callers expect a deterministic
	// merged view.
	changedOrder []ResourceKey

	dirty bool
}

func newChangeSet(pkg *Package) *ChangeSet {
	return &ChangeSet{
		pkg:     pkg,
		deleted: make(map[ResourceKey]struct{}),
		changed: make(map[ResourceKey]*changedItem),
	}
}

// Dirty reports whether any mutation has been staged since the package was
// loaded or last cleared.
func (cs *ChangeSet) Dirty() bool { return cs.dirty }

// Delete marks tgi absent from the merged view, whether or not it currently
// exists. A subsequent Restore undoes it.
func (cs *ChangeSet) Delete(tgi ResourceKey) {
	delete(cs.changed, tgi)
	cs.removeFromOrder(tgi)
	cs.deleted[tgi] = struct{}{}
	cs.dirty = true
	cs.pkg.provider.RemoveEntry(tgi, cs.pkg)
	cs.pkg.provider.RemoveCache(tgi, cs.pkg)
}

// DeleteEntry is Delete keyed by an existing Entry's internal TGI.
func (cs *ChangeSet) DeleteEntry(e *Entry) { cs.Delete(e.Internal) }

// Restore undoes a prior Delete for tgi. It is a no-op if tgi was not
// deleted.
func (cs *ChangeSet) Restore(tgi ResourceKey) {
	if _, ok := cs.deleted[tgi]; !ok {
		return
	}
	delete(cs.deleted, tgi)
	cs.dirty = true
	if e, ok := cs.pkg.byInternal[tgi]; ok {
		cs.pkg.provider.AddEntry(e)
	}
	cs.pkg.provider.RemoveCache(tgi, cs.pkg)
}

// RestoreEntry is Restore keyed by an existing Entry's internal TGI.
func (cs *ChangeSet) RestoreEntry(e *Entry) { cs.Restore(e.Internal) }

// SetAsset stages a decoded asset as the replacement for tgi. The asset is
// encoded with codec once while staging, to size the synthesized entry, and
// the encoded bytes are memoized for later reads and serialization.
func (cs *ChangeSet) SetAsset(tgi ResourceKey, asset Asset, codec Codec, compressed bool) {
	item := &changedItem{kind: itemKindAsset, asset: asset, codec: codec, compressed: compressed}
	cs.stage(tgi, item)
	asset.SetOwner(cs.pkg, tgi.WithLocalGroup(cs.pkg.groupID), compressed)
}

// SetBytes stages raw bytes as the replacement for tgi.
func (cs *ChangeSet) SetBytes(tgi ResourceKey, data []byte, compressed bool) {
	codec, _ := lookupCodec(tgi.WithLocalGroup(cs.pkg.groupID).Type)
	item := &changedItem{kind: itemKindRaw, rawBytes: data, compressed: compressed, codec: codec}
	cs.stage(tgi, item)
}

func (cs *ChangeSet) stage(tgi ResourceKey, item *changedItem) {
	delete(cs.deleted, tgi)
	if _, exists := cs.changed[tgi]; !exists {
		cs.changedOrder = append(cs.changedOrder, tgi)
	}
	cs.changed[tgi] = item
	cs.dirty = true

	if entry, err := cs.pkg.entryForChange(tgi, item); err == nil {
		cs.pkg.provider.AddEntry(entry)
	}
	cs.pkg.provider.RemoveCache(tgi, cs.pkg)
}

func (cs *ChangeSet) removeFromOrder(tgi ResourceKey) {
	for i, k := range cs.changedOrder {
		if k == tgi {
			cs.changedOrder = append(cs.changedOrder[:i], cs.changedOrder[i+1:]...)
			return
		}
	}
}

// Clear discards every staged deletion and replacement, returning the
// overlay to empty.
func (cs *ChangeSet) Clear() {
	cs.pkg.provider.RemovePackage(cs.pkg)
	cs.deleted = make(map[ResourceKey]struct{})
	cs.changed = make(map[ResourceKey]*changedItem)
	cs.changedOrder = nil
	cs.dirty = false
	cs.pkg.provider.RemoveAllCache(cs.pkg)
	cs.pkg.provider.AddPackage(cs.pkg)
}

// DeleteAll marks every entry currently in the merged view as deleted.
// Staged replacements are dropped, not just suppressed. Unlike Delete, the
// provider is notified once for the whole package.
func (cs *ChangeSet) DeleteAll() {
	for _, e := range cs.pkg.Entries() {
		delete(cs.changed, e.Internal)
		cs.removeFromOrder(e.Internal)
		cs.deleted[e.Internal] = struct{}{}
	}
	cs.dirty = true
	cs.pkg.provider.RemovePackage(cs.pkg)
	cs.pkg.provider.RemoveAllCache(cs.pkg)
}
