// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/pbo

package dbpf

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
)

// recordingProvider captures every notification in call order.
type recordingProvider struct {
	calls []string
}

func (r *recordingProvider) record(format string, args ...any) {
	r.calls = append(r.calls, fmt.Sprintf(format, args...))
}

func (r *recordingProvider) AddPackage(*Package)    { r.record("add_package") }
func (r *recordingProvider) RemovePackage(*Package) { r.record("remove_package") }
func (r *recordingProvider) AddEntry(e *Entry)      { r.record("add_entry %s", e.Internal) }
func (r *recordingProvider) RemoveEntry(tgi ResourceKey, _ *Package) {
	r.record("remove_entry %s", tgi)
}
func (r *recordingProvider) RemoveCache(tgi ResourceKey, _ *Package) {
	r.record("remove_cache %s", tgi)
}
func (r *recordingProvider) RemoveAllCache(*Package) { r.record("remove_all_cache") }

func (r *recordingProvider) reset() { r.calls = nil }

func (r *recordingProvider) tail(n int) []string {
	if len(r.calls) < n {
		return r.calls
	}
	return r.calls[len(r.calls)-n:]
}

// testPackageFile writes a package with the given raw entries to path.
func testPackageFile(t *testing.T, path string, entries map[ResourceKey][]byte) {
	t.Helper()

	p := New()
	p.SetFilePath(path)
	for tgi, data := range entries {
		p.Changes().SetBytes(tgi, data, false)
	}
	if err := p.WriteToFile(WriteOptions{}); err != nil {
		t.Fatalf("WriteToFile: %v", err)
	}
	if err := p.Dispose(); err != nil {
		t.Fatalf("Dispose: %v", err)
	}
}

var (
	testTGIA = ResourceKey{Type: 0x10, Group: 0x100, InstanceLo: 0x1}
	testTGIB = ResourceKey{Type: 0x20, Group: LocalGroup, InstanceLo: 0x2}
)

// openTestPackage builds and reopens a two-entry package with a recording
// provider attached.
func openTestPackage(t *testing.T) (*Package, *recordingProvider) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "fixture.package")
	testPackageFile(t, path, map[ResourceKey][]byte{
		testTGIA: {0xA1, 0xA2},
		testTGIB: {0xB1, 0xB2, 0xB3},
	})

	rec := &recordingProvider{}
	p, err := OpenWithOptions(path, ParseOptions{Provider: rec})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = p.Dispose() })
	rec.reset()
	return p, rec
}

func TestChangeSet_DeleteAndRestore(t *testing.T) {
	p, rec := openTestPackage(t)

	if p.Changes().Dirty() {
		t.Fatal("fresh package is dirty")
	}

	p.Changes().Delete(testTGIA)

	if !p.Changes().Dirty() {
		t.Fatal("Delete did not set dirty")
	}
	want := []string{
		fmt.Sprintf("remove_entry %s", testTGIA),
		fmt.Sprintf("remove_cache %s", testTGIA),
	}
	if got := rec.tail(2); got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("notifications = %v, want %v", got, want)
	}

	if _, err := p.BytesByTGI(testTGIA); !errors.Is(err, ErrMissingEntry) {
		t.Fatalf("deleted entry still readable: %v", err)
	}
	if _, ok := p.EntryByTGI(testTGIA); ok {
		t.Fatal("deleted entry still in merged view")
	}

	rec.reset()
	p.Changes().Restore(testTGIA)

	if got := rec.calls; len(got) != 2 ||
		got[0] != fmt.Sprintf("add_entry %s", testTGIA) ||
		got[1] != fmt.Sprintf("remove_cache %s", testTGIA) {
		t.Fatalf("restore notifications = %v", got)
	}
	data, err := p.BytesByTGI(testTGIA)
	if err != nil {
		t.Fatalf("BytesByTGI after restore: %v", err)
	}
	if !bytes.Equal(data, []byte{0xA1, 0xA2}) {
		t.Fatalf("restored bytes = % x", data)
	}
}

func TestChangeSet_RestoreIsNoOpWhenNotDeleted(t *testing.T) {
	p, rec := openTestPackage(t)

	p.Changes().Restore(testTGIA)
	if len(rec.calls) != 0 {
		t.Fatalf("no-op restore notified: %v", rec.calls)
	}
	if p.Changes().Dirty() {
		t.Fatal("no-op restore set dirty")
	}
}

func TestChangeSet_SetBytesOverridesAndUndeletes(t *testing.T) {
	p, rec := openTestPackage(t)

	replacement := []byte{0xFF, 0xFE}
	p.Changes().Delete(testTGIB)
	rec.reset()
	p.Changes().SetBytes(testTGIB, replacement, false)

	if got := rec.calls; len(got) != 2 ||
		got[0] != fmt.Sprintf("add_entry %s", testTGIB) ||
		got[1] != fmt.Sprintf("remove_cache %s", testTGIB) {
		t.Fatalf("stage notifications = %v", got)
	}

	data, err := p.BytesByTGI(testTGIB)
	if err != nil {
		t.Fatalf("BytesByTGI: %v", err)
	}
	if !bytes.Equal(data, replacement) {
		t.Fatalf("bytes = % x, want % x", data, replacement)
	}

	e, ok := p.EntryByTGI(testTGIB)
	if !ok {
		t.Fatal("staged entry missing from merged view")
	}
	if e.FileSize != uint32(len(replacement)) {
		t.Fatalf("synthesized FileSize = %d, want %d", e.FileSize, len(replacement))
	}
}

func TestChangeSet_MergedViewIdentity(t *testing.T) {
	p, _ := openTestPackage(t)

	added := ResourceKey{Type: 0x30, Group: LocalGroup, InstanceLo: 0x3}
	p.Changes().Delete(testTGIA)
	p.Changes().SetBytes(added, []byte{1}, false)
	p.Changes().SetBytes(testTGIB, []byte{2}, false)

	entries := p.Entries()
	if len(entries) != 2 {
		t.Fatalf("len(entries) = %d, want 2", len(entries))
	}
	// Originals minus deleted minus changed keys, then changed in insertion
	// order.
	if entries[0].Internal != added || entries[1].Internal != testTGIB {
		t.Fatalf("merged order = [%s, %s], want [%s, %s]",
			entries[0].Internal, entries[1].Internal, added, testTGIB)
	}

	seen := map[ResourceKey]bool{}
	for _, e := range entries {
		if seen[e.Internal] {
			t.Fatalf("duplicate internal TGI %s", e.Internal)
		}
		seen[e.Internal] = true
	}
}

func TestChangeSet_Clear(t *testing.T) {
	p, rec := openTestPackage(t)

	p.Changes().Delete(testTGIA)
	p.Changes().SetBytes(testTGIB, []byte{9}, false)
	rec.reset()

	p.Changes().Clear()

	if p.Changes().Dirty() {
		t.Fatal("Clear left package dirty")
	}
	if got := rec.calls; len(got) != 3 ||
		got[0] != "remove_package" ||
		got[1] != "remove_all_cache" ||
		got[2] != "add_package" {
		t.Fatalf("clear notifications = %v", got)
	}

	data, err := p.BytesByTGI(testTGIB)
	if err != nil {
		t.Fatalf("BytesByTGI after clear: %v", err)
	}
	if !bytes.Equal(data, []byte{0xB1, 0xB2, 0xB3}) {
		t.Fatalf("original bytes not back after clear: % x", data)
	}
	if len(p.Entries()) != 2 {
		t.Fatalf("len(entries) = %d, want 2", len(p.Entries()))
	}
}

func TestChangeSet_DeleteAll(t *testing.T) {
	p, rec := openTestPackage(t)

	extra := ResourceKey{Type: 0x40, Group: 0x400, InstanceLo: 0x4}
	p.Changes().SetBytes(extra, []byte{7}, false)
	rec.reset()

	p.Changes().DeleteAll()

	if got := rec.calls; len(got) != 2 ||
		got[0] != "remove_package" ||
		got[1] != "remove_all_cache" {
		t.Fatalf("delete-all notifications = %v", got)
	}
	if len(p.Entries()) != 0 {
		t.Fatalf("len(entries) = %d after DeleteAll, want 0", len(p.Entries()))
	}
	if !p.Changes().Dirty() {
		t.Fatal("DeleteAll did not set dirty")
	}
}
