// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/pbo

package dbpf

// Provider is the narrow collaborator a Package notifies when its merged
// view changes, so a resource-map/cache layer can stay in sync without the
// Package knowing anything about that layer's internals. All calls are
// synchronous and happen before the mutating call returns.
type Provider interface {
	// AddPackage is called when a package becomes visible to the provider
	// (e.g. after Clear resets it to a fresh overlay).
	AddPackage(pkg *Package)
	// RemovePackage is called when a package's edits should be treated as a
	// clean slate by the provider (e.g. before Clear re-adds it).
	RemovePackage(pkg *Package)
	// AddEntry is called whenever an entry becomes visible: for every
	// original entry when the package is opened, rewritten by WriteToFile or
	// rebound by SetFilePath, on Restore, and on SetAsset/SetBytes.
	AddEntry(e *Entry)
	// RemoveEntry is called when tgi is deleted from pkg's merged view.
	RemoveEntry(tgi ResourceKey, pkg *Package)
	// RemoveCache invalidates any cached decode of tgi in pkg.
	RemoveCache(tgi ResourceKey, pkg *Package)
	// RemoveAllCache invalidates every cached decode belonging to pkg.
	RemoveAllCache(pkg *Package)
}

// nilProvider is the default, no-op Provider: all notifications are
// advisory when the caller hasn't wired a real one.
type nilProvider struct{}

func (nilProvider) AddPackage(*Package)               {}
func (nilProvider) RemovePackage(*Package)            {}
func (nilProvider) AddEntry(*Entry)                   {}
func (nilProvider) RemoveEntry(ResourceKey, *Package) {}
func (nilProvider) RemoveCache(ResourceKey, *Package) {}
func (nilProvider) RemoveAllCache(*Package)           {}

var _ Provider = nilProvider{}
