// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/pbo

package dbpf

import "sync"

// Asset is a decoded resource owned by a Package. Callers implement this for
// their own resource types and register a matching Codec.
type Asset interface {
	// TGI returns the asset's current global TGI, as set by SetOwner.
	TGI() ResourceKey
	// SetOwner is called by Package whenever the asset becomes (or remains)
	// attached to a package slot, so the asset can track where it lives.
	SetOwner(pkg *Package, tgi ResourceKey, compressed bool)
}

// Codec decodes and encodes one resource type's raw bytes.
type Codec interface {
	Decode(data []byte) (Asset, error)
	Encode(asset Asset) ([]byte, error)
}

var (
	codecMu       sync.RWMutex
	codecRegistry = map[uint32]Codec{}
)

// RegisterCodec associates a Codec with a resource type ID for use by
// Package.Asset/AssetByTGI and ChangeSet.SetBytes (ChangeSet.SetAsset takes
// its codec as an argument instead). Later registrations for the same type
// ID replace earlier ones.
func RegisterCodec(typeID uint32, codec Codec) {
	codecMu.Lock()
	defer codecMu.Unlock()
	codecRegistry[typeID] = codec
}

func lookupCodec(typeID uint32) (Codec, bool) {
	codecMu.RLock()
	defer codecMu.RUnlock()
	c, ok := codecRegistry[typeID]
	return c, ok
}
