// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/pbo

/*
Package dbpf provides read, edit, and write operations for DBPF
(Database-Packed File) archives, the container format used by Maxis titles
to store game resources keyed by Type-Group-Instance identifiers. Reading
parses the header and index up front and leaves payloads on disk for lazy
access; editing goes through an in-memory overlay that never touches the
original file until WriteToFile.

Compression (summary):
  - whether a stored payload is compressed is recorded by the package's own
    DIR resource, not guessed from the bytes;
  - reads decompress transparently using the uncompressed size DIR declares;
  - edits staged with compressed=true are compressed during serialization;
  - the DIR resource is regenerated from scratch on every write.

# Reading

Open a package and list or read entries:

	p, err := dbpf.Open("neighborhood.package")
	if err != nil {
	    return err
	}
	defer p.Dispose()
	for _, e := range p.Entries() {
	    data, _ := p.Bytes(e)
	    // use data
	}

Lookups accept either the internal TGI (group may be the LOCAL sentinel) or
the global TGI (LOCAL resolved to the package's derived group ID):

	data, err := p.BytesByTGI(dbpf.ResourceKey{
	    Type:       0x856DDBAC,
	    Group:      dbpf.LocalGroup,
	    InstanceLo: 0x00000001,
	})

# Editing

Edits are staged on the package's ChangeSet and merged over the on-disk
state by every query:

	p.Changes().SetBytes(tgi, payload, true) // compress on write
	p.Changes().Delete(otherTGI)
	if err := p.WriteToFile(dbpf.WriteOptions{}); err != nil {
	    return err
	}

WriteToFile rebuilds the archive through a temp file and rename, reopens
the read handle, and resets the overlay to a clean baseline. A package
whose merged view is empty can be removed from disk entirely:

	err := p.WriteToFile(dbpf.WriteOptions{DeleteIfEmpty: true})

# Typed assets

Callers that decode payloads into their own types register a Codec per
resource type ID; Asset/AssetByTGI then return decoded objects, and
ChangeSet.SetAsset stages objects that are encoded once through the given
codec and memoized:

	dbpf.RegisterCodec(0x856DDBAC, myTextureCodec{})
	a, err := p.AssetByTGI(tgi)

# Provider wiring

A surrounding content-provider layer can observe the package by supplying a
Provider in ParseOptions; every overlay mutation notifies it synchronously
(resource-map update first, then cache invalidation). Without one, all
notifications are no-ops.
*/
package dbpf
