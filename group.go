// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/pbo

package dbpf

import (
	"hash/fnv"
	"path/filepath"
	"strings"
)

// GroupIDFromFilename derives a deterministic group ID from a package's
// filename, for use as the substituted value of the LOCAL sentinel. It
// hashes the lowercased filename stem (base name without extension) with
// FNV-1a, the same recipe the teacher uses for deterministic path hashing.
func GroupIDFromFilename(path string) uint32 {
	stem := filenameStem(path)
	h := fnv.New32a()
	_, _ = h.Write([]byte(strings.ToLower(stem)))
	return h.Sum32()
}

func filenameStem(path string) string {
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	return strings.TrimSuffix(base, ext)
}
