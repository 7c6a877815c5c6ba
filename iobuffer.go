// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/pbo

package dbpf

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// IoBuffer is a little-endian byte cursor used for both directions: reading
// over an existing byte slice, and writing/back-patching a growing one. A
// single type serves both roles, mirroring the reference Stream cursor this
// package's binary layout is grounded on.
type IoBuffer struct {
	buf []byte
	pos int
}

// NewIoBuffer wraps an existing byte slice for reading.
func NewIoBuffer(data []byte) *IoBuffer {
	return &IoBuffer{buf: data}
}

// NewIoBufferForWrite returns an empty buffer ready for appending.
func NewIoBufferForWrite() *IoBuffer {
	return &IoBuffer{buf: make([]byte, 0, 256)}
}

// Len returns the number of bytes currently held.
func (b *IoBuffer) Len() int { return len(b.buf) }

// Pos returns the current cursor position.
func (b *IoBuffer) Pos() int64 { return int64(b.pos) }

// Bytes returns the buffer's full backing slice (read or accumulated write).
func (b *IoBuffer) Bytes() []byte { return b.buf }

// Remaining returns the number of unread bytes ahead of the cursor.
func (b *IoBuffer) Remaining() int { return len(b.buf) - b.pos }

// Seek repositions the cursor. whence follows io.Seeker semantics.
func (b *IoBuffer) Seek(offset int64, whence int) error {
	var base int64
	switch whence {
	case io.SeekStart:
		base = 0
	case io.SeekCurrent:
		base = int64(b.pos)
	case io.SeekEnd:
		base = int64(len(b.buf))
	default:
		return fmt.Errorf("iobuffer: invalid whence %d", whence)
	}
	target := base + offset
	if target < 0 || target > int64(len(b.buf)) {
		return fmt.Errorf("iobuffer: seek %d out of range [0,%d]", target, len(b.buf))
	}
	b.pos = int(target)
	return nil
}

// Skip advances the cursor by n bytes without reading.
func (b *IoBuffer) Skip(n int) error {
	return b.Seek(int64(n), io.SeekCurrent)
}

func (b *IoBuffer) need(n int) error {
	if b.Remaining() < n {
		return fmt.Errorf("%w: need %d bytes, have %d", io.ErrUnexpectedEOF, n, b.Remaining())
	}
	return nil
}

// ReadBytes returns a copy of the next n bytes and advances the cursor.
func (b *IoBuffer) ReadBytes(n int) ([]byte, error) {
	if err := b.need(n); err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, b.buf[b.pos:b.pos+n])
	b.pos += n
	return out, nil
}

// ReadUint8 reads one byte.
func (b *IoBuffer) ReadUint8() (uint8, error) {
	if err := b.need(1); err != nil {
		return 0, err
	}
	v := b.buf[b.pos]
	b.pos++
	return v, nil
}

// ReadUint16 reads a little-endian uint16.
func (b *IoBuffer) ReadUint16() (uint16, error) {
	if err := b.need(2); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint16(b.buf[b.pos:])
	b.pos += 2
	return v, nil
}

// ReadUint32 reads a little-endian uint32.
func (b *IoBuffer) ReadUint32() (uint32, error) {
	if err := b.need(4); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint32(b.buf[b.pos:])
	b.pos += 4
	return v, nil
}

// ReadInt32 reads a little-endian signed int32.
func (b *IoBuffer) ReadInt32() (int32, error) {
	v, err := b.ReadUint32()
	return int32(v), err
}

// ReadFloat32 reads a little-endian IEEE-754 float32.
func (b *IoBuffer) ReadFloat32() (float32, error) {
	v, err := b.ReadUint32()
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(v), nil
}

// ReadFixedString reads n raw bytes and returns them as a string (no NUL
// scanning, no length prefix — the caller supplies the length).
func (b *IoBuffer) ReadFixedString(n int) (string, error) {
	raw, err := b.ReadBytes(n)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// Write appends raw bytes.
func (b *IoBuffer) Write(p []byte) {
	b.buf = append(b.buf, p...)
	b.pos = len(b.buf)
}

// WriteUint8 appends one byte.
func (b *IoBuffer) WriteUint8(v uint8) {
	b.Write([]byte{v})
}

// WriteUint16 appends a little-endian uint16.
func (b *IoBuffer) WriteUint16(v uint16) {
	var tmp [2]byte
	binary.LittleEndian.PutUint16(tmp[:], v)
	b.Write(tmp[:])
}

// WriteUint32 appends a little-endian uint32.
func (b *IoBuffer) WriteUint32(v uint32) {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], v)
	b.Write(tmp[:])
}

// WriteInt32 appends a little-endian signed int32.
func (b *IoBuffer) WriteInt32(v int32) {
	b.WriteUint32(uint32(v))
}

// WriteFloat32 appends a little-endian IEEE-754 float32.
func (b *IoBuffer) WriteFloat32(v float32) {
	b.WriteUint32(math.Float32bits(v))
}

// PatchUint32 overwrites 4 already-written bytes at pos without moving the
// cursor, used for back-patching offsets/sizes discovered after the fact.
func (b *IoBuffer) PatchUint32(pos int64, v uint32) error {
	p := int(pos)
	if p < 0 || p+4 > len(b.buf) {
		return fmt.Errorf("iobuffer: patch at %d out of range [0,%d]", p, len(b.buf))
	}
	binary.LittleEndian.PutUint32(b.buf[p:p+4], v)
	return nil
}
