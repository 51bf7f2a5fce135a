package pmtiles

import (
	"bytes"
	"compress/gzip"
	"encoding/binary"
	"fmt"
	"io"
)

// Directory limits. A root directory that would exceed maxRootEntries is
// split into leaf directories of leafSize entries.
const (
	maxRootEntries = 16384
	leafSize       = 4096
)

// Entry is one directory record. RunLength > 0 addresses RunLength
// consecutive tile IDs that share the same content; RunLength == 0 points
// at a leaf directory.
type Entry struct {
	TileID    uint64
	Offset    uint64
	Length    uint32
	RunLength uint32
}

// zoomBase is the ID of the first tile at zoom z: the number of tiles at
// all lower zooms.
func zoomBase(z int) uint64 {
	var acc uint64
	for i := 0; i < z; i++ {
		acc += uint64(1) << uint(2*i)
	}
	return acc
}

// TileID returns the Hilbert-ordered ID of tile z/x/y.
func TileID(z, x, y int) uint64 {
	n := uint64(1) << uint(z)
	rx, ry := uint64(x), uint64(y)
	var d uint64
	for s := n / 2; s > 0; s /= 2 {
		var bx, by uint64
		if rx&s > 0 {
			bx = 1
		}
		if ry&s > 0 {
			by = 1
		}
		d += s * s * ((3 * bx) ^ by)
		rx, ry = rotate(n, rx, ry, bx, by)
	}
	return zoomBase(z) + d
}

// ZXY is the inverse of TileID.
func ZXY(id uint64) (z, x, y int) {
	for id >= zoomBase(z+1) {
		z++
	}
	d := id - zoomBase(z)
	n := uint64(1) << uint(z)
	var rx, ry uint64
	for s := uint64(1); s < n; s *= 2 {
		bx := 1 & (d / 2)
		by := 1 & (d ^ bx)
		rx, ry = rotate(s, rx, ry, bx, by)
		rx += s * bx
		ry += s * by
		d /= 4
	}
	return z, int(rx), int(ry)
}

func rotate(n, x, y, bx, by uint64) (uint64, uint64) {
	if by == 0 {
		if bx == 1 {
			x = n - 1 - x
			y = n - 1 - y
		}
		x, y = y, x
	}
	return x, y
}

// marshalDirectory encodes entries (sorted by TileID) column by column as
// varints and gzips the result.
func marshalDirectory(entries []Entry) ([]byte, error) {
	var raw bytes.Buffer
	put := func(v uint64) {
		raw.Write(binary.AppendUvarint(nil, v))
	}

	put(uint64(len(entries)))
	var last uint64
	for _, e := range entries {
		put(e.TileID - last)
		last = e.TileID
	}
	for _, e := range entries {
		put(uint64(e.RunLength))
	}
	for _, e := range entries {
		put(uint64(e.Length))
	}
	for i, e := range entries {
		// 0 means "directly after the previous entry".
		if i > 0 && e.Offset == entries[i-1].Offset+uint64(entries[i-1].Length) {
			put(0)
		} else {
			put(e.Offset + 1)
		}
	}
	return gzipBytes(raw.Bytes())
}

func unmarshalDirectory(data []byte) ([]Entry, error) {
	zr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("pmtiles: directory: %w", err)
	}
	raw, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("pmtiles: directory: %w", err)
	}

	r := bytes.NewReader(raw)
	var rerr error
	get := func() uint64 {
		v, err := binary.ReadUvarint(r)
		if err != nil && rerr == nil {
			rerr = fmt.Errorf("pmtiles: truncated directory: %w", ErrBadArchive)
		}
		return v
	}

	n := get()
	if rerr != nil {
		return nil, rerr
	}
	if n > uint64(len(raw)) {
		return nil, fmt.Errorf("pmtiles: directory claims %d entries: %w", n, ErrBadArchive)
	}
	entries := make([]Entry, n)
	var last uint64
	for i := range entries {
		last += get()
		entries[i].TileID = last
	}
	for i := range entries {
		entries[i].RunLength = uint32(get())
	}
	for i := range entries {
		entries[i].Length = uint32(get())
	}
	for i := range entries {
		v := get()
		if v == 0 && i > 0 {
			entries[i].Offset = entries[i-1].Offset + uint64(entries[i-1].Length)
		} else {
			entries[i].Offset = v - 1
		}
	}
	return entries, rerr
}

// buildDirectories returns the root directory and the concatenated leaf
// directories for entries.
func buildDirectories(entries []Entry) (root, leaves []byte, err error) {
	if len(entries) <= maxRootEntries {
		root, err = marshalDirectory(entries)
		return root, nil, err
	}

	var leafBuf bytes.Buffer
	var pointers []Entry
	for i := 0; i < len(entries); i += leafSize {
		chunk := entries[i:min(i+leafSize, len(entries))]
		leaf, err := marshalDirectory(chunk)
		if err != nil {
			return nil, nil, err
		}
		pointers = append(pointers, Entry{
			TileID: chunk[0].TileID,
			Offset: uint64(leafBuf.Len()),
			Length: uint32(len(leaf)),
		})
		leafBuf.Write(leaf)
	}
	root, err = marshalDirectory(pointers)
	return root, leafBuf.Bytes(), err
}

func gzipBytes(b []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw, err := gzip.NewWriterLevel(&buf, gzip.BestCompression)
	if err != nil {
		return nil, err
	}
	if _, err := zw.Write(b); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
