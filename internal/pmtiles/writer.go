package pmtiles

import (
	"bytes"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"io"
	"os"
	"sort"
	"strconv"
	"sync"

	"github.com/ctessum/geom"
)

// Options describes the archive being written.
type Options struct {
	MinZoom, MaxZoom int
	// Bounds is the lon/lat extent of the data (X = east longitude).
	Bounds   *geom.Bounds
	TileType uint8

	Name        string
	Description string
	// Extra is merged into the JSON metadata.
	Extra map[string]any
}

// Writer collects encoded tiles in memory and assembles a clustered archive.
// Identical tile contents are stored once. WriteTile is safe for concurrent
// use.
type Writer struct {
	opts Options

	mu       sync.Mutex
	tiles    map[uint64]int // tile ID -> index into contents
	contents [][]byte
	byHash   map[uint64][]int
}

// NewWriter returns an empty writer.
func NewWriter(opts Options) *Writer {
	return &Writer{
		opts:   opts,
		tiles:  make(map[uint64]int),
		byHash: make(map[uint64][]int),
	}
}

// WriteTile stores the encoded tile z/x/y. Empty data is ignored.
func (w *Writer) WriteTile(z, x, y int, data []byte) error {
	if len(data) == 0 {
		return nil
	}
	if n := 1 << uint(z); z < 0 || x < 0 || y < 0 || x >= n || y >= n {
		return fmt.Errorf("pmtiles: tile %d/%d/%d out of range", z, x, y)
	}
	id := TileID(z, x, y)

	h := fnv.New64a()
	h.Write(data)
	sum := h.Sum64()

	w.mu.Lock()
	defer w.mu.Unlock()
	if _, dup := w.tiles[id]; dup {
		return fmt.Errorf("pmtiles: tile %d/%d/%d written twice", z, x, y)
	}
	for _, i := range w.byHash[sum] {
		if bytes.Equal(w.contents[i], data) {
			w.tiles[id] = i
			return nil
		}
	}
	i := len(w.contents)
	w.contents = append(w.contents, bytes.Clone(data))
	w.byHash[sum] = append(w.byHash[sum], i)
	w.tiles[id] = i
	return nil
}

// Len returns the number of tiles written.
func (w *Writer) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.tiles)
}

// WriteTo writes the archive. Layout: header, root directory, metadata,
// leaf directories, tile data.
func (w *Writer) WriteTo(out io.Writer) (int64, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	ids := make([]uint64, 0, len(w.tiles))
	for id := range w.tiles {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	// Contents are laid out in order of first use, so the data section
	// follows the directory order.
	offsets := make(map[int]uint64, len(w.contents))
	var order []int
	var dataLen uint64
	var entries []Entry
	for _, id := range ids {
		ci := w.tiles[id]
		off, seen := offsets[ci]
		if !seen {
			off = dataLen
			offsets[ci] = off
			order = append(order, ci)
			dataLen += uint64(len(w.contents[ci]))
		}
		if n := len(entries); n > 0 {
			last := &entries[n-1]
			if last.Offset == off && last.TileID+uint64(last.RunLength) == id {
				last.RunLength++
				continue
			}
		}
		entries = append(entries, Entry{TileID: id, Offset: off, Length: uint32(len(w.contents[ci])), RunLength: 1})
	}

	root, leaves, err := buildDirectories(entries)
	if err != nil {
		return 0, err
	}
	meta, err := w.metadata()
	if err != nil {
		return 0, err
	}

	h := w.header()
	h.RootDirOffset = HeaderSize
	h.RootDirLength = uint64(len(root))
	h.MetadataOffset = h.RootDirOffset + h.RootDirLength
	h.MetadataLength = uint64(len(meta))
	h.LeafDirOffset = h.MetadataOffset + h.MetadataLength
	h.LeafDirLength = uint64(len(leaves))
	h.TileDataOffset = h.LeafDirOffset + h.LeafDirLength
	h.TileDataLength = dataLen
	h.NumAddressedTiles = uint64(len(ids))
	h.NumTileEntries = uint64(len(entries))
	h.NumTileContents = uint64(len(order))

	var n int64
	for _, b := range [][]byte{h.marshal(), root, meta, leaves} {
		m, err := out.Write(b)
		n += int64(m)
		if err != nil {
			return n, err
		}
	}
	for _, ci := range order {
		m, err := out.Write(w.contents[ci])
		n += int64(m)
		if err != nil {
			return n, err
		}
	}
	return n, nil
}

// WriteFile writes the archive to path.
func (w *Writer) WriteFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("pmtiles: %w", err)
	}
	if _, err := w.WriteTo(f); err != nil {
		f.Close()
		os.Remove(path)
		return fmt.Errorf("pmtiles: writing %s: %w", path, err)
	}
	return f.Close()
}

func (w *Writer) header() Header {
	h := Header{
		Clustered:           true,
		InternalCompression: CompressionGzip,
		// Image tiles carry their own compression.
		TileCompression: CompressionNone,
		TileType:        w.opts.TileType,
		MinZoom:         uint8(w.opts.MinZoom),
		MaxZoom:         uint8(w.opts.MaxZoom),
		CenterZoom:      uint8((w.opts.MinZoom + w.opts.MaxZoom) / 2),
	}
	if b := w.opts.Bounds; b != nil {
		h.MinLon, h.MinLat = b.Min.X, b.Min.Y
		h.MaxLon, h.MaxLat = b.Max.X, b.Max.Y
		h.CenterLon = (b.Min.X + b.Max.X) / 2
		h.CenterLat = (b.Min.Y + b.Max.Y) / 2
	}
	return h
}

func (w *Writer) metadata() ([]byte, error) {
	h := w.header()
	meta := map[string]any{
		"name":    w.opts.Name,
		"format":  tileFormatName(w.opts.TileType),
		"type":    "overlay",
		"minzoom": strconv.Itoa(w.opts.MinZoom),
		"maxzoom": strconv.Itoa(w.opts.MaxZoom),
		"bounds":  fmt.Sprintf("%.6f,%.6f,%.6f,%.6f", h.MinLon, h.MinLat, h.MaxLon, h.MaxLat),
		"center":  fmt.Sprintf("%.6f,%.6f,%d", h.CenterLon, h.CenterLat, h.CenterZoom),
	}
	if w.opts.Description != "" {
		meta["description"] = w.opts.Description
	}
	for k, v := range w.opts.Extra {
		meta[k] = v
	}
	b, err := json.Marshal(meta)
	if err != nil {
		return nil, fmt.Errorf("pmtiles: metadata: %w", err)
	}
	return gzipBytes(b)
}

func tileFormatName(t uint8) string {
	switch t {
	case TileTypePNG:
		return "png"
	case TileTypeJPEG:
		return "jpg"
	case TileTypeWebP:
		return "webp"
	}
	return "unknown"
}
