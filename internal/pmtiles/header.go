// Package pmtiles writes and reads PMTiles v3 archives: a fixed header, a
// gzip-compressed tile directory ordered by Hilbert tile ID, JSON metadata
// and the tile contents.
package pmtiles

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/ctessum/geom"
)

// HeaderSize is the length of the fixed v3 header.
const HeaderSize = 127

// Compression values for the header.
const (
	CompressionUnknown uint8 = 0
	CompressionNone    uint8 = 1
	CompressionGzip    uint8 = 2
)

// Tile types.
const (
	TileTypeUnknown uint8 = 0
	TileTypePNG     uint8 = 2
	TileTypeJPEG    uint8 = 3
	TileTypeWebP    uint8 = 4
)

// ErrBadArchive is returned for a file that is not a PMTiles v3 archive.
var ErrBadArchive = errors.New("not a PMTiles v3 archive")

// Header is the fixed-size archive header. Offsets are absolute file
// offsets, except that leaf directory entries are relative to LeafDirOffset
// and tile entries to TileDataOffset.
type Header struct {
	RootDirOffset       uint64
	RootDirLength       uint64
	MetadataOffset      uint64
	MetadataLength      uint64
	LeafDirOffset       uint64
	LeafDirLength       uint64
	TileDataOffset      uint64
	TileDataLength      uint64
	NumAddressedTiles   uint64
	NumTileEntries      uint64
	NumTileContents     uint64
	Clustered           bool
	InternalCompression uint8
	TileCompression     uint8
	TileType            uint8
	MinZoom             uint8
	MaxZoom             uint8
	MinLon, MinLat      float64
	MaxLon, MaxLat      float64
	CenterZoom          uint8
	CenterLon           float64
	CenterLat           float64
}

// Bounds returns the lon/lat extent recorded in the header.
func (h *Header) Bounds() *geom.Bounds {
	return &geom.Bounds{
		Min: geom.Point{X: h.MinLon, Y: h.MinLat},
		Max: geom.Point{X: h.MaxLon, Y: h.MaxLat},
	}
}

func (h *Header) marshal() []byte {
	buf := make([]byte, HeaderSize)
	copy(buf, "PMTiles")
	buf[7] = 3

	le := binary.LittleEndian
	for i, v := range []uint64{
		h.RootDirOffset, h.RootDirLength,
		h.MetadataOffset, h.MetadataLength,
		h.LeafDirOffset, h.LeafDirLength,
		h.TileDataOffset, h.TileDataLength,
		h.NumAddressedTiles, h.NumTileEntries, h.NumTileContents,
	} {
		le.PutUint64(buf[8+8*i:], v)
	}
	if h.Clustered {
		buf[96] = 1
	}
	buf[97] = h.InternalCompression
	buf[98] = h.TileCompression
	buf[99] = h.TileType
	buf[100] = h.MinZoom
	buf[101] = h.MaxZoom
	le.PutUint32(buf[102:], toE7(h.MinLon))
	le.PutUint32(buf[106:], toE7(h.MinLat))
	le.PutUint32(buf[110:], toE7(h.MaxLon))
	le.PutUint32(buf[114:], toE7(h.MaxLat))
	buf[118] = h.CenterZoom
	le.PutUint32(buf[119:], toE7(h.CenterLon))
	le.PutUint32(buf[123:], toE7(h.CenterLat))
	return buf
}

func unmarshalHeader(buf []byte) (Header, error) {
	var h Header
	if len(buf) < HeaderSize || string(buf[:7]) != "PMTiles" {
		return h, fmt.Errorf("pmtiles: bad magic: %w", ErrBadArchive)
	}
	if buf[7] != 3 {
		return h, fmt.Errorf("pmtiles: spec version %d: %w", buf[7], ErrBadArchive)
	}

	le := binary.LittleEndian
	u := make([]uint64, 11)
	for i := range u {
		u[i] = le.Uint64(buf[8+8*i:])
	}
	h.RootDirOffset, h.RootDirLength = u[0], u[1]
	h.MetadataOffset, h.MetadataLength = u[2], u[3]
	h.LeafDirOffset, h.LeafDirLength = u[4], u[5]
	h.TileDataOffset, h.TileDataLength = u[6], u[7]
	h.NumAddressedTiles, h.NumTileEntries, h.NumTileContents = u[8], u[9], u[10]
	h.Clustered = buf[96] == 1
	h.InternalCompression = buf[97]
	h.TileCompression = buf[98]
	h.TileType = buf[99]
	h.MinZoom = buf[100]
	h.MaxZoom = buf[101]
	h.MinLon = fromE7(le.Uint32(buf[102:]))
	h.MinLat = fromE7(le.Uint32(buf[106:]))
	h.MaxLon = fromE7(le.Uint32(buf[110:]))
	h.MaxLat = fromE7(le.Uint32(buf[114:]))
	h.CenterZoom = buf[118]
	h.CenterLon = fromE7(le.Uint32(buf[119:]))
	h.CenterLat = fromE7(le.Uint32(buf[123:]))
	return h, nil
}

// Positions are stored as signed degrees * 1e7.
func toE7(v float64) uint32 { return uint32(int32(math.Round(v * 1e7))) }

func fromE7(v uint32) float64 { return float64(int32(v)) / 1e7 }
