package pmtiles

import (
	"bytes"
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"sort"
)

// Reader looks up tiles in an archive. Directories are read once, on Open.
type Reader struct {
	r       io.ReaderAt
	header  Header
	entries []Entry // tile entries only, sorted by TileID
}

// Open reads the header and all directories of the archive in r.
func Open(r io.ReaderAt) (*Reader, error) {
	buf := make([]byte, HeaderSize)
	if _, err := r.ReadAt(buf, 0); err != nil {
		return nil, fmt.Errorf("pmtiles: reading header: %w", err)
	}
	h, err := unmarshalHeader(buf)
	if err != nil {
		return nil, err
	}

	rd := &Reader{r: r, header: h}
	root, err := rd.directory(h.RootDirOffset, h.RootDirLength)
	if err != nil {
		return nil, err
	}
	for _, e := range root {
		if e.RunLength > 0 {
			rd.entries = append(rd.entries, e)
			continue
		}
		leaf, err := rd.directory(h.LeafDirOffset+e.Offset, uint64(e.Length))
		if err != nil {
			return nil, err
		}
		rd.entries = append(rd.entries, leaf...)
	}
	return rd, nil
}

func (rd *Reader) directory(off, length uint64) ([]Entry, error) {
	buf := make([]byte, length)
	if _, err := rd.r.ReadAt(buf, int64(off)); err != nil {
		return nil, fmt.Errorf("pmtiles: reading directory at %d: %w", off, err)
	}
	return unmarshalDirectory(buf)
}

// Header returns the archive header.
func (rd *Reader) Header() Header { return rd.header }

// Entries returns the tile entries in TileID order.
func (rd *Reader) Entries() []Entry { return rd.entries }

// Tile returns the content of tile z/x/y, or ok == false when the archive
// has no such tile.
func (rd *Reader) Tile(z, x, y int) (data []byte, ok bool, err error) {
	id := TileID(z, x, y)
	i := sort.Search(len(rd.entries), func(i int) bool {
		e := rd.entries[i]
		return e.TileID+uint64(e.RunLength) > id
	})
	if i == len(rd.entries) || rd.entries[i].TileID > id {
		return nil, false, nil
	}
	e := rd.entries[i]
	data = make([]byte, e.Length)
	if _, err := rd.r.ReadAt(data, int64(rd.header.TileDataOffset+e.Offset)); err != nil {
		return nil, false, fmt.Errorf("pmtiles: reading tile %d/%d/%d: %w", z, x, y, err)
	}
	return data, true, nil
}

// Metadata decodes the JSON metadata.
func (rd *Reader) Metadata() (map[string]any, error) {
	buf := make([]byte, rd.header.MetadataLength)
	if _, err := rd.r.ReadAt(buf, int64(rd.header.MetadataOffset)); err != nil {
		return nil, fmt.Errorf("pmtiles: reading metadata: %w", err)
	}
	zr, err := gzip.NewReader(bytes.NewReader(buf))
	if err != nil {
		return nil, fmt.Errorf("pmtiles: metadata: %w", err)
	}
	var meta map[string]any
	if err := json.NewDecoder(zr).Decode(&meta); err != nil {
		return nil, fmt.Errorf("pmtiles: metadata: %w", err)
	}
	return meta, nil
}
