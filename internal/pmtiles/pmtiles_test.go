package pmtiles

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/ctessum/geom"
)

func TestTileID(t *testing.T) {
	tests := []struct {
		z, x, y int
		want    uint64
	}{
		{0, 0, 0, 0},
		{1, 0, 0, 1},
		{1, 0, 1, 2},
		{1, 1, 1, 3},
		{1, 1, 0, 4},
		{2, 0, 0, 5},
		{3, 0, 0, 21},
		{12, 3423, 1763, 19078479},
	}
	for _, tt := range tests {
		if got := TileID(tt.z, tt.x, tt.y); got != tt.want {
			t.Errorf("TileID(%d, %d, %d) = %d, want %d", tt.z, tt.x, tt.y, got, tt.want)
		}
		z, x, y := ZXY(tt.want)
		if z != tt.z || x != tt.x || y != tt.y {
			t.Errorf("ZXY(%d) = %d/%d/%d, want %d/%d/%d", tt.want, z, x, y, tt.z, tt.x, tt.y)
		}
	}
}

func TestTileIDRoundTrip(t *testing.T) {
	for z := 0; z <= 6; z++ {
		n := 1 << uint(z)
		seen := make(map[uint64]bool)
		for x := 0; x < n; x++ {
			for y := 0; y < n; y++ {
				id := TileID(z, x, y)
				if seen[id] {
					t.Fatalf("duplicate ID %d at %d/%d/%d", id, z, x, y)
				}
				seen[id] = true
				if gz, gx, gy := ZXY(id); gz != z || gx != x || gy != y {
					t.Fatalf("ZXY(TileID(%d, %d, %d)) = %d/%d/%d", z, x, y, gz, gx, gy)
				}
			}
		}
	}
}

func TestHeaderRoundTrip(t *testing.T) {
	h := Header{
		RootDirOffset: 127, RootDirLength: 20, MetadataOffset: 147, MetadataLength: 33,
		LeafDirOffset: 180, TileDataOffset: 180, TileDataLength: 1000,
		NumAddressedTiles: 9, NumTileEntries: 4, NumTileContents: 3,
		Clustered: true, InternalCompression: CompressionGzip, TileCompression: CompressionNone,
		TileType: TileTypePNG, MinZoom: 2, MaxZoom: 7,
		MinLon: -122.5, MinLat: 37.25, MaxLon: -121.75, MaxLat: 38.125,
		CenterZoom: 4, CenterLon: -122.125, CenterLat: 37.6875,
	}
	buf := h.marshal()
	if len(buf) != HeaderSize {
		t.Fatalf("header is %d bytes, want %d", len(buf), HeaderSize)
	}
	got, err := unmarshalHeader(buf)
	if err != nil {
		t.Fatal(err)
	}
	if got != h {
		t.Errorf("round trip:\n got %+v\nwant %+v", got, h)
	}

	buf[0] = 'X'
	if _, err := unmarshalHeader(buf); !errors.Is(err, ErrBadArchive) {
		t.Errorf("bad magic: err = %v", err)
	}
}

func TestDirectoryRoundTrip(t *testing.T) {
	entries := []Entry{
		{TileID: 0, Offset: 0, Length: 10, RunLength: 1},
		{TileID: 1, Offset: 10, Length: 20, RunLength: 3},
		{TileID: 7, Offset: 500, Length: 5, RunLength: 1},
		{TileID: 8, Offset: 505, Length: 5, RunLength: 1},
	}
	b, err := marshalDirectory(entries)
	if err != nil {
		t.Fatal(err)
	}
	got, err := unmarshalDirectory(b)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != len(entries) {
		t.Fatalf("got %d entries, want %d", len(got), len(entries))
	}
	for i := range entries {
		if got[i] != entries[i] {
			t.Errorf("entry %d: got %+v, want %+v", i, got[i], entries[i])
		}
	}
}

func TestWriterArchive(t *testing.T) {
	w := NewWriter(Options{
		MinZoom: 0, MaxZoom: 2, TileType: TileTypePNG, Name: "T2",
		Bounds: &geom.Bounds{Min: geom.Point{X: -10, Y: -5}, Max: geom.Point{X: 20, Y: 15}},
		Extra:  map[string]any{"variable": "T2"},
	})

	same := []byte("uniform")
	tiles := map[[3]int][]byte{
		{0, 0, 0}: []byte("world"),
		{1, 0, 0}: same,
		{1, 0, 1}: same,
		{1, 1, 1}: same,
		{1, 1, 0}: []byte("east"),
		{2, 3, 3}: same,
	}
	for k, v := range tiles {
		if err := w.WriteTile(k[0], k[1], k[2], v); err != nil {
			t.Fatal(err)
		}
	}
	if err := w.WriteTile(1, 1, 0, []byte("again")); err == nil {
		t.Error("rewriting a tile should fail")
	}
	if err := w.WriteTile(1, 2, 0, same); err == nil {
		t.Error("x outside zoom 1 should fail")
	}
	if err := w.WriteTile(2, 0, 0, nil); err != nil {
		t.Errorf("empty tile: %v", err)
	}
	if w.Len() != len(tiles) {
		t.Fatalf("Len = %d, want %d", w.Len(), len(tiles))
	}

	path := filepath.Join(t.TempDir(), "out.pmtiles")
	if err := w.WriteFile(path); err != nil {
		t.Fatal(err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	rd, err := Open(f)
	if err != nil {
		t.Fatal(err)
	}
	h := rd.Header()
	if h.NumAddressedTiles != 6 || h.NumTileContents != 3 {
		t.Errorf("addressed %d, contents %d; want 6, 3", h.NumAddressedTiles, h.NumTileContents)
	}
	// IDs 1, 2, 3 share content and collapse into one run.
	if h.NumTileEntries != 4 {
		t.Errorf("NumTileEntries = %d, want 4", h.NumTileEntries)
	}
	if h.MinLon != -10 || h.MaxLat != 15 || h.TileType != TileTypePNG || !h.Clustered {
		t.Errorf("unexpected header %+v", h)
	}
	if h.TileDataLength != uint64(len("world")+len("uniform")+len("east")) {
		t.Errorf("TileDataLength = %d", h.TileDataLength)
	}

	for k, v := range tiles {
		got, ok, err := rd.Tile(k[0], k[1], k[2])
		if err != nil || !ok {
			t.Fatalf("Tile(%v): ok=%v err=%v", k, ok, err)
		}
		if !bytes.Equal(got, v) {
			t.Errorf("Tile(%v) = %q, want %q", k, got, v)
		}
	}
	if _, ok, _ := rd.Tile(2, 0, 0); ok {
		t.Error("tile 2/0/0 should be missing")
	}

	meta, err := rd.Metadata()
	if err != nil {
		t.Fatal(err)
	}
	if meta["format"] != "png" || meta["variable"] != "T2" || meta["maxzoom"] != "2" {
		t.Errorf("metadata = %v", meta)
	}
}

func TestWriterLeafDirectories(t *testing.T) {
	// Distinct contents and gaps between IDs so no run can form.
	w := NewWriter(Options{MinZoom: 8, MaxZoom: 8, TileType: TileTypePNG})
	const z = 8
	n := 1 << z
	count := 0
	for y := 0; y < n; y++ {
		for x := 0; x < n; x += 2 {
			if err := w.WriteTile(z, x, y, []byte(fmt.Sprintf("%d/%d", x, y))); err != nil {
				t.Fatal(err)
			}
			count++
		}
	}

	var buf bytes.Buffer
	if _, err := w.WriteTo(&buf); err != nil {
		t.Fatal(err)
	}
	rd, err := Open(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatal(err)
	}
	h := rd.Header()
	if h.LeafDirLength == 0 {
		t.Fatalf("expected leaf directories for %d tiles", count)
	}
	if len(rd.Entries()) != count {
		t.Fatalf("got %d entries, want %d", len(rd.Entries()), count)
	}
	for _, xy := range [][2]int{{0, 0}, {254, 255}, {128, 77}} {
		got, ok, err := rd.Tile(z, xy[0], xy[1])
		if err != nil || !ok {
			t.Fatalf("Tile(%v): ok=%v err=%v", xy, ok, err)
		}
		if want := fmt.Sprintf("%d/%d", xy[0], xy[1]); string(got) != want {
			t.Errorf("Tile(%v) = %q, want %q", xy, got, want)
		}
	}
	if _, ok, _ := rd.Tile(z, 1, 0); ok {
		t.Error("odd x should be missing")
	}
}

func TestE7(t *testing.T) {
	for _, v := range []float64{0, -180, 180, 85.0511287, -33.8688197} {
		if got := fromE7(toE7(v)); math.Abs(got-v) > 1e-7 {
			t.Errorf("E7 round trip of %v = %v", v, got)
		}
	}
}
