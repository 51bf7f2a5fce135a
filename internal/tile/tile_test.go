package tile

import (
	"bytes"
	"context"
	"image/color"
	"math"
	"testing"

	"github.com/ctessum/geom"
	"github.com/sirupsen/logrus/hooks/test"

	"github.com/pspoerri/metgrid/internal/dataplane"
	"github.com/pspoerri/metgrid/internal/grid"
	"github.com/pspoerri/metgrid/internal/interp"
	"github.com/pspoerri/metgrid/internal/pmtiles"
	"github.com/pspoerri/metgrid/internal/regrid"
	"github.com/pspoerri/metgrid/internal/render"
)

func TestTileRoundTrip(t *testing.T) {
	for _, tl := range []Tile{
		{Z: 0, X: 0, Y: 0, Size: 256},
		{Z: 3, X: 2, Y: 5, Size: 256},
		{Z: 7, X: 100, Y: 40, Size: 512},
	} {
		for _, p := range [][2]float64{{0, 0}, {10.5, 200}, {float64(tl.Size - 1), 3}} {
			lat, lon := tl.XYToLatLon(p[0], p[1])
			x, y := tl.LatLonToXY(lat, lon)
			if math.Abs(x-p[0]) > 1e-6 || math.Abs(y-p[1]) > 1e-6 {
				t.Errorf("%+v: (%v, %v) -> (%v, %v) -> (%v, %v)", tl, p[0], p[1], lat, lon, x, y)
			}
		}
	}
}

func TestTileOrientation(t *testing.T) {
	tl := Tile{Z: 1, X: 1, Y: 0, Size: 256}
	b := tl.Bounds()
	if b.Min.X != 0 || b.Max.X != 180 || b.Min.Y != 0 || math.Abs(b.Max.Y-MaxLat) > 1e-9 {
		t.Fatalf("bounds = %v", b)
	}

	// Pixel (0, 0) is the south-west corner; lon comes back west-positive.
	lat, lon := tl.XYToLatLon(-0.5, -0.5)
	if math.Abs(lat) > 1e-9 || math.Abs(lon) > 1e-9 {
		t.Errorf("south-west corner = (%v, %v)", lat, lon)
	}
	lat, lon = tl.XYToLatLon(255.5, 255.5)
	if math.Abs(lat-MaxLat) > 1e-9 || math.Abs(grid.ToEast(lon)-180) > 1e-9 {
		t.Errorf("north-east corner = (%v, %v)", lat, lon)
	}
}

func TestCover(t *testing.T) {
	b := &geom.Bounds{Min: geom.Point{X: -10, Y: -5}, Max: geom.Point{X: 20, Y: 15}}
	tests := []struct {
		z    int
		want []Tile
	}{
		{0, []Tile{{0, 0, 0, 256}}},
		{1, []Tile{{1, 0, 0, 256}, {1, 1, 0, 256}, {1, 0, 1, 256}, {1, 1, 1, 256}}},
		{2, []Tile{{2, 1, 1, 256}, {2, 2, 1, 256}, {2, 1, 2, 256}, {2, 2, 2, 256}}},
	}
	for _, tt := range tests {
		got := Cover(tt.z, 256, b)
		if len(got) != len(tt.want) {
			t.Fatalf("z%d: got %v, want %v", tt.z, got, tt.want)
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("z%d tile %d: got %v, want %v", tt.z, i, got[i], tt.want[i])
			}
		}
	}

	world := &geom.Bounds{Min: geom.Point{X: -180, Y: -90}, Max: geom.Point{X: 180, Y: 90}}
	if n := len(Cover(3, 256, world)); n != 64 {
		t.Errorf("whole world at z3: %d tiles, want 64", n)
	}
}

func TestZoomForResolution(t *testing.T) {
	if r := ResolutionKm(0, 0, 256); math.Abs(r-156.37) > 0.01 {
		t.Errorf("ResolutionKm(0, 0, 256) = %v", r)
	}
	if z := MaxZoomForResolution(100, 0, 256); z != 0 {
		t.Errorf("100 km: z%d, want z0", z)
	}
	if z := MaxZoomForResolution(10, 0, 256); z != 3 {
		t.Errorf("10 km: z%d, want z3", z)
	}
	if lo, hi := AutoZoomRange(0.1, 0, 256); hi != 10 || lo != 4 {
		t.Errorf("AutoZoomRange(0.1) = [%d, %d], want [4, 10]", lo, hi)
	}
}

func TestSpacing(t *testing.T) {
	g, err := grid.ParseSpec("latlon 10 10 -5.0 10.0 1.0 1.0")
	if err != nil {
		t.Fatal(err)
	}
	km, lat := Spacing(g)
	if math.Abs(km-111.198) > 0.01 || lat != 0 {
		t.Errorf("Spacing = %v km at %v", km, lat)
	}
}

func sourceField(t *testing.T, v float64) (grid.Grid, *dataplane.Plane) {
	t.Helper()
	g, err := grid.ParseSpec("latlon 40 20 -10.0 -20.0 1.0 1.0")
	if err != nil {
		t.Fatal(err)
	}
	p := dataplane.New(g.Nx(), g.Ny())
	p.Fill(v)
	return g, p
}

func testConfig(t *testing.T, f render.Format) Config {
	log, _ := test.NewNullLogger()
	return Config{
		MinZoom: 0, MaxZoom: 2, Size: 64, Concurrency: 3, Format: f,
		Regrid: regrid.Config{Method: interp.Nearest, Width: 1},
		Log:    log,
	}
}

func TestGenerateTerrarium(t *testing.T) {
	g, p := sourceField(t, 42)
	w := pmtiles.NewWriter(pmtiles.Options{MaxZoom: 2, TileType: pmtiles.TileTypePNG})

	stats, err := Generate(context.Background(), testConfig(t, render.FormatTerrarium), g, p, w)
	if err != nil {
		t.Fatal(err)
	}
	if stats.Tiles != 9 || stats.EmptyTiles != 0 || w.Len() != 9 {
		t.Fatalf("stats = %+v, writer has %d tiles", stats, w.Len())
	}

	var buf bytes.Buffer
	if _, err := w.WriteTo(&buf); err != nil {
		t.Fatal(err)
	}
	rd, err := pmtiles.Open(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatal(err)
	}
	data, ok, err := rd.Tile(2, 1, 1)
	if err != nil || !ok {
		t.Fatalf("tile 2/1/1: ok=%v err=%v", ok, err)
	}
	img, err := render.Decode(bytes.NewReader(data), render.FormatTerrarium)
	if err != nil {
		t.Fatal(err)
	}
	got := render.PlaneFromTerrarium(img)
	good := 0
	for _, v := range got.Data() {
		if dataplane.IsBad(v) {
			continue
		}
		good++
		if math.Abs(v-42) > 1.0/256 {
			t.Fatalf("decoded %v, want 42", v)
		}
	}
	if good == 0 || got.CountBad() == 0 {
		t.Errorf("tile 2/1/1 should be partly covered: %d good, %d bad", good, got.CountBad())
	}
}

func TestGeneratePNGScale(t *testing.T) {
	g, p := sourceField(t, 0)
	for y := 0; y < g.Ny(); y++ {
		for x := 0; x < g.Nx(); x++ {
			p.Set(x, y, float64(x))
		}
	}
	cfg := testConfig(t, render.FormatPNG)
	cfg.MinZoom, cfg.MaxZoom = 0, 0
	cfg.Render.Ramp = render.GreyRamp
	w := pmtiles.NewWriter(pmtiles.Options{TileType: pmtiles.TileTypePNG})
	if _, err := Generate(context.Background(), cfg, g, p, w); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if _, err := w.WriteTo(&buf); err != nil {
		t.Fatal(err)
	}
	rd, err := pmtiles.Open(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatal(err)
	}
	data, ok, err := rd.Tile(0, 0, 0)
	if err != nil || !ok {
		t.Fatalf("tile 0/0/0: ok=%v err=%v", ok, err)
	}
	img, err := render.Decode(bytes.NewReader(data), render.FormatPNG)
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 64 || b.Dy() != 64 {
		t.Fatalf("tile is %v", b)
	}
	// The corner of the world is outside the field.
	if _, _, _, a := img.At(0, 0).RGBA(); a != 0 {
		t.Errorf("pixel (0, 0) alpha = %d, want 0", a)
	}
	// West of the field is darker than east, on one shared scale.
	tl := Tile{Z: 0, Size: 64}
	wx, wy := tl.LatLonToXY(0, grid.FromEast(-10))
	ex, _ := tl.LatLonToXY(0, grid.FromEast(10))
	row := 63 - int(math.Round(wy))
	west := color.GrayModel.Convert(img.At(int(math.Round(wx)), row)).(color.Gray)
	east := color.GrayModel.Convert(img.At(int(math.Round(ex)), row)).(color.Gray)
	if west.Y >= east.Y {
		t.Errorf("west %d should be darker than east %d", west.Y, east.Y)
	}
}

func TestGenerateErrors(t *testing.T) {
	g, p := sourceField(t, 1)
	w := pmtiles.NewWriter(pmtiles.Options{})

	cfg := testConfig(t, render.Format("gif"))
	if _, err := Generate(context.Background(), cfg, g, p, w); err == nil {
		t.Error("gif tiles should fail")
	}

	cfg = testConfig(t, render.FormatPNG)
	cfg.MinZoom, cfg.MaxZoom = 3, 2
	if _, err := Generate(context.Background(), cfg, g, p, w); err == nil {
		t.Error("inverted zoom range should fail")
	}

	cfg = testConfig(t, render.FormatPNG)
	cfg.Regrid.Width = 2
	if _, err := Generate(context.Background(), cfg, g, p, w); err == nil {
		t.Error("even width should fail")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Generate(ctx, testConfig(t, render.FormatPNG), g, p, w); err == nil {
		t.Error("cancelled context should fail")
	}
}
