package grid

import (
	_ "embed"
	"fmt"
	"sort"
	"sync"

	"github.com/BurntSushi/toml"
)

//go:embed catalog.toml
var catalogTOML string

type catalogFile struct {
	LatLon []struct {
		Name     string  `toml:"name"`
		LatLL    float64 `toml:"lat_ll"`
		LonLL    float64 `toml:"lon_ll"`
		DeltaLat float64 `toml:"delta_lat"`
		DeltaLon float64 `toml:"delta_lon"`
		Nlat     int     `toml:"nlat"`
		Nlon     int     `toml:"nlon"`
	} `toml:"latlon"`

	Stereographic []struct {
		Name       string  `toml:"name"`
		Hemisphere string  `toml:"hemisphere"`
		ScaleLat   float64 `toml:"scale_lat"`
		LatPin     float64 `toml:"lat_pin"`
		LonPin     float64 `toml:"lon_pin"`
		XPin       float64 `toml:"x_pin"`
		YPin       float64 `toml:"y_pin"`
		LonOrient  float64 `toml:"lon_orient"`
		DKm        float64 `toml:"d_km"`
		RKm        float64 `toml:"r_km"`
		Nx         int     `toml:"nx"`
		Ny         int     `toml:"ny"`
	} `toml:"stereographic"`

	Lambert []struct {
		Name      string  `toml:"name"`
		ScaleLat1 float64 `toml:"scale_lat_1"`
		ScaleLat2 float64 `toml:"scale_lat_2"`
		LatPin    float64 `toml:"lat_pin"`
		LonPin    float64 `toml:"lon_pin"`
		XPin      float64 `toml:"x_pin"`
		YPin      float64 `toml:"y_pin"`
		LonOrient float64 `toml:"lon_orient"`
		DKm       float64 `toml:"d_km"`
		RKm       float64 `toml:"r_km"`
		Nx        int     `toml:"nx"`
		Ny        int     `toml:"ny"`
	} `toml:"lambert"`

	Mercator []struct {
		Name  string  `toml:"name"`
		LatLL float64 `toml:"lat_ll"`
		LonLL float64 `toml:"lon_ll"`
		LatUR float64 `toml:"lat_ur"`
		LonUR float64 `toml:"lon_ur"`
		Nx    int     `toml:"nx"`
		Ny    int     `toml:"ny"`
	} `toml:"mercator"`
}

var (
	catalogOnce sync.Once
	catalog     map[string]Grid
	catalogErr  error
)

func radiusOrDefault(r float64) float64 {
	if r > 0 {
		return r
	}
	return NCEPEarthRadiusKm
}

func loadCatalog() (map[string]Grid, error) {
	var f catalogFile
	if _, err := toml.Decode(catalogTOML, &f); err != nil {
		return nil, fmt.Errorf("grid: decoding catalog: %w", err)
	}

	m := make(map[string]Grid)
	add := func(name string, g Grid, err error) error {
		if err != nil {
			return fmt.Errorf("grid: catalog entry %s: %w", name, err)
		}
		if _, dup := m[name]; dup {
			return fmt.Errorf("grid: catalog entry %s defined twice", name)
		}
		m[name] = g
		return nil
	}

	for _, e := range f.LatLon {
		g, err := NewLatLon(LatLonData{
			Name: e.Name, LatLL: e.LatLL, LonLL: e.LonLL,
			DeltaLat: e.DeltaLat, DeltaLon: e.DeltaLon, Nlat: e.Nlat, Nlon: e.Nlon,
		})
		if err := add(e.Name, g, err); err != nil {
			return nil, err
		}
	}
	for _, e := range f.Stereographic {
		var h byte
		if len(e.Hemisphere) == 1 {
			h = e.Hemisphere[0]
		}
		g, err := NewStereographic(StereographicData{
			Name: e.Name, Hemisphere: h, ScaleLat: e.ScaleLat,
			LatPin: e.LatPin, LonPin: e.LonPin, XPin: e.XPin, YPin: e.YPin,
			LonOrient: e.LonOrient, DKm: e.DKm, RKm: radiusOrDefault(e.RKm), Nx: e.Nx, Ny: e.Ny,
		})
		if err := add(e.Name, g, err); err != nil {
			return nil, err
		}
	}
	for _, e := range f.Lambert {
		g, err := NewLambert(LambertData{
			Name: e.Name, ScaleLat1: e.ScaleLat1, ScaleLat2: e.ScaleLat2,
			LatPin: e.LatPin, LonPin: e.LonPin, XPin: e.XPin, YPin: e.YPin,
			LonOrient: e.LonOrient, DKm: e.DKm, RKm: radiusOrDefault(e.RKm), Nx: e.Nx, Ny: e.Ny,
		})
		if err := add(e.Name, g, err); err != nil {
			return nil, err
		}
	}
	for _, e := range f.Mercator {
		g, err := NewMercator(MercatorData{
			Name: e.Name, LatLL: e.LatLL, LonLL: e.LonLL, LatUR: e.LatUR, LonUR: e.LonUR, Nx: e.Nx, Ny: e.Ny,
		})
		if err := add(e.Name, g, err); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func ensureCatalog() {
	catalogOnce.Do(func() { catalog, catalogErr = loadCatalog() })
	if catalogErr != nil {
		// The catalog is compiled in; a decode failure is a build defect.
		panic(catalogErr)
	}
}

// FindByName returns the named grid from the built-in catalog of NCEP, DTC
// and WWMCA grids (e.g. "G212", "wwmca_north").
func FindByName(name string) (Grid, bool) {
	ensureCatalog()
	g, ok := catalog[name]
	return g, ok
}

// CatalogNames returns the names of all built-in grids, sorted.
func CatalogNames() []string {
	ensureCatalog()
	names := make([]string, 0, len(catalog))
	for n := range catalog {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
