package grid

import "testing"

func TestCatalog(t *testing.T) {
	names := CatalogNames()
	if len(names) < 80 {
		t.Fatalf("catalog has %d grids, want at least 80", len(names))
	}
	for i := 1; i < len(names); i++ {
		if names[i-1] >= names[i] {
			t.Fatalf("CatalogNames not sorted at %d: %q >= %q", i, names[i-1], names[i])
		}
	}

	for _, name := range names {
		g, ok := FindByName(name)
		if !ok {
			t.Errorf("FindByName(%q) not found", name)
			continue
		}
		if g.Name() != name {
			t.Errorf("FindByName(%q).Name() = %q", name, g.Name())
		}
		if g.Nx() <= 0 || g.Ny() <= 0 {
			t.Errorf("%s: bad dimensions %dx%d", name, g.Nx(), g.Ny())
		}
	}
}

func TestCatalogLookups(t *testing.T) {
	tests := []struct {
		name     string
		wantKind string
		wantNx   int
		wantNy   int
	}{
		{"G003", TypeLatLon, 360, 181},
		{"G001", TypeMercator, 73, 23},
		{"G212", TypeLambert, 185, 129},
		{"wwmca_north", TypeStereographic, 1024, 1024},
		{"wwmca_south", TypeStereographic, 1024, 1024},
	}
	for _, tt := range tests {
		g, ok := FindByName(tt.name)
		if !ok {
			t.Errorf("FindByName(%q) not found", tt.name)
			continue
		}
		if g.Kind() != tt.wantKind || g.Nx() != tt.wantNx || g.Ny() != tt.wantNy {
			t.Errorf("%s = %s %dx%d, want %s %dx%d", tt.name, g.Kind(), g.Nx(), g.Ny(), tt.wantKind, tt.wantNx, tt.wantNy)
		}
	}

	if _, ok := FindByName("g212"); ok {
		t.Errorf("FindByName is case-sensitive, but g212 was found")
	}
}
