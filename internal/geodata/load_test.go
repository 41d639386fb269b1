package geodata

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"headwater/internal/match"
)

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}
	return path
}

const reachesJSON = `{
  "type": "FeatureCollection",
  "crs": {"type": "name", "properties": {"name": "EPSG:2193"}},
  "features": [
    {"type": "Feature",
     "properties": {"reach_id": 1, "from_node": 10, "to_node": 20},
     "geometry": {"type": "LineString", "coordinates": [[0, 0], [10, 0]]}},
    {"type": "Feature",
     "properties": {"reach_id": 2, "from_node": 20, "to_node": 30},
     "geometry": null}
  ]
}`

func TestLoadReaches_FromFile(t *testing.T) {
	path := writeTemp(t, "reaches.geojson", reachesJSON)
	reaches, crs, err := LoadReaches(File{Path: path})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if crs != "EPSG:2193" {
		t.Errorf("crs = %q, want EPSG:2193", crs)
	}
	if len(reaches) != 2 {
		t.Fatalf("expected 2 reaches, got %d", len(reaches))
	}
	if reaches[0].ID != 1 || reaches[0].FromNode != 10 || reaches[0].ToNode != 20 {
		t.Errorf("reach 0 = %+v", reaches[0])
	}
	if len(reaches[0].Geom) != 2 {
		t.Errorf("reach 0 should carry its line geometry")
	}
	if reaches[1].Geom != nil {
		t.Errorf("reach 1 should have no geometry")
	}
}

func TestLoadReaches_MissingColumn(t *testing.T) {
	path := writeTemp(t, "bad.geojson", `{
	  "type": "FeatureCollection",
	  "features": [
	    {"type": "Feature", "properties": {"reach_id": 1, "from_node": 10},
	     "geometry": null}
	  ]
	}`)
	_, _, err := LoadReaches(File{Path: path})
	if !errors.Is(err, ErrSchema) {
		t.Fatalf("expected ErrSchema, got %v", err)
	}
}

func TestLoadReaches_MissingFile(t *testing.T) {
	_, _, err := LoadReaches(File{Path: filepath.Join(t.TempDir(), "nope.geojson")})
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadCatchments_MergesDuplicateKeys(t *testing.T) {
	path := writeTemp(t, "catch.geojson", `{
	  "type": "FeatureCollection",
	  "features": [
	    {"type": "Feature", "properties": {"reach_id": 1},
	     "geometry": {"type": "Polygon", "coordinates": [[[0,0],[1,0],[1,1],[0,1],[0,0]]]}},
	    {"type": "Feature", "properties": {"reach_id": 1},
	     "geometry": {"type": "Polygon", "coordinates": [[[2,0],[3,0],[3,1],[2,1],[2,0]]]}},
	    {"type": "Feature", "properties": {"reach_id": 2},
	     "geometry": {"type": "MultiPolygon", "coordinates": [[[[5,0],[6,0],[6,1],[5,1],[5,0]]]]}}
	  ]
	}`)
	subcatch, _, err := LoadCatchments(File{Path: path})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(subcatch) != 2 {
		t.Fatalf("expected 2 keys, got %d", len(subcatch))
	}
	if len(subcatch[1]) != 2 {
		t.Errorf("reach 1 should hold 2 merged polygons, got %d", len(subcatch[1]))
	}
	if len(subcatch[2]) != 1 {
		t.Errorf("reach 2 should hold 1 polygon, got %d", len(subcatch[2]))
	}
}

func TestLoadCatchments_NonPolygonRejected(t *testing.T) {
	path := writeTemp(t, "bad.geojson", `{
	  "type": "FeatureCollection",
	  "features": [
	    {"type": "Feature", "properties": {"reach_id": 1},
	     "geometry": {"type": "Point", "coordinates": [0, 0]}}
	  ]
	}`)
	_, _, err := LoadCatchments(File{Path: path})
	if !errors.Is(err, ErrSchema) {
		t.Fatalf("expected ErrSchema, got %v", err)
	}
}

func TestLoadSites_CarriesAttributes(t *testing.T) {
	path := writeTemp(t, "sites.geojson", `{
	  "type": "FeatureCollection",
	  "features": [
	    {"type": "Feature",
	     "properties": {"site": 66401, "name": "Selwyn at Coes Ford"},
	     "geometry": {"type": "Point", "coordinates": [3, 4]}}
	  ]
	}`)
	sites, _, err := LoadSites(File{Path: path}, "site")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sites) != 1 {
		t.Fatalf("expected 1 site, got %d", len(sites))
	}
	if sites[0].ID != "66401" {
		t.Errorf("site ID = %q, want 66401", sites[0].ID)
	}
	if sites[0].Props["name"] != "Selwyn at Coes Ford" {
		t.Errorf("site attributes not carried through: %v", sites[0].Props)
	}
	if sites[0].Point[0] != 3 || sites[0].Point[1] != 4 {
		t.Errorf("site point = %v, want (3, 4)", sites[0].Point)
	}
}

func TestLoadSites_BadIDRejectedEagerly(t *testing.T) {
	path := writeTemp(t, "sites.geojson", `{
	  "type": "FeatureCollection",
	  "features": [
	    {"type": "Feature",
	     "properties": {"site": [1, 2]},
	     "geometry": {"type": "Point", "coordinates": [0, 0]}}
	  ]
	}`)
	_, _, err := LoadSites(File{Path: path}, "site")
	if !errors.Is(err, match.ErrBadSiteID) {
		t.Fatalf("expected ErrBadSiteID, got %v", err)
	}
}

func TestLoadSites_MissingIDColumn(t *testing.T) {
	path := writeTemp(t, "sites.geojson", `{
	  "type": "FeatureCollection",
	  "features": [
	    {"type": "Feature", "properties": {"gauge": 1},
	     "geometry": {"type": "Point", "coordinates": [0, 0]}}
	  ]
	}`)
	_, _, err := LoadSites(File{Path: path}, "site")
	if !errors.Is(err, ErrSchema) {
		t.Fatalf("expected ErrSchema, got %v", err)
	}
}

func TestLoadSites_NonPointRejected(t *testing.T) {
	path := writeTemp(t, "sites.geojson", `{
	  "type": "FeatureCollection",
	  "features": [
	    {"type": "Feature", "properties": {"site": 1},
	     "geometry": {"type": "LineString", "coordinates": [[0,0],[1,1]]}}
	  ]
	}`)
	_, _, err := LoadSites(File{Path: path}, "site")
	if !errors.Is(err, ErrSchema) {
		t.Fatalf("expected ErrSchema, got %v", err)
	}
}

func TestQuerySource_LoadsReaches(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "rec.db")
	db, err := OpenDB(dbPath)
	if err != nil {
		t.Fatalf("opening db: %v", err)
	}
	defer db.Close()

	if _, err := db.Conn().Exec(`CREATE TABLE reaches (
		reach_id INTEGER, from_node INTEGER, to_node INTEGER, geom TEXT
	)`); err != nil {
		t.Fatalf("creating table: %v", err)
	}
	rows := [][]any{
		{1, 10, 20, `{"type":"LineString","coordinates":[[0,0],[10,0]]}`},
		{2, 20, 30, nil},
	}
	for _, r := range rows {
		if _, err := db.Conn().Exec(
			"INSERT INTO reaches (reach_id, from_node, to_node, geom) VALUES (?, ?, ?, ?)",
			r...); err != nil {
			t.Fatalf("inserting row: %v", err)
		}
	}

	src := Query{DB: db, Spec: QuerySpec{
		Table:      "reaches",
		Columns:    []string{ColReachID, ColFromNode, ColToNode},
		GeomColumn: "geom",
		CRS:        "EPSG:2193",
	}}
	reaches, crs, err := LoadReaches(src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if crs != "EPSG:2193" {
		t.Errorf("crs = %q, want EPSG:2193", crs)
	}
	if len(reaches) != 2 {
		t.Fatalf("expected 2 reaches, got %d", len(reaches))
	}
	if reaches[0].ID != 1 || len(reaches[0].Geom) != 2 {
		t.Errorf("reach 0 = %+v", reaches[0])
	}
	if reaches[1].ToNode != 30 || reaches[1].Geom != nil {
		t.Errorf("reach 1 = %+v", reaches[1])
	}
}

func TestQuerySource_Where(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "rec.db")
	db, err := OpenDB(dbPath)
	if err != nil {
		t.Fatalf("opening db: %v", err)
	}
	defer db.Close()

	if _, err := db.Conn().Exec(`CREATE TABLE reaches (
		reach_id INTEGER, from_node INTEGER, to_node INTEGER, geom TEXT
	)`); err != nil {
		t.Fatalf("creating table: %v", err)
	}
	for id := 1; id <= 5; id++ {
		if _, err := db.Conn().Exec(
			"INSERT INTO reaches (reach_id, from_node, to_node, geom) VALUES (?, ?, ?, NULL)",
			id, id*10, id*10+10); err != nil {
			t.Fatalf("inserting row: %v", err)
		}
	}

	src := Query{DB: db, Spec: QuerySpec{
		Table:   "reaches",
		Columns: []string{ColReachID, ColFromNode, ColToNode},
		Where:   "reach_id <= ?",
		Args:    []any{3},
	}}
	reaches, _, err := LoadReaches(src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(reaches) != 3 {
		t.Errorf("expected 3 reaches, got %d", len(reaches))
	}
}
