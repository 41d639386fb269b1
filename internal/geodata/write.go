package geodata

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/paulmach/orb/geojson"

	"headwater/internal/catchment"
)

// FeatureCollection converts delineation results into GeoJSON features. Each
// feature carries the site's original attributes plus reach_id, area, and the
// upstream reach count.
func FeatureCollection(results []catchment.Result) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, r := range results {
		f := geojson.NewFeature(r.Geom)
		for k, v := range r.Props {
			f.Properties[k] = v
		}
		f.Properties["reach_id"] = r.ReachID
		f.Properties["area"] = r.Area
		f.Properties["upstream_reaches"] = r.Upstream
		fc.Append(f)
	}
	return fc
}

// WriteResults persists the delineation output. A destination ending in .db
// or .sqlite gets a table named by table; anything else is written as a
// GeoJSON file. The CRS tag from the sub-catchment source is propagated
// unchanged.
func WriteResults(results []catchment.Result, dest, table, crs string) error {
	switch strings.ToLower(filepath.Ext(dest)) {
	case ".db", ".sqlite":
		return writeSQLite(results, dest, table)
	default:
		return writeGeoJSON(results, dest, crs)
	}
}

// geoDoc is a feature collection with the legacy crs member the original
// datasets use.
type geoDoc struct {
	Type     string             `json:"type"`
	CRS      *crsMember         `json:"crs,omitempty"`
	Features []*geojson.Feature `json:"features"`
}

type crsMember struct {
	Type       string `json:"type"`
	Properties struct {
		Name string `json:"name"`
	} `json:"properties"`
}

func writeGeoJSON(results []catchment.Result, dest, crs string) error {
	fc := FeatureCollection(results)
	doc := geoDoc{Type: "FeatureCollection", Features: fc.Features}
	if doc.Features == nil {
		doc.Features = []*geojson.Feature{}
	}
	if crs != "" {
		doc.CRS = &crsMember{Type: "name"}
		doc.CRS.Properties.Name = crs
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding results: %w", err)
	}
	if err := os.WriteFile(dest, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", dest, err)
	}
	return nil
}

func writeSQLite(results []catchment.Result, dest, table string) error {
	db, err := OpenDB(dest)
	if err != nil {
		return err
	}
	defer db.Close()

	create := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		site_id TEXT NOT NULL,
		reach_id INTEGER NOT NULL,
		area REAL NOT NULL,
		upstream_reaches INTEGER NOT NULL,
		geom TEXT,
		properties TEXT
	)`, quoteIdent(table))
	if _, err := db.Conn().Exec(create); err != nil {
		return fmt.Errorf("creating table %s: %w", table, err)
	}

	tx, err := db.Conn().Begin()
	if err != nil {
		return fmt.Errorf("beginning write: %w", err)
	}
	insert := fmt.Sprintf(
		"INSERT INTO %s (site_id, reach_id, area, upstream_reaches, geom, properties) VALUES (?, ?, ?, ?, ?, ?)",
		quoteIdent(table))
	for _, r := range results {
		geom, err := json.Marshal(geojson.NewGeometry(r.Geom))
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("encoding geometry for site %s: %w", r.SiteID, err)
		}
		props, err := json.Marshal(r.Props)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("encoding properties for site %s: %w", r.SiteID, err)
		}
		if _, err := tx.Exec(insert, r.SiteID, r.ReachID, r.Area, r.Upstream, string(geom), string(props)); err != nil {
			tx.Rollback()
			return fmt.Errorf("inserting site %s: %w", r.SiteID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing write: %w", err)
	}
	return nil
}
