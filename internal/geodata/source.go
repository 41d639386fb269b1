// Package geodata loads and persists the tabular geometry collections the
// pipeline consumes: reaches, sub-catchments, and sites. A collection can
// come from a GeoJSON file, a SQLite query, or be handed over already loaded.
package geodata

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/paulmach/orb/geojson"
)

// Source yields a feature collection plus the CRS tag of the dataset (empty
// when the source does not declare one). The CRS is carried through to the
// output unchanged; nothing in the pipeline reprojects.
type Source interface {
	Collection() (*geojson.FeatureCollection, string, error)
}

// File is a GeoJSON file on disk.
type File struct {
	Path string
}

// Collection reads and parses the file.
func (f File) Collection() (*geojson.FeatureCollection, string, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, "", fmt.Errorf("reading %s: %w", f.Path, err)
	}
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, "", fmt.Errorf("parsing %s: %w", f.Path, err)
	}
	return fc, probeCRS(data), nil
}

// probeCRS pulls the legacy GeoJSON crs member out of the raw document.
func probeCRS(data []byte) string {
	var doc struct {
		CRS struct {
			Properties struct {
				Name string `json:"name"`
			} `json:"properties"`
		} `json:"crs"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return ""
	}
	return doc.CRS.Properties.Name
}

// QuerySpec selects rows from a table in a SQLite database. Geometry is
// expected as GeoJSON text in GeomColumn; the remaining Columns become
// feature properties.
type QuerySpec struct {
	Table      string
	Columns    []string
	GeomColumn string
	Where      string // optional WHERE clause, without the keyword
	Args       []any
	CRS        string
}

// Query is a SQLite-backed source.
type Query struct {
	DB   *DB
	Spec QuerySpec
}

// Collection runs the query and assembles features row by row.
func (q Query) Collection() (*geojson.FeatureCollection, string, error) {
	spec := q.Spec
	cols := make([]string, 0, len(spec.Columns)+1)
	for _, c := range spec.Columns {
		cols = append(cols, quoteIdent(c))
	}
	if spec.GeomColumn != "" {
		cols = append(cols, quoteIdent(spec.GeomColumn))
	}

	query := fmt.Sprintf("SELECT %s FROM %s", strings.Join(cols, ", "), quoteIdent(spec.Table))
	if spec.Where != "" {
		query += " WHERE " + spec.Where
	}

	rows, err := q.DB.Conn().Query(query, spec.Args...)
	if err != nil {
		return nil, "", fmt.Errorf("querying %s: %w", spec.Table, err)
	}
	defer rows.Close()

	fc := geojson.NewFeatureCollection()
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, "", fmt.Errorf("scanning %s: %w", spec.Table, err)
		}

		f := geojson.NewFeature(nil)
		for i, c := range spec.Columns {
			f.Properties[c] = sqlValue(vals[i])
		}
		if spec.GeomColumn != "" {
			raw, ok := sqlValue(vals[len(vals)-1]).(string)
			if ok && raw != "" {
				g, err := geojson.UnmarshalGeometry([]byte(raw))
				if err != nil {
					return nil, "", fmt.Errorf("parsing geometry in %s: %w", spec.Table, err)
				}
				f.Geometry = g.Geometry()
			}
		}
		fc.Append(f)
	}
	if err := rows.Err(); err != nil {
		return nil, "", fmt.Errorf("reading %s: %w", spec.Table, err)
	}
	return fc, spec.CRS, nil
}

func sqlValue(v any) any {
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return v
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// Collection wraps a feature collection the caller already holds.
type Collection struct {
	FC  *geojson.FeatureCollection
	CRS string
}

// Collection returns the wrapped data as-is.
func (c Collection) Collection() (*geojson.FeatureCollection, string, error) {
	return c.FC, c.CRS, nil
}
