package geodata

import (
	"errors"
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"headwater/internal/catchment"
	"headwater/internal/match"
	"headwater/internal/network"
)

// ErrSchema is the load-failure class: a source is missing a required column
// or carries a value of the wrong shape. Fatal for the run.
var ErrSchema = errors.New("bad source schema")

// Required columns of the reach and sub-catchment tables.
const (
	ColReachID  = "reach_id"
	ColFromNode = "from_node"
	ColToNode   = "to_node"
)

// LoadReaches reads the stream network table. Every feature must carry
// reach_id, from_node, and to_node; line geometry is optional.
func LoadReaches(src Source) ([]network.Reach, string, error) {
	fc, crs, err := src.Collection()
	if err != nil {
		return nil, "", err
	}

	reaches := make([]network.Reach, 0, len(fc.Features))
	for i, f := range fc.Features {
		id, err := intProp(f, ColReachID)
		if err != nil {
			return nil, "", fmt.Errorf("reaches row %d: %w", i, err)
		}
		from, err := intProp(f, ColFromNode)
		if err != nil {
			return nil, "", fmt.Errorf("reaches row %d: %w", i, err)
		}
		to, err := intProp(f, ColToNode)
		if err != nil {
			return nil, "", fmt.Errorf("reaches row %d: %w", i, err)
		}
		reaches = append(reaches, network.Reach{
			ID:       id,
			FromNode: from,
			ToNode:   to,
			Geom:     lineOf(f.Geometry),
		})
	}
	return reaches, crs, nil
}

// LoadCatchments reads the sub-catchment table into a reach-keyed map.
// Several rows for the same reach are merged (dissolve by key happens here).
func LoadCatchments(src Source) (catchment.SubCatchments, string, error) {
	fc, crs, err := src.Collection()
	if err != nil {
		return nil, "", err
	}

	subcatch := make(catchment.SubCatchments, len(fc.Features))
	for i, f := range fc.Features {
		id, err := intProp(f, ColReachID)
		if err != nil {
			return nil, "", fmt.Errorf("catchments row %d: %w", i, err)
		}
		mp := polygonsOf(f.Geometry)
		if len(mp) == 0 {
			return nil, "", fmt.Errorf("%w: catchments row %d has no polygon geometry", ErrSchema, i)
		}
		subcatch[id] = append(subcatch[id], mp...)
	}
	return subcatch, crs, nil
}

// LoadSites reads the site table. idColumn names the property holding the
// site identifier; identifiers are validated eagerly before any matching.
func LoadSites(src Source, idColumn string) ([]match.Site, string, error) {
	fc, crs, err := src.Collection()
	if err != nil {
		return nil, "", err
	}

	sites := make([]match.Site, 0, len(fc.Features))
	for i, f := range fc.Features {
		raw, ok := f.Properties[idColumn]
		if !ok {
			return nil, "", fmt.Errorf("%w: sites row %d missing column %q", ErrSchema, i, idColumn)
		}
		pt, ok := pointOf(f.Geometry)
		if !ok {
			return nil, "", fmt.Errorf("%w: sites row %d is not a point", ErrSchema, i)
		}
		s, err := match.NewSite(raw, f.Properties, pt)
		if err != nil {
			return nil, "", fmt.Errorf("sites row %d: %w", i, err)
		}
		sites = append(sites, s)
	}
	return sites, crs, nil
}

// intProp reads an integer property, accepting the numeric types the JSON
// and SQL decoders produce.
func intProp(f *geojson.Feature, key string) (int64, error) {
	v, ok := f.Properties[key]
	if !ok {
		return 0, fmt.Errorf("%w: missing column %q", ErrSchema, key)
	}
	switch n := v.(type) {
	case float64:
		return int64(n), nil
	case int64:
		return n, nil
	case int:
		return int64(n), nil
	default:
		return 0, fmt.Errorf("%w: column %q has non-numeric value %T", ErrSchema, key, v)
	}
}

func lineOf(g orb.Geometry) orb.LineString {
	switch geo := g.(type) {
	case orb.LineString:
		return geo
	case orb.MultiLineString:
		var ls orb.LineString
		for _, part := range geo {
			ls = append(ls, part...)
		}
		return ls
	default:
		return nil
	}
}

func polygonsOf(g orb.Geometry) orb.MultiPolygon {
	switch geo := g.(type) {
	case orb.Polygon:
		return orb.MultiPolygon{geo}
	case orb.MultiPolygon:
		return geo
	default:
		return nil
	}
}

func pointOf(g orb.Geometry) (orb.Point, bool) {
	switch geo := g.(type) {
	case orb.Point:
		return geo, true
	case orb.MultiPoint:
		if len(geo) > 0 {
			return geo[0], true
		}
	}
	return orb.Point{}, false
}
