package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"headwater/internal/geodata"
)

var rootCmd = &cobra.Command{
	Use:   "headwater",
	Short: "Delineate upstream drainage catchments on a river network",
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// openSource builds a Source for an input path: SQLite databases become a
// table query, anything else is read as GeoJSON. The returned closer is a
// no-op for plain files.
func openSource(path, table string, columns []string, geomColumn string) (geodata.Source, func() error, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".db", ".sqlite":
		db, err := geodata.OpenDB(path)
		if err != nil {
			return nil, nil, err
		}
		src := geodata.Query{DB: db, Spec: geodata.QuerySpec{
			Table:      table,
			Columns:    columns,
			GeomColumn: geomColumn,
		}}
		return src, db.Close, nil
	default:
		return geodata.File{Path: path}, func() error { return nil }, nil
	}
}
