package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"headwater/internal/catchment"
	"headwater/internal/config"
	"headwater/internal/geodata"
	"headwater/internal/match"
	"headwater/internal/network"
)

var (
	delinSites      string
	delinStreams    string
	delinCatchments string
	delinConfig     string
	delinOut        string
	delinTable      string
	delinJobs       int
	delinJSON       bool
	delinQuiet      bool
)

var delineateCmd = &cobra.Command{
	Use:   "delineate",
	Short: "Compute the upstream catchment polygon and area for each site",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Default()
		if delinConfig != "" {
			var err error
			cfg, err = config.Load(delinConfig)
			if err != nil {
				return err
			}
		}

		net, _, err := loadNetwork(delinStreams, cfg.Override, cfg.Overrides.Strict)
		if err != nil {
			return err
		}

		siteSrc, closeSites, err := openSource(delinSites, "sites", []string{cfg.Match.SiteID}, "geom")
		if err != nil {
			return err
		}
		defer closeSites()
		sites, _, err := geodata.LoadSites(siteSrc, cfg.Match.SiteID)
		if err != nil {
			return fmt.Errorf("loading sites: %w", err)
		}

		catchSrc, closeCatch, err := openSource(delinCatchments, "catchments", []string{geodata.ColReachID}, "geom")
		if err != nil {
			return err
		}
		defer closeCatch()
		subcatch, crs, err := geodata.LoadCatchments(catchSrc)
		if err != nil {
			return fmt.Errorf("loading catchments: %w", err)
		}

		matched, err := match.Sites(sites, net, match.Policy(cfg.Match.Policy), cfg.Distance())
		if err != nil {
			return err
		}
		for _, s := range matched.Dropped {
			fmt.Fprintf(os.Stderr, "warning: site %s has no reach within range, dropped\n", s.ID)
		}

		results, err := catchment.Delineate(net, subcatch, matched.Assigned, catchment.Options{Jobs: delinJobs})
		if err != nil {
			return err
		}

		if delinOut != "" {
			if err := geodata.WriteResults(results, delinOut, delinTable, crs); err != nil {
				return err
			}
		}
		if delinJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(geodata.FeatureCollection(results))
		}
		if !delinQuiet {
			printResults(results, len(sites))
		}
		return nil
	},
}

func init() {
	delineateCmd.Flags().StringVar(&delinSites, "sites", "", "Site points (GeoJSON file or SQLite db)")
	delineateCmd.Flags().StringVar(&delinStreams, "streams", "", "Stream network (GeoJSON file or SQLite db)")
	delineateCmd.Flags().StringVar(&delinCatchments, "catchments", "", "Sub-catchment polygons (GeoJSON file or SQLite db)")
	delineateCmd.Flags().StringVar(&delinConfig, "config", "", "TOML run configuration")
	delineateCmd.Flags().StringVar(&delinOut, "out", "", "Output path (.geojson, .db, or .sqlite)")
	delineateCmd.Flags().StringVar(&delinTable, "table", "catchments", "Output table name for SQLite destinations")
	delineateCmd.Flags().IntVar(&delinJobs, "jobs", 0, "Parallel trace workers (0 = all CPUs)")
	delineateCmd.Flags().BoolVar(&delinJSON, "json", false, "Print the result collection as GeoJSON on stdout")
	delineateCmd.Flags().BoolVar(&delinQuiet, "quiet", false, "Suppress the per-site summary")
	delineateCmd.MarkFlagRequired("sites")
	delineateCmd.MarkFlagRequired("streams")
	delineateCmd.MarkFlagRequired("catchments")
	rootCmd.AddCommand(delineateCmd)
}

// loadNetwork reads the stream table, builds the snapshot, and applies
// configured topology overrides.
func loadNetwork(path string, overrides []network.Override, strict bool) (*network.Network, string, error) {
	src, closeSrc, err := openSource(path, "reaches",
		[]string{geodata.ColReachID, geodata.ColFromNode, geodata.ColToNode}, "geom")
	if err != nil {
		return nil, "", err
	}
	defer closeSrc()

	reaches, crs, err := geodata.LoadReaches(src)
	if err != nil {
		return nil, "", fmt.Errorf("loading streams: %w", err)
	}

	net := network.New(reaches)
	net, unmatched, err := net.Apply(overrides)
	if err != nil {
		return nil, "", err
	}
	if len(unmatched) > 0 {
		if strict {
			return nil, "", fmt.Errorf("overrides reference %d reach(es) not in the network: %v", len(unmatched), unmatched)
		}
		fmt.Fprintf(os.Stderr, "warning: overrides reference %d reach(es) not in the network: %v\n", len(unmatched), unmatched)
	}
	return net, crs, nil
}

func printResults(results []catchment.Result, total int) {
	fmt.Printf("\n  %d of %d site(s) delineated\n", len(results), total)
	fmt.Println("  ────────────────────────────────────────")
	for _, r := range results {
		fmt.Printf("  site %-12s reach %-10d upstream %-6d area %.1f\n",
			r.SiteID, r.ReachID, r.Upstream, r.Area)
	}
	fmt.Println()
}
