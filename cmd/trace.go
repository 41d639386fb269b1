package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"headwater/internal/config"
	"headwater/internal/network"
)

var (
	traceStreams string
	traceConfig  string
	traceJSON    bool
)

var traceCmd = &cobra.Command{
	Use:   "trace REACH_ID...",
	Short: "Print the full upstream reach set for one or more reaches",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		startIDs := make([]int64, 0, len(args))
		for _, a := range args {
			id, err := strconv.ParseInt(a, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid reach id %q", a)
			}
			startIDs = append(startIDs, id)
		}

		cfg := config.Default()
		if traceConfig != "" {
			var err error
			cfg, err = config.Load(traceConfig)
			if err != nil {
				return err
			}
		}

		net, _, err := loadNetwork(traceStreams, cfg.Override, cfg.Overrides.Strict)
		if err != nil {
			return err
		}

		traced, err := net.TraceAll(startIDs)
		if err != nil {
			return err
		}

		if traceJSON {
			out := make(map[string][]int64, len(traced))
			for id, set := range traced {
				out[strconv.FormatInt(id, 10)] = network.SortedIDs(set)
			}
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		}

		for _, start := range startIDs {
			ids := network.SortedIDs(traced[start])
			fmt.Printf("reach %d: %d upstream reach(es)\n", start, len(ids))
			for _, id := range ids {
				fmt.Printf("  %d\n", id)
			}
		}
		return nil
	},
}

func init() {
	traceCmd.Flags().StringVar(&traceStreams, "streams", "", "Stream network (GeoJSON file or SQLite db)")
	traceCmd.Flags().StringVar(&traceConfig, "config", "", "TOML run configuration (for topology overrides)")
	traceCmd.Flags().BoolVar(&traceJSON, "json", false, "Output as JSON")
	traceCmd.MarkFlagRequired("streams")
	rootCmd.AddCommand(traceCmd)
}
