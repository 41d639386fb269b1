package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"headwater/internal/config"
)

var (
	summaryStreams string
	summaryConfig  string
	summaryJSON    bool
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Report network topology: headwaters, confluences, outlets, components",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Default()
		if summaryConfig != "" {
			var err error
			cfg, err = config.Load(summaryConfig)
			if err != nil {
				return err
			}
		}

		net, _, err := loadNetwork(summaryStreams, cfg.Override, cfg.Overrides.Strict)
		if err != nil {
			return err
		}

		report := net.Topology()

		if summaryJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(report)
		}

		fmt.Println("\n  NETWORK")
		fmt.Println("  ────────────────────────────────────────")
		fmt.Printf("  Reaches: %d  Nodes: %d\n", report.Reaches, report.Nodes)
		fmt.Printf("  Headwaters: %d  Confluences: %d  Outlets: %d\n",
			report.Headwaters, report.Confluences, report.Outlets)
		fmt.Printf("  Components: %d (largest %d nodes)\n", report.Components, report.LargestComponent)
		if report.SelfLoops > 0 {
			fmt.Printf("  Self-loop reaches: %d (check the source topology)\n", report.SelfLoops)
		}
		fmt.Println()
		return nil
	},
}

func init() {
	summaryCmd.Flags().StringVar(&summaryStreams, "streams", "", "Stream network (GeoJSON file or SQLite db)")
	summaryCmd.Flags().StringVar(&summaryConfig, "config", "", "TOML run configuration (for topology overrides)")
	summaryCmd.Flags().BoolVar(&summaryJSON, "json", false, "Output as JSON")
	summaryCmd.MarkFlagRequired("streams")
	rootCmd.AddCommand(summaryCmd)
}
