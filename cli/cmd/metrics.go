package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/telhawk-systems/eventpipe/cli/internal/client"
	"github.com/telhawk-systems/eventpipe/cli/pkg/output"
)

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Show aggregated event metrics",
	Long:  "Query the processor's windowed per-type, per-severity counts",
	RunE: func(cmd *cobra.Command, args []string) error {
		ingestorURL, processorURL := serviceURLs(cmd)
		resp, err := client.New(ingestorURL, processorURL).Metrics()
		if err != nil {
			return fmt.Errorf("failed to fetch metrics: %w", err)
		}

		asJSON, _ := cmd.Flags().GetBool("json")
		if asJSON {
			return output.JSON(resp)
		}

		output.Info("Window: %ds", resp.WindowSeconds)
		table := output.NewTable([]string{"EVENT TYPE", "SEVERITY", "TOTAL", "PROCESSED", "FAILED"})
		for _, row := range resp.Metrics {
			table.AddRow([]string{
				row.EventType,
				row.Severity,
				strconv.FormatInt(row.Total, 10),
				strconv.FormatInt(row.Processed, 10),
				strconv.FormatInt(row.Failed, 10),
			})
		}
		table.Render()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(metricsCmd)

	metricsCmd.Flags().Bool("json", false, "Output raw JSON")
}
