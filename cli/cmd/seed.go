package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/telhawk-systems/eventpipe/cli/internal/client"
	"github.com/telhawk-systems/eventpipe/cli/internal/seeder"
	"github.com/telhawk-systems/eventpipe/cli/pkg/output"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Generate and send test events",
	Long:  "Generate realistic random events and send them to the ingestion service",
	Example: `  evtctl seed --count 100
  evtctl seed --count 50 --type performance_metric --interval 100ms`,
	RunE: func(cmd *cobra.Command, args []string) error {
		count, _ := cmd.Flags().GetInt("count")
		eventType, _ := cmd.Flags().GetString("type")
		interval, _ := cmd.Flags().GetDuration("interval")

		if count <= 0 {
			return fmt.Errorf("--count must be positive")
		}

		ingestorURL, processorURL := serviceURLs(cmd)
		c := client.New(ingestorURL, processorURL)

		sent := 0
		failed := 0
		start := time.Now()
		for i := 0; i < count; i++ {
			event := seeder.GenerateEvent(eventType)
			if _, err := c.SendEvent(event); err != nil {
				failed++
				output.Error("send failed: %v", err)
			} else {
				sent++
			}
			if interval > 0 && i < count-1 {
				time.Sleep(interval)
			}
		}

		output.Success("Sent %d events (%d failed) in %s", sent, failed, time.Since(start).Round(time.Millisecond))
		if failed > 0 {
			return fmt.Errorf("%d of %d events failed", failed, count)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)

	seedCmd.Flags().IntP("count", "n", 10, "Number of events to send")
	seedCmd.Flags().StringP("type", "t", "", "Event type (default: random mix)")
	seedCmd.Flags().Duration("interval", 0, "Delay between events")
}
