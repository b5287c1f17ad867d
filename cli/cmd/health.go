package cmd

import (
	"errors"

	"github.com/spf13/cobra"
	"github.com/telhawk-systems/eventpipe/cli/internal/client"
	"github.com/telhawk-systems/eventpipe/cli/pkg/output"
)

var errUnhealthy = errors.New("one or more services unhealthy")

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check service health",
	Long:  "Probe the ingestor and processor health endpoints",
	RunE: func(cmd *cobra.Command, args []string) error {
		ingestorURL, processorURL := serviceURLs(cmd)
		c := client.New(ingestorURL, processorURL)

		ok := true
		for _, svc := range []struct {
			name string
			url  string
		}{
			{"ingestor", ingestorURL},
			{"processor", processorURL},
		} {
			if _, err := c.Health(svc.url); err != nil {
				output.Error("%s (%s): %v", svc.name, svc.url, err)
				ok = false
			} else {
				output.Success("%s (%s): healthy", svc.name, svc.url)
			}
		}

		if !ok {
			cmd.SilenceUsage = true
			return errUnhealthy
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(healthCmd)
}
