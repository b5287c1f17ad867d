package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/telhawk-systems/eventpipe/cli/internal/client"
	"github.com/telhawk-systems/eventpipe/cli/pkg/output"
)

var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Send an event",
	Long:  "Send a single event to the ingestion service",
	Example: `  evtctl send --type security_alert --severity critical --message "Brute force attempt"
  evtctl send --json '{"event_type":"application_log","source":"api","severity":"low","message":"started"}'`,
	RunE: func(cmd *cobra.Command, args []string) error {
		jsonData, _ := cmd.Flags().GetString("json")

		var event map[string]interface{}
		if jsonData != "" {
			if err := json.Unmarshal([]byte(jsonData), &event); err != nil {
				return fmt.Errorf("invalid --json payload: %w", err)
			}
		} else {
			eventType, _ := cmd.Flags().GetString("type")
			source, _ := cmd.Flags().GetString("source")
			severity, _ := cmd.Flags().GetString("severity")
			message, _ := cmd.Flags().GetString("message")

			event = map[string]interface{}{
				"event_type": eventType,
				"source":     source,
				"severity":   severity,
			}
			if message != "" {
				event["message"] = message
			}
		}

		ingestorURL, processorURL := serviceURLs(cmd)
		resp, err := client.New(ingestorURL, processorURL).SendEvent(event)
		if err != nil {
			return fmt.Errorf("failed to send event: %w", err)
		}

		output.Success("Event accepted: %s", resp.EventID)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(sendCmd)

	sendCmd.Flags().StringP("type", "t", "application_log", "Event type")
	sendCmd.Flags().String("source", "evtctl", "Event source")
	sendCmd.Flags().StringP("severity", "s", "low", "Event severity")
	sendCmd.Flags().StringP("message", "m", "", "Event message")
	sendCmd.Flags().String("json", "", "Raw JSON event payload")
}
