package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/telhawk-systems/eventpipe/cli/internal/config"
)

var (
	cfgFile string
	cfg     *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "evtctl",
	Short: "Event pipeline CLI",
	Long: `evtctl is the command-line interface for the event pipeline.

Send events to the ingestor, seed load for testing, and query the
processor's aggregated metrics from your terminal.`,
	Version: "0.1.0",
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.evtctl/config.yaml)")
	rootCmd.PersistentFlags().String("profile", "", "profile to use")
	rootCmd.PersistentFlags().String("ingestor-url", "", "ingestor base URL (overrides profile)")
	rootCmd.PersistentFlags().String("processor-url", "", "processor base URL (overrides profile)")
}

func initConfig() {
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Could not load config: %v\n", err)
		cfg = config.Default()
	}
}

// serviceURLs resolves the ingestor and processor base URLs from flags and
// the active profile.
func serviceURLs(cmd *cobra.Command) (string, string) {
	profile, _ := cmd.Flags().GetString("profile")
	p := cfg.Profile(profile)

	ingestorURL, _ := cmd.Flags().GetString("ingestor-url")
	if ingestorURL == "" {
		ingestorURL = p.IngestorURL
	}
	processorURL, _ := cmd.Flags().GetString("processor-url")
	if processorURL == "" {
		processorURL = p.ProcessorURL
	}
	return ingestorURL, processorURL
}
