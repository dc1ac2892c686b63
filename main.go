// api/main.go
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"journeylens/api/utils"
)

var (
	configPath string
	verbose    bool

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "journeylens",
	Short: "journeylens - customer journey dashboard API",
	Long: `journeylens loads customer journeys, aggregates them per session and
serves paginated, searchable views of the result to the dashboard.

Run "journeylens serve" to start the API. The other commands work
against the journeys API directly and print to the terminal.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// serve builds its own logger from the loaded config.
		if cmd == serveCmd {
			return nil
		}
		level := "warn"
		if verbose {
			level = "debug"
		}
		var err error
		logger, err = utils.NewLogger(level, true)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to a YAML config file (default $JOURNEYLENS_CONFIG)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(serveCmd, journeysCmd, classifyCmd, fieldCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
