// Command campusnet plans campus building networks: it serves the graph API
// and solves minimum spanning trees from graph files.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:           "campusnet",
	Short:         "Campus building network planner",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (default: search $CAMPUSNET_CONFIG, ./campusnet.yaml, ...)")
	rootCmd.AddCommand(serveCmd, solveCmd, configCmd, versionCmd)
}

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
