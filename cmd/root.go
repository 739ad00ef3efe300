package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/elimelt/ha-redis/cmd/bench"
	"github.com/elimelt/ha-redis/cmd/serve"
	"github.com/elimelt/ha-redis/cmd/util"
	"github.com/elimelt/ha-redis/lib/logger"
)

const (
	Version = "0.3.0"
)

var (

	// RootCmd represents the base command when called without any subcommands
	RootCmd = &cobra.Command{
		Use:   "haredis",
		Short: "HTTP front-end and benchmark tool for highly available Redis deployments",
		Long: fmt.Sprintf(`ha-redis (v%s)

An HTTP front-end for Redis replication, Sentinel and Cluster deployments
with optional quasi-synchronous writes, plus a benchmark tool to compare
the topologies under identical load.`, Version),
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			level, _ := cmd.Flags().GetString("log-level")
			return logger.SetLevel(level)
		},
	}

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of ha-redis",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("ha-redis v%s\n", Version)
		},
	}
)

func init() {
	// Add Commands
	RootCmd.AddCommand(serve.ServeCmd)
	RootCmd.AddCommand(bench.BenchCmd)
	RootCmd.AddCommand(versionCmd)

	// Add Flags
	key := "log-level"
	RootCmd.PersistentFlags().String(key, "info", util.WrapString("Level at which logs will be output (debug, info, warn, error)"))
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
