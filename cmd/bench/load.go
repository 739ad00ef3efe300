package bench

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/elimelt/ha-redis/cmd/util"
	"github.com/elimelt/ha-redis/lib/loadgen"
)

var (
	loadCmd = &cobra.Command{
		Use:     "load",
		Short:   "Run a mixed workload through a front-end",
		Long:    "Trigger the front-end's built-in load generator and print the resulting report. The workload runs inside the front-end process, so the measured latencies are those between the front-end and its backing store.",
		PreRunE: processLoadConfig,
		RunE:    runLoad,
	}
	loadConfig = loadgen.Config{}
)

func init() {
	// add flags
	key := "operations"
	loadCmd.Flags().Int(key, 100, util.WrapString("Total number of operations to issue"))
	key = "ratio"
	loadCmd.Flags().Int(key, 70, util.WrapString("Percentage of operations that are reads (0-100)"))
	key = "concurrency"
	loadCmd.Flags().Int(key, 1, util.WrapString("Number of workers issuing operations in parallel"))
	key = "reset-stats"
	loadCmd.Flags().Bool(key, false, util.WrapString("Reset the front-end's request counters before the run"))
}

func processLoadConfig(cmd *cobra.Command, _ []string) error {
	if err := connect(cmd); err != nil {
		return err
	}

	// Read the configuration from the command line flags and environment variables
	loadConfig.Operations = viper.GetInt("operations")
	loadConfig.ReadWriteRatio = viper.GetInt("ratio")
	loadConfig.Concurrency = viper.GetInt("concurrency")

	return nil
}

func runLoad(_ *cobra.Command, _ []string) error {
	defer restClient.Close()

	if viper.GetBool("reset-stats") {
		if err := restClient.ResetStats(); err != nil {
			return fmt.Errorf("failed to reset stats: %v", err)
		}
	}

	report, err := restClient.Load(loadConfig)
	if err != nil {
		return err
	}

	// Print the report
	fmt.Println("Load generation completed")
	fmt.Println()
	fmt.Printf("%-20s%d\n", "requested", report.Requested)
	fmt.Printf("%-20s%d\n", "completed", report.Completed)
	fmt.Printf("%-20s%d\n", "successful", report.Successful)
	fmt.Printf("%-20s%d\n", "failed", report.Failed)
	fmt.Printf("%-20s%d\n", "reads", report.Reads)
	fmt.Printf("%-20s%d\n", "writes", report.Writes)
	fmt.Println()
	fmt.Printf("%-20s%s\n", "latency avg", report.LatencyAvg)
	fmt.Printf("%-20s%s\n", "latency p50", report.LatencyP50)
	fmt.Printf("%-20s%s\n", "latency p95", report.LatencyP95)
	fmt.Printf("%-20s%s\n", "latency p99", report.LatencyP99)

	return nil
}
