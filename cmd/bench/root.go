package bench

import (
	"github.com/spf13/cobra"

	"github.com/elimelt/ha-redis/cmd/util"
	"github.com/elimelt/ha-redis/rest"
)

var (
	// restClient is shared by all subcommands and created in their PreRunE
	restClient *rest.Client

	BenchCmd = &cobra.Command{
		Use:   "bench",
		Short: "Benchmarking tools for the HTTP front-end",
		Long:  "Benchmarking tools that drive one or more front-end instances over HTTP. All subcommands share the client connection flags; which backing store the load ends up on is decided by the front-ends themselves.",
	}
)

func init() {
	// initialize viper
	cobra.OnInitialize(util.InitEnvConfig)

	// add client flags shared by all subcommands
	util.SetupRESTClientFlags(BenchCmd)

	// add subcommands
	BenchCmd.AddCommand(perfCmd)
	BenchCmd.AddCommand(loadCmd)
}

// connect binds the command's flags and creates the shared REST client
func connect(cmd *cobra.Command) error {
	if err := util.BindCommandFlags(cmd); err != nil {
		return err
	}

	var err error
	restClient, err = rest.NewClient(util.GetClientConfig())
	return err
}
