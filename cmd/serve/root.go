package serve

import (
	"context"
	"fmt"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	cmdUtil "github.com/elimelt/ha-redis/cmd/util"
	"github.com/elimelt/ha-redis/lib/keyspace"
	"github.com/elimelt/ha-redis/lib/keyspace/memory"
	"github.com/elimelt/ha-redis/lib/keyspace/redis"
	"github.com/elimelt/ha-redis/rest"
)

var (
	serveBackend  = "replicated"
	serveRESTCfg  = rest.Config{}
	serveRedisCfg = &redis.Config{}
	ServeCmd      = &cobra.Command{
		Use:     "serve",
		Short:   "Start the HTTP front-end",
		Long:    `Start the HTTP front-end with the specified configuration. The configuration can be set via command line flags or environment variables. The format of the environment variables is HAREDIS_<flag> (e.g. HAREDIS_BACKEND=sentinel)`,
		PreRunE: processConfig,
		RunE:    run,
	}
)

func init() {
	// initialize viper
	cobra.OnInitialize(cmdUtil.InitEnvConfig)

	// add flags
	key := "addr"
	ServeCmd.PersistentFlags().String(key, "0.0.0.0:3000", cmdUtil.WrapString("The address on which the front-end will listen"))

	key = "backend"
	ServeCmd.PersistentFlags().String(key, "replicated", cmdUtil.WrapString("The backing store to connect to. One of: replicated, sentinel, cluster, memory"))

	key = "primary-addr"
	ServeCmd.PersistentFlags().String(key, "localhost:6379", cmdUtil.WrapString("(replicated) Address of the primary"))

	key = "replica-addr"
	ServeCmd.PersistentFlags().String(key, "", cmdUtil.WrapString("(replicated) Address of the read replica"))

	key = "read-from"
	ServeCmd.PersistentFlags().String(key, "replica", cmdUtil.WrapString("(replicated) Where read operations are routed: replica or primary"))

	key = "master-name"
	ServeCmd.PersistentFlags().String(key, "mymaster", cmdUtil.WrapString("(sentinel) Name of the monitored master"))

	key = "sentinel-addrs"
	ServeCmd.PersistentFlags().String(key, "", cmdUtil.WrapString("(sentinel) Comma-separated list of sentinel addresses (e.g. 'sentinel-1:26379,sentinel-2:26379')"))

	key = "cluster-addrs"
	ServeCmd.PersistentFlags().String(key, "", cmdUtil.WrapString("(cluster) Comma-separated list of cluster node addresses"))

	key = "min-replicas"
	ServeCmd.PersistentFlags().Int(key, 0, cmdUtil.WrapString("Number of replicas that must acknowledge each write before it is reported as successful. 0 means asynchronous writes"))

	key = "wait-timeout"
	ServeCmd.PersistentFlags().Int(key, 1000, cmdUtil.WrapString("How long a write may block on replica acknowledgments (in milliseconds)"))

	key = "dial-timeout"
	ServeCmd.PersistentFlags().Int(key, 5, cmdUtil.WrapString("Connection dial timeout in seconds"))

	key = "read-timeout"
	ServeCmd.PersistentFlags().Int(key, 3, cmdUtil.WrapString("Socket read timeout in seconds"))

	key = "write-timeout"
	ServeCmd.PersistentFlags().Int(key, 3, cmdUtil.WrapString("Socket write timeout in seconds"))

	key = "shutdown-grace"
	ServeCmd.PersistentFlags().Int(key, 5, cmdUtil.WrapString("How long in-flight requests may drain on shutdown (in seconds)"))
}

// processConfig reads the configuration from the command line flags and environment variables and converts it to the server configuration
func processConfig(cmd *cobra.Command, _ []string) error {
	// bind the flags to viper
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	serveRESTCfg.Addr = viper.GetString("addr")
	serveRESTCfg.ShutdownGrace = time.Duration(viper.GetInt("shutdown-grace")) * time.Second

	// the memory backend needs no connection parameters
	serveBackend = viper.GetString("backend")
	if serveBackend == "memory" {
		return nil
	}

	serveRedisCfg.Topology = redis.Topology(serveBackend)
	serveRedisCfg.PrimaryAddr = viper.GetString("primary-addr")
	serveRedisCfg.ReplicaAddr = viper.GetString("replica-addr")
	serveRedisCfg.MasterName = viper.GetString("master-name")
	serveRedisCfg.DialTimeout = time.Duration(viper.GetInt("dial-timeout")) * time.Second
	serveRedisCfg.ReadTimeout = time.Duration(viper.GetInt("read-timeout")) * time.Second
	serveRedisCfg.WriteTimeout = time.Duration(viper.GetInt("write-timeout")) * time.Second
	serveRedisCfg.Policy = keyspace.WritePolicy{
		MinReplicas: viper.GetInt("min-replicas"),
		WaitTimeout: time.Duration(viper.GetInt("wait-timeout")) * time.Millisecond,
	}

	// parse read routing
	switch readFrom := viper.GetString("read-from"); readFrom {
	case "replica":
		serveRedisCfg.ReadFrom = redis.ReadFromReplica
	case "primary":
		serveRedisCfg.ReadFrom = redis.ReadFromPrimary
	default:
		return fmt.Errorf("invalid read-from value: %s (expected replica or primary)", readFrom)
	}

	// parse address lists
	if addrs := viper.GetString("sentinel-addrs"); addrs != "" {
		serveRedisCfg.SentinelAddrs = strings.Split(addrs, ",")
	}
	if addrs := viper.GetString("cluster-addrs"); addrs != "" {
		serveRedisCfg.ClusterAddrs = strings.Split(addrs, ",")
	}

	return serveRedisCfg.Validate()
}

// run starts the front-end and blocks until it is interrupted
func run(_ *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// connect the backing store
	var (
		ks  keyspace.IKeyspace
		err error
	)
	if serveBackend == "memory" {
		ks = memory.New()
	} else {
		fmt.Println(serveRedisCfg.String())
		if ks, err = redis.New(*serveRedisCfg); err != nil {
			return err
		}
	}
	defer func() {
		_ = ks.Close()
	}()

	fmt.Println(serveRESTCfg.String())

	return rest.NewServer(serveRESTCfg, ks).Run(ctx)
}
