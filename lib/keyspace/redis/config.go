package redis

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/elimelt/ha-redis/lib/keyspace"
)

// --------------------------------------------------------------------------
// Topology and read routing
// --------------------------------------------------------------------------

// Topology selects which kind of Redis deployment the keyspace talks to.
// The servers themselves (and, for sentinel, the Sentinel daemons) own all
// replication and failover logic; the topology only decides how clients are
// constructed and where reads and writes are routed.
type Topology string

const (
	// TopologyReplicated is a fixed primary/replica pair: writes go to the
	// primary, reads go to the replica (configurable via ReadFrom).
	TopologyReplicated Topology = "replicated"
	// TopologySentinel discovers the current primary through Sentinel and
	// follows failover promotions. Works unchanged against DragonflyDB,
	// which speaks the same protocol.
	TopologySentinel Topology = "sentinel"
	// TopologyCluster talks to a sharded Redis Cluster.
	TopologyCluster Topology = "cluster"
)

// ReadFrom selects the client used for read operations in the replicated
// topology.
type ReadFrom string

const (
	ReadFromReplica ReadFrom = "replica"
	ReadFromPrimary ReadFrom = "primary"
)

// --------------------------------------------------------------------------
// Configuration struct
// --------------------------------------------------------------------------

// Config holds all connection parameters for the Redis keyspace.
type Config struct {
	Topology Topology

	// Replicated topology
	PrimaryAddr string
	ReplicaAddr string
	ReadFrom    ReadFrom

	// Sentinel topology
	MasterName    string
	SentinelAddrs []string

	// Cluster topology
	ClusterAddrs []string

	// Connection timeouts (applied to every client)
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// Policy controls replica acknowledgment of writes
	Policy keyspace.WritePolicy
}

// Validate checks that the configuration is complete for its topology.
func (c *Config) Validate() error {
	switch c.Topology {
	case TopologyReplicated:
		if c.PrimaryAddr == "" {
			return fmt.Errorf("primary address is required for the replicated topology")
		}
		if c.ReadFrom == ReadFromReplica && c.ReplicaAddr == "" {
			return fmt.Errorf("replica address is required when reads are routed to the replica")
		}
	case TopologySentinel:
		if c.MasterName == "" {
			return fmt.Errorf("master name is required for the sentinel topology")
		}
		if len(c.SentinelAddrs) == 0 {
			return fmt.Errorf("at least one sentinel address is required")
		}
	case TopologyCluster:
		if len(c.ClusterAddrs) == 0 {
			return fmt.Errorf("at least one cluster address is required")
		}
	default:
		return fmt.Errorf("invalid topology: %s (expected one of: replicated, sentinel, cluster)", c.Topology)
	}
	if c.Policy.Synchronous() && c.Policy.WaitTimeout <= 0 {
		return fmt.Errorf("wait timeout must be positive when min replicas is set")
	}
	return nil
}

// String returns a formatted string representation of the configuration
func (c *Config) String() string {
	var sb strings.Builder

	// Create helper functions for consistent formatting
	addSection := func(title string) {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("%s\n", strings.ToUpper(title)))
	}

	addField := func(name, value string) {
		sb.WriteString(fmt.Sprintf("  %-22s: %s\n", name, value))
	}

	addSection("Backend")
	addField("Topology", string(c.Topology))

	switch c.Topology {
	case TopologyReplicated:
		addField("Primary", c.PrimaryAddr)
		addField("Replica", c.ReplicaAddr)
		addField("Read From", string(c.ReadFrom))
	case TopologySentinel:
		addField("Master Name", c.MasterName)
		for i, addr := range c.SentinelAddrs {
			addField(fmt.Sprintf("Sentinel %d", i), addr)
		}
	case TopologyCluster:
		for i, addr := range c.ClusterAddrs {
			addField(fmt.Sprintf("Node %d", i), addr)
		}
	}

	addSection("Timeouts")
	addField("Dial", c.DialTimeout.String())
	addField("Read", c.ReadTimeout.String())
	addField("Write", c.WriteTimeout.String())

	addSection("Write Policy")
	if c.Policy.Synchronous() {
		addField("Mode", "quasi-synchronous")
		addField("Min Replicas", strconv.Itoa(c.Policy.MinReplicas))
		addField("Wait Timeout", c.Policy.WaitTimeout.String())
	} else {
		addField("Mode", "asynchronous")
	}

	return sb.String()
}
