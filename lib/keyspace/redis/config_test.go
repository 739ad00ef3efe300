package redis

import (
	"strings"
	"testing"
	"time"

	"github.com/elimelt/ha-redis/lib/keyspace"
)

func TestConfigValidate(t *testing.T) {
	testCases := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{
			name: "valid replicated",
			config: Config{
				Topology:    TopologyReplicated,
				PrimaryAddr: "localhost:6379",
				ReplicaAddr: "localhost:6380",
				ReadFrom:    ReadFromReplica,
			},
			wantErr: false,
		},
		{
			name: "replicated without primary",
			config: Config{
				Topology:    TopologyReplicated,
				ReplicaAddr: "localhost:6380",
				ReadFrom:    ReadFromReplica,
			},
			wantErr: true,
		},
		{
			name: "replicated reads from primary needs no replica",
			config: Config{
				Topology:    TopologyReplicated,
				PrimaryAddr: "localhost:6379",
				ReadFrom:    ReadFromPrimary,
			},
			wantErr: false,
		},
		{
			name: "replicated reads from replica without replica addr",
			config: Config{
				Topology:    TopologyReplicated,
				PrimaryAddr: "localhost:6379",
				ReadFrom:    ReadFromReplica,
			},
			wantErr: true,
		},
		{
			name: "valid sentinel",
			config: Config{
				Topology:      TopologySentinel,
				MasterName:    "mymaster",
				SentinelAddrs: []string{"localhost:26379"},
			},
			wantErr: false,
		},
		{
			name: "sentinel without master name",
			config: Config{
				Topology:      TopologySentinel,
				SentinelAddrs: []string{"localhost:26379"},
			},
			wantErr: true,
		},
		{
			name: "sentinel without addresses",
			config: Config{
				Topology:   TopologySentinel,
				MasterName: "mymaster",
			},
			wantErr: true,
		},
		{
			name: "valid cluster",
			config: Config{
				Topology:     TopologyCluster,
				ClusterAddrs: []string{"localhost:7000", "localhost:7001"},
			},
			wantErr: false,
		},
		{
			name: "cluster without addresses",
			config: Config{
				Topology: TopologyCluster,
			},
			wantErr: true,
		},
		{
			name: "unknown topology",
			config: Config{
				Topology: Topology("gossip"),
			},
			wantErr: true,
		},
		{
			name: "sync policy without wait timeout",
			config: Config{
				Topology:    TopologyReplicated,
				PrimaryAddr: "localhost:6379",
				ReadFrom:    ReadFromPrimary,
				Policy:      keyspace.WritePolicy{MinReplicas: 1},
			},
			wantErr: true,
		},
		{
			name: "sync policy with wait timeout",
			config: Config{
				Topology:    TopologyReplicated,
				PrimaryAddr: "localhost:6379",
				ReadFrom:    ReadFromPrimary,
				Policy:      keyspace.WritePolicy{MinReplicas: 1, WaitTimeout: time.Second},
			},
			wantErr: false,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.config.Validate()
			if tc.wantErr && err == nil {
				t.Errorf("Expected error but got none")
			} else if !tc.wantErr && err != nil {
				t.Errorf("Did not expect error but got: %v", err)
			}
		})
	}
}

func TestConfigString(t *testing.T) {
	config := Config{
		Topology:      TopologySentinel,
		MasterName:    "redis-master",
		SentinelAddrs: []string{"sentinel-1:26379", "sentinel-2:26379"},
		DialTimeout:   10 * time.Second,
		ReadTimeout:   3 * time.Second,
		WriteTimeout:  3 * time.Second,
		Policy:        keyspace.WritePolicy{MinReplicas: 1, WaitTimeout: 2 * time.Second},
	}

	s := config.String()

	for _, want := range []string{
		"sentinel",
		"redis-master",
		"sentinel-1:26379",
		"sentinel-2:26379",
		"quasi-synchronous",
		"Min Replicas",
	} {
		if !strings.Contains(s, want) {
			t.Errorf("Config string missing %q:\n%s", want, s)
		}
	}
}

func TestWritePolicySynchronous(t *testing.T) {
	if (keyspace.WritePolicy{}).Synchronous() {
		t.Errorf("zero policy must be asynchronous")
	}
	if !(keyspace.WritePolicy{MinReplicas: 1, WaitTimeout: time.Second}).Synchronous() {
		t.Errorf("policy with min replicas must be synchronous")
	}
}
