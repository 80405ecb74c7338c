// Package config loads a cluster node's bootstrap configuration, the way
// igodwin-notifier's internal/config package loads its own.
package config

import (
	"errors"
	"time"

	"github.com/spf13/viper"

	"github.com/jabolina/go-mqueue/pkg/mqueue/types"
)

// Config is one node's complete bootstrap configuration.
type Config struct {
	Node    NodeConfig    `mapstructure:"node"`
	Cluster ClusterConfig `mapstructure:"cluster"`
	Limits  LimitsConfig  `mapstructure:"limits"`
}

// NodeConfig names the local node.
type NodeConfig struct {
	ID              uint32 `mapstructure:"id"`
	Name            string `mapstructure:"name"`
	ProtocolVersion string `mapstructure:"protocol_version"`
}

// ClusterConfig names the group-communication exchange this node joins
// (spec §6's Transport collaborator).
type ClusterConfig struct {
	Group string   `mapstructure:"group"`
	Peers []string `mapstructure:"peers"`
}

// LimitsConfig overrides the compiled-in defaults from types.DefaultLimits,
// left at zero to mean "use the default" (spec §6, LimitGet).
type LimitsConfig struct {
	MaxQueues         uint32        `mapstructure:"max_queues"`
	MaxGroups         uint32        `mapstructure:"max_groups"`
	MaxQueuesPerGroup uint32        `mapstructure:"max_queues_per_group"`
	DefaultRetention  time.Duration `mapstructure:"default_retention"`
}

// Resolve overlays the non-zero fields of c onto types.DefaultLimits,
// producing the types.Limits an Executive should enforce (spec §6's
// LimitGet values, made deployment-tunable). DefaultRetention has no
// counterpart in types.Limits: defaulting a queue's retention at
// creation time would make CreationAttrs.Equal reject a legitimate
// reopen that passes the client's original (non-defaulted) attrs, so
// it is deliberately left unwired (see DESIGN.md).
func (c LimitsConfig) Resolve() types.Limits {
	limits := types.DefaultLimits()
	if c.MaxQueues != 0 {
		limits.MaxQueues = c.MaxQueues
	}
	if c.MaxGroups != 0 {
		limits.MaxGroups = c.MaxGroups
	}
	if c.MaxQueuesPerGroup != 0 {
		limits.MaxQueuesPerGroup = c.MaxQueuesPerGroup
	}
	return limits
}

// Validate checks the fields that have no sane zero-value default.
func (c *Config) Validate() error {
	if c.Node.Name == "" {
		return errors.New("node.name must be set")
	}
	if c.Cluster.Group == "" {
		return errors.New("cluster.group must be set")
	}
	return nil
}

// Load reads configFile (any format viper supports: yaml, toml, json)
// into a Config.
func Load(configFile string) (*Config, error) {
	viper.SetConfigFile(configFile)
	viper.SetDefault("limits.max_queues", 0)
	viper.SetDefault("limits.max_groups", 0)
	viper.SetDefault("limits.max_queues_per_group", 0)
	viper.SetDefault("node.protocol_version", "1.0.0")

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
