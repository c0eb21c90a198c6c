package internal

import (
	"fmt"

	"github.com/spf13/viper"
)

type MiniScyllaConfig struct {
	AppName string `mapstructure:"app_name"`

	Node struct {
		RPCAddress string `mapstructure:"rpc_address"`
		Datacenter string `mapstructure:"data_center"`
		Rack       string `mapstructure:"rack"`
	} `mapstructure:"node"`

	Shell struct {
		Prompt      string `mapstructure:"prompt"`
		HistoryFile string `mapstructure:"history_file"`
		Keyspace    string `mapstructure:"keyspace"`
	} `mapstructure:"shell"`
}

func LoadConfig(path string) (*MiniScyllaConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.SetDefault("app_name", "miniscylla")
	v.SetDefault("node.rpc_address", "127.0.0.1")
	v.SetDefault("node.data_center", "datacenter1")
	v.SetDefault("node.rack", "rack1")
	v.SetDefault("shell.prompt", "cqlsh> ")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg MiniScyllaConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return &cfg, nil
}
