package config

import (
	"fmt"
	"time"
)

type Configs struct {
	Env string `toml:"env"`

	ApiServer ServerConfigs   `toml:"api_server"`
	Database  DatabaseConfigs `toml:"database"`
	Redis     RedisConfigs    `toml:"redis"`
	Kafka     KafkaConfigs    `toml:"kafka"`
	Auth      AuthConfigs     `toml:"auth"`
	Ledger    LedgerConfigs   `toml:"ledger"`
}

type ServerConfigs struct {
	Host string `toml:"host"`
	Port string `toml:"port"`
	Cert string `toml:"cert"`
	Key  string `toml:"key"`
}

func (s ServerConfigs) Address() string {
	return fmt.Sprintf("%s:%s", s.Host, s.Port)
}

type DatabaseConfigs struct {
	Host     string `toml:"host"`
	Port     string `toml:"port"`
	Database string `toml:"database"`
	User     string `toml:"user"`
	Password string `toml:"password"`
}

func (d DatabaseConfigs) ConnectionString() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		d.User,
		d.Password,
		d.Host,
		d.Port,
		d.Database,
	)
}

type RedisConfigs struct {
	Addr string `toml:"addr"`
}

type KafkaConfigs struct {
	Addr string `toml:"addr"`
}

type AuthConfigs struct {
	// TokenSecret signs the gateway tokens attached to forwarded ledger
	// calls.
	TokenSecret     string        `toml:"token_secret"`
	TokenExpiration time.Duration `toml:"token_expiration"`
}

type LedgerConfigs struct {
	// RPCEndpoint is the JSON-RPC address of the ledger connector that
	// executes outbound calls on our behalf.
	RPCEndpoint string `toml:"rpc_endpoint"`

	// RPCName prefixes every connector method name.
	RPCName string `toml:"rpc_name"`

	// HostAccount is the identity the connector uses when it reports call
	// outcomes back to us. Resolution entry points reject other callers.
	HostAccount string `toml:"host_account"`

	// TopLevelAccount is the account factory that serves account-creation
	// requests.
	TopLevelAccount string `toml:"top_level_account"`

	// OutcomeTopic is the Kafka topic the connector publishes call
	// outcomes to.
	OutcomeTopic string `toml:"outcome_topic"`

	// CacheTTL bounds how long read queries may serve a drop record from
	// Redis.
	CacheTTL time.Duration `toml:"cache_ttl"`
}
