package main

import (
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/droplink-labs/backend/config"
	"github.com/droplink-labs/backend/pkg/xcontext"
)

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}

	return fallback
}

func getEnvDuration(key, fallback string) time.Duration {
	d, err := time.ParseDuration(getEnv(key, fallback))
	if err != nil {
		panic(err)
	}

	return d
}

// loadConfig builds the configuration from the environment, then overlays
// the toml file at CONFIG_PATH when one is given.
func (s *srv) loadConfig() {
	configs := config.Configs{
		Env: getEnv("ENV", "local"),
		ApiServer: config.ServerConfigs{
			Host: getEnv("HOST", "localhost"),
			Port: getEnv("PORT", "8080"),
			Cert: getEnv("SERVER_CERT", ""),
			Key:  getEnv("SERVER_KEY", ""),
		},
		Database: config.DatabaseConfigs{
			Host:     getEnv("MYSQL_HOST", "localhost"),
			Port:     getEnv("MYSQL_PORT", "3306"),
			User:     getEnv("MYSQL_USER", "droplink"),
			Password: getEnv("MYSQL_PASSWORD", "droplink"),
			Database: getEnv("MYSQL_DATABASE", "droplink"),
		},
		Redis: config.RedisConfigs{
			Addr: getEnv("REDIS_ADDRESS", "localhost:6379"),
		},
		Kafka: config.KafkaConfigs{
			Addr: getEnv("KAFKA_ADDRESS", "localhost:9092"),
		},
		Auth: config.AuthConfigs{
			TokenSecret:     getEnv("TOKEN_SECRET", "token_secret"),
			TokenExpiration: getEnvDuration("TOKEN_EXPIRATION", "5m"),
		},
		Ledger: config.LedgerConfigs{
			RPCEndpoint:     getEnv("LEDGER_RPC_ENDPOINT", "http://localhost:8545"),
			RPCName:         getEnv("LEDGER_RPC_NAME", "droplink"),
			HostAccount:     getEnv("LEDGER_HOST_ACCOUNT", "host"),
			TopLevelAccount: getEnv("LEDGER_TOP_LEVEL_ACCOUNT", "near"),
			OutcomeTopic:    getEnv("LEDGER_OUTCOME_TOPIC", "ledger-outcomes"),
			CacheTTL:        getEnvDuration("LEDGER_CACHE_TTL", "1m"),
		},
	}

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if _, err := toml.DecodeFile(path, &configs); err != nil {
			panic(err)
		}
	}

	s.configs = &configs
	s.ctx = xcontext.WithConfigs(s.ctx, configs)
}
