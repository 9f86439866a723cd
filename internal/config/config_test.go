package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func newValidConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Host:     "localhost",
			Port:     5432,
			User:     "user",
			Password: "password",
			DBName:   "gaussgrid",
			MaxConns: 25,
		},
		Redis: RedisConfig{
			Addr: "localhost:6379",
		},
		Kafka: KafkaConfig{
			Brokers: []string{"localhost:9092"},
			GroupID: "gaussgrid-group",
		},
		Worker: WorkerConfig{
			Concurrency: 10,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

func TestConfig_Validate_ValidConfig(t *testing.T) {
	cfg := newValidConfig()
	assert.NoError(t, cfg.Validate())
}

func TestConfig_Validate_MissingDatabaseHost(t *testing.T) {
	cfg := newValidConfig()
	cfg.Database.Host = ""
	assert.Error(t, cfg.Validate())
}

func TestConfig_Validate_InvalidDatabasePort(t *testing.T) {
	cfg := newValidConfig()
	cfg.Database.Port = 70000
	assert.Error(t, cfg.Validate())
}

func TestConfig_Validate_MissingDatabaseUser(t *testing.T) {
	cfg := newValidConfig()
	cfg.Database.User = ""
	assert.Error(t, cfg.Validate())
}

func TestConfig_Validate_MaxConnsBelowOne(t *testing.T) {
	cfg := newValidConfig()
	cfg.Database.MaxConns = 0
	assert.Error(t, cfg.Validate())
}

func TestConfig_Validate_MissingRedisAddr(t *testing.T) {
	cfg := newValidConfig()
	cfg.Redis.Addr = ""
	assert.Error(t, cfg.Validate())
}

func TestConfig_Validate_NegativeRedisDB(t *testing.T) {
	cfg := newValidConfig()
	cfg.Redis.DB = -1
	assert.Error(t, cfg.Validate())
}

func TestConfig_Validate_EmptyKafkaBrokers(t *testing.T) {
	cfg := newValidConfig()
	cfg.Kafka.Brokers = nil
	assert.Error(t, cfg.Validate())
}

func TestConfig_Validate_MissingKafkaGroupID(t *testing.T) {
	cfg := newValidConfig()
	cfg.Kafka.GroupID = ""
	assert.Error(t, cfg.Validate())
}

func TestConfig_Validate_WorkerConcurrencyBelowOne(t *testing.T) {
	cfg := newValidConfig()
	cfg.Worker.Concurrency = 0
	assert.Error(t, cfg.Validate())
}

func TestConfig_Validate_InvalidLogLevel(t *testing.T) {
	cfg := newValidConfig()
	cfg.Log.Level = "verbose"
	assert.Error(t, cfg.Validate())
}

func TestConfig_Validate_InvalidLogFormat(t *testing.T) {
	cfg := newValidConfig()
	cfg.Log.Format = "xml"
	assert.Error(t, cfg.Validate())
}
