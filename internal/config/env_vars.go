package config

import "os"

const (
	appNameVar   = "APP_NAME"
	redisAddrVar = "REDIS_ADDR"
)

type EnvConfig interface {
	GetAppName() string
	GetRedisAddr() string
	GetEnv() string
}

type EnvVars struct{}

var _ EnvConfig = EnvVars{}

func (EnvVars) GetAppName() string {
	return GetEnv(appNameVar, "Session Guard")
}

// GetRedisAddr returns the address of the Redis profile store, empty when the
// in-memory store should be used instead.
func (EnvVars) GetRedisAddr() string {
	return GetEnv(redisAddrVar, "")
}

func (EnvVars) GetEnv() string {
	env := os.Getenv("ENV")
	if env == "" {
		return "DEV"
	}
	return env
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}
