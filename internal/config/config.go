package config

type Config interface {
	EnvConfig
	SessionConfig
	RoutesConfig
}

type mainConfig struct {
	EnvVars
	Session
	Routes
}

func New() Config {
	return mainConfig{}
}
