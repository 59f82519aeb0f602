package config

import (
	"errors"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Postgres DBConfig
	Redis    RedisConfig
	S3       S3Config
	Logger   Logger
	Worker   WorkerConfig
	Export   ExportConfig
}

type ServerConfig struct {
	AppVersion string
	Port       string
	Mode       string
}

type WorkerConfig struct {
	WorkerCount     int
	MaxCPUUsage     float64
	TriggerSecret   string
	PollIntervalSec int
}

type ExportConfig struct {
	NamingPattern string
	PageSize      int
	MaxBatchSize  int
}

type DBConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	PgDriver string
}

type RedisConfig struct {
	RedisAddr      string
	RedisPassword  string
	DB             int
	MinIdleConns   int
	PoolSize       int
	PoolTimeout    int
	JobCachePrefix string
	JobCacheExpire int
}

type S3Config struct {
	Endpoint     string
	Region       string
	AccessKey    string
	SecretKey    string
	InputBucket  string
	OutputBucket string
}

type Logger struct {
	Development       bool
	DisableCaller     bool
	DisableStacktrace bool
	Encoding          string
	Level             string
}

func LoadConfig(filename string) (*viper.Viper, error) {
	v := viper.New()
	v.SetConfigFile(filename)
	v.AddConfigPath(".")
	v.AutomaticEnv()
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil, errors.New("config file not found")
		}
		return nil, err
	}
	return v, nil
}

func ParseConfig(v *viper.Viper) (*Config, error) {
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, err
	}
	if c.Export.NamingPattern == "" {
		c.Export.NamingPattern = "{clientId}_{videoId}_{aspectRatio}_{resolution}"
	}
	if c.Export.PageSize <= 0 {
		c.Export.PageSize = 20
	}
	if c.Export.MaxBatchSize <= 0 || c.Export.MaxBatchSize > 50 {
		c.Export.MaxBatchSize = 50
	}
	if c.Worker.WorkerCount <= 0 {
		c.Worker.WorkerCount = 4
	}
	if c.Redis.JobCachePrefix == "" {
		c.Redis.JobCachePrefix = "export:job:"
	}
	if c.Redis.JobCacheExpire <= 0 {
		c.Redis.JobCacheExpire = 3600
	}
	return &c, nil
}
