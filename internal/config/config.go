package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"taskadee/pkg/config"
)

const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

type StorageConfig struct {
	// Driver 为 postgres 或 memory；memory 只用于本地调试，重启即丢失
	Driver string `yaml:"driver"`
}

type ProgressConfig struct {
	StreakMilestones []int         `yaml:"streak_milestones"`
	DedupTTL         time.Duration `yaml:"dedup_ttl"`
}

type Config struct {
	DB       config.DBConfig     `yaml:"db"`
	MQ       config.MQConfig     `yaml:"mq"`
	Redis    config.RedisConfig  `yaml:"redis"`
	JWT      config.JWTConfig    `yaml:"jwt"`
	Server   config.ServerConfig `yaml:"server"`
	Log      config.LogConfig    `yaml:"log"`
	Storage  StorageConfig       `yaml:"storage"`
	Progress ProgressConfig      `yaml:"progress"`
}

// Load 使用统一配置中心：CONFIG_ENV 选择环境，CONFIG_DIR 指定目录
func Load() (*Config, error) {
	env := config.GetConfigEnv()
	configDir := config.GetEnv("CONFIG_DIR", "config")
	return LoadFrom(env, configDir)
}

func LoadFrom(env, configDir string) (*Config, error) {
	cfgMap, err := config.LoadConfig(env, configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	var cfg Config
	if err := config.Decode(cfgMap, &cfg); err != nil {
		return nil, err
	}

	// 环境变量覆盖（优先级最高）
	config.OverrideDBFromEnv(&cfg.DB)
	config.OverrideMQFromEnv(&cfg.MQ)
	config.OverrideRedisFromEnv(&cfg.Redis)
	config.OverrideJWTFromEnv(&cfg.JWT)
	config.OverrideServerFromEnv(&cfg.Server)
	config.OverrideLogFromEnv(&cfg.Log)
	if driver := os.Getenv("STORAGE_DRIVER"); driver != "" {
		cfg.Storage.Driver = driver
	}

	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Storage.Driver == "" {
		c.Storage.Driver = StoragePostgres
	}
	if c.Server.Port == "" {
		c.Server.Port = "8080"
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 30 * time.Second
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Progress.DedupTTL == 0 {
		c.Progress.DedupTTL = 24 * time.Hour
	}
}

func (c *Config) validate() error {
	switch c.Storage.Driver {
	case StoragePostgres, StorageMemory:
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	if c.JWT.Secret == "" || strings.Contains(c.JWT.Secret, "${") {
		return fmt.Errorf("jwt.secret is required")
	}
	for _, m := range c.Progress.StreakMilestones {
		if m <= 0 {
			return fmt.Errorf("progress.streak_milestones must be positive, got %d", m)
		}
	}
	return nil
}
