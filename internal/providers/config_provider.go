package providers

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
	"vihub/internal/structures"

	"github.com/spf13/viper"
)

const (
	defaultDirectoryTimeout = 15 * time.Second
	defaultPacing           = 200 * time.Millisecond
	defaultCacheTTL         = 60 * time.Second
)

func NewConfigProvider(flags *structures.CliFlags) (*structures.Config, error) {
	var conf structures.Config

	filename := filepath.Base(flags.ConfigPath)
	viper.AddConfigPath(filepath.Dir(flags.ConfigPath))
	viper.SetConfigName(strings.TrimSuffix(filename, filepath.Ext(filename)))
	viper.SetConfigType("yaml")

	viper.SetDefault("directory.timeout", defaultDirectoryTimeout)
	viper.SetDefault("directory.pacing", defaultPacing)
	viper.SetDefault("cache.ttl", defaultCacheTTL)
	viper.SetDefault("persistence.seed", true)

	viper.BindEnv("logger.level", "VIHUB_LOG_LEVEL")
	viper.BindEnv("directory.baseUrl", "VIHUB_DIRECTORY_BASE_URL")
	viper.BindEnv("directory.user", "VIHUB_DIRECTORY_USER")
	viper.BindEnv("directory.password", "VIHUB_DIRECTORY_PASSWORD")
	viper.BindEnv("sync.interval", "VIHUB_SYNC_INTERVAL")
	viper.BindEnv("cache.enabled", "VIHUB_CACHE_ENABLED")
	viper.BindEnv("cache.size", "VIHUB_CACHE_SIZE")

	err := viper.ReadInConfig()
	if err != nil {
		return nil, err
	}

	err = viper.Unmarshal(&conf)
	if err != nil {
		return nil, fmt.Errorf("unable to decode into config struct: %w", err)
	}

	cnfValidator := NewCnfValidator(&conf)
	err = cnfValidator.Validate()
	if err != nil {
		return nil, err
	}

	conf.AppName = "VirtualIOHub"
	conf.Path = flags.ConfigPath
	conf.Debug = flags.DebugMode

	return &conf, nil
}
