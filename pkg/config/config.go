package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Server  ServerConfig
	SQLite  SQLiteConfig
	Redis   RedisConfig
	Model   ModelConfig
	Weather WeatherConfig
	Logging LoggingConfig
}

type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  int
	WriteTimeout int
	BodyLimit    int
}

type SQLiteConfig struct {
	Path string
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

type ModelConfig struct {
	// MappingsPath points at the vocabulary/mapping artifact (JSON).
	MappingsPath string
	ServingURL   string
	NLUName      string
	ChatName     string
	ChatEnabled  bool
	TimeoutSec   int
	MaxSteps     int
}

type WeatherConfig struct {
	BaseURL     string
	APIKey      string
	CityID      string
	TimeoutSec  int
	CacheTTLSec int
}

type LoggingConfig struct {
	Level      string
	Format     string
	OutputPath string
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/etc/computer")

	viper.SetEnvPrefix("COMPUTER")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}

func setDefaults() {
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.readTimeout", 30)
	viper.SetDefault("server.writeTimeout", 30)
	viper.SetDefault("server.bodyLimit", 1048576)

	viper.SetDefault("sqlite.path", "./data/computer.db")

	viper.SetDefault("redis.enabled", false)
	viper.SetDefault("redis.host", "localhost")
	viper.SetDefault("redis.port", 6379)
	viper.SetDefault("redis.db", 0)

	viper.SetDefault("model.mappingsPath", "./data/nlu/mappings.json")
	viper.SetDefault("model.servingURL", "http://localhost:8501")
	viper.SetDefault("model.nluName", "nlu")
	viper.SetDefault("model.chatName", "chat")
	viper.SetDefault("model.chatEnabled", false)
	viper.SetDefault("model.timeoutSec", 10)
	viper.SetDefault("model.maxSteps", 98)

	viper.SetDefault("weather.baseURL", "https://api.openweathermap.org/data/2.5")
	viper.SetDefault("weather.cityID", "2879139")
	viper.SetDefault("weather.timeoutSec", 10)
	viper.SetDefault("weather.cacheTTLSec", 3600)

	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")
	viper.SetDefault("logging.outputPath", "stdout")
}
