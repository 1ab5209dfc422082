package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

const (
	StorageFile  = "file"
	StorageRedis = "redis"
)

var ErrUnknownStorageDriver = errors.New("unknown storage driver")

type Config struct {
	LogLevel  string  `yaml:"log-level" env:"GLOBETROTTER_LOG_LEVEL" env-default:"info"`
	LogFormat string  `yaml:"log-format" env:"GLOBETROTTER_LOG_FORMAT" env-default:"text"`
	API       API     `yaml:"api"`
	Storage   Storage `yaml:"storage"`
	Share     Share   `yaml:"share"`
	Signals   Signals `yaml:"signals"`
}

type API struct {
	BaseURL        string        `yaml:"base-url" env:"GLOBETROTTER_API_BASE_URL" env-default:"https://api.golobetrotte.digitaltek.co.in/api"`
	Timeout        time.Duration `yaml:"timeout" env:"GLOBETROTTER_API_TIMEOUT" env-default:"0s"`
	RateLimitRPS   float64       `yaml:"rate-limit-rps" env:"GLOBETROTTER_API_RATE_LIMIT_RPS" env-default:"5"`
	RateLimitBurst int           `yaml:"rate-limit-burst" env:"GLOBETROTTER_API_RATE_LIMIT_BURST" env-default:"10"`
}

type Storage struct {
	Driver string `yaml:"driver" env:"GLOBETROTTER_STORAGE_DRIVER" env-default:"file"`
	Path   string `yaml:"path" env:"GLOBETROTTER_STORAGE_PATH" env-default:""`
	Key    string `yaml:"key" env:"GLOBETROTTER_STORAGE_KEY" env-default:"globetrotter_username"`
	Redis  Redis  `yaml:"redis"`
}

type Redis struct {
	Host string `yaml:"host" env:"GLOBETROTTER_REDIS_HOST" env-default:"localhost"`
	Port string `yaml:"port" env:"GLOBETROTTER_REDIS_PORT" env-default:"6379"`
}

type Share struct {
	BaseURL   string `yaml:"base-url" env:"GLOBETROTTER_SHARE_BASE_URL" env-default:"https://golobetrotte.digitaltek.co.in"`
	QRSize    int    `yaml:"qr-size" env:"GLOBETROTTER_SHARE_QR_SIZE" env-default:"256"`
	OutputDir string `yaml:"output-dir" env:"GLOBETROTTER_SHARE_OUTPUT_DIR" env-default:"."`
}

type Signals struct {
	Correct   time.Duration `yaml:"correct" env:"GLOBETROTTER_SIGNAL_CORRECT" env-default:"5s"`
	Incorrect time.Duration `yaml:"incorrect" env:"GLOBETROTTER_SIGNAL_INCORRECT" env-default:"3s"`
}

// Load - reads path when it exists, otherwise only the environment and defaults.
func Load(path string) (*Config, error) {
	config := &Config{}

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err = cleanenv.ReadConfig(path, config); err != nil {
				return nil, fmt.Errorf("unable to load config file: %w", err)
			}

			return config, config.Validate()
		}
	}

	if err := cleanenv.ReadEnv(config); err != nil {
		return nil, fmt.Errorf("unable to load config from env: %w", err)
	}

	return config, config.Validate()
}

// MustLoad - load all configurations in config.yml file.
func MustLoad(path string) *Config {
	config, err := Load(path)
	if err != nil {
		panic(err)
	}

	return config
}

func (that *Config) Validate() error {
	switch that.Storage.Driver {
	case StorageFile, StorageRedis:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownStorageDriver, that.Storage.Driver)
	}

	if that.API.BaseURL == "" {
		return errors.New("api base url is empty")
	}

	return nil
}

func (that *Redis) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}
