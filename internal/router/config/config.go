package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config - структура для хранения конфигураций приложения
type Config struct {
	ServerAddress  string        `mapstructure:"SERVER_ADDRESS"`
	PostgresConn   string        `mapstructure:"POSTGRES_CONN"`
	MigrationURL   string        `mapstructure:"MIGRATION_URL"`
	JWTSecret      string        `mapstructure:"JWT_SECRET"`
	TokenTTL       time.Duration `mapstructure:"TOKEN_TTL"`
	RequestTimeout time.Duration `mapstructure:"REQUEST_TIMEOUT"`
	LogLevel       string        `mapstructure:"LOG_LEVEL"`
	UploadDir      string        `mapstructure:"UPLOAD_DIR"`
}

var defaults = map[string]interface{}{
	"SERVER_ADDRESS":  "0.0.0.0:8080",
	"POSTGRES_CONN":   "",
	"MIGRATION_URL":   "file://migrations",
	"JWT_SECRET":      "",
	"TOKEN_TTL":       "24h",
	"REQUEST_TIMEOUT": "5s",
	"LOG_LEVEL":       "info",
	"UPLOAD_DIR":      "",
}

// LoadConfig загружает конфигурацию из файла app.env в каталоге path.
// Переменные окружения переопределяют значения из файла; отсутствие файла
// не является ошибкой.
func LoadConfig(path string) (cfg Config, err error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("app")
	v.SetConfigType("env")
	v.AutomaticEnv()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if err = v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return
		}
		err = nil
	}
	if err = v.Unmarshal(&cfg); err != nil {
		return
	}
	err = cfg.Validate()
	return
}

// Validate проверяет значения, без которых сервер не запустится.
func (c Config) Validate() error {
	if c.TokenTTL <= 0 {
		return fmt.Errorf("TOKEN_TTL must be positive, got %s", c.TokenTTL)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be positive, got %s", c.RequestTimeout)
	}
	return nil
}
