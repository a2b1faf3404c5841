package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config es la configuración del servicio. Las claves coinciden con las
// variables de entorno (PORT, DB_DSN, ...).
type Config struct {
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`

	// Vacío => stores en memoria
	DBDSN string `mapstructure:"db_dsn"`

	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
	AppName   string `mapstructure:"app_name"`

	// Vacío => los ciclos se leen del store local
	CyclesBaseURL string        `mapstructure:"cycles_base_url"`
	CyclesAPIKey  string        `mapstructure:"cycles_api_key"`
	CyclesTimeout time.Duration `mapstructure:"cycles_timeout"`

	// Export SQLite de la app anterior; vacío => fuente en memoria
	LegacySQLitePath string `mapstructure:"legacy_sqlite_path"`

	// Expresión cron del barrido de duplicados; "off" lo desactiva
	SweepSchedule string `mapstructure:"sweep_schedule"`
}

var keys = []string{
	"port", "read_timeout", "write_timeout",
	"db_dsn",
	"log_level", "log_format", "app_name",
	"cycles_base_url", "cycles_api_key", "cycles_timeout",
	"legacy_sqlite_path",
	"sweep_schedule",
}

// Load lee defaults, un archivo opcional (yaml/json/toml) y el entorno, en
// ese orden de prioridad creciente.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			v.SetConfigFile(configPath)
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("failed to read config: %w", err)
			}
		}
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// AutomaticEnv no alcanza para Unmarshal sin BindEnv explícito
	for _, k := range keys {
		if err := v.BindEnv(k, strings.ToUpper(k)); err != nil {
			return nil, fmt.Errorf("failed to bind env %s: %w", k, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", 8080)
	v.SetDefault("read_timeout", 5*time.Second)
	v.SetDefault("write_timeout", 10*time.Second)

	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
	v.SetDefault("app_name", "treatment-tracker")

	v.SetDefault("cycles_timeout", 5*time.Second)

	v.SetDefault("sweep_schedule", "@every 15m")
}

func validate(cfg *Config) error {
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return fmt.Errorf("invalid port %d", cfg.Port)
	}
	if cfg.CyclesTimeout <= 0 {
		return fmt.Errorf("invalid cycles_timeout %s", cfg.CyclesTimeout)
	}
	cfg.SweepSchedule = strings.TrimSpace(cfg.SweepSchedule)
	return nil
}

// Addr devuelve la dirección de escucha (":8080").
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

func (c *Config) SweepEnabled() bool {
	s := strings.ToLower(c.SweepSchedule)
	return s != "" && s != "off"
}
