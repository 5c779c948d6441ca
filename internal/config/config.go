package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Database struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"sslMode"`
}

type Config struct {
	Server struct {
		Port          int           `yaml:"port"`
		ReadTimeout   time.Duration `yaml:"readTimeout"`
		WriteTimeout  time.Duration `yaml:"writeTimeout"`
		IdleTimeout   time.Duration `yaml:"idleTimeout"`
		MaxUploadMB   int64         `yaml:"maxUploadMB"`
		CORSOrigins   []string      `yaml:"corsOrigins"`
		ShutdownGrace time.Duration `yaml:"shutdownGrace"`
	} `yaml:"server"`

	AI struct {
		// Provider is gemini or openai.
		Provider string        `yaml:"provider"`
		APIKey   string        `yaml:"apiKey"`
		Model    string        `yaml:"model"`
		Timeout  time.Duration `yaml:"timeout"`
	} `yaml:"ai"`

	Knowledge struct {
		// Driver is memory, sqlite, mysql or postgres.
		Driver   string   `yaml:"driver"`
		Path     string   `yaml:"path"`
		Database Database `yaml:"database"`
		Seed     bool     `yaml:"seed"`
	} `yaml:"knowledge"`

	Samples struct {
		// Source is file or minio.
		Source string `yaml:"source"`
		Path   string `yaml:"path"`
		Object string `yaml:"object"`
		Minio  struct {
			Endpoint   string `yaml:"endpoint"`
			AccessKey  string `yaml:"accessKey"`
			SecretKey  string `yaml:"secretKey"`
			BucketName string `yaml:"bucketName"`
			Region     string `yaml:"region"`
			UseSSL     bool   `yaml:"useSSL"`
		} `yaml:"minio"`
	} `yaml:"samples"`

	Solar struct {
		BatteryCapacityWh float64            `yaml:"batteryCapacityWh"`
		Appliances        map[string]float64 `yaml:"appliances"`
		MaxSimulation     int                `yaml:"maxSimulation"`
	} `yaml:"solar"`

	RateLimit struct {
		RequestsPerSecond float64 `yaml:"requestsPerSecond"`
		Burst             int     `yaml:"burst"`
	} `yaml:"ratelimit"`

	Logging struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"logging"`

	Client struct {
		BackendURL       string        `yaml:"backendURL"`
		RequestTimeout   time.Duration `yaml:"requestTimeout"`
		ProgressInterval time.Duration `yaml:"progressInterval"`
		SignInDelay      time.Duration `yaml:"signInDelay"`
		WaterGoalLitres  float64       `yaml:"waterGoalLitres"`
	} `yaml:"client"`
}

// Default isi nilai bawaan kalau config.yaml tidak ada
func Default() *Config {
	var cfg Config
	cfg.Server.Port = 5000
	cfg.Server.ReadTimeout = 30 * time.Second
	cfg.Server.WriteTimeout = 120 * time.Second
	cfg.Server.IdleTimeout = 60 * time.Second
	cfg.Server.MaxUploadMB = 16
	cfg.Server.CORSOrigins = []string{"*"}
	cfg.Server.ShutdownGrace = 5 * time.Second

	cfg.AI.Provider = "gemini"
	cfg.AI.Timeout = 60 * time.Second

	cfg.Knowledge.Driver = "memory"
	cfg.Knowledge.Path = "ecosense.db"
	cfg.Knowledge.Seed = true

	cfg.Samples.Source = "file"
	cfg.Samples.Path = "assets/sample.png"
	cfg.Samples.Object = "samples/sample.png"

	cfg.Solar.BatteryCapacityWh = 10000
	cfg.Solar.MaxSimulation = 96

	cfg.RateLimit.RequestsPerSecond = 5
	cfg.RateLimit.Burst = 10

	cfg.Logging.Level = "info"
	cfg.Logging.Format = "json"

	cfg.Client.BackendURL = "http://localhost:5000"
	cfg.Client.ProgressInterval = 2 * time.Second
	cfg.Client.SignInDelay = time.Second
	cfg.Client.WaterGoalLitres = 150
	return &cfg
}

// Load baca file config.yaml di atas Default, lalu override dari env.
// File yang tidak ada bukan error.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, err
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}
	cfg.applyEnv(os.LookupEnv)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) {
	if v, ok := lookup("ECOSENSE_AI_PROVIDER"); ok && v != "" {
		c.AI.Provider = strings.ToLower(v)
	}
	// key yang dipakai ikut provider
	switch c.AI.Provider {
	case "openai":
		if v, ok := lookup("OPENAI_API_KEY"); ok && v != "" {
			c.AI.APIKey = v
		}
	default:
		if v, ok := lookup("GEMINI_API_KEY"); ok && v != "" {
			c.AI.APIKey = v
		}
	}
	if v, ok := lookup("PORT"); ok {
		if p, err := strconv.Atoi(v); err == nil {
			c.Server.Port = p
		}
	}
	if v, ok := lookup("ECOSENSE_BACKEND_URL"); ok && v != "" {
		c.Client.BackendURL = v
	}
}

func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server.port %d", c.Server.Port)
	}
	switch c.AI.Provider {
	case "gemini", "openai":
	default:
		return fmt.Errorf("invalid ai.provider %q (allowed: gemini, openai)", c.AI.Provider)
	}
	switch c.Knowledge.Driver {
	case "memory", "sqlite", "mysql", "postgres":
	default:
		return fmt.Errorf("invalid knowledge.driver %q (allowed: memory, sqlite, mysql, postgres)", c.Knowledge.Driver)
	}
	switch c.Samples.Source {
	case "file", "minio":
	default:
		return fmt.Errorf("invalid samples.source %q (allowed: file, minio)", c.Samples.Source)
	}
	if c.Server.MaxUploadMB <= 0 {
		return fmt.Errorf("server.maxUploadMB must be positive")
	}
	return nil
}

func (c *Config) Addr() string { return fmt.Sprintf(":%d", c.Server.Port) }

func (c *Config) MaxUploadBytes() int64 { return c.Server.MaxUploadMB << 20 }

// Helper untuk build DSN MySQL
func (c *Config) MySQLDSN() string {
	d := c.Knowledge.Database
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&charset=utf8mb4&loc=UTC",
		d.User,
		d.Password,
		d.Host,
		d.Port,
		d.Name,
	)
}

// Helper untuk build DSN Postgres
func (c *Config) PostgresDSN() string {
	d := c.Knowledge.Database
	sslMode := d.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, sslMode)
}
