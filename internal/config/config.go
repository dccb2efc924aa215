package config

import (
	"database/sql"
	"fmt"
	"os"
	"strconv"
	"time"

	gomysql "github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Log      LogConfig      `yaml:"log"`
	Database DatabaseConfig `yaml:"database"`
	Auth     AuthConfig     `yaml:"auth"`
	Upload   UploadConfig   `yaml:"upload"`
	Print    PrintConfig    `yaml:"print"`
	Client   ClientConfig   `yaml:"client"`
}

type LogConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	Console    bool   `yaml:"console"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

type ServerConfig struct {
	Port      int    `yaml:"port"`
	PublicURL string `yaml:"public_url"`
}

// DatabaseConfig points at MySQL. An empty Host keeps records in memory.
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
}

type AuthConfig struct {
	JWTSecret   string `yaml:"jwt_secret"`
	EmailDomain string `yaml:"email_domain"`
}

type UploadConfig struct {
	Dir      string `yaml:"dir"`
	MaxWidth int    `yaml:"max_width"`
	MaxBytes int    `yaml:"max_bytes"`
}

type PrintConfig struct {
	PDF           bool          `yaml:"pdf"`
	ChromeTimeout time.Duration `yaml:"chrome_timeout"`
}

// ClientConfig is read by cmd/logbook.
type ClientConfig struct {
	GatewayURL    string        `yaml:"gateway_url"`
	SessionFile   string        `yaml:"session_file"`
	SessionSecret string        `yaml:"session_secret"`
	Debounce      time.Duration `yaml:"debounce"`
	Timeout       time.Duration `yaml:"timeout"`
}

func Default() *Config {
	return &Config{
		Server:   ServerConfig{Port: 9871, PublicURL: "http://localhost:9871"},
		Log:      LogConfig{Level: "info", Console: true, MaxSizeMB: 100, MaxBackups: 3, MaxAgeDays: 30},
		Database: DatabaseConfig{Port: 3306, Name: "buku_log"},
		Auth:     AuthConfig{JWTSecret: "buku-log-secret-2026", EmailDomain: "@moe-dl.edu.my"},
		Upload:   UploadConfig{Dir: "uploads", MaxWidth: 1200, MaxBytes: 5 << 20},
		Print:    PrintConfig{ChromeTimeout: 30 * time.Second},
		Client: ClientConfig{
			GatewayURL:    "http://localhost:9871/api/exec",
			SessionFile:   ".buku-log-session",
			SessionSecret: "buku-log-session-2026",
			Debounce:      2 * time.Second,
			Timeout:       30 * time.Second,
		},
	}
}

func Load(configFile string) *Config {
	// .env is optional; real env vars win over it.
	_ = godotenv.Load()

	c := Default()
	paths := []string{"etc/config-dev.yaml", "/etc/buku-log/config.yaml"}
	if configFile != "" {
		paths = []string{configFile}
	}
	for _, path := range paths {
		if data, err := os.ReadFile(path); err == nil {
			yaml.Unmarshal(data, c)
			break
		}
	}

	envOverride(&c.Server.PublicURL, "PUBLIC_URL")
	envOverride(&c.Database.Host, "DB_HOST")
	envOverride(&c.Database.User, "DB_USER")
	envOverride(&c.Database.Password, "DB_PASS")
	envOverride(&c.Database.Name, "DB_NAME")
	envOverride(&c.Auth.JWTSecret, "JWT_SECRET")
	envOverride(&c.Auth.EmailDomain, "EMAIL_DOMAIN")
	envOverride(&c.Upload.Dir, "UPLOAD_DIR")
	envOverride(&c.Log.Level, "LOG_LEVEL")
	envOverride(&c.Log.File, "LOG_FILE")
	envOverride(&c.Client.GatewayURL, "GATEWAY_URL")
	envOverride(&c.Client.SessionFile, "SESSION_FILE")
	envOverrideInt(&c.Server.Port, "PORT")
	envOverrideInt(&c.Database.Port, "DB_PORT")
	envOverrideBool(&c.Print.PDF, "PRINT_PDF")

	return c
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}

func (c *Config) InMemory() bool { return c.Database.Host == "" }

func (c *Config) OpenGormDB() (*gorm.DB, error) {
	cfg := gomysql.NewConfig()
	cfg.User = c.Database.User
	cfg.Passwd = c.Database.Password
	cfg.Net = "tcp"
	cfg.Addr = fmt.Sprintf("%s:%d", c.Database.Host, c.Database.Port)
	cfg.DBName = c.Database.Name
	cfg.ParseTime = true

	connector, err := gomysql.NewConnector(cfg)
	if err != nil {
		return nil, fmt.Errorf("create connector: %w", err)
	}
	sqlDB := sql.OpenDB(connector)
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("ping db: %w", err)
	}

	return gorm.Open(mysql.New(mysql.Config{Conn: sqlDB}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
}

func envOverride(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func envOverrideInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func envOverrideBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}
