package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config captures the runtime configuration for the application.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Logging  LoggingConfig  `yaml:"logging"`
	Auth     AuthConfig     `yaml:"auth"`
	Mail     MailConfig     `yaml:"mail"`
	Media    MediaConfig    `yaml:"media"`
	CORS     CORSConfig     `yaml:"cors"`
}

// ServerConfig configures the HTTP server runtime behavior.
type ServerConfig struct {
	Addr              string        `yaml:"addr"`
	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout"`
	ShutdownTimeout   time.Duration `yaml:"shutdown_timeout"`
}

// DatabaseConfig contains the database connection settings.
type DatabaseConfig struct {
	Driver          string        `yaml:"driver"`
	URL             string        `yaml:"url"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `yaml:"conn_max_idle_time"`
	UseMock         bool          `yaml:"use_mock"`
}

// LoggingConfig selects the verbosity and encoding of application logs.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// AuthConfig configures token issuance.
type AuthConfig struct {
	JWTSecret string        `yaml:"jwt_secret"`
	JWTIssuer string        `yaml:"jwt_issuer"`
	TokenTTL  time.Duration `yaml:"token_ttl"`
}

// MailConfig configures outbound SMTP delivery.
type MailConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
}

// MediaConfig configures image hosting.
type MediaConfig struct {
	CloudinaryURL  string `yaml:"cloudinary_url"`
	Folder         string `yaml:"folder"`
	MaxWidth       int    `yaml:"max_width"`
	MaxUploadBytes int64  `yaml:"max_upload_bytes"`
}

// CORSConfig lists the browser origins allowed to call the API.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// Load inspects the environment and builds a Config value. When CONFIG_FILE
// names a YAML document it is read first; environment variables win over it.
func Load() (Config, error) {
	file := Config{}
	if path := strings.TrimSpace(os.Getenv("CONFIG_FILE")); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &file); err != nil {
			return Config{}, fmt.Errorf("parse config file: %w", err)
		}
	}

	cfg := Config{}

	cfg.Server = ServerConfig{
		Addr: firstNonEmpty(
			os.Getenv("SERVER_ADDR"),
			os.Getenv("ADDR"),
			file.Server.Addr,
			":8080",
		),
		ReadHeaderTimeout: parseDurationWithDefault(os.Getenv("SERVER_READ_HEADER_TIMEOUT"), orDuration(file.Server.ReadHeaderTimeout, 5*time.Second)),
		ShutdownTimeout:   parseDurationWithDefault(os.Getenv("SERVER_SHUTDOWN_TIMEOUT"), orDuration(file.Server.ShutdownTimeout, 10*time.Second)),
	}

	cfg.Database = DatabaseConfig{
		Driver: strings.ToLower(firstNonEmpty(
			os.Getenv("DATABASE_DRIVER"),
			file.Database.Driver,
			"postgres",
		)),
		URL: firstNonEmpty(
			os.Getenv("DATABASE_URL"),
			os.Getenv("DB_URL"),
			file.Database.URL,
		),
		MaxIdleConns:    parseIntWithDefault(os.Getenv("DATABASE_MAX_IDLE_CONNS"), file.Database.MaxIdleConns),
		MaxOpenConns:    parseIntWithDefault(os.Getenv("DATABASE_MAX_OPEN_CONNS"), file.Database.MaxOpenConns),
		ConnMaxLifetime: parseDurationWithDefault(os.Getenv("DATABASE_CONN_MAX_LIFETIME"), file.Database.ConnMaxLifetime),
		ConnMaxIdleTime: parseDurationWithDefault(os.Getenv("DATABASE_CONN_MAX_IDLE_TIME"), file.Database.ConnMaxIdleTime),
		UseMock:         parseBoolWithDefault(os.Getenv("DATABASE_USE_MOCK"), file.Database.UseMock),
	}

	cfg.Logging = LoggingConfig{
		Level:  firstNonEmpty(os.Getenv("LOG_LEVEL"), file.Logging.Level, "info"),
		Format: firstNonEmpty(os.Getenv("LOG_FORMAT"), file.Logging.Format, "text"),
	}

	cfg.Auth = AuthConfig{
		JWTSecret: firstNonEmpty(os.Getenv("JWT_SECRET"), file.Auth.JWTSecret),
		JWTIssuer: firstNonEmpty(os.Getenv("JWT_ISSUER"), file.Auth.JWTIssuer, "mykitchen"),
		TokenTTL:  parseDurationWithDefault(os.Getenv("JWT_TTL"), orDuration(file.Auth.TokenTTL, 24*time.Hour)),
	}

	cfg.Mail = MailConfig{
		Enabled:  parseBoolWithDefault(os.Getenv("MAIL_ENABLED"), file.Mail.Enabled),
		Host:     firstNonEmpty(os.Getenv("SMTP_HOST"), file.Mail.Host),
		Port:     parseIntWithDefault(os.Getenv("SMTP_PORT"), orInt(file.Mail.Port, 587)),
		Username: firstNonEmpty(os.Getenv("SMTP_USERNAME"), file.Mail.Username),
		Password: firstNonEmpty(os.Getenv("SMTP_PASSWORD"), file.Mail.Password),
		From:     firstNonEmpty(os.Getenv("MAIL_FROM"), file.Mail.From, "no-reply@mykitchen.local"),
	}

	cfg.Media = MediaConfig{
		CloudinaryURL:  firstNonEmpty(os.Getenv("CLOUDINARY_URL"), file.Media.CloudinaryURL),
		Folder:         firstNonEmpty(os.Getenv("MEDIA_FOLDER"), file.Media.Folder, "mykitchen/recipes"),
		MaxWidth:       parseIntWithDefault(os.Getenv("MEDIA_MAX_WIDTH"), orInt(file.Media.MaxWidth, 1200)),
		MaxUploadBytes: int64(parseIntWithDefault(os.Getenv("MEDIA_MAX_UPLOAD_BYTES"), int(orInt64(file.Media.MaxUploadBytes, 5<<20)))),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: file.CORS.AllowedOrigins}
	if origins := splitList(os.Getenv("CORS_ALLOWED_ORIGINS")); len(origins) > 0 {
		cfg.CORS.AllowedOrigins = origins
	}

	if strings.TrimSpace(cfg.Server.Addr) == "" {
		return Config{}, fmt.Errorf("server address must not be empty")
	}

	switch cfg.Database.Driver {
	case "postgres", "sqlite":
	default:
		return Config{}, fmt.Errorf("unsupported database driver: %s", cfg.Database.Driver)
	}

	if strings.TrimSpace(cfg.Auth.JWTSecret) == "" {
		if !cfg.Database.UseMock {
			return Config{}, fmt.Errorf("JWT_SECRET must be set")
		}
		secret, err := randomSecret()
		if err != nil {
			return Config{}, fmt.Errorf("generate development secret: %w", err)
		}
		cfg.Auth.JWTSecret = secret
	}

	if cfg.Mail.Enabled && strings.TrimSpace(cfg.Mail.Host) == "" {
		return Config{}, fmt.Errorf("SMTP_HOST must be set when mail is enabled")
	}

	return cfg, nil
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return value
		}
	}
	return ""
}

func parseIntWithDefault(value string, def int) int {
	value = strings.TrimSpace(value)
	if value == "" {
		return def
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return def
	}
	return parsed
}

func parseDurationWithDefault(value string, def time.Duration) time.Duration {
	value = strings.TrimSpace(value)
	if value == "" {
		return def
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return def
	}
	return parsed
}

func parseBoolWithDefault(value string, def bool) bool {
	value = strings.TrimSpace(value)
	if value == "" {
		return def
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return def
	}
	return parsed
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func orDuration(value, def time.Duration) time.Duration {
	if value > 0 {
		return value
	}
	return def
}

func orInt(value, def int) int {
	if value > 0 {
		return value
	}
	return def
}

func orInt64(value, def int64) int64 {
	if value > 0 {
		return value
	}
	return def
}

func randomSecret() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
